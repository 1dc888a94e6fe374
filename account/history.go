package account

import (
	"bytes"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// HistoryRows returns every history row, or only those belonging to
// pocketFilter when it is non-empty, per §4.C's history.
func (a *Account) HistoryRows(pocketFilter string) []*HistoryRow {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.historyLocked(pocketFilter)
}

func (a *Account) historyLocked(pocketFilter string) []*HistoryRow {
	out := make([]*HistoryRow, 0, len(a.history))
	for _, row := range a.history {
		if pocketFilter != "" && row.Pocket != pocketFilter {
			continue
		}
		out = append(out, row)
	}
	return out
}

// AllUnspentInputs returns every UTXO row, or only those belonging to
// pocketFilter when it is non-empty, per §4.C's all_unspent_inputs.
func (a *Account) AllUnspentInputs(pocketFilter string) []*HistoryRow {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*HistoryRow, 0)
	for _, row := range a.history {
		if pocketFilter != "" && row.Pocket != pocketFilter {
			continue
		}
		if row.IsUTXO() {
			out = append(out, row)
		}
	}
	return out
}

// ReplaceAddressHistory replaces every history row for (pocket, address)
// with rows, the history scan loop's unit of update (§4.F). When address is
// one of the pocket's normal addresses and rows is non-empty, the pocket's
// gap-limit high-water mark advances to that address's position.
func (a *Account) ReplaceAddressHistory(pocket, address string, rows []*HistoryRow) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	filtered := a.history[:0:0]
	for _, row := range a.history {
		if row.Pocket == pocket && row.Address == address {
			continue
		}
		filtered = append(filtered, row)
	}
	for _, row := range rows {
		row.Pocket = pocket
		row.Address = address
		if row.ID == 0 {
			a.nextRowID++
			row.ID = a.nextRowID
		}
	}
	for _, row := range rows {
		if row.SpendOfIndex == nil {
			continue
		}
		i := *row.SpendOfIndex
		if i >= 0 && i < len(rows) {
			spentID := row.ID
			rows[i].SpendID = &spentID
		}
		row.SpendOfIndex = nil
	}
	filtered = append(filtered, rows...)
	a.history = filtered

	p, ok := a.pockets[pocket]
	if !ok {
		return errNotFound
	}
	if idx, ok := p.AddressIndex[address]; ok && len(rows) > 0 {
		return a.markUsedLocked(p, idx)
	}
	return nil
}

// ClearHistory drops every history row, the chain index and the address
// update tracker, the reorg detector's response to discovering its cached
// chain index no longer matches the remote chain (§4.F).
func (a *Account) ClearHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
	a.currentIndex = nil
	a.tracker = make(map[string]int32)
}

// TrackerValue returns the last block height address was scanned through,
// per §4.C's address update tracker.
func (a *Account) TrackerValue(address string) (int32, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	h, ok := a.tracker[address]
	return h, ok
}

// SetTrackerValue records the last block height address was scanned
// through.
func (a *Account) SetTrackerValue(address string, height int32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tracker[address] = height
}

// CacheTransaction stores a confirmed transaction's raw bytes, per §4.C's
// transaction cache fill.
func (a *Account) CacheTransaction(hash chainhash.Hash, tx *wire.MsgTx) error {
	raw, err := serializeTx(tx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transactions[hash] = raw
	return nil
}

// CachedTransaction returns a previously-cached transaction by hash.
func (a *Account) CachedTransaction(hash chainhash.Hash) (*wire.MsgTx, bool) {
	a.mu.RLock()
	raw, ok := a.transactions[hash]
	a.mu.RUnlock()
	if !ok {
		return nil, false
	}
	tx, err := deserializeTx(raw)
	if err != nil {
		return nil, false
	}
	return tx, true
}

// UncachedTransactionHashes returns the hashes referenced by history rows
// that have no cached transaction yet, the tx-cache-fill loop's work queue
// (§4.F).
func (a *Account) UncachedTransactionHashes() []chainhash.Hash {
	a.mu.RLock()
	defer a.mu.RUnlock()
	seen := make(map[chainhash.Hash]bool)
	var out []chainhash.Hash
	for _, row := range a.history {
		if _, cached := a.transactions[row.Hash]; cached {
			continue
		}
		if seen[row.Hash] {
			continue
		}
		seen[row.Hash] = true
		out = append(out, row.Hash)
	}
	return out
}

// SavePendingTransaction journals a newly-broadcast outgoing transaction,
// per §4.G's final step and §4.C's save_pending_transaction.
func (a *Account) SavePendingTransaction(dests []Destination, tx *wire.MsgTx, pocket string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sentPayments = append(a.sentPayments, &SentPayment{
		TxHash:       tx.TxHash(),
		Tx:           tx,
		Pocket:       pocket,
		CreatedDate:  time.Now(),
		Destinations: append([]Destination(nil), dests...),
	})
}

// PendingPayments returns every journaled payment not yet marked
// confirmed, per §4.H's pending_payments.
func (a *Account) PendingPayments() []*SentPayment {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []*SentPayment
	for _, p := range a.sentPayments {
		if !p.IsConfirmed {
			out = append(out, p)
		}
	}
	return out
}

// SentPayments returns every journaled outgoing payment, confirmed or
// not, the source the wallet façade's history elision filters against.
func (a *Account) SentPayments() []*SentPayment {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*SentPayment, len(a.sentPayments))
	copy(out, a.sentPayments)
	return out
}

// MarkAnyConfirmedSentPayments flips IsConfirmed for any journaled payment
// whose transaction hash now appears in a confirmed history row, per
// §4.F's mark-confirmed loop.
func (a *Account) MarkAnyConfirmedSentPayments() {
	a.mu.Lock()
	defer a.mu.Unlock()

	confirmed := make(map[chainhash.Hash]bool)
	for _, row := range a.history {
		if row.Height > 0 {
			confirmed[row.Hash] = true
		}
	}
	for _, p := range a.sentPayments {
		if !p.IsConfirmed && confirmed[p.TxHash] {
			p.IsConfirmed = true
		}
	}
}

func serializeTx(tx *wire.MsgTx) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deserializeTx(raw []byte) (*wire.MsgTx, error) {
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return tx, nil
}
