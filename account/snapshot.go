package account

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcutil"
	"github.com/duskwallet/dwd/crypto"
	"github.com/go-errors/errors"
)

// Snapshot is the serializable form of an Account, the unit the store
// package encrypts and writes to disk (§4.B). Private keys are never
// snapshotted directly: everything deterministic (pockets' main, scan and
// spend keys, the normal key chain) is re-derived from Wordlist on load;
// only the scan/spend-recovered stealth keys, which are discovered by
// scanning rather than derived, are persisted.
type Snapshot struct {
	Wordlist string
	Testnet  bool
	GapLimit uint32

	CurrentIndex *ChainIndex

	PocketOrder []string
	Pockets     map[string]*PocketSnapshot

	History      []*HistoryRow
	NextRowID    RowID
	Transactions map[string][]byte // tx hash hex -> raw tx

	SentPayments []*SentPaymentSnapshot
	Tracker      map[string]int32
}

// SentPaymentSnapshot is the serializable form of a SentPayment; RawTx
// replaces the live *wire.MsgTx with its wire-serialized bytes so the
// snapshot round-trips through gob without relying on reflection over
// wire.MsgTx's internals.
type SentPaymentSnapshot struct {
	TxHash       chainhash.Hash
	RawTx        []byte
	Pocket       string
	IsConfirmed  bool
	CreatedDate  int64 // unix seconds
	Destinations []Destination
}

// PocketSnapshot is the serializable form of a Pocket.
type PocketSnapshot struct {
	Name         string
	Index        uint32
	MaxUsedIndex int64

	// StealthKeys maps a recovered one-time address to its WIF-encoded
	// private key.
	StealthKeys map[string]string
}

// Export produces a Snapshot capturing everything needed to reconstruct
// this account, per §4.B's save_account.
func (a *Account) Export() (*Snapshot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snap := &Snapshot{
		Wordlist:     a.wordlist,
		Testnet:      a.testnet,
		GapLimit:     a.gapLimit,
		CurrentIndex: a.currentIndex,
		PocketOrder:  append([]string(nil), a.pocketOrder...),
		Pockets:      make(map[string]*PocketSnapshot, len(a.pockets)),
		History:      append([]*HistoryRow(nil), a.history...),
		NextRowID:    a.nextRowID,
		Transactions: make(map[string][]byte, len(a.transactions)),
		SentPayments: make([]*SentPaymentSnapshot, 0, len(a.sentPayments)),
		Tracker:      make(map[string]int32, len(a.tracker)),
	}

	for _, sp := range a.sentPayments {
		raw, err := serializeTx(sp.Tx)
		if err != nil {
			return nil, errors.Errorf("encoding sent payment %s: %v", sp.TxHash, err)
		}
		snap.SentPayments = append(snap.SentPayments, &SentPaymentSnapshot{
			TxHash:       sp.TxHash,
			RawTx:        raw,
			Pocket:       sp.Pocket,
			IsConfirmed:  sp.IsConfirmed,
			CreatedDate:  sp.CreatedDate.Unix(),
			Destinations: sp.Destinations,
		})
	}

	params := crypto.NetParams(a.testnet)
	for name, p := range a.pockets {
		ps := &PocketSnapshot{
			Name:         p.Name,
			Index:        p.Index,
			MaxUsedIndex: p.maxUsedIndex,
			StealthKeys:  make(map[string]string, len(p.StealthKeys)),
		}
		for addr, priv := range p.StealthKeys {
			wif, err := btcutil.NewWIF(priv, params, true)
			if err != nil {
				return nil, errors.Errorf("encoding stealth key for %s: %v", addr, err)
			}
			ps.StealthKeys[addr] = wif.String()
		}
		snap.Pockets[name] = ps
	}

	for hash, raw := range a.transactions {
		snap.Transactions[hash.String()] = raw
	}
	for addr, height := range a.tracker {
		snap.Tracker[addr] = height
	}

	return snap, nil
}

// Restore reconstructs an Account from a Snapshot, re-deriving every
// deterministic key from the word list rather than trusting stored key
// material, per §4.B's load_account.
func Restore(snap *Snapshot) (*Account, error) {
	a := New(snap.Wordlist, snap.Testnet, snap.GapLimit)
	a.currentIndex = snap.CurrentIndex
	a.nextRowID = snap.NextRowID
	a.history = append([]*HistoryRow(nil), snap.History...)
	for _, sps := range snap.SentPayments {
		tx, err := deserializeTx(sps.RawTx)
		if err != nil {
			return nil, errors.Errorf("decoding sent payment %s: %v", sps.TxHash, err)
		}
		a.sentPayments = append(a.sentPayments, &SentPayment{
			TxHash:       sps.TxHash,
			Tx:           tx,
			Pocket:       sps.Pocket,
			IsConfirmed:  sps.IsConfirmed,
			CreatedDate:  time.Unix(sps.CreatedDate, 0),
			Destinations: sps.Destinations,
		})
	}
	for addr, height := range snap.Tracker {
		a.tracker[addr] = height
	}

	root, err := a.rootKeyLocked()
	if err != nil {
		return nil, err
	}
	params := a.Params()

	for _, name := range snap.PocketOrder {
		ps, ok := snap.Pockets[name]
		if !ok {
			return nil, errors.Errorf("snapshot missing pocket %q", name)
		}
		pocket, err := derivePocket(root, ps.Name, ps.Index, params)
		if err != nil {
			return nil, err
		}
		pocket.maxUsedIndex = ps.MaxUsedIndex
		if err := a.growPocketLocked(pocket, a.gapLimit); err != nil {
			return nil, err
		}
		for addr, wifStr := range ps.StealthKeys {
			wif, err := btcutil.DecodeWIF(wifStr)
			if err != nil {
				return nil, errors.Errorf("decoding stealth key for %s: %v", addr, err)
			}
			pocket.StealthKeys[addr] = wif.PrivKey
		}

		a.pockets[name] = pocket
		a.pocketOrder = append(a.pocketOrder, name)
	}

	for hashHex, raw := range snap.Transactions {
		hash, err := chainhash.NewHashFromStr(hashHex)
		if err != nil {
			return nil, err
		}
		a.transactions[*hash] = raw
	}

	return a, nil
}
