// Package account implements the §3 data model and the §4.C operations that
// enforce its invariants: pockets, the address index, cached history and
// transactions, the pending-payments journal, and the chain-index
// watermark.
package account

import (
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/duskwallet/dwd/crypto"
	"github.com/duskwallet/dwd/stealth"
)

// ChainIndex pins the account's synchronised chain tip, an optional
// `(height, block_hash)` pair per §3.
type ChainIndex struct {
	Height int32
	Hash   chainhash.Hash
}

// Equal reports whether two indexes name the same (height, hash) pair.
func (c *ChainIndex) Equal(other *ChainIndex) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Height == other.Height && c.Hash == other.Hash
}

// RowID identifies a HistoryRow within an account, used instead of an
// in-memory pointer so a spend row can reference its output row (or
// vice versa) without creating an object-graph cycle, per §9's
// "flat table keyed by identity" design note.
type RowID uint64

// HistoryRow is an entry tied to one (pocket, address) describing either an
// output received or a spend of a prior output, per §3.
type HistoryRow struct {
	ID      RowID
	Pocket  string
	Address string

	IsOutput bool
	Hash     chainhash.Hash
	Index    uint32
	Height   int32
	Value    int64 // satoshi; positive for outputs, negative for spends

	// SpendID is set on an output row once a matching spend row exists.
	// A nil SpendID on an output row means it is unspent (a UTXO), per
	// §3's invariant.
	SpendID *RowID

	// SpendOfIndex is only meaningful within a single slice passed to
	// ReplaceAddressHistory: on a spend row it names the position, within
	// that same slice, of the output row it spends, so the caller never
	// needs to know row IDs before they are assigned. It is cleared once
	// consumed.
	SpendOfIndex *int
}

// IsUTXO reports whether this row is an unspent output.
func (r *HistoryRow) IsUTXO() bool {
	return r.IsOutput && r.SpendID == nil
}

// Destination is one (address, value) pair of an outgoing payment.
type Destination struct {
	Address string
	Value   int64
}

// SentPayment journals an outgoing transaction, per §3.
type SentPayment struct {
	TxHash       chainhash.Hash
	Tx           *wire.MsgTx
	Pocket       string // empty string means "not pocket-scoped"
	IsConfirmed  bool
	CreatedDate  time.Time
	Destinations []Destination
}

// Pocket is a named HD sub-wallet inside an account, per §3.
type Pocket struct {
	Name  string
	Index uint32

	MainKey *crypto.HDKey

	// Keys holds the normal receive key chain; position i is
	// main_key/H(i), its address registered in AddressIndex under i.
	Keys []*crypto.HDKey

	// AddressIndex maps a normal receive address to its position in
	// Keys.
	AddressIndex map[string]uint32

	// maxUsedIndex is the highest position with a recorded history row,
	// or -1 if none has been used yet. The gap-limit invariant keeps
	// len(Keys) >= maxUsedIndex+1+gap_limit.
	maxUsedIndex int64

	StealthScanKey  *btcec.PrivateKey
	StealthSpendKey *btcec.PrivateKey
	StealthAddress  *stealth.Address

	// StealthKeys maps a stealth-derived receive address to the private
	// key recovered for it by the stealth scan loop.
	StealthKeys map[string]*btcec.PrivateKey
}
