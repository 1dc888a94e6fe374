// Package explorer implements the remote block-explorer client of §6: a
// small JSON command protocol over a websocket connection, exposing
// last_height, block_header, history, transaction, stealth and broadcast
// to the sync and spend packages. Wire-protocol details of the remote
// service are owned externally; this package only consumes the typed
// Explorer interface below, per §6's note that the remote protocol itself
// is out of scope.
package explorer

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// BlockHeader is the subset of a block header the sync engine needs to
// detect reorgs and advance its chain index.
type BlockHeader struct {
	Height    int32
	Hash      chainhash.Hash
	PrevHash  chainhash.Hash
	Timestamp int64
}

// HistoryEntry describes one output or spend touching a watched address,
// the unit the history scan loop consumes (§4.F).
type HistoryEntry struct {
	TxHash   chainhash.Hash
	Index    uint32
	Height   int32 // 0 if unconfirmed
	IsOutput bool
	Value    int64
	// SpendTxHash/SpendIndex are set when IsOutput is true and the output
	// has already been spent, letting the history scan loop link the two
	// rows in one round-trip.
	SpendTxHash  *chainhash.Hash
	SpendIndex   uint32
}

// StealthEntry is one OP_RETURN-tagged transaction the stealth scan loop
// must test against a pocket's scan key (§4.F).
type StealthEntry struct {
	TxHash       chainhash.Hash
	EphemeralKey []byte // 32-byte compressed pubkey, high byte omitted per the 40-byte metadata layout
}

// Explorer is the typed interface the sync and spend packages depend on
// for remote chain data, per §6. Every method takes a context so the
// caller's control loop can cancel a stalled query on shutdown.
type Explorer interface {
	// LastHeight returns the current best block height known to the
	// remote service.
	LastHeight(ctx context.Context) (int32, error)

	// BlockHeader returns the header at height.
	BlockHeader(ctx context.Context, height int32) (*BlockHeader, error)

	// History returns every output/spend entry touching address.
	History(ctx context.Context, address string) ([]HistoryEntry, error)

	// Transaction returns the full transaction identified by hash.
	Transaction(ctx context.Context, hash chainhash.Hash) (*wire.MsgTx, error)

	// Stealth returns every OP_RETURN-tagged transaction observed from
	// height onward, for the stealth scan loop to test against a
	// pocket's scan key. prefix narrows the search when non-empty; per
	// §9's open question this implementation always passes an empty
	// prefix and relies on the scan key test to filter false positives.
	Stealth(ctx context.Context, prefix string, fromHeight int32) ([]StealthEntry, error)

	// Broadcast submits tx to the network.
	Broadcast(ctx context.Context, tx *wire.MsgTx) error
}
