package explorer

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Mock is a function-field Explorer stub for tests in this package and
// the sync/spend packages; a nil field panics if called, the same
// fail-fast default dcrlnd's test mocks use for unexercised methods.
type Mock struct {
	LastHeightFn  func(ctx context.Context) (int32, error)
	BlockHeaderFn func(ctx context.Context, height int32) (*BlockHeader, error)
	HistoryFn     func(ctx context.Context, address string) ([]HistoryEntry, error)
	TransactionFn func(ctx context.Context, hash chainhash.Hash) (*wire.MsgTx, error)
	StealthFn     func(ctx context.Context, prefix string, fromHeight int32) ([]StealthEntry, error)
	BroadcastFn   func(ctx context.Context, tx *wire.MsgTx) error
}

func (m *Mock) LastHeight(ctx context.Context) (int32, error) {
	return m.LastHeightFn(ctx)
}

func (m *Mock) BlockHeader(ctx context.Context, height int32) (*BlockHeader, error) {
	return m.BlockHeaderFn(ctx, height)
}

func (m *Mock) History(ctx context.Context, address string) ([]HistoryEntry, error) {
	return m.HistoryFn(ctx, address)
}

func (m *Mock) Transaction(ctx context.Context, hash chainhash.Hash) (*wire.MsgTx, error) {
	return m.TransactionFn(ctx, hash)
}

func (m *Mock) Stealth(ctx context.Context, prefix string, fromHeight int32) ([]StealthEntry, error) {
	return m.StealthFn(ctx, prefix, fromHeight)
}

func (m *Mock) Broadcast(ctx context.Context, tx *wire.MsgTx) error {
	return m.BroadcastFn(ctx, tx)
}
