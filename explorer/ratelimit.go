package explorer

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"golang.org/x/time/rate"
)

// RateLimited wraps an Explorer so every call waits for a token before
// reaching the remote service, protecting a free or shared block-explorer
// endpoint from the sync engine's six concurrent control loops (§5, §9).
type RateLimited struct {
	inner   Explorer
	limiter *rate.Limiter
}

// NewRateLimited returns an Explorer allowing at most rps queries per
// second, with a burst of burst.
func NewRateLimited(inner Explorer, rps float64, burst int) *RateLimited {
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimited) wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// LastHeight implements Explorer.
func (r *RateLimited) LastHeight(ctx context.Context) (int32, error) {
	if err := r.wait(ctx); err != nil {
		return 0, err
	}
	return r.inner.LastHeight(ctx)
}

// BlockHeader implements Explorer.
func (r *RateLimited) BlockHeader(ctx context.Context, height int32) (*BlockHeader, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.BlockHeader(ctx, height)
}

// History implements Explorer.
func (r *RateLimited) History(ctx context.Context, address string) ([]HistoryEntry, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.History(ctx, address)
}

// Transaction implements Explorer.
func (r *RateLimited) Transaction(ctx context.Context, hash chainhash.Hash) (*wire.MsgTx, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Transaction(ctx, hash)
}

// Stealth implements Explorer.
func (r *RateLimited) Stealth(ctx context.Context, prefix string, fromHeight int32) ([]StealthEntry, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Stealth(ctx, prefix, fromHeight)
}

// Broadcast implements Explorer.
func (r *RateLimited) Broadcast(ctx context.Context, tx *wire.MsgTx) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	return r.inner.Broadcast(ctx, tx)
}
