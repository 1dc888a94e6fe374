package sync

import "context"

// runTxCacheLoop fetches and caches the full transaction for every history
// row whose transaction has not yet been cached, per §4.F.
func (e *Engine) runTxCacheLoop(ctx context.Context) {
	runLoop(ctx, "txcache", e, e.updateTxCache)
}

func (e *Engine) updateTxCache(ctx context.Context) error {
	hashes := e.acct.UncachedTransactionHashes()

	var err error
	for _, hash := range hashes {
		tx, ferr := e.explorer.Transaction(ctx, hash)
		if ferr != nil {
			err = ferr
			continue
		}
		if cerr := e.acct.CacheTransaction(hash, tx); cerr != nil {
			err = cerr
		}
	}

	e.metrics.observeUpdate("txcache", err)
	return err
}
