package sync

import (
	"context"
	"time"
)

// rebroadcastInterval is the minimum wall-clock gap between rebroadcast
// passes, per §4.F item 7 and scenario S6.
const rebroadcastInterval = 20 * time.Minute

// runRebroadcastLoop re-announces every pending (unconfirmed) journaled
// payment to the network, protecting against a broadcast that never
// propagated, per §4.F.
func (e *Engine) runRebroadcastLoop(ctx context.Context) {
	runLoop(ctx, "rebroadcast", e, e.updateRebroadcast)
}

func (e *Engine) updateRebroadcast(ctx context.Context) error {
	if !e.lastRebroadcast.IsZero() && time.Since(e.lastRebroadcast) < rebroadcastInterval {
		return nil
	}
	e.lastRebroadcast = time.Now()

	var err error
	for _, payment := range e.acct.PendingPayments() {
		if berr := e.explorer.Broadcast(ctx, payment.Tx); berr != nil {
			err = berr
		}
	}
	e.metrics.observeUpdate("rebroadcast", err)
	return err
}
