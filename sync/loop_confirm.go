package sync

import "context"

// runConfirmLoop marks journaled outgoing payments confirmed once their
// transaction hash appears in a confirmed history row, per §4.F.
func (e *Engine) runConfirmLoop(ctx context.Context) {
	runLoop(ctx, "confirm", e, e.updateConfirm)
}

func (e *Engine) updateConfirm(ctx context.Context) error {
	e.acct.MarkAnyConfirmedSentPayments()
	e.metrics.observeUpdate("confirm", nil)
	return nil
}
