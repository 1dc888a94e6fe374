package sync

import (
	"context"

	"github.com/duskwallet/dwd/account"
	"github.com/duskwallet/dwd/explorer"
)

// runChainHeadLoop is the reorg detector: it compares the explorer's
// reported tip against the account's cached index and, when the tip has
// changed, records it and fans it out to the other loops; on a
// reorganisation it clears history first, acting as a barrier per §4.F.
func (e *Engine) runChainHeadLoop(ctx context.Context) {
	runLoop(ctx, "chainhead", e, e.updateChainHead)
}

func (e *Engine) updateChainHead(ctx context.Context) error {
	height, err := e.explorer.LastHeight(ctx)
	e.metrics.observeUpdate("chainhead", err)
	if err != nil {
		return err
	}

	hdr, err := e.explorer.BlockHeader(ctx, height)
	if err != nil {
		return err
	}

	newIndex := &account.ChainIndex{Height: hdr.Height, Hash: hdr.Hash}
	if e.acct.CompareIndexes(newIndex) {
		return nil
	}

	prev := e.acct.CurrentIndex()
	reorg := e.reorgDetected(ctx, prev, hdr)
	if reorg {
		log.Warnf("reorg detected at height %d, rebuilding history", hdr.Height)
		e.acct.BeginHistoryRebuild()
		e.acct.ClearHistory()
	}

	e.acct.SetCurrentIndex(newIndex)
	if reorg {
		e.acct.EndHistoryRebuild()
	}
	e.metrics.tipHeight.Set(float64(hdr.Height))
	e.wake()
	return nil
}

// maxReorgWalk bounds the backward header walk reorgDetected performs to
// tell a connected multi-block advance from a real reorganisation, per
// §4.F item 1.
const maxReorgWalk = 50

// reorgDetected reports whether advancing to hdr is inconsistent with the
// account's previous chain index. prev == nil means this is the very first
// observed tip, never a reorg. A shrinking or stalled height is always a
// reorg. A single-block advance is a reorg unless hdr links directly to
// prev. Otherwise it is a multi-block advance: reorgDetected walks
// backwards from hdr, one header at a time, up to maxReorgWalk steps,
// looking for an ancestor whose previous-block hash is prev's hash — if
// found, the new chain is connected to prev and this is not a reorg.
func (e *Engine) reorgDetected(ctx context.Context, prev *account.ChainIndex, hdr *explorer.BlockHeader) bool {
	if prev == nil {
		return false
	}
	if hdr.Height <= prev.Height {
		return true
	}
	if hdr.PrevHash == prev.Hash {
		return false
	}

	for height := hdr.Height - 1; height >= 0 && hdr.Height-height <= maxReorgWalk; height-- {
		ancestor, err := e.explorer.BlockHeader(ctx, height)
		if err != nil {
			return true
		}
		if ancestor.PrevHash == prev.Hash {
			return false
		}
	}
	return true
}
