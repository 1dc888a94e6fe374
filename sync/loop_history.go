package sync

import (
	"context"
	"sync"

	"github.com/duskwallet/dwd/account"
	"github.com/duskwallet/dwd/explorer"
)

// runHistoryLoop refreshes every watched normal address's history from
// the explorer, per §4.F's history scan loop. Growing the pocket's key
// chain when an address turns out to be used happens automatically
// inside account.ReplaceAddressHistory.
func (e *Engine) runHistoryLoop(ctx context.Context) {
	runLoop(ctx, "history", e, e.updateHistory)
}

// historyTarget names one (pocket, address) pair whose tracker value is
// stale and due for a full history refresh.
type historyTarget struct {
	pocket  string
	address string
}

func (e *Engine) updateHistory(ctx context.Context) error {
	if e.acct.IsUpdatingHistory() {
		return nil
	}

	idx := e.acct.CurrentIndex()
	if idx == nil {
		return nil
	}

	var targets []historyTarget
	for _, p := range e.acct.Pockets() {
		for addr := range p.AddressIndex {
			if h, ok := e.acct.TrackerValue(addr); ok && h >= idx.Height {
				continue
			}
			targets = append(targets, historyTarget{pocket: p.Name, address: addr})
		}
	}

	// Every per-address fetch runs concurrently, per §4.F item 3; each
	// goroutine writes the account only through its thread-safe accessors,
	// and the shared outerErr/wokeAny only while holding mu.
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outerErr error
		wokeAny  bool
	)
	for _, t := range targets {
		t := t
		wg.Add(1)
		go func() {
			defer wg.Done()

			entries, err := e.explorer.History(ctx, t.address)
			if err != nil {
				mu.Lock()
				outerErr = err
				mu.Unlock()
				return
			}

			rows := addressEntriesToRows(entries)
			if err := e.acct.ReplaceAddressHistory(t.pocket, t.address, rows); err != nil {
				mu.Lock()
				outerErr = err
				mu.Unlock()
				return
			}
			e.acct.SetTrackerValue(t.address, idx.Height)

			if len(entries) > 0 {
				mu.Lock()
				wokeAny = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	e.metrics.observeUpdate("history", outerErr)
	if outerErr != nil {
		return outerErr
	}
	if wokeAny {
		e.wake()
	}
	return nil
}

// addressEntriesToRows converts one address's explorer history into the
// batch ReplaceAddressHistory expects, linking each already-spent output
// to its spend row by position rather than by row ID (§3's flat-table
// design note). Every entry produces exactly one row up front, so an
// entry at position i and its row at rows[i] always correspond.
func addressEntriesToRows(entries []explorer.HistoryEntry) []*account.HistoryRow {
	rows := make([]*account.HistoryRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, &account.HistoryRow{
			IsOutput: entry.IsOutput,
			Hash:     entry.TxHash,
			Index:    entry.Index,
			Height:   entry.Height,
			Value:    entry.Value,
		})
	}

	for i, entry := range entries {
		if !entry.IsOutput || entry.SpendTxHash == nil {
			continue
		}
		outIdx := i
		rows = append(rows, &account.HistoryRow{
			IsOutput:     false,
			Hash:         *entry.SpendTxHash,
			Index:        entry.SpendIndex,
			Value:        -entry.Value,
			SpendOfIndex: &outIdx,
		})
	}

	return rows
}
