// Package sync implements the always-on synchronisation engine of §4.F: a
// reorg-aware chain-head watcher and five further control loops (stealth
// scan, history scan, mark-confirmed, transaction-cache fill, rebroadcast)
// that keep one account's cached view of the chain current. Every loop
// follows the same goroutine/select/backoff shape the teacher's SPV
// syncer uses to run its own network loop.
package sync

import (
	"context"
	"sync"
	"time"

	"github.com/duskwallet/dwd/account"
	"github.com/duskwallet/dwd/explorer"
)

// fallbackInterval is the maximum time a loop will wait between wake-ups
// before polling anyway, per §5.
const fallbackInterval = 5 * time.Second

// Engine owns the six control loops for one account.
type Engine struct {
	acct     *account.Account
	explorer explorer.Explorer

	wakeMu sync.Mutex
	wakeCh chan struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics *Metrics

	// lastRebroadcast is touched only by the rebroadcast loop's own
	// goroutine, which never runs update() reentrantly, so it needs no
	// lock of its own.
	lastRebroadcast time.Time
}

// New creates an Engine for acct, querying xplr for chain data. Call Start
// to begin running its control loops.
func New(acct *account.Account, xplr explorer.Explorer) *Engine {
	return &Engine{
		acct:     acct,
		explorer: xplr,
		wakeCh:   make(chan struct{}),
		metrics:  newMetrics(),
	}
}

// Start launches all six control loops as goroutines under a child of ctx.
// The child's context.CancelFunc is stored so Stop can request shutdown
// without the caller keeping its own reference.
func (e *Engine) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	loops := []func(context.Context){
		e.runChainHeadLoop,
		e.runHistoryLoop,
		e.runStealthLoop,
		e.runConfirmLoop,
		e.runTxCacheLoop,
		e.runRebroadcastLoop,
	}
	for _, loop := range loops {
		loop := loop
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			loop(ctx)
		}()
	}

	log.Infof("sync engine started")
}

// Explorer returns the Explorer this engine queries, so the spend
// pipeline can share the same rate-limited connection rather than
// dialing a second one.
func (e *Engine) Explorer() explorer.Explorer {
	return e.explorer
}

// Metrics returns the engine's per-loop metrics and their prometheus
// registry, for the daemon's debug HTTP listener.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Stop cancels every control loop and waits for them to exit.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
	log.Infof("sync engine stopped")
}

// wake fans new-chain-data notifications out to every loop blocked on
// waitForWake, by closing and replacing a channel — the standard Go
// broadcast idiom. Only loops already blocked in waitForWake see a given
// wake-up; a loop that is mid-update when wake is called waits for the next
// wake-up or for fallbackInterval.
func (e *Engine) wake() {
	e.wakeMu.Lock()
	close(e.wakeCh)
	e.wakeCh = make(chan struct{})
	e.wakeMu.Unlock()
}

// waitForWake blocks until the next wake() call, ctx is cancelled, or
// fallbackInterval elapses, per §5's cooperative scheduling model.
func (e *Engine) waitForWake(ctx context.Context) {
	e.wakeMu.Lock()
	ch := e.wakeCh
	e.wakeMu.Unlock()

	select {
	case <-ch:
	case <-ctx.Done():
	case <-time.After(fallbackInterval):
	}
}

// runLoop is the shared skeleton every control loop in this package runs:
// call update once, wait to be woken (or time out), repeat, with a
// backoff on error — grounded on the teacher's SPV syncer goroutine.
func runLoop(ctx context.Context, name string, e *Engine, update func(context.Context) error) {
	for {
		if err := update(ctx); err != nil {
			log.Errorf("%s loop: %v", name, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(fallbackInterval):
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		e.waitForWake(ctx)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}
