package platform

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"biomorph/internal/model"
)

type RunState string

const (
	RunStateIdle    RunState = "idle"
	RunStateRunning RunState = "running"
)

var ErrInvalidPeriod = errors.New("platform: auto-evolution period must be > 0")

// AutoEvolver drives the session through timed hill-climbing steps. The
// loop rearms its timer only after the previous step has completed, so at
// most one step is ever in flight and missed firings are dropped rather
// than queued.
type AutoEvolver struct {
	session *Session

	mu     sync.Mutex
	state  RunState
	cancel context.CancelFunc
	done   chan struct{}
	onStep func(parent, chosen model.Biomorph)

	period atomic.Int64
}

func NewAutoEvolver(session *Session) *AutoEvolver {
	e := &AutoEvolver{session: session, state: RunStateIdle}
	e.period.Store(int64(time.Second))
	return e
}

// OnStep installs an observer invoked after every successful tick with the
// stepped-from parent and the advanced-to individual. Must be set before
// Start; a nil observer disables it.
func (e *AutoEvolver) OnStep(fn func(parent, chosen model.Biomorph)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onStep = fn
}

// Start launches the tick loop. Starting while already running is a no-op.
// When no individual is selected yet, a genesis individual is seeded so the
// run has a climb root.
func (e *AutoEvolver) Start(period time.Duration) error {
	if period <= 0 {
		return ErrInvalidPeriod
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == RunStateRunning {
		return nil
	}

	if _, ok := e.session.Current(); !ok {
		if _, err := e.session.Genesis(); err != nil {
			return err
		}
	}

	e.period.Store(int64(period))
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	e.state = RunStateRunning
	go e.loop(ctx, e.done, e.onStep)
	return nil
}

// Stop cancels the pending wait and blocks until the loop has exited. A
// step already in flight completes before the loop observes cancellation.
// Stopping while idle is a no-op.
func (e *AutoEvolver) Stop() {
	e.mu.Lock()
	if e.state != RunStateRunning {
		e.mu.Unlock()
		return
	}
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.state = RunStateIdle
	e.mu.Unlock()

	cancel()
	<-done
}

// SetPeriod updates the tick period. While running the new period applies
// from the next timer arm; the currently pending wait is not shortened.
func (e *AutoEvolver) SetPeriod(period time.Duration) error {
	if period <= 0 {
		return ErrInvalidPeriod
	}
	e.period.Store(int64(period))
	return nil
}

func (e *AutoEvolver) Period() time.Duration {
	return time.Duration(e.period.Load())
}

func (e *AutoEvolver) State() RunState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *AutoEvolver) loop(ctx context.Context, done chan struct{}, onStep func(parent, chosen model.Biomorph)) {
	defer close(done)

	timer := time.NewTimer(e.Period())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			parent, _ := e.session.Current()
			chosen, advanced, err := e.session.Step()
			if err != nil {
				return
			}
			if advanced && onStep != nil {
				onStep(parent, chosen)
			}
			timer.Reset(e.Period())
		}
	}
}
