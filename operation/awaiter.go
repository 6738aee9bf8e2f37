// Package operation provides a single-completion token for tracking
// asynchronous robot operations.
package operation

import (
	"context"
	"sync"
)

// State describes where an operation is in its lifecycle.
type State uint8

// An operation starts out pending and ends in exactly one of the two
// terminal states.
const (
	StatePending State = iota
	StateFinished
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateFinished:
		return "finished"
	case StateCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// An Awaiter tracks one asynchronous operation. It transitions exactly
// once from pending to finished or cancelled; whichever of Finish or
// Cancel runs first wins and later calls are no-ops. Completion callbacks
// registered while pending run exactly once, in registration order, on
// the goroutine that performed the transition. Registering a callback
// after completion is a no-op.
type Awaiter struct {
	mu          sync.Mutex
	state       State
	onResult    []func()
	onCancelled []func()
	done        chan struct{}
}

// NewAwaiter returns a pending Awaiter.
func NewAwaiter() *Awaiter {
	return &Awaiter{done: make(chan struct{})}
}

// State returns the current state.
func (a *Awaiter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// OnResult registers fn to run when the operation finishes successfully.
func (a *Awaiter) OnResult(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StatePending {
		return
	}
	a.onResult = append(a.onResult, fn)
}

// OnCancelled registers fn to run when the operation is cancelled.
func (a *Awaiter) OnCancelled(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StatePending {
		return
	}
	a.onCancelled = append(a.onCancelled, fn)
}

// Finish marks the operation as successfully completed and runs the
// result callbacks. It does nothing if the operation already completed.
func (a *Awaiter) Finish() {
	for _, fn := range a.transition(StateFinished) {
		fn()
	}
}

// Cancel marks the operation as cancelled and runs the cancellation
// callbacks. It does nothing if the operation already completed.
func (a *Awaiter) Cancel() {
	for _, fn := range a.transition(StateCancelled) {
		fn()
	}
}

// transition latches the terminal state and returns the callbacks to run.
// Callbacks run outside the lock so they may re-enter the Awaiter.
func (a *Awaiter) transition(to State) []func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StatePending {
		return nil
	}
	a.state = to
	var cbs []func()
	if to == StateFinished {
		cbs = a.onResult
	} else {
		cbs = a.onCancelled
	}
	a.onResult, a.onCancelled = nil, nil
	close(a.done)
	return cbs
}

// Done returns a channel that is closed once the operation completes.
func (a *Awaiter) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until the operation completes or ctx is done. It returns
// the terminal state, or the pending state and the context's error if ctx
// ended first.
func (a *Awaiter) Wait(ctx context.Context) (State, error) {
	select {
	case <-ctx.Done():
		return a.State(), ctx.Err()
	case <-a.done:
		return a.State(), nil
	}
}
