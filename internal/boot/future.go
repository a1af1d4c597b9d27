package boot

import (
	"context"
	"io"
	"sync"
)

// Live is a started backing service
type Live interface {
	io.Closer
}

// State is the settlement state of a Future
type State int

const (
	StatePending State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Future is the one-shot readiness result of a Handle.
// It settles at most once; later Resolve or Reject calls are ignored.
type Future struct {
	mu      sync.Mutex
	done    chan struct{}
	live    Live
	err     error
	settled bool
	discard bool
}

// NewFuture creates a pending future
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve settles the future with a live service. It returns false if the
// future was already settled, in which case the caller still owns live.
func (f *Future) Resolve(live Live) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.live = live
	discard := f.discard
	close(f.done)
	f.mu.Unlock()

	if discard && live != nil {
		_ = live.Close()
	}
	return true
}

// Reject settles the future with an error. It returns false if the future
// was already settled.
func (f *Future) Reject(err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settled {
		return false
	}
	f.settled = true
	f.err = err
	close(f.done)
	return true
}

// Done is closed once the future settles
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// State reports the current settlement state
func (f *Future) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case !f.settled:
		return StatePending
	case f.err != nil:
		return StateFailed
	default:
		return StateReady
	}
}

// Await blocks until the future settles or ctx is done
func (f *Future) Await(ctx context.Context) (Live, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.live, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Discard gives up on the result. A live service that is or becomes
// available through this future is closed.
func (f *Future) Discard() {
	f.mu.Lock()
	if !f.settled {
		f.discard = true
		f.mu.Unlock()
		return
	}
	live := f.live
	f.live = nil
	f.mu.Unlock()

	if live != nil {
		_ = live.Close()
	}
}
