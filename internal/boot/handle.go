package boot

import (
	"context"
	"errors"
	"time"
)

// Handle wraps the startup of one backing service
type Handle interface {
	Kind() Kind
	// Start begins constructing the service and returns its readiness future
	Start(ctx context.Context) *Future
}

// StartFunc constructs a service and blocks until it is ready or fails
type StartFunc func(ctx context.Context) (Live, error)

type funcHandle struct {
	kind    Kind
	timeout time.Duration
	start   StartFunc
}

// NewHandle adapts a blocking StartFunc to a Handle. A positive timeout
// bounds the wait for readiness.
func NewHandle(kind Kind, timeout time.Duration, start StartFunc) Handle {
	return &funcHandle{kind: kind, timeout: timeout, start: start}
}

func (h *funcHandle) Kind() Kind {
	return h.kind
}

func (h *funcHandle) Start(ctx context.Context) *Future {
	f := NewFuture()

	cancel := context.CancelFunc(func() {})
	if h.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
	}

	go func() {
		defer cancel()
		live, err := h.start(ctx)
		if err != nil {
			f.Reject(&StartupFailure{Service: h.kind, Cause: err})
			return
		}
		if !f.Resolve(live) && live != nil {
			// Lost the race against the deadline
			_ = live.Close()
		}
	}()

	go func() {
		select {
		case <-f.Done():
		case <-ctx.Done():
			cause := ctx.Err()
			if errors.Is(cause, context.DeadlineExceeded) {
				cause = ErrStartupTimeout
			}
			f.Reject(&StartupFailure{Service: h.kind, Cause: cause})
		}
	}()

	return f
}
