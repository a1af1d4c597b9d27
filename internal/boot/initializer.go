package boot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// StartObserver receives the outcome of each service start
type StartObserver interface {
	ObserveServiceStart(service string, duration time.Duration, err error)
}

// Initializer starts all backing services concurrently
type Initializer struct {
	handles  map[Kind]Handle
	logger   logrus.FieldLogger
	observer StartObserver
	started  atomic.Bool
}

// NewInitializer creates an initializer over the given handles. A later
// handle for the same kind replaces an earlier one.
func NewInitializer(logger logrus.FieldLogger, handles ...Handle) *Initializer {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	i := &Initializer{
		handles: make(map[Kind]Handle, len(handles)),
		logger:  logger,
	}
	for _, h := range handles {
		i.handles[h.Kind()] = h
	}
	return i
}

// SetObserver sets the start observer
func (i *Initializer) SetObserver(o StartObserver) {
	i.observer = o
}

// Initialize starts every service and waits for all of them. On success the
// bundle holds exactly one live service per kind. On failure the services
// that did become ready are closed and a *BootFailure is returned.
// Initialize may only be called once.
func (i *Initializer) Initialize(ctx context.Context) (*Bundle, error) {
	if !i.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInitialized
	}

	for _, kind := range Kinds() {
		if _, ok := i.handles[kind]; !ok {
			return nil, &BootFailure{FailedService: kind, Cause: ErrServiceNotConfigured}
		}
	}

	var (
		mu    sync.Mutex
		ready = make(map[Kind]Live, len(i.handles))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range Kinds() {
		h := i.handles[kind]
		g.Go(func() error {
			start := time.Now()
			future := h.Start(gctx)
			live, err := future.Await(gctx)
			if i.observer != nil {
				i.observer.ObserveServiceStart(kind.String(), time.Since(start), err)
			}
			if err != nil {
				future.Discard()
				return &BootFailure{FailedService: kind, Cause: err}
			}

			mu.Lock()
			ready[kind] = live
			mu.Unlock()

			i.logger.WithFields(logrus.Fields{
				"service":  kind.String(),
				"duration": time.Since(start).Round(time.Millisecond).String(),
			}).Info("Service ready")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var bf *BootFailure
		if errors.As(err, &bf) {
			i.logger.WithError(bf.Cause).WithField("service", bf.FailedService.String()).Error("Service failed to start")
		}
		for kind, live := range ready {
			if cerr := live.Close(); cerr != nil {
				i.logger.WithError(cerr).WithField("service", kind.String()).Warn("Failed to close service after aborted boot")
			}
		}
		return nil, err
	}

	return &Bundle{services: ready}, nil
}
