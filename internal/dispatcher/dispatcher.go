// Package dispatcher provides the HTTP request dispatcher backing service.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// ErrAlreadyServing is returned by a second Serve call
var ErrAlreadyServing = errors.New("dispatcher already serving")

// Dispatcher owns the HTTP listener and the route table. It is ready once
// the listener is bound; requests are accepted after Serve is called.
type Dispatcher struct {
	listener net.Listener
	router   *mux.Router
	server   *http.Server
	logger   logrus.FieldLogger

	mu      sync.Mutex
	serving bool
	closed  bool
}

// Listen binds addr and returns a dispatcher with an empty route table
func Listen(ctx context.Context, addr string, logger logrus.FieldLogger) (*Dispatcher, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("cannot bind port %s: %w", addr, err)
	}
	return New(ln, logger), nil
}

// New wraps an already bound listener
func New(ln net.Listener, logger logrus.FieldLogger) *Dispatcher {
	router := mux.NewRouter()
	return &Dispatcher{
		listener: ln,
		router:   router,
		logger:   logger,
		server: &http.Server{
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Router returns the route table
func (d *Dispatcher) Router() *mux.Router {
	return d.router
}

// Handle replaces the root handler, typically the router wrapped in middleware.
// It must be called before Serve.
func (d *Dispatcher) Handle(h http.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.server.Handler = h
}

// Addr returns the bound address
func (d *Dispatcher) Addr() net.Addr {
	return d.listener.Addr()
}

// Serve accepts connections until Shutdown or Close. It returns nil after a
// graceful shutdown.
func (d *Dispatcher) Serve() error {
	d.mu.Lock()
	if d.serving {
		d.mu.Unlock()
		return ErrAlreadyServing
	}
	d.serving = true
	d.mu.Unlock()

	d.logger.Infof("Dispatcher listening on %s", d.listener.Addr())
	if err := d.server.Serve(d.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	if !d.markClosed() {
		return nil
	}
	if !d.isServing() {
		return d.listener.Close()
	}
	return d.server.Shutdown(ctx)
}

// Close releases the listener immediately
func (d *Dispatcher) Close() error {
	if !d.markClosed() {
		return nil
	}
	if !d.isServing() {
		return d.listener.Close()
	}
	return d.server.Close()
}

func (d *Dispatcher) markClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.closed = true
	return true
}

func (d *Dispatcher) isServing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.serving
}
