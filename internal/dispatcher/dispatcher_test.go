package dispatcher

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodereg/internal/logging"
)

func TestListenAndServe(t *testing.T) {
	d, err := Listen(context.Background(), "127.0.0.1:0", logging.Discard())
	require.NoError(t, err)

	d.Router().HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	}).Methods(http.MethodGet)

	errCh := make(chan error, 1)
	go func() { errCh <- d.Serve() }()

	resp, err := http.Get("http://" + d.Addr().String() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(ctx))
	assert.NoError(t, <-errCh)
}

func TestListenPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, err = Listen(context.Background(), ln.Addr().String(), logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot bind port")
}

func TestHandleWrapsRouter(t *testing.T) {
	d, err := Listen(context.Background(), "127.0.0.1:0", logging.Discard())
	require.NoError(t, err)
	defer d.Close()

	d.Router().HandleFunc("/x", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	d.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Wrapped", "1")
		d.Router().ServeHTTP(w, r)
	}))
	go func() { _ = d.Serve() }()

	resp, err := http.Get("http://" + d.Addr().String() + "/x")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-Wrapped"))
}

func TestCloseBeforeServe(t *testing.T) {
	d, err := Listen(context.Background(), "127.0.0.1:0", logging.Discard())
	require.NoError(t, err)
	addr := d.Addr().String()

	require.NoError(t, d.Close())
	assert.NoError(t, d.Close())

	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	ln.Close()
}

func TestServeTwice(t *testing.T) {
	d, err := Listen(context.Background(), "127.0.0.1:0", logging.Discard())
	require.NoError(t, err)
	defer d.Close()

	go func() { _ = d.Serve() }()
	require.Eventually(t, d.isServing, time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, d.Serve(), ErrAlreadyServing)
}
