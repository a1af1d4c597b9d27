package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodereg/internal/logging"
)

func openTestClient(t *testing.T, peers ...string) *Client {
	t.Helper()
	c, err := Open(context.Background(), Options{
		RepoPath:  t.TempDir(),
		SwarmAddr: "127.0.0.1:0",
		Peers:     peers,
		Logger:    logging.Discard(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

type recordingAnnouncer struct {
	mu   sync.Mutex
	msgs []Announcement
	err  error
}

func (a *recordingAnnouncer) Announce(ctx context.Context, msg Announcement) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msgs = append(a.msgs, msg)
	return a.err
}

func (a *recordingAnnouncer) Close() {}

func TestHashBlockFormat(t *testing.T) {
	h := HashBlock([]byte("hello"))
	assert.True(t, strings.HasPrefix(h.String(), "Qm"), "got %s", h)
	assert.Len(t, h.String(), 46)

	parsed, err := ParseHash(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	assert.Equal(t, h, HashBlock([]byte("hello")))
	assert.NotEqual(t, h, HashBlock([]byte("hello!")))
}

func TestParseHashInvalid(t *testing.T) {
	for _, s := range []string{"", "not-base58-0OIl", "3yZe7d"} {
		_, err := ParseHash(s)
		assert.ErrorIs(t, err, ErrInvalidHash, "input %q", s)
	}
}

func TestAddIdempotent(t *testing.T) {
	c := openTestClient(t)
	ctx := context.Background()

	data := []byte(`{"nodes":[{"id":1,"title":"alpha","active":true}]}`)
	first, err := c.Add(ctx, data)
	require.NoError(t, err)
	second, err := c.Add(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	got, err := c.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestGetUnknown(t *testing.T) {
	c := openTestClient(t)
	_, err := c.Get(context.Background(), HashBlock([]byte("never stored")))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddCanceledContext(t *testing.T) {
	c := openTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Add(ctx, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReplicationToPeer(t *testing.T) {
	peer := openTestClient(t)
	c := openTestClient(t, "http://"+peer.SwarmAddr().String())

	data := []byte("replicated block")
	hash, err := c.Add(context.Background(), data)
	require.NoError(t, err)

	has, err := peer.blocks.Has(hash)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestGetFallsBackToPeer(t *testing.T) {
	peer := openTestClient(t)
	data := []byte("held by peer only")
	hash, err := peer.Add(context.Background(), data)
	require.NoError(t, err)

	c := openTestClient(t, "http://"+peer.SwarmAddr().String())
	got, err := c.Get(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	has, err := c.blocks.Has(hash)
	require.NoError(t, err)
	assert.True(t, has, "fetched block should be cached locally")
}

func TestGetRejectsTamperedPeer(t *testing.T) {
	evil := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("something else"))
	}))
	defer evil.Close()

	c := openTestClient(t, evil.URL)
	_, err := c.Get(context.Background(), HashBlock([]byte("wanted")))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplicationFailureDoesNotFailAdd(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	c := openTestClient(t, down.URL)
	_, err := c.Add(context.Background(), []byte("x"))
	assert.NoError(t, err)
}

func TestSwarmPutRejectsMismatch(t *testing.T) {
	c := openTestClient(t)
	url := "http://" + c.SwarmAddr().String() + "/blocks/" + HashBlock([]byte("a")).String()

	req, err := http.NewRequest(http.MethodPut, url, strings.NewReader("b"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, err = http.Get("http://" + c.SwarmAddr().String() + "/blocks/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnnounce(t *testing.T) {
	ann := &recordingAnnouncer{err: errors.New("nats down")}
	c, err := Open(context.Background(), Options{
		SwarmAddr: "127.0.0.1:0",
		Announcer: ann,
		Logger:    logging.Discard(),
	})
	require.NoError(t, err)
	defer c.Close()

	data := []byte("announced")
	hash, err := c.Add(context.Background(), data)
	require.NoError(t, err, "announce failures are not fatal")

	ann.mu.Lock()
	defer ann.mu.Unlock()
	require.Len(t, ann.msgs, 1)
	assert.Equal(t, hash, ann.msgs[0].Hash)
	assert.Equal(t, len(data), ann.msgs[0].Size)
	assert.WithinDuration(t, time.Now(), ann.msgs[0].PublishedAt, time.Minute)
}

func TestCloseIdempotent(t *testing.T) {
	c, err := Open(context.Background(), Options{SwarmAddr: "127.0.0.1:0", Logger: logging.Discard()})
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
