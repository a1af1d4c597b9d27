package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodereg/internal/logging"
)

func TestWatchDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0600))

	var calls atomic.Int32
	w := New(path, func() { calls.Add(1) }, logging.Discard()).WithDebounce(100 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// Give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("b: 1\n"), 0600))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope", "config.yaml"), func() {}, logging.Discard())
	assert.Error(t, w.Watch(context.Background()))
}
