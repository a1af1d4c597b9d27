// Package watcher reports changes to a single file, such as the config file.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce coalesces bursts of writes from editors
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a file for changes
type Watcher struct {
	path     string
	onChange func()
	debounce time.Duration
	logger   logrus.FieldLogger
}

// New creates a new file watcher
func New(path string, onChange func(), logger logrus.FieldLogger) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   logger,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch blocks until ctx is cancelled, calling onChange once per burst of
// writes to the file. onChange never runs concurrently with itself.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Watch the directory so replaced files (editor save) are still seen
	absPath, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	w.logger.Infof("Watching %s for changes", absPath)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	fire := func() {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		w.logger.Infof("File changed: %s", absPath)
		w.onChange()
	}

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || name != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, fire)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("Watcher error")

		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		}
	}
}
