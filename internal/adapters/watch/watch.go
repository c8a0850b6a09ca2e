// Package watch re-runs a callback when a results file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/okian/minestats/pkg/logger"
	"github.com/okian/minestats/pkg/metrics"
)

const defaultDebounce = 250 * time.Millisecond

// Callback is invoked once per burst of changes to the watched file.
type Callback func(ctx context.Context, path string) error

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounce sets the quiet period after the last change before the
// callback runs.
func WithDebounce(d time.Duration) Option {
	return func(w *FileWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(l logger.Logger) Option {
	return func(w *FileWatcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// FileWatcher watches a single file. The parent directory is watched so
// that editors replacing the file atomically are still noticed.
type FileWatcher struct {
	path     string
	callback Callback
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   logger.Logger

	// mu guards timer and closed. wg counts armed timers and running
	// callbacks; it is only incremented under mu while not closed.
	mu     sync.Mutex
	timer  *time.Timer
	closed bool
	wg     sync.WaitGroup
}

// New creates a watcher for path.
func New(path string, callback Callback, opts ...Option) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &FileWatcher{
		path:     abs,
		callback: callback,
		debounce: defaultDebounce,
		watcher:  fw,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("watch")
	}
	return w, nil
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *FileWatcher) Run(ctx context.Context) {
	w.logger.Info(ctx, "watching input file", logger.String("path", w.path))
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, "watcher error", logger.Error(err))

		case <-ctx.Done():
			w.stopTimer()
			return
		}
	}
}

func (w *FileWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.disarmLocked()
	w.wg.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.fire(ctx)
	})
}

func (w *FileWatcher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.callback(ctx, w.path); err != nil {
		metrics.RecordWatcherReloadFailure()
		w.logger.Error(ctx, "reload failed", logger.String("path", w.path), logger.Error(err))
		return
	}
	metrics.RecordWatcherReload()
	w.logger.Info(ctx, "reloaded input file", logger.String("path", w.path))
}

// disarmLocked cancels a pending callback. A timer that already fired
// releases its own wg slot.
func (w *FileWatcher) disarmLocked() {
	if w.timer != nil && w.timer.Stop() {
		w.wg.Done()
	}
	w.timer = nil
}

func (w *FileWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disarmLocked()
}

// Close stops watching and waits for a running callback to return. No
// callback starts after Close returns.
func (w *FileWatcher) Close() error {
	w.mu.Lock()
	w.closed = true
	w.disarmLocked()
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
