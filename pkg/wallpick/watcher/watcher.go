// Package watcher reports changes to the directory being browsed so the
// listing can be refreshed without a key press.
package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jamesainslie/wallpick/pkg/wallpick/logging"
)

// DefaultDebounce coalesces bursts such as a download writing a file.
const DefaultDebounce = 200 * time.Millisecond

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("watcher closed")

// Watcher watches a single directory at a time. Watch moves it to a new
// directory; Changes delivers the directory path after a quiet period
// following any create, remove, rename or write inside it.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	changes  chan string
	log      *logging.Logger

	mu     sync.Mutex
	dir    string
	closed bool
}

// New creates a watcher. debounce <= 0 uses DefaultDebounce.
func New(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fsw:      fsw,
		debounce: debounce,
		changes:  make(chan string, 1),
		log:      logging.Get("watcher"),
	}, nil
}

// Watch switches to dir. Watching the current directory again is a no-op.
func (w *Watcher) Watch(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if abs == w.dir {
		return nil
	}
	if w.dir != "" {
		_ = w.fsw.Remove(w.dir)
	}
	w.dir = ""
	if err := w.fsw.Add(abs); err != nil {
		w.log.Warn("failed to add watch", "path", abs, "error", err)
		return err
	}
	w.dir = abs
	w.log.Debug("watching", "path", abs)
	return nil
}

// Dir returns the watched directory, or "" when none is watched.
func (w *Watcher) Dir() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dir
}

// Changes delivers the watched directory after it changed. At most one
// notification is pending at a time.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Run is the event loop. It blocks until ctx is cancelled or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error("watcher error", "error", err)

		case <-timer.C:
			w.notify()
		}
	}
}

// relevant reports whether event touches an entry of the watched directory.
// Chmod alone does not change a listing.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	dir := w.Dir()
	return dir != "" && (filepath.Dir(event.Name) == dir || event.Name == dir)
}

func (w *Watcher) notify() {
	dir := w.Dir()
	if dir == "" {
		return
	}
	select {
	case w.changes <- dir:
	default:
	}
}

// Close stops watching. Run returns once the event channels close.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.dir = ""
	return w.fsw.Close()
}
