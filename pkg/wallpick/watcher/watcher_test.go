package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 3 * time.Second

func startWatcher(t *testing.T, debounce time.Duration) *Watcher {
	t.Helper()
	w, err := New(debounce)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return w
}

func expectChange(t *testing.T, w *Watcher, dir string) {
	t.Helper()
	select {
	case got := <-w.Changes():
		assert.Equal(t, dir, got)
	case <-time.After(waitFor):
		t.Fatalf("no change reported for %s", dir)
	}
}

func expectQuiet(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case got := <-w.Changes():
		t.Fatalf("unexpected change for %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_ReportsCreate(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, 20*time.Millisecond)
	require.NoError(t, w.Watch(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.png"), []byte("x"), 0o644))
	expectChange(t, w, dir)
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, 100*time.Millisecond)
	require.NoError(t, w.Watch(dir))

	for _, name := range []string{"a.png", "b.png", "c.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	expectChange(t, w, dir)
	expectQuiet(t, w)
}

func TestWatcher_SwitchesDirectory(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	w := startWatcher(t, 20*time.Millisecond)

	require.NoError(t, w.Watch(first))
	require.NoError(t, w.Watch(second))
	assert.Equal(t, second, w.Dir())

	require.NoError(t, os.WriteFile(filepath.Join(first, "old.png"), []byte("x"), 0o644))
	expectQuiet(t, w)

	require.NoError(t, os.Remove(filepath.Join(first, "old.png")))
	require.NoError(t, os.WriteFile(filepath.Join(second, "new.png"), []byte("x"), 0o644))
	expectChange(t, w, second)
}

func TestWatcher_WatchMissingDirectory(t *testing.T) {
	w := startWatcher(t, 20*time.Millisecond)
	err := w.Watch(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
	assert.Empty(t, w.Dir())
}

func TestWatcher_WatchAfterClose(t *testing.T) {
	w, err := New(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounce)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Watch(t.TempDir()), ErrClosed)
}

func TestWatcher_Relevant(t *testing.T) {
	w, err := New(0)
	require.NoError(t, err)
	defer w.Close()

	dir := t.TempDir()
	require.NoError(t, w.Watch(dir))

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"create inside", fsnotify.Event{Name: filepath.Join(dir, "a.png"), Op: fsnotify.Create}, true},
		{"remove inside", fsnotify.Event{Name: filepath.Join(dir, "a.png"), Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: filepath.Join(dir, "a.png"), Op: fsnotify.Chmod}, false},
		{"directory itself", fsnotify.Event{Name: dir, Op: fsnotify.Remove}, true},
		{"elsewhere", fsnotify.Event{Name: "/elsewhere/a.png", Op: fsnotify.Create}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}
