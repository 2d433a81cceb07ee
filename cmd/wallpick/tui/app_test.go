package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/wallpick/pkg/wallpick/manifest"
	"github.com/jamesainslie/wallpick/pkg/wallpick/navigator"
	"github.com/jamesainslie/wallpick/pkg/wallpick/wallpaper"
)

type fakeCommitter struct {
	mu   sync.Mutex
	reqs []wallpaper.Request
	err  error
}

func (c *fakeCommitter) Commit(_ context.Context, req wallpaper.Request) (*wallpaper.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reqs = append(c.reqs, req)
	if c.err != nil {
		return nil, c.err
	}
	return &wallpaper.Result{Path: req.Path}, nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// newTestModel builds a model over a real directory holding files.
func newTestModel(t *testing.T, c Committer, files ...string) (Model, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		if strings.HasSuffix(name, "/") {
			require.NoError(t, os.Mkdir(filepath.Join(dir, strings.TrimSuffix(name, "/")), 0o755))
			continue
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644))
	}

	fs, err := navigator.NewOSFS(nil)
	require.NoError(t, err)
	nav, err := navigator.New(fs, dir, navigator.Options{
		Formats:   navigator.NewFormats(navigator.DefaultFormats, false),
		CanCommit: true,
	})
	require.NoError(t, err)

	m := NewModel(Options{Navigator: nav, Committer: c, HasCommand: true})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), dir
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestWindowSizeResizesNavigator(t *testing.T) {
	m, _ := newTestModel(t, nil, "a.png")

	assert.Equal(t, m.listHeight(), m.nav.State().Height)
	assert.Equal(t, 30-headerRows-footerRows, m.listHeight())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 3})
	assert.Equal(t, 1, m.nav.State().Height, "height never drops below one row")
}

func TestMovementKeys(t *testing.T) {
	m, _ := newTestModel(t, nil, "a.png", "b.png", "c.png")

	m, _ = update(t, m, runes("j"))
	assert.Equal(t, 1, m.nav.State().Selection)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.nav.State().Selection)

	m, _ = update(t, m, runes("j"))
	assert.Equal(t, 0, m.nav.State().Selection, "moving past the end wraps")

	m, _ = update(t, m, runes("G"))
	assert.Equal(t, 2, m.nav.State().Selection)

	m, _ = update(t, m, runes("g"))
	assert.Equal(t, 0, m.nav.State().Selection)
}

func TestDescendAndAscend(t *testing.T) {
	m, dir := newTestModel(t, nil, "sub/")
	realDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, filepath.Join(realDir, "sub"), m.nav.Dir())
	assert.Contains(t, m.View(), "(empty folder)")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, realDir, m.nav.Dir())
}

func TestCommitSuccess(t *testing.T) {
	c := &fakeCommitter{}
	m, dir := newTestModel(t, c, "forest.png")
	realDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	before := m.nav.State()
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.committing)
	assert.Contains(t, m.status, "Applying forest.png")

	msg := cmd()
	done, ok := msg.(commitDoneMsg)
	require.True(t, ok, "commit command returns commitDoneMsg, got %T", msg)
	require.NoError(t, done.err)

	require.Len(t, c.reqs, 1)
	assert.Equal(t, filepath.Join(realDir, "forest.png"), c.reqs[0].Path)
	assert.Equal(t, manifest.ModeInteractive, c.reqs[0].Mode)

	m, _ = update(t, m, done)
	assert.False(t, m.committing)
	assert.Equal(t, statusSuccess, m.statusKind)
	assert.Contains(t, m.View(), "Wallpaper set to forest.png")
	assert.Equal(t, before, m.nav.State(), "a commit never moves the navigator")
}

func TestCommitFailureKeepsSession(t *testing.T) {
	c := &fakeCommitter{err: errors.New("feh: exit status 2")}
	m, _ := newTestModel(t, c, "forest.png", "lake.png")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Equal(t, statusError, m.statusKind)
	assert.Contains(t, m.status, "exit status 2")
	assert.False(t, m.nav.Done())

	m, _ = update(t, m, runes("j"))
	assert.Equal(t, 1, m.nav.State().Selection, "navigation continues after a failed commit")
}

func TestCommitWhileCommitting(t *testing.T) {
	c := &fakeCommitter{}
	m, _ := newTestModel(t, c, "forest.png")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	m, second := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, second)
	assert.Contains(t, m.status, "Still applying")
}

func TestNonImageDoesNotCommit(t *testing.T) {
	c := &fakeCommitter{}
	m, _ := newTestModel(t, c, "notes.txt")

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, c.reqs)
}

func TestQuitKeys(t *testing.T) {
	for _, msg := range []tea.KeyMsg{
		runes("q"),
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		t.Run(msg.String(), func(t *testing.T) {
			m, _ := newTestModel(t, nil, "a.png")
			m, cmd := update(t, m, msg)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.True(t, m.nav.Done())
			assert.Empty(t, m.View())
		})
	}
}

func TestUnboundKeyIsIgnored(t *testing.T) {
	m, _ := newTestModel(t, nil, "a.png", "b.png")
	before := m.nav.State()

	m, cmd := update(t, m, runes("x"))
	assert.Nil(t, cmd)
	assert.Equal(t, before, m.nav.State())
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t, nil, "a.png")
	collapsed := m.listHeight()

	m, _ = update(t, m, runes("?"))
	assert.True(t, m.help.ShowAll)
	assert.Less(t, m.listHeight(), collapsed)
	assert.Equal(t, m.listHeight(), m.nav.State().Height)
	assert.Contains(t, m.View(), "refresh")
}

func TestLogPane(t *testing.T) {
	m, _ := newTestModel(t, nil, "a.png", "b.png")
	closed := m.listHeight()

	m, cmd := update(t, m, runes("L"))
	assert.True(t, m.logs.open)
	assert.NotNil(t, cmd, "open pane schedules a refresh")
	assert.Less(t, m.listHeight(), closed)
	assert.Contains(t, m.View(), "Logs [debug]")

	// Keys go to the pane while it is open.
	m, _ = update(t, m, runes("j"))
	assert.Equal(t, 0, m.nav.State().Selection)

	m, _ = update(t, m, runes("3"))
	assert.Contains(t, m.View(), "Logs [warn]")

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.False(t, m.logs.open, "esc closes the pane instead of quitting")
	assert.False(t, m.nav.Done())
	assert.Equal(t, closed, m.listHeight())
}

func TestNoCommandStatus(t *testing.T) {
	dir := t.TempDir()
	fs, err := navigator.NewOSFS(nil)
	require.NoError(t, err)
	nav, err := navigator.New(fs, dir, navigator.Options{Formats: navigator.NewFormats(navigator.DefaultFormats, false)})
	require.NoError(t, err)

	m := NewModel(Options{Navigator: nav})
	assert.Contains(t, m.status, "No wallpaper command set")
}

func TestViewListsEntries(t *testing.T) {
	m, _ := newTestModel(t, nil, "forest.png", "notes.txt", "more/")
	view := m.View()

	assert.Contains(t, view, "WALLPICK")
	assert.Contains(t, view, "forest.png")
	assert.Contains(t, view, "notes.txt")
	assert.Contains(t, view, "more/")
	assert.Contains(t, view, "1 images")
	assert.Contains(t, view, "1/3")
}

type fakeWatcher struct {
	watched []string
	changes chan string
	err     error
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{changes: make(chan string, 1)}
}

func (w *fakeWatcher) Watch(dir string) error {
	w.watched = append(w.watched, dir)
	return w.err
}

func (w *fakeWatcher) Changes() <-chan string { return w.changes }

func (w *fakeWatcher) Run(context.Context) {}

func TestWatcherFollowsCurrentDirectory(t *testing.T) {
	m, dir := newTestModel(t, nil, "sub/")
	w := newFakeWatcher()
	m.watcher = w

	cmd := m.Init()
	require.NotNil(t, cmd)
	require.Len(t, w.watched, 1)
	assert.Equal(t, m.nav.Dir(), w.watched[0])

	m, _ = update(t, m, runes("j"))
	assert.Len(t, w.watched, 1, "moving within a folder keeps the watch")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, w.watched, 2)
	assert.Equal(t, m.nav.Dir(), w.watched[1])

	_, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	require.Len(t, w.watched, 3)
	realDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, realDir, w.watched[2])
}

func TestDirChangedRefreshesListing(t *testing.T) {
	m, dir := newTestModel(t, nil, "a.png")
	w := newFakeWatcher()
	m.watcher = w
	require.Len(t, m.nav.State().Listing, 1)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), []byte("data"), 0o644))

	w.changes <- m.nav.Dir()
	msg := m.waitForChange()()
	require.IsType(t, dirChangedMsg{}, msg)

	m, cmd := update(t, m, msg)
	assert.Len(t, m.nav.State().Listing, 2)
	assert.NotNil(t, cmd, "keeps waiting for further changes")

	require.NoError(t, os.Remove(filepath.Join(dir, "a.png")))
	m, _ = update(t, m, dirChangedMsg{dir: "/some/other/dir"})
	assert.Len(t, m.nav.State().Listing, 2, "changes to other folders are ignored")
}

func TestWatcherErrorIsNotFatal(t *testing.T) {
	m, _ := newTestModel(t, nil, "sub/")
	w := newFakeWatcher()
	w.err = errors.New("too many watches")
	m.watcher = w

	assert.NotNil(t, m.Init())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, strings.HasSuffix(m.nav.Dir(), "sub"))
}

func TestNoWatcher(t *testing.T) {
	m, _ := newTestModel(t, nil, "a.png")
	assert.Nil(t, m.Init())
	assert.Nil(t, m.waitForChange())
}
