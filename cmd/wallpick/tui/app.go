package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jamesainslie/wallpick/pkg/wallpick/logging"
	"github.com/jamesainslie/wallpick/pkg/wallpick/manifest"
	"github.com/jamesainslie/wallpick/pkg/wallpick/navigator"
	"github.com/jamesainslie/wallpick/pkg/wallpick/wallpaper"
)

// Committer applies a chosen image.
type Committer interface {
	Commit(ctx context.Context, req wallpaper.Request) (*wallpaper.Result, error)
}

// DirWatcher reports changes to the directory being browsed.
type DirWatcher interface {
	Watch(dir string) error
	Changes() <-chan string
	Run(ctx context.Context)
}

// Options configures the TUI application.
type Options struct {
	Navigator *navigator.Navigator
	Committer Committer

	// Logs feeds the log pane. Nil shows an empty pane.
	Logs *logging.Ring

	// HasCommand is false when no activation command is configured; the
	// status line then says how to set one.
	HasCommand bool

	// Watcher refreshes the listing when the current directory changes on
	// disk. Nil disables live refresh.
	Watcher DirWatcher
}

// Rows used by the header (title, divider) and footer (divider, status,
// help).
const (
	headerRows = 2
	footerRows = 3
)

// logTickInterval is how often the open log pane refreshes.
const logTickInterval = 500 * time.Millisecond

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// commitDoneMsg reports the outcome of a commit started by the browser.
type commitDoneMsg struct {
	path   string
	result *wallpaper.Result
	err    error
}

// logTickMsg refreshes the log pane.
type logTickMsg struct{}

// dirChangedMsg reports that dir changed on disk.
type dirChangedMsg struct {
	dir string
}

// Model is the Bubble Tea model for the browser.
type Model struct {
	nav       *navigator.Navigator
	committer Committer
	watcher   DirWatcher
	ctx       context.Context

	keys keyMap
	help help.Model
	logs logViewer

	status     string
	statusKind statusKind
	committing bool

	width  int
	height int
	log    *logging.Logger
}

// NewModel creates the browser model.
func NewModel(opts Options) Model {
	m := Model{
		nav:       opts.Navigator,
		committer: opts.Committer,
		watcher:   opts.Watcher,
		ctx:       context.Background(),
		keys:      defaultKeyMap(),
		help:      help.New(),
		logs:      newLogViewer(opts.Logs),
		width:     80,
		height:    24,
		log:       logging.Get("tui"),
	}
	if !opts.HasCommand {
		m.setStatus(statusInfo, "No wallpaper command set: run 'wallpick config set command \"feh --bg-fill {}\"'")
	}
	m.nav.Resize(m.listHeight())
	return m
}

// Init starts watching the start folder.
func (m Model) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	m.watch(m.nav.Dir())
	return m.waitForChange()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.nav.Resize(m.listHeight())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case commitDoneMsg:
		m.committing = false
		name := filepath.Base(msg.path)
		if msg.err != nil {
			m.setStatus(statusError, fmt.Sprintf("Failed to apply %s: %v", name, msg.err))
		} else {
			m.setStatus(statusSuccess, fmt.Sprintf("Wallpaper set to %s", name))
		}
		return m, nil

	case logTickMsg:
		if m.logs.open {
			return m, m.tickLogs()
		}
		return m, nil

	case dirChangedMsg:
		if msg.dir == m.nav.Dir() && !m.nav.Done() {
			m.log.Debug("directory changed, refreshing", "dir", msg.dir)
			m.nav.HandleKey(navigator.KeyRefresh)
		}
		return m, m.waitForChange()
	}

	return m, nil
}

// handleKey routes keys to the log pane when it is open and to the
// navigator otherwise.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.nav.HandleKey(navigator.KeyQuit)
		return m, tea.Quit
	}

	if m.logs.open {
		return m.handleLogKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.nav.Resize(m.listHeight())
		return m, nil
	case key.Matches(msg, m.keys.Logs):
		m.logs.toggle()
		m.nav.Resize(m.listHeight())
		return m, m.tickLogs()
	}

	k := m.keys.navigatorKey(msg)
	if k == navigator.KeyNone {
		return m, nil
	}

	dir := m.nav.Dir()
	req := m.nav.HandleKey(k)
	if m.nav.Done() {
		return m, tea.Quit
	}
	if m.nav.Dir() != dir {
		m.watch(m.nav.Dir())
	}
	if req == nil {
		return m, nil
	}
	if m.committing {
		m.setStatus(statusInfo, "Still applying the previous wallpaper...")
		return m, nil
	}

	m.committing = true
	m.setStatus(statusInfo, fmt.Sprintf("Applying %s...", filepath.Base(req.Path)))
	return m, m.commit(req.Path)
}

func (m Model) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.logPaneHeight() - 2
	switch msg.String() {
	case "L", "esc", "q":
		m.logs.toggle()
		m.nav.Resize(m.listHeight())
	case "j", "down":
		m.logs.scrollDown(rows)
	case "k", "up":
		m.logs.scrollUp(rows)
	case "1":
		m.logs.setFilterLevel(logging.LevelDebug)
	case "2":
		m.logs.setFilterLevel(logging.LevelInfo)
	case "3":
		m.logs.setFilterLevel(logging.LevelWarn)
	case "4":
		m.logs.setFilterLevel(logging.LevelError)
	}
	return m, nil
}

// commit applies path in the background and reports back with
// commitDoneMsg. Failures never touch the navigator.
func (m Model) commit(path string) tea.Cmd {
	ctx, c, log := m.ctx, m.committer, m.log
	return func() tea.Msg {
		if c == nil {
			return commitDoneMsg{path: path, err: wallpaper.ErrNoCommand}
		}
		res, err := c.Commit(ctx, wallpaper.Request{Path: path, Mode: manifest.ModeInteractive})
		if err != nil {
			log.Warn("commit failed", "path", path, "error", err)
		}
		return commitDoneMsg{path: path, result: res, err: err}
	}
}

func (m Model) watch(dir string) {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Watch(dir); err != nil {
		m.log.Warn("live refresh unavailable", "dir", dir, "error", err)
	}
}

// waitForChange blocks until the watcher reports a change.
func (m Model) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	changes := m.watcher.Changes()
	return func() tea.Msg {
		dir, ok := <-changes
		if !ok {
			return nil
		}
		return dirChangedMsg{dir: dir}
	}
}

func (m Model) tickLogs() tea.Cmd {
	return tea.Tick(logTickInterval, func(time.Time) tea.Msg {
		return logTickMsg{}
	})
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

// helpRows is the height of the help footer.
func (m Model) helpRows() int {
	if !m.help.ShowAll {
		return 1
	}
	rows := 0
	for _, group := range m.keys.FullHelp() {
		rows = max(rows, len(group))
	}
	return rows
}

func (m Model) logPaneHeight() int {
	if !m.logs.open {
		return 0
	}
	return max(m.height/3, 5)
}

// listHeight is the number of rows left for the listing.
func (m Model) listHeight() int {
	return max(m.height-headerRows-footerRows-(m.helpRows()-1)-m.logPaneHeight(), 1)
}

// View renders the browser.
func (m Model) View() string {
	if m.nav.Done() {
		return ""
	}

	state := m.nav.State()
	var b strings.Builder

	b.WriteString(renderAppHeader(state.Dir(), statsFor(m.nav, state.Listing), m.width))
	b.WriteString("\n")
	b.WriteString(renderDivider(m.width))
	b.WriteString("\n")

	b.WriteString(renderRows(m.nav, m.nav.VisibleEntries(), m.width, m.listHeight()))

	if m.logs.open {
		b.WriteString(m.logs.view(m.width, m.logPaneHeight()))
		b.WriteString("\n")
	}

	b.WriteString(renderDivider(m.width))
	b.WriteString("\n")
	b.WriteString(m.renderStatus(state))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) renderStatus(state navigator.State) string {
	var status string
	switch m.statusKind {
	case statusSuccess:
		status = successTextStyle.Render("✓ " + m.status)
	case statusError:
		status = errorTextStyle.Render("✗ " + m.status)
	default:
		if m.status != "" {
			status = warningTextStyle.Render(m.status)
		}
	}

	pos := renderPosition(state.Selection, len(state.Listing))
	gap := m.width - lipgloss.Width(status) - lipgloss.Width(pos) - 1
	if gap < 1 {
		return " " + status
	}
	return " " + status + strings.Repeat(" ", gap) + pos
}

// Run starts the browser in the alternate screen and blocks until the user
// quits. SIGINT and SIGTERM end the session like the quit key.
func Run(opts Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewModel(opts)
	m.ctx = ctx

	if opts.Watcher != nil {
		go opts.Watcher.Run(ctx)
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrInterrupted) || errors.Is(err, tea.ErrProgramKilled) {
			m.log.Info("session interrupted")
			return nil
		}
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}
