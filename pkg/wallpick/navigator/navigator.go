package navigator

import (
	"errors"
	"fmt"

	"github.com/jamesainslie/wallpick/pkg/wallpick/logging"
)

// ErrStartFolder is returned by New when the starting folder cannot be
// resolved.
var ErrStartFolder = errors.New("cannot open start folder")

// DefaultHeight is the viewport height used when Options.Height is unset.
const DefaultHeight = 20

// Options configures a Navigator.
type Options struct {
	// Height is the number of rows available for entries.
	Height int

	// Formats is the set of image extensions that can be committed.
	Formats Formats

	// CanCommit reports whether an activation command is configured.
	// Without one, descending onto an image does nothing.
	CanCommit bool
}

// Navigator owns the browsing state for one interactive session.
type Navigator struct {
	fs      FS
	formats Formats
	commit  bool
	state   State
	log     *logging.Logger
}

// New resolves start and lists it. A listing failure leaves the navigator
// on an empty directory; a resolve failure is fatal.
func New(fs FS, start string, opts Options) (*Navigator, error) {
	n := &Navigator{
		fs:      fs,
		formats: opts.Formats,
		commit:  opts.CanCommit,
		log:     logging.Get("navigator"),
	}

	dir, err := fs.Resolve(start)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrStartFolder, start, err)
	}

	height := opts.Height
	if height <= 0 {
		height = DefaultHeight
	}

	n.state = State{
		Stack:   []string{dir},
		Listing: n.list(dir),
		Height:  height,
	}
	n.log.Debug("session started", "dir", dir, "entries", len(n.state.Listing), "height", height)

	return n, nil
}

// State returns a copy of the current state.
func (n *Navigator) State() State {
	s := n.state
	s.Stack = append([]string(nil), n.state.Stack...)
	s.Listing = append([]Entry(nil), n.state.Listing...)
	return s
}

// Dir returns the current directory.
func (n *Navigator) Dir() string {
	return n.state.Dir()
}

// Done reports whether the session has been quit.
func (n *Navigator) Done() bool {
	return n.state.Done
}

// Selected returns the highlighted entry, if any.
func (n *Navigator) Selected() (Entry, bool) {
	if len(n.state.Listing) == 0 {
		return Entry{}, false
	}
	return n.state.Listing[n.state.Selection], true
}

// IsImage reports whether e is a regular file with a supported image
// extension.
func (n *Navigator) IsImage(e Entry) bool {
	return e.Regular && n.formats.Contains(e.Ext)
}

// Committable reports whether descending onto e would request a commit.
func (n *Navigator) Committable(e Entry) bool {
	return n.commit && n.IsImage(e)
}

// HandleKey applies key to the navigator's own state and returns the commit
// request the transition produced, if any.
func (n *Navigator) HandleKey(key Key) *CommitRequest {
	next, req := n.Step(n.state, key)
	n.state = next
	return req
}

// Resize adopts a new viewport height and scrolls just enough to keep the
// selection visible.
func (n *Navigator) Resize(height int) {
	if height < 1 {
		height = 1
	}
	n.state.Height = height
	n.state.Top = clampTop(n.state.Top, len(n.state.Listing), height)
	keepVisible(&n.state)
}

// VisibleEntries returns the rows inside the viewport. Exactly one row is
// highlighted when the listing is non-empty.
func (n *Navigator) VisibleEntries() []Row {
	s := n.state
	end := min(s.Top+s.Height, len(s.Listing))
	if s.Top >= end {
		return nil
	}

	rows := make([]Row, 0, end-s.Top)
	for i := s.Top; i < end; i++ {
		rows = append(rows, Row{
			Entry:       s.Listing[i],
			Highlighted: i == s.Selection,
		})
	}
	return rows
}

// Step computes the state that follows s after key. s is left untouched.
// The only I/O is the directory listing done when the current directory
// changes.
func (n *Navigator) Step(s State, key Key) (State, *CommitRequest) {
	if s.Done {
		return s, nil
	}

	switch key {
	case KeyMoveDown:
		return moveDown(s), nil
	case KeyMoveUp:
		return moveUp(s), nil
	case KeyTop:
		return jump(s, 0), nil
	case KeyBottom:
		return jump(s, len(s.Listing)-1), nil
	case KeyAscend:
		return n.ascend(s), nil
	case KeyDescend:
		return n.descend(s)
	case KeyRefresh:
		return n.relist(s), nil
	case KeyQuit:
		s.Done = true
		return s, nil
	default:
		return s, nil
	}
}

func moveDown(s State) State {
	if len(s.Listing) == 0 {
		return s
	}
	if s.Selection < len(s.Listing)-1 {
		s.Selection++
		if s.Selection >= s.Top+s.Height {
			s.Top++
		}
		return s
	}
	s.Selection = 0
	s.Top = 0
	return s
}

func moveUp(s State) State {
	if len(s.Listing) == 0 {
		return s
	}
	if s.Selection > 0 {
		s.Selection--
		if s.Selection < s.Top {
			s.Top--
		}
		return s
	}
	s.Selection = len(s.Listing) - 1
	s.Top = max(0, len(s.Listing)-s.Height)
	return s
}

func jump(s State, index int) State {
	if len(s.Listing) == 0 {
		return s
	}
	s.Selection = index
	keepVisible(&s)
	return s
}

// ascend pops to the parent. The numeric selection is carried over and
// clamped; it does not point back at the folder just left.
func (n *Navigator) ascend(s State) State {
	if len(s.Stack) <= 1 {
		return s
	}
	s.Stack = append([]string(nil), s.Stack[:len(s.Stack)-1]...)
	s.Listing = n.list(s.Dir())
	clampSelection(&s)
	n.log.Debug("ascend", "dir", s.Dir(), "selection", s.Selection)
	return s
}

func (n *Navigator) descend(s State) (State, *CommitRequest) {
	if len(s.Listing) == 0 {
		return s, nil
	}
	entry := s.Listing[s.Selection]

	if entry.IsDir {
		dir, err := n.fs.Resolve(entry.Path)
		if err != nil {
			n.log.Warn("cannot enter directory", "path", entry.Path, "err", err)
			return s, nil
		}
		stack := make([]string, len(s.Stack), len(s.Stack)+1)
		copy(stack, s.Stack)
		s.Stack = append(stack, dir)
		s.Listing = n.list(dir)
		s.Selection = 0
		s.Top = 0
		n.log.Debug("descend", "dir", dir, "entries", len(s.Listing))
		return s, nil
	}

	if !n.Committable(entry) {
		n.log.Debug("not committable", "path", entry.Path, "ext", entry.Ext, "command", n.commit)
		return s, nil
	}

	path, err := n.fs.Resolve(entry.Path)
	if err != nil {
		n.log.Warn("cannot resolve image", "path", entry.Path, "err", err)
		return s, nil
	}
	n.log.Info("commit requested", "path", path)
	return s, &CommitRequest{Path: path}
}

func (n *Navigator) relist(s State) State {
	s.Listing = n.list(s.Dir())
	clampSelection(&s)
	return s
}

// list enumerates dir, treating failures as an empty directory.
func (n *Navigator) list(dir string) []Entry {
	entries, err := n.fs.Enumerate(dir)
	if err != nil {
		n.log.Warn("listing failed", "dir", dir, "err", err)
		return nil
	}
	return entries
}

// clampSelection fits Selection and Top to a freshly loaded listing.
func clampSelection(s *State) {
	if len(s.Listing) == 0 {
		s.Selection = 0
		s.Top = 0
		return
	}
	s.Selection = max(0, min(s.Selection, len(s.Listing)-1))
	s.Top = clampTop(s.Top, len(s.Listing), s.Height)
	keepVisible(s)
}

func clampTop(top, n, height int) int {
	return max(0, min(top, max(0, n-height)))
}

// keepVisible scrolls the viewport the minimum needed to show Selection.
func keepVisible(s *State) {
	if s.Selection < s.Top {
		s.Top = s.Selection
	} else if s.Selection >= s.Top+s.Height {
		s.Top = s.Selection - s.Height + 1
	}
	if s.Top < 0 {
		s.Top = 0
	}
}
