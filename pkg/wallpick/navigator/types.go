// Package navigator holds the interactive browsing state of wallpick: the
// directory stack, the listing of the current directory, the selection and
// the viewport, together with the transition rules keys apply to them.
//
// The navigator never draws anything and never applies a wallpaper itself.
// A transition that picks an image returns a CommitRequest, and the caller
// decides what to do with it.
package navigator

import "strings"

// Key is a logical input understood by the navigator. The mapping from
// physical keys lives with the caller.
type Key int

// Logical inputs.
const (
	KeyNone Key = iota
	KeyMoveDown
	KeyMoveUp
	KeyAscend
	KeyDescend
	KeyQuit
	KeyRefresh
	KeyTop
	KeyBottom
)

// String returns the name of the key.
func (k Key) String() string {
	switch k {
	case KeyMoveDown:
		return "down"
	case KeyMoveUp:
		return "up"
	case KeyAscend:
		return "ascend"
	case KeyDescend:
		return "descend"
	case KeyQuit:
		return "quit"
	case KeyRefresh:
		return "refresh"
	case KeyTop:
		return "top"
	case KeyBottom:
		return "bottom"
	default:
		return "none"
	}
}

// Entry describes one object inside a listed directory.
type Entry struct {
	// Path is the path of the entry, built from the listed directory.
	Path string

	// Name is the base name.
	Name string

	// IsDir reports whether the entry is a directory (symlinks to
	// directories count as directories).
	IsDir bool

	// Regular reports whether the entry, or the target of a symlink, is a
	// regular file. Pipes, sockets and devices are not.
	Regular bool

	// Ext is the extension without the leading dot, as written in Name.
	Ext string

	// Size is the size in bytes for regular files, zero otherwise.
	Size int64
}

// State is the complete navigation state.
type State struct {
	// Stack holds absolute directory paths from the starting folder to the
	// current one. It is never empty.
	Stack []string

	// Listing is the content of the directory on top of Stack, in the order
	// the filesystem returned it.
	Listing []Entry

	// Selection indexes Listing. It is 0 when Listing is empty.
	Selection int

	// Top is the first listing index shown in the viewport.
	Top int

	// Height is the number of rows in the viewport, at least 1.
	Height int

	// Done is set by KeyQuit. A done state ignores further keys.
	Done bool
}

// Dir returns the current directory.
func (s State) Dir() string {
	return s.Stack[len(s.Stack)-1]
}

// CommitRequest asks the caller to apply Path as the wallpaper. Path is an
// absolute path to a regular file with a supported extension.
type CommitRequest struct {
	Path string
}

// Row is one line of the render projection.
type Row struct {
	Entry       Entry
	Highlighted bool
}

// DisplayName returns the text shown for the row. Directories get a
// trailing slash.
func (r Row) DisplayName() string {
	if r.Entry.IsDir {
		return r.Entry.Name + "/"
	}
	return r.Entry.Name
}

// DefaultFormats lists the image extensions recognised when none are
// configured.
var DefaultFormats = []string{"png", "jpg", "jpeg", "bmp", "webp"}

// Formats is a set of supported image extensions.
type Formats struct {
	exts     map[string]struct{}
	foldCase bool
}

// NewFormats builds a format set. Leading dots are stripped. Matching is
// case-sensitive unless foldCase is set, so "PNG" does not match "png" by
// default.
func NewFormats(exts []string, foldCase bool) Formats {
	f := Formats{exts: make(map[string]struct{}, len(exts)), foldCase: foldCase}
	for _, ext := range exts {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext == "" {
			continue
		}
		if foldCase {
			ext = strings.ToLower(ext)
		}
		f.exts[ext] = struct{}{}
	}
	return f
}

// Contains reports whether ext (without dot) is supported.
func (f Formats) Contains(ext string) bool {
	if ext == "" {
		return false
	}
	if f.foldCase {
		ext = strings.ToLower(ext)
	}
	_, ok := f.exts[ext]
	return ok
}

// Len returns the number of extensions in the set.
func (f Formats) Len() int {
	return len(f.exts)
}
