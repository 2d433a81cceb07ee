package navigator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// FS is the filesystem capability the navigator needs.
type FS interface {
	// Enumerate lists dir in the order the filesystem returns it.
	Enumerate(dir string) ([]Entry, error)

	// Resolve returns the absolute, symlink-free form of path.
	Resolve(path string) (string, error)
}

// OSFS reads the real filesystem.
type OSFS struct {
	ignore []glob.Glob
}

// NewOSFS returns an OSFS that hides entries whose base name matches any of
// the given glob patterns. Invalid patterns are reported as an error.
func NewOSFS(ignore []string) (*OSFS, error) {
	fs := &OSFS{}
	for _, pattern := range ignore {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling ignore pattern %q: %w", pattern, err)
		}
		fs.ignore = append(fs.ignore, g)
	}
	return fs, nil
}

// Enumerate lists dir without sorting. os.ReadDir sorts by name, so the
// directory is read through File.ReadDir instead.
func (fs *OSFS) Enumerate(dir string) ([]Entry, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dir, err)
	}
	defer f.Close()

	dirEntries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, d := range dirEntries {
		name := d.Name()
		if fs.ignored(name) {
			continue
		}

		path := filepath.Join(dir, name)
		entry := Entry{
			Path:  path,
			Name:  name,
			IsDir: d.IsDir(),
		}

		// Symlinks are described by their target so a link to a folder can
		// be descended into and a link to an image shows the image size.
		var info os.FileInfo
		if d.Type()&os.ModeSymlink != 0 {
			info, _ = os.Stat(path)
		} else {
			info, _ = d.Info()
		}
		if info != nil {
			entry.IsDir = info.IsDir()
			entry.Regular = info.Mode().IsRegular()
		}

		if !entry.IsDir {
			entry.Ext = ExtOf(name)
			if entry.Regular {
				entry.Size = info.Size()
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// Resolve returns the absolute, symlink-free path. It fails when the path
// no longer exists.
func (fs *OSFS) Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return resolved, nil
}

func (fs *OSFS) ignored(name string) bool {
	for _, g := range fs.ignore {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// ExtOf returns the extension of name without the dot. Dotfiles such as
// ".png" have no extension.
func ExtOf(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}
