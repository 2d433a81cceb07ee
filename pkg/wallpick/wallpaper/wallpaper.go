// Package wallpaper applies a chosen image as the desktop wallpaper by
// running the configured command, and keeps the last choice and the commit
// history up to date.
package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/wallpick/pkg/wallpick/logging"
	"github.com/jamesainslie/wallpick/pkg/wallpick/manifest"
	"github.com/jamesainslie/wallpick/pkg/wallpick/navigator"
)

var (
	// ErrNoCommand is returned when no activation command is configured.
	ErrNoCommand = errors.New("no wallpaper command configured")

	// ErrUnsupportedFormat is returned for files whose extension is not a
	// configured image format.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrNotRegularFile is returned when the path is a directory or other
	// non-regular file.
	ErrNotRegularFile = errors.New("not a regular file")
)

// Persister stores the last committed wallpaper.
type Persister interface {
	SaveLastWallpaper(path string) error
}

// Recorder appends commit attempts to the history.
type Recorder interface {
	Log(e manifest.Entry) (*manifest.Entry, error)
}

// Options configures a Committer.
type Options struct {
	// Command is the activation command template.
	Command string

	// ColorschemeCommand optionally runs after Command succeeds.
	ColorschemeCommand string

	// Persister is skipped when nil.
	Persister Persister

	// Recorder is skipped when nil.
	Recorder Recorder

	// Runner defaults to ExecRunner.
	Runner Runner
}

// Request asks for Path to become the wallpaper.
type Request struct {
	Path string
	Mode manifest.Mode
}

// Result describes a successful commit.
type Result struct {
	Path        string
	Command     []string
	Colorscheme []string
	Persisted   bool
	HistoryID   string
}

// Committer applies wallpapers.
type Committer struct {
	command     string
	colorscheme string
	persister   Persister
	recorder    Recorder
	runner      Runner
	log         *logging.Logger
}

// New creates a Committer.
func New(opts Options) *Committer {
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Committer{
		command:     opts.Command,
		colorscheme: opts.ColorschemeCommand,
		persister:   opts.Persister,
		recorder:    opts.Recorder,
		runner:      runner,
		log:         logging.Get("wallpaper"),
	}
}

// Enabled reports whether an activation command is configured.
func (c *Committer) Enabled() bool {
	return strings.TrimSpace(c.command) != ""
}

// Commit records req.Path as the last wallpaper (except when restoring),
// runs the activation command and then the colorscheme command. A failure
// to persist does not stop the command from running; all errors are
// returned joined. Every attempt is written to the history.
func (c *Committer) Commit(ctx context.Context, req Request) (*Result, error) {
	if !c.Enabled() {
		return nil, ErrNoCommand
	}

	res := &Result{Path: req.Path}
	var errs []error

	if req.Mode != manifest.ModeRestore && c.persister != nil {
		if err := c.persister.SaveLastWallpaper(req.Path); err != nil {
			c.log.Warn("could not save last wallpaper", "path", req.Path, "error", err)
			errs = append(errs, err)
		} else {
			res.Persisted = true
		}
	}

	argv, err := ExpandCommand(c.command, req.Path)
	if err == nil {
		res.Command = argv
		err = c.run(ctx, argv)
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("applying wallpaper: %w", err))
	} else if strings.TrimSpace(c.colorscheme) != "" {
		scheme, err := ExpandCommand(c.colorscheme, req.Path)
		if err == nil {
			res.Colorscheme = scheme
			err = c.run(ctx, scheme)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("applying colorscheme: %w", err))
		}
	}

	commitErr := errors.Join(errs...)
	res.HistoryID = c.record(req, res.Command, commitErr)

	if commitErr != nil {
		c.log.Error("commit failed", "path", req.Path, "mode", req.Mode, "error", commitErr)
		return res, commitErr
	}
	c.log.Info("wallpaper applied", "path", req.Path, "mode", req.Mode)
	return res, nil
}

func (c *Committer) run(ctx context.Context, argv []string) error {
	c.log.Debug("running command", "argv", strings.Join(argv, " "))
	return c.runner.Run(ctx, argv[0], argv[1:]...)
}

func (c *Committer) record(req Request, argv []string, commitErr error) string {
	if c.recorder == nil {
		return ""
	}
	e := manifest.Entry{Mode: req.Mode, Path: req.Path, Command: argv}
	if commitErr != nil {
		e.Error = commitErr.Error()
	}
	logged, err := c.recorder.Log(e)
	if err != nil {
		c.log.Warn("could not record history", "error", err)
		return ""
	}
	return logged.ID
}

// Supported reports whether path has one of the given image extensions.
func Supported(path string, formats navigator.Formats) bool {
	return formats.Contains(navigator.ExtOf(filepath.Base(path)))
}

// CheckFile resolves path to an absolute, symlink-free path and verifies it
// is a regular file with a supported extension.
func CheckFile(path string, formats navigator.Formats) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("checking %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}
	if !Supported(path, formats) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return resolved, nil
}
