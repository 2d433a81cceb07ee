// Package manifest records wallpaper commits as JSON files so they can be
// listed and inspected later.
package manifest

import "time"

// Mode is how a commit was started.
type Mode string

const (
	// ModeInteractive is a commit from the browser.
	ModeInteractive Mode = "interactive"
	// ModeDirect is a commit of a file passed on the command line.
	ModeDirect Mode = "direct"
	// ModeRestore re-applies the last wallpaper.
	ModeRestore Mode = "restore"
)

// Entry is a single commit attempt.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Mode      Mode      `json:"mode"`
	Path      string    `json:"path"`
	Command   []string  `json:"command,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Failed reports whether the commit returned an error.
func (e *Entry) Failed() bool {
	return e.Error != ""
}
