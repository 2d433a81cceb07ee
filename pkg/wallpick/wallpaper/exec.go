package wallpaper

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"
)

// commandTimeout bounds a single activation command.
const commandTimeout = 30 * time.Second

// placeholder is replaced by the image path in command templates.
const placeholder = "{}"

// Runner executes an external program.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct {
	// Timeout overrides the default per-command timeout.
	Timeout time.Duration
}

// Run starts name with args and waits for it. The error carries the last
// line the program wrote to stderr, if any.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = commandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

// ExpandCommand splits template with shell quoting rules and substitutes
// path for every {} token. A template without {} gets path appended.
func ExpandCommand(template, path string) ([]string, error) {
	fields, err := shlex.Split(template)
	if err != nil {
		return nil, fmt.Errorf("parsing command %q: %w", template, err)
	}
	if len(fields) == 0 {
		return nil, ErrNoCommand
	}

	substituted := false
	argv := make([]string, len(fields))
	for i, f := range fields {
		if strings.Contains(f, placeholder) {
			f = strings.ReplaceAll(f, placeholder, path)
			substituted = true
		}
		argv[i] = f
	}
	if !substituted {
		argv = append(argv, path)
	}
	return argv, nil
}
