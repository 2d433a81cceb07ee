// Package logging provides component loggers for wallpick, backed by
// charmbracelet/log and a rotating log file.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
//
//	logger := logging.Get("wallpaper")
//	logger.Info("applied", "path", "/home/user/walls/sunset.png")
//
// The TUI owns the terminal, so in TUI mode nothing is written to stderr
// and recent entries are kept in a Ring for the log pane instead.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level is a logging severity.
type Level int

// Levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

// String returns the lowercase level name.
func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "unknown"
	}
	return levelNames[l]
}

func (l Level) charm() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when a level name is not recognised.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a level name. "warning" is accepted for warn.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default level.
	Level string

	// Path is the log file. Empty uses DefaultLogPath().
	Path string

	// Rotation controls when the log file is rotated.
	Rotation RotationConfig

	// Components overrides the level per component name.
	Components map[string]string

	// ConsoleLevel mirrors entries at or above this level to stderr.
	// Empty disables console output. Ignored in TUI mode.
	ConsoleLevel string

	// TUIMode keeps recent entries in memory for the log pane and
	// disables console output.
	TUIMode bool
}

// Entry is a log record as kept for the TUI log pane.
type Entry struct {
	Time      time.Time
	Level     Level
	Component string
	Message   string
}

// Logger logs for a single component.
type Logger struct {
	file      *log.Logger
	console   *log.Logger
	component string
	level     Level
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, keyvals ...interface{}) { l.emit(LevelDebug, msg, keyvals) }

// Info logs at info level.
func (l *Logger) Info(msg string, keyvals ...interface{}) { l.emit(LevelInfo, msg, keyvals) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, keyvals ...interface{}) { l.emit(LevelWarn, msg, keyvals) }

// Error logs at error level.
func (l *Logger) Error(msg string, keyvals ...interface{}) { l.emit(LevelError, msg, keyvals) }

// With returns a logger that adds keyvals to every entry.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	child := &Logger{
		file:      l.file.With(keyvals...),
		component: l.component,
		level:     l.level,
	}
	if l.console != nil {
		child.console = l.console.With(keyvals...)
	}
	return child
}

func (l *Logger) emit(level Level, msg string, keyvals []interface{}) {
	write(l.file, level, msg, keyvals)
	if l.console != nil {
		write(l.console, level, msg, keyvals)
	}

	if level < l.level {
		return
	}
	if ring := Buffer(); ring != nil {
		ring.Push(Entry{
			Time:      time.Now(),
			Level:     level,
			Component: l.component,
			Message:   formatMessage(msg, keyvals),
		})
	}
}

func write(logger *log.Logger, level Level, msg string, keyvals []interface{}) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, keyvals...)
	case LevelInfo:
		logger.Info(msg, keyvals...)
	case LevelWarn:
		logger.Warn(msg, keyvals...)
	case LevelError:
		logger.Error(msg, keyvals...)
	}
}

// formatMessage renders keyvals after msg as key=value pairs so the log
// pane shows the same context as the file.
func formatMessage(msg string, keyvals []interface{}) string {
	if len(keyvals) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(keyvals); i += 2 {
		b.WriteString(" ")
		if i+1 < len(keyvals) {
			fmt.Fprintf(&b, "%v=%v", keyvals[i], keyvals[i+1])
		} else {
			fmt.Fprintf(&b, "%v", keyvals[i])
		}
	}
	return b.String()
}

type registry struct {
	mu          sync.RWMutex
	initialized bool
	writer      *RotatingWriter
	level       Level
	components  map[string]Level
	console     bool
	consoleLvl  Level
	ring        *Ring
	loggers     map[string]*Logger
}

var global = &registry{
	components: make(map[string]Level),
	loggers:    make(map[string]*Logger),
}

// Init configures logging. Loggers handed out earlier are rebuilt in place
// so they pick up the new settings. Calling Init again replaces the configuration.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	components := make(map[string]Level, len(cfg.Components))
	for name, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", name, err)
		}
		components[name] = parsed
	}

	var consoleLvl Level
	console := cfg.ConsoleLevel != "" && !cfg.TUIMode
	if console {
		if consoleLvl, err = ParseLevel(cfg.ConsoleLevel); err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	writer, err := NewRotatingWriter(path, cfg.Rotation)
	if err != nil {
		return fmt.Errorf("creating log writer: %w", err)
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if global.writer != nil {
		_ = global.writer.Close()
	}

	global.writer = writer
	global.level = level
	global.components = components
	global.console = console
	global.consoleLvl = consoleLvl
	global.ring = nil
	if cfg.TUIMode {
		global.ring = NewRing(DefaultRingSize)
	}
	global.initialized = true

	for name, logger := range global.loggers {
		*logger = *global.build(name)
	}
	return nil
}

// Get returns the logger for component. Before Init it discards output.
func Get(component string) *Logger {
	global.mu.RLock()
	logger, ok := global.loggers[component]
	global.mu.RUnlock()
	if ok {
		return logger
	}

	global.mu.Lock()
	defer global.mu.Unlock()
	if logger, ok := global.loggers[component]; ok {
		return logger
	}
	logger = global.build(component)
	global.loggers[component] = logger
	return logger
}

// build creates a logger for component. The caller holds r.mu.
func (r *registry) build(component string) *Logger {
	level := r.level
	if override, ok := r.components[component]; ok {
		level = override
	}

	var out io.Writer = io.Discard
	if r.initialized {
		out = r.writer
	}

	logger := &Logger{
		file: log.NewWithOptions(out, log.Options{
			Level:           level.charm(),
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		}),
		component: component,
		level:     level,
	}

	if r.initialized && r.console {
		logger.console = log.NewWithOptions(os.Stderr, log.Options{
			Level:           r.consoleLvl.charm(),
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
			Prefix:          component,
		})
	}
	return logger
}

// Close flushes and closes the log file and returns loggers to discard mode.
func Close() error {
	global.mu.Lock()
	defer global.mu.Unlock()

	if !global.initialized {
		return nil
	}

	var err error
	if global.writer != nil {
		if cerr := global.writer.Close(); cerr != nil {
			err = fmt.Errorf("closing log writer: %w", cerr)
		}
		global.writer = nil
	}

	global.initialized = false
	global.ring = nil
	global.components = make(map[string]Level)
	for name, logger := range global.loggers {
		*logger = *global.build(name)
	}
	return err
}

// Buffer returns the in-memory ring used by the TUI log pane, or nil
// outside TUI mode.
func Buffer() *Ring {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.ring
}

// DefaultLogPath returns $XDG_STATE_HOME/wallpick/wallpick.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "wallpick", "wallpick.log")
}
