package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoLastWallpaper is returned when restore is requested but nothing
	// has been committed yet.
	ErrNoLastWallpaper = errors.New("no wallpaper has been selected yet")

	// ErrUnknownKey is returned by Store.Set for keys that cannot be set
	// from the command line.
	ErrUnknownKey = errors.New("unknown config key")
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// HistoryConfig configures the commit history.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config is the wallpick configuration.
type Config struct {
	// Command is the activation command template, e.g. "feh --bg-fill {}".
	Command string `mapstructure:"command"`

	// ColorschemeCommand optionally runs after Command, e.g. "wal -n -i {}".
	ColorschemeCommand string `mapstructure:"colorscheme_command"`

	// LastWallpaper is the most recently committed image.
	LastWallpaper string `mapstructure:"last_wallpaper"`

	// StartFolder is browsed when no folder is passed on the command line.
	StartFolder string `mapstructure:"start_folder"`

	Formats    []string      `mapstructure:"formats"`
	IgnoreCase bool          `mapstructure:"ignore_case"`
	Ignore     []string      `mapstructure:"ignore"`
	History    HistoryConfig `mapstructure:"history"`
	Logging    LoggingConfig `mapstructure:"logging"`

	// Watch refreshes the browser listing when the folder changes on disk.
	Watch bool `mapstructure:"watch"`
}

// HasCommand reports whether an activation command is configured.
func (c *Config) HasCommand() bool {
	return strings.TrimSpace(c.Command) != ""
}

// Store is a loaded config file that can be written back.
type Store struct {
	v    *viper.Viper
	path string
	cfg  Config
}

// Load reads the config file. An empty file argument uses
// $XDG_CONFIG_HOME/wallpick/config.yaml, falling back to
// ~/.config/wallpick/config.yaml. A missing file is not an error; defaults
// apply and the file is created on the first save.
//
// Environment variables prefixed with WALLPICK_ override file values
// (e.g. WALLPICK_COMMAND).
func Load(file string) (*Store, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	path := file
	if path == "" {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, FileName)
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.AddConfigPath(dir)
	} else {
		expanded, err := ExpandPath(path)
		if err != nil {
			return nil, err
		}
		path = expanded
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("WALLPICK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	s := &Store{v: v, path: path}
	if err := s.decode(); err != nil {
		return nil, err
	}
	return s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("command", "")
	v.SetDefault("colorscheme_command", "")
	v.SetDefault("last_wallpaper", "")
	v.SetDefault("start_folder", DefaultStartFolder)
	v.SetDefault("formats", DefaultFormats)
	v.SetDefault("ignore_case", false)
	v.SetDefault("ignore", DefaultIgnore)
	v.SetDefault("watch", true)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", DefaultLogMaxSize)
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"navigator": "info",
		"wallpaper": "info",
		"tui":       "info",
	})
}

func (s *Store) decode() error {
	var cfg Config
	if err := s.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	for _, p := range []*string{&cfg.StartFolder, &cfg.History.Path, &cfg.Logging.Path, &cfg.LastWallpaper} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	s.cfg = cfg
	return nil
}

// Config returns the decoded configuration.
func (s *Store) Config() *Config {
	cfg := s.cfg
	return &cfg
}

// Path returns the file the store reads from and writes to.
func (s *Store) Path() string {
	return s.path
}

// Used reports whether a config file was actually read.
func (s *Store) Used() bool {
	return s.v.ConfigFileUsed() != "" && fileExists(s.v.ConfigFileUsed())
}

// SaveLastWallpaper records path as the last committed wallpaper and
// writes the file.
func (s *Store) SaveLastWallpaper(path string) error {
	if err := s.update("last_wallpaper", path); err != nil {
		return fmt.Errorf("saving last wallpaper: %w", err)
	}
	return nil
}

// settable lists the keys Set accepts with their value kind.
var settable = map[string]string{
	"command":                "string",
	"colorscheme_command":    "string",
	"last_wallpaper":         "string",
	"start_folder":           "string",
	"formats":                "list",
	"ignore":                 "list",
	"ignore_case":            "bool",
	"watch":                  "bool",
	"history.enabled":        "bool",
	"history.retention_days": "int",
	"logging.level":          "string",
}

// SettableKeys returns the keys accepted by Set.
func SettableKeys() []string {
	keys := make([]string, 0, len(settable))
	for k := range settable {
		keys = append(keys, k)
	}
	return keys
}

// Set parses value for key and writes the file. Lists are comma separated.
func (s *Store) Set(key, value string) error {
	kind, ok := settable[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	var v interface{} = value
	switch kind {
	case "list":
		v = splitList(value)
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		v = b
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		v = n
	}

	return s.update(key, v)
}

// update writes key into the config file and nothing else. Environment
// overrides and defaults stay out of the file, and the user's layout and
// comments are kept.
func (s *Store) update(key string, value interface{}) error {
	doc, err := readDocument(s.path)
	if err != nil {
		return err
	}
	if err := setNode(doc.Content[0], strings.Split(key, "."), value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	s.v.Set(key, value)
	return s.decode()
}

// readDocument parses path as a YAML document whose root is a mapping. A
// missing or empty file yields an empty mapping.
func readDocument(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc.Kind = yaml.DocumentNode
	}
	if len(doc.Content) == 0 {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	if doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config file %s is not a mapping", path)
	}
	return &doc, nil
}

// setNode sets the dotted key path inside mapping m, creating nested
// mappings as needed.
func setNode(m *yaml.Node, path []string, value interface{}) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value != path[0] {
			continue
		}
		child := m.Content[i+1]
		if len(path) == 1 {
			return replaceNode(child, value)
		}
		if child.Kind != yaml.MappingNode {
			*child = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		}
		return setNode(child, path[1:], value)
	}

	key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: path[0]}
	if len(path) == 1 {
		val := &yaml.Node{}
		if err := val.Encode(value); err != nil {
			return err
		}
		m.Content = append(m.Content, key, val)
		return nil
	}
	child := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	m.Content = append(m.Content, key, child)
	return setNode(child, path[1:], value)
}

// replaceNode swaps the value of old for value, keeping its comments and,
// for lists, its flow or block style.
func replaceNode(old *yaml.Node, value interface{}) error {
	var n yaml.Node
	if err := n.Encode(value); err != nil {
		return err
	}
	if n.Kind == yaml.SequenceNode && old.Kind == yaml.SequenceNode {
		n.Style = old.Style
	}
	n.HeadComment = old.HeadComment
	n.LineComment = old.LineComment
	n.FootComment = old.FootComment
	*old = n
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ConfigDir returns $XDG_CONFIG_HOME/wallpick, or ~/.config/wallpick when
// XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", AppName), nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// StateDir returns $XDG_STATE_HOME/wallpick for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// DataDir returns $XDG_DATA_HOME/wallpick for the commit history.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), AppName+".log")
}

// DefaultHistoryDir returns the default commit history directory.
func DefaultHistoryDir() string {
	return filepath.Join(DataDir(), "history")
}

// HistoryDir returns the configured history directory or the default.
func (c *Config) HistoryDir() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return DefaultHistoryDir()
}

// EnsureStateDir creates the state directory if it does not exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// WriteDefault writes a commented default config to path unless a file is
// already there. It reports whether a file was created.
func WriteDefault(path string) (bool, error) {
	if fileExists(path) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`# wallpick configuration

# Command that applies a wallpaper. {} is replaced by the image path;
# without {} the path is appended. Examples:
#   command: feh --bg-fill {}
#   command: swaybg -m fill -i {}
command: ""

# Optional command run after the wallpaper is applied, e.g. "wal -n -i {}".
colorscheme_command: ""

# Folder browsed when none is given on the command line.
start_folder: %s

# Image extensions that can be selected.
formats: [%s]

# Match extensions regardless of case (.PNG as png).
ignore_case: false

# Glob patterns for names hidden from listings, e.g. [".*"].
ignore: []

# Refresh the listing when files appear or disappear in the open folder.
watch: true

# History of applied wallpapers.
history:
  enabled: true
  # Empty means $XDG_DATA_HOME/wallpick/history
  path: ""
  retention_days: %d

logging:
  # debug, info, warn, error
  level: %s
  # Empty means $XDG_STATE_HOME/wallpick/wallpick.log
  path: ""
  rotation:
    max_size: %s
    max_age: 30
    max_backups: 5
    daily: true
  components:
    navigator: info
    wallpaper: info
    tui: info
`, DefaultStartFolder, strings.Join(DefaultFormats, ", "), DefaultRetentionDays, DefaultLogLevel, DefaultLogMaxSize)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("failed to write default config: %w", err)
	}
	return true, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
