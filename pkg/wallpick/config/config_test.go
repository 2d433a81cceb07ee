package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/jamesainslie/wallpick/pkg/wallpick/navigator"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("WALLPICK_COMMAND", "")
	return home
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg := s.Config()

	if cfg.Command != "" {
		t.Errorf("Command = %q, want empty", cfg.Command)
	}
	if cfg.HasCommand() {
		t.Error("HasCommand() = true with no command")
	}
	if cfg.StartFolder != DefaultStartFolder {
		t.Errorf("StartFolder = %q, want %q", cfg.StartFolder, DefaultStartFolder)
	}
	if len(cfg.Formats) != len(DefaultFormats) {
		t.Errorf("len(Formats) = %d, want %d", len(cfg.Formats), len(DefaultFormats))
	}
	if cfg.IgnoreCase {
		t.Error("IgnoreCase = true, want false")
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if !cfg.Watch {
		t.Error("Watch = false, want true")
	}
	if cfg.History.RetentionDays != DefaultRetentionDays {
		t.Errorf("History.RetentionDays = %d, want %d", cfg.History.RetentionDays, DefaultRetentionDays)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, DefaultLogLevel)
	}
	if cfg.Logging.Rotation.MaxSize != DefaultLogMaxSize {
		t.Errorf("Logging.Rotation.MaxSize = %q", cfg.Logging.Rotation.MaxSize)
	}

	want := filepath.Join(home, ".config", AppName, FileName)
	if s.Path() != want {
		t.Errorf("Path() = %q, want %q", s.Path(), want)
	}
	if s.Used() {
		t.Error("Used() = true without a config file")
	}
}

func TestLoad_FromFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", AppName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	content := `
command: feh --bg-fill {}
colorscheme_command: wal -n -i {}
last_wallpaper: ~/walls/sunset.png
start_folder: ~/walls
formats: [png, gif]
ignore_case: true
ignore: [".*"]
watch: false
history:
  enabled: false
  retention_days: 7
logging:
  level: debug
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg := s.Config()

	if cfg.Command != "feh --bg-fill {}" {
		t.Errorf("Command = %q", cfg.Command)
	}
	if cfg.ColorschemeCommand != "wal -n -i {}" {
		t.Errorf("ColorschemeCommand = %q", cfg.ColorschemeCommand)
	}
	if cfg.LastWallpaper != filepath.Join(home, "walls", "sunset.png") {
		t.Errorf("LastWallpaper = %q, want ~ expanded", cfg.LastWallpaper)
	}
	if cfg.StartFolder != filepath.Join(home, "walls") {
		t.Errorf("StartFolder = %q, want ~ expanded", cfg.StartFolder)
	}
	if len(cfg.Formats) != 2 || cfg.Formats[1] != "gif" {
		t.Errorf("Formats = %v", cfg.Formats)
	}
	if !cfg.IgnoreCase {
		t.Error("IgnoreCase = false, want true")
	}
	if len(cfg.Ignore) != 1 || cfg.Ignore[0] != ".*" {
		t.Errorf("Ignore = %v", cfg.Ignore)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}
	if cfg.Watch {
		t.Error("Watch = true, want false")
	}
	if cfg.History.RetentionDays != 7 {
		t.Errorf("History.RetentionDays = %d", cfg.History.RetentionDays)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if !s.Used() {
		t.Error("Used() = false with a config file")
	}
}

func TestLoad_XDGConfigHome(t *testing.T) {
	isolate(t)
	xdgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdgHome)

	dir := filepath.Join(xdgHome, AppName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("command: swaybg -i\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Config().Command != "swaybg -i" {
		t.Errorf("Command = %q", s.Config().Command)
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("command: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() succeeded on invalid YAML")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("WALLPICK_COMMAND", "xwallpaper --zoom")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Config().Command != "xwallpaper --zoom" {
		t.Errorf("Command = %q, want env override", s.Config().Command)
	}
}

func TestSaveLastWallpaper(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("command", "feh --bg-scale"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.SaveLastWallpaper("/walls/forest.jpg"); err != nil {
		t.Fatalf("SaveLastWallpaper() error = %v", err)
	}
	if s.Config().LastWallpaper != "/walls/forest.jpg" {
		t.Errorf("in-memory LastWallpaper = %q", s.Config().LastWallpaper)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	cfg := reloaded.Config()
	if cfg.LastWallpaper != "/walls/forest.jpg" {
		t.Errorf("persisted LastWallpaper = %q", cfg.LastWallpaper)
	}
	if cfg.Command != "feh --bg-scale" {
		t.Errorf("persisted Command = %q", cfg.Command)
	}
}

func TestSaveLastWallpaperWritesOnlyTheSelection(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	original := "# laptop setup\ncommand: feh --bg-fill {} # used at login\nformats: [png, jpg]\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WALLPICK_COMMAND", "transient-cmd {}")

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Config().Command != "transient-cmd {}" {
		t.Fatalf("Command = %q, want env override", s.Config().Command)
	}

	if err := s.SaveLastWallpaper("/walls/x.png"); err != nil {
		t.Fatalf("SaveLastWallpaper() error = %v", err)
	}
	if err := s.Set("history.retention_days", "14"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{
		"# laptop setup",
		"command: feh --bg-fill {}",
		"# used at login",
		"formats: [png, jpg]",
		"last_wallpaper: /walls/x.png",
		"retention_days: 14",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("config file missing %q:\n%s", want, got)
		}
	}
	for _, unwanted := range []string{"transient-cmd", "components", "rotation", "start_folder", "enabled", "watch"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("config file contains %q:\n%s", unwanted, got)
		}
	}

	if s.Config().Command != "transient-cmd {}" {
		t.Errorf("in-memory Command = %q, want env override kept", s.Config().Command)
	}
	if s.Config().LastWallpaper != "/walls/x.png" {
		t.Errorf("in-memory LastWallpaper = %q", s.Config().LastWallpaper)
	}
}

func TestSetRejectsNonMappingFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("- just\n- a list\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := &Store{path: path}
	if err := s.update("command", "feh {}"); err == nil {
		t.Error("update() succeeded on a list document")
	}
}

func TestSet(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Set("formats", "png, jpg ,,webp"); err != nil {
		t.Fatalf("Set(formats) error = %v", err)
	}
	if got := s.Config().Formats; len(got) != 3 || got[1] != "jpg" {
		t.Errorf("Formats = %v", got)
	}

	if err := s.Set("ignore_case", "true"); err != nil {
		t.Fatalf("Set(ignore_case) error = %v", err)
	}
	if !s.Config().IgnoreCase {
		t.Error("IgnoreCase not set")
	}

	if err := s.Set("history.retention_days", "14"); err != nil {
		t.Fatalf("Set(history.retention_days) error = %v", err)
	}
	if s.Config().History.RetentionDays != 14 {
		t.Errorf("RetentionDays = %d", s.Config().History.RetentionDays)
	}

	if err := s.Set("ignore_case", "maybe"); err == nil {
		t.Error("Set() accepted an invalid bool")
	}
	if err := s.Set("history.retention_days", "soon"); err == nil {
		t.Error("Set() accepted an invalid int")
	}
	if err := s.Set("daemon.socket", "x"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Set(unknown) error = %v, want ErrUnknownKey", err)
	}
}

func TestSettableKeys(t *testing.T) {
	keys := SettableKeys()
	if len(keys) != len(settable) {
		t.Fatalf("SettableKeys() returned %d keys, want %d", len(keys), len(settable))
	}
}

func TestWriteDefault(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), AppName, FileName)

	created, err := WriteDefault(path)
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	if !created {
		t.Error("WriteDefault() created = false for a new file")
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of default file error = %v", err)
	}
	if len(s.Config().Formats) != len(DefaultFormats) {
		t.Errorf("Formats = %v", s.Config().Formats)
	}

	created, err = WriteDefault(path)
	if err != nil {
		t.Fatalf("second WriteDefault() error = %v", err)
	}
	if created {
		t.Error("WriteDefault() overwrote an existing file")
	}
}

func TestExpandPath(t *testing.T) {
	home := isolate(t)

	tests := []struct {
		input string
		want  string
	}{
		{"~", home},
		{"~/walls", filepath.Join(home, "walls")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"~other/walls", "~other/walls"},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := ExpandPath(tt.input)
		if err != nil {
			t.Fatalf("ExpandPath(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHistoryDir(t *testing.T) {
	cfg := &Config{}
	if cfg.HistoryDir() != DefaultHistoryDir() {
		t.Errorf("HistoryDir() = %q, want default", cfg.HistoryDir())
	}
	cfg.History.Path = "/tmp/h"
	if cfg.HistoryDir() != "/tmp/h" {
		t.Errorf("HistoryDir() = %q", cfg.HistoryDir())
	}
}

func TestDefaultFormatsMatchNavigator(t *testing.T) {
	if !slices.Equal(DefaultFormats, navigator.DefaultFormats) {
		t.Errorf("DefaultFormats = %v, want %v", DefaultFormats, navigator.DefaultFormats)
	}
}
