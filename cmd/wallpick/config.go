package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/google/shlex"
	"github.com/jamesainslie/wallpick/pkg/wallpick/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage wallpick configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/wallpick/config.yaml (if set)
  2. ~/.config/wallpick/config.yaml

Environment variables can override config file settings using the WALLPICK_ prefix:
  WALLPICK_COMMAND="feh --bg-fill {}"
  WALLPICK_START_FOLDER=~/Pictures/walls
  WALLPICK_LOGGING_LEVEL=debug`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a single configuration value and save the file.

List values (formats, ignore) are comma separated:
  wallpick config set formats png,jpg,webp
  wallpick config set command "swaybg -m fill -i {}"`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// envOverrides lists the environment variables shown by config show.
var envOverrides = []string{
	"WALLPICK_COMMAND",
	"WALLPICK_COLORSCHEME_COMMAND",
	"WALLPICK_LAST_WALLPAPER",
	"WALLPICK_START_FOLDER",
	"WALLPICK_FORMATS",
	"WALLPICK_IGNORE_CASE",
	"WALLPICK_IGNORE",
	"WALLPICK_WATCH",
	"WALLPICK_HISTORY_ENABLED",
	"WALLPICK_HISTORY_PATH",
	"WALLPICK_HISTORY_RETENTION_DAYS",
	"WALLPICK_LOGGING_LEVEL",
	"WALLPICK_LOGGING_PATH",
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	s, err := loadStore()
	if err != nil {
		return err
	}
	writeConfig(cmd.OutOrStdout(), s)
	return nil
}

func writeConfig(out io.Writer, s *config.Store) {
	cfg := s.Config()

	if s.Used() {
		fmt.Fprintf(out, "Config file: %s\n\n", s.Path())
	} else {
		fmt.Fprintf(out, "Config file: (using defaults, no file found)\n\n")
	}

	command := cfg.Command
	if command == "" {
		command = "(not set)"
	}
	historyPath := cfg.HistoryDir()

	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintln(out, "----------------------")
	fmt.Fprintf(out, "command:                %s\n", command)
	fmt.Fprintf(out, "colorscheme_command:    %s\n", cfg.ColorschemeCommand)
	fmt.Fprintf(out, "last_wallpaper:         %s\n", cfg.LastWallpaper)
	fmt.Fprintf(out, "start_folder:           %s\n", cfg.StartFolder)
	fmt.Fprintf(out, "formats:                %v\n", cfg.Formats)
	fmt.Fprintf(out, "ignore_case:            %t\n", cfg.IgnoreCase)
	fmt.Fprintf(out, "ignore:                 %v\n", cfg.Ignore)
	fmt.Fprintf(out, "watch:                  %t\n", cfg.Watch)
	fmt.Fprintf(out, "history.enabled:        %t\n", cfg.History.Enabled)
	fmt.Fprintf(out, "history.path:           %s\n", historyPath)
	fmt.Fprintf(out, "history.retention:      %d days\n", cfg.History.RetentionDays)
	fmt.Fprintf(out, "logging.level:          %s\n", cfg.Logging.Level)

	fmt.Fprintln(out, "\nEnvironment Overrides:")
	fmt.Fprintln(out, "----------------------")
	anyOverrides := false
	for _, name := range envOverrides {
		if val := os.Getenv(name); val != "" {
			fmt.Fprintf(out, "%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Fprintln(out, "(none)")
	}
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(cmd *cobra.Command, args []string) error {
	s, err := loadStore()
	if err != nil {
		return err
	}
	if _, err := config.WriteDefault(s.Path()); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	argv, err := editorCommand(s.Path())
	if err != nil {
		return err
	}
	printVerbose("Opening %s with %s", s.Path(), argv[0])

	editorCmd := exec.Command(argv[0], argv[1:]...)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}

// editorCommand returns the argv that opens path in $VISUAL, $EDITOR or vi.
// The variable may carry arguments, e.g. EDITOR="code --wait".
func editorCommand(path string) ([]string, error) {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	argv, err := shlex.Split(editor)
	if err != nil {
		return nil, fmt.Errorf("parsing editor %q: %w", editor, err)
	}
	if len(argv) == 0 {
		argv = []string{"vi"}
	}
	return append(argv, path), nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	s, err := loadStore()
	if err != nil {
		return err
	}

	created, err := config.WriteDefault(s.Path())
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if !created {
		printInfo("Config file already exists: %s", s.Path())
		printInfo("Use 'wallpick config edit' to modify it.")
		return nil
	}

	printInfo("Created default config file: %s", s.Path())
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	s, err := loadStore()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), s.Path())
	if s.Used() {
		printVerbose("File exists")
	} else {
		printVerbose("File does not exist (will use defaults)")
	}
	return nil
}

// runConfigSet writes one key.
func runConfigSet(cmd *cobra.Command, args []string) error {
	s, err := loadStore()
	if err != nil {
		return err
	}

	if err := s.Set(args[0], args[1]); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			keys := config.SettableKeys()
			sort.Strings(keys)
			return fmt.Errorf("%w (settable keys: %s)", err, strings.Join(keys, ", "))
		}
		return err
	}

	printInfo("Set %s in %s", args[0], s.Path())
	return nil
}
