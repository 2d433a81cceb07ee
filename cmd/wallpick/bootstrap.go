package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/wallpick/pkg/wallpick/config"
	"github.com/jamesainslie/wallpick/pkg/wallpick/logging"
	"github.com/jamesainslie/wallpick/pkg/wallpick/types"
	"github.com/spf13/cobra"
)

// initializeLogging is the PersistentPreRunE hook. It creates the XDG
// directories and starts file logging. A logging failure is reported but
// does not stop the command.
func initializeLogging(cmd *cobra.Command, args []string) error {
	if err := ensureDirectories(); err != nil {
		return err
	}

	if err := logging.Init(loggingConfig(false)); err != nil {
		printWarning("logging disabled: %v", err)
	}
	return nil
}

// initTUILogging switches logging to TUI mode so entries go to the log pane
// instead of the terminal the browser draws on.
func initTUILogging() error {
	return logging.Init(loggingConfig(true))
}

// ensureDirectories creates the config, data and state directories.
func ensureDirectories() error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	for _, dir := range []string{configDir, config.DataDir(), config.StateDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// loggingConfig builds the logging setup from the config file and flags.
func loggingConfig(tuiMode bool) logging.Config {
	lc := config.LoggingConfig{
		Level: config.DefaultLogLevel,
		Rotation: config.RotationConfig{
			MaxSize:    config.DefaultLogMaxSize,
			MaxAge:     30,
			MaxBackups: 5,
			Daily:      true,
		},
	}
	if s, err := loadStore(); err == nil {
		lc = s.Config().Logging
	}

	cfg := logging.Config{
		Level:        lc.Level,
		Path:         lc.Path,
		Rotation:     parseRotationConfig(lc.Rotation),
		Components:   lc.Components,
		ConsoleLevel: "warn",
		TUIMode:      tuiMode,
	}
	if cfg.Path == "" {
		cfg.Path = config.DefaultLogPath()
	}

	switch {
	case getQuiet():
		cfg.ConsoleLevel = ""
	case getVerbose():
		cfg.Level = "debug"
		cfg.ConsoleLevel = "debug"
	}
	return cfg
}

// parseRotationConfig converts the config file rotation settings. An empty
// or invalid max_size falls back to the default.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	maxSize := logging.DefaultMaxSize
	if rc.MaxSize != "" {
		if parsed, err := types.ParseSize(rc.MaxSize); err == nil {
			maxSize = parsed
		}
	}
	return logging.RotationConfig{
		MaxSize:    maxSize,
		MaxAge:     rc.MaxAge,
		MaxBackups: rc.MaxBackups,
		Daily:      rc.Daily,
	}
}
