package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jamesainslie/wallpick/cmd/wallpick/tui"
	"github.com/jamesainslie/wallpick/pkg/wallpick/config"
	"github.com/jamesainslie/wallpick/pkg/wallpick/logging"
	"github.com/jamesainslie/wallpick/pkg/wallpick/manifest"
	"github.com/jamesainslie/wallpick/pkg/wallpick/navigator"
	"github.com/jamesainslie/wallpick/pkg/wallpick/wallpaper"
	"github.com/jamesainslie/wallpick/pkg/wallpick/watcher"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	restoreFlag bool

	store    *config.Store
	storeErr error

	// newRunner builds the runner for activation commands.
	newRunner = func() wallpaper.Runner { return wallpaper.ExecRunner{} }

	rootCmd = &cobra.Command{
		Use:   "wallpick [folder|image]",
		Short: "Browse folders and pick a wallpaper",
		Long: `Wallpick is a small terminal file browser for choosing a desktop wallpaper.

Move through folders with the arrow keys or hjkl and press enter on an image
to apply it with the command from your config file. The choice is remembered
so it can be restored at login.

Examples:
  wallpick                       # Browse the configured start folder
  wallpick ~/Pictures/walls      # Browse a specific folder
  wallpick ~/walls/forest.png    # Apply an image without browsing
  wallpick --restore             # Re-apply the last wallpaper
  wallpick config set command "feh --bg-fill {}"
  wallpick history               # Show applied wallpapers`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: initializeLogging,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
		SilenceUsage: true,
		RunE:         runRoot,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/wallpick/config.yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.Flags().BoolVarP(&restoreFlag, "restore", "r", false, "re-apply the last wallpaper and exit")

	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig loads the config file named by --config or the default one.
func initConfig() {
	store, storeErr = config.Load(cfgFile)
}

// loadStore returns the loaded config, loading it if initConfig has not run.
func loadStore() (*config.Store, error) {
	if store == nil && storeErr == nil {
		initConfig()
	}
	if storeErr != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", storeErr)
	}
	return store, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// runRoot dispatches to restore, direct-file or browse mode.
func runRoot(cmd *cobra.Command, args []string) error {
	s, err := loadStore()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if restoreFlag {
		return runRestore(ctx, s)
	}

	target := s.Config().StartFolder
	if len(args) == 1 {
		target = args[0]
	}

	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		return runDirect(ctx, s, target)
	}
	return runBrowse(s, target)
}

// formatsFor builds the navigator format set from the config.
func formatsFor(cfg *config.Config) navigator.Formats {
	return navigator.NewFormats(cfg.Formats, cfg.IgnoreCase)
}

// newCommitter wires the committer to the config store and the history.
func newCommitter(s *config.Store) (*wallpaper.Committer, error) {
	cfg := s.Config()
	opts := wallpaper.Options{
		Command:            cfg.Command,
		ColorschemeCommand: cfg.ColorschemeCommand,
		Persister:          s,
		Runner:             newRunner(),
	}
	if cfg.History.Enabled {
		m, err := manifest.New(cfg.HistoryDir())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize history: %w", err)
		}
		opts.Recorder = m
	}
	return wallpaper.New(opts), nil
}

// runDirect applies a single image given on the command line.
func runDirect(ctx context.Context, s *config.Store, path string) error {
	cfg := s.Config()
	if !cfg.HasCommand() {
		return wallpaper.ErrNoCommand
	}

	resolved, err := wallpaper.CheckFile(path, formatsFor(cfg))
	if err != nil {
		return err
	}

	c, err := newCommitter(s)
	if err != nil {
		return err
	}
	if _, err := c.Commit(ctx, wallpaper.Request{Path: resolved, Mode: manifest.ModeDirect}); err != nil {
		return err
	}

	printInfo("Wallpaper set to %s", resolved)
	return nil
}

// runBrowse starts the interactive browser at dir.
func runBrowse(s *config.Store, dir string) error {
	cfg := s.Config()

	fs, err := navigator.NewOSFS(cfg.Ignore)
	if err != nil {
		return fmt.Errorf("invalid ignore pattern: %w", err)
	}

	if err := initTUILogging(); err != nil {
		printVerbose("TUI logging unavailable: %v", err)
	}

	nav, err := navigator.New(fs, dir, navigator.Options{
		Formats:   formatsFor(cfg),
		CanCommit: cfg.HasCommand(),
	})
	if err != nil {
		return err
	}

	c, err := newCommitter(s)
	if err != nil {
		return err
	}

	if !cfg.HasCommand() {
		printVerbose("No command configured; images cannot be applied. Run 'wallpick config set command ...'")
	}

	opts := tui.Options{
		Navigator:  nav,
		Committer:  c,
		Logs:       logging.Buffer(),
		HasCommand: cfg.HasCommand(),
	}
	if cfg.Watch {
		w, err := watcher.New(watcher.DefaultDebounce)
		if err != nil {
			printVerbose("Live refresh unavailable: %v", err)
		} else {
			defer func() { _ = w.Close() }()
			opts.Watcher = w
		}
	}

	return tui.Run(opts)
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printWarning prints a warning to stderr.
func printWarning(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}
