package main

import (
	"context"
	"fmt"

	"github.com/jamesainslie/wallpick/pkg/wallpick/config"
	"github.com/jamesainslie/wallpick/pkg/wallpick/manifest"
	"github.com/jamesainslie/wallpick/pkg/wallpick/wallpaper"
	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Re-apply the last wallpaper",
	Long: `Re-apply the wallpaper that was chosen last, without browsing.

This is meant for session startup scripts, e.g. in ~/.xinitrc:
  wallpick restore &`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadStore()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return runRestore(ctx, s)
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}

// runRestore re-applies last_wallpaper. The config file is not rewritten.
func runRestore(ctx context.Context, s *config.Store) error {
	cfg := s.Config()
	if cfg.LastWallpaper == "" {
		return config.ErrNoLastWallpaper
	}
	if !cfg.HasCommand() {
		return wallpaper.ErrNoCommand
	}

	resolved, err := wallpaper.CheckFile(cfg.LastWallpaper, formatsFor(cfg))
	if err != nil {
		return fmt.Errorf("cannot restore last wallpaper: %w", err)
	}

	c, err := newCommitter(s)
	if err != nil {
		return err
	}
	if _, err := c.Commit(ctx, wallpaper.Request{Path: resolved, Mode: manifest.ModeRestore}); err != nil {
		return err
	}

	printVerbose("Restored %s", resolved)
	return nil
}
