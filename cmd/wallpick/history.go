package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/wallpick/pkg/wallpick/config"
	"github.com/jamesainslie/wallpick/pkg/wallpick/manifest"
	"github.com/jamesainslie/wallpick/pkg/wallpick/output"
	"github.com/jamesainslie/wallpick/pkg/wallpick/types"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View applied wallpapers",
	Long: `View the history of applied wallpapers.

Every attempt to apply a wallpaper is recorded, whether it came from the
browser, a path on the command line or a restore, including failures.

Output formats (--output): table, plain, csv, json, jsonl, yaml, template.

Examples:
  wallpick history -l 5
  wallpick history -o json | jq '.entries[0].path'
  wallpick history -o template --template '{{range .Entries}}{{ago .Timestamp}} {{.Path}}{{"\n"}}{{end}}'`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details of a history entry",
	Long:  `Display a history entry. A unique prefix of the ID is enough.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long: `Remove history entries older than the retention period, or older than
--older-than when given (e.g. 7d, 2w, 3mo, 36h).`,
	RunE:  runHistoryClean,
}

var (
	historyLimit     int
	historyOutput    string
	historyTemplate  string
	historyOlderThan string
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "table",
		"output format: "+strings.Join(output.Available(), ", "))
	historyCmd.Flags().StringVar(&historyTemplate, "template", "", "Go template for --output template")
	historyCleanCmd.Flags().StringVar(&historyOlderThan, "older-than", "", "remove entries older than this age instead of the retention period")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getManifest returns the history manifest from the configured directory.
func getManifest() (*manifest.Manifest, *config.Config, error) {
	s, err := loadStore()
	if err != nil {
		return nil, nil, err
	}
	cfg := s.Config()
	m, err := manifest.New(cfg.HistoryDir())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize history: %w", err)
	}
	return m, cfg, nil
}

// runHistory lists recent entries.
func runHistory(cmd *cobra.Command, args []string) error {
	f, err := historyFormatter(historyOutput, historyTemplate)
	if err != nil {
		return err
	}

	m, _, err := getManifest()
	if err != nil {
		return err
	}

	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 && historyOutput == "table" {
		printInfo("No history entries found.")
		printInfo("Run 'wallpick' and press enter on an image to apply it.")
		return nil
	}

	return writeHistory(cmd.OutOrStdout(), f, &output.Result{Entries: entries, Dir: m.Dir()})
}

// historyFormatter looks up the formatter for name. A custom template
// implies the template format.
func historyFormatter(name, tmpl string) (output.Formatter, error) {
	if tmpl != "" {
		if name != "table" && name != "template" {
			return nil, fmt.Errorf("--template cannot be combined with --output %s", name)
		}
		return output.NewTemplateFormatter(tmpl), nil
	}
	f, err := output.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(output.Available(), ", "))
	}
	return f, nil
}

func writeHistory(out io.Writer, f output.Formatter, r *output.Result) error {
	var buf bytes.Buffer
	if err := f.Format(&buf, r); err != nil {
		return fmt.Errorf("failed to format history: %w", err)
	}
	_, err := out.Write(buf.Bytes())
	return err
}

// runHistoryShow displays a single entry.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	m, _, err := getManifest()
	if err != nil {
		return err
	}

	entry, err := m.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nHistory Entry")
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "ID:         %s\n", entry.ID)
	fmt.Fprintf(out, "Timestamp:  %s (%s)\n", entry.Timestamp.Local().Format("2006-01-02 15:04:05 MST"), humanize.Time(entry.Timestamp))
	fmt.Fprintf(out, "Mode:       %s\n", entry.Mode)
	fmt.Fprintf(out, "Path:       %s\n", entry.Path)
	if len(entry.Command) > 0 {
		fmt.Fprintf(out, "Command:    %s\n", strings.Join(entry.Command, " "))
	}
	if entry.Failed() {
		fmt.Fprintf(out, "Error:      %s\n", entry.Error)
	}
	return nil
}

// runHistoryClean removes old entries.
func runHistoryClean(cmd *cobra.Command, args []string) error {
	m, cfg, err := getManifest()
	if err != nil {
		return err
	}

	var removed int
	if historyOlderThan != "" {
		age, err := types.ParseDuration(historyOlderThan)
		if err != nil {
			return fmt.Errorf("invalid --older-than: %w", err)
		}
		printInfo("Cleaning history entries older than %s...", age)
		removed, err = m.CleanupOlderThan(age)
		if err != nil {
			return fmt.Errorf("failed to clean history: %w", err)
		}
	} else {
		retentionDays := cfg.History.RetentionDays
		if retentionDays <= 0 {
			retentionDays = config.DefaultRetentionDays
		}
		printInfo("Cleaning history entries older than %d days...", retentionDays)
		removed, err = m.Cleanup(retentionDays)
		if err != nil {
			return fmt.Errorf("failed to clean history: %w", err)
		}
	}

	printInfo("Removed %s.", pluralEntries(removed))
	return nil
}

func pluralEntries(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return humanize.Comma(int64(n)) + " entries"
}
