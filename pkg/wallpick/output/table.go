package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
)

// idWidth fits a full UUID.
const idWidth = 36

const ruleWidth = 100

// TableFormatter is the human-readable listing used by `wallpick history`.
type TableFormatter struct {
	// now is used for relative times; zero means time.Now.
	now time.Time
}

// Format writes the formatted output to the buffer.
func (f *TableFormatter) Format(w *bytes.Buffer, r *Result) error {
	now := f.now
	if now.IsZero() {
		now = time.Now()
	}

	fmt.Fprintf(w, "\n%-*s  %-14s  %-11s  %-6s  %s\n", idWidth, "ID", "WHEN", "MODE", "STATUS", "PATH")
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))

	for _, e := range r.Entries {
		fmt.Fprintf(w, "%-*s  %-14s  %-11s  %-6s  %s\n",
			idWidth, e.ID,
			humanize.RelTime(e.Timestamp, now, "ago", "from now"),
			e.Mode,
			status(e),
			e.Path,
		)
	}

	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
	summary := fmt.Sprintf("Showing %d entries", len(r.Entries))
	if failed := r.Failed(); failed > 0 {
		summary += fmt.Sprintf(" (%d failed)", failed)
	}
	fmt.Fprintf(w, "\n%s. Use --limit to see more.\n", summary)
	fmt.Fprintln(w, "Use 'wallpick history show <id>' for details; an ID prefix is enough.")
	return nil
}

// PlainFormatter writes aligned columns without decoration, for scripts.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tTIME\tMODE\tSTATUS\tPATH"); err != nil {
		return err
	}
	for _, e := range r.Entries {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Timestamp.Format(time.RFC3339), e.Mode, status(e), e.Path); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// CSVFormatter writes RFC 4180 CSV with a header row.
type CSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *CSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "timestamp", "mode", "status", "path", "command", "error"}); err != nil {
		return err
	}
	for _, e := range r.Entries {
		record := []string{
			e.ID,
			e.Timestamp.Format(time.RFC3339),
			string(e.Mode),
			status(e),
			e.Path,
			strings.Join(e.Command, " "),
			e.Error,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func init() {
	Register("table", func() Formatter { return &TableFormatter{} })
	Register("plain", func() Formatter { return &PlainFormatter{} })
	Register("csv", func() Formatter { return &CSVFormatter{} })
}

var (
	_ Formatter = (*TableFormatter)(nil)
	_ Formatter = (*PlainFormatter)(nil)
	_ Formatter = (*CSVFormatter)(nil)
)
