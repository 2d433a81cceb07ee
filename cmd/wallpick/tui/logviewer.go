package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jamesainslie/wallpick/pkg/wallpick/logging"
)

// filterEntriesByLevel returns entries at or above minLevel.
func filterEntriesByLevel(entries []logging.Entry, minLevel logging.Level) []logging.Entry {
	result := make([]logging.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Level >= minLevel {
			result = append(result, e)
		}
	}
	return result
}

// clampLogScroll keeps the scroll offset within bounds.
func clampLogScroll(offset, totalEntries, visibleRows int) int {
	if totalEntries <= visibleRows {
		return 0
	}
	maxOffset := totalEntries - visibleRows
	if offset < 0 {
		return 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	return offset
}

func logLevelStyle(level logging.Level) lipgloss.Style {
	switch level {
	case logging.LevelDebug:
		return logDebugStyle
	case logging.LevelWarn:
		return logWarnStyle
	case logging.LevelError:
		return logErrorStyle
	default:
		return logInfoStyle
	}
}

func logLevelChar(level logging.Level) string {
	switch level {
	case logging.LevelDebug:
		return "D"
	case logging.LevelInfo:
		return "I"
	case logging.LevelWarn:
		return "W"
	case logging.LevelError:
		return "E"
	default:
		return "?"
	}
}

// logViewer is the state of the log pane. It reads entries from the ring
// the logging package fills in TUI mode.
type logViewer struct {
	ring        *logging.Ring
	open        bool
	filterLevel logging.Level
	offset      int

	// follow keeps the newest entries in view until the user scrolls up.
	follow bool
}

func newLogViewer(ring *logging.Ring) logViewer {
	return logViewer{ring: ring, filterLevel: logging.LevelDebug, follow: true}
}

func (v *logViewer) entries() []logging.Entry {
	if v.ring == nil {
		return nil
	}
	return filterEntriesByLevel(v.ring.Snapshot(), v.filterLevel)
}

func (v *logViewer) toggle() {
	v.open = !v.open
	v.follow = true
}

func (v *logViewer) setFilterLevel(level logging.Level) {
	v.filterLevel = level
	v.offset = 0
	v.follow = true
}

func (v *logViewer) scrollUp(visibleRows int) {
	v.offset = clampLogScroll(v.currentOffset(visibleRows)-1, len(v.entries()), visibleRows)
	v.follow = false
}

func (v *logViewer) scrollDown(visibleRows int) {
	total := len(v.entries())
	v.offset = clampLogScroll(v.currentOffset(visibleRows)+1, total, visibleRows)
	v.follow = v.offset >= total-visibleRows
}

// currentOffset is the first visible entry, accounting for follow mode.
func (v *logViewer) currentOffset(visibleRows int) int {
	total := len(v.entries())
	if v.follow {
		return clampLogScroll(total, total, visibleRows)
	}
	return clampLogScroll(v.offset, total, visibleRows)
}

// view renders the pane at the given size. Two rows go to the title and
// divider.
func (v *logViewer) view(width, height int) string {
	if height < 3 {
		return ""
	}

	var b strings.Builder

	title := titleStyle.Render(fmt.Sprintf(" Logs [%s] ", v.filterLevel))
	b.WriteString(title + mutedTextStyle.Render("[1-4] filter  [j/k] scroll  [L/esc] close"))
	b.WriteString("\n")
	b.WriteString(renderDivider(width))
	b.WriteString("\n")

	visibleRows := height - 2
	entries := v.entries()
	offset := v.currentOffset(visibleRows)

	end := min(offset+visibleRows, len(entries))
	shown := 0
	if v.ring == nil {
		b.WriteString(mutedTextStyle.Render(" logging is not available"))
		b.WriteString("\n")
		shown = 1
	} else {
		for _, e := range entries[offset:end] {
			b.WriteString(renderLogEntry(e, width))
			b.WriteString("\n")
			shown++
		}
	}
	for i := shown; i < visibleRows; i++ {
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// renderLogEntry renders "HH:MM:SS [L] component: message".
func renderLogEntry(entry logging.Entry, width int) string {
	comp := entry.Component
	if len(comp) > 10 {
		comp = comp[:10]
	}

	// time(8) + space + [L](3) + space + component + ": "
	prefixWidth := 8 + 1 + 3 + 1 + len(comp) + 2
	msgWidth := width - prefixWidth
	if msgWidth < 10 {
		msgWidth = 10
	}

	return fmt.Sprintf("%s %s %s: %s",
		logTimeStyle.Render(entry.Time.Format("15:04:05")),
		logLevelStyle(entry.Level).Render("["+logLevelChar(entry.Level)+"]"),
		logComponentStyle.Render(comp),
		truncateName(entry.Message, msgWidth))
}
