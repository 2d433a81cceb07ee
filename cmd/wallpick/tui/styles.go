// Package tui is the interactive wallpaper browser built on Bubble Tea, Lip
// Gloss and Bubbles. It draws what the navigator exposes and forwards keys
// to it; it holds no navigation state of its own.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the TUI.
var (
	primaryColor = lipgloss.Color("#7D56F4")
	accentColor  = lipgloss.Color("#00D9FF")

	successColor = lipgloss.Color("#28A745")
	warningColor = lipgloss.Color("#FFC107")
	dangerColor  = lipgloss.Color("#DC3545")

	mutedColor     = lipgloss.Color("#666666")
	borderColor    = lipgloss.Color("#333333")
	highlightColor = lipgloss.Color("#1A1A2E")
)

var (
	dividerStyle = lipgloss.NewStyle().
			Foreground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedTextStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorTextStyle = lipgloss.NewStyle().
			Foreground(dangerColor)

	successTextStyle = lipgloss.NewStyle().
				Foreground(successColor)

	warningTextStyle = lipgloss.NewStyle().
				Foreground(warningColor)
)

// Listing styles.
var (
	// selectedItemStyle for the highlighted row.
	selectedItemStyle = lipgloss.NewStyle().
				Background(highlightColor).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true)

	dirStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	imageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	otherFileStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	fileSizeStyle = lipgloss.NewStyle().
			Width(10).
			Align(lipgloss.Right).
			Foreground(accentColor)

	cursorStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)
)

// Log pane styles.
var (
	logTimeStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	logComponentStyle = lipgloss.NewStyle().
				Foreground(accentColor)

	logDebugStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	logInfoStyle = lipgloss.NewStyle().
			Foreground(successColor)

	logWarnStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	logErrorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)
)

// renderDivider creates a horizontal divider line.
func renderDivider(width int) string {
	return dividerStyle.Render(repeatChar('─', width))
}

// repeatChar repeats a character n times.
func repeatChar(char rune, n int) string {
	if n <= 0 {
		return ""
	}
	result := make([]rune, n)
	for i := range result {
		result[i] = char
	}
	return string(result)
}

// truncatePath truncates a path to fit within maxLen, preserving the end.
func truncatePath(path string, maxLen int) string {
	r := []rune(path)
	if len(r) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return string(r[len(r)-maxLen:])
	}
	return "..." + string(r[len(r)-(maxLen-3):])
}

// truncateName shortens a name to maxLen runes, keeping its start.
func truncateName(name string, maxLen int) string {
	r := []rune(name)
	if len(r) <= maxLen {
		return name
	}
	if maxLen <= 1 {
		return string(r[:max(maxLen, 0)])
	}
	return string(r[:maxLen-1]) + "…"
}
