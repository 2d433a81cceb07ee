package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jamesainslie/wallpick/pkg/wallpick/navigator"
	"github.com/jamesainslie/wallpick/pkg/wallpick/types"
)

// renderRows draws the visible rows, padded with blank lines to height.
func renderRows(nav *navigator.Navigator, rows []navigator.Row, width, height int) string {
	var b strings.Builder

	if len(rows) == 0 {
		b.WriteString(mutedTextStyle.Render("  (empty folder)"))
		b.WriteString("\n")
		height--
	}

	for _, row := range rows {
		b.WriteString(renderRow(nav, row, width))
		b.WriteString("\n")
	}
	for i := len(rows); i < height; i++ {
		b.WriteString("\n")
	}
	return b.String()
}

// renderRow draws one entry: cursor, name and, for files, the size.
func renderRow(nav *navigator.Navigator, row navigator.Row, width int) string {
	cursor := "  "
	if row.Highlighted {
		cursor = cursorStyle.Render("❯ ")
	}

	size := ""
	if !row.Entry.IsDir {
		size = fileSizeStyle.Render(types.FormatSize(row.Entry.Size))
	}

	nameWidth := width - 2 - lipgloss.Width(size) - 1
	if nameWidth < 4 {
		nameWidth = 4
	}
	name := truncateName(row.DisplayName(), nameWidth)

	var style lipgloss.Style
	switch {
	case row.Highlighted:
		style = selectedItemStyle
	case row.Entry.IsDir:
		style = dirStyle
	case nav.IsImage(row.Entry):
		style = imageStyle
	default:
		style = otherFileStyle
	}

	padding := nameWidth - lipgloss.Width(name)
	if padding < 0 {
		padding = 0
	}
	return cursor + style.Render(name) + strings.Repeat(" ", padding+1) + size
}
