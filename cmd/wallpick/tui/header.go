package tui

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/wallpick/pkg/wallpick/navigator"
	"github.com/jamesainslie/wallpick/pkg/wallpick/types"
)

// listingStats summarises a directory listing for the header.
type listingStats struct {
	dirs      int
	images    int
	files     int
	imageSize int64
}

func statsFor(nav *navigator.Navigator, listing []navigator.Entry) listingStats {
	var st listingStats
	for _, e := range listing {
		switch {
		case e.IsDir:
			st.dirs++
		case nav.IsImage(e):
			st.images++
			st.imageSize += e.Size
		default:
			st.files++
		}
	}
	return st
}

// renderAppHeader renders the title line: app name, current directory and
// a summary of the listing.
func renderAppHeader(dir string, st listingStats, width int) string {
	appName := titleStyle.Render("WALLPICK")

	stats := fmt.Sprintf("  %s dirs  •  %s images (%s)",
		humanize.Comma(int64(st.dirs)),
		humanize.Comma(int64(st.images)),
		types.FormatSize(st.imageSize))
	if st.files > 0 {
		stats += fmt.Sprintf("  •  %s other", humanize.Comma(int64(st.files)))
	}

	// " WALLPICK  " is 11 columns.
	dirWidth := width - 11 - len([]rune(stats))
	if dirWidth < 10 {
		dirWidth = 10
	}

	return fmt.Sprintf(" %s  %s%s", appName, truncatePath(dir, dirWidth), mutedTextStyle.Render(stats))
}

// renderPosition renders "12/40" for the selection, or nothing when empty.
func renderPosition(selection, total int) string {
	if total == 0 {
		return ""
	}
	return mutedTextStyle.Render(fmt.Sprintf("%d/%d", selection+1, total))
}
