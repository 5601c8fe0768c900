package formatter

import (
	"fmt"
	"strings"
	"time"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// ReleaseElapsed returns the fraction of the release window that has passed
// at now, clamped to [0, 1]. ok is false when the window is unknown.
func ReleaseElapsed(start, end, now time.Time) (pct float64, ok bool) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0, false
	}
	// The end date is inclusive.
	total := end.AddDate(0, 0, 1).Sub(start)
	pct = float64(now.Sub(start)) / float64(total)
	return min(max(pct, 0), 1), true
}

// RenderProgress renders a progress bar like [████░░░░] 45%.
// Release time runs out, so the coloring reads as urgency: green <33%,
// yellow 33-66%, red >66%.
func RenderProgress(pct float64, width int) string {
	pct = min(max(pct, 0), 1)
	if width < 2 {
		width = 2
	}

	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct > 0.66:
		style = StyleRed
	case pct >= 0.33:
		style = StyleYellow
	}

	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}
