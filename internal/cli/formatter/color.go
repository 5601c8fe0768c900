package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/reqreport/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StateIndicator returns a colored release state label such as "● Active".
func StateIndicator(state string) string {
	switch domain.ReleaseState(state) {
	case domain.ReleaseActive:
		return StyleGreen.Render("● Active")
	case domain.ReleasePlanning:
		return StyleBlue.Render("○ Planning")
	case domain.ReleaseAccepted:
		return StyleDim.Render("✔ Accepted")
	case "":
		return StyleDim.Render("--")
	default:
		return StyleDim.Render(state)
	}
}

// PriorityStyle colors a MoSCoW value by urgency.
func PriorityStyle(p string) string {
	switch domain.Priority(p) {
	case domain.PriorityMust:
		return StyleRed.Render(p)
	case domain.PriorityShould:
		return StyleYellow.Render(p)
	case domain.PriorityCould:
		return StyleBlue.Render(p)
	case domain.PriorityWont:
		return StyleDim.Render(p)
	default:
		return p
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
