package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/reqreport/internal/report"
)

const (
	colGap = 2

	// DefaultWidth is used when the terminal width is unknown.
	DefaultWidth = 120
	minFlexWidth = 16
)

// RenderTable renders a simple aligned table with a header separator line.
// Headers are rendered with the Header style. Columns are padded to the
// maximum width found in each column across both headers and rows.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	cols := len(headers)

	// Measure visible width so ANSI styling does not skew alignment.
	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder

	for i, h := range headers {
		b.WriteString(StyleHeader.Render(h))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", max(widths[i]-lipgloss.Width(h), 0)+colGap))
		}
	}
	b.WriteString("\n")

	writeSeparator(&b, widths)

	for _, row := range rows {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(cell)
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", max(widths[i]-lipgloss.Width(cell), 0)+colGap))
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderReportTable renders a report table within width terminal cells.
// Fixed columns keep their DisplayWidth; flexible columns share the rest.
// Wrapping columns grow rows vertically, others are cut to one line.
func RenderReportTable(t *report.Table, width int) string {
	if t == nil || len(t.Columns) == 0 {
		return ""
	}
	widths := ColumnWidths(t.Columns, width)

	var b strings.Builder

	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = cell(StyleHeader.Render(c.Title), widths[i], false, i < len(widths)-1)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, headers...))
	b.WriteString("\n")

	writeSeparator(&b, widths)

	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			text := row.Value(c.Name)
			switch c.Name {
			case report.ColFormattedID:
				if row.SpansReleases {
					text += "*"
				}
				text = StyleBlue.Render(text)
			case report.ColPriority:
				text = PriorityStyle(text)
			}
			cells[i] = cell(text, widths[i], c.WrapText, i < len(widths)-1)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	return b.String()
}

// ColumnWidths resolves each column's cell width for a table total width.
func ColumnWidths(cols []report.Column, width int) []int {
	if width <= 0 {
		width = DefaultWidth
	}
	widths := make([]int, len(cols))
	remaining := width - colGap*(len(cols)-1)
	flex := 0
	for i, c := range cols {
		if c.DisplayWidth > 0 {
			widths[i] = c.DisplayWidth
			remaining -= c.DisplayWidth
			continue
		}
		flex++
	}
	if flex == 0 {
		return widths
	}
	share := max(remaining/flex, minFlexWidth)
	for i, c := range cols {
		if c.DisplayWidth == 0 {
			widths[i] = share
		}
	}
	return widths
}

func cell(text string, width int, wrap, gap bool) string {
	style := lipgloss.NewStyle().Width(width)
	if !wrap {
		style = style.MaxHeight(1)
	}
	if gap {
		style = style.PaddingRight(colGap)
		// Width includes padding in lipgloss.
		style = style.Width(width + colGap)
	}
	return style.Render(text)
}

func writeSeparator(b *strings.Builder, widths []int) {
	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
}
