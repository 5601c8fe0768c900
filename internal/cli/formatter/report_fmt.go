package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/reqreport/internal/app"
	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/report"
)

const spansLegend = "* spans more than one release"

// FormatReport renders a full report pass: release box, one section per
// requirement type, then warnings and a dim footer.
func FormatReport(resp *app.ReportResponse, width int, now time.Time) string {
	var b strings.Builder

	b.WriteString(FormatReleaseSummary(resp.Report.Release, now))
	b.WriteString("\n\n")

	spans := false
	for _, s := range resp.Report.Sections {
		b.WriteString(FormatSection(s, width))
		b.WriteString("\n")
		if s.Table != nil {
			for _, r := range s.Table.Rows {
				spans = spans || r.SpansReleases
			}
		}
	}
	if spans {
		b.WriteString(Dim(spansLegend))
		b.WriteString("\n\n")
	}

	if w := FormatWarnings(resp.Warnings); w != "" {
		b.WriteString(w)
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("%s loaded in %s", Plural(resp.ItemsLoaded, "item"), resp.FetchDuration.Round(time.Millisecond))
	if resp.RequestID != "" {
		footer += "  request " + resp.RequestID
	}
	b.WriteString(Dim(footer))
	b.WriteString("\n")
	return b.String()
}

// FormatReleaseSummary renders the release header box.
func FormatReleaseSummary(s report.ReleaseSummary, now time.Time) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("%s %s", Dim("State:   "), StateIndicator(s.State)))

	start, _ := time.Parse("2006-01-02", s.StartDate)
	end, _ := time.Parse("2006-01-02", s.EndDate)
	if !start.IsZero() && !end.IsZero() {
		lines = append(lines, fmt.Sprintf("%s %s → %s %s", Dim("Window:  "),
			HumanDate(start), HumanDate(end), Dim(fmt.Sprintf("(%s, ends %s)", Plural(s.Days, "day"), RelativeDateFrom(end, now)))))
		if pct, ok := ReleaseElapsed(start, end, now); ok {
			lines = append(lines, fmt.Sprintf("%s %s", Dim("Elapsed: "), RenderProgress(pct, 20)))
		}
	} else {
		lines = append(lines, fmt.Sprintf("%s %s", Dim("Window:  "), Dim("no dates set")))
	}

	lines = append(lines, fmt.Sprintf("%s %s", Dim("Velocity:"), FormatVelocity(s.PlannedVelocity)))
	if s.Version != "" && s.Version != s.Name {
		lines = append(lines, fmt.Sprintf("%s %s", Dim("Version: "), s.Version))
	}
	if s.Theme != "" {
		lines = append(lines, "", StyleFg.Render(s.Theme))
	}

	return RenderBox("Release "+s.Name, strings.Join(lines, "\n"))
}

// FormatSection renders one requirement section as a table or, when no
// item qualified, as its empty-state message.
func FormatSection(s report.Section, width int) string {
	var b strings.Builder
	if s.Empty != nil {
		b.WriteString(Header(s.Empty.Title))
		b.WriteString("\n")
		b.WriteString(Dim(s.Empty.Message))
		b.WriteString("\n")
		return b.String()
	}
	if s.Table == nil {
		return ""
	}
	b.WriteString(Header(fmt.Sprintf("%s (%d)", s.Table.Title, len(s.Table.Rows))))
	b.WriteString("\n")
	b.WriteString(RenderReportTable(s.Table, width))
	return b.String()
}

// FormatWarnings renders hierarchy diagnostics and other warnings.
func FormatWarnings(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(StyleYellow.Render("Warnings:"))
	b.WriteString("\n")
	for _, w := range warnings {
		b.WriteString(StyleYellow.Render("  ! "))
		b.WriteString(w)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatReleases renders the release list.
func FormatReleases(releases []domain.Release) string {
	if len(releases) == 0 {
		return Dim("No releases found.") + "\n"
	}
	headers := []string{"RELEASE", "STATE", "START", "END", "THEME"}
	rows := make([][]string, 0, len(releases))
	for _, r := range releases {
		rows = append(rows, []string{
			Bold(r.Name),
			StateIndicator(string(r.State)),
			formatDate(r.StartDate),
			formatDate(r.EndDate),
			themeLine(r.Theme, 48),
		})
	}
	return RenderTable(headers, rows)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return Dim("--")
	}
	return t.Format("2006-01-02")
}

// themeLine returns the first line of a rich-text theme, cut to n runes.
func themeLine(theme string, n int) string {
	text := report.PlainText(theme)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if r := []rune(text); len(r) > n {
		text = string(r[:n-1]) + "…"
	}
	return Dim(text)
}
