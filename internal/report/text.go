package report

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()

	// Block-level tags that should survive as line breaks.
	blockBreak = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</li>|</h[1-6]>`)
	blankRuns  = regexp.MustCompile(`\n{3,}`)
)

// PlainText reduces Rally rich text to plain text: tags are stripped,
// entities decoded and block boundaries kept as newlines.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	s = blockBreak.ReplaceAllString(s, "\n")
	s = strictPolicy.Sanitize(s)
	s = html.UnescapeString(s)

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
