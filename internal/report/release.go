package report

import (
	"github.com/alexanderramin/reqreport/internal/domain"
)

const dateLayout = "2006-01-02"

// ReleaseSummary is the descriptor for the release header.
type ReleaseSummary struct {
	Name            string   `json:"name"`
	Theme           string   `json:"theme,omitempty"`
	Version         string   `json:"version,omitempty"`
	State           string   `json:"state,omitempty"`
	StartDate       string   `json:"startDate,omitempty"`
	EndDate         string   `json:"endDate,omitempty"`
	Days            int      `json:"days,omitempty"`
	PlannedVelocity *float64 `json:"plannedVelocity,omitempty"`
}

// SummarizeRelease flattens a release for display. The theme is reduced to
// plain text because Rally stores it as rich text.
func SummarizeRelease(r *domain.Release) ReleaseSummary {
	s := ReleaseSummary{
		Name:            r.Name,
		Theme:           PlainText(r.Theme),
		Version:         r.Version,
		State:           string(r.State),
		Days:            r.DurationDays(),
		PlannedVelocity: r.PlannedVelocity,
	}
	if !r.StartDate.IsZero() {
		s.StartDate = r.StartDate.Format(dateLayout)
	}
	if !r.EndDate.IsZero() {
		s.EndDate = r.EndDate.Format(dateLayout)
	}
	return s
}
