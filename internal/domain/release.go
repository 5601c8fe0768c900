package domain

import (
	"strconv"
	"time"
)

type Release struct {
	ID              int64
	Name            string
	Theme           string
	Version         string
	State           ReleaseState
	StartDate       time.Time
	EndDate         time.Time
	PlannedVelocity *float64
}

// DurationDays returns the number of calendar days covered by the release.
func (r *Release) DurationDays() int {
	if r.StartDate.IsZero() || r.EndDate.IsZero() || r.EndDate.Before(r.StartDate) {
		return 0
	}
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}

func formatObjectID(id int64) string {
	return strconv.FormatInt(id, 10)
}
