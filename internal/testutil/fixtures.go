package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/reqreport/internal/domain"
)

var testObjectIDCounter atomic.Int64

func init() {
	testObjectIDCounter.Store(10000)
}

// WorkItem options
type ItemOption func(*domain.WorkItem)

func WithID(id int64) ItemOption {
	return func(w *domain.WorkItem) {
		w.ID = id
		w.FormattedID = fmt.Sprintf("US%d", id)
	}
}

func WithTags(tags ...string) ItemOption {
	return func(w *domain.WorkItem) {
		w.Tags = append(w.Tags, tags...)
	}
}

func WithParent(id int64) ItemOption {
	return func(w *domain.WorkItem) {
		w.ParentID = &id
	}
}

// WithChildren sets DirectChildCount and clears the release, mirroring the
// backend convention for items that acquire children.
func WithChildren(n int) ItemOption {
	return func(w *domain.WorkItem) {
		w.DirectChildCount = n
		w.Release = nil
	}
}

func WithRelease(name string) ItemOption {
	return func(w *domain.WorkItem) {
		w.Release = &domain.ReleaseRef{Name: name}
	}
}

func WithPriority(p domain.Priority) ItemOption {
	return func(w *domain.WorkItem) {
		w.Priority = p
	}
}

func WithTestPlan(plan string) ItemOption {
	return func(w *domain.WorkItem) {
		w.TestPlan = plan
	}
}

func WithDescription(d string) ItemOption {
	return func(w *domain.WorkItem) {
		w.Description = d
	}
}

func WithProject(name string) ItemOption {
	return func(w *domain.WorkItem) {
		w.Project = name
	}
}

// NewTestItem builds a leaf work item with a fresh ObjectID.
func NewTestItem(name string, opts ...ItemOption) domain.WorkItem {
	id := testObjectIDCounter.Add(1)
	w := domain.WorkItem{
		ID:          id,
		FormattedID: fmt.Sprintf("US%d", id),
		Name:        name,
		Project:     "Test Project",
	}
	for _, opt := range opts {
		opt(&w)
	}
	return w
}

// Release options
type ReleaseOption func(*domain.Release)

func WithReleaseState(s domain.ReleaseState) ReleaseOption {
	return func(r *domain.Release) {
		r.State = s
	}
}

func WithTheme(theme string) ReleaseOption {
	return func(r *domain.Release) {
		r.Theme = theme
	}
}

func WithWindow(start, end time.Time) ReleaseOption {
	return func(r *domain.Release) {
		r.StartDate = start
		r.EndDate = end
	}
}

func WithPlannedVelocity(v float64) ReleaseOption {
	return func(r *domain.Release) {
		r.PlannedVelocity = &v
	}
}

func NewTestRelease(name string, opts ...ReleaseOption) *domain.Release {
	r := &domain.Release{
		ID:        testObjectIDCounter.Add(1),
		Name:      name,
		Version:   name,
		State:     domain.ReleasePlanning,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SplitReleaseTree returns a tagged PRD parent (id 1) with two leaf children
// in releases 2024.1 (id 2) and 2024.2 (id 3), sorted by id descending as the
// backend returns them.
func SplitReleaseTree() []domain.WorkItem {
	return []domain.WorkItem{
		NewTestItem("Export to PDF", WithID(3), WithParent(1), WithRelease("2024.2")),
		NewTestItem("Export to CSV", WithID(2), WithParent(1), WithRelease("2024.1")),
		NewTestItem("Data export", WithID(1), WithTags(string(domain.TagFunctional)), WithChildren(2),
			WithPriority(domain.PriorityMust), WithTestPlan("Export each format and diff")),
	}
}
