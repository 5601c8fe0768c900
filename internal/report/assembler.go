// Package report turns resolved release memberships into flat, renderable
// descriptors: one table (or empty state) per requirement type plus a
// release summary. Everything here is a pure transform.
package report

import (
	"fmt"

	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/resolver"
)

// Row is one flat report record.
type Row struct {
	FormattedID string `json:"FormattedID"`
	Name        string `json:"Name"`
	Description string `json:"Description"`
	Priority    string `json:"MoSCoW"`
	TestPlan    string `json:"TestPlan,omitempty"`

	// Metadata; never a filter criterion.
	SpansReleases bool     `json:"spansReleases"`
	Releases      []string `json:"releases"`
}

// Value returns the cell text for the named column.
func (r Row) Value(column string) string {
	switch column {
	case ColFormattedID:
		return r.FormattedID
	case ColName:
		return r.Name
	case ColDescription:
		return r.Description
	case ColPriority:
		return r.Priority
	case ColTestPlan:
		return r.TestPlan
	default:
		return ""
	}
}

type Table struct {
	Title   string   `json:"title"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// EmptyState replaces a table when no item qualified, so the sink can
// explain why instead of drawing an empty grid.
type EmptyState struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Section is exactly one of Table or Empty.
type Section struct {
	Tag   domain.RequirementTag `json:"tag"`
	Table *Table                `json:"table,omitempty"`
	Empty *EmptyState           `json:"empty,omitempty"`
}

// IsEmpty reports whether the section carries the no-matching-items state.
func (s Section) IsEmpty() bool {
	return s.Empty != nil
}

// Title returns the section heading regardless of its kind.
func (s Section) Title() string {
	if s.Table != nil {
		return s.Table.Title
	}
	if s.Empty != nil {
		return s.Empty.Title
	}
	return s.Tag.Title()
}

// Assemble builds the section for one resolved requirement tag.
func Assemble(res *resolver.Result, opts Options) Section {
	title := res.Tag.Title()
	if len(res.Members) == 0 {
		return Section{
			Tag: res.Tag,
			Empty: &EmptyState{
				Title:   title,
				Message: fmt.Sprintf("No %s found for release %q.", title, res.Release),
			},
		}
	}

	rows := make([]Row, 0, len(res.Members))
	for _, m := range res.Members {
		rows = append(rows, buildRow(m, opts))
	}
	return Section{
		Tag: res.Tag,
		Table: &Table{
			Title:   title,
			Columns: Columns(opts),
			Rows:    rows,
		},
	}
}

func buildRow(m resolver.Membership, opts Options) Row {
	row := Row{
		FormattedID:   m.Item.DisplayID(),
		Name:          m.Item.Name,
		Description:   PlainText(m.Item.Description),
		Priority:      string(m.Item.Priority),
		SpansReleases: m.SpansReleases,
		Releases:      m.Releases,
	}
	if opts.IncludeTestPlanColumn {
		row.TestPlan = PlainText(m.Item.TestPlan)
	}
	return row
}

// Report is the full set of descriptors for one pass.
type Report struct {
	Release  ReleaseSummary `json:"release"`
	Sections []Section      `json:"sections"`
}

// Build assembles every section in the order of results. Re-running it with
// different opts over the same results is how column changes re-render
// without a fetch.
func Build(release *domain.Release, results []*resolver.Result, opts Options) *Report {
	rep := &Report{Sections: make([]Section, 0, len(results))}
	if release != nil {
		rep.Release = SummarizeRelease(release)
	}
	for _, res := range results {
		rep.Sections = append(rep.Sections, Assemble(res, opts))
	}
	return rep
}

// AllEmpty reports whether no section has rows.
func (r *Report) AllEmpty() bool {
	for _, s := range r.Sections {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}
