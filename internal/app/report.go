package app

import (
	"time"

	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/report"
	"github.com/alexanderramin/reqreport/internal/repository"
	"github.com/alexanderramin/reqreport/internal/resolver"
)

type ReportRequest struct {
	ReleaseName string
	// Tags selects the report sections, in order. Empty means PRD then NFR.
	Tags                  []domain.RequirementTag
	IncludeTestPlanColumn bool
	// FullHierarchy loads every child item so partial hierarchies can be
	// diagnosed. Slower on large workspaces.
	FullHierarchy bool
	// Strict turns hierarchy diagnostics into an error.
	Strict bool
	// Scope overrides the configured project scope when set.
	Scope *repository.ProjectScope
}

func NewReportRequest(release string) ReportRequest {
	return ReportRequest{
		ReleaseName: release,
		Tags:        domain.RequirementTags,
	}
}

// EffectiveTags returns the requested tags, or the default report order.
func (r ReportRequest) EffectiveTags() []domain.RequirementTag {
	if len(r.Tags) == 0 {
		return domain.RequirementTags
	}
	return r.Tags
}

type ReportResponse struct {
	RequestID   string                `json:"requestId"`
	Report      *report.Report        `json:"report"`
	Diagnostics []resolver.Diagnostic `json:"diagnostics,omitempty"`
	Warnings    []string              `json:"warnings,omitempty"`
	ItemsLoaded int                   `json:"itemsLoaded"`
	Duplicates  int                   `json:"duplicates,omitempty"`

	FetchDuration   time.Duration `json:"fetchDurationNs"`
	ResolveDuration time.Duration `json:"resolveDurationNs"`

	// Kept so the report can be re-assembled with different options
	// without another fetch.
	Release *domain.Release    `json:"-"`
	Results []*resolver.Result `json:"-"`
}
