package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/alexanderramin/reqreport/internal/app"
	"github.com/alexanderramin/reqreport/internal/config"
	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/repository"
)

// tagsValue is a repeatable --tag flag that only accepts requirement tags.
type tagsValue struct {
	tags []domain.RequirementTag
}

var _ pflag.Value = (*tagsValue)(nil)

func (v *tagsValue) String() string {
	parts := make([]string, len(v.tags))
	for i, t := range v.tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

func (v *tagsValue) Set(s string) error {
	for _, part := range strings.Split(s, ",") {
		tag := strings.ToUpper(strings.TrimSpace(part))
		if !domain.ValidRequirementTags[tag] {
			return fmt.Errorf("unknown requirement tag %q (want PRD or NFR)", part)
		}
		v.tags = append(v.tags, domain.RequirementTag(tag))
	}
	return nil
}

func (v *tagsValue) Type() string { return "tag" }

// scopeFlags override the configured project scope.
type scopeFlags struct {
	project   string
	scopeUp   bool
	scopeDown bool
}

func (f *scopeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.project, "project", "", "Project to scope to (overrides config)")
	fs.BoolVar(&f.scopeUp, "scope-up", false, "Include parent projects")
	fs.BoolVar(&f.scopeDown, "scope-down", true, "Include child projects")
}

// override returns the scope to use, or nil when no scope flag was given.
func (f *scopeFlags) override(fs *pflag.FlagSet, cfg *config.Config) *repository.ProjectScope {
	if !fs.Changed("project") && !fs.Changed("scope-up") && !fs.Changed("scope-down") {
		return nil
	}
	scope := cfg.Scope()
	if fs.Changed("project") {
		scope.Project = f.project
	}
	if fs.Changed("scope-up") {
		scope.Up = f.scopeUp
	}
	if fs.Changed("scope-down") {
		scope.Down = f.scopeDown
	}
	return &scope
}

// reportFlags are shared by report and browse.
type reportFlags struct {
	scopeFlags
	tags          tagsValue
	testPlan      bool
	fullHierarchy bool
	strict        bool
}

func (f *reportFlags) register(fs *pflag.FlagSet) {
	f.scopeFlags.register(fs)
	fs.Var(&f.tags, "tag", "Requirement tag to report (PRD, NFR); repeatable")
	fs.BoolVar(&f.testPlan, "test-plan", false, "Include the test plan column")
	fs.BoolVar(&f.fullHierarchy, "full-hierarchy", false, "Load every child item so partial hierarchies are detected")
	fs.BoolVar(&f.strict, "strict", false, "Fail when the loaded hierarchy is inconsistent")
}

// request builds a report request, falling back to configured defaults for
// flags that were not given.
func (f *reportFlags) request(fs *pflag.FlagSet, cfg *config.Config, release string) app.ReportRequest {
	req := app.ReportRequest{
		ReleaseName:           release,
		Tags:                  cfg.RequirementTags(),
		IncludeTestPlanColumn: cfg.Report.IncludeTestPlanColumn,
		FullHierarchy:         cfg.Report.FullHierarchy,
		Strict:                cfg.Report.Strict,
	}
	if len(f.tags.tags) > 0 {
		req.Tags = f.tags.tags
	}
	if fs.Changed("test-plan") {
		req.IncludeTestPlanColumn = f.testPlan
	}
	if fs.Changed("full-hierarchy") {
		req.FullHierarchy = f.fullHierarchy
	}
	if fs.Changed("strict") {
		req.Strict = f.strict
	}
	req.Scope = f.override(fs, cfg)
	return req
}
