package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/reqreport/internal/app"
	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/rally"
	"github.com/alexanderramin/reqreport/internal/report"
	"github.com/alexanderramin/reqreport/internal/repository"
	"github.com/alexanderramin/reqreport/internal/resolver"
	"github.com/alexanderramin/reqreport/internal/telemetry"
	"github.com/alexanderramin/reqreport/internal/testutil"
)

var defaultScope = repository.ProjectScope{Project: "Online Store", Down: true}

func newTestReportService(b repository.Backend, observers ...UseCaseObserver) ReportService {
	return NewReportService(b, ReportConfig{Scope: defaultScope, Metrics: telemetry.New()}, observers...)
}

func releases(names ...string) []*domain.Release {
	out := make([]*domain.Release, len(names))
	for i, n := range names {
		out[i] = testutil.NewTestRelease(n)
	}
	return out
}

func TestGenerate_ParentSpanningReleases(t *testing.T) {
	b := newFakeBackend(testutil.SplitReleaseTree(), releases("2024.1", "2024.2", "2024.3")...)
	svc := newTestReportService(b)

	resp, err := svc.Generate(context.Background(), app.NewReportRequest("2024.1"))
	require.NoError(t, err)

	require.Len(t, resp.Report.Sections, 2)
	prd := resp.Report.Sections[0]
	require.NotNil(t, prd.Table)
	require.Len(t, prd.Table.Rows, 1)
	row := prd.Table.Rows[0]
	assert.Equal(t, "US1", row.FormattedID)
	assert.True(t, row.SpansReleases)
	assert.Equal(t, []string{"2024.1", "2024.2"}, row.Releases)

	nfr := resp.Report.Sections[1]
	assert.True(t, nfr.IsEmpty())
	assert.Equal(t, domain.TagNonFunctional, nfr.Tag)

	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, 3, resp.ItemsLoaded)
	assert.Equal(t, "2024.1", resp.Report.Release.Name)
	assert.Empty(t, resp.Diagnostics)
}

func TestGenerate_ReleaseWithNoMembers(t *testing.T) {
	b := newFakeBackend(testutil.SplitReleaseTree(), releases("2024.1", "2024.2", "2024.3")...)
	svc := newTestReportService(b)

	resp, err := svc.Generate(context.Background(), app.NewReportRequest("2024.3"))
	require.NoError(t, err)

	assert.True(t, resp.Report.AllEmpty())
	assert.Equal(t, `No Functional Requirements found for release "2024.3".`, resp.Report.Sections[0].Empty.Message)
}

func TestGenerate_UnreleasedTopLevelLeafExcluded(t *testing.T) {
	orphan := testutil.NewTestItem("Orphan", testutil.WithTags("PRD"))
	b := newFakeBackend([]domain.WorkItem{orphan}, releases("2024.1", "2024.2")...)
	svc := newTestReportService(b)

	for _, name := range []string{"2024.1", "2024.2"} {
		resp, err := svc.Generate(context.Background(), app.NewReportRequest(name))
		require.NoError(t, err)
		assert.True(t, resp.Report.AllEmpty(), name)
	}
}

func TestGenerate_TagFilter(t *testing.T) {
	items := []domain.WorkItem{
		testutil.NewTestItem("Perf budget", testutil.WithID(20), testutil.WithTags("NFR"), testutil.WithRelease("2024.1")),
		testutil.NewTestItem("Untagged", testutil.WithID(21), testutil.WithRelease("2024.1")),
	}
	b := newFakeBackend(items, releases("2024.1")...)
	svc := newTestReportService(b)

	resp, err := svc.Generate(context.Background(), app.NewReportRequest("2024.1"))
	require.NoError(t, err)

	assert.True(t, resp.Report.Sections[0].IsEmpty())
	require.NotNil(t, resp.Report.Sections[1].Table)
	rows := resp.Report.Sections[1].Table.Rows
	require.Len(t, rows, 1)
	assert.Equal(t, "US20", rows[0].FormattedID)
	assert.False(t, rows[0].SpansReleases)
}

func TestGenerate_RequestedTagsAndQuery(t *testing.T) {
	b := newFakeBackend(testutil.SplitReleaseTree(), releases("2024.1")...)
	svc := newTestReportService(b)

	scope := repository.ProjectScope{Project: "Checkout", Up: true}
	req := app.ReportRequest{
		ReleaseName:   "2024.1",
		Tags:          []domain.RequirementTag{domain.TagNonFunctional},
		FullHierarchy: true,
		Scope:         &scope,
	}
	resp, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Report.Sections, 1)
	assert.Equal(t, domain.TagNonFunctional, resp.Report.Sections[0].Tag)

	q := b.lastQuery()
	assert.Equal(t, scope, q.Scope)
	assert.Equal(t, "2024.1", q.Release)
	assert.True(t, q.FullHierarchy)
	assert.Equal(t, []domain.RequirementTag{domain.TagNonFunctional}, q.Tags)
}

func TestGenerate_DefaultScopeUsed(t *testing.T) {
	b := newFakeBackend(nil, releases("2024.1")...)
	svc := newTestReportService(b)

	_, err := svc.Generate(context.Background(), app.NewReportRequest("2024.1"))
	require.NoError(t, err)
	assert.Equal(t, defaultScope, b.lastQuery().Scope)
}

func TestGenerate_TestPlanColumn(t *testing.T) {
	b := newFakeBackend(testutil.SplitReleaseTree(), releases("2024.1")...)
	svc := newTestReportService(b)

	req := app.NewReportRequest("2024.1")
	req.IncludeTestPlanColumn = true
	resp, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	table := resp.Report.Sections[0].Table
	require.NotNil(t, table)
	assert.Len(t, table.Columns, 5)
	assert.Equal(t, "Export each format and diff", table.Rows[0].TestPlan)
}

func TestGenerate_InvalidRequests(t *testing.T) {
	b := newFakeBackend(nil, releases("2024.1")...)
	svc := newTestReportService(b)

	tests := []struct {
		name string
		req  app.ReportRequest
		code app.ReportErrorCode
	}{
		{"empty release", app.NewReportRequest("  "), app.ReportErrInvalidRelease},
		{"unknown release", app.NewReportRequest("1999.1"), app.ReportErrInvalidRelease},
		{"unknown tag", app.ReportRequest{ReleaseName: "2024.1", Tags: []domain.RequirementTag{"EPIC"}}, app.ReportErrInvalidTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), tt.req)
			var reportErr *app.ReportError
			require.ErrorAs(t, err, &reportErr)
			assert.Equal(t, tt.code, reportErr.Code)
		})
	}
}

func TestGenerate_FetchFailureFailsPass(t *testing.T) {
	b := newFakeBackend(testutil.SplitReleaseTree(), releases("2024.1")...)
	b.itemErr = &rally.FetchError{Op: "items", Status: 503, Err: rally.ErrUnavailable}
	obs := &recordingObserver{}
	svc := newTestReportService(b, obs)

	resp, err := svc.Generate(context.Background(), app.NewReportRequest("2024.1"))
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, app.ErrFetch)
	assert.ErrorIs(t, err, rally.ErrUnavailable)

	ev := obs.last()
	assert.Equal(t, "report.generate", ev.Name)
	assert.False(t, ev.Success)
	assert.Equal(t, "error", ev.Fields["outcome"])
}

func TestGenerate_ReleaseFetchFailure(t *testing.T) {
	b := newFakeBackend(nil)
	b.releaseErr = errors.New("connection reset")
	svc := newTestReportService(b)

	_, err := svc.Generate(context.Background(), app.NewReportRequest("2024.1"))
	assert.ErrorIs(t, err, app.ErrFetch)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGenerate_CanceledContext(t *testing.T) {
	b := newFakeBackend(nil, releases("2024.1")...)
	b.itemErr = context.Canceled
	svc := newTestReportService(b)

	_, err := svc.Generate(context.Background(), app.NewReportRequest("2024.1"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_DiagnosticsAndStrict(t *testing.T) {
	// The parent reports two children but only one was loaded.
	items := []domain.WorkItem{
		testutil.NewTestItem("Leaf", testutil.WithID(31), testutil.WithParent(30), testutil.WithRelease("2024.1")),
		testutil.NewTestItem("Parent", testutil.WithID(30), testutil.WithTags("PRD"), testutil.WithChildren(2)),
	}
	b := newFakeBackend(items, releases("2024.1")...)
	svc := newTestReportService(b)

	req := app.NewReportRequest("2024.1")
	req.FullHierarchy = true
	resp, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, resolver.DiagPartialChildren, resp.Diagnostics[0].Kind)
	assert.Contains(t, resp.Warnings, "US30 reports 2 children but only 1 were loaded")

	req.Strict = true
	_, err = svc.Generate(context.Background(), req)
	assert.ErrorIs(t, err, app.ErrInconsistentHierarchy)
}

func TestGenerate_UnderFetchWarning(t *testing.T) {
	items := []domain.WorkItem{
		testutil.NewTestItem("Parent", testutil.WithID(40), testutil.WithTags("PRD"), testutil.WithChildren(1)),
	}
	b := newFakeBackend(items, releases("2024.1")...)
	svc := newTestReportService(b)

	resp, err := svc.Generate(context.Background(), app.NewReportRequest("2024.1"))
	require.NoError(t, err)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, resolver.DiagMissingChildren, resp.Diagnostics[0].Kind)
	assert.Contains(t, resp.Warnings[len(resp.Warnings)-1], "--full-hierarchy")
}

func TestGenerate_CyclicHierarchyFailsFast(t *testing.T) {
	items := []domain.WorkItem{
		testutil.NewTestItem("B", testutil.WithID(51), testutil.WithParent(50), testutil.WithChildren(1)),
		testutil.NewTestItem("A", testutil.WithID(50), testutil.WithParent(51), testutil.WithTags("PRD"), testutil.WithChildren(1)),
	}
	b := newFakeBackend(items, releases("2024.1")...)
	svc := newTestReportService(b)

	_, err := svc.Generate(context.Background(), app.NewReportRequest("2024.1"))
	assert.ErrorIs(t, err, resolver.ErrCyclicHierarchy)
}

func TestGenerate_DuplicatesWarned(t *testing.T) {
	item := testutil.NewTestItem("Dup", testutil.WithID(60), testutil.WithTags("PRD"), testutil.WithRelease("2024.1"))
	b := newFakeBackend([]domain.WorkItem{item, item}, releases("2024.1")...)
	svc := newTestReportService(b)

	resp, err := svc.Generate(context.Background(), app.NewReportRequest("2024.1"))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Duplicates)
	assert.Contains(t, resp.Warnings, "1 duplicate items ignored")
	assert.Len(t, resp.Report.Sections[0].Table.Rows, 1)
}

func TestGenerate_RebuildWithoutFetch(t *testing.T) {
	b := newFakeBackend(testutil.SplitReleaseTree(), releases("2024.1")...)
	svc := newTestReportService(b)

	resp, err := svc.Generate(context.Background(), app.NewReportRequest("2024.1"))
	require.NoError(t, err)

	rebuilt := report.Build(resp.Release, resp.Results, report.Options{IncludeTestPlanColumn: true})
	assert.Len(t, rebuilt.Sections[0].Table.Columns, 5)
	assert.Len(t, b.queries, 1)
}

func TestGenerate_ObserverFields(t *testing.T) {
	b := newFakeBackend(testutil.SplitReleaseTree(), releases("2024.1")...)
	obs := &recordingObserver{}
	svc := newTestReportService(b, obs)

	resp, err := svc.Generate(context.Background(), app.NewReportRequest("2024.1"))
	require.NoError(t, err)

	ev := obs.last()
	assert.True(t, ev.Success)
	assert.Equal(t, resp.RequestID, ev.RequestID)
	assert.Equal(t, "ok", ev.Fields["outcome"])
	assert.Equal(t, 3, ev.Fields["items"])
	assert.Equal(t, 1, ev.Fields["prd_rows"])
	assert.Equal(t, 0, ev.Fields["nfr_rows"])
}
