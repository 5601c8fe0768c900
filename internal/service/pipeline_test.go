package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/reqreport/internal/app"
	"github.com/alexanderramin/reqreport/internal/repository"
	"github.com/alexanderramin/reqreport/internal/testutil"
)

// newImportedBackend imports exportFixture and returns a local backend over it.
func newImportedBackend(t *testing.T) repository.Backend {
	t.Helper()
	database := testutil.NewTestDB(t)
	_, err := NewImportService(testutil.NewTestUoW(database)).ImportWorkspaceFromSchema(context.Background(), exportFixture())
	require.NoError(t, err)
	return repository.NewSQLiteBackend(database, 2)
}

func TestPipeline_LocalBackendDefaultFilter(t *testing.T) {
	svc := NewReportService(newImportedBackend(t), ReportConfig{Scope: defaultScope})

	resp, err := svc.Generate(context.Background(), app.NewReportRequest("2024.1"))
	require.NoError(t, err)

	// The broad filter skips US12 (a leaf in another release), so the span
	// flag reflects only what was loaded.
	assert.Equal(t, 2, resp.ItemsLoaded)
	table := resp.Report.Sections[0].Table
	require.NotNil(t, table)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "US10", table.Rows[0].FormattedID)
	assert.False(t, table.Rows[0].SpansReleases)
	assert.Empty(t, resp.Diagnostics)

	assert.Equal(t, "Active", resp.Report.Release.State)
	assert.Equal(t, 91, resp.Report.Release.Days)
}

func TestPipeline_LocalBackendFullHierarchy(t *testing.T) {
	svc := NewReportService(newImportedBackend(t), ReportConfig{Scope: defaultScope})

	req := app.NewReportRequest("2024.1")
	req.FullHierarchy = true
	req.IncludeTestPlanColumn = true
	resp, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 3, resp.ItemsLoaded)
	row := resp.Report.Sections[0].Table.Rows[0]
	assert.True(t, row.SpansReleases)
	assert.Equal(t, []string{"2024.1", "2024.2"}, row.Releases)
	assert.Equal(t, "Run checkout suite", row.TestPlan)
	assert.Equal(t, "Must Have", row.Priority)
}

func TestPipeline_ScopeHidesParentProjectReleases(t *testing.T) {
	scope := repository.ProjectScope{Project: "Checkout"}
	svc := NewReportService(newImportedBackend(t), ReportConfig{Scope: scope})

	// Releases belong to the parent project, which Checkout cannot see
	// without scoping up.
	_, err := svc.Generate(context.Background(), app.NewReportRequest("2024.1"))
	require.Error(t, err)

	var rerr *app.ReportError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, app.ReportErrInvalidRelease, rerr.Code)
}

func TestPipeline_ScopeUpReachesParentProject(t *testing.T) {
	scope := repository.ProjectScope{Project: "Checkout", Up: true}
	svc := NewReportService(newImportedBackend(t), ReportConfig{Scope: scope})

	resp, err := svc.Generate(context.Background(), app.NewReportRequest("2024.1"))
	require.NoError(t, err)
	table := resp.Report.Sections[0].Table
	require.NotNil(t, table)
	assert.Equal(t, "US10", table.Rows[0].FormattedID)
}

func TestPipeline_SessionOverLocalBackend(t *testing.T) {
	sess := NewSession(NewReportService(newImportedBackend(t), ReportConfig{Scope: defaultScope}), nil, nil)
	defer sess.Close()

	snap, err := sess.Select(context.Background(), app.NewReportRequest("2024.2"))
	require.NoError(t, err)
	assert.Equal(t, "US10", snap.Report.Sections[0].Table.Rows[0].FormattedID)

	rels, err := NewReleaseService(newImportedBackend(t), defaultScope).ListReleases(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rels, 2)
	assert.Equal(t, "2024.2", rels[0].Name)
}
