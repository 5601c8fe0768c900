package report

import (
	"testing"

	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/resolver"
	"github.com/alexanderramin/reqreport/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(t *testing.T, items []domain.WorkItem, tag domain.RequirementTag, release string) *resolver.Result {
	t.Helper()
	r := resolver.New(domain.NewCollection(items), resolver.Options{})
	res, err := r.Resolve(tag, release)
	require.NoError(t, err)
	return res
}

func TestAssemble_PopulatedTable(t *testing.T) {
	items := testutil.SplitReleaseTree()
	items[2].Description = "<p>Users can <b>export</b> data</p>"

	sec := Assemble(resolved(t, items, domain.TagFunctional, "2024.1"), Options{})

	require.False(t, sec.IsEmpty())
	require.NotNil(t, sec.Table)
	assert.Equal(t, "Functional Requirements", sec.Title())

	require.Len(t, sec.Table.Rows, 1)
	row := sec.Table.Rows[0]
	assert.Equal(t, "US1", row.FormattedID)
	assert.Equal(t, "Data export", row.Name)
	assert.Equal(t, "Users can export data", row.Description)
	assert.Equal(t, "Must Have", row.Priority)
	assert.Empty(t, row.TestPlan, "test plan is only filled when the column is on")
	assert.True(t, row.SpansReleases)
	assert.Equal(t, []string{"2024.1", "2024.2"}, row.Releases)
}

func TestAssemble_TestPlanColumnToggle(t *testing.T) {
	res := resolved(t, testutil.SplitReleaseTree(), domain.TagFunctional, "2024.1")

	without := Assemble(res, Options{})
	with := Assemble(res, Options{IncludeTestPlanColumn: true})

	assert.Len(t, without.Table.Columns, 4)
	require.Len(t, with.Table.Columns, 5)
	assert.Equal(t, ColTestPlan, with.Table.Columns[4].Name)
	assert.True(t, with.Table.Columns[4].WrapText)
	assert.Equal(t, "Export each format and diff", with.Table.Rows[0].TestPlan)
	assert.Equal(t, "Export each format and diff", with.Table.Rows[0].Value(ColTestPlan))
}

func TestAssemble_EmptyStateIsDistinctFromEmptyTable(t *testing.T) {
	sec := Assemble(resolved(t, testutil.SplitReleaseTree(), domain.TagFunctional, "2024.3"), Options{})

	assert.True(t, sec.IsEmpty())
	assert.Nil(t, sec.Table)
	require.NotNil(t, sec.Empty)
	assert.Equal(t, "Functional Requirements", sec.Empty.Title)
	assert.Equal(t, `No Functional Requirements found for release "2024.3".`, sec.Empty.Message)
}

func TestColumns_StableNames(t *testing.T) {
	names := func(cols []Column) []string {
		out := make([]string, len(cols))
		for i, c := range cols {
			out[i] = c.Name
		}
		return out
	}
	assert.Equal(t, []string{"FormattedID", "Name", "Description", "MoSCoW"}, names(Columns(Options{})))
	assert.Equal(t, []string{"FormattedID", "Name", "Description", "MoSCoW", "TestPlan"},
		names(Columns(Options{IncludeTestPlanColumn: true})))
}

func TestRowValue_UnknownColumn(t *testing.T) {
	assert.Empty(t, Row{Name: "x"}.Value("Owner"))
}

func TestBuild_SectionsFollowResultOrder(t *testing.T) {
	items := append(testutil.SplitReleaseTree(),
		testutil.NewTestItem("Latency budget", testutil.WithTags("NFR"), testutil.WithRelease("2024.2")))
	release := testutil.NewTestRelease("2024.2", testutil.WithTheme("<p>Exports</p>"))

	results := []*resolver.Result{
		resolved(t, items, domain.TagFunctional, "2024.2"),
		resolved(t, items, domain.TagNonFunctional, "2024.2"),
	}
	rep := Build(release, results, Options{})

	require.Len(t, rep.Sections, 2)
	assert.Equal(t, domain.TagFunctional, rep.Sections[0].Tag)
	assert.Equal(t, domain.TagNonFunctional, rep.Sections[1].Tag)
	assert.False(t, rep.AllEmpty())
	assert.Equal(t, "2024.2", rep.Release.Name)
	assert.Equal(t, "Exports", rep.Release.Theme)
}

func TestBuild_AllEmpty(t *testing.T) {
	items := testutil.SplitReleaseTree()
	rep := Build(nil, []*resolver.Result{
		resolved(t, items, domain.TagFunctional, "none"),
		resolved(t, items, domain.TagNonFunctional, "none"),
	}, Options{})

	assert.True(t, rep.AllEmpty())
	assert.Empty(t, rep.Release.Name)
}
