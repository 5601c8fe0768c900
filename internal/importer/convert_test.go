package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/reqreport/internal/domain"
)

func TestConvert(t *testing.T) {
	ws, err := Convert(validSchema())
	require.NoError(t, err)

	assert.Equal(t, "Acme", ws.Name)

	// Parent project is placed before its child even though the file lists
	// the child first.
	require.Len(t, ws.Projects, 2)
	assert.Equal(t, int64(1), ws.Projects[0].ID)
	assert.Equal(t, int64(2), ws.Projects[1].ID)

	require.Len(t, ws.Releases, 2)
	r := ws.Releases[0].Release
	assert.Equal(t, domain.ReleaseActive, r.State)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), r.StartDate)
	assert.Equal(t, 91, r.DurationDays())
	assert.Equal(t, domain.ReleasePlanning, ws.Releases[1].Release.State)
	assert.True(t, ws.Releases[1].Release.StartDate.IsZero())

	require.Len(t, ws.Stories, 3)
	parent := ws.Stories[0].Item
	assert.False(t, parent.IsLeaf())
	assert.Nil(t, parent.Release)
	assert.Equal(t, domain.PriorityMust, parent.Priority)
	assert.Equal(t, "Online Store", parent.Project)

	leaf := ws.Stories[1]
	assert.Equal(t, int64(2), leaf.ProjectID)
	assert.Equal(t, "Checkout", leaf.Item.Project)
	assert.Equal(t, "2024.1", leaf.Item.ReleaseName())
	assert.Equal(t, "TP-1", leaf.Item.TestPlan)
	assert.Equal(t, int64(10), *leaf.Item.ParentID)
}

func TestConvert_EmptyReleaseIsUnreleased(t *testing.T) {
	s := validSchema()
	s.Stories[2].Release = ptr("")

	ws, err := Convert(s)
	require.NoError(t, err)
	assert.Equal(t, domain.Unreleased, ws.Stories[2].Item.ReleaseName())
}

func TestOrderProjects_DeepTree(t *testing.T) {
	in := []ProjectExport{
		{ObjectID: 4, Name: "d", Parent: ptr[int64](3)},
		{ObjectID: 3, Name: "c", Parent: ptr[int64](2)},
		{ObjectID: 2, Name: "b", Parent: ptr[int64](1)},
		{ObjectID: 1, Name: "a"},
	}
	out, err := orderProjects(in)
	require.NoError(t, err)

	var ids []int64
	for _, p := range out {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)
}

func TestOrderProjects_Cycle(t *testing.T) {
	in := []ProjectExport{
		{ObjectID: 1, Name: "a", Parent: ptr[int64](2)},
		{ObjectID: 2, Name: "b", Parent: ptr[int64](1)},
	}
	_, err := orderProjects(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}
