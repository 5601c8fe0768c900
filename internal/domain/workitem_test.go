package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasTag(t *testing.T) {
	w := &WorkItem{Tags: []string{"PRD", "Security"}}
	assert.True(t, w.HasTag(TagFunctional))
	assert.False(t, w.HasTag(TagNonFunctional))
}

func TestHasTag_IsCaseSensitive(t *testing.T) {
	w := &WorkItem{Tags: []string{"prd"}}
	assert.False(t, w.HasTag(TagFunctional))
}

func TestReleaseName_Unreleased(t *testing.T) {
	w := &WorkItem{}
	assert.Equal(t, Unreleased, w.ReleaseName())

	w.Release = &ReleaseRef{Name: "2024.1"}
	assert.Equal(t, "2024.1", w.ReleaseName())
}

func TestIsLeafIgnoresParent(t *testing.T) {
	child := &WorkItem{ParentID: Int64Ptr(1)}
	assert.True(t, child.IsLeaf())
	assert.False(t, child.IsTopLevel())

	parent := &WorkItem{DirectChildCount: 2}
	assert.False(t, parent.IsLeaf())
	assert.True(t, parent.IsTopLevel())
}

func TestDisplayID(t *testing.T) {
	assert.Equal(t, "US42", (&WorkItem{ID: 9001, FormattedID: "US42"}).DisplayID())
	assert.Equal(t, "9001", (&WorkItem{ID: 9001}).DisplayID())
}

func TestRequirementTagTitle(t *testing.T) {
	assert.Equal(t, "Functional Requirements", TagFunctional.Title())
	assert.Equal(t, "Non-Functional Requirements", TagNonFunctional.Title())
	assert.Equal(t, "UX Requirements", RequirementTag("UX").Title())
}

func TestReleaseDurationDays(t *testing.T) {
	r := &Release{
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 91, r.DurationDays())

	require.Equal(t, 0, (&Release{}).DurationDays())
}
