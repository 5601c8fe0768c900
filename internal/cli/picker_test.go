package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/reqreport/internal/domain"
)

func TestReleaseOptions(t *testing.T) {
	releases := []domain.Release{
		{
			Name:      "2024.2",
			State:     domain.ReleasePlanning,
			StartDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		{Name: "Backlog"},
	}

	opts := releaseOptions(releases)
	require.Len(t, opts, 2)
	assert.Equal(t, "2024.2", opts[0].Value)
	assert.Equal(t, "2024.2  (Planning)  2024-04-01 → 2024-06-30", opts[0].Key)
	assert.Equal(t, "Backlog", opts[1].Key)
	assert.Equal(t, "Backlog", opts[1].Value)
}
