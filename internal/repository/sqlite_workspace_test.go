package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/reqreport/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceWriter_Clear(t *testing.T) {
	database, w := newSeededDB(t)
	ctx := context.Background()
	seedItems(t, ctx, w, projStore, testutil.NewTestItem("Story", testutil.WithTags("PRD", "NFR")))
	rel := testutil.NewTestRelease("2024.1")
	require.NoError(t, w.InsertRelease(ctx, projStore, rel))

	require.NoError(t, w.Clear(ctx))

	for _, table := range []string{"projects", "releases", "work_items", "work_item_tags"} {
		var n int
		require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}

func TestWorkspaceWriter_DuplicateTagsIgnored(t *testing.T) {
	database, w := newSeededDB(t)
	item := testutil.NewTestItem("Story", testutil.WithTags("PRD", "PRD"))
	seedItems(t, context.Background(), w, projStore, item)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM work_item_tags`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestLastImport(t *testing.T) {
	database, w := newSeededDB(t)
	ctx := context.Background()

	_, err := LastImport(ctx, database)
	assert.ErrorIs(t, err, ErrNotFound)

	first := ImportRun{ID: uuid.NewString(), Source: "old.json", ItemCount: 1, ImportedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	second := ImportRun{ID: uuid.NewString(), Source: "new.json", Workspace: "Acme", ItemCount: 12, ReleaseCount: 3,
		ImportedAt: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, w.RecordImport(ctx, first))
	require.NoError(t, w.RecordImport(ctx, second))

	got, err := LastImport(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, second, *got)
}
