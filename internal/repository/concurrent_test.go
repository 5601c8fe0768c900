package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alexanderramin/reqreport/internal/db"
	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConcurrentTestDB creates a file-backed SQLite database in a temp directory.
// Unlike :memory:, a file-backed DB shares state across all connections in the
// pool, which is required to test real concurrent access with WAL mode.
func newConcurrentTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "workspace.db")
	database, err := db.OpenDB(dbPath)
	require.NoError(t, err, "failed to create concurrent test database")
	t.Cleanup(func() { database.Close() })
	return database
}

// TestConcurrentAccess_ParallelReads mirrors a report pass: items and the
// release are fetched from separate goroutines against the same pool.
func TestConcurrentAccess_ParallelReads(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()

	w := NewWorkspaceWriter(database)
	seedProjects(t, ctx, w)
	const itemCount = 50
	for i := int64(1); i <= itemCount; i++ {
		seedItems(t, ctx, w, projStore,
			testutil.NewTestItem("Story", testutil.WithID(i), testutil.WithTags("PRD")))
	}
	rel := testutil.NewTestRelease("2024.1")
	require.NoError(t, w.InsertRelease(ctx, projStore, rel))

	backend := NewSQLiteBackend(database, 7)

	var wg sync.WaitGroup
	for r := 0; r < 10; r++ {
		wg.Add(2)
		go func(reader int) {
			defer wg.Done()
			items, err := backend.FetchItems(ctx, ItemQuery{Tags: domain.RequirementTags, Release: "2024.1"})
			if err != nil {
				t.Errorf("reader %d: fetch items: %v", reader, err)
				return
			}
			if len(items) != itemCount {
				t.Errorf("reader %d: expected %d items, got %d", reader, itemCount, len(items))
			}
		}(r)
		go func(reader int) {
			defer wg.Done()
			if _, err := backend.FetchRelease(ctx, ProjectScope{}, "2024.1"); err != nil {
				t.Errorf("reader %d: fetch release: %v", reader, err)
			}
		}(r)
	}
	wg.Wait()

	run, err := LastImport(ctx, database)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, run)
}
