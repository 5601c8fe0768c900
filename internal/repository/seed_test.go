package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/testutil"
	"github.com/stretchr/testify/require"
)

// Project tree used across tests:
//
//	Online Store (1)
//	├── Checkout (2)
//	│   └── Payments (4)
//	└── Catalog (3)
const (
	projStore    int64 = 1
	projCheckout int64 = 2
	projCatalog  int64 = 3
	projPayments int64 = 4
)

func seedProjects(t *testing.T, ctx context.Context, w *WorkspaceWriter) {
	t.Helper()
	for _, p := range []Project{
		{ID: projStore, Name: "Online Store"},
		{ID: projCheckout, Name: "Checkout", ParentID: domain.Int64Ptr(projStore)},
		{ID: projCatalog, Name: "Catalog", ParentID: domain.Int64Ptr(projStore)},
		{ID: projPayments, Name: "Payments", ParentID: domain.Int64Ptr(projCheckout)},
	} {
		require.NoError(t, w.InsertProject(ctx, p))
	}
}

func seedItems(t *testing.T, ctx context.Context, w *WorkspaceWriter, projectID int64, items ...domain.WorkItem) {
	t.Helper()
	for i := range items {
		require.NoError(t, w.InsertWorkItem(ctx, projectID, &items[i]))
	}
}

func newSeededDB(t *testing.T) (*sql.DB, *WorkspaceWriter) {
	t.Helper()
	database := testutil.NewTestDB(t)
	w := NewWorkspaceWriter(database)
	seedProjects(t, context.Background(), w)
	return database, w
}

func ids(items []domain.WorkItem) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
