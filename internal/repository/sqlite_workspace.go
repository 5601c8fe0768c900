package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/reqreport/internal/db"
	"github.com/alexanderramin/reqreport/internal/domain"
)

// Project is one node of the workspace project tree.
type Project struct {
	ID       int64
	Name     string
	ParentID *int64
}

// ImportRun records one completed import.
type ImportRun struct {
	ID           string
	Source       string
	Workspace    string
	ItemCount    int
	ReleaseCount int
	ImportedAt   time.Time
}

// WorkspaceWriter loads the local workspace. Callers run it inside a
// UnitOfWork so a failed import leaves the previous contents untouched.
type WorkspaceWriter struct {
	db db.DBTX
}

// NewWorkspaceWriter creates a writer bound to q, usually a transaction.
func NewWorkspaceWriter(q db.DBTX) *WorkspaceWriter {
	return &WorkspaceWriter{db: q}
}

// Clear removes every project, release and work item.
func (w *WorkspaceWriter) Clear(ctx context.Context) error {
	for _, table := range []string{"work_item_tags", "work_items", "releases", "projects"} {
		if _, err := w.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

func (w *WorkspaceWriter) InsertProject(ctx context.Context, p Project) error {
	_, err := w.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, parent_id) VALUES (?, ?, ?)`,
		p.ID, p.Name, nullableInt64(p.ParentID))
	if err != nil {
		return fmt.Errorf("inserting project %d: %w", p.ID, err)
	}
	return nil
}

func (w *WorkspaceWriter) InsertRelease(ctx context.Context, projectID int64, r *domain.Release) error {
	_, err := w.db.ExecContext(ctx,
		`INSERT INTO releases (id, project_id, name, theme, version, state, start_date, end_date, planned_velocity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, projectID, r.Name, r.Theme, r.Version, string(r.State),
		nullableDate(r.StartDate), nullableDate(r.EndDate), nullableFloat(r.PlannedVelocity))
	if err != nil {
		return fmt.Errorf("inserting release %d: %w", r.ID, err)
	}
	return nil
}

// InsertWorkItem stores the item and its tags.
func (w *WorkspaceWriter) InsertWorkItem(ctx context.Context, projectID int64, item *domain.WorkItem) error {
	var release any
	if item.Release != nil {
		release = item.Release.Name
	}
	_, err := w.db.ExecContext(ctx,
		`INSERT INTO work_items (id, project_id, formatted_id, name, description,
			parent_id, direct_child_count, release_name, test_plan, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, projectID, item.FormattedID, item.Name, item.Description,
		nullableInt64(item.ParentID), item.DirectChildCount, release, item.TestPlan, string(item.Priority))
	if err != nil {
		return fmt.Errorf("inserting work item %d: %w", item.ID, err)
	}
	for _, tag := range item.Tags {
		_, err := w.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO work_item_tags (work_item_id, tag) VALUES (?, ?)`, item.ID, tag)
		if err != nil {
			return fmt.Errorf("tagging work item %d: %w", item.ID, err)
		}
	}
	return nil
}

func (w *WorkspaceWriter) RecordImport(ctx context.Context, run ImportRun) error {
	_, err := w.db.ExecContext(ctx,
		`INSERT INTO import_runs (id, source, workspace, item_count, release_count, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Workspace, run.ItemCount, run.ReleaseCount,
		run.ImportedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording import: %w", err)
	}
	return nil
}

// LastImport returns the most recent import run.
func LastImport(ctx context.Context, q db.DBTX) (*ImportRun, error) {
	var (
		run ImportRun
		at  string
	)
	err := q.QueryRowContext(ctx,
		`SELECT id, source, workspace, item_count, release_count, imported_at
		FROM import_runs ORDER BY imported_at DESC, rowid DESC LIMIT 1`).
		Scan(&run.ID, &run.Source, &run.Workspace, &run.ItemCount, &run.ReleaseCount, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("import run: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning import run: %w", err)
	}
	run.ImportedAt, err = time.Parse(time.RFC3339, at)
	if err != nil {
		return nil, fmt.Errorf("parsing imported_at: %w", err)
	}
	return &run, nil
}
