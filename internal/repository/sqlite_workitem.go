package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/reqreport/internal/db"
	"github.com/alexanderramin/reqreport/internal/domain"
)

// workItemColumns is the canonical SELECT column list for work item reads.
// Tags are folded into one column and split after scanning.
const workItemColumns = `w.id, w.formatted_id, w.name, w.description, p.name,
		w.parent_id, w.direct_child_count, w.release_name, w.test_plan, w.priority,
		(SELECT group_concat(t.tag, char(31)) FROM work_item_tags t WHERE t.work_item_id = w.id)`

// SQLiteItemSource implements ItemSource over the local workspace.
type SQLiteItemSource struct {
	db       db.DBTX
	pageSize int
}

// NewSQLiteItemSource creates a new SQLiteItemSource. pageSize <= 0 uses
// the default.
func NewSQLiteItemSource(q db.DBTX, pageSize int) *SQLiteItemSource {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &SQLiteItemSource{db: q, pageSize: pageSize}
}

// FetchItems applies the same filter as the Rally adapter and aggregates
// every page, newest ObjectID first.
func (r *SQLiteItemSource) FetchItems(ctx context.Context, q ItemQuery) ([]domain.WorkItem, error) {
	if err := checkProject(ctx, r.db, q.Scope); err != nil {
		return nil, err
	}

	base, args := r.buildQuery(q)
	var items []domain.WorkItem
	for offset := 0; ; offset += r.pageSize {
		page, err := r.queryPage(ctx, base, args, offset)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
		if len(page) < r.pageSize {
			break
		}
	}
	return items, nil
}

func (r *SQLiteItemSource) buildQuery(q ItemQuery) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	if q.Scope.Project != "" {
		cte, cteArgs := scopeCTE(q.Scope)
		sb.WriteString(cte)
		args = append(args, cteArgs...)
	}
	sb.WriteString(`SELECT ` + workItemColumns + `
		FROM work_items w JOIN projects p ON p.id = w.project_id`)

	var where []string
	if q.Scope.Project != "" {
		where = append(where, `w.project_id IN (SELECT id FROM scope)`)
	}
	if filter, filterArgs := itemFilter(q); filter != "" {
		where = append(where, filter)
		args = append(args, filterArgs...)
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(` ORDER BY w.id DESC LIMIT ? OFFSET ?`)
	return sb.String(), args
}

// itemFilter mirrors the Rally query expression: tag match, or child item
// in the release, or child item with children of its own.
func itemFilter(q ItemQuery) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if len(q.Tags) > 0 {
		clauses = append(clauses, `EXISTS (SELECT 1 FROM work_item_tags t
			WHERE t.work_item_id = w.id AND t.tag IN (`+placeholders(len(q.Tags))+`))`)
		for _, tag := range q.Tags {
			args = append(args, string(tag))
		}
	}
	switch {
	case q.FullHierarchy:
		clauses = append(clauses, `w.parent_id IS NOT NULL`)
	case q.Release != "":
		clauses = append(clauses,
			`(w.parent_id IS NOT NULL AND w.release_name = ?)`,
			`(w.parent_id IS NOT NULL AND w.direct_child_count > 0)`)
		args = append(args, q.Release)
	default:
		clauses = append(clauses, `(w.parent_id IS NOT NULL AND w.direct_child_count > 0)`)
	}
	return "(" + strings.Join(clauses, " OR ") + ")", args
}

func (r *SQLiteItemSource) queryPage(ctx context.Context, query string, args []any, offset int) ([]domain.WorkItem, error) {
	pageArgs := append(slices.Clone(args), r.pageSize, offset)
	rows, err := r.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("querying work items: %w", err)
	}
	defer rows.Close()
	return scanWorkItems(rows)
}

// scanWorkItems scans multiple work items from *sql.Rows.
func scanWorkItems(rows *sql.Rows) ([]domain.WorkItem, error) {
	var items []domain.WorkItem
	for rows.Next() {
		var (
			w           domain.WorkItem
			parentID    sql.NullInt64
			releaseName sql.NullString
			priority    string
			tags        sql.NullString
		)
		err := rows.Scan(
			&w.ID, &w.FormattedID, &w.Name, &w.Description, &w.Project,
			&parentID, &w.DirectChildCount, &releaseName, &w.TestPlan, &priority,
			&tags,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning work item row: %w", err)
		}
		populateWorkItem(&w, parentID, releaseName, priority, tags)
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work items: %w", err)
	}
	return items, nil
}

// populateWorkItem fills in parsed fields on a WorkItem after scanning raw values.
func populateWorkItem(w *domain.WorkItem, parentID sql.NullInt64, releaseName sql.NullString, priority string, tags sql.NullString) {
	if parentID.Valid {
		w.ParentID = domain.Int64Ptr(parentID.Int64)
	}
	if releaseName.Valid && w.DirectChildCount == 0 {
		w.Release = &domain.ReleaseRef{Name: releaseName.String}
	}
	w.Priority = domain.Priority(priority)
	w.Tags = splitTags(tags)
	slices.Sort(w.Tags)
}
