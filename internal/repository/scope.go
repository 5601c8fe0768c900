package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/reqreport/internal/db"
)

// scopeCTE returns a WITH clause defining scope(id) for the project tree
// selected by s: the named project, its descendants when Down and its
// ancestors when Up.
func scopeCTE(s ProjectScope) (string, []any) {
	q := `WITH RECURSIVE
	root(id) AS (SELECT id FROM projects WHERE name = ?),
	down(id) AS (
		SELECT id FROM root
		UNION
		SELECT p.id FROM projects p JOIN down d ON p.parent_id = d.id
	),
	up(id) AS (
		SELECT id FROM root
		UNION
		SELECT p.parent_id FROM projects p JOIN up u ON p.id = u.id
		WHERE p.parent_id IS NOT NULL
	),
	scope(id) AS (
		SELECT id FROM root`
	if s.Down {
		q += ` UNION SELECT id FROM down`
	}
	if s.Up {
		q += ` UNION SELECT id FROM up`
	}
	q += `
	)
`
	return q, []any{s.Project}
}

// checkProject verifies the scope's project exists. An empty project name
// means the whole workspace.
func checkProject(ctx context.Context, q db.DBTX, s ProjectScope) error {
	if s.Project == "" {
		return nil
	}
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM projects WHERE name = ?`, s.Project).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("project %q: %w", s.Project, ErrProjectNotFound)
	}
	if err != nil {
		return fmt.Errorf("looking up project: %w", err)
	}
	return nil
}
