package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/alexanderramin/reqreport/internal/db"
	"github.com/alexanderramin/reqreport/internal/domain"
)

const releaseColumns = `r.id, r.name, r.theme, r.version, r.state, r.start_date, r.end_date, r.planned_velocity`

// SQLiteReleaseSource implements ReleaseSource over the local workspace.
type SQLiteReleaseSource struct {
	db db.DBTX
}

// NewSQLiteReleaseSource creates a new SQLiteReleaseSource.
func NewSQLiteReleaseSource(q db.DBTX) *SQLiteReleaseSource {
	return &SQLiteReleaseSource{db: q}
}

// FetchRelease returns the latest-ending release with the given name in scope.
func (r *SQLiteReleaseSource) FetchRelease(ctx context.Context, scope ProjectScope, name string) (*domain.Release, error) {
	if err := checkProject(ctx, r.db, scope); err != nil {
		return nil, err
	}
	query, args := releaseQuery(scope, "r.name = ?")
	args = append(args, name)

	rows, err := r.db.QueryContext(ctx, query+" LIMIT 1", args...)
	if err != nil {
		return nil, fmt.Errorf("querying release: %w", err)
	}
	defer rows.Close()

	releases, err := scanReleases(rows)
	if err != nil {
		return nil, err
	}
	if len(releases) == 0 {
		return nil, fmt.Errorf("release %q: %w", name, ErrReleaseNotFound)
	}
	return &releases[0], nil
}

// ListReleases returns one release per name, most recent end date first.
// Child projects usually carry a copy of each release; the first (latest)
// copy wins.
func (r *SQLiteReleaseSource) ListReleases(ctx context.Context, scope ProjectScope) ([]domain.Release, error) {
	if err := checkProject(ctx, r.db, scope); err != nil {
		return nil, err
	}
	query, args := releaseQuery(scope, "")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing releases: %w", err)
	}
	defer rows.Close()

	releases, err := scanReleases(rows)
	if err != nil {
		return nil, err
	}
	return DistinctReleases(releases), nil
}

func releaseQuery(scope ProjectScope, cond string) (string, []any) {
	var (
		sb    strings.Builder
		args  []any
		where []string
	)
	if scope.Project != "" {
		cte, cteArgs := scopeCTE(scope)
		sb.WriteString(cte)
		args = append(args, cteArgs...)
		where = append(where, "r.project_id IN (SELECT id FROM scope)")
	}
	sb.WriteString(`SELECT ` + releaseColumns + ` FROM releases r`)
	if cond != "" {
		where = append(where, cond)
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	// NULL end dates sort last.
	sb.WriteString(` ORDER BY r.end_date IS NULL, r.end_date DESC, r.id DESC`)
	return sb.String(), args
}

func scanReleases(rows *sql.Rows) ([]domain.Release, error) {
	var releases []domain.Release
	for rows.Next() {
		var (
			rel         domain.Release
			state       string
			start, end  sql.NullString
			plannedVelo sql.NullFloat64
		)
		if err := rows.Scan(&rel.ID, &rel.Name, &rel.Theme, &rel.Version, &state, &start, &end, &plannedVelo); err != nil {
			return nil, fmt.Errorf("scanning release row: %w", err)
		}
		rel.State = domain.ReleaseState(state)
		rel.StartDate = parseNullableDate(start)
		rel.EndDate = parseNullableDate(end)
		if plannedVelo.Valid {
			v := plannedVelo.Float64
			rel.PlannedVelocity = &v
		}
		releases = append(releases, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating releases: %w", err)
	}
	return releases, nil
}

// DistinctReleases keeps the first release of each name, preserving order.
func DistinctReleases(releases []domain.Release) []domain.Release {
	seen := make(map[string]bool, len(releases))
	out := make([]domain.Release, 0, len(releases))
	for _, r := range releases {
		if seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		out = append(out, r)
	}
	return out
}
