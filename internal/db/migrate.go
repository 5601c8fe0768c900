package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent so the
// full list is replayed on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ... ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id        INTEGER PRIMARY KEY,
		name      TEXT NOT NULL UNIQUE,
		parent_id INTEGER REFERENCES projects(id) ON DELETE SET NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_parent ON projects(parent_id)`,

	`CREATE TABLE IF NOT EXISTS releases (
		id               INTEGER PRIMARY KEY,
		project_id       INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name             TEXT NOT NULL,
		theme            TEXT NOT NULL DEFAULT '',
		version          TEXT NOT NULL DEFAULT '',
		state            TEXT NOT NULL DEFAULT 'Planning'
		                 CHECK(state IN ('Planning','Active','Accepted')),
		start_date       TEXT,
		end_date         TEXT,
		planned_velocity REAL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_releases_project ON releases(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_releases_name ON releases(name)`,

	// parent_id is not a foreign key: a Rally export may reference parents
	// that live in projects outside the exported scope.
	`CREATE TABLE IF NOT EXISTS work_items (
		id                 INTEGER PRIMARY KEY,
		project_id         INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		formatted_id       TEXT NOT NULL,
		name               TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		parent_id          INTEGER,
		direct_child_count INTEGER NOT NULL DEFAULT 0 CHECK(direct_child_count >= 0),
		release_name       TEXT,
		test_plan          TEXT NOT NULL DEFAULT '',
		priority           TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_work_items_project ON work_items(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_work_items_parent ON work_items(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_work_items_release ON work_items(release_name)`,

	`CREATE TABLE IF NOT EXISTS work_item_tags (
		work_item_id INTEGER NOT NULL REFERENCES work_items(id) ON DELETE CASCADE,
		tag          TEXT NOT NULL,
		PRIMARY KEY (work_item_id, tag)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_work_item_tags_tag ON work_item_tags(tag)`,

	`CREATE TABLE IF NOT EXISTS import_runs (
		id            TEXT PRIMARY KEY,
		source        TEXT NOT NULL,
		workspace     TEXT NOT NULL DEFAULT '',
		item_count    INTEGER NOT NULL,
		release_count INTEGER NOT NULL,
		imported_at   TEXT NOT NULL
	)`,
}
