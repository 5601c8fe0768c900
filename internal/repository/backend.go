package repository

import "github.com/alexanderramin/reqreport/internal/db"

// SQLiteBackend serves items and releases from the local workspace.
type SQLiteBackend struct {
	*SQLiteItemSource
	*SQLiteReleaseSource
}

var _ Backend = (*SQLiteBackend)(nil)

// NewSQLiteBackend creates a Backend over an opened workspace database.
func NewSQLiteBackend(q db.DBTX, pageSize int) *SQLiteBackend {
	return &SQLiteBackend{
		SQLiteItemSource:    NewSQLiteItemSource(q, pageSize),
		SQLiteReleaseSource: NewSQLiteReleaseSource(q),
	}
}
