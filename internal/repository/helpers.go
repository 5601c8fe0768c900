package repository

import (
	"database/sql"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// defaultPageSize matches the Rally adapter so both backends page alike.
const defaultPageSize = 200

// tagSeparator joins tags in group_concat; it cannot appear in a tag name.
const tagSeparator = "\x1f"

// parseNullableDate parses a sql.NullString into a time.Time.
// Returns the zero time if the value is NULL, empty, or fails to parse.
func parseNullableDate(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullableDate converts a time.Time to a value suitable for SQLite storage.
// Returns nil (SQL NULL) for the zero time.
func nullableDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func splitTags(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	return strings.Split(s.String, tagSeparator)
}
