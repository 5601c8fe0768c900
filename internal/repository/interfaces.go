package repository

import (
	"context"

	"github.com/alexanderramin/reqreport/internal/domain"
)

// ProjectScope names the project an item query starts from and whether
// parent (Up) and child (Down) projects are included.
type ProjectScope struct {
	Project string
	Up      bool
	Down    bool
}

// ItemQuery selects the items one report pass needs.
//
// The default filter is deliberately broad: every item carrying one of Tags,
// every child item in Release, and every child item that itself has
// children. FullHierarchy widens the last two clauses to every child item
// so sibling leaves assigned to other releases are loaded too.
type ItemQuery struct {
	Scope         ProjectScope
	Tags          []domain.RequirementTag
	Release       string
	FullHierarchy bool
}

// ItemSource yields the complete, ordered (ObjectID descending) item
// collection for a query. Implementations aggregate every page before
// returning.
type ItemSource interface {
	FetchItems(ctx context.Context, q ItemQuery) ([]domain.WorkItem, error)
}

// ReleaseSource looks up releases by name and lists the releases visible
// from a scope, most recent first.
type ReleaseSource interface {
	FetchRelease(ctx context.Context, scope ProjectScope, name string) (*domain.Release, error)
	ListReleases(ctx context.Context, scope ProjectScope) ([]domain.Release, error)
}

// Backend is a data source that serves both items and releases.
type Backend interface {
	ItemSource
	ReleaseSource
}
