// Package resolver decides which requirement items belong to a release.
//
// Only leaf items carry a release; a parent's releases are the union of its
// descendants' releases. The backend cannot answer "which top-level items
// touch release R", so the hierarchy is rebuilt from the flat snapshot and
// walked here.
package resolver

import (
	"log/slog"
	"slices"

	"github.com/alexanderramin/reqreport/internal/domain"
	"github.com/alexanderramin/reqreport/internal/telemetry"
)

// DefaultMaxDepth bounds the hierarchy walk. Rally portfolios rarely nest
// stories more than a handful of levels.
const DefaultMaxDepth = 64

// Options tunes a Resolver.
type Options struct {
	// MaxDepth bounds the walk; zero uses DefaultMaxDepth.
	MaxDepth int

	// ExpectCompleteHierarchy reports parents whose loaded children are
	// fewer than DirectChildCount. Only meaningful when every child was
	// fetched; the default broad filter skips leaves in other releases.
	ExpectCompleteHierarchy bool

	Logger  *slog.Logger
	Metrics *telemetry.Metrics
}

// Membership is one item reported as in the release.
type Membership struct {
	Item          domain.WorkItem
	Releases      []string
	SpansReleases bool
}

// Result is the outcome of resolving one requirement tag.
type Result struct {
	Tag        domain.RequirementTag
	Release    string
	Candidates int
	Members    []Membership
}

// Resolver walks one immutable snapshot. Release sets are memoised per id,
// so a Resolver must not outlive the snapshot it was built for.
type Resolver struct {
	items *domain.Collection
	opts  Options

	memo     map[int64][]string
	diags    []Diagnostic
	diagSeen map[int64]bool
}

// New creates a Resolver over items.
func New(items *domain.Collection, opts Options) *Resolver {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		items:    items,
		opts:     opts,
		memo:     make(map[int64][]string),
		diagSeen: make(map[int64]bool),
	}
}

// Resolve returns the items tagged tag whose release set contains
// releaseName, in snapshot order.
func (r *Resolver) Resolve(tag domain.RequirementTag, releaseName string) (*Result, error) {
	if releaseName == domain.Unreleased {
		return nil, ErrEmptyReleaseName
	}

	candidates := r.items.WithTag(tag)
	res := &Result{
		Tag:        tag,
		Release:    releaseName,
		Candidates: len(candidates),
	}

	for _, item := range candidates {
		set, err := r.Releases(item)
		if err != nil {
			return nil, err
		}
		if !Contains(set, releaseName) {
			continue
		}
		res.Members = append(res.Members, Membership{
			Item:          item,
			Releases:      set,
			SpansReleases: len(set) > 1,
		})
	}

	r.opts.Logger.Debug("release resolved",
		"tag", string(tag),
		"release", releaseName,
		"candidates", res.Candidates,
		"members", len(res.Members),
	)
	return res, nil
}

// Releases returns the deduplicated, sorted release names item touches.
// A leaf yields its own release or the Unreleased sentinel; a parent yields
// the union over its loaded children and never its own release field.
func (r *Resolver) Releases(item domain.WorkItem) ([]string, error) {
	set, err := r.walk(item, nil, make(map[int64]bool))
	if err != nil {
		r.opts.Metrics.ObserveCycle()
		r.opts.Logger.Error("hierarchy walk aborted", "item", item.DisplayID(), "error", err)
		return nil, err
	}
	return slices.Clone(set), nil
}

// Diagnostics returns the inconsistencies found so far, one per item.
func (r *Resolver) Diagnostics() []Diagnostic {
	return slices.Clone(r.diags)
}

func (r *Resolver) walk(item domain.WorkItem, path []int64, onPath map[int64]bool) ([]string, error) {
	if set, ok := r.memo[item.ID]; ok {
		return set, nil
	}

	path = append(path, item.ID)
	if onPath[item.ID] {
		return nil, &CyclicHierarchyError{Path: slices.Clone(path)}
	}
	if len(path) > r.opts.MaxDepth {
		return nil, &CyclicHierarchyError{Path: slices.Clone(path), MaxDepth: r.opts.MaxDepth}
	}

	if item.IsLeaf() {
		set := []string{item.ReleaseName()}
		r.memo[item.ID] = set
		return set, nil
	}

	onPath[item.ID] = true
	defer delete(onPath, item.ID)

	r.checkChildren(item)
	children := r.items.Children(item.ID)

	var union []string
	for _, child := range children {
		set, err := r.walk(child, path, onPath)
		if err != nil {
			return nil, err
		}
		union = append(union, set...)
	}

	set := Dedup(union)
	r.memo[item.ID] = set
	return set, nil
}

func (r *Resolver) checkChildren(item domain.WorkItem) {
	found := r.items.ChildCount(item.ID)
	var kind DiagnosticKind
	switch {
	case found == 0:
		kind = DiagMissingChildren
	case r.opts.ExpectCompleteHierarchy && found < item.DirectChildCount:
		kind = DiagPartialChildren
	default:
		return
	}
	if r.diagSeen[item.ID] {
		return
	}
	r.diagSeen[item.ID] = true

	d := Diagnostic{
		Kind:        kind,
		ItemID:      item.ID,
		FormattedID: item.FormattedID,
		Expected:    item.DirectChildCount,
		Found:       found,
	}
	r.diags = append(r.diags, d)
	r.opts.Metrics.ObserveDiagnostic(string(kind))
	r.opts.Logger.Warn("inconsistent hierarchy",
		"kind", string(kind),
		"item", item.DisplayID(),
		"expected_children", item.DirectChildCount,
		"loaded_children", found,
	)
}
