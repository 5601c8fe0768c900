package domain

import "slices"

// Unreleased is the release name contributed by a leaf with no release.
// It never equals a real release name.
const Unreleased = ""

// ReleaseRef is the release assignment carried by a leaf item.
type ReleaseRef struct {
	Name string
}

type WorkItem struct {
	ID          int64
	FormattedID string
	Name        string
	Description string
	Project     string
	Tags        []string

	// Hierarchy. DirectChildCount counts this item's own children and is the
	// authoritative "has children" signal; ParentID says nothing about it.
	ParentID         *int64
	DirectChildCount int

	// Release is cleared by the backend once the item acquires children.
	Release *ReleaseRef

	TestPlan string
	Priority Priority
}

// HasTag reports whether the item carries the given tag.
func (w *WorkItem) HasTag(tag RequirementTag) bool {
	return slices.Contains(w.Tags, string(tag))
}

// IsLeaf reports whether the item has no direct children.
func (w *WorkItem) IsLeaf() bool {
	return w.DirectChildCount == 0
}

// IsTopLevel reports whether the item has no parent.
func (w *WorkItem) IsTopLevel() bool {
	return w.ParentID == nil
}

// ReleaseName returns the direct release name, or Unreleased.
func (w *WorkItem) ReleaseName() string {
	if w.Release == nil {
		return Unreleased
	}
	return w.Release.Name
}

// DisplayID returns the best short identifier for display.
func (w *WorkItem) DisplayID() string {
	if w.FormattedID != "" {
		return w.FormattedID
	}
	return formatObjectID(w.ID)
}
