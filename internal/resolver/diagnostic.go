package resolver

import "fmt"

type DiagnosticKind string

const (
	// DiagMissingChildren: the item reports children but none were loaded.
	DiagMissingChildren DiagnosticKind = "missing_children"
	// DiagPartialChildren: fewer children were loaded than reported. Only
	// raised when the snapshot is expected to hold the full hierarchy.
	DiagPartialChildren DiagnosticKind = "partial_children"
)

// Diagnostic records a hierarchy the loaded snapshot cannot fully explain.
// These usually point at an item filter that under-fetched.
type Diagnostic struct {
	Kind        DiagnosticKind
	ItemID      int64
	FormattedID string
	Expected    int
	Found       int
}

func (d Diagnostic) String() string {
	id := d.FormattedID
	if id == "" {
		id = fmt.Sprintf("%d", d.ItemID)
	}
	switch d.Kind {
	case DiagMissingChildren:
		return fmt.Sprintf("%s reports %d children but none were loaded", id, d.Expected)
	case DiagPartialChildren:
		return fmt.Sprintf("%s reports %d children but only %d were loaded", id, d.Expected, d.Found)
	default:
		return fmt.Sprintf("%s: %s", id, d.Kind)
	}
}
