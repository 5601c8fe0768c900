package resolver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrCyclicHierarchy indicates the parent/child links loop back on
	// themselves or nest deeper than the configured bound.
	ErrCyclicHierarchy = errors.New("cyclic hierarchy")

	// ErrEmptyReleaseName indicates a membership test against the
	// unreleased sentinel, which would match every unreleased leaf.
	ErrEmptyReleaseName = errors.New("release name is required")
)

// CyclicHierarchyError describes where the walk was aborted.
type CyclicHierarchyError struct {
	// Path lists the ids from the start of the walk down to the offending id.
	Path     []int64
	MaxDepth int // non-zero when the depth bound tripped rather than a repeat
}

func (e *CyclicHierarchyError) Error() string {
	ids := make([]string, len(e.Path))
	for i, id := range e.Path {
		ids[i] = strconv.FormatInt(id, 10)
	}
	if e.MaxDepth > 0 {
		return fmt.Sprintf("%s: depth limit %d exceeded at %s", ErrCyclicHierarchy, e.MaxDepth, strings.Join(ids, " -> "))
	}
	return fmt.Sprintf("%s: %s", ErrCyclicHierarchy, strings.Join(ids, " -> "))
}

func (e *CyclicHierarchyError) Unwrap() error { return ErrCyclicHierarchy }
