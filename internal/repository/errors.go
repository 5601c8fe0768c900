package repository

import "errors"

var (
	// ErrNotFound indicates a workspace row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrReleaseNotFound indicates no release with the requested name is
	// visible from the query scope.
	ErrReleaseNotFound = errors.New("release not found")

	// ErrProjectNotFound indicates the scope names a project the backend
	// does not know.
	ErrProjectNotFound = errors.New("project not found")
)
