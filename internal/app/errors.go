package app

import "errors"

var (
	// ErrStaleResult is returned by a pass that finished after a newer pass
	// was started. Its result is discarded.
	ErrStaleResult = errors.New("stale report pass superseded by a newer selection")

	// ErrFetch classifies any failure loading the release or items.
	ErrFetch = errors.New("fetch failed")

	// ErrInconsistentHierarchy is returned in strict mode when the loaded
	// snapshot cannot explain every parent's children.
	ErrInconsistentHierarchy = errors.New("inconsistent hierarchy")
)

type ReportErrorCode string

const (
	ReportErrInvalidRelease ReportErrorCode = "INVALID_RELEASE"
	ReportErrInvalidTag     ReportErrorCode = "INVALID_TAG"
)

type ReportError struct {
	Code    ReportErrorCode
	Message string
}

func (e *ReportError) Error() string {
	return string(e.Code) + ": " + e.Message
}
