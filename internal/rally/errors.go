package rally

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/reqreport/internal/repository"
)

var (
	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = errors.New("rally rejected the api key")

	// ErrUnavailable indicates the server could not be reached or answered
	// with a server-side failure.
	ErrUnavailable = errors.New("rally unavailable")

	// ErrTimeout indicates a request exceeded the configured timeout.
	ErrTimeout = errors.New("rally request timed out")

	// ErrQuery indicates WSAPI refused the request, usually a malformed
	// query expression or an unknown field.
	ErrQuery = errors.New("rally query rejected")

	// ErrMalformedResponse indicates a response body that is not a WSAPI
	// document.
	ErrMalformedResponse = errors.New("malformed rally response")

	// ErrInvalidRecord indicates a returned record failed boundary
	// validation.
	ErrInvalidRecord = errors.New("invalid rally record")

	ErrReleaseNotFound = repository.ErrReleaseNotFound
	ErrProjectNotFound = repository.ErrProjectNotFound
)

// FetchError describes a failed WSAPI operation. It is terminal for the
// report pass; nothing retries it.
type FetchError struct {
	Op     string
	Status int // HTTP status, 0 when no response was received
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("rally %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("rally %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "CANCELED"
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrQuery):
		return "QUERY"
	case errors.Is(err, ErrMalformedResponse):
		return "MALFORMED"
	case errors.Is(err, ErrInvalidRecord):
		return "INVALID_RECORD"
	case errors.Is(err, ErrReleaseNotFound), errors.Is(err, ErrProjectNotFound):
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}
