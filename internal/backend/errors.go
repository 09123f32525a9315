package backend

import (
	"errors"
	"fmt"
)

// Error taxonomy for calls to the commerce backend.
var (
	// ErrUnauthenticated means no credential was available or the backend
	// rejected it with 401.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden means the credential lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the backend answered 404.
	ErrNotFound = errors.New("not found")

	// ErrRequestFailed covers non-2xx answers and transport failures.
	ErrRequestFailed = errors.New("request failed")

	// ErrMalformedResponse is a RequestFailure whose body was not the
	// expected JSON shape.
	ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrRequestFailed)

	// ErrTimeout means the caller's deadline elapsed before an answer.
	ErrTimeout = errors.New("request timed out")
)

// APIError describes a failed backend call.
type APIError struct {
	Method   string
	Endpoint string
	Status   int
	Message  string
	Kind     error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message returns the backend-supplied error message carried by err, if any.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
