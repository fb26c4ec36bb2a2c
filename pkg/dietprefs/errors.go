package dietprefs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when the client configuration is incomplete
	ErrInvalidConfig = errors.New("invalid client configuration")

	// ErrNetworkError is returned when the backend could not be reached
	ErrNetworkError = errors.New("network error")

	// ErrInvalidRequest is returned for 400/422 responses
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNotFound is returned for 404 responses
	ErrNotFound = errors.New("resource not found")

	// ErrServerError is returned for 5xx responses
	ErrServerError = errors.New("server error")

	// ErrUnexpectedStatus is returned for any other non-2xx response
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrMalformedResponse is returned when a 2xx body cannot be decoded
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError carries the status and detail of a non-2xx backend response.
type APIError struct {
	StatusCode int
	Detail     string
	kind       error
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v (status %d)", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%v (status %d): %s", e.kind, e.StatusCode, e.Detail)
}

// Unwrap lets errors.Is match the sentinel for the status class.
func (e *APIError) Unwrap() error { return e.kind }
