package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failure reported by the BugTracker backend. Every non-2xx
// response decodes into one of these, carrying the HTTP status and the
// backend's message so calling code can present it to the user.
type Error struct {
	// StatusCode is the HTTP status the backend answered with.
	StatusCode int

	// Message is the human-readable message from the response body,
	// or the status text when the body had none.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Unauthorized reports whether the error is an authentication failure,
// typically an expired or missing session token.
func (e *Error) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// NotFound reports whether the requested entity no longer exists, e.g.
// a ticket reached through a stale link.
func (e *Error) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a backend authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

// IsNotFound reports whether err is a backend not-found response.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.NotFound()
}
