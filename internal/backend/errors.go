package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable marks transport-level failures: network errors, timeouts,
	// open circuit breaker, non-2xx responses without a well-formed body.
	// Callers may retry these on explicit user action.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrUnauthorized is returned for 401 responses so the session layer can
	// run an explicit refresh instead of retrying blindly.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a well-formed {success:false, message} business response.
// The message is surfaced to the user verbatim; no retry is implied.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend rejected request (status %d): %s", e.Status, e.Message)
}

// Retryable reports whether err is a transport failure the user may retry.
func Retryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
