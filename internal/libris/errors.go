package libris

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the LIBRIS client.
var (
	// ErrNotFound indicates the record was not found.
	ErrNotFound = errors.New("not found in LIBRIS")

	// ErrUnavailable indicates the lookup could not be performed right now
	// (network failure, server error or rate limiting). The same lookup may
	// succeed on a later run.
	ErrUnavailable = errors.New("LIBRIS unavailable")

	// ErrInvalidResponse indicates an unexpected response body.
	ErrInvalidResponse = errors.New("invalid response from LIBRIS")
)

// APIError represents a non-success HTTP response from LIBRIS.
type APIError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("LIBRIS error (status %d): %s (%s)", e.StatusCode, e.Message, e.URL)
}

// Unwrap classifies the error so errors.Is works against the sentinels.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500:
		return ErrUnavailable
	default:
		return nil
	}
}

// IsNotFound returns true if the error indicates a record was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable returns true if the failed lookup may succeed when retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}
