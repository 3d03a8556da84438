package client

import (
	"errors"
	"fmt"
)

// ErrNoImage is returned when a visualization endpoint reports success but
// carries no image payload.
var ErrNoImage = errors.New("visualization response contained no image")

// ErrNoStatistics is returned when the stats endpoint reports success but
// carries no data payload.
var ErrNoStatistics = errors.New("statistics response contained no data")

// APIError represents a non-2xx response from the backend.
// Message carries the backend's error field when the body was decodable,
// so session errors like "Сессия не найдена" reach the user verbatim.
type APIError struct {
	// StatusCode is the HTTP status returned by the backend.
	StatusCode int

	// Message is the backend-provided error message, if any.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
}
