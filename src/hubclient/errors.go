package hubclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error variables
var (
	// ErrNoBearerToken indicates the bearer credential is missing.
	ErrNoBearerToken = errors.New("bearer token is required")

	// ErrStreamClosed indicates the increment stream has been closed.
	ErrStreamClosed = errors.New("stream closed")
)

// APIError represents a non-success response from the hub. The status code
// and the server-provided body are preserved for diagnostics.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
	RequestID  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("hub error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("hub error %d: %s", e.StatusCode, e.Message)
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimit returns true if this is a rate limit error.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// errorResponse matches the hub's structured error format:
// {"error":{"message":"...","code":"..."}}. Many endpoints return plain
// text instead; handleError falls back to the raw body then.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}
