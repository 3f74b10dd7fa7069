package notion

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("not found")
	ErrRateLimited          = errors.New("rate limited")
	ErrRemoteUnavailable    = errors.New("remote unavailable")

	// ErrUnsupportedPropertyType is returned by the codec when a target schema
	// declares a property type it has no encoding rule for.
	ErrUnsupportedPropertyType = errors.New("unsupported property type")
)

// APIError carries the remote API's error response. It unwraps to one of the
// sentinel errors above so callers can match with errors.Is.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api error (%d %s): %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrAuthenticationFailed
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return ErrRemoteUnavailable
	}
}
