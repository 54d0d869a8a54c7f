package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Provider error codes.
const (
	InvalidGrant  = "invalid_grant"
	InvalidClient = "invalid_client"
	Unauthorized  = "unauthorized"
)

// ProviderError is a non-success response from the payment provider. Body keeps the
// raw payload for diagnostics.
type ProviderError struct {
	StatusCode int    `json:"status"`
	Code       string `json:"error"`
	Message    string `json:"message,omitempty"`
	Body       string `json:"-"`
}

func (e *ProviderError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("provider error %d %s: %s", e.StatusCode, e.Code, e.Message)
	case e.Code != "":
		return fmt.Sprintf("provider error %d %s", e.StatusCode, e.Code)
	default:
		return fmt.Sprintf("provider error %d: %s", e.StatusCode, e.Body)
	}
}

// Unauthorized reports whether the provider rejected the bearer token.
func (e *ProviderError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// NotFound reports whether the provider did not find the resource.
func (e *ProviderError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// NewProviderError builds a ProviderError for status and raw body.
func NewProviderError(status int, code, message string, body []byte) *ProviderError {
	return &ProviderError{
		StatusCode: status,
		Code:       code,
		Message:    message,
		Body:       string(body),
	}
}

// AsProviderError unwraps err to a *ProviderError.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsUnauthorized reports whether err carries a provider 401.
func IsUnauthorized(err error) bool {
	pe, ok := AsProviderError(err)
	return ok && pe.Unauthorized()
}

// IsInvalidGrant reports whether the provider declared the refresh token permanently invalid.
func IsInvalidGrant(err error) bool {
	pe, ok := AsProviderError(err)
	return ok && pe.Code == InvalidGrant
}

// IsTransient reports whether err may succeed when retried later. Transport
// failures count, as do provider 429 and 5xx answers.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	pe, ok := AsProviderError(err)
	if !ok {
		return true
	}
	return pe.StatusCode == http.StatusTooManyRequests || pe.StatusCode >= http.StatusInternalServerError
}
