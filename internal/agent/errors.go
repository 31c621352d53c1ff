// ABOUTME: Error types for the agent integration layer
// ABOUTME: Separates upstream API failures from token refresh and decrypt failures

package agent

import (
	"errors"
	"fmt"
)

// ErrDecryptFailed indicates a stored credential could not be decrypted.
// Callers treat this as "no usable stored credential", not a fatal error.
var ErrDecryptFailed = errors.New("credential decrypt failed")

// ErrEmptyMessage indicates a message was empty after trimming whitespace.
// It is returned before any network call is made.
var ErrEmptyMessage = errors.New("message is required")

// UpstreamError represents a failure reported by (or about) the external
// agent API: a non-2xx response, a transport failure, or a successful
// response that violates the contract (e.g. missing session id).
// Transport details are logged at the call site and never embedded here.
type UpstreamError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("agent upstream error: %s", e.Reason)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("agent upstream error: status %d", e.StatusCode)
	}
	return "agent upstream error"
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// TokenRefreshError indicates the identity provider could not mint a new
// bearer credential. The provider failure is opaque to callers.
type TokenRefreshError struct {
	Err error
}

func (e *TokenRefreshError) Error() string {
	return "agent token refresh failed"
}

func (e *TokenRefreshError) Unwrap() error {
	return e.Err
}
