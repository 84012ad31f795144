package judge

import (
	"context"
	"errors"
	"fmt"
)

// TransientError represents a retryable judge failure: network trouble, rate
// limiting, or a provider-side 5xx. The retry policy keeps trying these until
// the attempt budget runs out.
type TransientError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *TransientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transient %s error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("transient %s error: %s", e.Provider, e.Message)
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

// PermanentError represents a non-retryable judge failure: bad credentials,
// an invalid model name, or a malformed request. Retrying cannot help, so the
// retry policy stops immediately.
type PermanentError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *PermanentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("permanent %s error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("permanent %s error: %s", e.Provider, e.Message)
}

func (e *PermanentError) Unwrap() error {
	return e.Cause
}

// IsTransient reports whether the error should be retried. Unclassified
// errors are treated as transient so a conservative retry still applies;
// context cancellation is never retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var permanent *PermanentError
	if errors.As(err, &permanent) {
		return false
	}
	return true
}

// classifyStatus maps an HTTP status code from a provider into a transient or
// permanent error.
func classifyStatus(provider string, status int, cause error) error {
	switch {
	case status == 429 || status >= 500:
		return &TransientError{Provider: provider, Message: fmt.Sprintf("status %d", status), Cause: cause}
	case status == 400 || status == 401 || status == 403 || status == 404:
		return &PermanentError{Provider: provider, Message: fmt.Sprintf("status %d", status), Cause: cause}
	default:
		return &TransientError{Provider: provider, Message: fmt.Sprintf("status %d", status), Cause: cause}
	}
}
