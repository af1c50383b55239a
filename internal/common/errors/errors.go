// Package errors provides standardized error handling for the claims client.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeTimeout       ErrorCode = "TIMEOUT_ERROR"
	ErrCodeNetwork       ErrorCode = "NETWORK_ERROR"
	ErrCodeTransientPoll ErrorCode = "TRANSIENT_POLL_ERROR"
)

// ClientError represents a structured client-side error.
type ClientError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *ClientError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ClientError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("ClientError[%s]: %s", e.Code, e.Message)
}

// NewValidationError creates a non-retryable bad-input error. The request
// carrying it never reached the network layer.
func NewValidationError(details string) *ClientError {
	return &ClientError{
		Code:      ErrCodeValidation,
		Message:   "Claim input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTimeoutError creates an error for a submission whose client-side
// deadline elapsed before the backend responded. The user may resubmit.
func NewTimeoutError(operation string, err error) *ClientError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &ClientError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Operation '%s' exceeded its deadline", operation),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNetworkError creates an error for a transport failure or a non-2xx
// response. The body is not inspected; error detail is presentation's concern.
func NewNetworkError(operation string, err error) *ClientError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &ClientError{
		Code:      ErrCodeNetwork,
		Message:   fmt.Sprintf("Request '%s' failed", operation),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHTTPStatusError creates a NetworkError for a non-2xx status code.
func NewHTTPStatusError(operation string, statusCode int) *ClientError {
	return &ClientError{
		Code:      ErrCodeNetwork,
		Message:   fmt.Sprintf("Request '%s' failed", operation),
		Details:   fmt.Sprintf("unexpected status %d", statusCode),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransientPollError creates an error for a single failed poll tick.
// It is absorbed by the tracker and never ends a job's tracked lifetime.
func NewTransientPollError(docID string, err error) *ClientError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &ClientError{
		Code:      ErrCodeTransientPoll,
		Message:   fmt.Sprintf("Status poll for document '%s' failed", docID),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func codeOf(err error) (ErrorCode, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return "", false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrCodeValidation
}

// IsTimeout reports whether err is a deadline-exceeded submission error.
func IsTimeout(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrCodeTimeout
}

// IsNetwork reports whether err is a transport or non-2xx failure.
func IsNetwork(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrCodeNetwork
}

// IsTransientPoll reports whether err is a swallowed poll-tick failure.
func IsTransientPoll(err error) bool {
	code, ok := codeOf(err)
	return ok && code == ErrCodeTransientPoll
}
