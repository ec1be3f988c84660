package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the client.
type ErrorCode string

const (
	// ErrConfiguration marks a missing credential or an unsupported
	// provider identifier. Raised at construction or immediately on
	// dispatch; never retried.
	ErrConfiguration ErrorCode = "CONFIGURATION"

	// ErrEncoding marks an unreadable or malformed input image.
	// Deterministic, never retried.
	ErrEncoding ErrorCode = "ENCODING"

	// ErrProvider marks any network, authentication, timeout or
	// response-parsing failure from a provider call. Retryable.
	ErrProvider ErrorCode = "PROVIDER"

	// ErrRetryExhausted wraps the final provider error once the retry
	// budget is spent. Terminal for that single request.
	ErrRetryExhausted ErrorCode = "RETRY_EXHAUSTED"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewConfigurationError creates a non-retryable configuration error.
func NewConfigurationError(message string) *Error {
	return &Error{Code: ErrConfiguration, Message: message}
}

// NewEncodingError creates a non-retryable encoding error.
func NewEncodingError(message string, cause error) *Error {
	return &Error{Code: ErrEncoding, Message: message, Cause: cause}
}

// NewProviderError creates a retryable provider error.
func NewProviderError(provider, message string) *Error {
	return &Error{Code: ErrProvider, Message: message, Provider: provider, Retryable: true}
}

// NewRetryExhaustedError wraps the last provider error after the retry
// budget is spent.
func NewRetryExhaustedError(attempts int, last error) *Error {
	return &Error{
		Code:    ErrRetryExhausted,
		Message: fmt.Sprintf("caption failed after %d attempts", attempts),
		Cause:   last,
	}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsErrorCode reports whether err carries the given code anywhere in its
// chain.
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}
