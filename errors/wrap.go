package errors

import (
	"context"
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context while preserving the error chain.
// If err is nil, Wrap returns nil.
// If err is already a HostError, it wraps it with the new message.
// Otherwise, it creates a new Internal error wrapping the original.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}

	// If it's already a HostError, preserve its properties
	var hostErr *Error
	if errors.As(err, &hostErr) {
		wrapped := &Error{
			code:      hostErr.code,
			category:  hostErr.category,
			message:   message,
			cause:     err,
			metadata:  hostErr.Metadata(),
			retryable: hostErr.retryable,
			workspace: hostErr.workspace,
			instance:  hostErr.instance,
		}
		for _, opt := range opts {
			opt(wrapped)
		}
		return wrapped
	}

	// Check for context errors
	if errors.Is(err, context.DeadlineExceeded) {
		return New(ErrCodeTimeout, message, append(opts, WithCause(err))...)
	}
	if errors.Is(err, context.Canceled) {
		return New(ErrCodeCanceled, message, append(opts, WithCause(err))...)
	}

	// Default to internal error for unknown errors
	return New(ErrCodeInternal, message, append(opts, WithCause(err))...)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific error code.
func WrapWithCode(err error, code ErrorCode, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}
	opts = append(opts, WithCause(err))
	return New(code, message, opts...)
}

// AsHostError attempts to extract a HostError from an error chain.
// Returns nil if no HostError is found.
func AsHostError(err error) HostError {
	var hostErr *Error
	if errors.As(err, &hostErr) {
		return hostErr
	}
	return nil
}

// Is checks if any error in the chain has the given error code.
func Is(err error, code ErrorCode) bool {
	var hostErr *Error
	if errors.As(err, &hostErr) {
		return hostErr.code == code
	}
	return false
}
