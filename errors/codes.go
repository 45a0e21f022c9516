package errors

// ErrorCategory classifies errors by their nature and retry semantics.
type ErrorCategory string

// Error categories define how errors should be handled.
const (
	// CategoryTransient indicates temporary failures where retry may succeed.
	// Examples: store temporarily unreachable, bus reconnecting.
	CategoryTransient ErrorCategory = "transient"

	// CategoryPermanent indicates failures where retry will not help.
	// Examples: invalid shutdown reason, unknown key, malformed request.
	CategoryPermanent ErrorCategory = "permanent"

	// CategoryInternal indicates unexpected errors, bugs, or system failures.
	// Examples: nil pointer, assertion failures, corrupted state.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// IsRetryable returns true if errors in this category may succeed on retry.
func (c ErrorCategory) IsRetryable() bool {
	return c == CategoryTransient
}

// ErrorCode identifies specific error types within categories.
type ErrorCode string

// Error codes for common failure scenarios.
const (
	// Transient errors
	ErrCodeTimeout     ErrorCode = "TIMEOUT"     // Operation timed out
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE" // Collaborator temporarily unavailable
	ErrCodeNetworkErr  ErrorCode = "NETWORK_ERR" // Network connectivity issue

	// Permanent errors
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"     // Key or resource does not exist
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT" // Malformed or invalid input
	ErrCodeCanceled     ErrorCode = "CANCELED"      // Operation was canceled
	ErrCodeUnsupported  ErrorCode = "UNSUPPORTED"   // Operation not supported

	// Internal errors
	ErrCodeInternal  ErrorCode = "INTERNAL"  // Unexpected internal error
	ErrCodeAssertion ErrorCode = "ASSERTION" // Assertion/invariant violation
	ErrCodePanic     ErrorCode = "PANIC"     // Recovered from panic

	// Lifecycle-specific errors
	ErrCodeStoreFailed      ErrorCode = "STORE_FAILED"       // Reason store operation failed
	ErrCodeTransportClosed  ErrorCode = "TRANSPORT_CLOSED"   // Reply channel transport closed
	ErrCodeVetoFailed       ErrorCode = "VETO_FAILED"        // Deferred objection failed to settle
	ErrCodeShutdownInFlight ErrorCode = "SHUTDOWN_IN_FLIGHT" // A shutdown request is already being resolved
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the default category for an error code.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	// Transient
	case ErrCodeTimeout, ErrCodeUnavailable, ErrCodeNetworkErr:
		return CategoryTransient

	// Permanent
	case ErrCodeNotFound, ErrCodeInvalidInput, ErrCodeCanceled, ErrCodeUnsupported:
		return CategoryPermanent

	// Internal
	case ErrCodeInternal, ErrCodeAssertion, ErrCodePanic:
		return CategoryInternal

	// Lifecycle-specific (varies)
	case ErrCodeStoreFailed, ErrCodeTransportClosed:
		return CategoryTransient
	case ErrCodeVetoFailed, ErrCodeShutdownInFlight:
		return CategoryPermanent

	default:
		return CategoryInternal
	}
}

// DefaultRetryable returns whether this error code is typically retryable.
func (c ErrorCode) DefaultRetryable() bool {
	return c.DefaultCategory().IsRetryable()
}

// codeDescriptions provides human-readable descriptions for error codes.
var codeDescriptions = map[ErrorCode]string{
	ErrCodeTimeout:          "operation timed out",
	ErrCodeUnavailable:      "collaborator temporarily unavailable",
	ErrCodeNetworkErr:       "network connectivity error",
	ErrCodeNotFound:         "key not found",
	ErrCodeInvalidInput:     "invalid input provided",
	ErrCodeCanceled:         "operation canceled",
	ErrCodeUnsupported:      "operation not supported",
	ErrCodeInternal:         "internal error",
	ErrCodeAssertion:        "assertion failed",
	ErrCodePanic:            "recovered from panic",
	ErrCodeStoreFailed:      "reason store operation failed",
	ErrCodeTransportClosed:  "transport closed",
	ErrCodeVetoFailed:       "deferred objection failed",
	ErrCodeShutdownInFlight: "shutdown request already in flight",
}

// Description returns a human-readable description for the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}
