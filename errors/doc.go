// Package errors provides a structured error taxonomy for host lifecycle
// coordination in hostkit. It defines error types, codes, and categories
// that enable consistent error handling across the coordinator and its
// collaborators (reason store, transport, error sink).
//
// # Error Categories
//
// Errors are classified into three categories:
//
//   - Transient: Temporary failures where retry may succeed (store unreachable, etc.)
//   - Permanent: Failures where retry will not help (invalid input, not found, etc.)
//   - Internal: Unexpected errors indicating bugs or system failures
//
// # Error Codes
//
// Each error has a specific code that identifies the type of failure:
//
//   - TIMEOUT: Operation timed out
//   - NOT_FOUND: Key not found
//   - STORE_FAILED: Reason store operation failed
//   - TRANSPORT_CLOSED: Reply channel transport closed
//   - SHUTDOWN_IN_FLIGHT: A shutdown request is already being resolved
//   - And more...
//
// # Usage
//
// Create a new error:
//
//	err := errors.New(errors.ErrCodeStoreFailed, "persisting shutdown reason")
//
// Wrap an existing error with context:
//
//	wrapped := errors.Wrap(err, "reading prior shutdown reason")
//
// Check if an error is retryable:
//
//	if hostErr := errors.AsHostError(err); hostErr != nil && hostErr.Retryable() {
//	    // retry logic
//	}
//
// # JSON Serialization
//
// All errors support JSON serialization for cross-process reporting:
//
//	data, err := json.Marshal(hostErr)
//
// Errors can be deserialized back:
//
//	var hostErr errors.Error
//	json.Unmarshal(data, &hostErr)
package errors
