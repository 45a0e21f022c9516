package state

import (
	"errors"
	"strings"
)

// Common errors.
var (
	ErrNotFound     = errors.New("key not found")
	ErrClosed       = errors.New("store closed")
	ErrInvalidKey   = errors.New("invalid key")
	ErrInvalidScope = errors.New("invalid scope")
)

// Scope is the lifetime boundary under which a stored key remains valid.
type Scope int

const (
	// ScopeProcess entries die with the process.
	ScopeProcess Scope = iota

	// ScopeWorkspace entries survive process restarts tied to the same
	// workspace identity.
	ScopeWorkspace
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ScopeProcess:
		return "process"
	case ScopeWorkspace:
		return "workspace"
	default:
		return "unknown"
	}
}

// ValidateScope checks if a scope is one of the defined values.
func ValidateScope(s Scope) error {
	switch s {
	case ScopeProcess, ScopeWorkspace:
		return nil
	default:
		return ErrInvalidScope
	}
}

// Store provides scoped key-value storage.
type Store interface {
	// Get retrieves a value by key within a scope.
	// Returns ErrNotFound if the key does not exist.
	Get(key string, scope Scope) ([]byte, error)

	// Set stores a value under a key within a scope.
	Set(key string, value []byte, scope Scope) error

	// Remove deletes a key within a scope.
	// Removing an absent key is not an error.
	Remove(key string, scope Scope) error

	// Keys returns all keys present in a scope.
	Keys(scope Scope) ([]string, error)

	// Close shuts down the store and releases resources.
	Close() error
}

// ValidateKey checks if a key is valid.
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if strings.Contains(key, " ") {
		return ErrInvalidKey
	}
	if strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") {
		return ErrInvalidKey
	}
	if len(key) > 1024 {
		return ErrInvalidKey
	}
	return nil
}
