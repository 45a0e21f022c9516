package state

import (
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore implements Store using in-memory maps, one per scope.
// Useful for testing and single-process hosts. Workspace scope can be
// seeded from a snapshot so tests can simulate a process restart.
type MemoryStore struct {
	mu     sync.RWMutex
	scopes map[Scope]map[string]*entry
	closed atomic.Bool
}

type entry struct {
	value    []byte
	created  time.Time
	modified time.Time
}

// NewMemoryStore creates a new in-memory store with empty scopes.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreFrom(nil)
}

// NewMemoryStoreFrom creates a store whose workspace scope is seeded from
// the given snapshot, as if a prior process instance had written it.
func NewMemoryStoreFrom(workspace map[string][]byte) *MemoryStore {
	s := &MemoryStore{
		scopes: map[Scope]map[string]*entry{
			ScopeProcess:   make(map[string]*entry),
			ScopeWorkspace: make(map[string]*entry),
		},
	}

	now := time.Now()
	for k, v := range workspace {
		val := make([]byte, len(v))
		copy(val, v)
		s.scopes[ScopeWorkspace][k] = &entry{value: val, created: now, modified: now}
	}

	return s
}

// WorkspaceSnapshot returns a copy of the workspace scope, suitable for
// seeding a new store to simulate a restart within the same workspace.
func (s *MemoryStore) WorkspaceSnapshot() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(s.scopes[ScopeWorkspace]))
	for k, e := range s.scopes[ScopeWorkspace] {
		val := make([]byte, len(e.value))
		copy(val, e.value)
		out[k] = val
	}
	return out
}

// Get retrieves a value by key within a scope.
func (s *MemoryStore) Get(key string, scope Scope) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ValidateScope(scope); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.scopes[scope][key]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy to prevent mutation
	val := make([]byte, len(e.value))
	copy(val, e.value)
	return val, nil
}

// Set stores a value under a key within a scope.
func (s *MemoryStore) Set(key string, value []byte, scope Scope) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ValidateScope(scope); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	// Copy value to prevent external mutation
	val := make([]byte, len(value))
	copy(val, value)

	created := now
	if existing, ok := s.scopes[scope][key]; ok {
		created = existing.created
	}

	s.scopes[scope][key] = &entry{
		value:    val,
		created:  created,
		modified: now,
	}

	return nil
}

// Remove deletes a key within a scope.
func (s *MemoryStore) Remove(key string, scope Scope) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ValidateScope(scope); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.scopes[scope], key)
	return nil
}

// Keys returns all keys present in a scope.
func (s *MemoryStore) Keys(scope Scope) ([]string, error) {
	if err := ValidateScope(scope); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.scopes[scope] {
		keys = append(keys, key)
	}
	return keys, nil
}

// Close shuts down the store.
func (s *MemoryStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes = nil
	return nil
}
