package state

import (
	"sync"
	"testing"
)

// ============================================================================
// LEVEL 1: Unit Tests - basic Get/Set/Remove per scope
// ============================================================================

func TestMemoryStore_Get_NotFound(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	_, err := s.Get("nonexistent", ScopeWorkspace)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_SetGet(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	key := "lifecycle.shutdown.reason"
	value := []byte("window-reload")

	if err := s.Set(key, value, ScopeWorkspace); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := s.Get(key, ScopeWorkspace)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if string(got) != string(value) {
		t.Errorf("expected %s, got %s", value, got)
	}
}

func TestMemoryStore_ScopeIsolation(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	if err := s.Set("key", []byte("workspace-value"), ScopeWorkspace); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := s.Get("key", ScopeProcess); err != ErrNotFound {
		t.Errorf("expected ErrNotFound in process scope, got %v", err)
	}

	if err := s.Set("key", []byte("process-value"), ScopeProcess); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	ws, _ := s.Get("key", ScopeWorkspace)
	if string(ws) != "workspace-value" {
		t.Errorf("workspace value clobbered: %s", ws)
	}
}

func TestMemoryStore_Remove(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	s.Set("key", []byte("v"), ScopeWorkspace)

	if err := s.Remove("key", ScopeWorkspace); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := s.Get("key", ScopeWorkspace); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after Remove, got %v", err)
	}

	// Removing an absent key is not an error
	if err := s.Remove("key", ScopeWorkspace); err != nil {
		t.Errorf("Remove of absent key errored: %v", err)
	}
}

func TestMemoryStore_Keys(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	s.Set("a", []byte("1"), ScopeWorkspace)
	s.Set("b", []byte("2"), ScopeWorkspace)
	s.Set("c", []byte("3"), ScopeProcess)

	keys, err := s.Keys(ScopeWorkspace)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("expected 2 workspace keys, got %d", len(keys))
	}
}

func TestMemoryStore_ValueCopied(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	value := []byte("original")
	s.Set("key", value, ScopeWorkspace)
	value[0] = 'X'

	got, _ := s.Get("key", ScopeWorkspace)
	if string(got) != "original" {
		t.Errorf("stored value aliased caller's slice: %s", got)
	}

	got[0] = 'Y'
	again, _ := s.Get("key", ScopeWorkspace)
	if string(again) != "original" {
		t.Errorf("returned value aliased stored slice: %s", again)
	}
}

func TestMemoryStore_InvalidKey(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	for _, key := range []string{"", "has space", ".leading", "trailing."} {
		if err := s.Set(key, []byte("v"), ScopeWorkspace); err != ErrInvalidKey {
			t.Errorf("Set(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestMemoryStore_InvalidScope(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	if err := s.Set("key", []byte("v"), Scope(99)); err != ErrInvalidScope {
		t.Errorf("expected ErrInvalidScope, got %v", err)
	}
	if _, err := s.Get("key", Scope(99)); err != ErrInvalidScope {
		t.Errorf("expected ErrInvalidScope, got %v", err)
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	s.Close()

	if _, err := s.Get("key", ScopeWorkspace); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := s.Set("key", []byte("v"), ScopeWorkspace); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

// ============================================================================
// LEVEL 2: Restart simulation - workspace scope survives, process scope dies
// ============================================================================

func TestMemoryStore_RestartSurvival(t *testing.T) {
	first := NewMemoryStoreFrom(nil)
	first.Set("lifecycle.shutdown.reason", []byte("window-reload"), ScopeWorkspace)
	first.Set("session.token", []byte("ephemeral"), ScopeProcess)

	snapshot := first.WorkspaceSnapshot()
	first.Close()

	second := NewMemoryStoreFrom(snapshot)
	defer second.Close()

	got, err := second.Get("lifecycle.shutdown.reason", ScopeWorkspace)
	if err != nil {
		t.Fatalf("workspace key did not survive restart: %v", err)
	}
	if string(got) != "window-reload" {
		t.Errorf("expected window-reload, got %s", got)
	}

	if _, err := second.Get("session.token", ScopeProcess); err != ErrNotFound {
		t.Errorf("process key survived restart: %v", err)
	}
}

// ============================================================================
// LEVEL 3: Concurrency
// ============================================================================

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Set("shared", []byte("v"), ScopeWorkspace)
			s.Get("shared", ScopeWorkspace)
			s.Keys(ScopeWorkspace)
			s.Remove("shared", ScopeWorkspace)
		}()
	}
	wg.Wait()
}
