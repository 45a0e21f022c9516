// Package state provides the scoped key-value store that persists the
// pending shutdown reason across the handshake.
//
// The Store interface keys entries by a string and a Scope: the process
// scope dies with the process, the workspace scope survives restarts tied
// to the same workspace identity. Backends cover NATS JetStream KV
// (production) and in-memory (testing).
//
// # Usage
//
//	// Production: workspace scope persisted in JetStream KV
//	b, _ := bus.NewNATSBus(bus.NATSConfig{URL: "nats://localhost:4222"})
//	store, _ := state.NewNATSStore(state.NATSStoreConfig{
//	    Conn:      b.Conn(),
//	    Workspace: "home-project",
//	})
//
//	// Testing: in-memory
//	store := state.NewMemoryStore()
//
//	// Scoped operations
//	store.Set("lifecycle.shutdown.reason", []byte("window-reload"), state.ScopeWorkspace)
//	val, _ := store.Get("lifecycle.shutdown.reason", state.ScopeWorkspace)
//	store.Remove("lifecycle.shutdown.reason", state.ScopeWorkspace)
//
// Simulating a restart in tests:
//
//	snapshot := store.WorkspaceSnapshot()
//	next := state.NewMemoryStoreFrom(snapshot)
package state
