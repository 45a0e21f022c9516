// Package lifecycle coordinates an orderly shutdown handshake for a
// long-lived host process whose listeners may each object ("veto") to
// termination.
//
// # Overview
//
// A shutdown request names a reason and two reply subjects. The coordinator
// persists the reason, synchronously invites every registered listener to
// object, resolves the collected objections into one decision, clears the
// persisted reason, and acknowledges on exactly one of the reply subjects.
// At construction it classifies the previous instance's shutdown reason
// into a startup kind.
//
// # Architecture
//
//	                 request (reason, confirm, cancel)
//	                              │
//	                              ▼
//	┌──────────────────────── Coordinator ────────────────────────┐
//	│  persist reason → Collector.Broadcast → Aggregator.Resolve  │
//	│  clear reason → reply on confirm OR cancel                  │
//	└─────┬───────────────────────┬───────────────────────┬───────┘
//	  state.Store         lifecycle.Listener*        bus.MessageBus
//	  (reason key)        (veto capability)          (reply subjects)
//
// # Veto resolution
//
// Immediate objections are scanned first: any true vetoes at once and
// pending deferred objections are discarded unevaluated. Otherwise all
// deferred objections are awaited jointly; a deferred failure counts as a
// veto and is surfaced to the error sink, and the decision is not emitted
// until every deferred has settled. No timeout is enforced: a hung deferred
// objection stalls that request.
//
// # Usage
//
//	coord, err := lifecycle.NewCoordinator(lifecycle.Config{
//	    Store: store, // state.Store, workspace-scoped persistence
//	    Bus:   b,     // bus.MessageBus, reply transport
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	switch coord.StartupKind() {
//	case lifecycle.ReloadedInstance:
//	    // restore window state
//	}
//
//	coord.OnWillShutdownFunc(func(e *lifecycle.ShutdownEvent) {
//	    if hasUnsavedChanges() {
//	        e.VetoDeferred(func(ctx context.Context) (bool, error) {
//	            return !promptAndSave(ctx), nil
//	        })
//	    }
//	})
//
//	coord.OnShutdownConfirmed(func(reason lifecycle.ShutdownReason) {
//	    flushTelemetry()
//	})
//
//	// Serve inbound requests from the bus
//	go coord.Serve(ctx)
//
// Listeners run synchronously and in registration order during the
// broadcast; anything slow belongs in a deferred objection.
package lifecycle
