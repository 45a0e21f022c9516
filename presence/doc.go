// Package presence provides liveness detection for host instances.
//
// # Overview
//
// Host instances periodically announce themselves on the bus with their
// instance ID, workspace, and lifecycle phase. Watchers track these
// announcements to discover which instances can receive shutdown
// requests, and invoke callbacks when an instance stops announcing.
//
// # Architecture
//
//	┌─────────────┐   host.presence.<instance>   ┌─────────────┐
//	│  Announcer  │ ──────────────────────────>  │   Watcher   │
//	│  (hostd)    │                              │ (requester) │
//	└─────────────┘                              └─────────────┘
//
// # Usage
//
// Announcing from a host instance:
//
//	ann, _ := presence.NewBusAnnouncer(presence.AnnouncerConfig{
//	    Bus:       bus,
//	    Instance:  coord.InstanceID(),
//	    Workspace: "home-project",
//	    Interval:  5 * time.Second,
//	})
//	ann.Start(ctx)
//	// later, when shutdown proceeds:
//	ann.SetPhase(presence.PhaseStopping)
//
// Watching from a requester:
//
//	w, _ := presence.NewBusWatcher(presence.WatcherConfig{
//	    Bus:     bus,
//	    Timeout: 15 * time.Second, // 3 missed announcements
//	})
//	w.OnGone(func(instance string) {
//	    log.Printf("host %s gone", instance)
//	})
//	w.WatchAll()
//
// # Subject Convention
//
// Announcements are published to: host.presence.<instance>
// Watcher subscribes to: host.presence.> (NATS wildcard)
//
// # Recommendations
//
//   - Set timeout to 2-3x the announce interval
//   - Handle OnGone callbacks idempotently
//   - Check Present before sending a shutdown request to avoid waiting
//     on a reply that will never come
package presence
