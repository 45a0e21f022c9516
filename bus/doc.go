// Package bus provides the named-channel messaging transport for the
// shutdown handshake.
//
// The MessageBus interface carries the inbound shutdown request subject and
// the per-request confirm and cancel reply subjects over various backends
// (NATS, in-memory). All implementations use channel-based APIs for
// Go-idiomatic concurrent use.
//
// # Usage
//
//	// Production: NATS between the host process and its supervisor
//	b, _ := bus.NewNATSBus(bus.NATSConfig{URL: "nats://localhost:4222"})
//
//	// Testing: in-memory
//	b := bus.NewMemoryBus(bus.DefaultConfig())
//
//	// Reply channels
//	sub, _ := b.Subscribe("host.shutdown.confirm")
//	for msg := range sub.Messages() {
//	    fmt.Printf("instance %s confirmed shutdown\n", msg.Data)
//	}
//
// A reply arrives on exactly one of the two subjects named by a request,
// never both.
package bus
