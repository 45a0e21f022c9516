package lifecycle

import (
	"context"
	"sync"
)

// DeferredObjection is an objection whose value is not known synchronously.
// It is consumed exactly once by the aggregator; returning an error counts
// as a veto.
type DeferredObjection func(ctx context.Context) (bool, error)

// objection is either an immediate boolean or a deferred computation.
type objection struct {
	value    bool
	deferred DeferredObjection // nil for immediate objections
}

// ObjectionSet accumulates the objections of one broadcast. It is owned
// exclusively by the broadcast invocation that created it and discarded
// once resolved.
type ObjectionSet struct {
	mu         sync.Mutex
	objections []objection
}

// Len returns the number of objections collected.
func (s *ObjectionSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objections)
}

// Empty reports whether no objections were collected.
func (s *ObjectionSet) Empty() bool {
	return s.Len() == 0
}

func (s *ObjectionSet) add(o objection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objections = append(s.objections, o)
}

// snapshot returns the collected objections in submission order.
func (s *ObjectionSet) snapshot() []objection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]objection, len(s.objections))
	copy(out, s.objections)
	return out
}

// ShutdownEvent is handed to each listener during a broadcast. The veto
// capability appends to the objection set scoped to that single broadcast;
// a listener may call it zero or more times.
type ShutdownEvent struct {
	// Reason that triggered the impending shutdown.
	Reason ShutdownReason

	set *ObjectionSet
}

// Veto submits an immediate objection. true objects to the shutdown.
func (e *ShutdownEvent) Veto(value bool) {
	e.set.add(objection{value: value})
}

// VetoDeferred submits an objection that settles asynchronously.
func (e *ShutdownEvent) VetoDeferred(fn DeferredObjection) {
	if fn == nil {
		return
	}
	e.set.add(objection{deferred: fn})
}

// Listener is notified of an impending shutdown and may object to it.
type Listener interface {
	// OnWillShutdown runs synchronously during the broadcast; it must
	// return before the next listener is invoked.
	OnWillShutdown(e *ShutdownEvent)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(e *ShutdownEvent)

// OnWillShutdown implements Listener.
func (f ListenerFunc) OnWillShutdown(e *ShutdownEvent) {
	f(e)
}

// Collector invites all registered listeners to object to an impending
// shutdown.
type Collector struct {
	mu        sync.Mutex
	listeners []Listener
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Register adds a listener. Listeners are notified in registration order.
func (c *Collector) Register(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// RegisterFunc is a convenience method for registering a function.
func (c *Collector) RegisterFunc(fn func(e *ShutdownEvent)) {
	c.Register(ListenerFunc(fn))
}

// Len returns the number of registered listeners.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// Broadcast synchronously notifies every registered listener, in
// registration order, each with a fresh event handle appending to a set
// scoped to this call. Each listener runs to completion before the next is
// invoked; no listener observes another's objections. The returned set
// holds deferred handles, not yet their results.
func (c *Collector) Broadcast(reason ShutdownReason) *ObjectionSet {
	c.mu.Lock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	set := &ObjectionSet{}
	for _, l := range listeners {
		l.OnWillShutdown(&ShutdownEvent{Reason: reason, set: set})
	}
	return set
}
