package lifecycle

import (
	"context"
	"testing"
)

func TestCollector_BroadcastOrder(t *testing.T) {
	c := NewCollector()

	var order []string
	c.RegisterFunc(func(e *ShutdownEvent) { order = append(order, "first") })
	c.RegisterFunc(func(e *ShutdownEvent) { order = append(order, "second") })
	c.RegisterFunc(func(e *ShutdownEvent) { order = append(order, "third") })

	c.Broadcast(ReasonQuit)

	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Errorf("listeners not notified in registration order: %v", order)
	}
}

func TestCollector_EventCarriesReason(t *testing.T) {
	c := NewCollector()

	var got ShutdownReason
	c.RegisterFunc(func(e *ShutdownEvent) { got = e.Reason })

	c.Broadcast(ReasonWindowReload)

	if got != ReasonWindowReload {
		t.Errorf("expected reason %v, got %v", ReasonWindowReload, got)
	}
}

func TestCollector_ObjectionsAccumulate(t *testing.T) {
	c := NewCollector()

	// A listener may submit zero or more objections
	c.RegisterFunc(func(e *ShutdownEvent) {})
	c.RegisterFunc(func(e *ShutdownEvent) {
		e.Veto(false)
		e.Veto(true)
	})
	c.RegisterFunc(func(e *ShutdownEvent) {
		e.VetoDeferred(func(ctx context.Context) (bool, error) { return false, nil })
	})

	set := c.Broadcast(ReasonQuit)

	if set.Len() != 3 {
		t.Errorf("expected 3 objections, got %d", set.Len())
	}
}

func TestCollector_FreshSetPerBroadcast(t *testing.T) {
	c := NewCollector()
	c.RegisterFunc(func(e *ShutdownEvent) { e.Veto(true) })

	first := c.Broadcast(ReasonQuit)
	second := c.Broadcast(ReasonQuit)

	if first == second {
		t.Fatal("expected a fresh objection set per broadcast")
	}
	if first.Len() != 1 || second.Len() != 1 {
		t.Errorf("objections leaked across broadcasts: %d/%d", first.Len(), second.Len())
	}
}

func TestCollector_EmptyBroadcast(t *testing.T) {
	c := NewCollector()

	set := c.Broadcast(ReasonWindowClose)
	if !set.Empty() {
		t.Error("expected empty objection set with no listeners")
	}
}

func TestShutdownEvent_NilDeferredIgnored(t *testing.T) {
	c := NewCollector()
	c.RegisterFunc(func(e *ShutdownEvent) { e.VetoDeferred(nil) })

	set := c.Broadcast(ReasonQuit)
	if !set.Empty() {
		t.Error("expected nil deferred objection to be ignored")
	}
}

func TestCollector_Len(t *testing.T) {
	c := NewCollector()
	if c.Len() != 0 {
		t.Errorf("expected 0 listeners, got %d", c.Len())
	}

	c.Register(ListenerFunc(func(e *ShutdownEvent) {}))
	c.RegisterFunc(func(e *ShutdownEvent) {})

	if c.Len() != 2 {
		t.Errorf("expected 2 listeners, got %d", c.Len())
	}
}
