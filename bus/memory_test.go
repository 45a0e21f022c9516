package bus

import (
	"sync"
	"testing"
	"time"
)

// --- Unit Tests ---

func TestValidateSubject(t *testing.T) {
	tests := []struct {
		subject string
		wantErr bool
	}{
		{"host.shutdown.request", false},
		{"confirm", false},
		{"a.b.c", false},
		{"", true},
		{"has space", true},
	}

	for _, tt := range tests {
		err := ValidateSubject(tt.subject)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSubject(%q) = %v, wantErr %v", tt.subject, err, tt.wantErr)
		}
	}
}

func TestMemoryBus_Publish(t *testing.T) {
	b := NewMemoryBus(DefaultConfig())
	defer b.Close()

	// Publish without subscribers should not error
	if err := b.Publish("test", []byte("hello")); err != nil {
		t.Errorf("Publish error: %v", err)
	}
}

func TestMemoryBus_PublishInvalidSubject(t *testing.T) {
	b := NewMemoryBus(DefaultConfig())
	defer b.Close()

	if err := b.Publish("", []byte("hello")); err != ErrInvalidSubject {
		t.Errorf("expected ErrInvalidSubject, got %v", err)
	}
}

func TestMemoryBus_SubscribeReceive(t *testing.T) {
	b := NewMemoryBus(DefaultConfig())
	defer b.Close()

	sub, err := b.Subscribe("host.shutdown.confirm")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := b.Publish("host.shutdown.confirm", []byte("host-1")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case msg := <-sub.Messages():
		if string(msg.Data) != "host-1" {
			t.Errorf("expected host-1, got %s", msg.Data)
		}
		if msg.Subject != "host.shutdown.confirm" {
			t.Errorf("unexpected subject %s", msg.Subject)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestMemoryBus_SubjectIsolation(t *testing.T) {
	b := NewMemoryBus(DefaultConfig())
	defer b.Close()

	confirm, _ := b.Subscribe("confirm")
	cancel, _ := b.Subscribe("cancel")

	b.Publish("confirm", []byte("host-1"))

	select {
	case <-confirm.Messages():
	case <-time.After(time.Second):
		t.Fatal("confirm subscriber did not receive")
	}

	select {
	case msg := <-cancel.Messages():
		t.Fatalf("cancel subscriber received unexpected message: %s", msg.Data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBus_MultipleSubscribers(t *testing.T) {
	b := NewMemoryBus(DefaultConfig())
	defer b.Close()

	sub1, _ := b.Subscribe("broadcast")
	sub2, _ := b.Subscribe("broadcast")

	b.Publish("broadcast", []byte("payload"))

	for i, sub := range []Subscription{sub1, sub2} {
		select {
		case <-sub.Messages():
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d did not receive", i)
		}
	}
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	b := NewMemoryBus(DefaultConfig())
	defer b.Close()

	sub, _ := b.Subscribe("topic")
	if err := sub.Unsubscribe(); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	// Channel should be closed
	if _, ok := <-sub.Messages(); ok {
		t.Error("expected closed channel after Unsubscribe")
	}

	// Publish after unsubscribe should not panic
	if err := b.Publish("topic", []byte("x")); err != nil {
		t.Errorf("Publish after unsubscribe errored: %v", err)
	}

	// Double unsubscribe is a no-op
	if err := sub.Unsubscribe(); err != nil {
		t.Errorf("second Unsubscribe errored: %v", err)
	}
}

func TestMemoryBus_Close(t *testing.T) {
	b := NewMemoryBus(DefaultConfig())

	sub, _ := b.Subscribe("topic")

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, ok := <-sub.Messages(); ok {
		t.Error("expected subscription channel closed after bus Close")
	}

	if err := b.Publish("topic", []byte("x")); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if _, err := b.Subscribe("topic"); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Double close is a no-op
	if err := b.Close(); err != nil {
		t.Errorf("second Close errored: %v", err)
	}
}

// --- Concurrency Tests ---

func TestMemoryBus_ConcurrentPublish(t *testing.T) {
	b := NewMemoryBus(Config{BufferSize: 1024})
	defer b.Close()

	sub, _ := b.Subscribe("load")

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Publish("load", []byte("m"))
		}()
	}
	wg.Wait()

	received := 0
	for received < n {
		select {
		case <-sub.Messages():
			received++
		case <-time.After(time.Second):
			t.Fatalf("received %d of %d messages", received, n)
		}
	}
}
