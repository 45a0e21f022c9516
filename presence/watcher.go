package presence

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vinayprograms/hostkit/bus"
)

// BusWatcher observes presence announcements over a message bus.
type BusWatcher struct {
	bus           bus.MessageBus
	timeout       time.Duration
	checkInterval time.Duration

	mu         sync.RWMutex
	lastSeen   map[string]*Announcement
	goneCBs    []func(string)
	reported   map[string]bool
	watcherChs []chan *Announcement

	running atomic.Bool
	sub     bus.Subscription
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewBusWatcher creates a new presence watcher.
func NewBusWatcher(cfg WatcherConfig) (*BusWatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultWatcherConfig().Timeout
	}

	checkInterval := cfg.CheckInterval
	if checkInterval <= 0 {
		checkInterval = DefaultWatcherConfig().CheckInterval
	}

	return &BusWatcher{
		bus:           cfg.Bus,
		timeout:       timeout,
		checkInterval: checkInterval,
		lastSeen:      make(map[string]*Announcement),
		reported:      make(map[string]bool),
	}, nil
}

// Watch returns a channel of announcements for a specific instance.
func (w *BusWatcher) Watch(instance string) (<-chan *Announcement, error) {
	subject := SubjectPrefix + instance
	sub, err := w.bus.Subscribe(subject)
	if err != nil {
		return nil, err
	}

	ch := make(chan *Announcement, 16)
	go w.forwardMessages(sub, ch)
	return ch, nil
}

// WatchAll returns a channel of all announcements and starts watching.
func (w *BusWatcher) WatchAll() (<-chan *Announcement, error) {
	if w.running.Swap(true) {
		// Already running, just add a watcher
		ch := make(chan *Announcement, 64)
		w.mu.Lock()
		w.watcherChs = append(w.watcherChs, ch)
		w.mu.Unlock()
		return ch, nil
	}

	// NATS delivers the wildcard form. MemoryBus has no wildcard
	// matching, so fall back to a shared subject there.
	sub, err := w.bus.Subscribe(SubjectPrefix + "*")
	if err != nil {
		sub, err = w.bus.Subscribe(SubjectPrefix + "all")
		if err != nil {
			w.running.Store(false)
			return nil, err
		}
	}
	w.sub = sub

	ch := make(chan *Announcement, 64)
	w.watcherChs = append(w.watcherChs, ch)

	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.run()
	return ch, nil
}

// run processes incoming announcements and checks for gone instances.
func (w *BusWatcher) run() {
	defer close(w.doneCh)

	checkTicker := time.NewTicker(w.checkInterval)
	defer checkTicker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case msg, ok := <-w.sub.Messages():
			if !ok {
				return
			}
			w.processMessage(msg)
		case <-checkTicker.C:
			w.checkGone()
		}
	}
}

// processMessage handles an incoming announcement.
func (w *BusWatcher) processMessage(msg *bus.Message) {
	ann, err := Unmarshal(msg.Data)
	if err != nil {
		return
	}

	// Fall back to the subject for the instance ID
	if ann.Instance == "" && strings.HasPrefix(msg.Subject, SubjectPrefix) {
		ann.Instance = strings.TrimPrefix(msg.Subject, SubjectPrefix)
	}

	w.mu.Lock()
	w.lastSeen[ann.Instance] = ann
	delete(w.reported, ann.Instance)
	watchers := make([]chan *Announcement, len(w.watcherChs))
	copy(watchers, w.watcherChs)
	w.mu.Unlock()

	for _, ch := range watchers {
		select {
		case ch <- ann:
		default:
			// Buffer full, drop
		}
	}
}

// checkGone checks for instances that stopped announcing.
func (w *BusWatcher) checkGone() {
	now := time.Now()
	var gone []string

	w.mu.RLock()
	for instance, ann := range w.lastSeen {
		if now.Sub(ann.Timestamp) > w.timeout && !w.reported[instance] {
			gone = append(gone, instance)
		}
	}
	callbacks := make([]func(string), len(w.goneCBs))
	copy(callbacks, w.goneCBs)
	w.mu.RUnlock()

	if len(gone) > 0 {
		w.mu.Lock()
		for _, id := range gone {
			w.reported[id] = true
		}
		w.mu.Unlock()

		for _, instance := range gone {
			for _, cb := range callbacks {
				cb(instance)
			}
		}
	}
}

// forwardMessages forwards subscription messages to an announcement channel.
func (w *BusWatcher) forwardMessages(sub bus.Subscription, ch chan *Announcement) {
	defer close(ch)
	for msg := range sub.Messages() {
		ann, err := Unmarshal(msg.Data)
		if err != nil {
			continue
		}

		w.mu.Lock()
		w.lastSeen[ann.Instance] = ann
		w.mu.Unlock()

		select {
		case ch <- ann:
		default:
		}
	}
}

// Present checks if an instance announced within timeout.
func (w *BusWatcher) Present(instance string, timeout time.Duration) bool {
	w.mu.RLock()
	ann, ok := w.lastSeen[instance]
	w.mu.RUnlock()

	if !ok {
		return false
	}
	return time.Since(ann.Timestamp) <= timeout
}

// LastAnnouncement returns the last announcement from an instance.
func (w *BusWatcher) LastAnnouncement(instance string) *Announcement {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastSeen[instance]
}

// OnGone registers a callback for when an instance stops announcing.
func (w *BusWatcher) OnGone(callback func(instance string)) {
	w.mu.Lock()
	w.goneCBs = append(w.goneCBs, callback)
	w.mu.Unlock()
}

// Stop stops watching.
func (w *BusWatcher) Stop() error {
	if !w.running.Swap(false) {
		return ErrNotStarted
	}

	if w.sub != nil {
		w.sub.Unsubscribe()
	}

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	for _, ch := range w.watcherChs {
		close(ch)
	}
	w.watcherChs = nil
	w.mu.Unlock()

	return nil
}
