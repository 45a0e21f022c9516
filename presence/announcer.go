package presence

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vinayprograms/hostkit/bus"
)

// BusAnnouncer announces presence over a message bus.
type BusAnnouncer struct {
	bus       bus.MessageBus
	instance  string
	workspace string
	interval  time.Duration
	startedAt time.Time

	mu    sync.RWMutex
	phase string

	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewBusAnnouncer creates a new presence announcer.
func NewBusAnnouncer(cfg AnnouncerConfig) (*BusAnnouncer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultAnnouncerConfig().Interval
	}

	return &BusAnnouncer{
		bus:       cfg.Bus,
		instance:  cfg.Instance,
		workspace: cfg.Workspace,
		interval:  interval,
		startedAt: time.Now(),
		phase:     PhaseRunning,
	}, nil
}

// Start begins announcing at the configured interval.
func (a *BusAnnouncer) Start(ctx context.Context) error {
	if a.running.Swap(true) {
		return ErrAlreadyStarted
	}

	if ctx == nil {
		ctx = context.Background()
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})

	go a.run(ctx)
	return nil
}

// run is the main announce loop.
func (a *BusAnnouncer) run(ctx context.Context) {
	defer close(a.doneCh)

	// Announce immediately so watchers see the instance without waiting
	// a full interval.
	a.announce()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.running.Store(false)
			return
		case <-a.stopCh:
			return
		case <-ticker.C:
			a.announce()
		}
	}
}

// announce publishes a presence message.
func (a *BusAnnouncer) announce() error {
	ann := a.buildAnnouncement()
	data, err := ann.Marshal()
	if err != nil {
		return err
	}
	return a.bus.Publish(ann.Subject(), data)
}

// buildAnnouncement creates an announcement with current state.
func (a *BusAnnouncer) buildAnnouncement() *Announcement {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return &Announcement{
		Instance:  a.instance,
		Workspace: a.workspace,
		Phase:     a.phase,
		StartedAt: a.startedAt,
		Timestamp: time.Now(),
	}
}

// SetPhase updates the phase included in announcements. Setting a new
// phase publishes an announcement immediately so watchers learn about
// phase transitions without waiting for the next tick.
func (a *BusAnnouncer) SetPhase(phase string) {
	a.mu.Lock()
	changed := a.phase != phase
	a.phase = phase
	a.mu.Unlock()

	if changed && a.running.Load() {
		a.announce()
	}
}

// Stop stops announcing.
func (a *BusAnnouncer) Stop() error {
	if !a.running.Swap(false) {
		return ErrNotStarted
	}
	close(a.stopCh)
	<-a.doneCh
	return nil
}

// Instance returns the announcer's instance ID.
func (a *BusAnnouncer) Instance() string {
	return a.instance
}
