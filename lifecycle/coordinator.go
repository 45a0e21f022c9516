package lifecycle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	hosterrors "github.com/vinayprograms/hostkit/errors"
	"github.com/vinayprograms/hostkit/logging"
	"github.com/vinayprograms/hostkit/report"
	"github.com/vinayprograms/hostkit/state"
)

// Coordinator drives the shutdown handshake for a host process. It derives
// the startup kind once at construction, owns the willing-to-shutdown flag,
// collects and resolves vetoes per request, keeps the persisted reason key
// in step with the handshake, and replies over the transport.
//
// One shutdown request is processed at a time; a concurrent request is
// rejected with ErrShutdownInFlight.
type Coordinator struct {
	config     Config
	log        *logging.Logger
	collector  *Collector
	aggregator *Aggregator

	kind     StartupKind
	willing  atomic.Bool
	inFlight atomic.Bool

	mu        sync.Mutex
	confirmed []func(ShutdownReason)
}

// NewCoordinator creates a coordinator. It reads the persisted reason key,
// clears it unconditionally, and classifies it into the startup kind, so a
// stale reason from a crashed prior run never leaks past the next instance.
func NewCoordinator(cfg Config) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	log := cfg.Logger.WithComponent("lifecycle").WithInstance(cfg.InstanceID)

	prior, present, err := readPriorReason(cfg.Store, cfg.ReasonKey)
	if err != nil {
		return nil, err
	}

	kind := ClassifyStartup(prior, present)

	priorStr := ""
	if present {
		priorStr = prior.String()
	}
	log.StartupClassified(kind.String(), priorStr)

	return &Coordinator{
		config:     cfg,
		log:        log,
		collector:  NewCollector(),
		aggregator: NewAggregator(cfg.Reporter),
		kind:       kind,
	}, nil
}

// readPriorReason reads and unconditionally clears the persisted reason key.
func readPriorReason(s state.Store, key string) (ShutdownReason, bool, error) {
	raw, err := s.Get(key, state.ScopeWorkspace)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, hosterrors.WrapWithCode(err, hosterrors.ErrCodeStoreFailed,
			"reading prior shutdown reason")
	}

	if err := s.Remove(key, state.ScopeWorkspace); err != nil {
		return 0, false, hosterrors.WrapWithCode(err, hosterrors.ErrCodeStoreFailed,
			"clearing prior shutdown reason")
	}

	// An unparsable reason still counts as present; it classifies as a
	// fresh start.
	prior, _ := ParseReason(string(raw))
	return prior, true, nil
}

// StartupKind returns the classification derived at construction. Fixed for
// the process lifetime.
func (c *Coordinator) StartupKind() StartupKind {
	return c.kind
}

// WillingToShutdown reports whether a shutdown request has been accepted
// and not vetoed since. It stays true once a shutdown is proceeding.
func (c *Coordinator) WillingToShutdown() bool {
	return c.willing.Load()
}

// InstanceID returns the identifier sent on reply channels.
func (c *Coordinator) InstanceID() string {
	return c.config.InstanceID
}

// OnWillShutdown subscribes a listener to impending shutdowns. It fires
// once per request, before the decision, carrying the veto capability.
func (c *Coordinator) OnWillShutdown(l Listener) {
	c.collector.Register(l)
}

// OnWillShutdownFunc is a convenience wrapper around OnWillShutdown.
func (c *Coordinator) OnWillShutdownFunc(fn func(e *ShutdownEvent)) {
	c.collector.RegisterFunc(fn)
}

// OnShutdownConfirmed subscribes to confirmed shutdowns. It fires once per
// request, only when the shutdown proceeds, carrying the triggering reason.
func (c *Coordinator) OnShutdownConfirmed(fn func(reason ShutdownReason)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmed = append(c.confirmed, fn)
}

func (c *Coordinator) notifyConfirmed(reason ShutdownReason) {
	c.mu.Lock()
	subs := make([]func(ShutdownReason), len(c.confirmed))
	copy(subs, c.confirmed)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(reason)
	}
}

// RequestShutdown runs one full handshake: persist the reason, collect and
// resolve objections, clear the reason, and acknowledge on exactly one of
// the two reply subjects. It returns whether the shutdown was vetoed.
//
// The persisted reason key exists only while the request is pending; it is
// cleared before returning, whichever way the decision goes. An empty reply
// subject skips that acknowledgement.
func (c *Coordinator) RequestShutdown(ctx context.Context, reason ShutdownReason, confirmSubject, cancelSubject string) (bool, error) {
	if _, ok := ParseReason(reason.String()); !ok {
		return false, ErrInvalidReason
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		return false, ErrShutdownInFlight
	}
	defer c.inFlight.Store(false)

	start := time.Now()
	c.willing.Store(true)

	if err := c.config.Store.Set(c.config.ReasonKey, []byte(reason.String()), state.ScopeWorkspace); err != nil {
		c.willing.Store(false)
		return false, hosterrors.WrapWithCode(err, hosterrors.ErrCodeStoreFailed,
			"persisting shutdown reason")
	}

	c.log.ShutdownRequested(reason.String(), c.collector.Len())

	set := c.collector.Broadcast(reason)
	vetoed := c.aggregator.Resolve(ctx, set)

	if err := c.config.Store.Remove(c.config.ReasonKey, state.ScopeWorkspace); err != nil {
		c.willing.Store(false)
		return vetoed, hosterrors.WrapWithCode(err, hosterrors.ErrCodeStoreFailed,
			"clearing shutdown reason")
	}

	if vetoed {
		c.willing.Store(false)
		c.log.ShutdownVetoed(reason.String(), time.Since(start))
		if err := c.reply(cancelSubject); err != nil {
			return true, err
		}
		return true, nil
	}

	c.notifyConfirmed(reason)
	c.log.ShutdownConfirmed(reason.String(), time.Since(start))
	if err := c.reply(confirmSubject); err != nil {
		return false, err
	}
	return false, nil
}

// reply publishes the instance id on a reply subject.
func (c *Coordinator) reply(subject string) error {
	if subject == "" {
		return nil
	}
	if err := c.config.Bus.Publish(subject, []byte(c.config.InstanceID)); err != nil {
		return hosterrors.WrapWithCode(err, hosterrors.ErrCodeTransportClosed,
			"acknowledging shutdown decision",
			hosterrors.WithInstance(c.config.InstanceID))
	}
	return nil
}

// reporter returns the configured reporter.
func (c *Coordinator) reporter() report.Reporter {
	return c.config.Reporter
}
