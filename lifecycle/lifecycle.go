package lifecycle

import (
	"errors"

	"github.com/google/uuid"

	"github.com/vinayprograms/hostkit/bus"
	"github.com/vinayprograms/hostkit/logging"
	"github.com/vinayprograms/hostkit/report"
	"github.com/vinayprograms/hostkit/state"
)

// Common errors.
var (
	// ErrShutdownInFlight indicates a shutdown request arrived while another
	// was still being resolved.
	ErrShutdownInFlight = errors.New("shutdown request already in flight")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidReason indicates an unknown shutdown reason.
	ErrInvalidReason = errors.New("invalid shutdown reason")
)

// ShutdownReason identifies why termination was requested.
type ShutdownReason int

const (
	// ReasonQuit is an explicit quit of the whole host.
	ReasonQuit ShutdownReason = iota + 1

	// ReasonWindowClose is the last window closing.
	ReasonWindowClose

	// ReasonWindowReload is a window reloading in place.
	ReasonWindowReload

	// ReasonWindowLoad is a window loading a different workspace.
	ReasonWindowLoad
)

// String returns the reason name, also used as its persisted form.
func (r ShutdownReason) String() string {
	switch r {
	case ReasonQuit:
		return "quit"
	case ReasonWindowClose:
		return "window-close"
	case ReasonWindowReload:
		return "window-reload"
	case ReasonWindowLoad:
		return "window-load"
	default:
		return "unknown"
	}
}

// ParseReason converts a persisted reason back to its value.
func ParseReason(s string) (ShutdownReason, bool) {
	switch s {
	case "quit":
		return ReasonQuit, true
	case "window-close":
		return ReasonWindowClose, true
	case "window-reload":
		return ReasonWindowReload, true
	case "window-load":
		return ReasonWindowLoad, true
	default:
		return 0, false
	}
}

// StartupKind classifies why the current host instance started, derived
// from the previous instance's shutdown reason.
type StartupKind int

const (
	// NewInstance is a fresh start with no relevant prior shutdown.
	NewInstance StartupKind = iota

	// ReloadedInstance follows a window reload.
	ReloadedInstance

	// ReopenedInstance follows a window loading a different workspace.
	ReopenedInstance
)

// String returns the startup kind name.
func (k StartupKind) String() string {
	switch k {
	case NewInstance:
		return "new-instance"
	case ReloadedInstance:
		return "reloaded-instance"
	case ReopenedInstance:
		return "reopened-instance"
	default:
		return "unknown"
	}
}

// ClassifyStartup maps the previous shutdown reason, if present, to a
// startup kind. Pure and total.
func ClassifyStartup(prior ShutdownReason, present bool) StartupKind {
	if !present {
		return NewInstance
	}
	switch prior {
	case ReasonWindowReload:
		return ReloadedInstance
	case ReasonWindowLoad:
		return ReopenedInstance
	default:
		return NewInstance
	}
}

// Defaults for coordinator configuration.
const (
	// DefaultReasonKey is the well-known store key holding the pending
	// shutdown reason.
	DefaultReasonKey = "lifecycle.shutdown.reason"

	// DefaultRequestSubject is the bus subject Serve listens on.
	DefaultRequestSubject = "host.shutdown.request"
)

// Config configures the shutdown coordinator.
type Config struct {
	// Store persists the pending shutdown reason. Required.
	Store state.Store

	// Bus carries inbound requests and the confirm/cancel replies. Required.
	Bus bus.MessageBus

	// Reporter receives absorbed failures (deferred objection errors,
	// malformed requests). Default: a LogReporter on Logger.
	Reporter report.Reporter

	// Logger for decision output. Default: logging.New().
	Logger *logging.Logger

	// ReasonKey is the store key for the pending reason.
	// Default: DefaultReasonKey.
	ReasonKey string

	// RequestSubject is the bus subject Serve listens on.
	// Default: DefaultRequestSubject.
	RequestSubject string

	// InstanceID identifies this host instance in replies.
	// Default: a random UUID.
	InstanceID string
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Store == nil {
		return ErrInvalidConfig
	}
	if c.Bus == nil {
		return ErrInvalidConfig
	}
	return nil
}

// DefaultConfig returns configuration with sensible defaults. Store and Bus
// must still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		ReasonKey:      DefaultReasonKey,
		RequestSubject: DefaultRequestSubject,
	}
}

// withDefaults fills unset optional fields.
func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = logging.New()
	}
	if c.Reporter == nil {
		c.Reporter = report.NewLogReporter(c.Logger)
	}
	if c.ReasonKey == "" {
		c.ReasonKey = DefaultReasonKey
	}
	if c.RequestSubject == "" {
		c.RequestSubject = DefaultRequestSubject
	}
	if c.InstanceID == "" {
		c.InstanceID = uuid.NewString()
	}
	return c
}
