package presence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/vinayprograms/hostkit/bus"
)

// Common errors.
var (
	ErrAlreadyStarted = errors.New("announcer already started")
	ErrNotStarted     = errors.New("announcer not started")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// SubjectPrefix is the subject prefix for presence announcements.
const SubjectPrefix = "host.presence."

// Lifecycle phases carried in announcements.
const (
	PhaseRunning  = "running"
	PhaseStopping = "stopping"
)

// Announcement is a single presence message from a host instance.
type Announcement struct {
	// Instance uniquely identifies the announcing host instance.
	Instance string `json:"instance"`

	// Workspace the instance is serving.
	Workspace string `json:"workspace,omitempty"`

	// Phase of the instance lifecycle ("running", "stopping").
	Phase string `json:"phase"`

	// StartedAt is when the instance came up.
	StartedAt time.Time `json:"started_at"`

	// Timestamp when the announcement was generated.
	Timestamp time.Time `json:"timestamp"`
}

// Marshal serializes an announcement to JSON.
func (a *Announcement) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

// Unmarshal deserializes an announcement from JSON.
func Unmarshal(data []byte) (*Announcement, error) {
	var a Announcement
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Subject returns the subject for this announcement.
func (a *Announcement) Subject() string {
	return SubjectPrefix + a.Instance
}

// Announcer publishes periodic presence announcements.
type Announcer interface {
	// Start begins announcing at the configured interval.
	// Returns ErrAlreadyStarted if already running.
	Start(ctx context.Context) error

	// SetPhase updates the phase included in announcements.
	SetPhase(phase string)

	// Stop stops announcing.
	// Returns ErrNotStarted if not running.
	Stop() error
}

// Watcher observes announcements and detects vanished instances.
type Watcher interface {
	// Watch returns a channel of announcements for a specific instance.
	Watch(instance string) (<-chan *Announcement, error)

	// WatchAll returns a channel of all announcements.
	WatchAll() (<-chan *Announcement, error)

	// Present checks if an instance announced within timeout.
	Present(instance string, timeout time.Duration) bool

	// LastAnnouncement returns the last announcement from an instance, if any.
	LastAnnouncement(instance string) *Announcement

	// OnGone registers a callback for when an instance stops announcing.
	// The callback receives the instance ID.
	OnGone(callback func(instance string))

	// Stop stops watching.
	Stop() error
}

// AnnouncerConfig configures a presence announcer.
type AnnouncerConfig struct {
	// Bus is the message bus for publishing announcements.
	Bus bus.MessageBus

	// Instance is the unique identifier for this host instance.
	Instance string

	// Workspace the instance serves. Optional.
	Workspace string

	// Interval between announcements.
	// Default: 5 seconds
	Interval time.Duration
}

// Validate checks the configuration.
func (c *AnnouncerConfig) Validate() error {
	if c.Bus == nil {
		return ErrInvalidConfig
	}
	if c.Instance == "" {
		return ErrInvalidConfig
	}
	return nil
}

// DefaultAnnouncerConfig returns configuration with sensible defaults.
func DefaultAnnouncerConfig() AnnouncerConfig {
	return AnnouncerConfig{
		Interval: 5 * time.Second,
	}
}

// WatcherConfig configures a presence watcher.
type WatcherConfig struct {
	// Bus is the message bus for subscribing to announcements.
	Bus bus.MessageBus

	// Timeout for considering an instance gone.
	// Should be 2-3x the expected announce interval.
	// Default: 15 seconds
	Timeout time.Duration

	// CheckInterval for the gone-instance checker.
	// Default: 1 second
	CheckInterval time.Duration
}

// Validate checks the configuration.
func (c *WatcherConfig) Validate() error {
	if c.Bus == nil {
		return ErrInvalidConfig
	}
	return nil
}

// DefaultWatcherConfig returns configuration with sensible defaults.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		Timeout:       15 * time.Second,
		CheckInterval: 1 * time.Second,
	}
}
