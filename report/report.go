// Package report provides the error-reporting sink consumed by the lifecycle
// coordinator. Components that absorb failures (such as a deferred objection
// that fails while a shutdown decision is pending) surface them through a
// Reporter instead of propagating them as errors.
package report

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/vinayprograms/hostkit/bus"
	"github.com/vinayprograms/hostkit/logging"
)

// Severity classifies a report.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Reporter accepts severity-classified messages. Implementations must be
// safe for concurrent use; deferred objections settle on independent
// goroutines.
type Reporter interface {
	Report(severity Severity, message string)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(severity Severity, message string)

// Report implements Reporter.
func (f ReporterFunc) Report(severity Severity, message string) {
	f(severity, message)
}

// Discard returns a Reporter that drops all reports.
func Discard() Reporter {
	return ReporterFunc(func(Severity, string) {})
}

// LogReporter forwards reports to a logging.Logger at the matching level.
type LogReporter struct {
	log *logging.Logger
}

// NewLogReporter creates a Reporter backed by the given logger.
// A nil logger falls back to a default logger.
func NewLogReporter(log *logging.Logger) *LogReporter {
	if log == nil {
		log = logging.New()
	}
	return &LogReporter{log: log}
}

// Report implements Reporter.
func (r *LogReporter) Report(severity Severity, message string) {
	switch severity {
	case SeverityError:
		r.log.Error(message)
	case SeverityWarning:
		r.log.Warn(message)
	default:
		r.log.Info(message)
	}
}

// busReport is the wire format published by BusReporter.
type busReport struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Time     string `json:"time"`
}

// BusReporter publishes reports as JSON on a bus subject so out-of-process
// monitors can observe absorbed failures.
type BusReporter struct {
	bus     bus.MessageBus
	subject string
}

// NewBusReporter creates a Reporter publishing on the given subject.
func NewBusReporter(b bus.MessageBus, subject string) *BusReporter {
	return &BusReporter{bus: b, subject: subject}
}

// Report implements Reporter. Publish failures are dropped; the sink is
// terminal and must never produce errors of its own.
func (r *BusReporter) Report(severity Severity, message string) {
	data, err := json.Marshal(busReport{
		Severity: severity.String(),
		Message:  message,
		Time:     time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return
	}
	_ = r.bus.Publish(r.subject, data)
}

// Entry is a single captured report.
type Entry struct {
	Severity Severity
	Message  string
}

// Capture records reports for inspection in tests.
type Capture struct {
	mu      sync.Mutex
	entries []Entry
}

// NewCapture creates an empty capture reporter.
func NewCapture() *Capture {
	return &Capture{}
}

// Report implements Reporter.
func (c *Capture) Report(severity Severity, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, Entry{Severity: severity, Message: message})
}

// Entries returns a copy of all captured reports.
func (c *Capture) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Count returns the number of captured reports.
func (c *Capture) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
