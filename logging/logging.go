// Package logging provides real-time leveled log output for host lifecycle
// coordination. The coordinator's decisions are observable through its
// notification points; this package provides optional console output for
// monitoring what the coordinator decided and why.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger provides structured logging to stdout.
type Logger struct {
	mu        sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
	instance  string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// New creates a new Logger.
func New() *Logger {
	return &Logger{
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// WithComponent returns a new logger with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
		instance:  l.instance,
	}
}

// WithInstance returns a new logger tagged with a host instance id.
func (l *Logger) WithInstance(instance string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: l.component,
		instance:  instance,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	var parts []string
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry in traditional format: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		f := fields[0]
		if l.instance != "" {
			merged := make(map[string]interface{}, len(f)+1)
			for k, v := range f {
				merged[k] = v
			}
			merged["instance"] = l.instance
			f = merged
		}
		fieldStr = formatFields(f)
	} else if l.instance != "" {
		fieldStr = formatFields(map[string]interface{}{"instance": l.instance})
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Lifecycle-derived logging methods ---
// Called by the coordinator at decision points. They provide real-time
// console output of the shutdown handshake.

// StartupClassified logs the startup kind derived at construction.
func (l *Logger) StartupClassified(kind string, priorReason string) {
	fields := map[string]interface{}{
		"kind": kind,
	}
	if priorReason != "" {
		fields["prior_reason"] = priorReason
	}
	l.Info("startup_classified", fields)
}

// ShutdownRequested logs an accepted shutdown request.
func (l *Logger) ShutdownRequested(reason string, listeners int) {
	l.Info("shutdown_requested", map[string]interface{}{
		"reason":    reason,
		"listeners": listeners,
	})
}

// ShutdownVetoed logs a vetoed shutdown request.
func (l *Logger) ShutdownVetoed(reason string, duration time.Duration) {
	l.Info("shutdown_vetoed", map[string]interface{}{
		"reason":   reason,
		"duration": duration.String(),
	})
}

// ShutdownConfirmed logs a shutdown that will proceed.
func (l *Logger) ShutdownConfirmed(reason string, duration time.Duration) {
	l.Info("shutdown_confirmed", map[string]interface{}{
		"reason":   reason,
		"duration": duration.String(),
	})
}

// ObjectionFailed logs a deferred objection that failed and counted as a veto.
func (l *Logger) ObjectionFailed(reason string, err error) {
	l.Error("objection_failed", map[string]interface{}{
		"reason": reason,
		"error":  err.Error(),
	})
}
