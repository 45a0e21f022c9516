package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("expected debug/info filtered out, got: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("expected warn/error present, got: %s", out)
	}
}

func TestLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)

	cl := l.WithComponent("coordinator")
	cl.Info("hello")

	if !strings.Contains(buf.String(), "[coordinator]") {
		t.Errorf("expected component tag, got: %s", buf.String())
	}
}

func TestLogger_InstanceField(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)

	il := l.WithInstance("host-7")
	il.Info("hello")
	il.Info("with fields", map[string]interface{}{"reason": "quit"})

	out := buf.String()
	if strings.Count(out, "instance=host-7") != 2 {
		t.Errorf("expected instance field on every line, got: %s", out)
	}
	if !strings.Contains(out, "reason=quit") {
		t.Errorf("expected explicit fields preserved, got: %s", out)
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)

	l.Info("decision", map[string]interface{}{"vetoed": true})

	if !strings.Contains(buf.String(), "vetoed=true") {
		t.Errorf("expected field formatting, got: %s", buf.String())
	}
}

func TestLogger_LifecycleMethods(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)

	l.StartupClassified("reloaded-instance", "window-reload")
	l.ShutdownRequested("window-close", 2)
	l.ShutdownVetoed("window-close", 5*time.Millisecond)
	l.ShutdownConfirmed("quit", time.Millisecond)

	out := buf.String()
	for _, want := range []string{
		"startup_classified", "kind=reloaded-instance", "prior_reason=window-reload",
		"shutdown_requested", "listeners=2",
		"shutdown_vetoed",
		"shutdown_confirmed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got: %s", want, out)
		}
	}
}
