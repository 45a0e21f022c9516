package lifecycle

import (
	"testing"

	"github.com/vinayprograms/hostkit/bus"
	"github.com/vinayprograms/hostkit/state"
)

func TestReasonRoundTrip(t *testing.T) {
	reasons := []ShutdownReason{ReasonQuit, ReasonWindowClose, ReasonWindowReload, ReasonWindowLoad}

	for _, r := range reasons {
		parsed, ok := ParseReason(r.String())
		if !ok {
			t.Errorf("ParseReason(%q) failed", r.String())
		}
		if parsed != r {
			t.Errorf("round trip of %v gave %v", r, parsed)
		}
	}
}

func TestParseReason_Unknown(t *testing.T) {
	for _, s := range []string{"", "unknown", "QUIT", "restart"} {
		if _, ok := ParseReason(s); ok {
			t.Errorf("ParseReason(%q) unexpectedly succeeded", s)
		}
	}
}

func TestClassifyStartup(t *testing.T) {
	tests := []struct {
		name    string
		prior   ShutdownReason
		present bool
		want    StartupKind
	}{
		{"absent", 0, false, NewInstance},
		{"reload", ReasonWindowReload, true, ReloadedInstance},
		{"load", ReasonWindowLoad, true, ReopenedInstance},
		{"quit", ReasonQuit, true, NewInstance},
		{"window close", ReasonWindowClose, true, NewInstance},
		{"unparsable present", 0, true, NewInstance},
	}

	for _, tt := range tests {
		if got := ClassifyStartup(tt.prior, tt.present); got != tt.want {
			t.Errorf("%s: ClassifyStartup = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestClassifyStartup_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if ClassifyStartup(ReasonWindowReload, true) != ReloadedInstance {
			t.Fatal("classifier is not deterministic")
		}
	}
}

func TestStartupKindString(t *testing.T) {
	tests := []struct {
		kind StartupKind
		want string
	}{
		{NewInstance, "new-instance"},
		{ReloadedInstance, "reloaded-instance"},
		{ReopenedInstance, "reopened-instance"},
		{StartupKind(9), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("StartupKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	b := bus.NewMemoryBus(bus.DefaultConfig())
	defer b.Close()
	s := state.NewMemoryStore()
	defer s.Close()

	cfg := Config{}
	if err := cfg.Validate(); err != ErrInvalidConfig {
		t.Errorf("expected ErrInvalidConfig for empty config, got %v", err)
	}

	cfg = Config{Store: s}
	if err := cfg.Validate(); err != ErrInvalidConfig {
		t.Errorf("expected ErrInvalidConfig without bus, got %v", err)
	}

	cfg = Config{Store: s, Bus: b}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	if cfg.ReasonKey != DefaultReasonKey {
		t.Errorf("expected default reason key, got %q", cfg.ReasonKey)
	}
	if cfg.RequestSubject != DefaultRequestSubject {
		t.Errorf("expected default request subject, got %q", cfg.RequestSubject)
	}
	if cfg.InstanceID == "" {
		t.Error("expected generated instance id")
	}
	if cfg.Logger == nil || cfg.Reporter == nil {
		t.Error("expected default logger and reporter")
	}

	// Distinct instances get distinct ids
	other := Config{}.withDefaults()
	if other.InstanceID == cfg.InstanceID {
		t.Error("expected unique instance ids")
	}
}
