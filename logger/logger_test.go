package logger

import (
	"testing"
)

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled by default")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid json", Config{Level: "debug", Format: "json", Output: "stdout"}, false},
		{"valid console", Config{Level: "info", Format: "console", Output: "stderr"}, false},
		{"bad level", Config{Level: "verbose", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewDefaultTagsComponent(t *testing.T) {
	l := NewDefault("circuit")
	if l.component != "circuit" {
		t.Errorf("expected component 'circuit', got %q", l.component)
	}
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("shield").WithComponent("retry")
	if l.component != "retry" {
		t.Errorf("expected component 'retry', got %q", l.component)
	}
}

func TestFields(t *testing.T) {
	m := Fields("breaker", "svc", "failures", 3)
	if m["breaker"] != "svc" {
		t.Errorf("expected breaker 'svc', got %v", m["breaker"])
	}
	if m["failures"] != 3 {
		t.Errorf("expected failures 3, got %v", m["failures"])
	}
}

func TestFieldsOddArguments(t *testing.T) {
	m := Fields("breaker", "svc", "dangling")
	if len(m) != 1 {
		t.Errorf("expected dangling key to be dropped, got %v", m)
	}
}

func TestDebugEnabled(t *testing.T) {
	debug := New(&Config{Level: "debug", Format: "json", Output: "stdout"}, "t")
	if !debug.DebugEnabled() {
		t.Error("expected debug enabled at debug level")
	}

	info := New(&Config{Level: "info", Format: "json", Output: "stdout"}, "t")
	if info.DebugEnabled() {
		t.Error("expected debug disabled at info level")
	}
}
