package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %q, expected %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"WARNING", LevelWarn},
		{"error", LevelError},
		{"unknown", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf, Prefix: "test"})

	l.Info("hidden %d", 1)
	l.Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Errorf("warn message missing: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "test") {
		t.Errorf("level or name missing: %q", out)
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf})

	l.WithComponent("library").WithFields(map[string]any{"file": "c.tld"}).Debug("compiled")

	out := buf.String()
	for _, want := range []string{"compiled", "library", "c.tld"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestSetLevelShared(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Config{Level: LevelError, Output: &buf})
	child := parent.WithField("k", "v")

	parent.SetLevel(LevelDebug)
	if !child.Enabled(LevelDebug) {
		t.Error("child should share the parent's level")
	}
	child.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("debug output missing: %q", buf.String())
	}
}

func TestNopAndGlobal(t *testing.T) {
	n := Nop()
	n.Error("discarded")
	if n.Enabled(LevelError) {
		t.Error("nop logger should not be enabled")
	}

	prev := Get()
	Set(n)
	if Get() != n {
		t.Error("Set did not replace the global logger")
	}
	Set(prev)
}
