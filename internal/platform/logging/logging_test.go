package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := New(&buf, "WARN", false)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	l.Info().Msg("hidden")
	l.Warn().Str("k", "v").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines=%q", lines)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["message"] != "shown" || m["level"] != "warn" || m["k"] != "v" || m["time"] == nil {
		t.Fatalf("entry=%v", m)
	}
}

func TestNew_ConsoleIsNotJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := New(&buf, "", true)
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	l.Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") || strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("output=%q", buf.String())
	}
}

func TestNew_BadLevel(t *testing.T) {
	t.Parallel()

	if _, err := New(&bytes.Buffer{}, "loud", false); err == nil {
		t.Fatalf("New() err=nil, want error")
	}
}
