package util

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupLoggerToJSON(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerTo(&buf, "info", false)

	Info("[node] started %s", "N01")
	Error("[node] failed: %d", 3)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if entry["message"] != "[node] started N01" || entry["level"] != "info" || entry["app"] != "serialnode" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestSetupLoggerToFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerTo(&buf, "error", false)
	Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at error level: %s", buf.String())
	}
}
