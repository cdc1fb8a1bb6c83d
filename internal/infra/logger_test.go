package infra

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		level  string
		expect zerolog.Level
	}{
		{name: "production default", env: "production", expect: zerolog.InfoLevel},
		{name: "development default", env: "development", expect: zerolog.DebugLevel},
		{name: "override", env: "production", level: "WARN", expect: zerolog.WarnLevel},
		{name: "invalid override ignored", env: "production", level: "loud", expect: zerolog.InfoLevel},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := newLogger(&buf, tc.env, tc.level)
			if got := l.GetLevel(); got != tc.expect {
				t.Fatalf("GetLevel() = %s, want %s", got, tc.expect)
			}
		})
	}
}

func TestNewLoggerStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "production", "")
	l.Info().Str("session_id", "abc").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["service"] != "stager" || entry["session_id"] != "abc" || entry["message"] != "hello" {
		t.Fatalf("unexpected log entry: %#v", entry)
	}
}
