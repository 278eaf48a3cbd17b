package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/LeonardoBeccarini/wallcontroller/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("%q: got %v want %v", in, got, want)
		}
	}
}

func TestNewWritesRotatingFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "wc.log")
	l, closer := New(config.LogConfig{Level: "info", Format: "json", File: p, MaxSizeMB: 1}, "hall")
	l.Info().Str("component", "test").Msg("hello")
	l.Debug().Msg("filtered")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"message":"hello"`) || !strings.Contains(s, `"host":"hall"`) {
		t.Fatalf("unexpected log file: %s", s)
	}
	if strings.Contains(s, "filtered") {
		t.Fatalf("debug line written at info level: %s", s)
	}
}
