package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestZapLoggerWritesObjectField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := New(zap.New(core))

	log.WarnObj("post response was not ok", "http_post_error", map[string]any{"status": 401})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "post response was not ok" || entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("unexpected entry %#v", entries[0])
	}
	if _, ok := entries[0].ContextMap()["http_post_error"]; !ok {
		t.Fatalf("missing structured field: %#v", entries[0].ContextMap())
	}
}

func TestPackageHelpersAreSafeBeforeInit(t *testing.T) {
	S = nil
	InfoObj("ignored", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
