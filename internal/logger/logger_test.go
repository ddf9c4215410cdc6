package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env, level string
		wantErr    bool
		enabled    zapcore.Level
	}{
		{env: "prod", enabled: zapcore.InfoLevel},
		{env: "local", enabled: zapcore.DebugLevel},
		{env: "dev", level: "WARN", enabled: zapcore.WarnLevel},
		{env: "prod", level: "debug", enabled: zapcore.DebugLevel},
		{env: "staging", wantErr: true},
		{env: "prod", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			if !l.Core().Enabled(tt.enabled) {
				t.Errorf("level %s not enabled", tt.enabled)
			}
			if tt.enabled > zapcore.DebugLevel && l.Core().Enabled(tt.enabled-1) {
				t.Errorf("level %s unexpectedly enabled", tt.enabled-1)
			}
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core)

	ctx := ContextWithLogger(context.Background(), l)
	FromContext(ctx).Debug("hello")

	if logs.Len() != 1 {
		t.Fatalf("logged %d entries", logs.Len())
	}
	// a bare context falls back to a no-op logger
	FromContext(context.Background()).Info("dropped")
	if logs.Len() != 1 {
		t.Error("no-op logger wrote to the observed core")
	}
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core))

	ctx = WithFields(ctx, zap.String("command", "FT.SEARCH"))
	FromContext(ctx).Debug("command failed")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["command"]; got != "FT.SEARCH" {
		t.Errorf("command field = %v, want FT.SEARCH", got)
	}
	if WithFields(ctx) != ctx {
		t.Error("WithFields without fields should return ctx unchanged")
	}
}
