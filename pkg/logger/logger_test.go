package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.input), "ParseLevel(%q)", tt.input)
	}
}

func TestPrettyHandlerKeepsAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewPrettyHandler(&buf, slog.LevelDebug, ""))

	l.With("invocation_id", "abc").Info("posted", "file", "cat.gif")

	out := buf.String()
	assert.Contains(t, out, "[LUKEY]")
	assert.Contains(t, out, "posted")
	assert.Contains(t, out, "invocation_id")
	assert.Contains(t, out, "abc")
	assert.Contains(t, out, "cat.gif")
}

func TestPrettyHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewPrettyHandler(&buf, slog.LevelWarn, ""))

	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "debug", "json")
	defer InitWriter(&bytes.Buffer{}, "info", "text")

	assert.True(t, Log.Enabled(context.Background(), slog.LevelDebug))
	Info("json message", "key", "value")
	assert.Contains(t, buf.String(), `"msg":"json message"`)
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	custom := slog.New(NewPrettyHandler(&buf, slog.LevelInfo, "")).With("request_id", "12345")

	ctx := WithContext(context.Background(), custom)
	FromContext(ctx).Info("hello")

	assert.Contains(t, buf.String(), "12345")
	assert.Equal(t, Log, FromContext(context.Background()))
}
