package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CustomWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: "json",
		Writer: &buf,
	})

	logger.Info("invite issued", "reviewee_id", "e1")

	assert.Contains(t, buf.String(), "invite issued")
	assert.Contains(t, buf.String(), "\"level\":\"INFO\"")
	assert.Contains(t, buf.String(), "\"reviewee_id\":\"e1\"")
}

func TestNew_FormatAutoDetection(t *testing.T) {
	var buf bytes.Buffer

	prod := New(Config{Environment: "production", Writer: &buf})
	prod.Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"), "production should emit JSON")

	buf.Reset()
	dev := New(Config{Environment: "development", Writer: &buf})
	dev.Info("hello")
	assert.False(t, strings.HasPrefix(buf.String(), "{"), "development should emit pretty output")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "ParseLevel(%q)", tt.input)
	}
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_Output(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "pretty", Writer: &buf})

	logger.Warn("token expired", "token_status", "expired")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "token expired")
	assert.Contains(t, out, "token_status=expired")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Writer: &buf})

	logger.WithError(assert.AnError).Error("delivery failed")

	assert.Contains(t, buf.String(), "delivery failed")
	assert.Contains(t, buf.String(), assert.AnError.Error())
}
