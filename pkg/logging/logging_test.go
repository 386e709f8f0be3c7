package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "production", slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("couple linked", "user_id", "user:a")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "couple linked", entry["msg"])
	assert.Equal(t, "user:a", entry["user_id"])
}

func TestNew_DevelopmentIsText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "development", slog.LevelDebug)

	logger.Debug("sweeping")

	out := buf.String()
	assert.Contains(t, out, "sweeping")
	assert.False(t, json.Valid([]byte(strings.TrimSpace(out))))
}
