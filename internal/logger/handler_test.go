package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	log := New("json", "info", &buf)

	log.Info("verify", "token", "eyJhbGciOi", "Authorization", "Bearer abc", "user_id", "u1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, redacted, entry["token"])
	assert.Equal(t, redacted, entry["Authorization"])
	assert.Equal(t, "u1", entry["user_id"])
}

func TestPrettyLoggerRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	log := New("pretty", "debug", &buf).With("token", "secret-value")

	log.Debug("cache lookup", "key_namespace", "user")

	out := buf.String()
	assert.Contains(t, out, "cache lookup")
	assert.Contains(t, out, "key_namespace")
	assert.Contains(t, out, redacted)
	assert.NotContains(t, out, "secret-value")
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New("pretty", "warn", &buf)

	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")

	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
}

func TestPrettyHandlerWithoutLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPrettyHandler(&buf, nil)

	assert.False(t, handler.Enabled(t.Context(), slog.LevelDebug))
	assert.True(t, handler.Enabled(t.Context(), slog.LevelInfo))
}
