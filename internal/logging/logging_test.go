package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"trace":   slog.LevelDebug,
	}
	for in, want := range cases {
		assert.Equal(t, want, levelFromString(in), in)
	}
}

func TestJSONHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "info", "json"))
	logger.Debug("hidden")
	logger.Info("post created", "post_id", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "post created", entry["msg"])
	assert.EqualValues(t, 42, entry["post_id"])
}

func TestTintHandlerWithoutColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slog.New(newHandler(&buf, "debug", "")).Info("pipeline run finished", "published", 3)

	out := buf.String()
	assert.Contains(t, out, "pipeline run finished")
	assert.Contains(t, out, "published=3")
	assert.NotContains(t, out, "\x1b[")
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "out.log"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, isTerminal(f))
	assert.False(t, isTerminal(&bytes.Buffer{}))
}
