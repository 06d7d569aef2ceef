package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewForwardsToSlog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	New(base, "kafka", slog.LevelDebug).Printf("client/metadata fetching %d topics", 1)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "component=kafka")
	assert.Contains(t, out, "client/metadata fetching 1 topics")
}
