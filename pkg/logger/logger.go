package logger

import (
	"log"
	"log/slog"
)

// New returns a stdlib *log.Logger whose output is forwarded to base as
// records tagged with component. Libraries that only accept a *log.Logger
// (Kafka client, net/http server) log through it.
func New(base *slog.Logger, component string, level slog.Level) *log.Logger {
	if base == nil {
		base = slog.Default()
	}
	return slog.NewLogLogger(base.With("component", component).Handler(), level)
}
