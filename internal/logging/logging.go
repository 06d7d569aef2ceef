package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// New creates the process logger. Format "json" and "text" select the
// standard handlers; anything else gets colored tint output.
func New(level, format string) *slog.Logger {
	return slog.New(newHandler(os.Stdout, level, format))
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	lvl := levelFromString(level)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	case "text":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	default:
		return tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.DateTime,
			NoColor:    !isTerminal(w),
		})
	}
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
