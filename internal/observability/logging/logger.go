package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the service logger. format is "json" (default) or "text".
func NewLogger(service, level, format string) *slog.Logger {
	return New(os.Stdout, service, level, format)
}

// New builds a logger writing to w. Stdio transports log to stderr.
func New(w io.Writer, service, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("service", service)
}

// parseLevel accepts slog level names (and offsets like "info+2") plus the
// "warning" alias. Anything else falls back to info.
func parseLevel(level string) slog.Level {
	level = strings.TrimSpace(level)
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return parsed
}
