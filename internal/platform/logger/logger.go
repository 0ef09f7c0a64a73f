package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a structured logger writing to stdout. format is "json" or
// "text"; local environments log at debug level.
func New(format, env string) *slog.Logger {
	return NewWithWriter(os.Stdout, format, env)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, format, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "local" {
		opts.Level = slog.LevelDebug
	}
	var h slog.Handler
	if format == "text" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With("service", "ansdns")
}
