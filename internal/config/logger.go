package config

import (
	"io"
	"log/slog"
)

// NewLogger creates a slog.Logger for the given level and format. It does not
// set the global logger. Unknown levels fall back to info.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Logger builds the logger described by the config.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return NewLogger(c.Log.Level, c.Log.Format, w)
}
