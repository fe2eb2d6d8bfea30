// Package logging builds the process logger from LOG_LEVEL and LOG_FORMAT.
//
// The "text" format uses tint for colored, human readable output during
// development; anything else produces JSON lines.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to stderr and installs it as the slog default.
func New(level, format string) *slog.Logger {
	logger := NewWithWriter(os.Stderr, level, format)
	slog.SetDefault(logger)
	return logger
}

// NewWithWriter returns a logger writing to w without touching the default.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	lvl := ParseLevel(level)

	if strings.EqualFold(format, FormatText) {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}))
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// ParseLevel maps debug, warn and error to their slog levels; anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
