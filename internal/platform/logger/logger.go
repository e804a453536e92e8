// Package logger provides the shared structured logger. All binaries log
// JSON to stdout; the level comes from VERO_LOG_LEVEL.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a JSON slog.Logger writing to stdout.
func New() *slog.Logger {
	return newLogger(os.Stdout)
}

// NewStderr returns a JSON slog.Logger writing to stderr, for binaries
// whose stdout carries protocol traffic.
func NewStderr() *slog.Logger {
	return newLogger(os.Stderr)
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: levelFromEnv(),
	}))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("VERO_LOG_LEVEL")) {
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
