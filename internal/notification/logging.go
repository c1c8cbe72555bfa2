package notification

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Package-level logger for the policy engine.
var (
	engineLogger     *slog.Logger
	engineLevelVar   = new(slog.LevelVar)
	engineLoggerOnce sync.Once
)

// getLogger returns the package logger, creating it on first use. The debug
// parameter controls the level of the first initialization only.
func getLogger(debug bool) *slog.Logger {
	engineLoggerOnce.Do(func() {
		if debug {
			engineLevelVar.Set(slog.LevelDebug)
		} else {
			engineLevelVar.Set(slog.LevelInfo)
		}

		handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: engineLevelVar,
		})
		engineLogger = slog.New(handler).With("module", "notification")
	})
	return engineLogger
}

// SetDebugLevel adjusts the package log level at runtime.
func SetDebugLevel(debug bool) {
	if debug {
		engineLevelVar.Set(slog.LevelDebug)
	} else {
		engineLevelVar.Set(slog.LevelInfo)
	}
}

// discardLogger returns a logger that drops all output, for tests.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
