// Package logging provides slog-based structured logging for the MindWell
// client. It exposes a process-wide default logger plus per-service file
// loggers with rotation.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

var structuredLogger *slog.Logger
var humanReadableLogger *slog.Logger

// Init initializes the logging system with structured and human-readable loggers.
// It configures JSON output for structured logs and Text output for human-readable logs.
func Init() {
	structuredLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	humanReadableLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	slog.SetDefault(structuredLogger)
}

// SetOutput redirects both loggers, primarily for tests.
func SetOutput(structuredOutput, humanReadableOutput io.Writer) {
	structuredLogger = slog.New(slog.NewJSONHandler(structuredOutput, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	humanReadableLogger = slog.New(slog.NewTextHandler(humanReadableOutput, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(structuredLogger)
}

// Structured returns the JSON logger, initializing on first use if needed.
func Structured() *slog.Logger {
	if structuredLogger == nil {
		Init()
	}
	return structuredLogger
}

// HumanReadable returns the text logger, initializing on first use if needed.
func HumanReadable() *slog.Logger {
	if humanReadableLogger == nil {
		Init()
	}
	return humanReadableLogger
}

// ForService returns the structured logger tagged with a service name.
func ForService(serviceName string) *slog.Logger {
	return Structured().With("service", serviceName)
}

// Debug logs at debug level using the structured logger.
func Debug(msg string, args ...any) {
	Structured().Debug(msg, args...)
}

// Info logs at info level using the structured logger.
func Info(msg string, args ...any) {
	Structured().Info(msg, args...)
}

// Warn logs at warn level using the structured logger.
func Warn(msg string, args ...any) {
	Structured().Warn(msg, args...)
}

// Error logs at error level using the structured logger.
func Error(msg string, args ...any) {
	Structured().Error(msg, args...)
}

// File log rotation defaults. Rotation is size-based; old files are pruned
// by count and age.
const (
	logMaxSizeMB  = 20
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// NewFileLogger creates a JSON slog.Logger writing to the given file with
// lumberjack rotation. The returned closer flushes and closes the underlying
// writer and should be called during shutdown.
func NewFileLogger(filePath, serviceName string, level slog.Leveler) (*slog.Logger, func() error, error) {
	// lumberjack doesn't create directories
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	logWriter := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
	}

	handler := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With("service", serviceName)

	return logger, logWriter.Close, nil
}
