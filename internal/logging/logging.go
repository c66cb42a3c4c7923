// Package logging configures the application's slog loggers: a JSON
// structured logger on stdout, a human-readable logger on stderr, and
// rotating per-service file loggers.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	structuredLogger *slog.Logger
	initOnce         sync.Once
)

// Rotation defaults for file loggers. These match the log retention the
// service needs; there is no per-file override.
const (
	maxSizeMB  = 50
	maxBackups = 3
	maxAgeDays = 28
)

// Init initializes the global loggers. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		structuredLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(structuredLogger)
	})
}

// Structured returns the global structured logger, initializing the
// logging system on first use.
func Structured() *slog.Logger {
	Init()
	return structuredLogger
}

// ForService returns the structured logger with a service attribute.
func ForService(serviceName string) *slog.Logger {
	return Structured().With("service", serviceName)
}

// NewFileLogger creates a JSON slog.Logger writing to filePath through a
// lumberjack rotating writer. The returned close function flushes and
// closes the underlying file. The level handle allows dynamic level
// changes after creation.
func NewFileLogger(filePath, serviceName string, level slog.Leveler) (*slog.Logger, func() error, error) {
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	writer := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With("service", serviceName)

	return logger, writer.Close, nil
}
