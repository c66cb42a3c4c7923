// Package-level logging for datastore operations.
package datastore

import (
	"log/slog"
	"sync"

	"github.com/gardenbase/seedvault/internal/logging"
)

var (
	datastoreLogger   *slog.Logger
	datastoreLevelVar = new(slog.LevelVar)
	loggerCloseFunc   func() error
	loggerOnce        sync.Once
)

const defaultLogPath = "logs/datastore.log"

// getLogger returns the package file logger, initializing it on first
// use. Falls back to the service logger when the log file cannot be
// created.
func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		datastoreLevelVar.Set(slog.LevelInfo)
		var err error
		datastoreLogger, loggerCloseFunc, err = logging.NewFileLogger(defaultLogPath, "datastore", datastoreLevelVar)
		if err != nil {
			datastoreLogger = logging.ForService("datastore")
			loggerCloseFunc = func() error { return nil }
		}
	})
	return datastoreLogger
}

// CloseLogger flushes and closes the datastore log file.
func CloseLogger() error {
	if loggerCloseFunc != nil {
		return loggerCloseFunc()
	}
	return nil
}
