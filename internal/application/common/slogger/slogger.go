// Package slogger is the package-level logging facade used across vertextester.
package slogger

import (
	"context"
	"sync"

	"vertextester/internal/application/common/logging"
)

// Fields is an alias for logging.Fields for convenience.
type Fields = logging.Fields

// LoggerManager owns the process-wide logger instance.
type LoggerManager struct {
	mu     sync.RWMutex
	logger logging.ApplicationLogger
}

var defaultManager = &LoggerManager{} //nolint:gochecknoglobals // singleton logging infrastructure

func (lm *LoggerManager) get() logging.ApplicationLogger {
	lm.mu.RLock()
	logger := lm.logger
	lm.mu.RUnlock()
	if logger != nil {
		return logger
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if lm.logger == nil {
		fallback, err := logging.NewApplicationLogger(logging.Config{
			Level:  "INFO",
			Format: "json",
			Output: "stderr",
		})
		if err != nil {
			panic("failed to initialize logger: " + err.Error())
		}
		lm.logger = fallback
	}
	return lm.logger
}

func (lm *LoggerManager) set(logger logging.ApplicationLogger) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.logger = logger
}

// Configure replaces the global logger with one built from level and format.
func Configure(level, format string) error {
	logger, err := logging.NewApplicationLogger(logging.Config{
		Level:  level,
		Format: format,
		Output: "stderr",
	})
	if err != nil {
		return err
	}
	defaultManager.set(logger)
	return nil
}

// SetGlobalLogger allows setting a custom global logger (useful for testing).
func SetGlobalLogger(logger logging.ApplicationLogger) {
	defaultManager.set(logger)
}

// Debug logs a debug message with context.
func Debug(ctx context.Context, msg string, fields Fields) {
	defaultManager.get().Debug(ctx, msg, fields)
}

// Info logs an info message with context.
func Info(ctx context.Context, msg string, fields Fields) {
	defaultManager.get().Info(ctx, msg, fields)
}

// Warn logs a warning message with context.
func Warn(ctx context.Context, msg string, fields Fields) {
	defaultManager.get().Warn(ctx, msg, fields)
}

// Error logs an error message with context.
func Error(ctx context.Context, msg string, fields Fields) {
	defaultManager.get().Error(ctx, msg, fields)
}

// ErrorWithError logs an error message with an error object and context.
func ErrorWithError(ctx context.Context, err error, msg string, fields Fields) {
	defaultManager.get().ErrorWithError(ctx, err, msg, fields)
}

// WithComponent returns a logger with a specific component name.
func WithComponent(component string) logging.ApplicationLogger {
	return defaultManager.get().WithComponent(component)
}
