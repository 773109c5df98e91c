package logutil

import (
	"fmt"
	"log/slog"
	"time"
)

// NewTimingLogger returns a closure that logs a debug message with duration when called.
// Pass in the logger, a start time, a message, and any initial fields.
func NewTimingLogger(logger *slog.Logger, start time.Time, msg string, initialFields ...any) func() {
	return func() {
		elapsed := time.Since(start)
		finalFields := append(initialFields, "duration", elapsed.String())
		logger.Debug(msg, finalFields...)
	}
}

// LogAndWrapErr logs an error with context fields and wraps it with a message.
// It returns a wrapped error (with %w) so errors.Is / errors.As still work.
func LogAndWrapErr(logger *slog.Logger, msg string, err error, fields ...any) error {
	if err == nil {
		return nil
	}
	// We conventionally put the error field at the end
	allFields := append(fields, "err", err)
	logger.Error(msg, allFields...)
	return fmt.Errorf("%s: %w", msg, err)
}

// DebugAndWrapErr logs an error at debug level with context fields and wraps it with a message.
// It returns a wrapped error (with %w) so errors.Is / errors.As still work.
func DebugAndWrapErr(logger *slog.Logger, msg string, err error, fields ...any) error {
	if err == nil {
		return nil
	}
	// We conventionally put the error field at the end
	allFields := append(fields, "err", err)
	logger.Debug(msg, allFields...)
	return fmt.Errorf("%s: %w", msg, err)
}

// WithFields returns a new logger with the given fields pre-populated
func WithFields(logger *slog.Logger, fields ...any) *slog.Logger {
	return logger.With(fields...)
}
