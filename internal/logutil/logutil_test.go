package logutil

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// Helper function to create a logger that writes to a buffer for testing
func createTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestNewTimingLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := createTestLogger(&buf)

	start := time.Now()
	// Simulate some work
	time.Sleep(10 * time.Millisecond)

	timingLogger := NewTimingLogger(logger, start, "test operation", "key", "value")
	timingLogger()

	output := buf.String()
	if !strings.Contains(output, "test operation") {
		t.Errorf("Expected log to contain 'test operation', got: %s", output)
	}
	if !strings.Contains(output, "duration") {
		t.Errorf("Expected log to contain 'duration', got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("Expected log to contain 'key=value', got: %s", output)
	}
	if !strings.Contains(output, "level=DEBUG") {
		t.Errorf("Expected log to be DEBUG level, got: %s", output)
	}
}

func TestLogAndWrapErr_WithError(t *testing.T) {
	var buf bytes.Buffer
	logger := createTestLogger(&buf)

	originalErr := errors.New("original error")
	wrappedErr := LogAndWrapErr(logger, "operation failed", originalErr, "user", "john")

	// Check the error is properly wrapped
	if wrappedErr == nil {
		t.Fatal("Expected wrapped error, got nil")
	}
	if !errors.Is(wrappedErr, originalErr) {
		t.Error("Expected wrapped error to be identifiable with errors.Is")
	}
	if !strings.Contains(wrappedErr.Error(), "operation failed") {
		t.Errorf("Expected wrapped error to contain message, got: %s", wrappedErr.Error())
	}

	// Check logging occurred
	output := buf.String()
	if !strings.Contains(output, "operation failed") {
		t.Errorf("Expected log to contain 'operation failed', got: %s", output)
	}
	if !strings.Contains(output, "user=john") {
		t.Errorf("Expected log to contain 'user=john', got: %s", output)
	}
	if !strings.Contains(output, "level=ERROR") {
		t.Errorf("Expected log to be ERROR level, got: %s", output)
	}
}

func TestLogAndWrapErr_WithNilError(t *testing.T) {
	var buf bytes.Buffer
	logger := createTestLogger(&buf)

	result := LogAndWrapErr(logger, "operation failed", nil, "user", "john")

	if result != nil {
		t.Errorf("Expected nil result for nil error, got: %v", result)
	}

	// Should not log anything
	output := buf.String()
	if output != "" {
		t.Errorf("Expected no log output for nil error, got: %s", output)
	}
}

func TestDebugAndWrapErr_WithError(t *testing.T) {
	var buf bytes.Buffer
	logger := createTestLogger(&buf)

	originalErr := errors.New("original debug error")
	wrappedErr := DebugAndWrapErr(logger, "debug operation failed", originalErr, "request_id", "xyz-123")

	if wrappedErr == nil {
		t.Fatal("Expected wrapped error, got nil")
	}
	if !errors.Is(wrappedErr, originalErr) {
		t.Error("Expected wrapped error to be identifiable with errors.Is")
	}

	output := buf.String()
	if !strings.Contains(output, "level=DEBUG") {
		t.Errorf("Expected log to be DEBUG level, got: %s", output)
	}
	if !strings.Contains(output, "request_id=xyz-123") {
		t.Errorf("Expected log to contain 'request_id=xyz-123', got: %s", output)
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := createTestLogger(&buf)

	enrichedLogger := WithFields(logger, "service", "journal", "version", "1.0")
	enrichedLogger.Info("test message")

	output := buf.String()
	if !strings.Contains(output, "service=journal") {
		t.Errorf("Expected log to contain 'service=journal', got: %s", output)
	}
	if !strings.Contains(output, "version=1.0") {
		t.Errorf("Expected log to contain 'version=1.0', got: %s", output)
	}
	if !strings.Contains(output, "test message") {
		t.Errorf("Expected log to contain 'test message', got: %s", output)
	}
}
