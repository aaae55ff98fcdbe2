// Package logger provides structured logging for tgbridge.
//
// The hook binary must keep stdout clean for the decision JSON Claude Code
// reads, so all logging goes to a file (or any io.Writer in tests).
package logger

import (
	"io"
	"log/slog"
	"os"
)

// LogFilePermissions defines the file permissions for log files (owner read/write only).
const LogFilePermissions = 0o600

// Logger provides the structured logging interface used across tgbridge.
type Logger interface {
	// Debug logs debug-level messages with optional key-value pairs.
	Debug(msg string, keysAndValues ...any)

	// Info logs info-level messages with optional key-value pairs.
	Info(msg string, keysAndValues ...any)

	// Error logs error-level messages with optional key-value pairs.
	Error(msg string, keysAndValues ...any)

	// With returns a new logger with additional key-value pairs.
	With(keysAndValues ...any) Logger
}

// SlogLogger implements Logger on top of log/slog.
type SlogLogger struct {
	sl *slog.Logger
}

// NewFileLogger creates a Logger appending to the log file at path.
func NewFileLogger(path string, level Level) (*SlogLogger, error) {
	//nolint:gosec // G304: log path comes from config, not user input
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermissions)
	if err != nil {
		return nil, err
	}

	return NewWriterLogger(file, level), nil
}

// NewWriterLogger creates a Logger writing to w.
func NewWriterLogger(w io.Writer, level Level) *SlogLogger {
	return &SlogLogger{
		sl: slog.New(NewWriterHandler(w, level)),
	}
}

// Nop returns a Logger that discards everything.
func Nop() *SlogLogger {
	return NewWriterLogger(io.Discard, LevelError)
}

// Debug logs debug-level messages.
func (l *SlogLogger) Debug(msg string, keysAndValues ...any) {
	l.sl.Debug(msg, keysAndValues...)
}

// Info logs info-level messages.
func (l *SlogLogger) Info(msg string, keysAndValues ...any) {
	l.sl.Info(msg, keysAndValues...)
}

// Error logs error-level messages.
func (l *SlogLogger) Error(msg string, keysAndValues ...any) {
	l.sl.Error(msg, keysAndValues...)
}

// With returns a new logger with additional base key-value pairs.
func (l *SlogLogger) With(keysAndValues ...any) Logger {
	return &SlogLogger{sl: l.sl.With(keysAndValues...)}
}

var _ Logger = (*SlogLogger)(nil)
