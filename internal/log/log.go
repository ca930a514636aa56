// Package log provides a structured logging wrapper around charmbracelet/log.
// The interactive dashboard owns the terminal, so loggers are usually pointed
// at a file or discarded; static commands log to stderr.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Level represents log levels
type Level = log.Level

// Level constants
const (
	DebugLevel = log.DebugLevel
	InfoLevel  = log.InfoLevel
	WarnLevel  = log.WarnLevel
	ErrorLevel = log.ErrorLevel
	FatalLevel = log.FatalLevel
)

// Logger is a structured logger instance
type Logger struct {
	*log.Logger
}

// Options configures a logger
type Options struct {
	Level           Level
	Prefix          string
	ReportCaller    bool
	ReportTimestamp bool
	Output          io.Writer
}

// DefaultOptions returns sensible default options
func DefaultOptions() Options {
	return Options{
		Level:           InfoLevel,
		ReportCaller:    false,
		ReportTimestamp: true,
		Output:          os.Stderr,
	}
}

// New creates a new logger with the given options
func New(opts Options) *Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	l := log.NewWithOptions(output, log.Options{
		Level:           opts.Level,
		Prefix:          opts.Prefix,
		ReportCaller:    opts.ReportCaller,
		ReportTimestamp: opts.ReportTimestamp,
	})

	return &Logger{Logger: l}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return New(Options{Level: FatalLevel, Output: io.Discard})
}

// ParseLevel converts a level name such as "debug" or "warn"
func ParseLevel(name string) (Level, error) {
	if strings.TrimSpace(name) == "" {
		return InfoLevel, nil
	}
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return InfoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// OpenFile opens path for appending, creating parent directories. The caller
// closes the returned file.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

var defaultLogger = New(DefaultOptions())

// Default returns the default logger instance
func Default() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger
func SetDefault(l *Logger) {
	defaultLogger = l
}

// SetLevel sets the log level for the default logger
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

// With returns a new logger with additional context
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{Logger: l.Logger.With(keyvals...)}
}

// WithPrefix returns a new logger with the given prefix
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{Logger: l.Logger.WithPrefix(prefix)}
}

// Package-level convenience functions that use the default logger

// Debug logs a debug message
func Debug(msg interface{}, keyvals ...interface{}) {
	defaultLogger.Debug(msg, keyvals...)
}

// Info logs an info message
func Info(msg interface{}, keyvals ...interface{}) {
	defaultLogger.Info(msg, keyvals...)
}

// Warn logs a warning message
func Warn(msg interface{}, keyvals ...interface{}) {
	defaultLogger.Warn(msg, keyvals...)
}

// Error logs an error message
func Error(msg interface{}, keyvals ...interface{}) {
	defaultLogger.Error(msg, keyvals...)
}
