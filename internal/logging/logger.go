// Package logging decouples the application from a concrete logging
// framework. Core packages depend on Logger; logrus backs it in production
// and MockLogger captures entries in tests.
package logging

// Logger is the structured logging interface used throughout the module.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a new logger with an error field attached.
	WithError(err error) Logger

	// WithField returns a new logger with a single field attached.
	WithField(key string, value interface{}) Logger

	// WithFields returns a new logger with multiple fields attached.
	WithFields(fields ...Field) Logger
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

var defaultLogger Logger = NewLogrusAdapter("info", "text")

// Default returns the shared logger instance. Packages that accept a nil
// Logger fall back to this.
func Default() Logger {
	return defaultLogger
}

// SetDefault replaces the shared logger instance.
func SetDefault(l Logger) {
	if l != nil {
		defaultLogger = l
	}
}
