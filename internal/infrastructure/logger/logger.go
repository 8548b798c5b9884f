package logger

import "io"

type Fields map[string]any

// Logger is the logging contract used across the relay. Components scope
// their output with WithField rather than sharing one flat logger.
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...any)
	Info(msg string)
	Infof(format string, args ...any)
	Warn(msg string)
	Warnf(format string, args ...any)
	Error(msg string)
	Errorf(format string, args ...any)
	Fatal(msg string)
	Fatalf(format string, args ...any)

	WithField(key string, value any) Logger
	WithFields(fields Fields) Logger

	SetOutput(output io.Writer)
}
