// Package logging is the structured logger used across the engine and CLI.
//
// Components take a [Logger]; when none is given they fall back to the
// global logger, which defaults to a [DefaultLogger] on stderr. Tests and
// library callers that want silence install a [NoOpLogger].
package logging

import (
	"fmt"
	"strings"
	"sync"
)

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level: %q", s)
}

// Fields are structured key/value pairs attached to a log line.
type Fields map[string]any

type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)

	// WithFields returns a logger with preset fields.
	WithFields(fields Fields) Logger

	SetLevel(level Level)
}

var (
	mu           sync.RWMutex
	globalLogger Logger = NewDefaultLogger()
)

// SetGlobalLogger replaces the global logger. nil installs a NoOpLogger.
func SetGlobalLogger(logger Logger) {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		globalLogger = NoOpLogger{}
		return
	}
	globalLogger = logger
}

func GetGlobalLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// OrGlobal returns l, or the global logger when l is nil.
func OrGlobal(l Logger) Logger {
	if l == nil {
		return GetGlobalLogger()
	}
	return l
}

func Debug(msg string, fields ...Fields) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...Fields)  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...Fields)  { GetGlobalLogger().Warn(msg, fields...) }

func Error(err error, msg string, fields ...Fields) {
	GetGlobalLogger().Error(err, msg, fields...)
}

func WithFields(fields Fields) Logger { return GetGlobalLogger().WithFields(fields) }

func SetLevel(level Level) { GetGlobalLogger().SetLevel(level) }

// NoOpLogger discards everything.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...Fields)        {}
func (NoOpLogger) Info(string, ...Fields)         {}
func (NoOpLogger) Warn(string, ...Fields)         {}
func (NoOpLogger) Error(error, string, ...Fields) {}
func (n NoOpLogger) WithFields(Fields) Logger     { return n }
func (NoOpLogger) SetLevel(Level)                 {}
