// Package logger provides component-scoped structured logging on top of
// zerolog.
//
// A nil *Logger is valid and discards everything, so library packages can
// take an optional logger without guarding each call.
package logger

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Logger writes structured events tagged with a component name.
type Logger struct {
	zl zerolog.Logger
}

// New creates a JSON logger writing to w at the given level.
func New(w io.Writer, level zerolog.Level) *Logger {
	zl := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
	return &Logger{zl: zl}
}

// NewConsole creates a human-readable logger writing to w.
func NewConsole(w io.Writer, level zerolog.Level) *Logger {
	return New(zerolog.ConsoleWriter{Out: w, NoColor: true}, level)
}

// Nop returns a logger that discards all events.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a
// zerolog level. The empty string maps to info.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(s))
}

// Debug logs a debug event.
func (l *Logger) Debug(component, message string, fields map[string]interface{}) {
	if l == nil {
		return
	}
	withFields(l.zl.Debug().Str("component", component), fields).Msg(message)
}

// Info logs an informational event.
func (l *Logger) Info(component, message string, fields map[string]interface{}) {
	if l == nil {
		return
	}
	withFields(l.zl.Info().Str("component", component), fields).Msg(message)
}

// Warning logs a warning event.
func (l *Logger) Warning(component, message string, fields map[string]interface{}) {
	if l == nil {
		return
	}
	withFields(l.zl.Warn().Str("component", component), fields).Msg(message)
}

// Error logs err with the operation that failed.
func (l *Logger) Error(component string, err error, fields map[string]interface{}) {
	if l == nil {
		return
	}
	withFields(l.zl.Error().Str("component", component).Err(err), fields).Msg("operation failed")
}

func withFields(event *zerolog.Event, fields map[string]interface{}) *zerolog.Event {
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	return event
}
