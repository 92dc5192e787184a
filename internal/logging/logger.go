// Package logging provides component-scoped structured logging for
// every source, processor, sink, pipeline, and the engine.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var base zerolog.Logger

func init() {
	base = zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// Configure sets the process-wide log level and output format. JSON
// output is used for machine consumption; otherwise a console writer
// is used.
func Configure(level string, jsonOutput bool, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	zerolog.SetGlobalLevel(parseLevel(level))
	if jsonOutput {
		base = zerolog.New(out).With().Timestamp().Logger()
		return
	}
	base = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Logger is a named, structured logger scoped to one component
// instance (a source, processor, sink, pipeline, or the engine).
type Logger struct {
	zl zerolog.Logger
}

// Fields carries structured context attached to a single log line.
type Fields map[string]any

// GetLogger returns a Logger tagged with component. Call sites pass a
// stable, human-readable identity such as "source.broker" or
// "pipeline.app-logs".
func GetLogger(component string) *Logger {
	return &Logger{zl: base.With().Str("component", component).Logger()}
}

func withFields(ev *zerolog.Event, fields Fields) *zerolog.Event {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	return ev
}

// Debug logs a debug-level message with optional structured fields.
func (l *Logger) Debug(message string, fields ...Fields) {
	ev := l.zl.Debug()
	if len(fields) > 0 {
		ev = withFields(ev, fields[0])
	}
	ev.Msg(message)
}

// Info logs an info-level message with optional structured fields.
func (l *Logger) Info(message string, fields ...Fields) {
	ev := l.zl.Info()
	if len(fields) > 0 {
		ev = withFields(ev, fields[0])
	}
	ev.Msg(message)
}

// Warn logs a warn-level message with optional structured fields.
func (l *Logger) Warn(message string, fields ...Fields) {
	ev := l.zl.Warn()
	if len(fields) > 0 {
		ev = withFields(ev, fields[0])
	}
	ev.Msg(message)
}

// Error logs an error-level message, attaching err when non-nil.
func (l *Logger) Error(message string, err error, fields ...Fields) {
	ev := l.zl.Error()
	if err != nil {
		ev = ev.Err(err)
	}
	if len(fields) > 0 {
		ev = withFields(ev, fields[0])
	}
	ev.Msg(message)
}

// LogSinkOperation records a sink write outcome — call-site
// convenience kept from the teacher's logger, generalized from
// blockchain-specific sink events to pipeline sink batches.
func (l *Logger) LogSinkOperation(sinkName, operation string, eventCount int, duration time.Duration, success bool) {
	fields := Fields{
		"sink_name":   sinkName,
		"operation":   operation,
		"event_count": eventCount,
		"duration_ms": duration.Milliseconds(),
		"success":     success,
	}
	if success {
		l.Info("sink operation completed", fields)
	} else {
		l.Warn("sink operation failed", fields)
	}
}
