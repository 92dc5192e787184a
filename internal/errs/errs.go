// Package errs defines the error taxonomy of the engine: the kinds
// named in spec §7 and the policy each one carries.
package errs

import "fmt"

// ConfigError is raised by the config loader or any component's
// configure phase. It surfaces to the caller; the pipeline never
// starts.
type ConfigError struct {
	Item string // identifies the offending item, e.g. "sources[1]"
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Item == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Item, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError builds a ConfigError for the named item.
func NewConfigError(item string, err error) *ConfigError {
	return &ConfigError{Item: item, Err: err}
}

// SourceFailure is raised by a source's read loop. Policy: log with
// source name, increment processing_errors, sleep poll_interval,
// retry indefinitely while the pipeline runs.
type SourceFailure struct {
	Source string
	Err    error
}

func (e *SourceFailure) Error() string {
	return fmt.Sprintf("source %q: %v", e.Source, e.Err)
}

func (e *SourceFailure) Unwrap() error { return e.Err }

// ProcessError is raised by a processor's process call. Policy: drop
// the event, never propagate past the pipeline.
type ProcessError struct {
	Processor string
	Err       error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("processor %q: %v", e.Processor, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// SinkFailure is raised by a sink's write call. Policy: log with sink
// name, increment processing_errors; the batch is not redelivered.
type SinkFailure struct {
	Sink string
	Err  error
}

func (e *SinkFailure) Error() string {
	return fmt.Sprintf("sink %q: %v", e.Sink, e.Err)
}

func (e *SinkFailure) Unwrap() error { return e.Err }

// Fatal signals an unexpected invariant violation. It propagates out
// of the pipeline, which transitions to stopped; the engine logs and
// keeps other pipelines running.
type Fatal struct {
	Reason string
	Err    error
}

func (e *Fatal) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *Fatal) Unwrap() error { return e.Err }
