// Package sink implements the delivery stage of a pipeline: the Sink
// interface (spec §4.1/§4.5's configure/write/release lifecycle) and
// the built-in sink types. A sink owns its destination handle and any
// buffering; write must tolerate concurrent calls from multiple
// per-source drivers (spec §5) since a single sink instance is shared
// across every source of its pipeline.
package sink

import "github.com/souzomain/logflow/internal/model"

// Sink accepts batches of events for delivery to a destination.
type Sink interface {
	// Configure validates cfg and prepares the destination handle.
	Configure(cfg map[string]any) error

	// Write delivers a non-empty batch. A write failure is reported to
	// the caller (spec §7's SinkFailure policy: log, increment
	// processing_errors, the batch is not redelivered) but must never
	// panic.
	Write(batch []*model.LogEvent) error

	// Release flushes any buffered data and closes the destination
	// handle. Must be safe to call exactly once after configure, even
	// if write was never called.
	Release() error
}
