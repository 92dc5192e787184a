// Package processor implements the transformation stage of a
// pipeline: the Processor interface (spec §4.1/§4.3's
// configure/process/release lifecycle) and the built-in processor
// types.
package processor

import "github.com/souzomain/logflow/internal/model"

// Processor transforms, filters, or enriches one event at a time.
// Process returns the (possibly mutated) event to pass it onward, or
// nil to drop it from the pipeline — spec §7's ProcessError policy
// applies on error: the event is dropped, never propagated.
type Processor interface {
	// Configure validates cfg and prepares the processor to run.
	Configure(cfg map[string]any) error

	// Process transforms event in place and returns it, or returns nil
	// to drop the event.
	Process(event *model.LogEvent) (*model.LogEvent, error)

	// Release frees any resources held by the processor (open lookup
	// files, database handles).
	Release() error
}
