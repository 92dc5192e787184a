// Package source implements the collection half of a pipeline: the
// Source interface (spec §4.1/§4.2's configure/operate/release
// lifecycle) plus the built-in source types. A Source owns one
// reader goroutine; Read delivers LogEvents on a channel until the
// context is cancelled or the underlying origin is exhausted.
package source

import (
	"context"

	"github.com/souzomain/logflow/internal/model"
)

// Source collects raw log lines from an origin and turns them into
// LogEvents. Configure runs once before Read; Release runs once after
// Read's channel has closed (or Read was never started, in the
// configure-failed case).
type Source interface {
	// Configure validates cfg and prepares the source to run. Returns
	// *errs.ConfigError on bad configuration (spec §7).
	Configure(cfg map[string]any) error

	// Read starts the source's collection loop and returns a channel
	// of events. The channel is closed when ctx is cancelled or the
	// source runs out of input (e.g. a non-tailing file source that
	// reached EOF). Errors encountered mid-read are non-fatal by
	// default (spec §7's SourceFailure policy: log and continue) and
	// are reported through errs rather than by closing the channel.
	Read(ctx context.Context, errs chan<- error) (<-chan *model.LogEvent, error)

	// Release stops any background activity and frees resources
	// (open files, network connections, consumer groups).
	Release() error

	// Name identifies this source instance for logging and metadata.
	Name() string
}
