// Package pipeline runs one configured pipeline: it instantiates
// sources, processors, and sinks through the registry, drives one
// reader goroutine per source, and fans every produced batch out to
// every sink. Grounded on the teacher's single-tracker monitorBlocks
// loop and sinks.Manager.Write fan-out, generalized from one hardcoded
// Ethereum poll loop to N independent per-source reader goroutines
// feeding a shared sink fan-out (spec §4.6).
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/souzomain/logflow/internal/config"
	"github.com/souzomain/logflow/internal/errs"
	"github.com/souzomain/logflow/internal/logging"
	"github.com/souzomain/logflow/internal/metrics"
	"github.com/souzomain/logflow/internal/model"
	"github.com/souzomain/logflow/internal/processor"
	"github.com/souzomain/logflow/internal/registry"
	"github.com/souzomain/logflow/internal/sink"
	"github.com/souzomain/logflow/internal/source"
)

// Pipeline owns the sources, per-source processor chains, and sinks
// of one named pipeline, plus its lifetime counters.
type Pipeline struct {
	Name string

	descriptor config.PipelineDescriptor
	sources    []namedSource
	sinks      []sink.Sink

	log *logging.Logger

	mu              sync.Mutex
	running         bool
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	eventsProcessed int64
	eventsDropped   int64
	processingErr   int64
}

type namedSource struct {
	name       string
	src        source.Source
	processors []processor.Processor
}

// New builds a Pipeline by resolving every component named in
// descriptor through the registry and configuring it. Every source
// gets its own freshly constructed processor chain (spec §9's
// recommended option (b)), so stateful processors (e.g. enrichment
// caches) never see interleaved events from two sources.
func New(descriptor config.PipelineDescriptor) (*Pipeline, error) {
	p := &Pipeline{
		Name:       descriptor.Name,
		descriptor: descriptor,
		log:        logging.GetLogger("pipeline." + descriptor.Name),
	}

	for _, spec := range descriptor.Sources {
		instance, err := registry.New(registry.RoleSource, spec.Type)
		if err != nil {
			return nil, errs.NewConfigError("source."+spec.Name, err)
		}
		src, ok := instance.(source.Source)
		if !ok {
			return nil, errs.NewConfigError("source."+spec.Name, errUnexpectedType(spec.Type))
		}
		if err := src.Configure(spec.Config); err != nil {
			return nil, errs.NewConfigError("source."+spec.Name, err)
		}

		chain, err := buildProcessorChain(descriptor.Processors)
		if err != nil {
			return nil, err
		}

		p.sources = append(p.sources, namedSource{name: spec.Name, src: src, processors: chain})
	}

	for _, spec := range descriptor.Sinks {
		instance, err := registry.New(registry.RoleSink, spec.Type)
		if err != nil {
			return nil, errs.NewConfigError("sink."+spec.Name, err)
		}
		snk, ok := instance.(sink.Sink)
		if !ok {
			return nil, errs.NewConfigError("sink."+spec.Name, errUnexpectedType(spec.Type))
		}
		if err := snk.Configure(spec.Config); err != nil {
			return nil, errs.NewConfigError("sink."+spec.Name, err)
		}
		p.sinks = append(p.sinks, snk)
	}

	return p, nil
}

func buildProcessorChain(specs []config.ComponentSpec) ([]processor.Processor, error) {
	chain := make([]processor.Processor, 0, len(specs))
	for _, spec := range specs {
		instance, err := registry.New(registry.RoleProcessor, spec.Type)
		if err != nil {
			return nil, errs.NewConfigError("processor."+spec.Name, err)
		}
		proc, ok := instance.(processor.Processor)
		if !ok {
			return nil, errs.NewConfigError("processor."+spec.Name, errUnexpectedType(spec.Type))
		}
		if err := proc.Configure(spec.Config); err != nil {
			return nil, errs.NewConfigError("processor."+spec.Name, err)
		}
		chain = append(chain, proc)
	}
	return chain, nil
}

func errUnexpectedType(typ string) error {
	return &errs.Fatal{Reason: "registered constructor for " + typ + " did not satisfy the expected interface"}
}

// Run starts one reader goroutine per source and blocks until ctx is
// cancelled or every source's Read channel closes. Run returns after
// every reader goroutine has drained and flushed its final batch.
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.mu.Unlock()

	metrics.PipelinesRunning.Inc()
	defer metrics.PipelinesRunning.Dec()

	p.log.Info("starting pipeline", nil)

	errCh := make(chan error, len(p.sources)*2+1)

	for _, ns := range p.sources {
		p.wg.Add(1)
		go func(ns namedSource) {
			defer p.wg.Done()
			p.driveSource(runCtx, ns, errCh)
		}(ns)
	}

	go func() {
		p.wg.Wait()
		close(errCh)
	}()

	var firstErr error
	for err := range errCh {
		if err == nil {
			continue
		}
		p.log.Warn("pipeline error", logging.Fields{"error": err.Error()})
		if firstErr == nil {
			firstErr = err
		}
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	p.log.Info("pipeline stopped", logging.Fields{
		"events_processed": p.eventsProcessed,
		"events_dropped":   p.eventsDropped,
		"processing_errors": p.processingErr,
	})
	return firstErr
}

// Stop signals every reader goroutine to drain and return, then waits
// for them to finish and releases every component exactly once.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
	return p.releaseAll()
}

func (p *Pipeline) releaseAll() error {
	var firstErr error
	for _, ns := range p.sources {
		if err := ns.src.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
		for _, proc := range ns.processors {
			if err := proc.Release(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	for _, snk := range p.sinks {
		if err := snk.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// driveSource reads events from one source, runs each through the
// source's own processor chain, and accumulates a batch flushed by
// size or by elapsed time since the last flush. The timeout is
// checked only when a new event arrives, never by a background timer
// (spec §9 Open Question, option (a), mirrored deliberately).
func (p *Pipeline) driveSource(ctx context.Context, ns namedSource, pipelineErrCh chan<- error) {
	sourceErrCh := make(chan error, 8)
	events, err := ns.src.Read(ctx, sourceErrCh)
	if err != nil {
		p.reportErr(pipelineErrCh, &errs.SourceFailure{Source: ns.name, Err: err})
		return
	}

	batchSize := p.descriptor.BatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}
	batchTimeout := p.descriptor.BatchTimeoutDuration()
	if batchTimeout <= 0 {
		batchTimeout = config.DefaultBatchTimeout
	}

	var batch []*model.LogEvent
	lastFlush := time.Now()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		p.flushBatch(batch)
		batch = nil
		lastFlush = time.Now()
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case err, ok := <-sourceErrCh:
			if !ok {
				sourceErrCh = nil
				continue
			}
			p.reportErr(pipelineErrCh, err)
		case event, ok := <-events:
			if !ok {
				flush()
				return
			}
			processed := p.runChain(ns, event)
			if processed != nil {
				batch = append(batch, processed)
			}
			if len(batch) >= batchSize || time.Since(lastFlush) >= batchTimeout {
				flush()
			}
		}
	}
}

func (p *Pipeline) runChain(ns namedSource, event *model.LogEvent) *model.LogEvent {
	current := event
	for _, proc := range ns.processors {
		if current == nil {
			break
		}
		next, err := proc.Process(current)
		if err != nil {
			p.incErrors()
			p.log.Warn("processor error", logging.Fields{"source": ns.name, "error": err.Error()})
			p.incDropped()
			return nil
		}
		current = next
	}
	if current != nil {
		p.incProcessed()
	} else {
		p.incDropped()
	}
	return current
}

func (p *Pipeline) flushBatch(batch []*model.LogEvent) {
	if len(batch) == 0 {
		return
	}
	timer := time.Now()
	for _, snk := range p.sinks {
		if err := snk.Write(batch); err != nil {
			p.incErrors()
			p.log.Warn("sink write failed", logging.Fields{"error": err.Error()})
		}
	}
	metrics.BatchFlushDuration.WithLabelValues(p.Name).Observe(time.Since(timer).Seconds())
}

func (p *Pipeline) reportErr(ch chan<- error, err error) {
	p.incErrors()
	select {
	case ch <- err:
	default:
	}
}

func (p *Pipeline) incProcessed() {
	p.mu.Lock()
	p.eventsProcessed++
	p.mu.Unlock()
	metrics.EventsProcessedTotal.WithLabelValues(p.Name).Inc()
}

func (p *Pipeline) incDropped() {
	p.mu.Lock()
	p.eventsDropped++
	p.mu.Unlock()
	metrics.EventsDroppedTotal.WithLabelValues(p.Name).Inc()
}

func (p *Pipeline) incErrors() {
	p.mu.Lock()
	p.processingErr++
	p.mu.Unlock()
	metrics.ProcessingErrorsTotal.WithLabelValues(p.Name).Inc()
}

// Stats returns a snapshot of the pipeline's lifetime counters.
type Stats struct {
	EventsProcessed int64
	EventsDropped   int64
	ProcessingErrors int64
	Running         bool
}

func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		EventsProcessed:  p.eventsProcessed,
		EventsDropped:    p.eventsDropped,
		ProcessingErrors: p.processingErr,
		Running:          p.running,
	}
}
