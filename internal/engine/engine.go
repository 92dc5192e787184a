// Package engine owns every loaded pipeline and the top-level
// start/stop/status operations (spec §4.7). Grounded on the teacher's
// main.go signal-handling shape, generalized from one tracker to N
// named pipelines stopped serially on shutdown.
package engine

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/souzomain/logflow/internal/config"
	"github.com/souzomain/logflow/internal/logging"
	"github.com/souzomain/logflow/internal/pipeline"
)

// Engine loads pipeline descriptors and drives their lifecycle.
type Engine struct {
	log *logging.Logger

	mu        sync.Mutex
	pipelines map[string]*pipeline.Pipeline
	done      map[string]chan struct{}
}

// New returns an empty, ready-to-use Engine.
func New() *Engine {
	return &Engine{
		log:       logging.GetLogger("engine"),
		pipelines: make(map[string]*pipeline.Pipeline),
		done:      make(map[string]chan struct{}),
	}
}

// Load reads, validates, and instantiates the pipeline described by
// path, replacing any previously loaded pipeline of the same name. A
// loaded pipeline is not started; call Start to run it.
func (e *Engine) Load(path string) (string, error) {
	descriptor, err := config.Load(path)
	if err != nil {
		return "", err
	}

	p, err := pipeline.New(*descriptor)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	if existing, ok := e.pipelines[descriptor.Name]; ok {
		e.log.Warn("replacing existing pipeline", logging.Fields{"name": descriptor.Name})
		e.mu.Unlock()
		_ = existing.Stop()
		e.mu.Lock()
	}
	e.pipelines[descriptor.Name] = p
	e.mu.Unlock()

	e.log.Info("loaded pipeline", logging.Fields{"name": descriptor.Name})
	return descriptor.Name, nil
}

// Start runs the named pipeline in the background. Returns an error
// if no such pipeline is loaded.
func (e *Engine) Start(name string) error {
	e.mu.Lock()
	p, ok := e.pipelines[name]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("pipeline not found: %s", name)
	}
	done := make(chan struct{})
	e.done[name] = done
	e.mu.Unlock()

	go func() {
		defer close(done)
		if err := p.Run(context.Background()); err != nil {
			e.log.Warn("pipeline exited with error", logging.Fields{"name": name, "error": err.Error()})
		}
	}()

	e.log.Info("started pipeline", logging.Fields{"name": name})
	return nil
}

// Stop stops the named pipeline and waits for it to finish.
func (e *Engine) Stop(name string) error {
	e.mu.Lock()
	p, ok := e.pipelines[name]
	done := e.done[name]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("pipeline not found: %s", name)
	}

	if err := p.Stop(); err != nil {
		e.log.Warn("error stopping pipeline", logging.Fields{"name": name, "error": err.Error()})
	}
	if done != nil {
		<-done
	}
	e.log.Info("stopped pipeline", logging.Fields{"name": name})
	return nil
}

// StartAll starts every loaded pipeline and installs SIGINT/SIGTERM
// handlers that call StopAll when either signal arrives.
func (e *Engine) StartAll() error {
	for _, name := range e.List() {
		if err := e.Start(name); err != nil {
			return err
		}
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		signal.Stop(sigCh)
		e.StopAll()
	}()
	return nil
}

// StopAll stops every loaded pipeline, serially, in no particular
// order. Errors stopping one pipeline do not prevent the others from
// being stopped.
func (e *Engine) StopAll() {
	for _, name := range e.List() {
		if err := e.Stop(name); err != nil {
			e.log.Warn("error during stop-all", logging.Fields{"name": name, "error": err.Error()})
		}
	}
}

// List returns the names of every loaded pipeline.
func (e *Engine) List() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.pipelines))
	for name := range e.pipelines {
		names = append(names, name)
	}
	return names
}

// Status describes one pipeline's current lifetime counters.
type Status struct {
	Name             string
	Running          bool
	EventsProcessed  int64
	EventsDropped    int64
	ProcessingErrors int64
}

// Status returns the current status of the named pipeline.
func (e *Engine) Status(name string) (Status, error) {
	e.mu.Lock()
	p, ok := e.pipelines[name]
	e.mu.Unlock()
	if !ok {
		return Status{}, fmt.Errorf("pipeline not found: %s", name)
	}
	stats := p.Stats()
	return Status{
		Name:             name,
		Running:          stats.Running,
		EventsProcessed:  stats.EventsProcessed,
		EventsDropped:    stats.EventsDropped,
		ProcessingErrors: stats.ProcessingErrors,
	}, nil
}

// StatusAll returns the status of every loaded pipeline.
func (e *Engine) StatusAll() []Status {
	names := e.List()
	out := make([]Status, 0, len(names))
	for _, name := range names {
		if status, err := e.Status(name); err == nil {
			out = append(out, status)
		}
	}
	return out
}
