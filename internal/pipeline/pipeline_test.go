package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souzomain/logflow/internal/logging"
	"github.com/souzomain/logflow/internal/model"
	"github.com/souzomain/logflow/internal/processor"
	"github.com/souzomain/logflow/internal/sink"
)

func testLogger() *logging.Logger { return logging.GetLogger("pipeline.test") }

// fakeSource emits a fixed slice of events then closes its channel.
type fakeSource struct {
	events []*model.LogEvent
}

func (f *fakeSource) Name() string                    { return "fake" }
func (f *fakeSource) Configure(map[string]any) error   { return nil }
func (f *fakeSource) Release() error                   { return nil }
func (f *fakeSource) Read(ctx context.Context, _ chan<- error) (<-chan *model.LogEvent, error) {
	out := make(chan *model.LogEvent)
	go func() {
		defer close(out)
		for _, e := range f.events {
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// blockingSource emits events one at a time only when told to, used
// to exercise batch-timeout flushing deterministically.
type blockingSource struct {
	events chan *model.LogEvent
}

func (b *blockingSource) Name() string                  { return "blocking" }
func (b *blockingSource) Configure(map[string]any) error { return nil }
func (b *blockingSource) Release() error                 { return nil }
func (b *blockingSource) Read(ctx context.Context, _ chan<- error) (<-chan *model.LogEvent, error) {
	return b.events, nil
}

// dropEvery2nd drops every other event to exercise the processed+dropped invariant.
type dropEvery2nd struct{ n int }

func (d *dropEvery2nd) Configure(map[string]any) error { return nil }
func (d *dropEvery2nd) Release() error                 { return nil }
func (d *dropEvery2nd) Process(e *model.LogEvent) (*model.LogEvent, error) {
	d.n++
	if d.n%2 == 0 {
		return nil, nil
	}
	return e, nil
}

// recordingSink collects every batch written to it.
type recordingSink struct {
	mu      sync.Mutex
	batches [][]*model.LogEvent
}

func (r *recordingSink) Configure(map[string]any) error { return nil }
func (r *recordingSink) Release() error                 { return nil }
func (r *recordingSink) Write(batch []*model.LogEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batch)
	return nil
}

func (r *recordingSink) totalEvents() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, b := range r.batches {
		total += len(b)
	}
	return total
}

func newTestPipeline(name string, src *fakeSource, sinks ...*recordingSink) *Pipeline {
	p := &Pipeline{Name: name}
	p.log = testLogger()
	p.descriptor.BatchSize = 100
	p.descriptor.BatchTimeout = 5
	p.sources = []namedSource{{name: "fake", src: src}}
	for _, s := range sinks {
		p.sinks = append(p.sinks, s)
	}
	return p
}

func TestPipelineDeliversAllEventsToSink(t *testing.T) {
	events := []*model.LogEvent{
		model.New("file", "a", "1"),
		model.New("file", "a", "2"),
		model.New("file", "a", "3"),
	}
	src := &fakeSource{events: events}
	snk := &recordingSink{}
	p := newTestPipeline("t1", src, snk)

	err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snk.totalEvents())

	stats := p.Stats()
	assert.EqualValues(t, 3, stats.EventsProcessed)
	assert.EqualValues(t, 0, stats.EventsDropped)
}

func TestPipelineEmptySourceCleanStop(t *testing.T) {
	src := &fakeSource{events: nil}
	snk := &recordingSink{}
	p := newTestPipeline("t2", src, snk)

	err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snk.totalEvents())
	assert.False(t, p.Stats().Running)
}

func TestPipelineBatchSizeFlushesEarly(t *testing.T) {
	events := make([]*model.LogEvent, 5)
	for i := range events {
		events[i] = model.New("file", "a", "x")
	}
	src := &fakeSource{events: events}
	snk := &recordingSink{}
	p := newTestPipeline("t3", src, snk)
	p.descriptor.BatchSize = 2

	require.NoError(t, p.Run(context.Background()))

	snk.mu.Lock()
	defer snk.mu.Unlock()
	require.Len(t, snk.batches, 3) // 2, 2, 1
	assert.Len(t, snk.batches[0], 2)
	assert.Len(t, snk.batches[1], 2)
	assert.Len(t, snk.batches[2], 1)
}

func TestPipelineProcessedPlusDroppedEqualsEntered(t *testing.T) {
	events := make([]*model.LogEvent, 6)
	for i := range events {
		events[i] = model.New("file", "a", "x")
	}
	src := &fakeSource{events: events}
	snk := &recordingSink{}
	p := newTestPipeline("t4", src, snk)
	p.sources[0].processors = []processor.Processor{&dropEvery2nd{}}

	require.NoError(t, p.Run(context.Background()))

	stats := p.Stats()
	assert.EqualValues(t, 6, stats.EventsProcessed+stats.EventsDropped)
	assert.EqualValues(t, 3, stats.EventsProcessed)
	assert.EqualValues(t, 3, stats.EventsDropped)
}

func TestPipelineBatchTimeoutFlushesOnNextArrival(t *testing.T) {
	evCh := make(chan *model.LogEvent)
	src := &blockingSource{events: evCh}
	snk := &recordingSink{}
	p := &Pipeline{Name: "t5", log: testLogger()}
	p.descriptor.BatchSize = 100
	p.descriptor.BatchTimeout = 0.05 // 50ms
	p.sources = []namedSource{{name: "blocking", src: src}}
	p.sinks = []sink.Sink{snk}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	evCh <- model.New("file", "a", "1")
	time.Sleep(80 * time.Millisecond)
	evCh <- model.New("file", "a", "2") // triggers flush of [1,2]: timeout elapsed since last flush

	time.Sleep(80 * time.Millisecond)
	evCh <- model.New("file", "a", "3") // triggers a second flush of [3]

	time.Sleep(20 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	snk.mu.Lock()
	defer snk.mu.Unlock()
	require.GreaterOrEqual(t, len(snk.batches), 2)
}
