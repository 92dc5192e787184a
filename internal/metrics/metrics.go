// Package metrics exposes the engine's per-pipeline counters as
// Prometheus collectors. The HTTP surface that would scrape them is
// an external collaborator (spec §1) and is not implemented here;
// this registry exists so that collaborator has something to read.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	EventsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logflow_events_processed_total",
			Help: "Total events delivered to every sink, by pipeline.",
		},
		[]string{"pipeline"},
	)

	EventsDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logflow_events_dropped_total",
			Help: "Total events dropped by a processor, by pipeline.",
		},
		[]string{"pipeline"},
	)

	ProcessingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logflow_processing_errors_total",
			Help: "Total exceptions raised by a processor or sink, by pipeline.",
		},
		[]string{"pipeline"},
	)

	PipelinesRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "logflow_pipelines_running",
			Help: "Number of pipelines currently running.",
		},
	)

	BatchFlushDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "logflow_batch_flush_duration_seconds",
			Help:    "Time taken to write a batch to all sinks, by pipeline.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pipeline"},
	)
)

func init() {
	prometheus.MustRegister(
		EventsProcessedTotal,
		EventsDroppedTotal,
		ProcessingErrorsTotal,
		PipelinesRunning,
		BatchFlushDuration,
	)
}
