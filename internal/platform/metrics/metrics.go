// Package metrics holds the Prometheus collectors for the daemon. Collectors
// are registered on a private registry rather than prometheus.DefaultRegisterer
// so tests can build independent instances.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flashcard"

// Metrics bundles every collector the daemon exports.
type Metrics struct {
	registry *prometheus.Registry

	ProviderRequests *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
	Invocations      *prometheus.CounterVec
	InvocationStage  *prometheus.CounterVec
	NoteCommits      *prometheus.CounterVec
	QueueDepth       prometheus.Gauge
}

// New creates a Metrics instance backed by a fresh registry that also carries
// the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ProviderRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_requests_total",
				Help:      "Language model requests, partitioned by provider, model and outcome.",
			},
			[]string{"provider", "model", "outcome"},
		),
		ProviderLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_request_duration_seconds",
				Help:      "Latency of language model requests.",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 120},
			},
			[]string{"provider", "model"},
		),
		Invocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invocations_total",
				Help:      "Completed generation invocations, partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		InvocationStage: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invocation_failures_total",
				Help:      "Failed invocations, partitioned by the state in which they failed.",
			},
			[]string{"state"},
		),
		NoteCommits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "note_commits_total",
				Help:      "Flashcard commits to the note service, partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		QueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "task_queue_depth",
				Help:      "Generation tasks waiting for a worker.",
			},
		),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveProvider records one provider call. A nil receiver is a no-op so
// components can be constructed without metrics in tests.
func (m *Metrics) ObserveProvider(provider, model, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(provider, model, outcome).Inc()
	m.ProviderLatency.WithLabelValues(provider, model).Observe(elapsed.Seconds())
}

// ObserveInvocation records the terminal state of one invocation.
func (m *Metrics) ObserveInvocation(outcome, failedState string) {
	if m == nil {
		return
	}
	m.Invocations.WithLabelValues(outcome).Inc()
	if failedState != "" {
		m.InvocationStage.WithLabelValues(failedState).Inc()
	}
}

// ObserveCommit records one note commit attempt.
func (m *Metrics) ObserveCommit(outcome string) {
	if m == nil {
		return
	}
	m.NoteCommits.WithLabelValues(outcome).Inc()
}

// SetQueueDepth records the current number of queued tasks.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}
