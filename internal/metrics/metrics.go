// Package metrics exposes Prometheus counters for operator actions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeStructured = "structured"
	OutcomeText       = "text"
	OutcomeError      = "error"
	OutcomeSuccess    = "success"
)

// Metrics holds the collectors on a dedicated registry so tests and
// multiple App instances do not collide on the global one.
type Metrics struct {
	registry  *prometheus.Registry
	inputs    *prometheus.CounterVec
	publishes *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.inputs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobposting",
		Name:      "inputs_total",
		Help:      "Inputs processed by path and outcome",
	}, []string{"path", "outcome"})
	m.publishes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobposting",
		Name:      "publishes_total",
		Help:      "Publish attempts by outcome",
	}, []string{"outcome"})
	m.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jobposting",
		Name:      "extraction_duration_seconds",
		Help:      "Time spent waiting on the extraction API",
		Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"path"})

	m.registry.MustRegister(
		m.inputs, m.publishes, m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveInput records one processed input.
func (m *Metrics) ObserveInput(path, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.inputs.WithLabelValues(path, outcome).Inc()
	m.latency.WithLabelValues(path).Observe(elapsed.Seconds())
}

// ObservePublish records one publish attempt.
func (m *Metrics) ObservePublish(outcome string) {
	if m == nil {
		return
	}

	m.publishes.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
