// Package metrics instruments every pipeline stage with a fixed set of
// Prometheus collectors: stage duration, gate pass/fail counts, walk-forward
// window errors, and persona dispatch timeouts. There is no scrape endpoint
// (spec.md's Non-goals exclude a workspace-scoped dashboard surface); metrics
// are gathered on demand for the `status --metrics` CLI dump instead.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "researchkit"

// Metrics holds every collector this pipeline records. Construct one with
// New (registers against prometheus.DefaultRegisterer) or
// NewWithRegistry (registers against a caller-supplied registry, for tests
// that want a clean Gather each run).
type Metrics struct {
	StageDuration       *prometheus.HistogramVec
	GatePassTotal       *prometheus.CounterVec
	WindowErrorsTotal   *prometheus.CounterVec
	PersonaTimeoutTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New registers the pipeline's collectors against prometheus.DefaultRegisterer.
func New() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer, nil)
}

// NewWithRegistry registers against registry instead of the default,
// so callers (and tests) can Gather from a registry they control.
func NewWithRegistry(registry *prometheus.Registry) *Metrics {
	return newMetrics(registry, registry)
}

func newMetrics(registerer prometheus.Registerer, registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent executing a pipeline stage, by stage name.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"stage"}),
		GatePassTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_pass_total",
			Help:      "Count of statistical validation gate evaluations, by gate name and pass/fail result.",
		}, []string{"gate", "result"}),
		WindowErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "window_errors_total",
			Help:      "Count of walk-forward window dispatch failures, by backend and failure reason.",
		}, []string{"backend", "reason"}),
		PersonaTimeoutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persona_timeout_total",
			Help:      "Count of persona dispatch calls that missed quorum deadline, by persona name.",
		}, []string{"persona"}),
		registry: registry,
	}

	registerer.MustRegister(
		m.StageDuration,
		m.GatePassTotal,
		m.WindowErrorsTotal,
		m.PersonaTimeoutTotal,
	)
	return m
}
