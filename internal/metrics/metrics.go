// Package metrics exposes Prometheus collectors for breeding runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weasel"

// Run outcomes recorded on RunsTotal.
const (
	OutcomeReached   = "reached"
	OutcomeCapped    = "capped"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

// Metrics groups the run collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal        *prometheus.CounterVec
	GenerationsTotal prometheus.Counter
	OffspringTotal   prometheus.Counter
	BestScore        prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed breeding runs by outcome.",
		}, []string{"outcome"}),
		GenerationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generations bred across all runs.",
		}),
		OffspringTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offspring_evaluated_total",
			Help:      "Offspring scored across all runs.",
		}),
		BestScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_score",
			Help:      "Champion score of the most recent generation.",
		}),
	}
	m.registry.MustRegister(m.RunsTotal, m.GenerationsTotal, m.OffspringTotal, m.BestScore)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveGeneration records one bred generation of populationSize offspring.
func (m *Metrics) ObserveGeneration(populationSize, score int) {
	if m == nil {
		return
	}
	m.GenerationsTotal.Inc()
	m.OffspringTotal.Add(float64(populationSize))
	m.BestScore.Set(float64(score))
}

func (m *Metrics) ObserveRun(outcome string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
