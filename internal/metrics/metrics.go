// Package metrics records run metrics on a private Prometheus registry.
// The CLI is short-lived, so metrics are written to a text file in the
// node_exporter textfile format instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "simscan"

// Phase names used as the "phase" label
const (
	PhaseRead    = "read"
	PhaseSign    = "sign"
	PhaseCluster = "cluster"
)

// Metrics holds every collector of one process
type Metrics struct {
	registry *prometheus.Registry

	DocumentsTotal   *prometheus.CounterVec
	DocumentsSkipped *prometheus.CounterVec
	FlaggedPairs     *prometheus.CounterVec
	RunsTotal        *prometheus.CounterVec
	PhaseDuration    *prometheus.HistogramVec
	Threshold        *prometheus.GaugeVec
	VocabularySize   *prometheus.GaugeVec
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DocumentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_total",
				Help:      "Documents signed, by submission file name",
			},
			[]string{"file"},
		),
		DocumentsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_skipped_total",
				Help:      "Documents left out of clustering",
			},
			[]string{"reason"},
		),
		FlaggedPairs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "flagged_pairs_total",
				Help:      "Ordered document pairs at or above the cutoff",
			},
			[]string{"file"},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Clustering runs by outcome",
			},
			[]string{"status"}, // "ok" / "skipped" / "error"
		),
		PhaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "phase_duration_seconds",
				Help:      "Duration of each processing phase in seconds",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"phase"},
		),
		Threshold: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "similarity_threshold",
				Help:      "Statistical threshold of the last run",
			},
			[]string{"file"},
		),
		VocabularySize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "vocabulary_size",
				Help:      "Distinct shingles of the last run",
			},
			[]string{"file"},
		),
	}

	m.registry.MustRegister(
		m.DocumentsTotal,
		m.DocumentsSkipped,
		m.FlaggedPairs,
		m.RunsTotal,
		m.PhaseDuration,
		m.Threshold,
		m.VocabularySize,
	)
	return m
}

// Registry exposes the private registry, e.g. for testutil
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePhase records the time elapsed since start under phase
func (m *Metrics) ObservePhase(phase string, start time.Time) {
	m.PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}

// WriteToTextfile writes every metric to path in the text exposition format
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
