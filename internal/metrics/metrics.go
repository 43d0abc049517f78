// Package metrics exposes ingestion counters through a private Prometheus
// registry. The CLI writes them in the text exposition format so a node
// exporter textfile collector can pick them up after a batch run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "xpypact"

// Metrics groups the ingestion collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	inventoriesLoaded prometheus.Counter
	appendFailures    prometheus.Counter
	timeSteps         prometheus.Counter
	nuclideRows       prometheus.Counter
	gammaRows         prometheus.Counter
	loadDuration      prometheus.Histogram
	saves             *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		inventoriesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventories_loaded_total",
			Help:      "Inventories parsed and appended to the collector.",
		}),
		appendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "append_failures_total",
			Help:      "Inputs that failed to load or append.",
		}),
		timeSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "time_steps_total",
			Help:      "Time steps collected.",
		}),
		nuclideRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timestep_nuclide_rows_total",
			Help:      "Per time step nuclide rows collected.",
		}),
		gammaRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timestep_gamma_rows_total",
			Help:      "Gamma spectrum rows collected.",
		}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inventory_load_seconds",
			Help:      "Time spent decoding and reconstructing one inventory.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Completed result saves by target.",
		}, []string{"target"}),
	}
	m.registry.MustRegister(
		m.inventoriesLoaded,
		m.appendFailures,
		m.timeSteps,
		m.nuclideRows,
		m.gammaRows,
		m.loadDuration,
		m.saves,
	)
	return m
}

// Appended records one successfully appended inventory.
func (m *Metrics) Appended(timeSteps, nuclideRows, gammaRows int, load time.Duration) {
	if m == nil {
		return
	}
	m.inventoriesLoaded.Inc()
	m.timeSteps.Add(float64(timeSteps))
	m.nuclideRows.Add(float64(nuclideRows))
	m.gammaRows.Add(float64(gammaRows))
	m.loadDuration.Observe(load.Seconds())
}

// Failed records one input that could not be appended.
func (m *Metrics) Failed() {
	if m == nil {
		return
	}
	m.appendFailures.Inc()
}

// Saved records a completed save to target ("parquet" or "sqlite").
func (m *Metrics) Saved(target string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(target).Inc()
}

// Gatherer returns the underlying registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteToTextfile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
