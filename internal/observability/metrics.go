package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the local diagnostic counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	taps          *prometheus.CounterVec
	completions   *prometheus.CounterVec
	rollovers     prometheus.Counter
	storageErrors *prometheus.CounterVec
	lastPersisted prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		taps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sakina",
			Subsystem: "counter",
			Name:      "taps_total",
			Help:      "Counter taps by section and outcome.",
		}, []string{"section", "outcome"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sakina",
			Subsystem: "counter",
			Name:      "completions_total",
			Help:      "One-shot completion signals fired, by section.",
		}, []string{"section"}),
		rollovers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sakina",
			Subsystem: "progress",
			Name:      "rollovers_total",
			Help:      "Progress records discarded because the local date changed.",
		}),
		storageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sakina",
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Absorbed storage failures by operation.",
		}, []string{"op"}),
		lastPersisted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sakina",
			Subsystem: "storage",
			Name:      "last_persisted_timestamp_seconds",
			Help:      "Unix timestamp of the most recent successful progress write.",
		}),
	}
	m.registry.MustRegister(m.taps, m.completions, m.rollovers, m.storageErrors, m.lastPersisted)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordTap(section, outcome string) {
	if m == nil {
		return
	}
	m.taps.WithLabelValues(section, outcome).Inc()
}

func (m *Metrics) RecordCompletion(section string) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(section).Inc()
}

func (m *Metrics) RecordRollover() {
	if m == nil {
		return
	}
	m.rollovers.Inc()
}

func (m *Metrics) RecordStorageError(op string) {
	if m == nil {
		return
	}
	m.storageErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) RecordPersisted(ts time.Time) {
	if m == nil || ts.IsZero() {
		return
	}
	m.lastPersisted.Set(float64(ts.Unix()))
}
