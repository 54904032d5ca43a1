package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the advisory service.
type Metrics struct {
	Lookups           *prometheus.CounterVec // labels: outcome={matched,no_match}
	AdvisoryMisses    prometheus.Counter
	InvalidSelections prometheus.Counter
	LookupDuration    prometheus.Histogram

	// Report publishing metrics.
	ReportsPublished prometheus.Counter
	PublishErrors    prometheus.Counter

	DatasetRecords  prometheus.Gauge
	ForecastEnabled prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Lookups,
		m.AdvisoryMisses,
		m.InvalidSelections,
		m.LookupDuration,
		m.ReportsPublished,
		m.PublishErrors,
		m.DatasetRecords,
		m.ForecastEnabled,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_advisory",
			Name:      "lookups_total",
			Help:      "Record lookups by outcome.",
		}, []string{"outcome"}),
		AdvisoryMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_advisory",
			Name:      "advisory_misses_total",
			Help:      "Matched records whose crop stage has no catalog entry.",
		}),
		InvalidSelections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_advisory",
			Name:      "invalid_selections_total",
			Help:      "Selections rejected as incomplete or malformed.",
		}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crop_advisory",
			Name:      "lookup_duration_seconds",
			Help:      "Duration of a full resolve pass, publishing included.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_advisory",
			Name:      "reports_published_total",
			Help:      "Reports handed to the event publisher.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_advisory",
			Name:      "publish_errors_total",
			Help:      "Reports that failed to enqueue or deliver.",
		}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crop_advisory",
			Name:      "dataset_records",
			Help:      "Rows loaded from the reference table.",
		}),
		ForecastEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crop_advisory",
			Name:      "forecast_enabled",
			Help:      "1 when synthetic forecasts are attached to reports, 0 otherwise.",
		}),
	}
}
