package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// alert ingestion pipeline.
type Metrics struct {
	AlertsFetched   prometheus.Counter
	AlertsProcessed prometheus.Counter
	AlertsSkipped   *prometheus.CounterVec // labels: reason={state,missing_data,existing}
	AlertErrors     prometheus.Counter
	JobRunning      prometheus.Gauge

	BatchDuration prometheus.Histogram
	FeedDuration  prometheus.Histogram

	ZipcodeMappings *prometheus.CounterVec // labels: outcome={created,reused}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer)
}

// NewMetricsForTesting registers against a throwaway registry so parallel
// tests do not trip duplicate-registration panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics(prometheus.NewRegistry())
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AlertsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cat_monitor",
			Name:      "alerts_fetched_total",
			Help:      "Total alert records returned by the feed.",
		}),
		AlertsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cat_monitor",
			Name:      "alerts_processed_total",
			Help:      "Total alerts successfully ingested.",
		}),
		AlertsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cat_monitor",
			Name:      "alerts_skipped_total",
			Help:      "Alerts skipped during ingestion, by reason.",
		}, []string{"reason"}),
		AlertErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cat_monitor",
			Name:      "alert_errors_total",
			Help:      "Alerts rolled back due to a per-alert failure.",
		}),
		JobRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cat_monitor",
			Name:      "fetch_job_running",
			Help:      "1 while the periodic fetch job is active.",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cat_monitor",
			Name:      "batch_duration_seconds",
			Help:      "Duration of one complete ingestion batch.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		FeedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cat_monitor",
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of the weather.gov feed request.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ZipcodeMappings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cat_monitor",
			Name:      "zipcode_mappings_total",
			Help:      "Zipcode-to-region mappings by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.AlertsFetched,
		m.AlertsProcessed,
		m.AlertsSkipped,
		m.AlertErrors,
		m.JobRunning,
		m.BatchDuration,
		m.FeedDuration,
		m.ZipcodeMappings,
	)

	return m
}
