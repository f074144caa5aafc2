package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// filtering pipeline.
type Metrics struct {
	FilesProcessed prometheus.Counter
	FilesSkipped   prometheus.Counter
	RecordsScanned prometheus.Counter
	RecordsSkipped prometheus.Counter
	Candidates     prometheus.Counter

	// Matches counts final result rows, labelled by radius ("5km", "50km", ...).
	Matches *prometheus.CounterVec

	FileScanDuration prometheus.Histogram
	PipelineRunning  prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FilesProcessed,
		m.FilesSkipped,
		m.RecordsScanned,
		m.RecordsSkipped,
		m.Candidates,
		m.Matches,
		m.FileScanDuration,
		m.PipelineRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_filter",
			Name:      "files_processed_total",
			Help:      "Granule files fully scanned by the coarse prefilter.",
		}),
		FilesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_filter",
			Name:      "files_skipped_total",
			Help:      "Granule files skipped as unreadable.",
		}),
		RecordsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_filter",
			Name:      "records_scanned_total",
			Help:      "Raw records read from granule files.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_filter",
			Name:      "records_skipped_total",
			Help:      "Malformed records skipped during scanning.",
		}),
		Candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_filter",
			Name:      "candidates_total",
			Help:      "Records passing the coarse bounding-box prefilter.",
		}),
		Matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_filter",
			Name:      "matches_total",
			Help:      "Final result rows by buffer radius.",
		}, []string{"radius"}),
		FileScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_filter",
			Name:      "file_scan_duration_seconds",
			Help:      "Duration of a single granule file scan.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fire_filter",
			Name:      "pipeline_running",
			Help:      "1 while a filtering run is active, 0 otherwise.",
		}),
	}
}
