package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the exporter.
type Metrics struct {
	ReadingsExtracted prometheus.Counter
	ReadingsPublished prometheus.Counter
	ExtractErrors     prometheus.Counter
	PublishErrors     prometheus.Counter
	ExporterRunning   prometheus.Gauge

	// Poll cycle metrics.
	ExportBatchSize prometheus.Histogram
	PollDuration    prometheus.Histogram

	// LastReadingTimestamp is the unix time of the newest reading exported
	// so far, i.e. the pipeline watermark.
	LastReadingTimestamp prometheus.Gauge
}

// NewMetrics creates and registers all exporter metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReadingsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hass_etl",
			Name:      "readings_extracted_total",
			Help:      "Total temperature readings extracted from the recorder database.",
		}),
		ReadingsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hass_etl",
			Name:      "readings_published_total",
			Help:      "Total readings written to the sink topic.",
		}),
		ExtractErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hass_etl",
			Name:      "extract_errors_total",
			Help:      "Total extraction failures.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hass_etl",
			Name:      "publish_errors_total",
			Help:      "Total sink publish failures.",
		}),
		ExporterRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hass_etl",
			Name:      "exporter_running",
			Help:      "1 when the export loop is active, 0 when shut down.",
		}),
		ExportBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hass_etl",
			Name:      "export_batch_size",
			Help:      "Number of readings exported per poll cycle.",
			Buckets:   []float64{1, 5, 10, 20, 50, 100, 250, 500, 1000},
		}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hass_etl",
			Name:      "poll_duration_seconds",
			Help:      "Duration of a complete extract-publish poll cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		LastReadingTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hass_etl",
			Name:      "last_reading_timestamp_seconds",
			Help:      "Unix timestamp of the newest reading exported so far.",
		}),
	}

	prometheus.MustRegister(
		m.ReadingsExtracted,
		m.ReadingsPublished,
		m.ExtractErrors,
		m.PublishErrors,
		m.ExporterRunning,
		m.ExportBatchSize,
		m.PollDuration,
		m.LastReadingTimestamp,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ReadingsExtracted:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hass_etl", Name: "readings_extracted_total"}),
		ReadingsPublished:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hass_etl", Name: "readings_published_total"}),
		ExtractErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hass_etl", Name: "extract_errors_total"}),
		PublishErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hass_etl", Name: "publish_errors_total"}),
		ExporterRunning:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hass_etl", Name: "exporter_running"}),
		ExportBatchSize:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hass_etl", Name: "export_batch_size"}),
		PollDuration:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hass_etl", Name: "poll_duration_seconds"}),
		LastReadingTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hass_etl", Name: "last_reading_timestamp_seconds"}),
	}
}
