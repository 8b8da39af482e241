package metrics

import (
	"time"

	"mercator-hq/llmstxt/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ExportMetrics tracks export runs.
//
// Metrics:
//   - llmstxt_export_runs_total: Runs by trigger and status
//   - llmstxt_export_run_duration_seconds: Run duration histogram
//   - llmstxt_export_errors_total: Failed runs by error kind
//   - llmstxt_export_document_bytes: Size of the last written document
//   - llmstxt_export_document_sections: Sections in the last written document
//   - llmstxt_export_items: Items per content type in the last written document
//   - llmstxt_export_last_success_timestamp_seconds: Unix time of the last successful run
type ExportMetrics struct {
	runsTotal     *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	errorsTotal   *prometheus.CounterVec
	documentBytes prometheus.Gauge
	sections      prometheus.Gauge
	items         *prometheus.GaugeVec
	lastSuccess   prometheus.Gauge
}

// NewExportMetrics creates and registers export metrics with the provided registry.
func NewExportMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ExportMetrics {
	em := &ExportMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of export runs",
			},
			[]string{"trigger", "status"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Duration of export runs in seconds",
				Buckets:   cfg.RunDurationBuckets,
			},
			[]string{"trigger"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "errors_total",
				Help:      "Total number of failed export runs by error kind",
			},
			[]string{"kind"},
		),

		documentBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "document_bytes",
				Help:      "Size in bytes of the last written document",
			},
		),

		sections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "document_sections",
				Help:      "Number of sections in the last written document",
			},
		),

		items: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "items",
				Help:      "Number of items per content type in the last written document",
			},
			[]string{"type"},
		),

		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix timestamp of the last successful export run",
			},
		),
	}

	registry.MustRegister(
		em.runsTotal,
		em.runDuration,
		em.errorsTotal,
		em.documentBytes,
		em.sections,
		em.items,
		em.lastSuccess,
	)

	return em
}

// RecordRun records the counters and duration of a finished run.
func (em *ExportMetrics) RecordRun(trigger, status string, duration time.Duration) {
	em.runsTotal.WithLabelValues(trigger, status).Inc()
	em.runDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

// RecordError counts a failed run by error kind.
func (em *ExportMetrics) RecordError(kind string) {
	em.errorsTotal.WithLabelValues(kind).Inc()
}

// SetDocument records the shape of the document just written. Item gauges
// of types missing from counts are reset to zero.
func (em *ExportMetrics) SetDocument(bytes, sections int, counts map[string]int, finished time.Time) {
	em.documentBytes.Set(float64(bytes))
	em.sections.Set(float64(sections))
	em.items.Reset()
	for contentType, n := range counts {
		em.items.WithLabelValues(contentType).Set(float64(n))
	}
	em.lastSuccess.Set(float64(finished.Unix()))
}
