package metrics

import (
	"time"

	"mercator-hq/llmstxt/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SchedulerMetrics tracks the regeneration schedule.
//
// Metrics:
//   - llmstxt_scheduler_interval_seconds: Configured regeneration period
//   - llmstxt_scheduler_next_run_timestamp_seconds: Unix time of the next tick
type SchedulerMetrics struct {
	interval prometheus.Gauge
	nextRun  prometheus.Gauge
}

// NewSchedulerMetrics creates and registers scheduler metrics.
func NewSchedulerMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SchedulerMetrics {
	sm := &SchedulerMetrics{
		interval: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "scheduler",
				Name:      "interval_seconds",
				Help:      "Configured regeneration period in seconds",
			},
		),
		nextRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "scheduler",
				Name:      "next_run_timestamp_seconds",
				Help:      "Unix timestamp of the next scheduled export, 0 when none is pending",
			},
		),
	}

	registry.MustRegister(sm.interval, sm.nextRun)
	return sm
}

// SetSchedule records the period and the next tick. A nil next clears it.
func (sm *SchedulerMetrics) SetSchedule(period time.Duration, next *time.Time) {
	sm.interval.Set(period.Seconds())
	if next == nil {
		sm.nextRun.Set(0)
		return
	}
	sm.nextRun.Set(float64(next.Unix()))
}
