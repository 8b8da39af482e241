package metrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"mercator-hq/llmstxt/pkg/config"
	"mercator-hq/llmstxt/pkg/export"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Run status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Error kind label values for llmstxt_export_errors_total.
const (
	ErrorKindStore   = "store"
	ErrorKindWrite   = "write"
	ErrorKindConfig  = "config"
	ErrorKindTimeout = "timeout"
	ErrorKindOther   = "other"
)

// DefaultMaxTypeLabels bounds the number of distinct content types reported
// on the items gauge. Further types are folded into OverflowLabel.
const DefaultMaxTypeLabels = 64

// OverflowLabel replaces label values past the cardinality limit.
const OverflowLabel = "other"

// Collector owns the Prometheus registry and every metric exported by
// llmstxt. All Observe methods are no-ops when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	exportMetrics    *ExportMetrics
	schedulerMetrics *SchedulerMetrics

	typeLimiter *CardinalityLimiter
}

// NewCollector creates a collector registering its metrics on registry.
// A nil registry gets a fresh one with the Go runtime and process
// collectors attached.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RunDurationBuckets) == 0 {
		cfg.RunDurationBuckets = append([]float64(nil), config.DefaultRunDurationBuckets...)
	}

	return &Collector{
		config:           cfg,
		registry:         registry,
		exportMetrics:    NewExportMetrics(cfg, registry),
		schedulerMetrics: NewSchedulerMetrics(cfg, registry),
		typeLimiter:      NewCardinalityLimiter(DefaultMaxTypeLabels),
	}
}

// ObserveRun records the outcome of an export run. report carries the
// duration for failed runs too; document gauges only move on success.
func (c *Collector) ObserveRun(trigger string, report export.Report, err error) {
	if !c.config.Enabled {
		return
	}

	if err != nil {
		c.exportMetrics.RecordRun(trigger, StatusFailure, report.Duration)
		c.exportMetrics.RecordError(ErrorKind(err))
		return
	}

	c.exportMetrics.RecordRun(trigger, StatusSuccess, report.Duration)

	counts := make(map[string]int, len(report.TypeCounts))
	for contentType, n := range report.TypeCounts {
		if !c.typeLimiter.Allow(contentType) {
			contentType = OverflowLabel
		}
		counts[contentType] += n
	}

	finished := report.StartedAt.Add(report.Duration)
	if report.StartedAt.IsZero() {
		finished = time.Now()
	}
	c.exportMetrics.SetDocument(report.Bytes, report.Sections, counts, finished)
}

// ObserveSchedule records the active interval and next tick. A nil next
// means no run is pending.
func (c *Collector) ObserveSchedule(interval export.Interval, next *time.Time) {
	if !c.config.Enabled {
		return
	}

	var period time.Duration
	if next != nil {
		period = interval.Duration()
	}
	c.schedulerMetrics.SetSchedule(period, next)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ErrorKind classifies a run error for the errors_total metric.
func ErrorKind(err error) string {
	var (
		storeErr  *export.StoreError
		writeErr  *export.WriteError
		configErr *export.ConfigError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorKindTimeout
	case errors.As(err, &storeErr):
		return ErrorKindStore
	case errors.As(err, &writeErr):
		return ErrorKindWrite
	case errors.As(err, &configErr):
		return ErrorKindConfig
	default:
		return ErrorKindOther
	}
}

// CardinalityLimiter caps the number of distinct values a label may take.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting at most maxCardinality
// distinct values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already tracked or still fits under the
// limit. Admitted values are remembered.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	_, exists := cl.current[value]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[value] = struct{}{}
	return true
}

// Count returns the number of tracked values.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
