// Package metrics provides Prometheus metrics for the llms.txt export job.
//
// # Metrics
//
//   - llmstxt_export_runs_total{trigger,status}: Finished runs
//   - llmstxt_export_run_duration_seconds{trigger}: Run duration histogram
//   - llmstxt_export_errors_total{kind}: Failed runs by store, write, config, timeout or other
//   - llmstxt_export_document_bytes, llmstxt_export_document_sections: Shape of the last document
//   - llmstxt_export_items{type}: Items per content type in the last document
//   - llmstxt_export_last_success_timestamp_seconds
//   - llmstxt_scheduler_interval_seconds, llmstxt_scheduler_next_run_timestamp_seconds
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	report, err := job.Run(ctx, exportCfg)
//	collector.ObserveRun("manual", report, err)
//
//	http.Handle("/metrics", collector.Handler())
//
// # Cardinality
//
// Content types are user-defined, so the items gauge admits at most
// DefaultMaxTypeLabels distinct types. Later types are summed into the
// "other" label.
package metrics
