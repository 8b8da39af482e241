// Package tracing sets up OpenTelemetry tracing for llmstxt.
//
// Spans are exported over OTLP gRPC to telemetry.tracing.endpoint. When
// tracing is enabled the provider is installed globally, so the export job
// (which calls otel.Tracer) and the HTTP middleware share it.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
// Sampling follows telemetry.tracing.sample_ratio and respects the decision
// of an incoming W3C traceparent header.
package tracing
