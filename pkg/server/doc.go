// Package server provides the HTTP admin surface of llmstxt.
//
// It serves the generated document, the health probes, the Prometheus
// endpoint and a small JSON API to read and change the export settings,
// trigger a regeneration and inspect past runs. Routing uses chi.
//
//	srv := server.New(&cfg.Server, server.Dependencies{
//	    Runner:       r,
//	    Settings:     provider,
//	    Types:        contentStore,
//	    Runs:         settingsStore,
//	    Health:       checker,
//	    Metrics:      collector.Handler(),
//	    MetricsPath:  cfg.Telemetry.Metrics.Path,
//	    DocumentPath: cfg.OutputPath(),
//	})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is done and then shuts down gracefully.
//
// # Authentication
//
// When server.admin_token is set, every /api/v1 route requires
// "Authorization: Bearer <token>". The probes, /metrics and /llms.txt stay
// public.
package server
