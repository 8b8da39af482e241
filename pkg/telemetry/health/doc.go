// Package health provides liveness and readiness probes for llmstxt.
//
// # Endpoints
//
//   - /health: Liveness, answers as long as the process serves HTTP
//   - /ready: Readiness, runs every registered check and answers 503 on failure
//   - /version: Build information
//
// # Usage
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("content_store", health.PingCheck(contentStore))
//	checker.RegisterCheck("settings_store", health.PingCheck(settingsStore))
//	checker.RegisterCheck("export", health.FreshnessCheck(runner.LastSuccess, 2*interval, time.Minute))
//
//	r.Get("/health", checker.LivenessHandler())
//	r.Get("/ready", checker.ReadinessHandler())
//
// Checks run concurrently. Each is bounded by the checker timeout; a check
// that overruns is reported unhealthy with ErrCheckTimeout.
package health
