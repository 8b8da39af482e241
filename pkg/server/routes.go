package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mercator-hq/llmstxt/pkg/server/middleware"
	"mercator-hq/llmstxt/pkg/telemetry/health"
	"mercator-hq/llmstxt/pkg/telemetry/tracing"
)

// Handler returns the router with every route and middleware mounted.
//
//	GET  /health, /ready, /version
//	GET  /metrics                  (telemetry.metrics.path)
//	GET  /llms.txt
//	GET  /api/v1/settings
//	PUT  /api/v1/settings
//	GET  /api/v1/content-types
//	POST /api/v1/regenerate
//	GET  /api/v1/status
//	GET  /api/v1/runs?limit=N
//
// /api/v1 requires the admin bearer token when one is configured.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(tracing.HTTPMiddleware)
	r.Use(middleware.Logging(s.logger))

	r.Get("/health", s.deps.Health.LivenessHandler())
	r.Head("/health", s.deps.Health.LivenessHandler())
	r.Get("/ready", s.deps.Health.ReadinessHandler())
	r.Head("/ready", s.deps.Health.ReadinessHandler())
	r.Get("/version", health.VersionHandler(
		s.deps.Version.Version,
		s.deps.Version.Commit,
		s.deps.Version.BuildTime,
	))

	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, s.deps.MetricsPath, s.deps.Metrics)
	}

	r.Get("/llms.txt", s.handleDocument)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.BearerToken(s.config.AdminToken))
		r.Use(chimw.AllowContentType("application/json"))

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
		r.Get("/content-types", s.handleContentTypes)
		r.With(middleware.RateLimit(s.regenerateLimit)).Post("/regenerate", s.handleRegenerate)
		r.Get("/status", s.handleStatus)
		r.Get("/runs", s.handleRuns)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
