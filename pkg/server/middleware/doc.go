// Package middleware holds the HTTP middleware of the admin server:
// request IDs, access logging, panic recovery, bearer token auth and a
// token bucket limiting manual regenerations.
//
//	r := chi.NewRouter()
//	r.Use(middleware.Recovery(logger), middleware.RequestID, middleware.Logging(logger))
//	r.With(middleware.BearerToken(cfg.AdminToken)).Post("/api/v1/regenerate", h)
package middleware
