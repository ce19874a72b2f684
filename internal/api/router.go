package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds all checks behind one /api/health request.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		// Lookups are recorded to InfluxDB when configured
		r.Group(func(r chi.Router) {
			r.Use(s.lookupMetricsMiddleware)

			r.Route("/ble", func(r chi.Router) {
				r.Get("/by_pillars", s.handleBLEByPillars)
				r.Get("/detail", s.handleBLEDetail)
			})

			r.Get("/worker/{bldg_id}", s.handleGetWorker)
		})
	})

	return r
}

// handleHealth reports 503 when the database cannot be reached. Optional
// dependencies that fail turn the status to "degraded" but keep 200, since
// lookups are still served.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if s.db != nil {
		if err := s.db.HealthCheck(ctx); err != nil {
			s.logger.Warn("health check failed", "component", "database", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":   "unavailable",
				"version":  s.version,
				"database": "unreachable",
			})
			return
		}
	}

	resp := map[string]any{
		"status":  "ok",
		"version": s.version,
	}
	if len(s.checks) > 0 {
		components := make(map[string]string, len(s.checks))
		for name, check := range s.checks {
			if err := check.HealthCheck(ctx); err != nil {
				s.logger.Warn("health check failed", "component", name, "error", err)
				components[name] = "unreachable"
				resp["status"] = "degraded"
				continue
			}
			components[name] = "ok"
		}
		resp["components"] = components
	}

	writeJSON(w, http.StatusOK, resp)
}
