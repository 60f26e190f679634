package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each dependency check run by GET /api/health.
const healthCheckTimeout = 3 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/sensors", func(r chi.Router) {
			r.Get("/", s.handleListSensors)
			r.Post("/", s.handleCreateSensor)

			// One param name for the whole subtree; chi cannot hold two
			// differently named params at the same position.
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSensor)
				r.Put("/", s.handleUpdateSensor)
				r.Delete("/", s.handleDeleteSensor)
				r.Put("/enable", s.handleEnableSensor)
				r.Delete("/disable", s.handleDisableSensor)
			})
		})

		r.Get("/audit", s.handleListAuditLogs)
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth runs the registered dependency checks.
// It answers 200 when all pass and 503 otherwise.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.healthChecks))
	for name := range s.healthChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	checks := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := s.healthChecks[name](ctx)
		cancel()

		if err != nil {
			s.logger.Warn("health check failed", "dependency", name, "error", err)
			checks[name] = err.Error()
			status = "degraded"
			continue
		}
		checks[name] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":  status,
		"version": s.version,
		"checks":  checks,
	})
}
