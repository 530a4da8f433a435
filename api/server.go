/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Recoverer:  Panic recovery (500 instead of crash)
  2. RequestID:  Unique ID per request for tracing
  3. Logger:     One zerolog line per request
  4. CORS:       Cross-origin requests, origins from config

ROUTE GROUPS:
  /api/health, /api/zones   Reference data
  /api/evaluate             Single-record assessment
  /api/evaluations/*        Batch runs and audit history
  /api/samples/*            Built-in dataset
  /api/policies/*           Policy management
  /api/admin/*              Admin operations

SECURITY NOTE:
  No authentication middleware. Deploy behind a gateway that provides it.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/zones", h.ListZones)
		r.Post("/evaluate", h.Evaluate)

		// Evaluation run routes
		r.Route("/evaluations", func(r chi.Router) {
			r.Get("/", h.ListEvaluations)
			r.Post("/", h.CreateEvaluation)
			r.Get("/{id}", h.GetEvaluation)
		})

		// Sample dataset routes
		r.Route("/samples", func(r chi.Router) {
			r.Get("/", h.ListSamples)
			r.Post("/evaluate", h.EvaluateSamples)
		})

		// Policy routes
		r.Route("/policies", func(r chi.Router) {
			r.Get("/", h.ListPolicies)
			r.Post("/", h.CreatePolicy)
			r.Get("/{id}", h.GetPolicy)
			r.Delete("/{id}", h.DeletePolicy)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

// requestLogger logs HTTP requests
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("HTTP request")
		})
	}
}
