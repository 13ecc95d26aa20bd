package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, limiter *RateLimiter, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check (never rate limited)
	r.Get("/health", h.HealthCheck)

	r.Route("/attribution", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}

		r.Route("/b2b", func(r chi.Router) {
			r.Post("/calculate", h.CalculateB2B)
			r.Post("/channel-insights", h.ChannelInsights)
			r.Post("/alignment-report", h.AlignmentReport)
			r.Get("/touchpoint-types", h.TouchpointTypes)
			r.Get("/model-info", h.ModelInfo)
		})

		r.Route("/models", func(r chi.Router) {
			r.Get("/", h.ListModels)
			r.Post("/compare", h.CompareModels)
		})

		// Legacy endpoint kept for backward compatibility; routes every
		// model_name to the B2B engine.
		r.Post("/calculate", h.CalculateLegacy)
	})

	return r
}
