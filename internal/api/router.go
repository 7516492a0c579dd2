package api

import (
	"net/http"

	"github.com/AlbertoRoca-web/pup-sdk/internal/api/handlers"
	"github.com/AlbertoRoca-web/pup-sdk/internal/api/middleware"
	"github.com/AlbertoRoca-web/pup-sdk/internal/config"
	"github.com/AlbertoRoca-web/pup-sdk/internal/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates the HTTP router with all bridge routes.
func NewRouter(cfg *config.Config, h *handlers.Handlers, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Logger)
	if m != nil {
		r.Use(middleware.Metrics(m))
	}
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", middleware.TraceHeader},
		MaxAge:         300,
	}))

	// Health & info
	r.Get("/", h.Health)
	r.Get("/health", h.Health)
	r.Get("/version", h.Version)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.Status)
		r.Get("/capabilities", h.Capabilities)
		r.Get("/agents", h.Agents)
		r.Post("/chat", h.Chat)
	})

	// Unknown paths and wrong methods share one answer.
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.NotFound)

	return r
}
