package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/veripay/veripay/internal/adapter/http/handler"
	"github.com/veripay/veripay/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	CaptureHandler   *handler.CaptureHandler
	ReconcileHandler *handler.ReconcileHandler
	HealthHandler    *handler.HealthHandler
	Logger           zerolog.Logger
	RateLimit        float64
	RateBurst        int
}

// NewRouter creates the HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.NewRecoveryMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
			r.Use(limiter.Limit)
		}

		r.Route("/captures", func(r chi.Router) {
			r.Post("/verify", cfg.CaptureHandler.Verify)
			r.Get("/{id}", cfg.CaptureHandler.Get)
		})

		r.Route("/reconciliations", func(r chi.Router) {
			r.Post("/", cfg.ReconcileHandler.Run)
			r.Get("/{id}", cfg.ReconcileHandler.Get)
		})

		r.Route("/restaurants/{restaurantID}", func(r chi.Router) {
			r.Get("/captures", cfg.CaptureHandler.List)
			r.Get("/reconciliations", cfg.ReconcileHandler.List)
		})
	})

	return r
}
