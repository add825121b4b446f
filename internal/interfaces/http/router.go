// Package http assembles the chi route tree and the HTTP server of the
// discovery API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/ChemSource/internal/bootstrap"
	"github.com/turtacn/ChemSource/internal/config"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSource/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemSource/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	HealthHandler  *handlers.HealthHandler
	SearchHandler  *handlers.SearchHandler
	CatalogHandler *handlers.CatalogHandler
	ArchiveHandler *handlers.ArchiveHandler

	// Middleware
	CORS        *middleware.CORSConfig
	Logging     middleware.LoggingConfig
	RateLimiter middleware.RateLimiter
	RateLimit   middleware.RateLimitConfig

	// Infrastructure
	Logger         logging.Logger
	Recorder       middleware.HTTPRecorder
	MetricsHandler http.Handler
}

// NewRouter constructs the complete HTTP route tree from the given configuration.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Recorder, cfg.Logging))
	r.Use(chimw.Recoverer)
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}

	if cfg.HealthHandler != nil {
		r.Get("/", cfg.HealthHandler.Info)
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerSearchRoutes(api, cfg.SearchHandler, cfg.RateLimiter, cfg.RateLimit)
		if cfg.CatalogHandler != nil {
			api.Get("/countries", cfg.CatalogHandler.Countries)
			api.Get("/examples", cfg.CatalogHandler.Examples)
		}
		if cfg.ArchiveHandler != nil {
			api.Get("/archive/{cas}", cfg.ArchiveHandler.List)
		}
	})

	return r
}

// registerSearchRoutes mounts the search endpoints under /search. Job polling
// is exempt from the rate limit.
func registerSearchRoutes(r chi.Router, h *handlers.SearchHandler, limiter middleware.RateLimiter, rl middleware.RateLimitConfig) {
	if h == nil {
		return
	}
	r.Route("/search", func(sr chi.Router) {
		sr.Get("/{jobID}", h.GetJob)

		sr.Group(func(limited chi.Router) {
			if limiter != nil {
				limited.Use(middleware.RateLimit(limiter, rl))
			}
			limited.Post("/", h.Search)
			limited.Post("/async", h.SubmitAsync)
		})
	})
}

// NewHandler builds the route tree for a bootstrapped application.
func NewHandler(app *bootstrap.App) http.Handler {
	logger := app.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	checkers := make([]handlers.HealthChecker, 0, len(app.Checkers))
	for _, c := range app.Checkers {
		checkers = append(checkers, c)
	}

	rc := RouterConfig{
		HealthHandler:  handlers.NewHealthHandler(config.Version, checkers...),
		SearchHandler:  handlers.NewSearchHandler(app.Service, logger),
		CatalogHandler: handlers.NewCatalogHandler(),
		Logging:        middleware.DefaultLoggingConfig(),
		Logger:         logger.Named("http"),
	}
	var archive handlers.ArchiveLister
	if app.Archive != nil {
		archive = app.Archive
	}
	rc.ArchiveHandler = handlers.NewArchiveHandler(archive)
	if app.Metrics != nil {
		rc.Recorder = app.Metrics
	}
	if app.Collector != nil {
		rc.MetricsHandler = app.Collector.Handler()
	}

	cors := middleware.DefaultCORSConfig()
	if origins := app.Config.Server.CORSOrigins; len(origins) > 0 {
		cors.AllowedOrigins = origins
	}
	rc.CORS = &cors

	if app.Config.Server.RateLimitRPS > 0 {
		rc.RateLimit = middleware.DefaultRateLimitConfig()
		rc.RateLimit.RequestsPerSecond = app.Config.Server.RateLimitRPS
		rc.RateLimit.BurstSize = app.Config.Server.RateLimitBurst
		rc.RateLimiter = middleware.NewKeyedLimiter(rc.RateLimit)
	}

	return NewRouter(rc)
}

//Personal.AI order the ending
