package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/cloo-solutions/docqa/internal/api"
	"github.com/cloo-solutions/docqa/internal/api/handlers"
	"github.com/cloo-solutions/docqa/internal/api/middleware"
	"github.com/cloo-solutions/docqa/internal/observability"
)

const defaultMaxBodyBytes int64 = 5 * 1024 * 1024

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
	QueryHandler    *handlers.QueryHandler
	HealthHandler   *handlers.HealthHandler
	ExportHandler   *handlers.ExportHandler

	// Metrics is optional; when set requests are counted and /metrics is served.
	Metrics *observability.Metrics
	// MaxBodyBytes bounds request bodies; 0 uses a 5 MiB default.
	MaxBodyBytes int64
	// AllowedOrigins feeds CORS; empty allows any origin.
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Recover)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", cfg.HealthHandler.Health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Post("/upload", cfg.DocumentHandler.Upload)
	r.Get("/pdf/{id}", cfg.DocumentHandler.Preview)
	r.Route("/history", func(r chi.Router) {
		r.Get("/", cfg.DocumentHandler.ListHistory)
		r.Get("/{id}", cfg.DocumentHandler.GetHistory)
	})

	r.Post("/query", cfg.QueryHandler.Query)
	r.Get("/search-history", cfg.QueryHandler.ListSearchHistory)

	r.Post("/export-query", cfg.ExportHandler.ExportQuery)
	r.Post("/export-history", cfg.ExportHandler.ExportHistory)

	return r
}
