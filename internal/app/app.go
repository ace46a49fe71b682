// Package app builds the service state shared by the HTTP handlers and the
// background sweeper.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cloo-solutions/docqa/internal/api/handlers"
	"github.com/cloo-solutions/docqa/internal/cache"
	"github.com/cloo-solutions/docqa/internal/config"
	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/extract"
	"github.com/cloo-solutions/docqa/internal/jobs"
	"github.com/cloo-solutions/docqa/internal/observability"
	"github.com/cloo-solutions/docqa/internal/openai"
	"github.com/cloo-solutions/docqa/internal/report"
	"github.com/cloo-solutions/docqa/internal/repository"
	"github.com/cloo-solutions/docqa/internal/retention"
	"github.com/cloo-solutions/docqa/internal/server"
	"github.com/cloo-solutions/docqa/internal/service"
	"github.com/cloo-solutions/docqa/internal/storage"
)

// AIClient embeds text and answers prompts.
type AIClient interface {
	service.EmbeddingClient
	service.CompletionClient
}

// App owns every piece of per-process state. Nothing lives in globals.
type App struct {
	Config        *config.Config
	Documents     *repository.DocumentRepository
	Answers       *cache.AnswerCache
	UploadHistory *repository.HistoryLog[domain.DocumentHistoryEntry]
	SearchHistory *repository.HistoryLog[domain.SearchHistoryEntry]
	Blobs         storage.BlobStore
	Retention     *retention.Manager
	Metrics       *observability.Metrics

	Ingest *service.IngestService
	Query  *service.QueryService
	Status *service.StatusService

	Handler http.Handler
	Sweeper *jobs.SweepWorker
}

type options struct {
	ai       AIClient
	blobs    storage.BlobStore
	registry *prometheus.Registry
}

// Option overrides a collaborator that New would otherwise build from config.
type Option func(*options)

// WithAIClient replaces the OpenAI client.
func WithAIClient(ai AIClient) Option {
	return func(o *options) { o.ai = ai }
}

// WithBlobStore replaces the configured blob store.
func WithBlobStore(b storage.BlobStore) Option {
	return func(o *options) { o.blobs = b }
}

// WithRegistry registers metrics on r instead of a fresh registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(o *options) { o.registry = r }
}

// New wires the application from cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.ai == nil {
		o.ai = openai.NewClientWithConfig(openai.Config{
			APIKey:              cfg.OpenAIAPIKey,
			BaseURL:             cfg.OpenAIBaseURL,
			Timeout:             cfg.OpenAITimeout,
			EmbeddingModel:      cfg.EmbeddingModel,
			EmbeddingDimensions: cfg.EmbeddingDimensions,
			BatchSize:           cfg.EmbeddingBatchSize,
			ChatModel:           cfg.ChatModel,
		})
	}

	if o.blobs == nil {
		blobs, err := newBlobStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		o.blobs = blobs
	}

	registry := o.registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := observability.NewMetrics(registry)
	metrics.RegisterRuntimeCollectors()

	a := &App{
		Config:        cfg,
		Documents:     repository.NewDocumentRepository(),
		Answers:       cache.NewAnswerCache(cache.Options{TTL: cfg.CacheTTL, MaxSize: cfg.CacheMaxEntries}),
		UploadHistory: repository.NewHistoryLog[domain.DocumentHistoryEntry](cfg.HistoryMaxEntries),
		SearchHistory: repository.NewHistoryLog[domain.SearchHistoryEntry](cfg.HistoryMaxEntries),
		Blobs:         o.blobs,
		Metrics:       metrics,
	}
	a.Retention = retention.NewManager(a.Blobs, a.Documents)
	metrics.RegisterStateGauges(a.Documents.Len, a.Answers.Len)

	a.Ingest = service.NewIngestService(
		extract.NewWithLimit(cfg.MaxExtractBytes),
		o.ai,
		a.Blobs,
		a.Documents,
		a.Retention,
		a.UploadHistory,
		service.IngestConfig{
			MaxFiles:      cfg.MaxFiles,
			MaxFileSize:   cfg.MaxFileSize,
			ChunkMaxChars: cfg.ChunkMaxChars,
			Retention:     cfg.Retention,
		},
	).WithMetrics(metrics)
	a.Query = service.NewQueryService(o.ai, o.ai, a.Documents, a.Answers, a.SearchHistory, cfg.TopK).
		WithMetrics(metrics)
	a.Status = service.NewStatusService(a.Documents, a.Answers)

	a.Handler = server.NewRouter(server.RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(a.Ingest, a.Retention, a.Documents, a.UploadHistory),
		QueryHandler:    handlers.NewQueryHandler(a.Query, a.SearchHistory),
		HealthHandler:   handlers.NewHealthHandler(a.Status),
		ExportHandler:   handlers.NewExportHandler(report.NewRenderer(cfg.ExportDir), a.SearchHistory),
		Metrics:         metrics,
		MaxBodyBytes:    cfg.MaxUploadBytes(),
		AllowedOrigins:  cfg.CORSOrigins,
	})

	a.Sweeper = jobs.NewSweepWorker().
		Register("documents", &expirySweeper{retention: a.Retention, metrics: metrics}).
		Register("answers", a.Answers)

	return a, nil
}

// NewWorker returns the background loop that drives expiry.
func (a *App) NewWorker() *jobs.Worker {
	interval := a.Config.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}
	return jobs.NewWorker(a.Sweeper, interval)
}

func newBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, error) {
	if !cfg.HasS3() {
		store, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open upload dir: %w", err)
		}
		if n, err := store.Purge(); err != nil {
			log.Printf("storage: failed to purge stale uploads: %v", err)
		} else if n > 0 {
			log.Printf("storage: removed %d stale upload(s) from %s", n, cfg.UploadDir)
		}
		log.Printf("storage: using local directory %s", cfg.UploadDir)
		return store, nil
	}

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}
	log.Printf("storage: S3 bucket '%s' ready", cfg.S3Bucket)
	return s3Client, nil
}

// expirySweeper expires documents and counts them.
type expirySweeper struct {
	retention *retention.Manager
	metrics   *observability.Metrics
}

func (s *expirySweeper) Sweep(ctx context.Context) error {
	expired, err := s.retention.SweepAt(ctx, time.Now())
	s.metrics.RecordExpired(len(expired))
	return err
}
