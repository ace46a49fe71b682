package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/extract"
	"github.com/cloo-solutions/docqa/internal/observability"
	"github.com/cloo-solutions/docqa/internal/repository"
	"github.com/cloo-solutions/docqa/internal/storage"
	"github.com/cloo-solutions/docqa/internal/telemetry"
	"github.com/google/uuid"
)

const (
	// DefaultMaxFiles is the number of files accepted per upload.
	DefaultMaxFiles = 2
	// DefaultMaxFileSize is the per-file ceiling in bytes.
	DefaultMaxFileSize = 10 << 20
	// DefaultRetention is how long an upload stays available.
	DefaultRetention = 30 * time.Minute
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	// EmbedTexts returns one vector per text, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TextExtractor turns raw file bytes into text.
type TextExtractor interface {
	Extract(ctx context.Context, docType domain.DocumentType, data []byte) (*extract.Result, error)
}

// DocumentRepositoryInterface defines the in-memory document store.
type DocumentRepositoryInterface interface {
	Insert(entries ...repository.DocumentEntry) error
	Get(id string) (*domain.Document, error)
	List() []*domain.Document
	Candidates() []repository.ChunkVector
	Len() int
	ChunkCount() int
}

// RetentionTracker schedules an uploaded blob for expiry.
type RetentionTracker interface {
	Track(id, key string, expiresAt time.Time)
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// Upload is one file received by the upload endpoint.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// IngestConfig bounds what a single upload may contain.
type IngestConfig struct {
	MaxFiles      int
	MaxFileSize   int64
	ChunkMaxChars int
	Retention     time.Duration
}

func (c IngestConfig) withDefaults() IngestConfig {
	if c.MaxFiles <= 0 {
		c.MaxFiles = DefaultMaxFiles
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.ChunkMaxChars <= 0 {
		c.ChunkMaxChars = DefaultChunkMaxChars
	}
	if c.Retention <= 0 {
		c.Retention = DefaultRetention
	}
	return c
}

// IngestService extracts, chunks and embeds uploads, then commits them to the store.
type IngestService struct {
	extractor TextExtractor
	embedder  EmbeddingClient
	blobs     storage.BlobStore
	docs      DocumentRepositoryInterface
	retention RetentionTracker
	history   *repository.HistoryLog[domain.DocumentHistoryEntry]
	metrics   *observability.Metrics
	cfg       IngestConfig
	uuidGen   UUIDGenerator
	now       func() time.Time
}

// NewIngestService creates a new IngestService instance
func NewIngestService(
	extractor TextExtractor,
	embedder EmbeddingClient,
	blobs storage.BlobStore,
	docs DocumentRepositoryInterface,
	retention RetentionTracker,
	history *repository.HistoryLog[domain.DocumentHistoryEntry],
	cfg IngestConfig,
) *IngestService {
	return &IngestService{
		extractor: extractor,
		embedder:  embedder,
		blobs:     blobs,
		docs:      docs,
		retention: retention,
		history:   history,
		cfg:       cfg.withDefaults(),
		uuidGen:   &DefaultUUIDGenerator{},
		now:       time.Now,
	}
}

// WithMetrics attaches Prometheus collectors.
func (s *IngestService) WithMetrics(m *observability.Metrics) *IngestService {
	s.metrics = m
	return s
}

// WithUUIDGen replaces the id generator (for testing).
func (s *IngestService) WithUUIDGen(gen UUIDGenerator) *IngestService {
	s.uuidGen = gen
	return s
}

// Limits returns the effective upload limits.
func (s *IngestService) Limits() IngestConfig {
	return s.cfg
}

// CheckCount rejects an upload with no files or more files than allowed.
// Handlers call it before reading file contents.
func (s *IngestService) CheckCount(n int) error {
	if n == 0 {
		return domain.ErrNoFiles
	}
	if n > s.cfg.MaxFiles {
		return domain.WithCause(domain.ErrTooManyFiles, fmt.Errorf("at most %d files per upload, got %d", s.cfg.MaxFiles, n))
	}
	return nil
}

type preparedDocument struct {
	doc     *domain.Document
	vectors [][]float32
}

// Ingest processes every upload and commits them together. Either all
// documents are stored or none are, and on failure every blob written for
// this request is removed.
func (s *IngestService) Ingest(ctx context.Context, uploads []Upload) (docs []*domain.Document, err error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.Ingest", telemetry.SpanAttributes{
		Operation: "ingest",
		Count:     len(uploads),
	})
	defer span.End()

	types, err := s.validate(uploads)
	if err != nil {
		s.metrics.RecordUpload(observability.UploadRejected, 0)
		return nil, err
	}

	var written []string
	defer func() {
		if err == nil {
			return
		}
		s.metrics.RecordUpload(observability.UploadFailed, 0)
		span.SetError(err)
		for _, key := range written {
			if delErr := s.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
				log.Printf("ingest: failed to remove blob %s: %v", key, delErr)
			}
		}
	}()

	now := s.now().UTC()
	prepared := make([]preparedDocument, 0, len(uploads))
	for i, up := range uploads {
		id := s.uuidGen.NewString()
		key := id + strings.ToLower(filepath.Ext(up.Name))

		if err := s.blobs.Put(ctx, key, up.Data, types[i].ContentType()); err != nil {
			return nil, domain.WithCause(domain.ErrStorageOperationFail, err)
		}
		written = append(written, key)

		p, err := s.prepare(ctx, up, types[i])
		if err != nil {
			return nil, err
		}
		p.doc.ID = id
		p.doc.SourceKey = key
		p.doc.CreatedAt = now
		p.doc.ExpiresAt = now.Add(s.cfg.Retention)
		prepared = append(prepared, p)
	}

	entries := make([]repository.DocumentEntry, len(prepared))
	for i, p := range prepared {
		entries[i] = repository.DocumentEntry{Document: p.doc, Vectors: p.vectors}
	}
	if err := s.docs.Insert(entries...); err != nil {
		return nil, err
	}

	docs = make([]*domain.Document, len(prepared))
	chunks := 0
	for i, p := range prepared {
		doc := p.doc
		docs[i] = doc
		chunks += len(doc.Chunks)

		s.retention.Track(doc.ID, doc.SourceKey, doc.ExpiresAt)
		if s.history != nil {
			s.history.Append(domain.DocumentHistoryEntry{
				ID:         s.uuidGen.NewString(),
				DocumentID: doc.ID,
				Name:       doc.Name,
				Type:       doc.Type,
				Pages:      doc.Pages,
				SizeBytes:  doc.SizeBytes,
				ChunkCount: len(doc.Chunks),
				CreatedAt:  now,
			})
		}
		log.Printf("ingested %s (%s): %d pages, %d chunks", doc.Name, doc.ID, doc.Pages, len(doc.Chunks))
	}

	s.metrics.RecordUpload(observability.UploadSuccess, chunks)
	return docs, nil
}

func (s *IngestService) validate(uploads []Upload) ([]domain.DocumentType, error) {
	if err := s.CheckCount(len(uploads)); err != nil {
		return nil, err
	}

	types := make([]domain.DocumentType, len(uploads))
	for i, up := range uploads {
		if int64(len(up.Data)) > s.cfg.MaxFileSize {
			return nil, domain.WithCause(domain.ErrFileTooLarge,
				fmt.Errorf("%s is %d bytes, limit is %d", up.Name, len(up.Data), s.cfg.MaxFileSize))
		}
		if len(up.Data) == 0 {
			return nil, domain.Validation(fmt.Sprintf("file %s is empty", up.Name))
		}
		docType, ok := domain.DetectDocumentType(up.Name, up.ContentType)
		if !ok {
			return nil, domain.WithCause(domain.ErrUnsupportedFileType, fmt.Errorf("%s", up.Name))
		}
		types[i] = docType
	}
	return types, nil
}

func (s *IngestService) prepare(ctx context.Context, up Upload, docType domain.DocumentType) (preparedDocument, error) {
	ctx, span := telemetry.StartSpan(ctx, "IngestService.prepare", telemetry.SpanAttributes{
		DocumentType: string(docType),
		Operation:    "extract",
	})
	defer span.End()

	start := time.Now()
	res, err := s.extractor.Extract(ctx, docType, up.Data)
	s.metrics.RecordUpstream("extract", time.Since(start).Seconds(), err)
	if err != nil {
		return preparedDocument{}, upstreamFailure(domain.ErrExtractionFailed, up.Name, err)
	}

	chunks := ChunkText(res.Text, s.cfg.ChunkMaxChars)

	var vectors [][]float32
	if len(chunks) > 0 {
		start = time.Now()
		vectors, err = s.embedder.EmbedTexts(ctx, chunks)
		s.metrics.RecordUpstream("embed", time.Since(start).Seconds(), err)
		if err != nil {
			return preparedDocument{}, upstreamFailure(domain.ErrEmbeddingFailed, up.Name, err)
		}
		if len(vectors) != len(chunks) {
			return preparedDocument{}, domain.WithCause(domain.ErrChunkVectorMismatch,
				fmt.Errorf("%s: %d chunks, %d vectors", up.Name, len(chunks), len(vectors)))
		}
	} else {
		log.Printf("ingest: %s produced no sentences to index", up.Name)
	}

	return preparedDocument{
		doc: &domain.Document{
			Name:      up.Name,
			Type:      docType,
			SizeBytes: int64(len(up.Data)),
			Pages:     res.Pages,
			RawText:   res.Text,
			Chunks:    chunks,
		},
		vectors: vectors,
	}, nil
}

// upstreamFailure wraps a collaborator error in sentinel, naming the file.
// Non-upstream domain errors (e.g. unsupported type) pass through unchanged.
func upstreamFailure(sentinel *domain.DomainError, name string, err error) error {
	if de, ok := domain.AsDomainError(err); ok {
		if de.Code != domain.ErrCodeUpstream {
			return err
		}
		if de.Err != nil {
			err = de.Err
		}
	}
	return domain.WithCause(sentinel, fmt.Errorf("%s: %w", name, err))
}
