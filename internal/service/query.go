package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/docqa/internal/cache"
	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/observability"
	"github.com/cloo-solutions/docqa/internal/repository"
	"github.com/cloo-solutions/docqa/internal/telemetry"
	"golang.org/x/sync/singleflight"
)

// SystemInstruction constrains the model to the retrieved context.
const SystemInstruction = "You are a helpful assistant that answers questions about the user's documents. " +
	"Answer only from the provided context. If the answer cannot be found in the context, say so clearly. " +
	"Be concise but thorough."

// CompletionClient issues a single chat completion.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Answer is the result of a question.
type Answer struct {
	Question string
	Answer   string
	Cached   bool
	Sources  []string
}

// QueryService answers questions from the stored documents.
type QueryService struct {
	embedder  EmbeddingClient
	completer CompletionClient
	docs      DocumentRepositoryInterface
	cache     *cache.AnswerCache
	history   *repository.HistoryLog[domain.SearchHistoryEntry]
	metrics   *observability.Metrics
	topK      int
	uuidGen   UUIDGenerator
	now       func() time.Time
	group     singleflight.Group
}

// NewQueryService creates a new QueryService instance
func NewQueryService(
	embedder EmbeddingClient,
	completer CompletionClient,
	docs DocumentRepositoryInterface,
	answers *cache.AnswerCache,
	history *repository.HistoryLog[domain.SearchHistoryEntry],
	topK int,
) *QueryService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &QueryService{
		embedder:  embedder,
		completer: completer,
		docs:      docs,
		cache:     answers,
		history:   history,
		topK:      topK,
		uuidGen:   &DefaultUUIDGenerator{},
		now:       time.Now,
	}
}

// WithMetrics attaches Prometheus collectors.
func (s *QueryService) WithMetrics(m *observability.Metrics) *QueryService {
	s.metrics = m
	return s
}

// Ask answers question. Repeated questions that normalize to the same key are
// served from the cache; concurrent misses for one key share a single upstream call.
func (s *QueryService) Ask(ctx context.Context, question string) (*Answer, error) {
	ctx, span := telemetry.StartSpan(ctx, "QueryService.Ask", telemetry.SpanAttributes{
		Operation: "query",
	})
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}
	if s.docs.Len() == 0 {
		return nil, domain.ErrNoDocuments
	}

	if answer, ok := s.cache.Get(question); ok {
		s.metrics.RecordQuery(observability.QueryCacheHit)
		span.SetTag("cache", observability.QueryCacheHit)
		telemetry.AddBreadcrumb(ctx, "query", "answer served from cache")
		return &Answer{Question: question, Answer: answer, Cached: true}, nil
	}

	// The shared call outlives any single caller; each caller still stops
	// waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(cache.NormalizeKey(question), func() (any, error) {
		return s.answer(shared, question)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		s.metrics.RecordQuery(observability.QueryCacheError)
		span.SetError(res.Err)
		return nil, res.Err
	}

	answer := res.Val.(*Answer)
	out := *answer
	out.Question = question
	out.Sources = append([]string(nil), answer.Sources...)
	return &out, nil
}

func (s *QueryService) answer(ctx context.Context, question string) (*Answer, error) {
	if cached, ok := s.cache.Get(question); ok {
		s.metrics.RecordQuery(observability.QueryCacheHit)
		return &Answer{Question: question, Answer: cached, Cached: true}, nil
	}
	s.metrics.RecordQuery(observability.QueryCacheMiss)

	start := time.Now()
	queryVector, err := s.embedder.GenerateEmbedding(ctx, question)
	s.metrics.RecordUpstream("embed", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, domain.WithCause(domain.ErrEmbeddingFailed, err)
	}

	selected := s.retrieve(queryVector)
	prompt := BuildPrompt(question, selected)

	start = time.Now()
	completion, err := s.completer.Complete(ctx, SystemInstruction, prompt)
	s.metrics.RecordUpstream("complete", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, domain.WithCause(domain.ErrCompletionFailed, err)
	}

	sources := sourceNames(selected)
	s.cache.Set(question, completion)
	if s.history != nil {
		s.history.Append(domain.SearchHistoryEntry{
			ID:        s.uuidGen.NewString(),
			Question:  question,
			Answer:    completion,
			Sources:   sources,
			CreatedAt: s.now().UTC(),
		})
	}

	return &Answer{Question: question, Answer: completion, Sources: sources}, nil
}

// retrieve ranks the whole pool against the query and keeps the top K.
func (s *QueryService) retrieve(queryVector []float32) []repository.ChunkVector {
	pool := s.docs.Candidates()
	candidates := make([]Candidate, len(pool))
	for i, cv := range pool {
		candidates[i] = Candidate{Ref: cv.Ref, Vector: cv.Vector}
	}

	byRef := make(map[domain.ChunkRef]repository.ChunkVector, len(pool))
	for _, cv := range pool {
		byRef[cv.Ref] = cv
	}

	top := TopK(Rank(queryVector, candidates), s.topK)
	selected := make([]repository.ChunkVector, len(top))
	for i, sc := range top {
		selected[i] = byRef[sc.Ref]
	}
	return selected
}

// BuildContext joins the selected chunks, each labelled with its document name.
func BuildContext(selected []repository.ChunkVector) string {
	parts := make([]string, len(selected))
	for i, cv := range selected {
		parts[i] = fmt.Sprintf("[Document: %s]\n%s", cv.DocumentName, cv.Text)
	}
	return strings.Join(parts, "\n\n")
}

// BuildPrompt is the user message sent with SystemInstruction.
func BuildPrompt(question string, selected []repository.ChunkVector) string {
	return fmt.Sprintf("Context from the uploaded documents:\n\n%s\n\nQuestion: %s", BuildContext(selected), question)
}

// sourceNames lists distinct document names in rank order.
func sourceNames(selected []repository.ChunkVector) []string {
	seen := make(map[string]struct{}, len(selected))
	var names []string
	for _, cv := range selected {
		if _, ok := seen[cv.DocumentName]; ok {
			continue
		}
		seen[cv.DocumentName] = struct{}{}
		names = append(names, cv.DocumentName)
	}
	return names
}
