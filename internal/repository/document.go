package repository

import (
	"fmt"
	"sync"

	"github.com/cloo-solutions/docqa/internal/domain"
)

// DocumentEntry is a document together with its embedding vectors.
// Vectors[i] is the embedding of Document.Chunks[i].
type DocumentEntry struct {
	Document *domain.Document
	Vectors  [][]float32
}

// ChunkVector is one stored chunk flattened into the retrieval pool.
type ChunkVector struct {
	Ref          domain.ChunkRef
	DocumentID   string
	DocumentName string
	Text         string
	Vector       []float32
}

// DocumentRepository keeps ingested documents and their vectors in memory.
type DocumentRepository struct {
	mu      sync.RWMutex
	docs    map[string]*domain.Document
	vectors map[string][][]float32
	order   []string
}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{
		docs:    make(map[string]*domain.Document),
		vectors: make(map[string][][]float32),
	}
}

// Insert commits all entries or none. Every entry must have one vector per
// chunk and an id not already present.
func (r *DocumentRepository) Insert(entries ...DocumentEntry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if err := domain.ValidateDocument(e.Document); err != nil {
			return domain.WithCause(domain.ErrMissingRequiredField, err)
		}
		if len(e.Document.Chunks) != len(e.Vectors) {
			return domain.WithCause(domain.ErrChunkVectorMismatch,
				fmt.Errorf("document %s has %d chunks and %d vectors", e.Document.ID, len(e.Document.Chunks), len(e.Vectors)))
		}
		if _, dup := seen[e.Document.ID]; dup {
			return domain.ErrDocumentAlreadyExists
		}
		seen[e.Document.ID] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		if _, exists := r.docs[e.Document.ID]; exists {
			return domain.ErrDocumentAlreadyExists
		}
	}

	for _, e := range entries {
		r.docs[e.Document.ID] = e.Document
		r.vectors[e.Document.ID] = e.Vectors
		r.order = append(r.order, e.Document.ID)
	}
	return nil
}

func (r *DocumentRepository) Get(id string) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

// List returns documents in insertion order.
func (r *DocumentRepository) List() []*domain.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]*domain.Document, 0, len(r.order))
	for _, id := range r.order {
		docs = append(docs, r.docs[id])
	}
	return docs
}

// Candidates flattens every (document, chunk, vector) triple in insertion
// order. DocumentIndex is the document's position in that order.
func (r *DocumentRepository) Candidates() []ChunkVector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pool []ChunkVector
	for docIdx, id := range r.order {
		doc := r.docs[id]
		vecs := r.vectors[id]
		for chunkIdx, text := range doc.Chunks {
			pool = append(pool, ChunkVector{
				Ref:          domain.ChunkRef{DocumentIndex: docIdx, ChunkIndex: chunkIdx},
				DocumentID:   id,
				DocumentName: doc.Name,
				Text:         text,
				Vector:       vecs[chunkIdx],
			})
		}
	}
	return pool
}

// Remove deletes a document and its vectors. It reports whether anything was removed.
func (r *DocumentRepository) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[id]; !ok {
		return false
	}
	delete(r.docs, id)
	delete(r.vectors, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *DocumentRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ChunkCount returns the number of stored chunks across all documents.
func (r *DocumentRepository) ChunkCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, doc := range r.docs {
		n += len(doc.Chunks)
	}
	return n
}
