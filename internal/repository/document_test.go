package repository

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(name string, chunks ...string) DocumentEntry {
	vectors := make([][]float32, len(chunks))
	for i := range chunks {
		vectors[i] = []float32{float32(i + 1), 0}
	}
	return DocumentEntry{
		Document: &domain.Document{
			ID:        uuid.NewString(),
			Name:      name,
			Type:      domain.DocumentTypeTXT,
			Pages:     1,
			Chunks:    chunks,
			CreatedAt: time.Now().UTC(),
		},
		Vectors: vectors,
	}
}

func TestDocumentRepository_InsertAndGet(t *testing.T) {
	repo := NewDocumentRepository()
	entry := newEntry("a.txt", "One.", "Two.")

	require.NoError(t, repo.Insert(entry))

	doc, err := repo.Get(entry.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", doc.Name)
	assert.Equal(t, 1, repo.Len())
	assert.Equal(t, 2, repo.ChunkCount())
}

func TestDocumentRepository_GetUnknown(t *testing.T) {
	repo := NewDocumentRepository()

	_, err := repo.Get("missing")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentRepository_RejectsMismatchedVectors(t *testing.T) {
	repo := NewDocumentRepository()
	good := newEntry("good.txt", "One.")
	bad := newEntry("bad.txt", "One.", "Two.")
	bad.Vectors = bad.Vectors[:1]

	err := repo.Insert(good, bad)

	assert.ErrorIs(t, err, domain.ErrChunkVectorMismatch)
	assert.Equal(t, 0, repo.Len(), "batch must be all or nothing")
}

func TestDocumentRepository_RejectsDuplicateIDs(t *testing.T) {
	repo := NewDocumentRepository()
	entry := newEntry("a.txt", "One.")
	require.NoError(t, repo.Insert(entry))

	other := newEntry("b.txt", "Two.")
	err := repo.Insert(other, entry)

	assert.ErrorIs(t, err, domain.ErrDocumentAlreadyExists)
	assert.Equal(t, 1, repo.Len())

	twice := newEntry("c.txt")
	err = repo.Insert(twice, twice)
	assert.ErrorIs(t, err, domain.ErrDocumentAlreadyExists)
}

func TestDocumentRepository_RejectsInvalidDocument(t *testing.T) {
	repo := NewDocumentRepository()

	err := repo.Insert(DocumentEntry{Document: &domain.Document{Name: "no-id"}})

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestDocumentRepository_EmptyDocumentAllowed(t *testing.T) {
	repo := NewDocumentRepository()

	require.NoError(t, repo.Insert(newEntry("empty.txt")))
	assert.Equal(t, 1, repo.Len())
	assert.Empty(t, repo.Candidates())
}

func TestDocumentRepository_CandidatesKeepAlignment(t *testing.T) {
	repo := NewDocumentRepository()
	first := newEntry("first.txt", "A.", "B.")
	second := newEntry("second.txt", "C.")
	require.NoError(t, repo.Insert(first, second))

	pool := repo.Candidates()

	require.Len(t, pool, 3)
	assert.Equal(t, domain.ChunkRef{DocumentIndex: 0, ChunkIndex: 1}, pool[1].Ref)
	assert.Equal(t, "B.", pool[1].Text)
	assert.Equal(t, []float32{2, 0}, pool[1].Vector)
	assert.Equal(t, domain.ChunkRef{DocumentIndex: 1, ChunkIndex: 0}, pool[2].Ref)
	assert.Equal(t, "second.txt", pool[2].DocumentName)
	assert.Equal(t, second.Document.ID, pool[2].DocumentID)
}

func TestDocumentRepository_ListAndRemove(t *testing.T) {
	repo := NewDocumentRepository()
	a := newEntry("a.txt", "A.")
	b := newEntry("b.txt", "B.")
	c := newEntry("c.txt", "C.")
	require.NoError(t, repo.Insert(a, b, c))

	assert.True(t, repo.Remove(b.Document.ID))
	assert.False(t, repo.Remove(b.Document.ID))

	docs := repo.List()
	require.Len(t, docs, 2)
	assert.Equal(t, "a.txt", docs[0].Name)
	assert.Equal(t, "c.txt", docs[1].Name)

	_, err := repo.Get(b.Document.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestDocumentRepository_ConcurrentInsert(t *testing.T) {
	repo := NewDocumentRepository()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Insert(newEntry("doc.txt", "A.", "B."))
			_ = repo.Candidates()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, repo.Len())
	for _, cv := range repo.Candidates() {
		assert.NotNil(t, cv.Vector)
	}
}
