package service

import (
	"testing"

	"github.com/cloo-solutions/docqa/internal/cache"
	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusService_Empty(t *testing.T) {
	svc := NewStatusService(repository.NewDocumentRepository(), cache.NewAnswerCache(cache.Options{}))

	st := svc.Status()

	assert.False(t, st.DocumentsLoaded)
	assert.Equal(t, 0, st.DocumentCount)
	assert.NotNil(t, st.Documents)
}

func TestStatusService_Summaries(t *testing.T) {
	docs := repository.NewDocumentRepository()
	answers := cache.NewAnswerCache(cache.Options{})
	answers.Set("q", "a")
	require.NoError(t, docs.Insert(repository.DocumentEntry{
		Document: &domain.Document{ID: "d1", Name: "a.pdf", Type: domain.DocumentTypePDF, Pages: 4, Chunks: []string{"A.", "B."}},
		Vectors:  [][]float32{{1}, {2}},
	}))

	st := NewStatusService(docs, answers).Status()

	assert.True(t, st.DocumentsLoaded)
	assert.Equal(t, 1, st.DocumentCount)
	assert.Equal(t, 2, st.ChunkCount)
	assert.Equal(t, 1, st.CacheEntries)
	require.Len(t, st.Documents, 1)
	assert.Equal(t, DocumentSummary{ID: "d1", Name: "a.pdf", Type: "pdf", Pages: 4, Chunks: 2}, st.Documents[0])
}
