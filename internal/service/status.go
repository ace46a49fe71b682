package service

// DocumentSummary is the per-document view used by the health endpoint.
type DocumentSummary struct {
	ID     string
	Name   string
	Type   string
	Pages  int
	Chunks int
}

// Status summarizes what the service currently holds.
type Status struct {
	DocumentsLoaded bool
	DocumentCount   int
	ChunkCount      int
	CacheEntries    int
	Documents       []DocumentSummary
}

// CacheSizer reports the number of cached answers.
type CacheSizer interface {
	Len() int
}

// StatusService reports ingestion status.
type StatusService struct {
	docs  DocumentRepositoryInterface
	cache CacheSizer
}

func NewStatusService(docs DocumentRepositoryInterface, cache CacheSizer) *StatusService {
	return &StatusService{docs: docs, cache: cache}
}

func (s *StatusService) Status() Status {
	docs := s.docs.List()

	st := Status{
		DocumentsLoaded: len(docs) > 0,
		DocumentCount:   len(docs),
		Documents:       make([]DocumentSummary, 0, len(docs)),
	}
	for _, d := range docs {
		st.ChunkCount += len(d.Chunks)
		st.Documents = append(st.Documents, DocumentSummary{
			ID:     d.ID,
			Name:   d.Name,
			Type:   string(d.Type),
			Pages:  d.Pages,
			Chunks: len(d.Chunks),
		})
	}
	if s.cache != nil {
		st.CacheEntries = s.cache.Len()
	}
	return st
}
