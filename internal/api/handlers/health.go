package handlers

import (
	"net/http"

	"github.com/cloo-solutions/docqa/internal/api"
	"github.com/cloo-solutions/docqa/internal/service"
)

type StatusReporter interface {
	Status() service.Status
}

type HealthHandler struct {
	status StatusReporter
}

func NewHealthHandler(status StatusReporter) *HealthHandler {
	return &HealthHandler{status: status}
}

type DocumentStatusResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Pages  int    `json:"pages"`
	Chunks int    `json:"chunks"`
}

type HealthResponse struct {
	Status          string                   `json:"status"`
	DocumentsLoaded bool                     `json:"documentsLoaded"`
	DocumentCount   int                      `json:"documentCount"`
	ChunkCount      int                      `json:"chunkCount"`
	CacheEntries    int                      `json:"cacheEntries"`
	Documents       []DocumentStatusResponse `json:"documents"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.status.Status()

	resp := HealthResponse{
		Status:          "healthy",
		DocumentsLoaded: st.DocumentsLoaded,
		DocumentCount:   st.DocumentCount,
		ChunkCount:      st.ChunkCount,
		CacheEntries:    st.CacheEntries,
		Documents:       make([]DocumentStatusResponse, len(st.Documents)),
	}
	for i, d := range st.Documents {
		resp.Documents[i] = DocumentStatusResponse{
			ID:     d.ID,
			Name:   d.Name,
			Type:   d.Type,
			Pages:  d.Pages,
			Chunks: d.Chunks,
		}
	}
	api.JSON(w, http.StatusOK, resp)
}
