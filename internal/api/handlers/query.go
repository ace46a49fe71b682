package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cloo-solutions/docqa/internal/api"
	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/pagination"
	"github.com/cloo-solutions/docqa/internal/service"
	"github.com/cloo-solutions/docqa/internal/telemetry"
)

type QueryService interface {
	Ask(ctx context.Context, question string) (*service.Answer, error)
}

// SearchHistory is the question/answer log.
type SearchHistory interface {
	List() []domain.SearchHistoryEntry
}

type QueryHandler struct {
	svc     QueryService
	history SearchHistory
}

func NewQueryHandler(svc QueryService, history SearchHistory) *QueryHandler {
	return &QueryHandler{svc: svc, history: history}
}

type QueryRequest struct {
	Question string `json:"question"`
}

type QueryResponse struct {
	Success bool     `json:"success"`
	Answer  string   `json:"answer"`
	Cached  bool     `json:"cached"`
	Sources []string `json:"sources,omitempty"`
}

type SearchHistoryResponse struct {
	ID        string   `json:"id"`
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources,omitempty"`
	Timestamp string   `json:"timestamp"`
}

type SearchHistoryListResponse struct {
	Success bool                    `json:"success"`
	History []SearchHistoryResponse `json:"history"`
	Cursor  string                  `json:"cursor,omitempty"`
	HasMore bool                    `json:"hasMore,omitempty"`
}

func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.svc.Ask(r.Context(), req.Question)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	cache := "miss"
	if answer.Cached {
		cache = "hit"
	}
	telemetry.TagRequest(r.Context(), "cache", cache)

	api.JSON(w, http.StatusOK, QueryResponse{
		Success: true,
		Answer:  answer.Answer,
		Cached:  answer.Cached,
		Sources: answer.Sources,
	})
}

func (h *QueryHandler) ListSearchHistory(w http.ResponseWriter, r *http.Request) {
	cursor, limit, err := pageParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	page := pagination.Paginate(h.history.List(), cursor, limit,
		domain.SearchHistoryEntry.EntryID,
		func(e domain.SearchHistoryEntry) time.Time { return e.CreatedAt },
	)

	resp := SearchHistoryListResponse{
		Success: true,
		History: make([]SearchHistoryResponse, len(page.Items)),
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	}
	for i, e := range page.Items {
		resp.History[i] = SearchHistoryResponse{
			ID:        e.ID,
			Question:  e.Question,
			Answer:    e.Answer,
			Sources:   e.Sources,
			Timestamp: e.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	api.JSON(w, http.StatusOK, resp)
}
