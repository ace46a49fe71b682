package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/docqa/internal/api"
	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/pagination"
	"github.com/cloo-solutions/docqa/internal/service"
)

const (
	// uploadField is the multipart field carrying files.
	uploadField = "files"
	// legacyUploadField is the single-file field older clients send.
	legacyUploadField = "pdf"

	multipartMemory = 32 << 20
)

type IngestService interface {
	CheckCount(n int) error
	Limits() service.IngestConfig
	Ingest(ctx context.Context, uploads []service.Upload) ([]*domain.Document, error)
}

// SourceOpener streams the original bytes of a stored document.
type SourceOpener interface {
	Open(ctx context.Context, id string) (io.ReadCloser, func(), error)
}

// DocumentGetter resolves document metadata by ID.
type DocumentGetter interface {
	Get(id string) (*domain.Document, error)
}

// DocumentHistory is the upload log.
type DocumentHistory interface {
	List() []domain.DocumentHistoryEntry
	Get(id string) (domain.DocumentHistoryEntry, bool)
}

type DocumentHandler struct {
	ingest  IngestService
	sources SourceOpener
	docs    DocumentGetter
	history DocumentHistory
}

func NewDocumentHandler(ingest IngestService, sources SourceOpener, docs DocumentGetter, history DocumentHistory) *DocumentHandler {
	return &DocumentHandler{
		ingest:  ingest,
		sources: sources,
		docs:    docs,
		history: history,
	}
}

type UploadedFileResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Pages  int    `json:"pages"`
	Chunks int    `json:"chunks"`
	Size   int64  `json:"size"`
	Type   string `json:"type"`
}

type UploadResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Files   []UploadedFileResponse `json:"files"`
}

type DocumentHistoryResponse struct {
	ID         string `json:"id"`
	DocumentID string `json:"documentId"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Pages      int    `json:"pages"`
	Size       int64  `json:"size"`
	Chunks     int    `json:"chunks"`
	CreatedAt  string `json:"createdAt"`
}

type DocumentHistoryListResponse struct {
	Success bool                      `json:"success"`
	History []DocumentHistoryResponse `json:"history"`
	Cursor  string                    `json:"cursor,omitempty"`
	HasMore bool                      `json:"hasMore,omitempty"`
}

type DocumentHistoryEntryResponse struct {
	Success bool                    `json:"success"`
	Entry   DocumentHistoryResponse `json:"entry"`
}

func documentHistoryToResponse(e domain.DocumentHistoryEntry) DocumentHistoryResponse {
	return DocumentHistoryResponse{
		ID:         e.ID,
		DocumentID: e.DocumentID,
		Name:       e.Name,
		Type:       string(e.Type),
		Pages:      e.Pages,
		Size:       e.SizeBytes,
		Chunks:     e.ChunkCount,
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Upload accepts 1..MaxFiles documents. Count and size limits are checked
// before any file is persisted.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if api.DomainErrorToHTTP(err) == http.StatusRequestEntityTooLarge {
			api.HandleError(w, err)
			return
		}
		api.ErrorWithDetails(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := append([]*multipart.FileHeader{}, r.MultipartForm.File[uploadField]...)
	headers = append(headers, r.MultipartForm.File[legacyUploadField]...)

	if err := h.ingest.CheckCount(len(headers)); err != nil {
		api.HandleError(w, err)
		return
	}

	limit := h.ingest.Limits().MaxFileSize
	uploads := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > limit {
			api.HandleError(w, domain.WithCause(domain.ErrFileTooLarge,
				fmt.Errorf("%s is %d bytes, limit is %d", fh.Filename, fh.Size, limit)))
			return
		}

		data, err := readFormFile(fh)
		if err != nil {
			api.ErrorWithDetails(w, http.StatusBadRequest, "failed to read uploaded file", err.Error())
			return
		}
		uploads = append(uploads, service.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	docs, err := h.ingest.Ingest(r.Context(), uploads)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	files := make([]UploadedFileResponse, len(docs))
	for i, d := range docs {
		files[i] = UploadedFileResponse{
			ID:     d.ID,
			Name:   d.Name,
			Pages:  d.Pages,
			Chunks: len(d.Chunks),
			Size:   d.SizeBytes,
			Type:   string(d.Type),
		}
	}

	api.JSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Message: fmt.Sprintf("%d file(s) successfully processed", len(files)),
		Files:   files,
	})
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Preview streams the original upload for in-browser viewing.
func (h *DocumentHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	doc, err := h.docs.Get(id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	body, release, err := h.sources.Open(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	defer release()
	defer body.Close()

	w.Header().Set("Content-Type", doc.Type.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s", strconv.Quote(doc.Name)))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		log.Printf("preview %s: stream interrupted: %v", id, err)
	}
}

func (h *DocumentHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	cursor, limit, err := pageParams(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	page := pagination.Paginate(h.history.List(), cursor, limit,
		domain.DocumentHistoryEntry.EntryID,
		func(e domain.DocumentHistoryEntry) time.Time { return e.CreatedAt },
	)

	resp := DocumentHistoryListResponse{
		Success: true,
		History: make([]DocumentHistoryResponse, len(page.Items)),
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	}
	for i, e := range page.Items {
		resp.History[i] = documentHistoryToResponse(e)
	}
	api.JSON(w, http.StatusOK, resp)
}

func (h *DocumentHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, ok := h.history.Get(id)
	if !ok {
		api.HandleError(w, domain.ErrHistoryNotFound)
		return
	}
	api.JSON(w, http.StatusOK, DocumentHistoryEntryResponse{
		Success: true,
		Entry:   documentHistoryToResponse(entry),
	})
}
