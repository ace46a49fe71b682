package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cloo-solutions/docqa/internal/api"
	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/cloo-solutions/docqa/internal/report"
)

// ReportRenderer writes a report to disk and returns its path.
type ReportRenderer interface {
	Render(format report.Format, rep report.Report) (string, error)
}

type ExportHandler struct {
	renderer ReportRenderer
	history  SearchHistory
	now      func() time.Time
}

func NewExportHandler(renderer ReportRenderer, history SearchHistory) *ExportHandler {
	return &ExportHandler{renderer: renderer, history: history, now: time.Now}
}

type ExportQueryRequest struct {
	Format   string `json:"format"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type ExportEntryRequest struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

type ExportHistoryRequest struct {
	Format  string               `json:"format"`
	Entries []ExportEntryRequest `json:"entries"`
}

// ExportQuery renders a single question and answer.
func (h *ExportHandler) ExportQuery(w http.ResponseWriter, r *http.Request) {
	var req ExportQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	format, err := report.ParseFormat(req.Format)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.Answer) == "" {
		api.Error(w, http.StatusBadRequest, "question and answer are required")
		return
	}

	now := h.now()
	h.send(w, format, report.Report{
		Title:       "Document Q&A",
		GeneratedAt: now,
		Entries:     []report.Entry{{Question: req.Question, Answer: req.Answer, Timestamp: now}},
	})
}

// ExportHistory renders the supplied entries, or the server's search history
// when the request carries none.
func (h *ExportHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	var req ExportHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	format, err := report.ParseFormat(req.Format)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	var entries []report.Entry
	if req.Entries != nil {
		entries = make([]report.Entry, 0, len(req.Entries))
		for _, e := range req.Entries {
			ts, err := parseTimestamp(e.Timestamp)
			if err != nil {
				api.ErrorWithDetails(w, http.StatusBadRequest, "invalid entry timestamp", err.Error())
				return
			}
			entries = append(entries, report.Entry{Question: e.Question, Answer: e.Answer, Timestamp: ts})
		}
	} else {
		for _, e := range h.history.List() {
			entries = append(entries, report.Entry{Question: e.Question, Answer: e.Answer, Timestamp: e.CreatedAt})
		}
	}

	h.send(w, format, report.Report{
		Title:       "Search History",
		GeneratedAt: h.now(),
		Entries:     entries,
	})
}

func (h *ExportHandler) send(w http.ResponseWriter, format report.Format, rep report.Report) {
	path, err := h.renderer.Render(format, rep)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("export: failed to remove %s: %v", path, err)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		api.HandleError(w, domain.WithCause(domain.ErrReportFailed, err))
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("docqa-%s.%s", rep.GeneratedAt.UTC().Format("20060102-150405"), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", fmt.Sprint(info.Size()))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		log.Printf("export: stream interrupted: %v", err)
	}
}

// parseTimestamp accepts RFC 3339 or an empty string (zero time).
func parseTimestamp(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
