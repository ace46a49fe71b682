// Package report renders question/answer exports as PDF or Word documents.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/google/uuid"
)

// Format is an export file format.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatDOC Format = "doc"
)

// ParseFormat accepts "pdf" or "doc" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPDF:
		return FormatPDF, nil
	case FormatDOC:
		return FormatDOC, nil
	}
	return "", domain.ErrInvalidExportFormat
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/msword"
}

// Entry is one question and its answer.
type Entry struct {
	Question  string
	Answer    string
	Timestamp time.Time
}

// Report is the content of an export.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Entries     []Entry
}

// Renderer writes reports into a scratch directory. Callers remove the file
// once it has been sent.
type Renderer struct {
	dir string
}

func NewRenderer(dir string) *Renderer {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Renderer{dir: dir}
}

// Render writes rep in the given format and returns the file path.
func (r *Renderer) Render(format Format, rep Report) (string, error) {
	if len(rep.Entries) == 0 {
		return "", domain.ErrEmptyExport
	}
	if rep.GeneratedAt.IsZero() {
		rep.GeneratedAt = time.Now()
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", domain.WithCause(domain.ErrReportFailed, err)
	}

	path := filepath.Join(r.dir, fmt.Sprintf("docqa-report-%s.%s", uuid.NewString(), format))

	var err error
	switch format {
	case FormatPDF:
		err = writePDF(path, rep)
	case FormatDOC:
		err = writeDOC(path, rep)
	default:
		return "", domain.ErrInvalidExportFormat
	}
	if err != nil {
		os.Remove(path)
		return "", domain.WithCause(domain.ErrReportFailed, err)
	}
	return path, nil
}
