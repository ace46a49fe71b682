package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DocumentType identifies the source format of an uploaded document
type DocumentType string

const (
	DocumentTypePDF  DocumentType = "pdf"
	DocumentTypeTXT  DocumentType = "txt"
	DocumentTypeDOC  DocumentType = "doc"
	DocumentTypeDOCX DocumentType = "docx"
)

// ContentType returns the MIME type used when serving the original bytes.
func (t DocumentType) ContentType() string {
	switch t {
	case DocumentTypePDF:
		return "application/pdf"
	case DocumentTypeTXT:
		return "text/plain; charset=utf-8"
	case DocumentTypeDOC:
		return "application/msword"
	case DocumentTypeDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

// DetectDocumentType resolves the document type from the filename extension.
// The declared content type is only consulted when the filename has no
// extension; an unrecognised extension is rejected outright.
func DetectDocumentType(filename, contentType string) (DocumentType, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return DocumentTypePDF, true
	case ".txt", ".text":
		return DocumentTypeTXT, true
	case ".doc":
		return DocumentTypeDOC, true
	case ".docx":
		return DocumentTypeDOCX, true
	case "", ".":
	default:
		return "", false
	}

	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case "application/pdf":
		return DocumentTypePDF, true
	case "text/plain":
		return DocumentTypeTXT, true
	case "application/msword":
		return DocumentTypeDOC, true
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return DocumentTypeDOCX, true
	}
	return "", false
}

// Document is an ingested upload together with its derived chunks.
// Documents are immutable once stored.
type Document struct {
	ID        string
	Name      string
	SourceKey string // blob key of the original file
	Type      DocumentType
	SizeBytes int64
	Pages     int
	RawText   string
	Chunks    []string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ChunkRef addresses a chunk by its position in the store.
type ChunkRef struct {
	DocumentIndex int
	ChunkIndex    int
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}
	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if d.Name == "" {
		return fmt.Errorf("document Name is required")
	}
	if d.Pages < 0 {
		return fmt.Errorf("document Pages cannot be negative")
	}
	return nil
}
