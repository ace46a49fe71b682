// Package extract turns uploaded file bytes into plain text.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/ledongthuc/pdf"
)

// Result is the text pulled out of one document.
type Result struct {
	Text  string
	Pages int
}

// DefaultMaxXMLBytes bounds how much of a Word archive is inflated.
const DefaultMaxXMLBytes = 64 << 20

// Extractor dispatches on document type.
type Extractor struct {
	maxXMLBytes int64
}

func New() *Extractor {
	return NewWithLimit(DefaultMaxXMLBytes)
}

// NewWithLimit caps the decompressed size of Word document bodies.
func NewWithLimit(maxXMLBytes int64) *Extractor {
	if maxXMLBytes <= 0 {
		maxXMLBytes = DefaultMaxXMLBytes
	}
	return &Extractor{maxXMLBytes: maxXMLBytes}
}

// Extract returns the document text. Failures are wrapped in domain.ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, docType domain.DocumentType, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		res *Result
		err error
	)
	switch docType {
	case domain.DocumentTypePDF:
		res, err = extractPDF(data)
	case domain.DocumentTypeTXT:
		res = extractText(data)
	case domain.DocumentTypeDOCX:
		res, err = extractDOCX(data, e.maxXMLBytes)
	case domain.DocumentTypeDOC:
		res, err = extractDOC(data, e.maxXMLBytes)
	default:
		return nil, domain.ErrUnsupportedFileType
	}
	if err != nil {
		return nil, domain.WithCause(domain.ErrExtractionFailed, err)
	}
	return res, nil
}

func extractPDF(data []byte) (res *Result, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf text: %w", err)
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf text: %w", err)
	}

	return &Result{
		Text:  strings.ToValidUTF8(string(text), ""),
		Pages: reader.NumPage(),
	}, nil
}

func extractText(data []byte) *Result {
	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	text = strings.TrimPrefix(text, "\ufeff")
	return &Result{Text: text, Pages: formFeedPages(text)}
}

// formFeedPages counts pages in flat text; a form feed starts a new page.
func formFeedPages(text string) int {
	return 1 + strings.Count(text, "\f")
}
