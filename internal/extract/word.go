package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

var (
	errNoDocumentXML = errors.New("word/document.xml not found")
	errXMLTooLarge   = errors.New("word/document.xml exceeds the decompression limit")
)

func extractDOCX(data []byte, maxXML int64) (*Result, error) {
	text, err := docxText(data, maxXML)
	if err != nil {
		return nil, err
	}
	return &Result{Text: text, Pages: formFeedPages(text)}, nil
}

// extractDOC handles legacy Word uploads. Many are really OOXML with a .doc
// name; the rest are read as binary with printable runs kept. An archive
// over the decompression limit is rejected rather than scraped.
func extractDOC(data []byte, maxXML int64) (*Result, error) {
	text, err := docxText(data, maxXML)
	if errors.Is(err, errXMLTooLarge) {
		return nil, err
	}
	if err != nil {
		text = printableRuns(data, 4)
	}
	return &Result{Text: text, Pages: formFeedPages(text)}, nil
}

// docxText reads word/document.xml, refusing to inflate more than maxXML bytes.
func docxText(data []byte, maxXML int64) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a docx archive: %w", err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		if file.UncompressedSize64 > uint64(maxXML) {
			return "", errXMLTooLarge
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document.xml: %w", err)
		}
		// The declared size is untrusted; bound the actual read too.
		content, err := io.ReadAll(io.LimitReader(rc, maxXML+1))
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read document.xml: %w", err)
		}
		if int64(len(content)) > maxXML {
			return "", errXMLTooLarge
		}

		var doc documentXML
		if err := xml.Unmarshal(content, &doc); err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}

		var b strings.Builder
		for i, para := range doc.Body.Paragraphs {
			if i > 0 {
				b.WriteString("\n")
			}
			for _, r := range para.Runs {
				for _, t := range r.Text {
					b.WriteString(t.Content)
				}
			}
		}
		return strings.TrimSpace(b.String()), nil
	}
	return "", errNoDocumentXML
}

// printableRuns keeps runs of at least minRun printable ASCII bytes,
// joined by single spaces.
func printableRuns(data []byte, minRun int) string {
	var (
		out     strings.Builder
		current []byte
	)
	flush := func() {
		if len(current) >= minRun {
			if out.Len() > 0 {
				out.WriteByte(' ')
			}
			out.WriteString(strings.TrimSpace(string(current)))
		}
		current = current[:0]
	}

	for _, c := range data {
		if (c >= 32 && c < 127) || c == '\n' || c == '\t' {
			current = append(current, c)
			continue
		}
		flush()
	}
	flush()

	return strings.TrimSpace(out.String())
}
