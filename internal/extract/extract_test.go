package extract

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"context"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloo-solutions/docqa/internal/domain"
	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body bytes.Buffer
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	xmlDoc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(xmlDoc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_Text(t *testing.T) {
	res, err := New().Extract(context.Background(), domain.DocumentTypeTXT, []byte("First page.\fSecond page."))

	require.NoError(t, err)
	assert.Equal(t, "First page.\fSecond page.", res.Text)
	assert.Equal(t, 2, res.Pages)
}

func TestExtract_TextStripsBOMAndInvalidUTF8(t *testing.T) {
	data := append([]byte("\xEF\xBB\xBFHello"), 0xff, '.')
	res, err := New().Extract(context.Background(), domain.DocumentTypeTXT, data)

	require.NoError(t, err)
	assert.Equal(t, "Hello.", res.Text)
	assert.Equal(t, 1, res.Pages)
}

func TestExtract_DOCX(t *testing.T) {
	data := buildDOCX(t, "Heading.", "Body text here.")

	res, err := New().Extract(context.Background(), domain.DocumentTypeDOCX, data)

	require.NoError(t, err)
	assert.Equal(t, "Heading.\nBody text here.", res.Text)
	assert.Equal(t, 1, res.Pages)
}

func TestExtract_DOCXInvalid(t *testing.T) {
	_, err := New().Extract(context.Background(), domain.DocumentTypeDOCX, []byte("not a zip"))

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_DOCWithOOXMLContent(t *testing.T) {
	data := buildDOCX(t, "Saved as doc.")

	res, err := New().Extract(context.Background(), domain.DocumentTypeDOC, data)

	require.NoError(t, err)
	assert.Equal(t, "Saved as doc.", res.Text)
}

func TestExtract_DOCBinaryFallback(t *testing.T) {
	data := []byte{0xD0, 0xCF, 0x11, 0xE0, 'a', 'b', 0x00}
	data = append(data, []byte("The contract ends in May.")...)
	data = append(data, 0x00, 0x01, 'x', 'y', 0x02)

	res, err := New().Extract(context.Background(), domain.DocumentTypeDOC, data)

	require.NoError(t, err)
	assert.Equal(t, "The contract ends in May.", res.Text)
	assert.Equal(t, 1, res.Pages)
}

func TestExtract_PDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.pdf")
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	doc.Cell(40, 10, "First page.")
	doc.AddPage()
	doc.Cell(40, 10, "Second page.")
	require.NoError(t, doc.OutputFileAndClose(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	res, err := New().Extract(context.Background(), domain.DocumentTypePDF, data)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
}

func TestExtract_PDFInvalid(t *testing.T) {
	_, err := New().Extract(context.Background(), domain.DocumentTypePDF, []byte("%PDF-garbage"))

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_UnsupportedType(t *testing.T) {
	_, err := New().Extract(context.Background(), domain.DocumentType("xls"), []byte("x"))

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, domain.DocumentTypeTXT, []byte("x."))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtract_DOCXOverDecompressionLimit(t *testing.T) {
	data := buildDOCX(t, strings.Repeat("a", 4096))

	_, err := NewWithLimit(1024).Extract(context.Background(), domain.DocumentTypeDOCX, data)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.ErrorIs(t, err, errXMLTooLarge)

	_, err = NewWithLimit(1024).Extract(context.Background(), domain.DocumentTypeDOC, data)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestExtract_DOCXUnderstatedSizeIsBounded(t *testing.T) {
	xmlDoc := []byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` +
		strings.Repeat("a", 1<<20) + `</w:t></w:r></w:p></w:body></w:document>`)

	var compressed bytes.Buffer
	fw, err := flate.NewWriter(&compressed, flate.BestCompression)
	require.NoError(t, err)
	_, err = fw.Write(xmlDoc)
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateRaw(&zip.FileHeader{
		Name:               "word/document.xml",
		Method:             zip.Deflate,
		CRC32:              crc32.ChecksumIEEE(xmlDoc),
		CompressedSize64:   uint64(compressed.Len()),
		UncompressedSize64: 100,
	})
	require.NoError(t, err)
	_, err = w.Write(compressed.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = NewWithLimit(1024).Extract(context.Background(), domain.DocumentTypeDOCX, buf.Bytes())
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
