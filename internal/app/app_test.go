package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/docqa/internal/config"
	"github.com/cloo-solutions/docqa/internal/testutil"
)

// fakeAI embeds text as letter frequencies and answers with a fixed string.
type fakeAI struct {
	completions atomic.Int32
}

func (f *fakeAI) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return testutil.LetterVector(text), nil
}

func (f *fakeAI) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = testutil.LetterVector(t)
	}
	return out, nil
}

func (f *fakeAI) Complete(ctx context.Context, system, user string) (string, error) {
	f.completions.Add(1)
	return "The sky is blue.", nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:              "0",
		OpenAIAPIKey:      "test",
		ChunkMaxChars:     2000,
		TopK:              3,
		CacheTTL:          30 * time.Minute,
		CacheMaxEntries:   100,
		HistoryMaxEntries: 50,
		Retention:         30 * time.Minute,
		SweepInterval:     time.Minute,
		UploadDir:         t.TempDir(),
		ExportDir:         t.TempDir(),
		MaxFileSize:       1 << 20,
		MaxFiles:          2,
	}
}

func newTestApp(t *testing.T) (*App, *fakeAI) {
	t.Helper()
	ai := &fakeAI{}
	a, err := New(context.Background(), testConfig(t), WithAIClient(ai), WithRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)
	return a, ai
}

type namedFile struct {
	name    string
	content string
}

func uploadRequest(t *testing.T, files ...namedFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = io.WriteString(part, f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func queryRequest(question string) *http.Request {
	body, _ := json.Marshal(map[string]string{"question": question})
	return httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
}

func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.Handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestApp_UploadQueryAndCache(t *testing.T) {
	a, ai := newTestApp(t)
	const text = "The sky is blue. Grass is green."

	w := serve(a, uploadRequest(t, namedFile{name: "colors.txt", content: text}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	upload := decode(t, w)
	files := upload["files"].([]interface{})
	require.Len(t, files, 1)
	file := files[0].(map[string]interface{})
	assert.Equal(t, float64(1), file["pages"])
	assert.Equal(t, float64(1), file["chunks"])
	docID := file["id"].(string)

	health := decode(t, serve(a, httptest.NewRequest(http.MethodGet, "/health", nil)))
	assert.Equal(t, true, health["documentsLoaded"])
	assert.Equal(t, float64(1), health["chunkCount"])

	first := decode(t, serve(a, queryRequest("What color is the sky?")))
	assert.Equal(t, true, first["success"])
	assert.Equal(t, false, first["cached"])
	assert.Equal(t, []interface{}{"colors.txt"}, first["sources"])

	second := decode(t, serve(a, queryRequest("  what color is the SKY?  ")))
	assert.Equal(t, true, second["cached"])
	assert.Equal(t, first["answer"], second["answer"])
	assert.Equal(t, int32(1), ai.completions.Load())

	w = serve(a, httptest.NewRequest(http.MethodGet, "/pdf/"+docID, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, text, w.Body.String())

	searches := decode(t, serve(a, httptest.NewRequest(http.MethodGet, "/search-history", nil)))
	assert.Len(t, searches["history"], 1)

	uploads := decode(t, serve(a, httptest.NewRequest(http.MethodGet, "/history", nil)))
	assert.Len(t, uploads["history"], 1)
}

func TestApp_QueryWithoutDocuments(t *testing.T) {
	a, ai := newTestApp(t)

	w := serve(a, queryRequest("anything?"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
	assert.Equal(t, int32(0), ai.completions.Load())
}

func TestApp_TooManyFilesPersistsNothing(t *testing.T) {
	a, _ := newTestApp(t)

	w := serve(a, uploadRequest(t,
		namedFile{name: "a.txt", content: "One."},
		namedFile{name: "b.txt", content: "Two."},
		namedFile{name: "c.txt", content: "Three."},
	))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, a.Documents.Len())
	assert.Equal(t, 0, a.UploadHistory.Len())

	entries, err := os.ReadDir(a.Config.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApp_ExpiredDocumentsAreSwept(t *testing.T) {
	a, _ := newTestApp(t)

	w := serve(a, uploadRequest(t, namedFile{name: "notes.txt", content: "Short lived."}))
	require.Equal(t, http.StatusOK, w.Code)
	docID := decode(t, w)["files"].([]interface{})[0].(map[string]interface{})["id"].(string)

	expired, err := a.Retention.SweepAt(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{docID}, expired)

	assert.Equal(t, http.StatusNotFound, serve(a, httptest.NewRequest(http.MethodGet, "/pdf/"+docID, nil)).Code)
	health := decode(t, serve(a, httptest.NewRequest(http.MethodGet, "/health", nil)))
	assert.Equal(t, false, health["documentsLoaded"])

	entries, err := os.ReadDir(a.Config.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApp_SweeperRunsAllTasks(t *testing.T) {
	a, _ := newTestApp(t)
	a.Answers.SetAt("old question", "old answer", time.Now().Add(-time.Hour))

	require.NoError(t, a.Sweeper.ProcessJobs(context.Background()))

	assert.Equal(t, 0, a.Answers.Len())
}

func TestApp_PurgesStaleUploadsOnStart(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.UploadDir+"/leftover.pdf", []byte("%PDF"), 0o644))

	_, err := New(context.Background(), cfg, WithAIClient(&fakeAI{}), WithRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)

	entries, err := os.ReadDir(cfg.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApp_MetricsExposed(t *testing.T) {
	a, _ := newTestApp(t)
	serve(a, httptest.NewRequest(http.MethodGet, "/health", nil))

	w := serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "docqa_documents_loaded 0")
}

func TestApp_OpenAIClientFromConfig(t *testing.T) {
	fake := testutil.NewFakeOpenAI(t, "Grass is green.")
	cfg := testConfig(t)
	cfg.OpenAIBaseURL = fake.BaseURL()
	cfg.EmbeddingDimensions = testutil.LetterDimensions

	a, err := New(context.Background(), cfg, WithRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)

	w := serve(a, uploadRequest(t, namedFile{name: "colors.txt", content: "The sky is blue. Grass is green."}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, serve(a, queryRequest("What color is grass?")))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Grass is green.", resp["answer"])
	assert.Equal(t, 2, fake.Embeddings())
	assert.Equal(t, 1, fake.Completions())
}
