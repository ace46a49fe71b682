//go:build e2e

package e2e

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cloo-solutions/docqa/internal/app"
	"github.com/cloo-solutions/docqa/internal/cli/client"
	"github.com/cloo-solutions/docqa/internal/config"
	"github.com/cloo-solutions/docqa/internal/testutil"
)

const fakeAnswer = "The sky is blue."

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T       *testing.T
	Ctx     context.Context
	RustFSC *testutil.RustFSContainer
	OpenAI  *testutil.FakeOpenAI
	App     *app.App
	Server  *httptest.Server
	API     *client.APIClient
	WorkDir string
}

// SetupE2EEnv starts RustFS and a fake OpenAI server, then serves a fully
// wired application backed by both.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	s3C := testutil.NewRustFSContainer(ctx, t)
	fake := testutil.NewFakeOpenAI(t, fakeAnswer)

	cfg := &config.Config{
		Environment:         "test",
		OpenAIAPIKey:        "e2e",
		OpenAIBaseURL:       fake.BaseURL(),
		OpenAITimeout:       10 * time.Second,
		EmbeddingDimensions: testutil.LetterDimensions,
		EmbeddingBatchSize:  16,
		ChunkMaxChars:       2000,
		TopK:                3,
		CacheTTL:            30 * time.Minute,
		CacheMaxEntries:     100,
		HistoryMaxEntries:   50,
		Retention:           30 * time.Minute,
		SweepInterval:       time.Minute,
		ExportDir:           t.TempDir(),
		MaxFileSize:         1 << 20,
		MaxFiles:            2,
		CORSOrigins:         []string{"*"},
		S3Endpoint:          s3C.Endpoint(),
		S3AccessKey:         testutil.RustFSAccessKey,
		S3SecretKey:         testutil.RustFSSecretKey,
		S3Bucket:            "docqa-e2e",
		S3Region:            "us-east-1",
	}

	a, err := app.New(ctx, cfg, app.WithRegistry(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}

	server := httptest.NewServer(a.Handler)
	t.Cleanup(server.Close)

	return &E2ETestEnv{
		T:       t,
		Ctx:     ctx,
		RustFSC: s3C,
		OpenAI:  fake,
		App:     a,
		Server:  server,
		API:     client.NewAPIClientWithConfig(server.URL),
		WorkDir: t.TempDir(),
	}
}

// WriteFile creates a file in the work directory and returns its path.
func (e *E2ETestEnv) WriteFile(name, content string) string {
	e.T.Helper()
	path := filepath.Join(e.WorkDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.T.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// Upload sends files through the client and returns the server's response.
func (e *E2ETestEnv) Upload(paths ...string) client.UploadResponse {
	e.T.Helper()
	var resp client.UploadResponse
	if err := e.API.UploadFiles("/upload", "files", paths, &resp); err != nil {
		e.T.Fatalf("upload failed: %v", err)
	}
	return resp
}

// Ask posts a question through the client.
func (e *E2ETestEnv) Ask(question string) client.QueryResponse {
	e.T.Helper()
	var resp client.QueryResponse
	if err := e.API.Post("/query", client.QueryRequest{Question: question}, &resp); err != nil {
		e.T.Fatalf("query failed: %v", err)
	}
	return resp
}
