//go:build e2e

package e2e

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/docqa/internal/cli/client"
	"github.com/cloo-solutions/docqa/internal/domain"
)

const colors = "The sky is blue. Grass is green. Snow is white."

// TestE2E_UploadAskAndPreview stores a document in S3 and answers from it.
func TestE2E_UploadAskAndPreview(t *testing.T) {
	env := SetupE2EEnv(t)

	upload := env.Upload(env.WriteFile("colors.txt", colors))
	require.True(t, upload.Success)
	require.Len(t, upload.Files, 1)
	file := upload.Files[0]
	assert.Equal(t, "colors.txt", file.Name)
	assert.Equal(t, 1, file.Chunks)
	assert.Equal(t, "1 file(s) successfully processed", upload.Message)

	t.Run("blob stored in bucket", func(t *testing.T) {
		doc, err := env.App.Documents.Get(file.ID)
		require.NoError(t, err)

		rc, err := env.App.Blobs.Get(env.Ctx, doc.SourceKey)
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, colors, string(data))
	})

	t.Run("ask then cached", func(t *testing.T) {
		first := env.Ask("What color is the sky?")
		assert.Equal(t, fakeAnswer, first.Answer)
		assert.False(t, first.Cached)
		assert.Equal(t, []string{"colors.txt"}, first.Sources)

		second := env.Ask("what color is the SKY?")
		assert.True(t, second.Cached)
		assert.Equal(t, fakeAnswer, second.Answer)
		assert.Equal(t, 1, env.OpenAI.Completions())
	})

	t.Run("preview streams the original", func(t *testing.T) {
		resp, err := http.Get(env.Server.URL + "/pdf/" + file.ID)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "colors.txt")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, colors, string(body))
	})

	t.Run("health reports the document", func(t *testing.T) {
		var health client.HealthResponse
		require.NoError(t, env.API.Get("/health", &health))
		assert.True(t, health.DocumentsLoaded)
		assert.Equal(t, 1, health.DocumentCount)
	})
}

// TestE2E_ExpiryRemovesBlob checks the sweep deletes the object from S3.
func TestE2E_ExpiryRemovesBlob(t *testing.T) {
	env := SetupE2EEnv(t)

	upload := env.Upload(env.WriteFile("notes.txt", "Meeting moved to Friday."))
	require.Len(t, upload.Files, 1)
	id := upload.Files[0].ID

	doc, err := env.App.Documents.Get(id)
	require.NoError(t, err)
	key := doc.SourceKey

	expired, err := env.App.Retention.SweepAt(env.Ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{id}, expired)

	_, err = env.App.Blobs.Get(env.Ctx, key)
	assert.ErrorIs(t, err, domain.ErrBlobNotFound)

	var health client.HealthResponse
	require.NoError(t, env.API.Get("/health", &health))
	assert.False(t, health.DocumentsLoaded)

	resp, err := http.Get(env.Server.URL + "/pdf/" + id)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestE2E_ExportAndHistory exports an answer and the search history.
func TestE2E_ExportAndHistory(t *testing.T) {
	env := SetupE2EEnv(t)

	env.Upload(env.WriteFile("colors.txt", colors))
	answer := env.Ask("What color is snow?")

	t.Run("export single answer as pdf", func(t *testing.T) {
		var buf bytes.Buffer
		name, err := env.API.Download("/export-query", client.ExportQueryRequest{
			Format:   "pdf",
			Question: "What color is snow?",
			Answer:   answer.Answer,
		}, &buf)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(name, ".pdf"), name)
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	})

	t.Run("export history as doc", func(t *testing.T) {
		var buf bytes.Buffer
		name, err := env.API.Download("/export-history", client.ExportHistoryRequest{Format: "doc"}, &buf)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(name, ".doc"), name)
		assert.Contains(t, buf.String(), "What color is snow?")
	})

	t.Run("search history", func(t *testing.T) {
		var resp struct {
			History []client.SearchHistoryEntry `json:"history"`
		}
		require.NoError(t, env.API.Get("/search-history", &resp))
		require.Len(t, resp.History, 1)
		assert.Equal(t, "What color is snow?", resp.History[0].Question)
	})

	t.Run("upload history", func(t *testing.T) {
		var resp struct {
			History []client.UploadHistoryEntry `json:"history"`
		}
		require.NoError(t, env.API.Get("/history", &resp))
		require.Len(t, resp.History, 1)
		assert.Equal(t, "colors.txt", resp.History[0].Name)
	})
}

// TestE2E_Rejections covers validation errors surfaced through the client.
func TestE2E_Rejections(t *testing.T) {
	env := SetupE2EEnv(t)

	t.Run("question before upload", func(t *testing.T) {
		var resp client.QueryResponse
		err := env.API.Post("/query", client.QueryRequest{Question: "anything?"}, &resp)
		var apiErr *client.APIError
		require.True(t, errors.As(err, &apiErr), "%v", err)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	})

	t.Run("too many files", func(t *testing.T) {
		paths := []string{
			env.WriteFile("a.txt", "Alpha."),
			env.WriteFile("b.txt", "Beta."),
			env.WriteFile("c.txt", "Gamma."),
		}
		var resp client.UploadResponse
		err := env.API.UploadFiles("/upload", "files", paths, &resp)
		var apiErr *client.APIError
		require.True(t, errors.As(err, &apiErr), "%v", err)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, 0, env.App.Documents.Len())
	})

	t.Run("unsupported export format", func(t *testing.T) {
		_, err := env.API.Download("/export-query", client.ExportQueryRequest{
			Format: "xls", Question: "q", Answer: "a",
		}, io.Discard)
		var apiErr *client.APIError
		require.True(t, errors.As(err, &apiErr), "%v", err)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	})
}
