package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// LetterDimensions is the vector size produced by FakeOpenAI.
const LetterDimensions = 26

// FakeOpenAI serves the embeddings and chat completion endpoints. Embeddings
// are letter frequencies, so texts sharing vocabulary score as similar.
type FakeOpenAI struct {
	Server *httptest.Server
	Answer string

	embeddings  atomic.Int32
	completions atomic.Int32
}

// NewFakeOpenAI starts a fake API server that is closed when the test finishes.
func NewFakeOpenAI(t *testing.T, answer string) *FakeOpenAI {
	t.Helper()

	f := &FakeOpenAI{Answer: answer}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/embeddings", f.handleEmbeddings)
	mux.HandleFunc("POST /v1/chat/completions", f.handleCompletions)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL is the value to configure as the OpenAI base URL.
func (f *FakeOpenAI) BaseURL() string {
	return f.Server.URL + "/v1"
}

// Embeddings reports how many embeddings requests were served.
func (f *FakeOpenAI) Embeddings() int {
	return int(f.embeddings.Load())
}

// Completions reports how many chat completion requests were served.
func (f *FakeOpenAI) Completions() int {
	return int(f.completions.Load())
}

// LetterVector counts a-z occurrences in text, case-insensitively.
func LetterVector(text string) []float32 {
	v := make([]float32, LetterDimensions)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}

func (f *FakeOpenAI) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	f.embeddings.Add(1)

	var req struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data := make([]map[string]any, len(req.Input))
	for i, text := range req.Input {
		data[i] = map[string]any{
			"object":    "embedding",
			"index":     i,
			"embedding": LetterVector(text),
		}
	}
	writeJSON(w, map[string]any{
		"object": "list",
		"model":  req.Model,
		"data":   data,
		"usage":  map[string]int{"prompt_tokens": len(req.Input), "total_tokens": len(req.Input)},
	})
}

func (f *FakeOpenAI) handleCompletions(w http.ResponseWriter, r *http.Request) {
	f.completions.Add(1)

	var req struct {
		Model string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   req.Model,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": f.Answer},
			"finish_reason": "stop",
		}},
		"usage": map[string]int{"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
