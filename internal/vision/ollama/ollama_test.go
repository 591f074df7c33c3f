package ollama

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/everything/internal/vision"
)

func TestOllamaAnalyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, vision.ReceiptPrompt, req.Prompt)
		assert.Len(t, req.Images, 1)
		assert.False(t, req.Stream)
		assert.Zero(t, req.Options.Temperature)

		resp := map[string]any{
			"model":    req.Model,
			"response": "STORE | Mega Mart\nApples | 6 | 0.50\nPretzels | 1 | 2.00",
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	analyzer := NewOllamaAnalyzer(server.URL+"/", "moondream")

	result, err := analyzer.Analyze(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8, 0xFF, 0xE0}), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Mega Mart", result.StoreName)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Apples", result.Items[0].Name)
	assert.Equal(t, "3", result.Items[0].LineTotal().String())
}

func TestOllamaAnalyzeNetworkError(t *testing.T) {
	analyzer := NewOllamaAnalyzer("http://localhost:99999", "moondream")

	_, err := analyzer.Analyze(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8}), "image/jpeg")
	assert.Error(t, err)
}

func TestOllamaAnalyzeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	analyzer := NewOllamaAnalyzer(server.URL, "moondream")

	_, err := analyzer.Analyze(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8}), "image/jpeg")
	assert.EqualError(t, err, "ollama returned status 500")
}

func TestOllamaAnalyzeReportsModelError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'moondream' not found"}`))
	}))
	defer server.Close()

	analyzer := NewOllamaAnalyzer(server.URL, "moondream")

	_, err := analyzer.Analyze(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8}), "image/jpeg")
	assert.EqualError(t, err, "ollama returned status 404: model 'moondream' not found")
}

func TestOllamaAnalyzeEmptyImage(t *testing.T) {
	analyzer := NewOllamaAnalyzer("http://localhost:11434", "moondream")

	_, err := analyzer.Analyze(context.Background(), &io.LimitedReader{R: bytes.NewReader([]byte{0xFF}), N: 0}, "image/jpeg")
	assert.Error(t, err)
}
