package encoder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Provider: "openai"}.Validate())
	assert.NoError(t, Config{Provider: "Hash", Device: "CUDA"}.Validate())
	assert.Error(t, Config{Provider: "bert"}.Validate())
	assert.Error(t, Config{Provider: "hash", Device: "tpu"}.Validate())
	assert.Error(t, Config{Provider: "hash", Dimension: -1}.Validate())
}

func TestNewResolvesProviders(t *testing.T) {
	enc, err := New(Config{Provider: ProviderHash, Dimension: 16}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hash/16", enc.Name())

	enc, err = New(Config{Provider: ProviderOpenAI}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai/clip-vit-b-32", enc.Name())
	assert.Equal(t, 512, enc.Dimension())

	enc, err = New(Config{Provider: ProviderOllama}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ollama/nomic-embed-text", enc.Name())
	assert.Equal(t, 768, enc.Dimension())

	_, err = New(Config{Provider: "nope"}, nil)
	assert.Error(t, err)
}

func TestOpenAIEncode(t *testing.T) {
	var gotDevice, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		gotDevice = r.Header.Get(DeviceHeader)
		gotAuth = r.Header.Get("Authorization")

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"a red car"}, req.Input)
		assert.Equal(t, "clip-test", req.Model)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "clip-test",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": []float32{0.1, 0.2, 0.3}},
			},
			"usage": map[string]int{"prompt_tokens": 3, "total_tokens": 3},
		})
	}))
	defer server.Close()

	enc, err := NewOpenAI(Config{
		BaseURL:   server.URL + "/v1",
		APIKey:    "test-key",
		Model:     "clip-test",
		Dimension: 3,
		Device:    DeviceCUDA,
	})
	require.NoError(t, err)

	vec, err := enc.Encode(context.Background(), "a red car")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "cuda", gotDevice)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestOpenAIEncodeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model not loaded"}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	enc, err := NewOpenAI(Config{BaseURL: server.URL + "/v1"})
	require.NoError(t, err)
	_, err = enc.Encode(context.Background(), "text")
	assert.Error(t, err)
}

func TestOllamaEncode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "auto", r.Header.Get(DeviceHeader))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)

		if req.Prompt == "" {
			_ = json.NewEncoder(w).Encode(embeddingResponse{})
			return
		}
		_ = json.NewEncoder(w).Encode(embeddingResponse{Embedding: []float32{1, 2}})
	}))
	defer server.Close()

	enc, err := NewOllama(Config{BaseURL: server.URL + "/", Dimension: 2})
	require.NoError(t, err)

	vec, err := enc.Encode(context.Background(), "a dog")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec)

	_, err = enc.Encode(context.Background(), "")
	assert.ErrorContains(t, err, "empty embedding")
}

func TestOllamaEncodeStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("model not found"))
	}))
	defer server.Close()

	enc, err := NewOllama(Config{BaseURL: server.URL})
	require.NoError(t, err)
	_, err = enc.Encode(context.Background(), "a dog")
	assert.ErrorContains(t, err, "status 404")
}
