package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOllamaURL       = "http://localhost:11434"
	defaultOllamaModel     = "nomic-embed-text"
	defaultOllamaDimension = 768
)

// Ollama encodes texts with Ollama's /api/embeddings endpoint.
type Ollama struct {
	baseURL string
	model   string
	dim     int
	client  *http.Client
}

var _ Encoder = (*Ollama)(nil)

// NewOllama creates an Ollama encoder.
func NewOllama(cfg Config) (*Ollama, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOllamaURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultOllamaModel
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = defaultOllamaDimension
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &Ollama{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		dim:     cfg.Dimension,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: deviceTransport(cfg.Device, http.DefaultTransport),
		},
	}, nil
}

// Name returns the provider name.
func (p *Ollama) Name() string {
	return "ollama/" + p.model
}

// Dimension returns the configured embedding dimension.
func (p *Ollama) Dimension() int {
	return p.dim
}

// Encode generates an embedding for a single text.
func (p *Ollama) Encode(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("ollama returned status %d and failed to read body: %w", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}
	return result.Embedding, nil
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}
