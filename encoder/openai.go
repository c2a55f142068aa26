package encoder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAI defaults target an OpenAI-compatible server hosting the CLIP
// ViT-B/32 text tower.
const (
	defaultOpenAIModel     = "clip-vit-b-32"
	defaultOpenAIDimension = 512
)

// DeviceHeader carries Config.Device to HTTP providers.
const DeviceHeader = "X-Inference-Device"

// OpenAI encodes texts through an OpenAI-compatible embeddings endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
	dim    int
}

var _ Encoder = (*OpenAI)(nil)

// NewOpenAI creates an encoder for an OpenAI-compatible embeddings API.
// BaseURL is optional; an empty APIKey is allowed for self-hosted servers.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	if cfg.Dimension == 0 {
		cfg.Dimension = defaultOpenAIDimension
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: deviceTransport(cfg.Device, http.DefaultTransport),
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
		dim:    cfg.Dimension,
	}, nil
}

// Name returns the provider name.
func (o *OpenAI) Name() string {
	return "openai/" + o.model
}

// Dimension returns the configured embedding dimension.
func (o *OpenAI) Dimension() int {
	return o.dim
}

// Encode generates an embedding for a single text.
func (o *OpenAI) Encode(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(o.model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}

// headerTransport sets a fixed header on every request.
type headerTransport struct {
	key, value string
	base       http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(t.key, t.value)
	return t.base.RoundTrip(req)
}

func deviceTransport(device string, base http.RoundTripper) http.RoundTripper {
	return &headerTransport{key: DeviceHeader, value: deviceOrAuto(device), base: base}
}
