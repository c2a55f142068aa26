// Package encoder provides text encoders that turn prompts into the
// fixed-size vectors consumed by the saliency datasets.
package encoder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Encoder encodes one text into a fixed-size vector.
type Encoder interface {
	// Encode returns the vector for text.
	Encode(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the length of the vectors.
	Dimension() int

	// Name returns the provider and model, e.g. "openai/clip-vit-b-32".
	Name() string
}

// Provider names accepted in Config.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderHash   = "hash"
)

// Device hints accepted in Config.Device.
const (
	DeviceAuto = "auto"
	DeviceCPU  = "cpu"
	DeviceCUDA = "cuda"
)

// Config contains the configuration shared by all providers.
type Config struct {
	Provider  string        `yaml:"provider"` // openai, ollama, hash
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	Dimension int           `yaml:"dimension"`
	Timeout   time.Duration `yaml:"timeout"`

	// Device is forwarded to HTTP providers as a placement hint for the
	// serving process: auto, cpu or cuda.
	Device string `yaml:"device"`
}

// Validate checks the provider and device names.
func (c Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case ProviderOpenAI, ProviderOllama, ProviderHash:
	default:
		return fmt.Errorf("unknown encoder provider %q", c.Provider)
	}
	switch strings.ToLower(c.Device) {
	case "", DeviceAuto, DeviceCPU, DeviceCUDA:
	default:
		return fmt.Errorf("unknown encoder device %q", c.Device)
	}
	if c.Dimension < 0 {
		return fmt.Errorf("encoder dimension must not be negative, got %d", c.Dimension)
	}
	return nil
}

// New resolves the configured provider. It is meant to be called once at
// process start; the returned Encoder is safe for concurrent use.
func New(cfg Config, logger *zap.Logger) (Encoder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		enc Encoder
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		enc, err = NewOpenAI(cfg)
	case ProviderOllama:
		enc, err = NewOllama(cfg)
	case ProviderHash:
		enc, err = NewHash(cfg.Dimension)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("text encoder ready",
		zap.String("encoder", enc.Name()),
		zap.Int("dimension", enc.Dimension()),
		zap.String("device", deviceOrAuto(cfg.Device)))
	return enc, nil
}

func deviceOrAuto(device string) string {
	if device == "" {
		return DeviceAuto
	}
	return strings.ToLower(device)
}
