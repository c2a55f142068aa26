// Package config loads the YAML configuration shared by the saliency
// commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Noofbiz/saliency/datasets"
	"github.com/Noofbiz/saliency/encoder"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv overrides encoder.api_key when set.
const APIKeyEnv = "SALIENCY_ENCODER_API_KEY"

// Config is the top-level configuration.
type Config struct {
	Dataset DatasetConfig  `yaml:"dataset"`
	Split   SplitConfig    `yaml:"split"`
	Loader  LoaderConfig   `yaml:"loader"`
	Encoder encoder.Config `yaml:"encoder"`
	Cache   CacheConfig    `yaml:"cache"`
	Storage StorageConfig  `yaml:"storage"`
	Log     LogConfig      `yaml:"log"`
}

// DatasetConfig controls how images and targets are transformed.
type DatasetConfig struct {
	// Width and Height resize images and targets. Zero keeps native sizes,
	// which only works for batching if all files share one size.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Padding keeps the aspect ratio and pads instead of stretching.
	Padding bool `yaml:"padding"`
}

// SplitConfig controls Split.
type SplitConfig struct {
	TrainRatio float64 `yaml:"train_ratio"`
	ValRatio   float64 `yaml:"val_ratio"`

	// Seed for the shuffle. Zero uses a time-based seed.
	Seed int64 `yaml:"seed"`

	// TestOutput is the diagnostic dump of the test partition. Empty
	// disables it.
	TestOutput string `yaml:"test_output"`
}

// LoaderConfig controls the batching loader.
type LoaderConfig struct {
	BatchSize int   `yaml:"batch_size"`
	Shuffle   bool  `yaml:"shuffle"`
	DropLast  bool  `yaml:"drop_last"`
	Seed      int64 `yaml:"seed"`
}

// CacheConfig enables the Redis encoding cache.
type CacheConfig struct {
	Enabled bool                `yaml:"enabled"`
	Redis   encoder.RedisConfig `yaml:"redis"`
}

// StorageConfig configures an S3-compatible store for "s3://" paths.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Dataset: DatasetConfig{Width: 224, Height: 224},
		Split: SplitConfig{
			TrainRatio: datasets.DefaultTrainRatio,
			ValRatio:   datasets.DefaultValRatio,
			TestOutput: datasets.DefaultTestOutput,
		},
		Loader: LoaderConfig{BatchSize: 32, Shuffle: true},
		// Model and Dimension stay zero so each provider applies its own
		// defaults.
		Encoder: encoder.Config{
			Provider: encoder.ProviderOpenAI,
			Device:   encoder.DeviceAuto,
			Timeout:  60 * time.Second,
		},
		Cache: CacheConfig{
			Redis: encoder.RedisConfig{Addr: "localhost:6379", Prefix: "saliency:enc:", TTL: 7 * 24 * time.Hour},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults. The API key environment variable is applied last.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.Encoder.APIKey = key
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if err := datasets.ValidateRatios(c.Split.TrainRatio, c.Split.ValRatio); err != nil {
		errs = append(errs, fmt.Errorf("split: %w", err))
	}
	if c.Loader.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("loader: %w", datasets.ErrBatchSize))
	}
	if c.Dataset.Width < 0 || c.Dataset.Height < 0 {
		errs = append(errs, fmt.Errorf("dataset: width and height must not be negative"))
	}
	if (c.Dataset.Width == 0) != (c.Dataset.Height == 0) {
		errs = append(errs, fmt.Errorf("dataset: width and height must both be set or both be zero"))
	}
	if err := c.Encoder.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("encoder: %w", err))
	}
	if c.Cache.Enabled && c.Cache.Redis.Addr == "" {
		errs = append(errs, fmt.Errorf("cache: redis addr is required when the cache is enabled"))
	}
	return errors.Join(errs...)
}

// Transform returns the dataset transform described by the config, or nil
// to keep native sizes.
func (d DatasetConfig) Transform() datasets.Transform {
	if d.Width == 0 || d.Height == 0 {
		return nil
	}
	if d.Padding {
		return datasets.ResizeWithPadding(d.Width, d.Height)
	}
	return datasets.Resize(d.Width, d.Height)
}
