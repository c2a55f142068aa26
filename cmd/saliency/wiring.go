package main

import (
	"context"

	"github.com/Noofbiz/saliency/config"
	"github.com/Noofbiz/saliency/datasets"
	"github.com/Noofbiz/saliency/encoder"
	"go.uber.org/zap"
)

// newEncoder resolves the configured encoder and, when enabled, wraps it with
// the Redis cache. An unreachable Redis is logged and the cache is skipped.
// The returned func releases the Redis connection.
func newEncoder(ctx context.Context, cfg config.Config, logger *zap.Logger) (encoder.Encoder, func(), error) {
	enc, err := encoder.New(cfg.Encoder, logger)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Cache.Enabled {
		return enc, func() {}, nil
	}

	client := encoder.NewRedisClient(cfg.Cache.Redis)
	cache := encoder.NewRedisCache(client, cfg.Cache.Redis.Prefix, cfg.Cache.Redis.TTL)
	if err := cache.Ping(ctx); err != nil {
		logger.Warn("encoding cache unavailable, encoding without it",
			zap.String("addr", cfg.Cache.Redis.Addr), zap.Error(err))
		_ = client.Close()
		return enc, func() {}, nil
	}
	logger.Info("encoding cache enabled", zap.String("addr", cfg.Cache.Redis.Addr))
	return encoder.NewCached(enc, cache, logger), func() { _ = client.Close() }, nil
}

// newSource reads plain paths from disk and, when an endpoint is configured,
// s3:// paths from object storage.
func newSource(cfg config.StorageConfig) (datasets.Source, error) {
	src := datasets.MultiSource{"": datasets.FileSource{}}
	if cfg.Endpoint == "" {
		return src, nil
	}
	client, err := datasets.NewMinioClient(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	src["s3"] = datasets.NewMinioSource(client)
	return src, nil
}
