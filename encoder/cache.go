package encoder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"go.uber.org/zap"
)

// Cache stores encodings by content hash. See CacheKey.
type Cache interface {
	// Get returns the cached vector, or ok=false on a miss.
	Get(ctx context.Context, key string) (vec []float32, ok bool, err error)

	// Put stores vec under key.
	Put(ctx context.Context, key string, vec []float32) error
}

// CacheKey is the content address of text encoded by the named encoder.
func CacheKey(encoderName, text string) string {
	h := sha256.New()
	h.Write([]byte(encoderName))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Cached wraps an Encoder with a Cache. Cache failures are logged and
// treated as misses; only encoder failures are returned.
type Cached struct {
	enc    Encoder
	cache  Cache
	logger *zap.Logger
}

var _ Encoder = (*Cached)(nil)

// NewCached returns enc backed by cache.
func NewCached(enc Encoder, cache Cache, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{enc: enc, cache: cache, logger: logger}
}

// Name returns the wrapped encoder's name.
func (c *Cached) Name() string {
	return c.enc.Name()
}

// Dimension returns the wrapped encoder's dimension.
func (c *Cached) Dimension() int {
	return c.enc.Dimension()
}

// Encode returns the cached vector for text, or encodes and caches it.
func (c *Cached) Encode(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(c.enc.Name(), text)

	vec, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("encoding cache get failed", zap.String("key", key), zap.Error(err))
	case ok && (c.enc.Dimension() <= 0 || len(vec) == c.enc.Dimension()):
		c.logger.Debug("encoding cache hit", zap.String("key", key))
		return vec, nil
	case ok:
		c.logger.Warn("discarding cached encoding with wrong dimension",
			zap.String("key", key), zap.Int("got", len(vec)), zap.Int("expected", c.enc.Dimension()))
	}

	c.logger.Debug("encoding cache miss", zap.String("key", key))
	vec, err = c.enc.Encode(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Put(ctx, key, vec); err != nil {
		c.logger.Warn("encoding cache put failed", zap.String("key", key), zap.Error(err))
	}
	return vec, nil
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]float32
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]float32)}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string) ([]float32, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vec, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]float32(nil), vec...), true, nil
}

// Put implements Cache.
func (m *MemoryCache) Put(_ context.Context, key string, vec []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append([]float32(nil), vec...)
	return nil
}

// Len returns the number of cached encodings.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
