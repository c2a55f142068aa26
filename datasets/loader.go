package datasets

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"go.uber.org/zap"
)

// Loader batches a SaliencyDataset. It implements gomlx's train.Dataset: each
// Yield returns one batch and io.EOF marks the end of an epoch, after which
// Reset starts the next one (reshuffling if enabled).
type Loader struct {
	ds        *SaliencyDataset
	batchSize int
	shuffle   bool
	dropLast  bool
	logger    *zap.Logger

	// mu protects rng, order and next.
	mu    sync.Mutex
	rng   *rand.Rand
	order []int
	next  int
}

var _ train.Dataset = (*Loader)(nil)

type loaderConfig struct {
	shuffle     bool
	dropLast    bool
	seed        int64
	datasetOpts []Option
	logger      *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderConfig)

// WithShuffle enables or disables reshuffling the example order every epoch.
// Enabled by default.
func WithShuffle(shuffle bool) LoaderOption {
	return func(c *loaderConfig) { c.shuffle = shuffle }
}

// WithDropLast drops the final batch of an epoch when it has fewer than
// batchSize examples. Disabled by default, so the last partial batch is
// yielded.
func WithDropLast(dropLast bool) LoaderOption {
	return func(c *loaderConfig) { c.dropLast = dropLast }
}

// WithSeed seeds the shuffle. If zero, a time-based seed is used.
func WithSeed(seed int64) LoaderOption {
	return func(c *loaderConfig) { c.seed = seed }
}

// WithDatasetOptions passes options to the SaliencyDataset built by NewLoader.
func WithDatasetOptions(opts ...Option) LoaderOption {
	return func(c *loaderConfig) { c.datasetOpts = append(c.datasetOpts, opts...) }
}

// WithLoaderLogger sets the loader's logger. Defaults to a no-op logger.
func WithLoaderLogger(l *zap.Logger) LoaderOption {
	return func(c *loaderConfig) { c.logger = l }
}

func makeLoaderConfig(opts []LoaderOption) loaderConfig {
	cfg := loaderConfig{shuffle: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.seed == 0 {
		cfg.seed = time.Now().UnixNano()
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	return cfg
}

// NewLoader unzips entries into image, target and text lists, builds a
// SaliencyDataset from them (one encoder call per entry) and returns a
// loader over it.
func NewLoader(ctx context.Context, entries []Entry, enc TextEncoder, batchSize int, opts ...LoaderOption) (*Loader, error) {
	if batchSize <= 0 {
		return nil, ErrBatchSize
	}
	cfg := makeLoaderConfig(opts)
	images, targets, texts := Unzip(entries)
	ds, err := NewSaliencyDatasetFromLists(ctx, images, targets, texts, enc, cfg.datasetOpts...)
	if err != nil {
		return nil, err
	}
	return newLoader(ds, batchSize, cfg), nil
}

// NewLoaderFromDataset returns a loader over an existing dataset, for
// instance one rebuilt with LoadSaliencyDataset.
func NewLoaderFromDataset(ds *SaliencyDataset, batchSize int, opts ...LoaderOption) (*Loader, error) {
	if batchSize <= 0 {
		return nil, ErrBatchSize
	}
	return newLoader(ds, batchSize, makeLoaderConfig(opts)), nil
}

func newLoader(ds *SaliencyDataset, batchSize int, cfg loaderConfig) *Loader {
	l := &Loader{
		ds:        ds,
		batchSize: batchSize,
		shuffle:   cfg.shuffle,
		dropLast:  cfg.dropLast,
		logger:    cfg.logger,
		rng:       rand.New(rand.NewSource(cfg.seed)),
		order:     make([]int, ds.Len()),
	}
	for i := range l.order {
		l.order[i] = i
	}
	l.Reset()
	return l
}

// Name implements train.Dataset.
func (l *Loader) Name() string {
	return l.ds.Name()
}

// Dataset returns the underlying dataset.
func (l *Loader) Dataset() *SaliencyDataset {
	return l.ds
}

// BatchSize returns the configured batch size.
func (l *Loader) BatchSize() int {
	return l.batchSize
}

// NumBatches returns the number of batches in one epoch: ceil(K/B), or
// floor(K/B) when dropping the last partial batch.
func (l *Loader) NumBatches() int {
	n := l.ds.Len()
	if l.dropLast {
		return n / l.batchSize
	}
	return (n + l.batchSize - 1) / l.batchSize
}

// nextIndices returns the dataset indices of the next batch, or nil at the
// end of the epoch. Concurrency safe.
func (l *Loader) nextIndices() []int {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := len(l.order) - l.next
	if remaining <= 0 || (l.dropLast && remaining < l.batchSize) {
		return nil
	}
	end := min(l.next+l.batchSize, len(l.order))
	indices := append([]int(nil), l.order[l.next:end]...)
	l.next = end
	return indices
}

// NextBatch returns the next batch of the epoch as flat buffers, or io.EOF
// when the epoch is over.
func (l *Loader) NextBatch() (*SaliencyBatchFlat, error) {
	indices := l.nextIndices()
	if indices == nil {
		return nil, io.EOF
	}
	return l.ds.Batch(indices)
}

// Yield implements train.Dataset. It returns:
//
//   - spec: the Loader itself.
//   - inputs: images shaped [B, H, W, 3] and text encodings shaped [B, D].
//   - labels: saliency targets shaped [B, H, W, 1].
func (l *Loader) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	spec = l
	batch, err := l.NextBatch()
	if err != nil {
		return
	}
	images, targets, texts, err := batch.ToGomlxTensors()
	if err != nil {
		return
	}
	inputs = []*tensors.Tensor{images, texts}
	labels = []*tensors.Tensor{targets}
	return
}

// Reset implements train.Dataset. It rewinds to the start of the epoch and
// reshuffles the example order if shuffling is enabled.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.next = 0
	if l.shuffle {
		l.rng.Shuffle(len(l.order), func(i, j int) {
			l.order[i], l.order[j] = l.order[j], l.order[i]
		})
	}
	l.logger.Debug("loader reset",
		zap.Int("examples", len(l.order)),
		zap.Int("batch_size", l.batchSize),
		zap.Bool("shuffle", l.shuffle))
}
