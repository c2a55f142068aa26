package datasets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Sample is one decoded example.
type Sample struct {
	// Image is HWC float32 with 3 channels (RGB) in [0, 1].
	Image  []float32
	Height int
	Width  int

	// Target is the HW grayscale saliency map (1 channel) in [0, 1].
	Target       []float32
	TargetHeight int
	TargetWidth  int

	// Text is the cached encoding of the entry's text.
	Text []float32
}

// SaliencyDataset pairs images, saliency targets and encoded texts.
//
// Texts are encoded once at construction; images and targets are read from
// their Source on every Example call.
type SaliencyDataset struct {
	entries []Entry

	// texts[i] is the encoding of entries[i].Text.
	texts [][]float32

	// dim is the length of every texts[i].
	dim int

	// encoderName is recorded in snapshots.
	encoderName string

	transform Transform
	source    Source
	logger    *zap.Logger
}

var _ Dataset = (*SaliencyDataset)(nil)

// Option configures a SaliencyDataset.
type Option func(*SaliencyDataset)

// WithTransform sets the transform applied to both image and target.
func WithTransform(t Transform) Option {
	return func(d *SaliencyDataset) { d.transform = t }
}

// WithSource sets where image and target files are read from. Defaults to
// FileSource.
func WithSource(s Source) Option {
	return func(d *SaliencyDataset) { d.source = s }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *SaliencyDataset) { d.logger = l }
}

func newSaliencyDataset(entries []Entry, opts []Option) *SaliencyDataset {
	d := &SaliencyDataset{
		entries: append([]Entry(nil), entries...),
		source:  FileSource{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.source == nil {
		d.source = FileSource{}
	}
	return d
}

// NewSaliencyDataset creates a dataset over entries and encodes every text
// with enc, one call per entry, in order. The first encoder failure aborts
// construction.
func NewSaliencyDataset(ctx context.Context, entries []Entry, enc TextEncoder, opts ...Option) (*SaliencyDataset, error) {
	if enc == nil {
		return nil, errors.New("text encoder is nil")
	}
	d := newSaliencyDataset(entries, opts)
	d.encoderName = enc.Name()
	d.dim = enc.Dimension()
	d.texts = make([][]float32, len(d.entries))

	start := time.Now()
	for i, e := range d.entries {
		vec, err := enc.Encode(ctx, e.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to encode text of entry %d: %w", i, err)
		}
		if d.dim <= 0 {
			d.dim = len(vec)
		}
		if len(vec) != d.dim {
			return nil, fmt.Errorf("entry %d: got %d values, expected %d: %w", i, len(vec), d.dim, ErrDimension)
		}
		d.texts[i] = vec
	}

	d.logger.Info("encoded dataset texts",
		zap.String("encoder", d.encoderName),
		zap.Int("entries", len(d.entries)),
		zap.Int("dimension", d.dim),
		zap.Duration("elapsed", time.Since(start)))
	return d, nil
}

// NewSaliencyDatasetFromLists zips aligned image, target and text lists and
// builds a dataset from them. Misaligned lists return ErrMisaligned.
func NewSaliencyDatasetFromLists(ctx context.Context, images, targets, texts []string, enc TextEncoder, opts ...Option) (*SaliencyDataset, error) {
	entries, err := Zip(images, targets, texts)
	if err != nil {
		return nil, err
	}
	return NewSaliencyDataset(ctx, entries, enc, opts...)
}

// Name returns the name of the dataset
func (d *SaliencyDataset) Name() string {
	return "SaliencyDataset"
}

// Len returns the number of entries.
func (d *SaliencyDataset) Len() int {
	return len(d.entries)
}

// Dimension returns the length of the text encodings.
func (d *SaliencyDataset) Dimension() int {
	return d.dim
}

// EncoderName returns the name of the encoder that produced the text encodings.
func (d *SaliencyDataset) EncoderName() string {
	return d.encoderName
}

func (d *SaliencyDataset) checkIndex(idx int) error {
	if idx < 0 || idx >= len(d.entries) {
		return fmt.Errorf("index %d out of range [0, %d): %w", idx, len(d.entries), ErrIndexOutOfRange)
	}
	return nil
}

// Entry returns the entry at idx.
func (d *SaliencyDataset) Entry(idx int) (Entry, error) {
	if err := d.checkIndex(idx); err != nil {
		return Entry{}, err
	}
	return d.entries[idx], nil
}

// Text returns a copy of the cached text encoding at idx.
func (d *SaliencyDataset) Text(idx int) ([]float32, error) {
	if err := d.checkIndex(idx); err != nil {
		return nil, err
	}
	return append([]float32(nil), d.texts[idx]...), nil
}

// Example reads a single example by index.
func (d *SaliencyDataset) Example(idx int) (Sample, error) {
	return d.ExampleContext(context.Background(), idx)
}

// ExampleContext is Example with a context passed to the Source.
func (d *SaliencyDataset) ExampleContext(ctx context.Context, idx int) (Sample, error) {
	if err := d.checkIndex(idx); err != nil {
		return Sample{}, err
	}
	e := d.entries[idx]

	img, err := decodeImage(ctx, d.source, e.ImagePath)
	if err != nil {
		return Sample{}, fmt.Errorf("example %d image: %w", idx, err)
	}
	target, err := decodeImage(ctx, d.source, e.TargetPath)
	if err != nil {
		return Sample{}, fmt.Errorf("example %d target: %w", idx, err)
	}
	if d.transform != nil {
		img = d.transform(img)
		target = d.transform(target)
	}

	s := Sample{Text: append([]float32(nil), d.texts[idx]...)}
	s.Image, s.Height, s.Width = ImageToRGB(img)
	s.Target, s.TargetHeight, s.TargetWidth = ImageToGray(target)
	return s, nil
}

// Batch reads multiple examples by their indices and flattens them.
func (d *SaliencyDataset) Batch(indices []int) (*SaliencyBatchFlat, error) {
	return d.BatchContext(context.Background(), indices)
}

// BatchContext is Batch with a context passed to the Source.
func (d *SaliencyDataset) BatchContext(ctx context.Context, indices []int) (*SaliencyBatchFlat, error) {
	samples := make([]Sample, len(indices))
	for i, idx := range indices {
		s, err := d.ExampleContext(ctx, idx)
		if err != nil {
			return nil, err
		}
		samples[i] = s
	}
	batch, err := MakeSaliencyBatchFlat(samples)
	if err != nil {
		return nil, err
	}
	batch.Indices = append([]int(nil), indices...)
	return batch, nil
}
