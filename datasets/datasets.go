package datasets

import (
	"context"
	"errors"
)

// This package feeds a text-conditioned saliency model. It pairs RGB images
// with grayscale saliency targets and a text prompt per image.
//
// Layout and intended usage:
//
// SaliencyDataset
//   - Holds (image path, target path, text) entries.
//   - Encodes every text once, eagerly, at construction time through a
//     TextEncoder and keeps the vectors for the lifetime of the dataset.
//   - Loads image and target files lazily, on Example/Batch, so only paths
//     and text vectors stay in memory.
//   - Image samples are float32 HWC with 3 channels, targets are float32 HW
//     with 1 channel, both scaled to [0, 1].
//
// Split
//   - Shuffles entries once and cuts them into train/validation/test.
//
// Loader
//   - Batches and (optionally) shuffles a SaliencyDataset and implements
//     gomlx's train.Dataset so it can be handed to a training loop.
//
// Batches are first built as contiguous float32 buffers (SaliencyBatchFlat)
// and only then converted into gomlx tensors.
//
// Dataset is the random-access view implemented by SaliencyDataset.
type Dataset interface {
	Len() int
	Example(i int) (Sample, error)
	Batch(indices []int) (*SaliencyBatchFlat, error)
}

// TextEncoder is the minimal interface this package needs from a text
// encoder. The encoder package provides implementations backed by pretrained
// vision-language models; any type with these methods works.
type TextEncoder interface {
	// Encode returns the fixed-size vector for one text.
	Encode(ctx context.Context, text string) ([]float32, error)

	// Dimension is the length of every vector returned by Encode. Zero means
	// unknown, in which case the first vector fixes the dimension.
	Dimension() int

	// Name identifies the encoder (provider and model) in logs and snapshots.
	Name() string
}

var (
	// ErrIndexOutOfRange is returned when accessing an example outside [0, Len()).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrMisaligned is returned when image, target and text lists differ in length.
	ErrMisaligned = errors.New("image, target and text lists are not aligned")

	// ErrInvalidRatio is returned for split ratios outside [0, 1] or summing above 1.
	ErrInvalidRatio = errors.New("invalid split ratio")

	// ErrBatchSize is returned for a non-positive batch size.
	ErrBatchSize = errors.New("batch size must be positive")

	// ErrDimension is returned when a text vector has an unexpected length.
	ErrDimension = errors.New("unexpected text encoding dimension")

	// ErrSnapshotVersion is returned when an encoding snapshot was written by
	// an incompatible version.
	ErrSnapshotVersion = errors.New("encoding snapshot version mismatch")
)
