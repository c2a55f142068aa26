package datasets

import (
	"errors"
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// SaliencyBatchFlat stores a batch in flat contiguous buffers
type SaliencyBatchFlat struct {
	// Images is [BatchSize, Height, Width, 3].
	Images []float32
	// Targets is [BatchSize, Height, Width, 1].
	Targets []float32
	// Texts is [BatchSize, TextDim].
	Texts []float32

	// Indices are the dataset indices of the examples, in batch order.
	Indices []int

	BatchSize int
	Height    int
	Width     int
	TextDim   int
}

// MakeSaliencyBatchFlat flattens samples into contiguous buffers. All samples
// must share the same image size, with targets of that same size, and the
// same text dimension.
func MakeSaliencyBatchFlat(samples []Sample) (*SaliencyBatchFlat, error) {
	if len(samples) == 0 {
		return &SaliencyBatchFlat{}, nil
	}

	batchSize := len(samples)
	height := samples[0].Height
	width := samples[0].Width
	textDim := len(samples[0].Text)
	pixels := height * width

	flatImages := make([]float32, batchSize*pixels*3)
	flatTargets := make([]float32, batchSize*pixels)
	flatTexts := make([]float32, batchSize*textDim)

	for i, s := range samples {
		if s.Height != height || s.Width != width {
			return nil, fmt.Errorf("inconsistent image size at example %d: expected %dx%d, got %dx%d",
				i, height, width, s.Height, s.Width)
		}
		if s.TargetHeight != height || s.TargetWidth != width {
			return nil, fmt.Errorf("target size %dx%d does not match image size %dx%d at example %d",
				s.TargetHeight, s.TargetWidth, height, width, i)
		}
		if len(s.Text) != textDim {
			return nil, fmt.Errorf("inconsistent text dimension at example %d: expected %d, got %d",
				i, textDim, len(s.Text))
		}
		if len(s.Image) != pixels*3 || len(s.Target) != pixels {
			return nil, fmt.Errorf("example %d buffers do not match its %dx%d size", i, height, width)
		}
		copy(flatImages[i*pixels*3:], s.Image)
		copy(flatTargets[i*pixels:], s.Target)
		copy(flatTexts[i*textDim:], s.Text)
	}

	return &SaliencyBatchFlat{
		Images:    flatImages,
		Targets:   flatTargets,
		Texts:     flatTexts,
		BatchSize: batchSize,
		Height:    height,
		Width:     width,
		TextDim:   textDim,
	}, nil
}

// ToGomlxTensors converts the batch to gomlx tensors shaped
// images [B, H, W, 3], targets [B, H, W, 1] and texts [B, D].
func (b *SaliencyBatchFlat) ToGomlxTensors() (images, targets, texts *tensors.Tensor, err error) {
	if b.BatchSize == 0 {
		return nil, nil, nil, errors.New("cannot convert an empty batch to tensors")
	}
	images = tensors.FromFlatDataAndDimensions(b.Images, b.BatchSize, b.Height, b.Width, 3)
	targets = tensors.FromFlatDataAndDimensions(b.Targets, b.BatchSize, b.Height, b.Width, 1)
	texts = tensors.FromFlatDataAndDimensions(b.Texts, b.BatchSize, b.TextDim)
	return images, targets, texts, nil
}
