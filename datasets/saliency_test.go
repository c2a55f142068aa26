package datasets

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestNewSaliencyDatasetEncodesOncePerEntry(t *testing.T) {
	entries := syntheticEntries(5)
	enc := &countingEncoder{dim: 4}

	ds, err := NewSaliencyDataset(context.Background(), entries, enc)
	if err != nil {
		t.Fatalf("NewSaliencyDataset failed: %v", err)
	}
	if ds.Len() != 5 {
		t.Fatalf("Len = %d, want 5", ds.Len())
	}
	if enc.numCalls() != 5 {
		t.Fatalf("encoder called %d times, want 5", enc.numCalls())
	}
	for i, text := range enc.calls {
		if text != entries[i].Text {
			t.Fatalf("call %d encoded %q, want %q", i, text, entries[i].Text)
		}
	}
	if ds.Dimension() != 4 || ds.EncoderName() != "counting/4" {
		t.Fatalf("unexpected dimension %d or encoder %q", ds.Dimension(), ds.EncoderName())
	}

	// Reading texts does not call the encoder again.
	for i := range ds.Len() {
		vec, err := ds.Text(i)
		if err != nil {
			t.Fatalf("Text(%d) failed: %v", i, err)
		}
		if len(vec) != 4 || vec[0] != float32(len(entries[i].Text)) {
			t.Fatalf("Text(%d) = %v", i, vec)
		}
	}
	if enc.numCalls() != 5 {
		t.Fatalf("encoder called again after construction")
	}
}

func TestNewSaliencyDatasetEncoderError(t *testing.T) {
	enc := &countingEncoder{dim: 4, err: errors.New("model unavailable")}
	_, err := NewSaliencyDataset(context.Background(), syntheticEntries(3), enc)
	if err == nil {
		t.Fatalf("expected encoder error")
	}
}

type shortEncoder struct{ countingEncoder }

func (e *shortEncoder) Dimension() int { return e.dim + 1 }

func TestNewSaliencyDatasetDimensionMismatch(t *testing.T) {
	enc := &shortEncoder{countingEncoder{dim: 4}}
	_, err := NewSaliencyDataset(context.Background(), syntheticEntries(2), enc)
	if !errors.Is(err, ErrDimension) {
		t.Fatalf("expected ErrDimension, got %v", err)
	}
}

func TestNewSaliencyDatasetFromListsMisaligned(t *testing.T) {
	enc := &countingEncoder{dim: 2}
	_, err := NewSaliencyDatasetFromLists(context.Background(),
		[]string{"a", "b", "c"}, []string{"a", "b", "c"}, []string{"a", "b"}, enc)
	if !errors.Is(err, ErrMisaligned) {
		t.Fatalf("expected ErrMisaligned, got %v", err)
	}
	if enc.numCalls() != 0 {
		t.Fatalf("encoder should not be called for misaligned lists")
	}
}

func TestSaliencyDatasetExample(t *testing.T) {
	entries := writeFixtures(t, t.TempDir(), 3, 12, 8)
	ds, err := NewSaliencyDataset(context.Background(), entries, &countingEncoder{dim: 6})
	if err != nil {
		t.Fatalf("NewSaliencyDataset failed: %v", err)
	}

	s, err := ds.Example(2)
	if err != nil {
		t.Fatalf("Example failed: %v", err)
	}
	if s.Height != 8 || s.Width != 12 || s.TargetHeight != 8 || s.TargetWidth != 12 {
		t.Fatalf("unexpected sizes: image %dx%d target %dx%d", s.Height, s.Width, s.TargetHeight, s.TargetWidth)
	}
	if len(s.Image) != 8*12*3 || len(s.Target) != 8*12 || len(s.Text) != 6 {
		t.Fatalf("unexpected buffer lengths %d %d %d", len(s.Image), len(s.Target), len(s.Text))
	}
	if s.Image[0] != 1 || math.Abs(float64(s.Image[1])-2.0/255) > 1e-6 {
		t.Fatalf("unexpected first pixel %v", s.Image[:3])
	}
	if math.Abs(float64(s.Target[0])-20.0/255) > 1e-6 {
		t.Fatalf("unexpected target value %v", s.Target[0])
	}
}

func TestSaliencyDatasetExampleTransform(t *testing.T) {
	entries := writeFixtures(t, t.TempDir(), 2, 20, 10)
	ds, err := NewSaliencyDataset(context.Background(), entries, &countingEncoder{dim: 2},
		WithTransform(Resize(4, 4)))
	if err != nil {
		t.Fatalf("NewSaliencyDataset failed: %v", err)
	}
	s, err := ds.Example(1)
	if err != nil {
		t.Fatalf("Example failed: %v", err)
	}
	if s.Height != 4 || s.Width != 4 || s.TargetHeight != 4 || s.TargetWidth != 4 {
		t.Fatalf("transform not applied to both image and target: %+v", s)
	}
	if math.Abs(float64(s.Target[5])-10.0/255) > 2.0/255 {
		t.Fatalf("resized target drifted: %v", s.Target[5])
	}
}

func TestSaliencyDatasetOutOfRange(t *testing.T) {
	ds, err := NewSaliencyDataset(context.Background(), syntheticEntries(2), &countingEncoder{dim: 2})
	if err != nil {
		t.Fatalf("NewSaliencyDataset failed: %v", err)
	}
	for _, idx := range []int{-1, 2, 100} {
		if _, err := ds.Example(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("Example(%d): expected ErrIndexOutOfRange, got %v", idx, err)
		}
		if _, err := ds.Text(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("Text(%d): expected ErrIndexOutOfRange, got %v", idx, err)
		}
	}
}

func TestSaliencyDatasetMissingFile(t *testing.T) {
	ds, err := NewSaliencyDataset(context.Background(), syntheticEntries(1), &countingEncoder{dim: 2})
	if err != nil {
		t.Fatalf("NewSaliencyDataset failed: %v", err)
	}
	if _, err := ds.Example(0); err == nil {
		t.Fatalf("expected error for missing image file")
	}
}

func TestSaliencyDatasetBatch(t *testing.T) {
	entries := writeFixtures(t, t.TempDir(), 4, 6, 5)
	ds, err := NewSaliencyDataset(context.Background(), entries, &countingEncoder{dim: 3})
	if err != nil {
		t.Fatalf("NewSaliencyDataset failed: %v", err)
	}

	batch, err := ds.Batch([]int{3, 1})
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if batch.BatchSize != 2 || batch.Height != 5 || batch.Width != 6 || batch.TextDim != 3 {
		t.Fatalf("unexpected batch header %+v", batch)
	}
	if len(batch.Images) != 2*5*6*3 || len(batch.Targets) != 2*5*6 || len(batch.Texts) != 2*3 {
		t.Fatalf("unexpected buffer lengths")
	}
	if batch.Indices[0] != 3 || batch.Indices[1] != 1 {
		t.Fatalf("unexpected indices %v", batch.Indices)
	}
	// Second example in the batch is entry 1, target gray level 10.
	if math.Abs(float64(batch.Targets[5*6])-10.0/255) > 1e-6 {
		t.Fatalf("batch target out of order: %v", batch.Targets[5*6])
	}

	images, targets, texts, err := batch.ToGomlxTensors()
	if err != nil {
		t.Fatalf("ToGomlxTensors failed: %v", err)
	}
	if images == nil || targets == nil || texts == nil {
		t.Fatalf("expected non-nil tensors")
	}
}
