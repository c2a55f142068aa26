package datasets

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// countingEncoder encodes a text as [len(text), 1, 0, ...] and counts calls.
type countingEncoder struct {
	dim int

	mu    sync.Mutex
	calls []string
	err   error
}

func (e *countingEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	e.calls = append(e.calls, text)
	vec := make([]float32, e.dim)
	vec[0] = float32(len(text))
	if e.dim > 1 {
		vec[1] = 1
	}
	return vec, nil
}

func (e *countingEncoder) Dimension() int { return e.dim }
func (e *countingEncoder) Name() string   { return fmt.Sprintf("counting/%d", e.dim) }

func (e *countingEncoder) numCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

// writeRGBPNG writes a w x h image filled with c.
func writeRGBPNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	writePNG(t, path, img)
}

// writeGrayPNG writes a w x h grayscale image filled with v.
func writeGrayPNG(t *testing.T, path string, w, h int, v uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	writePNG(t, path, img)
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// writeFixtures writes n image/target pairs of size w x h under dir and
// returns entries for them. Target i is filled with gray level 10*i.
func writeFixtures(t *testing.T, dir string, n, w, h int) []Entry {
	t.Helper()
	entries := make([]Entry, n)
	for i := range n {
		img := filepath.Join(dir, fmt.Sprintf("img_%02d.png", i))
		target := filepath.Join(dir, fmt.Sprintf("sal_%02d.png", i))
		writeRGBPNG(t, img, w, h, color.NRGBA{R: 255, G: uint8(i), B: 0, A: 255})
		writeGrayPNG(t, target, w, h, uint8(10*i))
		entries[i] = Entry{ImagePath: img, TargetPath: target, Text: fmt.Sprintf("prompt number %d", i)}
	}
	return entries
}

// syntheticEntries returns n entries whose paths need not exist.
func syntheticEntries(n int) []Entry {
	entries := make([]Entry, n)
	for i := range n {
		entries[i] = Entry{
			ImagePath:  fmt.Sprintf("img_%03d.png", i),
			TargetPath: fmt.Sprintf("sal_%03d.png", i),
			Text:       fmt.Sprintf("text %d", i),
		}
	}
	return entries
}
