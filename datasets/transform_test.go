package datasets

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func uniformNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestImageToRGB(t *testing.T) {
	img := uniformNRGBA(3, 2, color.NRGBA{R: 255, G: 51, B: 0, A: 255})
	data, h, w := ImageToRGB(img)
	if h != 2 || w != 3 {
		t.Fatalf("size = %dx%d, want 2x3", h, w)
	}
	if len(data) != 2*3*3 {
		t.Fatalf("len = %d, want %d", len(data), 18)
	}
	if data[0] != 1 || math.Abs(float64(data[1])-0.2) > 1e-6 || data[2] != 0 {
		t.Fatalf("unexpected first pixel: %v", data[:3])
	}
}

func TestImageToGray(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.Pix[3] = 255
	data, h, w := ImageToGray(gray)
	if h != 2 || w != 2 || len(data) != 4 {
		t.Fatalf("unexpected shape %dx%d len %d", h, w, len(data))
	}
	if data[0] != 0 || data[3] != 1 {
		t.Fatalf("unexpected values %v", data)
	}

	// Pure red through the luma path: 255*299/1000 = 76.
	red := uniformNRGBA(1, 1, color.NRGBA{R: 255, A: 255})
	data, _, _ = ImageToGray(red)
	if data[0] != float32(76)/255 {
		t.Fatalf("red luma = %v, want %v", data[0], float32(76)/255)
	}
}

func TestResize(t *testing.T) {
	img := uniformNRGBA(40, 20, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	out := Resize(8, 6)(img)
	if s := out.Bounds().Size(); s.X != 8 || s.Y != 6 {
		t.Fatalf("size = %v, want 8x6", s)
	}
}

func TestResizeWithPadding(t *testing.T) {
	img := uniformNRGBA(40, 20, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	out := ResizeWithPadding(10, 10)(img)
	if s := out.Bounds().Size(); s.X != 10 || s.Y != 10 {
		t.Fatalf("size = %v, want 10x10", s)
	}
	data, _, _ := ImageToGray(out)
	// Top row is padding, middle row is content.
	if data[0] != 0 {
		t.Fatalf("expected black padding, got %v", data[0])
	}
	if data[5*10+5] < 0.9 {
		t.Fatalf("expected white content, got %v", data[5*10+5])
	}
}

func TestCenterCrop(t *testing.T) {
	img := uniformNRGBA(30, 60, color.NRGBA{A: 255})
	out := CenterCrop(12)(img)
	if s := out.Bounds().Size(); s.X != 12 || s.Y != 12 {
		t.Fatalf("size = %v, want 12x12", s)
	}
}

func TestComposeSkipsNil(t *testing.T) {
	img := uniformNRGBA(30, 60, color.NRGBA{A: 255})
	out := Compose(nil, Resize(20, 20), nil, CenterCrop(10))(img)
	if s := out.Bounds().Size(); s.X != 10 || s.Y != 10 {
		t.Fatalf("size = %v, want 10x10", s)
	}
}
