package datasets

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Transform is applied to both the image and its saliency target before they
// are converted to float buffers. A nil Transform keeps the decoded image.
type Transform func(img image.Image) image.Image

// Resize scales to exactly width x height, ignoring the aspect ratio.
func Resize(width, height int) Transform {
	return func(img image.Image) image.Image {
		return imaging.Resize(img, width, height, imaging.Lanczos)
	}
}

// ResizeWithPadding scales to fit inside width x height keeping the aspect
// ratio, and pads the rest with black.
func ResizeWithPadding(width, height int) Transform {
	return func(img image.Image) image.Image {
		imgSize := img.Bounds().Size()
		wRatio := float64(width) / float64(imgSize.X)
		hRatio := float64(height) / float64(imgSize.Y)

		adjustedWidth, adjustedHeight := width, height
		if wRatio < hRatio {
			adjustedHeight = int(wRatio * float64(imgSize.Y))
		} else if hRatio < wRatio {
			adjustedWidth = int(hRatio * float64(imgSize.X))
		}
		img = imaging.Resize(img, adjustedWidth, adjustedHeight, imaging.Lanczos)
		if adjustedWidth != width || adjustedHeight != height {
			bg := imaging.New(width, height, color.NRGBA{A: 255})
			img = imaging.PasteCenter(bg, img)
		}
		return img
	}
}

// CenterCrop resizes the smallest side to size, keeping the ratio, and then
// crops the middle size x size square.
func CenterCrop(size int) Transform {
	return func(img image.Image) image.Image {
		b := img.Bounds()
		if b.Dx() < b.Dy() {
			img = imaging.Resize(img, size, 0, imaging.Linear)
		} else {
			img = imaging.Resize(img, 0, size, imaging.Linear)
		}
		return imaging.CropCenter(img, size, size)
	}
}

// Compose chains transforms left to right. Nil transforms are skipped.
func Compose(transforms ...Transform) Transform {
	return func(img image.Image) image.Image {
		for _, t := range transforms {
			if t != nil {
				img = t(img)
			}
		}
		return img
	}
}

// ImageToRGB converts img to a float32 HWC buffer with 3 channels in [0, 1].
// Alpha is dropped without blending.
func ImageToRGB(img image.Image) (data []float32, height, width int) {
	b := img.Bounds()
	height, width = b.Dy(), b.Dx()
	data = make([]float32, height*width*3)
	pos := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			data[pos] = float32(c.R) / 255
			data[pos+1] = float32(c.G) / 255
			data[pos+2] = float32(c.B) / 255
			pos += 3
		}
	}
	return data, height, width
}

// ImageToGray converts img to a float32 HW buffer (1 channel) in [0, 1],
// using ITU-R 601-2 luma: L = R*299/1000 + G*587/1000 + B*114/1000.
func ImageToGray(img image.Image) (data []float32, height, width int) {
	b := img.Bounds()
	height, width = b.Dy(), b.Dx()
	data = make([]float32, height*width)
	pos := 0
	if g, ok := img.(*image.Gray); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				data[pos] = float32(g.GrayAt(x, y).Y) / 255
				pos++
			}
		}
		return data, height, width
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			l := (299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B)) / 1000
			data[pos] = float32(l) / 255
			pos++
		}
	}
	return data, height, width
}
