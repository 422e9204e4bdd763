package watermark

import (
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage returns a w×h NRGBA image filled with c.
func createInMemoryImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// createGradientImage returns an image whose pixels all differ, with alpha
// varying across the row.
func createGradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 7),
				G: uint8(y * 11),
				B: uint8((x + y) * 3),
				A: uint8((x*31 + y*17) % 256),
			})
		}
	}
	return img
}

func alphaChannel(img *image.NRGBA) []uint8 {
	b := img.Bounds()
	out := make([]uint8, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out = append(out, img.NRGBAAt(x, y).A)
		}
	}
	return out
}

func expectColor(t *testing.T, got, want color.NRGBA, context string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %+v, want %+v", context, got, want)
	}
}

func nrgba(r, g, b, a uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: a}
}
