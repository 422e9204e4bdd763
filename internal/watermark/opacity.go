package watermark

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
)

// ApplyOpacity returns mark with every alpha sample replaced by
// floor(alpha·opacity).
//
// When opacity is 1 the input is returned as is. Otherwise the result is a
// private copy and mark is never modified, so a mark shared between
// concurrent operations stays intact. Colour samples are left alone, even
// where alpha drops to zero.
func ApplyOpacity(mark *image.NRGBA, opacity float64) *image.NRGBA {
	return applyOpacity(mark, opacity, parallel.Line)
}

func applyOpacity(mark *image.NRGBA, opacity float64, lines lineFunc) *image.NRGBA {
	if opacity >= 1 {
		return mark
	}
	if opacity < 0 {
		opacity = 0
	}

	out := imaging.Clone(mark)
	w := out.Rect.Dx()

	lines(out.Rect.Dy(), func(start, end int) {
		for y := start; y < end; y++ {
			row := out.Pix[y*out.Stride : y*out.Stride+w*4]
			for i := 3; i < len(row); i += 4 {
				row[i] = uint8(float64(row[i]) * opacity)
			}
		}
	})

	return out
}
