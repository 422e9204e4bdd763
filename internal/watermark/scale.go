package watermark

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-watermark/internal/errs"
)

// ScaleFactor returns the uniform factor that sizes a mark relative to the
// canvas.
//
//   - ScaleLinear: s = W·p / Mw, so the scaled mark spans p of the canvas width.
//   - ScaleArea:   s = sqrt(W·H·p / (Mw·Mh)), so the scaled mark covers p of the
//     canvas area regardless of either image's aspect ratio.
//
// Both mark dimensions must be positive.
func ScaleFactor(canvas, mark image.Point, proportion float64, mode ScalingMode) (float64, error) {
	if mark.X <= 0 || mark.Y <= 0 {
		return 0, errs.New(errs.CodeDecode, "mark has zero size %dx%d", mark.X, mark.Y)
	}

	w, h := float64(canvas.X), float64(canvas.Y)
	mw, mh := float64(mark.X), float64(mark.Y)

	switch mode {
	case ScaleLinear:
		return w * proportion / mw, nil
	case ScaleArea:
		return math.Sqrt(h * w * proportion / (mh * mw)), nil
	default:
		return 0, errs.New(errs.CodeInvalidConfig, "scaling mode must be LINEAR or AREA, got %q", mode)
	}
}

// MaxMarkPixels bounds the area of a scaled mark. A resize beyond it would
// need gigabytes of buffer, so the operation fails instead.
const MaxMarkPixels = 1 << 28

// checkScaledArea rejects a scale factor whose resized mark would exceed
// MaxMarkPixels. It runs on floats so huge factors cannot overflow int.
func checkScaledArea(mark image.Point, s float64) error {
	w, h := float64(mark.X)*s, float64(mark.Y)*s
	if math.IsNaN(w*h) || w*h > MaxMarkPixels {
		return errs.New(errs.CodeTooLarge,
			"scaled mark %.0fx%.0f exceeds %d pixels", w, h, MaxMarkPixels)
	}
	return nil
}

// ScaledSize applies s to both mark dimensions, truncating toward zero.
// ok is false when either dimension collapses to zero or below, in which
// case the mark should be used at its original size.
func ScaledSize(mark image.Point, s float64) (size image.Point, ok bool) {
	size = image.Pt(int(float64(mark.X)*s), int(float64(mark.Y)*s))
	return size, size.X > 0 && size.Y > 0
}

// ResizeMark resamples mark to size using a Lanczos filter.
// The input is left untouched.
func ResizeMark(mark *image.NRGBA, size image.Point) *image.NRGBA {
	return imaging.Resize(mark, size.X, size.Y, imaging.Lanczos)
}
