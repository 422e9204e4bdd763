package watermark

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/parallel"
)

// NewOverlay allocates a fully transparent layer of the given size.
// An overlay belongs to a single compositing call and is never reused.
func NewOverlay(size image.Point) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
}

// lineFunc runs fn over [start, end) slices of n rows.
type lineFunc func(n int, fn func(start, end int))

// serialLines runs every row on the calling goroutine.
func serialLines(n int, fn func(start, end int)) {
	fn(0, n)
}

// Stamp paints mark onto overlay with its top-left corner at at, using the
// mark's own alpha as the blend weight over whatever the overlay already
// holds. Pixels falling outside the overlay are clipped, so negative or
// oversized offsets are fine.
//
// The weight is the Porter-Duff "over" operator, the same one Composite
// uses: a translucent stamp on an empty overlay keeps its colour and alpha,
// and a later stamp blends over an earlier one where they meet.
func Stamp(overlay, mark *image.NRGBA, at image.Point) {
	stamp(overlay, mark, at, parallel.Line)
}

func stamp(overlay, mark *image.NRGBA, at image.Point, lines lineFunc) {
	mb := mark.Bounds()
	dst := mb.Sub(mb.Min).Add(at).Intersect(overlay.Bounds())
	if dst.Empty() {
		return
	}

	lines(dst.Dy(), func(start, end int) {
		for dy := start; dy < end; dy++ {
			y := dst.Min.Y + dy
			sy := y - at.Y + mb.Min.Y
			for x := dst.Min.X; x < dst.Max.X; x++ {
				sx := x - at.X + mb.Min.X
				si := mark.PixOffset(sx, sy)
				di := overlay.PixOffset(x, y)
				blendOver(overlay.Pix[di:di+4:di+4], mark.Pix[si:si+4:si+4])
			}
		}
	})
}

// Composite blends overlay over canvas and returns the result as a new
// image. Both inputs must have the same dimensions and are left untouched.
//
// Per pixel, with alphas normalised to [0, 1]:
//
//	outA = oA + cA·(1-oA)
//	out  = (o·oA + c·cA·(1-oA)) / outA
//
// For an opaque canvas this reduces to out = o·oA + c·(1-oA). The result
// always carries an alpha channel.
func Composite(canvas, overlay *image.NRGBA) (*image.NRGBA, error) {
	return composite(canvas, overlay, parallel.Line)
}

func composite(canvas, overlay *image.NRGBA, lines lineFunc) (*image.NRGBA, error) {
	cb, ob := canvas.Bounds(), overlay.Bounds()
	if cb.Dx() != ob.Dx() || cb.Dy() != ob.Dy() {
		return nil, fmt.Errorf("overlay size %dx%d does not match canvas size %dx%d",
			ob.Dx(), ob.Dy(), cb.Dx(), cb.Dy())
	}

	w, h := cb.Dx(), cb.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	lines(h, func(start, end int) {
		for y := start; y < end; y++ {
			ci := canvas.PixOffset(cb.Min.X, cb.Min.Y+y)
			oi := overlay.PixOffset(ob.Min.X, ob.Min.Y+y)
			di := out.PixOffset(0, y)
			copy(out.Pix[di:di+w*4], canvas.Pix[ci:ci+w*4])
			for x := 0; x < w; x++ {
				p := di + x*4
				q := oi + x*4
				blendOver(out.Pix[p:p+4:p+4], overlay.Pix[q:q+4:q+4])
			}
		}
	})

	return out, nil
}

// blendOver composites the straight-alpha pixel src over dst in place.
func blendOver(dst, src []uint8) {
	sa := uint32(src[3])
	switch sa {
	case 0:
		return
	case 255:
		copy(dst, src)
		return
	}

	da := uint32(dst[3])
	// Alpha scaled by 255·255 to keep the division exact until the end.
	outA := sa*255 + da*(255-sa)

	for i := 0; i < 3; i++ {
		num := uint32(src[i])*sa*255 + uint32(dst[i])*da*(255-sa)
		dst[i] = uint8((num + outA/2) / outA)
	}
	dst[3] = uint8((outA + 127) / 255)
}
