package watermark

import "image"

// Place maps a SINGLE-mode position to the top-left offset of the mark.
//
// The margin applies only to the canvas edges adjacent to the anchor, MIDDLE
// ignores it, and an explicit position is used verbatim. Offsets are not
// clamped: a mark larger than the canvas, or a margin wider than it, yields
// negative coordinates and the stamp is clipped instead.
//
//	UPPER_LEFT   (m, m)
//	UPPER_RIGHT  (W-Mw-m, m)
//	LOWER_LEFT   (m, H-Mh-m)
//	MIDDLE       (⌊(W-Mw)/2⌋, ⌊(H-Mh)/2⌋)
//	LOWER_RIGHT  (W-Mw-m, H-Mh-m), also used for any unknown anchor
func Place(canvas, mark image.Point, margin int, pos Position) image.Point {
	w, h := canvas.X, canvas.Y
	mw, mh := mark.X, mark.Y

	switch pos.Anchor {
	case UpperLeft:
		return image.Pt(margin, margin)
	case UpperRight:
		return image.Pt(w-mw-margin, margin)
	case LowerLeft:
		return image.Pt(margin, h-mh-margin)
	case Middle:
		return image.Pt(floorHalf(w-mw), floorHalf(h-mh))
	case Explicit:
		return image.Pt(pos.X, pos.Y)
	default:
		return image.Pt(w-mw-margin, h-mh-margin)
	}
}

// floorHalf halves n rounding toward negative infinity, so an oversized
// mark is centred the same way as one that fits.
func floorHalf(n int) int {
	if n < 0 {
		return -((1 - n) / 2)
	}
	return n / 2
}
