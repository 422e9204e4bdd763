package watermark

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"
)

// blendReference is the floating-point straight-alpha "over" operator.
func blendReference(top, bottom color.NRGBA) color.NRGBA {
	sa := float64(top.A) / 255.0
	ba := float64(bottom.A) / 255.0

	outA := sa + ba*(1.0-sa)
	if outA == 0 {
		return bottom
	}

	blend := func(s, b uint8) uint8 {
		return uint8(math.Round((float64(s)*sa + float64(b)*ba*(1.0-sa)) / outA))
	}

	return color.NRGBA{
		R: blend(top.R, bottom.R),
		G: blend(top.G, bottom.G),
		B: blend(top.B, bottom.B),
		A: uint8(math.Round(outA * 255.0)),
	}
}

func within(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d >= -tol && d <= tol
}

func TestNewOverlay_Transparent(t *testing.T) {
	o := NewOverlay(image.Pt(5, 3))
	if o.Bounds() != image.Rect(0, 0, 5, 3) {
		t.Fatalf("bounds: got %v", o.Bounds())
	}
	for _, b := range o.Pix {
		if b != 0 {
			t.Fatal("overlay is not fully transparent")
		}
	}
}

func TestComposite_OpaqueFullMarkReplacesCanvas(t *testing.T) {
	canvas := createGradientImage(24, 16)
	mark := createGradientImage(24, 16)
	for i := 3; i < len(mark.Pix); i += 4 {
		mark.Pix[i] = 255
		mark.Pix[i-1] ^= 0x5a
	}

	overlay := NewOverlay(Size(canvas))
	Stamp(overlay, mark, image.Point{})

	out, err := Composite(canvas, overlay)
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	if !bytes.Equal(out.Pix, mark.Pix) {
		t.Error("opaque canvas-sized mark at (0,0) did not reproduce the mark")
	}
}

func TestComposite_TransparentOverlayKeepsCanvas(t *testing.T) {
	canvas := createGradientImage(10, 10)
	before := append([]uint8(nil), canvas.Pix...)

	out, err := Composite(canvas, NewOverlay(Size(canvas)))
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	if !bytes.Equal(out.Pix, before) {
		t.Error("transparent overlay changed the canvas")
	}
	if !bytes.Equal(canvas.Pix, before) {
		t.Error("Composite modified its canvas input")
	}
}

func TestComposite_OpaqueCanvasFormula(t *testing.T) {
	canvas := createInMemoryImage(1, 1, nrgba(10, 200, 60, 255))
	overlay := createInMemoryImage(1, 1, nrgba(250, 0, 128, 64))

	out, err := Composite(canvas, overlay)
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}

	oa := 64.0 / 255.0
	want := func(o, c float64) uint8 { return uint8(math.Round(o*oa + c*(1-oa))) }
	expectColor(t, out.NRGBAAt(0, 0), nrgba(want(250, 10), want(0, 200), want(128, 60), 255), "blended pixel")
}

func TestComposite_MatchesReference(t *testing.T) {
	canvas := createGradientImage(40, 12)
	overlay := createGradientImage(40, 12)
	for i := 0; i < len(overlay.Pix); i += 4 {
		overlay.Pix[i] = 255 - overlay.Pix[i]
		overlay.Pix[i+3] = uint8((i / 4 * 13) % 256)
	}

	out, err := Composite(canvas, overlay)
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}

	for y := 0; y < 12; y++ {
		for x := 0; x < 40; x++ {
			got := out.NRGBAAt(x, y)
			want := blendReference(overlay.NRGBAAt(x, y), canvas.NRGBAAt(x, y))
			if !within(got.R, want.R, 1) || !within(got.G, want.G, 1) || !within(got.B, want.B, 1) || !within(got.A, want.A, 1) {
				t.Fatalf("(%d,%d): got %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestComposite_SizeMismatch(t *testing.T) {
	_, err := Composite(NewOverlay(image.Pt(4, 4)), NewOverlay(image.Pt(4, 5)))
	if err == nil {
		t.Error("expected error for mismatched sizes")
	}
}

func TestStamp_ClipsNegativeOffset(t *testing.T) {
	overlay := NewOverlay(image.Pt(10, 10))
	mark := createInMemoryImage(6, 6, nrgba(255, 0, 0, 255))

	Stamp(overlay, mark, image.Pt(-3, -2))

	expectColor(t, overlay.NRGBAAt(0, 0), nrgba(255, 0, 0, 255), "inside clipped stamp")
	expectColor(t, overlay.NRGBAAt(2, 3), nrgba(255, 0, 0, 255), "last stamped pixel")
	expectColor(t, overlay.NRGBAAt(3, 0), color.NRGBA{}, "right of stamp")
	expectColor(t, overlay.NRGBAAt(0, 4), color.NRGBA{}, "below stamp")
}

func TestStamp_ClipsPastEdge(t *testing.T) {
	overlay := NewOverlay(image.Pt(10, 10))
	mark := createInMemoryImage(6, 6, nrgba(0, 255, 0, 255))

	Stamp(overlay, mark, image.Pt(8, 8))
	expectColor(t, overlay.NRGBAAt(9, 9), nrgba(0, 255, 0, 255), "corner")
	expectColor(t, overlay.NRGBAAt(7, 7), color.NRGBA{}, "before stamp")

	// entirely outside: no panic, no change
	Stamp(overlay, mark, image.Pt(50, -50))
	Stamp(overlay, mark, image.Pt(-6, 0))
	expectColor(t, overlay.NRGBAAt(0, 0), color.NRGBA{}, "untouched")
}

func TestStamp_LaterBlendsOverEarlier(t *testing.T) {
	overlay := NewOverlay(image.Pt(4, 4))
	red := createInMemoryImage(4, 4, nrgba(255, 0, 0, 255))
	blue := createInMemoryImage(2, 2, nrgba(0, 0, 255, 128))

	Stamp(overlay, red, image.Point{})
	Stamp(overlay, blue, image.Pt(1, 1))

	expectColor(t, overlay.NRGBAAt(0, 0), nrgba(255, 0, 0, 255), "red only")
	got := overlay.NRGBAAt(1, 1)
	want := blendReference(nrgba(0, 0, 255, 128), nrgba(255, 0, 0, 255))
	if !within(got.R, want.R, 1) || !within(got.B, want.B, 1) || got.A != 255 {
		t.Errorf("overlap: got %+v, want %+v", got, want)
	}
}

func TestStamp_TranslucentOnEmptyOverlayKeepsColour(t *testing.T) {
	overlay := NewOverlay(image.Pt(2, 2))
	mark := createInMemoryImage(2, 2, nrgba(90, 180, 30, 100))

	Stamp(overlay, mark, image.Point{})
	expectColor(t, overlay.NRGBAAt(1, 0), nrgba(90, 180, 30, 100), "stamped pixel")
}

func TestStamp_OverlappingTranslucentStamps(t *testing.T) {
	overlay := NewOverlay(image.Pt(3, 1))
	mark := createInMemoryImage(2, 1, nrgba(90, 180, 30, 100))

	// The stamps share pixel (1,0).
	Stamp(overlay, mark, image.Pt(0, 0))
	Stamp(overlay, mark, image.Pt(1, 0))

	expectColor(t, overlay.NRGBAAt(0, 0), nrgba(90, 180, 30, 100), "first stamp only")
	expectColor(t, overlay.NRGBAAt(2, 0), nrgba(90, 180, 30, 100), "second stamp only")
	// Same colour over itself; alpha 100 + 100·(1-100/255) ≈ 161.
	expectColor(t, overlay.NRGBAAt(1, 0), nrgba(90, 180, 30, 161), "overlap")

	out, err := Composite(createInMemoryImage(3, 1, nrgba(255, 255, 255, 255)), overlay)
	if err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	single := blendReference(nrgba(90, 180, 30, 100), nrgba(255, 255, 255, 255))
	double := blendReference(nrgba(90, 180, 30, 161), nrgba(255, 255, 255, 255))
	for x, want := range []color.NRGBA{single, double, single} {
		got := out.NRGBAAt(x, 0)
		if !within(got.R, want.R, 1) || !within(got.G, want.G, 1) || !within(got.B, want.B, 1) || got.A != 255 {
			t.Errorf("pixel %d over white: got %+v, want %+v", x, got, want)
		}
	}
	if out.NRGBAAt(1, 0).R >= out.NRGBAAt(0, 0).R {
		t.Error("overlap should be stronger than a single stamp")
	}
}

func TestStamp_SerialMatchesParallel(t *testing.T) {
	mark := createGradientImage(12, 9)
	a, b := NewOverlay(image.Pt(20, 20)), NewOverlay(image.Pt(20, 20))

	for _, at := range []image.Point{{0, 0}, {5, 4}, {-3, 15}} {
		Stamp(a, mark, at)
		stamp(b, mark, at, serialLines)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("serial stamping differs from parallel stamping")
	}
}

func TestStamp_SubImageMark(t *testing.T) {
	full := createGradientImage(20, 20)
	sub := full.SubImage(image.Rect(5, 5, 10, 10)).(*image.NRGBA)
	for y := 5; y < 10; y++ {
		for x := 5; x < 10; x++ {
			c := full.NRGBAAt(x, y)
			c.A = 255
			full.SetNRGBA(x, y, c)
		}
	}

	overlay := NewOverlay(image.Pt(8, 8))
	Stamp(overlay, sub, image.Pt(1, 2))

	expectColor(t, overlay.NRGBAAt(1, 2), full.NRGBAAt(5, 5), "first pixel")
	expectColor(t, overlay.NRGBAAt(5, 6), full.NRGBAAt(9, 9), "last pixel")
}
