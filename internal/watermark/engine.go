package watermark

import (
	"context"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-watermark/internal/errs"
)

// Plan is the geometry of one compositing operation, computed without
// touching pixel data.
type Plan struct {
	// CanvasSize is the canvas width and height.
	CanvasSize image.Point `json:"canvas_size"`

	// OriginalMarkSize is the decoded mark width and height.
	OriginalMarkSize image.Point `json:"original_mark_size"`

	// Scale is the computed scale factor, even when the resize was skipped.
	Scale float64 `json:"scale"`

	// MarkSize is the size the mark is stamped at.
	MarkSize image.Point `json:"mark_size"`

	// Resized is false when the scaled size collapsed to zero and the
	// original size is used instead.
	Resized bool `json:"resized"`

	// Grid is the tile layout in TILE mode, nil otherwise.
	Grid *Grid `json:"grid,omitempty"`

	// Placements are the top-left offsets at which the mark is stamped.
	Placements []image.Point `json:"placements"`

	// Warnings lists degenerate-geometry conditions handled by policy.
	Warnings []string `json:"warnings,omitempty"`
}

// Result is the outcome of Engine.Apply.
type Result struct {
	Plan

	// Image is the composited canvas.
	Image *image.NRGBA `json:"-"`
}

// Engine sequences scaling, opacity, placement and compositing.
//
// An Engine holds no per-operation state; one value may serve any number
// of concurrent Apply calls. Logger is optional and receives debug
// diagnostics only.
//
// By default the opacity, stamp and composite passes split their rows
// across goroutines. Serial keeps those passes on the calling goroutine,
// for callers that already run one operation per worker. The Lanczos resize
// inside imaging.Resize parallelizes on its own either way.
type Engine struct {
	Logger *log.Logger
	Serial bool
}

// NewEngine returns an Engine reporting to logger, which may be nil.
func NewEngine(logger *log.Logger) *Engine {
	return &Engine{Logger: logger}
}

func (e *Engine) lines() lineFunc {
	if e != nil && e.Serial {
		return serialLines
	}
	return parallel.Line
}

func (e *Engine) debug(msg string, keyvals ...any) {
	if e == nil || e.Logger == nil {
		return
	}
	e.Logger.Debug(msg, keyvals...)
}

// Plan validates cfg and computes the mark size and stamp offsets for a
// canvas and mark of the given dimensions.
func (e *Engine) Plan(canvas, mark image.Point, cfg Config) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s, err := ScaleFactor(canvas, mark, cfg.Proportion, cfg.Scaling)
	if err != nil {
		return nil, err
	}

	if err := checkScaledArea(mark, s); err != nil {
		return nil, err
	}

	p := &Plan{
		CanvasSize:       canvas,
		OriginalMarkSize: mark,
		Scale:            s,
		MarkSize:         mark,
	}

	if size, ok := ScaledSize(mark, s); ok {
		p.MarkSize = size
		p.Resized = true
	} else {
		p.Warnings = append(p.Warnings, fmt.Sprintf(
			"scaled mark size %dx%d is empty, using original %dx%d",
			size.X, size.Y, mark.X, mark.Y))
	}

	switch cfg.Placement {
	case PlaceTile:
		g := NewGrid(canvas, p.MarkSize, cfg.TilePadding)
		p.Grid = &g
		if g.Degenerate() {
			p.Warnings = append(p.Warnings, fmt.Sprintf(
				"tile step %dx%d is empty, no tiles placed", g.StepX, g.StepY))
		}
		p.Placements = make([]image.Point, 0, g.Count())
		for pt := range g.Offsets() {
			p.Placements = append(p.Placements, pt)
		}
	default:
		p.Placements = []image.Point{Place(canvas, p.MarkSize, cfg.Margin, cfg.Position)}
	}

	return p, nil
}

// Apply composites mark onto canvas according to cfg and returns a new
// image. Neither input is modified, so a decoded mark may be shared by
// concurrent calls.
//
// cfg is validated before any pixel is touched. Cancelling ctx aborts this
// operation only, between stamps.
func (e *Engine) Apply(ctx context.Context, canvas, mark image.Image, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.CodeCancelled, err, "compositing cancelled")
	}

	base := ToRaster(canvas)
	m := ToRaster(mark)

	plan, err := e.Plan(Size(base), Size(m), cfg)
	if err != nil {
		return nil, err
	}
	e.debug("canvas", "size", plan.CanvasSize)
	e.debug("mark", "size", plan.OriginalMarkSize, "scaling", cfg.Scaling, "scale", plan.Scale)

	if plan.Resized {
		m = ResizeMark(m, plan.MarkSize)
		e.debug("mark resized", "size", plan.MarkSize)
	}
	for _, w := range plan.Warnings {
		e.debug("degenerate geometry", "detail", w)
	}

	if cfg.Opacity < 1 {
		m = applyOpacity(m, cfg.Opacity, e.lines())
		e.debug("opacity applied", "opacity", cfg.Opacity)
	}

	overlay := NewOverlay(plan.CanvasSize)
	for _, at := range plan.Placements {
		if err := ctx.Err(); err != nil {
			return nil, errs.Wrap(errs.CodeCancelled, err, "compositing cancelled")
		}
		stamp(overlay, m, at, e.lines())
	}
	e.debug("marks placed", "mode", cfg.Placement, "count", len(plan.Placements))

	out, err := composite(base, overlay, e.lines())
	if err != nil {
		return nil, err
	}

	return &Result{Plan: *plan, Image: out}, nil
}

// ToRaster returns img as a zero-origin NRGBA buffer with a tight stride.
// Images already in that form are returned as is; anything else is
// converted into a new buffer.
func ToRaster(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		return n
	}
	return imaging.Clone(img)
}

// Size returns the width and height of img.
func Size(img image.Image) image.Point {
	return img.Bounds().Size()
}
