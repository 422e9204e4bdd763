package watermark

import (
	"image"
	"iter"
)

// Grid describes the checkerboard layout used in TILE mode.
//
// Cells are StepX by StepY pixels. Rows start at y = r·StepY and columns at
// x = c·StepX, for as long as the cell origin lies inside the canvas. Cell
// (r, c) receives a mark when r+c is even; odd cells stay transparent.
type Grid struct {
	Canvas image.Point
	StepX  int
	StepY  int
}

// NewGrid builds the layout for a mark of the given size with padding
// pixels between neighbouring cells.
func NewGrid(canvas, mark image.Point, padding int) Grid {
	return Grid{
		Canvas: canvas,
		StepX:  mark.X + padding,
		StepY:  mark.Y + padding,
	}
}

// Degenerate reports whether the grid has a non-positive step and therefore
// emits no cells.
func (g Grid) Degenerate() bool {
	return g.StepX <= 0 || g.StepY <= 0
}

// Rows returns the number of grid rows, filled or not.
func (g Grid) Rows() int {
	if g.Degenerate() || g.Canvas.Y <= 0 {
		return 0
	}
	return (g.Canvas.Y + g.StepY - 1) / g.StepY
}

// Cols returns the number of grid columns, filled or not.
func (g Grid) Cols() int {
	if g.Degenerate() || g.Canvas.X <= 0 {
		return 0
	}
	return (g.Canvas.X + g.StepX - 1) / g.StepX
}

// Filled reports whether cell (r, c) receives a mark.
func (g Grid) Filled(r, c int) bool {
	return (r+c)%2 == 0
}

// Cell returns the top-left pixel of cell (r, c).
func (g Grid) Cell(r, c int) image.Point {
	return image.Pt(c*g.StepX, r*g.StepY)
}

// Offsets yields the stamp offsets of the filled cells in row-major order.
// The sequence is finite and can be ranged over any number of times.
func (g Grid) Offsets() iter.Seq[image.Point] {
	return func(yield func(image.Point) bool) {
		rows, cols := g.Rows(), g.Cols()
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				if !g.Filled(r, c) {
					continue
				}
				if !yield(g.Cell(r, c)) {
					return
				}
			}
		}
	}
}

// Count returns the number of filled cells.
func (g Grid) Count() int {
	rows, cols := g.Rows(), g.Cols()
	// even-sum cells of a rows×cols board
	return (rows*cols + 1) / 2
}
