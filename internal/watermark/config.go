package watermark

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ironsheep/image-watermark/internal/errs"
)

// ScalingMode selects how the mark is sized relative to the canvas.
type ScalingMode string

const (
	// ScaleLinear sizes the mark so its width is a fraction of the canvas width.
	ScaleLinear ScalingMode = "LINEAR"
	// ScaleArea sizes the mark so its area is a fraction of the canvas area.
	ScaleArea ScalingMode = "AREA"
)

// PlacementMode selects between one mark and a repeating pattern.
type PlacementMode string

const (
	PlaceSingle PlacementMode = "SINGLE"
	PlaceTile   PlacementMode = "TILE"
)

// Anchor names a placement for SINGLE mode.
type Anchor string

const (
	UpperLeft  Anchor = "UPPER_LEFT"
	UpperRight Anchor = "UPPER_RIGHT"
	LowerLeft  Anchor = "LOWER_LEFT"
	LowerRight Anchor = "LOWER_RIGHT"
	Middle     Anchor = "MIDDLE"

	// Explicit marks a Position whose X and Y are used verbatim.
	Explicit Anchor = "EXPLICIT"
)

var namedAnchors = []Anchor{UpperLeft, UpperRight, LowerLeft, LowerRight, Middle}

// Position is either a named anchor or an explicit top-left offset.
//
// The zero value resolves to LowerRight. X and Y are only meaningful when
// Anchor is Explicit.
type Position struct {
	Anchor Anchor
	X, Y   int
}

// At returns an explicit position at (x, y).
func At(x, y int) Position {
	return Position{Anchor: Explicit, X: x, Y: y}
}

// IsExplicit reports whether p carries a coordinate pair.
func (p Position) IsExplicit() bool {
	return p.Anchor == Explicit
}

// String renders p in the form accepted by ParsePosition.
func (p Position) String() string {
	if p.IsExplicit() {
		return fmt.Sprintf("%d,%d", p.X, p.Y)
	}
	if p.Anchor == "" {
		return string(LowerRight)
	}
	return string(p.Anchor)
}

// MarshalText implements encoding.TextMarshaler.
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so positions can be read
// from TOML and JSON as plain strings.
func (p *Position) UnmarshalText(text []byte) error {
	pos, _, err := ParsePosition(string(text))
	if err != nil {
		return err
	}
	*p = pos
	return nil
}

// ParsePosition resolves a position argument once, at configuration time.
//
// Accepted forms:
//   - "" resolves to LowerRight.
//   - A named anchor, case-insensitive, with '-' or ' ' accepted for '_'
//     (e.g. "upper-left").
//   - A coordinate pair "x,y", optionally wrapped in parentheses or brackets
//     (e.g. "(10, 20)"). Both coordinates must be non-negative integers.
//
// Any other word resolves to LowerRight with known == false so the caller
// can warn about it. Text that looks like coordinates but is not a valid
// non-negative pair is a configuration error.
func ParsePosition(s string) (pos Position, known bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Position{Anchor: LowerRight}, true, nil
	}

	name := strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(s))
	for _, a := range namedAnchors {
		if name == string(a) {
			return Position{Anchor: a}, true, nil
		}
	}

	if !strings.ContainsAny(s, "0123456789,()[]") {
		return Position{Anchor: LowerRight}, false, nil
	}

	inner := strings.Trim(s, "()[] ")
	parts := strings.Split(inner, ",")
	if len(parts) != 2 {
		return Position{}, false, errs.New(errs.CodeInvalidConfig,
			"position %q must be a named anchor or an x,y pair", s)
	}

	x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errX != nil || errY != nil {
		return Position{}, false, errs.New(errs.CodeInvalidConfig,
			"position %q must contain integer coordinates", s)
	}
	if x < 0 || y < 0 {
		return Position{}, false, errs.New(errs.CodeInvalidConfig,
			"position coordinates must be non-negative, got (%d, %d)", x, y)
	}

	return At(x, y), true, nil
}

// ParseScalingMode parses a scaling mode name, case-insensitively.
func ParseScalingMode(s string) (ScalingMode, error) {
	m := ScalingMode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case ScaleLinear, ScaleArea:
		return m, nil
	}
	return "", errs.New(errs.CodeInvalidConfig, "scaling mode must be LINEAR or AREA, got %q", s)
}

// ParsePlacementMode parses a placement mode name, case-insensitively.
func ParsePlacementMode(s string) (PlacementMode, error) {
	m := PlacementMode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case PlaceSingle, PlaceTile:
		return m, nil
	}
	return "", errs.New(errs.CodeInvalidConfig, "placement mode must be SINGLE or TILE, got %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ScalingMode) UnmarshalText(text []byte) error {
	parsed, err := ParseScalingMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *PlacementMode) UnmarshalText(text []byte) error {
	parsed, err := ParsePlacementMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Config holds every parameter of a compositing operation.
//
// A Config is validated once with Validate before any image is decoded;
// downstream stages assume it is valid.
type Config struct {
	// Proportion is the target fraction of the canvas the mark occupies, in (0, 1].
	Proportion float64 `toml:"proportion" json:"proportion"`

	// Opacity multiplies the mark's alpha channel, in [0, 1].
	Opacity float64 `toml:"opacity" json:"opacity"`

	// Scaling selects LINEAR (width-relative) or AREA (area-relative) sizing.
	Scaling ScalingMode `toml:"scaling" json:"scaling"`

	// Placement selects SINGLE or TILE mode.
	Placement PlacementMode `toml:"placement" json:"placement"`

	// Margin is the distance in pixels from the anchored edges (SINGLE only).
	Margin int `toml:"margin" json:"margin"`

	// TilePadding is the gap in pixels between grid cells (TILE only).
	TilePadding int `toml:"tile_padding" json:"tile_padding"`

	// Position is the anchor or explicit offset (SINGLE only).
	Position Position `toml:"position" json:"position"`
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		Proportion:  0.1,
		Opacity:     0.5,
		Scaling:     ScaleLinear,
		Placement:   PlaceSingle,
		Margin:      20,
		TilePadding: 50,
		Position:    Position{Anchor: LowerRight},
	}
}

// Validate checks every field and returns the first violation as an
// errs.CodeInvalidConfig error.
func (c Config) Validate() error {
	if math.IsNaN(c.Proportion) || c.Proportion <= 0 || c.Proportion > 1 {
		return errs.New(errs.CodeInvalidConfig, "proportion must be in (0, 1], got %g", c.Proportion)
	}
	if math.IsNaN(c.Opacity) || c.Opacity < 0 || c.Opacity > 1 {
		return errs.New(errs.CodeInvalidConfig, "opacity must be in [0, 1], got %g", c.Opacity)
	}
	switch c.Scaling {
	case ScaleLinear, ScaleArea:
	default:
		return errs.New(errs.CodeInvalidConfig, "scaling mode must be LINEAR or AREA, got %q", c.Scaling)
	}
	switch c.Placement {
	case PlaceSingle, PlaceTile:
	default:
		return errs.New(errs.CodeInvalidConfig, "placement mode must be SINGLE or TILE, got %q", c.Placement)
	}
	if c.Margin < 0 {
		return errs.New(errs.CodeInvalidConfig, "margin must be non-negative, got %d", c.Margin)
	}
	if c.TilePadding < 0 {
		return errs.New(errs.CodeInvalidConfig, "tile padding must be non-negative, got %d", c.TilePadding)
	}
	if c.Position.IsExplicit() && (c.Position.X < 0 || c.Position.Y < 0) {
		return errs.New(errs.CodeInvalidConfig,
			"position coordinates must be non-negative, got (%d, %d)", c.Position.X, c.Position.Y)
	}
	return nil
}
