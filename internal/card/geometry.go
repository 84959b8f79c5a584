package card

import "math"

// Size is a width/height pair. Live photo state stores its pan offset in this
// shape because gesture translations arrive as width/height deltas.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is an x/y pair. Archives store photo offsets in this shape, and
// decoration items are positioned with it.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// OffsetToPoint converts a live width/height offset to the archive x/y shape.
// The conversion is a relabeling: Width becomes X and Height becomes Y.
func OffsetToPoint(offset Size) Point {
	return Point{X: offset.Width, Y: offset.Height}
}

// PointToOffset converts an archived x/y offset back to the live width/height shape.
func PointToOffset(p Point) Size {
	return Size{Width: p.X, Height: p.Y}
}

// CoverScale returns the minimum scale at which an image of size img fully
// covers a box of size box: max(box.Width/img.Width, box.Height/img.Height).
// Degenerate image sizes yield 0.
func CoverScale(img, box Size) float64 {
	if img.Width <= 0 || img.Height <= 0 {
		return 0
	}
	return math.Max(box.Width/img.Width, box.Height/img.Height)
}

// Angle is a rotation stored in radians.
type Angle float64

// Degrees builds an Angle from degrees.
func Degrees(d float64) Angle {
	return Angle(d * math.Pi / 180)
}

// Radians returns the angle in radians.
func (a Angle) Radians() float64 { return float64(a) }

// Degrees returns the angle in degrees.
func (a Angle) Degrees() float64 { return float64(a) * 180 / math.Pi }

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

var (
	Black = Color{A: 1}
	White = Color{R: 1, G: 1, B: 1, A: 1}
)

// RGBA implements color.Color so a Color can be handed straight to a renderer.
func (c Color) RGBA() (r, g, b, a uint32) {
	clamp := func(v float64) float64 { return math.Max(0, math.Min(1, v)) }
	alpha := clamp(c.A)
	r = uint32(clamp(c.R) * alpha * 0xffff)
	g = uint32(clamp(c.G) * alpha * 0xffff)
	b = uint32(clamp(c.B) * alpha * 0xffff)
	a = uint32(alpha * 0xffff)
	return r, g, b, a
}
