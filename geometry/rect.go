// Package geometry provides the rectangle math used to classify where a
// dragged token sits relative to the chart surface.
package geometry

import (
	"fmt"
	"math"
)

// Point is a 2D offset or coordinate in CSS pixels.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p translated by o
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns the vector from o to p
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%.1f,%.1f)", p.X, p.Y)
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Rect is an axis-aligned rectangle in client coordinates, stored by its
// edges the same way a DOM bounding box is reported.
type Rect struct {
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
}

// FromXYWH builds a Rect from its top-left corner and dimensions.
func FromXYWH(x, y, w, h float64) Rect {
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

func (r Rect) Size() Size {
	return Size{Width: r.Width(), Height: r.Height()}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.Left, Y: r.Top}
}

// Finite reports whether every edge is a finite number.
func (r Rect) Finite() bool {
	for _, v := range [...]float64{r.Left, r.Top, r.Right, r.Bottom} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Empty reports whether r has no area. Non-finite rectangles are empty.
func (r Rect) Empty() bool {
	return !r.Finite() || r.Right <= r.Left || r.Bottom <= r.Top
}

// Translate moves r by d.
func (r Rect) Translate(d Point) Rect {
	return Rect{Left: r.Left + d.X, Top: r.Top + d.Y, Right: r.Right + d.X, Bottom: r.Bottom + d.Y}
}

// Scale multiplies every edge by f, as a device pixel ratio would.
func (r Rect) Scale(f float64) Rect {
	return Rect{Left: r.Left * f, Top: r.Top * f, Right: r.Right * f, Bottom: r.Bottom * f}
}

// Intersects reports whether r and o overlap with a non-zero area.
func (r Rect) Intersects(o Rect) bool {
	return !r.Intersect(o).Empty()
}

// Intersect returns the overlapping region of r and o, which is empty when
// they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		Left:   math.Max(r.Left, o.Left),
		Top:    math.Max(r.Top, o.Top),
		Right:  math.Min(r.Right, o.Right),
		Bottom: math.Min(r.Bottom, o.Bottom),
	}
}

// ContainsPoint reports whether p lies inside r, edges included.
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

func (r Rect) String() string {
	return fmt.Sprintf("[%.1f,%.1f %.1fx%.1f]", r.Left, r.Top, r.Width(), r.Height())
}

// IsFullyContained reports whether inner lies strictly inside outer once the
// top verticalOffset pixels of outer (the staging tray) are excluded.
//
// Every comparison is strict: a rectangle flush with any boundary is not
// contained, which keeps sub-pixel rounding from producing false positives.
// Degenerate or non-finite rectangles are never contained.
func IsFullyContained(inner, outer Rect, verticalOffset float64) bool {
	if inner.Empty() || outer.Empty() || math.IsNaN(verticalOffset) || math.IsInf(verticalOffset, 0) {
		return false
	}
	return inner.Top > outer.Top+verticalOffset &&
		inner.Left > outer.Left &&
		inner.Right < outer.Right &&
		inner.Bottom < outer.Bottom
}
