// Package geometry holds the small value types shared by the canvas
// composer and the renderer: screen points, offsets, sizes and the
// scale+translate transform used to place document content on screen.
package geometry

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Point is a location in screen space.
type Point struct {
	X, Y float64
}

// Vector is an offset, such as a gesture translation or a pan.
type Vector struct {
	DX, DY float64
}

// Size describes the extent of a viewport or an image.
type Size struct {
	W, H float64
}

// Zero is the empty offset.
var Zero = Vector{}

// Add returns v+o.
func (v Vector) Add(o Vector) Vector { return Vector{v.DX + o.DX, v.DY + o.DY} }

// Sub returns v-o.
func (v Vector) Sub(o Vector) Vector { return Vector{v.DX - o.DX, v.DY - o.DY} }

// Scale multiplies both components by f.
func (v Vector) Scale(f float64) Vector { return Vector{v.DX * f, v.DY * f} }

// Div divides both components by f. A zero divisor leaves v unchanged.
func (v Vector) Div(f float64) Vector {
	if f == 0 {
		return v
	}
	return Vector{v.DX / f, v.DY / f}
}

// Add offsets p by v.
func (p Point) Add(v Vector) Point { return Point{p.X + v.DX, p.Y + v.DY} }

// Sub returns the offset from o to p.
func (p Point) Sub(o Point) Vector { return Vector{p.X - o.X, p.Y - o.Y} }

// Center returns the middle of a viewport of size s anchored at the origin.
func (s Size) Center() Point { return Point{s.W / 2, s.H / 2} }

// Empty reports whether either dimension is not positive.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// FitZoom returns the zoom that makes an image of size img fit entirely
// within viewport. It reports false when either size is empty.
func FitZoom(img, viewport Size) (float64, bool) {
	if img.Empty() || viewport.Empty() {
		return 0, false
	}
	return math.Min(viewport.W/img.W, viewport.H/img.H), true
}

// Truncate converts p to integer document coordinates, truncating toward
// zero.
func Truncate(p Point) (int, int) {
	return int(p.X), int(p.Y)
}

// Transform scales about the origin and then translates.
type Transform struct {
	Scale     float64
	Translate Vector
}

// Identity leaves points where they are.
func Identity() Transform { return Transform{Scale: 1} }

// Apply maps p through t.
func (t Transform) Apply(p Point) Point {
	return Point{p.X*t.Scale + t.Translate.DX, p.Y*t.Scale + t.Translate.DY}
}

// Aff3 returns t in the layout expected by golang.org/x/image/draw.
func (t Transform) Aff3() f64.Aff3 {
	return f64.Aff3{
		t.Scale, 0, t.Translate.DX,
		0, t.Scale, t.Translate.DY,
	}
}
