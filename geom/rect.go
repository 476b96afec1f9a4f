package geom

import "math"

// Rect is an axis-aligned world-space rectangle with its origin at the top-left.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the midpoint of r.
func (r Rect) Center() Vec { return Vec{r.X + r.W/2, r.Y + r.H/2} }

// Degenerate reports whether r has zero (or negative, or non-finite) area.
// A degenerate rectangle cannot be fitted by a camera.
func (r Rect) Degenerate() bool {
	return !(r.W > eps && r.H > eps) || !isFinite(r.X) || !isFinite(r.Y) || !isFinite(r.W) || !isFinite(r.H)
}

// Expand grows r by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{r.X - pad, r.Y - pad, r.W + 2*pad, r.H + 2*pad}
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Vec) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Circle is a positioned radius.
type Circle struct {
	C Vec     `json:"c"`
	R float64 `json:"r"`
}

// Bounds returns the circle's bounding rectangle.
func (c Circle) Bounds() Rect {
	return Rect{c.C.X - c.R, c.C.Y - c.R, 2 * c.R, 2 * c.R}
}

// BoundsOf returns the bounding rectangle of all circles. ok is false when
// there are none.
func BoundsOf(circles []Circle) (Rect, bool) {
	if len(circles) == 0 {
		return Rect{}, false
	}
	r := circles[0].Bounds()
	for _, c := range circles[1:] {
		r = r.Union(c.Bounds())
	}
	return r, true
}
