// Package geom holds the pure geometry used by every visualization: vectors,
// rectangles, radial placement, weight-to-size mapping, circle collision
// resolution and edge endpoint trimming. Nothing here touches a render surface.
package geom

import "math"

// eps is the tolerance below which lengths and overlaps count as zero.
const eps = 1e-9

// Vec is a 2D point or direction in world space (center-relative).
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vec{x, y}.
func V(x, y float64) Vec { return Vec{X: x, Y: y} }

func (v Vec) Add(o Vec) Vec       { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec       { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }
func (v Vec) Len() float64        { return math.Hypot(v.X, v.Y) }
func (v Vec) Dist(o Vec) float64  { return v.Sub(o).Len() }
func (v Vec) Perp() Vec           { return Vec{-v.Y, v.X} }
func (v Vec) Finite() bool        { return isFinite(v.X) && isFinite(v.Y) }
func (v Vec) Lerp(o Vec, t float64) Vec {
	return Vec{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Unit returns the unit vector of v. ok is false for zero-length vectors.
func (v Vec) Unit() (u Vec, ok bool) {
	l := v.Len()
	if l < eps || !isFinite(l) {
		return Vec{}, false
	}
	return Vec{v.X / l, v.Y / l}, true
}

// Polar converts an angle (radians, screen convention: +Y down) and distance to a point.
func Polar(angle, dist float64) Vec {
	return Vec{math.Cos(angle) * dist, math.Sin(angle) * dist}
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Clamp limits f to [lo, hi].
func Clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }
