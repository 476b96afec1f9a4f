// Package camera owns the pan/zoom transform of one visualization instance.
//
// The Transform is shared by pointer with every consumer and mutated in place, so
// closures holding it always see the live camera. Only the Controller writes it,
// and only from loop callbacks.
package camera

import (
	"fmt"
	"math"

	"github.com/teranos/folio/geom"
)

// Transform maps world space to screen space: screen = world*Scale + (X, Y).
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Identity returns the unit transform.
func Identity() *Transform { return &Transform{Scale: 1} }

// ToScreen maps a world point to screen space.
func (t Transform) ToScreen(p geom.Vec) geom.Vec {
	return geom.V(p.X*t.Scale+t.X, p.Y*t.Scale+t.Y)
}

// ToWorld maps a screen point to world space.
func (t Transform) ToWorld(p geom.Vec) geom.Vec {
	if t.Scale == 0 {
		return geom.Vec{}
	}
	return geom.V((p.X-t.X)/t.Scale, (p.Y-t.Y)/t.Scale)
}

// CSS renders the transform the way the world container applies it.
func (t Transform) CSS() string {
	return fmt.Sprintf("translate(%.2fpx, %.2fpx) scale(%.4f)", t.X, t.Y, t.Scale)
}

// Bounds limits the transform's translation, in transform space.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

// Clamp returns x, y limited to b. An inverted range (content smaller than the
// viewport) pins to its midpoint.
func (b Bounds) Clamp(x, y float64) (float64, float64) {
	return clampAxis(x, b.MinX, b.MaxX), clampAxis(y, b.MinY, b.MaxY)
}

func clampAxis(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return geom.Clamp(v, lo, hi)
}

// ContentBounds derives pan bounds that keep at least margin screen pixels of the
// world rectangle inside a vw x vh viewport at the given scale.
func ContentBounds(world geom.Rect, scale, vw, vh, margin float64) Bounds {
	w, h := world.W*scale, world.H*scale
	left, top := world.X*scale, world.Y*scale
	return Bounds{
		MinX: margin - left - w,
		MaxX: vw - margin - left,
		MinY: margin - top - h,
		MaxY: vh - margin - top,
	}
}

// Damp applies rubber-band resistance to an excursion of `over` past a bound:
// limit * (1 - e^(-over/limit)). It approaches limit asymptotically.
func Damp(over, limit float64) float64 {
	if limit <= 0 || over <= 0 {
		return 0
	}
	return limit * (1 - math.Exp(-over/limit))
}

// rubber applies Damp on whichever side v exceeds [lo, hi].
func rubber(v, lo, hi, limit float64) float64 {
	if lo > hi {
		mid := (lo + hi) / 2
		lo, hi = mid, mid
	}
	switch {
	case v > hi:
		return hi + Damp(v-hi, limit)
	case v < lo:
		return lo - Damp(lo-v, limit)
	default:
		return v
	}
}
