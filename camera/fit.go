package camera

import "github.com/teranos/folio/geom"

// FitTarget computes the transform that frames world inside a vw x vh viewport
// with pad pixels of margin on every side:
//
//	scale = min((vw-2*pad)/w, (vh-2*pad)/h), clamped to [minScale, maxScale]
//
// and the translation that puts the rectangle's center at the viewport center.
// ok is false for a degenerate rectangle or a viewport with no room left after
// padding; the camera must not move in that case.
func FitTarget(world geom.Rect, vw, vh, pad, minScale, maxScale float64) (Transform, bool) {
	if world.Degenerate() {
		return Transform{}, false
	}
	availW, availH := vw-2*pad, vh-2*pad
	if availW <= 0 || availH <= 0 {
		return Transform{}, false
	}
	scale := availW / world.W
	if sy := availH / world.H; sy < scale {
		scale = sy
	}
	scale = geom.Clamp(scale, minScale, maxScale)

	c := world.Center()
	return Transform{
		X:     vw/2 - c.X*scale,
		Y:     vh/2 - c.Y*scale,
		Scale: scale,
	}, true
}
