package anim

import (
	"math"

	"github.com/teranos/folio/geom"
)

// Easing maps raw progress in [0,1] to eased progress. Overshooting curves may
// leave [0,1] in between but always return exactly 0 and 1 at the ends.
type Easing = geom.Easing

// EaseOutQuint decelerates hard into the target; used for camera fits.
func EaseOutQuint(t float64) float64 {
	if t >= 1 {
		return 1
	}
	if t <= 0 {
		return 0
	}
	return 1 - math.Pow(1-t, 5)
}

// EaseInOutCubic is the edge fade curve.
func EaseInOutCubic(t float64) float64 {
	if t >= 1 {
		return 1
	}
	if t <= 0 {
		return 0
	}
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// Spring is cubic-bezier(0.34, 1.56, 0.64, 1): overshoot and settle.
var Spring = CubicBezier(0.34, 1.56, 0.64, 1)

// CubicBezier returns the CSS cubic-bezier timing function with control points
// (x1, y1) and (x2, y2).
func CubicBezier(x1, y1, x2, y2 float64) Easing {
	cx := 3 * x1
	bx := 3*(x2-x1) - cx
	ax := 1 - cx - bx
	cy := 3 * y1
	by := 3*(y2-y1) - cy
	ay := 1 - cy - by

	sampleX := func(t float64) float64 { return ((ax*t+bx)*t + cx) * t }
	sampleY := func(t float64) float64 { return ((ay*t+by)*t + cy) * t }
	slopeX := func(t float64) float64 { return (3*ax*t+2*bx)*t + cx }

	solve := func(x float64) float64 {
		t := x
		for i := 0; i < 8; i++ {
			err := sampleX(t) - x
			if math.Abs(err) < 1e-7 {
				return t
			}
			d := slopeX(t)
			if math.Abs(d) < 1e-6 {
				break
			}
			t -= err / d
		}
		lo, hi := 0.0, 1.0
		t = x
		for i := 0; i < 40 && lo < hi; i++ {
			v := sampleX(t)
			if math.Abs(v-x) < 1e-7 {
				return t
			}
			if x > v {
				lo = t
			} else {
				hi = t
			}
			t = (lo + hi) / 2
		}
		return t
	}

	return func(x float64) float64 {
		if x <= 0 {
			return 0
		}
		if x >= 1 {
			return 1
		}
		return sampleY(solve(x))
	}
}
