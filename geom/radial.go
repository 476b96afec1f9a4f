package geom

import "math"

// Easing maps normalized progress in [0,1] to [0,1].
type Easing func(float64) float64

// Sqrt is the default distance easing for radial placement; it spreads early
// items away from the center.
func Sqrt(t float64) float64 { return math.Sqrt(Clamp(t, 0, 1)) }

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// RadialConfig shapes polar placement around the center.
type RadialConfig struct {
	MinDist     float64 // distance of the earliest item
	MaxDist     float64 // distance of the latest item
	SpreadAngle float64 // angular width of a sector, radians
	JitterDist  float64 // max distance perturbation, world units
	JitterAngle float64 // max angle perturbation, radians
	Ease        Easing  // nil means Sqrt
}

// Sector is an angular region around the center owned by one category.
type Sector struct {
	Key       string
	BaseAngle float64 // radians, screen convention
}

// SectorFromDirection builds a sector pointing along (dx, dy), e.g. a quadrant
// direction vector such as (1, -1) for top-right.
func SectorFromDirection(key string, dx, dy float64) Sector {
	return Sector{Key: key, BaseAngle: math.Atan2(dy, dx)}
}

// Placement is the polar result for one item.
type Placement struct {
	Pos   Vec
	Angle float64
	Dist  float64
}

// Place computes one item's position.
//
//	distance = MinDist + f(normPos)*(MaxDist-MinDist)
//	angle    = base + SpreadAngle*(normRank-0.5)
//
// rank seeds the jitter together with the sector base angle, so the same item in
// the same sector always lands on the same spot.
func (c RadialConfig) Place(normPos, normRank float64, rank int, base float64) Placement {
	ease := c.Ease
	if ease == nil {
		ease = Sqrt
	}
	dist := c.MinDist + ease(Clamp(normPos, 0, 1))*(c.MaxDist-c.MinDist)
	angle := base + c.SpreadAngle*(Clamp(normRank, 0, 1)-0.5)

	dist += Jitter(rank, base, 0) * c.JitterDist
	angle += Jitter(rank, base, 1) * c.JitterAngle

	return Placement{Pos: Polar(angle, dist), Angle: angle, Dist: dist}
}

// Jitter is a deterministic pseudo-noise value in [-1, 1] derived from a rank and
// base angle. salt separates independent channels (distance vs angle).
func Jitter(rank int, base float64, salt float64) float64 {
	s := math.Sin(float64(rank)*12.9898+base*78.233+salt*37.719) * 43758.5453
	frac := s - math.Floor(s)
	return frac*2 - 1
}

// RankNorm spreads rank i of n evenly over [0, 1]. A single item sits at 0.5.
func RankNorm(i, n int) float64 {
	if n <= 1 {
		return 0.5
	}
	return float64(i) / float64(n-1)
}
