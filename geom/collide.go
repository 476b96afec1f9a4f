package geom

import "math"

// DefaultIterations is the pass budget for Resolve. It is empirical: graphs in the
// tens-of-nodes range look settled well before it runs out.
const DefaultIterations = 70

// Body is one circle taking part in collision resolution. Fixed bodies (the
// center, hubs) are anchors and never move.
type Body struct {
	Pos   Vec
	R     float64
	Fixed bool
}

// CollisionConfig controls Resolve.
type CollisionConfig struct {
	Iterations int     // pass budget; <= 0 means DefaultIterations
	Padding    float64 // extra clearance between circle boundaries
}

// CollisionResult reports how a Resolve run ended.
type CollisionResult struct {
	Passes      int  // passes executed
	Corrections int  // total corrections applied
	Converged   bool // a full pass produced zero corrections
}

// Resolve separates overlapping circles by positional relaxation. Each pass:
//
//  1. pushes every movable body directly away from every overlapping anchor by
//     the full overlap
//  2. splits the overlap of every overlapping movable pair, each moving half
//
// It stops after a pass with no corrections or when the budget is spent; there is
// no convergence guarantee. Identical input order and positions always produce
// identical output.
func Resolve(bodies []*Body, cfg CollisionConfig) CollisionResult {
	iterations := cfg.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	var anchors, movable []*Body
	var movableIdx []int
	for i, b := range bodies {
		if b == nil {
			continue
		}
		if b.Fixed {
			anchors = append(anchors, b)
		} else {
			movable = append(movable, b)
			movableIdx = append(movableIdx, i)
		}
	}

	var res CollisionResult
	for pass := 0; pass < iterations; pass++ {
		res.Passes++
		n := 0

		for mi, m := range movable {
			for _, a := range anchors {
				if push(m, a, cfg.Padding, movableIdx[mi], 1) {
					n++
				}
			}
		}

		for i := 0; i < len(movable); i++ {
			for j := i + 1; j < len(movable); j++ {
				if split(movable[i], movable[j], cfg.Padding, movableIdx[i]) {
					n++
				}
			}
		}

		res.Corrections += n
		if n == 0 {
			res.Converged = true
			break
		}
	}
	return res
}

// push moves m away from a by the whole overlap. share scales the move.
func push(m, a *Body, pad float64, seed int, share float64) bool {
	dir, overlap, ok := overlapOf(m, a, pad, seed)
	if !ok {
		return false
	}
	m.Pos = m.Pos.Add(dir.Scale(overlap * share))
	return true
}

// split moves a and b apart, half the overlap each.
func split(a, b *Body, pad float64, seed int) bool {
	dir, overlap, ok := overlapOf(a, b, pad, seed)
	if !ok {
		return false
	}
	half := overlap / 2
	a.Pos = a.Pos.Add(dir.Scale(half))
	b.Pos = b.Pos.Sub(dir.Scale(half))
	return true
}

// overlapOf returns the unit direction from b to a and the overlap amount, or
// ok=false when they do not overlap. Coincident centers get a direction derived
// from seed (golden-angle spiral) so the result stays deterministic and finite.
func overlapOf(a, b *Body, pad float64, seed int) (Vec, float64, bool) {
	minDist := a.R + b.R + pad
	delta := a.Pos.Sub(b.Pos)
	d := delta.Len()
	overlap := minDist - d
	if overlap <= eps {
		return Vec{}, 0, false
	}
	dir, ok := delta.Unit()
	if !ok {
		dir = Polar(float64(seed)*goldenAngle, 1)
	}
	return dir, overlap + slack, true
}

var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// slack is added to every correction so resolved contacts sit just outside the
// overlap tolerance instead of re-triggering on rounding error.
const slack = 1e-7

// Overlaps counts pairs among circles closer than their radii plus pad minus tol.
func Overlaps(circles []Circle, pad, tol float64) int {
	n := 0
	for i := 0; i < len(circles); i++ {
		for j := i + 1; j < len(circles); j++ {
			if circles[i].C.Dist(circles[j].C) < circles[i].R+circles[j].R+pad-tol {
				n++
			}
		}
	}
	return n
}
