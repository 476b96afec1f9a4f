package geom

import "math"

// SizeRange maps a weight attribute (duration, mana cost, ...) to a node size.
type SizeRange struct {
	Min float64
	Max float64
}

// Size returns Min + sqrt(norm)*(Max-Min) clamped to [Min, Max], where norm is
// weight normalized over [minW, maxW]. The square root compresses outliers so one
// very large weight does not dwarf the rest.
func (s SizeRange) Size(weight, minW, maxW float64) float64 {
	norm := Normalize(weight, minW, maxW)
	size := s.Min + math.Sqrt(norm)*(s.Max-s.Min)
	return Clamp(size, s.Min, s.Max)
}

// Normalize maps v from [lo, hi] to [0, 1]. A collapsed range maps to 0.
func Normalize(v, lo, hi float64) float64 {
	if !(hi-lo > eps) || !isFinite(v) {
		return 0
	}
	return Clamp((v-lo)/(hi-lo), 0, 1)
}

// Range returns the min and max of values. ok is false for an empty slice.
func Range(values []float64) (lo, hi float64, ok bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, true
}
