package geom

// Segment is a trimmed edge: it starts on the source circle's boundary and ends
// on the target circle's boundary.
type Segment struct {
	Start Vec `json:"start"`
	End   Vec `json:"end"`
}

// Trim shortens the line between two centers so it starts rFrom along the unit
// vector from `from` to `to`, and ends rTo before `to`. ok is false when the
// centers coincide; callers skip drawing instead of producing NaN.
func Trim(from, to Vec, rFrom, rTo float64) (Segment, bool) {
	dir, ok := to.Sub(from).Unit()
	if !ok {
		return Segment{}, false
	}
	return Segment{
		Start: from.Add(dir.Scale(rFrom)),
		End:   to.Sub(dir.Scale(rTo)),
	}, true
}

// Path is an edge path: a quadratic curve from Start to End through Control.
// When Control lies on the segment the path renders as a straight line.
type Path struct {
	Start   Vec `json:"start"`
	Control Vec `json:"control"`
	End     Vec `json:"end"`
}

// Curve trims the edge between two circles and bends it by bend times its length,
// perpendicular to the line between centers. The trim always uses the straight
// line, not the curve tangent.
func Curve(from, to Vec, rFrom, rTo, bend float64) (Path, bool) {
	seg, ok := Trim(from, to, rFrom, rTo)
	if !ok {
		return Path{}, false
	}
	mid := seg.Start.Lerp(seg.End, 0.5)
	ctrl := mid
	if bend != 0 {
		dir, _ := seg.End.Sub(seg.Start).Unit()
		ctrl = mid.Add(dir.Perp().Scale(bend * seg.End.Dist(seg.Start)))
	}
	return Path{Start: seg.Start, Control: ctrl, End: seg.End}, true
}

// LerpPath interpolates every point of a toward b.
func LerpPath(a, b Path, t float64) Path {
	return Path{
		Start:   a.Start.Lerp(b.Start, t),
		Control: a.Control.Lerp(b.Control, t),
		End:     a.End.Lerp(b.End, t),
	}
}
