package filter

// Classification maps an axis key to the categories a node belongs to on that axis.
type Classification map[string][]string

// Clone returns a deep copy.
func (c Classification) Clone() Classification {
	if c == nil {
		return nil
	}
	out := make(Classification, len(c))
	for k, v := range c {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Active is a snapshot of the active categories per axis.
type Active map[string]map[string]struct{}

// NewActive builds a snapshot from explicit lists, mostly for tests and
// one-shot exports.
func NewActive(sets map[string][]string) Active {
	out := make(Active, len(sets))
	for axis, cats := range sets {
		s := make(map[string]struct{}, len(cats))
		for _, c := range cats {
			s[c] = struct{}{}
		}
		out[axis] = s
	}
	return out
}

// IsNodeVisible requires, for every axis present in the node's classification
// and known to active, that the node's categories intersect the active set.
// Axes are ANDed; categories within an axis are ORed. An axis with an empty
// category list counts as absent.
func IsNodeVisible(c Classification, active Active) bool {
	for axis, cats := range c {
		if len(cats) == 0 {
			continue
		}
		set, ok := active[axis]
		if !ok {
			continue
		}
		hit := false
		for _, cat := range cats {
			if _, ok := set[cat]; ok {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}
