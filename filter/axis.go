// Package filter tracks active category sets per filter axis and derives node,
// edge and container visibility from them.
package filter

import (
	"github.com/teranos/folio/errors"
)

// Mode selects how a click on a category changes an axis.
type Mode int

const (
	// MultiToggle: clicking a category while all are active solos it, clicking
	// the last active category restores all, anything else toggles membership.
	MultiToggle Mode = iota
	// GroupedSolo applies the MultiToggle rules within the clicked category's
	// group only; other groups keep their active set.
	GroupedSolo
)

func (m Mode) String() string {
	switch m {
	case MultiToggle:
		return "multi"
	case GroupedSolo:
		return "grouped"
	default:
		return "unknown"
	}
}

// Axis is one filter dimension: an ordered allowed set and an active subset.
// The active set is always a non-empty subset of the allowed set (per group in
// GroupedSolo mode).
type Axis struct {
	key     string
	mode    Mode
	allowed []string
	index   map[string]int
	group   map[string]string
	active  map[string]bool
}

// AxisOption configures an Axis.
type AxisOption func(*Axis) error

// WithGroups partitions categories into named groups and switches the axis
// to GroupedSolo. Categories not listed form an implicit unnamed group.
func WithGroups(groups map[string][]string) AxisOption {
	return func(a *Axis) error {
		for name, cats := range groups {
			for _, c := range cats {
				if _, ok := a.index[c]; !ok {
					return errors.Wrapf(errors.ErrUnknownCategory, "group %q lists %q", name, c)
				}
				if prev, dup := a.group[c]; dup && prev != name {
					return errors.Newf("category %q is in groups %q and %q", c, prev, name)
				}
				a.group[c] = name
			}
		}
		a.mode = GroupedSolo
		return nil
	}
}

// NewAxis creates an axis with every category active.
func NewAxis(key string, categories []string, opts ...AxisOption) (*Axis, error) {
	if key == "" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "axis key is required")
	}
	if len(categories) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "axis %q has no categories", key)
	}
	a := &Axis{
		key:    key,
		index:  make(map[string]int, len(categories)),
		group:  make(map[string]string),
		active: make(map[string]bool, len(categories)),
	}
	for _, c := range categories {
		if c == "" {
			return nil, errors.Wrapf(errors.ErrInvalidRequest, "axis %q has an empty category", key)
		}
		if _, dup := a.index[c]; dup {
			return nil, errors.Wrapf(errors.ErrInvalidRequest, "axis %q lists %q twice", key, c)
		}
		a.index[c] = len(a.allowed)
		a.allowed = append(a.allowed, c)
		a.active[c] = true
	}
	for _, o := range opts {
		if err := o(a); err != nil {
			return nil, errors.Wrapf(err, "axis %q", key)
		}
	}
	return a, nil
}

// Key returns the axis key.
func (a *Axis) Key() string { return a.key }

// Mode returns the toggle mode.
func (a *Axis) Mode() Mode { return a.mode }

// Allowed returns the categories in declaration order.
func (a *Axis) Allowed() []string { return append([]string(nil), a.allowed...) }

// Active returns the active categories in declaration order.
func (a *Axis) Active() []string {
	out := make([]string, 0, len(a.active))
	for _, c := range a.allowed {
		if a.active[c] {
			out = append(out, c)
		}
	}
	return out
}

// IsActive reports whether category is active.
func (a *Axis) IsActive(category string) bool { return a.active[category] }

// AllActive reports whether every allowed category is active.
func (a *Axis) AllActive() bool { return len(a.active) == len(a.allowed) }

// Group returns the group a category belongs to ("" for ungrouped).
func (a *Axis) Group(category string) string { return a.group[category] }

// Toggle applies one click on category.
func (a *Axis) Toggle(category string) error {
	if _, ok := a.index[category]; !ok {
		return errors.Wrapf(errors.ErrUnknownCategory, "axis %q: %q", a.key, category)
	}
	members := a.allowed
	if a.mode == GroupedSolo {
		members = a.members(a.group[category])
	}

	activeInScope := 0
	for _, c := range members {
		if a.active[c] {
			activeInScope++
		}
	}

	switch {
	case activeInScope == len(members):
		for _, c := range members {
			if c != category {
				delete(a.active, c)
			}
		}
	case a.active[category] && activeInScope == 1:
		for _, c := range members {
			a.active[c] = true
		}
	case a.active[category]:
		delete(a.active, category)
	default:
		a.active[category] = true
	}
	return nil
}

// SelectAll activates every category.
func (a *Axis) SelectAll() {
	for _, c := range a.allowed {
		a.active[c] = true
	}
}

// Set replaces the active set. Unknown categories fail; an empty list is
// treated as SelectAll, and in GroupedSolo mode a group left empty is restored.
func (a *Axis) Set(categories []string) error {
	next := make(map[string]bool, len(categories))
	for _, c := range categories {
		if _, ok := a.index[c]; !ok {
			return errors.Wrapf(errors.ErrUnknownCategory, "axis %q: %q", a.key, c)
		}
		next[c] = true
	}
	if len(next) == 0 {
		a.SelectAll()
		return nil
	}
	if a.mode == GroupedSolo {
		for _, g := range a.groups() {
			members := a.members(g)
			empty := true
			for _, c := range members {
				if next[c] {
					empty = false
					break
				}
			}
			if empty {
				for _, c := range members {
					next[c] = true
				}
			}
		}
	}
	a.active = next
	return nil
}

func (a *Axis) members(group string) []string {
	var out []string
	for _, c := range a.allowed {
		if a.group[c] == group {
			out = append(out, c)
		}
	}
	return out
}

func (a *Axis) groups() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range a.allowed {
		g := a.group[c]
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	return out
}

func (a *Axis) activeSet() map[string]struct{} {
	out := make(map[string]struct{}, len(a.active))
	for c := range a.active {
		out[c] = struct{}{}
	}
	return out
}
