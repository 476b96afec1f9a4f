// Package viz is the per-instance visualization context. An Instance owns one
// graph, its camera, filter controller, animations and render document, and
// runs every callback on its anim.Loop. Builders for the individual
// visualizations live in the subpackages.
package viz

import (
	"fmt"
	"strings"

	"github.com/teranos/folio/am"
	"github.com/teranos/folio/filter"
	"github.com/teranos/folio/graph"
	"github.com/teranos/folio/layout"
	"github.com/teranos/folio/source"
)

// Builder turns a dataset into a positioned graph and its filter axes.
// Builders are pure: the same dataset and config always produce the same build.
type Builder interface {
	Name() string
	Build(ds source.Dataset, cfg *am.Config) (*Build, error)
}

// LayoutFunc re-runs a builder's placement. With visibleOnly set only visible
// nodes are placed.
type LayoutFunc func(g *graph.Graph, visibleOnly bool) layout.Result

// Build is a builder's output.
type Build struct {
	Title  string
	Graph  *graph.Graph
	Axes   []*filter.Axis
	Layout LayoutFunc
	// EdgeDriven filters through filter.Resolve instead of per-node visibility.
	EdgeDriven bool
	// Refine, when set, adjusts hidden flags after the filters were applied.
	Refine func(g *graph.Graph, active filter.Active)
	// Labels maps axis, then category, to a button label. Missing entries use the category.
	Labels map[string]map[string]string
	// Hint formats the filter hint; nil means "n of m visible".
	Hint func(visible, total int) string
}

func (b *Build) label(axis, category string) string {
	if l := b.Labels[axis][category]; l != "" {
		return l
	}
	return category
}

// Element id prefixes. Graph ids are free-form, so every element id carries a
// prefix naming its kind.
const (
	nodePrefix      = "n:"
	hubPrefix       = "h:"
	edgePrefix      = "e:"
	containerPrefix = "c:"
	labelPrefix     = "l:"
	buttonPrefix    = "b:"
	modePrefix      = "m:"
	HintID          = "hint"
	TitleID         = "title"
)

// NodeElementID is the document id of a node or hub element.
func NodeElementID(id string) string { return nodePrefix + id }

// HubElementID is the document id of a hub or center element.
func HubElementID(id string) string { return hubPrefix + id }

// EdgeElementID is the document id of an edge path.
func EdgeElementID(id string) string { return edgePrefix + id }

// ContainerElementID is the document id of a container box.
func ContainerElementID(id string) string { return containerPrefix + id }

// LabelElementID is the document id of a node's label.
func LabelElementID(id string) string { return labelPrefix + id }

// ButtonElementID is the document id of a filter button; category "" is the axis' "all" button.
func ButtonElementID(axis, category string) string {
	if category == "" {
		return buttonPrefix + axis + ":*"
	}
	return buttonPrefix + axis + ":" + category
}

// ModeElementID is the document id of a layout mode button.
func ModeElementID(m filter.LayoutMode) string { return modePrefix + string(m) }

// GraphID strips the element prefix from a node or hub element id.
func GraphID(elementID string) (string, bool) {
	for _, p := range []string{nodePrefix, hubPrefix} {
		if strings.HasPrefix(elementID, p) {
			return strings.TrimPrefix(elementID, p), true
		}
	}
	return "", false
}

func defaultHint(visible, total int) string {
	return fmt.Sprintf("%d of %d visible", visible, total)
}
