// Package knowledge builds the knowledge graph: life and work events placed
// around an identity center, one sector per theme, distance by time and size
// by duration, with themed threads linking events that share an overlay.
package knowledge

import (
	"sort"
	"strings"

	"github.com/teranos/folio/am"
	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/filter"
	"github.com/teranos/folio/geom"
	"github.com/teranos/folio/graph"
	"github.com/teranos/folio/layout"
	"github.com/teranos/folio/source"
	"github.com/teranos/folio/viz"
)

// Axis is the single filter axis; its categories are split into the quadrant
// and overlay groups.
const Axis = "theme"

// Filter groups on the theme axis.
const (
	GroupQuadrant = "quadrant"
	GroupOverlay  = "overlay"
)

// OverlayTag is the record tag listing a record's overlays.
const OverlayTag = "overlay"

// CenterID is the id of the identity center.
const CenterID = "center"

// quadrant directions in screen space, clockwise from top-right
var quadrants = [][2]float64{{1, -1}, {1, 1}, {-1, 1}, {-1, -1}}

var threadPalette = []string{"#e0a84b", "#6fb3d2", "#c774c7", "#7cc47f", "#e0716b", "#a1a6ff"}

// Builder builds knowledge graphs.
type Builder struct {
	// CenterLabel names the identity center; empty uses the dataset name.
	CenterLabel string
	// ThreadBend bends thread curves; 0 means 0.18.
	ThreadBend float64
}

// Name implements viz.Builder.
func (Builder) Name() string { return "knowledge" }

// Build implements viz.Builder.
func (b Builder) Build(ds source.Dataset, cfg *am.Config) (*viz.Build, error) {
	if len(ds.Records) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "knowledge graph needs at least one record")
	}
	g := graph.New()

	label := b.CenterLabel
	if label == "" {
		label = ds.Name
	}
	center, err := graph.NewHub(graph.Hub{ID: CenterID, Label: label, R: graph.DefaultCenterRadius})
	if err != nil {
		return nil, err
	}
	if err := g.SetCenter(center); err != nil {
		return nil, err
	}

	var themes, overlays []string
	seenTheme := make(map[string]bool)
	seenOverlay := make(map[string]bool)
	for _, r := range ds.Records {
		theme := r.Category
		if theme == "" {
			theme = "other"
		}
		if !seenTheme[theme] {
			seenTheme[theme] = true
			themes = append(themes, theme)
		}
		for _, o := range r.Tags[OverlayTag] {
			if !seenOverlay[o] {
				seenOverlay[o] = true
				overlays = append(overlays, o)
			}
		}
	}
	for _, o := range overlays {
		if seenTheme[o] {
			return nil, errors.Newf("%q is both a theme and an overlay", o)
		}
	}

	for idx, r := range ds.Records {
		theme := r.Category
		if theme == "" {
			theme = "other"
		}
		n, err := graph.NewNode(graph.Node{
			ID:      r.ID,
			Label:   r.Label(),
			Whisper: r.Whisper,
			Icon:    r.Icon,
			Classes: filter.Classification{Axis: append([]string{theme}, r.Tags[OverlayTag]...)},
			Sector:  theme,
			Weight:  weightOf(r),
			Order:   orderOf(r, idx),
			Meta:    r.Meta,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", idx)
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
		if _, err := g.Connect(graph.EdgeStructural, CenterID, n.ID, graph.Style{Width: 1}); err != nil {
			return nil, err
		}
	}

	bend := b.ThreadBend
	if bend == 0 {
		bend = 0.18
	}
	if err := connectThreads(g, overlays, bend); err != nil {
		return nil, err
	}

	groups := map[string][]string{GroupQuadrant: themes}
	if len(overlays) > 0 {
		groups[GroupOverlay] = overlays
	}
	axis, err := filter.NewAxis(Axis, append(append([]string(nil), themes...), overlays...), filter.WithGroups(groups))
	if err != nil {
		return nil, err
	}

	rc := cfg.Radial()
	rc.Sectors = sectors(themes)
	run := func(g *graph.Graph, visibleOnly bool) layout.Result { return layout.Radial(g, rc, visibleOnly) }
	run(g, false)
	g.Meta.Config["sectors"] = strings.Join(themes, ",")
	g.Finalize()

	return &viz.Build{
		Title:  label,
		Graph:  g,
		Axes:   []*filter.Axis{axis},
		Layout: run,
		Refine: refine,
	}, nil
}

// weightOf is the explicit weight, else the duration in months, else 1.
func weightOf(r source.Record) float64 {
	if r.Weight > 0 {
		return r.Weight
	}
	if m := r.Months(); m > 0 {
		return m
	}
	return 1
}

// orderOf is the start date in fractional years, else the record index.
func orderOf(r source.Record, idx int) float64 {
	if t, ok := r.StartTime(); ok {
		return float64(t.Year()) + float64(t.YearDay()-1)/366
	}
	return float64(idx)
}

// sectors aims up to four themes at the screen quadrants; more themes are
// spread evenly by the layout.
func sectors(themes []string) []geom.Sector {
	if len(themes) > len(quadrants) {
		return nil
	}
	out := make([]geom.Sector, len(themes))
	for i, t := range themes {
		out[i] = geom.SectorFromDirection(t, quadrants[i][0], quadrants[i][1])
	}
	return out
}

// connectThreads links the members of each overlay in time order.
func connectThreads(g *graph.Graph, overlays []string, bend float64) error {
	for k, o := range overlays {
		var members []*graph.Node
		for _, n := range g.Nodes {
			if contains(n.Classes[Axis][1:], o) {
				members = append(members, n)
			}
		}
		sort.SliceStable(members, func(i, j int) bool { return members[i].Order < members[j].Order })
		style := graph.Style{
			Color:  threadPalette[k%len(threadPalette)],
			Width:  2,
			Dashed: true,
			Bend:   bend,
			Label:  o,
		}
		for i := 1; i < len(members); i++ {
			if _, err := g.Connect(graph.EdgeThread, members[i-1].ID, members[i].ID, style); err != nil {
				return err
			}
		}
	}
	return nil
}

// refine narrows the theme axis filter: a node needs its theme active and,
// when it carries overlays, at least one active overlay. Threads whose
// overlay is switched off are hidden even when both ends stay visible.
func refine(g *graph.Graph, active filter.Active) {
	set, ok := active[Axis]
	if !ok {
		return
	}
	for _, n := range g.Nodes {
		if n.Hidden {
			continue
		}
		if !matches(n.Classes[Axis], set) {
			n.Hidden = true
		}
	}
	for _, e := range g.Edges {
		if e.Hidden {
			continue
		}
		if !e.From.Visible() || !e.To.Visible() {
			e.Hidden = true
			continue
		}
		if e.Kind != graph.EdgeThread {
			continue
		}
		if _, on := set[e.Style.Label]; !on {
			e.Hidden = true
		}
	}
}

// matches reports whether a theme-first class list passes the active set.
func matches(classes []string, set map[string]struct{}) bool {
	if len(classes) == 0 {
		return true
	}
	if _, on := set[classes[0]]; !on {
		return false
	}
	if len(classes) == 1 {
		return true
	}
	for _, o := range classes[1:] {
		if _, on := set[o]; on {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
