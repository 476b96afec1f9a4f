// Package skilltree builds the card skill tree: one hub per deck on a ring
// around the identity center, with each deck's cards fanned out behind its
// hub ordered by mana cost.
package skilltree

import (
	"math"
	"sort"

	"github.com/teranos/folio/am"
	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/filter"
	"github.com/teranos/folio/geom"
	"github.com/teranos/folio/graph"
	"github.com/teranos/folio/layout"
	"github.com/teranos/folio/logger"
	"github.com/teranos/folio/source"
	"github.com/teranos/folio/viz"
)

// Filter axes, read from record tags of the same name.
const (
	TypeAxis  = "type"
	ColorAxis = "color"
)

// CenterID is the id of the identity center.
const CenterID = "center"

// HubRadius is the radius of every deck hub.
const HubRadius = 40

// HubID is the hub id of a deck.
func HubID(deck string) string { return "deck:" + graph.NormalizeID(deck) }

var colorNames = map[string]string{
	"W": "White",
	"U": "Blue",
	"B": "Black",
	"R": "Red",
	"G": "Green",
	"C": "Colorless",
}

// Builder builds skill trees.
type Builder struct {
	// CenterLabel names the identity center; empty uses the dataset name.
	CenterLabel string
}

// Name implements viz.Builder.
func (Builder) Name() string { return "skilltree" }

// Build implements viz.Builder.
func (b Builder) Build(ds source.Dataset, cfg *am.Config) (*viz.Build, error) {
	if len(ds.Records) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "skill tree needs at least one card")
	}
	log := logger.ComponentLogger("viz.skilltree")
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

	var decks []string
	seen := make(map[string]bool)
	for _, r := range ds.Records {
		d := deckOf(r)
		if !seen[d] {
			seen[d] = true
			decks = append(decks, d)
		}
	}

	rc := cfg.Radial()
	ring := rc.Placement.MinDist
	// cards start outside the hub ring
	rc.Placement.MinDist = ring + HubRadius + rc.Size.Min
	if rc.Placement.MaxDist < rc.Placement.MinDist {
		rc.Placement.MaxDist = rc.Placement.MinDist
	}
	// keep neighbouring decks out of each other's fan
	if spread := 2 * math.Pi / float64(len(decks)) * 0.8; spread < rc.Placement.SpreadAngle {
		rc.Placement.SpreadAngle = spread
	}

	for i, d := range decks {
		angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(len(decks))
		rc.Sectors = append(rc.Sectors, geom.Sector{Key: d, BaseAngle: angle})
		hub, err := graph.NewHub(graph.Hub{ID: HubID(d), Label: d, Pos: geom.Polar(angle, ring), R: HubRadius})
		if err != nil {
			return nil, err
		}
		if err := g.AddHub(hub); err != nil {
			return nil, errors.Wrapf(err, "deck %q", d)
		}
		if _, err := g.Connect(graph.EdgeStructural, CenterID, hub.ID, graph.Style{Width: 2}); err != nil {
			return nil, err
		}
	}

	types := newCollector()
	colors := newCollector()
	for idx, r := range ds.Records {
		classes := filter.Classification{}
		if t := r.Tags[TypeAxis]; len(t) > 0 {
			classes[TypeAxis] = t
			types.add(t...)
		}
		if c := r.Tags[ColorAxis]; len(c) > 0 {
			classes[ColorAxis] = c
			colors.add(c...)
		}
		hubID := HubID(deckOf(r))
		n, err := graph.NewNode(graph.Node{
			ID:      r.ID,
			Label:   r.Label(),
			Whisper: r.Whisper,
			Icon:    r.Icon,
			Classes: classes,
			Sector:  deckOf(r),
			Weight:  1 + r.Weight,
			Order:   r.Weight,
			Parent:  hubID,
			Meta:    r.Meta,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "card %d", idx)
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
		if _, err := g.Connect(graph.EdgeStructural, hubID, n.ID, graph.Style{Width: 1}); err != nil {
			return nil, err
		}
	}

	var axes []*filter.Axis
	for _, c := range []struct {
		key  string
		cats *collector
	}{{TypeAxis, types}, {ColorAxis, colors}} {
		if len(c.cats.list) == 0 {
			continue
		}
		axis, err := filter.NewAxis(c.key, c.cats.sorted(c.key))
		if err != nil {
			return nil, err
		}
		axes = append(axes, axis)
	}

	run := func(g *graph.Graph, visibleOnly bool) layout.Result { return layout.Radial(g, rc, visibleOnly) }
	res := run(g, false)
	g.Finalize()
	log.Debugw("skill tree built",
		logger.FieldCount, len(g.Nodes),
		"decks", len(decks),
		logger.FieldIterations, res.Collision.Passes)

	labels := map[string]map[string]string{ColorAxis: {}}
	for _, c := range colors.list {
		if name, ok := colorNames[c]; ok {
			labels[ColorAxis][c] = name
		}
	}

	return &viz.Build{
		Title:  label,
		Graph:  g,
		Axes:   axes,
		Layout: run,
		Labels: labels,
	}, nil
}

func deckOf(r source.Record) string {
	if r.Category == "" {
		return "unsorted"
	}
	return r.Category
}

type collector struct {
	list []string
	seen map[string]bool
}

func newCollector() *collector { return &collector{seen: make(map[string]bool)} }

func (c *collector) add(values ...string) {
	for _, v := range values {
		if v != "" && !c.seen[v] {
			c.seen[v] = true
			c.list = append(c.list, v)
		}
	}
}

// sorted orders colors in WUBRG order and everything else alphabetically.
func (c *collector) sorted(axis string) []string {
	out := append([]string(nil), c.list...)
	if axis == ColorAxis {
		rank := map[string]int{"W": 0, "U": 1, "B": 2, "R": 3, "G": 4, "C": 5}
		sort.SliceStable(out, func(i, j int) bool {
			ri, okI := rank[out[i]]
			rj, okJ := rank[out[j]]
			switch {
			case okI && okJ:
				return ri < rj
			case okI != okJ:
				return okI
			default:
				return out[i] < out[j]
			}
		})
		return out
	}
	sort.Strings(out)
	return out
}
