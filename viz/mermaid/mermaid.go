// Package mermaid builds architecture diagrams from the Mermaid flowchart
// subset. Filtering is edge-driven: a connection stays while either end's
// category is active, and subgraph boxes collapse when they empty out.
package mermaid

import (
	"github.com/teranos/folio/am"
	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/filter"
	"github.com/teranos/folio/graph"
	"github.com/teranos/folio/layout"
	"github.com/teranos/folio/logger"
	"github.com/teranos/folio/source"
	"github.com/teranos/folio/viz"
)

// Axis is the single filter axis.
const Axis = "category"

// DefaultCategory is given to nodes with no class outside any subgraph.
const DefaultCategory = "default"

// Builder builds diagrams.
type Builder struct {
	// Layered overrides the spacing; the zero value uses layout.DefaultLayeredConfig.
	Layered layout.LayeredConfig
}

// Name implements viz.Builder.
func (Builder) Name() string { return "mermaid" }

// Build implements viz.Builder. The dataset's Text is parsed as a flowchart
// when present; otherwise records become nodes, Links become connections and
// Parent names the enclosing group.
func (b Builder) Build(ds source.Dataset, cfg *am.Config) (*viz.Build, error) {
	var (
		d   *Diagram
		err error
	)
	if ds.Text != "" {
		d, err = Parse(ds.Text)
	} else {
		d, err = FromRecords(ds.Records)
	}
	if err != nil {
		return nil, err
	}
	if len(d.Nodes) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "diagram has no nodes")
	}

	g := graph.New()
	var cats []string
	seen := make(map[string]bool)
	for _, dn := range d.Nodes {
		classes := dn.Classes
		if len(classes) == 0 {
			classes = []string{DefaultCategory}
			if dn.Subgraph != "" {
				classes = []string{dn.Subgraph}
			}
		}
		for _, c := range classes {
			if !seen[c] {
				seen[c] = true
				cats = append(cats, c)
			}
		}
		n, err := graph.NewNode(graph.Node{
			ID:      dn.ID,
			Label:   dn.Label,
			Classes: filter.Classification{Axis: classes},
			Sector:  dn.Subgraph,
			Weight:  1,
			R:       cfg.Size.Min,
			Meta:    map[string]string{"shape": string(dn.Shape)},
		})
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}

	for _, l := range d.Links {
		if l.From == l.To {
			continue
		}
		style := graph.Style{Width: 1.5, Label: l.Label}
		switch l.Style {
		case LinkDotted:
			style.Dashed = true
		case LinkThick:
			style.Width = 3
		}
		if _, err := g.Connect(graph.EdgeFlow, l.From, l.To, style); err != nil {
			return nil, errors.Wrapf(err, "link %s -> %s", l.From, l.To)
		}
	}

	for _, sg := range d.Subgraphs {
		c := &graph.Container{ID: sg.ID, Label: sg.Title, Children: append([]string(nil), sg.Children...)}
		if err := g.AddContainer(c); err != nil {
			return nil, err
		}
	}

	axis, err := filter.NewAxis(Axis, cats)
	if err != nil {
		return nil, err
	}

	lc := b.Layered
	if lc == (layout.LayeredConfig{}) {
		lc = layout.DefaultLayeredConfig()
	}
	lc.Direction = layout.ParseDirection(d.Direction)
	run := func(g *graph.Graph, visibleOnly bool) layout.Result { return layout.Layered(g, lc, visibleOnly) }
	run(g, false)
	g.Meta.Config["direction"] = string(lc.Direction)
	g.Finalize()

	logger.ComponentLogger("viz.mermaid").Debugw("diagram built",
		logger.FieldCount, len(g.Nodes),
		"links", len(g.Edges),
		"subgraphs", len(g.Containers))

	labels := map[string]map[string]string{Axis: {}}
	for _, sg := range d.Subgraphs {
		if seen[sg.ID] {
			labels[Axis][sg.ID] = sg.Title
		}
	}

	return &viz.Build{
		Title:      ds.Name,
		Graph:      g,
		Axes:       []*filter.Axis{axis},
		Layout:     run,
		EdgeDriven: true,
		Labels:     labels,
	}, nil
}

// FromRecords builds a diagram from records: Category is the node's class,
// Parent its subgraph and Links its outgoing solid arrows.
func FromRecords(records []source.Record) (*Diagram, error) {
	d := &Diagram{
		Direction: "TD",
		nodes:     make(map[string]*Node),
		subgraphs: make(map[string]*Subgraph),
	}
	for _, r := range records {
		if r.Parent == "" {
			continue
		}
		if _, ok := d.subgraphs[r.Parent]; !ok {
			sg := &Subgraph{ID: r.Parent, Title: r.Parent}
			d.subgraphs[r.Parent] = sg
			d.Subgraphs = append(d.Subgraphs, sg)
		}
	}
	for _, r := range records {
		if _, clash := d.subgraphs[r.ID]; clash {
			return nil, errors.Newf("record %q is also a group", r.ID)
		}
		n := d.ensure(r.ID, r.Parent)
		n.Label = r.Label()
		if r.Category != "" {
			n.addClass(r.Category)
		}
	}
	for _, r := range records {
		for _, to := range r.Links {
			if _, ok := d.nodes[to]; !ok {
				return nil, errors.Wrapf(errors.ErrNotFound, "record %q links to %q", r.ID, to)
			}
			d.Links = append(d.Links, Link{From: r.ID, To: to, Style: LinkSolid, Arrow: true})
		}
	}
	return d, nil
}
