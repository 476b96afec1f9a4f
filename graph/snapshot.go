package graph

import "github.com/teranos/folio/geom"

// EdgeSnapshot is the serializable form of an Edge.
type EdgeSnapshot struct {
	ID     string     `json:"id"`
	Kind   EdgeKind   `json:"kind"`
	From   string     `json:"from"`
	To     string     `json:"to"`
	Style  Style      `json:"style"`
	Hidden bool       `json:"hidden,omitempty"`
	Path   *geom.Path `json:"path,omitempty"` // nil when the endpoints overlap
}

// Snapshot is the serializable settled state of a graph, used by layout
// exports and the live preview.
type Snapshot struct {
	Center     *Hub           `json:"center,omitempty"`
	Hubs       []*Hub         `json:"hubs"`
	Nodes      []*Node        `json:"nodes"`
	Edges      []EdgeSnapshot `json:"edges"`
	Containers []*Container   `json:"containers,omitempty"`
	Bounds     *geom.Rect     `json:"bounds,omitempty"`
	Meta       Meta           `json:"meta"`
}

// Snapshot copies the current state. Positions are the settled targets.
func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		Hubs:       make([]*Hub, 0, len(g.Hubs)),
		Nodes:      make([]*Node, 0, len(g.Nodes)),
		Edges:      make([]EdgeSnapshot, 0, len(g.Edges)),
		Containers: make([]*Container, 0, len(g.Containers)),
		Meta:       g.Meta,
	}
	if g.Center != nil {
		c := *g.Center
		s.Center = &c
	}
	for _, h := range g.Hubs {
		c := *h
		s.Hubs = append(s.Hubs, &c)
	}
	for _, n := range g.Nodes {
		c := *n
		c.Classes = n.Classes.Clone()
		s.Nodes = append(s.Nodes, &c)
	}
	for _, e := range g.Edges {
		es := EdgeSnapshot{
			ID:     e.ID,
			Kind:   e.Kind,
			From:   e.From.Key(),
			To:     e.To.Key(),
			Style:  e.Style,
			Hidden: !e.Visible(),
		}
		if p, ok := e.Path(); ok {
			es.Path = &p
		}
		s.Edges = append(s.Edges, es)
	}
	for _, ct := range g.Containers {
		c := *ct
		c.Children = append([]string(nil), ct.Children...)
		s.Containers = append(s.Containers, &c)
	}
	if b, ok := g.VisibleBounds(); ok {
		s.Bounds = &b
	}
	return s
}
