// Package graph is the data model shared by every visualization: schema-checked
// nodes, hubs and edges, collapsible containers, and the queries the layout,
// filter and render stages run over them.
package graph

import (
	"sort"
	"time"

	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/filter"
	"github.com/teranos/folio/geom"
)

// Graph represents the complete graph structure for one visualization instance
type Graph struct {
	Center     *Hub
	Hubs       []*Hub
	Nodes      []*Node
	Edges      []*Edge
	Containers []*Container
	Meta       Meta

	index      map[string]Endpoint
	containers map[string]*Container
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		index:      make(map[string]Endpoint),
		containers: make(map[string]*Container),
		Meta: Meta{
			GeneratedAt: time.Now(),
			Config:      make(map[string]string),
		},
	}
}

func (g *Graph) claim(id string) error {
	if _, dup := g.index[id]; dup {
		return errors.Wrapf(errors.ErrInvalidNode, "duplicate id %q", id)
	}
	return nil
}

// SetCenter installs the identity center. It is fixed at the origin unless the
// hub says otherwise.
func (g *Graph) SetCenter(h *Hub) error {
	if h == nil {
		return errors.Wrap(errors.ErrInvalidNode, "nil center")
	}
	if err := g.claim(h.ID); err != nil {
		return err
	}
	if g.Center != nil {
		delete(g.index, g.Center.ID)
	}
	h.IsCenter = true
	g.Center = h
	g.index[h.ID] = h
	return nil
}

// AddHub registers an intermediate anchor.
func (g *Graph) AddHub(h *Hub) error {
	if h == nil {
		return errors.Wrap(errors.ErrInvalidNode, "nil hub")
	}
	if err := g.claim(h.ID); err != nil {
		return err
	}
	g.Hubs = append(g.Hubs, h)
	g.index[h.ID] = h
	return nil
}

// AddNode registers a node. Insertion order is the deterministic layout order.
func (g *Graph) AddNode(n *Node) error {
	if n == nil {
		return errors.Wrap(errors.ErrInvalidNode, "nil node")
	}
	if err := g.claim(n.ID); err != nil {
		return err
	}
	g.Nodes = append(g.Nodes, n)
	g.index[n.ID] = n
	return nil
}

// Connect adds an edge between two registered ids.
func (g *Graph) Connect(kind EdgeKind, fromID, toID string, style Style) (*Edge, error) {
	from, ok := g.index[fromID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "edge source %q", fromID)
	}
	to, ok := g.index[toID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "edge target %q", toID)
	}
	id := EdgeID(fromID, toID)
	if kind == EdgeThread {
		id = "thread:" + id
	}
	e, err := NewEdge(id, kind, from, to, style)
	if err != nil {
		return nil, err
	}
	for _, existing := range g.Edges {
		if existing.ID == e.ID {
			return existing, nil
		}
	}
	g.Edges = append(g.Edges, e)
	return e, nil
}

// AddContainer registers a collapsible group. Children may be added later.
func (g *Graph) AddContainer(c *Container) error {
	if c == nil || c.ID == "" {
		return errors.Wrap(errors.ErrInvalidNode, "container id is required")
	}
	if _, dup := g.containers[c.ID]; dup {
		return errors.Wrapf(errors.ErrInvalidNode, "duplicate container %q", c.ID)
	}
	g.Containers = append(g.Containers, c)
	g.containers[c.ID] = c
	return nil
}

// Container looks up a container by id.
func (g *Graph) Container(id string) (*Container, bool) {
	c, ok := g.containers[id]
	return c, ok
}

// Endpoint looks up a node, hub or center by id.
func (g *Graph) Endpoint(id string) (Endpoint, bool) {
	e, ok := g.index[id]
	return e, ok
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.index[id].(*Node)
	return n, ok
}

// Hub looks up a hub (or the center) by id.
func (g *Graph) Hub(id string) (*Hub, bool) {
	h, ok := g.index[id].(*Hub)
	return h, ok
}

// VisibleNodes returns the nodes not hidden by filters, in insertion order.
func (g *Graph) VisibleNodes() []*Node {
	out := make([]*Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if !n.Hidden {
			out = append(out, n)
		}
	}
	return out
}

// Anchors returns the center (if any) followed by every visible hub.
func (g *Graph) Anchors() []*Hub {
	var out []*Hub
	if g.Center != nil && !g.Center.Hidden {
		out = append(out, g.Center)
	}
	for _, h := range g.Hubs {
		if !h.Hidden {
			out = append(out, h)
		}
	}
	return out
}

// Neighbors returns the ids sharing an edge with id, sorted.
func (g *Graph) Neighbors(id string) []string {
	seen := make(map[string]bool)
	for _, e := range g.Edges {
		switch id {
		case e.From.Key():
			seen[e.To.Key()] = true
		case e.To.Key():
			seen[e.From.Key()] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Circles returns the circles of every visible endpoint, anchors first.
func (g *Graph) Circles() []geom.Circle {
	var out []geom.Circle
	for _, h := range g.Anchors() {
		out = append(out, geom.Circle{C: h.Pos, R: h.R})
	}
	for _, n := range g.VisibleNodes() {
		out = append(out, geom.Circle{C: n.Pos, R: n.R})
	}
	return out
}

// VisibleBounds is the bounding box of everything visible. ok is false when
// nothing is visible, which callers treat as "skip the camera fit".
func (g *Graph) VisibleBounds() (geom.Rect, bool) {
	r, ok := geom.BoundsOf(g.Circles())
	for _, c := range g.Containers {
		if c.Hidden || c.Rect.Degenerate() {
			continue
		}
		if !ok {
			r, ok = c.Rect, true
			continue
		}
		r = r.Union(c.Rect)
	}
	return r, ok
}

// BoundsOfIDs is the bounding box of the named endpoints that are visible.
func (g *Graph) BoundsOfIDs(ids []string) (geom.Rect, bool) {
	var circles []geom.Circle
	for _, id := range ids {
		if e, ok := g.index[id]; ok && e.Visible() {
			circles = append(circles, geom.Circle{C: e.Center(), R: e.Radius()})
		}
	}
	return geom.BoundsOf(circles)
}

// ApplyVisibility hides nodes whose classification fails active, then hides
// hubs left without a visible node and edges with a hidden end. It returns the
// number of visible nodes.
func (g *Graph) ApplyVisibility(active filter.Active) int {
	visible := 0
	for _, n := range g.Nodes {
		n.Hidden = !filter.IsNodeVisible(n.Classes, active)
		if !n.Hidden {
			visible++
		}
	}
	if len(g.Hubs) > 0 {
		alive := make(map[string]bool, len(g.Hubs))
		for _, n := range g.Nodes {
			if !n.Hidden && n.Parent != "" {
				alive[n.Parent] = true
			}
		}
		for _, h := range g.Hubs {
			h.Hidden = !alive[h.ID] || !filter.IsNodeVisible(h.Classes, active)
		}
	}
	for _, e := range g.Edges {
		e.Hidden = !e.From.Visible() || !e.To.Visible()
	}
	g.updateStats()
	return visible
}

// EdgeGraph projects the graph for edge-driven filtering.
func (g *Graph) EdgeGraph() filter.EdgeGraph {
	eg := filter.EdgeGraph{
		Nodes:      make(map[string]filter.Classification, len(g.Nodes)),
		Edges:      make([]filter.EdgeRef, 0, len(g.Edges)),
		Containers: make([]filter.Container, 0, len(g.Containers)),
	}
	for _, n := range g.Nodes {
		eg.Nodes[n.ID] = n.Classes
	}
	for _, e := range g.Edges {
		eg.Edges = append(eg.Edges, filter.EdgeRef{ID: e.ID, From: e.From.Key(), To: e.To.Key()})
	}
	for _, c := range g.Containers {
		eg.Containers = append(eg.Containers, filter.Container{ID: c.ID, Children: c.Children})
	}
	return eg
}

// ApplyResolution copies an edge-driven filtering outcome onto the graph and
// returns the number of visible nodes.
func (g *Graph) ApplyResolution(v filter.Visibility) int {
	visible := 0
	for _, n := range g.Nodes {
		n.Hidden = !v.Nodes[n.ID]
		if !n.Hidden {
			visible++
		}
	}
	for _, e := range g.Edges {
		e.Hidden = !v.Edges[e.ID]
	}
	for _, c := range g.Containers {
		c.Hidden = !v.Containers[c.ID]
	}
	g.updateStats()
	return visible
}

// ShowAll clears every hidden flag.
func (g *Graph) ShowAll() {
	for _, n := range g.Nodes {
		n.Hidden = false
	}
	for _, h := range g.Hubs {
		h.Hidden = false
	}
	for _, e := range g.Edges {
		e.Hidden = false
	}
	for _, c := range g.Containers {
		c.Hidden = false
	}
	g.updateStats()
}

// Finalize fills Meta with stats and per-axis category counts, sorted by axis
// then category for deterministic output.
func (g *Graph) Finalize() {
	counts := make(map[[2]string]int)
	for _, n := range g.Nodes {
		for axis, cats := range n.Classes {
			for _, c := range cats {
				counts[[2]string{axis, c}]++
			}
		}
	}
	keys := make([][2]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	g.Meta.Categories = g.Meta.Categories[:0]
	for _, k := range keys {
		g.Meta.Categories = append(g.Meta.Categories, CategoryInfo{Axis: k[0], Category: k[1], Count: counts[k]})
	}
	g.updateStats()
}

// RefreshStats recomputes Meta.Stats after hidden flags were changed directly.
func (g *Graph) RefreshStats() { g.updateStats() }

func (g *Graph) updateStats() {
	s := Stats{TotalNodes: len(g.Nodes), TotalHubs: len(g.Hubs), TotalEdges: len(g.Edges)}
	for _, n := range g.Nodes {
		if !n.Hidden {
			s.VisibleNodes++
		}
	}
	for _, e := range g.Edges {
		if e.Visible() {
			s.VisibleEdges++
		}
	}
	g.Meta.Stats = s
}
