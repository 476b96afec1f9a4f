package graph

import (
	"math"
	"time"

	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/filter"
	"github.com/teranos/folio/geom"
)

// Endpoint is anything an edge can terminate on. Edges hold endpoints by
// reference so a redraw after a move needs no lookup.
type Endpoint interface {
	Key() string
	Center() geom.Vec
	Radius() float64
	Visible() bool
}

// Node is a positioned leaf of a visualization.
type Node struct {
	ID      string                `json:"id"`
	Label   string                `json:"label"`
	Whisper string                `json:"whisper,omitempty"` // short secondary label
	Icon    string                `json:"icon,omitempty"`
	Classes filter.Classification `json:"classes,omitempty"`
	Sector  string                `json:"sector,omitempty"` // placement sector key
	Weight  float64               `json:"weight"`           // drives the radius
	Order   float64               `json:"order"`            // drives the distance from center
	Pos     geom.Vec              `json:"pos"`              // settled target position
	R       float64               `json:"r"`
	Hidden  bool                  `json:"hidden,omitempty"`
	Parent  string                `json:"parent,omitempty"` // owning hub, if any
	Meta    map[string]string     `json:"meta,omitempty"`
}

// NewNode validates n and returns it as a graph node. ID is required; Weight
// and Order must be finite, Weight non-negative.
func NewNode(n Node) (*Node, error) {
	if n.ID == "" {
		return nil, errors.Wrap(errors.ErrInvalidNode, "node id is required")
	}
	if !finite(n.Weight) || n.Weight < 0 {
		return nil, errors.Wrapf(errors.ErrInvalidNode, "node %s: weight %v", n.ID, n.Weight)
	}
	if !finite(n.Order) {
		return nil, errors.Wrapf(errors.ErrInvalidNode, "node %s: order %v", n.ID, n.Order)
	}
	if !n.Pos.Finite() || !finite(n.R) || n.R < 0 {
		return nil, errors.Wrapf(errors.ErrInvalidNode, "node %s: bad geometry", n.ID)
	}
	if n.Label == "" {
		n.Label = n.ID
	}
	n.Classes = n.Classes.Clone()
	return &n, nil
}

func (n *Node) Key() string      { return n.ID }
func (n *Node) Center() geom.Vec { return n.Pos }
func (n *Node) Radius() float64  { return n.R }
func (n *Node) Visible() bool    { return !n.Hidden }

// Hub is an immovable anchor: the identity center or an intermediate grouping.
type Hub struct {
	ID       string                `json:"id"`
	Label    string                `json:"label"`
	Icon     string                `json:"icon,omitempty"`
	IsCenter bool                  `json:"center,omitempty"`
	Classes  filter.Classification `json:"classes,omitempty"`
	Pos      geom.Vec              `json:"pos"`
	R        float64               `json:"r"`
	Hidden   bool                  `json:"hidden,omitempty"`
}

// NewHub validates h. ID is required and the radius must be positive.
func NewHub(h Hub) (*Hub, error) {
	if h.ID == "" {
		return nil, errors.Wrap(errors.ErrInvalidNode, "hub id is required")
	}
	if !finite(h.R) || h.R <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidNode, "hub %s: radius %v", h.ID, h.R)
	}
	if !h.Pos.Finite() {
		return nil, errors.Wrapf(errors.ErrInvalidNode, "hub %s: bad position", h.ID)
	}
	if h.Label == "" {
		h.Label = h.ID
	}
	h.Classes = h.Classes.Clone()
	return &h, nil
}

func (h *Hub) Key() string      { return h.ID }
func (h *Hub) Center() geom.Vec { return h.Pos }
func (h *Hub) Radius() float64  { return h.R }
func (h *Hub) Visible() bool    { return !h.Hidden }

// EdgeKind separates the structural spine from themed threads.
type EdgeKind string

const (
	EdgeStructural EdgeKind = "structural" // center -> hub -> node
	EdgeThread     EdgeKind = "thread"     // nodes sharing an overlay category
	EdgeFlow       EdgeKind = "flow"       // diagram connection
)

// Style is the visual description of an edge.
type Style struct {
	Color  string  `json:"color,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Dashed bool    `json:"dashed,omitempty"`
	Bend   float64 `json:"bend,omitempty"` // perpendicular control offset, 0 = straight
	Label  string  `json:"label,omitempty"`
}

// Edge connects two endpoints.
type Edge struct {
	ID     string
	Kind   EdgeKind
	From   Endpoint
	To     Endpoint
	Style  Style
	Hidden bool
}

// NewEdge validates endpoints and style. An empty id is derived from the
// endpoint keys.
func NewEdge(id string, kind EdgeKind, from, to Endpoint, style Style) (*Edge, error) {
	if from == nil || to == nil {
		return nil, errors.Wrap(errors.ErrInvalidNode, "edge endpoints are required")
	}
	if from.Key() == to.Key() {
		return nil, errors.Wrapf(errors.ErrInvalidNode, "edge %s loops on itself", from.Key())
	}
	if !finite(style.Width) || style.Width < 0 || !finite(style.Bend) {
		return nil, errors.Wrapf(errors.ErrInvalidNode, "edge %s->%s: bad style", from.Key(), to.Key())
	}
	if id == "" {
		id = EdgeID(from.Key(), to.Key())
	}
	if kind == "" {
		kind = EdgeStructural
	}
	if style.Width == 0 {
		style.Width = defaultEdgeWidth
	}
	return &Edge{ID: id, Kind: kind, From: from, To: to, Style: style}, nil
}

// Visible reports whether the edge and both of its endpoints are shown.
func (e *Edge) Visible() bool { return !e.Hidden && e.From.Visible() && e.To.Visible() }

// Path returns the edge geometry trimmed to both circle boundaries. ok is false
// only when the endpoint centers coincide; overlapping circles still yield a
// path whose ends cross.
func (e *Edge) Path() (geom.Path, bool) {
	return geom.Curve(e.From.Center(), e.To.Center(), e.From.Radius(), e.To.Radius(), e.Style.Bend)
}

// Container is a collapsible group of nodes (a diagram subgraph).
type Container struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Children []string  `json:"children"` // node or container ids
	Rect     geom.Rect `json:"rect"`
	Hidden   bool      `json:"hidden,omitempty"`
}

// Meta contains metadata about the graph
type Meta struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Stats       Stats             `json:"stats"`
	Config      map[string]string `json:"config,omitempty"`
	Categories  []CategoryInfo    `json:"categories,omitempty"`
}

// CategoryInfo describes one category of a filter axis and how many nodes carry it.
type CategoryInfo struct {
	Axis     string `json:"axis"`
	Category string `json:"category"`
	Label    string `json:"label,omitempty"`
	Color    string `json:"color,omitempty"`
	Count    int    `json:"count"`
}

// Stats provides graph statistics
type Stats struct {
	TotalNodes   int `json:"total_nodes"`
	VisibleNodes int `json:"visible_nodes"`
	TotalHubs    int `json:"total_hubs,omitempty"`
	TotalEdges   int `json:"total_edges"`
	VisibleEdges int `json:"visible_edges"`
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
