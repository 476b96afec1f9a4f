// Package layout runs the placement passes over a graph: radial placement with
// collision resolution for the knowledge graph and skill tree, and layered
// placement for diagrams. Passes only write target positions and radii; the
// animator moves elements toward them.
package layout

import (
	"math"
	"sort"

	"github.com/teranos/folio/geom"
	"github.com/teranos/folio/graph"
)

// RadialConfig tunes Radial.
type RadialConfig struct {
	Placement geom.RadialConfig
	Size      geom.SizeRange
	Collision geom.CollisionConfig
	// Sectors fixes the base angle per sector key. Keys that are not listed are
	// spread evenly around the circle in order of first appearance.
	Sectors []geom.Sector
}

// DefaultRadialConfig returns the stock tuning for tens of nodes.
func DefaultRadialConfig() RadialConfig {
	return RadialConfig{
		Placement: geom.RadialConfig{
			MinDist:     180,
			MaxDist:     620,
			SpreadAngle: math.Pi / 2.4,
			JitterDist:  18,
			JitterAngle: 0.06,
		},
		Size:      geom.SizeRange{Min: 50, Max: 120},
		Collision: geom.CollisionConfig{Iterations: geom.DefaultIterations, Padding: 8},
	}
}

// Result summarizes one pass.
type Result struct {
	Placed    int
	Collision geom.CollisionResult
	Bounds    geom.Rect
	HasBounds bool
}

// Radial places the graph's nodes around its center. With visibleOnly set,
// hidden nodes keep their positions and the visible ones redistribute over the
// freed space.
//
// Nodes are grouped by sector and ordered within a sector by Order, then by
// insertion index. Distance comes from Order normalized over every placed node,
// the radius from Weight normalized the same way. The center and hubs are
// collision anchors.
func Radial(g *graph.Graph, cfg RadialConfig, visibleOnly bool) Result {
	nodes := g.Nodes
	if visibleOnly {
		nodes = g.VisibleNodes()
	}
	origin := geom.Vec{}
	if g.Center != nil {
		origin = g.Center.Pos
	}

	res := Result{Placed: len(nodes)}
	if len(nodes) == 0 {
		res.Bounds, res.HasBounds = g.VisibleBounds()
		return res
	}

	orders := make([]float64, len(nodes))
	weights := make([]float64, len(nodes))
	for i, n := range nodes {
		orders[i] = n.Order
		weights[i] = n.Weight
	}
	oLo, oHi, _ := geom.Range(orders)
	wLo, wHi, _ := geom.Range(weights)

	bases := sectorAngles(nodes, cfg.Sectors)

	groups := make(map[string][]int)
	var keys []string
	for i, n := range nodes {
		if _, ok := groups[n.Sector]; !ok {
			keys = append(keys, n.Sector)
		}
		groups[n.Sector] = append(groups[n.Sector], i)
	}

	for _, key := range keys {
		idx := groups[key]
		sort.SliceStable(idx, func(a, b int) bool {
			return nodes[idx[a]].Order < nodes[idx[b]].Order
		})
		base := bases[key]
		for rank, i := range idx {
			n := nodes[i]
			normPos := geom.Normalize(n.Order, oLo, oHi)
			if !(oHi > oLo) {
				// every item shares one slot on the ordering axis; spread by rank
				normPos = geom.RankNorm(rank, len(idx))
			}
			p := cfg.Placement.Place(normPos, geom.RankNorm(rank, len(idx)), rank, base)
			n.Pos = origin.Add(p.Pos)
			n.R = cfg.Size.Size(n.Weight, wLo, wHi)
		}
	}

	res.Collision = Collide(g, nodes, cfg.Collision)
	res.Bounds, res.HasBounds = g.VisibleBounds()
	return res
}

// Collide resolves overlaps among nodes with the graph's visible anchors held in
// place, and writes the resolved positions back.
func Collide(g *graph.Graph, nodes []*graph.Node, cfg geom.CollisionConfig) geom.CollisionResult {
	anchors := g.Anchors()
	bodies := make([]*geom.Body, 0, len(anchors)+len(nodes))
	for _, h := range anchors {
		bodies = append(bodies, &geom.Body{Pos: h.Pos, R: h.R, Fixed: true})
	}
	for _, n := range nodes {
		bodies = append(bodies, &geom.Body{Pos: n.Pos, R: n.R})
	}
	res := geom.Resolve(bodies, cfg)
	for i, n := range nodes {
		n.Pos = bodies[len(anchors)+i].Pos
	}
	return res
}

func sectorAngles(nodes []*graph.Node, fixed []geom.Sector) map[string]float64 {
	out := make(map[string]float64, len(fixed))
	for _, s := range fixed {
		out[s.Key] = s.BaseAngle
	}
	var free []string
	seen := make(map[string]bool)
	for _, n := range nodes {
		if _, ok := out[n.Sector]; ok || seen[n.Sector] {
			continue
		}
		seen[n.Sector] = true
		free = append(free, n.Sector)
	}
	for i, key := range free {
		// start at twelve o'clock, clockwise in screen space
		out[key] = -math.Pi/2 + 2*math.Pi*float64(i)/float64(len(free))
	}
	return out
}
