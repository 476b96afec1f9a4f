package layout

import (
	"sort"

	"github.com/teranos/folio/geom"
	"github.com/teranos/folio/graph"
)

// Direction is the main flow axis of a layered diagram.
type Direction string

const (
	TopDown   Direction = "TD"
	LeftRight Direction = "LR"
	BottomUp  Direction = "BT"
	RightLeft Direction = "RL"
)

// ParseDirection maps the diagram header keywords to a Direction, defaulting to TopDown.
func ParseDirection(s string) Direction {
	switch s {
	case "LR":
		return LeftRight
	case "BT":
		return BottomUp
	case "RL":
		return RightLeft
	default:
		return TopDown
	}
}

// LayeredConfig tunes Layered.
type LayeredConfig struct {
	Direction    Direction
	RankGap      float64 // distance between layers along the flow
	NodeGap      float64 // distance between neighbors within a layer
	ContainerPad float64 // margin of a container around its children
}

// DefaultLayeredConfig returns the stock diagram spacing.
func DefaultLayeredConfig() LayeredConfig {
	return LayeredConfig{Direction: TopDown, RankGap: 160, NodeGap: 140, ContainerPad: 28}
}

// Layered assigns diagram nodes to layers along their edges and spaces each
// layer evenly, centered on the origin. Cycles are broken at back edges found by
// a depth-first walk in insertion order; layering is longest path from the roots.
// Within a layer nodes are ordered by the mean position of their predecessors,
// ties by insertion order. Container rectangles are refit afterwards.
func Layered(g *graph.Graph, cfg LayeredConfig, visibleOnly bool) Result {
	nodes := g.Nodes
	if visibleOnly {
		nodes = g.VisibleNodes()
	}
	res := Result{Placed: len(nodes)}
	if len(nodes) == 0 {
		FitContainers(g, cfg.ContainerPad)
		res.Bounds, res.HasBounds = g.VisibleBounds()
		return res
	}

	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		idx[n.ID] = i
	}
	out := make([][]int, len(nodes))
	for _, e := range g.Edges {
		if visibleOnly && e.Hidden {
			continue
		}
		from, okF := idx[e.From.Key()]
		to, okT := idx[e.To.Key()]
		if okF && okT && from != to {
			out[from] = append(out[from], to)
		}
	}
	dropBackEdges(out)

	layer := longestPath(out)
	maxLayer := 0
	for _, l := range layer {
		if l > maxLayer {
			maxLayer = l
		}
	}
	layers := make([][]int, maxLayer+1)
	for i, l := range layer {
		layers[l] = append(layers[l], i)
	}

	in := make([][]int, len(nodes))
	for from, succ := range out {
		for _, to := range succ {
			in[to] = append(in[to], from)
		}
	}
	slot := make([]float64, len(nodes))
	for li, members := range layers {
		if li > 0 {
			bary := make(map[int]float64, len(members))
			for _, m := range members {
				if len(in[m]) == 0 {
					bary[m] = float64(m)
					continue
				}
				sum := 0.0
				for _, p := range in[m] {
					sum += slot[p]
				}
				bary[m] = sum / float64(len(in[m]))
			}
			sort.SliceStable(members, func(a, b int) bool { return bary[members[a]] < bary[members[b]] })
		}
		for s, m := range members {
			slot[m] = float64(s)
		}
		width := float64(len(members)-1) * cfg.NodeGap
		depth := float64(li)*cfg.RankGap - float64(maxLayer)*cfg.RankGap/2
		for s, m := range members {
			across := float64(s)*cfg.NodeGap - width/2
			nodes[m].Pos = place(cfg.Direction, across, depth)
		}
	}

	FitContainers(g, cfg.ContainerPad)
	res.Bounds, res.HasBounds = g.VisibleBounds()
	return res
}

func place(d Direction, across, depth float64) geom.Vec {
	switch d {
	case LeftRight:
		return geom.V(depth, across)
	case RightLeft:
		return geom.V(-depth, across)
	case BottomUp:
		return geom.V(across, -depth)
	default:
		return geom.V(across, depth)
	}
}

// dropBackEdges removes every edge that closes a cycle, visiting nodes in index order.
func dropBackEdges(out [][]int) {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make([]int, len(out))
	var dfs func(n int)
	dfs = func(n int) {
		state[n] = visiting
		kept := out[n][:0]
		for _, m := range out[n] {
			switch state[m] {
			case visiting:
				continue
			case unvisited:
				dfs(m)
			}
			kept = append(kept, m)
		}
		out[n] = kept
		state[n] = visited
	}
	for n := range out {
		if state[n] == unvisited {
			dfs(n)
		}
	}
}

// longestPath layers an acyclic adjacency list: roots at 0, every other node one
// past its deepest predecessor.
func longestPath(out [][]int) []int {
	indeg := make([]int, len(out))
	for _, succ := range out {
		for _, m := range succ {
			indeg[m]++
		}
	}
	layer := make([]int, len(out))
	queue := make([]int, 0, len(out))
	for n, d := range indeg {
		if d == 0 {
			queue = append(queue, n)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, m := range out[n] {
			if layer[n]+1 > layer[m] {
				layer[m] = layer[n] + 1
			}
			indeg[m]--
			if indeg[m] == 0 {
				queue = append(queue, m)
			}
		}
	}
	return layer
}

// FitContainers sizes every container to the union of its visible children
// (nodes and nested containers) plus pad. A container with nothing visible gets
// an empty rectangle.
func FitContainers(g *graph.Graph, pad float64) {
	done := make(map[string]bool, len(g.Containers))
	var fit func(c *graph.Container, depth int) (geom.Rect, bool)
	fit = func(c *graph.Container, depth int) (geom.Rect, bool) {
		if done[c.ID] {
			return c.Rect, !c.Rect.Degenerate()
		}
		if depth > len(g.Containers) {
			return geom.Rect{}, false
		}
		var r geom.Rect
		ok := false
		add := func(o geom.Rect) {
			if !ok {
				r, ok = o, true
				return
			}
			r = r.Union(o)
		}
		for _, id := range c.Children {
			if child, isContainer := g.Container(id); isContainer {
				if cr, cok := fit(child, depth+1); cok && !child.Hidden {
					add(cr)
				}
				continue
			}
			if e, found := g.Endpoint(id); found && e.Visible() {
				add(geom.Circle{C: e.Center(), R: e.Radius()}.Bounds())
			}
		}
		done[c.ID] = true
		if !ok {
			c.Rect = geom.Rect{}
			return c.Rect, false
		}
		c.Rect = r.Expand(pad)
		return c.Rect, true
	}
	for _, c := range g.Containers {
		fit(c, 0)
	}
}
