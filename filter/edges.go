package filter

// EdgeRef is an edge between two node ids, as seen by the edge-driven resolver.
type EdgeRef struct {
	ID   string
	From string
	To   string
}

// Container groups nodes (and nested containers) that collapse together.
type Container struct {
	ID       string
	Children []string
}

// EdgeGraph is the input of Resolve.
type EdgeGraph struct {
	Nodes      map[string]Classification
	Edges      []EdgeRef
	Containers []Container
}

// Visibility is the outcome of edge-driven filtering.
type Visibility struct {
	Nodes      map[string]bool
	Edges      map[string]bool
	Containers map[string]bool
}

// VisibleNodes counts visible nodes.
func (v Visibility) VisibleNodes() int {
	n := 0
	for _, ok := range v.Nodes {
		if ok {
			n++
		}
	}
	return n
}

// Resolve applies edge-driven filtering. An edge survives when at least one
// endpoint's own categories are active. A node survives when its own
// categories are active or it ends a surviving edge. A container survives when
// at least one child (node or nested container) survives.
func Resolve(g EdgeGraph, active Active) Visibility {
	own := make(map[string]bool, len(g.Nodes))
	for id, c := range g.Nodes {
		own[id] = IsNodeVisible(c, active)
	}

	v := Visibility{
		Nodes:      make(map[string]bool, len(g.Nodes)),
		Edges:      make(map[string]bool, len(g.Edges)),
		Containers: make(map[string]bool, len(g.Containers)),
	}
	for id, ok := range own {
		v.Nodes[id] = ok
	}
	for _, e := range g.Edges {
		_, fromKnown := g.Nodes[e.From]
		_, toKnown := g.Nodes[e.To]
		if !fromKnown || !toKnown {
			v.Edges[e.ID] = false
			continue
		}
		keep := own[e.From] || own[e.To]
		v.Edges[e.ID] = keep
		if keep {
			v.Nodes[e.From] = true
			v.Nodes[e.To] = true
		}
	}

	byID := make(map[string]Container, len(g.Containers))
	for _, c := range g.Containers {
		byID[c.ID] = c
	}
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(g.Containers))
	var visit func(id string) bool
	visit = func(id string) bool {
		switch state[id] {
		case visiting:
			return false
		case done:
			return v.Containers[id]
		}
		state[id] = visiting
		alive := false
		for _, child := range byID[id].Children {
			if _, isContainer := byID[child]; isContainer {
				if visit(child) {
					alive = true
				}
				continue
			}
			if v.Nodes[child] {
				alive = true
			}
		}
		state[id] = done
		v.Containers[id] = alive
		return alive
	}
	for _, c := range g.Containers {
		visit(c.ID)
	}
	return v
}
