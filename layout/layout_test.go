package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/folio/filter"
	"github.com/teranos/folio/geom"
	"github.com/teranos/folio/graph"
)

func radialGraph(t *testing.T, weights []float64, sectors []string) *graph.Graph {
	t.Helper()
	g := graph.New()
	c, err := graph.NewHub(graph.Hub{ID: "center", R: 60})
	require.NoError(t, err)
	require.NoError(t, g.SetCenter(c))
	for i, w := range weights {
		n, err := graph.NewNode(graph.Node{
			ID:      string(rune('a' + i)),
			Weight:  w,
			Order:   float64(i),
			Sector:  sectors[i%len(sectors)],
			Classes: filter.Classification{"theme": {sectors[i%len(sectors)]}},
		})
		require.NoError(t, err)
		require.NoError(t, g.AddNode(n))
	}
	return g
}

func circlesOf(g *graph.Graph) []geom.Circle { return g.Circles() }

// Three nodes in one sector around one anchor.
func TestScenarioThreeNodesOneAnchor(t *testing.T) {
	g := radialGraph(t, []float64{1, 5, 9}, []string{"work"})
	cfg := DefaultRadialConfig()
	cfg.Size = geom.SizeRange{Min: 50, Max: 120}
	cfg.Placement.MinDist = 10 // start everything crammed against the anchor
	cfg.Placement.MaxDist = 40

	res := Radial(g, cfg, false)
	assert.Equal(t, 3, res.Placed)

	for _, n := range g.Nodes {
		want := 50 + math.Sqrt((n.Weight-1)/8)*70
		assert.InDelta(t, want, n.R, 1e-9, "node %s", n.ID)
	}
	assert.Equal(t, 0, geom.Overlaps(circlesOf(g), cfg.Collision.Padding, 1e-6))
	assert.True(t, res.HasBounds)
}

func TestRadialDeterministic(t *testing.T) {
	run := func() []geom.Vec {
		g := radialGraph(t, []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}, []string{"work", "study", "life"})
		Radial(g, DefaultRadialConfig(), false)
		out := make([]geom.Vec, len(g.Nodes))
		for i, n := range g.Nodes {
			out[i] = n.Pos
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		assert.Equal(t, math.Float64bits(a[i].X), math.Float64bits(b[i].X))
		assert.Equal(t, math.Float64bits(a[i].Y), math.Float64bits(b[i].Y))
	}
}

func TestRadialFixedSectorsAndDistance(t *testing.T) {
	g := radialGraph(t, []float64{1, 1}, []string{"east"})
	cfg := DefaultRadialConfig()
	cfg.Placement.JitterDist, cfg.Placement.JitterAngle = 0, 0
	cfg.Placement.SpreadAngle = 0
	cfg.Collision.Iterations = 1
	cfg.Size = geom.SizeRange{Min: 1, Max: 1}
	cfg.Sectors = []geom.Sector{geom.SectorFromDirection("east", 1, 0)}

	Radial(g, cfg, false)
	first, _ := g.Node("a")
	last, _ := g.Node("b")
	assert.InDelta(t, cfg.Placement.MinDist, first.Pos.X, 1e-6)
	assert.InDelta(t, cfg.Placement.MaxDist, last.Pos.X, 1e-6)
	assert.InDelta(t, 0, last.Pos.Y, 1e-6)
}

func TestRadialVisibleOnlyKeepsHidden(t *testing.T) {
	g := radialGraph(t, []float64{1, 2, 3, 4, 5, 6}, []string{"work", "study"})
	Radial(g, DefaultRadialConfig(), false)
	g.ApplyVisibility(filter.NewActive(map[string][]string{"theme": {"work"}}))

	hidden, _ := g.Node("b")
	before := hidden.Pos
	res := Radial(g, DefaultRadialConfig(), true)
	assert.Equal(t, 3, res.Placed)
	assert.Equal(t, before, hidden.Pos)
}

func TestRadialEmpty(t *testing.T) {
	g := radialGraph(t, []float64{1}, []string{"x"})
	g.ApplyVisibility(filter.NewActive(map[string][]string{"theme": {"none"}}))
	res := Radial(g, DefaultRadialConfig(), true)
	assert.Equal(t, 0, res.Placed)
	assert.True(t, res.HasBounds, "center is still visible")
}

func TestSectorAnglesSpreadUnlisted(t *testing.T) {
	nodes := []*graph.Node{{Sector: "a"}, {Sector: "b"}, {Sector: "a"}, {Sector: "c"}, {Sector: "d"}}
	got := sectorAngles(nodes, []geom.Sector{{Key: "c", BaseAngle: 1}})
	assert.Equal(t, 1.0, got["c"])
	assert.InDelta(t, -math.Pi/2, got["a"], 1e-12)
	assert.InDelta(t, -math.Pi/2+2*math.Pi/3, got["b"], 1e-12)
}

func diagram(t *testing.T, ids []string, edges [][2]string) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, id := range ids {
		n, err := graph.NewNode(graph.Node{ID: id, R: 30})
		require.NoError(t, err)
		require.NoError(t, g.AddNode(n))
	}
	for _, e := range edges {
		_, err := g.Connect(graph.EdgeFlow, e[0], e[1], graph.Style{})
		require.NoError(t, err)
	}
	return g
}

func TestLayeredTopDown(t *testing.T) {
	g := diagram(t, []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}})
	cfg := DefaultLayeredConfig()
	res := Layered(g, cfg, false)
	require.True(t, res.HasBounds)

	a, _ := g.Node("a")
	b, _ := g.Node("b")
	c, _ := g.Node("c")
	d, _ := g.Node("d")
	assert.Less(t, a.Pos.Y, b.Pos.Y)
	assert.Equal(t, b.Pos.Y, c.Pos.Y)
	assert.Less(t, b.Pos.Y, d.Pos.Y)
	assert.InDelta(t, cfg.NodeGap, c.Pos.X-b.Pos.X, 1e-9)
	assert.InDelta(t, 0, a.Pos.X, 1e-9, "single-node layers are centered")
	assert.InDelta(t, 0, a.Pos.Y+d.Pos.Y, 1e-9, "layers are centered on the origin")
}

func TestLayeredBreaksCycles(t *testing.T) {
	g := diagram(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})
	Layered(g, LayeredConfig{Direction: LeftRight, RankGap: 100, NodeGap: 50}, false)
	a, _ := g.Node("a")
	b, _ := g.Node("b")
	c, _ := g.Node("c")
	assert.Less(t, a.Pos.X, b.Pos.X)
	assert.Less(t, b.Pos.X, c.Pos.X)
}

func TestFitContainersNested(t *testing.T) {
	g := diagram(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}})
	require.NoError(t, g.AddContainer(&graph.Container{ID: "inner", Children: []string{"a"}}))
	require.NoError(t, g.AddContainer(&graph.Container{ID: "outer", Children: []string{"inner", "b"}}))
	require.NoError(t, g.AddContainer(&graph.Container{ID: "none", Children: []string{"ghost"}}))
	Layered(g, DefaultLayeredConfig(), false)

	inner, _ := g.Container("inner")
	outer, _ := g.Container("outer")
	none, _ := g.Container("none")
	a, _ := g.Node("a")

	assert.True(t, inner.Rect.Contains(a.Pos))
	assert.True(t, outer.Rect.Contains(inner.Rect.Center()))
	assert.Greater(t, outer.Rect.W, inner.Rect.W)
	assert.True(t, none.Rect.Degenerate())
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, LeftRight, ParseDirection("LR"))
	assert.Equal(t, TopDown, ParseDirection("TB"))
	assert.Equal(t, TopDown, ParseDirection(""))
}
