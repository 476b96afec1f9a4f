package graph

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/filter"
	"github.com/teranos/folio/geom"
)

func TestNewNodeRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		node Node
		ok   bool
	}{
		{"valid", Node{ID: "a", Weight: 3}, true},
		{"missing id", Node{Weight: 3}, false},
		{"negative weight", Node{ID: "a", Weight: -1}, false},
		{"nan weight", Node{ID: "a", Weight: math.NaN()}, false},
		{"inf order", Node{ID: "a", Order: math.Inf(1)}, false},
		{"nan position", Node{ID: "a", Pos: geom.V(math.NaN(), 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNode(tt.node)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, n.ID, n.Label, "label defaults to id")
				return
			}
			assert.True(t, errors.Is(err, errors.ErrInvalidNode), "got %v", err)
		})
	}
}

func TestNewNodeCopiesClasses(t *testing.T) {
	classes := filter.Classification{"theme": {"work"}}
	n, err := NewNode(Node{ID: "a", Classes: classes})
	require.NoError(t, err)
	classes["theme"][0] = "mutated"
	assert.Equal(t, []string{"work"}, n.Classes["theme"])
}

func TestNewHubAndEdge(t *testing.T) {
	_, err := NewHub(Hub{ID: "h"})
	assert.True(t, errors.Is(err, errors.ErrInvalidNode), "zero radius")

	h, err := NewHub(Hub{ID: "h", R: 40})
	require.NoError(t, err)
	n, err := NewNode(Node{ID: "n", Pos: geom.V(100, 0), R: 10})
	require.NoError(t, err)

	_, err = NewEdge("", EdgeStructural, h, nil, Style{})
	assert.True(t, errors.Is(err, errors.ErrInvalidNode))
	_, err = NewEdge("", EdgeStructural, h, h, Style{})
	assert.True(t, errors.Is(err, errors.ErrInvalidNode))

	e, err := NewEdge("", "", h, n, Style{})
	require.NoError(t, err)
	assert.Equal(t, "h->n", e.ID)
	assert.Equal(t, EdgeStructural, e.Kind)
	assert.Equal(t, defaultEdgeWidth, e.Style.Width)

	p, ok := e.Path()
	require.True(t, ok)
	assert.InDelta(t, 40, p.Start.X, 1e-9)
	assert.InDelta(t, 90, p.End.X, 1e-9)

	n.Pos = geom.V(200, 0)
	p, _ = e.Path()
	assert.InDelta(t, 190, p.End.X, 1e-9, "edges follow their endpoints by reference")

	n.Pos = geom.V(30, 0)
	p, ok = e.Path()
	require.True(t, ok, "overlapping circles still produce a path")
	assert.Greater(t, p.Start.X, p.End.X)

	n.Pos = h.Pos
	_, ok = e.Path()
	assert.False(t, ok, "coincident centers")
}

func buildSample(t *testing.T) *Graph {
	t.Helper()
	g := New()
	center, err := NewHub(Hub{ID: "me", R: 50})
	require.NoError(t, err)
	require.NoError(t, g.SetCenter(center))

	hub, err := NewHub(Hub{ID: "deck", R: 30, Pos: geom.V(200, 0)})
	require.NoError(t, err)
	require.NoError(t, g.AddHub(hub))

	for i, tc := range []struct {
		id, theme string
	}{{"a", "work"}, {"b", "study"}, {"c", "work"}} {
		n, err := NewNode(Node{
			ID:      tc.id,
			Classes: filter.Classification{"theme": {tc.theme}},
			Pos:     geom.V(300, float64(i*100)),
			R:       20,
			Parent:  "deck",
		})
		require.NoError(t, err)
		require.NoError(t, g.AddNode(n))
		_, err = g.Connect(EdgeStructural, "deck", tc.id, Style{})
		require.NoError(t, err)
	}
	_, err = g.Connect(EdgeStructural, "me", "deck", Style{})
	require.NoError(t, err)
	_, err = g.Connect(EdgeThread, "a", "c", Style{Bend: 0.2, Dashed: true})
	require.NoError(t, err)
	return g
}

func TestGraphRegistration(t *testing.T) {
	g := buildSample(t)

	dup, _ := NewNode(Node{ID: "a"})
	assert.True(t, errors.Is(g.AddNode(dup), errors.ErrInvalidNode))

	_, err := g.Connect(EdgeStructural, "a", "ghost", Style{})
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	again, err := g.Connect(EdgeStructural, "deck", "a", Style{})
	require.NoError(t, err)
	assert.Len(t, g.Edges, 5, "connect is idempotent")
	assert.Equal(t, "deck->a", again.ID)

	_, ok := g.Node("deck")
	assert.False(t, ok)
	_, ok = g.Hub("deck")
	assert.True(t, ok)
	assert.Equal(t, []string{"c", "deck"}, g.Neighbors("a"))
}

func TestApplyVisibility(t *testing.T) {
	g := buildSample(t)

	visible := g.ApplyVisibility(filter.NewActive(map[string][]string{"theme": {"study"}}))
	assert.Equal(t, 1, visible)

	a, _ := g.Node("a")
	b, _ := g.Node("b")
	assert.True(t, a.Hidden)
	assert.False(t, b.Hidden)

	hub, _ := g.Hub("deck")
	assert.False(t, hub.Hidden, "hub keeps a visible child")
	assert.Equal(t, 1, g.Meta.Stats.VisibleNodes)
	assert.Equal(t, 2, g.Meta.Stats.VisibleEdges, "me->deck and deck->b")

	g.ApplyVisibility(filter.NewActive(map[string][]string{"theme": {"none"}}))
	assert.True(t, hub.Hidden, "hub with no visible child hides")
	assert.Empty(t, g.VisibleNodes())

	_, ok := g.BoundsOfIDs([]string{"a", "b"})
	assert.False(t, ok)

	g.ShowAll()
	assert.Len(t, g.VisibleNodes(), 3)
}

func TestVisibleBounds(t *testing.T) {
	g := New()
	_, ok := g.VisibleBounds()
	assert.False(t, ok, "empty graph has nothing to fit")

	g = buildSample(t)
	r, ok := g.VisibleBounds()
	require.True(t, ok)
	assert.InDelta(t, -50, r.X, 1e-9)
	assert.InDelta(t, -50, r.Y, 1e-9)
	assert.InDelta(t, 370, r.W, 1e-9)
	assert.InDelta(t, 270, r.H, 1e-9)
}

func TestEdgeGraphAndResolution(t *testing.T) {
	g := buildSample(t)
	require.NoError(t, g.AddContainer(&Container{ID: "box", Children: []string{"b"}}))
	assert.Error(t, g.AddContainer(&Container{ID: "box"}))

	v := filter.Resolve(g.EdgeGraph(), filter.NewActive(map[string][]string{"theme": {"study"}}))
	n := g.ApplyResolution(v)
	assert.Equal(t, 1, n)
	box, _ := g.Container("box")
	assert.False(t, box.Hidden)
}

func TestFinalizeAndSnapshot(t *testing.T) {
	g := buildSample(t)
	g.Finalize()
	require.Len(t, g.Meta.Categories, 2)
	assert.Equal(t, CategoryInfo{Axis: "theme", Category: "study", Count: 1}, g.Meta.Categories[0])
	assert.Equal(t, CategoryInfo{Axis: "theme", Category: "work", Count: 2}, g.Meta.Categories[1])
	assert.Equal(t, 3, g.Meta.Stats.TotalNodes)

	snap := g.Snapshot()
	require.NotNil(t, snap.Center)
	require.NotNil(t, snap.Bounds)
	require.Len(t, snap.Edges, 5)
	assert.Equal(t, "thread:a->c", snap.Edges[4].ID)
	require.NotNil(t, snap.Edges[4].Path)

	snap.Nodes[0].Pos = geom.V(-1, -1)
	a, _ := g.Node("a")
	assert.NotEqual(t, geom.V(-1, -1), a.Pos, "snapshot is a copy")

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"from":"me"`)
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "simple"},
		{"UPPERCASE", "uppercase"},
		{"with-dash", "with-dash"},
		{"with spaces", "with_spaces"},
		{"special@chars#here", "special_chars_here"},
		{"  padded ", "padded"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeID(tt.input); got != tt.expected {
			t.Errorf("NormalizeID(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
