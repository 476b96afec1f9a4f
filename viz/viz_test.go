package viz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/folio/am"
	"github.com/teranos/folio/anim"
	"github.com/teranos/folio/camera"
	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/filter"
	"github.com/teranos/folio/graph"
	"github.com/teranos/folio/layout"
	"github.com/teranos/folio/render"
	"github.com/teranos/folio/source"
)

const settle = 10 * time.Second

type gated struct {
	ready bool
	ds    source.Dataset
	calls int
}

func (g *gated) Snapshot() (source.Dataset, bool) {
	g.calls++
	return g.ds, g.ready
}

// fourNodes builds a center with two nodes in each of the categories x and y.
type fourNodes struct{ builds int }

func (f *fourNodes) Name() string { return "four" }

func (f *fourNodes) Build(ds source.Dataset, cfg *am.Config) (*Build, error) {
	f.builds++
	g := graph.New()
	center, err := graph.NewHub(graph.Hub{ID: "me", Label: "me", R: graph.DefaultCenterRadius})
	if err != nil {
		return nil, err
	}
	if err := g.SetCenter(center); err != nil {
		return nil, err
	}
	for i, tc := range []struct{ id, cat, whisper string }{
		{"a", "x", ""}, {"b", "x", "psst"}, {"c", "y", ""}, {"d", "y", ""},
	} {
		n, err := graph.NewNode(graph.Node{
			ID:      tc.id,
			Whisper: tc.whisper,
			Classes: filter.Classification{"k": {tc.cat}},
			Sector:  tc.cat,
			Weight:  float64(i + 1),
			Order:   float64(i),
		})
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
		if _, err := g.Connect(graph.EdgeStructural, "me", n.ID, graph.Style{Width: 1}); err != nil {
			return nil, err
		}
	}
	axis, err := filter.NewAxis("k", []string{"x", "y"})
	if err != nil {
		return nil, err
	}
	rc := cfg.Radial()
	run := func(g *graph.Graph, visibleOnly bool) layout.Result { return layout.Radial(g, rc, visibleOnly) }
	run(g, false)
	g.Finalize()
	return &Build{Title: ds.Name, Graph: g, Axes: []*filter.Axis{axis}, Layout: run}, nil
}

func newInstance(t *testing.T, ready bool) (*Instance, *gated, *anim.Loop) {
	t.Helper()
	loop := anim.NewLoop()
	src := &gated{ready: ready, ds: source.Dataset{Name: "demo"}}
	inst := New(&fourNodes{}, src, nil, loop)
	inst.SetViewport(800, 600)
	return inst, src, loop
}

func openSettled(t *testing.T) (*Instance, *anim.Loop) {
	t.Helper()
	inst, _, loop := newInstance(t, true)
	inst.Open()
	require.True(t, inst.Built())
	require.True(t, loop.Settle(settle))
	return inst, loop
}

func TestOpenPollsUntilReady(t *testing.T) {
	inst, src, loop := newInstance(t, false)
	inst.Open()
	assert.False(t, inst.Built())

	loop.Advance(350 * time.Millisecond)
	assert.False(t, inst.Built())
	assert.GreaterOrEqual(t, src.calls, 3)

	src.ready = true
	loop.Advance(150 * time.Millisecond)
	assert.True(t, inst.Built())
	assert.Equal(t, "demo", inst.Title())
}

func TestCloseStopsPolling(t *testing.T) {
	inst, src, loop := newInstance(t, false)
	inst.Open()
	loop.Advance(250 * time.Millisecond)
	inst.Close()
	calls := src.calls

	src.ready = true
	loop.Advance(time.Second)
	assert.Equal(t, calls, src.calls)
	assert.False(t, inst.Built())
	assert.Zero(t, loop.Pending())
}

func TestOpenCloseIsIdempotent(t *testing.T) {
	inst, loop := openSettled(t)
	b := inst.builder.(*fourNodes)
	n := inst.Document().Len()
	assert.Equal(t, 4, inst.Document().Count(render.KindNode))
	assert.Equal(t, 1, inst.Document().Count(render.KindHub))
	assert.Equal(t, 4, inst.Document().Count(render.KindEdge))

	inst.Open()
	assert.Equal(t, 1, b.builds)

	inst.Close()
	inst.Close()
	assert.False(t, inst.IsOpen())
	assert.Equal(t, 2, inst.Document().Len())
	assert.True(t, loop.Settle(settle))

	inst.Open()
	require.True(t, loop.Settle(settle))
	assert.Equal(t, 2, b.builds)
	assert.Equal(t, n, inst.Document().Len())
	assert.Equal(t, 4, inst.Document().Count(render.KindNode))
}

func TestEntranceSettlesOnTargets(t *testing.T) {
	inst, _ := openSettled(t)
	assert.False(t, inst.Animating())
	for _, n := range inst.Graph().Nodes {
		f, ok := inst.Frame(NodeElementID(n.ID))
		require.True(t, ok, n.ID)
		assert.Equal(t, anim.Settled(n.Pos), f, n.ID)
	}
}

func TestInitialFitFramesEverything(t *testing.T) {
	inst, _ := openSettled(t)
	world, ok := inst.Graph().VisibleBounds()
	require.True(t, ok)
	opts := inst.Camera().Options()
	want, ok := camera.FitTarget(world, 800, 600, opts.FitPadding, opts.MinScale, opts.MaxScale)
	require.True(t, ok)
	assert.Equal(t, want, *inst.Transform())
}

func TestDynamicFilterRelayoutsAndRefits(t *testing.T) {
	inst, loop := openSettled(t)
	require.Equal(t, filter.Dynamic, inst.Mode())

	require.NoError(t, inst.Click("k", "x"))
	require.True(t, loop.Settle(settle))

	g := inst.Graph()
	for _, n := range g.Nodes {
		el, _ := inst.Document().Get(NodeElementID(n.ID))
		assert.Equal(t, n.Sector == "y", el.HasClass("hidden"), n.ID)
		if !n.Hidden {
			f, _ := inst.Frame(NodeElementID(n.ID))
			assert.Equal(t, anim.Settled(n.Pos), f, n.ID)
		}
	}

	world, ok := g.VisibleBounds()
	require.True(t, ok)
	opts := inst.Camera().Options()
	want, _ := camera.FitTarget(world, 800, 600, opts.FitPadding, opts.MinScale, opts.MaxScale)
	assert.Equal(t, want, *inst.Transform())

	hint, _ := inst.Document().Get(HintID)
	assert.Equal(t, "2 of 4 visible", hint.Content)
	assert.Equal(t, "1.0000", hint.Style["opacity"])
}

func TestStaticModeKeepsPositions(t *testing.T) {
	inst, _, loop := newInstance(t, true)
	require.NoError(t, inst.SetMode(filter.Static))
	inst.Open()
	require.True(t, loop.Settle(settle))
	before := make(map[string]graph.Node)
	for _, n := range inst.Graph().Nodes {
		before[n.ID] = *n
	}
	transform := *inst.Transform()

	require.NoError(t, inst.Click("k", "y"))
	require.True(t, loop.Settle(settle))

	for _, n := range inst.Graph().Nodes {
		assert.Equal(t, before[n.ID].Pos, n.Pos, n.ID)
	}
	assert.Equal(t, transform, *inst.Transform())
	el, _ := inst.Document().Get(ModeElementID(filter.Static))
	assert.True(t, el.HasClass("active"))
}

func TestSwitchingToStaticRestoresFirstPlacement(t *testing.T) {
	inst, loop := openSettled(t)
	initial := make(map[string]graph.Node)
	for _, n := range inst.Graph().Nodes {
		initial[n.ID] = *n
	}

	require.NoError(t, inst.Click("k", "x"))
	require.True(t, loop.Settle(settle))
	require.NoError(t, inst.SetMode(filter.Static))
	require.True(t, loop.Settle(settle))

	assert.Equal(t, filter.Static, inst.Mode())
	for _, n := range inst.Graph().Nodes {
		assert.Equal(t, initial[n.ID].Pos, n.Pos, n.ID)
		if !n.Hidden {
			f, _ := inst.Frame(NodeElementID(n.ID))
			assert.Equal(t, anim.Settled(n.Pos), f, n.ID)
		}
	}
}

func TestLatestHintWins(t *testing.T) {
	inst, loop := openSettled(t)
	require.NoError(t, inst.Click("k", "x"))
	loop.Advance(50 * time.Millisecond)
	require.NoError(t, inst.Click("k", ""))
	require.True(t, loop.Settle(settle))

	hint, _ := inst.Document().Get(HintID)
	assert.Equal(t, "4 of 4 visible", hint.Content)
}

func TestWhisperFollowsZoomAndHover(t *testing.T) {
	inst, loop := openSettled(t)
	text, ok := inst.LabelText("b")
	require.True(t, ok)
	assert.Equal(t, "b", text)

	inst.Camera().Jump(camera.Transform{Scale: 2})
	text, _ = inst.LabelText("b")
	assert.Equal(t, "psst", text)
	require.True(t, loop.Settle(settle))
	label, _ := inst.Document().Get(LabelElementID("b"))
	assert.Equal(t, "psst", label.Content)

	inst.Camera().Jump(camera.Transform{Scale: 1})
	text, _ = inst.LabelText("b")
	assert.Equal(t, "b", text)

	require.NoError(t, inst.Hover(NodeElementID("b"), true))
	text, _ = inst.LabelText("b")
	assert.Equal(t, "psst", text)
	el, _ := inst.Document().Get(NodeElementID("b"))
	assert.True(t, el.HasClass("hover"))

	require.NoError(t, inst.Hover("b", false))
	text, _ = inst.LabelText("b")
	assert.Equal(t, "b", text)

	assert.True(t, errors.Is(inst.Hover("zz", true), errors.ErrNotFound))
}

func TestTourGoesStale(t *testing.T) {
	t.Run("newer tour", func(t *testing.T) {
		inst, loop := openSettled(t)
		require.NoError(t, inst.Tour([]string{"a", "b"}, time.Second))
		gen := inst.TourGeneration()
		require.NoError(t, inst.Tour([]string{"c"}, time.Second))
		assert.NotEqual(t, gen, inst.TourGeneration())
		assert.True(t, inst.Touring())
		require.True(t, loop.Settle(settle))
		assert.False(t, inst.Touring())
	})

	t.Run("user pan", func(t *testing.T) {
		inst, loop := openSettled(t)
		require.NoError(t, inst.Tour([]string{"a", "b", "c"}, time.Second))
		loop.Advance(100 * time.Millisecond)
		inst.Camera().Pan(10, 0)
		assert.False(t, inst.Touring())
		transform := *inst.Transform()
		loop.Advance(3 * time.Second)
		assert.Equal(t, transform, *inst.Transform())
	})

	t.Run("close", func(t *testing.T) {
		inst, loop := openSettled(t)
		require.NoError(t, inst.Tour([]string{"a"}, time.Second))
		inst.Close()
		assert.False(t, inst.Touring())
		assert.True(t, loop.Settle(settle))
	})

	t.Run("no stops", func(t *testing.T) {
		inst, _ := openSettled(t)
		assert.True(t, errors.Is(inst.Tour([]string{"nope"}, time.Second), errors.ErrNotFound))
	})
}

func TestFocus(t *testing.T) {
	inst, loop := openSettled(t)
	require.NoError(t, inst.Focus("a"))
	require.True(t, loop.Settle(settle))

	assert.True(t, errors.Is(inst.Focus("zz"), errors.ErrNotFound))

	require.NoError(t, inst.Click("k", "x"))
	assert.True(t, errors.Is(inst.Focus("c"), errors.ErrInvalidRequest))
}

func TestNotReadyAndClosed(t *testing.T) {
	inst, _, _ := newInstance(t, false)
	assert.True(t, errors.Is(inst.Click("k", "x"), errors.ErrClosed))

	inst.Open()
	assert.True(t, errors.Is(inst.Click("k", "x"), errors.ErrNotReady))
	assert.True(t, errors.Is(inst.Focus("a"), errors.ErrNotReady))
	assert.Error(t, inst.SetMode("sideways"))
}

func TestGraphID(t *testing.T) {
	id, ok := GraphID(NodeElementID("a:b"))
	assert.True(t, ok)
	assert.Equal(t, "a:b", id)
	_, ok = GraphID(EdgeElementID("x"))
	assert.False(t, ok)
	assert.Equal(t, "b:k:*", ButtonElementID("k", ""))
}
