package anim

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/folio/geom"
)

func TestLoopOrdersTimersAndFrames(t *testing.T) {
	l := NewLoop()
	var got []string

	l.After(30*time.Millisecond, func() { got = append(got, "t30") })
	l.After(10*time.Millisecond, func() { got = append(got, "t10") })
	l.RequestFrame(func(time.Duration) { got = append(got, "frame") })
	l.Post(func() { got = append(got, "post") })

	l.Advance(40 * time.Millisecond)
	assert.Equal(t, []string{"post", "t10", "frame", "t30"}, got)
	assert.Equal(t, 0, l.Pending())
}

func TestLoopCancel(t *testing.T) {
	l := NewLoop()
	fired := false
	h := l.After(5*time.Millisecond, func() { fired = true })
	l.Cancel(h)
	l.Cancel(h)
	l.Advance(20 * time.Millisecond)
	assert.False(t, fired)
}

func TestFramesRequestedInsideFrameRunNextTick(t *testing.T) {
	l := NewLoop()
	count := 0
	var f func(time.Duration)
	f = func(time.Duration) {
		count++
		if count < 3 {
			l.RequestFrame(f)
		}
	}
	l.RequestFrame(f)
	l.Tick(l.Now() + FrameInterval)
	assert.Equal(t, 1, count)
	l.Advance(time.Second)
	assert.Equal(t, 3, count)
}

func TestSlotNewerTaskWins(t *testing.T) {
	l := NewLoop()
	s := l.NewSlot(nil)

	var order []int
	first := s.Start()
	first.After(10*time.Millisecond, func() { order = append(order, 1) })

	second := s.Start()
	second.After(20*time.Millisecond, func() { order = append(order, 2) })

	assert.False(t, first.Valid())
	assert.True(t, second.Valid())

	l.Advance(50 * time.Millisecond)
	assert.Equal(t, []int{2}, order)
	assert.Greater(t, second.Generation(), first.Generation())
}

func TestSlotGuard(t *testing.T) {
	l := NewLoop()
	open := true
	s := l.NewSlot(func() bool { return open })

	fired := false
	task := s.Start()
	task.After(10*time.Millisecond, func() { fired = true })
	open = false

	l.Advance(20 * time.Millisecond)
	assert.False(t, fired, "callback after close is a no-op")
	assert.False(t, task.Valid())
}

func TestStaleGenerationCallbacksNoOp(t *testing.T) {
	l := NewLoop()
	s := l.NewSlot(nil)
	state := 0

	for i := 1; i <= 5; i++ {
		i := i
		task := s.Start()
		task.After(time.Duration(i)*10*time.Millisecond, func() { state = i })
	}
	l.Advance(time.Second)
	assert.Equal(t, 5, state, "only the last invocation mutates state")
}

func TestSlotDropsFiredHandles(t *testing.T) {
	l := NewLoop()
	s := l.NewSlot(nil)
	task := s.Start()

	frames := 0
	var step func(time.Duration)
	step = func(time.Duration) {
		frames++
		if frames < 100 {
			task.Frame(step)
		}
	}
	task.Frame(step)
	task.After(5*time.Millisecond, func() {})
	l.Advance(5 * time.Second)

	assert.Equal(t, 100, frames)
	assert.Empty(t, s.handles)
	assert.Zero(t, l.Pending())
}

func TestEasingEndpoints(t *testing.T) {
	for name, e := range map[string]Easing{
		"quint":  EaseOutQuint,
		"cubic":  EaseInOutCubic,
		"spring": Spring,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 0.0, e(0))
			assert.Equal(t, 1.0, e(1))
		})
	}
}

func TestSpringOvershoots(t *testing.T) {
	peak := 0.0
	for i := 1; i < 100; i++ {
		peak = math.Max(peak, Spring(float64(i)/100))
	}
	assert.Greater(t, peak, 1.0)
	assert.Less(t, peak, 1.2)
}

func TestCubicBezierLinear(t *testing.T) {
	lin := CubicBezier(0.25, 0.25, 0.75, 0.75)
	for _, x := range []float64{0.1, 0.3, 0.5, 0.9} {
		assert.InDelta(t, x, lin(x), 1e-5)
	}
}

func TestTweenReachesExactTarget(t *testing.T) {
	l := NewLoop()
	s := l.NewSlot(nil)
	var last float64
	steps := 0
	done := false

	task := s.Start()
	task.Run(Tween{
		Duration: 200 * time.Millisecond,
		Ease:     Spring,
		Step:     func(p float64) { last = p; steps++ },
		Done:     func() { done = true; task.Done() },
	})
	require.True(t, l.Settle(time.Second))
	assert.True(t, done)
	assert.Equal(t, 1.0, last)
	assert.Greater(t, steps, 5)
	assert.False(t, s.Running())
}

type fakeFader struct {
	opacity float64
	content string
	swaps   int
}

func (f *fakeFader) SetOpacity(o float64)   { f.opacity = o }
func (f *fakeFader) SetContent(html string) { f.content = html; f.swaps++ }

func TestCrossfadeSwapsAtMidpoint(t *testing.T) {
	l := NewLoop()
	f := &fakeFader{opacity: 1, content: "Name"}
	c := NewCrossfade(l, f, 300*time.Millisecond, "Name")

	c.Swap("Whisper")
	l.Advance(100 * time.Millisecond)
	assert.Equal(t, "Name", f.content, "still fading out")
	assert.Less(t, f.opacity, 1.0)

	require.True(t, l.Settle(time.Second))
	assert.Equal(t, "Whisper", f.content)
	assert.Equal(t, 1.0, f.opacity)
	assert.Equal(t, 1, f.swaps)
}

func TestCrossfadeRetriggerKeepsLatest(t *testing.T) {
	l := NewLoop()
	f := &fakeFader{opacity: 1, content: "a"}
	c := NewCrossfade(l, f, 300*time.Millisecond, "a")

	c.Swap("b")
	l.Advance(50 * time.Millisecond)
	c.Swap("c")
	l.Advance(50 * time.Millisecond)
	c.Swap("d")

	require.True(t, l.Settle(2*time.Second))
	assert.Equal(t, "d", f.content)
	assert.Equal(t, "d", c.Content())
	assert.Equal(t, 1.0, f.opacity)
	assert.Equal(t, 1, f.swaps, "intermediate contents never displayed")
}

func TestCrossfadeSameContentIsNoop(t *testing.T) {
	l := NewLoop()
	f := &fakeFader{opacity: 1, content: "x"}
	c := NewCrossfade(l, f, 300*time.Millisecond, "x")
	c.Swap("x")
	assert.False(t, c.Running())
	assert.Equal(t, 0, l.Pending())
}

func TestCrossfadeCancelSnapsToPending(t *testing.T) {
	l := NewLoop()
	f := &fakeFader{opacity: 1, content: "x"}
	c := NewCrossfade(l, f, 300*time.Millisecond, "x")
	c.Swap("y")
	l.Advance(30 * time.Millisecond)
	c.Cancel()
	assert.Equal(t, "y", f.content)
	assert.Equal(t, 1.0, f.opacity)
	l.Advance(time.Second)
	assert.Equal(t, 1, f.swaps)
}

type recordSink struct {
	nodes    map[string]NodeFrame
	paths    map[string]geom.Path
	edgeOpac map[string]float64
}

func newRecordSink() *recordSink {
	return &recordSink{nodes: map[string]NodeFrame{}, paths: map[string]geom.Path{}, edgeOpac: map[string]float64{}}
}

func (r *recordSink) SetNodeFrame(id string, f NodeFrame) { r.nodes[id] = f }
func (r *recordSink) SetEdgePath(id string, p geom.Path)  { r.paths[id] = p }
func (r *recordSink) SetEdgeOpacity(id string, o float64) { r.edgeOpac[id] = o }

func TestPlanEntranceDelays(t *testing.T) {
	cfg := EntranceConfig{MaxDelay: 400 * time.Millisecond, Stagger: 10 * time.Millisecond}
	steps := PlanEntrance(geom.V(0, 0), []EntranceItem{
		{ID: "near", Target: geom.V(100, 0)},
		{ID: "far", Target: geom.V(0, 400)},
		{ID: "mid", Target: geom.V(-200, 0)},
	}, cfg)

	require.Len(t, steps, 3)
	assert.Equal(t, 100*time.Millisecond, steps[0].Delay)
	assert.Equal(t, 410*time.Millisecond, steps[1].Delay)
	assert.Equal(t, 220*time.Millisecond, steps[2].Delay)

	for _, st := range steps {
		assert.Equal(t, 0.3, st.From.Scale)
		assert.Equal(t, 0.0, st.From.Opacity)
		assert.Equal(t, geom.V(0, 0), st.From.Pos)
		assert.Equal(t, 1.0, st.To.Scale)
	}
}

func TestPlayEntranceSettles(t *testing.T) {
	l := NewLoop()
	s := l.NewSlot(nil)
	sink := newRecordSink()
	cfg := EntranceConfig{
		Duration: 300 * time.Millisecond, MaxDelay: 200 * time.Millisecond,
		Stagger: 5 * time.Millisecond, EdgeDelay: 100 * time.Millisecond, EdgeFade: 200 * time.Millisecond,
	}
	steps := PlanEntrance(geom.V(0, 0), []EntranceItem{
		{ID: "a", Target: geom.V(120, 40)},
		{ID: "b", Target: geom.V(-60, 200)},
	}, cfg)

	finished := false
	PlayEntrance(s.Start(), sink, steps, []string{"a-b"}, cfg, func() { finished = true })
	assert.Equal(t, 0.0, sink.nodes["a"].Opacity, "collapsed synchronously")

	require.True(t, l.Settle(2*time.Second))
	assert.True(t, finished)
	assert.Equal(t, Settled(geom.V(120, 40)), sink.nodes["a"])
	assert.Equal(t, Settled(geom.V(-60, 200)), sink.nodes["b"])
	assert.Equal(t, 1.0, sink.edgeOpac["a-b"])
}

func TestTransitionSupersededByNewer(t *testing.T) {
	l := NewLoop()
	s := l.NewSlot(nil)
	sink := newRecordSink()

	p0 := geom.Path{Start: geom.V(0, 0), Control: geom.V(5, 5), End: geom.V(10, 0)}
	p1 := geom.Path{Start: geom.V(0, 10), Control: geom.V(5, 15), End: geom.V(10, 10)}
	p2 := geom.Path{Start: geom.V(0, 20), Control: geom.V(5, 25), End: geom.V(10, 20)}

	PlayTransition(s.Start(), sink,
		[]Move{{ID: "n", From: geom.V(0, 0), To: geom.V(100, 0)}},
		[]EdgeMove{{ID: "e", From: p0, To: p1}}, 300*time.Millisecond, nil)
	l.Advance(100 * time.Millisecond)

	current := sink.nodes["n"].Pos
	PlayTransition(s.Start(), sink,
		[]Move{{ID: "n", From: current, To: geom.V(0, 50)}},
		[]EdgeMove{{ID: "e", From: sink.paths["e"], To: p2}}, 300*time.Millisecond, nil)

	require.True(t, l.Settle(time.Second))
	assert.Equal(t, geom.V(0, 50), sink.nodes["n"].Pos)
	assert.Equal(t, p2, sink.paths["e"])
}

func TestCrossfadeRepeatedSwapDoesNotRestart(t *testing.T) {
	l := NewLoop()
	f := &fakeFader{opacity: 1, content: "x"}
	c := NewCrossfade(l, f, 300*time.Millisecond, "x")
	c.Swap("y")
	gen := c.slot.Generation()
	for i := 0; i < 5; i++ {
		l.Advance(20 * time.Millisecond)
		c.Swap("y")
	}
	assert.Equal(t, gen, c.slot.Generation(), "same target keeps the running fade")
	assert.Equal(t, "y", c.Pending())
	require.True(t, l.Settle(time.Second))
	assert.Equal(t, "y", f.content)
}
