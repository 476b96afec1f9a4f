package anim

import (
	"time"

	"github.com/teranos/folio/geom"
)

// NodeFrame is the animated visual state of one node.
type NodeFrame struct {
	Pos     geom.Vec `json:"pos"`
	Scale   float64  `json:"scale"`
	Opacity float64  `json:"opacity"`
}

// Settled is the resting frame at p.
func Settled(p geom.Vec) NodeFrame { return NodeFrame{Pos: p, Scale: 1, Opacity: 1} }

// Sink receives animated values. Render surfaces implement it.
type Sink interface {
	SetNodeFrame(id string, f NodeFrame)
	SetEdgePath(id string, p geom.Path)
	SetEdgeOpacity(id string, o float64)
}

// EntranceConfig tunes the radiating reveal.
type EntranceConfig struct {
	Duration   time.Duration // per-node motion
	MaxDelay   time.Duration // delay of the farthest node
	Stagger    time.Duration // extra delay per index
	EdgeDelay  time.Duration // edges start fading this long after the first node moves
	EdgeFade   time.Duration
	StartScale float64 // 0 means 0.3
}

// Stock durations for the reveal, re-layout and label animations.
const (
	DefaultTransition = 600 * time.Millisecond
	DefaultCrossfade  = 320 * time.Millisecond
)

// DefaultEntranceConfig returns the stock reveal tuning.
func DefaultEntranceConfig() EntranceConfig {
	return EntranceConfig{
		Duration:  900 * time.Millisecond,
		MaxDelay:  600 * time.Millisecond,
		Stagger:   25 * time.Millisecond,
		EdgeDelay: 250 * time.Millisecond,
		EdgeFade:  500 * time.Millisecond,
	}
}

// EntranceItem is a node to reveal.
type EntranceItem struct {
	ID     string
	Target geom.Vec
}

// EntranceStep is the planned reveal of one node.
type EntranceStep struct {
	ID    string
	Delay time.Duration
	From  NodeFrame
	To    NodeFrame
}

// PlanEntrance computes every node's reveal: it starts collapsed at center and
// lands on its target after
//
//	delay = (dist/maxDist)*MaxDelay + index*Stagger
//
// The plan is a pure function of its inputs.
func PlanEntrance(center geom.Vec, items []EntranceItem, cfg EntranceConfig) []EntranceStep {
	startScale := cfg.StartScale
	if startScale == 0 {
		startScale = 0.3
	}

	maxDist := 0.0
	for _, it := range items {
		if d := it.Target.Dist(center); d > maxDist {
			maxDist = d
		}
	}

	steps := make([]EntranceStep, 0, len(items))
	for i, it := range items {
		ratio := 0.0
		if maxDist > 0 {
			ratio = it.Target.Dist(center) / maxDist
		}
		delay := time.Duration(ratio*float64(cfg.MaxDelay)) + time.Duration(i)*cfg.Stagger
		steps = append(steps, EntranceStep{
			ID:    it.ID,
			Delay: delay,
			From:  NodeFrame{Pos: center, Scale: startScale, Opacity: 0},
			To:    Settled(it.Target),
		})
	}
	return steps
}

// PlayEntrance runs a planned entrance on task. Every node is put in its From
// frame synchronously, so the first rendered frame is already collapsed. Edges
// (at their final paths) fade in on their own ease-in-out timer. done runs once
// everything has settled.
func PlayEntrance(task *Task, sink Sink, steps []EntranceStep, edges []string, cfg EntranceConfig, done func()) {
	remaining := len(steps) + len(edges)
	finish := func() {
		remaining--
		if remaining == 0 {
			task.Done()
			if done != nil {
				done()
			}
		}
	}
	if remaining == 0 {
		task.Done()
		if done != nil {
			done()
		}
		return
	}

	for _, id := range edges {
		sink.SetEdgeOpacity(id, 0)
	}
	for _, st := range steps {
		sink.SetNodeFrame(st.ID, st.From)
	}

	for _, st := range steps {
		st := st
		task.Run(Tween{
			Delay:    st.Delay,
			Duration: cfg.Duration,
			Ease:     Spring,
			Step: func(p float64) {
				if p == 1 {
					sink.SetNodeFrame(st.ID, st.To)
					return
				}
				sink.SetNodeFrame(st.ID, NodeFrame{
					Pos:     st.From.Pos.Lerp(st.To.Pos, p),
					Scale:   geom.Lerp(st.From.Scale, st.To.Scale, p),
					Opacity: geom.Clamp(geom.Lerp(st.From.Opacity, st.To.Opacity, p), 0, 1),
				})
			},
			Done: finish,
		})
	}

	for _, id := range edges {
		id := id
		task.Run(Tween{
			Delay:    cfg.EdgeDelay,
			Duration: cfg.EdgeFade,
			Ease:     EaseInOutCubic,
			Step:     func(p float64) { sink.SetEdgeOpacity(id, p) },
			Done:     finish,
		})
	}
}
