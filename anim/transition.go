package anim

import (
	"time"

	"github.com/teranos/folio/geom"
)

// Move repositions one node.
type Move struct {
	ID   string
	From geom.Vec
	To   geom.Vec
}

// EdgeMove re-routes one edge. Paths are interpolated point by point.
type EdgeMove struct {
	ID   string
	From geom.Path
	To   geom.Path
}

// PlayTransition moves nodes and edges to new targets in lock-step under one
// spring-eased parameter, integrated frame by frame. Nodes keep full scale and
// opacity while moving.
func PlayTransition(task *Task, sink Sink, moves []Move, edges []EdgeMove, d time.Duration, done func()) {
	task.Run(Tween{
		Duration: d,
		Ease:     Spring,
		Step: func(p float64) {
			if p == 1 {
				for _, m := range moves {
					sink.SetNodeFrame(m.ID, Settled(m.To))
				}
				for _, e := range edges {
					sink.SetEdgePath(e.ID, e.To)
				}
				return
			}
			for _, m := range moves {
				sink.SetNodeFrame(m.ID, Settled(m.From.Lerp(m.To, p)))
			}
			for _, e := range edges {
				sink.SetEdgePath(e.ID, geom.LerpPath(e.From, e.To, p))
			}
		},
		Done: func() {
			task.Done()
			if done != nil {
				done()
			}
		},
	})
}
