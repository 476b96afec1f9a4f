package anim

import "time"

// Tween describes one eased value animation run by a Task.
type Tween struct {
	Delay    time.Duration
	Duration time.Duration
	Ease     Easing          // nil means linear
	Step     func(p float64) // receives eased progress; last call is Step(1)
	Done     func()          // optional, after the final Step
}

// Run starts the tween on the task's frames. A zero or negative duration jumps
// straight to the final step on the first frame after the delay.
func (t *Task) Run(tw Tween) {
	ease := tw.Ease
	if ease == nil {
		ease = func(p float64) float64 { return p }
	}
	start := t.Loop().Now() + tw.Delay

	var step func(now time.Duration)
	step = func(now time.Duration) {
		if now < start {
			t.Frame(step)
			return
		}
		raw := 1.0
		if tw.Duration > 0 {
			raw = float64(now-start) / float64(tw.Duration)
		}
		if raw >= 1 {
			tw.Step(1)
			if tw.Done != nil {
				tw.Done()
			}
			return
		}
		tw.Step(ease(raw))
		t.Frame(step)
	}
	t.Frame(step)
}
