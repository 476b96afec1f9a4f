package anim

import "time"

// Fader is an element whose content can be crossfaded: hint labels, node labels
// and whispers.
type Fader interface {
	SetOpacity(o float64)
	SetContent(html string)
}

// Crossfade swaps a Fader's content by fading to 0, replacing the content at the
// midpoint, and fading back to 1. A Swap issued while another is in flight tears
// the old one down and continues from the current opacity, so the latest content
// always ends up displayed.
type Crossfade struct {
	slot     *Slot
	target   Fader
	duration time.Duration
	opacity  float64
	content  string
	pending  string
}

// NewCrossfade binds a crossfade to target. The target is assumed fully visible
// with the given initial content.
func NewCrossfade(loop *Loop, target Fader, duration time.Duration, initial string) *Crossfade {
	return &Crossfade{
		slot:     loop.NewSlot(nil),
		target:   target,
		duration: duration,
		opacity:  1,
		content:  initial,
		pending:  initial,
	}
}

// Swap crossfades to content. Swapping to the content already shown, or to the
// content a running crossfade is heading for, does nothing.
func (c *Crossfade) Swap(content string) {
	if content == c.pending && (c.slot.Running() || (content == c.content && c.opacity == 1)) {
		return
	}
	c.pending = content
	task := c.slot.Start()
	half := c.duration / 2
	from := c.opacity

	fadeIn := func(start float64) {
		task.Run(Tween{
			Duration: time.Duration(float64(half) * (1 - start)),
			Ease:     EaseInOutCubic,
			Step:     func(p float64) { c.set(start + (1-start)*p) },
			Done:     task.Done,
		})
	}

	if c.content == content {
		// already swapped by an earlier, cancelled run: just fade back in
		fadeIn(from)
		return
	}

	outDur := time.Duration(float64(half) * from)
	task.Run(Tween{
		Duration: outDur,
		Ease:     EaseInOutCubic,
		Step:     func(p float64) { c.set(from * (1 - p)) },
		Done: func() {
			c.content = content
			c.target.SetContent(content)
			fadeIn(0)
		},
	})
}

// Cancel stops any in-flight crossfade and snaps to the pending content at full
// opacity.
func (c *Crossfade) Cancel() {
	c.slot.Cancel()
	if c.content != c.pending {
		c.content = c.pending
		c.target.SetContent(c.pending)
	}
	c.set(1)
}

// Pending returns the content the crossfade ends on.
func (c *Crossfade) Pending() string { return c.pending }

// Content returns the content currently displayed.
func (c *Crossfade) Content() string { return c.content }

// Opacity returns the current opacity.
func (c *Crossfade) Opacity() float64 { return c.opacity }

// Running reports whether a crossfade is in flight.
func (c *Crossfade) Running() bool { return c.slot.Running() }

func (c *Crossfade) set(o float64) {
	c.opacity = o
	c.target.SetOpacity(o)
}
