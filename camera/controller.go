package camera

import (
	"math"
	"time"

	"github.com/teranos/folio/anim"
	"github.com/teranos/folio/geom"
	"go.uber.org/zap"
)

// Renderer applies the world transform. transition > 0 asks the surface for an
// eased CSS-level transition of that length instead of an immediate jump.
type Renderer interface {
	ApplyTransform(t Transform, transition time.Duration)
}

// BoundsFunc supplies the current pan limits. ok is false before the first layout.
type BoundsFunc func() (Bounds, bool)

// Options tunes one controller. The overshoot multipliers and durations are
// tuned by feel; they are configuration, not behavior.
type Options struct {
	MinScale        float64
	MaxScale        float64
	OvershootOut    float64       // scale multiplier past MinScale while stretching
	OvershootIn     float64       // scale multiplier past MaxScale while stretching
	OvershootHold   time.Duration // how long the stretch is held before settling
	Settle          time.Duration // spring back to the limit
	Bounce          time.Duration // bounds bounce-back transition
	FitDuration     time.Duration
	FitPadding      float64
	RubberBand      bool
	RubberBandLimit float64 // max screen pixels a drag may stretch past a bound
	WheelStep       float64 // zoom factor per wheel notch
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		MinScale:        0.2,
		MaxScale:        4,
		OvershootOut:    0.92,
		OvershootIn:     1.06,
		OvershootHold:   80 * time.Millisecond,
		Settle:          260 * time.Millisecond,
		Bounce:          300 * time.Millisecond,
		FitDuration:     700 * time.Millisecond,
		FitPadding:      60,
		RubberBandLimit: 120,
		WheelStep:       1.1,
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithOptions replaces the controller tuning.
func WithOptions(o Options) Option { return func(c *Controller) { c.opts = o } }

// WithBounds installs the pan-limit supplier used by bounce-back and rubber-banding.
func WithBounds(fn BoundsFunc) Option { return func(c *Controller) { c.bounds = fn } }

// WithLogger sets the controller logger.
func WithLogger(l *zap.SugaredLogger) Option { return func(c *Controller) { c.logger = l } }

// Controller owns pan, zoom, bounce-back and camera fits for one viewport.
type Controller struct {
	t      *Transform
	loop   *anim.Loop
	render Renderer
	opts   Options
	bounds BoundsFunc
	logger *zap.SugaredLogger

	// motion drives the transform over time (fits and zoom settles); a newer
	// request always replaces the older one.
	motion *anim.Slot

	vw, vh float64

	dragging   bool
	rawX, rawY float64
	lastPoint  geom.Vec

	pinching  bool
	pinchDist float64

	onInput  func()
	onChange func(Transform)
}

// New binds a controller to a shared transform.
func New(t *Transform, loop *anim.Loop, r Renderer, opts ...Option) *Controller {
	c := &Controller{
		t:      t,
		loop:   loop,
		render: r,
		opts:   DefaultOptions(),
		logger: zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.t.Scale == 0 {
		c.t.Scale = 1
	}
	c.motion = loop.NewSlot(nil)
	return c
}

// Transform returns the shared transform.
func (c *Controller) Transform() *Transform { return c.t }

// Options returns the controller tuning.
func (c *Controller) Options() Options { return c.opts }

// SetViewport records the viewport size used by Fit.
func (c *Controller) SetViewport(w, h float64) { c.vw, c.vh = w, h }

// Viewport returns the recorded viewport size.
func (c *Controller) Viewport() (float64, float64) { return c.vw, c.vh }

// OnUserInput registers a callback fired on every pan, zoom or touch gesture.
func (c *Controller) OnUserInput(fn func()) { c.onInput = fn }

// OnChange registers a callback fired after every transform update.
func (c *Controller) OnChange(fn func(Transform)) { c.onChange = fn }

// Animating reports whether a fit or zoom settle is in flight.
func (c *Controller) Animating() bool { return c.motion.Running() }

// Cancel stops any fit or settle in flight, leaving the transform where it is.
func (c *Controller) Cancel() { c.motion.Cancel() }

func (c *Controller) userInput() {
	if c.onInput != nil {
		c.onInput()
	}
}

func (c *Controller) apply(transition time.Duration) {
	c.render.ApplyTransform(*c.t, transition)
	if c.onChange != nil {
		c.onChange(*c.t)
	}
}

// Pan moves the camera by a screen-space delta and re-renders immediately. While
// a rubber-band drag is active, excursions past the bounds are damped rather than
// clamped; the hard clamp happens on release.
func (c *Controller) Pan(dx, dy float64) {
	c.userInput()
	c.motion.Cancel()

	if c.dragging && c.opts.RubberBand {
		c.rawX += dx
		c.rawY += dy
		if b, ok := c.currentBounds(); ok {
			c.t.X = rubber(c.rawX, b.MinX, b.MaxX, c.opts.RubberBandLimit)
			c.t.Y = rubber(c.rawY, b.MinY, b.MaxY, c.opts.RubberBandLimit)
		} else {
			c.t.X, c.t.Y = c.rawX, c.rawY
		}
	} else {
		c.t.X += dx
		c.t.Y += dy
	}
	c.apply(0)
}

// BeginDrag starts a pointer drag at screen point p.
func (c *Controller) BeginDrag(p geom.Vec) {
	c.userInput()
	c.motion.Cancel()
	c.dragging = true
	c.rawX, c.rawY = c.t.X, c.t.Y
	c.lastPoint = p
}

// DragTo continues a pointer drag.
func (c *Controller) DragTo(p geom.Vec) {
	if !c.dragging {
		return
	}
	d := p.Sub(c.lastPoint)
	c.lastPoint = p
	c.Pan(d.X, d.Y)
}

// EndDrag releases a drag and bounces back into bounds.
func (c *Controller) EndDrag() {
	if !c.dragging {
		return
	}
	c.dragging = false
	c.BounceBackIfNeeded()
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// Zoom multiplies the scale by factor around a screen pivot, keeping the world
// point under the pivot fixed:
//
//	newX = px - (scaleNew/scaleOld)*(px - oldX)
//
// A zoom that would leave [MinScale, MaxScale] stretches slightly past the limit,
// holds, then springs back to exactly the limit. It returns false for a
// non-positive or non-finite factor.
func (c *Controller) Zoom(factor, px, py float64) bool {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return false
	}
	c.userInput()
	c.motion.Cancel()

	target := c.t.Scale * factor
	if target >= c.opts.MinScale && target <= c.opts.MaxScale {
		c.setScale(target, px, py)
		c.apply(0)
		return true
	}

	limit, stretch := c.opts.MaxScale, c.opts.MaxScale*c.opts.OvershootIn
	if target < c.opts.MinScale {
		limit, stretch = c.opts.MinScale, c.opts.MinScale*c.opts.OvershootOut
	}
	c.setScale(stretch, px, py)
	c.apply(0)
	c.settleTo(limit, px, py)
	return true
}

// settleTo springs the scale back to limit after the overshoot hold.
func (c *Controller) settleTo(limit, px, py float64) {
	task := c.motion.Start()
	task.After(c.opts.OvershootHold, func() {
		from := c.t.Scale
		task.Run(anim.Tween{
			Duration: c.opts.Settle,
			Ease:     anim.Spring,
			Step: func(p float64) {
				s := geom.Lerp(from, limit, p)
				if p == 1 {
					s = limit
				}
				c.setScale(s, px, py)
				c.apply(0)
			},
			Done: func() {
				task.Done()
				c.BounceBackIfNeeded()
			},
		})
	})
}

// setScale keeps the world point under the pivot fixed. A drag in progress
// carries the pivot shift in its raw offset too.
func (c *Controller) setScale(s, px, py float64) {
	ratio := s / c.t.Scale
	x := px - ratio*(px-c.t.X)
	y := py - ratio*(py-c.t.Y)
	if c.dragging {
		c.rawX += x - c.t.X
		c.rawY += y - c.t.Y
	}
	c.t.X, c.t.Y = x, y
	c.t.Scale = s
}

// Wheel zooms one notch per event around the pointer. Negative deltaY zooms in.
func (c *Controller) Wheel(deltaY, px, py float64) {
	switch {
	case deltaY < 0:
		c.Zoom(c.opts.WheelStep, px, py)
	case deltaY > 0:
		c.Zoom(1/c.opts.WheelStep, px, py)
	}
}

// TouchStart handles a touch set change: one touch drags, two touches pinch.
func (c *Controller) TouchStart(touches []geom.Vec) {
	switch {
	case len(touches) >= 2:
		c.dragging = false
		c.pinching = true
		c.pinchDist = touches[0].Dist(touches[1])
		c.userInput()
		c.motion.Cancel()
	case len(touches) == 1:
		c.pinching = false
		c.BeginDrag(touches[0])
	}
}

// TouchMove zooms by the ratio of the two-touch distance between consecutive
// moves, pivoted at their midpoint, or pans with a single touch.
func (c *Controller) TouchMove(touches []geom.Vec) {
	if c.pinching && len(touches) >= 2 {
		d := touches[0].Dist(touches[1])
		mid := touches[0].Lerp(touches[1], 0.5)
		if c.pinchDist > 0 && d > 0 {
			c.Zoom(d/c.pinchDist, mid.X, mid.Y)
		}
		c.pinchDist = d
		return
	}
	if len(touches) == 1 {
		c.DragTo(touches[0])
	}
}

// TouchEnd is called with the touches still down.
func (c *Controller) TouchEnd(remaining []geom.Vec) {
	if c.pinching && len(remaining) < 2 {
		c.pinching = false
		c.pinchDist = 0
		if len(remaining) == 1 {
			c.BeginDrag(remaining[0])
			return
		}
		if !c.motion.Running() {
			c.BounceBackIfNeeded()
		}
		return
	}
	if len(remaining) == 0 {
		c.EndDrag()
	}
}

func (c *Controller) currentBounds() (Bounds, bool) {
	if c.bounds == nil {
		return Bounds{}, false
	}
	return c.bounds()
}

// BounceBackIfNeeded clamps the transform into the current bounds with an eased
// transition. It does nothing when already in bounds, when bounds are not
// available yet, or while a fit or settle is driving the camera. It reports
// whether the camera moved.
func (c *Controller) BounceBackIfNeeded() bool {
	if c.motion.Running() {
		return false
	}
	b, ok := c.currentBounds()
	if !ok {
		return false
	}
	x, y := b.Clamp(c.t.X, c.t.Y)
	if x == c.t.X && y == c.t.Y {
		return false
	}
	c.t.X, c.t.Y = x, y
	c.apply(c.opts.Bounce)
	c.logger.Debugw("Camera bounced back", "x", x, "y", y)
	return true
}

// FitOptions overrides the fit padding and duration. Zero values use the
// controller defaults.
type FitOptions struct {
	Padding  float64
	Duration time.Duration
	Done     func()
}

// AnimateCameraFit eases the camera to frame world inside a vw x vh viewport with
// ease-out quintic. A newer fit (or any user gesture) supersedes one in flight
// from wherever the camera currently is. A degenerate rectangle leaves the camera
// untouched and returns false.
func (c *Controller) AnimateCameraFit(world geom.Rect, vw, vh float64, fo FitOptions) bool {
	pad := fo.Padding
	if pad == 0 {
		pad = c.opts.FitPadding
	}
	d := fo.Duration
	if d == 0 {
		d = c.opts.FitDuration
	}

	target, ok := FitTarget(world, vw, vh, pad, c.opts.MinScale, c.opts.MaxScale)
	if !ok {
		c.logger.Debugw("Camera fit skipped", "w", world.W, "h", world.H, "vw", vw, "vh", vh)
		return false
	}

	from := *c.t
	task := c.motion.Start()
	task.Run(anim.Tween{
		Duration: d,
		Ease:     anim.EaseOutQuint,
		Step: func(p float64) {
			if p == 1 {
				*c.t = target
			} else {
				c.t.X = geom.Lerp(from.X, target.X, p)
				c.t.Y = geom.Lerp(from.Y, target.Y, p)
				c.t.Scale = geom.Lerp(from.Scale, target.Scale, p)
			}
			c.apply(0)
		},
		Done: func() {
			task.Done()
			if fo.Done != nil {
				fo.Done()
			}
		},
	})
	return true
}

// Fit is AnimateCameraFit against the recorded viewport.
func (c *Controller) Fit(world geom.Rect, fo FitOptions) bool {
	return c.AnimateCameraFit(world, c.vw, c.vh, fo)
}

// Jump sets the transform immediately, cancelling any motion.
func (c *Controller) Jump(t Transform) {
	c.motion.Cancel()
	*c.t = t
	c.apply(0)
}
