package am

import (
	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/filter"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Layout.MinDist < 0 || c.Layout.MaxDist < c.Layout.MinDist {
		return errors.Newf("layout distances must satisfy 0 <= min_dist <= max_dist, got %v and %v",
			c.Layout.MinDist, c.Layout.MaxDist)
	}
	if c.Layout.SpreadAngle < 0 || c.Layout.JitterDist < 0 || c.Layout.JitterAngle < 0 {
		return errors.New("layout.spread_angle, layout.jitter_dist and layout.jitter_angle must be >= 0")
	}
	if c.Size.Min <= 0 || c.Size.Max < c.Size.Min {
		return errors.Newf("size must satisfy 0 < min <= max, got %v and %v", c.Size.Min, c.Size.Max)
	}

	// Collision: 0 = default budget, negative = invalid
	if c.Collision.Iterations < 0 {
		return errors.Newf("collision.iterations must be >= 0, got %d", c.Collision.Iterations)
	}
	if c.Collision.Padding < 0 {
		return errors.Newf("collision.padding must be >= 0, got %v", c.Collision.Padding)
	}

	if c.Camera.MinScale <= 0 || c.Camera.MaxScale < c.Camera.MinScale {
		return errors.Newf("camera scale limits must satisfy 0 < min_scale <= max_scale, got %v and %v",
			c.Camera.MinScale, c.Camera.MaxScale)
	}
	if c.Camera.OvershootOut <= 0 || c.Camera.OvershootOut > 1 {
		return errors.Newf("camera.overshoot_out must be in (0, 1], got %v", c.Camera.OvershootOut)
	}
	if c.Camera.OvershootIn < 1 {
		return errors.Newf("camera.overshoot_in must be >= 1, got %v", c.Camera.OvershootIn)
	}
	if c.Camera.WheelStep <= 1 {
		return errors.Newf("camera.wheel_step must be > 1, got %v", c.Camera.WheelStep)
	}
	if c.Camera.FitPadding < 0 || c.Camera.RubberBandLimit < 0 {
		return errors.New("camera.fit_padding and camera.rubber_band_limit must be >= 0")
	}
	for key, ms := range map[string]int{
		"camera.overshoot_hold_ms":   c.Camera.OvershootHoldMS,
		"camera.settle_ms":           c.Camera.SettleMS,
		"camera.bounce_ms":           c.Camera.BounceMS,
		"camera.fit_ms":              c.Camera.FitMS,
		"anim.entrance_ms":           c.Anim.EntranceMS,
		"anim.entrance_max_delay_ms": c.Anim.EntranceMaxDelayMS,
		"anim.entrance_stagger_ms":   c.Anim.EntranceStaggerMS,
		"anim.edge_delay_ms":         c.Anim.EdgeDelayMS,
		"anim.edge_fade_ms":          c.Anim.EdgeFadeMS,
		"anim.transition_ms":         c.Anim.TransitionMS,
		"anim.crossfade_ms":          c.Anim.CrossfadeMS,
	} {
		if ms < 0 {
			return errors.Newf("%s must be >= 0, got %d", key, ms)
		}
	}

	if _, err := filter.ParseLayoutMode(c.Viz.LayoutMode); err != nil {
		return errors.WithHint(errors.Wrap(err, "viz.layout_mode"), "use static or dynamic")
	}
	if c.Viz.PollMS <= 0 {
		return errors.Newf("viz.poll_ms must be > 0, got %d", c.Viz.PollMS)
	}
	if c.Viz.WhisperScale <= 0 {
		return errors.Newf("viz.whisper_scale must be > 0, got %v", c.Viz.WhisperScale)
	}

	// Server port: 0 is invalid (omit for default), negative is invalid
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Newf("server.port must be in 1..65535 (omit for default port %d), got %d",
			DefaultServerPort, c.Server.Port)
	}
	if c.Server.EventsPerSecond < 0 {
		return errors.Newf("server.events_per_second must be >= 0, got %v", c.Server.EventsPerSecond)
	}
	return nil
}
