package am

import (
	"time"

	"github.com/teranos/folio/anim"
	"github.com/teranos/folio/camera"
	"github.com/teranos/folio/filter"
	"github.com/teranos/folio/geom"
	"github.com/teranos/folio/layout"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// Radial returns the radial layout tuning. Sectors are left to the caller.
func (c *Config) Radial() layout.RadialConfig {
	return layout.RadialConfig{
		Placement: geom.RadialConfig{
			MinDist:     c.Layout.MinDist,
			MaxDist:     c.Layout.MaxDist,
			SpreadAngle: c.Layout.SpreadAngle,
			JitterDist:  c.Layout.JitterDist,
			JitterAngle: c.Layout.JitterAngle,
		},
		Size:      geom.SizeRange{Min: c.Size.Min, Max: c.Size.Max},
		Collision: geom.CollisionConfig{Iterations: c.Collision.Iterations, Padding: c.Collision.Padding},
	}
}

// CameraOptions returns the camera controller tuning.
func (c *Config) CameraOptions() camera.Options {
	return camera.Options{
		MinScale:        c.Camera.MinScale,
		MaxScale:        c.Camera.MaxScale,
		OvershootOut:    c.Camera.OvershootOut,
		OvershootIn:     c.Camera.OvershootIn,
		OvershootHold:   ms(c.Camera.OvershootHoldMS),
		Settle:          ms(c.Camera.SettleMS),
		Bounce:          ms(c.Camera.BounceMS),
		FitDuration:     ms(c.Camera.FitMS),
		FitPadding:      c.Camera.FitPadding,
		RubberBand:      c.Camera.RubberBand,
		RubberBandLimit: c.Camera.RubberBandLimit,
		WheelStep:       c.Camera.WheelStep,
	}
}

// Entrance returns the reveal tuning.
func (c *Config) Entrance() anim.EntranceConfig {
	return anim.EntranceConfig{
		Duration:  ms(c.Anim.EntranceMS),
		MaxDelay:  ms(c.Anim.EntranceMaxDelayMS),
		Stagger:   ms(c.Anim.EntranceStaggerMS),
		EdgeDelay: ms(c.Anim.EdgeDelayMS),
		EdgeFade:  ms(c.Anim.EdgeFadeMS),
	}
}

// TransitionDuration is the re-layout animation length.
func (c *Config) TransitionDuration() time.Duration { return ms(c.Anim.TransitionMS) }

// CrossfadeDuration is the label crossfade length.
func (c *Config) CrossfadeDuration() time.Duration { return ms(c.Anim.CrossfadeMS) }

// PollInterval is how often a build retries while data is loading.
func (c *Config) PollInterval() time.Duration { return ms(c.Viz.PollMS) }

// LayoutMode returns the configured mode, dynamic when unparseable.
func (c *Config) LayoutMode() filter.LayoutMode {
	mode, err := filter.ParseLayoutMode(c.Viz.LayoutMode)
	if err != nil {
		return filter.Dynamic
	}
	return mode
}
