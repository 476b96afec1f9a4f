package am

import (
	"math"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Radial placement
	v.SetDefault("layout.min_dist", 180.0)
	v.SetDefault("layout.max_dist", 620.0)
	v.SetDefault("layout.spread_angle", math.Pi/2.4) // 75 degrees per sector
	v.SetDefault("layout.jitter_dist", 18.0)
	v.SetDefault("layout.jitter_angle", 0.06)

	v.SetDefault("size.min", 50.0)
	v.SetDefault("size.max", 120.0)

	v.SetDefault("collision.iterations", 70) // visually settled for tens of nodes
	v.SetDefault("collision.padding", 8.0)

	// Camera
	v.SetDefault("camera.min_scale", 0.2)
	v.SetDefault("camera.max_scale", 4.0)
	v.SetDefault("camera.overshoot_out", 0.92)
	v.SetDefault("camera.overshoot_in", 1.06)
	v.SetDefault("camera.overshoot_hold_ms", 80)
	v.SetDefault("camera.settle_ms", 260)
	v.SetDefault("camera.bounce_ms", 300)
	v.SetDefault("camera.fit_ms", 700)
	v.SetDefault("camera.fit_padding", 60.0)
	v.SetDefault("camera.rubber_band", true)
	v.SetDefault("camera.rubber_band_limit", 120.0)
	v.SetDefault("camera.wheel_step", 1.1)

	// Animation
	v.SetDefault("anim.entrance_ms", 900)
	v.SetDefault("anim.entrance_max_delay_ms", 600)
	v.SetDefault("anim.entrance_stagger_ms", 25)
	v.SetDefault("anim.edge_delay_ms", 250)
	v.SetDefault("anim.edge_fade_ms", 500)
	v.SetDefault("anim.transition_ms", 600)
	v.SetDefault("anim.crossfade_ms", 320)

	// Visualization instances
	v.SetDefault("viz.layout_mode", "dynamic")
	v.SetDefault("viz.poll_ms", 100)
	v.SetDefault("viz.whisper_scale", 1.6) // zoomed in past this, whispers replace labels

	// Preview server
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
	})
	v.SetDefault("server.events_per_second", 120.0)
}

// Defaults returns the configuration with no files or environment applied.
func Defaults() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		panic(err) // defaults always decode
	}
	return cfg
}
