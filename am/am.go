// Package am holds folio's configuration: engine tuning, visualization
// behavior and the preview server, loaded with viper from folio.toml files and
// FOLIO_* environment variables.
package am

// Config is the effective folio configuration.
type Config struct {
	Layout    LayoutConfig    `mapstructure:"layout" toml:"layout"`
	Size      SizeConfig      `mapstructure:"size" toml:"size"`
	Collision CollisionConfig `mapstructure:"collision" toml:"collision"`
	Camera    CameraConfig    `mapstructure:"camera" toml:"camera"`
	Anim      AnimConfig      `mapstructure:"anim" toml:"anim"`
	Viz       VizConfig       `mapstructure:"viz" toml:"viz"`
	Server    ServerConfig    `mapstructure:"server" toml:"server"`
}

// LayoutConfig tunes radial placement. Angles are radians.
type LayoutConfig struct {
	MinDist     float64 `mapstructure:"min_dist" toml:"min_dist"`
	MaxDist     float64 `mapstructure:"max_dist" toml:"max_dist"`
	SpreadAngle float64 `mapstructure:"spread_angle" toml:"spread_angle"`
	JitterDist  float64 `mapstructure:"jitter_dist" toml:"jitter_dist"`
	JitterAngle float64 `mapstructure:"jitter_angle" toml:"jitter_angle"`
}

// SizeConfig bounds node radii.
type SizeConfig struct {
	Min float64 `mapstructure:"min" toml:"min"`
	Max float64 `mapstructure:"max" toml:"max"`
}

// CollisionConfig tunes overlap resolution.
type CollisionConfig struct {
	Iterations int     `mapstructure:"iterations" toml:"iterations"` // pass budget, best effort
	Padding    float64 `mapstructure:"padding" toml:"padding"`
}

// CameraConfig tunes pan, zoom and fit. Durations are milliseconds.
type CameraConfig struct {
	MinScale        float64 `mapstructure:"min_scale" toml:"min_scale"`
	MaxScale        float64 `mapstructure:"max_scale" toml:"max_scale"`
	OvershootOut    float64 `mapstructure:"overshoot_out" toml:"overshoot_out"`
	OvershootIn     float64 `mapstructure:"overshoot_in" toml:"overshoot_in"`
	OvershootHoldMS int     `mapstructure:"overshoot_hold_ms" toml:"overshoot_hold_ms"`
	SettleMS        int     `mapstructure:"settle_ms" toml:"settle_ms"`
	BounceMS        int     `mapstructure:"bounce_ms" toml:"bounce_ms"`
	FitMS           int     `mapstructure:"fit_ms" toml:"fit_ms"`
	FitPadding      float64 `mapstructure:"fit_padding" toml:"fit_padding"`
	RubberBand      bool    `mapstructure:"rubber_band" toml:"rubber_band"`
	RubberBandLimit float64 `mapstructure:"rubber_band_limit" toml:"rubber_band_limit"`
	WheelStep       float64 `mapstructure:"wheel_step" toml:"wheel_step"`
}

// AnimConfig tunes entrance, re-layout and label animations in milliseconds.
type AnimConfig struct {
	EntranceMS         int `mapstructure:"entrance_ms" toml:"entrance_ms"`
	EntranceMaxDelayMS int `mapstructure:"entrance_max_delay_ms" toml:"entrance_max_delay_ms"`
	EntranceStaggerMS  int `mapstructure:"entrance_stagger_ms" toml:"entrance_stagger_ms"`
	EdgeDelayMS        int `mapstructure:"edge_delay_ms" toml:"edge_delay_ms"`
	EdgeFadeMS         int `mapstructure:"edge_fade_ms" toml:"edge_fade_ms"`
	TransitionMS       int `mapstructure:"transition_ms" toml:"transition_ms"`
	CrossfadeMS        int `mapstructure:"crossfade_ms" toml:"crossfade_ms"`
}

// VizConfig configures visualization instances.
type VizConfig struct {
	LayoutMode   string  `mapstructure:"layout_mode" toml:"layout_mode"` // static or dynamic
	PollMS       int     `mapstructure:"poll_ms" toml:"poll_ms"`         // retry interval while data is loading
	WhisperScale float64 `mapstructure:"whisper_scale" toml:"whisper_scale"`
}

// ServerConfig configures the live preview server.
type ServerConfig struct {
	Port            int      `mapstructure:"port" toml:"port"`
	AllowedOrigins  []string `mapstructure:"allowed_origins" toml:"allowed_origins"`
	EventsPerSecond float64  `mapstructure:"events_per_second" toml:"events_per_second"`
}

// DefaultServerPort is where folio serve listens unless configured.
const DefaultServerPort = 8770

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
