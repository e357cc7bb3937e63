// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Simulation SimulationConfig `yaml:"simulation"`
	Fish       FishConfig       `yaml:"fish"`
	Steering   SteeringConfig   `yaml:"steering"`
	Boundary   BoundaryConfig   `yaml:"boundary"`
	Grid       GridConfig       `yaml:"grid"`
	Quality    QualityConfig    `yaml:"quality"`
	SlowMotion SlowMotionConfig `yaml:"slow_motion"`
	Render     RenderConfig     `yaml:"render"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// WorldConfig holds simulation world dimensions.
// Zero values follow the screen size.
type WorldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// SimulationConfig holds tick scheduling and population bounds.
type SimulationConfig struct {
	TickInterval float64 `yaml:"tick_interval"` // seconds between simulation ticks
	InitialFish  int     `yaml:"initial_fish"`
	MinAgents    int     `yaml:"min_agents"`
	MaxAgents    int     `yaml:"max_agents"`
	Seed         int64   `yaml:"seed"` // 0 = time-based
}

// FishConfig holds mass sampling and the mass-derived constant factors.
type FishConfig struct {
	MassMin               float64 `yaml:"mass_min"`
	MassMax               float64 `yaml:"mass_max"`
	MaxSpeedFactor        float64 `yaml:"max_speed_factor"`        // maxSpeed = factor * mass
	MaxForceFactor        float64 `yaml:"max_force_factor"`        // maxForce = factor / mass
	SeparationRangeFactor float64 `yaml:"separation_range_factor"` // separationRange = factor * mass
	LookRangeFactor       float64 `yaml:"look_range_factor"`       // lookRange = factor * mass
	BodyLengthFactor      float64 `yaml:"body_length_factor"`      // bodyLength = factor * mass
	MinVelocity           float64 `yaml:"min_velocity"`            // anti-stall floor
	DefaultVelocity       float64 `yaml:"default_velocity"`        // magnitude used when the floor is hit
}

// SteeringConfig holds behavior weights and constants.
type SteeringConfig struct {
	SeparationWeight float64 `yaml:"separation_weight"`
	AlignmentWeight  float64 `yaml:"alignment_weight"`
	CohesionWeight   float64 `yaml:"cohesion_weight"`
	ViewAngle        float64 `yaml:"view_angle"` // full cone in radians; >= 2*Pi sees everything

	AvoidRangeFactor float64 `yaml:"avoid_range_factor"` // fraction of lookRange
	AvoidRepulsion   float64 `yaml:"avoid_repulsion"`

	ChaseStrength    float64 `yaml:"chase_strength"`
	ChaseMinDistance float64 `yaml:"chase_min_distance"`
	ChaseMaxDistance float64 `yaml:"chase_max_distance"`

	WanderChance    float64 `yaml:"wander_chance"`    // per-tick probability of picking a new direction
	WanderStrength  float64 `yaml:"wander_strength"`  // bias magnitude as a fraction of maxSpeed
	WanderTurnRate  float64 `yaml:"wander_turn_rate"` // radians of drift per tick
	FollowWeight    float64 `yaml:"follow_weight"`
	FollowSlowRange float64 `yaml:"follow_slow_range"` // arrival radius around the pointer
}

// Boundary policy names.
const (
	BoundaryClamp    = "clamp"
	BoundaryBounce   = "bounce"
	BoundaryTeleport = "teleport"
)

// BoundaryConfig holds soft repulsion and the out-of-bounds policy.
type BoundaryConfig struct {
	Distance         float64 `yaml:"distance"`
	ForceMultiplier  float64 `yaml:"force_multiplier"`
	Policy           string  `yaml:"policy"` // clamp, bounce or teleport
	BounceDamping    float64 `yaml:"bounce_damping"`
	TeleportDistance float64 `yaml:"teleport_distance"`
	TeleportDamping  float64 `yaml:"teleport_damping"`
}

// GridConfig holds spatial index parameters.
type GridConfig struct {
	CellSize float64 `yaml:"cell_size"`
}

// QualityTier is one adaptive quality level.
type QualityTier struct {
	FishMax     int `yaml:"fish_max"`
	DetailLevel int `yaml:"detail_level"`
}

// QualityConfig holds FPS-adaptive quality parameters.
type QualityConfig struct {
	Enabled    bool        `yaml:"enabled"`
	WindowSize int         `yaml:"window_size"`
	LowFPS     float64     `yaml:"low_fps"`
	MediumFPS  float64     `yaml:"medium_fps"`
	Low        QualityTier `yaml:"low"`
	Medium     QualityTier `yaml:"medium"`
	High       QualityTier `yaml:"high"`
	Initial    string      `yaml:"initial"`
}

// SlowMotionConfig holds slow motion easing parameters.
type SlowMotionConfig struct {
	TickInterval    float64 `yaml:"tick_interval"` // seconds between ticks while slowed
	TrailAlpha      float64 `yaml:"trail_alpha"`
	TransitionSteps int     `yaml:"transition_steps"`
}

// RGBA is a color in config form.
type RGBA [4]uint8

// RenderConfig holds drawing parameters.
type RenderConfig struct {
	TrailAlpha      float64 `yaml:"trail_alpha"`
	Background      RGBA    `yaml:"background"`
	FishColor       RGBA    `yaml:"fish_color"`
	ShoalColor      RGBA    `yaml:"shoal_color"`
	AvoidColor      RGBA    `yaml:"avoid_color"`
	ChaseColor      RGBA    `yaml:"chase_color"`
	OutlineColor    RGBA    `yaml:"outline_color"`
	GridColor       RGBA    `yaml:"grid_color"`
	HighlightColor  RGBA    `yaml:"highlight_color"`
	BodyWidthFactor float64 `yaml:"body_width_factor"` // half-width as a fraction of body length
	CurveSegments   int     `yaml:"curve_segments"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds of simulation time per window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldW, WorldH   float64       // effective world size
	TickInterval     time.Duration // Simulation.TickInterval
	SlowTickInterval time.Duration // SlowMotion.TickInterval
	TicksPerWindow   int           // Telemetry.StatsWindow in ticks
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks values the simulation cannot run without.
func (c *Config) Validate() error {
	if c.Fish.MassMin <= 0 || c.Fish.MassMax < c.Fish.MassMin {
		return fmt.Errorf("invalid mass range [%v, %v]", c.Fish.MassMin, c.Fish.MassMax)
	}
	if c.Fish.MinVelocity <= 0 || c.Fish.DefaultVelocity < c.Fish.MinVelocity {
		return fmt.Errorf("fish.default_velocity (%v) must be >= fish.min_velocity (%v) > 0", c.Fish.DefaultVelocity, c.Fish.MinVelocity)
	}
	if c.Fish.MaxSpeedFactor*c.Fish.MassMin < c.Fish.MinVelocity {
		return fmt.Errorf("lightest fish max speed %v is below fish.min_velocity %v", c.Fish.MaxSpeedFactor*c.Fish.MassMin, c.Fish.MinVelocity)
	}
	if c.Grid.CellSize <= 0 {
		return fmt.Errorf("grid.cell_size must be positive, got %v", c.Grid.CellSize)
	}
	if c.Simulation.TickInterval <= 0 {
		return fmt.Errorf("simulation.tick_interval must be positive, got %v", c.Simulation.TickInterval)
	}
	if c.Simulation.MinAgents < 0 || c.Simulation.MaxAgents < c.Simulation.MinAgents {
		return fmt.Errorf("invalid agent bounds [%d, %d]", c.Simulation.MinAgents, c.Simulation.MaxAgents)
	}
	switch c.Boundary.Policy {
	case BoundaryClamp, BoundaryBounce, BoundaryTeleport:
	default:
		return fmt.Errorf("unknown boundary.policy %q", c.Boundary.Policy)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW = float64(worldW)
	c.Derived.WorldH = float64(worldH)

	c.Derived.TickInterval = seconds(c.Simulation.TickInterval)
	c.Derived.SlowTickInterval = seconds(c.SlowMotion.TickInterval)

	c.Derived.TicksPerWindow = int(math.Round(c.Telemetry.StatsWindow / c.Simulation.TickInterval))
	if c.Derived.TicksPerWindow < 1 {
		c.Derived.TicksPerWindow = 1
	}
}

// Recompute validates the config and refreshes derived values after fields
// were changed in code.
func (c *Config) Recompute() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// ClampAgents restricts n to [MinAgents, MaxAgents].
func (c *Config) ClampAgents(n int) int {
	if n < c.Simulation.MinAgents {
		return c.Simulation.MinAgents
	}
	if n > c.Simulation.MaxAgents {
		return c.Simulation.MaxAgents
	}
	return n
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
