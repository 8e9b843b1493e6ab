// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Boundary policies.
const (
	BoundaryTurn = "turn" // soft velocity correction inside the margin
	BoundaryWrap = "wrap" // teleport to the opposite edge past the padding
)

// Separation weightings.
const (
	SeparationSum             = "sum"
	SeparationInverseDistance = "inverse_distance"
)

// Alignment modes.
const (
	AlignmentVelocity = "velocity"
	AlignmentHeading  = "heading"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Population PopulationConfig `yaml:"population"`
	Boid       AgentConfig      `yaml:"boid"`
	Predator   AgentConfig      `yaml:"predator"`
	Rules      RulesConfig      `yaml:"rules"`
	Parallel   ParallelConfig   `yaml:"parallel"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Debug      DebugConfig      `yaml:"debug"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds world bounds and the containment policy.
type WorldConfig struct {
	Width             float64 `yaml:"width"`              // 0 = use screen width
	Height            float64 `yaml:"height"`             // 0 = use screen height
	Margin            float64 `yaml:"margin"`             // distance from an edge where containment kicks in
	Boundary          string  `yaml:"boundary"`           // turn | wrap
	WrapPadding       float64 `yaml:"wrap_padding"`       // off-screen distance before wrapping
	ScaleEdgeTurnByDT bool    `yaml:"scale_edge_turn_by_dt"`
}

// PhysicsConfig holds integration and grid parameters.
type PhysicsConfig struct {
	DT           float64 `yaml:"dt"`
	GridCellSize float64 `yaml:"grid_cell_size"` // 0 = largest vision range
	GridBuckets  int     `yaml:"grid_buckets"`   // 0 = 3 × agent count
}

// PopulationConfig holds spawn counts.
type PopulationConfig struct {
	Boids                 int `yaml:"boids"`
	Predators             int `yaml:"predators"`
	PredatorBruteForceMax int `yaml:"predator_brute_force_max"` // above this, predators are found via the grid
}

// AgentConfig is the per-kind tunables table.
// Multipliers a kind does not use are ignored (boids never chase, predators never flee).
type AgentConfig struct {
	VisionRange          float64 `yaml:"vision_range"`
	SeparationRange      float64 `yaml:"separation_range"`
	MaxAcceleration      float64 `yaml:"max_acceleration"`
	MinSpeed             float64 `yaml:"min_speed"`
	MaxSpeed             float64 `yaml:"max_speed"`
	FleeMultiplier       float64 `yaml:"flee_multiplier"`
	ChaseMultiplier      float64 `yaml:"chase_multiplier"`
	SeparationMultiplier float64 `yaml:"separation_multiplier"`
	AlignmentMultiplier  float64 `yaml:"alignment_multiplier"`
	CohesionMultiplier   float64 `yaml:"cohesion_multiplier"`
	EdgeTurnSpeed        float64 `yaml:"edge_turn_speed"`
	GravityAcceleration  float64 `yaml:"gravity_acceleration"`
}

// RulesConfig selects force formula variants.
type RulesConfig struct {
	Separation string `yaml:"separation"` // sum | inverse_distance
	Alignment  string `yaml:"alignment"`  // velocity | heading
}

// ParallelConfig controls the per-agent worker pool.
type ParallelConfig struct {
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
	Threshold int `yaml:"threshold"` // minimum agent count before work is split
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DebugConfig picks agents to highlight on restart.
type DebugConfig struct {
	Boid     bool `yaml:"boid"`
	Predator bool `yaml:"predator"`
}

// DerivedConfig holds values computed from other config fields.
type DerivedConfig struct {
	WorldW       float64
	WorldH       float64
	CellSize     float64
	BucketCount  int
	TotalAgents  int
	TicksPerStat int32
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

// Default returns the embedded defaults.
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

	cfg.ComputeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// ComputeDerived recalculates values derived from loaded config.
// Call it again after mutating a loaded config in code.
func (c *Config) ComputeDerived() {
	c.Derived.WorldW = c.World.Width
	if c.Derived.WorldW == 0 {
		c.Derived.WorldW = float64(c.Screen.Width)
	}
	c.Derived.WorldH = c.World.Height
	if c.Derived.WorldH == 0 {
		c.Derived.WorldH = float64(c.Screen.Height)
	}

	c.Derived.CellSize = c.Physics.GridCellSize
	if c.Derived.CellSize == 0 {
		c.Derived.CellSize = max(c.Boid.VisionRange, c.Predator.VisionRange)
	}

	c.Derived.TotalAgents = c.Population.Boids + c.Population.Predators
	c.Derived.BucketCount = c.Physics.GridBuckets
	if c.Derived.BucketCount == 0 {
		c.Derived.BucketCount = max(3*c.Derived.TotalAgents, 1)
	}

	c.Derived.TicksPerStat = 1
	if c.Physics.DT > 0 && c.Telemetry.StatsWindow > 0 {
		c.Derived.TicksPerStat = max(int32(c.Telemetry.StatsWindow/c.Physics.DT), 1)
	}
}

// Validate reports every configuration value the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Physics.DT <= 0 {
		errs = append(errs, fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT))
	}
	if c.Derived.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("grid cell size must be positive, got %v", c.Derived.CellSize))
	}
	if c.Derived.BucketCount <= 0 {
		errs = append(errs, fmt.Errorf("grid bucket count must be positive, got %d", c.Derived.BucketCount))
	}
	if c.Derived.WorldW <= 0 || c.Derived.WorldH <= 0 {
		errs = append(errs, fmt.Errorf("world size must be positive, got %vx%v", c.Derived.WorldW, c.Derived.WorldH))
	}
	if c.Population.Boids < 0 || c.Population.Predators < 0 {
		errs = append(errs, errors.New("population counts must not be negative"))
	}
	errs = append(errs, c.Boid.validate("boid"), c.Predator.validate("predator"))

	switch c.World.Boundary {
	case BoundaryTurn, BoundaryWrap:
	default:
		errs = append(errs, fmt.Errorf("unknown world.boundary %q", c.World.Boundary))
	}
	switch c.Rules.Separation {
	case SeparationSum, SeparationInverseDistance:
	default:
		errs = append(errs, fmt.Errorf("unknown rules.separation %q", c.Rules.Separation))
	}
	switch c.Rules.Alignment {
	case AlignmentVelocity, AlignmentHeading:
	default:
		errs = append(errs, fmt.Errorf("unknown rules.alignment %q", c.Rules.Alignment))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (a AgentConfig) validate(kind string) error {
	var errs []error
	if a.VisionRange <= 0 {
		errs = append(errs, fmt.Errorf("%s.vision_range must be positive", kind))
	}
	if a.SeparationRange < 0 || a.SeparationRange > a.VisionRange {
		errs = append(errs, fmt.Errorf("%s.separation_range must be within [0, vision_range]", kind))
	}
	if a.MinSpeed < 0 || a.MinSpeed > a.MaxSpeed {
		errs = append(errs, fmt.Errorf("%s speed range [%v, %v] is invalid", kind, a.MinSpeed, a.MaxSpeed))
	}
	if a.MaxAcceleration < 0 {
		errs = append(errs, fmt.Errorf("%s.max_acceleration must not be negative", kind))
	}
	return errors.Join(errs...)
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
