package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/picogrid/drone-search-sim/cmd/drone-search/core"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/search"
)

// Scheduler modes
const (
	ModeRealtime = "realtime"
	ModeBatch    = "batch"
)

// Report formats
const (
	ReportJSON = "json"
	ReportYAML = "yaml"
)

// SearchConfig holds the complete drone search configuration
type SearchConfig struct {
	Simulation  SimulationSettings `yaml:"simulation" toml:"simulation"`
	Environment EnvironmentConfig  `yaml:"environment" toml:"environment"`
	Search      SearchBounds       `yaml:"search" toml:"search"`
	Drones      DroneConfig        `yaml:"drones" toml:"drones"`
	Battery     BatteryConfig      `yaml:"battery" toml:"battery"`
	Spiral      SpiralConfig       `yaml:"spiral" toml:"spiral"`
	Sweep       SweepConfig        `yaml:"sweep" toml:"sweep"`
	Output      OutputConfig       `yaml:"output" toml:"output"`
}

// SimulationSettings controls the scheduler
type SimulationSettings struct {
	Name        string `yaml:"name" toml:"name"`
	Description string `yaml:"description" toml:"description"`
	Mode        string `yaml:"mode" toml:"mode"` // "realtime" or "batch"

	// UpdateInterval is the wall-clock period between ticks in realtime mode
	UpdateInterval time.Duration `yaml:"update_interval" toml:"update_interval"`

	Step     float64 `yaml:"step" toml:"step"`           // simulated seconds per sub-step
	SimSpeed int     `yaml:"sim_speed" toml:"sim_speed"` // sub-steps per tick
	Seed     int64   `yaml:"seed" toml:"seed"`           // 0 picks a time-based seed
}

// EnvironmentConfig is the searched area
type EnvironmentConfig struct {
	XLength                   float64 `yaml:"x_length" toml:"x_length"` // m
	YLength                   float64 `yaml:"y_length" toml:"y_length"` // m
	MaxColumns                int     `yaml:"max_columns" toml:"max_columns"`
	ObjectiveMinDistanceRatio float64 `yaml:"objective_min_distance_ratio" toml:"objective_min_distance_ratio"`
}

// SearchBounds are the ranges explored by the feasibility search
type SearchBounds struct {
	MinSpeed       float64 `yaml:"min_speed" toml:"min_speed"` // m/s
	MaxSpeed       float64 `yaml:"max_speed" toml:"max_speed"` // m/s
	SpeedIncrement float64 `yaml:"speed_increment" toml:"speed_increment"`
	MinDrones      int     `yaml:"min_drones" toml:"min_drones"`
	MaxDrones      int     `yaml:"max_drones" toml:"max_drones"`
	DroneIncrement int     `yaml:"drone_increment" toml:"drone_increment"`
	GroupSize      int     `yaml:"group_size" toml:"group_size"` // trials per configuration
}

// DroneConfig holds per-drone movement and sensing settings
type DroneConfig struct {
	Strategy             string  `yaml:"strategy" toml:"strategy"` // random, sweep, spiral or 1-3
	GroundOffset         float64 `yaml:"ground_offset" toml:"ground_offset"`
	MovementTolerance    float64 `yaml:"movement_tolerance" toml:"movement_tolerance"`
	MovementDistance     float64 `yaml:"movement_distance" toml:"movement_distance"`
	CollisionCheckRadius float64 `yaml:"collision_check_radius" toml:"collision_check_radius"`
	VisionRadius         float64 `yaml:"vision_radius" toml:"vision_radius"`
	YieldSteps           int     `yaml:"yield_steps" toml:"yield_steps"`
	SpawnSpacing         float64 `yaml:"spawn_spacing" toml:"spawn_spacing"`
	LossProbability      float64 `yaml:"loss_probability" toml:"loss_probability"` // per tick
}

// BatteryConfig is the energy model
type BatteryConfig struct {
	Capacity      float64 `yaml:"capacity" toml:"capacity"`             // Wh
	Weight        float64 `yaml:"weight" toml:"weight"`                 // kg
	InitialWeight float64 `yaml:"initial_weight" toml:"initial_weight"` // kg
	MinCount      int     `yaml:"min_count" toml:"min_count"`
	MaxCount      int     `yaml:"max_count" toml:"max_count"`
}

type SpiralConfig struct {
	Radius            float64 `yaml:"radius" toml:"radius"`
	WanderDistance    float64 `yaml:"wander_distance" toml:"wander_distance"`
	WanderSteps       int     `yaml:"wander_steps" toml:"wander_steps"`
	IncrementFactor   float64 `yaml:"increment_factor" toml:"increment_factor"`
	ConcentricCircles bool    `yaml:"concentric_circles" toml:"concentric_circles"`
	CirclePoints      int     `yaml:"circle_points" toml:"circle_points"`
}

type SweepConfig struct {
	Height float64 `yaml:"height" toml:"height"`
}

// OutputConfig controls where results go
type OutputConfig struct {
	ResultsPath  string `yaml:"results_path" toml:"results_path"`
	ReportPath   string `yaml:"report_path" toml:"report_path"` // empty disables the run report
	ReportFormat string `yaml:"report_format" toml:"report_format"`
	LogLevel     string `yaml:"log_level" toml:"log_level"`
	Verbose      bool   `yaml:"verbose" toml:"verbose"`
}

// Validate checks if the configuration is valid
func (c *SearchConfig) Validate() error {
	if c.Simulation.Name == "" {
		return fmt.Errorf("simulation name is required")
	}

	switch c.Simulation.Mode {
	case ModeRealtime:
		if c.Simulation.UpdateInterval <= 0 {
			return fmt.Errorf("update interval must be positive in realtime mode")
		}
	case ModeBatch:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeRealtime, ModeBatch, c.Simulation.Mode)
	}

	if c.Simulation.Step <= 0 {
		return fmt.Errorf("step must be positive")
	}
	if c.Simulation.SimSpeed < 1 {
		return fmt.Errorf("sim speed must be at least 1")
	}

	if c.Environment.XLength <= 0 || c.Environment.YLength <= 0 {
		return fmt.Errorf("environment lengths must be positive")
	}
	if c.Environment.MaxColumns < 1 {
		return fmt.Errorf("max columns must be at least 1")
	}
	if c.Environment.ObjectiveMinDistanceRatio < 0 || c.Environment.ObjectiveMinDistanceRatio > 1 {
		return fmt.Errorf("objective min distance ratio must be between 0.0 and 1.0")
	}

	if err := c.Bounds().Validate(); err != nil {
		return err
	}
	if c.Search.GroupSize < 1 {
		return fmt.Errorf("group size must be at least 1")
	}
	if err := c.Energy().Validate(); err != nil {
		return err
	}

	if _, err := c.StrategyID(); err != nil {
		return err
	}
	if c.Drones.MovementTolerance < 0 {
		return fmt.Errorf("movement tolerance must not be negative")
	}
	if c.Drones.MovementDistance <= 0 {
		return fmt.Errorf("movement distance must be positive")
	}
	if c.Drones.VisionRadius <= 0 {
		return fmt.Errorf("vision radius must be positive")
	}
	if c.Drones.CollisionCheckRadius < 0 {
		return fmt.Errorf("collision check radius must not be negative")
	}
	if c.Drones.YieldSteps < 0 {
		return fmt.Errorf("yield steps must not be negative")
	}
	if c.Drones.LossProbability < 0 || c.Drones.LossProbability > 1 {
		return fmt.Errorf("loss probability must be between 0.0 and 1.0")
	}

	if c.Spiral.CirclePoints < 1 {
		return fmt.Errorf("spiral circle points must be at least 1")
	}
	if c.Spiral.Radius <= 0 || c.Spiral.WanderDistance <= 0 {
		return fmt.Errorf("spiral radius and wander distance must be positive")
	}
	if c.Spiral.WanderSteps < 0 {
		return fmt.Errorf("spiral wander steps must not be negative")
	}
	if c.Spiral.IncrementFactor <= 0 {
		return fmt.Errorf("spiral increment factor must be positive")
	}
	if c.Sweep.Height <= 0 {
		return fmt.Errorf("sweep height must be positive")
	}

	switch c.Output.ReportFormat {
	case ReportJSON, ReportYAML:
	default:
		return fmt.Errorf("report format must be %q or %q", ReportJSON, ReportYAML)
	}

	return nil
}

// StrategyID resolves the configured strategy name or number
func (c *SearchConfig) StrategyID() (core.StrategyID, error) {
	return core.ParseStrategy(c.Drones.Strategy)
}

// Bounds converts the search section for the feasibility search
func (c *SearchConfig) Bounds() search.Bounds {
	return search.Bounds{
		MinSpeed:       c.Search.MinSpeed,
		MaxSpeed:       c.Search.MaxSpeed,
		SpeedIncrement: c.Search.SpeedIncrement,
		MinDrones:      c.Search.MinDrones,
		MaxDrones:      c.Search.MaxDrones,
		DroneIncrement: c.Search.DroneIncrement,
	}
}

// Energy converts the battery section for the feasibility search
func (c *SearchConfig) Energy() search.Energy {
	return search.Energy{
		InitialWeight:   c.Battery.InitialWeight,
		BatteryWeight:   c.Battery.Weight,
		BatteryCapacity: c.Battery.Capacity,
		MinBatteryCount: c.Battery.MinCount,
		MaxBatteryCount: c.Battery.MaxCount,
	}
}

// MotionParams converts the movement settings for the strategies
func (c *SearchConfig) MotionParams() core.MotionParams {
	return core.MotionParams{
		MovementDistance:  c.Drones.MovementDistance,
		WanderDistance:    c.Spiral.WanderDistance,
		WanderSteps:       c.Spiral.WanderSteps,
		SpiralRadius:      c.Spiral.Radius,
		IncrementFactor:   c.Spiral.IncrementFactor,
		ConcentricCircles: c.Spiral.ConcentricCircles,
		CirclePoints:      c.Spiral.CirclePoints,
		SweepHeight:       c.Sweep.Height,
	}
}

// DroneSettings converts the per-drone stepping constants
func (c *SearchConfig) DroneSettings() core.DroneSettings {
	return core.DroneSettings{
		MovementTolerance: c.Drones.MovementTolerance,
		YieldSteps:        c.Drones.YieldSteps,
	}
}

// EnvironmentSize is the searched area as a vector
func (c *SearchConfig) EnvironmentSize() core.Vector2D {
	return core.Vector2D{X: c.Environment.XLength, Y: c.Environment.YLength}
}

// TickDuration is the simulated time covered by one scheduler tick
func (c *SearchConfig) TickDuration() float64 {
	return c.Simulation.Step * float64(c.Simulation.SimSpeed)
}

// Clone returns a deep copy
func (c *SearchConfig) Clone() *SearchConfig {
	clone := *c
	return &clone
}

// String returns a human-readable representation of the configuration
func (c *SearchConfig) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Simulation Configuration:\n")
	fmt.Fprintf(&b, "  Name: %s\n", c.Simulation.Name)
	fmt.Fprintf(&b, "  Mode: %s\n", c.Simulation.Mode)
	if c.Simulation.Mode == ModeRealtime {
		fmt.Fprintf(&b, "  Update Interval: %v\n", c.Simulation.UpdateInterval)
	}
	fmt.Fprintf(&b, "  Step: %.3fs x %d sub-steps\n", c.Simulation.Step, c.Simulation.SimSpeed)
	fmt.Fprintf(&b, "  Seed: %d\n", c.Simulation.Seed)

	fmt.Fprintf(&b, "\nEnvironment:\n")
	fmt.Fprintf(&b, "  Size: %.0f x %.0f m\n", c.Environment.XLength, c.Environment.YLength)
	fmt.Fprintf(&b, "  Max Columns: %d\n", c.Environment.MaxColumns)
	fmt.Fprintf(&b, "  Objective Min Distance Ratio: %.2f\n", c.Environment.ObjectiveMinDistanceRatio)

	fmt.Fprintf(&b, "\nSearch:\n")
	fmt.Fprintf(&b, "  Speed: %.2f-%.2f m/s (step %.2f)\n", c.Search.MinSpeed, c.Search.MaxSpeed, c.Search.SpeedIncrement)
	fmt.Fprintf(&b, "  Drones: %d-%d (step %d)\n", c.Search.MinDrones, c.Search.MaxDrones, c.Search.DroneIncrement)
	fmt.Fprintf(&b, "  Group Size: %d\n", c.Search.GroupSize)

	fmt.Fprintf(&b, "\nDrones:\n")
	fmt.Fprintf(&b, "  Strategy: %s\n", c.Drones.Strategy)
	fmt.Fprintf(&b, "  Vision Radius: %.1f m\n", c.Drones.VisionRadius)
	fmt.Fprintf(&b, "  Collision Check Radius: %.1f m\n", c.Drones.CollisionCheckRadius)
	fmt.Fprintf(&b, "  Movement Distance: %.1f m\n", c.Drones.MovementDistance)
	fmt.Fprintf(&b, "  Loss Probability: %.4f per tick\n", c.Drones.LossProbability)

	fmt.Fprintf(&b, "\nBattery:\n")
	fmt.Fprintf(&b, "  Capacity: %.1f Wh, Weight: %.2f kg\n", c.Battery.Capacity, c.Battery.Weight)
	fmt.Fprintf(&b, "  Airframe Weight: %.2f kg\n", c.Battery.InitialWeight)
	fmt.Fprintf(&b, "  Count: %d-%d\n", c.Battery.MinCount, c.Battery.MaxCount)

	fmt.Fprintf(&b, "\nOutput:\n")
	fmt.Fprintf(&b, "  Results: %s\n", c.Output.ResultsPath)
	if c.Output.ReportPath != "" {
		fmt.Fprintf(&b, "  Report: %s (%s)\n", c.Output.ReportPath, c.Output.ReportFormat)
	}
	return b.String()
}

// GetDefaultConfig returns the default search configuration
func GetDefaultConfig() *SearchConfig {
	return &SearchConfig{
		Simulation: SimulationSettings{
			Name:           "drone-search",
			Description:    "Drone swarm search feasibility simulation",
			Mode:           ModeBatch,
			UpdateInterval: 100 * time.Millisecond,
			Step:           0.1,
			SimSpeed:       10,
			Seed:           0,
		},

		Environment: EnvironmentConfig{
			XLength:                   2000,
			YLength:                   2000,
			MaxColumns:                3,
			ObjectiveMinDistanceRatio: 0.5,
		},

		Search: SearchBounds{
			MinSpeed:       2,
			MaxSpeed:       20,
			SpeedIncrement: 2,
			MinDrones:      1,
			MaxDrones:      6,
			DroneIncrement: 1,
			GroupSize:      3,
		},

		Drones: DroneConfig{
			Strategy:             core.StrategySpiral.String(),
			GroundOffset:         50,
			MovementTolerance:    1,
			MovementDistance:     100,
			CollisionCheckRadius: 20,
			VisionRadius:         30,
			YieldSteps:           4,
			SpawnSpacing:         10,
			LossProbability:      0,
		},

		Battery: BatteryConfig{
			Capacity:      100,
			Weight:        0.5,
			InitialWeight: 1.5,
			MinCount:      1,
			MaxCount:      4,
		},

		Spiral: SpiralConfig{
			Radius:            150,
			WanderDistance:    80,
			WanderSteps:       3,
			IncrementFactor:   1,
			ConcentricCircles: false,
			CirclePoints:      12,
		},

		Sweep: SweepConfig{
			Height: 60,
		},

		Output: OutputConfig{
			ResultsPath:  "results.txt",
			ReportPath:   "",
			ReportFormat: ReportJSON,
			LogLevel:     "info",
		},
	}
}
