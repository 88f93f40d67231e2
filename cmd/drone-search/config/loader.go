package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/picogrid/drone-search-sim/pkg/logger"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. DRONE_SEARCH_MAX_DRONES
const EnvPrefix = "DRONE_SEARCH_"

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// LoadConfig loads configuration from a YAML or TOML file (chosen by extension)
func LoadConfig(path string) (*SearchConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Start from defaults so partial files stay valid
	config := GetDefaultConfig()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads config from path or a default location, falling back
// to the built-in defaults. Environment overrides are always applied.
func LoadConfigOrDefault(path string) (*SearchConfig, error) {
	var config *SearchConfig

	if path != "" {
		c, err := LoadConfig(path)
		if err != nil {
			logger.Warnf("Could not load config from %s: %v", path, err)
		} else {
			config = c
		}
	}

	if config == nil {
		defaultPaths := []string{
			"drone-search.yaml",
			"drone-search.toml",
			filepath.Join("cmd", "drone-search", "config.yaml"),
		}

		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if c, err := LoadConfig(p); err == nil {
				logger.Debugf("Loaded config from: %s", p)
				config = c
				break
			}
		}
	}

	if config == nil {
		logger.Debug("Using default configuration")
		config = GetDefaultConfig()
	}

	MergeWithEnvironment(config)

	return config, nil
}

// SaveConfig writes configuration to a YAML or TOML file (chosen by extension)
func SaveConfig(config *SearchConfig, path string) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var data []byte
	if isTOML(path) {
		var b strings.Builder
		if err := toml.NewEncoder(&b).Encode(config); err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		data = []byte(b.String())
	} else {
		var err error
		data, err = yaml.Marshal(config)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// LoadConfigWithOverrides loads config and applies environment then CLI overrides
func LoadConfigWithOverrides(path string, cliOverrides map[string]interface{}) (*SearchConfig, error) {
	config, err := LoadConfigOrDefault(path)
	if err != nil {
		return nil, err
	}

	if err := MergeWithCLIOverrides(config, cliOverrides); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed after overrides: %w", err)
	}

	return config, nil
}

// MergeWithCLIOverrides applies flat key/value overrides. Values are coerced to the
// field type; unknown keys are ignored.
func MergeWithCLIOverrides(config *SearchConfig, overrides map[string]interface{}) error {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		set, ok := overrideFields[key]
		if !ok {
			continue
		}
		if err := set(config, overrides[key]); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}
	return nil
}

// MergeWithEnvironment applies DRONE_SEARCH_<KEY> variables for every override key.
// Unparseable values are skipped with a warning.
func MergeWithEnvironment(config *SearchConfig) {
	for _, key := range OverrideKeys() {
		env := EnvPrefix + strings.ToUpper(key)
		value, ok := os.LookupEnv(env)
		if !ok || value == "" {
			continue
		}
		if err := overrideFields[key](config, value); err != nil {
			logger.Warnf("Ignoring %s: %v", env, err)
		}
	}
}

// OverrideKeys lists every flat key accepted by MergeWithCLIOverrides
func OverrideKeys() []string {
	keys := make([]string, 0, len(overrideFields))
	for k := range overrideFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type fieldSetter func(c *SearchConfig, value interface{}) error

func floatField(field func(*SearchConfig) *float64) fieldSetter {
	return func(c *SearchConfig, value interface{}) error {
		v, err := cast.ToFloat64E(value)
		if err != nil {
			return err
		}
		*field(c) = v
		return nil
	}
}

func intField(field func(*SearchConfig) *int) fieldSetter {
	return func(c *SearchConfig, value interface{}) error {
		v, err := cast.ToIntE(value)
		if err != nil {
			return err
		}
		*field(c) = v
		return nil
	}
}

func int64Field(field func(*SearchConfig) *int64) fieldSetter {
	return func(c *SearchConfig, value interface{}) error {
		v, err := cast.ToInt64E(value)
		if err != nil {
			return err
		}
		*field(c) = v
		return nil
	}
}

func durationField(field func(*SearchConfig) *time.Duration) fieldSetter {
	return func(c *SearchConfig, value interface{}) error {
		v, err := cast.ToDurationE(value)
		if err != nil {
			return err
		}
		if v <= 0 {
			return fmt.Errorf("duration must be positive, got %v", v)
		}
		*field(c) = v
		return nil
	}
}

func boolField(field func(*SearchConfig) *bool) fieldSetter {
	return func(c *SearchConfig, value interface{}) error {
		v, err := cast.ToBoolE(value)
		if err != nil {
			return err
		}
		*field(c) = v
		return nil
	}
}

func stringField(field func(*SearchConfig) *string, lower bool) fieldSetter {
	return func(c *SearchConfig, value interface{}) error {
		v, err := cast.ToStringE(value)
		if err != nil {
			return err
		}
		if lower {
			v = strings.ToLower(strings.TrimSpace(v))
		}
		*field(c) = v
		return nil
	}
}

var overrideFields = map[string]fieldSetter{
	"mode":            stringField(func(c *SearchConfig) *string { return &c.Simulation.Mode }, true),
	"update_interval": durationField(func(c *SearchConfig) *time.Duration { return &c.Simulation.UpdateInterval }),
	"step":            floatField(func(c *SearchConfig) *float64 { return &c.Simulation.Step }),
	"sim_speed":       intField(func(c *SearchConfig) *int { return &c.Simulation.SimSpeed }),
	"seed":            int64Field(func(c *SearchConfig) *int64 { return &c.Simulation.Seed }),

	"environment_x_length": floatField(func(c *SearchConfig) *float64 { return &c.Environment.XLength }),
	"environment_y_length": floatField(func(c *SearchConfig) *float64 { return &c.Environment.YLength }),
	"env_max_columns":      intField(func(c *SearchConfig) *int { return &c.Environment.MaxColumns }),
	"min_distance_ratio":   floatField(func(c *SearchConfig) *float64 { return &c.Environment.ObjectiveMinDistanceRatio }),

	"min_speed":       floatField(func(c *SearchConfig) *float64 { return &c.Search.MinSpeed }),
	"max_speed":       floatField(func(c *SearchConfig) *float64 { return &c.Search.MaxSpeed }),
	"speed_increment": floatField(func(c *SearchConfig) *float64 { return &c.Search.SpeedIncrement }),
	"min_drones":      intField(func(c *SearchConfig) *int { return &c.Search.MinDrones }),
	"max_drones":      intField(func(c *SearchConfig) *int { return &c.Search.MaxDrones }),
	"drone_increment": intField(func(c *SearchConfig) *int { return &c.Search.DroneIncrement }),
	"sim_group_size":  intField(func(c *SearchConfig) *int { return &c.Search.GroupSize }),

	"strategy":               stringField(func(c *SearchConfig) *string { return &c.Drones.Strategy }, true),
	"ground_offset":          floatField(func(c *SearchConfig) *float64 { return &c.Drones.GroundOffset }),
	"movement_tolerance":     floatField(func(c *SearchConfig) *float64 { return &c.Drones.MovementTolerance }),
	"movement_distance":      floatField(func(c *SearchConfig) *float64 { return &c.Drones.MovementDistance }),
	"collision_check_radius": floatField(func(c *SearchConfig) *float64 { return &c.Drones.CollisionCheckRadius }),
	"vision_radius":          floatField(func(c *SearchConfig) *float64 { return &c.Drones.VisionRadius }),
	"yield_steps":            intField(func(c *SearchConfig) *int { return &c.Drones.YieldSteps }),
	"spawn_spacing":          floatField(func(c *SearchConfig) *float64 { return &c.Drones.SpawnSpacing }),
	"drone_loss_probability": floatField(func(c *SearchConfig) *float64 { return &c.Drones.LossProbability }),

	"battery_capacity":  floatField(func(c *SearchConfig) *float64 { return &c.Battery.Capacity }),
	"battery_weight":    floatField(func(c *SearchConfig) *float64 { return &c.Battery.Weight }),
	"initial_weight":    floatField(func(c *SearchConfig) *float64 { return &c.Battery.InitialWeight }),
	"min_battery_count": intField(func(c *SearchConfig) *int { return &c.Battery.MinCount }),
	"max_battery_count": intField(func(c *SearchConfig) *int { return &c.Battery.MaxCount }),

	"spiral_radius":           floatField(func(c *SearchConfig) *float64 { return &c.Spiral.Radius }),
	"wander_distance":         floatField(func(c *SearchConfig) *float64 { return &c.Spiral.WanderDistance }),
	"wander_steps":            intField(func(c *SearchConfig) *int { return &c.Spiral.WanderSteps }),
	"spiral_increment_factor": floatField(func(c *SearchConfig) *float64 { return &c.Spiral.IncrementFactor }),
	"concentric_circles":      boolField(func(c *SearchConfig) *bool { return &c.Spiral.ConcentricCircles }),
	"circle_points":           intField(func(c *SearchConfig) *int { return &c.Spiral.CirclePoints }),

	"sweep_height": floatField(func(c *SearchConfig) *float64 { return &c.Sweep.Height }),

	"results_path":  stringField(func(c *SearchConfig) *string { return &c.Output.ResultsPath }, false),
	"report_path":   stringField(func(c *SearchConfig) *string { return &c.Output.ReportPath }, false),
	"report_format": stringField(func(c *SearchConfig) *string { return &c.Output.ReportFormat }, true),
	"log_level":     stringField(func(c *SearchConfig) *string { return &c.Output.LogLevel }, true),
	"verbose":       boolField(func(c *SearchConfig) *bool { return &c.Output.Verbose }),
}
