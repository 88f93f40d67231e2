package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/picogrid/drone-search-sim/cmd/drone-search/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig("../config.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Simulation.Name != "drone-search" {
		t.Errorf("Expected simulation name 'drone-search', got '%s'", config.Simulation.Name)
	}

	if config.Simulation.UpdateInterval != 100*time.Millisecond {
		t.Errorf("Expected update interval 100ms, got %v", config.Simulation.UpdateInterval)
	}

	if config.Simulation.Mode != ModeBatch {
		t.Errorf("Expected batch mode, got %s", config.Simulation.Mode)
	}

	if config.Environment.XLength != 2000 || config.Environment.YLength != 2000 {
		t.Errorf("Expected 2000x2000 environment, got %.0fx%.0f", config.Environment.XLength, config.Environment.YLength)
	}

	if config.Search.GroupSize != 3 {
		t.Errorf("Expected group size 3, got %d", config.Search.GroupSize)
	}

	id, err := config.StrategyID()
	if err != nil || id != core.StrategySpiral {
		t.Errorf("Expected spiral strategy, got %v (%v)", id, err)
	}

	if config.Spiral.CirclePoints != 12 {
		t.Errorf("Expected 12 circle points, got %d", config.Spiral.CirclePoints)
	}

	// The shipped file mirrors the built-in defaults
	assert.Equal(t, GetDefaultConfig(), config)
}

func TestDefaultConfig(t *testing.T) {
	config := GetDefaultConfig()

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}

	if config.TickDuration() != 1.0 {
		t.Errorf("Expected one simulated second per tick, got %f", config.TickDuration())
	}

	bounds := config.Bounds()
	if bounds.MinSpeed != 2 || bounds.MaxSpeed != 20 {
		t.Errorf("Unexpected speed bounds %+v", bounds)
	}

	params := config.MotionParams()
	if params.SweepHeight != config.Sweep.Height || params.SpiralRadius != config.Spiral.Radius {
		t.Errorf("Motion params do not match config: %+v", params)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*SearchConfig)
	}{
		{"empty name", func(c *SearchConfig) { c.Simulation.Name = "" }},
		{"unknown mode", func(c *SearchConfig) { c.Simulation.Mode = "turbo" }},
		{"realtime without interval", func(c *SearchConfig) {
			c.Simulation.Mode = ModeRealtime
			c.Simulation.UpdateInterval = 0
		}},
		{"zero sim speed", func(c *SearchConfig) { c.Simulation.SimSpeed = 0 }},
		{"zero columns", func(c *SearchConfig) { c.Environment.MaxColumns = 0 }},
		{"ratio above one", func(c *SearchConfig) { c.Environment.ObjectiveMinDistanceRatio = 1.5 }},
		{"max speed below min", func(c *SearchConfig) { c.Search.MaxSpeed = 1 }},
		{"zero group", func(c *SearchConfig) { c.Search.GroupSize = 0 }},
		{"zero min batteries", func(c *SearchConfig) { c.Battery.MinCount = 0 }},
		{"unknown strategy", func(c *SearchConfig) { c.Drones.Strategy = "zigzag" }},
		{"loss probability", func(c *SearchConfig) { c.Drones.LossProbability = 2 }},
		{"no circle points", func(c *SearchConfig) { c.Spiral.CirclePoints = 0 }},
		{"no sweep height", func(c *SearchConfig) { c.Sweep.Height = 0 }},
		{"report format", func(c *SearchConfig) { c.Output.ReportFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.modify(config)
			if err := config.Validate(); err == nil {
				t.Errorf("Expected validation error for %s", tt.name)
			}
		})
	}
}

func TestMergeWithEnvironment(t *testing.T) {
	config := GetDefaultConfig()

	t.Setenv("DRONE_SEARCH_MAX_DRONES", "9")
	t.Setenv("DRONE_SEARCH_STRATEGY", "Sweep")
	t.Setenv("DRONE_SEARCH_UPDATE_INTERVAL", "250ms")
	t.Setenv("DRONE_SEARCH_CONCENTRIC_CIRCLES", "true")
	t.Setenv("DRONE_SEARCH_VISION_RADIUS", "not-a-number")

	MergeWithEnvironment(config)

	if config.Search.MaxDrones != 9 {
		t.Errorf("Expected max drones 9, got %d", config.Search.MaxDrones)
	}
	if config.Drones.Strategy != "sweep" {
		t.Errorf("Expected strategy sweep, got %s", config.Drones.Strategy)
	}
	if config.Simulation.UpdateInterval != 250*time.Millisecond {
		t.Errorf("Expected update interval 250ms, got %v", config.Simulation.UpdateInterval)
	}
	if !config.Spiral.ConcentricCircles {
		t.Error("Expected concentric circles to be enabled")
	}
	if config.Drones.VisionRadius != 30 {
		t.Errorf("Invalid env value should be ignored, got vision radius %f", config.Drones.VisionRadius)
	}
}

func TestMergeWithCLIOverrides(t *testing.T) {
	config := GetDefaultConfig()

	err := MergeWithCLIOverrides(config, map[string]interface{}{
		"min_speed":      4,
		"max_speed":      "16.5",
		"sim_group_size": 5.0,
		"strategy":       3,
		"seed":           "42",
		"mode":           "REALTIME",
		"not_a_key":      "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, 4.0, config.Search.MinSpeed)
	assert.Equal(t, 16.5, config.Search.MaxSpeed)
	assert.Equal(t, 5, config.Search.GroupSize)
	assert.Equal(t, "3", config.Drones.Strategy)
	assert.Equal(t, int64(42), config.Simulation.Seed)
	assert.Equal(t, ModeRealtime, config.Simulation.Mode)
	assert.NoError(t, config.Validate())

	err = MergeWithCLIOverrides(config, map[string]interface{}{"max_drones": "many"})
	assert.ErrorContains(t, err, "max_drones")
}

func TestLoadConfigWithOverrides(t *testing.T) {
	_, err := LoadConfigWithOverrides("../config.yaml", map[string]interface{}{"max_speed": 1})
	assert.Error(t, err, "max speed below min speed must fail validation")

	config, err := LoadConfigWithOverrides("../config.yaml", map[string]interface{}{"max_drones": 2})
	require.NoError(t, err)
	assert.Equal(t, 2, config.Search.MaxDrones)
}

func TestSaveAndLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.toml")

	config := GetDefaultConfig()
	config.Drones.Strategy = "random"
	config.Environment.YLength = 3500
	config.Simulation.UpdateInterval = 2 * time.Second
	require.NoError(t, SaveConfig(config, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "random", loaded.Drones.Strategy)
	assert.Equal(t, 3500.0, loaded.Environment.YLength)
	assert.Equal(t, 2*time.Second, loaded.Simulation.UpdateInterval)
}

func TestLoadPartialTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.toml")
	content := `
[search]
max_drones = 4
group_size = 1

[drones]
strategy = "sweep"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, config.Search.MaxDrones)
	assert.Equal(t, 1, config.Search.GroupSize)
	assert.Equal(t, "sweep", config.Drones.Strategy)
	assert.Equal(t, 2000.0, config.Environment.XLength, "unset fields keep defaults")
}

func TestSaveConfigRejectsInvalid(t *testing.T) {
	config := GetDefaultConfig()
	config.Search.MinDrones = 0
	assert.Error(t, SaveConfig(config, filepath.Join(t.TempDir(), "bad.yaml")))
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "not found")
}
