package singletrial

import (
	"fmt"
	"time"

	searchconfig "github.com/picogrid/drone-search-sim/cmd/drone-search/config"
)

// Config holds the configuration for a fixed-configuration trial run
type Config struct {
	Speed       float64
	Drones      int
	Batteries   int
	Trials      int
	ReportEvery int // ticks between position reports, 0 disables them

	// Search carries the environment, strategy and stepping settings
	Search *searchconfig.SearchConfig
}

// trialKeys are consumed here; every other parameter is passed to the search configuration
var trialKeys = map[string]bool{
	"speed":        true,
	"drones":       true,
	"batteries":    true,
	"trials":       true,
	"report_every": true,
	"config_file":  true,
}

// ValidateAndParse validates and parses the raw parameters into a Config
func ValidateAndParse(params map[string]interface{}) (*Config, error) {
	config := &Config{Drones: 3, Batteries: 1, Trials: 1, ReportEvery: 50}

	// Parse speed
	if v, ok := params["speed"]; ok {
		switch val := v.(type) {
		case float64:
			config.Speed = val
		case int:
			config.Speed = float64(val)
		default:
			return nil, fmt.Errorf("speed must be a number")
		}
	}

	// Parse counts
	for key, dst := range map[string]*int{
		"drones":       &config.Drones,
		"batteries":    &config.Batteries,
		"trials":       &config.Trials,
		"report_every": &config.ReportEvery,
	} {
		v, ok := params[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case int:
			*dst = val
		case float64:
			*dst = int(val)
		default:
			return nil, fmt.Errorf("%s must be an integer", key)
		}
	}

	configFile, _ := params["config_file"].(string)
	overrides := make(map[string]interface{})
	for k, v := range params {
		if !trialKeys[k] {
			overrides[k] = v
		}
	}
	search, err := searchconfig.LoadConfigWithOverrides(configFile, overrides)
	if err != nil {
		return nil, err
	}
	config.Search = search

	if config.Speed == 0 {
		config.Speed = search.Search.MinSpeed
	}
	if config.Speed <= 0 {
		return nil, fmt.Errorf("speed must be positive")
	}
	if config.Drones < 1 {
		return nil, fmt.Errorf("drones must be at least 1")
	}
	if config.Batteries < 1 {
		return nil, fmt.Errorf("batteries must be at least 1")
	}
	if config.Trials < 1 {
		return nil, fmt.Errorf("trials must be at least 1")
	}
	if config.ReportEvery < 0 {
		return nil, fmt.Errorf("report_every must not be negative")
	}

	return config, nil
}

// TimeBudget is the flight time in seconds allowed by the configured battery count
func (c *Config) TimeBudget() float64 {
	energy := c.Search.Energy()
	energy.MaxBatteryCount = c.Batteries
	return energy.Autonomy(c.Speed)
}

// UpdateInterval is the wall-clock tick period in realtime mode
func (c *Config) UpdateInterval() time.Duration {
	return c.Search.Simulation.UpdateInterval
}
