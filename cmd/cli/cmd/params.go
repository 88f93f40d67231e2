package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/picogrid/drone-search-sim/pkg/config"
	"github.com/picogrid/drone-search-sim/pkg/simulation"
	"github.com/picogrid/drone-search-sim/pkg/utils"
)

// addParameterFlags registers the flags shared by commands that build a search configuration
func addParameterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config-file", "c", "", "search configuration file (YAML or TOML)")
	cmd.Flags().StringP("params", "p", "", "parameters file (YAML)")
	cmd.Flags().StringToString("set", nil, "parameter override, e.g. --set max_drones=4 (repeatable)")
}

// loadProfiles reads the profiles file named by --profiles-file or the default one
func loadProfiles() (*config.Profiles, string, error) {
	path := viper.GetString("profiles-file")
	if path == "" {
		var err error
		if path, err = config.ProfilesPath(); err != nil {
			return nil, "", err
		}
	}
	profiles, err := config.LoadProfilesFromFile(path)
	if err != nil {
		return nil, "", err
	}
	return profiles, path, nil
}

// activeProfile returns the profile named by --profile, else the selected one.
// It returns nil when neither is set.
func activeProfile() (*config.Profile, error) {
	profiles, _, err := loadProfiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	name := viper.GetString("profile")
	if name == "" {
		name = profiles.Selected
	}
	if name == "" {
		return nil, nil
	}

	profile, ok := profiles.Get(name)
	if !ok {
		return nil, fmt.Errorf("profile %s not found", name)
	}
	return &profile, nil
}

// loadParamsFile reads a flat YAML map of parameters
func loadParamsFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters file: %w", err)
	}
	params := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to parse parameters file: %w", err)
	}
	return params, nil
}

// collectParameters merges, from lowest to highest precedence: descriptor defaults or
// prompts (skipped when a configuration file is used), the active profile, the
// parameters file and --set overrides.
func collectParameters(cmd *cobra.Command, descriptor *simulation.SimulationConfig, interactive bool) (map[string]interface{}, error) {
	params := make(map[string]interface{})

	profile, err := activeProfile()
	if err != nil {
		return nil, err
	}

	configFile, _ := cmd.Flags().GetString("config-file")
	if configFile == "" && profile != nil {
		configFile = profile.ConfigFile
	}

	if configFile == "" && descriptor != nil {
		defs := make([]simulation.Parameter, len(descriptor.Parameters))
		copy(defs, descriptor.Parameters)
		if profile != nil {
			for i := range defs {
				if v, ok := profile.Parameters[defs[i].Name]; ok {
					defs[i].Default = v
				}
			}
		}

		resolved, err := utils.ResolveParameters(defs, interactive)
		if err != nil {
			return nil, err
		}
		for k, v := range resolved {
			params[k] = v
		}
	}

	if profile != nil {
		for k, v := range profile.Parameters {
			if _, ok := params[k]; !ok {
				params[k] = v
			}
		}
	}

	if path, _ := cmd.Flags().GetString("params"); path != "" {
		fileParams, err := loadParamsFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range fileParams {
			params[k] = v
		}
	}

	sets, _ := cmd.Flags().GetStringToString("set")
	for k, v := range sets {
		params[strings.TrimSpace(k)] = v
	}

	if configFile != "" {
		params["config_file"] = configFile
	}
	return params, nil
}

// describeParameters renders params as sorted key=value pairs
func describeParameters(params map[string]interface{}) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprintf("%s=%v", k, params[k])
	}
	return out
}
