package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/picogrid/drone-search-sim/pkg/logger"
	"github.com/picogrid/drone-search-sim/pkg/simulation"
	"gopkg.in/yaml.v3"
)

// SimulationInfo is a simulation.yaml found under cmd/
type SimulationInfo struct {
	Path   string
	Config simulation.SimulationConfig
}

// DiscoverSimulations finds every simulation.yaml below the project's cmd directory
func DiscoverSimulations() ([]SimulationInfo, error) {
	root, err := findProjectRoot()
	if err != nil {
		return nil, err
	}
	return DiscoverSimulationsIn(filepath.Join(root, "cmd"))
}

// DiscoverSimulationsIn scans dir recursively, sorted by simulation name.
// Unreadable descriptors are skipped with a warning.
func DiscoverSimulationsIn(dir string) ([]SimulationInfo, error) {
	var found []SimulationInfo

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != "simulation.yaml" {
			return nil
		}

		info, err := loadSimulationConfig(path)
		if err != nil {
			logger.Warnf("Skipping %s: %v", path, err)
			return nil
		}
		found = append(found, *info)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan for simulations: %w", err)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Config.Name < found[j].Config.Name })
	return found, nil
}

// FindSimulation returns the descriptor whose name matches
func FindSimulation(sims []SimulationInfo, name string) (SimulationInfo, bool) {
	for _, s := range sims {
		if s.Config.Name == name {
			return s, true
		}
	}
	return SimulationInfo{}, false
}

func loadSimulationConfig(path string) (*SimulationInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulation config: %w", err)
	}

	var config simulation.SimulationConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}
	if config.Name == "" {
		return nil, fmt.Errorf("simulation config has no name")
	}

	return &SimulationInfo{
		Path:   filepath.Dir(path),
		Config: config,
	}, nil
}

// findProjectRoot walks up from the working directory to the directory holding go.mod
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root (no go.mod found)")
		}
		dir = parent
	}
}
