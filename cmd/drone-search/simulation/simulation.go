package simulation

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/picogrid/drone-search-sim/cmd/drone-search/config"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/reporting"
	"github.com/picogrid/drone-search-sim/pkg/logger"
	"github.com/picogrid/drone-search-sim/pkg/simulation"
)

// SimulationName is the name the search registers under
const SimulationName = "Drone Search"

// ConfigFileParam names the parameter holding an optional configuration file path
const ConfigFileParam = "config_file"

// DroneSearchSimulation runs a feasibility search as a registered simulation
type DroneSearchSimulation struct {
	config     *config.SearchConfig
	configPath string

	registry  *EntityRegistry
	simLogger *reporting.SimulationLogger
	manager   *Manager
	results   []string
	history   []reporting.GroupRecord

	mu       sync.RWMutex
	stopChan chan struct{}
}

// NewDroneSearchSimulation creates a new, unconfigured search simulation
func NewDroneSearchSimulation() simulation.Simulation {
	return &DroneSearchSimulation{
		stopChan: make(chan struct{}),
	}
}

// Name returns the simulation name
func (s *DroneSearchSimulation) Name() string {
	return SimulationName
}

// Description returns the simulation description
func (s *DroneSearchSimulation) Description() string {
	return "Searches for the cheapest drone swarm (speed, size, batteries) that finds a hidden objective within its battery budget"
}

// Configure loads the configuration file named by config_file (or the defaults) and
// applies every other parameter as a flat override.
func (s *DroneSearchSimulation) Configure(params map[string]interface{}) error {
	logger.Info("Configuring drone search simulation...")

	overrides := make(map[string]interface{}, len(params))
	for k, v := range params {
		if k == ConfigFileParam {
			if path, ok := v.(string); ok {
				s.configPath = path
			}
			continue
		}
		overrides[k] = v
	}

	cfg, err := config.LoadConfigWithOverrides(s.configPath, overrides)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Output.LogLevel))
	s.config = cfg

	logger.Infof("Configuration: %s strategy, %d-%d drones at %.1f-%.1f m/s, %d trials per configuration",
		cfg.Drones.Strategy, cfg.Search.MinDrones, cfg.Search.MaxDrones,
		cfg.Search.MinSpeed, cfg.Search.MaxSpeed, cfg.Search.GroupSize)
	return nil
}

// Config returns the active configuration
func (s *DroneSearchSimulation) Config() *config.SearchConfig {
	return s.config
}

// Run executes the search until it completes, Stop is called or ctx is cancelled
func (s *DroneSearchSimulation) Run(ctx context.Context) error {
	if s.config == nil {
		if err := s.Configure(nil); err != nil {
			return err
		}
	}
	logger.Infof("Starting %s simulation", s.Name())

	s.registry = NewEntityRegistry()
	s.simLogger = reporting.NewSimulationLogger("", os.Stdout)
	s.simLogger.SetVerbose(s.config.Output.Verbose)

	manager, err := NewManager(s.config, s.registry, s.simLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize search: %w", err)
	}
	defer manager.Close()

	s.mu.Lock()
	s.manager = manager
	s.mu.Unlock()

	var completed bool
	if s.config.Simulation.Mode == config.ModeRealtime {
		completed, err = s.runRealtime(ctx, manager)
	} else {
		completed, err = s.runBatch(ctx, manager)
	}
	if err != nil || !completed {
		return err
	}

	s.complete(manager)
	return nil
}

// runRealtime advances the search once per UpdateInterval
func (s *DroneSearchSimulation) runRealtime(ctx context.Context, m *Manager) (bool, error) {
	logger.Infof("Running in realtime mode (tick every %v)", s.config.Simulation.UpdateInterval)

	ticker := time.NewTicker(s.config.Simulation.UpdateInterval)
	defer ticker.Stop()

	for !m.Finished() {
		select {
		case <-ctx.Done():
			logger.Info("Simulation cancelled by context")
			return false, ctx.Err()

		case <-s.stopChan:
			logger.Info("Simulation stopped by user")
			return false, nil

		case <-ticker.C:
			if err := m.Step(s.config.Simulation.Step); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

// runBatch advances the search as fast as possible, checking for cancellation between ticks
func (s *DroneSearchSimulation) runBatch(ctx context.Context, m *Manager) (bool, error) {
	logger.Info("Running in batch mode")

	for !m.Finished() {
		select {
		case <-ctx.Done():
			logger.Info("Simulation cancelled by context")
			return false, ctx.Err()

		case <-s.stopChan:
			logger.Info("Simulation stopped by user")
			return false, nil

		default:
		}

		if err := m.Step(s.config.Simulation.Step); err != nil {
			return false, err
		}
	}
	return true, nil
}

// complete emits the result lines and the optional run report
func (s *DroneSearchSimulation) complete(m *Manager) {
	results := m.Results()
	history := m.History()

	s.mu.Lock()
	s.results = results
	s.history = history
	s.mu.Unlock()

	logger.LogSection("Feasibility Results")
	for _, line := range results {
		logger.Info(line)
	}

	if path := s.config.Output.ResultsPath; path != "" {
		if reporting.EmitResults(results, reporting.NewFileSink(path)) == 1 {
			logger.Successf("Results written to: %s", path)
		}
	}

	if s.config.Output.ReportPath != "" {
		if err := s.saveReport(m); err != nil {
			s.simLogger.LogError("Failed to save run report", err, nil)
		}
	}

	s.simLogger.PrintSummary()
	logger.Successf("Search completed after %d groups and %d trials", m.Search().Groups(), m.TrialCount())
}

func (s *DroneSearchSimulation) saveReport(m *Manager) error {
	cfgMap, err := reporting.ConfigMap(s.config)
	if err != nil {
		return err
	}

	gen := reporting.NewReportGenerator(s.simLogger, reporting.ReportConfig{
		Path:          s.config.Output.ReportPath,
		Format:        s.config.Output.ReportFormat,
		Strategy:      s.config.Drones.Strategy,
		Seed:          s.config.Simulation.Seed,
		Configuration: cfgMap,
	})
	return gen.Save(gen.Generate(m.Search().Points(), m.Results(), m.History()))
}

// Results returns the result lines of the last completed run
func (s *DroneSearchSimulation) Results() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.results...)
}

// History returns the group outcomes of the last completed run
func (s *DroneSearchSimulation) History() []reporting.GroupRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]reporting.GroupRecord(nil), s.history...)
}

// Stop gracefully shuts down the simulation
func (s *DroneSearchSimulation) Stop() error {
	select {
	case <-s.stopChan:
		// Already closed
	default:
		close(s.stopChan)
	}
	return nil
}

// init registers the simulation
func init() {
	err := simulation.DefaultRegistry.Register(SimulationName, NewDroneSearchSimulation)
	if err != nil {
		logger.Errorf("Failed to register drone search simulation: %v", err)
		return
	}
}
