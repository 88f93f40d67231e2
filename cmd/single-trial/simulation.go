package singletrial

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	searchconfig "github.com/picogrid/drone-search-sim/cmd/drone-search/config"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/search"
	searchsim "github.com/picogrid/drone-search-sim/cmd/drone-search/simulation"
	"github.com/picogrid/drone-search-sim/pkg/logger"
	"github.com/picogrid/drone-search-sim/pkg/simulation"
)

const simulationName = "Single Trial"

// TrialSimulation flies a fixed configuration for a few trials and reports the drones as they go
type TrialSimulation struct {
	config   *Config
	registry *searchsim.EntityRegistry
	results  []string
	mu       sync.Mutex
	stopChan chan struct{}
}

// NewTrialSimulation creates a new instance of the single trial simulation
func NewTrialSimulation() simulation.Simulation {
	return &TrialSimulation{
		stopChan: make(chan struct{}),
	}
}

// Name returns the simulation name
func (s *TrialSimulation) Name() string {
	return simulationName
}

// Description returns the simulation description
func (s *TrialSimulation) Description() string {
	return "Flies one fixed swarm configuration and reports drone positions and the trial outcome"
}

// Configure sets up the simulation with provided parameters
func (s *TrialSimulation) Configure(params map[string]interface{}) error {
	config, err := ValidateAndParse(params)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	s.config = config
	logger.SetLevel(logger.ParseLevel(config.Search.Output.LogLevel))
	return nil
}

// Run executes the simulation
func (s *TrialSimulation) Run(ctx context.Context) error {
	if s.config == nil {
		if err := s.Configure(map[string]interface{}{}); err != nil {
			return err
		}
	}

	cfg := s.config
	logger.Infof("Starting %s simulation with %d %s drones at %.1f m/s",
		s.Name(), cfg.Drones, cfg.Search.Drones.Strategy, cfg.Speed)

	params, err := searchsim.ParamsFromConfig(cfg.Search)
	if err != nil {
		return err
	}

	seed := cfg.Search.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	s.registry = searchsim.NewEntityRegistry()

	configuration := search.Configuration{Speed: cfg.Speed, Drones: cfg.Drones, Batteries: cfg.Batteries}
	budget := cfg.TimeBudget()
	logger.LogKeyValue("Time budget", fmt.Sprintf("%.0fs", budget))
	logger.LogKeyValue("Weight", fmt.Sprintf("%.2fkg", cfg.Search.Energy().Weight(cfg.Batteries)))

	group := search.NewGroup(cfg.Trials)
	var results []string

	for i := 1; i <= cfg.Trials; i++ {
		trial, err := searchsim.NewTrial(params, configuration, budget, s.registry, rng)
		if err != nil {
			return fmt.Errorf("failed to start trial %d: %w", i, err)
		}

		logger.LogSubSection(fmt.Sprintf("Trial %d/%d", i, cfg.Trials))
		obj := trial.Objective()
		logger.Debugf("Objective at (%.1f, %.1f)", obj.X, obj.Y)

		stopped, err := s.fly(ctx, trial)
		trial.Close()
		if err != nil {
			return err
		}
		if stopped {
			return nil
		}

		outcome := trial.Outcome()
		group.Add(outcome.Found, outcome.Elapsed)
		line := fmt.Sprintf("trial %d: not found within %.1fs", i, outcome.Elapsed)
		if outcome.Found {
			line = fmt.Sprintf("trial %d: found after %.1fs", i, outcome.Elapsed)
			logger.Successf("Objective found after %.1fs", outcome.Elapsed)
		} else {
			logger.Warnf("Objective not found within %.1fs", outcome.Elapsed)
		}
		results = append(results, line)
	}

	result := group.Result()
	verdict := "fail"
	if result.Success() {
		verdict = "success"
	}
	results = append(results, fmt.Sprintf("%s: %d/%d trials, mean time to find %.1fs",
		verdict, result.Successes, result.Trials, result.MeanTimeToFind))

	s.mu.Lock()
	s.results = results
	s.mu.Unlock()

	logger.LogList("Outcome", results)
	return nil
}

// fly steps one trial to completion. It reports true when the simulation was stopped.
func (s *TrialSimulation) fly(ctx context.Context, trial *searchsim.Trial) (bool, error) {
	cfg := s.config
	realtime := cfg.Search.Simulation.Mode == searchconfig.ModeRealtime

	var tick <-chan time.Time
	if realtime {
		ticker := time.NewTicker(cfg.UpdateInterval())
		defer ticker.Stop()
		tick = ticker.C
	}

	for ticks := 1; !trial.Done(); ticks++ {
		if realtime {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-s.stopChan:
				logger.Info("Simulation stopped by user")
				return true, nil
			case <-tick:
			}
		} else {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-s.stopChan:
				logger.Info("Simulation stopped by user")
				return true, nil
			default:
			}
		}

		trial.Step(cfg.Search.Simulation.Step)
		if cfg.ReportEvery > 0 && ticks%cfg.ReportEvery == 0 {
			reportPositions(trial)
		}
	}
	return false, nil
}

func reportPositions(trial *searchsim.Trial) {
	table := logger.NewTable("DRONE", "X", "Y", "Z", "STATE")
	for _, d := range trial.Drones() {
		state := "searching"
		switch {
		case d.Yielding():
			state = "yielding"
		case d.Avoiding():
			state = "avoiding"
		}
		table.AddRow(fmt.Sprintf("%d", d.ID),
			fmt.Sprintf("%.1f", d.Position.X),
			fmt.Sprintf("%.1f", d.Position.Y),
			fmt.Sprintf("%.1f", d.Position.Z),
			state)
	}
	logger.Infof("t=%.1fs", trial.Elapsed())
	table.Print()
}

// Results returns one line per trial followed by the majority verdict
func (s *TrialSimulation) Results() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.results...)
}

// Stop gracefully shuts down the simulation
func (s *TrialSimulation) Stop() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	return nil
}

// init registers the simulation
func init() {
	err := simulation.DefaultRegistry.Register(simulationName, NewTrialSimulation)
	if err != nil {
		logger.Errorf("Failed to register simulation: %v", err)
		return
	}
}
