package simulation

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/picogrid/drone-search-sim/cmd/drone-search/config"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/reporting"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/search"
	"github.com/picogrid/drone-search-sim/pkg/logger"
)

// Manager owns one feasibility search: it runs trials group by group, feeds group
// outcomes to the search and keeps the history. It is driven by Step and is not
// safe for concurrent use.
type Manager struct {
	cfg     *config.SearchConfig
	params  TrialParams
	search  *search.Search
	group   *search.Group
	spawner Spawner
	rng     *rand.Rand
	log     *reporting.SimulationLogger

	trial    *Trial
	trials   int
	history  []reporting.GroupRecord
	finished bool
}

// NewManager prepares a search for cfg. Entities go through spawner and events to simLogger.
func NewManager(cfg *config.SearchConfig, spawner Spawner, simLogger *reporting.SimulationLogger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	params, err := ParamsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if spawner == nil {
		spawner = NewEntityRegistry()
	}
	if simLogger == nil {
		simLogger = reporting.NewSimulationLogger("", nil)
	}

	s, err := search.New(cfg.Bounds(), cfg.Energy(), simLogger)
	if err != nil {
		return nil, err
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Manager{
		cfg:     cfg,
		params:  params,
		search:  s,
		group:   search.NewGroup(cfg.Search.GroupSize),
		spawner: spawner,
		rng:     rand.New(rand.NewSource(seed)),
		log:     simLogger,
	}, nil
}

// Step advances the current trial by one tick of dt-second sub-steps, starting a
// new trial first when none is running.
func (m *Manager) Step(dt float64) error {
	if m.finished {
		return nil
	}

	if m.trial == nil {
		if err := m.startTrial(); err != nil {
			return err
		}
	}

	if p := m.cfg.Drones.LossProbability; p > 0 && m.rng.Float64() < p {
		m.DroneLost()
	}

	m.trial.Step(dt)
	if m.trial.Done() {
		m.finishTrial()
	}
	return nil
}

// DroneLost removes a random live drone from the running trial
func (m *Manager) DroneLost() bool {
	if m.trial == nil {
		return false
	}
	d := m.trial.RemoveRandomDrone()
	if d == nil {
		return false
	}
	m.log.LogDroneLost(d.ID, d.Handle)
	return true
}

func (m *Manager) startTrial() error {
	c := m.search.Config()
	if m.group.Trials() == 0 {
		m.log.LogRecap(c, m.search.Weight(), m.cfg.Battery.Capacity, m.search.MaxTimePerSim())
	}

	t, err := NewTrial(m.params, c, m.search.MaxTimePerSim(), m.spawner, m.rng)
	if err != nil {
		return fmt.Errorf("failed to start trial: %w", err)
	}
	m.trial = t
	m.trials++
	return nil
}

func (m *Manager) finishTrial() {
	outcome := m.trial.Outcome()
	m.trial.Close()
	m.trial = nil

	m.log.LogTrial(m.trials, outcome.Found, outcome.Elapsed, outcome.DronesLost)
	m.group.Add(outcome.Found, outcome.Elapsed)
	if !m.group.Complete() {
		return
	}

	c := m.search.Config()
	result := m.group.Result()
	m.history = append(m.history, reporting.NewGroupRecord(
		len(m.history)+1, c, m.search.Weight(), m.search.MaxTimePerSim(), result))
	m.log.LogGroup(c, result)

	recorded := len(m.search.Points())
	m.search.Apply(result)
	for _, p := range m.search.Points()[recorded:] {
		m.log.LogFeasibilityPoint(p)
	}
	m.group.Reset()

	if m.search.Done() {
		m.finished = true
		logger.Debugf("Search finished after %d groups and %d trials", m.search.Groups(), m.trials)
	}
}

// Finished reports whether the search has passed the swarm-size bound
func (m *Manager) Finished() bool { return m.finished }

// Results returns the result lines of the search
func (m *Manager) Results() []string { return m.search.ResultLines() }

func (m *Manager) Search() *search.Search              { return m.search }
func (m *Manager) History() []reporting.GroupRecord    { return append([]reporting.GroupRecord(nil), m.history...) }
func (m *Manager) CurrentTrial() *Trial                { return m.trial }
func (m *Manager) TrialCount() int                     { return m.trials }
func (m *Manager) Logger() *reporting.SimulationLogger { return m.log }

// Close tears down a trial left running by an interrupted search
func (m *Manager) Close() {
	if m.trial != nil {
		m.trial.Close()
		m.trial = nil
	}
}
