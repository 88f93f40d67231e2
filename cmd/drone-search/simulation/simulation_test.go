package simulation

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/picogrid/drone-search-sim/cmd/drone-search/config"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/core"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/reporting"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/search"
	"github.com/picogrid/drone-search-sim/pkg/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTrialParams(strategy core.StrategyID) TrialParams {
	return TrialParams{
		Strategy: strategy,
		Motion: core.MotionParams{
			MovementDistance: 10,
			WanderDistance:   20,
			WanderSteps:      2,
			SpiralRadius:     15,
			IncrementFactor:  1,
			CirclePoints:     8,
			SweepHeight:      20,
		},
		Drone:                     core.DroneSettings{MovementTolerance: 0.5, YieldSteps: 2},
		Environment:               core.Vector2D{X: 100, Y: 100},
		MaxColumns:                2,
		ObjectiveMinDistanceRatio: 0.5,
		GroundOffset:              10,
		SpawnSpacing:              5,
		CollisionRadius:           20,
		VisionRadius:              30,
		Step:                      0.5,
		SimSpeed:                  10,
	}
}

// quickConfig makes every trial succeed on its first sub-step
func quickConfig(t *testing.T) *config.SearchConfig {
	t.Helper()
	cfg := config.GetDefaultConfig()
	cfg.Search.MinSpeed = 1
	cfg.Search.MaxSpeed = 3
	cfg.Search.SpeedIncrement = 1
	cfg.Search.MinDrones = 1
	cfg.Search.MaxDrones = 2
	cfg.Search.DroneIncrement = 1
	cfg.Search.GroupSize = 3
	cfg.Drones.VisionRadius = 1e6
	cfg.Simulation.Seed = 42
	cfg.Output.ResultsPath = ""
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestEntityRegistry(t *testing.T) {
	r := NewEntityRegistry()
	a := r.Spawn(EntityDrone, core.Vector3D{X: 1}, core.Vector3D{})
	b := r.Spawn(EntityObjective, core.Vector3D{X: 2}, core.Vector3D{})
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, r.Live())
	assert.Equal(t, 1, r.Count(EntityDrone))

	e, ok := r.Get(b)
	require.True(t, ok)
	assert.Equal(t, EntityObjective, e.Kind)
	assert.Equal(t, 2.0, e.Position.X)

	r.Destroy(a)
	r.Destroy(a)
	spawned, destroyed := r.Totals()
	assert.Equal(t, 2, spawned)
	assert.Equal(t, 1, destroyed)
	assert.Equal(t, 1, r.Live())
}

func TestNewTrialSpawnsSwarm(t *testing.T) {
	registry := NewEntityRegistry()
	params := testTrialParams(core.StrategySpiral)
	trial, err := NewTrial(params, search.Configuration{Speed: 5, Drones: 3, Batteries: 1}, 100, registry, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.Equal(t, 3, registry.Count(EntityDrone))
	assert.Equal(t, 1, registry.Count(EntityObjective))

	for i, d := range trial.Drones() {
		assert.Equal(t, i+1, d.ID)
		assert.Equal(t, core.Vector3D{X: 0, Y: 5 * float64(i+1), Z: 10}, d.Position)
		assert.Equal(t, core.StrategySpiral, d.Strategy().ID())
	}

	trial.Close()
	trial.Close()
	assert.Equal(t, 0, registry.Live())
}

func TestObjectivePlacement(t *testing.T) {
	params := testTrialParams(core.StrategySweep)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		trial, err := NewTrial(params, search.Configuration{Speed: 5, Drones: 1, Batteries: 1}, 100, NewEntityRegistry(), rng)
		require.NoError(t, err)
		o := trial.Objective()
		assert.GreaterOrEqual(t, o.X, 50.0)
		assert.LessOrEqual(t, o.X, 100.0)
		assert.GreaterOrEqual(t, o.Y, 0.0)
		assert.LessOrEqual(t, o.Y, 100.0)
	}
}

func TestTrialFindsObjective(t *testing.T) {
	params := testTrialParams(core.StrategyRandom)
	params.VisionRadius = 1e6
	registry := NewEntityRegistry()

	outcome, err := RunTrial(context.Background(), params, search.Configuration{Speed: 10, Drones: 3, Batteries: 1}, 100, registry, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	assert.True(t, outcome.Found)
	assert.Equal(t, 0.5, outcome.Elapsed)
	assert.Equal(t, 0, registry.Live(), "every entity is torn down")
}

func TestTrialFirstSightingWins(t *testing.T) {
	params := testTrialParams(core.StrategySweep)
	params.VisionRadius = 1e6
	trial, err := NewTrial(params, search.Configuration{Speed: 10, Drones: 2, Batteries: 1}, 100, NewEntityRegistry(), rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	trial.Step(params.Step)
	first := trial.Outcome()
	trial.Step(params.Step)

	assert.True(t, trial.Done())
	assert.Equal(t, first, trial.Outcome())
	assert.Equal(t, 0.5, trial.Elapsed(), "no sub-steps run once found")
}

func TestTrialTimesOut(t *testing.T) {
	params := testTrialParams(core.StrategySweep)
	params.VisionRadius = -1

	outcome, err := RunTrial(context.Background(), params, search.Configuration{Speed: 10, Drones: 2, Batteries: 1}, 20, NewEntityRegistry(), rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	assert.False(t, outcome.Found)
	assert.Equal(t, 20.0, outcome.Elapsed)
}

func TestRunTrialHonoursContext(t *testing.T) {
	params := testTrialParams(core.StrategySweep)
	params.VisionRadius = -1
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	registry := NewEntityRegistry()
	_, err := RunTrial(ctx, params, search.Configuration{Speed: 10, Drones: 2, Batteries: 1}, 20, registry, rand.New(rand.NewSource(3)))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, registry.Live())
}

func TestRemoveRandomDrone(t *testing.T) {
	params := testTrialParams(core.StrategyRandom)
	registry := NewEntityRegistry()
	trial, err := NewTrial(params, search.Configuration{Speed: 10, Drones: 3, Batteries: 1}, 100, registry, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	lost := trial.RemoveRandomDrone()
	require.NotNil(t, lost)
	assert.Len(t, trial.Drones(), 2)
	assert.Equal(t, 2, registry.Count(EntityDrone))
	for _, d := range trial.Drones() {
		assert.NotEqual(t, lost.ID, d.ID)
	}

	require.NotNil(t, trial.RemoveRandomDrone())
	require.NotNil(t, trial.RemoveRandomDrone())
	assert.Nil(t, trial.RemoveRandomDrone())
	assert.Equal(t, 3, trial.Outcome().DronesLost)

	trial.Step(params.Step)
	assert.False(t, trial.Outcome().Found, "an empty swarm finds nothing")
}

func TestAvoidingDronesMoveAtSpeedFromSpawn(t *testing.T) {
	params := testTrialParams(core.StrategyRandom)
	params.Environment = core.Vector2D{X: 1000, Y: 1000}
	params.VisionRadius = -1
	cfg := search.Configuration{Speed: 1, Drones: 4, Batteries: 1}

	trial, err := NewTrial(params, cfg, 1e6, NewEntityRegistry(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	defer trial.Close()

	limit := cfg.Speed * params.Step * float64(params.SimSpeed)
	for tick := 0; tick < 20; tick++ {
		before := make(map[int]core.Vector3D)
		for _, d := range trial.Drones() {
			before[d.ID] = d.Position
		}

		trial.Step(params.Step)

		for _, d := range trial.Drones() {
			moved := d.Position.DistanceTo(before[d.ID])
			assert.LessOrEqualf(t, moved, limit+1e-9, "drone %d moved %.1fm in tick %d", d.ID, moved, tick)
		}
	}
}

func TestCollisionYieldIsConsumed(t *testing.T) {
	params := testTrialParams(core.StrategyRandom)
	params.VisionRadius = -1
	params.SimSpeed = 1

	trial, err := NewTrial(params, search.Configuration{Speed: 10, Drones: 2, Batteries: 1}, 100, NewEntityRegistry(), rand.New(rand.NewSource(9)))
	require.NoError(t, err)

	trial.Step(params.Step)
	drones := trial.Drones()
	require.True(t, drones[0].Overlaps(drones[1]))
	assert.False(t, drones[0].Yielding())
	assert.True(t, drones[1].Yielding(), "the higher id yields")
	held := drones[1].Position

	trial.Step(params.Step)
	assert.True(t, drones[1].Yielding())
	assert.Equal(t, held, drones[1].Position)

	trial.Step(params.Step)
	assert.False(t, drones[1].Yielding())
	assert.Equal(t, held, drones[1].Position)
}

func TestManagerCompletesSearch(t *testing.T) {
	cfg := quickConfig(t)
	var out bytes.Buffer
	simLogger := reporting.NewSimulationLogger("test", &out)
	registry := NewEntityRegistry()

	m, err := NewManager(cfg, registry, simLogger)
	require.NoError(t, err)

	steps := 0
	for !m.Finished() && steps < 1000 {
		require.NoError(t, m.Step(cfg.Simulation.Step))
		steps++
	}
	require.True(t, m.Finished())

	assert.Equal(t, 15, steps, "every trial succeeds on its first tick")
	assert.Equal(t, 15, m.TrialCount())
	assert.Equal(t, 5, m.Search().Groups())
	assert.Equal(t, 0, registry.Live())

	history := m.History()
	require.Len(t, history, 5)
	for _, g := range history {
		assert.True(t, g.Success)
		assert.Equal(t, 3, g.Trials)
	}

	weight := cfg.Energy().Weight(1)
	assert.Equal(t, []string{
		search.FeasibilityPoint{Speed: 3, Drones: 1, Batteries: 1, Weight: weight}.String(),
		search.ResultSeparator,
		search.FeasibilityPoint{Speed: 1, Drones: 1, Batteries: 1, Weight: weight}.String(),
		search.FeasibilityPoint{Speed: 1, Drones: 2, Batteries: 1, Weight: weight}.String(),
	}, m.Results())

	assert.Contains(t, out.String(), "Trying with 1 drone of")
	assert.Equal(t, 5, simLogger.GetSummary().EventCounts[reporting.EventTypeRecap])

	require.NoError(t, m.Step(cfg.Simulation.Step), "stepping a finished search is a no-op")
	assert.Equal(t, 15, m.TrialCount())
}

func TestManagerDeterministicWithSeed(t *testing.T) {
	run := func() []reporting.GroupRecord {
		cfg := quickConfig(t)
		cfg.Drones.VisionRadius = 800
		cfg.Environment.XLength = 1000
		cfg.Environment.YLength = 1000
		cfg.Drones.Strategy = "random"

		m, err := NewManager(cfg, nil, reporting.NewSimulationLogger("", &bytes.Buffer{}))
		require.NoError(t, err)
		for !m.Finished() {
			require.NoError(t, m.Step(cfg.Simulation.Step))
		}
		return m.History()
	}

	assert.Equal(t, run(), run())
}

func TestManagerDroneLost(t *testing.T) {
	cfg := quickConfig(t)
	cfg.Search.MinDrones = 2
	cfg.Search.MaxDrones = 3
	cfg.Drones.VisionRadius = 1e-3

	var out bytes.Buffer
	registry := NewEntityRegistry()
	m, err := NewManager(cfg, registry, reporting.NewSimulationLogger("", &out))
	require.NoError(t, err)

	assert.False(t, m.DroneLost(), "no trial running yet")

	require.NoError(t, m.Step(cfg.Simulation.Step))
	require.NotNil(t, m.CurrentTrial())
	require.True(t, m.DroneLost())

	assert.Len(t, m.CurrentTrial().Drones(), 1)
	assert.Equal(t, 1, registry.Count(EntityDrone))
	assert.Contains(t, out.String(), "Lost communication with drone")

	m.Close()
	assert.Equal(t, 0, registry.Live())
}

func TestSimulationRegistered(t *testing.T) {
	assert.True(t, simulation.DefaultRegistry.Has(SimulationName))

	sim, err := simulation.DefaultRegistry.Get(SimulationName)
	require.NoError(t, err)
	assert.Equal(t, SimulationName, sim.Name())
}

func searchParams(dir string) map[string]interface{} {
	return map[string]interface{}{
		"min_speed":       1,
		"max_speed":       3,
		"speed_increment": 1,
		"min_drones":      1,
		"max_drones":      2,
		"sim_group_size":  3,
		"vision_radius":   1e6,
		"seed":            42,
		"results_path":    filepath.Join(dir, "out", "results.txt"),
		"report_path":     filepath.Join(dir, "out", "report.yaml"),
		"report_format":   "yaml",
		"log_level":       "error",
	}
}

func TestSimulationRun(t *testing.T) {
	dir := t.TempDir()
	sim := NewDroneSearchSimulation().(*DroneSearchSimulation)
	require.NoError(t, sim.Configure(searchParams(dir)))
	assert.Equal(t, 3, sim.Config().Search.GroupSize)

	require.NoError(t, sim.Run(context.Background()))

	results := sim.Results()
	require.Len(t, results, 4)
	assert.Equal(t, search.ResultSeparator, results[1])
	assert.Len(t, sim.History(), 5)

	data, err := os.ReadFile(filepath.Join(dir, "out", "results.txt"))
	require.NoError(t, err)
	assert.Equal(t, strings.Join(results, "\n")+"\n", string(data))

	report, err := os.ReadFile(filepath.Join(dir, "out", "report.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "groups:")
}

func TestSimulationRunRealtime(t *testing.T) {
	sim := NewDroneSearchSimulation().(*DroneSearchSimulation)
	params := searchParams(t.TempDir())
	params["mode"] = "realtime"
	params["update_interval"] = "1ms"
	params["report_path"] = ""
	require.NoError(t, sim.Configure(params))

	require.NoError(t, sim.Run(context.Background()))
	assert.Len(t, sim.Results(), 4)
}

func TestSimulationStopAndCancel(t *testing.T) {
	t.Run("stopped before run", func(t *testing.T) {
		sim := NewDroneSearchSimulation().(*DroneSearchSimulation)
		require.NoError(t, sim.Configure(searchParams(t.TempDir())))
		require.NoError(t, sim.Stop())
		require.NoError(t, sim.Stop())

		assert.NoError(t, sim.Run(context.Background()))
		assert.Empty(t, sim.Results())
	})

	t.Run("cancelled context", func(t *testing.T) {
		sim := NewDroneSearchSimulation().(*DroneSearchSimulation)
		require.NoError(t, sim.Configure(searchParams(t.TempDir())))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, sim.Run(ctx), context.Canceled)
	})
}

func TestConfigureRejectsBadOverride(t *testing.T) {
	sim := NewDroneSearchSimulation()
	err := sim.Configure(map[string]interface{}{"strategy": "zigzag"})
	assert.Error(t, err)
}

func TestCompareStrategies(t *testing.T) {
	cfg := quickConfig(t)
	cfg.Output.Verbose = false

	results, err := CompareStrategies(context.Background(), cfg, core.AllStrategies, 2, io.Discard)
	require.NoError(t, err)
	require.Len(t, results, len(core.AllStrategies))

	for i, r := range results {
		assert.Equal(t, core.AllStrategies[i], r.Strategy)
		require.NotNil(t, r.Fast)
		assert.Equal(t, 3.0, r.Fast.Speed)
		assert.Len(t, r.Slow, 2)
		assert.Len(t, r.Lines, 4)
		assert.Equal(t, 5, r.Groups)
		assert.Equal(t, 15, r.Trials)
	}
	assert.Equal(t, "spiral", cfg.Drones.Strategy, "base configuration is untouched")

	_, err = CompareStrategies(context.Background(), cfg, []core.StrategyID{42}, 0, nil)
	assert.Error(t, err)
}
