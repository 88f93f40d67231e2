package simulation

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/config"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/core"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/search"
)

// TrialParams are the constants shared by every trial of a search
type TrialParams struct {
	Strategy    core.StrategyID
	Motion      core.MotionParams
	Drone       core.DroneSettings
	Environment core.Vector2D
	MaxColumns  int

	ObjectiveMinDistanceRatio float64
	GroundOffset              float64
	SpawnSpacing              float64
	CollisionRadius           float64
	VisionRadius              float64

	Step     float64 // simulated seconds per sub-step
	SimSpeed int     // sub-steps per tick
}

// ParamsFromConfig extracts the trial constants from a validated configuration
func ParamsFromConfig(cfg *config.SearchConfig) (TrialParams, error) {
	strategy, err := cfg.StrategyID()
	if err != nil {
		return TrialParams{}, err
	}
	return TrialParams{
		Strategy:                  strategy,
		Motion:                    cfg.MotionParams(),
		Drone:                     cfg.DroneSettings(),
		Environment:               cfg.EnvironmentSize(),
		MaxColumns:                cfg.Environment.MaxColumns,
		ObjectiveMinDistanceRatio: cfg.Environment.ObjectiveMinDistanceRatio,
		GroundOffset:              cfg.Drones.GroundOffset,
		SpawnSpacing:              cfg.Drones.SpawnSpacing,
		CollisionRadius:           cfg.Drones.CollisionCheckRadius,
		VisionRadius:              cfg.Drones.VisionRadius,
		Step:                      cfg.Simulation.Step,
		SimSpeed:                  cfg.Simulation.SimSpeed,
	}, nil
}

// TrialOutcome is the result of one trial. Elapsed is the time the objective was
// found, or the time the trial ran out.
type TrialOutcome struct {
	Found      bool
	Elapsed    float64
	DronesLost int
}

// Trial runs one configuration until a drone sees the objective or the battery budget runs out
type Trial struct {
	params  TrialParams
	config  search.Configuration
	maxTime float64
	spawner Spawner
	rng     *rand.Rand

	drones    []*core.Drone
	objective core.Vector3D
	objHandle uuid.UUID
	avoids    bool

	elapsed float64
	found   bool
	foundAt float64
	lost    int
	closed  bool
}

// NewTrial spawns the objective and the swarm for configuration cfg
func NewTrial(params TrialParams, cfg search.Configuration, maxTime float64, spawner Spawner, rng *rand.Rand) (*Trial, error) {
	if spawner == nil || rng == nil {
		return nil, fmt.Errorf("trial needs a spawner and a random source")
	}
	if params.Step <= 0 || params.SimSpeed < 1 {
		return nil, fmt.Errorf("invalid stepping: step %.3f, sim speed %d", params.Step, params.SimSpeed)
	}
	if maxTime <= 0 {
		return nil, fmt.Errorf("time budget must be positive")
	}

	zones, err := core.PartitionZones(params.Environment, cfg.Drones, params.MaxColumns)
	if err != nil {
		return nil, fmt.Errorf("failed to partition search area: %w", err)
	}

	t := &Trial{
		params:  params,
		config:  cfg,
		maxTime: maxTime,
		spawner: spawner,
		rng:     rng,
	}

	env := params.Environment
	minX := env.X * params.ObjectiveMinDistanceRatio
	t.objective = core.Vector3D{
		X: minX + rng.Float64()*(env.X-minX),
		Y: rng.Float64() * env.Y,
	}
	t.objHandle = spawner.Spawn(EntityObjective, t.objective, core.Vector3D{})

	t.drones = make([]*core.Drone, 0, cfg.Drones)
	for i, zone := range zones {
		strategy, err := core.NewStrategy(params.Strategy, zone, params.Motion, rng)
		if err != nil {
			t.Close()
			return nil, fmt.Errorf("failed to create strategy for drone %d: %w", i+1, err)
		}

		spawn := core.Vector3D{X: 0, Y: params.SpawnSpacing * float64(i+1), Z: params.GroundOffset}
		handle := spawner.Spawn(EntityDrone, spawn, core.Vector3D{})
		t.drones = append(t.drones, core.NewDrone(i+1, handle, zone, spawn, strategy, params.Drone))
		t.avoids = t.avoids || strategy.AvoidsCollisions()
	}

	return t, nil
}

// Step advances the trial by one scheduler tick of SimSpeed sub-steps of dt seconds
func (t *Trial) Step(dt float64) {
	for i := 0; i < t.params.SimSpeed && !t.Done(); i++ {
		t.subStep(dt)
	}
}

func (t *Trial) subStep(dt float64) {
	for _, d := range t.drones {
		d.Advance(dt, t.config.Speed)
	}
	t.updateOverlaps()
	t.elapsed += dt

	for _, d := range t.drones {
		if d.Position.HorizontalDistanceTo(t.objective) <= t.params.VisionRadius {
			t.reportFound()
			break
		}
	}
}

func (t *Trial) updateOverlaps() {
	if !t.avoids {
		return
	}
	for i, a := range t.drones {
		for _, b := range t.drones[i+1:] {
			near := a.Position.DistanceTo(b.Position) <= t.params.CollisionRadius
			switch {
			case near && !a.Overlaps(b):
				a.OnNear(b)
				b.OnNear(a)
			case !near && a.Overlaps(b):
				a.OnAway(b)
				b.OnAway(a)
			}
		}
	}
}

// reportFound latches the first sighting; later ones are ignored
func (t *Trial) reportFound() {
	if t.found {
		return
	}
	t.found = true
	t.foundAt = t.elapsed
}

// Done reports whether the objective was found or the budget is spent
func (t *Trial) Done() bool {
	return t.found || t.elapsed >= t.maxTime
}

// Outcome summarizes the trial so far
func (t *Trial) Outcome() TrialOutcome {
	o := TrialOutcome{Found: t.found, Elapsed: t.elapsed, DronesLost: t.lost}
	if t.found {
		o.Elapsed = t.foundAt
	}
	return o
}

// RemoveRandomDrone destroys one live drone picked uniformly at random.
// It returns nil when no drone is left.
func (t *Trial) RemoveRandomDrone() *core.Drone {
	if len(t.drones) == 0 {
		return nil
	}
	idx := t.rng.Intn(len(t.drones))
	lost := t.drones[idx]

	t.drones = append(t.drones[:idx], t.drones[idx+1:]...)
	for _, d := range t.drones {
		d.Forget(lost.ID)
	}
	t.spawner.Destroy(lost.Handle)
	t.lost++
	return lost
}

// Close destroys every entity the trial spawned. Safe to call more than once.
func (t *Trial) Close() {
	if t.closed {
		return
	}
	t.closed = true
	for _, d := range t.drones {
		t.spawner.Destroy(d.Handle)
	}
	t.spawner.Destroy(t.objHandle)
}

func (t *Trial) Drones() []*core.Drone {
	out := make([]*core.Drone, len(t.drones))
	copy(out, t.drones)
	return out
}

func (t *Trial) Objective() core.Vector3D     { return t.objective }
func (t *Trial) Elapsed() float64             { return t.elapsed }
func (t *Trial) Config() search.Configuration { return t.config }
func (t *Trial) MaxTime() float64             { return t.maxTime }

// RunTrial runs a complete trial, checking ctx between ticks
func RunTrial(ctx context.Context, params TrialParams, cfg search.Configuration, maxTime float64, spawner Spawner, rng *rand.Rand) (TrialOutcome, error) {
	t, err := NewTrial(params, cfg, maxTime, spawner, rng)
	if err != nil {
		return TrialOutcome{}, err
	}
	defer t.Close()

	for !t.Done() {
		if err := ctx.Err(); err != nil {
			return t.Outcome(), err
		}
		t.Step(params.Step)
	}
	return t.Outcome(), nil
}
