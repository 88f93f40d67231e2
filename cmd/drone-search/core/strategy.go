package core

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// StrategyID identifies a search pattern. Values match the numeric ids used in config files.
type StrategyID int

const (
	StrategyRandom StrategyID = 1
	StrategySweep  StrategyID = 2
	StrategySpiral StrategyID = 3
)

// AllStrategies lists every known strategy in id order
var AllStrategies = []StrategyID{StrategyRandom, StrategySweep, StrategySpiral}

func (id StrategyID) String() string {
	switch id {
	case StrategyRandom:
		return "random"
	case StrategySweep:
		return "sweep"
	case StrategySpiral:
		return "spiral"
	default:
		return fmt.Sprintf("unknown(%d)", int(id))
	}
}

// Valid reports whether id names a known strategy
func (id StrategyID) Valid() bool {
	return id >= StrategyRandom && id <= StrategySpiral
}

// ParseStrategy accepts either a strategy name or its numeric id
func ParseStrategy(s string) (StrategyID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		id := StrategyID(n)
		if !id.Valid() {
			return 0, fmt.Errorf("unknown strategy id %d", n)
		}
		return id, nil
	}
	for _, id := range AllStrategies {
		if id.String() == s {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q (expected random, sweep or spiral)", s)
}

// MotionParams holds the movement tuning shared by all strategies
type MotionParams struct {
	MovementDistance float64

	// Spiral
	WanderDistance    float64
	WanderSteps       int
	SpiralRadius      float64
	IncrementFactor   float64
	ConcentricCircles bool
	CirclePoints      int

	// Sweep
	SweepHeight float64
}

// Waypoint is what a strategy decides once a drone reaches its destination
type Waypoint struct {
	Destination Vector3D
	Direction   Vector3D
}

// Strategy produces successive destinations for one drone inside its zone.
// Implementations hold per-drone state and are not shared between drones.
type Strategy interface {
	ID() StrategyID

	// InitialDestination is the first point the drone flies to after spawning
	InitialDestination(altitude float64) Vector3D

	// NextWaypoint is called each time the drone arrives at its destination.
	// The returned destination always lies inside the strategy's zone.
	NextWaypoint(position, direction Vector3D) Waypoint

	// AvoidsCollisions reports whether drones using this strategy react to nearby drones
	AvoidsCollisions() bool
}

// NewStrategy builds the strategy identified by id for the given zone
func NewStrategy(id StrategyID, zone Zone, params MotionParams, rng *rand.Rand) (Strategy, error) {
	if rng == nil {
		return nil, fmt.Errorf("strategy %s needs a random source", id)
	}
	if params.MovementDistance <= 0 {
		return nil, fmt.Errorf("movement distance must be positive")
	}

	switch id {
	case StrategyRandom:
		return NewRandomStrategy(zone, params.MovementDistance, rng), nil
	case StrategySweep:
		if params.SweepHeight <= 0 {
			return nil, fmt.Errorf("sweep height must be positive")
		}
		return NewSweepStrategy(zone, params.MovementDistance, params.SweepHeight), nil
	case StrategySpiral:
		if params.CirclePoints < 1 {
			return nil, fmt.Errorf("spiral needs at least one circle point")
		}
		if params.WanderDistance <= 0 || params.SpiralRadius <= 0 {
			return nil, fmt.Errorf("spiral wander distance and radius must be positive")
		}
		return NewSpiralStrategy(zone, params, rng), nil
	default:
		return nil, fmt.Errorf("unknown strategy id %d", int(id))
	}
}
