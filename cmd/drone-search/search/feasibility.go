// Package search implements the bracket search that looks for the cheapest swarm
// configuration able to find the objective inside its battery budget.
package search

import (
	"fmt"
)

// epsilon absorbs rounding when speeds are stepped by a fractional increment
const epsilon = 1e-9

// ResultSeparator separates the fast configuration from the slow ones in result output
const ResultSeparator = "----------------------------"

// Bounds are the swarm parameters explored by the search
type Bounds struct {
	MinSpeed       float64
	MaxSpeed       float64
	SpeedIncrement float64
	MinDrones      int
	MaxDrones      int
	DroneIncrement int
}

// Validate checks the bounds describe a finite search
func (b Bounds) Validate() error {
	if b.MinSpeed <= 0 {
		return fmt.Errorf("min speed must be positive")
	}
	if b.MaxSpeed < b.MinSpeed {
		return fmt.Errorf("max speed (%.2f) is below min speed (%.2f)", b.MaxSpeed, b.MinSpeed)
	}
	if b.SpeedIncrement <= 0 {
		return fmt.Errorf("speed increment must be positive")
	}
	if b.MinDrones < 1 {
		return fmt.Errorf("min drones must be at least 1")
	}
	if b.MaxDrones < b.MinDrones {
		return fmt.Errorf("max drones (%d) is below min drones (%d)", b.MaxDrones, b.MinDrones)
	}
	if b.DroneIncrement < 1 {
		return fmt.Errorf("drone increment must be at least 1")
	}
	return nil
}

// Configuration is the swarm setup tried by one group of trials
type Configuration struct {
	Speed     float64
	Drones    int
	Batteries int
}

// PointKind tells fast and slow feasibility points apart
type PointKind string

const (
	PointFast PointKind = "fast"
	PointSlow PointKind = "slow"
)

// FeasibilityPoint is a configuration recorded by the search
type FeasibilityPoint struct {
	Kind      PointKind `json:"kind" yaml:"kind"`
	Speed     float64   `json:"speed" yaml:"speed"`
	Drones    int       `json:"drones" yaml:"drones"`
	Batteries int       `json:"batteries" yaml:"batteries"`
	Weight    float64   `json:"weight" yaml:"weight"`
}

// String renders the point as a results line
func (p FeasibilityPoint) String() string {
	return fmt.Sprintf("speed:%f,drones:%d,batteries:%d,(weight:%f)", p.Speed, p.Drones, p.Batteries, p.Weight)
}

// Diagnostics receives non-fatal warnings raised during the search
type Diagnostics interface {
	Diagnostic(message string)
}

type noDiagnostics struct{}

func (noDiagnostics) Diagnostic(string) {}

// Search walks the speed/swarm-size space one group outcome at a time.
//
// For each swarm size it first brackets upward until the first success (the start
// of the feasibility curve) and then up to the highest successful speed (the fast
// configuration). Afterwards it descends: each larger swarm probes lower speeds and
// records the slowest speed that still succeeds.
type Search struct {
	bounds Bounds
	energy Energy
	diag   Diagnostics

	config   Configuration
	previous Configuration

	curveFound bool
	maxFound   bool

	points        []FeasibilityPoint
	maxTimePerSim float64
	groups        int
}

// New creates a search starting at the minimum speed and swarm size
func New(bounds Bounds, energy Energy, diag Diagnostics) (*Search, error) {
	if err := bounds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search bounds: %w", err)
	}
	if err := energy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid energy model: %w", err)
	}
	if diag == nil {
		diag = noDiagnostics{}
	}

	s := &Search{
		bounds: bounds,
		energy: energy,
		diag:   diag,
		config: Configuration{
			Speed:     bounds.MinSpeed,
			Drones:    bounds.MinDrones,
			Batteries: energy.MinBatteryCount,
		},
	}
	s.previous = s.config
	s.updateAutonomy()
	return s, nil
}

// Config is the configuration the next group should run
func (s *Search) Config() Configuration { return s.config }

// Weight is the drone weight for the current configuration
func (s *Search) Weight() float64 { return s.energy.Weight(s.config.Batteries) }

// MaxTimePerSim is the simulated time budget in seconds for a single trial
func (s *Search) MaxTimePerSim() float64 { return s.maxTimePerSim }

func (s *Search) CurveFound() bool { return s.curveFound }
func (s *Search) MaxFound() bool   { return s.maxFound }

// Groups is the number of group outcomes applied so far
func (s *Search) Groups() int { return s.groups }

// Done reports whether the swarm size has passed the upper bound
func (s *Search) Done() bool { return s.config.Drones > s.bounds.MaxDrones }

// Points returns every recorded feasibility point in recording order
func (s *Search) Points() []FeasibilityPoint {
	out := make([]FeasibilityPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Fast returns the fast configuration once it has been found
func (s *Search) Fast() (FeasibilityPoint, bool) {
	for _, p := range s.points {
		if p.Kind == PointFast {
			return p, true
		}
	}
	return FeasibilityPoint{}, false
}

// Slow returns the slow configurations in recording order
func (s *Search) Slow() []FeasibilityPoint {
	var out []FeasibilityPoint
	for _, p := range s.points {
		if p.Kind == PointSlow {
			out = append(out, p)
		}
	}
	return out
}

// Apply advances the search with the outcome of the group run at Config()
func (s *Search) Apply(result GroupResult) {
	if s.Done() {
		return
	}
	s.groups++
	success := result.Success()

	if success {
		b, ok := s.energy.MinBatteries(result.MeanTimeToFind, s.config.Speed)
		if !ok {
			s.diag.Diagnostic(fmt.Sprintf(
				"no battery count up to %d covers %.1fs at %.2f m/s, using %d",
				s.energy.MaxBatteryCount, result.MeanTimeToFind, s.config.Speed, b))
		}
		s.config.Batteries = b
	}

	if !s.curveFound || success {
		s.previous = s.config
	}

	if s.curveFound && s.maxFound {
		if success && s.config.Speed-s.bounds.SpeedIncrement >= s.bounds.MinSpeed-epsilon {
			s.config.Speed -= s.bounds.SpeedIncrement
		} else {
			s.record(PointSlow, Configuration{
				Speed:     s.previous.Speed,
				Drones:    s.config.Drones,
				Batteries: s.previous.Batteries,
			})
			s.config.Drones += s.bounds.DroneIncrement
			s.previous = s.config
		}
	} else {
		if !s.curveFound && success {
			s.record(PointSlow, s.config)
			s.curveFound = true
		}

		switch {
		case s.config.Speed+s.bounds.SpeedIncrement <= s.bounds.MaxSpeed+epsilon:
			s.config.Speed += s.bounds.SpeedIncrement
		case s.curveFound:
			s.record(PointFast, s.config)
			s.maxFound = true
			s.config.Drones += s.bounds.DroneIncrement
			s.config.Speed -= s.bounds.SpeedIncrement
			if s.config.Speed < s.bounds.MinSpeed {
				s.config.Speed = s.bounds.MinSpeed
			}
		default:
			s.config.Drones += s.bounds.DroneIncrement
			s.config.Speed = s.bounds.MinSpeed
		}
	}

	s.updateAutonomy()
}

func (s *Search) record(kind PointKind, c Configuration) {
	s.points = append(s.points, FeasibilityPoint{
		Kind:      kind,
		Speed:     c.Speed,
		Drones:    c.Drones,
		Batteries: c.Batteries,
		Weight:    s.energy.Weight(c.Batteries),
	})
}

func (s *Search) updateAutonomy() {
	speed := s.config.Speed
	if speed < s.bounds.MinSpeed {
		speed = s.bounds.MinSpeed
	}
	s.maxTimePerSim = s.energy.Autonomy(speed)
}

// ResultLines formats the outcome for the result sink: the fast configuration,
// a separator, then one line per slow configuration.
func (s *Search) ResultLines() []string {
	lines := make([]string, 0, len(s.points)+2)
	if fast, ok := s.Fast(); ok {
		lines = append(lines, fast.String())
	}
	lines = append(lines, ResultSeparator)
	for _, p := range s.Slow() {
		lines = append(lines, p.String())
	}
	return lines
}
