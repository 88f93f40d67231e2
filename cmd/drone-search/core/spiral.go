package core

import (
	"math"
	"math/rand"
)

// SpiralStrategy alternates between a short random wander and an outward spiral
// traced around the point where the wander ended.
type SpiralStrategy struct {
	zone   Zone
	params MotionParams
	rng    *rand.Rand

	wander     int
	ring       []Vector3D
	center     Vector3D
	pointIndex int
	increment  float64
}

// NewSpiralStrategy creates a spiral strategy confined to zone
func NewSpiralStrategy(zone Zone, params MotionParams, rng *rand.Rand) *SpiralStrategy {
	return &SpiralStrategy{
		zone:   zone,
		params: params,
		rng:    rng,
		wander: params.WanderSteps,
	}
}

func (s *SpiralStrategy) ID() StrategyID         { return StrategySpiral }
func (s *SpiralStrategy) AvoidsCollisions() bool { return false }

func (s *SpiralStrategy) InitialDestination(altitude float64) Vector3D {
	return s.zone.Center(altitude)
}

// Wandering reports whether the next waypoint will be a wander step
func (s *SpiralStrategy) Wandering() bool { return s.wander > 0 }

// Ring returns a copy of the active circle points, nil between spirals
func (s *SpiralStrategy) Ring() []Vector3D {
	if s.ring == nil {
		return nil
	}
	out := make([]Vector3D, len(s.ring))
	copy(out, s.ring)
	return out
}

// Center returns the center of the active ring
func (s *SpiralStrategy) Center() Vector3D { return s.center }

func (s *SpiralStrategy) NextWaypoint(position, direction Vector3D) Waypoint {
	if s.wander > 0 {
		s.wander--
		return randomWaypoint(s.zone, s.rng, position, direction, s.params.WanderDistance)
	}

	if s.ring == nil {
		s.setRing(position)
	}

	n := s.params.CirclePoints
	s.pointIndex = s.pointIndex%n + 1
	point := s.ring[s.pointIndex-1]

	intermediate := Vector3D{
		X: s.center.X + (point.X-s.center.X)/float64(n)*s.increment,
		Y: s.center.Y + (point.Y-s.center.Y)/float64(n)*s.increment,
		Z: s.center.Z,
	}

	if !s.params.ConcentricCircles {
		s.increment += s.params.IncrementFactor / float64(n)
	} else if s.pointIndex == n {
		s.increment += s.params.IncrementFactor
	}

	destination := intermediate
	if s.increment >= float64(n) || s.zone.IsOutOfBounds(intermediate) {
		// Spiral done: fly back to the ring center and wander again
		destination = s.center
		s.wander = s.params.WanderSteps
		s.ring = nil
	}

	return Waypoint{
		Destination: destination,
		Direction:   destination.Subtract(position).Normalize(),
	}
}

// setRing places CirclePoints evenly on a circle of SpiralRadius around center
func (s *SpiralStrategy) setRing(center Vector3D) {
	n := s.params.CirclePoints
	step := 2 * math.Pi / float64(n)

	s.ring = make([]Vector3D, n)
	for i := 0; i < n; i++ {
		angle := float64(i) * step
		s.ring[i] = Vector3D{
			X: center.X + s.params.SpiralRadius*math.Cos(angle),
			Y: center.Y + s.params.SpiralRadius*math.Sin(angle),
			Z: center.Z,
		}
	}
	s.center = center
	s.pointIndex = 0
	s.increment = 1
}
