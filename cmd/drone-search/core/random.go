package core

import "math/rand"

// maxResampleAttempts bounds the rejection sampling of random destinations.
// Past this many rejections the last candidate is clamped into the zone.
const maxResampleAttempts = 64

// RandomStrategy wanders in a cone around the current heading
type RandomStrategy struct {
	zone     Zone
	distance float64
	rng      *rand.Rand
}

// NewRandomStrategy creates a random-walk strategy confined to zone
func NewRandomStrategy(zone Zone, distance float64, rng *rand.Rand) *RandomStrategy {
	return &RandomStrategy{zone: zone, distance: distance, rng: rng}
}

func (s *RandomStrategy) ID() StrategyID         { return StrategyRandom }
func (s *RandomStrategy) AvoidsCollisions() bool { return true }

func (s *RandomStrategy) InitialDestination(altitude float64) Vector3D {
	return s.zone.Center(altitude)
}

func (s *RandomStrategy) NextWaypoint(position, direction Vector3D) Waypoint {
	return randomWaypoint(s.zone, s.rng, position, direction, s.distance)
}

// randomWaypoint perturbs direction by uniform noise in [-1,1] on each horizontal axis
// and projects a destination distance ahead, resampling while it falls outside zone.
func randomWaypoint(zone Zone, rng *rand.Rand, position, direction Vector3D, distance float64) Waypoint {
	var wp Waypoint
	for attempt := 0; attempt < maxResampleAttempts; attempt++ {
		candidate := Vector3D{
			X: direction.X + uniform(rng),
			Y: direction.Y + uniform(rng),
		}
		wp.Direction = candidate.Normalize()
		wp.Destination = position.Add(wp.Direction.Scale(distance))
		if zone.Contains(wp.Destination) {
			return wp
		}
	}

	// Zone is too small for this distance or the drone is outside it
	wp.Destination = zone.Clamp(wp.Destination)
	wp.Direction = wp.Destination.Subtract(position).Normalize()
	return wp
}

func uniform(rng *rand.Rand) float64 {
	return rng.Float64()*2 - 1
}
