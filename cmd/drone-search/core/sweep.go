package core

// SweepStrategy flies a boustrophedon pattern: legs along Y (the perpendicular axis)
// joined by climbs of SweepHeight along X (the sweep axis).
type SweepStrategy struct {
	zone     Zone
	distance float64
	height   float64

	goesUp      bool
	leftToRight bool
	topToBottom bool
	heightCount int
}

// SweepState is a snapshot of the sweep toggles, exposed for inspection
type SweepState struct {
	GoesUp      bool
	LeftToRight bool
	TopToBottom bool
	HeightCount int
}

// NewSweepStrategy creates a sweep strategy starting from the zone's near corner
func NewSweepStrategy(zone Zone, distance, height float64) *SweepStrategy {
	return &SweepStrategy{
		zone:        zone,
		distance:    distance,
		height:      height,
		goesUp:      true,
		leftToRight: true,
		topToBottom: true,
		heightCount: 1,
	}
}

func (s *SweepStrategy) ID() StrategyID         { return StrategySweep }
func (s *SweepStrategy) AvoidsCollisions() bool { return false }

func (s *SweepStrategy) InitialDestination(altitude float64) Vector3D {
	return s.zone.Corner(altitude)
}

// State returns the current toggles
func (s *SweepStrategy) State() SweepState {
	return SweepState{
		GoesUp:      s.goesUp,
		LeftToRight: s.leftToRight,
		TopToBottom: s.topToBottom,
		HeightCount: s.heightCount,
	}
}

func (s *SweepStrategy) NextWaypoint(position, direction Vector3D) Waypoint {
	climbed := position.X - s.zone.Min.X

	if s.goesUp && climbed >= s.height*float64(s.heightCount) {
		// Lane height reached: start a perpendicular leg
		if s.leftToRight {
			direction = Vector3D{Y: 1}
		} else {
			direction = Vector3D{Y: -1}
		}
		s.goesUp = false
		s.leftToRight = !s.leftToRight
	} else if position.Y-s.distance < s.zone.Min.Y || position.Y+s.distance > s.zone.Max.Y {
		// Next leg would leave the lane: advance along the sweep axis
		if s.topToBottom {
			direction = Vector3D{X: -1}
		} else {
			direction = Vector3D{X: 1}
		}
		if !s.goesUp {
			s.heightCount++
		}
		s.goesUp = true
	}

	destination := position.Add(direction.Scale(s.distance))
	if s.zone.IsOutOfBounds(destination) {
		if s.goesUp {
			direction = direction.Scale(-1)
			destination = position.Add(direction.Scale(s.distance))
			s.topToBottom = !s.topToBottom
		} else {
			destination = s.zone.Clamp(destination)
			if destination.HorizontalDistanceTo(position) < smallNumber {
				// Degenerate lane: already on the boundary, turn around
				direction = direction.Scale(-1)
				s.leftToRight = !s.leftToRight
				destination = position.Add(direction.Scale(s.distance))
			}
		}
	}

	return Waypoint{
		Destination: s.zone.Clamp(destination),
		Direction:   direction,
	}
}
