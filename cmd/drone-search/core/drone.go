package core

import (
	"sort"

	"github.com/google/uuid"
)

// DroneSettings are the per-drone movement constants
type DroneSettings struct {
	MovementTolerance float64
	YieldSteps        int
}

// Drone is one searcher inside a trial. It lives for the duration of the trial only.
type Drone struct {
	ID     int
	Handle uuid.UUID
	Zone   Zone

	Position      Vector3D
	MoveDirection Vector3D
	Destination   Vector3D

	strategy    Strategy
	settings    DroneSettings
	overlapping map[int]Vector3D
	yieldSteps  int
}

// NewDrone creates a drone at spawn heading for the strategy's initial destination
func NewDrone(id int, handle uuid.UUID, zone Zone, spawn Vector3D, strategy Strategy, settings DroneSettings) *Drone {
	d := &Drone{
		ID:            id,
		Handle:        handle,
		Zone:          zone,
		Position:      spawn,
		MoveDirection: Vector3D{X: 1},
		strategy:      strategy,
		settings:      settings,
		overlapping:   make(map[int]Vector3D),
	}
	d.setDestination(strategy.InitialDestination(spawn.Z))
	return d
}

// Strategy returns the motion strategy driving this drone
func (d *Drone) Strategy() Strategy { return d.strategy }

// Yielding reports whether the drone is holding position for a higher-priority neighbour
func (d *Drone) Yielding() bool { return d.yieldSteps > 0 }

// Avoiding reports whether another drone is inside this drone's detection radius
func (d *Drone) Avoiding() bool { return len(d.overlapping) > 0 }

// Overlaps reports whether other is currently tracked as inside the detection radius
func (d *Drone) Overlaps(other *Drone) bool {
	_, ok := d.overlapping[other.ID]
	return ok
}

func (d *Drone) setDestination(dest Vector3D) {
	d.Destination = dest
	if dir := dest.Subtract(d.Position).Normalize(); dir.Magnitude() > 0 {
		d.MoveDirection = dir
	}
}

// Advance moves the drone for one simulated sub-step of dt seconds at speed m/s.
// Reaching (or overshooting) the destination snaps the drone onto it and asks the
// strategy for the next waypoint.
func (d *Drone) Advance(dt, speed float64) {
	if d.yieldSteps > 0 {
		d.yieldSteps--
		return
	}

	step := speed * dt
	next := d.Position.Add(d.MoveDirection.Scale(step))

	if d.Avoiding() {
		// A drone still flying in from its spawn point is only held to the zone once inside it
		if d.Zone.Contains(d.Position) {
			next = d.Zone.Clamp(next)
		}
		d.Position = next
		return
	}

	distance := d.Position.DistanceTo(d.Destination)
	if distance <= d.settings.MovementTolerance {
		d.arrive()
		return
	}

	if next.DistanceTo(d.Destination) >= distance || step >= distance {
		d.arrive()
		return
	}

	d.Position = next
}

func (d *Drone) arrive() {
	d.Position = d.Destination
	wp := d.strategy.NextWaypoint(d.Position, d.MoveDirection)
	d.Destination = wp.Destination
	if wp.Direction.Magnitude() > 0 {
		d.MoveDirection = wp.Direction
	}
}

// OnNear is called when other enters this drone's detection radius.
// The drone turns away from other; the one with the higher id also holds position
// for YieldSteps sub-steps.
func (d *Drone) OnNear(other *Drone) {
	if other == nil || other.ID == d.ID || !d.strategy.AvoidsCollisions() {
		return
	}
	if _, seen := d.overlapping[other.ID]; seen {
		return
	}

	away := d.Position.Subtract(other.Position)
	away.Z = 0
	if away = away.Normalize(); away.Magnitude() > 0 {
		d.MoveDirection = away
	} else {
		d.MoveDirection = d.MoveDirection.Scale(-1)
	}

	if d.ID > other.ID {
		d.yieldSteps = d.settings.YieldSteps
	}
	d.overlapping[other.ID] = other.Position
}

// OnAway is called when other leaves this drone's detection radius
func (d *Drone) OnAway(other *Drone) {
	if other == nil {
		return
	}
	if _, seen := d.overlapping[other.ID]; !seen {
		return
	}
	delete(d.overlapping, other.ID)
	if !d.Avoiding() {
		d.setDestination(d.Destination)
	}
}

// Forget drops any overlap with a drone that no longer exists
func (d *Drone) Forget(id int) {
	if _, seen := d.overlapping[id]; !seen {
		return
	}
	delete(d.overlapping, id)
	if !d.Avoiding() {
		d.setDestination(d.Destination)
	}
}

// SortByID orders drones by ascending id, the update order used by trials
func SortByID(drones []*Drone) {
	sort.Slice(drones, func(i, j int) bool { return drones[i].ID < drones[j].ID })
}
