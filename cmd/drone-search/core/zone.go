package core

import (
	"fmt"
	"math"
)

// Zone is an axis-aligned rectangle assigned to exactly one drone for a trial.
// Corners are always stored normalized so that Min <= Max on both axes.
type Zone struct {
	Min Vector2D
	Max Vector2D
}

// NewZone builds a zone from two opposite corners given in any order
func NewZone(a, b Vector2D) Zone {
	return Zone{
		Min: Vector2D{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Vector2D{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}
}

func (z Zone) Width() float64  { return z.Max.Y - z.Min.Y }
func (z Zone) Height() float64 { return z.Max.X - z.Min.X }
func (z Zone) Area() float64   { return z.Width() * z.Height() }

// Center returns the zone center at the given altitude
func (z Zone) Center(altitude float64) Vector3D {
	return Vector3D{X: (z.Min.X + z.Max.X) / 2, Y: (z.Min.Y + z.Max.Y) / 2, Z: altitude}
}

// Corner returns the near (minimum) corner at the given altitude
func (z Zone) Corner(altitude float64) Vector3D {
	return Vector3D{X: z.Min.X, Y: z.Min.Y, Z: altitude}
}

// Contains reports whether the horizontal projection of p lies inside the zone (edges included)
func (z Zone) Contains(p Vector3D) bool {
	return !z.IsOutOfBounds(p)
}

// IsOutOfBounds is the bounds predicate used by every strategy
func (z Zone) IsOutOfBounds(p Vector3D) bool {
	return p.X < z.Min.X || p.X > z.Max.X || p.Y < z.Min.Y || p.Y > z.Max.Y
}

// Clamp moves p onto the closest point of the zone, keeping its altitude
func (z Zone) Clamp(p Vector3D) Vector3D {
	return Vector3D{
		X: math.Max(z.Min.X, math.Min(z.Max.X, p.X)),
		Y: math.Max(z.Min.Y, math.Min(z.Max.Y, p.Y)),
		Z: p.Z,
	}
}

func (z Zone) String() string {
	return fmt.Sprintf("[(%.1f, %.1f) - (%.1f, %.1f)]", z.Min.X, z.Min.Y, z.Max.X, z.Max.Y)
}

// PartitionZones splits the environment into one zone per drone.
//
// Rows are stacked along X starting from the far edge, each env.X/totalRows thick.
// Full rows hold colMax columns of width env.Y/colMax; a trailing partial row holds
// the remaining drones in wider columns of width env.Y/lastRowCount.
func PartitionZones(env Vector2D, droneCount, colMax int) ([]Zone, error) {
	if droneCount < 1 {
		return nil, fmt.Errorf("drone count must be at least 1, got %d", droneCount)
	}
	if colMax < 1 {
		return nil, fmt.Errorf("max columns must be at least 1, got %d", colMax)
	}
	if env.X <= 0 || env.Y <= 0 {
		return nil, fmt.Errorf("environment size must be positive, got %.1fx%.1f", env.X, env.Y)
	}

	filledRows := droneCount / colMax
	totalRows := (droneCount + colMax - 1) / colMax
	lastRowCount := droneCount - filledRows*colMax
	rowHeight := env.X / float64(totalRows)

	zones := make([]Zone, 0, droneCount)
	for row := 0; row < filledRows; row++ {
		colWidth := env.Y / float64(colMax)
		for col := 0; col < colMax; col++ {
			zones = append(zones, NewZone(
				Vector2D{X: env.X - rowHeight*float64(row), Y: colWidth * float64(col)},
				Vector2D{X: env.X - rowHeight*float64(row+1), Y: colWidth * float64(col+1)},
			))
		}
	}

	if lastRowCount > 0 {
		colWidth := env.Y / float64(lastRowCount)
		for col := 0; col < lastRowCount; col++ {
			zones = append(zones, NewZone(
				Vector2D{X: env.X - rowHeight*float64(filledRows), Y: colWidth * float64(col)},
				Vector2D{X: 0, Y: colWidth * float64(col+1)},
			))
		}
	}

	return zones, nil
}
