package core

import "math"

// Vector3D is a position or direction in the simulation frame (meters).
// X runs along the environment length, Y along its width, Z is altitude.
type Vector3D struct {
	X, Y, Z float64
}

// Vector2D is a horizontal point used for zone corners
type Vector2D struct {
	X, Y float64
}

func (v Vector3D) Add(other Vector3D) Vector3D {
	return Vector3D{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

func (v Vector3D) Subtract(other Vector3D) Vector3D {
	return Vector3D{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

func (v Vector3D) Scale(s float64) Vector3D {
	return Vector3D{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vector3D) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns the unit vector, or v unchanged when it has no length
func (v Vector3D) Normalize() Vector3D {
	mag := v.Magnitude()
	if mag < smallNumber {
		return v
	}
	return v.Scale(1.0 / mag)
}

func (v Vector3D) DistanceTo(other Vector3D) float64 {
	return v.Subtract(other).Magnitude()
}

// HorizontalDistanceTo ignores altitude
func (v Vector3D) HorizontalDistanceTo(other Vector3D) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

// XY drops the altitude component
func (v Vector3D) XY() Vector2D {
	return Vector2D{X: v.X, Y: v.Y}
}

// smallNumber guards divisions by near-zero magnitudes
const smallNumber = 1e-8
