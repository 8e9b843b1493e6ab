package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vector helpers over r2.Vec. Zero vectors never produce NaN directions.

// Between returns the vector pointing from a to b.
func Between(a, b r2.Vec) r2.Vec {
	return r2.Sub(b, a)
}

// Invert returns v pointing the opposite way.
func Invert(v r2.Vec) r2.Vec {
	return r2.Vec{X: -v.X, Y: -v.Y}
}

// Magnitude returns the Euclidean length of v.
func Magnitude(v r2.Vec) float64 {
	return r2.Norm(v)
}

// Unit returns v scaled to length 1, or the zero vector when v is zero.
func Unit(v r2.Vec) r2.Vec {
	m := r2.Norm(v)
	if m == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/m, v)
}

// ClampMagnitude rescales v so its length lies in [minMag, maxMag].
// A zero vector has no direction and is returned unchanged.
func ClampMagnitude(v r2.Vec, minMag, maxMag float64) r2.Vec {
	m := r2.Norm(v)
	if m == 0 {
		return v
	}
	if m > maxMag {
		return r2.Scale(maxMag/m, v)
	}
	if m < minMag {
		return r2.Scale(minMag/m, v)
	}
	return v
}

// distanceSq returns the squared distance between two points.
func distanceSq(a, b r2.Vec) float64 {
	return r2.Norm2(r2.Sub(a, b))
}

// Angle returns the direction of v in radians, in [0, 2π).
func Angle(v r2.Vec) float64 {
	a := math.Atan2(v.Y, v.X)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// SpriteRotation returns the rotation for a sprite that points up at zero
// rotation: atan2(v.y, v.x) + 90°.
func SpriteRotation(v r2.Vec) float64 {
	return math.Atan2(v.Y, v.X) + DegToRad(90)
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
