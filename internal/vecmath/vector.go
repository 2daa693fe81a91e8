// Package vecmath provides the 2-D vector used for positions, velocities
// and forces. Arithmetic is delegated to gonum's spatial/r2.
package vecmath

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrDegenerateVector is returned when a direction is requested for a
// zero-magnitude vector.
var ErrDegenerateVector = errors.New("vecmath: unit vector of zero-magnitude vector")

// Vector is an immutable (X, Y) pair. Units depend on context.
type Vector struct {
	X, Y float64
}

// Zero is the zero vector.
var Zero = Vector{}

func New(x, y float64) Vector { return Vector{X: x, Y: y} }

func fromR2(v r2.Vec) Vector { return Vector{X: v.X, Y: v.Y} }

func (v Vector) r2() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

func (v Vector) Add(o Vector) Vector { return fromR2(r2.Add(v.r2(), o.r2())) }

func (v Vector) Sub(o Vector) Vector { return fromR2(r2.Sub(v.r2(), o.r2())) }

func (v Vector) Scale(f float64) Vector { return fromR2(r2.Scale(f, v.r2())) }

func (v Vector) Dot(o Vector) float64 { return r2.Dot(v.r2(), o.r2()) }

// Norm returns the magnitude of v.
func (v Vector) Norm() float64 { return r2.Norm(v.r2()) }

// IsZero reports whether both components are exactly zero.
func (v Vector) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Hat returns the unit vector in the direction of v.
func (v Vector) Hat() (Vector, error) {
	if v.Norm() == 0 {
		return Zero, ErrDegenerateVector
	}
	return fromR2(r2.Unit(v.r2())), nil
}

// FromPolar converts an angle in radians and a magnitude (>= 0) to
// Cartesian components.
func FromPolar(angle, magnitude float64) Vector {
	sin, cos := math.Sincos(angle)
	return Vector{X: magnitude * cos, Y: magnitude * sin}
}

// Polar returns the angle in (-pi, pi] and the magnitude of v.
func (v Vector) Polar() (angle, magnitude float64) {
	magnitude = v.Norm()
	if magnitude == 0 {
		return 0, 0
	}
	angle = math.Atan2(v.Y, v.X)
	if angle == -math.Pi {
		angle = math.Pi
	}
	return angle, magnitude
}

// NormalizeAngle maps a to (-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

func (v Vector) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
