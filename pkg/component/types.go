// Package component defines the scalar record types used by the physics
// core (Position, Velocity, Acceleration, Mass, Force) and the two
// interchangeable storage layouts that hold them keyed by entity.
package component

import "math"

// ImmovableThreshold is the mass below which a body is treated as
// immovable: its inverse mass is zero and integrators never advance it.
const ImmovableThreshold = 1e-10

// Position is a 3D position component in meters.
type Position struct {
	X, Y, Z float64
}

// IsValid reports whether all coordinates are finite.
func (p Position) IsValid() bool {
	return isFinite3(p.X, p.Y, p.Z)
}

// Velocity is a 3D velocity component in meters/second.
type Velocity struct {
	DX, DY, DZ float64
}

// IsValid reports whether all components are finite.
func (v Velocity) IsValid() bool {
	return isFinite3(v.DX, v.DY, v.DZ)
}

// Acceleration is a 3D acceleration component in meters/second^2.
type Acceleration struct {
	AX, AY, AZ float64
}

// IsValid reports whether all components are finite.
func (a Acceleration) IsValid() bool {
	return isFinite3(a.AX, a.AY, a.AZ)
}

// Mass is a non-negative, finite scalar mass in kilograms. A mass below
// ImmovableThreshold is treated as immovable.
type Mass struct {
	Value float64
}

// NewMass constructs a Mass, panicking if value is negative, NaN, or
// infinite. This is the fail-fast constructor for programmer errors; use
// TryNewMass to recover gracefully when importing untrusted data.
func NewMass(value float64) Mass {
	if !(value >= 0 && !math.IsInf(value, 0)) {
		panic("component: mass must be non-negative and finite")
	}
	return Mass{Value: value}
}

// TryNewMass constructs a Mass, returning false instead of panicking when
// value is negative or non-finite.
func TryNewMass(value float64) (Mass, bool) {
	if !(value >= 0 && !math.IsInf(value, 0)) {
		return Mass{}, false
	}
	return Mass{Value: value}, true
}

// ImmovableMass returns a zero-mass body, treated as infinitely massive
// and excluded from integration.
func ImmovableMass() Mass {
	return Mass{Value: 0}
}

// IsImmovable reports whether the mass is below ImmovableThreshold.
func (m Mass) IsImmovable() bool {
	return m.Value < ImmovableThreshold
}

// Inverse returns 1/m, or 0 if the mass is immovable.
func (m Mass) Inverse() float64 {
	if m.IsImmovable() {
		return 0
	}
	return 1 / m.Value
}

// Force is a 3D force vector in Newtons.
type Force struct {
	FX, FY, FZ float64
}

// ZeroForce returns the zero force.
func ZeroForce() Force {
	return Force{}
}

// Add returns the component-wise sum of f and other.
func (f Force) Add(other Force) Force {
	return Force{FX: f.FX + other.FX, FY: f.FY + other.FY, FZ: f.FZ + other.FZ}
}

// Magnitude returns the Euclidean norm of the force.
func (f Force) Magnitude() float64 {
	return math.Sqrt(f.FX*f.FX + f.FY*f.FY + f.FZ*f.FZ)
}

// IsValid reports whether all components are finite.
func (f Force) IsValid() bool {
	return isFinite3(f.FX, f.FY, f.FZ)
}

// Scale returns f scaled by the given factor, preserving direction.
func (f Force) Scale(factor float64) Force {
	return Force{FX: f.FX * factor, FY: f.FY * factor, FZ: f.FZ * factor}
}

func isFinite3(a, b, c float64) bool {
	return !math.IsInf(a, 0) && !math.IsNaN(a) &&
		!math.IsInf(b, 0) && !math.IsNaN(b) &&
		!math.IsInf(c, 0) && !math.IsNaN(c)
}
