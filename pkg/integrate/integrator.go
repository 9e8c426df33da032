// Package integrate provides the two numerical integration schemes used
// to advance entity motion: symplectic Velocity Verlet and 4th-order
// Runge-Kutta. Both require a whole-world force re-evaluation between
// stages; the shared staging discipline lives here so neither integrator
// can silently regress to the per-entity evaluation bug the original
// RK4 implementation had.
package integrate

import (
	"context"
	"fmt"
	"math"

	"github.com/bxrne/nbodysim/pkg/component"
	"github.com/bxrne/nbodysim/pkg/entity"
	"github.com/bxrne/nbodysim/pkg/force"
)

// MinStableTimestep and MaxStableTimestep bound ValidateTimestep's
// accepted range; outside it the integrator is still usable but flagged.
const (
	MinStableTimestep = 1e-9
	MaxStableTimestep = 1.0
)

// PositionStore is the subset of component storage an integrator needs
// for positions; satisfied by both SparseStorage and DenseVectorStorage.
type PositionStore interface {
	Get(e entity.Entity) (component.Position, bool)
	Insert(e entity.Entity, value component.Position)
}

// VelocityStore is the subset of component storage an integrator needs
// for velocities.
type VelocityStore interface {
	Get(e entity.Entity) (component.Velocity, bool)
	Insert(e entity.Entity, value component.Velocity)
}

// AccelerationStore is the subset of component storage an integrator
// needs for accelerations.
type AccelerationStore interface {
	Get(e entity.Entity) (component.Acceleration, bool)
	Insert(e entity.Entity, value component.Acceleration)
}

// MassStore is the subset of component storage an integrator needs for
// mass.
type MassStore interface {
	Get(e entity.Entity) (component.Mass, bool)
}

// ForceEvaluator recomputes every registered force (per-entity providers
// and whole-world sources such as gravity) for the given entities at
// their current position, writing results into the registry the
// evaluator closes over. Integrators call this once per stage, with all
// entities already moved to that stage's evaluation point — never per
// entity — so coupled whole-world forces see a globally consistent
// state.
type ForceEvaluator func(ctx context.Context, entities []entity.Entity, positions PositionStore) error

// Integrator advances position and velocity components according to a
// numerical method.
type Integrator interface {
	Name() string
	Timestep() float64
	SetTimestep(dt float64)
	ValidateTimestep() error

	// Integrate advances entities by one timestep, returning the number
	// updated. evaluate is called once per stage the method requires,
	// always after every entity in the stage has been moved to its
	// evaluation point; RK4 calls it once more after the final update to
	// refresh the stored accelerations at the committed positions.
	Integrate(
		ctx context.Context,
		entities []entity.Entity,
		positions PositionStore,
		velocities VelocityStore,
		accelerations AccelerationStore,
		masses MassStore,
		registry *force.Registry,
		evaluate ForceEvaluator,
		warnOnMissing bool,
	) (int, error)
}

func validateTimestep(dt float64) error {
	if dt <= 0 || !isFinite(dt) {
		return fmt.Errorf("integrate: invalid timestep %v, must be positive and finite", dt)
	}
	if dt < MinStableTimestep {
		return fmt.Errorf("integrate: timestep %v is extremely small and may cause precision loss with float64", dt)
	}
	if dt > MaxStableTimestep {
		return fmt.Errorf("integrate: timestep %v is large and may cause instability", dt)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func requirePositiveFiniteTimestep(dt float64) {
	if !(dt > 0 && isFinite(dt)) {
		panic("integrate: timestep must be positive and finite")
	}
}

// KineticEnergy computes 0.5*m*v^2 for a single body, returning 0 for an
// immovable mass.
func KineticEnergy(v component.Velocity, m component.Mass) float64 {
	if m.IsImmovable() {
		return 0
	}
	vSq := v.DX*v.DX + v.DY*v.DY + v.DZ*v.DZ
	return 0.5 * m.Value * vSq
}

// TotalKineticEnergy sums KineticEnergy over every entity with both a
// velocity and mass component.
func TotalKineticEnergy(entities []entity.Entity, velocities VelocityStore, masses MassStore) float64 {
	total := 0.0
	for _, e := range entities {
		v, ok := velocities.Get(e)
		if !ok {
			continue
		}
		m, ok := masses.Get(e)
		if !ok {
			continue
		}
		total += KineticEnergy(v, m)
	}
	return total
}
