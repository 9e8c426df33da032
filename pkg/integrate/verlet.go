package integrate

import (
	"context"

	"github.com/bxrne/nbodysim/internal/diagnostics"
	"github.com/bxrne/nbodysim/pkg/component"
	"github.com/bxrne/nbodysim/pkg/entity"
	"github.com/bxrne/nbodysim/pkg/force"
	"github.com/bxrne/nbodysim/pkg/simd"
)

// VelocityVerlet is a symplectic, time-reversible, second-order
// integrator:
//
//	x(t+dt) = x(t) + v(t)*dt + 0.5*a(t)*dt^2
//	v(t+dt) = v(t) + 0.5*(a(t) + a(t+dt))*dt
//
// It requires a(t) to already be present in the accelerations store
// before the first call — the orchestrator must prime accelerations by
// running one ForceEvaluator pass at the initial positions before
// stepping, since Verlet has no stage of its own that would compute a(t)
// from scratch the way RK4's k1 does.
type VelocityVerlet struct {
	timestep    float64
	Diagnostics diagnostics.Sink
	// Backend performs the position/velocity update arithmetic once both
	// passes have gathered their operands into flat per-axis slices. Nil
	// falls back to simd.ScalarBackend at Integrate time.
	Backend simd.Backend
}

// NewVelocityVerlet creates a Velocity Verlet integrator with the given
// timestep. Panics if dt is non-positive or non-finite.
func NewVelocityVerlet(dt float64) *VelocityVerlet {
	requirePositiveFiniteTimestep(dt)
	return &VelocityVerlet{timestep: dt}
}

// SetBackend selects the kernel backend Integrate dispatches the bulk
// position/velocity update arithmetic to.
func (v *VelocityVerlet) SetBackend(b simd.Backend) { v.Backend = b }

// Name returns "Velocity Verlet".
func (v *VelocityVerlet) Name() string { return "Velocity Verlet" }

// Timestep returns the current step size.
func (v *VelocityVerlet) Timestep() float64 { return v.timestep }

// SetTimestep updates the step size. Panics if dt is non-positive or
// non-finite.
func (v *VelocityVerlet) SetTimestep(dt float64) {
	requirePositiveFiniteTimestep(dt)
	v.timestep = dt
}

// ValidateTimestep reports whether the current timestep is within the
// numerically stable range.
func (v *VelocityVerlet) ValidateTimestep() error {
	return validateTimestep(v.timestep)
}

// Integrate advances every entity by one Verlet step.
func (v *VelocityVerlet) Integrate(
	ctx context.Context,
	entities []entity.Entity,
	positions PositionStore,
	velocities VelocityStore,
	accelerations AccelerationStore,
	masses MassStore,
	registry *force.Registry,
	evaluate ForceEvaluator,
	warnOnMissing bool,
) (int, error) {
	dt := v.timestep
	dtSq := dt * dt
	backend := v.Backend
	if backend == nil {
		backend = simd.ScalarBackend{}
	}

	var moving []entity.Entity
	var px, py, pz, vx, vy, vz, ax, ay, az []float64

	for _, e := range entities {
		if m, ok := masses.Get(e); ok && m.IsImmovable() {
			continue
		}

		pos, ok := positions.Get(e)
		if !ok {
			if warnOnMissing {
				diagnostics.Warnf(v.Diagnostics, "verlet: entity %s missing position component", e)
			}
			continue
		}
		vel, ok := velocities.Get(e)
		if !ok {
			if warnOnMissing {
				diagnostics.Warnf(v.Diagnostics, "verlet: entity %s missing velocity component", e)
			}
			continue
		}
		acc, _ := accelerations.Get(e)

		moving = append(moving, e)
		px, py, pz = append(px, pos.X), append(py, pos.Y), append(pz, pos.Z)
		vx, vy, vz = append(vx, vel.DX), append(vy, vel.DY), append(vz, vel.DZ)
		ax, ay, az = append(ax, acc.AX), append(ay, acc.AY), append(az, acc.AZ)
	}

	dtSqHalf := 0.5 * dtSq
	backend.UpdatePosition(px, vx, ax, dt, dtSqHalf)
	backend.UpdatePosition(py, vy, ay, dt, dtSqHalf)
	backend.UpdatePosition(pz, vz, az, dt, dtSqHalf)

	for i, e := range moving {
		newPos := component.Position{X: px[i], Y: py[i], Z: pz[i]}
		if !newPos.IsValid() {
			if warnOnMissing {
				diagnostics.Warnf(v.Diagnostics, "verlet: non-finite position after update for %s", e)
			}
			continue
		}
		positions.Insert(e, newPos)
	}

	registry.ClearForces()
	if err := evaluate(ctx, entities, positions); err != nil {
		return 0, err
	}

	newAccelerations := make(map[entity.Entity]component.Acceleration, len(entities))
	for _, e := range entities {
		f, ok := registry.GetForce(e)
		if !ok {
			continue
		}
		m, ok := masses.Get(e)
		if !ok || m.IsImmovable() {
			continue
		}
		inv := m.Inverse()
		a := component.Acceleration{AX: f.FX * inv, AY: f.FY * inv, AZ: f.FZ * inv}
		if a.IsValid() {
			newAccelerations[e] = a
		}
	}

	var velEntities []entity.Entity
	var velX, velY, velZ, avgAX, avgAY, avgAZ []float64
	velAccForEntity := make(map[entity.Entity]component.Acceleration, len(moving))

	for _, e := range entities {
		if m, ok := masses.Get(e); ok && m.IsImmovable() {
			continue
		}
		vel, ok := velocities.Get(e)
		if !ok {
			continue
		}

		oldAcc, _ := accelerations.Get(e)
		newAcc := newAccelerations[e]

		velEntities = append(velEntities, e)
		velX, velY, velZ = append(velX, vel.DX), append(velY, vel.DY), append(velZ, vel.DZ)
		avgAX = append(avgAX, 0.5*(oldAcc.AX+newAcc.AX))
		avgAY = append(avgAY, 0.5*(oldAcc.AY+newAcc.AY))
		avgAZ = append(avgAZ, 0.5*(oldAcc.AZ+newAcc.AZ))
		velAccForEntity[e] = newAcc
	}

	backend.UpdateVelocity(velX, avgAX, dt)
	backend.UpdateVelocity(velY, avgAY, dt)
	backend.UpdateVelocity(velZ, avgAZ, dt)

	updated := 0
	for i, e := range velEntities {
		newVel := component.Velocity{DX: velX[i], DY: velY[i], DZ: velZ[i]}
		if !newVel.IsValid() {
			if warnOnMissing {
				diagnostics.Warnf(v.Diagnostics, "verlet: non-finite velocity after update for %s", e)
			}
			continue
		}
		velocities.Insert(e, newVel)
		accelerations.Insert(e, velAccForEntity[e])
		updated++
	}

	return updated, nil
}
