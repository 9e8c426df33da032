package integrate

import (
	"context"

	"github.com/bxrne/nbodysim/internal/diagnostics"
	"github.com/bxrne/nbodysim/pkg/component"
	"github.com/bxrne/nbodysim/pkg/entity"
	"github.com/bxrne/nbodysim/pkg/force"
	"github.com/bxrne/nbodysim/pkg/pool"
	"github.com/zerodha/logf"
)

// RK4 is the classical fourth-order Runge-Kutta integrator:
//
//	k1 = f(t, y)
//	k2 = f(t + dt/2, y + k1*dt/2)
//	k3 = f(t + dt/2, y + k2*dt/2)
//	k4 = f(t + dt,   y + k3*dt)
//	y(t+dt) = y(t) + (k1 + 2*k2 + 2*k3 + k4)*dt/6
//
// Every stage is evaluated with a global barrier: all entities are moved
// to that stage's evaluation point before a single ForceEvaluator call
// computes forces for the whole set, and only once every entity's
// derivative for the stage has been recorded does the next stage begin.
// An earlier version of this integrator evaluated forces one entity at a
// time mid-stage, which left every other entity sitting at a stale
// position and corrupted coupled whole-world forces such as gravity;
// this type never does that.
type RK4 struct {
	timestep float64

	posPool *pool.HashMapPool[entity.Entity, component.Position]
	velPool *pool.HashMapPool[entity.Entity, component.Velocity]
	accPool *pool.HashMapPool[entity.Entity, component.Acceleration]

	Diagnostics diagnostics.Sink
}

// NewRK4 creates an RK4 integrator with the given timestep, backed by
// buffer pools sized for typical entity counts. Panics if dt is
// non-positive or non-finite.
func NewRK4(dt float64, log logf.Logger) *RK4 {
	requirePositiveFiniteTimestep(dt)
	return &RK4{
		timestep: dt,
		posPool:  pool.New[entity.Entity, component.Position](log),
		velPool:  pool.New[entity.Entity, component.Velocity](log),
		accPool:  pool.New[entity.Entity, component.Acceleration](log),
	}
}

// PoolStats returns hit/miss/peak-size statistics for the position,
// velocity, and acceleration scratch pools, in that order.
func (r *RK4) PoolStats() []pool.Stats {
	return []pool.Stats{r.posPool.Stats(), r.velPool.Stats(), r.accPool.Stats()}
}

// Name returns "Runge-Kutta 4".
func (r *RK4) Name() string { return "Runge-Kutta 4" }

// Timestep returns the current step size.
func (r *RK4) Timestep() float64 { return r.timestep }

// SetTimestep updates the step size. Panics if dt is non-positive or
// non-finite.
func (r *RK4) SetTimestep(dt float64) {
	requirePositiveFiniteTimestep(dt)
	r.timestep = dt
}

// ValidateTimestep reports whether the current timestep is within the
// numerically stable range.
func (r *RK4) ValidateTimestep() error {
	return validateTimestep(r.timestep)
}

type rk4Stage struct {
	pos map[entity.Entity]component.Position // derivative of position = velocity at the stage point
	vel map[entity.Entity]component.Velocity  // derivative of velocity = acceleration at the stage point
}

// evaluateStage moves every entity in entities to its stage evaluation
// point (base + derivative*dtFactor), runs one global ForceEvaluator
// pass, and records each entity's (velocity, acceleration) derivative at
// that point.
func (r *RK4) evaluateStage(
	ctx context.Context,
	entities []entity.Entity,
	basePos map[entity.Entity]component.Position,
	baseVel map[entity.Entity]component.Velocity,
	prevStage *rk4Stage,
	dtFactor float64,
	positions PositionStore,
	masses MassStore,
	registry *force.Registry,
	evaluate ForceEvaluator,
	warnOnMissing bool,
	tempAcc map[entity.Entity]component.Acceleration,
	out *rk4Stage,
) error {
	evalVel := make(map[entity.Entity]component.Velocity, len(entities))

	for _, e := range entities {
		base, ok := basePos[e]
		if !ok {
			continue
		}
		v, ok := baseVel[e]
		if !ok {
			continue
		}

		evalPos := base
		ev := v
		if prevStage != nil {
			if dPos, ok := prevStage.pos[e]; ok {
				evalPos.X += dPos.X * dtFactor
				evalPos.Y += dPos.Y * dtFactor
				evalPos.Z += dPos.Z * dtFactor
			}
			if dVel, ok := prevStage.vel[e]; ok {
				ev.DX += dVel.DX * dtFactor
				ev.DY += dVel.DY * dtFactor
				ev.DZ += dVel.DZ * dtFactor
			}
		}

		positions.Insert(e, evalPos)
		evalVel[e] = ev
	}

	registry.ClearForces()
	if err := evaluate(ctx, entities, positions); err != nil {
		return err
	}

	// tempAcc holds this stage's per-entity accelerations between their
	// computation from the registry and their use as the velocity
	// derivative below; it is cleared and reused across all four stages
	// rather than allocated fresh each time.
	for e := range tempAcc {
		delete(tempAcc, e)
	}
	for _, e := range entities {
		ev, ok := evalVel[e]
		if !ok {
			continue
		}
		m, ok := masses.Get(e)
		if !ok || m.IsImmovable() {
			continue
		}

		acc := component.Acceleration{}
		if f, ok := registry.GetForce(e); ok {
			inv := m.Inverse()
			acc = component.Acceleration{AX: f.FX * inv, AY: f.FY * inv, AZ: f.FZ * inv}
		}
		if !acc.IsValid() {
			if warnOnMissing {
				diagnostics.Warnf(r.Diagnostics, "rk4: non-finite acceleration derivative for %s", e)
			}
			continue
		}
		tempAcc[e] = acc

		out.pos[e] = component.Position{X: ev.DX, Y: ev.DY, Z: ev.DZ}
		out.vel[e] = component.Velocity{DX: acc.AX, DY: acc.AY, DZ: acc.AZ}
	}
	return nil
}

// Integrate advances every entity by one RK4 step.
func (r *RK4) Integrate(
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
	dt := r.timestep
	dt2 := dt * 0.5
	dt6 := dt / 6.0

	k1PosGuard := r.posPool.Acquire()
	k1VelGuard := r.velPool.Acquire()
	k2PosGuard := r.posPool.Acquire()
	k2VelGuard := r.velPool.Acquire()
	k3PosGuard := r.posPool.Acquire()
	k3VelGuard := r.velPool.Acquire()
	k4PosGuard := r.posPool.Acquire()
	k4VelGuard := r.velPool.Acquire()
	tempAccGuard := r.accPool.Acquire()
	defer k1PosGuard.Release()
	defer k1VelGuard.Release()
	defer k2PosGuard.Release()
	defer k2VelGuard.Release()
	defer k3PosGuard.Release()
	defer k3VelGuard.Release()
	defer k4PosGuard.Release()
	defer k4VelGuard.Release()
	defer tempAccGuard.Release()
	tempAcc := tempAccGuard.Map()

	k1 := &rk4Stage{pos: k1PosGuard.Map(), vel: k1VelGuard.Map()}
	k2 := &rk4Stage{pos: k2PosGuard.Map(), vel: k2VelGuard.Map()}
	k3 := &rk4Stage{pos: k3PosGuard.Map(), vel: k3VelGuard.Map()}
	k4 := &rk4Stage{pos: k4PosGuard.Map(), vel: k4VelGuard.Map()}

	initialPos := make(map[entity.Entity]component.Position, len(entities))
	initialVel := make(map[entity.Entity]component.Velocity, len(entities))
	for _, e := range entities {
		p, okP := positions.Get(e)
		v, okV := velocities.Get(e)
		if okP && okV {
			initialPos[e] = p
			initialVel[e] = v
		}
	}

	if err := r.evaluateStage(ctx, entities, initialPos, initialVel, nil, 0, positions, masses, registry, evaluate, warnOnMissing, tempAcc, k1); err != nil {
		return 0, err
	}
	if err := r.evaluateStage(ctx, entities, initialPos, initialVel, k1, dt2, positions, masses, registry, evaluate, warnOnMissing, tempAcc, k2); err != nil {
		return 0, err
	}
	if err := r.evaluateStage(ctx, entities, initialPos, initialVel, k2, dt2, positions, masses, registry, evaluate, warnOnMissing, tempAcc, k3); err != nil {
		return 0, err
	}
	if err := r.evaluateStage(ctx, entities, initialPos, initialVel, k3, dt, positions, masses, registry, evaluate, warnOnMissing, tempAcc, k4); err != nil {
		return 0, err
	}

	updated := 0
	for _, e := range entities {
		pos, okP := initialPos[e]
		vel, okV := initialVel[e]
		if !okP || !okV {
			continue
		}
		// Restore x0 first so an entity whose update is skipped below is
		// not left at its last stage evaluation point.
		positions.Insert(e, pos)

		k1p, ok1p := k1.pos[e]
		k2p, ok2p := k2.pos[e]
		k3p, ok3p := k3.pos[e]
		k4p, ok4p := k4.pos[e]
		k1v, ok1v := k1.vel[e]
		k2v, ok2v := k2.vel[e]
		k3v, ok3v := k3.vel[e]
		k4v, ok4v := k4.vel[e]
		if !(ok1p && ok2p && ok3p && ok4p && ok1v && ok2v && ok3v && ok4v) {
			continue
		}

		newPos := component.Position{
			X: pos.X + (k1p.X+2*k2p.X+2*k3p.X+k4p.X)*dt6,
			Y: pos.Y + (k1p.Y+2*k2p.Y+2*k3p.Y+k4p.Y)*dt6,
			Z: pos.Z + (k1p.Z+2*k2p.Z+2*k3p.Z+k4p.Z)*dt6,
		}
		newVel := component.Velocity{
			DX: vel.DX + (k1v.DX+2*k2v.DX+2*k3v.DX+k4v.DX)*dt6,
			DY: vel.DY + (k1v.DY+2*k2v.DY+2*k3v.DY+k4v.DY)*dt6,
			DZ: vel.DZ + (k1v.DZ+2*k2v.DZ+2*k3v.DZ+k4v.DZ)*dt6,
		}

		if !newPos.IsValid() || !newVel.IsValid() {
			if warnOnMissing {
				diagnostics.Warnf(r.Diagnostics, "rk4: non-finite state after update for %s", e)
			}
			continue
		}

		positions.Insert(e, newPos)
		velocities.Insert(e, newVel)
		updated++
	}

	// Leave accelerations reflecting the final position so a subsequent
	// Verlet step (if the caller switches integrators) sees a consistent
	// a(t) rather than a stale k4 evaluation point.
	registry.ClearForces()
	if err := evaluate(ctx, entities, positions); err != nil {
		return updated, err
	}
	for _, e := range entities {
		m, ok := masses.Get(e)
		if !ok || m.IsImmovable() {
			continue
		}
		f, ok := registry.GetForce(e)
		if !ok {
			continue
		}
		inv := m.Inverse()
		acc := component.Acceleration{AX: f.FX * inv, AY: f.FY * inv, AZ: f.FZ * inv}
		if acc.IsValid() {
			accelerations.Insert(e, acc)
		}
	}

	return updated, nil
}
