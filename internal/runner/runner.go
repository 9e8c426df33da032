// Package runner orchestrates a complete simulation: it builds the
// entity world and component storage (sparse or dense, per
// config.Run.StorageLayout) for a named scenario, wires the gravity
// system and chosen integrator together behind a single ForceEvaluator
// — dispatching Velocity Verlet's bulk update arithmetic through
// pkg/simd when config.Run.SIMDEnabled is set — drives a run-lifecycle
// state machine with looplab/fsm, and samples energy/center-of-mass/drift
// diagnostics at a configurable cadence. internal/reporting renders the
// collected Samples as the `DIAG,...` CSV stream.
package runner

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/zerodha/logf"

	"github.com/bxrne/nbodysim/internal/config"
	"github.com/bxrne/nbodysim/internal/scenario"
	"github.com/bxrne/nbodysim/pkg/component"
	"github.com/bxrne/nbodysim/pkg/entity"
	"github.com/bxrne/nbodysim/pkg/force"
	"github.com/bxrne/nbodysim/pkg/gravity"
	"github.com/bxrne/nbodysim/pkg/integrate"
	"github.com/bxrne/nbodysim/pkg/pool"
	"github.com/bxrne/nbodysim/pkg/simd"
)

// Run states, matching the lifecycle every simulation moves through.
const (
	StateBuilt   = "built"
	StateRunning = "running"
	StateStepped = "stepped"
	StateDone    = "done"
	StateFailed  = "failed"
)

// Sample is one periodic diagnostic snapshot taken during a run,
// corresponding to one `DIAG,...` line of the diagnostic CSV stream.
type Sample struct {
	Step             int
	SimulatedSeconds float64
	Timestep         float64
	KineticEnergy    float64
	PotentialEnergy  float64
	TotalEnergy      float64
	// FractionalDrift is (TotalEnergy - initial TotalEnergy) / initial
	// TotalEnergy, 0 for the first sample and whenever the initial total
	// energy is itself zero.
	FractionalDrift float64
	CenterOfMass    component.Position
	EntityCount     int
}

// massStore extends integrate's read-only MassStore with the Insert a
// runner needs to seed masses when a scenario is built.
type massStore interface {
	integrate.MassStore
	Insert(e entity.Entity, value component.Mass)
}

// Storage bundles the component storages a run operates on. Either the
// sparse or dense layout may be used interchangeably since both satisfy
// the integrate package's minimal store interfaces.
type Storage struct {
	Positions     integrate.PositionStore
	Velocities    integrate.VelocityStore
	Accelerations integrate.AccelerationStore
	Masses        massStore
}

func newSparseStorage() *Storage {
	return &Storage{
		Positions:     component.NewSparseStorage[component.Position](),
		Velocities:    component.NewSparseStorage[component.Velocity](),
		Accelerations: component.NewSparseStorage[component.Acceleration](),
		Masses:        component.NewSparseStorage[component.Mass](),
	}
}

// newDenseStorage builds the "true SoA" column layout, letting the SIMD
// backends operate on contiguous field slices.
func newDenseStorage() *Storage {
	return &Storage{
		Positions:     component.NewDenseVectorStorage(component.PositionCodec()),
		Velocities:    component.NewDenseVectorStorage(component.VelocityCodec()),
		Accelerations: component.NewDenseVectorStorage(component.AccelerationCodec()),
		Masses:        component.NewDenseScalarStorage(component.MassCodec()),
	}
}

func newStorage(layout string) *Storage {
	if layout == "dense" {
		return newDenseStorage()
	}
	return newSparseStorage()
}

// Runner drives one simulation run to completion.
type Runner struct {
	cfg        *config.Config
	log        logf.Logger
	fsm        *fsm.FSM
	world      *entity.World
	entities   []entity.Entity
	storage    *Storage
	registry   *force.Registry
	gravity    *gravity.System
	integrator integrate.Integrator
	samples    []Sample

	haveInitialEnergy bool
	initialEnergy     float64
}

// New builds a runner for cfg's named scenario, integrator, and storage
// layout. Returns an error if the scenario name is unregistered.
func New(cfg *config.Config, log logf.Logger) (*Runner, error) {
	builder, ok := scenario.Lookup(cfg.Run.Scenario)
	if !ok {
		return nil, fmt.Errorf("runner: unknown scenario %q, available: %v", cfg.Run.Scenario, scenario.Names())
	}
	set := builder()

	storage := newStorage(cfg.Run.StorageLayout)
	for i, e := range set.Entities {
		b := set.Bodies[i]
		storage.Positions.Insert(e, b.Position)
		storage.Velocities.Insert(e, b.Velocity)
		storage.Masses.Insert(e, b.Mass)
	}

	registry := force.NewRegistry()

	grav := gravity.WithScaledG(cfg.Run.GravitationalConstantScale)
	if cfg.Run.Softening > 0 {
		grav.SetSoftening(cfg.Run.Softening)
	}

	var integrator integrate.Integrator
	switch cfg.Run.Integrator {
	case "rk4":
		integrator = integrate.NewRK4(cfg.Run.Timestep, log)
	default:
		verlet := integrate.NewVelocityVerlet(cfg.Run.Timestep)
		if cfg.Run.SIMDEnabled {
			verlet.SetBackend(simd.SelectBackend())
		}
		integrator = verlet
	}

	r := &Runner{
		cfg:        cfg,
		log:        log,
		world:      set.World,
		entities:   set.Entities,
		storage:    storage,
		registry:   registry,
		gravity:    grav,
		integrator: integrator,
	}
	r.fsm = newRunFSM(r)
	return r, nil
}

func newRunFSM(r *Runner) *fsm.FSM {
	return fsm.NewFSM(
		StateBuilt,
		fsm.Events{
			{Name: "start", Src: []string{StateBuilt}, Dst: StateRunning},
			{Name: "step", Src: []string{StateRunning, StateStepped}, Dst: StateStepped},
			{Name: "finish", Src: []string{StateRunning, StateStepped}, Dst: StateDone},
			{Name: "fail", Src: []string{StateRunning, StateStepped, StateBuilt}, Dst: StateFailed},
		},
		fsm.Callbacks{},
	)
}

// State returns the runner's current lifecycle state.
func (r *Runner) State() string { return r.fsm.Current() }

// evaluate recomputes every force for the given entities at their
// current positions: gravity's whole-world pairwise sum merged directly
// into the registry, per the evaluator contract every integrator stage
// relies on.
func (r *Runner) evaluate(ctx context.Context, entities []entity.Entity, positions integrate.PositionStore) error {
	posAdapter, ok := positions.(gravity.PositionGetter)
	if !ok {
		return fmt.Errorf("runner: position store does not support gravity lookups")
	}
	_, err := r.gravity.Compute(ctx, entities, posAdapter, r.storage.Masses, r.registry)
	return err
}

// primeAccelerations runs one force evaluation at the initial positions
// and reduces it to accelerations, satisfying Velocity Verlet's
// requirement that a(t) already be populated before the first step.
func (r *Runner) primeAccelerations(ctx context.Context) error {
	r.registry.ClearForces()
	if err := r.evaluate(ctx, r.entities, r.storage.Positions); err != nil {
		return err
	}
	r.registry.ApplyToAcceleration(r.entities, r.storage.Masses, r.storage.Accelerations, true)
	return nil
}

// Run advances the simulation for cfg.Run.Steps steps, sampling
// diagnostics every DiagnosticSampleEvery steps (0 disables sampling).
func (r *Runner) Run(ctx context.Context) ([]Sample, error) {
	if err := r.fsm.Event(ctx, "start"); err != nil {
		return nil, err
	}

	if r.cfg.Run.Integrator != "rk4" {
		if err := r.primeAccelerations(ctx); err != nil {
			_ = r.fsm.Event(ctx, "fail")
			return nil, fmt.Errorf("runner: failed to prime accelerations: %w", err)
		}
	}

	every := r.cfg.Run.DiagnosticSampleEvery
	for step := 0; step < r.cfg.Run.Steps; step++ {
		if err := ctx.Err(); err != nil {
			_ = r.fsm.Event(ctx, "fail")
			return r.samples, err
		}

		_, err := r.integrator.Integrate(
			ctx,
			r.entities,
			r.storage.Positions,
			r.storage.Velocities,
			r.storage.Accelerations,
			r.storage.Masses,
			r.registry,
			r.evaluate,
			true,
		)
		if err != nil {
			_ = r.fsm.Event(ctx, "fail")
			return r.samples, fmt.Errorf("runner: step %d failed: %w", step, err)
		}

		if err := r.fsm.Event(ctx, "step"); err != nil {
			return r.samples, err
		}

		if every > 0 && step%every == 0 {
			r.sample(step)
		}
	}

	if err := r.fsm.Event(ctx, "finish"); err != nil {
		return r.samples, err
	}
	return r.samples, nil
}

func (r *Runner) sample(step int) {
	ke := integrate.TotalKineticEnergy(r.entities, r.storage.Velocities, r.storage.Masses)
	pe := r.gravity.PotentialEnergy(r.entities, r.storage.Positions, r.storage.Masses)
	total := ke + pe

	if !r.haveInitialEnergy {
		r.initialEnergy = total
		r.haveInitialEnergy = true
	}
	drift := 0.0
	if r.initialEnergy != 0 {
		drift = (total - r.initialEnergy) / r.initialEnergy
	}

	r.samples = append(r.samples, Sample{
		Step:             step,
		SimulatedSeconds: float64(step) * r.integrator.Timestep(),
		Timestep:         r.integrator.Timestep(),
		KineticEnergy:    ke,
		PotentialEnergy:  pe,
		TotalEnergy:      total,
		FractionalDrift:  drift,
		CenterOfMass:     r.centerOfMass(),
		EntityCount:      len(r.entities),
	})
	r.log.Info("diagnostic sample", "step", step, "kinetic_energy", ke, "potential_energy", pe, "drift", drift)
}

// centerOfMass returns the mass-weighted average position of every
// entity with both a position and a mass component, or the origin if
// total mass is zero.
func (r *Runner) centerOfMass() component.Position {
	var totalMass, wx, wy, wz float64
	for _, e := range r.entities {
		pos, ok := r.storage.Positions.Get(e)
		if !ok {
			continue
		}
		mass, ok := r.storage.Masses.Get(e)
		if !ok {
			continue
		}
		totalMass += mass.Value
		wx += pos.X * mass.Value
		wy += pos.Y * mass.Value
		wz += pos.Z * mass.Value
	}
	if totalMass == 0 {
		return component.Position{}
	}
	return component.Position{X: wx / totalMass, Y: wy / totalMass, Z: wz / totalMass}
}

// Samples returns every diagnostic sample collected so far.
func (r *Runner) Samples() []Sample { return r.samples }

// Entities returns the run's entity set.
func (r *Runner) Entities() []entity.Entity { return r.entities }

// Storage returns the run's component storage.
func (r *Runner) Storage() *Storage { return r.storage }

// poolStatsProvider is satisfied by integrators backed by pkg/pool scratch
// buffers, currently only RK4.
type poolStatsProvider interface {
	PoolStats() []pool.Stats
}

// PoolStats returns the integrator's scratch buffer pool statistics, or
// nil if the selected integrator does not use pooled buffers.
func (r *Runner) PoolStats() []pool.Stats {
	p, ok := r.integrator.(poolStatsProvider)
	if !ok {
		return nil
	}
	return p.PoolStats()
}
