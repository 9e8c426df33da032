// Package gravity implements Newton's law of universal gravitation as a
// whole-world force source: softened pairwise attraction between every
// pair of massive bodies, computed in parallel chunks and merged directly
// into a force.Registry's accumulation map.
//
// Unlike a per-entity force.Provider, gravity needs every entity's state
// at once to evaluate the N-body sum, so it is driven explicitly by
// Compute rather than registered with RegisterProvider. The original
// implementation this was ported from registered one synthetic
// single-entity provider per body per step, growing the registry's
// provider list without bound; System.Compute instead calls
// Registry.MergeEntityForce, which writes straight into the accumulated
// force map.
package gravity

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/bxrne/nbodysim/internal/diagnostics"
	"github.com/bxrne/nbodysim/pkg/component"
	"github.com/bxrne/nbodysim/pkg/entity"
	"github.com/bxrne/nbodysim/pkg/force"
)

// GravitationalConstant is the CODATA 2018 recommended value, in
// m^3/(kg*s^2).
const GravitationalConstant = 6.67430e-11

// DefaultSoftening prevents force singularities when two bodies coincide
// or pass very close to one another, in meters.
const DefaultSoftening = 1e3

// PositionGetter retrieves an entity's position.
type PositionGetter interface {
	Get(e entity.Entity) (component.Position, bool)
}

// MassGetter retrieves an entity's mass.
type MassGetter interface {
	Get(e entity.Entity) (component.Mass, bool)
}

// System computes pairwise Newtonian gravity across a set of entities.
type System struct {
	gConstant     float64
	softening     float64
	chunkSize     int
	warnOnInvalid bool
	diagnostics   diagnostics.Sink
}

// New creates a gravity system with the given gravitational constant.
// Panics if gConstant is negative or non-finite.
func New(gConstant float64) *System {
	if !(gConstant >= 0 && !math.IsInf(gConstant, 0) && !math.IsNaN(gConstant)) {
		panic("gravity: gravitational constant must be non-negative and finite")
	}
	return &System{
		gConstant:     gConstant,
		softening:     DefaultSoftening,
		warnOnInvalid: true,
	}
}

// WithScaledG creates a gravity system using GravitationalConstant scaled
// by factor, useful for demonstration simulations where realistic G
// produces imperceptibly slow dynamics.
func WithScaledG(factor float64) *System {
	return New(GravitationalConstant * factor)
}

// DefaultSettings creates a gravity system using the realistic
// gravitational constant and default softening.
func DefaultSettings() *System {
	return New(GravitationalConstant)
}

// SetSoftening sets the softening distance. Panics if negative or
// non-finite.
func (s *System) SetSoftening(softening float64) {
	if !(softening >= 0 && !math.IsInf(softening, 0) && !math.IsNaN(softening)) {
		panic("gravity: softening must be non-negative and finite")
	}
	s.softening = softening
}

// Softening returns the current softening distance.
func (s *System) Softening() float64 { return s.softening }

// SetChunkSize overrides the per-goroutine batch size used by Compute.
// Zero means auto-determine: a quarter of the entity count, at least 1.
func (s *System) SetChunkSize(size int) { s.chunkSize = size }

// SetDiagnostics installs the sink used for warnings; nil falls back to
// the process-wide default.
func (s *System) SetDiagnostics(sink diagnostics.Sink) { s.diagnostics = sink }

// SetWarnOnInvalid toggles diagnostic emission for degenerate pairs.
func (s *System) SetWarnOnInvalid(warn bool) { s.warnOnInvalid = warn }

func (s *System) pairwiseForce(e1, e2 entity.Entity, positions PositionGetter, masses MassGetter) (component.Force, bool) {
	pos1, ok := positions.Get(e1)
	if !ok {
		return component.Force{}, false
	}
	pos2, ok := positions.Get(e2)
	if !ok {
		return component.Force{}, false
	}
	mass1, ok := masses.Get(e1)
	if !ok {
		return component.Force{}, false
	}
	mass2, ok := masses.Get(e2)
	if !ok {
		return component.Force{}, false
	}

	if mass1.IsImmovable() {
		return component.Force{}, false
	}

	dx := pos2.X - pos1.X
	dy := pos2.Y - pos1.Y
	dz := pos2.Z - pos1.Z

	rSquared := dx*dx + dy*dy + dz*dz
	softenedRSquared := rSquared + s.softening*s.softening

	if softenedRSquared == 0 {
		if s.warnOnInvalid {
			diagnostics.Warnf(s.diagnostics, "gravity: zero distance between %s and %s", e1, e2)
		}
		return component.Force{}, false
	}

	forceMagnitude := s.gConstant * mass1.Value * mass2.Value / softenedRSquared
	if math.IsNaN(forceMagnitude) || math.IsInf(forceMagnitude, 0) {
		if s.warnOnInvalid {
			diagnostics.Warnf(s.diagnostics, "gravity: non-finite force magnitude between %s and %s", e1, e2)
		}
		return component.Force{}, false
	}

	r := math.Sqrt(softenedRSquared)
	scale := forceMagnitude / r

	f := component.Force{FX: scale * dx, FY: scale * dy, FZ: scale * dz}
	if !f.IsValid() {
		if s.warnOnInvalid {
			diagnostics.Warnf(s.diagnostics, "gravity: non-finite force components between %s and %s", e1, e2)
		}
		return component.Force{}, false
	}
	return f, true
}

func (s *System) forceForEntity(e entity.Entity, positions PositionGetter, masses MassGetter, all []entity.Entity) (component.Force, bool) {
	total := component.ZeroForce()
	has := false
	for _, other := range all {
		if other == e {
			continue
		}
		f, ok := s.pairwiseForce(e, other, positions, masses)
		if !ok {
			continue
		}
		total = total.Add(f)
		has = true
	}
	return total, has
}

// PotentialEnergy returns the total gravitational potential energy of
// entities: the sum over every distinct pair of -G*m1*m2/r, using the
// same softened distance Compute uses for force, so energy accounting
// stays consistent with the force actually applied.
func (s *System) PotentialEnergy(entities []entity.Entity, positions PositionGetter, masses MassGetter) float64 {
	total := 0.0
	for i, e1 := range entities {
		pos1, ok := positions.Get(e1)
		if !ok {
			continue
		}
		mass1, ok := masses.Get(e1)
		if !ok {
			continue
		}
		for _, e2 := range entities[i+1:] {
			pos2, ok := positions.Get(e2)
			if !ok {
				continue
			}
			mass2, ok := masses.Get(e2)
			if !ok {
				continue
			}

			dx := pos2.X - pos1.X
			dy := pos2.Y - pos1.Y
			dz := pos2.Z - pos1.Z
			r := math.Sqrt(dx*dx+dy*dy+dz*dz+s.softening*s.softening)
			if r == 0 {
				continue
			}
			total -= s.gConstant * mass1.Value * mass2.Value / r
		}
	}
	return total
}

// Compute evaluates every pairwise gravitational interaction among
// entities and merges each entity's net gravitational force directly
// into reg's accumulation map, split across chunkSize-sized batches and
// run concurrently via errgroup. Returns the number of entities that
// received a nonzero force.
func (s *System) Compute(ctx context.Context, entities []entity.Entity, positions PositionGetter, masses MassGetter, reg *force.Registry) (int, error) {
	if len(entities) == 0 {
		return 0, nil
	}

	chunkSize := s.chunkSize
	if chunkSize <= 0 {
		chunkSize = (len(entities) / 4)
		if chunkSize < 1 {
			chunkSize = 1
		}
	}

	type chunkResult struct {
		entities []entity.Entity
		forces   []component.Force
	}

	numChunks := (len(entities) + chunkSize - 1) / chunkSize
	results := make([]chunkResult, numChunks)

	g, gctx := errgroup.WithContext(ctx)
	for c := 0; c < numChunks; c++ {
		c := c
		start := c * chunkSize
		end := start + chunkSize
		if end > len(entities) {
			end = len(entities)
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chunk := entities[start:end]
			res := chunkResult{}
			for _, e := range chunk {
				f, ok := s.forceForEntity(e, positions, masses, entities)
				if !ok || f == component.ZeroForce() {
					continue
				}
				res.entities = append(res.entities, e)
				res.forces = append(res.forces, f)
			}
			results[c] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	count := 0
	for _, res := range results {
		for i, e := range res.entities {
			reg.MergeEntityForce(e, res.forces[i])
			count++
		}
	}
	return count, nil
}
