// Package force implements per-entity force accumulation: a registry of
// pluggable providers whose contributions are summed, clamped to a
// configurable magnitude, and reduced to acceleration via Newton's second
// law.
package force

import (
	"github.com/bxrne/nbodysim/internal/diagnostics"
	"github.com/bxrne/nbodysim/pkg/component"
	"github.com/bxrne/nbodysim/pkg/entity"
)

// DefaultMaxForceMagnitude is the saturation limit applied to an entity's
// total accumulated force, chosen to catch runaway numerical blow-ups
// without rejecting legitimate astrophysical force magnitudes.
const DefaultMaxForceMagnitude = 1e10

// Provider computes the force it contributes to a single entity.
// Implementations return ok=false when they don't apply to the entity,
// e.g. because a required component is missing.
type Provider interface {
	ComputeForce(e entity.Entity, reg *Registry) (component.Force, bool)
	Name() string
}

// Registry holds registered per-entity providers and the forces
// accumulated from them. Whole-world providers such as gravity bypass
// the provider list entirely and merge straight into the accumulation
// map via MergeEntityForce, so the provider list never grows with one
// entry per entity per step.
type Registry struct {
	providers []Provider
	forces    map[entity.Entity]component.Force

	// MaxForceMagnitude saturates an entity's total force, preserving
	// direction while scaling magnitude down to this bound.
	MaxForceMagnitude float64
	// WarnOnMissingComponents gates diagnostic emission for skipped
	// entities and clamped forces.
	WarnOnMissingComponents bool

	Diagnostics diagnostics.Sink
}

// NewRegistry creates an empty registry with default limits.
func NewRegistry() *Registry {
	return &Registry{
		forces:                  make(map[entity.Entity]component.Force),
		MaxForceMagnitude:       DefaultMaxForceMagnitude,
		WarnOnMissingComponents: true,
	}
}

// RegisterProvider adds a per-entity force provider.
func (r *Registry) RegisterProvider(p Provider) {
	r.providers = append(r.providers, p)
}

// ClearForces empties the accumulated forces map, keeping providers
// registered.
func (r *Registry) ClearForces() {
	r.forces = make(map[entity.Entity]component.Force)
}

// Clear empties both the provider list and the accumulated forces, for
// resetting the registry between runs.
func (r *Registry) Clear() {
	r.providers = nil
	r.forces = make(map[entity.Entity]component.Force)
}

// AccumulateForEntity sums every registered provider's contribution for
// e, clamps the total to MaxForceMagnitude, and stores it. Returns true
// if any provider contributed a force.
func (r *Registry) AccumulateForEntity(e entity.Entity) bool {
	total := component.ZeroForce()
	hasForce := false

	for _, p := range r.providers {
		f, ok := p.ComputeForce(e, r)
		if !ok {
			continue
		}
		if !f.IsValid() {
			if r.WarnOnMissingComponents {
				diagnostics.Warnf(r.Diagnostics, "force: provider %q produced non-finite force for %s", p.Name(), e)
			}
			continue
		}
		total = total.Add(f)
		hasForce = true
	}

	if hasForce {
		total = r.clamp(e, total)
		r.forces[e] = total
	}
	return hasForce
}

// MergeEntityForce adds a precomputed force (e.g. from a whole-world
// provider such as gravity) directly into the accumulation map, clamping
// the resulting total. Use this instead of registering a synthetic
// per-entity Provider, which would grow the provider list unboundedly.
func (r *Registry) MergeEntityForce(e entity.Entity, f component.Force) {
	if !f.IsValid() {
		if r.WarnOnMissingComponents {
			diagnostics.Warnf(r.Diagnostics, "force: merge produced non-finite force for %s", e)
		}
		return
	}
	total := r.forces[e].Add(f)
	r.forces[e] = r.clamp(e, total)
}

func (r *Registry) clamp(e entity.Entity, total component.Force) component.Force {
	max := r.MaxForceMagnitude
	if max <= 0 {
		return total
	}
	mag := total.Magnitude()
	if mag <= max {
		return total
	}
	if r.WarnOnMissingComponents {
		diagnostics.Warnf(r.Diagnostics, "force: total magnitude %.2e exceeds limit %.2e for %s, clamping", mag, max, e)
	}
	return total.Scale(max / mag)
}

// GetForce returns e's accumulated force, if any.
func (r *Registry) GetForce(e entity.Entity) (component.Force, bool) {
	f, ok := r.forces[e]
	return f, ok
}

// ProviderCount returns the number of registered per-entity providers.
func (r *Registry) ProviderCount() int {
	return len(r.providers)
}

// MassGetter retrieves an entity's mass; satisfied by
// *component.SparseStorage[component.Mass] and
// *component.DenseScalarStorage[component.Mass].
type MassGetter interface {
	Get(e entity.Entity) (component.Mass, bool)
}

// AccelerationSetter writes an entity's acceleration; satisfied by
// *component.SparseStorage[component.Acceleration].
type AccelerationSetter interface {
	Insert(e entity.Entity, value component.Acceleration)
}

// ApplyToAcceleration reduces accumulated forces to accelerations via
// a = F/m for every entity in entities, skipping entities with no
// accumulated force, no mass component, or immovable mass. Returns the
// number of entities updated.
func (r *Registry) ApplyToAcceleration(entities []entity.Entity, masses MassGetter, accelerations AccelerationSetter, warnOnMissing bool) int {
	updated := 0
	for _, e := range entities {
		f, ok := r.GetForce(e)
		if !ok {
			continue
		}

		m, ok := masses.Get(e)
		if !ok {
			if warnOnMissing {
				diagnostics.Warnf(r.Diagnostics, "force: entity %s has force but no mass component, skipping", e)
			}
			continue
		}
		if m.IsImmovable() {
			continue
		}

		invMass := m.Inverse()
		acc := component.Acceleration{
			AX: f.FX * invMass,
			AY: f.FY * invMass,
			AZ: f.FZ * invMass,
		}
		if !acc.IsValid() {
			if warnOnMissing {
				diagnostics.Warnf(r.Diagnostics, "force: computed non-finite acceleration for %s, skipping", e)
			}
			continue
		}

		accelerations.Insert(e, acc)
		updated++
	}
	return updated
}
