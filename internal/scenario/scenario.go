// Package scenario provides named initial-condition builders for the
// simulation runner: a handful of canonical setups used both as smoke
// tests and as demonstration scenarios for the cmd/nbody CLI.
package scenario

import (
	"fmt"

	"github.com/bxrne/nbodysim/pkg/component"
	"github.com/bxrne/nbodysim/pkg/entity"
)

// AU is one astronomical unit in meters, the average Earth-Sun distance.
const AU = 1.495978707e11

// Day is one Earth day in seconds.
const Day = 86400.0

// Body is a single initial-condition record a scenario builder produces.
type Body struct {
	Name     string
	Position component.Position
	Velocity component.Velocity
	Mass     component.Mass
}

// Set is the output of a scenario builder: a world and the bodies
// spawned into it, in the order they were created.
type Set struct {
	World    *entity.World
	Entities []entity.Entity
	Bodies   []Body
}

// Builder constructs a named initial condition.
type Builder func() Set

var registry = map[string]Builder{
	"free_particle":    FreeParticle,
	"constant_force":   ConstantForce,
	"two_body":         TwoBodyAttractive,
	"solar_system_inner": SolarSystemInner,
}

// Lookup returns the builder registered under name.
func Lookup(name string) (Builder, bool) {
	b, ok := registry[name]
	return b, ok
}

// Names returns every registered scenario name.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

func spawn(w *entity.World, bodies []Body) Set {
	set := Set{World: w, Bodies: bodies}
	for range bodies {
		set.Entities = append(set.Entities, w.CreateEntity())
	}
	return set
}

// FreeParticle is a single body with nonzero velocity and no forces:
// the exactness check for constant-velocity straight-line motion.
func FreeParticle() Set {
	w := entity.NewWorld()
	return spawn(w, []Body{
		{
			Name:     "free",
			Position: component.Position{},
			Velocity: component.Velocity{DX: 1, DY: 2, DZ: 3},
			Mass:     component.NewMass(1.0),
		},
	})
}

// ConstantForce is a single body at rest, the starting point for RK4's
// polynomial-motion check under a constant acceleration. The builder
// applies no force, and internal/runner registers only gravity, so a
// run of this scenario through the runner leaves the body at rest.
func ConstantForce() Set {
	w := entity.NewWorld()
	return spawn(w, []Body{
		{
			Name:     "accelerating",
			Position: component.Position{},
			Velocity: component.Velocity{},
			Mass:     component.NewMass(1.0),
		},
	})
}

// TwoBodyAttractive places two equal masses a fixed distance apart with
// no initial velocity, the minimal case that exercises globally-staged
// coupled gravity: each body's force depends on the other's current
// position, so per-entity-staged integration visibly diverges from
// correctly-staged integration within a few steps.
func TwoBodyAttractive() Set {
	w := entity.NewWorld()
	return spawn(w, []Body{
		{
			Name:     "a",
			Position: component.Position{X: -5},
			Velocity: component.Velocity{},
			Mass:     component.NewMass(1e6),
		},
		{
			Name:     "b",
			Position: component.Position{X: 5},
			Velocity: component.Velocity{},
			Mass:     component.NewMass(1e6),
		},
	})
}

// SolarSystemInner approximates the Sun and the four inner planets in
// circular orbits, using NASA Planetary Fact Sheet figures. Orbital
// velocities are applied perpendicular to the radius vector in the
// orbital plane.
func SolarSystemInner() Set {
	type planet struct {
		name      string
		mass      float64
		distance  float64
		velocity  float64
	}
	planets := []planet{
		{"Sun", 1.989e30, 0, 0},
		{"Mercury", 3.301e23, 0.387 * AU, 47870},
		{"Venus", 4.867e24, 0.723 * AU, 35020},
		{"Earth", 5.972e24, 1.0 * AU, 29780},
		{"Mars", 6.417e23, 1.524 * AU, 24070},
	}

	bodies := make([]Body, 0, len(planets))
	for _, p := range planets {
		bodies = append(bodies, Body{
			Name:     p.name,
			Position: component.Position{X: p.distance},
			Velocity: component.Velocity{DY: p.velocity},
			Mass:     component.NewMass(p.mass),
		})
	}

	w := entity.NewWorld()
	return spawn(w, bodies)
}

// Describe returns a human-readable summary of a scenario's bodies.
func (s Set) Describe() string {
	return fmt.Sprintf("%d bodies: %v", len(s.Bodies), names(s.Bodies))
}

func names(bodies []Body) []string {
	out := make([]string, len(bodies))
	for i, b := range bodies {
		out[i] = b.Name
	}
	return out
}
