package force_test

import (
	"math"
	"testing"

	"github.com/bxrne/nbodysim/internal/diagnostics"
	"github.com/bxrne/nbodysim/pkg/component"
	"github.com/bxrne/nbodysim/pkg/entity"
	"github.com/bxrne/nbodysim/pkg/force"
	"github.com/stretchr/testify/assert"
)

type constantProvider struct {
	name string
	f    component.Force
}

func (c constantProvider) Name() string { return c.name }
func (c constantProvider) ComputeForce(e entity.Entity, reg *force.Registry) (component.Force, bool) {
	return c.f, true
}

type skipProvider struct{}

func (skipProvider) Name() string { return "skip" }
func (skipProvider) ComputeForce(e entity.Entity, reg *force.Registry) (component.Force, bool) {
	return component.Force{}, false
}

// TEST: GIVEN two registered providers WHEN AccumulateForEntity is called THEN their forces are summed
func TestRegistry_AccumulateForEntity_SumsProviders(t *testing.T) {
	reg := force.NewRegistry()
	reg.RegisterProvider(constantProvider{name: "a", f: component.Force{FX: 1}})
	reg.RegisterProvider(constantProvider{name: "b", f: component.Force{FX: 2}})
	w := entity.NewWorld()
	e := w.CreateEntity()

	has := reg.AccumulateForEntity(e)
	assert.True(t, has)

	got, ok := reg.GetForce(e)
	assert.True(t, ok)
	assert.Equal(t, 3.0, got.FX)
}

// TEST: GIVEN a provider that does not apply to the entity WHEN AccumulateForEntity is called THEN it is skipped without contributing
func TestRegistry_AccumulateForEntity_SkipsNonApplicableProvider(t *testing.T) {
	reg := force.NewRegistry()
	reg.RegisterProvider(skipProvider{})
	w := entity.NewWorld()
	e := w.CreateEntity()

	has := reg.AccumulateForEntity(e)
	assert.False(t, has)
	_, ok := reg.GetForce(e)
	assert.False(t, ok)
}

// TEST: GIVEN a total force exceeding MaxForceMagnitude WHEN AccumulateForEntity is called THEN the result is scaled down to the limit, preserving direction
func TestRegistry_AccumulateForEntity_ClampsMagnitude(t *testing.T) {
	reg := force.NewRegistry()
	reg.MaxForceMagnitude = 10
	reg.RegisterProvider(constantProvider{name: "big", f: component.Force{FX: 100, FY: 0, FZ: 0}})
	w := entity.NewWorld()
	e := w.CreateEntity()

	reg.AccumulateForEntity(e)
	got, _ := reg.GetForce(e)

	assert.InDelta(t, 10.0, got.Magnitude(), 1e-9)
	assert.Greater(t, got.FX, 0.0)
}

// TEST: GIVEN MergeEntityForce is called twice for the same entity WHEN GetForce is read THEN the two contributions are summed
func TestRegistry_MergeEntityForce_Accumulates(t *testing.T) {
	reg := force.NewRegistry()
	w := entity.NewWorld()
	e := w.CreateEntity()

	reg.MergeEntityForce(e, component.Force{FX: 1})
	reg.MergeEntityForce(e, component.Force{FX: 2})

	got, ok := reg.GetForce(e)
	assert.True(t, ok)
	assert.Equal(t, 3.0, got.FX)
	assert.Equal(t, 0, reg.ProviderCount())
}

// TEST: GIVEN a non-finite force WHEN MergeEntityForce is called THEN it is rejected and does not corrupt the accumulation map
func TestRegistry_MergeEntityForce_RejectsNonFinite(t *testing.T) {
	reg := force.NewRegistry()
	reg.Diagnostics = diagnostics.DiscardSink{}
	w := entity.NewWorld()
	e := w.CreateEntity()

	reg.MergeEntityForce(e, component.Force{FX: 1})
	reg.MergeEntityForce(e, component.Force{FX: math.NaN()})

	got, ok := reg.GetForce(e)
	assert.True(t, ok)
	assert.Equal(t, 1.0, got.FX)
}

// TEST: GIVEN ClearForces is called WHEN registered providers remain THEN the provider list survives but accumulated forces are emptied
func TestRegistry_ClearForces_KeepsProviders(t *testing.T) {
	reg := force.NewRegistry()
	reg.RegisterProvider(constantProvider{name: "a", f: component.Force{FX: 1}})
	w := entity.NewWorld()
	e := w.CreateEntity()
	reg.AccumulateForEntity(e)

	reg.ClearForces()

	_, ok := reg.GetForce(e)
	assert.False(t, ok)
	assert.Equal(t, 1, reg.ProviderCount())
}

// TEST: GIVEN Clear is called THEN both providers and accumulated forces are emptied
func TestRegistry_Clear_EmptiesEverything(t *testing.T) {
	reg := force.NewRegistry()
	reg.RegisterProvider(constantProvider{name: "a", f: component.Force{FX: 1}})
	w := entity.NewWorld()
	e := w.CreateEntity()
	reg.AccumulateForEntity(e)

	reg.Clear()

	assert.Equal(t, 0, reg.ProviderCount())
	_, ok := reg.GetForce(e)
	assert.False(t, ok)
}

// TEST: GIVEN an entity with an accumulated force and mass WHEN ApplyToAcceleration is called THEN a = F/m is written
func TestRegistry_ApplyToAcceleration_ComputesFOverM(t *testing.T) {
	reg := force.NewRegistry()
	w := entity.NewWorld()
	e := w.CreateEntity()
	reg.MergeEntityForce(e, component.Force{FX: 10})

	masses := component.NewSparseStorage[component.Mass]()
	masses.Insert(e, component.NewMass(2))
	accelerations := component.NewSparseStorage[component.Acceleration]()

	updated := reg.ApplyToAcceleration([]entity.Entity{e}, masses, accelerations, true)

	assert.Equal(t, 1, updated)
	acc, ok := accelerations.Get(e)
	assert.True(t, ok)
	assert.Equal(t, 5.0, acc.AX)
}

// TEST: GIVEN an immovable entity WHEN ApplyToAcceleration is called THEN it is skipped entirely
func TestRegistry_ApplyToAcceleration_SkipsImmovable(t *testing.T) {
	reg := force.NewRegistry()
	w := entity.NewWorld()
	e := w.CreateEntity()
	reg.MergeEntityForce(e, component.Force{FX: 10})

	masses := component.NewSparseStorage[component.Mass]()
	masses.Insert(e, component.ImmovableMass())
	accelerations := component.NewSparseStorage[component.Acceleration]()

	updated := reg.ApplyToAcceleration([]entity.Entity{e}, masses, accelerations, true)

	assert.Equal(t, 0, updated)
	assert.False(t, accelerations.Contains(e))
}

// TEST: GIVEN an entity with no mass component WHEN ApplyToAcceleration is called THEN it is skipped without panicking
func TestRegistry_ApplyToAcceleration_SkipsMissingMass(t *testing.T) {
	reg := force.NewRegistry()
	w := entity.NewWorld()
	e := w.CreateEntity()
	reg.MergeEntityForce(e, component.Force{FX: 10})

	masses := component.NewSparseStorage[component.Mass]()
	accelerations := component.NewSparseStorage[component.Acceleration]()

	updated := reg.ApplyToAcceleration([]entity.Entity{e}, masses, accelerations, true)
	assert.Equal(t, 0, updated)
}
