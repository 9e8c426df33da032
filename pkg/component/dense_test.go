package component_test

import (
	"testing"

	"github.com/bxrne/nbodysim/pkg/component"
	"github.com/bxrne/nbodysim/pkg/entity"
	"github.com/stretchr/testify/assert"
)

func positionCodec() component.VectorCodec[component.Position] {
	return component.VectorCodec[component.Position]{
		Decompose: func(p component.Position) (float64, float64, float64) { return p.X, p.Y, p.Z },
		Compose:   func(x, y, z float64) component.Position { return component.Position{X: x, Y: y, Z: z} },
	}
}

func massCodec() component.ScalarCodec[component.Mass] {
	return component.ScalarCodec[component.Mass]{
		Decompose: func(m component.Mass) float64 { return m.Value },
		Compose:   func(v float64) component.Mass { return component.Mass{Value: v} },
	}
}

// TEST: GIVEN an empty dense vector storage WHEN Insert then Get is called THEN the value round-trips through the codec
func TestDenseVectorStorage_InsertGet(t *testing.T) {
	s := component.NewDenseVectorStorage(positionCodec())
	w := entity.NewWorld()
	e := w.CreateEntity()

	s.Insert(e, component.Position{X: 1, Y: 2, Z: 3})
	got, ok := s.Get(e)

	assert.True(t, ok)
	assert.Equal(t, component.Position{X: 1, Y: 2, Z: 3}, got)
	assert.Equal(t, []float64{1}, s.X())
	assert.Equal(t, []float64{2}, s.Y())
	assert.Equal(t, []float64{3}, s.Z())
}

// TEST: GIVEN three entities WHEN the middle one is Removed THEN the last slot is moved into its place and the slot map is fixed up
func TestDenseVectorStorage_Remove_SwapsLastIntoHole(t *testing.T) {
	s := component.NewDenseVectorStorage(positionCodec())
	w := entity.NewWorld()
	a, b, c := w.CreateEntity(), w.CreateEntity(), w.CreateEntity()

	s.Insert(a, component.Position{X: 1})
	s.Insert(b, component.Position{X: 2})
	s.Insert(c, component.Position{X: 3})

	removed, ok := s.Remove(b)
	assert.True(t, ok)
	assert.Equal(t, component.Position{X: 2}, removed)

	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Contains(b))

	gotA, _ := s.Get(a)
	gotC, _ := s.Get(c)
	assert.Equal(t, component.Position{X: 1}, gotA)
	assert.Equal(t, component.Position{X: 3}, gotC)
}

// TEST: GIVEN a stored record WHEN Set overwrites it THEN Get reflects the new value
func TestDenseVectorStorage_Set(t *testing.T) {
	s := component.NewDenseVectorStorage(positionCodec())
	w := entity.NewWorld()
	e := w.CreateEntity()
	s.Insert(e, component.Position{X: 1})

	ok := s.Set(e, component.Position{X: 9, Y: 9, Z: 9})
	assert.True(t, ok)

	got, _ := s.Get(e)
	assert.Equal(t, component.Position{X: 9, Y: 9, Z: 9}, got)
}

// TEST: GIVEN a dense vector storage WHEN Entities is called THEN it matches the slot order of the field slices
func TestDenseVectorStorage_EntitiesMatchesSlotOrder(t *testing.T) {
	s := component.NewDenseVectorStorage(positionCodec())
	w := entity.NewWorld()
	a, b := w.CreateEntity(), w.CreateEntity()
	s.Insert(a, component.Position{X: 10})
	s.Insert(b, component.Position{X: 20})

	entities := s.Entities()
	assert.Equal(t, []entity.Entity{a, b}, entities)
	assert.Equal(t, []float64{10, 20}, s.X())
}

// TEST: GIVEN an empty dense scalar storage WHEN Insert then Get is called THEN the value round-trips through the codec
func TestDenseScalarStorage_InsertGet(t *testing.T) {
	s := component.NewDenseScalarStorage(massCodec())
	w := entity.NewWorld()
	e := w.CreateEntity()

	s.Insert(e, component.NewMass(42))
	got, ok := s.Get(e)

	assert.True(t, ok)
	assert.Equal(t, 42.0, got.Value)
	assert.Equal(t, []float64{42}, s.Values())
}

// TEST: GIVEN two entities WHEN the first is Removed THEN the second's slot is fixed up to zero
func TestDenseScalarStorage_Remove(t *testing.T) {
	s := component.NewDenseScalarStorage(massCodec())
	w := entity.NewWorld()
	a, b := w.CreateEntity(), w.CreateEntity()
	s.Insert(a, component.NewMass(1))
	s.Insert(b, component.NewMass(2))

	_, ok := s.Remove(a)
	assert.True(t, ok)

	got, _ := s.Get(b)
	assert.Equal(t, 2.0, got.Value)
	assert.Equal(t, 1, s.Len())
}
