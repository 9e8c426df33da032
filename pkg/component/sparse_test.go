package component_test

import (
	"testing"

	"github.com/bxrne/nbodysim/pkg/component"
	"github.com/bxrne/nbodysim/pkg/entity"
	"github.com/stretchr/testify/assert"
)

// TEST: GIVEN an empty sparse storage WHEN Insert then Get is called THEN the stored value is returned
func TestSparseStorage_InsertGet(t *testing.T) {
	s := component.NewSparseStorage[component.Position]()
	w := entity.NewWorld()
	e := w.CreateEntity()

	s.Insert(e, component.Position{X: 1, Y: 2, Z: 3})
	got, ok := s.Get(e)

	assert.True(t, ok)
	assert.Equal(t, component.Position{X: 1, Y: 2, Z: 3}, got)
}

// TEST: GIVEN a missing entity WHEN Get is called THEN ok is false
func TestSparseStorage_GetMissing(t *testing.T) {
	s := component.NewSparseStorage[component.Mass]()
	w := entity.NewWorld()
	e := w.CreateEntity()

	_, ok := s.Get(e)
	assert.False(t, ok)
}

// TEST: GIVEN a stored record WHEN GetMut is used to mutate it THEN the mutation is visible via Get
func TestSparseStorage_GetMut(t *testing.T) {
	s := component.NewSparseStorage[component.Velocity]()
	w := entity.NewWorld()
	e := w.CreateEntity()
	s.Insert(e, component.Velocity{DX: 1})

	ptr := s.GetMut(e)
	ptr.DX = 99

	got, _ := s.Get(e)
	assert.Equal(t, 99.0, got.DX)
}

// TEST: GIVEN a stored record WHEN Remove is called THEN it is no longer present
func TestSparseStorage_Remove(t *testing.T) {
	s := component.NewSparseStorage[component.Mass]()
	w := entity.NewWorld()
	e := w.CreateEntity()
	s.Insert(e, component.NewMass(5))

	removed, ok := s.Remove(e)
	assert.True(t, ok)
	assert.Equal(t, 5.0, removed.Value)
	assert.False(t, s.Contains(e))
}

// TEST: GIVEN several records WHEN Clear is called THEN Len reports zero
func TestSparseStorage_Clear(t *testing.T) {
	s := component.NewSparseStorage[component.Mass]()
	w := entity.NewWorld()
	s.Insert(w.CreateEntity(), component.NewMass(1))
	s.Insert(w.CreateEntity(), component.NewMass(2))

	s.Clear()
	assert.Equal(t, 0, s.Len())
}
