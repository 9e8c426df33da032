package component_test

import (
	"math"
	"testing"

	"github.com/bxrne/nbodysim/pkg/component"
	"github.com/stretchr/testify/assert"
)

// TEST: GIVEN a position with finite coordinates WHEN IsValid is called THEN it returns true
func TestPosition_IsValid(t *testing.T) {
	assert.True(t, component.Position{X: 1, Y: 2, Z: 3}.IsValid())
	assert.False(t, component.Position{X: math.NaN()}.IsValid())
	assert.False(t, component.Position{Y: math.Inf(1)}.IsValid())
}

// TEST: GIVEN a negative mass WHEN NewMass is called THEN it panics
func TestNewMass_PanicsOnNegative(t *testing.T) {
	assert.Panics(t, func() { component.NewMass(-1) })
}

// TEST: GIVEN an invalid mass value WHEN TryNewMass is called THEN it returns false
func TestTryNewMass_InvalidReturnsFalse(t *testing.T) {
	_, ok := component.TryNewMass(math.NaN())
	assert.False(t, ok)

	m, ok := component.TryNewMass(5.0)
	assert.True(t, ok)
	assert.Equal(t, 5.0, m.Value)
}

// TEST: GIVEN a mass below the immovable threshold WHEN IsImmovable is called THEN it returns true
func TestMass_IsImmovable(t *testing.T) {
	assert.True(t, component.ImmovableMass().IsImmovable())
	assert.False(t, component.NewMass(1.0).IsImmovable())
}

// TEST: GIVEN an immovable mass WHEN Inverse is called THEN it returns zero instead of dividing
func TestMass_Inverse_ImmovableIsZero(t *testing.T) {
	assert.Equal(t, 0.0, component.ImmovableMass().Inverse())
	assert.Equal(t, 0.5, component.NewMass(2.0).Inverse())
}

// TEST: GIVEN two forces WHEN Add is called THEN the result is their component-wise sum
func TestForce_Add(t *testing.T) {
	a := component.Force{FX: 1, FY: 2, FZ: 3}
	b := component.Force{FX: 4, FY: 5, FZ: 6}
	sum := a.Add(b)
	assert.Equal(t, component.Force{FX: 5, FY: 7, FZ: 9}, sum)
}

// TEST: GIVEN a force WHEN Magnitude is called THEN it returns the Euclidean norm
func TestForce_Magnitude(t *testing.T) {
	f := component.Force{FX: 3, FY: 4, FZ: 0}
	assert.InDelta(t, 5.0, f.Magnitude(), 1e-12)
}

// TEST: GIVEN a force WHEN Scale is called THEN every component is scaled by the same factor
func TestForce_Scale(t *testing.T) {
	f := component.Force{FX: 1, FY: 2, FZ: 3}
	scaled := f.Scale(2.0)
	assert.Equal(t, component.Force{FX: 2, FY: 4, FZ: 6}, scaled)
}
