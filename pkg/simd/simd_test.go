package simd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testBackends() []Backend {
	return []Backend{
		ScalarBackend{},
		vectorBackend{name: "vector4", width: AVX2Width},
		vectorBackend{name: "vector8", width: AVX512Width},
	}
}

// TEST: GIVEN any backend WHEN UpdateVelocity is applied THEN it computes v' = v + a*dt elementwise
func TestBackends_UpdateVelocity_MatchesFormula(t *testing.T) {
	for _, b := range testBackends() {
		vel := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
		acc := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1}
		b.UpdateVelocity(vel, acc, 2.0)

		for i, v := range vel {
			assert.InDelta(t, float64(i+1)+2.0, v, 1e-9, "backend %s lane %d", b.Name(), i)
		}
	}
}

// TEST: GIVEN any backend WHEN UpdatePosition is applied THEN it computes p' = p + v*dt + 0.5*a*dt^2 elementwise
func TestBackends_UpdatePosition_MatchesFormula(t *testing.T) {
	for _, b := range testBackends() {
		pos := make([]float64, 7)
		vel := []float64{1, 1, 1, 1, 1, 1, 1}
		acc := []float64{2, 2, 2, 2, 2, 2, 2}
		dt := 1.0
		b.UpdatePosition(pos, vel, acc, dt, 0.5*dt*dt)

		for i, p := range pos {
			assert.InDelta(t, 2.0, p, 1e-9, "backend %s lane %d", b.Name(), i)
		}
	}
}

// TEST: GIVEN slices whose lengths differ WHEN a kernel runs THEN it stops at the shortest slice without panicking
func TestBackends_MismatchedLengths_StopsAtShortest(t *testing.T) {
	for _, b := range testBackends() {
		total := []float64{0, 0, 0, 0, 0}
		forces := []float64{1, 1, 1}
		assert.NotPanics(t, func() { b.AccumulateForces(total, forces) })
		assert.Equal(t, []float64{1, 1, 1, 0, 0}, total)
	}
}

// TEST: GIVEN scalar and vector backends WHEN run over the same non-divisible-length input THEN results are bit-identical
func TestBackends_ScalarAndVectorAgree_NonDivisibleLength(t *testing.T) {
	scalar := ScalarBackend{}
	vector := vectorBackend{name: "vector4", width: AVX2Width}

	velScalar := []float64{1, 2, 3, 4, 5, 6, 7}
	velVector := append([]float64(nil), velScalar...)
	acc := []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}

	scalar.UpdateVelocity(velScalar, acc, 3.0)
	vector.UpdateVelocity(velVector, acc, 3.0)

	assert.Equal(t, velScalar, velVector)
}

// TEST: GIVEN SelectBackend is called THEN it returns a backend reporting itself as supported
func TestSelectBackend_ReturnsSupportedBackend(t *testing.T) {
	b := SelectBackend()
	assert.True(t, b.IsSupported())
	assert.Contains(t, []int{1, AVX2Width, AVX512Width}, b.Width())
}

// TEST: GIVEN HasAVX2/HasAVX512 are called repeatedly THEN the cached result is stable across calls
func TestFeatureDetection_Stable(t *testing.T) {
	first := HasAVX2()
	second := HasAVX2()
	assert.Equal(t, first, second)

	first512 := HasAVX512()
	second512 := HasAVX512()
	assert.Equal(t, first512, second512)
}
