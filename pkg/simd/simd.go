// Package simd provides runtime CPU-feature dispatch over lane-width
// variants of the integration and force-accumulation kernels. Backends
// are plain unrolled Go loops, not hand-written assembly: the dispatch
// and feature-detection discipline is real, but the "vector" backends
// express width-4/width-8 batching in portable Go rather than actual
// AVX2/AVX-512 intrinsics, which Go does not let a library express
// without cgo or assembly stubs outside this package's scope. All
// backends must produce numerically identical results so swapping
// backends never changes simulation outcomes, only throughput: no
// backend may use fused multiply-add where another doesn't.
package simd

import (
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// Backend performs width-lane batches of the three physics kernels.
type Backend interface {
	Name() string
	Width() int
	IsSupported() bool

	// UpdateVelocity computes v' = v + a*dt in place over velocities.
	UpdateVelocity(velocities []float64, accelerations []float64, dt float64)
	// UpdatePosition computes p' = p + v*dt + 0.5*a*dt^2 in place over positions.
	UpdatePosition(positions []float64, velocities []float64, accelerations []float64, dt, dtSqHalf float64)
	// AccumulateForces computes total[i] += forces[i] in place.
	AccumulateForces(total []float64, forces []float64)
}

var (
	featuresOnce sync.Once
	hasAVX2      bool
	hasAVX512    bool
)

func detect() {
	featuresOnce.Do(func() {
		hasAVX2 = cpuid.CPU.Supports(cpuid.AVX2)
		hasAVX512 = cpuid.CPU.Supports(cpuid.AVX512F) && cpuid.CPU.Supports(cpuid.AVX512DQ)
	})
}

// HasAVX2 reports whether the process-wide cached CPU feature probe found
// AVX2 support.
func HasAVX2() bool {
	detect()
	return hasAVX2
}

// HasAVX512 reports whether the process-wide cached CPU feature probe
// found AVX-512 Foundation and Double/Quad-word support.
func HasAVX512() bool {
	detect()
	return hasAVX512
}

// SelectBackend returns the widest supported backend for the current
// CPU: width-8 on AVX-512, width-4 on AVX2, otherwise the scalar
// width-1 fallback.
func SelectBackend() Backend {
	if HasAVX512() {
		return NewVectorBackend("vector8", AVX512Width)
	}
	if HasAVX2() {
		return NewVectorBackend("vector4", AVX2Width)
	}
	return ScalarBackend{}
}

// NewVectorBackend constructs a width-lane vector backend directly,
// bypassing CPU feature detection. Used to exercise a specific lane
// width regardless of the host CPU, e.g. in tests and benchmarks.
func NewVectorBackend(name string, width int) Backend {
	return vectorBackend{name: name, width: width}
}

// AVX2Width is the lane width modeled after 256-bit AVX2 registers.
const AVX2Width = 4

// AVX512Width is the lane width modeled after 512-bit AVX-512 registers.
const AVX512Width = 8
