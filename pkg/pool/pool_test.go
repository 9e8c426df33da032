package pool_test

import (
	"testing"

	"github.com/bxrne/nbodysim/pkg/pool"
	"github.com/stretchr/testify/assert"
	"github.com/zerodha/logf"
)

// TEST: GIVEN an empty pool WHEN Acquire is called THEN it is a miss and returns a usable map
func TestHashMapPool_Acquire_MissOnEmptyPool(t *testing.T) {
	p := pool.New[string, int](logf.Logger{})

	g := p.Acquire()
	defer g.Release()

	g.Map()["a"] = 1
	assert.Equal(t, 1, g.Map()["a"])
	assert.Equal(t, 1, p.Stats().Misses)
	assert.Equal(t, 0, p.Stats().Hits)
}

// TEST: GIVEN a buffer returned to the pool WHEN Acquire is called again THEN it is a hit and the buffer is cleared
func TestHashMapPool_Acquire_HitAfterRelease(t *testing.T) {
	p := pool.New[string, int](logf.Logger{})

	g1 := p.Acquire()
	g1.Map()["leftover"] = 42
	g1.Release()

	g2 := p.Acquire()
	defer g2.Release()

	assert.Empty(t, g2.Map())
	assert.Equal(t, 1, p.Stats().Hits)
}

// TEST: GIVEN Release is called twice on the same guard THEN the second call is a no-op
func TestHashMapGuard_Release_Idempotent(t *testing.T) {
	p := pool.New[string, int](logf.Logger{})
	g := p.Acquire()

	assert.NotPanics(t, func() {
		g.Release()
		g.Release()
	})
}

// TEST: GIVEN a pool configured with MaxPoolSize 1 WHEN more buffers are released than fit THEN excess buffers are dropped
func TestHashMapPool_MaxPoolSize_DropsExcess(t *testing.T) {
	cfg := pool.Config{InitialCapacity: 4, MaxPoolSize: 1}
	p := pool.WithConfig[string, int](cfg, logf.Logger{})

	g1 := p.Acquire()
	g2 := p.Acquire()
	g1.Release()
	g2.Release()

	assert.Equal(t, 1, p.Len())
}

// TEST: GIVEN acquisitions and releases WHEN Clear is called THEN the pool is emptied
func TestHashMapPool_Clear(t *testing.T) {
	p := pool.New[string, int](logf.Logger{})
	g := p.Acquire()
	g.Release()

	p.Clear()
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 0, p.Stats().PoolSize)
}

// TEST: GIVEN no acquisitions WHEN HitRate is called THEN it returns zero instead of dividing by zero
func TestStats_HitRate_ZeroWhenEmpty(t *testing.T) {
	assert.Equal(t, 0.0, pool.Stats{}.HitRate())
}

// TEST: GIVEN a mix of hits and misses WHEN HitRate is called THEN it returns the percentage of hits
func TestStats_HitRate(t *testing.T) {
	s := pool.Stats{Hits: 3, Misses: 1}
	assert.InDelta(t, 75.0, s.HitRate(), 1e-9)
}
