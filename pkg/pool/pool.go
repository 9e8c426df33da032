// Package pool provides thread-safe buffer pools for reusing temporary
// map allocations in integrators and force accumulation, reducing
// per-step allocation churn.
package pool

import (
	"sync"

	"github.com/zerodha/logf"
)

// Config controls buffer pool behavior.
type Config struct {
	// InitialCapacity is the capacity a freshly allocated buffer is given.
	InitialCapacity int
	// MaxPoolSize is the maximum number of buffers kept on the shelf; a
	// returned buffer beyond this is simply dropped.
	MaxPoolSize int
	// GrowthFactor is informational, recorded for parity with callers that
	// size buffers ahead of an expected growth curve.
	GrowthFactor float64
	// LogResizeEvents logs a line whenever a miss forces a fresh allocation.
	LogResizeEvents bool
}

// DefaultConfig matches the pool defaults used throughout the integrators.
func DefaultConfig() Config {
	return Config{
		InitialCapacity: 64,
		MaxPoolSize:     8,
		GrowthFactor:    2.0,
		LogResizeEvents: false,
	}
}

// Stats reports pool performance counters. Reads are a point-in-time
// snapshot under the stats lock.
type Stats struct {
	Hits       int
	Misses     int
	ResizeCount int
	PoolSize   int
	PeakSize   int
}

// HitRate returns the hit percentage, or 0 when no acquisitions have
// happened yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return (float64(s.Hits) / float64(total)) * 100
}

// HashMapPool is a thread-safe pool of map[K]V buffers. It holds the pool
// list and its stats behind two independent locks that are never held
// concurrently: the pool lock is acquired, a buffer taken, and released
// before the stats lock is separately acquired to record the result. This
// ordering discipline must be preserved by any change to acquire/release.
type HashMapPool[K comparable, V any] struct {
	cfg Config
	log logf.Logger

	poolMu sync.Mutex
	pool   []map[K]V

	statsMu sync.Mutex
	stats   Stats
}

// New creates a pool with the default configuration.
func New[K comparable, V any](log logf.Logger) *HashMapPool[K, V] {
	return WithConfig[K, V](DefaultConfig(), log)
}

// WithConfig creates a pool with custom configuration.
func WithConfig[K comparable, V any](cfg Config, log logf.Logger) *HashMapPool[K, V] {
	return &HashMapPool[K, V]{cfg: cfg, log: log}
}

// HashMapGuard is an RAII-style handle on a pooled map. Release returns the
// buffer to the pool; callers must not retain the map after releasing.
type HashMapGuard[K comparable, V any] struct {
	buffer map[K]V
	owner  *HashMapPool[K, V]
	done   bool
}

// Map returns the underlying buffer for direct use.
func (g *HashMapGuard[K, V]) Map() map[K]V {
	return g.buffer
}

// Release returns the buffer to the pool, clearing it for the next
// acquirer. Calling Release twice is a no-op.
func (g *HashMapGuard[K, V]) Release() {
	if g.done {
		return
	}
	g.done = true
	g.owner.release(g.buffer)
	g.buffer = nil
}

// Acquire borrows a buffer from the pool, allocating a fresh one on a
// miss. The caller must call Release on the returned guard when done.
func (p *HashMapPool[K, V]) Acquire() *HashMapGuard[K, V] {
	// LOCK ORDERING: take the pool lock, pop a buffer, release the pool
	// lock, then separately take the stats lock. The two locks are never
	// held at the same time.
	var (
		buf     map[K]V
		wasHit  bool
		poolLen int
	)
	p.poolMu.Lock()
	if n := len(p.pool); n > 0 {
		buf = p.pool[n-1]
		p.pool = p.pool[:n-1]
		wasHit = true
	} else {
		buf = make(map[K]V, p.cfg.InitialCapacity)
	}
	poolLen = len(p.pool)
	p.poolMu.Unlock()

	p.statsMu.Lock()
	if wasHit {
		p.stats.Hits++
	} else {
		p.stats.Misses++
		if p.cfg.LogResizeEvents {
			p.log.Debug("pool: allocating new buffer", "hit_rate", p.stats.HitRate())
		}
	}
	p.stats.PoolSize = poolLen
	p.statsMu.Unlock()

	return &HashMapGuard[K, V]{buffer: buf, owner: p}
}

func (p *HashMapPool[K, V]) release(buf map[K]V) {
	for k := range buf {
		delete(buf, k)
	}

	p.poolMu.Lock()
	fits := len(p.pool) < p.cfg.MaxPoolSize
	if fits {
		p.pool = append(p.pool, buf)
	}
	poolLen := len(p.pool)
	p.poolMu.Unlock()

	if !fits {
		return
	}

	p.statsMu.Lock()
	p.stats.PoolSize = poolLen
	if poolLen > p.stats.PeakSize {
		p.stats.PeakSize = poolLen
	}
	p.statsMu.Unlock()
}

// Stats returns a snapshot of the pool's current counters.
func (p *HashMapPool[K, V]) Stats() Stats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.stats
}

// Clear empties the pool, e.g. at shutdown.
func (p *HashMapPool[K, V]) Clear() {
	p.poolMu.Lock()
	p.pool = nil
	p.poolMu.Unlock()

	p.statsMu.Lock()
	p.stats.PoolSize = 0
	p.statsMu.Unlock()
}

// Len returns the current number of shelved buffers.
func (p *HashMapPool[K, V]) Len() int {
	p.poolMu.Lock()
	defer p.poolMu.Unlock()
	return len(p.pool)
}
