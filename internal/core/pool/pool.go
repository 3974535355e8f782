// Package pool implements the shared, thread-safe reusable-buffer pools
// from spec.md §4.7, backing the RK4 staging stores and any other transient
// per-step allocation. Grounded on the teacher's MemoryPool
// (internal/core/ecs/storage/memory_pool.go), generalized from a
// component-type-keyed pool of concrete game components to a generic pool
// over any scratch buffer type, since the integrator's k-stage buffers are
// plain slices/structs rather than ECS components.
package pool

import (
	"sync"

	"github.com/orbitkernel/physics/internal/core/ecs"
)

// Config parameterizes a Pool: how many buffers to pre-allocate and how many
// to retain at most. GrowthFactor is carried in the config but Acquire does
// not read it: a miss always allocates exactly one new buffer.
type Config struct {
	InitialCapacity int
	MaxRetained     int
	GrowthFactor    float64
}

// DefaultConfig returns a modest pool sizing suitable for RK4 scratch
// buffers in small-to-medium simulations.
func DefaultConfig() Config {
	return Config{InitialCapacity: 4, MaxRetained: 64, GrowthFactor: 2.0}
}

// Stats reports hit/miss/peak occupancy for tuning pool sizing.
type Stats struct {
	Hits     int64
	Misses   int64
	Peak     int
	InUse    int
	Retained int
}

// Pool is a typed, thread-safe pool of reusable buffers of type T. New
// allocates a fresh buffer when the free list is empty; Reset (if provided)
// clears a buffer's contents before it is handed out again, since pooled
// buffer contents are explicitly undefined between steps per spec.md §3.
type Pool[T any] struct {
	mu   sync.Mutex
	free []T

	newFn   func() T
	resetFn func(*T)

	cfg Config

	hits, misses int64
	inUse, peak  int

	name       string
	collectors *ecs.Collectors
}

// New creates a pool. newFn constructs a fresh buffer; resetFn, if non-nil,
// clears a recycled buffer's contents before reuse.
func New[T any](name string, cfg Config, newFn func() T, resetFn func(*T)) *Pool[T] {
	p := &Pool[T]{
		newFn:   newFn,
		resetFn: resetFn,
		cfg:     cfg,
		name:    name,
	}
	for i := 0; i < cfg.InitialCapacity; i++ {
		p.free = append(p.free, newFn())
	}
	return p
}

// WithCollectors attaches a Prometheus collector set for hit/miss/peak
// gauges, labeled by this pool's name.
func (p *Pool[T]) WithCollectors(c *ecs.Collectors) *Pool[T] {
	p.collectors = c
	return p
}

// Guard is a scoped handle returned by Acquire; calling Release returns the
// buffer to its pool (or discards it, if the pool is already at capacity).
type Guard[T any] struct {
	pool     *Pool[T]
	value    T
	released bool
}

// Value returns a pointer to the acquired buffer.
func (g *Guard[T]) Value() *T { return &g.value }

// Release returns the buffer to the pool. Calling Release more than once is
// a no-op.
func (g *Guard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.pool.release(g.value)
}

// Acquire returns a guarded buffer, drawing from the free list when
// possible or allocating a new one on miss.
func (p *Pool[T]) Acquire() *Guard[T] {
	p.mu.Lock()
	var v T
	wasHit := false
	if n := len(p.free); n > 0 {
		v = p.free[n-1]
		p.free = p.free[:n-1]
		p.hits++
		wasHit = true
	} else {
		p.misses++
	}
	p.inUse++
	if p.inUse > p.peak {
		p.peak = p.inUse
	}
	peak := p.peak
	p.mu.Unlock()

	if !wasHit {
		v = p.newFn()
	}
	if p.resetFn != nil {
		p.resetFn(&v)
	}
	p.reportMetrics(wasHit, peak)
	return &Guard[T]{pool: p, value: v}
}

func (p *Pool[T]) release(v T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inUse--
	if len(p.free) < p.cfg.MaxRetained {
		p.free = append(p.free, v)
	}
}

func (p *Pool[T]) reportMetrics(wasHit bool, peak int) {
	if p.collectors == nil {
		return
	}
	if wasHit {
		p.collectors.PoolHits.WithLabelValues(p.name).Inc()
	} else {
		p.collectors.PoolMisses.WithLabelValues(p.name).Inc()
	}
	p.collectors.PoolPeak.WithLabelValues(p.name).Set(float64(peak))
}

// Stats returns a snapshot of the pool's hit/miss/peak/occupancy counters.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Hits:     p.hits,
		Misses:   p.misses,
		Peak:     p.peak,
		InUse:    p.inUse,
		Retained: len(p.free),
	}
}
