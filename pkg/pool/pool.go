// Package pool provides a typed wrapper around sync.Pool with reset hooks and
// usage statistics.
//
// Example usage:
//
//	records := pool.New(
//	    func() *[]string { s := make([]string, 0, 16); return &s },
//	    func(s *[]string) { *s = (*s)[:0] },
//	)
//	rec := records.Get()
//	defer records.Put(rec)
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool is a generic object pool with type safety. It wraps sync.Pool, resets
// objects on Put and counts allocations. The pool is safe for concurrent use.
//
// Pointer types are recommended for T so that Put does not allocate.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		gets      int64
	}
}

// New creates a pool. newFn is called when the pool is empty; reset, if not
// nil, is called on every object handed back with Put.
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return newFn()
	}
	return p
}

// Get retrieves an object from the pool, creating one if it is empty
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	atomic.AddInt64(&p.stats.gets, 1)
	return p.pool.Get().(T)
}

// Put resets obj and returns it to the pool
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns current pool statistics:
//   - allocated: objects created by the pool
//   - inUse: objects currently checked out
//   - hits: Get calls served by a recycled object
//   - misses: Get calls that had to allocate
func (p *Pool[T]) Stats() (allocated, inUse, hits, misses int64) {
	allocated = atomic.LoadInt64(&p.stats.allocated)
	gets := atomic.LoadInt64(&p.stats.gets)
	misses = allocated
	if misses > gets {
		misses = gets
	}
	return allocated, atomic.LoadInt64(&p.stats.inUse), gets - misses, misses
}
