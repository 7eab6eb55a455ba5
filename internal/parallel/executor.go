package parallel

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultThreshold is the column length from which work is split across workers
const DefaultThreshold = 4096

// Range is a contiguous half-open partition [Lo, Hi) of a column
type Range struct {
	Lo int
	Hi int
}

// Len returns the number of indices covered by the range
func (r Range) Len() int {
	return r.Hi - r.Lo
}

// Options configures an Executor
type Options struct {
	// Workers is the number of worker goroutines (0 = runtime.NumCPU()).
	Workers int
	// Threshold is the minimum column length to split; shorter columns run
	// as a single partition on the calling goroutine.
	Threshold int
	// ChunkSize fixes the partition size (0 = ceil(n / Workers)).
	ChunkSize int
	// Ordered concatenates gathered partials by partition index. When false,
	// partials are concatenated in completion order.
	Ordered bool
}

// Executor runs kernels as fork-join jobs over contiguous partitions
type Executor struct {
	pool      *WorkerPool
	threshold int
	chunkSize int
	ordered   bool
}

// NewExecutor creates an executor backed by its own worker pool
func NewExecutor(opts Options) *Executor {
	return &Executor{
		pool:      NewWorkerPool(opts.Workers),
		threshold: opts.Threshold,
		chunkSize: opts.ChunkSize,
		ordered:   opts.Ordered,
	}
}

// Sequential returns an executor that always runs on the calling goroutine
func Sequential() *Executor {
	return NewExecutor(Options{Workers: 1, Ordered: true})
}

// Workers returns the configured worker count
func (e *Executor) Workers() int {
	return e.pool.NumWorkers()
}

// Ordered reports whether gathered results keep partition order
func (e *Executor) Ordered() bool {
	return e.ordered
}

// Pool exposes the underlying worker pool for kernels with custom merge phases
func (e *Executor) Pool() *WorkerPool {
	return e.pool
}

// Close releases the worker pool
func (e *Executor) Close() {
	e.pool.Close()
}

// Partitions splits [0, n) into contiguous ranges
func (e *Executor) Partitions(n int) []Range {
	if n <= 0 {
		return nil
	}

	workers := e.Workers()
	if workers <= 1 || n < e.threshold || e.pool.Closed() {
		return []Range{{Lo: 0, Hi: n}}
	}

	size := e.chunkSize
	if size <= 0 {
		size = (n + workers - 1) / workers
	}

	parts := make([]Range, 0, (n+size-1)/size)
	for lo := 0; lo < n; lo += size {
		parts = append(parts, Range{Lo: lo, Hi: min(lo+size, n)})
	}
	return parts
}

// MapReduce computes one partial per partition and folds them with combine.
// combine must be associative; partials are folded in partition order.
func MapReduce[R any](e *Executor, n int, mapFn func(Range) R, combine func(R, R) R, zero R) R {
	parts := e.Partitions(n)
	acc := zero
	if len(parts) <= 1 {
		for _, p := range parts {
			acc = combine(acc, mapFn(p))
		}
		return acc
	}

	partials := runIndexed(e, parts, mapFn)
	for _, p := range partials {
		acc = combine(acc, p)
	}
	return acc
}

// Gather concatenates the slices produced for each partition. The result is
// always a fresh, non-nil slice.
func Gather[T any](e *Executor, n int, fn func(Range) []T) []T {
	parts := e.Partitions(n)
	if len(parts) == 0 {
		return []T{}
	}
	if len(parts) == 1 {
		out := fn(parts[0])
		if out == nil {
			out = []T{}
		}
		return out
	}

	var chunks [][]T
	if e.ordered {
		chunks = runIndexed(e, parts, fn)
	} else {
		chunks = runUnordered(e, parts, fn)
	}

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	out := make([]T, 0, total)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// For runs fn over every partition. fn must only write to the output region
// addressed by its range.
func (e *Executor) For(n int, fn func(Range)) {
	parts := e.Partitions(n)
	if len(parts) <= 1 {
		for _, p := range parts {
			fn(p)
		}
		return
	}

	guard := &panicGuard{}
	var g errgroup.Group
	g.SetLimit(e.Workers())
	for _, p := range parts {
		g.Go(func() error {
			defer guard.capture()
			fn(p)
			return nil
		})
	}
	_ = g.Wait()
	guard.rethrow()
}

func runIndexed[R any](e *Executor, parts []Range, fn func(Range) R) []R {
	guard := &panicGuard{}
	out := ProcessIndexed(e.pool, parts, func(_ int, r Range) R {
		defer guard.capture()
		return fn(r)
	})
	guard.rethrow()
	return out
}

func runUnordered[R any](e *Executor, parts []Range, fn func(Range) R) []R {
	guard := &panicGuard{}
	out := Process(e.pool, parts, func(r Range) R {
		defer guard.capture()
		return fn(r)
	})
	guard.rethrow()
	return out
}

// panicGuard moves the first worker panic onto the calling goroutine so the
// caller can recover it.
type panicGuard struct {
	once sync.Once
	hit  bool
	val  any
}

func (g *panicGuard) capture() {
	if r := recover(); r != nil {
		g.once.Do(func() {
			g.hit = true
			g.val = r
		})
	}
}

func (g *panicGuard) rethrow() {
	if g.hit {
		panic(g.val)
	}
}
