// Package parallel provides the fork-join execution strategy shared by every
// column kernel.
//
// A column of length N is split into contiguous index partitions, one worker
// goroutine computes a partial result per partition, and the partials are
// merged once every worker has finished. Calls are synchronous: nothing
// returns before all of its workers are done.
//
// Key features:
//   - Contiguous partitioning with a configurable threshold and chunk size
//   - Fan-out/fan-in worker pool with ordered and completion-order variants
//   - Map-reduce with an associative combine step
//   - Gather (concatenate per-partition slices) in deterministic or relaxed order
//   - For over disjoint output regions
//
// Small inputs (below the threshold) run on the calling goroutine.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// WorkerPool manages a pool of goroutines for partition processing
type WorkerPool struct {
	numWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		numWorkers: numWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// NumWorkers returns the maximum number of goroutines a single call fans out to
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// Closed reports whether Close has been called
func (wp *WorkerPool) Closed() bool {
	select {
	case <-wp.ctx.Done():
		return true
	default:
		return false
	}
}

// Process executes work items in parallel and returns results in completion order
func Process[T, R any](
	wp *WorkerPool,
	items []T,
	worker func(T) R,
) []R {
	if len(items) == 0 {
		return nil
	}

	itemCh := make(chan T, len(items))
	resultCh := make(chan R, len(items))

	var wg sync.WaitGroup
	for i := 0; i < wp.spawnCount(len(items)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemCh {
				resultCh <- worker(item)
			}
		}()
	}

	for _, item := range items {
		itemCh <- item
	}
	close(itemCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]R, 0, len(items))
	for result := range resultCh {
		results = append(results, result)
	}

	return results
}

// ProcessIndexed executes work items in parallel while preserving order
func ProcessIndexed[T, R any](
	wp *WorkerPool,
	items []T,
	worker func(int, T) R,
) []R {
	if len(items) == 0 {
		return nil
	}

	itemCh := make(chan indexedItem[T], len(items))

	// Each worker writes its own slot, so no merge lock is needed.
	results := make([]R, len(items))

	var wg sync.WaitGroup
	for i := 0; i < wp.spawnCount(len(items)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemCh {
				results[item.index] = worker(item.index, item.value)
			}
		}()
	}

	for i, item := range items {
		itemCh <- indexedItem[T]{index: i, value: item}
	}
	close(itemCh)

	wg.Wait()
	return results
}

// Close shuts down the worker pool. Executors fall back to sequential
// execution once their pool is closed.
func (wp *WorkerPool) Close() {
	wp.cancel()
}

func (wp *WorkerPool) spawnCount(items int) int {
	if items < wp.numWorkers {
		return items
	}
	return wp.numWorkers
}

// indexedItem holds an item with its index
type indexedItem[T any] struct {
	index int
	value T
}
