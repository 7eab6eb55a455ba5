package parallel_test

import (
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paveg/colkern/internal/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	pool := parallel.NewWorkerPool(4)
	defer pool.Close()
	assert.Equal(t, 4, pool.NumWorkers())

	// Non-positive counts default to the CPU count
	pool2 := parallel.NewWorkerPool(0)
	defer pool2.Close()
	assert.Positive(t, pool2.NumWorkers())

	pool3 := parallel.NewWorkerPool(-1)
	defer pool3.Close()
	assert.Positive(t, pool3.NumWorkers())
}

func TestProcessBasic(t *testing.T) {
	pool := parallel.NewWorkerPool(2)
	defer pool.Close()

	results := parallel.Process(pool, []int{1, 2, 3, 4, 5}, func(x int) int {
		return x * x
	})

	// Completion order is not guaranteed
	sort.Ints(results)
	assert.Equal(t, []int{1, 4, 9, 16, 25}, results)
}

func TestProcessEmpty(t *testing.T) {
	pool := parallel.NewWorkerPool(2)
	defer pool.Close()

	results := parallel.Process(pool, []int{}, func(x int) int {
		return x * 2
	})

	assert.Nil(t, results)
}

func TestProcessIndexed(t *testing.T) {
	pool := parallel.NewWorkerPool(2)
	defer pool.Close()

	input := []string{"a", "b", "c", "d"}
	results := parallel.ProcessIndexed(pool, input, func(index int, value string) string {
		return value + string(rune('0'+index))
	})

	assert.Equal(t, []string{"a0", "b1", "c2", "d3"}, results)
}

func TestProcessIndexedEmpty(t *testing.T) {
	pool := parallel.NewWorkerPool(2)
	defer pool.Close()

	results := parallel.ProcessIndexed(pool, []string{}, func(_ int, value string) string {
		return value
	})

	assert.Nil(t, results)
}

func TestProcessConcurrency(t *testing.T) {
	pool := parallel.NewWorkerPool(4)
	defer pool.Close()

	var concurrentCount int64
	var maxConcurrent int64

	input := make([]int, 20)
	for i := range input {
		input[i] = i
	}

	results := parallel.Process(pool, input, func(x int) int {
		current := atomic.AddInt64(&concurrentCount, 1)
		for {
			maxVal := atomic.LoadInt64(&maxConcurrent)
			if current <= maxVal || atomic.CompareAndSwapInt64(&maxConcurrent, maxVal, current) {
				break
			}
		}

		time.Sleep(10 * time.Millisecond)

		atomic.AddInt64(&concurrentCount, -1)
		return x * 2
	})

	assert.Len(t, results, 20)
	assert.Greater(t, maxConcurrent, int64(1), "Expected some concurrent execution")
	assert.LessOrEqual(t, maxConcurrent, int64(4))
}

func TestWorkerPoolClose(t *testing.T) {
	pool := parallel.NewWorkerPool(2)
	assert.False(t, pool.Closed())

	results := parallel.Process(pool, []int{1, 2, 3}, func(x int) int {
		return x
	})
	require.Len(t, results, 3)

	pool.Close()
	assert.True(t, pool.Closed())
	assert.NotPanics(t, func() {
		pool.Close()
	})
}
