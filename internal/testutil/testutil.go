// Package testutil provides column generators and assertions shared by the
// kernel, series and facade tests.
package testutil

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// defaultRowCount is the default length of generated columns.
	defaultRowCount = 8
	defaultSeed     = 42
)

// TestMemoryContext provides a checked arrow allocator.
type TestMemoryContext struct {
	Allocator *memory.CheckedAllocator
	tb        testing.TB
}

// Release asserts that every arrow buffer allocated through the context was
// released.
func (tmc *TestMemoryContext) Release() {
	tmc.Allocator.AssertSize(tmc.tb, 0)
}

// SetupMemoryTest creates a checked allocator for arrow interop tests.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	return &TestMemoryContext{
		Allocator: memory.NewCheckedAllocator(memory.NewGoAllocator()),
		tb:        tb,
	}
}

// ColumnOption configures column generation.
type ColumnOption func(*columnConfig)

type columnConfig struct {
	rowCount  int
	nullEvery int
	seed      uint64
	distinct  int
}

// WithNulls makes every n-th value (starting at index 1) NaN.
func WithNulls(every int) ColumnOption {
	return func(cfg *columnConfig) {
		cfg.nullEvery = every
	}
}

// WithRowCount sets the column length.
func WithRowCount(count int) ColumnOption {
	return func(cfg *columnConfig) {
		cfg.rowCount = count
	}
}

// WithSeed sets the generator seed.
func WithSeed(seed uint64) ColumnOption {
	return func(cfg *columnConfig) {
		cfg.seed = seed
	}
}

// WithDistinct limits values to n distinct integers, producing duplicates.
func WithDistinct(n int) ColumnOption {
	return func(cfg *columnConfig) {
		cfg.distinct = n
	}
}

// Column generates a deterministic pseudo-random column.
func Column(opts ...ColumnOption) []float64 {
	cfg := &columnConfig{
		rowCount: defaultRowCount,
		seed:     defaultSeed,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	rng := rand.New(rand.NewPCG(cfg.seed, cfg.seed+1))
	col := make([]float64, cfg.rowCount)
	for i := range col {
		switch {
		case cfg.nullEvery > 0 && i%cfg.nullEvery == 1%cfg.nullEvery:
			col[i] = math.NaN()
		case cfg.distinct > 0:
			col[i] = float64(rng.IntN(cfg.distinct))
		default:
			col[i] = rng.NormFloat64()*100 + 50
		}
	}
	return col
}

// Keys generates n group keys in [0, groups).
func Keys(n, groups int, seed uint64) []int64 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	keys := make([]int64, n)
	for i := range keys {
		keys[i] = int64(rng.IntN(groups))
	}
	return keys
}

// AssertColumnsEqual compares two columns value by value, treating NaN as
// equal to NaN. delta bounds the absolute difference of non-null values.
func AssertColumnsEqual(t *testing.T, expected, actual []float64, delta float64) {
	t.Helper()

	require.Len(t, actual, len(expected), "column lengths should match")
	if diff := cmp.Diff(expected, actual, cmpopts.EquateNaNs(), cmpopts.EquateApprox(0, delta)); diff != "" {
		t.Errorf("columns differ (-want +got):\n%s", diff)
	}
}

// AssertSameIndexSet verifies that two index lists hold the same indices,
// ignoring order.
func AssertSameIndexSet(t *testing.T, expected, actual []int) {
	t.Helper()

	e := slices.Clone(expected)
	a := slices.Clone(actual)
	slices.Sort(e)
	slices.Sort(a)
	assert.Equal(t, e, a, "index sets should match")
}

// AssertPermutation verifies that idx is a permutation of [0, n).
func AssertPermutation(t *testing.T, idx []int, n int) {
	t.Helper()

	require.Len(t, idx, n, "permutation length should match")
	seen := make([]bool, n)
	for _, i := range idx {
		require.True(t, i >= 0 && i < n, "index %d out of range", i)
		require.False(t, seen[i], "index %d repeated", i)
		seen[i] = true
	}
}
