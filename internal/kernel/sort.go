package kernel

import (
	"cmp"
	"math"
	"slices"

	"github.com/paveg/colkern/internal/parallel"
)

// compareAscending orders values ascending with NaN after every number
func compareAscending(a, b float64) int {
	if c, ok := compareNaN(a, b); ok {
		return c
	}
	return cmp.Compare(a, b)
}

// compareDescending orders values descending with NaN after every number
func compareDescending(a, b float64) int {
	if c, ok := compareNaN(a, b); ok {
		return c
	}
	return cmp.Compare(b, a)
}

func compareNaN(a, b float64) (int, bool) {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0, true
	case an:
		return 1, true
	case bn:
		return -1, true
	}
	return 0, false
}

// SortIndices returns the permutation of [0, N) that orders col ascending, or
// descending when requested. NaN entries are always placed last, and equal
// values keep their original relative order, so the result does not depend on
// how the column was partitioned.
//
// Because ties keep input order in both directions and NaN is last in both,
// the descending permutation is the reverse of the ascending one only when
// the non-null values are distinct: [2, 1, 2, 1] sorts ascending to
// [1, 3, 0, 2] and descending to [0, 2, 1, 3].
func (e *Engine) SortIndices(col []float64, descending bool) []int {
	compare := compareAscending
	if descending {
		compare = compareDescending
	}
	byValue := func(i, j int) int {
		return compare(col[i], col[j])
	}

	sortRun := func(r parallel.Range) []int {
		idx := make([]int, r.Len())
		for i := range idx {
			idx[i] = r.Lo + i
		}
		slices.SortStableFunc(idx, byValue)
		return idx
	}

	parts := e.exec.Partitions(len(col))
	switch len(parts) {
	case 0:
		return []int{}
	case 1:
		return sortRun(parts[0])
	}

	pool := e.exec.Pool()
	runs := parallel.ProcessIndexed(pool, parts, func(_ int, r parallel.Range) []int {
		return sortRun(r)
	})

	for len(runs) > 1 {
		pairs := make([]int, len(runs)/2)
		merged := parallel.ProcessIndexed(pool, pairs, func(i int, _ int) []int {
			return mergeRuns(runs[2*i], runs[2*i+1], byValue)
		})
		if len(runs)%2 == 1 {
			merged = append(merged, runs[len(runs)-1])
		}
		runs = merged
	}
	return runs[0]
}

// Argsort returns the ascending permutation of col
func (e *Engine) Argsort(col []float64) []int {
	return e.SortIndices(col, false)
}

// mergeRuns merges two sorted runs, taking from left on ties so that runs
// covering earlier indices stay first.
func mergeRuns(left, right []int, compare func(i, j int) int) []int {
	out := make([]int, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		if compare(right[j], left[i]) < 0 {
			out = append(out, right[j])
			j++
		} else {
			out = append(out, left[i])
			i++
		}
	}
	out = append(out, left[i:]...)
	return append(out, right[j:]...)
}
