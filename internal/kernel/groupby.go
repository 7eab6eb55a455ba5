package kernel

import (
	"github.com/paveg/colkern/internal/parallel"
	"github.com/paveg/colkern/internal/validation"
	"golang.org/x/exp/constraints"
)

// GroupBySum sums values[i] per keys[i]. Nulls are not filtered: a NaN value
// makes its group's sum NaN.
func GroupBySum[K constraints.Integer](e *Engine, values []float64, keys []K) (map[K]float64, error) {
	if err := validation.ValidateLength(len(values), len(keys), OpGroupBySum); err != nil {
		return nil, err
	}

	sums := parallel.MapReduce(e.exec, len(values), func(r parallel.Range) map[K]float64 {
		partial := make(map[K]float64)
		for i := r.Lo; i < r.Hi; i++ {
			partial[keys[i]] += values[i]
		}
		return partial
	}, mergeGroups[K, float64], nil)

	if sums == nil {
		sums = make(map[K]float64)
	}
	return sums, nil
}

// GroupByCount counts the rows of every key
func GroupByCount[K constraints.Integer](e *Engine, keys []K) map[K]int {
	counts := parallel.MapReduce(e.exec, len(keys), func(r parallel.Range) map[K]int {
		partial := make(map[K]int)
		for _, k := range keys[r.Lo:r.Hi] {
			partial[k]++
		}
		return partial
	}, mergeGroups[K, int], nil)

	if counts == nil {
		counts = make(map[K]int)
	}
	return counts
}

// mergeGroups adds the smaller partial into the larger one. Partials are
// owned by the reduction, so reusing them is safe.
func mergeGroups[K comparable, V int | float64](acc, partial map[K]V) map[K]V {
	if acc == nil {
		return partial
	}
	if len(partial) > len(acc) {
		acc, partial = partial, acc
	}
	for k, v := range partial {
		acc[k] += v
	}
	return acc
}
