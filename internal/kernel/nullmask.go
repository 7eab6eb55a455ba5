package kernel

import (
	"math"

	"github.com/paveg/colkern/internal/parallel"
)

// FindNullIndices returns the indices holding NaN
func (e *Engine) FindNullIndices(col []float64) []int {
	return parallel.Gather(e.exec, len(col), func(r parallel.Range) []int {
		var out []int
		for i := r.Lo; i < r.Hi; i++ {
			if math.IsNaN(col[i]) {
				out = append(out, i)
			}
		}
		return out
	})
}

// DropNullValues returns the non-null values
func (e *Engine) DropNullValues(col []float64) []float64 {
	return parallel.Gather(e.exec, len(col), func(r parallel.Range) []float64 {
		out := make([]float64, 0, r.Len())
		for _, v := range col[r.Lo:r.Hi] {
			if !math.IsNaN(v) {
				out = append(out, v)
			}
		}
		return out
	})
}

// FillNullWithConstant returns a copy of col with every NaN replaced by v
func (e *Engine) FillNullWithConstant(col []float64, v float64) []float64 {
	out := make([]float64, len(col))
	e.exec.For(len(col), func(r parallel.Range) {
		for i := r.Lo; i < r.Hi; i++ {
			if math.IsNaN(col[i]) {
				out[i] = v
			} else {
				out[i] = col[i]
			}
		}
	})
	return out
}

// IsNull returns a mask that is true where col holds NaN
func (e *Engine) IsNull(col []float64) []bool {
	out := make([]bool, len(col))
	e.exec.For(len(col), func(r parallel.Range) {
		for i := r.Lo; i < r.Hi; i++ {
			out[i] = math.IsNaN(col[i])
		}
	})
	return out
}

// CountNulls returns the number of NaN values
func (e *Engine) CountNulls(col []float64) int {
	return parallel.MapReduce(e.exec, len(col), func(r parallel.Range) int {
		n := 0
		for _, v := range col[r.Lo:r.Hi] {
			if math.IsNaN(v) {
				n++
			}
		}
		return n
	}, func(a, b int) int { return a + b }, 0)
}
