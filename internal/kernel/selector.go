package kernel

import (
	"github.com/paveg/colkern/internal/parallel"
	"github.com/paveg/colkern/internal/validation"
)

// Where returns the indices at which mask is true
func (e *Engine) Where(mask []bool) []int {
	return parallel.Gather(e.exec, len(mask), func(r parallel.Range) []int {
		var out []int
		for i := r.Lo; i < r.Hi; i++ {
			if mask[i] {
				out = append(out, i)
			}
		}
		return out
	})
}

// GreaterThan returns a mask that is true where col[i] > threshold.
// NaN compares false.
func (e *Engine) GreaterThan(col []float64, threshold float64) []bool {
	out := make([]bool, len(col))
	e.exec.For(len(col), func(r parallel.Range) {
		for i := r.Lo; i < r.Hi; i++ {
			out[i] = col[i] > threshold
		}
	})
	return out
}

// Take returns col[indices[0]], col[indices[1]], ...
func (e *Engine) Take(col []float64, indices []int) ([]float64, error) {
	if err := validation.ValidateIndices(indices, len(col), OpTake); err != nil {
		return nil, err
	}

	out := make([]float64, len(indices))
	e.exec.For(len(indices), func(r parallel.Range) {
		for i := r.Lo; i < r.Hi; i++ {
			out[i] = col[indices[i]]
		}
	})
	return out, nil
}
