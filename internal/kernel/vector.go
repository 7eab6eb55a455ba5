package kernel

import (
	"math"

	"github.com/paveg/colkern/internal/parallel"
	"github.com/paveg/colkern/internal/validation"
	"gonum.org/v1/gonum/floats"
)

// Add returns a + b elementwise
func (e *Engine) Add(a, b []float64) ([]float64, error) {
	if err := validation.ValidateLength(len(a), len(b), OpAdd); err != nil {
		return nil, err
	}

	out := make([]float64, len(a))
	e.exec.For(len(a), func(r parallel.Range) {
		floats.AddTo(out[r.Lo:r.Hi], a[r.Lo:r.Hi], b[r.Lo:r.Hi])
	})
	return out, nil
}

// Multiply returns a * b elementwise
func (e *Engine) Multiply(a, b []float64) ([]float64, error) {
	if err := validation.ValidateLength(len(a), len(b), OpMultiply); err != nil {
		return nil, err
	}

	out := make([]float64, len(a))
	e.exec.For(len(a), func(r parallel.Range) {
		floats.MulTo(out[r.Lo:r.Hi], a[r.Lo:r.Hi], b[r.Lo:r.Hi])
	})
	return out, nil
}

// Scale returns col * multiplier
func (e *Engine) Scale(col []float64, multiplier float64) []float64 {
	out := make([]float64, len(col))
	e.exec.For(len(col), func(r parallel.Range) {
		floats.ScaleTo(out[r.Lo:r.Hi], multiplier, col[r.Lo:r.Hi])
	})
	return out
}

// Map returns fn applied to every element. fn may run concurrently.
func (e *Engine) Map(col []float64, fn func(float64) float64) []float64 {
	out := make([]float64, len(col))
	e.exec.For(len(col), func(r parallel.Range) {
		for i := r.Lo; i < r.Hi; i++ {
			out[i] = fn(col[i])
		}
	})
	return out
}

// DotProduct returns the sum of a[i]*b[i]. NaN propagates.
func (e *Engine) DotProduct(a, b []float64) (float64, error) {
	if err := validation.ValidateLength(len(a), len(b), OpDotProduct); err != nil {
		return 0, err
	}
	return e.dot(a, b), nil
}

// Norm returns the Euclidean norm of col. NaN propagates; an empty column has
// norm 0. Partition norms are scaled, so values whose squares overflow still
// give a finite norm.
func (e *Engine) Norm(col []float64) float64 {
	return parallel.MapReduce(e.exec, len(col), func(r parallel.Range) float64 {
		return floats.Norm(col[r.Lo:r.Hi], 2)
	}, combineNorms, 0)
}

func combineNorms(x, y float64) float64 {
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.NaN()
	}
	return math.Hypot(x, y)
}

func (e *Engine) dot(a, b []float64) float64 {
	return parallel.MapReduce(e.exec, len(a), func(r parallel.Range) float64 {
		return floats.Dot(a[r.Lo:r.Hi], b[r.Lo:r.Hi])
	}, func(x, y float64) float64 { return x + y }, 0)
}

// Normalize returns the z-score of every value using the population mean and
// standard deviation of the non-null values. Nulls stay NaN, including when the
// standard deviation is 0: then every non-null output is 0 and null slots are
// still NaN, so Normalize([1, NaN, 1]) is [0, NaN, 0], not all zeros.
func (e *Engine) Normalize(col []float64) []float64 {
	out := make([]float64, len(col))
	if len(col) == 0 {
		return out
	}

	m := e.moments(col)
	if m.count == 0 {
		e.exec.For(len(col), func(r parallel.Range) {
			for i := r.Lo; i < r.Hi; i++ {
				out[i] = math.NaN()
			}
		})
		return out
	}

	mean := m.mean()
	std := math.Sqrt(e.squaredDeviations(col, mean) / float64(m.count))

	e.exec.For(len(col), func(r parallel.Range) {
		for i := r.Lo; i < r.Hi; i++ {
			switch v := col[i]; {
			case math.IsNaN(v):
				out[i] = v
			case std == 0:
				out[i] = 0
			default:
				out[i] = (v - mean) / std
			}
		}
	})
	return out
}
