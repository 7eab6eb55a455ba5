package colkern

import (
	"github.com/paveg/colkern/internal/kernel"
	"golang.org/x/exp/constraints"
)

// Null handling

// FindNullIndices returns the indices holding NaN
func (k *Kernel) FindNullIndices(col []float64) ([]int, error) {
	return call(k, kernel.OpFindNullIndices, len(col), noError(func() []int {
		return k.engine.FindNullIndices(col)
	}))
}

// DropNullValues returns the non-null values
func (k *Kernel) DropNullValues(col []float64) ([]float64, error) {
	return call(k, kernel.OpDropNullValues, len(col), noError(func() []float64 {
		return k.engine.DropNullValues(col)
	}))
}

// FillNullWithConstant returns a copy of col with every NaN replaced by v
func (k *Kernel) FillNullWithConstant(col []float64, v float64) ([]float64, error) {
	return call(k, kernel.OpFillNullWithConstant, len(col), noError(func() []float64 {
		return k.engine.FillNullWithConstant(col, v)
	}))
}

// IsNull returns a mask that is true where col holds NaN
func (k *Kernel) IsNull(col []float64) ([]bool, error) {
	return call(k, kernel.OpIsNull, len(col), noError(func() []bool {
		return k.engine.IsNull(col)
	}))
}

// CountNulls returns the number of NaN values
func (k *Kernel) CountNulls(col []float64) (int, error) {
	return call(k, kernel.OpCountNulls, len(col), noError(func() int {
		return k.engine.CountNulls(col)
	}))
}

// Statistics. Every statistic returns ErrEmptyInput for a zero-length column.

// Sum returns the sum of the non-null values; 0 when every value is null
func (k *Kernel) Sum(col []float64) (float64, error) {
	return call(k, kernel.OpSum, len(col), func() (float64, error) {
		return k.engine.Sum(col)
	})
}

// Mean returns the mean of the non-null values; NaN when every value is null
func (k *Kernel) Mean(col []float64) (float64, error) {
	return call(k, kernel.OpMean, len(col), func() (float64, error) {
		return k.engine.Mean(col)
	})
}

// Min returns the smallest non-null value; NaN when every value is null
func (k *Kernel) Min(col []float64) (float64, error) {
	return call(k, kernel.OpMin, len(col), func() (float64, error) {
		return k.engine.Min(col)
	})
}

// Max returns the largest non-null value; NaN when every value is null
func (k *Kernel) Max(col []float64) (float64, error) {
	return call(k, kernel.OpMax, len(col), func() (float64, error) {
		return k.engine.Max(col)
	})
}

// Describe returns count, mean, sample standard deviation, min and max of
// the non-null values
func (k *Kernel) Describe(col []float64) (Summary, error) {
	return call(k, kernel.OpDescribe, len(col), func() (Summary, error) {
		return k.engine.Describe(col)
	})
}

// Variance returns the population variance of the non-null values
func (k *Kernel) Variance(col []float64) (float64, error) {
	return call(k, kernel.OpVariance, len(col), func() (float64, error) {
		return k.engine.Variance(col)
	})
}

// Std returns the population standard deviation of the non-null values
func (k *Kernel) Std(col []float64) (float64, error) {
	return call(k, kernel.OpStd, len(col), func() (float64, error) {
		return k.engine.Std(col)
	})
}

// SampleVariance returns the sample (N-1) variance of the non-null values
func (k *Kernel) SampleVariance(col []float64) (float64, error) {
	return call(k, kernel.OpSampleVariance, len(col), func() (float64, error) {
		return k.engine.SampleVariance(col)
	})
}

// SampleStd returns the sample standard deviation; it equals Describe's Std
func (k *Kernel) SampleStd(col []float64) (float64, error) {
	return call(k, kernel.OpSampleStd, len(col), func() (float64, error) {
		return k.engine.SampleStd(col)
	})
}

// Sorting

// SortIndices returns the stable permutation ordering col ascending or
// descending, with NaN always last
func (k *Kernel) SortIndices(col []float64, descending bool) ([]int, error) {
	return call(k, kernel.OpSortIndices, len(col), noError(func() []int {
		return k.engine.SortIndices(col, descending)
	}))
}

// Argsort returns the ascending permutation of col
func (k *Kernel) Argsort(col []float64) ([]int, error) {
	return call(k, kernel.OpArgsort, len(col), noError(func() []int {
		return k.engine.Argsort(col)
	}))
}

// Grouping

// GroupBySum sums values per key. A NaN value makes its group's sum NaN.
func GroupBySum[K constraints.Integer](k *Kernel, values []float64, keys []K) (map[K]float64, error) {
	return call(k, kernel.OpGroupBySum, len(values), func() (map[K]float64, error) {
		return kernel.GroupBySum(k.engine, values, keys)
	})
}

// GroupByCount counts the rows of every key
func GroupByCount[K constraints.Integer](k *Kernel, keys []K) (map[K]int, error) {
	return call(k, kernel.OpGroupByCount, len(keys), noError(func() map[K]int {
		return kernel.GroupByCount(k.engine, keys)
	}))
}

// Joining

// MergeIndices joins left and right under tolerance equality |a-b| < ε.
// Values within ε that straddle a bucket boundary are only joined when
// Config.JoinProbeNeighbors is set. NaN and infinities never join.
func (k *Kernel) MergeIndices(left, right []float64) (Pairs, error) {
	return call(k, kernel.OpMergeIndices, len(left)+len(right), noError(func() Pairs {
		return k.engine.MergeIndices(left, right)
	}))
}

// Selection

// Where returns the indices at which mask is true
func (k *Kernel) Where(mask []bool) ([]int, error) {
	return call(k, kernel.OpWhere, len(mask), noError(func() []int {
		return k.engine.Where(mask)
	}))
}

// GreaterThan returns a mask that is true where col[i] > threshold
func (k *Kernel) GreaterThan(col []float64, threshold float64) ([]bool, error) {
	return call(k, kernel.OpGreaterThan, len(col), noError(func() []bool {
		return k.engine.GreaterThan(col, threshold)
	}))
}

// Take returns the values of col at indices
func (k *Kernel) Take(col []float64, indices []int) ([]float64, error) {
	return call(k, kernel.OpTake, len(indices), func() ([]float64, error) {
		return k.engine.Take(col, indices)
	})
}

// Sampling

// Sample draws n values without replacement using the kernel's sampler.
// n >= len(col) copies the column in its original order.
func (k *Kernel) Sample(col []float64, n int) ([]float64, error) {
	return k.SampleWith(col, n, k.sampler)
}

// SampleWith is Sample drawing from s
func (k *Kernel) SampleWith(col []float64, n int, s *Sampler) ([]float64, error) {
	return call(k, kernel.OpSample, len(col), func() ([]float64, error) {
		return k.engine.Sample(col, n, s)
	})
}

// Vector math

// Add returns a + b elementwise
func (k *Kernel) Add(a, b []float64) ([]float64, error) {
	return call(k, kernel.OpAdd, len(a), func() ([]float64, error) {
		return k.engine.Add(a, b)
	})
}

// Multiply returns a * b elementwise
func (k *Kernel) Multiply(a, b []float64) ([]float64, error) {
	return call(k, kernel.OpMultiply, len(a), func() ([]float64, error) {
		return k.engine.Multiply(a, b)
	})
}

// Scale returns col * multiplier
func (k *Kernel) Scale(col []float64, multiplier float64) ([]float64, error) {
	return call(k, kernel.OpScale, len(col), noError(func() []float64 {
		return k.engine.Scale(col, multiplier)
	}))
}

// DotProduct returns the sum of a[i]*b[i]
func (k *Kernel) DotProduct(a, b []float64) (float64, error) {
	return call(k, kernel.OpDotProduct, len(a), func() (float64, error) {
		return k.engine.DotProduct(a, b)
	})
}

// Norm returns the Euclidean norm of col
func (k *Kernel) Norm(col []float64) (float64, error) {
	return call(k, kernel.OpNorm, len(col), noError(func() float64 {
		return k.engine.Norm(col)
	}))
}

// Normalize returns the population z-score of every non-null value
func (k *Kernel) Normalize(col []float64) ([]float64, error) {
	return call(k, kernel.OpNormalize, len(col), noError(func() []float64 {
		return k.engine.Normalize(col)
	}))
}

// Map applies fn to every element. fn may be called concurrently; a panic in
// fn is returned as an Internal error.
func (k *Kernel) Map(col []float64, fn func(float64) float64) ([]float64, error) {
	return call(k, kernel.OpMap, len(col), noError(func() []float64 {
		return k.engine.Map(col, fn)
	}))
}
