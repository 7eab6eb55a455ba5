package kernel

import (
	"math"

	"github.com/paveg/colkern/internal/parallel"
	"github.com/paveg/colkern/internal/validation"
)

// Summary is the result of Describe. Std is the sample standard deviation.
type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
}

// Slice returns the summary as [count, mean, std, min, max]
func (s Summary) Slice() []float64 {
	return []float64{float64(s.Count), s.Mean, s.Std, s.Min, s.Max}
}

// moments is a partial reduction over the non-null values of a partition
type moments struct {
	sum   float64
	count int
	min   float64
	max   float64
}

func emptyMoments() moments {
	return moments{min: math.Inf(1), max: math.Inf(-1)}
}

func combineMoments(a, b moments) moments {
	out := moments{
		sum:   a.sum + b.sum,
		count: a.count + b.count,
		min:   a.min,
		max:   a.max,
	}
	if b.min < out.min {
		out.min = b.min
	}
	if b.max > out.max {
		out.max = b.max
	}
	return out
}

func (e *Engine) moments(col []float64) moments {
	return parallel.MapReduce(e.exec, len(col), func(r parallel.Range) moments {
		m := emptyMoments()
		for _, v := range col[r.Lo:r.Hi] {
			if math.IsNaN(v) {
				continue
			}
			m.sum += v
			m.count++
			if v < m.min {
				m.min = v
			}
			if v > m.max {
				m.max = v
			}
		}
		return m
	}, combineMoments, emptyMoments())
}

func (m moments) mean() float64 {
	if m.count == 0 {
		return math.NaN()
	}
	return m.sum / float64(m.count)
}

// squaredDeviations sums (v - mean)^2 over the non-null values
func (e *Engine) squaredDeviations(col []float64, mean float64) float64 {
	return parallel.MapReduce(e.exec, len(col), func(r parallel.Range) float64 {
		ss := 0.0
		for _, v := range col[r.Lo:r.Hi] {
			if math.IsNaN(v) {
				continue
			}
			d := v - mean
			ss += d * d
		}
		return ss
	}, func(a, b float64) float64 { return a + b }, 0)
}

// Sum returns the sum of the non-null values. An all-null column sums to 0.
func (e *Engine) Sum(col []float64) (float64, error) {
	if err := validation.ValidateNotEmpty(len(col), OpSum); err != nil {
		return 0, err
	}
	return e.moments(col).sum, nil
}

// Mean returns the mean of the non-null values, NaN when there are none
func (e *Engine) Mean(col []float64) (float64, error) {
	if err := validation.ValidateNotEmpty(len(col), OpMean); err != nil {
		return 0, err
	}
	return e.moments(col).mean(), nil
}

// Min returns the smallest non-null value, NaN when there are none
func (e *Engine) Min(col []float64) (float64, error) {
	if err := validation.ValidateNotEmpty(len(col), OpMin); err != nil {
		return 0, err
	}
	m := e.moments(col)
	if m.count == 0 {
		return math.NaN(), nil
	}
	return m.min, nil
}

// Max returns the largest non-null value, NaN when there are none
func (e *Engine) Max(col []float64) (float64, error) {
	if err := validation.ValidateNotEmpty(len(col), OpMax); err != nil {
		return 0, err
	}
	m := e.moments(col)
	if m.count == 0 {
		return math.NaN(), nil
	}
	return m.max, nil
}

// Describe returns count, mean, sample standard deviation, min and max of the
// non-null values. Std is 0 when fewer than two values are present; mean, min
// and max are NaN when there are none.
func (e *Engine) Describe(col []float64) (Summary, error) {
	if err := validation.ValidateNotEmpty(len(col), OpDescribe); err != nil {
		return Summary{}, err
	}

	m := e.moments(col)
	if m.count == 0 {
		return Summary{Mean: math.NaN(), Min: math.NaN(), Max: math.NaN()}, nil
	}

	mean := m.mean()
	std := 0.0
	if m.count > 1 {
		std = math.Sqrt(e.squaredDeviations(col, mean) / float64(m.count-1))
	}

	return Summary{
		Count: m.count,
		Mean:  mean,
		Std:   std,
		Min:   m.min,
		Max:   m.max,
	}, nil
}

// Variance returns the population variance of the non-null values: the sum
// of squared deviations divided by the count, not count-1. This differs from
// the estimator behind Describe and SampleVariance.
func (e *Engine) Variance(col []float64) (float64, error) {
	if err := validation.ValidateNotEmpty(len(col), OpVariance); err != nil {
		return 0, err
	}
	return e.populationVariance(col), nil
}

// Std returns sqrt(Variance)
func (e *Engine) Std(col []float64) (float64, error) {
	if err := validation.ValidateNotEmpty(len(col), OpStd); err != nil {
		return 0, err
	}
	return math.Sqrt(e.populationVariance(col)), nil
}

// SampleVariance returns the sum of squared deviations divided by count-1.
// It is 0 for a single value and NaN when there are no values.
func (e *Engine) SampleVariance(col []float64) (float64, error) {
	if err := validation.ValidateNotEmpty(len(col), OpSampleVariance); err != nil {
		return 0, err
	}
	return e.sampleVariance(col), nil
}

// SampleStd returns sqrt(SampleVariance); it equals Describe(col).Std
// whenever the column has at least one value.
func (e *Engine) SampleStd(col []float64) (float64, error) {
	if err := validation.ValidateNotEmpty(len(col), OpSampleStd); err != nil {
		return 0, err
	}
	return math.Sqrt(e.sampleVariance(col)), nil
}

func (e *Engine) populationVariance(col []float64) float64 {
	m := e.moments(col)
	if m.count == 0 {
		return math.NaN()
	}
	return e.squaredDeviations(col, m.mean()) / float64(m.count)
}

func (e *Engine) sampleVariance(col []float64) float64 {
	m := e.moments(col)
	switch m.count {
	case 0:
		return math.NaN()
	case 1:
		return 0
	}
	return e.squaredDeviations(col, m.mean()) / float64(m.count-1)
}
