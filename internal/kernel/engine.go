// Package kernel implements the numeric column kernels: null handling,
// statistical reduction, sorting, grouped aggregation, tolerance joins,
// boolean selection, sampling and elementwise vector math.
//
// A column is a []float64 in which NaN marks a null value. Kernels never
// mutate their inputs and always return freshly allocated results. Work is
// split into contiguous partitions by a parallel.Executor; index-producing
// kernels return ascending indices when the executor runs in ordered mode and
// only guarantee the set of indices otherwise.
package kernel

import (
	"github.com/paveg/colkern/internal/parallel"
)

// Operation names used in errors, logs and metrics.
const (
	OpFindNullIndices      = "FindNullIndices"
	OpDropNullValues       = "DropNullValues"
	OpFillNullWithConstant = "FillNullWithConstant"
	OpIsNull               = "IsNull"
	OpCountNulls           = "CountNulls"
	OpSum                  = "Sum"
	OpMean                 = "Mean"
	OpMin                  = "Min"
	OpMax                  = "Max"
	OpDescribe             = "Describe"
	OpVariance             = "Variance"
	OpStd                  = "Std"
	OpSampleVariance       = "SampleVariance"
	OpSampleStd            = "SampleStd"
	OpSortIndices          = "SortIndices"
	OpArgsort              = "Argsort"
	OpGroupBySum           = "GroupBySum"
	OpGroupByCount         = "GroupByCount"
	OpMergeIndices         = "MergeIndices"
	OpWhere                = "Where"
	OpGreaterThan          = "GreaterThan"
	OpTake                 = "Take"
	OpSample               = "Sample"
	OpAdd                  = "Add"
	OpMultiply             = "Multiply"
	OpScale                = "Scale"
	OpDotProduct           = "DotProduct"
	OpNorm                 = "Norm"
	OpNormalize            = "Normalize"
	OpMap                  = "Map"
)

// Engine runs kernels on a shared executor
type Engine struct {
	exec           *parallel.Executor
	epsilon        float64
	probeNeighbors bool
}

// Option configures an Engine
type Option func(*Engine)

// WithEpsilon sets the tolerance used by MergeIndices
func WithEpsilon(eps float64) Option {
	return func(e *Engine) {
		if eps > 0 {
			e.epsilon = eps
		}
	}
}

// WithNeighborProbing makes MergeIndices probe the adjacent buckets too, so
// values within ε on opposite sides of a bucket boundary are joined.
func WithNeighborProbing(enabled bool) Option {
	return func(e *Engine) {
		e.probeNeighbors = enabled
	}
}

// NewEngine creates an engine. A nil executor means sequential execution.
func NewEngine(exec *parallel.Executor, opts ...Option) *Engine {
	if exec == nil {
		exec = parallel.Sequential()
	}

	e := &Engine{
		exec:    exec,
		epsilon: DefaultEpsilon,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Executor returns the executor kernels run on
func (e *Engine) Executor() *parallel.Executor {
	return e.exec
}

// Epsilon returns the join tolerance
func (e *Engine) Epsilon() float64 {
	return e.epsilon
}
