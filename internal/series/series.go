// Package series converts between Apache Arrow arrays and the raw buffers
// the kernels operate on. Arrow nulls become NaN on the way in; NaN can be
// turned back into nulls on the way out.
package series

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	kerrors "github.com/paveg/colkern/internal/errors"
)

const opFromArrow = "FromArrow"

// Float64sFromArrow copies a numeric arrow array into a column. Float64,
// Float32, Int64 and Int32 arrays are accepted; null slots become NaN.
func Float64sFromArrow(arr arrow.Array) ([]float64, error) {
	if arr == nil {
		return nil, kerrors.NewInvalidInputError(opFromArrow, "array is nil")
	}

	out := make([]float64, arr.Len())

	switch a := arr.(type) {
	case *array.Float64:
		copy(out, a.Float64Values())
	case *array.Float32:
		for i, v := range a.Float32Values() {
			out[i] = float64(v)
		}
	case *array.Int64:
		for i, v := range a.Int64Values() {
			out[i] = float64(v)
		}
	case *array.Int32:
		for i, v := range a.Int32Values() {
			out[i] = float64(v)
		}
	default:
		return nil, kerrors.NewInvalidInputError(opFromArrow,
			fmt.Sprintf("unsupported array type: %s", arr.DataType()))
	}

	if arr.NullN() > 0 {
		for i := range out {
			if arr.IsNull(i) {
				out[i] = math.NaN()
			}
		}
	}
	return out, nil
}

// BoolsFromArrow copies a boolean arrow array into a mask. Null slots are false.
func BoolsFromArrow(arr arrow.Array) ([]bool, error) {
	a, ok := arr.(*array.Boolean)
	if !ok {
		if arr == nil {
			return nil, kerrors.NewInvalidInputError(opFromArrow, "array is nil")
		}
		return nil, kerrors.NewInvalidInputError(opFromArrow,
			fmt.Sprintf("expected boolean array, got %s", arr.DataType()))
	}

	out := make([]bool, a.Len())
	for i := range out {
		out[i] = a.IsValid(i) && a.Value(i)
	}
	return out, nil
}

// NewFloat64Array builds a Float64 array from a column. When nanAsNull is
// set, NaN values are appended as nulls. The caller must Release the array.
func NewFloat64Array(values []float64, mem memory.Allocator, nanAsNull bool) *array.Float64 {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	builder := array.NewFloat64Builder(mem)
	defer builder.Release()

	if !nanAsNull {
		builder.AppendValues(values, nil)
		return builder.NewFloat64Array()
	}

	valid := make([]bool, len(values))
	for i, v := range values {
		valid[i] = !math.IsNaN(v)
	}
	builder.AppendValues(values, valid)
	return builder.NewFloat64Array()
}

// NewIndexArray builds an Int64 array from kernel indices. The caller must
// Release the array.
func NewIndexArray(indices []int, mem memory.Allocator) *array.Int64 {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	builder := array.NewInt64Builder(mem)
	defer builder.Release()

	builder.Reserve(len(indices))
	for _, i := range indices {
		builder.UnsafeAppend(int64(i))
	}
	return builder.NewInt64Array()
}

// NewBooleanArray builds a Boolean array from a mask. The caller must Release
// the array.
func NewBooleanArray(mask []bool, mem memory.Allocator) *array.Boolean {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	builder := array.NewBooleanBuilder(mem)
	defer builder.Release()

	builder.AppendValues(mask, nil)
	return builder.NewBooleanArray()
}
