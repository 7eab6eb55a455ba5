package colkern

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/colkern/internal/series"
)

// ColumnFromArrow copies a Float64, Float32, Int64 or Int32 arrow array into
// a column. Null slots become NaN.
func ColumnFromArrow(arr arrow.Array) ([]float64, error) {
	return series.Float64sFromArrow(arr)
}

// ColumnToArrow builds a Float64 array from col. When nanAsNull is set NaN
// values become nulls. A nil allocator uses the Go allocator. The caller must
// Release the array.
func ColumnToArrow(col []float64, mem memory.Allocator, nanAsNull bool) arrow.Array {
	return series.NewFloat64Array(col, mem, nanAsNull)
}

// IndicesToArrow builds an Int64 array from kernel indices. The caller must
// Release the array.
func IndicesToArrow(indices []int, mem memory.Allocator) arrow.Array {
	return series.NewIndexArray(indices, mem)
}

// MaskFromArrow copies a Boolean arrow array into a mask. Null slots are false.
func MaskFromArrow(arr arrow.Array) ([]bool, error) {
	return series.BoolsFromArrow(arr)
}

// MaskToArrow builds a Boolean array from a mask. The caller must Release the
// array.
func MaskToArrow(mask []bool, mem memory.Allocator) arrow.Array {
	return series.NewBooleanArray(mask, mem)
}
