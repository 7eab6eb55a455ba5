// Package validation provides input validation utilities for kernel operations.
// Validators check buffer shapes and scalar parameters before a kernel
// partitions its input, and report failures as KernelError values.
package validation

import (
	"github.com/paveg/colkern/internal/errors"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// LengthValidator validates that two buffers have the same length
type LengthValidator struct {
	left  int
	right int
	op    string
}

// NewLengthValidator creates a validator for length consistency
func NewLengthValidator(left, right int, op string) *LengthValidator {
	return &LengthValidator{
		left:  left,
		right: right,
		op:    op,
	}
}

// Validate checks if lengths match
func (v *LengthValidator) Validate() error {
	if v.left != v.right {
		return errors.NewLengthMismatchError(v.op, v.left, v.right)
	}
	return nil
}

// NonEmptyValidator validates operations that need at least one element
type NonEmptyValidator struct {
	n  int
	op string
}

// NewNonEmptyValidator creates a validator for empty column checks
func NewNonEmptyValidator(n int, op string) *NonEmptyValidator {
	return &NonEmptyValidator{
		n:  n,
		op: op,
	}
}

// Validate checks that the column is not empty
func (v *NonEmptyValidator) Validate() error {
	if v.n == 0 {
		return errors.NewEmptyInputError(v.op)
	}
	return nil
}

// SampleSizeValidator validates a requested sample count
type SampleSizeValidator struct {
	k  int
	op string
}

// NewSampleSizeValidator creates a validator for sample sizes
func NewSampleSizeValidator(k int, op string) *SampleSizeValidator {
	return &SampleSizeValidator{
		k:  k,
		op: op,
	}
}

// Validate checks that the sample size is non-negative
func (v *SampleSizeValidator) Validate() error {
	if v.k < 0 {
		return errors.NewInvalidSampleSizeError(v.op, v.k)
	}
	return nil
}

// IndexValidator validates a list of indices against a column length
type IndexValidator struct {
	indices []int
	n       int
	op      string
}

// NewIndexValidator creates a validator for index lists
func NewIndexValidator(indices []int, n int, op string) *IndexValidator {
	return &IndexValidator{
		indices: indices,
		n:       n,
		op:      op,
	}
}

// Validate checks that every index is within bounds
func (v *IndexValidator) Validate() error {
	for _, idx := range v.indices {
		if idx < 0 || idx >= v.n {
			return errors.NewIndexOutOfRangeError(v.op, idx, v.n)
		}
	}
	return nil
}

// Convenience validation functions

// ValidateLength is a convenience function for length validation
func ValidateLength(left, right int, op string) error {
	return NewLengthValidator(left, right, op).Validate()
}

// ValidateNotEmpty is a convenience function for empty column validation
func ValidateNotEmpty(n int, op string) error {
	return NewNonEmptyValidator(n, op).Validate()
}

// ValidateSampleSize is a convenience function for sample size validation
func ValidateSampleSize(k int, op string) error {
	return NewSampleSizeValidator(k, op).Validate()
}

// ValidateIndices is a convenience function for index list validation
func ValidateIndices(indices []int, n int, op string) error {
	return NewIndexValidator(indices, n, op).Validate()
}
