// Package errors provides standardized error types for kernel operations.
// This package defines KernelError so that callers can tell "no data" apart
// from a real zero or empty result, with operation context and error
// wrapping support.
package errors

import (
	"fmt"
)

// Kind classifies a kernel failure
type Kind int

const (
	// KindInvalidInput is a generic malformed argument
	KindInvalidInput Kind = iota
	// KindLengthMismatch is raised by binary kernels on unequal-length inputs
	KindLengthMismatch
	// KindEmptyInput is raised by statistics on a zero-length column
	KindEmptyInput
	// KindInvalidSampleSize is raised by sampling with a negative count
	KindInvalidSampleSize
	// KindIndexOutOfRange is raised when an index does not address the column
	KindIndexOutOfRange
	// KindInternal wraps unexpected failures such as recovered worker panics
	KindInternal
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindLengthMismatch:
		return "LengthMismatch"
	case KindEmptyInput:
		return "EmptyInput"
	case KindInvalidSampleSize:
		return "InvalidSampleSize"
	case KindIndexOutOfRange:
		return "IndexOutOfRange"
	case KindInternal:
		return "Internal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// KernelError represents standardized errors across all kernel operations
type KernelError struct {
	Op      string // Operation name (e.g., "Describe", "Add", "Sample")
	Kind    Kind   // Failure class
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *KernelError) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s operation failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *KernelError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a KernelError of the same kind. A target
// with an empty Op matches any operation, which is how the sentinels work.
func (e *KernelError) Is(target error) bool {
	ke, ok := target.(*KernelError)
	if !ok {
		return false
	}
	if e.Kind != ke.Kind {
		return false
	}
	return ke.Op == "" || ke.Op == e.Op
}

// NewLengthMismatchError creates an error for binary kernels given unequal inputs
func NewLengthMismatchError(op string, left, right int) *KernelError {
	return &KernelError{
		Op:      op,
		Kind:    KindLengthMismatch,
		Message: fmt.Sprintf("length mismatch: %d != %d", left, right),
	}
}

// NewEmptyInputError creates an error for statistics requested on a zero-length column
func NewEmptyInputError(op string) *KernelError {
	return &KernelError{
		Op:      op,
		Kind:    KindEmptyInput,
		Message: "operation not supported on empty column",
	}
}

// NewInvalidSampleSizeError creates an error for a negative sample count
func NewInvalidSampleSizeError(op string, k int) *KernelError {
	return &KernelError{
		Op:      op,
		Kind:    KindInvalidSampleSize,
		Message: fmt.Sprintf("sample size must be non-negative, got %d", k),
	}
}

// NewIndexOutOfRangeError creates an error for an index outside [0, n)
func NewIndexOutOfRangeError(op string, index, n int) *KernelError {
	return &KernelError{
		Op:      op,
		Kind:    KindIndexOutOfRange,
		Message: fmt.Sprintf("index %d out of bounds [0, %d)", index, n),
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *KernelError {
	return &KernelError{
		Op:      op,
		Kind:    KindInvalidInput,
		Message: message,
	}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *KernelError {
	return &KernelError{
		Op:      op,
		Kind:    KindInternal,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// Sentinels for errors.Is checks. They match any operation.
var (
	ErrLengthMismatch = &KernelError{
		Kind:    KindLengthMismatch,
		Message: "inputs must have the same length",
	}

	ErrEmptyInput = &KernelError{
		Kind:    KindEmptyInput,
		Message: "operation not supported on empty column",
	}

	ErrInvalidSampleSize = &KernelError{
		Kind:    KindInvalidSampleSize,
		Message: "sample size must be non-negative",
	}

	ErrIndexOutOfRange = &KernelError{
		Kind:    KindIndexOutOfRange,
		Message: "index out of bounds",
	}

	ErrInvalidInput = &KernelError{
		Kind:    KindInvalidInput,
		Message: "invalid input",
	}

	ErrInternal = &KernelError{
		Kind:    KindInternal,
		Message: "internal error occurred",
	}
)
