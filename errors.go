package colkern

import (
	kerrors "github.com/paveg/colkern/internal/errors"
)

// KernelError is the error type returned by every kernel
type KernelError = kerrors.KernelError

// ErrorKind classifies a KernelError
type ErrorKind = kerrors.Kind

// Error kinds
const (
	KindInvalidInput      = kerrors.KindInvalidInput
	KindLengthMismatch    = kerrors.KindLengthMismatch
	KindEmptyInput        = kerrors.KindEmptyInput
	KindInvalidSampleSize = kerrors.KindInvalidSampleSize
	KindIndexOutOfRange   = kerrors.KindIndexOutOfRange
	KindInternal          = kerrors.KindInternal
)

// Sentinels for errors.Is. Each matches every KernelError of its kind.
var (
	ErrLengthMismatch    = kerrors.ErrLengthMismatch
	ErrEmptyInput        = kerrors.ErrEmptyInput
	ErrInvalidSampleSize = kerrors.ErrInvalidSampleSize
	ErrIndexOutOfRange   = kerrors.ErrIndexOutOfRange
	ErrInvalidInput      = kerrors.ErrInvalidInput
	ErrInternal          = kerrors.ErrInternal
)
