package validation_test

import (
	"testing"

	kerrors "github.com/paveg/colkern/internal/errors"
	"github.com/paveg/colkern/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLengthValidator(t *testing.T) {
	t.Run("Equal lengths", func(t *testing.T) {
		validator := validation.NewLengthValidator(3, 3, "Add")
		require.NoError(t, validator.Validate())
	})

	t.Run("Different lengths", func(t *testing.T) {
		validator := validation.NewLengthValidator(3, 5, "Add")
		err := validator.Validate()
		require.Error(t, err)

		var kerr *kerrors.KernelError
		require.ErrorAs(t, err, &kerr)
		assert.Equal(t, "Add", kerr.Op)
		assert.Equal(t, kerrors.KindLengthMismatch, kerr.Kind)
		assert.Contains(t, kerr.Message, "3 != 5")
	})
}

func TestNonEmptyValidator(t *testing.T) {
	require.NoError(t, validation.NewNonEmptyValidator(1, "Mean").Validate())

	err := validation.NewNonEmptyValidator(0, "Mean").Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, kerrors.ErrEmptyInput)
}

func TestSampleSizeValidator(t *testing.T) {
	tests := []struct {
		name    string
		k       int
		wantErr bool
	}{
		{"zero", 0, false},
		{"positive", 10, false},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateSampleSize(tt.k, "Sample")
			if tt.wantErr {
				assert.ErrorIs(t, err, kerrors.ErrInvalidSampleSize)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIndexValidator(t *testing.T) {
	require.NoError(t, validation.ValidateIndices([]int{0, 2, 4}, 5, "Take"))
	require.NoError(t, validation.ValidateIndices(nil, 0, "Take"))

	err := validation.ValidateIndices([]int{0, 5}, 5, "Take")
	require.Error(t, err)
	assert.ErrorIs(t, err, kerrors.ErrIndexOutOfRange)

	err = validation.ValidateIndices([]int{-1}, 5, "Take")
	assert.ErrorIs(t, err, kerrors.ErrIndexOutOfRange)
}

func TestConvenienceFunctions(t *testing.T) {
	assert.NoError(t, validation.ValidateLength(2, 2, "Multiply"))
	assert.ErrorIs(t, validation.ValidateLength(2, 1, "Multiply"), kerrors.ErrLengthMismatch)
	assert.NoError(t, validation.ValidateNotEmpty(3, "Sum"))
	assert.ErrorIs(t, validation.ValidateNotEmpty(0, "Sum"), kerrors.ErrEmptyInput)
}
