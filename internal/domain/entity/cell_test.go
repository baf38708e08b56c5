package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateLabels(t *testing.T) {
	require.NoError(t, ValidateLabels([]string{"WBC", "RBC", "Platelets"}))
	require.NoError(t, ValidateLabels([]string{"wbc", " rbc", "platelets"}))

	err := ValidateLabels([]string{"RBC", "WBC", "Platelets"})
	require.ErrorIs(t, err, ErrLabelMismatch)

	err = ValidateLabels([]string{"WBC", "RBC"})
	require.ErrorIs(t, err, ErrLabelMismatch)

	err = ValidateLabels([]string{"WBC", "RBC", "Neutrophil"})
	require.ErrorIs(t, err, ErrLabelMismatch)
}

func TestClassByIndex(t *testing.T) {
	c, err := ClassByIndex(2)
	require.NoError(t, err)
	require.Equal(t, ClassPlatelets, c)

	_, err = ClassByIndex(3)
	require.ErrorIs(t, err, ErrLabelMismatch)
	_, err = ClassByIndex(-1)
	require.ErrorIs(t, err, ErrLabelMismatch)
}
