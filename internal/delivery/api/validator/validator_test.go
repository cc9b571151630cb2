package validator

import (
	"testing"

	domainerrors "catalog/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name" validate:"required,max=10"`
	Price *float64 `json:"price" validate:"omitempty,gte=0"`
	Note  string   `form:"note" validate:"omitempty,min=2"`
}

func TestCustomValidator_Validate(t *testing.T) {
	v := New()
	negative := -1.0

	require.NoError(t, v.Validate(&sample{Name: "Dune"}))

	err := v.Validate(&sample{Price: &negative, Note: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Details(), "name: is required")
	assert.Contains(t, appErr.Details(), "price: must be at least 0")
	assert.Contains(t, appErr.Details(), "note: must be at least 2")
}
