package xerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := Invalid("distance", "must not be negative")

	assert.EqualError(t, err, "invalid distance: must not be negative")
	assert.True(t, IsValidation(err))
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, IsCalculation(err))

	wrapped := fmt.Errorf("estimate: %w", err)
	assert.True(t, IsValidation(wrapped))
}

func TestCalculation_WrapsCause(t *testing.T) {
	cause := errors.New("division by zero")
	err := Calculation("refueling", "vehicle autonomy is zero", cause)

	assert.True(t, IsCalculation(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "refueling")
	assert.Contains(t, err.Error(), "division by zero")
}

func TestCalculation_KeepsInnermostStage(t *testing.T) {
	inner := Calculation("fuel", "invalid fuel efficiency", nil)
	outer := Calculation("aggregate", "fuel costs", inner)

	var ce *CalculationError
	assert.True(t, errors.As(outer, &ce))
	assert.Equal(t, "fuel", ce.Stage)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	err := Wrap(ErrNotFound, "find vehicle")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "find vehicle: resource not found", err.Error())
}
