package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCharge(t *testing.T) {
	var zero Charge
	assert.False(t, zero.IsApplicable())
	assert.Equal(t, "-", zero.String())
	assert.True(t, zero.Equal(NotApplicable()))

	c := Amount(decimal.NewFromInt(60))
	v, ok := c.Value()
	assert.True(t, ok)
	assert.Equal(t, "60", v.String())
	assert.Equal(t, "60", c.String())

	assert.True(t, c.Equal(Amount(decimal.RequireFromString("60.00"))))
	assert.False(t, c.Equal(NotApplicable()))
	assert.True(t, Amount(decimal.Zero).IsApplicable(), "zero amount is still an amount")
}
