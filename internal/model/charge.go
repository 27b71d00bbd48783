package model

import "github.com/shopspring/decimal"

// NotApplicableMark is how a charge without an item is displayed.
const NotApplicableMark = "-"

// Charge is the total due for a row: either an amount or not applicable.
// The zero value is not applicable.
type Charge struct {
	amount     decimal.Decimal
	applicable bool
}

// Amount returns an applicable charge of d.
func Amount(d decimal.Decimal) Charge {
	return Charge{amount: d, applicable: true}
}

// NotApplicable returns the charge of a row with no item.
func NotApplicable() Charge {
	return Charge{}
}

// IsApplicable reports whether the charge carries an amount.
func (c Charge) IsApplicable() bool {
	return c.applicable
}

// Value returns the amount and whether it applies.
func (c Charge) Value() (decimal.Decimal, bool) {
	return c.amount, c.applicable
}

// Equal reports whether two charges have the same tag and amount.
func (c Charge) Equal(other Charge) bool {
	if c.applicable != other.applicable {
		return false
	}
	return !c.applicable || c.amount.Equal(other.amount)
}

func (c Charge) String() string {
	if !c.applicable {
		return NotApplicableMark
	}
	return c.amount.String()
}
