package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRow_Clone(t *testing.T) {
	out := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	days := decimal.NewFromInt(3)
	row := TransactionRow{
		Item:         "પ્લેટ",
		DateOut:      &out,
		SuppliedDays: &days,
		Extra:        map[string]string{"નોંધ": "a"},
	}

	want := out
	c := row.Clone()
	*row.DateOut = out.AddDate(0, 0, 5)
	*row.SuppliedDays = decimal.NewFromInt(9)
	row.Extra["નોંધ"] = "b"

	assert.Equal(t, want, *c.DateOut)
	assert.NotSame(t, row.DateOut, c.DateOut)
	assert.True(t, decimal.NewFromInt(3).Equal(*c.SuppliedDays))
	assert.Equal(t, "a", c.Extra["નોંધ"])
	assert.Nil(t, c.DateIn)
}

func TestTransactionRow_WithSettledDays(t *testing.T) {
	row := TransactionRow{Days: decimal.NewFromInt(12)}

	settled := row.WithSettledDays()

	require.NotNil(t, settled.SuppliedDays)
	assert.True(t, decimal.NewFromInt(12).Equal(*settled.SuppliedDays))
	assert.Nil(t, row.SuppliedDays)
}

func TestTransactionRow_Outstanding(t *testing.T) {
	assert.True(t, TransactionRow{QuantityOut: decimal.NewFromInt(2)}.Outstanding())
	assert.False(t, TransactionRow{QuantityOut: decimal.NewFromInt(2), QuantityIn: decimal.NewFromInt(2)}.Outstanding())
	assert.False(t, TransactionRow{QuantityIn: decimal.NewFromInt(2)}.Outstanding())
}

func TestLedgerLine_Kind(t *testing.T) {
	assert.Equal(t, LineTransaction, LedgerLine{Row: &TransactionRow{}}.Kind())
	assert.Equal(t, LineOutstanding, LedgerLine{Outstanding: &OutstandingRow{}}.Kind())
}

func TestDateOnly(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	got := DateOnly(time.Date(2024, time.May, 1, 23, 10, 0, 0, ist))
	assert.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), got)
}
