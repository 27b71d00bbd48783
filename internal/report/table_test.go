package report

import (
	"testing"
	"time"

	"github.com/Veraticus/bhada/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_Transaction(t *testing.T) {
	out := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	row := model.TransactionRow{
		Serial:      "1",
		Item:        "પ્લેટ",
		Size:        decimal.NewFromInt(3),
		QuantityOut: decimal.NewFromInt(10),
		QuantityIn:  decimal.NewFromInt(4),
		RatePerUnit: decimal.NewFromInt(2),
		Days:        decimal.NewFromInt(30),
		DateOut:     &out,
		Charge:      model.Amount(decimal.NewFromInt(240)),
		Extra:       map[string]string{ColPaymentAmount: "100", "નોંધ": "ok"},
	}

	cells := Row(model.LedgerLine{Row: &row}, []string{"નોંધ"})

	require.Len(t, cells, len(Columns)+1)
	assert.Equal(t, "1", Text(cells[0]))
	assert.Equal(t, "પ્લેટ", Text(cells[2]))
	assert.Equal(t, "05/01/2024", Text(cells[5]))
	assert.Equal(t, "", Text(cells[6]))
	assert.Equal(t, "240", Text(cells[10]))
	assert.Equal(t, "100", Text(cells[12]))
	assert.Equal(t, "ok", Text(cells[14]))
	assert.Equal(t, 240.0, Numeric(cells[10]))
}

func TestRow_NotApplicableTotal(t *testing.T) {
	cells := Row(model.LedgerLine{Row: &model.TransactionRow{}}, nil)
	assert.Equal(t, "-", cells[10])
}

func TestRow_Outstanding(t *testing.T) {
	since := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	o := &model.OutstandingRow{
		Item:              "પ્લેટ",
		RemainingQuantity: decimal.NewFromInt(6),
		Days:              decimal.NewFromInt(30),
		BalanceSince:      &since,
	}

	cells := Row(model.LedgerLine{Outstanding: o}, []string{"નોંધ"})

	require.Len(t, cells, len(Columns)+1)
	assert.Equal(t, model.OutstandingSerial, cells[0])
	assert.Equal(t, "6", Text(cells[4]))
	assert.Equal(t, "0", Text(cells[7]))
	assert.Equal(t, "", Text(cells[10]))
	assert.Equal(t, "08/01/2024", Text(cells[13]))
	assert.Equal(t, "", cells[14])
}

func TestExtraColumns(t *testing.T) {
	rows := []model.TransactionRow{
		{Extra: map[string]string{"z": "1", ColPaymentAmount: "5"}},
		{Extra: map[string]string{"a": "2", "z": "3"}},
		{},
	}

	assert.Equal(t, []string{"a", "z"}, ExtraColumns(rows))
	assert.Equal(t, append(append([]string{}, Columns...), "a", "z"), Header([]string{"a", "z"}))
}

func TestHeaderDoesNotAliasColumns(t *testing.T) {
	h := Header(nil)
	h[0] = "changed"
	assert.Equal(t, ColSerial, Columns[0])
}

func TestRow_PassthroughCellsKeepTheirType(t *testing.T) {
	row := model.TransactionRow{
		Extra: map[string]string{
			ColPaymentDate:   "05/03/2024",
			ColPaymentAmount: "500",
			"ભરતી":           "42.5",
			"વાહન":           "GJ-01",
			ColBalanceSince:  "later",
		},
	}

	cells := Row(model.LedgerLine{Row: &row}, []string{"ભરતી", "વાહન"})

	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), cells[11])
	amount, ok := cells[12].(decimal.Decimal)
	require.True(t, ok, "payment amount should be numeric, got %T", cells[12])
	assert.True(t, decimal.NewFromInt(500).Equal(amount))
	assert.Equal(t, "later", cells[13], "unparsable dates stay text")
	assert.Equal(t, 42.5, Numeric(cells[14]))
	assert.Equal(t, "GJ-01", cells[15])
}
