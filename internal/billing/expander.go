package billing

import "github.com/Veraticus/bhada/internal/model"

// Expand returns the ledger lines for rows, inserting an outstanding line
// right after every row that has unreturned units. Input order is kept and
// rows are copied, so expanding the same input twice yields equal output.
func Expand(rows []model.TransactionRow) []model.LedgerLine {
	lines := make([]model.LedgerLine, 0, len(rows))
	for i := range rows {
		row := rows[i].Clone()
		lines = append(lines, model.LedgerLine{Row: &row})
		if row.Outstanding() {
			lines = append(lines, model.LedgerLine{Outstanding: outstandingFor(row)})
		}
	}
	return lines
}

func outstandingFor(row model.TransactionRow) *model.OutstandingRow {
	o := &model.OutstandingRow{
		Item:              row.Item,
		Size:              row.Size,
		RemainingQuantity: row.QuantityOut.Sub(row.QuantityIn),
		DateOut:           row.DateOut,
		RatePerUnit:       row.RatePerUnit,
		Days:              row.Days,
		PerDay:            row.PerDay,
	}
	if row.DateIn != nil && !row.DateIn.IsZero() {
		since := model.DateOnly(*row.DateIn).AddDate(0, 0, 1)
		o.BalanceSince = &since
	}
	return o
}
