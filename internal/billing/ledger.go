package billing

import (
	"context"
	"sync"

	"github.com/Veraticus/bhada/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds how many ledgers RecomputeAll processes at once.
const DefaultWorkers = 4

// Recompute resolves a rule for every row and fills in days, charge and
// diagnostics. Rows are copied; passthrough columns are left untouched.
func Recompute(table *RuleTable, rows []model.TransactionRow) []model.TransactionRow {
	out := make([]model.TransactionRow, len(rows))
	for i, row := range rows {
		row = row.Clone()

		var rule *model.Rule
		if table != nil {
			if r, ok := table.Resolve(row.Item); ok {
				rule = &r
			}
		}

		res := Compute(row, rule)
		row.Days = res.Days
		row.Charge = res.Charge
		row.Diagnostics = res.Diagnostics
		out[i] = row
	}
	return out
}

// PassOptions tunes RecomputeAll.
type PassOptions struct {
	// OnDone is called after each ledger finishes. It may be called concurrently.
	OnDone  func(customer string)
	Workers int
}

// RecomputeAll recomputes and expands every customer's ledger. Ledgers share
// no state, so they run in parallel; only cancellation is reported.
func RecomputeAll(ctx context.Context, table *RuleTable, ledgers map[string][]model.TransactionRow, opts PassOptions) (map[string][]model.LedgerLine, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var mu sync.Mutex
	result := make(map[string][]model.LedgerLine, len(ledgers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for customer, rows := range ledgers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines := Expand(Recompute(table, rows))

			mu.Lock()
			result[customer] = lines
			mu.Unlock()

			if opts.OnDone != nil {
				opts.OnDone(customer)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Summary holds the dashboard figures across ledgers.
type Summary struct {
	TotalRent   decimal.Decimal
	Outstanding decimal.Decimal
	Customers   int
	Rows        int
}

// Summarize totals the applicable charges and outstanding units of expanded ledgers.
func Summarize(ledgers map[string][]model.LedgerLine) Summary {
	s := Summary{Customers: len(ledgers)}
	for _, lines := range ledgers {
		for _, line := range lines {
			switch line.Kind() {
			case model.LineTransaction:
				s.Rows++
				if amount, ok := line.Row.Charge.Value(); ok {
					s.TotalRent = s.TotalRent.Add(amount)
				}
			case model.LineOutstanding:
				s.Outstanding = s.Outstanding.Add(line.Outstanding.RemainingQuantity)
			}
		}
	}
	return s
}
