package budget

import (
	"github.com/shopspring/decimal"

	"github.com/fundcast/fundcast/internal/model"
)

// Drift compares a hand-entered sheet total with the value computed from the
// underlying figures.
type Drift struct {
	Field      string
	Reported   decimal.Decimal
	Computed   decimal.Decimal
	Difference decimal.Decimal // computed - reported
}

// Reconcile recomputes every reported total and returns the ones that differ.
// A zero reported value means the sheet had no figure and is skipped.
func Reconcile(b *model.Budget) []Drift {
	inflows := b.MonthlyInflows.Sum()
	expenses := b.MonthlyExpenses.Sum()

	checks := []struct {
		field    string
		reported decimal.Decimal
		computed decimal.Decimal
	}{
		{"total_inflows", b.Reported.TotalInflows, inflows},
		{"total_expenses", b.Reported.TotalExpenses, expenses},
		{"projected_surplus", b.Reported.ProjectedSurplus, b.OpeningBalance.Add(inflows).Sub(expenses)},
		{"total_grant_income", b.Reported.TotalGrantIncome, b.TotalGrantIncome()},
	}

	var drifts []Drift
	for _, c := range checks {
		if c.reported.IsZero() || c.reported.Equal(c.computed) {
			continue
		}
		drifts = append(drifts, Drift{
			Field:      c.field,
			Reported:   c.reported,
			Computed:   c.computed,
			Difference: c.computed.Sub(c.reported),
		})
	}
	return drifts
}
