// Package cashflow rolls monthly inflows and expenses into a twelve-month cash
// position forecast.
package cashflow

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fundcast/fundcast/internal/model"
)

var twelve = decimal.NewFromInt(model.MonthsPerYear)

// Forecast is the result of running the cash-flow roll-up once. It is
// immutable after Compute returns.
type Forecast struct {
	opening   decimal.Decimal
	inflows   model.Monthly
	expenses  model.Monthly
	positions [model.MonthsPerYear]model.MonthlyPosition
}

// Compute walks Jan..Dec, carrying each month's closing balance into the
// next month's opening balance.
func Compute(opening decimal.Decimal, inflows, expenses model.Monthly) *Forecast {
	f := &Forecast{opening: opening, inflows: inflows, expenses: expenses}
	cash := opening
	for _, m := range model.Months() {
		closing := cash.Add(inflows[m]).Sub(expenses[m])
		f.positions[m] = model.MonthlyPosition{
			Month:   m,
			Opening: cash,
			Inflow:  inflows[m],
			Outflow: expenses[m],
			Closing: closing,
		}
		cash = closing
	}
	return f
}

// FromBudget runs the forecast on a budget's own figures.
func FromBudget(b *model.Budget) *Forecast {
	return Compute(b.OpeningBalance, b.MonthlyInflows, b.MonthlyExpenses)
}

// OpeningBalance returns the cash at the start of January.
func (f *Forecast) OpeningBalance() decimal.Decimal { return f.opening }

// Inflows returns the monthly inflows the forecast was computed from.
func (f *Forecast) Inflows() model.Monthly { return f.inflows }

// Expenses returns the monthly expenses the forecast was computed from.
func (f *Forecast) Expenses() model.Monthly { return f.expenses }

// Positions returns all twelve positions in calendar order.
func (f *Forecast) Positions() []model.MonthlyPosition {
	out := make([]model.MonthlyPosition, model.MonthsPerYear)
	copy(out, f.positions[:])
	return out
}

// Position returns the position for one month. An invalid month yields a
// zero position.
func (f *Forecast) Position(m model.Month) model.MonthlyPosition {
	if !m.Valid() {
		return model.MonthlyPosition{Month: m}
	}
	return f.positions[m]
}

// TotalInflows sums inflows across the year.
func (f *Forecast) TotalInflows() decimal.Decimal { return f.inflows.Sum() }

// TotalOutflows sums expenses across the year.
func (f *Forecast) TotalOutflows() decimal.Decimal { return f.expenses.Sum() }

// NetCashFlow is total inflows minus total outflows.
func (f *Forecast) NetCashFlow() decimal.Decimal {
	return f.TotalInflows().Sub(f.TotalOutflows())
}

// YearEndPosition is December's closing balance.
func (f *Forecast) YearEndPosition() decimal.Decimal {
	return f.positions[model.Dec].Closing
}

// AverageMonthlyBurn is total outflows divided by twelve.
func (f *Forecast) AverageMonthlyBurn() decimal.Decimal {
	return f.TotalOutflows().Div(twelve)
}

// MinimumCashMonth returns the month with the lowest closing balance. Ties go
// to the earliest month.
func (f *Forecast) MinimumCashMonth() model.MonthlyPosition {
	lowest := f.positions[0]
	for _, p := range f.positions[1:] {
		if p.Closing.LessThan(lowest.Closing) {
			lowest = p
		}
	}
	return lowest
}

// LowCashMonths returns, in calendar order, the months closing below threshold.
func (f *Forecast) LowCashMonths(threshold decimal.Decimal) []model.MonthlyPosition {
	var out []model.MonthlyPosition
	for _, p := range f.positions {
		if p.Closing.LessThan(threshold) {
			out = append(out, p)
		}
	}
	return out
}

// NegativeMonths returns the months that close with negative cash.
func (f *Forecast) NegativeMonths() []model.Month {
	var out []model.Month
	for _, p := range f.positions {
		if p.Closing.IsNegative() {
			out = append(out, p.Month)
		}
	}
	return out
}

// RunwayAt is the closing balance of m divided by the average monthly burn.
func (f *Forecast) RunwayAt(m model.Month) model.Runway {
	return f.RunwayAtBurn(m, f.AverageMonthlyBurn())
}

// RunwayAtBurn is like RunwayAt with a caller-supplied burn rate.
func (f *Forecast) RunwayAtBurn(m model.Month, burn decimal.Decimal) model.Runway {
	return model.RunwayFor(f.Position(m).Closing, burn)
}

// YearEndRunway is the runway from December's closing balance.
func (f *Forecast) YearEndRunway() model.Runway {
	return f.RunwayAt(model.Dec)
}

// Period selects a span of months for burn-rate averages.
type Period string

const (
	FullYear Period = "full_year"
	H1       Period = "h1"
	H2       Period = "h2"
)

// AverageBurn averages expenses over a period: the whole year, Jan-Jun or Jul-Dec.
func (f *Forecast) AverageBurn(period Period) (decimal.Decimal, error) {
	var from, to model.Month
	switch period {
	case FullYear:
		from, to = model.Jan, model.Dec
	case H1:
		from, to = model.Jan, model.Jun
	case H2:
		from, to = model.Jul, model.Dec
	default:
		return decimal.Zero, fmt.Errorf("unknown period %q (want full_year, h1 or h2)", period)
	}
	total := decimal.Zero
	for m := from; m <= to; m++ {
		total = total.Add(f.expenses[m])
	}
	return total.Div(decimal.NewFromInt(int64(to - from + 1))), nil
}

// String summarizes the forecast in one line.
func (f *Forecast) String() string {
	return fmt.Sprintf("Forecast(opening=%s, inflows=%s, outflows=%s, closing=%s)",
		f.opening.StringFixed(0), f.TotalInflows().StringFixed(0),
		f.TotalOutflows().StringFixed(0), f.YearEndPosition().StringFixed(0))
}
