package sensitivity

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fundcast/fundcast/internal/cashflow"
	"github.com/fundcast/fundcast/internal/model"
)

// DefaultRateSteps multiply the budget's exchange rate when ExchangeRate is
// given no rates.
var DefaultRateSteps = []decimal.Decimal{
	decimal.RequireFromString("0.8"),
	decimal.RequireFromString("0.9"),
	one,
	decimal.RequireFromString("1.1"),
	decimal.RequireFromString("1.2"),
}

// FXResult re-expresses the base-currency surplus at one exchange rate. No
// base-currency figure changes; this is a unit reprojection, not a model of
// currency-exposed costs.
type FXResult struct {
	Rate              decimal.Decimal
	ChangeFromBasePct decimal.Decimal
	Surplus           decimal.Decimal
	LocalSurplus      decimal.Decimal
	LocalChange       decimal.Decimal
}

// RatesFromSteps multiplies the budget's exchange rate by each step.
func (e *Engine) RatesFromSteps(steps []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(steps))
	for i, s := range steps {
		out[i] = e.budget.ExchangeRate.Mul(s)
	}
	return out
}

// ExchangeRate reports the surplus in local currency at each rate. A nil
// slice uses DefaultRateSteps.
func (e *Engine) ExchangeRate(rates []decimal.Decimal) []FXResult {
	if rates == nil {
		rates = e.RatesFromSteps(DefaultRateSteps)
	}
	baseRate := e.budget.ExchangeRate
	surplus := e.baseline.Surplus
	baseLocal := surplus.Mul(baseRate)

	out := make([]FXResult, 0, len(rates))
	for _, rate := range rates {
		r := FXResult{
			Rate:         rate,
			Surplus:      surplus,
			LocalSurplus: surplus.Mul(rate),
		}
		r.LocalChange = r.LocalSurplus.Sub(baseLocal)
		if !baseRate.IsZero() {
			r.ChangeFromBasePct = rate.Sub(baseRate).Div(baseRate).Mul(hundred)
		}
		out = append(out, r)
	}
	return out
}

// Delay is the year with every inflow arriving some months late.
type Delay struct {
	MonthsDelayed    int
	LostRevenue      decimal.Decimal
	NewTotalInflows  decimal.Decimal
	NewSurplus       decimal.Decimal
	ImpactOnSurplus  decimal.Decimal
	MinimumCash      decimal.Decimal
	MinimumCashMonth model.Month
	NegativeMonths   []model.Month
}

// RevenueDelay shifts each month's inflow n months later. Inflow pushed past
// December is lost to the year.
func (e *Engine) RevenueDelay(n int) (Delay, error) {
	if n < 0 {
		return Delay{}, fmt.Errorf("months delayed must be non-negative, got %d", n)
	}
	var shifted model.Monthly
	for i, amt := range e.budget.MonthlyInflows {
		if j := i + n; j < model.MonthsPerYear {
			shifted[j] = shifted[j].Add(amt)
		}
	}
	f := cashflow.Compute(e.budget.OpeningBalance, shifted, e.budget.MonthlyExpenses)
	low := f.MinimumCashMonth()
	return Delay{
		MonthsDelayed:    n,
		LostRevenue:      e.baseline.TotalInflows.Sub(f.TotalInflows()),
		NewTotalInflows:  f.TotalInflows(),
		NewSurplus:       f.YearEndPosition(),
		ImpactOnSurplus:  f.YearEndPosition().Sub(e.baseline.Surplus),
		MinimumCash:      low.Closing,
		MinimumCashMonth: low.Month,
		NegativeMonths:   f.NegativeMonths(),
	}, nil
}

// FundingGap is the yearly cost of growing to a target student count.
type FundingGap struct {
	CurrentStudents    int
	TargetStudents     int
	AdditionalStudents int
	CostPerStudent     decimal.Decimal
	AdditionalFunding  decimal.Decimal
}

// FundingGap prices the students beyond the programs' current enrollment at
// costPerStudent a year. A target below current enrollment yields a negative
// gap.
func (e *Engine) FundingGap(target int, costPerStudent decimal.Decimal) FundingGap {
	current := e.budget.TotalStudents()
	extra := target - current
	return FundingGap{
		CurrentStudents:    current,
		TargetStudents:     target,
		AdditionalStudents: extra,
		CostPerStudent:     costPerStudent,
		AdditionalFunding:  costPerStudent.Mul(decimal.NewFromInt(int64(extra))),
	}
}
