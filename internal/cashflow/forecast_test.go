package cashflow

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundcast/fundcast/internal/budget"
	"github.com/fundcast/fundcast/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func flat(v string) model.Monthly {
	var mv model.Monthly
	for i := range mv {
		mv[i] = dec(v)
	}
	return mv
}

func TestCompute_Budget2026(t *testing.T) {
	f := FromBudget(budget.Default(2026))

	assert.True(t, f.YearEndPosition().Equal(dec("1265177")), "year end %s", f.YearEndPosition())
	assert.True(t, f.TotalInflows().Equal(dec("3101283")))
	assert.True(t, f.TotalOutflows().Equal(dec("2559354")))
	assert.True(t, f.NetCashFlow().Equal(dec("541929")))

	low := f.MinimumCashMonth()
	assert.Equal(t, model.Jan, low.Month)
	assert.True(t, low.Closing.Equal(dec("672288")))

	assert.True(t, f.AverageMonthlyBurn().Equal(dec("213279.5")))
	assert.Equal(t, "Forecast(opening=723248, inflows=3101283, outflows=2559354, closing=1265177)", f.String())
}

func TestCompute_AccumulationInvariant(t *testing.T) {
	b := budget.Default(2026)
	f := Compute(dec("1000.50"), b.MonthlyInflows, b.MonthlyExpenses)
	ps := f.Positions()
	require.Len(t, ps, model.MonthsPerYear)

	assert.True(t, ps[0].Opening.Equal(dec("1000.50")))
	inflows, outflows := decimal.Zero, decimal.Zero
	for i, p := range ps {
		assert.Equal(t, model.Month(i), p.Month)
		assert.True(t, p.Closing.Equal(p.Opening.Add(p.Inflow).Sub(p.Outflow)), "closing %s", p.Month)
		assert.True(t, p.Net().Equal(p.Inflow.Sub(p.Outflow)))
		if i < len(ps)-1 {
			assert.True(t, ps[i+1].Opening.Equal(p.Closing), "opening %s", ps[i+1].Month)
		}
		inflows = inflows.Add(p.Inflow)
		outflows = outflows.Add(p.Outflow)
	}
	assert.True(t, f.TotalInflows().Equal(inflows))
	assert.True(t, f.TotalOutflows().Equal(outflows))
	assert.True(t, f.YearEndPosition().Equal(ps[11].Closing))
}

func TestPositions_ReturnsCopy(t *testing.T) {
	f := Compute(dec("10"), flat("1"), flat("1"))
	ps := f.Positions()
	ps[0].Closing = dec("-999")
	assert.True(t, f.Position(model.Jan).Closing.Equal(dec("10")))
}

func TestMinimumCashMonth_TieGoesToEarliest(t *testing.T) {
	var in, out model.Monthly
	out[model.Mar] = dec("100")
	in[model.Apr] = dec("100")
	out[model.Jun] = dec("100")
	// Closings: 100 100 0 100 100 0 0 0 ... so Mar is the first minimum.
	f := Compute(dec("100"), in, out)
	assert.Equal(t, model.Mar, f.MinimumCashMonth().Month)
}

func TestLowCashMonths(t *testing.T) {
	f := FromBudget(budget.Default(2026))
	assert.Empty(t, f.LowCashMonths(dec("500000")))

	low := f.LowCashMonths(dec("1000000"))
	require.Len(t, low, 2)
	assert.Equal(t, model.Jan, low[0].Month)
	assert.Equal(t, model.Oct, low[1].Month)
}

func TestNegativeMonths(t *testing.T) {
	f := Compute(dec("150"), flat("0"), flat("100"))
	assert.Equal(t, []model.Month{model.Feb, model.Mar, model.Apr, model.May, model.Jun, model.Jul,
		model.Aug, model.Sep, model.Oct, model.Nov, model.Dec}, f.NegativeMonths())
}

func TestRunway(t *testing.T) {
	f := Compute(dec("1200"), flat("0"), flat("10"))
	r := f.RunwayAt(model.Jan)
	require.False(t, r.Infinite)
	assert.True(t, r.Months.Equal(dec("119")), "jan closing 1190 / burn 10")

	r = f.RunwayAtBurn(model.Dec, dec("20"))
	assert.True(t, r.Months.Equal(dec("54")))

	assert.True(t, f.RunwayAtBurn(model.Dec, decimal.Zero).Infinite)
	assert.True(t, f.RunwayAtBurn(model.Dec, dec("-1")).Infinite)

	noBurn := Compute(dec("1200"), flat("5"), flat("0"))
	assert.True(t, noBurn.YearEndRunway().Infinite)
}

func TestAverageBurn(t *testing.T) {
	f := FromBudget(budget.Default(2026))

	full, err := f.AverageBurn(FullYear)
	require.NoError(t, err)
	assert.True(t, full.Equal(f.AverageMonthlyBurn()))

	h1, err := f.AverageBurn(H1)
	require.NoError(t, err)
	assert.True(t, h1.Equal(dec("1391132").Div(dec("6"))))

	h2, err := f.AverageBurn(H2)
	require.NoError(t, err)
	assert.True(t, h2.Equal(dec("1168222").Div(dec("6"))))

	_, err = f.AverageBurn(Period("q3"))
	assert.Error(t, err)
}

func TestWaterfall(t *testing.T) {
	f := FromBudget(budget.Default(2026))
	steps := f.Waterfall()
	require.Len(t, steps, 26)

	assert.Equal(t, MeasureAbsolute, steps[0].Measure)
	assert.True(t, steps[0].Amount.Equal(dec("723248")))
	assert.Equal(t, "Jan Inflows", steps[1].Label)
	assert.Equal(t, "Jan Outflows", steps[2].Label)
	assert.True(t, steps[2].Amount.Equal(dec("-257913")))

	last := steps[len(steps)-1]
	assert.Equal(t, MeasureTotal, last.Measure)
	assert.True(t, last.Amount.Equal(f.YearEndPosition()))

	running := steps[0].Amount
	for _, s := range steps[1 : len(steps)-1] {
		running = running.Add(s.Amount)
	}
	assert.True(t, running.Equal(last.Amount), "relative steps must sum to the closing balance")
}

func TestInflowBreakdown_MatchesBudgetInflows(t *testing.T) {
	b := budget.Default(2026)
	bd := InflowBreakdown(b)

	assert.True(t, bd.Grants[model.Feb].Equal(dec("944723")))
	assert.True(t, bd.PartnerRevenue[model.Jan].Equal(dec("1123")))
	assert.True(t, bd.PartnerRevenue[model.Jun].Equal(dec("18841")))
	assert.True(t, bd.Rental[model.Jan].Equal(dec("5830")))

	total := bd.Total()
	for _, m := range model.Months() {
		assert.True(t, total[m].Equal(b.MonthlyInflows[m]), "%s: breakdown %s != inflow %s", m, total[m], b.MonthlyInflows[m])
	}
}

func TestPosition_InvalidMonth(t *testing.T) {
	f := FromBudget(budget.Default(2026))
	assert.True(t, f.Position(model.Dec).Closing.Equal(dec("1265177")))

	for _, m := range []model.Month{-1, 12} {
		p := f.Position(m)
		assert.Equal(t, m, p.Month)
		assert.True(t, p.Closing.IsZero())
		r := f.RunwayAt(m)
		assert.False(t, r.Infinite)
		assert.True(t, r.Months.IsZero())
	}
}
