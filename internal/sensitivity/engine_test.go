package sensitivity

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundcast/fundcast/internal/budget"
	"github.com/fundcast/fundcast/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newEngine() *Engine { return NewEngine(budget.Default(2026)) }

func TestBaseline(t *testing.T) {
	b := newEngine().Baseline()
	assert.True(t, b.Surplus.Equal(dec("1265177")))
	assert.True(t, b.TotalInflows.Equal(dec("3101283")))
	assert.True(t, b.TotalExpenses.Equal(dec("2559354")))
	assert.True(t, b.TotalGrants.Equal(dec("2938535")))
	require.False(t, b.Runway.Infinite)
	assert.InDelta(t, 5.932, b.Runway.Months.InexactFloat64(), 0.001)
}

func TestAnalyze(t *testing.T) {
	e := newEngine()
	tests := []struct {
		name      string
		variable  Variable
		pct       string
		impact    string
		baseValue string
		testValue string
	}{
		{"revenue up", Revenue, "10", "310128.3", "3101283", "3411411.3"},
		{"revenue down", Revenue, "-10", "-310128.3", "3101283", "2791154.7"},
		{"expenses up", Expenses, "10", "-255935.4", "2559354", "2815289.4"},
		{"expenses down", Expenses, "-10", "255935.4", "2559354", "2303418.6"},
		{"grants up", GrantTotal, "10", "293853.5", "2938535", "3232388.5"},
		{"grants down", GrantTotal, "-20", "-587707", "2938535", "2350828"},
		{"no change", Revenue, "0", "0", "3101283", "3101283"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := e.Analyze(tt.variable, dec(tt.pct))
			require.NoError(t, err)
			assert.Equal(t, tt.variable, r.Variable)
			assert.True(t, r.ImpactOnSurplus.Equal(dec(tt.impact)), "impact %s", r.ImpactOnSurplus)
			assert.True(t, r.NewSurplus.Equal(dec("1265177").Add(dec(tt.impact))))
			assert.True(t, r.BaseValue.Equal(dec(tt.baseValue)))
			assert.True(t, r.TestValue.Equal(dec(tt.testValue)), "test value %s", r.TestValue)
			require.True(t, r.ImpactOnRunway.Valid)
		})
	}
}

func TestAnalyze_GrantTotalLeavesOtherInflow(t *testing.T) {
	e := newEngine()
	// Doubling grants adds exactly their timing total; revenue doubling adds all inflow.
	grants, err := e.Analyze(GrantTotal, dec("100"))
	require.NoError(t, err)
	revenue, err := e.Analyze(Revenue, dec("100"))
	require.NoError(t, err)
	assert.True(t, grants.ImpactOnSurplus.Equal(dec("2938535")))
	assert.True(t, revenue.ImpactOnSurplus.Equal(dec("3101283")))
}

func TestAnalyze_RunwayImpact(t *testing.T) {
	e := newEngine()
	r, err := e.Analyze(Revenue, decimal.Zero)
	require.NoError(t, err)
	require.True(t, r.ImpactOnRunway.Valid)
	assert.True(t, r.ImpactOnRunway.Decimal.IsZero())

	// Cutting expenses to zero makes the burn rate zero.
	r, err = e.Analyze(Expenses, dec("-100"))
	require.NoError(t, err)
	assert.True(t, r.NewRunway.Infinite)
	assert.False(t, r.ImpactOnRunway.Valid)
}

func TestAnalyze_UnknownVariable(t *testing.T) {
	_, err := newEngine().Analyze(Variable("headcount"), dec("10"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownVariable))
	assert.Contains(t, err.Error(), "headcount")
}

func TestParseVariable(t *testing.T) {
	v, err := ParseVariable(" Grant_Total ")
	require.NoError(t, err)
	assert.Equal(t, GrantTotal, v)

	_, err = ParseVariable("fx")
	assert.ErrorIs(t, err, ErrUnknownVariable)
}

func TestTable(t *testing.T) {
	e := newEngine()
	rows, err := e.Table(Expenses, nil)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.True(t, rows[0].ChangePct.Equal(dec("-30")))
	assert.True(t, rows[3].ImpactOnSurplus.IsZero())
	for i := 1; i < len(rows); i++ {
		assert.True(t, rows[i].NewSurplus.LessThan(rows[i-1].NewSurplus), "surplus falls as expenses rise")
	}

	rows, err = e.Table(Revenue, []decimal.Decimal{dec("5")})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = e.Table(Variable("x"), nil)
	assert.ErrorIs(t, err, ErrUnknownVariable)
}

func TestMatrix(t *testing.T) {
	rows := newEngine().Matrix()
	require.Len(t, rows, 3)
	assert.Equal(t, Revenue, rows[0].Variable)
	assert.True(t, rows[0].Minus10.Equal(dec("-310128.3")))
	assert.True(t, rows[0].Plus10.Equal(dec("310128.3")))
	assert.Equal(t, Expenses, rows[1].Variable)
	assert.True(t, rows[1].Plus10.Equal(dec("-255935.4")))
	assert.Equal(t, GrantTotal, rows[2].Variable)
	assert.True(t, rows[2].Plus10.Equal(dec("293853.5")))
}

func TestBreakEven_ClosedForm(t *testing.T) {
	e := newEngine()
	tests := []struct {
		variable Variable
		approx   float64
	}{
		{Revenue, -40.795},
		{Expenses, 49.433},
		{GrantTotal, -43.055},
	}
	for _, tt := range tests {
		t.Run(string(tt.variable), func(t *testing.T) {
			pct, err := e.BreakEven(tt.variable, DefaultSearch, ClosedForm)
			require.NoError(t, err)
			assert.InDelta(t, tt.approx, pct.InexactFloat64(), 0.001)

			r, err := e.Analyze(tt.variable, pct)
			require.NoError(t, err)
			assert.True(t, r.NewSurplus.Abs().LessThanOrEqual(dec("1")), "surplus at break-even %s", r.NewSurplus)
		})
	}
}

func TestBreakEven_Bisection(t *testing.T) {
	e := newEngine()
	for _, v := range Variables() {
		t.Run(string(v), func(t *testing.T) {
			exact, err := e.BreakEven(v, DefaultSearch, ClosedForm)
			require.NoError(t, err)
			approx, err := e.BreakEven(v, DefaultSearch, Bisection)
			require.NoError(t, err)
			assert.InDelta(t, exact.InexactFloat64(), approx.InexactFloat64(), 0.1)
		})
	}
}

func TestBreakEven_BisectionTolerance(t *testing.T) {
	e := newEngine()
	exact, err := e.BreakEven(Revenue, DefaultSearch, ClosedForm)
	require.NoError(t, err)

	r := DefaultSearch
	r.Tolerance = MinTolerance
	approx, err := e.BreakEven(Revenue, r, Bisection)
	require.NoError(t, err)
	assert.InDelta(t, exact.InexactFloat64(), approx.InexactFloat64(), 1e-6)

	for _, tol := range []string{"1e-20", "-0.1"} {
		r.Tolerance = dec(tol)
		_, err := e.BreakEven(Revenue, r, Bisection)
		require.Error(t, err, tol)
		assert.Contains(t, err.Error(), "tolerance")
	}
}

func TestBreakEven_OutOfRange(t *testing.T) {
	e := newEngine()
	narrow := Range{Min: dec("-20"), Max: dec("20")}
	for _, m := range []Method{ClosedForm, Bisection} {
		_, err := e.BreakEven(Revenue, narrow, m)
		assert.ErrorIs(t, err, ErrNoBreakEven, "method %s", m)
	}

	_, err := e.BreakEven(Revenue, Range{Min: dec("10"), Max: dec("-10")}, ClosedForm)
	assert.Error(t, err)

	_, err = e.BreakEven(Variable("fx"), DefaultSearch, ClosedForm)
	assert.ErrorIs(t, err, ErrUnknownVariable)
}

func TestBreakEven_ZeroQuantity(t *testing.T) {
	b := budget.Default(2026)
	b.Grants = nil
	_, err := NewEngine(b).BreakEven(GrantTotal, DefaultSearch, ClosedForm)
	assert.ErrorIs(t, err, ErrNoBreakEven)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, ClosedForm, m)
	m, err = ParseMethod("bisection")
	require.NoError(t, err)
	assert.Equal(t, Bisection, m)
	_, err = ParseMethod("newton")
	assert.Error(t, err)
}

func TestGrantDependency(t *testing.T) {
	e := newEngine()
	deps := e.GrantDependency()
	require.Len(t, deps, 6)

	mulago := deps["mulago"]
	assert.True(t, mulago.GrantAmount.Equal(dec("950000")))
	assert.True(t, mulago.NewSurplus.Equal(dec("315177")))
	assert.True(t, mulago.ImpactOnSurplus.Equal(dec("-950000")))
	assert.False(t, mulago.Critical)
	assert.InDelta(t, 32.329, mulago.PercentageOfTotal.InexactFloat64(), 0.001)

	dovetail := deps["dovetail"]
	assert.True(t, dovetail.NewSurplus.Equal(dec("865177")))

	for id, d := range deps {
		assert.Equal(t, d.NewSurplus.IsNegative(), d.Critical, id)
	}
	assert.Empty(t, e.CriticalGrants())
}

func TestGrantDependency_Critical(t *testing.T) {
	b := budget.Default(2026)
	b.OpeningBalance = decimal.Zero
	e := NewEngine(b)
	// Without the opening balance the year ends at 541929.
	assert.Equal(t, []string{"mulago", "niete_ict"}, e.CriticalGrants())
	assert.True(t, e.GrantDependency()["mulago"].NewSurplus.Equal(dec("-408071")))
}

func TestGrantDependencyList_Sorted(t *testing.T) {
	list := newEngine().GrantDependencyList()
	ids := make([]string, len(list))
	for i, d := range list {
		ids[i] = d.ID
	}
	assert.Equal(t, []string{
		"mulago", "niete_ict", "prevail_general_ops", "dovetail",
		"prevail_implementation", "prevail_data_collection",
	}, ids)
}

func TestRemoveGrant(t *testing.T) {
	e := newEngine()
	r, err := e.RemoveGrant("Mulago")
	require.NoError(t, err)
	assert.Equal(t, "mulago", r.ID)
	assert.True(t, r.RemovedAmount.Equal(dec("950000")))
	assert.True(t, r.NewTotal.Equal(dec("1988535")))
	assert.True(t, r.OriginalSurplus.Equal(dec("1265177")))
	assert.True(t, r.NewSurplus.Equal(dec("315177")))

	r, err = e.RemoveGrant("Prevail General Ops")
	require.NoError(t, err)
	assert.Equal(t, "prevail_general_ops", r.ID)

	_, err = e.RemoveGrant("gates")
	var nf *budget.GrantNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "gates", nf.ID)
	assert.Len(t, nf.Available, 6)
}

func TestConcentration(t *testing.T) {
	c := newEngine().Concentration()
	assert.Equal(t, "mulago", c.LargestID)
	assert.True(t, c.LargestGrant.Equal(dec("950000")))
	assert.InDelta(t, 0.3233, c.LargestShare.InexactFloat64(), 0.0001)
	assert.InDelta(t, 0.2111, c.Herfindahl.InexactFloat64(), 0.0001)
	assert.True(t, c.Diversification.Add(c.LargestShare).Equal(dec("1")))

	b := budget.Default(2026)
	b.Grants = map[string]model.Grant{}
	empty := NewEngine(b).Concentration()
	assert.True(t, empty.Herfindahl.IsZero())
	assert.True(t, empty.Diversification.Equal(dec("1")))
}

func TestExchangeRate(t *testing.T) {
	e := newEngine()
	rows := e.ExchangeRate(nil)
	require.Len(t, rows, 5)

	assert.True(t, rows[0].Rate.Equal(dec("226.4")))
	assert.True(t, rows[0].ChangeFromBasePct.Equal(dec("-20")))
	assert.True(t, rows[2].Rate.Equal(dec("283")))
	assert.True(t, rows[2].LocalChange.IsZero())
	assert.True(t, rows[2].LocalSurplus.Equal(dec("1265177").Mul(dec("283"))))
	for _, r := range rows {
		assert.True(t, r.Surplus.Equal(dec("1265177")), "base-currency surplus never moves")
	}

	rows = e.ExchangeRate([]decimal.Decimal{dec("300")})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].LocalChange.Equal(dec("1265177").Mul(dec("17"))))
}

func TestRevenueDelay(t *testing.T) {
	e := newEngine()

	d, err := e.RevenueDelay(0)
	require.NoError(t, err)
	assert.True(t, d.LostRevenue.IsZero())
	assert.True(t, d.NewSurplus.Equal(dec("1265177")))

	d, err = e.RevenueDelay(1)
	require.NoError(t, err)
	assert.True(t, d.LostRevenue.Equal(dec("218841")))
	assert.True(t, d.NewTotalInflows.Equal(dec("2882442")))
	assert.True(t, d.NewSurplus.Equal(dec("1046336")))
	assert.True(t, d.ImpactOnSurplus.Equal(dec("-218841")))
	assert.Equal(t, model.Feb, d.MinimumCashMonth)
	assert.True(t, d.MinimumCash.Equal(dec("449340")))
	assert.Empty(t, d.NegativeMonths)

	d, err = e.RevenueDelay(3)
	require.NoError(t, err)
	assert.Equal(t, []model.Month{model.Apr}, d.NegativeMonths)
	assert.True(t, d.MinimumCash.Equal(dec("-34722")))

	d, err = e.RevenueDelay(12)
	require.NoError(t, err)
	assert.True(t, d.NewTotalInflows.IsZero())

	_, err = e.RevenueDelay(-1)
	assert.Error(t, err)
}

func TestFundingGap(t *testing.T) {
	g := newEngine().FundingGap(150000, dec("10.62"))
	assert.Equal(t, 127000, g.CurrentStudents)
	assert.Equal(t, 23000, g.AdditionalStudents)
	assert.True(t, g.AdditionalFunding.Equal(dec("244260")))

	g = newEngine().FundingGap(100000, dec("3.53"))
	assert.Equal(t, -27000, g.AdditionalStudents)
	assert.True(t, g.AdditionalFunding.IsNegative())
}
