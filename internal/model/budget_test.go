package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestPartnerStreamMonthly(t *testing.T) {
	start, end := Jun, Oct
	p := PartnerStream{MonthlyAmount: d(100), Start: &start, End: &end}
	mv := p.Monthly()
	assert.True(t, mv[May].IsZero())
	assert.True(t, mv[Jun].Equal(d(100)))
	assert.True(t, mv[Oct].Equal(d(100)))
	assert.True(t, mv[Nov].IsZero())
	assert.True(t, mv.Sum().Equal(d(500)))

	openEnded := PartnerStream{MonthlyAmount: d(10), Start: &start}
	assert.True(t, openEnded.Monthly().Sum().Equal(d(70)), "Jun..Dec is seven months")

	assert.True(t, PartnerStream{MonthlyAmount: d(10)}.Monthly().Sum().IsZero())
}

func TestBudgetGrantHelpers(t *testing.T) {
	var a, b Monthly
	a[Feb] = d(250)
	a[Nov] = d(250)
	b[Feb] = d(100)
	budget := &Budget{Grants: map[string]Grant{
		"zeta":  {Amount: d(500), Timing: a},
		"alpha": {Amount: d(100), Timing: b},
	}}

	assert.True(t, budget.TotalGrantIncome().Equal(d(600)))
	assert.Equal(t, []string{"alpha", "zeta"}, budget.GrantIDs())

	timing := budget.GrantTiming()
	assert.True(t, timing[Feb].Equal(d(350)))
	assert.True(t, timing[Nov].Equal(d(250)))
	assert.Equal(t, []Month{Feb, Nov}, budget.Grants["zeta"].DisbursementMonths())
}

func TestRunwayFor(t *testing.T) {
	r := RunwayFor(d(1200), d(100))
	assert.False(t, r.Infinite)
	assert.True(t, r.Months.Equal(d(12)))
	assert.Equal(t, "12.0", r.String())

	assert.Equal(t, InfiniteRunway, RunwayFor(d(1200), decimal.Zero))
	assert.Equal(t, InfiniteRunway, RunwayFor(d(1200), d(-5)))
	assert.Equal(t, "inf", InfiniteRunway.String())

	delta, ok := RunwayFor(d(600), d(100)).Sub(r)
	assert.True(t, ok)
	assert.True(t, delta.Equal(d(-6)))

	_, ok = InfiniteRunway.Sub(r)
	assert.False(t, ok)
}
