// Package sensitivity answers what-if questions about a budget: how surplus
// and runway respond to a change in one variable, where surplus breaks even,
// and how much the year depends on each grant.
package sensitivity

import (
	"github.com/shopspring/decimal"

	"github.com/fundcast/fundcast/internal/budget"
	"github.com/fundcast/fundcast/internal/cashflow"
	"github.com/fundcast/fundcast/internal/model"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// DefaultRange is the change grid used when Table is given no percentages.
var DefaultRange = pcts(-30, -20, -10, 0, 10, 20, 30)

func pcts(vs ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vs))
	for i, v := range vs {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

// Baseline is the unmodified budget's outcome. Every result is measured
// against it.
type Baseline struct {
	Surplus       decimal.Decimal
	Runway        model.Runway
	TotalInflows  decimal.Decimal
	TotalExpenses decimal.Decimal
	TotalGrants   decimal.Decimal
}

// Result is the effect of one percentage change in one variable.
type Result struct {
	Variable        Variable
	BaseValue       decimal.Decimal
	TestValue       decimal.Decimal
	ChangePct       decimal.Decimal
	ImpactOnSurplus decimal.Decimal
	NewSurplus      decimal.Decimal
	// ImpactOnRunway is null when either runway is infinite.
	ImpactOnRunway decimal.NullDecimal
	NewRunway      model.Runway
}

// Engine runs sensitivity analyses against one read-only budget. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	budget   *model.Budget
	grants   *budget.Service
	base     *cashflow.Forecast
	baseline Baseline
}

// NewEngine computes the baseline once from the unmodified budget.
func NewEngine(b *model.Budget) *Engine {
	f := cashflow.FromBudget(b)
	return &Engine{
		budget: b,
		grants: budget.NewService(b),
		base:   f,
		baseline: Baseline{
			Surplus:       f.YearEndPosition(),
			Runway:        f.YearEndRunway(),
			TotalInflows:  f.TotalInflows(),
			TotalExpenses: f.TotalOutflows(),
			TotalGrants:   b.TotalGrantIncome(),
		},
	}
}

// Baseline returns the unmodified budget's outcome.
func (e *Engine) Baseline() Baseline { return e.baseline }

// Analyze applies a change of pct percent to one variable.
func (e *Engine) Analyze(v Variable, pct decimal.Decimal) (Result, error) {
	if err := v.validate(); err != nil {
		return Result{}, err
	}
	m := one.Add(pct.Div(hundred))
	inflows, expenses := e.budget.MonthlyInflows, e.budget.MonthlyExpenses

	var baseValue decimal.Decimal
	switch v {
	case Revenue:
		inflows = inflows.Scale(m)
		baseValue = e.baseline.TotalInflows
	case Expenses:
		expenses = expenses.Scale(m)
		baseValue = e.baseline.TotalExpenses
	case GrantTotal:
		delta := m.Sub(one)
		for _, g := range e.budget.Grants {
			for i, amt := range g.Timing {
				inflows[i] = inflows[i].Add(amt.Mul(delta))
			}
		}
		baseValue = e.baseline.TotalGrants
	}

	f := cashflow.Compute(e.budget.OpeningBalance, inflows, expenses)
	return e.result(v, pct, baseValue, baseValue.Mul(m), f), nil
}

func (e *Engine) result(v Variable, pct, baseValue, testValue decimal.Decimal, f *cashflow.Forecast) Result {
	surplus := f.YearEndPosition()
	runway := f.YearEndRunway()
	r := Result{
		Variable:        v,
		BaseValue:       baseValue,
		TestValue:       testValue,
		ChangePct:       pct,
		ImpactOnSurplus: surplus.Sub(e.baseline.Surplus),
		NewSurplus:      surplus,
		NewRunway:       runway,
	}
	if d, ok := runway.Sub(e.baseline.Runway); ok {
		r.ImpactOnRunway = decimal.NewNullDecimal(d)
	}
	return r
}

// Table runs Analyze for each percentage. A nil slice uses DefaultRange.
func (e *Engine) Table(v Variable, changes []decimal.Decimal) ([]Result, error) {
	if changes == nil {
		changes = DefaultRange
	}
	out := make([]Result, 0, len(changes))
	for _, pct := range changes {
		r, err := e.Analyze(v, pct)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// MatrixRow is the surplus impact of a ten percent move either way.
type MatrixRow struct {
	Variable Variable
	Minus10  decimal.Decimal
	Plus10   decimal.Decimal
}

// Matrix returns one row per variable.
func (e *Engine) Matrix() []MatrixRow {
	ten := decimal.NewFromInt(10)
	out := make([]MatrixRow, 0, 3)
	for _, v := range Variables() {
		down, _ := e.Analyze(v, ten.Neg())
		up, _ := e.Analyze(v, ten)
		out = append(out, MatrixRow{Variable: v, Minus10: down.ImpactOnSurplus, Plus10: up.ImpactOnSurplus})
	}
	return out
}
