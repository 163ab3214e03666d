// Package scenario runs the cash-flow forecast under named or custom sets of
// revenue, expense and grant assumptions.
package scenario

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fundcast/fundcast/internal/budget"
	"github.com/fundcast/fundcast/internal/cashflow"
	"github.com/fundcast/fundcast/internal/model"
)

// Params selects a scenario kind and optional overrides. Overrides always
// win over the kind's defaults, Custom included.
type Params struct {
	Kind              Kind // nil means Base
	RevenueMultiplier decimal.NullDecimal
	ExpenseMultiplier decimal.NullDecimal
	GrantProbability  decimal.NullDecimal
	ExcludedGrants    []string
}

// Result is the outcome of one scenario run. It is never modified after the
// engine returns it.
type Result struct {
	Kind             Kind
	Name             string
	TotalInflows     decimal.Decimal
	TotalExpenses    decimal.Decimal
	YearEndSurplus   decimal.Decimal
	MinimumCash      decimal.Decimal
	MinimumCashMonth model.Month
	Runway           model.Runway
	Assumptions      Assumptions
	ExcludedGrants   []string
	Positions        []model.MonthlyPosition
}

// Comparison is the summary row for one scenario.
type Comparison struct {
	TotalInflows     decimal.Decimal
	TotalExpenses    decimal.Decimal
	YearEndSurplus   decimal.Decimal
	MinimumCash      decimal.Decimal
	MinimumCashMonth model.Month
	Runway           model.Runway
}

// Engine runs scenarios against one budget and remembers the latest result
// per kind. It is safe for concurrent use.
type Engine struct {
	budget *model.Budget
	grants *budget.Service

	mu      sync.Mutex
	results map[string]Result
}

// NewEngine creates an Engine over a read-only budget.
func NewEngine(b *model.Budget) *Engine {
	return &Engine{
		budget:  b,
		grants:  budget.NewService(b),
		results: make(map[string]Result),
	}
}

// Evaluate computes a scenario without touching the cache.
func (e *Engine) Evaluate(p Params) (Result, error) {
	kind := p.Kind
	if kind == nil {
		kind = Base{}
	}

	a := kind.Defaults()
	if p.RevenueMultiplier.Valid {
		a.RevenueMultiplier = p.RevenueMultiplier.Decimal
	}
	if p.ExpenseMultiplier.Valid {
		a.ExpenseMultiplier = p.ExpenseMultiplier.Decimal
	}
	if p.GrantProbability.Valid {
		a.GrantProbability = p.GrantProbability.Decimal
	}

	inflows := e.budget.MonthlyInflows.Scale(a.RevenueMultiplier.Mul(a.GrantProbability))
	expenses := e.budget.MonthlyExpenses.Scale(a.ExpenseMultiplier)

	// Excluded grants come off at their nominal amounts, after scaling.
	var excluded []string
	seen := make(map[string]bool)
	for _, name := range p.ExcludedGrants {
		id, g, err := e.grants.Grant(name)
		if err != nil {
			return Result{}, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		excluded = append(excluded, id)
		for i := range inflows {
			inflows[i] = inflows[i].Sub(g.Timing[i])
		}
	}

	f := cashflow.Compute(e.budget.OpeningBalance, inflows, expenses)
	low := f.MinimumCashMonth()

	return Result{
		Kind:             kind,
		Name:             kind.Name(),
		TotalInflows:     f.TotalInflows(),
		TotalExpenses:    f.TotalOutflows(),
		YearEndSurplus:   f.YearEndPosition(),
		MinimumCash:      low.Closing,
		MinimumCashMonth: low.Month,
		Runway:           f.YearEndRunway(),
		Assumptions:      a,
		ExcludedGrants:   excluded,
		Positions:        f.Positions(),
	}, nil
}

// Run evaluates a scenario and caches the result under its kind.
func (e *Engine) Run(p Params) (Result, error) {
	r, err := e.Evaluate(p)
	if err != nil {
		return Result{}, err
	}
	e.mu.Lock()
	e.results[r.Kind.Key()] = r
	e.mu.Unlock()
	return r, nil
}

// RunAll reruns base, optimistic and pessimistic. A cached custom result is
// kept.
func (e *Engine) RunAll() []Result {
	out := make([]Result, 0, 3)
	for _, k := range Standard() {
		// Standard kinds exclude no grants, so Run cannot fail.
		r, _ := e.Run(Params{Kind: k})
		out = append(out, r)
	}
	return out
}

// Results returns the cached results in display order.
func (e *Engine) Results() []Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Result, 0, len(e.results))
	for _, r := range e.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return order(out[i].Kind.Key()) < order(out[j].Kind.Key()) })
	return out
}

func (e *Engine) cachedOrAll() []Result {
	rs := e.Results()
	if len(rs) == 0 {
		e.RunAll()
		rs = e.Results()
	}
	return rs
}

// Compare summarizes every cached scenario keyed by display name, running the
// standard three first if nothing has been run yet.
func (e *Engine) Compare() map[string]Comparison {
	out := make(map[string]Comparison)
	for _, r := range e.cachedOrAll() {
		out[r.Name] = Comparison{
			TotalInflows:     r.TotalInflows,
			TotalExpenses:    r.TotalExpenses,
			YearEndSurplus:   r.YearEndSurplus,
			MinimumCash:      r.MinimumCash,
			MinimumCashMonth: r.MinimumCashMonth,
			Runway:           r.Runway,
		}
	}
	return out
}

// CashFlows returns each cached scenario's monthly closing balances keyed by
// display name.
func (e *Engine) CashFlows() map[string]model.Monthly {
	out := make(map[string]model.Monthly)
	for _, r := range e.cachedOrAll() {
		var closing model.Monthly
		for _, p := range r.Positions {
			closing[p.Month] = p.Closing
		}
		out[r.Name] = closing
	}
	return out
}

// SimulateGrantLoss runs a custom scenario with one grant removed.
func (e *Engine) SimulateGrantLoss(grant string) (Result, error) {
	return e.Run(Params{Kind: Custom{}, ExcludedGrants: []string{grant}})
}
