package sensitivity

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fundcast/fundcast/internal/cashflow"
	"github.com/fundcast/fundcast/internal/model"
)

// Dependency is the counterfactual year if one grant never arrived.
type Dependency struct {
	ID                string
	GrantAmount       decimal.Decimal
	PercentageOfTotal decimal.Decimal
	ImpactOnSurplus   decimal.Decimal
	NewSurplus        decimal.Decimal
	NewRunway         model.Runway
	// Critical is set when losing the grant alone leaves a negative surplus.
	Critical bool
}

func (e *Engine) dependency(id string, g model.Grant) Dependency {
	inflows := e.budget.MonthlyInflows
	for i, amt := range g.Timing {
		inflows[i] = inflows[i].Sub(amt)
	}
	f := cashflow.Compute(e.budget.OpeningBalance, inflows, e.budget.MonthlyExpenses)
	surplus := f.YearEndPosition()

	share := decimal.Zero
	if !e.baseline.TotalGrants.IsZero() {
		share = g.Amount.Div(e.baseline.TotalGrants).Mul(hundred)
	}
	return Dependency{
		ID:                id,
		GrantAmount:       g.Amount,
		PercentageOfTotal: share,
		ImpactOnSurplus:   surplus.Sub(e.baseline.Surplus),
		NewSurplus:        surplus,
		NewRunway:         f.YearEndRunway(),
		Critical:          surplus.IsNegative(),
	}
}

// GrantDependency removes each grant's disbursements from the unscaled budget
// in turn.
func (e *Engine) GrantDependency() map[string]Dependency {
	out := make(map[string]Dependency, len(e.budget.Grants))
	for id, g := range e.budget.Grants {
		out[id] = e.dependency(id, g)
	}
	return out
}

// GrantDependencyList is GrantDependency sorted by grant amount, largest
// first, then by id.
func (e *Engine) GrantDependencyList() []Dependency {
	deps := e.GrantDependency()
	out := make([]Dependency, 0, len(deps))
	for _, d := range deps {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].GrantAmount.Cmp(out[j].GrantAmount); c != 0 {
			return c > 0
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CriticalGrants lists the ids of grants whose loss alone turns the surplus
// negative.
func (e *Engine) CriticalGrants() []string {
	var out []string
	for _, d := range e.GrantDependencyList() {
		if d.Critical {
			out = append(out, d.ID)
		}
	}
	return out
}

// Removal summarizes the portfolio with one grant taken out.
type Removal struct {
	ID              string
	RemovedAmount   decimal.Decimal
	NewTotal        decimal.Decimal
	PercentageLost  decimal.Decimal
	OriginalSurplus decimal.Decimal
	NewSurplus      decimal.Decimal
}

// RemoveGrant looks a grant up by id or display name and reports the
// portfolio without it. Unknown names return *budget.GrantNotFoundError.
func (e *Engine) RemoveGrant(name string) (Removal, error) {
	id, g, err := e.grants.Grant(name)
	if err != nil {
		return Removal{}, err
	}
	d := e.dependency(id, g)
	return Removal{
		ID:              id,
		RemovedAmount:   g.Amount,
		NewTotal:        e.baseline.TotalGrants.Sub(g.Amount),
		PercentageLost:  d.PercentageOfTotal,
		OriginalSurplus: e.baseline.Surplus,
		NewSurplus:      d.NewSurplus,
	}, nil
}

// Concentration describes how much the portfolio leans on its largest grant.
type Concentration struct {
	LargestID    string
	LargestGrant decimal.Decimal
	// LargestShare is a fraction of total grant income.
	LargestShare decimal.Decimal
	// Herfindahl is the sum of squared shares, from 1/n (even) to 1 (one grant).
	Herfindahl decimal.Decimal
	// Diversification is 1 - LargestShare.
	Diversification decimal.Decimal
}

// Concentration computes portfolio concentration. An empty portfolio scores
// zero concentration and full diversification.
func (e *Engine) Concentration() Concentration {
	total := e.baseline.TotalGrants
	if total.IsZero() {
		return Concentration{Diversification: one}
	}

	var c Concentration
	for _, id := range e.budget.GrantIDs() {
		amt := e.budget.Grants[id].Amount
		share := amt.Div(total)
		c.Herfindahl = c.Herfindahl.Add(share.Mul(share))
		if amt.GreaterThan(c.LargestGrant) {
			c.LargestID, c.LargestGrant = id, amt
		}
	}
	c.LargestShare = c.LargestGrant.Div(total)
	c.Diversification = one.Sub(c.LargestShare)
	return c
}
