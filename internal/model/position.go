package model

import (
	"github.com/shopspring/decimal"
)

// MonthlyPosition is the cash position for one month of a forecast.
type MonthlyPosition struct {
	Month   Month
	Opening decimal.Decimal
	Inflow  decimal.Decimal
	Outflow decimal.Decimal
	Closing decimal.Decimal
}

// Net returns inflow minus outflow.
func (p MonthlyPosition) Net() decimal.Decimal {
	return p.Inflow.Sub(p.Outflow)
}

// Runway is months of cash at a burn rate. Infinite is set when the burn rate
// is zero or negative; Months is then meaningless.
type Runway struct {
	Months   decimal.Decimal
	Infinite bool
}

// InfiniteRunway is the sentinel for a non-positive burn rate.
var InfiniteRunway = Runway{Infinite: true}

// RunwayFor divides cash by burn, returning InfiniteRunway when burn <= 0.
func RunwayFor(cash, burn decimal.Decimal) Runway {
	if burn.Sign() <= 0 {
		return InfiniteRunway
	}
	return Runway{Months: cash.Div(burn)}
}

// Sub returns r - other. ok is false when either side is infinite.
func (r Runway) Sub(other Runway) (delta decimal.Decimal, ok bool) {
	if r.Infinite || other.Infinite {
		return decimal.Zero, false
	}
	return r.Months.Sub(other.Months), true
}

// String formats the runway to one decimal place, or "inf".
func (r Runway) String() string {
	if r.Infinite {
		return "inf"
	}
	return r.Months.StringFixed(1)
}
