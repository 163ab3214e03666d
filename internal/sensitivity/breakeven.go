package sensitivity

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNoBreakEven is returned when surplus does not cross zero inside the
// search range.
var ErrNoBreakEven = errors.New("no break-even point in range")

// Method selects how BreakEven solves for the zero-surplus change.
type Method string

const (
	// ClosedForm inverts the linear surplus equation exactly.
	ClosedForm Method = "closed_form"
	// Bisection narrows the range until it is under Tolerance wide.
	Bisection Method = "bisection"
)

// ParseMethod validates a method name. Empty means ClosedForm.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", ClosedForm:
		return ClosedForm, nil
	case Bisection:
		return Bisection, nil
	}
	return "", fmt.Errorf("unknown break-even method %q (want closed_form or bisection)", s)
}

// Range bounds a break-even search in percent.
type Range struct {
	Min decimal.Decimal
	Max decimal.Decimal
	// Tolerance is the bisection stopping width. Zero means DefaultTolerance.
	Tolerance decimal.Decimal
}

// DefaultTolerance is the bisection stopping width in percentage points.
var DefaultTolerance = decimal.RequireFromString("0.1")

// MinTolerance is the narrowest bisection stopping width accepted. Division
// rounds to decimal.DivisionPrecision digits, so narrower intervals stop
// shrinking.
var MinTolerance = decimal.New(1, -9)

// maxBisections caps the bisection loop.
const maxBisections = 200

// DefaultSearch is [-50, 50].
var DefaultSearch = Range{Min: decimal.NewFromInt(-50), Max: decimal.NewFromInt(50), Tolerance: DefaultTolerance}

// BreakEven returns the percentage change in v that brings year-end surplus
// to zero.
func (e *Engine) BreakEven(v Variable, r Range, method Method) (decimal.Decimal, error) {
	if err := v.validate(); err != nil {
		return decimal.Zero, err
	}
	if r.Min.GreaterThan(r.Max) {
		return decimal.Zero, fmt.Errorf("break-even range [%s, %s] is inverted", r.Min, r.Max)
	}
	if r.Tolerance.IsNegative() || (r.Tolerance.IsPositive() && r.Tolerance.LessThan(MinTolerance)) {
		return decimal.Zero, fmt.Errorf("break-even tolerance %s must be at least %s", r.Tolerance, MinTolerance)
	}
	switch method {
	case "", ClosedForm:
		return e.closedForm(v, r)
	case Bisection:
		return e.bisect(v, r)
	}
	return decimal.Zero, fmt.Errorf("unknown break-even method %q", method)
}

// closedForm solves surplus + base*pct/100 = 0 (or minus, for expenses).
func (e *Engine) closedForm(v Variable, r Range) (decimal.Decimal, error) {
	var quantity decimal.Decimal
	switch v {
	case Revenue:
		quantity = e.baseline.TotalInflows
	case Expenses:
		quantity = e.baseline.TotalExpenses
	case GrantTotal:
		quantity = e.budget.GrantTiming().Sum()
	}
	if quantity.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s is zero", ErrNoBreakEven, v)
	}

	pct := e.baseline.Surplus.Div(quantity).Mul(hundred)
	if v.increasing() {
		pct = pct.Neg()
	}
	if pct.LessThan(r.Min) || pct.GreaterThan(r.Max) {
		return decimal.Zero, fmt.Errorf("%w: %s breaks even at %s%%, outside [%s, %s]",
			ErrNoBreakEven, v, pct.StringFixed(2), r.Min, r.Max)
	}
	return pct, nil
}

func (e *Engine) surplusAt(v Variable, pct decimal.Decimal) decimal.Decimal {
	res, _ := e.Analyze(v, pct)
	return res.NewSurplus
}

func (e *Engine) bisect(v Variable, r Range) (decimal.Decimal, error) {
	tol := r.Tolerance
	if tol.Sign() <= 0 {
		tol = DefaultTolerance
	}
	two := decimal.NewFromInt(2)

	// Surplus must be non-positive at the low-surplus end and non-negative
	// at the other.
	lo, hi := e.surplusAt(v, r.Min), e.surplusAt(v, r.Max)
	if !v.increasing() {
		lo, hi = hi, lo
	}
	if lo.IsPositive() || hi.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s does not change sign in [%s, %s]", ErrNoBreakEven, v, r.Min, r.Max)
	}

	low, high := r.Min, r.Max
	for i := 0; i < maxBisections && high.Sub(low).GreaterThan(tol); i++ {
		mid := low.Add(high).Div(two)
		above := e.surplusAt(v, mid).IsPositive()
		if above == v.increasing() {
			high = mid
		} else {
			low = mid
		}
	}
	return low.Add(high).Div(two), nil
}
