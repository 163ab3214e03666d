package scenario

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Assumptions are the multipliers a scenario applies to the budget.
type Assumptions struct {
	RevenueMultiplier decimal.Decimal
	ExpenseMultiplier decimal.Decimal
	GrantProbability  decimal.Decimal
}

// Kind identifies a scenario. The set of kinds is closed: Base, Optimistic,
// Pessimistic and Custom are the only implementations.
type Kind interface {
	// Key is the cache key and command-line name.
	Key() string
	// Name is the display name.
	Name() string
	// Defaults are the multipliers used when the caller does not override them.
	Defaults() Assumptions
	sealed()
}

var one = decimal.NewFromInt(1)

func mult(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Base runs the budget as-is.
type Base struct{}

func (Base) Key() string  { return "base" }
func (Base) Name() string { return "Base Case (Budget)" }
func (Base) Defaults() Assumptions {
	return Assumptions{RevenueMultiplier: one, ExpenseMultiplier: one, GrantProbability: one}
}
func (Base) sealed() {}

// Optimistic is +20% revenue and -10% expenses.
type Optimistic struct{}

func (Optimistic) Key() string  { return "optimistic" }
func (Optimistic) Name() string { return "Optimistic (Best Case)" }
func (Optimistic) Defaults() Assumptions {
	return Assumptions{RevenueMultiplier: mult("1.2"), ExpenseMultiplier: mult("0.9"), GrantProbability: one}
}
func (Optimistic) sealed() {}

// Pessimistic is -30% revenue, +15% expenses and a 70% chance grants arrive.
type Pessimistic struct{}

func (Pessimistic) Key() string  { return "pessimistic" }
func (Pessimistic) Name() string { return "Pessimistic (Worst Case)" }
func (Pessimistic) Defaults() Assumptions {
	return Assumptions{RevenueMultiplier: mult("0.7"), ExpenseMultiplier: mult("1.15"), GrantProbability: mult("0.7")}
}
func (Pessimistic) sealed() {}

// Custom carries caller-chosen multipliers. Unset fields default to 1.
type Custom struct {
	RevenueMultiplier decimal.NullDecimal
	ExpenseMultiplier decimal.NullDecimal
	GrantProbability  decimal.NullDecimal
}

func (Custom) Key() string  { return "custom" }
func (Custom) Name() string { return "Custom Scenario" }
func (c Custom) Defaults() Assumptions {
	return Assumptions{
		RevenueMultiplier: orOne(c.RevenueMultiplier),
		ExpenseMultiplier: orOne(c.ExpenseMultiplier),
		GrantProbability:  orOne(c.GrantProbability),
	}
}
func (Custom) sealed() {}

func orOne(v decimal.NullDecimal) decimal.Decimal {
	if v.Valid {
		return v.Decimal
	}
	return one
}

// Standard returns the three canned kinds in display order.
func Standard() []Kind {
	return []Kind{Base{}, Optimistic{}, Pessimistic{}}
}

// ParseKind maps a command-line name to a kind. "custom" yields an empty
// Custom whose multipliers all default to 1.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "base":
		return Base{}, nil
	case "optimistic":
		return Optimistic{}, nil
	case "pessimistic":
		return Pessimistic{}, nil
	case "custom":
		return Custom{}, nil
	default:
		return nil, fmt.Errorf("unknown scenario %q (want base, optimistic, pessimistic or custom)", s)
	}
}

// order ranks kinds for stable output.
func order(key string) int {
	switch key {
	case "base":
		return 0
	case "optimistic":
		return 1
	case "pessimistic":
		return 2
	default:
		return 3
	}
}
