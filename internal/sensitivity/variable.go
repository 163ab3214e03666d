package sensitivity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownVariable is returned for a variable name outside revenue,
// expenses and grant_total.
var ErrUnknownVariable = errors.New("unknown variable")

// Variable is a budget quantity whose change is analyzed.
type Variable string

const (
	// Revenue scales every monthly inflow.
	Revenue Variable = "revenue"
	// Expenses scales every monthly expense.
	Expenses Variable = "expenses"
	// GrantTotal scales only the grant-sourced part of each month's inflow.
	GrantTotal Variable = "grant_total"
)

// Variables returns every variable in display order.
func Variables() []Variable {
	return []Variable{Revenue, Expenses, GrantTotal}
}

// ParseVariable validates a variable name.
func ParseVariable(s string) (Variable, error) {
	v := Variable(strings.ToLower(strings.TrimSpace(s)))
	if err := v.validate(); err != nil {
		return "", err
	}
	return v, nil
}

func (v Variable) validate() error {
	switch v {
	case Revenue, Expenses, GrantTotal:
		return nil
	}
	return fmt.Errorf("%w: %q (want revenue, expenses or grant_total)", ErrUnknownVariable, string(v))
}

// increasing reports whether surplus rises with the variable.
func (v Variable) increasing() bool {
	return v != Expenses
}
