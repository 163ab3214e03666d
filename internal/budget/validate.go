package budget

import (
	"fmt"
	"strings"

	"github.com/fundcast/fundcast/internal/model"
)

// ValidationError describes a single data-quality violation.
type ValidationError struct {
	Invariant   int
	Subject     string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.Subject, e.Description)
}

// Validate checks the data-quality invariants of a budget. Violations do not
// stop the engines from running; callers decide whether to refuse the data.
func Validate(b *model.Budget) []ValidationError {
	var errs []ValidationError

	// Invariant 1: grant timing adds up to the grant amount.
	for _, id := range sortedKeys(b.Grants) {
		g := b.Grants[id]
		if sum := g.Timing.Sum(); !sum.Equal(g.Amount) {
			errs = append(errs, ValidationError{
				Invariant:   1,
				Subject:     "grant " + id,
				Description: fmt.Sprintf("timing sums to %s, amount is %s", sum.StringFixed(2), g.Amount.StringFixed(2)),
			})
		}
	}

	// Invariant 2: grant ids are normalized.
	for _, id := range sortedKeys(b.Grants) {
		if id == "" || NormalizeID(id) != id {
			errs = append(errs, ValidationError{
				Invariant:   2,
				Subject:     fmt.Sprintf("grant %q", id),
				Description: fmt.Sprintf("id must be lowercase with underscores (want %q)", NormalizeID(id)),
			})
		}
	}

	// Invariant 3: no negative amounts.
	if b.OpeningBalance.IsNegative() {
		errs = append(errs, ValidationError{Invariant: 3, Subject: "opening_balance", Description: "must not be negative"})
	}
	for _, m := range model.Months() {
		if b.MonthlyInflows[m].IsNegative() {
			errs = append(errs, ValidationError{Invariant: 3, Subject: "inflow " + m.String(), Description: "must not be negative"})
		}
		if b.MonthlyExpenses[m].IsNegative() {
			errs = append(errs, ValidationError{Invariant: 3, Subject: "expense " + m.String(), Description: "must not be negative"})
		}
	}
	for _, id := range sortedKeys(b.Grants) {
		g := b.Grants[id]
		if g.Amount.IsNegative() {
			errs = append(errs, ValidationError{Invariant: 3, Subject: "grant " + id, Description: "amount must not be negative"})
		}
		for _, m := range model.Months() {
			if g.Timing[m].IsNegative() {
				errs = append(errs, ValidationError{Invariant: 3, Subject: "grant " + id, Description: fmt.Sprintf("%s disbursement must not be negative", m)})
			}
		}
	}

	// Invariant 4: partner streams start no later than they end.
	for _, id := range sortedKeys(b.PartnerRevenue) {
		p := b.PartnerRevenue[id]
		if p.Start != nil && p.End != nil && *p.Start > *p.End {
			errs = append(errs, ValidationError{
				Invariant:   4,
				Subject:     "partner " + id,
				Description: fmt.Sprintf("starts in %s after ending in %s", *p.Start, *p.End),
			})
		}
		if p.Start == nil && p.End != nil {
			errs = append(errs, ValidationError{Invariant: 4, Subject: "partner " + id, Description: "end month without a start month"})
		}
	}

	// Invariant 5: the exchange rate is positive.
	if b.ExchangeRate.Sign() <= 0 {
		errs = append(errs, ValidationError{Invariant: 5, Subject: "exchange_rate", Description: "must be positive"})
	}

	return errs
}

// NormalizeID turns a display name like "Mulago" or "Niete ICT" into a grant id.
func NormalizeID(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
