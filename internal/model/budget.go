package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Budget is one fiscal year's financial facts. It is loaded once and treated
// as read-only by every engine.
type Budget struct {
	Name            string
	FiscalYear      int
	OpeningBalance  decimal.Decimal
	ExchangeRate    decimal.Decimal // local currency units per base unit
	MonthlyInflows  Monthly
	MonthlyExpenses Monthly
	Grants          map[string]Grant
	PartnerRevenue  map[string]PartnerStream
	RentalIncome    map[string]Rental
	UnitEconomics   map[string]Program
	Reported        ReportedTotals
}

// Grant is a named grant and the months its funds arrive in.
type Grant struct {
	Amount decimal.Decimal
	Timing Monthly
	Notes  string
}

// DisbursementMonths returns the months with a non-zero disbursement.
func (g Grant) DisbursementMonths() []Month {
	var ms []Month
	for i, v := range g.Timing {
		if !v.IsZero() {
			ms = append(ms, Month(i))
		}
	}
	return ms
}

// PartnerStream is recurring partner revenue paid monthly from Start through End.
type PartnerStream struct {
	MonthlyAmount decimal.Decimal
	Start         *Month // nil = not contracted this year
	End           *Month // nil = through December
	Schools       int
	Students      int
	Notes         string
}

// Monthly expands the stream into per-month amounts.
func (p PartnerStream) Monthly() Monthly {
	var out Monthly
	if p.Start == nil || p.MonthlyAmount.IsZero() {
		return out
	}
	end := Dec
	if p.End != nil {
		end = *p.End
	}
	for m := *p.Start; m <= end; m++ {
		out[m] = p.MonthlyAmount
	}
	return out
}

// Rental is rental income with its own payment schedule.
type Rental struct {
	AnnualAmount decimal.Decimal
	Timing       Monthly
}

// Program is the unit economics of one delivery program.
type Program struct {
	Students     int
	CostPerChild decimal.Decimal // per child per year
}

// ReportedTotals are figures typed into the source sheet by hand. They may
// drift from what the monthly figures add up to and are never used for
// computation.
type ReportedTotals struct {
	TotalInflows     decimal.Decimal
	TotalExpenses    decimal.Decimal
	ProjectedSurplus decimal.Decimal
	TotalGrantIncome decimal.Decimal
}

// TotalGrantIncome sums every grant's amount.
func (b *Budget) TotalGrantIncome() decimal.Decimal {
	total := decimal.Zero
	for _, g := range b.Grants {
		total = total.Add(g.Amount)
	}
	return total
}

// GrantIDs returns grant identifiers in sorted order.
func (b *Budget) GrantIDs() []string {
	ids := make([]string, 0, len(b.Grants))
	for id := range b.Grants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GrantTiming sums the disbursement timing of all grants.
func (b *Budget) GrantTiming() Monthly {
	var out Monthly
	for _, g := range b.Grants {
		for i, v := range g.Timing {
			out[i] = out[i].Add(v)
		}
	}
	return out
}

// TotalStudents sums students across all programs.
func (b *Budget) TotalStudents() int {
	total := 0
	for _, p := range b.UnitEconomics {
		total += p.Students
	}
	return total
}
