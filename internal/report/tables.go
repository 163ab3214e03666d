package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fundcast/fundcast/internal/budget"
	"github.com/fundcast/fundcast/internal/cashflow"
	"github.com/fundcast/fundcast/internal/model"
	"github.com/fundcast/fundcast/internal/runlog"
	"github.com/fundcast/fundcast/internal/scenario"
	"github.com/fundcast/fundcast/internal/sensitivity"
)

// cashStatus labels a closing balance against the low-cash threshold.
func (f Format) cashStatus(closing, threshold decimal.Decimal) string {
	switch {
	case closing.IsNegative():
		if f == FormatCSV {
			return "negative"
		}
		return Bad("NEGATIVE")
	case closing.LessThan(threshold):
		if f == FormatCSV {
			return "low"
		}
		return Warn("LOW")
	}
	return ""
}

// Positions is the month-by-month cash table.
func Positions(f Format, ps []model.MonthlyPosition, lowCash decimal.Decimal) Table {
	t := Table{
		Title:   "Monthly Cash Position",
		Headers: []string{"Month", "Opening", "Inflows", "Outflows", "Net", "Closing", "Status"},
	}
	for _, p := range ps {
		t.Rows = append(t.Rows, []string{
			p.Month.String(),
			f.Money(p.Opening),
			f.Money(p.Inflow),
			f.Money(p.Outflow),
			f.Delta(p.Net()),
			f.Money(p.Closing),
			f.cashStatus(p.Closing, lowCash),
		})
	}
	return t
}

// Summary is the year-level view of a forecast.
func Summary(f Format, fc *cashflow.Forecast) Table {
	low := fc.MinimumCashMonth()
	return Table{
		Title:   "Year Summary",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Opening balance", f.Money(fc.OpeningBalance())},
			{"Total inflows", f.Money(fc.TotalInflows())},
			{"Total outflows", f.Money(fc.TotalOutflows())},
			{"Net cash flow", f.Delta(fc.NetCashFlow())},
			{"Year-end position", f.Money(fc.YearEndPosition())},
			{"Average monthly burn", f.Money(fc.AverageMonthlyBurn())},
			{"Minimum cash", f.Money(low.Closing)},
			{"Minimum cash month", low.Month.String()},
			{"Year-end runway", f.Runway(fc.YearEndRunway())},
		},
	}
}

// Waterfall lists the opening balance, monthly movements and closing balance.
func Waterfall(f Format, steps []cashflow.WaterfallStep) Table {
	t := Table{Title: "Cash Waterfall", Headers: []string{"Step", "Amount", "Measure"}}
	for _, s := range steps {
		amount := f.Money(s.Amount)
		if s.Measure == cashflow.MeasureRelative {
			amount = f.Delta(s.Amount)
		}
		t.Rows = append(t.Rows, []string{s.Label, amount, string(s.Measure)})
	}
	return t
}

// Breakdown splits inflows by source per month.
func Breakdown(f Format, b cashflow.Breakdown) Table {
	t := Table{
		Title:   "Inflows by Source",
		Headers: []string{"Month", "Grants", "Partner Revenue", "Rental", "Total"},
	}
	total := b.Total()
	for _, m := range model.Months() {
		t.Rows = append(t.Rows, []string{
			m.String(), f.Money(b.Grants[m]), f.Money(b.PartnerRevenue[m]), f.Money(b.Rental[m]), f.Money(total[m]),
		})
	}
	return t
}

// Scenarios compares scenario results side by side.
func Scenarios(f Format, rs []scenario.Result) Table {
	t := Table{
		Title: "Scenario Comparison",
		Headers: []string{"Scenario", "Revenue x", "Expense x", "Grant p", "Inflows", "Expenses",
			"Year-End", "Min Cash", "Min Month", "Runway", "Excluded"},
	}
	for _, r := range rs {
		t.Rows = append(t.Rows, []string{
			r.Name,
			r.Assumptions.RevenueMultiplier.StringFixed(2),
			r.Assumptions.ExpenseMultiplier.StringFixed(2),
			r.Assumptions.GrantProbability.StringFixed(2),
			f.Money(r.TotalInflows),
			f.Money(r.TotalExpenses),
			f.Money(r.YearEndSurplus),
			f.Money(r.MinimumCash),
			r.MinimumCashMonth.String(),
			f.Runway(r.Runway),
			strings.Join(r.ExcludedGrants, " "),
		})
	}
	return t
}

// ClosingBalances is one column of monthly closings per scenario.
func ClosingBalances(f Format, names []string, flows map[string]model.Monthly) Table {
	t := Table{Title: "Closing Balance by Scenario", Headers: append([]string{"Month"}, names...)}
	for _, m := range model.Months() {
		row := []string{m.String()}
		for _, n := range names {
			row = append(row, f.Money(flows[n][m]))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (f Format) runwayDelta(d decimal.NullDecimal) string {
	if !d.Valid {
		if f == FormatCSV {
			return ""
		}
		return "n/a"
	}
	if f == FormatCSV {
		return d.Decimal.StringFixed(2)
	}
	s := d.Decimal.StringFixed(1)
	if d.Decimal.IsPositive() {
		s = "+" + s
	}
	return s + " mo"
}

// Sensitivity lists one row per tested change.
func Sensitivity(f Format, rs []sensitivity.Result) Table {
	title := "Sensitivity"
	if len(rs) > 0 {
		title += ": " + string(rs[0].Variable)
	}
	t := Table{
		Title:   title,
		Headers: []string{"Change", "Base Value", "New Value", "Impact on Surplus", "New Surplus", "Runway Change", "New Runway"},
	}
	for _, r := range rs {
		t.Rows = append(t.Rows, []string{
			f.Percent(r.ChangePct),
			f.Money(r.BaseValue),
			f.Money(r.TestValue),
			f.Delta(r.ImpactOnSurplus),
			f.Money(r.NewSurplus),
			f.runwayDelta(r.ImpactOnRunway),
			f.Runway(r.NewRunway),
		})
	}
	return t
}

// Matrix shows the surplus impact of a ten percent move in each variable.
func Matrix(f Format, rows []sensitivity.MatrixRow) Table {
	t := Table{Title: "Sensitivity Matrix", Headers: []string{"Variable", "-10%", "+10%"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{string(r.Variable), f.Delta(r.Minus10), f.Delta(r.Plus10)})
	}
	return t
}

// BreakEven lists the break-even change for each variable. A missing entry
// renders as "none in range".
func BreakEven(f Format, vars []sensitivity.Variable, pcts map[sensitivity.Variable]decimal.Decimal) Table {
	t := Table{Title: "Break-Even Points", Headers: []string{"Variable", "Change to Zero Surplus"}}
	for _, v := range vars {
		cell := "none in range"
		if f == FormatCSV {
			cell = ""
		}
		if p, ok := pcts[v]; ok {
			cell = f.Percent(p)
		}
		t.Rows = append(t.Rows, []string{string(v), cell})
	}
	return t
}

// Dependencies lists the counterfactual year without each grant.
func Dependencies(f Format, deps []sensitivity.Dependency) Table {
	t := Table{
		Title:   "Grant Dependency",
		Headers: []string{"Grant", "Amount", "Share", "Impact on Surplus", "New Surplus", "New Runway", "Critical"},
	}
	for _, d := range deps {
		critical := "no"
		if d.Critical {
			critical = "yes"
			if f != FormatCSV {
				critical = Bad("YES")
			}
		}
		t.Rows = append(t.Rows, []string{
			d.ID,
			f.Money(d.GrantAmount),
			f.Percent(d.PercentageOfTotal),
			f.Delta(d.ImpactOnSurplus),
			f.Money(d.NewSurplus),
			f.Runway(d.NewRunway),
			critical,
		})
	}
	return t
}

// Removal summarizes the portfolio after one grant is removed.
func Removal(f Format, r sensitivity.Removal) Table {
	return Table{
		Title:   "Without " + r.ID,
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Removed amount", f.Money(r.RemovedAmount)},
			{"Remaining grant income", f.Money(r.NewTotal)},
			{"Share of grants lost", f.Percent(r.PercentageLost)},
			{"Original surplus", f.Money(r.OriginalSurplus)},
			{"New surplus", f.Money(r.NewSurplus)},
		},
	}
}

// Concentration reports portfolio concentration metrics.
func Concentration(f Format, c sensitivity.Concentration) Table {
	return Table{
		Title:   "Grant Concentration",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Largest grant", c.LargestID + " " + f.Money(c.LargestGrant)},
			{"Largest share", f.Share(c.LargestShare)},
			{"Herfindahl index", c.Herfindahl.StringFixed(4)},
			{"Diversification score", f.Share(c.Diversification)},
		},
	}
}

// ExchangeRates shows the surplus reprojected into local currency.
func ExchangeRates(f Format, local string, rs []sensitivity.FXResult) Table {
	t := Table{
		Title:   "Exchange Rate Sensitivity",
		Headers: []string{"Rate", "Change", "Surplus", "Surplus (" + local + ")", "Change (" + local + ")"},
	}
	for _, r := range rs {
		t.Rows = append(t.Rows, []string{
			r.Rate.StringFixed(2),
			f.Percent(r.ChangeFromBasePct),
			f.Money(r.Surplus),
			FormatNumber(r.LocalSurplus.Round(0).IntPart()),
			FormatNumber(r.LocalChange.Round(0).IntPart()),
		})
	}
	if f == FormatCSV {
		for i, r := range rs {
			t.Rows[i][3] = r.LocalSurplus.StringFixed(2)
			t.Rows[i][4] = r.LocalChange.StringFixed(2)
		}
	}
	return t
}

// Delay summarizes inflows arriving late.
func Delay(f Format, d sensitivity.Delay) Table {
	names := make([]string, len(d.NegativeMonths))
	for i, m := range d.NegativeMonths {
		names[i] = m.String()
	}
	negative := strings.Join(names, " ")
	if negative == "" && f != FormatCSV {
		negative = "none"
	}
	return Table{
		Title:   "Revenue Delay: " + strconv.Itoa(d.MonthsDelayed) + " month(s)",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Revenue lost to next year", f.Money(d.LostRevenue)},
			{"New total inflows", f.Money(d.NewTotalInflows)},
			{"New year-end surplus", f.Money(d.NewSurplus)},
			{"Impact on surplus", f.Delta(d.ImpactOnSurplus)},
			{"Minimum cash", f.Money(d.MinimumCash)},
			{"Minimum cash month", d.MinimumCashMonth.String()},
			{"Negative months", negative},
		},
	}
}

// FundingGap prices growth to a student target.
func FundingGap(f Format, g sensitivity.FundingGap) Table {
	return Table{
		Title:   "Growth Funding Gap",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Current students", FormatNumber(int64(g.CurrentStudents))},
			{"Target students", FormatNumber(int64(g.TargetStudents))},
			{"Additional students", FormatNumber(int64(g.AdditionalStudents))},
			{"Cost per student per year", g.CostPerStudent.StringFixed(2)},
			{"Additional funding per year", f.Money(g.AdditionalFunding)},
		},
	}
}

// Drifts compares the sheet's reported totals with computed ones.
func Drifts(f Format, ds []budget.Drift) Table {
	t := Table{Title: "Reported vs Computed", Headers: []string{"Field", "Reported", "Computed", "Difference"}}
	for _, d := range ds {
		t.Rows = append(t.Rows, []string{d.Field, f.Money(d.Reported), f.Money(d.Computed), f.Delta(d.Difference)})
	}
	return t
}

// Violations lists budget validation failures.
func Violations(errs []budget.ValidationError) Table {
	t := Table{Title: "Validation Errors", Headers: []string{"Invariant", "Subject", "Description"}}
	for _, e := range errs {
		t.Rows = append(t.Rows, []string{strconv.Itoa(e.Invariant), e.Subject, e.Description})
	}
	return t
}

// Runs lists run-log entries.
func Runs(f Format, es []runlog.Entry) Table {
	t := Table{Title: "Recent Runs", Headers: []string{"Time", "Command", "Subject", "Details", "Surplus"}}
	for _, e := range es {
		surplus := ""
		if e.Surplus.Valid {
			surplus = f.Money(e.Surplus.Decimal)
		}
		t.Rows = append(t.Rows, []string{
			e.Timestamp.Format(time.RFC3339),
			e.Command,
			e.Subject,
			e.Details,
			surplus,
		})
	}
	return t
}
