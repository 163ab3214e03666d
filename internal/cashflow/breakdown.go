package cashflow

import (
	"github.com/shopspring/decimal"

	"github.com/fundcast/fundcast/internal/model"
)

// Breakdown splits inflows by source for each month.
type Breakdown struct {
	Grants         model.Monthly
	PartnerRevenue model.Monthly
	Rental         model.Monthly
}

// Total adds the three categories together.
func (b Breakdown) Total() model.Monthly {
	var out model.Monthly
	for i := range out {
		out[i] = b.Grants[i].Add(b.PartnerRevenue[i]).Add(b.Rental[i])
	}
	return out
}

// InflowBreakdown attributes a budget's inflows to grants, partner revenue
// and rental income. The categories need not add up to the budget's monthly
// inflows; the sheet's inflow line also carries items with no schedule.
func InflowBreakdown(b *model.Budget) Breakdown {
	var out Breakdown
	out.Grants = b.GrantTiming()
	for _, p := range b.PartnerRevenue {
		mv := p.Monthly()
		for i := range mv {
			out.PartnerRevenue[i] = out.PartnerRevenue[i].Add(mv[i])
		}
	}
	for _, r := range b.RentalIncome {
		for i := range r.Timing {
			out.Rental[i] = out.Rental[i].Add(r.Timing[i])
		}
	}
	return out
}

// Measure tells a waterfall chart how to draw a step.
type Measure string

const (
	MeasureAbsolute Measure = "absolute"
	MeasureRelative Measure = "relative"
	MeasureTotal    Measure = "total"
)

// WaterfallStep is one bar of a waterfall chart.
type WaterfallStep struct {
	Label   string
	Amount  decimal.Decimal
	Measure Measure
}

// Waterfall returns the opening balance, every month's inflow and outflow as
// relative steps, and the closing balance.
func (f *Forecast) Waterfall() []WaterfallStep {
	steps := make([]WaterfallStep, 0, 2*model.MonthsPerYear+2)
	steps = append(steps, WaterfallStep{Label: "Opening Balance", Amount: f.opening, Measure: MeasureAbsolute})
	for _, p := range f.positions {
		steps = append(steps,
			WaterfallStep{Label: p.Month.String() + " Inflows", Amount: p.Inflow, Measure: MeasureRelative},
			WaterfallStep{Label: p.Month.String() + " Outflows", Amount: p.Outflow.Neg(), Measure: MeasureRelative},
		)
	}
	steps = append(steps, WaterfallStep{Label: "Closing Balance", Amount: f.YearEndPosition(), Measure: MeasureTotal})
	return steps
}
