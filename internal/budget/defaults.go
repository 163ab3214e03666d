package budget

import (
	"github.com/shopspring/decimal"

	"github.com/fundcast/fundcast/internal/model"
)

// DefaultYear is the fiscal year of the built-in dataset.
const DefaultYear = 2026

// Default returns the built-in budget. Only the DefaultYear figures ship with
// the binary; every year gets them.
func Default(year int) *model.Budget {
	return budget2026()
}

// HasDefault reports whether the built-in figures belong to year.
func HasDefault(year int) bool { return year == DefaultYear }

func usd(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func timing(amounts map[model.Month]int64) model.Monthly {
	var mv model.Monthly
	for m, v := range amounts {
		mv[m] = usd(v)
	}
	return mv
}

func monthPtr(m model.Month) *model.Month { return &m }

func budget2026() *model.Budget {
	return &model.Budget{
		Name:           "Taleemabad Budget 2026",
		FiscalYear:     2026,
		OpeningBalance: usd(723248),
		ExchangeRate:   usd(283),
		MonthlyInflows: model.Monthly{
			usd(206953), usd(945846), usd(1123), usd(897182), usd(1123), usd(223066),
			usd(25313), usd(18841), usd(18841), usd(25313), usd(518841), usd(218841),
		},
		MonthlyExpenses: model.Monthly{
			usd(257913), usd(222948), usd(233955), usd(250107), usd(213767), usd(212442),
			usd(192577), usd(205969), usd(208570), usd(188213), usd(187948), usd(184945),
		},
		Grants: map[string]model.Grant{
			"prevail_general_ops": {
				Amount: usd(500000),
				Timing: timing(map[model.Month]int64{model.Feb: 250000, model.Nov: 250000}),
				Notes:  "General operations to head office",
			},
			"prevail_implementation": {
				Amount: usd(250000),
				Timing: timing(map[model.Month]int64{model.Feb: 250000}),
				Notes:  "Implementation budget",
			},
			"prevail_data_collection": {
				Amount: usd(200000),
				Timing: timing(map[model.Month]int64{model.Feb: 200000}),
				Notes:  "Third-party data collection",
			},
			"dovetail": {
				Amount: usd(400000),
				Timing: timing(map[model.Month]int64{model.Jan: 200000, model.Dec: 200000}),
				Notes:  "Grant agreement",
			},
			"mulago": {
				Amount: usd(950000),
				Timing: timing(map[model.Month]int64{model.Apr: 700000, model.Nov: 250000}),
				Notes:  "Grant agreement",
			},
			"niete_ict": {
				Amount: usd(638535),
				Timing: timing(map[model.Month]int64{model.Feb: 244723, model.Apr: 189587, model.Jun: 204225}),
				Notes:  "Government program revenue per agreement",
			},
		},
		PartnerRevenue: map[string]model.PartnerStream{
			"moawin":       {MonthlyAmount: usd(1123), Start: monthPtr(model.Jan), End: monthPtr(model.Dec), Schools: 179, Students: 7024},
			"muslim_hands": {Notes: "Not expected this year"},
			"pen":          {MonthlyAmount: usd(1279), Start: monthPtr(model.Jun), End: monthPtr(model.Dec), Schools: 200, Students: 8000},
			"akhuwat":      {MonthlyAmount: usd(1599), Start: monthPtr(model.Jun), End: monthPtr(model.Dec), Schools: 250, Students: 10000},
			"world_bank":   {MonthlyAmount: usd(12367), Start: monthPtr(model.Jun), End: monthPtr(model.Dec), Schools: 500},
			"sindh":        {MonthlyAmount: usd(2473), Start: monthPtr(model.Jun), End: monthPtr(model.Dec), Schools: 100},
		},
		RentalIncome: map[string]model.Rental{
			"child_life_tenant": {
				AnnualAmount: usd(25246),
				Timing:       timing(map[model.Month]int64{model.Jan: 5830, model.Apr: 6472, model.Jul: 6472, model.Oct: 6472}),
			},
		},
		UnitEconomics: map[string]model.Program{
			"niete_ict":          {Students: 90000, CostPerChild: decimal.RequireFromString("10.62")},
			"prevail_rawalpindi": {Students: 37000, CostPerChild: decimal.RequireFromString("3.53")},
		},
		Reported: model.ReportedTotals{
			TotalInflows:     usd(3101282),
			TotalExpenses:    usd(2559356),
			ProjectedSurplus: usd(1265175),
			TotalGrantIncome: usd(2300000),
		},
	}
}
