package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fundcast/fundcast/internal/cashflow"
	"github.com/fundcast/fundcast/internal/report"
	"github.com/fundcast/fundcast/internal/runlog"
)

func newForecastCommand(opts *options) *cobra.Command {
	var waterfall, breakdown bool

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project month-by-month cash positions for the fiscal year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}
			return runForecast(p, waterfall, breakdown)
		},
	}

	cmd.Flags().BoolVar(&waterfall, "waterfall", false, "show the cash waterfall")
	cmd.Flags().BoolVar(&breakdown, "breakdown", false, "show inflows by source")

	return cmd
}

func runForecast(p *project, waterfall, breakdown bool) error {
	fc := cashflow.FromBudget(p.budget)
	lowCash := p.cfg.LowCash()

	p.title(fmt.Sprintf("%s (FY%d)", p.budget.Name, p.budget.FiscalYear))

	tables := []report.Table{report.Positions(p.format, fc.Positions(), lowCash), report.Summary(p.format, fc)}
	if waterfall {
		tables = append(tables, report.Waterfall(p.format, fc.Waterfall()))
	}
	if breakdown {
		tables = append(tables, report.Breakdown(p.format, cashflow.InflowBreakdown(p.budget)))
	}
	if err := p.show(tables...); err != nil {
		return err
	}

	if neg := fc.NegativeMonths(); len(neg) > 0 {
		names := make([]string, len(neg))
		for i, m := range neg {
			names[i] = m.String()
		}
		p.note("Cash goes negative in %s.", strings.Join(names, ", "))
	} else if low := fc.LowCashMonths(lowCash); len(low) > 0 {
		p.note("%d month(s) close below the low-cash threshold of %s.", len(low), report.FormatCurrency(lowCash))
	}

	p.record(runlog.NewEntry("forecast", p.budget.Name, "").WithSurplus(fc.YearEndPosition()))
	return nil
}
