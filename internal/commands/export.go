package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fundcast/fundcast/internal/budget"
	"github.com/fundcast/fundcast/internal/cashflow"
	"github.com/fundcast/fundcast/internal/config"
	"github.com/fundcast/fundcast/internal/report"
	"github.com/fundcast/fundcast/internal/runlog"
	"github.com/fundcast/fundcast/internal/scenario"
	"github.com/fundcast/fundcast/internal/sensitivity"
)

func newExportWorkbookCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write the forecast, scenarios and sensitivity analyses to a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
				return fmt.Errorf("export path must end in .xlsx, got %q", path)
			}
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			tables, err := analysisTables(p)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := report.WriteWorkbook(&buf, tables); err != nil {
				return err
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(p.out, "Wrote %d sheets to %s\n", len(tables), path)

			p.record(runlog.NewEntry("export", filepath.Base(path), fmt.Sprintf("%d sheets", len(tables))).
				WithSurplus(cashflow.FromBudget(p.budget).YearEndPosition()))
			return nil
		},
	}
}

// analysisTables runs every analysis with the project's settings. Cells hold
// exact figures.
func analysisTables(p *project) ([]report.Table, error) {
	const f = report.FormatCSV
	fc := cashflow.FromBudget(p.budget)

	se := scenario.NewEngine(p.budget)
	results := se.RunAll()
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}

	tables := []report.Table{
		report.Positions(f, fc.Positions(), p.cfg.LowCash()),
		report.Summary(f, fc),
		report.Breakdown(f, cashflow.InflowBreakdown(p.budget)),
		report.Scenarios(f, results),
		report.ClosingBalances(f, names, se.CashFlows()),
	}

	e := sensitivity.NewEngine(p.budget)
	for _, v := range sensitivity.Variables() {
		rs, err := e.Table(v, config.Decimals(p.cfg.Sensitivity.RangePct))
		if err != nil {
			return nil, err
		}
		tables = append(tables, report.Sensitivity(f, rs))
	}
	tables = append(tables, report.Matrix(f, e.Matrix()))

	m, r, err := searchSettings(p.cfg.Sensitivity.BreakEven)
	if err != nil {
		return nil, err
	}
	found, err := findBreakEvens(e, sensitivity.Variables(), r, m)
	if err != nil {
		return nil, err
	}
	tables = append(tables, report.BreakEven(f, sensitivity.Variables(), found))

	var rates []decimal.Decimal
	if steps := p.cfg.Sensitivity.ExchangeRateSteps; len(steps) > 0 {
		rates = e.RatesFromSteps(config.Decimals(steps))
	}
	tables = append(tables,
		report.Dependencies(f, e.GrantDependencyList()),
		report.Concentration(f, e.Concentration()),
		report.ExchangeRates(f, p.cfg.Currency.Local, e.ExchangeRate(rates)),
	)

	if drifts := budget.Reconcile(p.budget); len(drifts) > 0 {
		tables = append(tables, report.Drifts(f, drifts))
	}
	return tables, nil
}
