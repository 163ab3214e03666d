package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fundcast/fundcast/internal/config"
	"github.com/fundcast/fundcast/internal/report"
	"github.com/fundcast/fundcast/internal/runlog"
	"github.com/fundcast/fundcast/internal/sensitivity"
)

func newSensitivityCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "Measure how the year-end surplus responds to changes",
	}
	cmd.AddCommand(
		newSensitivityAnalyzeCommand(opts),
		newSensitivityTableCommand(opts),
		newBreakEvenCommand(opts),
		newMatrixCommand(opts),
		newFXCommand(opts),
		newDelayCommand(opts),
		newFundingGapCommand(opts),
	)
	return cmd
}

func newSensitivityAnalyzeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <revenue|expenses|grant_total> <change-pct>",
		Short: "Apply one percentage change to a variable",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := sensitivity.ParseVariable(args[0])
			if err != nil {
				return err
			}
			pct, err := parseDecimalArg("change", args[1])
			if err != nil {
				return err
			}
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			r, err := sensitivity.NewEngine(p.budget).Analyze(v, pct)
			if err != nil {
				return err
			}
			if err := p.show(report.Sensitivity(p.format, []sensitivity.Result{r})); err != nil {
				return err
			}

			p.record(runlog.NewEntry("sensitivity analyze", string(v), "change="+pct.String()+"%").WithSurplus(r.NewSurplus))
			return nil
		},
	}
}

func newSensitivityTableCommand(opts *options) *cobra.Command {
	var changes []float64

	cmd := &cobra.Command{
		Use:   "table <revenue|expenses|grant_total>",
		Short: "Tabulate a variable across a range of percentage changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := sensitivity.ParseVariable(args[0])
			if err != nil {
				return err
			}
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("range") {
				changes = p.cfg.Sensitivity.RangePct
			}

			rs, err := sensitivity.NewEngine(p.budget).Table(v, config.Decimals(changes))
			if err != nil {
				return err
			}
			if err := p.show(report.Sensitivity(p.format, rs)); err != nil {
				return err
			}

			p.record(runlog.NewEntry("sensitivity table", string(v), fmt.Sprintf("%d changes", len(rs))))
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&changes, "range", nil, "percentage changes to test (default from fundcast.yaml)")
	return cmd
}

func newBreakEvenCommand(opts *options) *cobra.Command {
	var method string
	var minPct, maxPct, tolerance float64

	cmd := &cobra.Command{
		Use:   "break-even [variable...]",
		Short: "Find the change that brings the year-end surplus to zero",
		RunE: func(cmd *cobra.Command, args []string) error {
			vars := sensitivity.Variables()
			if len(args) > 0 {
				vars = vars[:0:0]
				for _, a := range args {
					v, err := sensitivity.ParseVariable(a)
					if err != nil {
						return err
					}
					vars = append(vars, v)
				}
			}
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			be := p.cfg.Sensitivity.BreakEven
			if cmd.Flags().Changed("method") {
				be.Method = method
			}
			if cmd.Flags().Changed("min") {
				be.MinPct = minPct
			}
			if cmd.Flags().Changed("max") {
				be.MaxPct = maxPct
			}
			if cmd.Flags().Changed("tolerance") {
				be.TolerancePct = tolerance
			}
			m, r, err := searchSettings(be)
			if err != nil {
				return err
			}

			found, err := findBreakEvens(sensitivity.NewEngine(p.budget), vars, r, m)
			if err != nil {
				return err
			}
			var details []string
			for _, v := range vars {
				if pct, ok := found[v]; ok {
					details = append(details, fmt.Sprintf("%s=%s", v, pct.StringFixed(4)))
				} else {
					details = append(details, string(v)+"=none")
				}
			}

			if err := p.show(report.BreakEven(p.format, vars, found)); err != nil {
				return err
			}
			p.note("Searched %s%% to %s%% using %s.", r.Min, r.Max, m)

			p.record(runlog.NewEntry("sensitivity break-even", string(m), strings.Join(details, " ")))
			return nil
		},
	}
	cmd.Flags().StringVar(&method, "method", "", "closed_form or bisection (default from fundcast.yaml)")
	cmd.Flags().Float64Var(&minPct, "min", 0, "lower bound of the search in percent")
	cmd.Flags().Float64Var(&maxPct, "max", 0, "upper bound of the search in percent")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "bisection stopping width in percentage points")
	return cmd
}

func newMatrixCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "matrix",
		Short: "Show the surplus impact of a ten percent move in each variable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}
			if err := p.show(report.Matrix(p.format, sensitivity.NewEngine(p.budget).Matrix())); err != nil {
				return err
			}
			p.record(runlog.NewEntry("sensitivity matrix", p.budget.Name, ""))
			return nil
		},
	}
}

func newFXCommand(opts *options) *cobra.Command {
	var steps []float64

	cmd := &cobra.Command{
		Use:   "fx",
		Short: "Re-express the year-end surplus in local currency at several rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("steps") {
				steps = p.cfg.Sensitivity.ExchangeRateSteps
			}

			e := sensitivity.NewEngine(p.budget)
			var rates []decimal.Decimal
			if len(steps) > 0 {
				rates = e.RatesFromSteps(config.Decimals(steps))
			}
			if err := p.show(report.ExchangeRates(p.format, p.cfg.Currency.Local, e.ExchangeRate(rates))); err != nil {
				return err
			}

			p.record(runlog.NewEntry("sensitivity fx", p.cfg.Currency.Local, fmt.Sprintf("%d rates", len(steps))))
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&steps, "steps", nil, "multiples of the budget exchange rate (default from fundcast.yaml)")
	return cmd
}

func newDelayCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delay <months>",
		Short: "Shift every inflow later and report the cash impact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseIntArg("months", args[0])
			if err != nil {
				return err
			}
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			d, err := sensitivity.NewEngine(p.budget).RevenueDelay(n)
			if err != nil {
				return err
			}
			if err := p.show(report.Delay(p.format, d)); err != nil {
				return err
			}

			p.record(runlog.NewEntry("sensitivity delay", p.budget.Name, fmt.Sprintf("months=%d", n)).WithSurplus(d.NewSurplus))
			return nil
		},
	}
}

func newFundingGapCommand(opts *options) *cobra.Command {
	var target int
	var cost string

	cmd := &cobra.Command{
		Use:   "funding-gap",
		Short: "Price growth to a target number of students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			costPerStudent, err := parseDecimalArg("--cost", cost)
			if err != nil {
				return err
			}
			if target < 0 {
				return fmt.Errorf("--target must not be negative")
			}
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			g := sensitivity.NewEngine(p.budget).FundingGap(target, costPerStudent)
			if err := p.show(report.FundingGap(p.format, g)); err != nil {
				return err
			}

			p.record(runlog.NewEntry("sensitivity funding-gap", p.budget.Name,
				fmt.Sprintf("target=%d cost=%s gap=%s", target, costPerStudent, g.AdditionalFunding.StringFixed(2))))
			return nil
		},
	}
	cmd.Flags().IntVar(&target, "target", 0, "target number of students (required)")
	_ = cmd.MarkFlagRequired("target")
	cmd.Flags().StringVar(&cost, "cost", "10.62", "annual cost per student")
	return cmd
}

// searchSettings turns configured break-even settings into a method and
// range. Unset bounds fall back to DefaultSearch.
func searchSettings(be config.BreakEvenConfig) (sensitivity.Method, sensitivity.Range, error) {
	m, err := sensitivity.ParseMethod(be.Method)
	if err != nil {
		return "", sensitivity.Range{}, err
	}
	r := sensitivity.DefaultSearch
	if be.MinPct != 0 || be.MaxPct != 0 {
		r.Min = decimal.NewFromFloat(be.MinPct)
		r.Max = decimal.NewFromFloat(be.MaxPct)
	}
	if be.TolerancePct > 0 {
		r.Tolerance = decimal.NewFromFloat(be.TolerancePct)
	}
	return m, r, nil
}

// findBreakEvens solves each variable. Variables without a break-even point
// in range are left out of the map.
func findBreakEvens(e *sensitivity.Engine, vars []sensitivity.Variable, r sensitivity.Range, m sensitivity.Method) (map[sensitivity.Variable]decimal.Decimal, error) {
	found := make(map[sensitivity.Variable]decimal.Decimal, len(vars))
	for _, v := range vars {
		pct, err := e.BreakEven(v, r, m)
		if errors.Is(err, sensitivity.ErrNoBreakEven) {
			continue
		}
		if err != nil {
			return nil, err
		}
		found[v] = pct
	}
	return found, nil
}
