package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fundcast/fundcast/internal/report"
	"github.com/fundcast/fundcast/internal/runlog"
	"github.com/fundcast/fundcast/internal/scenario"
)

func newScenarioCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Run and compare revenue, expense and grant scenarios",
	}
	cmd.AddCommand(newScenarioRunCommand(opts), newScenarioCompareCommand(opts))
	return cmd
}

func addScenarioFlags(cmd *cobra.Command, exclude *[]string) {
	cmd.Flags().String("revenue", "", "revenue multiplier (overrides the scenario default)")
	cmd.Flags().String("expense", "", "expense multiplier (overrides the scenario default)")
	cmd.Flags().String("grant-probability", "", "grant probability (overrides the scenario default)")
	cmd.Flags().StringSliceVar(exclude, "exclude", nil, "grants to treat as not received")
}

// scenarioParams builds run parameters from the scenario flags.
func scenarioParams(cmd *cobra.Command, kind scenario.Kind, exclude []string) (scenario.Params, error) {
	params := scenario.Params{Kind: kind, ExcludedGrants: exclude}
	var err error
	if params.RevenueMultiplier, err = nullDecimalFlag(cmd, "revenue"); err != nil {
		return params, err
	}
	if params.ExpenseMultiplier, err = nullDecimalFlag(cmd, "expense"); err != nil {
		return params, err
	}
	if params.GrantProbability, err = nullDecimalFlag(cmd, "grant-probability"); err != nil {
		return params, err
	}
	return params, nil
}

func hasOverrides(p scenario.Params) bool {
	return p.RevenueMultiplier.Valid || p.ExpenseMultiplier.Valid || p.GrantProbability.Valid || len(p.ExcludedGrants) > 0
}

func newScenarioRunCommand(opts *options) *cobra.Command {
	var exclude []string

	cmd := &cobra.Command{
		Use:   "run <base|optimistic|pessimistic|custom>",
		Short: "Run one scenario and show its monthly positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := scenario.ParseKind(args[0])
			if err != nil {
				return err
			}
			params, err := scenarioParams(cmd, kind, exclude)
			if err != nil {
				return err
			}
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			r, err := scenario.NewEngine(p.budget).Run(params)
			if err != nil {
				return err
			}

			p.title(r.Name)
			if err := p.show(
				report.Positions(p.format, r.Positions, p.cfg.LowCash()),
				report.Scenarios(p.format, []scenario.Result{r}),
			); err != nil {
				return err
			}

			p.record(runlog.NewEntry("scenario run", r.Kind.Key(), describeAssumptions(r)).WithSurplus(r.YearEndSurplus))
			return nil
		},
	}
	addScenarioFlags(cmd, &exclude)
	return cmd
}

func newScenarioCompareCommand(opts *options) *cobra.Command {
	var exclude []string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the base, optimistic and pessimistic scenarios",
		Long: "Compare the base, optimistic and pessimistic scenarios. Any override flag\n" +
			"adds a custom scenario with those settings to the comparison.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := scenarioParams(cmd, scenario.Custom{}, exclude)
			if err != nil {
				return err
			}
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			e := scenario.NewEngine(p.budget)
			e.RunAll()
			if hasOverrides(params) {
				if _, err := e.Run(params); err != nil {
					return err
				}
			}

			results := e.Results()
			names := make([]string, len(results))
			for i, r := range results {
				names[i] = r.Name
			}

			p.title("Scenarios")
			if err := p.show(
				report.Scenarios(p.format, results),
				report.ClosingBalances(p.format, names, e.CashFlows()),
			); err != nil {
				return err
			}

			keys := make([]string, len(results))
			for i, r := range results {
				keys[i] = fmt.Sprintf("%s=%s", r.Kind.Key(), r.YearEndSurplus.StringFixed(2))
			}
			p.record(runlog.NewEntry("scenario compare", strings.Join(names, "; "), strings.Join(keys, " ")))
			return nil
		},
	}
	addScenarioFlags(cmd, &exclude)
	return cmd
}

func describeAssumptions(r scenario.Result) string {
	a := r.Assumptions
	s := fmt.Sprintf("revenue=%s expense=%s grant_probability=%s",
		a.RevenueMultiplier.String(), a.ExpenseMultiplier.String(), a.GrantProbability.String())
	if len(r.ExcludedGrants) > 0 {
		s += " exclude=" + strings.Join(r.ExcludedGrants, ",")
	}
	return s
}
