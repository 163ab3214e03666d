package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fundcast/fundcast/internal/budget"
	"github.com/fundcast/fundcast/internal/report"
)

func newBudgetCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Check and convert the budget file",
	}
	cmd.AddCommand(
		newValidateCommand(opts),
		newReconcileCommand(opts),
		newExportCommand(opts),
	)
	return cmd
}

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the budget's internal consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			errs := budget.Validate(p.budget)
			if len(errs) == 0 {
				fmt.Fprintf(p.out, "%s: OK\n", p.budget.Name)
				return nil
			}
			if err := p.show(report.Violations(errs)); err != nil {
				return err
			}
			return fmt.Errorf("%d validation error(s)", len(errs))
		},
	}
}

func newReconcileCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Compare the sheet's reported totals with computed ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			drifts := budget.Reconcile(p.budget)
			if len(drifts) == 0 {
				fmt.Fprintln(p.out, "Reported totals match the computed figures.")
				return nil
			}
			return p.show(report.Drifts(p.format, drifts))
		},
	}
}

func newExportCommand(opts *options) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Write the budget as YAML or TOML",
		Long: "Write the budget to path, choosing the encoding from its extension.\n" +
			"Without a path the budget is written to stdout in the --as encoding.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return budget.Write(p.out, budget.Format(as), p.budget)
			}
			if err := budget.Save(args[0], p.budget); err != nil {
				return err
			}
			fmt.Fprintf(p.out, "Wrote %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", string(budget.FormatYAML), "encoding for stdout: yaml or toml")
	return cmd
}
