package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/fundcast/fundcast/internal/report"
	"github.com/fundcast/fundcast/internal/runlog"
	"github.com/fundcast/fundcast/internal/scenario"
	"github.com/fundcast/fundcast/internal/sensitivity"
)

func newGrantsCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grants",
		Short: "Analyze how much the budget depends on each grant",
	}
	cmd.AddCommand(
		newDependencyCommand(opts),
		newRemoveCommand(opts),
		newConcentrationCommand(opts),
	)
	return cmd
}

func newDependencyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dependency",
		Short: "Show the year without each grant, largest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			e := sensitivity.NewEngine(p.budget)
			if err := p.show(report.Dependencies(p.format, e.GrantDependencyList())); err != nil {
				return err
			}
			critical := e.CriticalGrants()
			if len(critical) > 0 {
				p.note("Losing any of %s would end the year in deficit.", strings.Join(critical, ", "))
			}

			p.record(runlog.NewEntry("grants dependency", p.budget.Name, "critical="+strings.Join(critical, ",")))
			return nil
		},
	}
}

func newRemoveCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <grant>",
		Short: "Show the year with one grant removed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			r, err := sensitivity.NewEngine(p.budget).RemoveGrant(args[0])
			if err != nil {
				return err
			}
			loss, err := scenario.NewEngine(p.budget).SimulateGrantLoss(r.ID)
			if err != nil {
				return err
			}

			if err := p.show(
				report.Removal(p.format, r),
				report.Positions(p.format, loss.Positions, p.cfg.LowCash()),
			); err != nil {
				return err
			}

			p.record(runlog.NewEntry("grants remove", r.ID, "").WithSurplus(r.NewSurplus))
			return nil
		},
	}
}

func newConcentrationCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "concentration",
		Short: "Measure how concentrated grant income is",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			c := sensitivity.NewEngine(p.budget).Concentration()
			if err := p.show(report.Concentration(p.format, c)); err != nil {
				return err
			}

			p.record(runlog.NewEntry("grants concentration", c.LargestID, "hhi="+c.Herfindahl.StringFixed(4)))
			return nil
		},
	}
}
