package commands

import (
	"github.com/spf13/cobra"

	"github.com/fundcast/fundcast/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "fundcast",
		Short:   "Cash-flow forecasting and what-if analysis for grant-funded budgets",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.dir, "dir", "C", ".", "project directory")
	flags.StringVar(&opts.format, "format", "table", "output format: table or csv")
	flags.StringVar(&opts.budgetPath, "budget", "", "budget file (overrides fundcast.yaml)")
	flags.BoolVar(&opts.noLog, "no-log", false, "do not append to logs/run-log.csv")

	rootCmd.AddCommand(
		newInitCommand(),
		newForecastCommand(opts),
		newScenarioCommand(opts),
		newSensitivityCommand(opts),
		newGrantsCommand(opts),
		newBudgetCommand(opts),
		newImportCommand(opts),
		newExportWorkbookCommand(opts),
		newRunsCommand(opts),
	)

	return rootCmd
}
