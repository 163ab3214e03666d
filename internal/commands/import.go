package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fundcast/fundcast/internal/budget"
	"github.com/fundcast/fundcast/internal/cashflow"
	"github.com/fundcast/fundcast/internal/importer"
	"github.com/fundcast/fundcast/internal/report"
	"github.com/fundcast/fundcast/internal/runlog"
)

func newImportCommand(opts *options) *cobra.Command {
	var parserName string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Refresh monthly inflows and expenses from a spreadsheet export",
		Long: "Refresh the budget's monthly inflows and expenses from a CSV or XLSX\n" +
			"export. Without a file, every export in import/ is applied in name order\n" +
			"and then moved to import/processed/.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := importer.DefaultRegistry().Get(parserName)
			if parser == nil {
				return fmt.Errorf("unknown parser %q (want sheet or ledger)", parserName)
			}
			p, err := loadProject(cmd, opts)
			if err != nil {
				return err
			}

			var files []importer.FileInfo
			fromQueue := len(args) == 0
			if fromQueue {
				files, err = importer.Scan(p.dir)
				if err != nil {
					return err
				}
				if len(files) == 0 {
					fmt.Fprintln(p.out, "No exports in import/.")
					return nil
				}
			} else {
				files = []importer.FileInfo{{Name: filepath.Base(args[0]), Path: args[0]}}
			}

			return runImport(p, parser, files, fromQueue, dryRun)
		},
	}

	cmd.Flags().StringVar(&parserName, "parser", "sheet", "export layout: sheet or ledger")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the result without saving")

	return cmd
}

func runImport(p *project, parser importer.Parser, files []importer.FileInfo, fromQueue, dryRun bool) error {
	before := cashflow.FromBudget(p.budget).YearEndPosition()

	b := p.budget
	for _, f := range files {
		fig, err := importer.ParseFile(parser, f.Path)
		if err != nil {
			return fmt.Errorf("importing %s: %w", f.Name, err)
		}
		b = fig.Apply(b)
		fmt.Fprintf(p.out, "Read %s (%s)\n", f.Name, parser.Format())
	}
	if errs := budget.Validate(b); len(errs) > 0 {
		return fmt.Errorf("imported budget is invalid: %w", errs[0])
	}

	fc := cashflow.FromBudget(b)
	if err := p.show(report.Summary(p.format, fc)); err != nil {
		return err
	}
	p.note("Year-end position moves by %s.", report.FormatDelta(fc.YearEndPosition().Sub(before)))

	if dryRun {
		fmt.Fprintln(p.out, "Dry run: budget not saved.")
		return nil
	}

	if err := budget.Save(p.budgetPath, b); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Updated %s\n", p.budgetPath)
	p.commitBudget(fmt.Sprintf("import: %d file(s) via %s", len(files), parser.Format()))

	if fromQueue {
		for _, f := range files {
			if err := importer.MarkProcessed(p.dir, f.Name); err != nil {
				p.warn("%v", err)
			}
		}
	}

	p.record(runlog.NewEntry("import", filepath.Base(p.budgetPath), fmt.Sprintf("%d file(s) via %s", len(files), parser.Format())).
		WithSurplus(fc.YearEndPosition()))
	return nil
}
