package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fundcast/fundcast/internal/budget"
	"github.com/fundcast/fundcast/internal/config"
	"github.com/fundcast/fundcast/internal/gitops"
	"github.com/fundcast/fundcast/internal/model"
	"github.com/fundcast/fundcast/internal/report"
	"github.com/fundcast/fundcast/internal/runlog"
)

// options are the persistent flags shared by every command.
type options struct {
	dir        string
	format     string
	budgetPath string
	noLog      bool
}

// project is a loaded working directory: its config and budget.
type project struct {
	dir        string
	cfg        *config.Config
	budget     *model.Budget
	budgetPath string
	builtin    bool
	format     report.Format
	noLog      bool

	out    io.Writer
	errOut io.Writer
}

// loadProject resolves config and budget for a command. Without a config
// file the built-in budget is used; an explicit --budget path must exist.
func loadProject(cmd *cobra.Command, opts *options) (*project, error) {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(opts.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if err := config.LoadEnv(dir); err != nil {
		return nil, err
	}

	p := &project{
		dir:    dir,
		format: format,
		noLog:  opts.noLog,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}

	haveConfig := true
	p.cfg, err = config.Load(filepath.Join(dir, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		haveConfig = false
		p.cfg = config.Default("", 2026)
	} else if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(p.cfg); err != nil {
		return nil, err
	}

	explicit := opts.budgetPath != "" || os.Getenv(config.EnvBudget) != ""
	path := p.cfg.Budget.Path
	if opts.budgetPath != "" {
		path = opts.budgetPath
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	p.budgetPath = path

	p.budget, err = budget.Load(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		if haveConfig {
			p.warn("%s not found, using the built-in %d budget", p.cfg.Budget.Path, p.cfg.Organization.FiscalYear)
		}
		p.budget = budget.Default(p.cfg.Organization.FiscalYear)
		p.builtin = true
	default:
		return nil, err
	}

	if errs := budget.Validate(p.budget); len(errs) > 0 {
		p.warn("budget has %d validation error(s), run `fundcast budget validate`", len(errs))
	}
	return p, nil
}

func (p *project) warn(format string, args ...any) {
	fmt.Fprintf(p.errOut, "warning: "+format+"\n", args...)
}

// show writes tables. CSV output carries only the first table.
func (p *project) show(tables ...report.Table) error {
	if p.format == report.FormatCSV {
		return report.Write(p.out, report.FormatCSV, tables[0])
	}
	for _, t := range tables {
		if err := report.Write(p.out, report.FormatTable, t); err != nil {
			return err
		}
		fmt.Fprintln(p.out)
	}
	return nil
}

// title prints a heading in table mode.
func (p *project) title(s string) {
	if p.format == report.FormatTable {
		fmt.Fprintln(p.out, report.RenderTitle(s))
	}
}

// note prints a footnote in table mode.
func (p *project) note(format string, args ...any) {
	if p.format == report.FormatTable {
		fmt.Fprint(p.out, report.Footnote(format, args...))
	}
}

// record appends a run to the run log. Failures only warn.
func (p *project) record(e runlog.Entry) {
	if p.noLog {
		return
	}
	if err := runlog.Append(p.dir, []runlog.Entry{e}); err != nil {
		p.warn("failed to write run log: %v", err)
	}
}

func gitAuthor(cfg *config.Config) gitops.Author {
	return gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
}

// commitBudget commits the budget file when the project is versioned.
func (p *project) commitBudget(message string) {
	if !p.cfg.Git.Commit || !gitops.IsRepo(p.dir) {
		return
	}
	rel, err := filepath.Rel(p.dir, p.budgetPath)
	if err != nil {
		p.warn("budget file outside project, not committed: %v", err)
		return
	}
	hash, err := gitops.Commit(p.dir, message, gitAuthor(p.cfg), rel)
	switch {
	case errors.Is(err, gitops.ErrNothingToCommit):
	case err != nil:
		p.warn("%v", err)
	default:
		fmt.Fprintf(p.out, "Committed %s (%s)\n", rel, hash)
	}
}
