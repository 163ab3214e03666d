package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fundcast/fundcast/internal/budget"
	"github.com/fundcast/fundcast/internal/config"
	"github.com/fundcast/fundcast/internal/gitops"
)

func newInitCommand() *cobra.Command {
	var name string
	var year int
	var force bool
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new fundcast project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), cmd.ErrOrStderr(), absDir, name, year, force, useGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "organization name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().IntVar(&year, "year", budget.DefaultYear, "fiscal year")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing project")
	cmd.Flags().BoolVar(&useGit, "git", false, "initialize a git repository and commit budget changes")

	return cmd
}

func runInit(out, errOut io.Writer, dir, name string, year int, force, useGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", cfgPath, err)
	}

	dirs := []string{
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name, year)
	cfg.Git.Commit = useGit
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if !budget.HasDefault(year) {
		fmt.Fprintf(errOut, "warning: no built-in budget for FY%d, starting from the FY%d figures\n", year, budget.DefaultYear)
	}
	b := budget.Default(year)
	b.Name = name
	b.FiscalYear = year
	if err := budget.Save(filepath.Join(dir, cfg.Budget.Path), b); err != nil {
		return fmt.Errorf("writing budget: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if !useGit {
		fmt.Fprintf(out, "Initialized fundcast project at %s\n", dir)
		return nil
	}

	if !gitops.IsRepo(dir) {
		if err := gitops.Init(dir); err != nil {
			return err
		}
	}
	gitignore := "logs/\nimport/processed/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	hash, err := gitops.Commit(dir, "init: Initialize "+name, gitAuthor(cfg),
		config.FileName, cfg.Budget.Path, ".gitignore", filepath.Join("import", ".gitkeep"))
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized fundcast project at %s (%s)\n", dir, hash)
	return nil
}
