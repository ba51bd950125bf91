// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"

	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/lint"
	"github.com/spf13/cobra"
)

// CheckCommand creates the "check" cobra command.
func CheckCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var (
		jsonOut bool
		checks  []string
		listAll bool
		noLint  bool
	)

	cmd := &cobra.Command{
		Use:   "check [flags] [roots...]",
		Short: "Type check Ceylon source trees",
		Long: `Type check Ceylon source trees.

Each root is analyzed as a separate source tree.  With no roots the current
directory is checked.  Every unit is bound, its imports and type references
are resolved and its expressions are type checked.  The later passes then
report likely mistakes such as missing returns and unused imports.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files)

To suppress a later-pass diagnostic, add a comment on the same line:
  import p { x } // nolint:unused-import

To suppress all later passes on a line:
  import p { x } // nolint

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  ceylon-spec check                                 # Check the current directory
  ceylon-spec check src test                        # Check two source trees
  ceylon-spec check --json src                      # Output diagnostics as JSON
  ceylon-spec check --checks=missing-return src     # Run only specific checks
  ceylon-spec check --no-lint src                   # Report type errors only
  ceylon-spec check --list                          # List available checks
  ceylon-spec check --exclude='generated' src       # Skip a directory`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
			if listAll {
				for _, name := range lint.AnalyzerNames() {
					fmt.Fprintln(stdout, name) //nolint:errcheck // best-effort output
				}
				return nil
			}

			l, err := linter(checks)
			if err != nil {
				fmt.Fprintf(stderr, "ceylon-spec check: %v\n", err) //nolint:errcheck // best-effort output
				return &ExitError{Code: 2}
			}
			if noLint {
				l.Analyzers = nil
			}

			if len(args) == 0 {
				args = []string{"."}
			}
			log := newLogger(stderr)
			var all []lint.Diagnostic
			for _, root := range args {
				diags, err := cfg.check(cmd, root, l)
				if err != nil {
					fmt.Fprintf(stderr, "ceylon-spec check: %v\n", err) //nolint:errcheck // best-effort output
					return &ExitError{Code: 2}
				}
				log.WithField("root", root).WithField("diagnostics", len(diags)).Debug("Checked source tree")
				all = append(all, diags...)
			}

			if len(all) == 0 {
				return nil
			}
			if jsonOut {
				if err := lint.FormatJSON(stdout, all); err != nil {
					return err
				}
			} else if err := renderDiagnostics(stderr, cfg.fs, all); err != nil {
				return err
			}
			return &ExitError{Code: 1}
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false,
		"Output diagnostics as JSON.")
	cmd.Flags().StringSliceVar(&checks, "checks", nil,
		"Comma-separated list of later-pass checks to run (default: all, or the checks config key).")
	cmd.Flags().BoolVar(&listAll, "list", false,
		"List available checks and exit.")
	cmd.Flags().BoolVar(&noLint, "no-lint", false,
		"Skip the later passes and report type checker diagnostics only.")

	return cmd
}

// check analyzes the tree at root and returns its diagnostics ordered by
// position, with paths relative to the working directory.
func (c *cmdConfig) check(cmd *cobra.Command, root string, l *lint.Linter) ([]lint.Diagnostic, error) {
	res, err := c.analyze(cmd.Context(), root, newLogger(cmd.ErrOrStderr()))
	var diags []lint.Diagnostic
	if err != nil {
		d, ok := loadDiagnostic(root, err)
		if !ok || res == nil {
			return nil, err
		}
		// The unit stopped by a fatal error usually reports it itself.
		if !reported(res, d.Message) {
			diags = append(diags, d)
		}
	}
	diags = append(diags, rooted(root, lint.FromAnalysis(res.Diagnostics))...)
	later, err := l.Lint(res)
	if err != nil {
		return nil, err
	}
	diags = append(diags, rooted(root, later)...)
	lint.SortDiagnostics(diags)
	return diags, nil
}

func reported(res *analysis.Result, msg string) bool {
	for _, d := range res.Diagnostics {
		if d.Message == msg {
			return true
		}
	}
	return false
}
