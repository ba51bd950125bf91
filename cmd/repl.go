// Copyright © 2018 The ELPS authors

package cmd

import (
	"os"
	"path/filepath"

	"github.com/emmanuelbernard/ceylon-spec/repl"
	"github.com/spf13/cobra"
)

// ReplCommand creates the "repl" cobra command.
func ReplCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	return &cobra.Command{
		Use:   "repl [root]",
		Short: "Show the type of Ceylon expressions interactively",
		Long: `Start an interactive prompt that type checks what is entered.

An expression prints its type.  An import or a declaration is kept when it
checks without error and may be used by later inputs.  Input with unclosed
brackets continues on the next line.  With a root, the packages of that
source tree can be imported.  Use :reset to forget kept declarations and
Ctrl-D to exit.

Example session:
  ceylon-spec> 1 + 2
  Integer
  ceylon-spec> class Point(Integer x) {
                   shared Integer px = x;
               }
  class Point(Integer x) extends IdentifiableObject
  ceylon-spec> Point(1).px
  Integer
  ceylon-spec> "a" -> 1
  Entry<String, Integer>`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			aopts, err := cfg.analysisOptions(newLogger(os.Stderr))
			if err != nil {
				return err
			}
			ropts := []repl.Option{
				repl.WithColor(colorMode()),
				repl.WithAnalysisOptions(aopts...),
			}
			if len(args) > 0 {
				ropts = append(ropts, repl.WithSourceTree(cfg.fs, args[0]))
			}
			return repl.RunRepl(filepath.Base(os.Args[0])+"> ", ropts...)
		},
	}
}
