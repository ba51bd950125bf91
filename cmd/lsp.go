// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/emmanuelbernard/ceylon-spec/lsp"
	"github.com/spf13/cobra"
)

// LSPCommand creates the "lsp" cobra command.  Embedders can pass WithFs
// to serve a workspace from another file system.
func LSPCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the Ceylon Language Server Protocol server",
		Long: `Start an LSP server for Ceylon source trees.

The language server analyzes the whole workspace and provides diagnostics,
hover types, go-to-definition, find references, completion and document
symbols.  Open documents shadow the files on disk.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  ceylon-spec lsp                    Start with stdio transport
  ceylon-spec lsp --stdio            Same as above (explicit)
  ceylon-spec lsp --port 7998        Start with TCP on port 7998

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "ceylon-spec lsp --stdio" for .ceylon files.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the protocol, so logs go to stderr.
			log := newLogger(os.Stderr)
			aopts, err := cfg.analysisOptions(log)
			if err != nil {
				return err
			}
			l, err := linter(nil)
			if err != nil {
				return err
			}
			srv := lsp.New(
				lsp.WithFs(cfg.fs),
				lsp.WithLogger(log),
				lsp.WithLinter(l),
				lsp.WithAnalysisOptions(aopts...),
			)

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				log.WithField("addr", addr).Info("Ceylon LSP server listening")
				if err := srv.RunTCP(addr); err != nil {
					return fmt.Errorf("lsp server error: %w", err)
				}
				return nil
			}
			if err := srv.RunStdio(); err != nil {
				return fmt.Errorf("lsp server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}
