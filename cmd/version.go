// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/emmanuelbernard/ceylon-spec/lsp"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of ceylon-spec",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ceylon-spec %s\n", version()) //nolint:errcheck // best-effort output
	},
}

// version returns the module version of the binary, falling back to the
// version reported by the language server.
func version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return lsp.Version
}
