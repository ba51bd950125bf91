// Copyright © 2024 The ELPS authors

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/tree"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// unitSymbols lists the declarations of one unit.
type unitSymbols struct {
	File    string   `json:"file" yaml:"file"`
	Package string   `json:"package" yaml:"package"`
	Module  string   `json:"module" yaml:"module"`
	Symbols []symbol `json:"symbols" yaml:"symbols"`
}

// symbol is a declaration with the members declared in its body.
type symbol struct {
	Name      string   `json:"name" yaml:"name"`
	Kind      string   `json:"kind" yaml:"kind"`
	Signature string   `json:"signature" yaml:"signature"`
	Line      int      `json:"line" yaml:"line"`
	Col       int      `json:"col" yaml:"col"`
	Members   []symbol `json:"members,omitempty" yaml:"members,omitempty"`
}

// SymbolsCommand creates the "symbols" cobra command.
func SymbolsCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var format string

	cmd := &cobra.Command{
		Use:   "symbols [flags] [root]",
		Short: "List the declarations of a Ceylon source tree",
		Long: `List the declarations of a Ceylon source tree.

Every unit that parses is listed with its package and module, followed by
its declarations and the members of its classes and interfaces.  Signatures
show inferred types.  Units with syntax errors are skipped with a warning.

Formats:
  text   Indented signatures (default)
  json   A JSON array of units
  yaml   A YAML sequence of units

Examples:
  ceylon-spec symbols src
  ceylon-spec symbols --format yaml src`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "text", "json", "yaml":
			default:
				fmt.Fprintf(cmd.ErrOrStderr(), "ceylon-spec symbols: unknown format: %q\n", format) //nolint:errcheck // best-effort output
				return &ExitError{Code: 2}
			}
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			stderr := cmd.ErrOrStderr()
			log := newLogger(stderr)
			res, err := cfg.analyze(cmd.Context(), root, log)
			if res == nil {
				fmt.Fprintf(stderr, "ceylon-spec symbols: %v\n", err) //nolint:errcheck // best-effort output
				return &ExitError{Code: 2}
			}
			if err != nil {
				log.WithError(err).Warn("Source tree did not load completely")
			}
			units := collectSymbols(res)
			for _, pu := range res.Units {
				if pu.Failed() {
					log.WithField("unit", pu.Path).Warn("Skipping unit with errors")
				}
			}
			return writeSymbols(cmd.OutOrStdout(), format, units)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text",
		`Output format: "text", "json", or "yaml".`)

	return cmd
}

// collectSymbols returns the declarations of every unit of res that got
// past binding.
func collectSymbols(res *analysis.Result) []unitSymbols {
	units := []unitSymbols{}
	for _, pu := range res.Units {
		if pu.Failed() || pu.IsDescriptor() || pu.Package == nil {
			continue
		}
		us := unitSymbols{
			File:    pu.Path,
			Package: pu.Package.QualifiedName(),
			Symbols: declSymbols(res.Info, pu.Tree.Body),
		}
		if pu.Package.Module != nil {
			us.Module = pu.Package.Module.QualifiedName()
		}
		units = append(units, us)
	}
	return units
}

func declSymbols(info *analysis.Info, stmts []tree.Stmt) []symbol {
	var syms []symbol
	for _, st := range stmts {
		n, ok := st.(tree.Decl)
		if !ok {
			continue
		}
		d := info.DeclarationOf(n)
		if d == nil {
			continue
		}
		sym := symbol{
			Name:      d.Name(),
			Kind:      model.Kind(d),
			Signature: model.Describe(d),
		}
		if loc := n.Pos(); loc != nil {
			sym.Line, sym.Col = loc.Line, loc.Col
		}
		switch n := n.(type) {
		case *tree.ClassDecl:
			if n.Body != nil {
				sym.Members = declSymbols(info, n.Body.Stmts)
			}
		case *tree.InterfaceDecl:
			if n.Body != nil {
				sym.Members = declSymbols(info, n.Body.Stmts)
			}
		}
		syms = append(syms, sym)
	}
	return syms
}

func writeSymbols(w io.Writer, format string, units []unitSymbols) error {
	switch format {
	case "text":
		for _, u := range units {
			if _, err := fmt.Fprintf(w, "%s (package %s, module %s)\n", u.File, displayName(u.Package), u.Module); err != nil {
				return err
			}
			if err := writeSymbolText(w, u.Symbols, 1); err != nil {
				return err
			}
		}
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(units)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(units); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format: %q", format)
	}
}

func writeSymbolText(w io.Writer, syms []symbol, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, s := range syms {
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, s.Signature); err != nil {
			return err
		}
		if err := writeSymbolText(w, s.Members, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func displayName(pkg string) string {
	if pkg == "" {
		return "<root>"
	}
	return pkg
}
