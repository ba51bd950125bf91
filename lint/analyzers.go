// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emmanuelbernard/ceylon-spec/astutil"
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/parser/token"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// AnalyzerDuplicateDeclaration reports a declaration whose name is already
// declared in the same scope.
var AnalyzerDuplicateDeclaration = &Analyzer{
	Name:     "duplicate-declaration",
	Doc:      "Report declarations whose name is already declared in the same scope.\n\nA getter and the setter assigning it share a name and are not duplicates. Declarations in nested blocks may shadow outer ones. At package level the check spans every unit of the package; the later declaration is reported.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		WalkDecls(pass.Tree(), func(n tree.Decl) {
			d := pass.Info.DeclarationOf(n)
			if d == nil || d.Container() == nil {
				return
			}
			if prev := earlierNamesake(d); prev != nil {
				pass.ReportWithNotes(Diagnostic{
					Pos:     position(SourceOf(n)),
					Message: "duplicate declaration: " + d.Name(),
				}, "previous declaration at "+position(SourceOf(prev.Node())).String())
			}
		})
		return nil
	},
}

// earlierNamesake returns a member declared before d in d's scope with the
// same name, or nil.
func earlierNamesake(d model.Declaration) model.Declaration {
	for _, m := range d.Container().Members() {
		if m == d {
			return nil
		}
		if m.Name() == d.Name() && !accessorPair(m, d) {
			return m
		}
	}
	return nil
}

func accessorPair(a, b model.Declaration) bool {
	if g, ok := a.(*model.Getter); ok {
		s, ok := b.(*model.Setter)
		return ok && s.Getter == g
	}
	if g, ok := b.(*model.Getter); ok {
		s, ok := a.(*model.Setter)
		return ok && s.Getter == g
	}
	return false
}

// AnalyzerMissingReturn reports non-void methods and getters whose body may
// complete without returning a value.
var AnalyzerMissingReturn = &Analyzer{
	Name:     "missing-return",
	Doc:      "Report methods and getters that do not definitely return a value.\n\nA body definitely returns when some statement is a return, an if statement whose branches all definitely return, or a for statement whose fail clause definitely returns and whose body never breaks. Loops are otherwise assumed to complete.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		WalkDecls(pass.Tree(), func(n tree.Decl) {
			switch n := n.(type) {
			case *tree.MethodDecl:
				if n.Body == nil || tree.IsVoid(n.Type) || blockDoes(n.Body, returns) {
					return
				}
				pass.Reportf(SourceOf(n), "method does not definitely return: %s", n.Name.Name)
			case *tree.GetterDecl:
				if n.Body == nil || blockDoes(n.Body, returns) {
					return
				}
				pass.Reportf(SourceOf(n), "getter does not definitely return: %s", n.Name.Name)
			}
		})
		return nil
	},
}

// AnalyzerUnreachableCode reports the first statement following a
// statement that never completes.
var AnalyzerUnreachableCode = &Analyzer{
	Name:     "unreachable-code",
	Doc:      "Report statements that follow a return, break or continue in the same block.\n\nAn if statement whose every branch exits also ends the block. Only the first unreachable statement of a block is reported.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		WalkBlocks(pass.Tree(), func(blk *tree.Block) {
			for i, s := range blk.Stmts {
				if exits(s) && i+1 < len(blk.Stmts) {
					pass.Reportf(SourceOf(blk.Stmts[i+1]), "unreachable code")
					return
				}
			}
		})
		return nil
	},
}

// AnalyzerUnusedImport reports imported declarations the unit never
// references.
var AnalyzerUnusedImport = &Analyzer{
	Name:     "unused-import",
	Doc:      "Report imports whose declaration is never referenced in the importing unit.\n\nImports that failed to resolve are reported by the type checker and skipped here.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		imports := pass.Unit.Unit.Imports
		if len(imports) == 0 {
			return nil
		}
		used := referencedDeclarations(pass)
		for _, imp := range imports {
			if imp.Declaration == nil || used[imp.Declaration] {
				continue
			}
			pass.Reportf(imp.Node.Pos(), "unused import: %s", imp.Alias)
		}
		return nil
	},
}

// referencedDeclarations returns the targets of references in the unit,
// import clauses excluded.
func referencedDeclarations(pass *Pass) map[model.Declaration]bool {
	used := make(map[model.Declaration]bool)
	astutil.Inspect(pass.Tree(), func(n tree.Node) bool {
		if _, ok := n.(*tree.Import); ok {
			return false
		}
		if d := pass.Info.TargetOf(n); d != nil {
			used[d] = true
		}
		return true
	})
	return used
}

func position(loc *token.Location) Position {
	if loc == nil {
		return Position{}
	}
	return Position{File: loc.File, Line: loc.Line, Col: loc.Col}
}

// AnalyzerNames returns the sorted names of the default analyzers.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// AnalyzerDoc returns a formatted documentation string for all analyzers.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s\n", a.Name)
		lines := strings.Split(a.Doc, "\n")
		fmt.Fprintf(&b, "    %s\n\n", lines[0])
	}
	return b.String()
}
