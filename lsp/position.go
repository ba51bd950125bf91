// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/astutil"
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/parser/token"
	"github.com/emmanuelbernard/ceylon-spec/tree"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// toLSPPosition converts a 1-based source location to a 0-based LSP position.
func toLSPPosition(loc *token.Location) protocol.Position {
	line := loc.Line
	col := loc.Col
	if line > 0 {
		line--
	}
	if col > 0 {
		col--
	}
	return protocol.Position{
		Line:      safeUint(line),
		Character: safeUint(col),
	}
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// toLSPRange converts a source location to an LSP range nameLen characters
// wide.
func toLSPRange(loc *token.Location, nameLen int) protocol.Range {
	start := toLSPPosition(loc)
	end := protocol.Position{
		Line:      start.Line,
		Character: start.Character + safeUint(nameLen),
	}
	return protocol.Range{Start: start, End: end}
}

// identRange returns the range covered by an identifier.
func identRange(id *tree.Ident) protocol.Range {
	return toLSPRange(id.Pos(), utf8.RuneCountInString(id.Name))
}

// fromLSPPosition converts a 0-based LSP position to a 1-based line and
// column.
func fromLSPPosition(pos protocol.Position) (line, col int) {
	return int(pos.Line) + 1, int(pos.Character) + 1
}

// nodeAt returns the innermost node of cu at the 1-based line and column,
// with its ancestors.  When the position is on an identifier the
// identifier is the last node of the path.
func nodeAt(cu *tree.CompilationUnit, line, col int) []tree.Node {
	if cu == nil {
		return nil
	}
	path := astutil.PathTo(cu, line, col)
	if len(path) == 0 {
		return nil
	}
	if id, ok := path[len(path)-1].(*tree.Ident); ok && !identContains(id, line, col) {
		path = path[:len(path)-1]
	}
	return path
}

// identAt returns the identifier at the position and the node it belongs
// to, or nils.
func identAt(cu *tree.CompilationUnit, line, col int) (*tree.Ident, tree.Node) {
	path := nodeAt(cu, line, col)
	if len(path) < 2 {
		return nil, nil
	}
	id, ok := path[len(path)-1].(*tree.Ident)
	if !ok {
		return nil, nil
	}
	return id, path[len(path)-2]
}

func identContains(id *tree.Ident, line, col int) bool {
	loc := id.Pos()
	if loc == nil || loc.Line != line {
		return false
	}
	return col >= loc.Col && col <= loc.Col+utf8.RuneCountInString(id.Name)
}

// referenceAt resolves the identifier at the position to the declaration
// it declares or references.
func referenceAt(info *analysis.Info, cu *tree.CompilationUnit, line, col int) (model.Declaration, *tree.Ident, tree.Node) {
	id, owner := identAt(cu, line, col)
	if id == nil {
		return nil, nil, nil
	}
	if d := info.TargetOf(owner); d != nil {
		return d, id, owner
	}
	if d := info.DeclarationOf(owner); d != nil {
		return d, id, owner
	}
	return nil, id, owner
}

// nameOf returns the identifier naming the declaration or reference n.
func nameOf(n tree.Node) *tree.Ident {
	switch n := n.(type) {
	case tree.Decl:
		return n.DeclName()
	case *tree.BaseMemberExpr:
		return n.Name
	case *tree.BaseTypeExpr:
		return n.Name
	case *tree.QualifiedMemberExpr:
		return n.Name
	case *tree.QualifiedTypeExpr:
		return n.Name
	case *tree.BaseType:
		return n.Name
	case *tree.ImportElement:
		return n.Name
	}
	return nil
}

// wordAtPosition extracts the identifier prefix ending at the given 0-based
// LSP position from the document content.
func wordAtPosition(content string, line, col int) string {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	ln := []rune(lines[line])
	if col < 0 {
		return ""
	}
	if col > len(ln) {
		col = len(ln)
	}
	start := col
	for start > 0 && isIdentRune(ln[start-1]) {
		start--
	}
	return string(ln[start:col])
}

// wordLength returns the length of the identifier starting at the 1-based
// line and column, or 1 when there is none.
func wordLength(content string, line, col int) int {
	lines := strings.Split(content, "\n")
	if line < 1 || line > len(lines) {
		return 1
	}
	ln := []rune(lines[line-1])
	if col < 1 || col > len(ln) {
		return 1
	}
	end := col - 1
	for end < len(ln) && isIdentRune(ln[end]) {
		end++
	}
	if n := end - (col - 1); n > 0 {
		return n
	}
	return 1
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// mapSymbolKind converts the kind of a declaration to an LSP SymbolKind.
func mapSymbolKind(d model.Declaration) protocol.SymbolKind {
	switch model.Kind(d) {
	case "class":
		return protocol.SymbolKindClass
	case "interface":
		return protocol.SymbolKindInterface
	case "method":
		return protocol.SymbolKindMethod
	case "function":
		return protocol.SymbolKindFunction
	case "getter", "setter":
		return protocol.SymbolKindProperty
	case "type parameter":
		return protocol.SymbolKindTypeParameter
	case "value":
		return protocol.SymbolKindConstant
	default:
		return protocol.SymbolKindVariable
	}
}

// mapCompletionItemKind converts the kind of a declaration to an LSP
// CompletionItemKind.
func mapCompletionItemKind(d model.Declaration) protocol.CompletionItemKind {
	switch model.Kind(d) {
	case "class":
		return protocol.CompletionItemKindClass
	case "interface":
		return protocol.CompletionItemKindInterface
	case "method":
		return protocol.CompletionItemKindMethod
	case "function":
		return protocol.CompletionItemKindFunction
	case "getter", "setter":
		return protocol.CompletionItemKindProperty
	case "type parameter":
		return protocol.CompletionItemKindTypeParameter
	default:
		return protocol.CompletionItemKindVariable
	}
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
