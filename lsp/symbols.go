// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/tree"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDocumentSymbol handles the textDocument/documentSymbol request.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	_, r, pu := s.unitFor(params.TextDocument.URI)
	if pu == nil {
		return nil, nil
	}
	// Return as []DocumentSymbol (the preferred hierarchical form).
	return documentSymbols(r.Info, pu.Tree.Body), nil
}

// documentSymbols returns the declarations among stmts with the members
// of classes and interfaces nested below them.
func documentSymbols(info *analysis.Info, stmts []tree.Stmt) []protocol.DocumentSymbol {
	symbols := []protocol.DocumentSymbol{}
	for _, st := range stmts {
		n, ok := st.(tree.Decl)
		if !ok || n.DeclName() == nil || n.DeclName().Pos() == nil {
			continue
		}
		d := info.DeclarationOf(n)
		if d == nil {
			continue
		}
		r := identRange(n.DeclName())
		detail := model.Describe(d)
		sym := protocol.DocumentSymbol{
			Name:           d.Name(),
			Detail:         &detail,
			Kind:           mapSymbolKind(d),
			Range:          r,
			SelectionRange: r,
		}
		switch n := n.(type) {
		case *tree.ClassDecl:
			sym.Children = memberSymbols(info, n.Body)
		case *tree.InterfaceDecl:
			sym.Children = memberSymbols(info, n.Body)
		}
		symbols = append(symbols, sym)
	}
	return symbols
}

func memberSymbols(info *analysis.Info, body *tree.Block) []protocol.DocumentSymbol {
	if body == nil {
		return nil
	}
	return documentSymbols(info, body.Stmts)
}
