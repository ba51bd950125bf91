// Copyright © 2024 The ELPS authors

package lsp

import (
	"sort"
	"strings"

	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentCompletion handles the textDocument/completion request.  It
// offers every declaration visible at the cursor whose name extends the
// word being typed.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc, r, pu := s.unitFor(params.TextDocument.URI)
	if pu == nil {
		return nil, nil
	}
	line, col := fromLSPPosition(params.Position)
	scope := scopeAt(r.Info, pu, line, col)
	prefix := wordAtPosition(doc.Content, int(params.Position.Line), int(params.Position.Character))

	items := []protocol.CompletionItem{}
	for _, v := range r.Context.Visible(scope, pu.Unit) {
		if !strings.HasPrefix(v.Name, prefix) {
			continue
		}
		kind := mapCompletionItemKind(v.Declaration)
		detail := model.Describe(v.Declaration)
		items = append(items, protocol.CompletionItem{
			Label:  v.Name,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items, nil
}

// scopeAt returns the innermost scope bound at the position, or the unit's
// package.
func scopeAt(info *analysis.Info, pu *analysis.PhasedUnit, line, col int) model.Scope {
	path := nodeAt(pu.Tree, line, col)
	for i := len(path) - 1; i >= 0; i-- {
		if s, ok := info.Scopes[path[i]]; ok && s != nil {
			return s
		}
	}
	return pu.Package
}
