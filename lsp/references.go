// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/astutil"
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/tree"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentReferences handles the textDocument/references request.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	_, r, pu := s.unitFor(params.TextDocument.URI)
	if pu == nil {
		return nil, nil
	}
	line, col := fromLSPPosition(params.Position)
	d, _, _ := referenceAt(r.Info, pu.Tree, line, col)
	if d == nil {
		return nil, nil
	}

	var locs []protocol.Location

	// Optionally include the declaration.
	if params.Context.IncludeDeclaration {
		if file, id := declLocation(r, d); id != nil {
			locs = append(locs, protocol.Location{URI: s.uriFor(file), Range: identRange(id)})
		}
	}
	for _, ref := range references(r, d) {
		locs = append(locs, protocol.Location{URI: s.uriFor(ref.path), Range: identRange(ref.name)})
	}
	return locs, nil
}

type reference struct {
	path string
	name *tree.Ident
}

// references returns every reference to d in the workspace, in unit order.
func references(r *analysis.Result, d model.Declaration) []reference {
	var refs []reference
	for _, pu := range r.Units {
		if pu.Tree == nil || pu.Failed() {
			continue
		}
		astutil.Inspect(pu.Tree, func(n tree.Node) bool {
			if r.Info.TargetOf(n) != d {
				return true
			}
			if id := nameOf(n); id != nil && id.Pos() != nil {
				refs = append(refs, reference{path: pu.Path, name: id})
			}
			return true
		})
	}
	return refs
}
