// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDefinition handles the textDocument/definition request.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	_, r, pu := s.unitFor(params.TextDocument.URI)
	if pu == nil {
		return nil, nil
	}
	line, col := fromLSPPosition(params.Position)
	d, _, _ := referenceAt(r.Info, pu.Tree, line, col)
	if d == nil {
		return nil, nil
	}

	// Built-in declarations have no navigable source.
	file, id := declLocation(r, d)
	if id == nil {
		return nil, nil
	}
	return protocol.Location{
		URI:   s.uriFor(file),
		Range: identRange(id),
	}, nil
}
