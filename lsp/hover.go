// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/tree"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentHover handles the textDocument/hover request.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	_, r, pu := s.unitFor(params.TextDocument.URI)
	if pu == nil {
		return nil, nil
	}
	line, col := fromLSPPosition(params.Position)
	content := buildHoverContent(r, pu, line, col)
	if content == "" {
		return nil, nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
	}, nil
}

// buildHoverContent builds Markdown hover text for the position.  A
// declaration or reference shows the declaration's signature; any other
// expression shows its type.
func buildHoverContent(r *analysis.Result, pu *analysis.PhasedUnit, line, col int) string {
	d, _, owner := referenceAt(r.Info, pu.Tree, line, col)
	if d == nil {
		return expressionHover(r.Info, nodeAt(pu.Tree, line, col))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** `%s`", model.Kind(d), d.Name())
	fmt.Fprintf(&sb, "\n\n```ceylon\n%s\n```", model.Describe(d))

	// A reference may see the declaration through type arguments.
	if _, isExpr := owner.(tree.Expr); isExpr {
		if t := r.Info.TypeOf(owner); t != nil {
			fmt.Fprintf(&sb, "\n\nType: `%s`", model.TypeString(t))
		}
	}

	if file, id := declLocation(r, d); id != nil {
		fmt.Fprintf(&sb, "\n\n*Defined in %s:%d*", file, id.Pos().Line)
	} else if d.Unit() != nil && d.Unit().Package != nil {
		fmt.Fprintf(&sb, "\n\n*Defined in %s*", d.Unit().Package.QualifiedName())
	}
	return sb.String()
}

// expressionHover shows the type of the innermost typed expression of
// path.
func expressionHover(info *analysis.Info, path []tree.Node) string {
	for i := len(path) - 1; i >= 0; i-- {
		x, ok := path[i].(tree.Expr)
		if !ok {
			continue
		}
		if t := info.TypeOf(x); t != nil {
			return fmt.Sprintf("```ceylon\n%s\n```", model.TypeString(t))
		}
	}
	return ""
}

// declLocation returns the unit path and name of a declaration from a
// workspace unit.  Built-in declarations have no location.
func declLocation(r *analysis.Result, d model.Declaration) (string, *tree.Ident) {
	if d.Node() == nil {
		return "", nil
	}
	id := nameOf(d.Node())
	if id == nil || id.Pos() == nil {
		return "", nil
	}
	pu := r.Context.PhasedUnitOf(d.Unit())
	if pu == nil || pu == r.Context.LanguageUnit() {
		return "", nil
	}
	return pu.Path, id
}
