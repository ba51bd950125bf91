// Copyright © 2024 The ELPS authors

package lsp

import (
	"time"

	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/lint"
	"github.com/emmanuelbernard/ceylon-spec/tree"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const debounceDelay = 300 * time.Millisecond

const (
	checkerSource = "ceylon"
	lintSource    = "ceylon-lint"
)

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		s.relPath(params.TextDocument.URI),
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
	)
	s.writeOverlay(doc)
	s.publishAll()
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		content,
	)
	if doc == nil {
		return nil
	}
	s.writeOverlay(doc)

	// Debounce: delay analysis to avoid thrashing during rapid edits.
	s.debounceMu.Lock()
	if t, ok := s.debounce[doc.URI]; ok {
		t.Stop()
	}
	s.debounce[doc.URI] = time.AfterFunc(debounceDelay, func() {
		defer func() { _ = recover() }() // don't crash the server on analysis panic
		s.publishAll()
	})
	s.debounceMu.Unlock()
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	// Cancel any pending debounce and publish immediately.
	s.cancelDebounce(params.TextDocument.URI)
	if s.docs.Get(params.TextDocument.URI) != nil {
		s.publishAll()
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.cancelDebounce(params.TextDocument.URI)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	if doc := s.docs.Close(params.TextDocument.URI); doc != nil {
		s.removeOverlay(doc)
	}
	return nil
}

func (s *Server) cancelDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

// publishAll analyzes the workspace and publishes the diagnostics of every
// open document.  An edit may change the diagnostics of units that import
// the edited one.
func (s *Server) publishAll() {
	r := s.workspace()
	for _, doc := range s.docs.All() {
		s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
			URI:         doc.URI,
			Diagnostics: s.diagnostics(r, doc),
		})
	}
}

// diagnostics returns the checker and lint diagnostics of doc.
func (s *Server) diagnostics(r *analysis.Result, doc *Document) []protocol.Diagnostic {
	diags := []protocol.Diagnostic{}
	if r == nil {
		return diags
	}
	pu := r.Unit(doc.Path)
	if pu == nil {
		return diags
	}
	for _, d := range pu.Diagnostics() {
		diags = append(diags, convertDiagnostic(d, doc.Content))
	}
	lintDiags, err := s.linter.LintUnit(pu, r.Info)
	if err != nil {
		s.log.WithError(err).WithField("unit", pu.Path).Warn("lint failed")
		return diags
	}
	for _, d := range lintDiags {
		diags = append(diags, convertLintDiagnostic(d, doc.Content))
	}
	return diags
}

// convertDiagnostic converts a checker diagnostic to an LSP Diagnostic.
func convertDiagnostic(d analysis.Diagnostic, content string) protocol.Diagnostic {
	var rng protocol.Range
	if d.Pos != nil && d.Pos.Line > 0 {
		n := wordLength(content, d.Pos.Line, d.Pos.Col)
		if id, ok := d.Node.(*tree.Ident); ok {
			n = len([]rune(id.Name))
		}
		rng = toLSPRange(d.Pos, n)
	}
	return protocol.Diagnostic{
		Range:    rng,
		Severity: severity(mapSeverity(d.Severity)),
		Source:   strPtr(checkerSource),
		Message:  d.Message,
	}
}

func mapSeverity(sev analysis.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case analysis.SeverityError:
		return protocol.DiagnosticSeverityError
	case analysis.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

// convertLintDiagnostic converts a lint.Diagnostic to an LSP Diagnostic.
func convertLintDiagnostic(d lint.Diagnostic, content string) protocol.Diagnostic {
	line := d.Pos.Line
	col := d.Pos.Col
	width := wordLength(content, line, col)
	if line > 0 {
		line--
	}
	if col > 0 {
		col--
	}
	start := protocol.Position{Line: safeUint(line), Character: safeUint(col)}
	end := protocol.Position{Line: start.Line, Character: start.Character + safeUint(width)}
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: severity(mapLintSeverity(d.Severity)),
		Source:   strPtr(lintSource),
		Code:     &protocol.IntegerOrString{Value: d.Analyzer},
		Message:  d.Message,
	}
}

// mapLintSeverity converts a lint.Severity to a protocol.DiagnosticSeverity.
func mapLintSeverity(sev lint.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case lint.SeverityError:
		return protocol.DiagnosticSeverityError
	case lint.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case lint.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityWarning
	}
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func strPtr(s string) *string {
	return &s
}
