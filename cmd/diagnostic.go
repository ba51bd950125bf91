// Copyright © 2024 The ELPS authors

package cmd

import (
	"errors"
	"io"
	"path/filepath"

	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/diagnostic"
	"github.com/emmanuelbernard/ceylon-spec/lint"
	"github.com/spf13/afero"
)

// newRenderer returns a renderer reading sources from fs.
func newRenderer(fs afero.Fs) *diagnostic.Renderer {
	return &diagnostic.Renderer{
		Color: colorMode(),
		SourceReader: func(name string) ([]byte, error) {
			return afero.ReadFile(fs, name)
		},
	}
}

// rooted makes the positions of diags relative to the working directory
// rather than to the source tree root.
func rooted(root string, diags []lint.Diagnostic) []lint.Diagnostic {
	for i := range diags {
		if diags[i].Pos.File != "" {
			diags[i].Pos.File = filepath.Join(root, filepath.FromSlash(diags[i].Pos.File))
		}
	}
	return diags
}

// loadDiagnostic converts a fatal module error to a diagnostic.  Other
// load errors are not diagnostics and report false.
func loadDiagnostic(root string, err error) (lint.Diagnostic, bool) {
	var fatal *analysis.FatalError
	if !errors.As(err, &fatal) {
		return lint.Diagnostic{}, false
	}
	d := lint.Diagnostic{
		Message:  fatal.Msg,
		Analyzer: lint.CheckerName,
		Severity: lint.SeverityError,
	}
	if fatal.Pos != nil {
		d.Pos = lint.Position{File: fatal.Pos.File, Line: fatal.Pos.Line, Col: fatal.Pos.Col}
	}
	return rooted(root, []lint.Diagnostic{d})[0], true
}

// lintToDiagnostic converts a lint.Diagnostic to a diagnostic.Diagnostic
// for rendering.
func lintToDiagnostic(ld lint.Diagnostic) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Message: ld.Message,
		Notes:   ld.Notes,
		Code:    ld.Analyzer,
	}
	switch ld.Severity {
	case lint.SeverityError:
		d.Severity = diagnostic.SeverityError
	case lint.SeverityWarning:
		d.Severity = diagnostic.SeverityWarning
	default:
		d.Severity = diagnostic.SeverityNote
	}
	if ld.Analyzer == lint.CheckerName {
		d.Code = ""
	}
	if ld.Pos.Line > 0 {
		d.Spans = []diagnostic.Span{{
			File: ld.Pos.File,
			Line: ld.Pos.Line,
			Col:  ld.Pos.Col,
		}}
	}
	return d
}

// renderDiagnostics renders diagnostics in Rust-style annotated format.
func renderDiagnostics(w io.Writer, fs afero.Fs, diags []lint.Diagnostic) error {
	ds := make([]diagnostic.Diagnostic, len(diags))
	for i, ld := range diags {
		ds[i] = lintToDiagnostic(ld)
	}
	return newRenderer(fs).RenderAll(w, ds)
}
