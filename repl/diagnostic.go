// Copyright © 2024 The ELPS authors

package repl

import (
	"io"

	"github.com/emmanuelbernard/ceylon-spec/diagnostic"
)

// renderDiagnostics renders the diagnostics of an input using the
// diagnostic renderer.  Spans refer to the input itself, which is served to
// the renderer in place of a source file.
func renderDiagnostics(w io.Writer, input string, diags []diagnostic.Diagnostic, color diagnostic.ColorMode) {
	r := &diagnostic.Renderer{
		Color: color,
		SourceReader: func(name string) ([]byte, error) {
			if name == inputName {
				return []byte(input), nil
			}
			return nil, io.EOF
		},
	}
	_ = r.RenderAll(w, diags)
}
