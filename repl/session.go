// Copyright © 2024 The ELPS authors

package repl

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/diagnostic"
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/parser"
	"github.com/emmanuelbernard/ceylon-spec/parser/token"
	"github.com/emmanuelbernard/ceylon-spec/tree"
	"github.com/spf13/afero"
)

const (
	// unitName is the file the session's declarations are checked in.
	unitName = "_repl" + parser.Extension
	// resultName names the value an entered expression is bound to.
	resultName = "_it"
	// inputName is the display name of the text entered at the prompt.
	inputName = "<stdin>"
)

const resultPrefix = "value " + resultName + " = "

// Reply is the outcome of evaluating one input.
type Reply struct {
	// Type is the type of an entered expression.
	Type model.Type
	// Declarations lists what an entered declaration introduced.
	Declarations []model.Declaration
	Diagnostics  []diagnostic.Diagnostic
}

// Failed reports whether the input was rejected.
func (r *Reply) Failed() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diagnostic.SeverityError {
			return true
		}
	}
	return false
}

// String renders the reply the way the prompt prints it.
func (r *Reply) String() string {
	if r.Type != nil {
		return model.TypeString(r.Type)
	}
	lines := make([]string, len(r.Declarations))
	for i, d := range r.Declarations {
		lines[i] = model.Describe(d)
	}
	return strings.Join(lines, "\n")
}

// Session checks the inputs entered at a prompt.  Accepted imports and
// declarations are kept and every later input is checked against them.
type Session struct {
	base    afero.Fs
	root    string
	opts    []analysis.Option
	imports []string
	decls   []string
	last    *analysis.Result
}

// NewSession returns a session over the source tree at root in base.  With
// a nil base the session only sees the language module.
func NewSession(base afero.Fs, root string, opts ...analysis.Option) (*Session, error) {
	s := &Session{base: base, root: root, opts: opts}
	if _, err := s.analyze(""); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset forgets every accepted import and declaration.
func (s *Session) Reset() error {
	s.imports = nil
	s.decls = nil
	_, err := s.analyze("")
	return err
}

// Eval checks input.  An expression reports its type.  Imports and
// declarations are kept when they check without error.
func (s *Session) Eval(input string) (*Reply, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return &Reply{}, nil
	}
	_, exprErr := parser.ParseExpression(inputName, strings.NewReader(input))
	if exprErr == nil {
		return s.evalExpr(input)
	}
	cu, fileErr := parser.ParseFile(inputName, strings.NewReader(input))
	if fileErr != nil {
		err := exprErr
		if strings.HasSuffix(input, ";") || strings.HasSuffix(input, "}") {
			err = fileErr
		}
		return &Reply{Diagnostics: []diagnostic.Diagnostic{syntaxDiagnostic(err)}}, nil
	}
	if len(cu.Imports) > 0 && len(cu.Body) > 0 {
		return &Reply{Diagnostics: []diagnostic.Diagnostic{{
			Severity: diagnostic.SeverityError,
			Message:  "enter imports and declarations separately",
		}}}, nil
	}
	return s.evalUnit(input, len(cu.Imports) > 0)
}

func (s *Session) evalExpr(input string) (*Reply, error) {
	text := resultPrefix + strings.TrimSuffix(input, ";") + ";"
	src, start := s.source(text, false)
	r, err := s.analyze(src)
	if err != nil {
		return nil, err
	}
	reply := &Reply{Diagnostics: inputDiagnostics(r, start, lineCount(text), len(resultPrefix))}
	if reply.Failed() {
		return reply, nil
	}
	pu := r.Unit(unitName)
	if pu == nil || len(pu.Tree.Body) == 0 {
		return nil, errors.New("repl: input unit was not loaded")
	}
	if a, ok := pu.Tree.Body[len(pu.Tree.Body)-1].(*tree.AttributeDecl); ok && a.Name.Name == resultName {
		reply.Type = r.Info.TypeOf(a.Specifier)
	}
	return reply, nil
}

func (s *Session) evalUnit(input string, imports bool) (*Reply, error) {
	src, start := s.source(input, imports)
	r, err := s.analyze(src)
	if err != nil {
		return nil, err
	}
	reply := &Reply{Diagnostics: inputDiagnostics(r, start, lineCount(input), 0)}
	if reply.Failed() {
		// Keep completion in step with the accepted declarations.
		_, err := s.analyze(s.accepted())
		return reply, err
	}
	if imports {
		s.imports = append(s.imports, input)
		return reply, nil
	}
	s.decls = append(s.decls, input)
	if pu := r.Unit(unitName); pu != nil {
		for _, stmt := range pu.Tree.Body {
			if loc := stmt.Pos(); loc == nil || loc.Line < start {
				continue
			}
			if d := r.Info.DeclarationOf(stmt); d != nil {
				reply.Declarations = append(reply.Declarations, d)
			}
		}
	}
	return reply, nil
}

// source lays out the accepted imports and declarations with the input and
// returns the text with the line the input starts on.
func (s *Session) source(input string, imports bool) (string, int) {
	var chunks []string
	chunks = append(chunks, s.imports...)
	if imports {
		start := lineCount(chunks...) + 1
		chunks = append(chunks, input)
		chunks = append(chunks, s.decls...)
		return strings.Join(chunks, "\n"), start
	}
	chunks = append(chunks, s.decls...)
	start := lineCount(chunks...) + 1
	chunks = append(chunks, input)
	return strings.Join(chunks, "\n"), start
}

func (s *Session) accepted() string {
	return strings.Join(append(append([]string(nil), s.imports...), s.decls...), "\n")
}

func lineCount(chunks ...string) int {
	n := 0
	for _, c := range chunks {
		n += strings.Count(c, "\n") + 1
	}
	return n
}

// analyze checks src as the session unit alongside the source tree.
func (s *Session) analyze(src string) (*analysis.Result, error) {
	overlay := afero.NewMemMapFs()
	fs := overlay
	if s.base != nil {
		fs = afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(afero.NewBasePathFs(s.base, s.root)), overlay)
	}
	if err := afero.WriteFile(fs, path.Join("/", unitName), []byte(src), 0644); err != nil {
		return nil, err
	}
	c, err := analysis.NewContext(s.opts...)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	if err := c.LoadTree(ctx, fs, "/"); err != nil {
		return nil, err
	}
	r, err := c.Run(ctx)
	if err != nil {
		return nil, err
	}
	s.last = r
	return r, nil
}

// Visible returns the names an input could reference.
func (s *Session) Visible() []analysis.Named {
	if s.last == nil {
		return nil
	}
	pu := s.last.Unit(unitName)
	if pu == nil || pu.Unit == nil {
		return nil
	}
	return s.last.Context.Visible(pu.Package, pu.Unit)
}

// inputDiagnostics converts the diagnostics reported on the lines of the
// input, so that their spans point into the text that was typed.
func inputDiagnostics(r *analysis.Result, start, lines, prefix int) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, d := range r.Diagnostics {
		if d.Pos == nil || d.Pos.File != unitName {
			continue
		}
		if d.Pos.Line < start || d.Pos.Line >= start+lines {
			continue
		}
		span := diagnostic.Span{
			File: inputName,
			Line: d.Pos.Line - start + 1,
			Col:  d.Pos.Col,
		}
		if span.Line == 1 {
			// Problems with the result binding itself follow from one in
			// the expression.
			if span.Col <= prefix {
				continue
			}
			span.Col -= prefix
		}
		out = append(out, diagnostic.Diagnostic{
			Severity: diagnostic.ParseSeverity(d.Severity.String()),
			Message:  d.Message,
			Spans:    []diagnostic.Span{span},
		})
	}
	return out
}

func syntaxDiagnostic(err error) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Message:  err.Error(),
	}
	var lerr *token.LocationError
	if errors.As(err, &lerr) {
		d.Message = fmt.Sprint(lerr.Err)
		if lerr.Source != nil {
			d.Spans = []diagnostic.Span{{File: inputName, Line: lerr.Source.Line, Col: lerr.Source.Col}}
		}
	}
	return d
}
