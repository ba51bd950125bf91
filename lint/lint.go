// Copyright © 2024 The ELPS authors

// Package lint runs the later passes over analyzed source units.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives a unit whose names and types are already resolved and
// reports diagnostics.  The framework runs the analyzers, applies
// suppression comments and formats the output.
package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/parser/token"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "unused-import").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Filename is the source file being analyzed.
	Filename string

	// Unit is the analyzed unit.  Its names are resolved and its
	// expressions checked.
	Unit *analysis.PhasedUnit

	// Info holds the side tables of the analysis.
	Info *analysis.Info

	// diagnostics collects reported findings.
	diagnostics []Diagnostic
}

// Tree returns the syntax tree of the unit.
func (p *Pass) Tree() *tree.CompilationUnit {
	return p.Unit.Tree
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic at a position.
func (p *Pass) Reportf(source *token.Location, format string, args ...interface{}) {
	p.Report(Diagnostic{
		Pos:     position(source),
		Message: fmt.Sprintf(format, args...),
	})
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos" yaml:"pos"`

	// Message is a human-readable description of the problem.
	Message string `json:"message" yaml:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer" yaml:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity" yaml:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
	Col  int    `json:"col,omitempty" yaml:"col,omitempty"`
}

// String returns the position in file:line format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line: message (analyzer)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// CheckerName is the analyzer name given to diagnostics of the type checker.
const CheckerName = "typecheck"

// FromAnalysis converts the diagnostics of semantic analysis so they can be
// reported alongside lint findings.
func FromAnalysis(ds []analysis.Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(ds))
	for _, d := range ds {
		ld := Diagnostic{
			Message:  d.Message,
			Analyzer: CheckerName,
		}
		switch d.Severity {
		case analysis.SeverityError:
			ld.Severity = SeverityError
		case analysis.SeverityWarning:
			ld.Severity = SeverityWarning
		default:
			ld.Severity = SeverityInfo
		}
		ld.Pos = position(d.Pos)
		out = append(out, ld)
	}
	return out
}

// Linter runs a set of analyzers over analyzed units.
type Linter struct {
	Analyzers []*Analyzer
}

// Lint runs the analyzers over every unit of r.  Units stopped by a syntax
// or module error are skipped.
func (l *Linter) Lint(r *analysis.Result) ([]Diagnostic, error) {
	var all []Diagnostic
	for _, pu := range r.Units {
		diags, err := l.LintUnit(pu, r.Info)
		if err != nil {
			return nil, err
		}
		all = append(all, diags...)
	}
	SortDiagnostics(all)
	return all, nil
}

// LintUnit runs the analyzers over a single unit.
func (l *Linter) LintUnit(pu *analysis.PhasedUnit, info *analysis.Info) ([]Diagnostic, error) {
	if pu.Failed() || pu.Phase < analysis.PhaseChecked {
		return nil, nil
	}
	var all []Diagnostic
	for _, analyzer := range l.Analyzers {
		pass := &Pass{
			Analyzer: analyzer,
			Filename: pu.Path,
			Unit:     pu,
			Info:     info,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, fmt.Errorf("%s: analyzer %s: %w", pu.Path, analyzer.Name, err)
		}
		// Set file on diagnostics that don't have one
		for i := range pass.diagnostics {
			if pass.diagnostics[i].Pos.File == "" {
				pass.diagnostics[i].Pos.File = pu.Path
			}
		}
		all = append(all, pass.diagnostics...)
	}
	all = filterSuppressed(all, pu.Tree.Comments)
	SortDiagnostics(all)
	return all, nil
}

// SortDiagnostics orders diagnostics by file, line and column.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Pos, diags[j].Pos
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
}

// filterSuppressed removes diagnostics on lines with nolint comments.
func filterSuppressed(diags []Diagnostic, comments []*token.Token) []Diagnostic {
	nolintLines := make(map[int]string) // line -> "" (all) or "analyzer1,analyzer2"
	for _, c := range comments {
		checkNolintToken(c, nolintLines)
	}

	var filtered []Diagnostic
	for _, d := range diags {
		directive, ok := nolintLines[d.Pos.Line]
		if !ok {
			filtered = append(filtered, d)
			continue
		}
		// Empty directive = suppress all
		if directive == "" {
			continue
		}
		suppressed := false
		for _, name := range strings.Split(directive, ",") {
			if strings.TrimSpace(name) == d.Analyzer {
				suppressed = true
				break
			}
		}
		if !suppressed {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

func checkNolintToken(tok *token.Token, lines map[int]string) {
	if tok == nil || tok.Source == nil {
		return
	}
	text := strings.TrimSpace(tok.Text)
	switch {
	case strings.HasPrefix(text, "//"):
		text = strings.TrimPrefix(text, "//")
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	}
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "nolint") {
		return
	}
	rest := strings.TrimPrefix(text, "nolint")
	if rest == "" {
		lines[tok.Source.Line] = ""
		return
	}
	if strings.HasPrefix(rest, ":") {
		lines[tok.Source.Line] = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	}
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerDuplicateDeclaration,
		AnalyzerMissingReturn,
		AnalyzerUnreachableCode,
		AnalyzerUnusedImport,
	}
}

// Select returns the default analyzers named in names.  An empty list
// selects every default analyzer.
func Select(names []string) ([]*Analyzer, error) {
	all := DefaultAnalyzers()
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]*Analyzer, len(all))
	for _, a := range all {
		byName[a.Name] = a
	}
	var selected []*Analyzer
	for _, name := range names {
		a, ok := byName[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("unknown check: %q", name)
		}
		selected = append(selected, a)
	}
	return selected, nil
}
