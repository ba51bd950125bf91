// Copyright © 2024 The ELPS authors

package lint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lintSources analyzes srcs and runs the given analyzers over every unit.
func lintSources(t *testing.T, srcs map[string]string, analyzers ...*Analyzer) []Diagnostic {
	t.Helper()
	r, err := analysis.CheckSources(srcs)
	require.NoError(t, err)
	for _, pu := range r.Units {
		require.False(t, pu.Failed(), "%s: %v", pu.Path, pu.Err)
	}
	return lintResult(t, r, analyzers...)
}

// lintResult runs analyzers, or the default set, over r.
func lintResult(t *testing.T, r *analysis.Result, analyzers ...*Analyzer) []Diagnostic {
	t.Helper()
	if len(analyzers) == 0 {
		analyzers = DefaultAnalyzers()
	}
	l := &Linter{Analyzers: analyzers}
	diags, err := l.Lint(r)
	require.NoError(t, err)
	return diags
}

// lintCheck runs a single analyzer on a unit of package p.
func lintCheck(t *testing.T, analyzer *Analyzer, source string) []Diagnostic {
	t.Helper()
	return lintSources(t, map[string]string{"p/test.ceylon": source}, analyzer)
}

// assertNoDiags checks that there are no diagnostics.
func assertNoDiags(t *testing.T, diags []Diagnostic) {
	t.Helper()
	if len(diags) > 0 {
		var msgs []string
		for _, d := range diags {
			msgs = append(msgs, d.String())
		}
		t.Errorf("expected no diagnostics, got %d: %v", len(diags), msgs)
	}
}

// assertDiagOnLine checks that a diagnostic exists on the given line with the given substring.
func assertDiagOnLine(t *testing.T, diags []Diagnostic, line int, substr string) {
	t.Helper()
	for _, d := range diags {
		if d.Pos.Line == line && strings.Contains(d.Message, substr) {
			return
		}
	}
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, fmt.Sprintf("line %d: %s", d.Pos.Line, d.Message))
	}
	t.Errorf("expected diagnostic on line %d containing %q, got: %v", line, substr, msgs)
}

// --- duplicate-declaration tests ---

func TestDuplicateDeclaration(t *testing.T) {
	diags := lintCheck(t, AnalyzerDuplicateDeclaration, `
Integer x = 1;
Integer x = 2;
void f(Integer a, String a) {
    Integer y = 1;
    if (true) {
        Integer y = 2;
    }
}
`)
	require.Len(t, diags, 2)
	assertDiagOnLine(t, diags, 3, "duplicate declaration: x")
	assertDiagOnLine(t, diags, 4, "duplicate declaration: a")
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Equal(t, []string{"previous declaration at p/test.ceylon:2:9"}, diags[0].Notes)
}

func TestDuplicateDeclaration_GetterSetter(t *testing.T) {
	diags := lintCheck(t, AnalyzerDuplicateDeclaration, `
class Counter() {
    variable Integer count = 0;
    shared Integer current {
        return count;
    }
    assign current {
        count := 1;
    }
}
`)
	assertNoDiags(t, diags)
}

func TestDuplicateDeclaration_AcrossUnits(t *testing.T) {
	diags := lintSources(t, map[string]string{
		"p/a.ceylon": "shared Integer x = 1;",
		"p/b.ceylon": "shared Integer x = 2;",
	}, AnalyzerDuplicateDeclaration)
	require.Len(t, diags, 1)
	assert.Equal(t, "p/b.ceylon", diags[0].Pos.File)
}

// --- missing-return tests ---

func TestMissingReturn(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		diags int
	}{
		{"return", "Integer f() { return 1; }", 0},
		{"void", "void f() { }", 0},
		{"specifier", "Integer f() => 1;", 0},
		{"formal", "interface I { shared formal Integer f(); }", 0},
		{"empty", "Integer f() { }", 1},
		{"if without else", "Integer f(Boolean b) { if (b) { return 1; } }", 1},
		{"if else", "Integer f(Boolean b) { if (b) { return 1; } else { return 2; } }", 0},
		{"else if", "Integer f(Boolean b) { if (b) { return 1; } else if (b) { return 2; } }", 1},
		{"else if else", "Integer f(Boolean b) { if (b) { return 1; } else if (b) { return 2; } else { return 3; } }", 0},
		{"while", "Integer f(Boolean b) { while (b) { return 1; } }", 1},
		{"for fail", "Integer f(Sequence<Integer> s) { for (value i in s) { } fail { return 0; } }", 0},
		{"for fail break", "Integer f(Sequence<Integer> s) { for (value i in s) { break; } fail { return 0; } }", 1},
		{"getter", "Integer g { }", 1},
		{"getter returns", "Integer g { return 1; }", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := lintCheck(t, AnalyzerMissingReturn, tt.src)
			assert.Len(t, diags, tt.diags, "%v", diags)
		})
	}
}

func TestMissingReturn_Message(t *testing.T) {
	diags := lintCheck(t, AnalyzerMissingReturn, `
String name(Boolean b) {
    if (b) {
        return "x";
    }
}
`)
	require.Len(t, diags, 1)
	assert.Equal(t, "p/test.ceylon:2:8: method does not definitely return: name (missing-return)", diags[0].String())
}

// --- unreachable-code tests ---

func TestUnreachableCode(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnreachableCode, `
Integer f(Boolean b, Sequence<Integer> s) {
    for (value i in s) {
        if (b) {
            continue;
            print("skipped");
        }
        break;
        print("never");
    }
    if (b) {
        return 1;
    } else {
        return 2;
    }
    return 3;
}
`)
	require.Len(t, diags, 3)
	assertDiagOnLine(t, diags, 6, "unreachable code")
	assertDiagOnLine(t, diags, 9, "unreachable code")
	assertDiagOnLine(t, diags, 16, "unreachable code")
	assert.Equal(t, SeverityWarning, diags[0].Severity)
}

func TestUnreachableCode_OnlyFirst(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnreachableCode, `
Integer f() {
    return 1;
    print("a");
    print("b");
}
`)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 4, "unreachable code")
}

// --- unused-import tests ---

func TestUnusedImport(t *testing.T) {
	diags := lintSources(t, map[string]string{
		"q/decls.ceylon": `
shared class Used() {}
shared class Unused() {}
shared String greeting = "hi";
`,
		"p/test.ceylon": `
import q { Used, Unused, hello = greeting }
Used u = Used();
String s = hello;
`,
	}, AnalyzerUnusedImport)
	require.Len(t, diags, 1)
	assert.Equal(t, "unused import: Unused", diags[0].Message)
	assert.Equal(t, 2, diags[0].Pos.Line)
}

func TestUnusedImport_TypeOnly(t *testing.T) {
	diags := lintSources(t, map[string]string{
		"q/decls.ceylon": "shared interface Shape {}",
		"p/test.ceylon": `
import q { Shape }
void f(Shape s) {}
`,
	}, AnalyzerUnusedImport)
	assertNoDiags(t, diags)
}

// --- framework tests ---

func TestNolint(t *testing.T) {
	diags := lintCheck(t, AnalyzerUnreachableCode, `
void f() {
    return;
    print("a"); // nolint
}
void g() {
    return;
    print("b"); // nolint:unreachable-code
}
void h() {
    return;
    print("c"); /* nolint:missing-return */
}
`)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 12, "unreachable code")
}

func TestLint_SkipsFailedUnits(t *testing.T) {
	r, err := analysis.CheckSources(map[string]string{
		"p/bad.ceylon":  "Integer f( {",
		"p/good.ceylon": "Integer f() { }",
	})
	require.NoError(t, err)
	require.True(t, r.Unit("p/bad.ceylon").Failed())
	diags := lintResult(t, r)
	require.Len(t, diags, 1)
	assert.Equal(t, "p/good.ceylon", diags[0].Pos.File)
}

func TestLint_Sorted(t *testing.T) {
	diags := lintSources(t, map[string]string{
		"p/b.ceylon": "Integer g() { }",
		"p/a.ceylon": `
Integer f() {
    return 1;
    print("x");
}
Integer h() { }
`,
	})
	var got []string
	for _, d := range diags {
		got = append(got, d.Pos.String()+" "+d.Analyzer)
	}
	assert.Equal(t, []string{
		"p/a.ceylon:4:5 unreachable-code",
		"p/a.ceylon:6:9 missing-return",
		"p/b.ceylon:1:9 missing-return",
	}, got)
}

func TestSelect(t *testing.T) {
	all, err := Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(DefaultAnalyzers()))

	some, err := Select([]string{"unused-import", " missing-return"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "unused-import", some[0].Name)
	assert.Equal(t, "missing-return", some[1].Name)

	_, err = Select([]string{"bogus"})
	assert.Error(t, err)
}

func TestFromAnalysis(t *testing.T) {
	r, err := analysis.CheckSources(map[string]string{"p/a.ceylon": `Integer x = "s";`})
	require.NoError(t, err)
	diags := FromAnalysis(r.Diagnostics)
	require.Len(t, diags, 1)
	assert.Equal(t, CheckerName, diags[0].Analyzer)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Equal(t, "p/a.ceylon", diags[0].Pos.File)
	assert.Equal(t, 1, diags[0].Pos.Line)
}

func TestReportf_NilSource(t *testing.T) {
	pass := &Pass{Analyzer: &Analyzer{Name: "x", Severity: SeverityInfo}}
	pass.Reportf(nil, "no position %d", 1)
	require.Len(t, pass.diagnostics, 1)
	d := pass.diagnostics[0]
	assert.Equal(t, Position{}, d.Pos)
	assert.Equal(t, "no position 1", d.Message)
	assert.Equal(t, SeverityInfo, d.Severity)
	assert.Equal(t, "x", d.Analyzer)
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "a.ceylon", Position{File: "a.ceylon"}.String())
	assert.Equal(t, "a.ceylon:3", Position{File: "a.ceylon", Line: 3}.String())
	assert.Equal(t, "a.ceylon:3:7", Position{File: "a.ceylon", Line: 3, Col: 7}.String())
}

func TestFormatText(t *testing.T) {
	var buf bytes.Buffer
	FormatText(&buf, []Diagnostic{{
		Pos:      Position{File: "a.ceylon", Line: 2, Col: 1},
		Message:  "duplicate declaration: x",
		Analyzer: "duplicate-declaration",
		Notes:    []string{"previous declaration at a.ceylon:1:1"},
	}})
	assert.Equal(t, "a.ceylon:2:1: duplicate declaration: x (duplicate-declaration)\n  = note: previous declaration at a.ceylon:1:1\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	err := FormatJSON(&buf, []Diagnostic{{
		Pos:      Position{File: "a.ceylon", Line: 2},
		Message:  "unused import: x",
		Analyzer: "unused-import",
	}})
	require.NoError(t, err)
	var decoded []Diagnostic
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, SeverityWarning, decoded[0].Severity, "unset severity encodes as warning")
	assert.Contains(t, buf.String(), `"severity": "warning"`)
	assert.NotContains(t, buf.String(), `"col"`)
}

func TestSeverityJSON(t *testing.T) {
	for _, s := range []Severity{SeverityError, SeverityWarning, SeverityInfo} {
		b, err := json.Marshal(s)
		require.NoError(t, err)
		var got Severity
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, s, got)
	}
	var s Severity
	assert.Error(t, json.Unmarshal([]byte(`"fatal"`), &s))
}

func TestCheckNolintToken(t *testing.T) {
	lines := map[int]string{}
	loc := func(line int) *token.Location { return &token.Location{Line: line} }
	checkNolintToken(&token.Token{Type: token.COMMENT, Text: "// nolint", Source: loc(1)}, lines)
	checkNolintToken(&token.Token{Type: token.COMMENT, Text: "//nolint:a, b", Source: loc(2)}, lines)
	checkNolintToken(&token.Token{Type: token.COMMENT, Text: "/* nolint:c */", Source: loc(3)}, lines)
	checkNolintToken(&token.Token{Type: token.COMMENT, Text: "// not a directive", Source: loc(4)}, lines)
	checkNolintToken(&token.Token{Type: token.COMMENT, Text: "// nolintx", Source: loc(5)}, lines)
	assert.Equal(t, map[int]string{1: "", 2: "a, b", 3: "c"}, lines)
}

func TestAnalyzerNames(t *testing.T) {
	assert.Equal(t, []string{
		"duplicate-declaration",
		"missing-return",
		"unreachable-code",
		"unused-import",
	}, AnalyzerNames())
}

func TestAnalyzerDoc(t *testing.T) {
	doc := AnalyzerDoc()
	for _, name := range AnalyzerNames() {
		assert.Contains(t, doc, "  "+name+"\n")
	}
	assert.Contains(t, doc, "    Report imports whose declaration is never referenced in the importing unit.\n")
}
