// Copyright © 2018 The ELPS authors

// Package checktest runs the analysis over annotated source files from
// tests.  A line carrying a comment of the form
//
//	// error: message
//	// warning: message
//
// expects a diagnostic of that severity on the line whose message contains
// the text after the colon.  Any other diagnostic fails the test.
package checktest

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/parser"
	"github.com/emmanuelbernard/ceylon-spec/vfs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Root is the directory trees are written to in memory.
const Root = "/src"

// Expectation is a diagnostic a source file expects.
type Expectation struct {
	File     string
	Line     int
	Severity analysis.Severity
	Message  string
}

func (e Expectation) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Severity, e.Message)
}

var expectRegexp = regexp.MustCompile(`//\s*(error|warning):\s*(.*?)\s*$`)

// Expectations scans src for expected diagnostics.
func Expectations(file, src string) []Expectation {
	var exps []Expectation
	sc := bufio.NewScanner(strings.NewReader(src))
	for line := 1; sc.Scan(); line++ {
		m := expectRegexp.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		sev := analysis.SeverityError
		if m[1] == "warning" {
			sev = analysis.SeverityWarning
		}
		exps = append(exps, Expectation{File: file, Line: line, Severity: sev, Message: m[2]})
	}
	return exps
}

// Runner is a test runner.
type Runner struct {
	// Options configure every analysis.  Each test's analysis also logs to
	// the test log.
	Options []analysis.Option
}

func (r *Runner) options(t testing.TB) ([]analysis.Option, func()) {
	l, w := NewLogrus(t)
	return append([]analysis.Option{analysis.WithLogger(l)}, r.Options...), w.Flush
}

// Check analyzes the tree of sources keyed by slash separated path.
func (r *Runner) Check(t testing.TB, srcs map[string]string) *analysis.Result {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, vfs.WriteTree(fs, Root, srcs))
	return r.CheckTree(t, fs, Root)
}

// CheckTree analyzes the source tree at root.
func (r *Runner) CheckTree(t testing.TB, fs afero.Fs, root string) *analysis.Result {
	t.Helper()
	opts, flush := r.options(t)
	defer flush()
	c, err := analysis.NewContext(opts...)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.LoadTree(ctx, fs, root))
	res, err := c.Run(ctx)
	require.NoError(t, err)
	return res
}

// AssertExpectations checks the diagnostics of res against the
// expectations of srcs.
func AssertExpectations(t testing.TB, srcs map[string]string, res *analysis.Result) bool {
	t.Helper()
	var exps []Expectation
	for file, src := range srcs {
		exps = append(exps, Expectations(file, src)...)
	}
	sort.Slice(exps, func(i, j int) bool {
		if exps[i].File != exps[j].File {
			return exps[i].File < exps[j].File
		}
		return exps[i].Line < exps[j].Line
	})

	ok := true
	matched := make([]bool, len(res.Diagnostics))
	for _, e := range exps {
		found := false
		for i, d := range res.Diagnostics {
			if matched[i] || !matches(e, d) {
				continue
			}
			matched[i] = true
			found = true
			break
		}
		ok = assert.True(t, found, "missing diagnostic %v", e) && ok
	}
	for i, d := range res.Diagnostics {
		ok = assert.True(t, matched[i], "unexpected diagnostic %v", d) && ok
	}
	return ok
}

func matches(e Expectation, d analysis.Diagnostic) bool {
	if d.Pos == nil || d.Severity != e.Severity {
		return false
	}
	return d.Pos.File == e.File && d.Pos.Line == e.Line && strings.Contains(d.Message, e.Message)
}

// RunTestFile checks the annotated unit at path as the only unit of a
// package named after its file.
func (r *Runner) RunTestFile(t *testing.T, path string) {
	src, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		t.Errorf("Unable to read test file: %v", err)
		return
	}
	name := strings.TrimSuffix(filepath.Base(path), parser.Extension)
	srcs := map[string]string{name + "/" + filepath.Base(path): string(src)}
	res := r.Check(t, srcs)
	AssertExpectations(t, srcs, res)
}

// RunTestDir runs RunTestFile over every unit in dir as a subtest.
func (r *Runner) RunTestDir(t *testing.T, dir string) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+parser.Extension))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no units in %s", dir)
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			r.RunTestFile(t, path)
		})
	}
}

// BenchmarkCheck measures the analysis of the unit at path.
func BenchmarkCheck(path string) func(*testing.B) {
	return func(b *testing.B) {
		buf, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		srcs := map[string]string{"bench/" + filepath.Base(path): string(buf)}
		b.SetBytes(int64(len(buf)))
		for i := 0; i < b.N; i++ {
			if _, err := analysis.CheckSources(srcs); err != nil {
				b.Fatalf("Check failure: %v", err)
			}
		}
	}
}
