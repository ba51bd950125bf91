// Copyright © 2024 The ELPS authors

package analysis

import (
	"testing"

	"github.com/emmanuelbernard/ceylon-spec/astutil"
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// check analyzes srcs and fails the test on a load error.
func check(t *testing.T, srcs map[string]string) *Result {
	t.Helper()
	r, err := CheckSources(srcs)
	require.NoError(t, err)
	return r
}

// checkUnit analyzes a single unit in package p.
func checkUnit(t *testing.T, src string) *Result {
	t.Helper()
	return check(t, map[string]string{"p/unit.ceylon": src})
}

func messages(ds []Diagnostic) []string {
	var msgs []string
	for _, d := range ds {
		msgs = append(msgs, d.Message)
	}
	return msgs
}

// findDecl returns the first declaration node named name in pu.
func findDecl(t *testing.T, pu *PhasedUnit, name string) tree.Decl {
	t.Helper()
	var found tree.Decl
	astutil.Inspect(pu.Tree, func(n tree.Node) bool {
		if d, ok := n.(tree.Decl); ok && found == nil && d.DeclName().Name == name {
			found = d
		}
		return found == nil
	})
	require.NotNil(t, found, "declaration %s", name)
	return found
}

// declType returns the model type of the declaration named name.
func declType(t *testing.T, r *Result, pu *PhasedUnit, name string) model.Type {
	t.Helper()
	d, ok := r.Info.DeclarationOf(findDecl(t, pu, name)).(model.TypedDeclaration)
	require.True(t, ok, "typed declaration %s", name)
	return d.Type()
}

func specifier(t *testing.T, pu *PhasedUnit, name string) tree.Expr {
	t.Helper()
	a, ok := findDecl(t, pu, name).(*tree.AttributeDecl)
	require.True(t, ok, "attribute %s", name)
	require.NotNil(t, a.Specifier)
	return a.Specifier
}

func TestNewContext_LanguageModule(t *testing.T) {
	c, err := NewContext()
	require.NoError(t, err)
	assert.Empty(t, c.LanguageUnit().Diagnostics())
	b := c.Builtins
	require.NotNil(t, b)
	assert.Equal(t, "ceylon.language", c.Language.QualifiedName())
	assert.Same(t, c.Language, b.Package.Module)
	assert.Contains(t, c.Default.Dependencies, c.Language)

	assert.True(t, model.IsSubtype(b.IntegerType(), model.NewType(b.Numeric, b.IntegerType())))
	assert.True(t, model.IsSubtype(b.StringType(), b.SequenceType(model.NewType(b.Character))))
	assert.True(t, model.IsSubtype(b.BottomType(), b.StringType()))
	assert.True(t, b.IsOptional(b.Optional(b.StringType())))
	assert.False(t, b.IsOptional(b.StringType()))
}

func TestNewContext_Options(t *testing.T) {
	c, err := NewContext(WithParallel(2), WithExclude("gen/**"))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Config().Parallel)
	assert.Equal(t, []string{"gen/**"}, c.Config().Exclude)
	assert.NotNil(t, c.Config().Logger)
	assert.NotNil(t, c.Config().Tracer)
}

func TestContext_Package(t *testing.T) {
	c, err := NewContext()
	require.NoError(t, err)
	p := c.Package([]string{"a", "b"})
	assert.Same(t, p, c.Package([]string{"a", "b"}))
	assert.NotSame(t, p, c.Package([]string{"a"}))
	assert.Same(t, c.Builtins.Package, c.Package(model.LanguagePackageName))
}

func TestContext_Visible(t *testing.T) {
	r := check(t, map[string]string{
		"q/q.ceylon":    `shared String greeting = "hi";`,
		"p/unit.ceylon": "import q { hello = greeting }\nInteger x = 1;\nvoid f(Integer x) { Integer y = x; }",
	})
	pu := r.Unit("p/unit.ceylon")
	require.NotNil(t, pu)
	require.Empty(t, r.Errors())
	f, ok := r.Info.DeclarationOf(findDecl(t, pu, "f")).(model.Scope)
	require.True(t, ok)

	visible := r.Context.Visible(f, pu.Unit)
	var names []string
	for _, v := range visible {
		names = append(names, v.Name)
	}
	require.GreaterOrEqual(t, len(names), 4)
	assert.Equal(t, []string{"x", "y", "hello", "f"}, names[:4])
	assert.Contains(t, names, "Integer")
	assert.Equal(t, "greeting", visible[2].Declaration.Name())
	_, isParam := visible[0].Declaration.(*model.Parameter)
	assert.True(t, isParam, "parameter shadows the package value")
}

// --- ScopeStack tests ---

func TestScopeStack_PushPop(t *testing.T) {
	s := NewScopeStack()
	s.Push("a")
	s.Push("b")
	assert.Equal(t, "a.b", s.Name())
	assert.Equal(t, []string{"a", "b"}, s.Path())
	s.Pop()
	assert.Equal(t, "a", s.Name())
	s.Pop()
	assert.Panics(t, s.Pop)
}

func TestScopeStack_DefineModule(t *testing.T) {
	s := NewScopeStack()
	_, err := s.DefineModule(nil)
	var fe *FatalError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Module cannot be top level", fe.Msg)

	s.Push("a")
	m, err := s.DefineModule(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, m.Name)
	s.Push("b")
	assert.Same(t, m, s.Module())
	_, err = s.DefineModule(nil)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Found two modules within the same hierarchy: 'a' and 'a.b'", fe.Msg)

	s.Pop()
	assert.Same(t, m, s.Module())
	s.Pop()
	assert.Nil(t, s.Module())
}

// --- Diagnostic tests ---

func TestDiagnostics_Dedupe(t *testing.T) {
	pu := NewPhasedUnit("p/a.ceylon", &tree.CompilationUnit{}, model.NewPackage([]string{"p"}))
	n := &tree.Ident{Name: "x"}
	pu.errorf(n, "bad: %s", "x")
	pu.errorf(n, "bad: %s", "x")
	pu.errorf(n, "worse: %s", "x")
	assert.Equal(t, []string{"bad: x", "worse: x"}, messages(pu.Diagnostics()))
}

func TestSortDiagnostics(t *testing.T) {
	r := checkUnit(t, `
void f() {
    Integer a = "one";
    Integer b = "two";
}
void g() {
    String c = 3;
}
`)
	require.Len(t, r.Diagnostics, 3)
	for i := 1; i < len(r.Diagnostics); i++ {
		assert.Less(t, r.Diagnostics[i-1].Pos.Line, r.Diagnostics[i].Pos.Line)
	}
}
