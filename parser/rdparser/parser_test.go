// Copyright © 2018 The ELPS authors

package rdparser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/emmanuelbernard/ceylon-spec/parser/token"
	"github.com/emmanuelbernard/ceylon-spec/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sexpr renders an expression in prefix form so precedence is visible.
func sexpr(x tree.Expr) string {
	switch x := x.(type) {
	case *tree.BaseMemberExpr:
		return x.Name.Name + typeArgs(x.TypeArgs)
	case *tree.BaseTypeExpr:
		return x.Name.Name + typeArgs(x.TypeArgs)
	case *tree.QualifiedMemberExpr:
		return fmt.Sprintf("(%s %s %s)", x.Op, sexpr(x.Primary), x.Name.Name+typeArgs(x.TypeArgs))
	case *tree.QualifiedTypeExpr:
		return fmt.Sprintf("(%s %s %s)", x.Op, sexpr(x.Primary), x.Name.Name)
	case *tree.InvocationExpr:
		var args []string
		if x.Positional != nil {
			for _, a := range x.Positional.Args {
				args = append(args, sexpr(a))
			}
			return fmt.Sprintf("(call %s%s)", sexpr(x.Primary), prefixed(args))
		}
		for _, a := range x.Named.Args {
			args = append(args, a.Name.Name+"="+sexpr(a.X))
		}
		if x.Named.Sequenced != nil {
			for _, a := range x.Named.Sequenced.Exprs {
				args = append(args, sexpr(a))
			}
		}
		return fmt.Sprintf("(named %s%s)", sexpr(x.Primary), prefixed(args))
	case *tree.IndexExpr:
		op := "[]"
		if x.Safe {
			op = "?[]"
		}
		if x.Range {
			upper := "..."
			if x.Upper != nil {
				upper = sexpr(x.Upper)
			}
			return fmt.Sprintf("(%s %s %s %s)", op, sexpr(x.Primary), sexpr(x.Index), upper)
		}
		return fmt.Sprintf("(%s %s %s)", op, sexpr(x.Primary), sexpr(x.Index))
	case *tree.StringLit:
		return fmt.Sprintf("%q", x.Text)
	case *tree.NaturalLit:
		return x.Text
	case *tree.FloatLit:
		return x.Text
	case *tree.CharLit:
		return "`" + x.Text + "`"
	case *tree.QuotedLit:
		return "'" + x.Text + "'"
	case *tree.ThisExpr:
		return "this"
	case *tree.OuterExpr:
		return "outer"
	case *tree.SuperExpr:
		return "super"
	case *tree.SequenceExpr:
		var elems []string
		for _, e := range x.Elems {
			elems = append(elems, sexpr(e))
		}
		return "{" + strings.Join(elems, " ") + "}"
	case *tree.ParenExpr:
		return sexpr(x.X)
	case *tree.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", x.Op, sexpr(x.X), sexpr(x.Y))
	case *tree.PrefixExpr:
		return fmt.Sprintf("(%s %s)", x.Op, sexpr(x.X))
	case *tree.PostfixExpr:
		return fmt.Sprintf("(%s %s post)", x.Op, sexpr(x.X))
	case *tree.IsExpr:
		return fmt.Sprintf("(is %s %s)", sexpr(x.X), typeString(x.Type))
	case *tree.ExistsExpr:
		return fmt.Sprintf("(exists %s)", sexpr(x.X))
	case *tree.NonemptyExpr:
		return fmt.Sprintf("(nonempty %s)", sexpr(x.X))
	}
	return fmt.Sprintf("<%T>", x)
}

func prefixed(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return " " + strings.Join(args, " ")
}

func typeArgs(args []tree.Type) string {
	if len(args) == 0 {
		return ""
	}
	var s []string
	for _, a := range args {
		s = append(s, typeString(a))
	}
	return "<" + strings.Join(s, ",") + ">"
}

func typeString(t tree.Type) string {
	switch t := t.(type) {
	case *tree.BaseType:
		return t.Name.Name + typeArgs(t.Args)
	case *tree.UnionType:
		var s []string
		for _, c := range t.Cases {
			s = append(s, typeString(c))
		}
		return strings.Join(s, "|")
	case *tree.OptionalType:
		return typeString(t.Inner) + "?"
	case *tree.InferType:
		if t.Function {
			return "function"
		}
		return "value"
	case *tree.VoidType:
		return "void"
	}
	return fmt.Sprintf("<%T>", t)
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		source string
		output string
	}{
		{`x`, `x`},
		{`12`, `12`},
		{`0.3`, `0.3`},
		{`1.5e3`, `1.5e3`},
		{`"x\nyz"`, `"x\nyz"`},
		{"`c`", "`c`"},
		{`'a.b'`, `'a.b'`},
		{`-1`, `(- 1)`},
		{`1 + 2 * 3`, `(+ 1 (* 2 3))`},
		{`(1 + 2) * 3`, `(* (+ 1 2) 3)`},
		{`2 ** 3 ** 2`, `(** 2 (** 3 2))`},
		{`a := b := c`, `(:= a (:= b c))`},
		{`a += 1`, `(+= a 1)`},
		{`a || b && c`, `(|| a (&& b c))`},
		{`a == b || c != d`, `(|| (== a b) (!= c d))`},
		{`x ?: y`, `(?: x y)`},
		{`1..n`, `(.. 1 n)`},
		{`k -> v`, `(-> k v)`},
		{`a < b`, `(< a b)`},
		{`a <=> b`, `(<=> a b)`},
		{`x in s`, `(in x s)`},
		{`x is String`, `(is x String)`},
		{`x is String?`, `(is x String?)`},
		{`x exists`, `(exists x)`},
		{`s nonempty`, `(nonempty s)`},
		{`i++`, `(++ i post)`},
		{`++i`, `(++ i)`},
		{`!done`, `(! done)`},
		{`$n`, `($ n)`},
		{`a | b & c`, `(| a (& b c))`},
		{`a.b.c`, `(. (. a b) c)`},
		{`a?.b`, `(?. a b)`},
		{`a*.b`, `(*. a b)`},
		{`f()`, `(call f)`},
		{`f(1, g(2))`, `(call f 1 (call g 2))`},
		{`C(1).x`, `(. (call C 1) x)`},
		{`f<String>(x)`, `(call f<String> x)`},
		{`Entry<String,Integer>(k, v)`, `(call Entry<String,Integer> k v)`},
		{`a < B`, `(< a B)`},
		{`f { x = 1; y = "a"; }`, `(named f x=1 y="a")`},
		{`f { x = 1; a, b }`, `(named f x=1 a b)`},
		{`s[0]`, `([] s 0)`},
		{`s?[0]`, `(?[] s 0)`},
		{`s[1..2]`, `([] s 1 2)`},
		{`s[1...]`, `([] s 1 ...)`},
		{`{1, 2, 3}`, `{1 2 3}`},
		{`{}`, `{}`},
		{`this.x`, `(. this x)`},
		{`outer.x`, `(. outer x)`},
		{`super.x()`, `(call (. super x))`},
		{`a.Inner`, `(. a Inner)`},
	}

	for i, test := range tests {
		name := fmt.Sprintf("test%d", i)
		p := New(token.NewScanner(name, strings.NewReader(test.source)))
		x, err := p.ParseExpression()
		if !assert.NoError(t, err, "test %d: %s", i, test.source) {
			continue
		}
		testLocations(t, x)
		assert.Equal(t, test.output, sexpr(x), "test %d: %s", i, test.source)
	}
}

func testLocations(t *testing.T, x tree.Expr) {
	t.Helper()
	if x.Pos() == nil {
		t.Errorf("expression missing source location: %T", x)
	}
	if p, ok := x.(*tree.BinaryExpr); ok {
		testLocations(t, p.X)
		testLocations(t, p.Y)
	}
}

func parseUnit(t *testing.T, src string) *tree.CompilationUnit {
	t.Helper()
	cu, err := Parse("test.ceylon", strings.NewReader(src))
	require.NoError(t, err)
	return cu
}

func TestParseDeclarations(t *testing.T) {
	cu := parseUnit(t, `
import p.q { C, D = E }

shared class Box<out T>(T item, String... tags) extends Base(item) satisfies Container, Sized {
	shared T item = item;
	variable Integer n := 0;
	shared Integer count { return n; }
	assign count { n := count; }
	shared formal void reset();
	String describe(String prefix = "box") => prefix;
}

interface Sized satisfies Container {
	shared formal Integer size;
}

function twice(Integer x) { return x * 2; }
`)
	require.Len(t, cu.Imports, 1)
	imp := cu.Imports[0]
	assert.Equal(t, "p.q", imp.Path.String())
	require.Len(t, imp.Elements, 2)
	assert.Equal(t, "C", imp.Elements[0].LocalName())
	assert.Equal(t, "D", imp.Elements[1].LocalName())
	assert.Equal(t, "E", imp.Elements[1].Name.Name)

	require.Len(t, cu.Body, 3)
	class, ok := cu.Body[0].(*tree.ClassDecl)
	require.True(t, ok)
	assert.True(t, class.Shared)
	assert.Equal(t, "Box", class.Name.Name)
	require.Len(t, class.TypeParams, 1)
	assert.Equal(t, tree.Covariant, class.TypeParams[0].Variance)
	require.Len(t, class.Params.Params, 2)
	assert.True(t, class.Params.Params[1].Sequenced)
	assert.Equal(t, "Base", class.Extends.Type.Name.Name)
	assert.Len(t, class.Extends.Args.Args, 1)
	assert.Len(t, class.Satisfies, 2)

	body := class.Body.Stmts
	require.Len(t, body, 6)
	attr := body[0].(*tree.AttributeDecl)
	assert.True(t, attr.Shared)
	assert.False(t, attr.Assign)
	assert.Equal(t, "T", typeString(attr.Type))
	attr = body[1].(*tree.AttributeDecl)
	assert.True(t, attr.Variable)
	assert.True(t, attr.Assign)
	getter := body[2].(*tree.GetterDecl)
	assert.Equal(t, "count", getter.Name.Name)
	setter := body[3].(*tree.SetterDecl)
	assert.Equal(t, "count", setter.Name.Name)
	formal := body[4].(*tree.MethodDecl)
	assert.True(t, formal.Formal)
	assert.True(t, tree.IsVoid(formal.Type))
	assert.Nil(t, formal.Body)
	describe := body[5].(*tree.MethodDecl)
	assert.NotNil(t, describe.Specifier)
	assert.NotNil(t, describe.Params.Params[0].Default)

	iface := cu.Body[1].(*tree.InterfaceDecl)
	assert.Equal(t, "Sized", iface.Name.Name)

	fn := cu.Body[2].(*tree.MethodDecl)
	it, ok := fn.Type.(*tree.InferType)
	require.True(t, ok)
	assert.True(t, it.Function)
}

func TestParseStatements(t *testing.T) {
	cu := parseUnit(t, `
void f(String? s, Sequence<Integer> xs) {
	if (exists s) {
		print(s);
	} else if (exists String t = s) {
	} else {
		return;
	}
	while (true) { break; }
	for (Integer x in xs) { continue; } fail { }
	for (value k -> value v in m) { }
	if (is String y = s) { }
	if (nonempty xs) { }
	Integer|String? u = null;
}
`)
	require.Len(t, cu.Body, 1)
	m := cu.Body[0].(*tree.MethodDecl)
	opt, ok := m.Params.Params[0].Type.(*tree.OptionalType)
	require.True(t, ok)
	assert.Equal(t, "String", typeString(opt.Inner))

	stmts := m.Body.Stmts
	require.Len(t, stmts, 7)
	ifs := stmts[0].(*tree.IfStmt)
	ec := ifs.If.Cond.(*tree.ExistsCondition)
	assert.Nil(t, ec.Var)
	assert.NotNil(t, ec.X)
	require.NotNil(t, ifs.Else.If)
	ec = ifs.Else.If.If.Cond.(*tree.ExistsCondition)
	require.NotNil(t, ec.Var)
	assert.Equal(t, "t", ec.Var.Name.Name)
	assert.NotNil(t, ifs.Else.If.Else.Body)

	_, ok = stmts[1].(*tree.WhileStmt)
	assert.True(t, ok)
	fs := stmts[2].(*tree.ForStmt)
	assert.NotNil(t, fs.Fail)
	vi := fs.Clause.Iter.(*tree.ValueIterator)
	assert.Equal(t, "x", vi.Var.Name.Name)
	kv := stmts[3].(*tree.ForStmt).Clause.Iter.(*tree.KeyValueIterator)
	assert.True(t, tree.IsInfer(kv.Key.Type))
	assert.Equal(t, "v", kv.Value.Name.Name)
	ic := stmts[4].(*tree.IfStmt).If.Cond.(*tree.IsCondition)
	assert.Equal(t, "String", typeString(ic.Type))
	require.NotNil(t, ic.Var)
	_, ok = stmts[5].(*tree.IfStmt).If.Cond.(*tree.NonemptyCondition)
	assert.True(t, ok)
	local := stmts[6].(*tree.AttributeDecl)
	assert.Equal(t, "Integer|String?", typeString(local.Type))
}

func TestParseModuleDescriptor(t *testing.T) {
	cu := parseUnit(t, `module a.b { import c.d; import e; }`)
	require.NotNil(t, cu.Module)
	assert.Equal(t, "a.b", cu.Module.Path.String())
	require.Len(t, cu.Module.Imports, 2)
	assert.Equal(t, "c.d", cu.Module.Imports[0].Path.String())
	assert.Empty(t, cu.Body)
}

func TestComments(t *testing.T) {
	cu := parseUnit(t, `// leading
class C() { /* inner */ }
`)
	require.Len(t, cu.Body, 1)
	require.Len(t, cu.Comments, 2)
	assert.Equal(t, "// leading", cu.Comments[0].Text)
	assert.Equal(t, "/* inner */", cu.Comments[1].Text)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		source string
		errmsg string
	}{
		{`value x = 1`, `expected ; but found EOF`},
		{`class C() {`, `unmatched {`},
		{`shared foo;`, `unexpected identifier "foo" following annotations`},
		{`value x = "abc;`, `unterminated string literal`},
		{`value x = ;`, `unexpected ; ";"`},
		{`void f(Integer) {}`, `expected identifier but found )`},
	}

	for i, test := range tests {
		name := fmt.Sprintf("test%d", i)
		_, err := Parse(name, strings.NewReader(test.source))
		if !assert.Error(t, err, "test %d", i) {
			continue
		}
		var locErr *token.LocationError
		require.ErrorAs(t, err, &locErr)
		assert.Equal(t, name, locErr.Source.File)
		assert.Contains(t, err.Error(), test.errmsg, "test %d", i)
	}
}
