// Copyright © 2024 The ELPS authors

package astutil

import (
	"strings"
	"testing"

	"github.com/emmanuelbernard/ceylon-spec/parser"
	"github.com/emmanuelbernard/ceylon-spec/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const walkSource = `import p { C }
class D(Integer n) extends C() {
	shared Integer twice() {
		if (n > 0) { return n * 2; }
		return 0;
	}
}
`

func parse(t *testing.T, src string) *tree.CompilationUnit {
	t.Helper()
	cu, err := parser.ParseFile("walk.ceylon", strings.NewReader(src))
	require.NoError(t, err)
	return cu
}

func TestChildren_Leaf(t *testing.T) {
	id := &tree.Ident{Name: "x"}
	assert.Empty(t, Children(id))
}

func TestChildren_OptionalFieldsSkipped(t *testing.T) {
	ret := &tree.Return{}
	assert.Empty(t, Children(ret))
	attr := &tree.AttributeDecl{Name: &tree.Ident{Name: "x"}, Type: &tree.InferType{}}
	assert.Len(t, Children(attr), 2)
}

func TestInspect_VisitsAll(t *testing.T) {
	cu := parse(t, walkSource)
	var methods, returns int
	Inspect(cu, func(n tree.Node) bool {
		switch n.(type) {
		case *tree.MethodDecl:
			methods++
		case *tree.Return:
			returns++
		}
		return true
	})
	assert.Equal(t, 1, methods)
	assert.Equal(t, 2, returns)
}

func TestInspect_Prune(t *testing.T) {
	cu := parse(t, walkSource)
	var returns int
	Inspect(cu, func(n tree.Node) bool {
		if _, ok := n.(*tree.IfStmt); ok {
			return false
		}
		if _, ok := n.(*tree.Return); ok {
			returns++
		}
		return true
	})
	assert.Equal(t, 1, returns)
}

func TestWalk_ParentAndDepth(t *testing.T) {
	cu := parse(t, walkSource)
	var rootSeen bool
	Walk(cu, func(n, parent tree.Node, depth int) {
		if n == tree.Node(cu) {
			rootSeen = true
			assert.Nil(t, parent)
			assert.Equal(t, 0, depth)
			return
		}
		assert.NotNil(t, parent)
		assert.Positive(t, depth)
	})
	assert.True(t, rootSeen)
}

func TestPathTo(t *testing.T) {
	cu := parse(t, walkSource)
	// line 4 is the if statement; column 23 falls on "n" in "n * 2"
	path := PathTo(cu, 4, 23)
	require.NotEmpty(t, path)
	last := path[len(path)-1]
	id, ok := last.(*tree.Ident)
	require.True(t, ok, "innermost node is %T", last)
	assert.Equal(t, "n", id.Name)

	var sawMethod bool
	for _, n := range path {
		if m, ok := n.(*tree.MethodDecl); ok {
			sawMethod = true
			assert.Equal(t, "twice", m.Name.Name)
		}
	}
	assert.True(t, sawMethod)
}

func TestIdents(t *testing.T) {
	cu := parse(t, "void f(Integer a) { a; }")
	var names []string
	for _, id := range Idents(cu) {
		if id.Name != "" {
			names = append(names, id.Name)
		}
	}
	assert.Equal(t, []string{"f", "Integer", "a", "a"}, names)
}
