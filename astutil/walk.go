// Copyright © 2024 The ELPS authors

// Package astutil provides shared syntax tree walking utilities.
//
// These helpers are used by the analysis, lint and lsp packages for
// traversing parsed compilation units.
package astutil

import (
	"fmt"

	"github.com/emmanuelbernard/ceylon-spec/parser/token"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// Children returns the direct children of n in source order.
func Children(n tree.Node) []tree.Node {
	var c collector
	switch n := n.(type) {
	case *tree.CompilationUnit:
		if n.Module != nil {
			c.add(n.Module)
		}
		for _, imp := range n.Imports {
			c.add(imp)
		}
		for _, s := range n.Body {
			c.add(s)
		}
	case *tree.ModuleDescriptor:
		c.add(n.Path)
		for _, imp := range n.Imports {
			c.add(imp)
		}
	case *tree.ModuleImport:
		c.add(n.Path)
	case *tree.Import:
		c.add(n.Path)
		for _, e := range n.Elements {
			c.add(e)
		}
	case *tree.ImportElement:
		if n.Alias != nil {
			c.add(n.Alias)
		}
		c.add(n.Name)
	case *tree.Path:
		for _, s := range n.Segments {
			c.add(s)
		}
	case *tree.Ident:
	case *tree.ClassDecl:
		c.add(n.Name)
		c.typeParams(n.TypeParams)
		if n.Params != nil {
			c.add(n.Params)
		}
		if n.Extends != nil {
			c.add(n.Extends)
		}
		c.types(n.Satisfies)
		c.block(n.Body)
	case *tree.InterfaceDecl:
		c.add(n.Name)
		c.typeParams(n.TypeParams)
		c.types(n.Satisfies)
		c.block(n.Body)
	case *tree.MethodDecl:
		c.typ(n.Type)
		c.add(n.Name)
		c.typeParams(n.TypeParams)
		if n.Params != nil {
			c.add(n.Params)
		}
		c.block(n.Body)
		c.expr(n.Specifier)
	case *tree.AttributeDecl:
		c.typ(n.Type)
		c.add(n.Name)
		c.expr(n.Specifier)
	case *tree.GetterDecl:
		c.typ(n.Type)
		c.add(n.Name)
		c.block(n.Body)
	case *tree.SetterDecl:
		c.add(n.Name)
		c.block(n.Body)
	case *tree.Parameter:
		c.typ(n.Type)
		c.add(n.Name)
		c.expr(n.Default)
	case *tree.ParameterList:
		for _, p := range n.Params {
			c.add(p)
		}
	case *tree.TypeParameter:
		c.add(n.Name)
	case *tree.ExtendedType:
		c.add(n.Type)
		if n.Args != nil {
			c.add(n.Args)
		}
	case *tree.Variable:
		c.typ(n.Type)
		c.add(n.Name)
		c.expr(n.Specifier)
	case *tree.BaseType:
		c.add(n.Name)
		c.types(n.Args)
	case *tree.UnionType:
		c.types(n.Cases)
	case *tree.OptionalType:
		c.typ(n.Inner)
	case *tree.InferType, *tree.VoidType:
	case *tree.Block:
		for _, s := range n.Stmts {
			c.add(s)
		}
	case *tree.ExprStmt:
		c.expr(n.X)
	case *tree.Return:
		c.expr(n.X)
	case *tree.Break, *tree.Continue:
	case *tree.IfStmt:
		c.add(n.If)
		if n.Else != nil {
			c.add(n.Else)
		}
	case *tree.IfClause:
		c.add(n.Cond)
		c.block(n.Body)
	case *tree.ElseClause:
		c.block(n.Body)
		if n.If != nil {
			c.add(n.If)
		}
	case *tree.WhileStmt:
		c.add(n.Clause)
	case *tree.WhileClause:
		c.add(n.Cond)
		c.block(n.Body)
	case *tree.ForStmt:
		c.add(n.Clause)
		if n.Fail != nil {
			c.add(n.Fail)
		}
	case *tree.ForClause:
		c.add(n.Iter)
		c.block(n.Body)
	case *tree.FailClause:
		c.block(n.Body)
	case *tree.BooleanCondition:
		c.expr(n.X)
	case *tree.ExistsCondition:
		c.variable(n.Var)
		c.expr(n.X)
	case *tree.NonemptyCondition:
		c.variable(n.Var)
		c.expr(n.X)
	case *tree.IsCondition:
		c.typ(n.Type)
		c.variable(n.Var)
		c.expr(n.X)
	case *tree.ValueIterator:
		c.variable(n.Var)
		c.expr(n.Source)
	case *tree.KeyValueIterator:
		c.variable(n.Key)
		c.variable(n.Value)
		c.expr(n.Source)
	case *tree.BaseMemberExpr:
		c.add(n.Name)
		c.types(n.TypeArgs)
	case *tree.BaseTypeExpr:
		c.add(n.Name)
		c.types(n.TypeArgs)
	case *tree.QualifiedMemberExpr:
		c.expr(n.Primary)
		c.add(n.Name)
		c.types(n.TypeArgs)
	case *tree.QualifiedTypeExpr:
		c.expr(n.Primary)
		c.add(n.Name)
		c.types(n.TypeArgs)
	case *tree.InvocationExpr:
		c.expr(n.Primary)
		if n.Positional != nil {
			c.add(n.Positional)
		}
		if n.Named != nil {
			c.add(n.Named)
		}
	case *tree.PositionalArgs:
		for _, a := range n.Args {
			c.expr(a)
		}
	case *tree.NamedArgs:
		for _, a := range n.Args {
			c.add(a)
		}
		if n.Sequenced != nil {
			c.add(n.Sequenced)
		}
	case *tree.NamedArg:
		c.add(n.Name)
		c.expr(n.X)
	case *tree.SequencedArg:
		for _, x := range n.Exprs {
			c.expr(x)
		}
	case *tree.IndexExpr:
		c.expr(n.Primary)
		c.expr(n.Index)
		c.expr(n.Upper)
	case *tree.StringLit, *tree.NaturalLit, *tree.FloatLit, *tree.CharLit, *tree.QuotedLit,
		*tree.ThisExpr, *tree.OuterExpr, *tree.SuperExpr:
	case *tree.SequenceExpr:
		for _, x := range n.Elems {
			c.expr(x)
		}
	case *tree.ParenExpr:
		c.expr(n.X)
	case *tree.BinaryExpr:
		c.expr(n.X)
		c.expr(n.Y)
	case *tree.PrefixExpr:
		c.expr(n.X)
	case *tree.PostfixExpr:
		c.expr(n.X)
	case *tree.IsExpr:
		c.expr(n.X)
		c.typ(n.Type)
	case *tree.ExistsExpr:
		c.expr(n.X)
	case *tree.NonemptyExpr:
		c.expr(n.X)
	default:
		panic(fmt.Sprintf("astutil: unexpected node type %T", n))
	}
	return c.nodes
}

// collector skips absent optional children.  Typed nil pointers stored in an
// interface are not nil, so each field kind gets its own check.
type collector struct {
	nodes []tree.Node
}

func (c *collector) add(n tree.Node) {
	c.nodes = append(c.nodes, n)
}

func (c *collector) expr(x tree.Expr) {
	if x != nil {
		c.add(x)
	}
}

func (c *collector) typ(t tree.Type) {
	if t != nil {
		c.add(t)
	}
}

func (c *collector) types(ts []tree.Type) {
	for _, t := range ts {
		c.add(t)
	}
}

func (c *collector) typeParams(tps []*tree.TypeParameter) {
	for _, tp := range tps {
		c.add(tp)
	}
}

func (c *collector) block(b *tree.Block) {
	if b != nil {
		c.add(b)
	}
}

func (c *collector) variable(v *tree.Variable) {
	if v != nil {
		c.add(v)
	}
}

// Inspect traverses the tree rooted at n depth-first, calling fn for each
// node.  Children are skipped when fn returns false.
func Inspect(n tree.Node, fn func(tree.Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range Children(n) {
		Inspect(child, fn)
	}
}

// Walk calls fn for every node in the tree, depth-first.  parent is nil for
// the root.
func Walk(root tree.Node, fn func(node, parent tree.Node, depth int)) {
	walkNode(root, nil, 0, fn)
}

func walkNode(n, parent tree.Node, depth int, fn func(tree.Node, tree.Node, int)) {
	fn(n, parent, depth)
	for _, child := range Children(n) {
		walkNode(child, n, depth+1, fn)
	}
}

// PathTo returns the chain of nodes from root to the innermost node whose
// start precedes or equals the position (line, col), with the innermost node
// last.  Positions are 1-based.  A node is considered to extend until the
// start of its next sibling.
func PathTo(root tree.Node, line, col int) []tree.Node {
	target := &token.Location{Line: line, Col: col}
	var path []tree.Node
	n := root
	for n != nil {
		path = append(path, n)
		var next tree.Node
		for _, child := range Children(n) {
			pos := child.Pos()
			if pos == nil {
				continue
			}
			if target.Before(pos) {
				break
			}
			next = child
		}
		n = next
	}
	return path
}

// Idents returns every identifier occurrence under root.
func Idents(root tree.Node) []*tree.Ident {
	var ids []*tree.Ident
	Inspect(root, func(n tree.Node) bool {
		if id, ok := n.(*tree.Ident); ok {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}
