// Copyright © 2024 The ELPS authors

package analysis

import (
	"fmt"

	"github.com/emmanuelbernard/ceylon-spec/astutil"
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// Bind creates the declarations of pu and records the scope and unit of
// every node.  Binding builds structure only and reports nothing.
func (c *Context) Bind(pu *PhasedUnit) {
	if pu.Failed() || pu.Phase >= PhaseBound {
		return
	}
	c.logUnit(pu, PhaseBound).Debug("binding declarations")
	pu.Unit = model.NewUnit(pu.Package, pu.Path, pu.Tree)
	c.byUnit[pu.Unit] = pu
	b := &binder{info: c.Info, unit: pu.Unit}
	b.visit(pu.Tree, pu.Package)
	pu.Phase = PhaseBound
}

type binder struct {
	info *Info
	unit *model.Unit
}

func (b *binder) record(n tree.Node, s model.Scope) {
	b.info.Scopes[n] = s
	b.info.Units[n] = b.unit
}

func (b *binder) origin(n tree.Decl, s model.Scope, shared bool) model.Origin {
	return model.Origin{
		Name:      n.DeclName().Name,
		Container: s,
		Unit:      b.unit,
		Node:      n,
		Shared:    shared,
	}
}

// declare adds d to s and links it to its node.
func (b *binder) declare(n tree.Decl, d model.Declaration, s model.Scope) {
	s.AddMember(d)
	b.info.Decls[n] = d
	b.record(n.DeclName(), s)
	if _, ok := s.(*model.Package); ok {
		b.unit.Declarations = append(b.unit.Declarations, d)
	}
}

func (b *binder) visitAll(s model.Scope, nodes ...tree.Node) {
	for _, n := range nodes {
		b.visit(n, s)
	}
}

func (b *binder) visitBlock(blk *tree.Block, s model.Scope) {
	if blk != nil {
		b.visit(blk, s)
	}
}

func (b *binder) visit(n tree.Node, s model.Scope) {
	b.record(n, s)
	switch n := n.(type) {
	case *tree.ClassDecl:
		d := model.NewClass(b.origin(n, s, n.Shared))
		d.Abstract = n.Abstract
		b.declare(n, d, s)
		for _, tp := range n.TypeParams {
			d.AddTypeParameter(b.typeParameter(tp, d))
		}
		if n.Params != nil {
			b.parameters(n.Params, d, d)
		}
		if n.Extends != nil {
			b.visit(n.Extends, d)
		}
		for _, t := range n.Satisfies {
			b.visit(t, d)
		}
		b.visitBlock(n.Body, d)
	case *tree.InterfaceDecl:
		d := model.NewInterface(b.origin(n, s, n.Shared))
		b.declare(n, d, s)
		for _, tp := range n.TypeParams {
			d.AddTypeParameter(b.typeParameter(tp, d))
		}
		for _, t := range n.Satisfies {
			b.visit(t, d)
		}
		b.visitBlock(n.Body, d)
	case *tree.MethodDecl:
		d := model.NewMethod(b.origin(n, s, n.Shared))
		d.Void = tree.IsVoid(n.Type)
		d.Formal = n.Formal
		b.declare(n, d, s)
		for _, tp := range n.TypeParams {
			d.AddTypeParameter(b.typeParameter(tp, d))
		}
		b.visit(n.Type, d)
		if n.Params != nil {
			b.parameters(n.Params, d, d)
		}
		b.visitBlock(n.Body, d)
		if n.Specifier != nil {
			b.visit(n.Specifier, d)
		}
	case *tree.AttributeDecl:
		d := model.NewSimpleValue(b.origin(n, s, n.Shared))
		d.Variable = n.Variable
		b.declare(n, d, s)
		b.visit(n.Type, s)
		if n.Specifier != nil {
			b.visit(n.Specifier, s)
		}
	case *tree.GetterDecl:
		d := model.NewGetter(b.origin(n, s, n.Shared))
		b.declare(n, d, s)
		b.visit(n.Type, s)
		b.visitBlock(n.Body, d)
	case *tree.SetterDecl:
		d := model.NewSetter(b.origin(n, s, n.Shared))
		if g, ok := model.DirectMember(s, d.Name(), isGetter).(*model.Getter); ok {
			g.Setter = d
			d.Getter = g
		}
		b.declare(n, d, s)
		b.visitBlock(n.Body, d)
	case *tree.IfClause:
		block := model.NewControlBlock(s, n)
		b.condition(n.Cond, s, block)
		b.visit(n.Body, block)
	case *tree.ElseClause:
		if n.Body != nil {
			b.visit(n.Body, model.NewControlBlock(s, n))
		}
		if n.If != nil {
			b.visit(n.If, s)
		}
	case *tree.WhileClause:
		block := model.NewControlBlock(s, n)
		b.condition(n.Cond, s, block)
		b.visit(n.Body, block)
	case *tree.ForClause:
		block := model.NewControlBlock(s, n)
		b.iterator(n.Iter, s, block)
		b.visit(n.Body, block)
	case *tree.FailClause:
		b.visit(n.Body, model.NewControlBlock(s, n))
	case *tree.Parameter, *tree.TypeParameter, *tree.Variable,
		tree.Condition, tree.Iterator:
		panic(fmt.Sprintf("analysis: %T bound outside its owner", n))
	default:
		b.visitAll(s, astutil.Children(n)...)
	}
}

func isGetter(d model.Declaration) bool {
	_, ok := d.(*model.Getter)
	return ok
}

func (b *binder) typeParameter(n *tree.TypeParameter, s model.Scope) *model.TypeParameter {
	b.record(n, s)
	d := model.NewTypeParameter(b.origin(n, s, false))
	d.Variance = n.Variance
	b.declare(n, d, s)
	return d
}

// parameters binds pl as a new parameter list of f.  Each parameter opens a
// scope for its type and default value.
func (b *binder) parameters(pl *tree.ParameterList, f model.Functional, s model.Scope) {
	b.record(pl, s)
	list := &model.ParameterList{}
	f.AddParameterList(list)
	for _, p := range pl.Params {
		b.record(p, s)
		d := model.NewParameter(b.origin(p, s, p.Shared))
		d.Defaulted = p.Default != nil
		d.Sequenced = p.Sequenced
		list.Add(d)
		b.declare(p, d, s)
		b.visit(p.Type, d)
		if p.Default != nil {
			b.visit(p.Default, d)
		}
	}
}

// condition binds a branch test.  Expressions are bound in the enclosing
// scope; variables the condition introduces belong to the branch body.
func (b *binder) condition(c tree.Condition, outer, block model.Scope) {
	b.record(c, outer)
	switch c := c.(type) {
	case *tree.BooleanCondition:
		b.visit(c.X, outer)
	case *tree.ExistsCondition:
		b.guard(c.Var, c.X, outer, block)
	case *tree.NonemptyCondition:
		b.guard(c.Var, c.X, outer, block)
	case *tree.IsCondition:
		b.visit(c.Type, outer)
		b.guard(c.Var, c.X, outer, block)
	default:
		panic(fmt.Sprintf("analysis: unexpected condition %T", c))
	}
}

func (b *binder) guard(v *tree.Variable, x tree.Expr, outer, block model.Scope) {
	if v != nil {
		b.variable(v, outer, block)
	}
	if x != nil {
		b.visit(x, outer)
	}
}

func (b *binder) iterator(it tree.Iterator, outer, block model.Scope) {
	b.record(it, outer)
	switch it := it.(type) {
	case *tree.ValueIterator:
		b.variable(it.Var, outer, block)
		b.visit(it.Source, outer)
	case *tree.KeyValueIterator:
		b.variable(it.Key, outer, block)
		b.variable(it.Value, outer, block)
		b.visit(it.Source, outer)
	default:
		panic(fmt.Sprintf("analysis: unexpected iterator %T", it))
	}
}

func (b *binder) variable(v *tree.Variable, outer, block model.Scope) {
	b.record(v, block)
	d := model.NewSimpleValue(b.origin(v, block, false))
	b.declare(v, d, block)
	if v.Type != nil {
		b.visit(v.Type, outer)
	}
	if v.Specifier != nil {
		b.visit(v.Specifier, outer)
	}
}
