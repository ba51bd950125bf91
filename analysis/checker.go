// Copyright © 2024 The ELPS authors

package analysis

import (
	"fmt"

	"github.com/emmanuelbernard/ceylon-spec/astutil"
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// CheckExpressions type checks every expression of pu, infers the types of
// declarations whose type is elided and reports mismatches as diagnostics.
// The unit must have completed ResolveNames.
func (c *Context) CheckExpressions(pu *PhasedUnit) {
	if pu.Failed() || pu.Phase >= PhaseChecked || pu.Phase < PhaseNamesResolved {
		return
	}
	c.logUnit(pu, PhaseChecked).Debug("checking expressions")
	ch := c.checkerFor(pu)
	for _, s := range pu.Tree.Body {
		ch.stmt(s, env{})
	}
	pu.Phase = PhaseChecked
}

func (c *Context) checkerFor(pu *PhasedUnit) *checker {
	if ch, ok := c.checkers[pu]; ok {
		return ch
	}
	ch := &checker{
		c:    c,
		pu:   pu,
		unit: pu.Unit,
		b:    c.Builtins,
		info: c.Info,
		recv: make(map[tree.Node]*model.ProducedType),
	}
	c.checkers[pu] = ch
	return ch
}

type checker struct {
	c    *Context
	pu   *PhasedUnit
	unit *model.Unit
	b    *model.Builtins
	info *Info
	// recv holds the receiver supertype of qualified member references.
	recv map[tree.Node]*model.ProducedType
}

// returnScope describes what return statements in a body must produce.
type returnScope struct {
	void     bool
	infer    bool
	expected model.Type
	// returned is the type of the last return while inferring.
	returned model.Type
	returns  bool
}

// env is the traversal context.  It is passed by value so nested bodies
// never disturb the enclosing one.
type env struct {
	ret *returnScope
}

func (e env) withReturn(rs *returnScope) env {
	e.ret = rs
	return e
}

func (ch *checker) errorf(n tree.Node, format string, v ...interface{}) {
	ch.pu.errorf(n, format, v...)
}

func (ch *checker) block(b *tree.Block, e env) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		ch.stmt(s, e)
	}
}

func (ch *checker) stmt(s tree.Stmt, e env) {
	switch s := s.(type) {
	case *tree.ClassDecl:
		ch.class(s)
	case *tree.InterfaceDecl:
		ch.block(s.Body, env{})
	case *tree.MethodDecl:
		ch.method(s)
	case *tree.AttributeDecl:
		ch.attribute(s)
	case *tree.GetterDecl:
		ch.getter(s)
	case *tree.SetterDecl:
		ch.setter(s)
	case *tree.ExprStmt:
		ch.expr(s.X, e)
	case *tree.Return:
		ch.ret(s, e)
	case *tree.Break, *tree.Continue:
	case *tree.IfStmt:
		ch.ifStmt(s, e)
	case *tree.WhileStmt:
		ch.condition(s.Clause.Cond, e)
		ch.block(s.Clause.Body, e)
	case *tree.ForStmt:
		ch.iterator(s.Clause.Iter, e)
		ch.block(s.Clause.Body, e)
		if s.Fail != nil {
			ch.block(s.Fail.Body, e)
		}
	default:
		panic(fmt.Sprintf("analysis: unexpected statement %T", s))
	}
}

// declaration checks the declaration at n on demand.  Only declarations
// whose type may be inferred are checked this way.
func (ch *checker) declaration(n tree.Node) {
	switch n := n.(type) {
	case *tree.MethodDecl:
		ch.method(n)
	case *tree.AttributeDecl:
		ch.attribute(n)
	case *tree.GetterDecl:
		ch.getter(n)
	}
}

// once reports whether n is being checked for the first time.
func (ch *checker) once(n tree.Node) bool {
	if ch.c.checked[n] {
		return false
	}
	ch.c.checked[n] = true
	return true
}

func (ch *checker) class(n *tree.ClassDecl) {
	if !ch.once(n) {
		return
	}
	cls := ch.info.Decls[n].(*model.Class)
	if n.Params != nil {
		ch.defaults(n.Params)
	}
	if n.Extends != nil && n.Extends.Args != nil {
		args := ch.positionalTypes(n.Extends.Args, env{})
		if et := cls.ExtendedType(); et != nil {
			if sc, ok := et.Decl.(*model.Class); ok && sc.ParameterList() != nil {
				ch.positional(n.Extends.Args, sc.ParameterList(), args, model.Bindings(et))
			}
		}
	}
	ch.block(n.Body, env{ret: &returnScope{void: true}})
}

func (ch *checker) defaults(pl *tree.ParameterList) {
	for _, p := range pl.Params {
		if p.Default == nil {
			continue
		}
		t := ch.expr(p.Default, env{})
		param := ch.info.Decls[p].(*model.Parameter)
		ch.assignable(t, param.Type(), p.Default, "default value not assignable to parameter type")
	}
}

func (ch *checker) method(n *tree.MethodDecl) {
	if !ch.once(n) {
		return
	}
	m := ch.info.Decls[n].(*model.Method)
	rs := &returnScope{void: m.Void, infer: tree.IsInfer(n.Type), expected: m.Type()}
	if rs.infer {
		ch.c.inferring[m] = true
		defer delete(ch.c.inferring, m)
	}
	if n.Params != nil {
		ch.defaults(n.Params)
	}
	e := env{}.withReturn(rs)
	switch {
	case n.Specifier != nil:
		t := ch.expr(n.Specifier, e)
		switch {
		case rs.void:
		case rs.infer:
			ch.infer(m, n.Name, t, n.Specifier)
		default:
			ch.assignable(t, rs.expected, n.Specifier, "specified expression not assignable to expected type")
		}
	case n.Body != nil:
		ch.block(n.Body, e)
		if rs.infer {
			ch.inferReturned(m, n.Name, rs)
		}
	case rs.infer:
		ch.errorf(n.Name, "could not infer type of: %s", m.Name())
	}
}

func (ch *checker) getter(n *tree.GetterDecl) {
	if !ch.once(n) {
		return
	}
	g := ch.info.Decls[n].(*model.Getter)
	rs := &returnScope{infer: tree.IsInfer(n.Type), expected: g.Type()}
	if rs.infer {
		ch.c.inferring[g] = true
		defer delete(ch.c.inferring, g)
	}
	ch.block(n.Body, env{}.withReturn(rs))
	if rs.infer {
		ch.inferReturned(g, n.Name, rs)
	}
}

func (ch *checker) inferReturned(d model.TypedDeclaration, name *tree.Ident, rs *returnScope) {
	t := rs.returned
	if !rs.returns {
		t = ch.b.VoidType()
	}
	ch.infer(d, name, t, nil)
}

func (ch *checker) setter(n *tree.SetterDecl) {
	if !ch.once(n) {
		return
	}
	s := ch.info.Decls[n].(*model.Setter)
	if s.Getter == nil {
		ch.errorf(n.Name, "setter has no matching getter: %s", s.Name())
	} else if s.Type() == nil {
		s.SetType(ch.typeOf(s.Getter, n.Name))
	}
	ch.block(n.Body, env{}.withReturn(&returnScope{void: true}))
}

func (ch *checker) attribute(n *tree.AttributeDecl) {
	if !ch.once(n) {
		return
	}
	v := ch.info.Decls[n].(*model.SimpleValue)
	infer := tree.IsInfer(n.Type)
	if infer {
		ch.c.inferring[v] = true
		defer delete(ch.c.inferring, v)
	}
	if n.Specifier == nil {
		if infer {
			ch.errorf(n.Name, "could not infer type of: %s", v.Name())
		}
		return
	}
	t := ch.expr(n.Specifier, env{})
	if infer {
		ch.infer(v, n.Name, t, n.Specifier)
		return
	}
	ch.assignable(t, v.Type(), n.Specifier, "specifier expression not assignable to expected type")
}

// infer sets the type of d to t unless d is already typed.  A nil t is
// reported at name unless src, the node t came from, already has an error.
func (ch *checker) infer(d model.TypedDeclaration, name *tree.Ident, t model.Type, src tree.Node) {
	if t == nil {
		if !ch.reportedIn(src) {
			ch.errorf(name, "could not infer type of: %s", d.Name())
		}
		return
	}
	if d.Type() == nil {
		d.SetType(t)
	}
}

// reportedIn reports whether an error was recorded on a node of the subtree
// rooted at n.
func (ch *checker) reportedIn(n tree.Node) bool {
	if n == nil {
		return false
	}
	nodes := make(map[tree.Node]bool)
	astutil.Inspect(n, func(c tree.Node) bool {
		nodes[c] = true
		return true
	})
	for _, d := range ch.pu.diags.list {
		if d.Severity == SeverityError && d.Node != nil && nodes[d.Node] {
			return true
		}
	}
	return false
}

// typeOf returns the type of d, checking d's declaration first when its type
// is inferred and not yet known.  A declaration whose inference depends on
// itself is reported at the reference at.
func (ch *checker) typeOf(d model.TypedDeclaration, at tree.Node) model.Type {
	if t := d.Type(); t != nil {
		return t
	}
	if s, ok := d.(*model.Setter); ok && s.Getter != nil {
		return ch.typeOf(s.Getter, at)
	}
	n := d.Node()
	if n == nil {
		return nil
	}
	if ch.c.inferring[d] {
		ch.errorf(at, "could not infer type of: %s", d.Name())
		return nil
	}
	if ch.c.checked[n] {
		return nil
	}
	pu := ch.c.byUnit[d.Unit()]
	if pu == nil || pu.Failed() || pu.Phase < PhaseNamesResolved {
		return nil
	}
	ch.c.checkerFor(pu).declaration(n)
	return d.Type()
}

func (ch *checker) ret(s *tree.Return, e env) {
	rs := e.ret
	if rs == nil {
		ch.errorf(s, "could not determine expected return type")
		if s.X != nil {
			ch.expr(s.X, e)
		}
		return
	}
	if s.X == nil {
		switch {
		case rs.infer:
			rs.returns = true
			rs.returned = ch.b.VoidType()
		case !rs.void:
			ch.errorf(s, "non-void methods and getters must return a value")
		}
		return
	}
	t := ch.expr(s.X, e)
	switch {
	case rs.void:
		ch.errorf(s.X, "void methods may not return a value")
	case rs.infer:
		rs.returns = true
		rs.returned = t
	default:
		ch.assignable(t, rs.expected, s.X, "returned expression not assignable to expected return type")
	}
}

func (ch *checker) ifStmt(s *tree.IfStmt, e env) {
	ch.condition(s.If.Cond, e)
	ch.block(s.If.Body, e)
	if s.Else == nil {
		return
	}
	ch.block(s.Else.Body, e)
	if s.Else.If != nil {
		ch.ifStmt(s.Else.If, e)
	}
}

func (ch *checker) condition(c tree.Condition, e env) {
	switch c := c.(type) {
	case *tree.BooleanCondition:
		t := ch.expr(c.X, e)
		if t != nil && !model.IsSubtype(t, ch.b.BooleanType()) {
			ch.errorf(c.X, "expression must be of type: Boolean")
		}
	case *tree.ExistsCondition:
		x := guardExpr(c.Var, c.X)
		t := ch.expr(x, e)
		if t != nil && !ch.b.IsOptional(t) {
			ch.errorf(x, "expression must be of optional type")
		}
		if c.Var != nil {
			ch.bindVariable(c.Var, ch.definite(t), x, "specifier expression not assignable to expected type")
		}
	case *tree.NonemptyCondition:
		x := guardExpr(c.Var, c.X)
		t := ch.expr(x, e)
		if t != nil && model.Supertype(ch.b.Definite(t), ch.b.Container) == nil {
			ch.errorf(x, "expression must be of type: Container")
		}
		if c.Var != nil {
			ch.bindVariable(c.Var, ch.definite(t), x, "specifier expression not assignable to expected type")
		}
	case *tree.IsCondition:
		ch.expr(guardExpr(c.Var, c.X), e)
		if c.Var != nil {
			ch.bindVariable(c.Var, ch.info.Types[c.Type], c.Type, "narrowed type not assignable to declared type")
		}
	default:
		panic(fmt.Sprintf("analysis: unexpected condition %T", c))
	}
}

func guardExpr(v *tree.Variable, x tree.Expr) tree.Expr {
	if v != nil {
		return v.Specifier
	}
	return x
}

func (ch *checker) definite(t model.Type) model.Type {
	if t == nil {
		return nil
	}
	return ch.b.Definite(t)
}

// bindVariable types a condition or iterator variable from t: an elided
// type is inferred, a declared type must accept t.
func (ch *checker) bindVariable(v *tree.Variable, t model.Type, src tree.Node, msg string) {
	d := ch.info.Decls[v].(*model.SimpleValue)
	if tree.IsInfer(v.Type) {
		ch.infer(d, v.Name, t, src)
		return
	}
	ch.assignable(t, d.Type(), v, msg)
}

func (ch *checker) iterator(it tree.Iterator, e env) {
	switch it := it.(type) {
	case *tree.ValueIterator:
		elem := ch.elementType(it.Source, e)
		ch.bindVariable(it.Var, elem, it.Source, "iterated element not assignable to declared type")
	case *tree.KeyValueIterator:
		elem := ch.elementType(it.Source, e)
		var key, item model.Type
		if elem != nil {
			if model.Supertype(elem, ch.b.Entry) == nil {
				ch.errorf(it.Source, "iterated element must be of type: Entry")
			}
			key, item = ch.b.KeyItemTypes(elem)
		}
		ch.bindVariable(it.Key, key, it.Source, "entry key not assignable to declared type")
		ch.bindVariable(it.Value, item, it.Source, "entry item not assignable to declared type")
	default:
		panic(fmt.Sprintf("analysis: unexpected iterator %T", it))
	}
}

func (ch *checker) elementType(src tree.Expr, e env) model.Type {
	t := ch.expr(src, e)
	if t == nil {
		return nil
	}
	elem := ch.b.ElementType(t)
	if elem == nil {
		ch.errorf(src, "expression must be of type: Iterable")
	}
	return elem
}

// assignable reports whether t is assignable to expected, recording a
// diagnostic at n when it is not.  Unknown types are assignable.
func (ch *checker) assignable(t, expected model.Type, n tree.Node, msg string) bool {
	if t == nil || expected == nil || model.IsSubtype(t, expected) {
		return true
	}
	ch.errorf(n, "%s: %s is not %s", msg, t, expected)
	return false
}
