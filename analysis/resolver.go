// Copyright © 2024 The ELPS authors

package analysis

import (
	"fmt"

	"github.com/emmanuelbernard/ceylon-spec/astutil"
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// ResolveNames resolves the imports of pu and every syntactic type it
// contains, and sets the declared types and supertypes of its declarations.
// A package or type declaration that does not exist stops the unit with a
// *FatalError.
func (c *Context) ResolveNames(pu *PhasedUnit) (err error) {
	if pu.Failed() {
		return pu.Err
	}
	if pu.Phase >= PhaseNamesResolved {
		return nil
	}
	c.logUnit(pu, PhaseNamesResolved).Debug("resolving names")
	r := &resolver{c: c, pu: pu, unit: pu.Unit}
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		b, ok := rec.(bailout)
		if !ok {
			panic(rec)
		}
		pu.fail(b.err)
		err = b.err
	}()
	r.imports()
	astutil.Inspect(pu.Tree, r.visit)
	pu.Phase = PhaseNamesResolved
	return nil
}

// bailout carries a fatal error out of the resolver traversal.
type bailout struct {
	err *FatalError
}

type resolver struct {
	c    *Context
	pu   *PhasedUnit
	unit *model.Unit
}

func (r *resolver) bail(err *FatalError) {
	panic(bailout{err})
}

func (r *resolver) imports() {
	module := r.c.moduleOf(r.unit.Package)
	seen := make(map[string]bool)
	for _, imp := range r.pu.Tree.Imports {
		pkg := module.Package(imp.Path.Names())
		if pkg == nil {
			r.bail(fatalf(imp.Path, "package not found: %s", imp.Path))
		}
		for _, el := range imp.Elements {
			name := el.Name.Name
			d := pkg.Member(name)
			if d == nil {
				r.pu.errorf(el.Name, "imported declaration not found: %s", name)
				continue
			}
			if !d.Shared() && pkg != r.unit.Package {
				r.pu.errorf(el.Name, "imported declaration is not shared: %s", name)
			}
			alias := el.LocalName()
			if seen[alias] {
				r.pu.errorf(el, "duplicate import: %s", alias)
				continue
			}
			seen[alias] = true
			r.unit.AddImport(&model.Import{Alias: alias, Declaration: d, Node: el})
			r.c.Info.Targets[el] = d
		}
	}
}

func (r *resolver) visit(n tree.Node) bool {
	switch n := n.(type) {
	case tree.Type:
		r.resolveType(n)
		return false
	case *tree.ClassDecl:
		r.class(n)
	case *tree.InterfaceDecl:
		r.iface(n)
	case *tree.TypeParameter:
		tp := r.c.Info.Decls[n].(*model.TypeParameter)
		tp.SetExtendedType(r.c.Builtins.VoidType())
	case *tree.MethodDecl:
		m := r.c.Info.Decls[n].(*model.Method)
		if !tree.IsInfer(n.Type) {
			m.SetType(r.resolveType(n.Type))
		}
	case *tree.AttributeDecl:
		r.setDeclaredType(n, n.Type)
	case *tree.GetterDecl:
		r.setDeclaredType(n, n.Type)
	case *tree.Variable:
		if n.Type != nil {
			r.setDeclaredType(n, n.Type)
		}
	case *tree.Parameter:
		p := r.c.Info.Decls[n].(*model.Parameter)
		t := r.resolveType(n.Type)
		if n.Sequenced && t != nil {
			t = r.c.Builtins.SequenceType(t)
		}
		p.SetType(t)
	}
	return true
}

func (r *resolver) setDeclaredType(n tree.Node, t tree.Type) {
	if tree.IsInfer(t) {
		return
	}
	r.c.Info.Decls[n].(model.TypedDeclaration).SetType(r.resolveType(t))
}

func (r *resolver) class(n *tree.ClassDecl) {
	cls := r.c.Info.Decls[n].(*model.Class)
	switch {
	case n.Extends != nil:
		et := r.resolveType(n.Extends.Type).(*model.ProducedType)
		if _, ok := et.Decl.(*model.Class); !ok {
			r.pu.errorf(n.Extends.Type, "extended type is not a class: %s", et)
			break
		}
		cls.SetExtendedType(et)
	case r.unit.Package != r.c.Builtins.Package:
		cls.SetExtendedType(model.NewType(r.c.Builtins.IdentifiableObject))
	}
	for _, t := range n.Satisfies {
		r.satisfy(cls.AddSatisfiedType, t)
	}
}

func (r *resolver) iface(n *tree.InterfaceDecl) {
	d := r.c.Info.Decls[n].(*model.Interface)
	d.SetExtendedType(r.c.Builtins.ObjectType())
	for _, t := range n.Satisfies {
		r.satisfy(d.AddSatisfiedType, t)
	}
}

func (r *resolver) satisfy(add func(*model.ProducedType), t tree.Type) {
	st, ok := r.resolveType(t).(*model.ProducedType)
	if !ok {
		r.pu.errorf(t, "satisfied type must be an interface")
		return
	}
	if _, ok := st.Decl.(*model.Interface); !ok {
		r.pu.errorf(t, "satisfied type is not an interface: %s", st)
		return
	}
	add(st)
}

// resolveType returns the model type for t, resolving it on first use.  The
// infer placeholder resolves to nil.
func (r *resolver) resolveType(t tree.Type) model.Type {
	if ty, ok := r.c.Info.Types[t]; ok {
		return ty
	}
	var ty model.Type
	switch t := t.(type) {
	case *tree.BaseType:
		ty = r.baseType(t)
	case *tree.UnionType:
		cases := make([]model.Type, len(t.Cases))
		for i, ct := range t.Cases {
			cases[i] = r.resolveType(ct)
		}
		ty = model.Union(cases...)
	case *tree.OptionalType:
		ty = r.c.Builtins.Optional(r.resolveType(t.Inner))
	case *tree.VoidType:
		ty = r.c.Builtins.VoidType()
	case *tree.InferType:
		return nil
	default:
		panic(fmt.Sprintf("analysis: unexpected type node %T", t))
	}
	r.c.Info.Types[t] = ty
	return ty
}

func (r *resolver) baseType(t *tree.BaseType) *model.ProducedType {
	name := t.Name.Name
	d, _ := r.c.lookup(r.c.Info.Scopes[t], r.unit, name, model.IsTypeDeclaration).(model.TypeDeclaration)
	if d == nil {
		r.bail(fatalf(t.Name, "type declaration does not exist: %s", name))
	}
	r.c.Info.Targets[t] = d
	args := make([]model.Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = r.resolveType(a)
	}
	if tps := d.TypeParameters(); len(args) != len(tps) {
		r.pu.errorf(t, "wrong number of type arguments to: %s", name)
		fitted := make([]model.Type, len(tps))
		copy(fitted, args)
		args = fitted
	}
	return model.NewType(d, args...)
}
