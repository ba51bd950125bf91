// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// argument is a checked argument expression and its type.
type argument struct {
	x tree.Expr
	t model.Type
}

func (ch *checker) positionalTypes(args *tree.PositionalArgs, e env) []argument {
	if args == nil {
		return nil
	}
	as := make([]argument, len(args.Args))
	for i, x := range args.Args {
		as[i] = argument{x: x, t: ch.expr(x, e)}
	}
	return as
}

type namedArguments struct {
	named     []argument
	names     []*tree.Ident
	sequenced []argument
}

func (ch *checker) namedTypes(args *tree.NamedArgs, e env) *namedArguments {
	na := &namedArguments{}
	for _, a := range args.Args {
		na.named = append(na.named, argument{x: a.X, t: ch.expr(a.X, e)})
		na.names = append(na.names, a.Name)
	}
	if args.Sequenced != nil {
		for _, x := range args.Sequenced.Exprs {
			na.sequenced = append(na.sequenced, argument{x: x, t: ch.expr(x, e)})
		}
	}
	return na
}

// typeArgsOf returns the explicit type arguments of a reference.
func typeArgsOf(x tree.Expr) []tree.Type {
	switch x := x.(type) {
	case *tree.BaseMemberExpr:
		return x.TypeArgs
	case *tree.BaseTypeExpr:
		return x.TypeArgs
	case *tree.QualifiedMemberExpr:
		return x.TypeArgs
	case *tree.QualifiedTypeExpr:
		return x.TypeArgs
	}
	return nil
}

func memberOp(x tree.Expr) tree.MemberOp {
	switch x := x.(type) {
	case *tree.QualifiedMemberExpr:
		return x.Op
	case *tree.QualifiedTypeExpr:
		return x.Op
	}
	return tree.MemberOpPlain
}

// invocation checks the arguments of x against the first parameter list of
// the invoked declaration.  Type arguments not given explicitly are inferred
// from the argument types, and the result is the declared type of the
// invoked method or the instantiated class with those arguments applied.
func (ch *checker) invocation(x *tree.InvocationExpr, e env) model.Type {
	pt := ch.expr(x.Primary, e)
	var (
		pos   []argument
		named *namedArguments
	)
	if x.Positional != nil {
		pos = ch.positionalTypes(x.Positional, e)
	}
	if x.Named != nil {
		named = ch.namedTypes(x.Named, e)
	}

	prim := tree.Unparen(x.Primary)
	target, known := ch.info.Targets[prim]
	f, ok := target.(model.Functional)
	if !ok {
		if known || pt != nil {
			ch.errorf(x.Primary, "receiving expression cannot be invoked")
		}
		return nil
	}
	lists := f.ParameterLists()
	if len(lists) == 0 {
		ch.errorf(x.Primary, "receiver does not define a parameter list")
		return nil
	}
	pl := lists[0]

	b := map[*model.TypeParameter]model.Type{}
	for tp, t := range bindingsOf(ch.recv[prim]) {
		b[tp] = t
	}
	tps := model.TypeParametersOf(f)
	if explicit := typeArgsOf(prim); len(explicit) > 0 {
		for tp, t := range ch.explicitBindings(tps, explicit) {
			b[tp] = t
		}
	} else if len(tps) > 0 {
		ch.inferTypeArguments(x, tps, pl, pos, named, b)
	}

	switch {
	case x.Positional != nil:
		ch.positional(x.Positional, pl, pos, b)
	case x.Named != nil:
		ch.namedArgs(x.Named, pl, named, b)
	}

	var result model.Type
	switch f := f.(type) {
	case *model.Method:
		result = model.Substitute(ch.typeOf(f, x), b)
	case *model.Class:
		args := make([]model.Type, len(tps))
		for i, tp := range tps {
			if t, ok := b[tp]; ok {
				args[i] = t
			} else {
				args[i] = &model.ProducedType{Decl: tp}
			}
		}
		result = model.NewType(f, args...)
	default:
		return nil
	}
	return ch.rewrap(result, memberOp(prim))
}

// inferTypeArguments binds the type parameters tps from the argument types.
// Every parameter that cannot be inferred is reported, unless an argument
// type is itself unknown.
func (ch *checker) inferTypeArguments(x *tree.InvocationExpr, tps []*model.TypeParameter, pl *model.ParameterList, pos []argument, named *namedArguments, b map[*model.TypeParameter]model.Type) {
	want := make(map[*model.TypeParameter]bool, len(tps))
	for _, tp := range tps {
		want[tp] = true
	}
	inferred := map[*model.TypeParameter][]model.Type{}
	unknown := false
	match := func(p *model.Parameter, a argument, elem bool) {
		if a.t == nil {
			unknown = true
			return
		}
		pt := p.Type()
		if elem {
			pt = ch.sequenceElement(pt)
		}
		inferFrom(pt, a.t, want, inferred)
	}
	if named != nil {
		for i, a := range named.named {
			if p := pl.Param(named.names[i].Name); p != nil {
				match(p, a, false)
			}
		}
		if seq := sequencedParam(pl); seq != nil {
			for _, a := range named.sequenced {
				match(seq, a, true)
			}
		}
	} else {
		for i, a := range pos {
			if i >= len(pl.Params) {
				break
			}
			p := pl.Params[i]
			if p.Sequenced {
				for _, a := range pos[i:] {
					match(p, a, true)
				}
				break
			}
			match(p, a, false)
		}
	}
	for _, tp := range tps {
		if _, ok := b[tp]; ok {
			continue
		}
		if ts := inferred[tp]; len(ts) > 0 {
			b[tp] = model.Union(ts...)
			continue
		}
		if !unknown {
			ch.errorf(x, "could not infer type argument: %s", tp.Name())
		}
	}
}

// inferFrom matches the argument type arg against the parameter type param,
// collecting candidate types for the type parameters in want.
func inferFrom(param, arg model.Type, want map[*model.TypeParameter]bool, out map[*model.TypeParameter][]model.Type) {
	switch p := param.(type) {
	case nil:
	case *model.ProducedType:
		if tp, ok := p.Decl.(*model.TypeParameter); ok {
			if want[tp] {
				out[tp] = append(out[tp], arg)
			}
			return
		}
		st := model.Supertype(arg, p.Decl)
		if st == nil {
			return
		}
		for i := range p.Args {
			if i < len(st.Args) && st.Args[i] != nil {
				inferFrom(p.Args[i], st.Args[i], want, out)
			}
		}
	case *model.UnionType:
		// Cases of arg not covered by a concrete case of param are
		// attributed to the type parameter cases.
		var concrete []*model.ProducedType
		var params []*model.ProducedType
		for _, c := range p.Cases {
			if _, ok := c.Decl.(*model.TypeParameter); ok {
				params = append(params, c)
			} else {
				concrete = append(concrete, c)
			}
		}
		var rest []model.Type
		for _, ac := range model.Cases(arg) {
			covered := false
			for _, c := range concrete {
				if model.IsSubtype(ac, c) {
					covered = true
					break
				}
			}
			if !covered {
				rest = append(rest, ac)
			}
		}
		if len(rest) == 0 {
			return
		}
		for _, c := range params {
			inferFrom(c, model.Union(rest...), want, out)
		}
	}
}

func sequencedParam(pl *model.ParameterList) *model.Parameter {
	if n := len(pl.Params); n > 0 && pl.Params[n-1].Sequenced {
		return pl.Params[n-1]
	}
	return nil
}

// sequenceElement returns the element type of a sequenced parameter type.
func (ch *checker) sequenceElement(t model.Type) model.Type {
	st := model.Supertype(t, ch.b.Sequence)
	if st == nil || len(st.Args) == 0 {
		return nil
	}
	return st.Args[0]
}

// argumentAssignable reports an argument whose type is not assignable to
// the substituted type of p.
func (ch *checker) argumentAssignable(a argument, p *model.Parameter, expected model.Type, kind string) {
	if a.t == nil || expected == nil || model.IsSubtype(a.t, expected) {
		return
	}
	ch.errorf(a.x, "%s not assignable to parameter type: %s since %s is not %s", kind, p.Name(), a.t, expected)
}

// positional matches positional arguments left to right.  A trailing
// sequenced parameter consumes the remaining arguments.
func (ch *checker) positional(at *tree.PositionalArgs, pl *model.ParameterList, args []argument, b map[*model.TypeParameter]model.Type) {
	i := 0
	for _, p := range pl.Params {
		pt := model.Substitute(p.Type(), b)
		if p.Sequenced {
			elem := ch.sequenceElement(pt)
			for ; i < len(args); i++ {
				ch.argumentAssignable(args[i], p, elem, "argument")
			}
			return
		}
		if i >= len(args) {
			if !p.Defaulted {
				ch.errorf(at, "no argument to parameter: %s", p.Name())
			}
			continue
		}
		ch.argumentAssignable(args[i], p, pt, "argument")
		i++
	}
	for ; i < len(args); i++ {
		ch.errorf(args[i].x, "no matching parameter for argument")
	}
}

// namedArgs matches named arguments by parameter name.  Every parameter
// that is neither defaulted nor sequenced must be given.
func (ch *checker) namedArgs(at *tree.NamedArgs, pl *model.ParameterList, na *namedArguments, b map[*model.TypeParameter]model.Type) {
	given := map[string]bool{}
	for i, a := range na.named {
		name := na.names[i].Name
		if given[name] {
			ch.errorf(na.names[i], "duplicate named argument: %s", name)
			continue
		}
		given[name] = true
		p := pl.Param(name)
		if p == nil {
			ch.errorf(na.names[i], "no matching parameter for named argument: %s", name)
			continue
		}
		ch.argumentAssignable(a, p, model.Substitute(p.Type(), b), "named argument")
	}
	seq := sequencedParam(pl)
	if at.Sequenced != nil {
		if seq == nil {
			ch.errorf(at.Sequenced, "no matching sequenced parameter")
		} else {
			given[seq.Name()] = true
			elem := ch.sequenceElement(model.Substitute(seq.Type(), b))
			for _, a := range na.sequenced {
				ch.argumentAssignable(a, seq, elem, "argument")
			}
		}
	}
	for _, p := range pl.Params {
		if !given[p.Name()] && !p.Defaulted && !p.Sequenced {
			ch.errorf(at, "missing named argument to parameter: %s", p.Name())
		}
	}
}
