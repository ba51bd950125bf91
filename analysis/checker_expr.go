// Copyright © 2024 The ELPS authors

package analysis

import (
	"fmt"

	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// expr returns the type of x, recording it in Info.Types.  A nil type means
// the type could not be determined; the reason has already been reported.
func (ch *checker) expr(x tree.Expr, e env) model.Type {
	if t, ok := ch.info.Types[x]; ok {
		return t
	}
	t := ch.exprType(x, e)
	ch.info.setType(x, t)
	return t
}

func (ch *checker) exprType(x tree.Expr, e env) model.Type {
	switch x := x.(type) {
	case *tree.StringLit:
		return ch.b.StringType()
	case *tree.NaturalLit:
		return ch.b.IntegerType()
	case *tree.FloatLit:
		return model.NewType(ch.b.Float)
	case *tree.CharLit:
		return model.NewType(ch.b.Character)
	case *tree.QuotedLit:
		return model.NewType(ch.b.Quoted)
	case *tree.BaseMemberExpr:
		return ch.baseMember(x)
	case *tree.BaseTypeExpr:
		return ch.baseType(x)
	case *tree.QualifiedMemberExpr:
		return ch.qualifiedMember(x, e)
	case *tree.QualifiedTypeExpr:
		return ch.qualifiedType(x, e)
	case *tree.InvocationExpr:
		return ch.invocation(x, e)
	case *tree.IndexExpr:
		return ch.index(x, e)
	case *tree.ThisExpr, *tree.OuterExpr, *tree.SuperExpr:
		return ch.self(x)
	case *tree.SequenceExpr:
		return ch.sequence(x, e)
	case *tree.ParenExpr:
		return ch.expr(x.X, e)
	case *tree.BinaryExpr:
		return ch.binary(x, e)
	case *tree.PrefixExpr:
		return ch.prefix(x, e)
	case *tree.PostfixExpr:
		return ch.postfix(x, e)
	case *tree.IsExpr:
		ch.expr(x.X, e)
		return ch.b.BooleanType()
	case *tree.ExistsExpr:
		if t := ch.expr(x.X, e); t != nil && !ch.b.IsOptional(t) {
			ch.errorf(x.X, "expression must be of optional type")
		}
		return ch.b.BooleanType()
	case *tree.NonemptyExpr:
		if t := ch.expr(x.X, e); t != nil && model.Supertype(ch.b.Definite(t), ch.b.Container) == nil {
			ch.errorf(x.X, "expression must be of type: Container")
		}
		return ch.b.BooleanType()
	default:
		panic(fmt.Sprintf("analysis: unexpected expression %T", x))
	}
}

func (ch *checker) baseMember(x *tree.BaseMemberExpr) model.Type {
	name := x.Name.Name
	d := ch.c.lookup(ch.info.Scopes[x], ch.unit, name, model.IsTypedDeclaration)
	if d == nil {
		ch.errorf(x, "could not determine target of base member reference: %s", name)
		return nil
	}
	ch.info.Targets[x] = d
	t := ch.typeOf(d.(model.TypedDeclaration), x)
	return ch.applyTypeArgs(d, x.TypeArgs, t, x)
}

func (ch *checker) baseType(x *tree.BaseTypeExpr) model.Type {
	name := x.Name.Name
	d, _ := ch.c.lookup(ch.info.Scopes[x], ch.unit, name, model.IsTypeDeclaration).(model.TypeDeclaration)
	if d == nil {
		ch.errorf(x, "could not determine target of base type reference: %s", name)
		return nil
	}
	ch.info.Targets[x] = d
	return ch.typeReference(d, x.TypeArgs, x)
}

// typeReference is the type of a reference to d as a value.
func (ch *checker) typeReference(d model.TypeDeclaration, typeArgs []tree.Type, at tree.Node) model.Type {
	if len(typeArgs) == 0 {
		return model.DeclaredType(d)
	}
	return ch.applyTypeArgs(d, typeArgs, model.DeclaredType(d), at)
}

// applyTypeArgs substitutes explicit type arguments for the type
// parameters of d in t.
func (ch *checker) applyTypeArgs(d model.Declaration, typeArgs []tree.Type, t model.Type, at tree.Node) model.Type {
	if len(typeArgs) == 0 {
		return t
	}
	tps := model.TypeParametersOf(d)
	if len(tps) != len(typeArgs) {
		ch.errorf(at, "wrong number of type arguments to: %s", d.Name())
	}
	return model.Substitute(t, ch.explicitBindings(tps, typeArgs))
}

func (ch *checker) explicitBindings(tps []*model.TypeParameter, typeArgs []tree.Type) map[*model.TypeParameter]model.Type {
	b := make(map[*model.TypeParameter]model.Type, len(tps))
	for i, tp := range tps {
		if i >= len(typeArgs) {
			break
		}
		if t := ch.info.Types[typeArgs[i]]; t != nil {
			b[tp] = t
		}
	}
	return b
}

// unwrap projects the receiver type of a qualified reference: the definite
// type for ?. and the element type for *.
func (ch *checker) unwrap(t model.Type, op tree.MemberOp, at tree.Node) model.Type {
	if t == nil {
		return nil
	}
	switch op {
	case tree.MemberOpPlain:
		return t
	case tree.MemberOpSafe:
		if !ch.b.IsOptional(t) {
			ch.errorf(at, "receiver not of optional type")
			return nil
		}
		return ch.b.Definite(t)
	case tree.MemberOpSpread:
		st := model.Supertype(t, ch.b.Sequence)
		if st == nil || len(st.Args) == 0 {
			ch.errorf(at, "receiver not of type: Sequence")
			return nil
		}
		return st.Args[0]
	default:
		panic(fmt.Sprintf("analysis: unexpected member operator %v", op))
	}
}

// rewrap is the inverse of unwrap applied to a member's type.
func (ch *checker) rewrap(t model.Type, op tree.MemberOp) model.Type {
	if t == nil {
		return nil
	}
	switch op {
	case tree.MemberOpSafe:
		return ch.b.Optional(t)
	case tree.MemberOpSpread:
		return ch.b.SequenceType(t)
	default:
		return t
	}
}

// member resolves a qualified reference to a member of the receiver's type.
// Members that are not shared are visible only within their container.
func (ch *checker) member(x tree.Expr, primary tree.Expr, op tree.MemberOp, name string, filter func(model.Declaration) bool, e env) (model.Declaration, *model.ProducedType) {
	recv := ch.unwrap(ch.expr(primary, e), op, primary)
	if recv == nil {
		return nil, nil
	}
	d, sup := ch.c.memberOf(recv, name, filter)
	if d == nil {
		ch.errorf(x, "could not determine target of member reference: %s", name)
		return nil, nil
	}
	ch.info.Targets[x] = d
	if !isVisible(d, ch.info.Scopes[x]) {
		ch.errorf(x, "target of member reference is not shared: %s", name)
	}
	if sup != nil {
		ch.recv[x] = sup
	}
	return d, sup
}

func bindingsOf(t *model.ProducedType) map[*model.TypeParameter]model.Type {
	if t == nil {
		return nil
	}
	return model.Bindings(t)
}

func (ch *checker) qualifiedMember(x *tree.QualifiedMemberExpr, e env) model.Type {
	d, sup := ch.member(x, x.Primary, x.Op, x.Name.Name, model.IsTypedDeclaration, e)
	if d == nil {
		return nil
	}
	t := model.Substitute(ch.typeOf(d.(model.TypedDeclaration), x), bindingsOf(sup))
	t = ch.applyTypeArgs(d, x.TypeArgs, t, x)
	return ch.rewrap(t, x.Op)
}

func (ch *checker) qualifiedType(x *tree.QualifiedTypeExpr, e env) model.Type {
	d, _ := ch.member(x, x.Primary, x.Op, x.Name.Name, model.IsTypeDeclaration, e)
	if d == nil {
		return nil
	}
	return ch.rewrap(ch.typeReference(d.(model.TypeDeclaration), x.TypeArgs, x), x.Op)
}

func (ch *checker) self(x tree.Expr) model.Type {
	td := model.EnclosingTypeDeclaration(ch.info.Scopes[x])
	switch x.(type) {
	case *tree.ThisExpr:
		if td == nil {
			ch.errorf(x, "this appears outside a class or interface")
			return nil
		}
		return model.DeclaredType(td)
	case *tree.OuterExpr:
		var outer model.TypeDeclaration
		if td != nil {
			outer = model.EnclosingTypeDeclaration(td.Container())
		}
		if outer == nil {
			ch.errorf(x, "outer appears outside a nested class or interface")
			return nil
		}
		return model.DeclaredType(outer)
	case *tree.SuperExpr:
		cls, ok := td.(*model.Class)
		if !ok || cls.ExtendedType() == nil {
			ch.errorf(x, "super appears outside a class with a superclass")
			return nil
		}
		return cls.ExtendedType()
	default:
		panic(fmt.Sprintf("analysis: unexpected expression %T", x))
	}
}

func (ch *checker) sequence(x *tree.SequenceExpr, e env) model.Type {
	if len(x.Elems) == 0 {
		ch.errorf(x, "could not infer type of sequence enumeration")
		return nil
	}
	var ts []model.Type
	for _, el := range x.Elems {
		if t := ch.expr(el, e); t != nil {
			ts = append(ts, t)
		}
	}
	elem := model.Union(ts...)
	if elem == nil {
		return nil
	}
	return ch.b.SequenceType(elem)
}

// index types primary[i] through the receiver's Correspondence supertype.
// A single index yields an optional item, a range index a sequence.
func (ch *checker) index(x *tree.IndexExpr, e env) model.Type {
	pt := ch.expr(x.Primary, e)
	it := ch.expr(x.Index, e)
	var upper model.Type
	if x.Upper != nil {
		upper = ch.expr(x.Upper, e)
	}
	if pt == nil {
		return nil
	}
	if x.Safe {
		if !ch.b.IsOptional(pt) {
			ch.errorf(x.Primary, "receiver not of optional type")
			return nil
		}
		pt = ch.b.Definite(pt)
	}
	cs := model.Supertype(pt, ch.b.Correspondence)
	if cs == nil || len(cs.Args) < 2 {
		ch.errorf(x.Primary, "receiver not of type: Correspondence")
		return nil
	}
	key, item := cs.Args[0], cs.Args[1]
	ch.assignable(it, key, x.Index, "index not assignable to key type")
	if !x.Range {
		return ch.b.Optional(item)
	}
	ch.assignable(upper, key, x.Upper, "index not assignable to key type")
	var t model.Type = ch.b.SequenceType(item)
	if x.Safe {
		t = ch.b.Optional(t)
	}
	return t
}
