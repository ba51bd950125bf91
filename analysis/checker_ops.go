// Copyright © 2024 The ELPS authors

package analysis

import (
	"fmt"

	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/parser/token"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// category returns t's supertype for d, reporting at n when t has none.
func (ch *checker) category(t model.Type, n tree.Node, d model.TypeDeclaration) *model.ProducedType {
	if t == nil {
		return nil
	}
	st := model.Supertype(t, d)
	if st == nil {
		ch.errorf(n, "must be of type: %s", d.Name())
	}
	return st
}

// operand reports at n when t is not assignable to expected.
func (ch *checker) operand(t model.Type, n tree.Node, expected model.Type) {
	if t != nil && expected != nil && !model.IsSubtype(t, expected) {
		ch.errorf(n, "must be of type: %s", expected)
	}
}

// selfType is the first type argument of a category supertype such as
// Numeric<Integer>, or the supertype itself when it has none.
func selfType(st *model.ProducedType) model.Type {
	if st == nil {
		return nil
	}
	if len(st.Args) > 0 && st.Args[0] != nil {
		return st.Args[0]
	}
	return st
}

// arithmetic checks a binary operator of category d.  The right operand must
// be assignable to the left operand's category type, which is the result.
func (ch *checker) arithmetic(x, y tree.Node, lt, rt model.Type, d model.TypeDeclaration) model.Type {
	st := ch.category(lt, x, d)
	if st == nil {
		ch.category(rt, y, d)
		return nil
	}
	result := selfType(st)
	ch.operand(rt, y, result)
	return result
}

func (ch *checker) comparison(x, y tree.Node, lt, rt model.Type) {
	if st := ch.category(lt, x, ch.b.Comparable); st != nil {
		ch.operand(rt, y, selfType(st))
	}
}

func (ch *checker) binary(x *tree.BinaryExpr, e env) model.Type {
	if tree.IsAssignment(x.Op) {
		return ch.assign(x, e)
	}
	lt := ch.expr(x.X, e)
	rt := ch.expr(x.Y, e)
	switch x.Op {
	case token.PLUS:
		if lt != nil && model.IsSubtype(lt, ch.b.StringType()) {
			ch.operand(rt, x.Y, ch.b.StringType())
			return ch.b.StringType()
		}
		return ch.arithmetic(x.X, x.Y, lt, rt, ch.b.Numeric)
	case token.MINUS, token.TIMES, token.DIVIDE, token.REMAINDER, token.POWER:
		return ch.arithmetic(x.X, x.Y, lt, rt, ch.b.Numeric)
	case token.UNION, token.INTERSECT, token.XOR, token.COMPLEMENT:
		return ch.arithmetic(x.X, x.Y, lt, rt, ch.b.Slots)
	case token.AND, token.OR:
		ch.operand(lt, x.X, ch.b.BooleanType())
		ch.operand(rt, x.Y, ch.b.BooleanType())
		return ch.b.BooleanType()
	case token.EQUAL, token.NOT_EQUAL:
		ch.category(lt, x.X, ch.b.Equality)
		ch.category(rt, x.Y, ch.b.Equality)
		return ch.b.BooleanType()
	case token.IDENTICAL:
		ch.category(lt, x.X, ch.b.IdentifiableObject)
		ch.category(rt, x.Y, ch.b.IdentifiableObject)
		return ch.b.BooleanType()
	case token.SMALLER, token.LARGER, token.SMALL_AS, token.LARGE_AS:
		ch.comparison(x.X, x.Y, lt, rt)
		return ch.b.BooleanType()
	case token.COMPARE:
		ch.comparison(x.X, x.Y, lt, rt)
		return model.NewType(ch.b.Comparison)
	case token.IN:
		ch.category(lt, x.X, ch.b.Object)
		ch.category(rt, x.Y, ch.b.Category)
		return ch.b.BooleanType()
	case token.RANGE:
		ch.category(lt, x.X, ch.b.Ordinal)
		ch.comparison(x.X, x.Y, lt, rt)
		if lt == nil {
			return nil
		}
		return model.NewType(ch.b.Range, lt)
	case token.ENTRY:
		ch.category(lt, x.X, ch.b.Object)
		ch.category(rt, x.Y, ch.b.Object)
		if lt == nil || rt == nil {
			return nil
		}
		return model.NewType(ch.b.Entry, lt, rt)
	case token.DEFAULT:
		return ch.defaultOp(x, lt, rt)
	default:
		panic(fmt.Sprintf("analysis: unexpected binary operator %v", x.Op))
	}
}

// defaultOp types x ?: y as y's type.  x must be optional and fit the
// optional form of y's type.
func (ch *checker) defaultOp(x *tree.BinaryExpr, lt, rt model.Type) model.Type {
	if rt == nil || lt == nil {
		return rt
	}
	if !ch.b.IsOptional(lt) {
		ch.errorf(x.X, "expression must be of optional type")
	}
	ot := rt
	if !ch.b.IsOptional(rt) {
		ot = ch.b.Optional(rt)
	}
	if !model.IsSubtype(lt, ot) {
		ch.errorf(x.X, "expression must be of type: %s", model.TypeString(ot))
	}
	return rt
}

// compound maps compound assignment operators to their binary operator.
var compound = map[token.Type]token.Type{
	token.ADD_ASSIGN:        token.PLUS,
	token.SUBTRACT_ASSIGN:   token.MINUS,
	token.MULTIPLY_ASSIGN:   token.TIMES,
	token.DIVIDE_ASSIGN:     token.DIVIDE,
	token.REMAINDER_ASSIGN:  token.REMAINDER,
	token.AND_ASSIGN:        token.AND,
	token.OR_ASSIGN:         token.OR,
	token.INTERSECT_ASSIGN:  token.INTERSECT,
	token.UNION_ASSIGN:      token.UNION,
	token.XOR_ASSIGN:        token.XOR,
	token.COMPLEMENT_ASSIGN: token.COMPLEMENT,
}

func (ch *checker) assign(x *tree.BinaryExpr, e env) model.Type {
	lt := ch.expr(x.X, e)
	rt := ch.expr(x.Y, e)
	ch.assignTarget(x.X)
	if x.Op == token.ASSIGN {
		ch.assignable(rt, lt, x.Y, "assigned expression not assignable to declared type")
		return lt
	}
	switch op := compound[x.Op]; op {
	case token.PLUS:
		if lt != nil && model.IsSubtype(lt, ch.b.StringType()) {
			ch.operand(rt, x.Y, ch.b.StringType())
			break
		}
		ch.arithmetic(x.X, x.Y, lt, rt, ch.b.Numeric)
	case token.MINUS, token.TIMES, token.DIVIDE, token.REMAINDER:
		ch.arithmetic(x.X, x.Y, lt, rt, ch.b.Numeric)
	case token.INTERSECT, token.UNION, token.XOR, token.COMPLEMENT:
		ch.arithmetic(x.X, x.Y, lt, rt, ch.b.Slots)
	case token.AND, token.OR:
		ch.operand(lt, x.X, ch.b.BooleanType())
		ch.operand(rt, x.Y, ch.b.BooleanType())
	default:
		panic(fmt.Sprintf("analysis: unexpected assignment operator %v", x.Op))
	}
	return lt
}

// assignTarget reports when x does not denote a variable value.
func (ch *checker) assignTarget(x tree.Expr) {
	x = tree.Unparen(x)
	d, ok := ch.info.Targets[x]
	if !ok {
		switch x.(type) {
		case *tree.BaseMemberExpr, *tree.QualifiedMemberExpr:
			// unresolved, already reported
		default:
			ch.errorf(x, "expression cannot be assigned")
		}
		return
	}
	switch d := d.(type) {
	case *model.SimpleValue:
		if !d.Variable {
			ch.errorf(x, "value is not variable: %s", d.Name())
		}
	case *model.Getter:
		if d.Setter == nil {
			ch.errorf(x, "value is not variable: %s", d.Name())
		}
	default:
		ch.errorf(x, "value is not variable: %s", d.Name())
	}
}

func (ch *checker) prefix(x *tree.PrefixExpr, e env) model.Type {
	t := ch.expr(x.X, e)
	switch x.Op {
	case token.MINUS:
		return selfType(ch.category(t, x.X, ch.b.Numeric))
	case token.COMPLEMENT:
		return selfType(ch.category(t, x.X, ch.b.Slots))
	case token.NOT:
		ch.operand(t, x.X, ch.b.BooleanType())
		return ch.b.BooleanType()
	case token.FORMAT:
		ch.operand(t, x.X, ch.b.ObjectType())
		return ch.b.StringType()
	case token.INCREMENT, token.DECREMENT:
		return ch.step(x.X, t)
	default:
		panic(fmt.Sprintf("analysis: unexpected prefix operator %v", x.Op))
	}
}

func (ch *checker) postfix(x *tree.PostfixExpr, e env) model.Type {
	t := ch.expr(x.X, e)
	switch x.Op {
	case token.INCREMENT, token.DECREMENT:
		return ch.step(x.X, t)
	default:
		panic(fmt.Sprintf("analysis: unexpected postfix operator %v", x.Op))
	}
}

// step checks ++ and -- on a variable Ordinal value.
func (ch *checker) step(x tree.Expr, t model.Type) model.Type {
	ch.assignTarget(x)
	ch.category(t, x, ch.b.Ordinal)
	return t
}
