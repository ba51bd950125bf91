// Copyright © 2024 The ELPS authors

package tree

import "github.com/emmanuelbernard/ceylon-spec/parser/token"

// MemberOp is the operator of a qualified member reference.
type MemberOp int

const (
	MemberOpPlain  MemberOp = iota // x.y
	MemberOpSafe                   // x?.y
	MemberOpSpread                 // x*.y
)

func (op MemberOp) String() string {
	switch op {
	case MemberOpSafe:
		return "?."
	case MemberOpSpread:
		return "*."
	default:
		return "."
	}
}

// BaseMemberExpr is an unqualified reference to a value or method.
type BaseMemberExpr struct {
	node
	Name     *Ident
	TypeArgs []Type
}

// BaseTypeExpr is an unqualified reference to a class or interface used as
// an expression, typically an instantiation.
type BaseTypeExpr struct {
	node
	Name     *Ident
	TypeArgs []Type
}

// QualifiedMemberExpr is primary.name.
type QualifiedMemberExpr struct {
	node
	Primary  Expr
	Op       MemberOp
	Name     *Ident
	TypeArgs []Type
}

// QualifiedTypeExpr is primary.Name for a member class.
type QualifiedTypeExpr struct {
	node
	Primary  Expr
	Op       MemberOp
	Name     *Ident
	TypeArgs []Type
}

// InvocationExpr invokes Primary with exactly one of Positional or Named.
type InvocationExpr struct {
	node
	Primary    Expr
	Positional *PositionalArgs
	Named      *NamedArgs
}

// PositionalArgs is a parenthesized argument list.
type PositionalArgs struct {
	node
	Args []Expr
}

// NamedArgs is a brace-delimited named argument list.
type NamedArgs struct {
	node
	Args      []*NamedArg
	Sequenced *SequencedArg
}

// NamedArg specifies one parameter by name.
type NamedArg struct {
	node
	Name *Ident
	X    Expr
}

// SequencedArg lists the trailing arguments of a named invocation.
type SequencedArg struct {
	node
	Exprs []Expr
}

// IndexExpr is primary[index] or the range forms primary[lo..hi] and
// primary[lo...].
type IndexExpr struct {
	node
	Primary Expr
	Safe    bool
	Index   Expr
	Range   bool
	Upper   Expr // nil for an unbounded range
}

type StringLit struct {
	node
	Text string
}

type NaturalLit struct {
	node
	Text string
}

type FloatLit struct {
	node
	Text string
}

type CharLit struct {
	node
	Text string
}

type QuotedLit struct {
	node
	Text string
}

type ThisExpr struct {
	node
}

type OuterExpr struct {
	node
}

type SuperExpr struct {
	node
}

// SequenceExpr enumerates sequence elements: {a, b, c}.
type SequenceExpr struct {
	node
	Elems []Expr
}

type ParenExpr struct {
	node
	X Expr
}

// BinaryExpr covers infix operators and assignments.
type BinaryExpr struct {
	node
	Op token.Type
	X  Expr
	Y  Expr
}

// PrefixExpr covers -x, !x, ~x, $x, ++x and --x.
type PrefixExpr struct {
	node
	Op token.Type
	X  Expr
}

// PostfixExpr covers x++ and x--.
type PostfixExpr struct {
	node
	Op token.Type
	X  Expr
}

// IsExpr is "x is T".
type IsExpr struct {
	node
	X    Expr
	Type Type
}

// ExistsExpr is "x exists".
type ExistsExpr struct {
	node
	X Expr
}

// NonemptyExpr is "x nonempty".
type NonemptyExpr struct {
	node
	X Expr
}

func (*BaseMemberExpr) aExpr()      {}
func (*BaseTypeExpr) aExpr()        {}
func (*QualifiedMemberExpr) aExpr() {}
func (*QualifiedTypeExpr) aExpr()   {}
func (*InvocationExpr) aExpr()      {}
func (*IndexExpr) aExpr()           {}
func (*StringLit) aExpr()           {}
func (*NaturalLit) aExpr()          {}
func (*FloatLit) aExpr()            {}
func (*CharLit) aExpr()             {}
func (*QuotedLit) aExpr()           {}
func (*ThisExpr) aExpr()            {}
func (*OuterExpr) aExpr()           {}
func (*SuperExpr) aExpr()           {}
func (*SequenceExpr) aExpr()        {}
func (*ParenExpr) aExpr()           {}
func (*BinaryExpr) aExpr()          {}
func (*PrefixExpr) aExpr()          {}
func (*PostfixExpr) aExpr()         {}
func (*IsExpr) aExpr()              {}
func (*ExistsExpr) aExpr()          {}
func (*NonemptyExpr) aExpr()        {}

// Unparen strips any enclosing parentheses from x.
func Unparen(x Expr) Expr {
	for {
		p, ok := x.(*ParenExpr)
		if !ok {
			return x
		}
		x = p.X
	}
}

// IsAssignment reports whether op is := or a compound assignment.
func IsAssignment(op token.Type) bool {
	switch op {
	case token.ASSIGN, token.ADD_ASSIGN, token.SUBTRACT_ASSIGN,
		token.MULTIPLY_ASSIGN, token.DIVIDE_ASSIGN, token.REMAINDER_ASSIGN,
		token.AND_ASSIGN, token.OR_ASSIGN, token.INTERSECT_ASSIGN,
		token.UNION_ASSIGN, token.XOR_ASSIGN, token.COMPLEMENT_ASSIGN:
		return true
	}
	return false
}
