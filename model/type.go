// Copyright © 2024 The ELPS authors

package model

import (
	"fmt"
	"strings"
)

// Type is either a *ProducedType or a *UnionType.
type Type interface {
	fmt.Stringer
	aType()
}

// ProducedType pairs a generic declaration with type arguments, one per
// declared type parameter.
type ProducedType struct {
	Decl TypeDeclaration
	Args []Type
}

// UnionType is the normalized union A|B|... of two or more produced types.
// Extended is the most specific class every case extends.
type UnionType struct {
	Cases    []*ProducedType
	Extended *ProducedType
}

func (*ProducedType) aType() {}
func (*UnionType) aType()    {}

func (t *ProducedType) String() string {
	if len(t.Args) == 0 {
		return t.Decl.Name()
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = TypeString(a)
	}
	return t.Decl.Name() + "<" + strings.Join(args, ", ") + ">"
}

func (t *UnionType) String() string {
	cases := make([]string, len(t.Cases))
	for i, c := range t.Cases {
		cases[i] = c.String()
	}
	return strings.Join(cases, "|")
}

// TypeString is t.String() tolerating a nil type.
func TypeString(t Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.String()
}

// NewType produces d applied to args.
func NewType(d TypeDeclaration, args ...Type) *ProducedType {
	return &ProducedType{Decl: d, Args: args}
}

// Cases returns the produced types making up t.
func Cases(t Type) []*ProducedType {
	switch t := t.(type) {
	case *ProducedType:
		return []*ProducedType{t}
	case *UnionType:
		return t.Cases
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("model: unexpected type %T", t))
	}
}

// Equal reports structural equality.  Union case order is not significant.
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case *ProducedType:
		b, ok := b.(*ProducedType)
		if !ok || a.Decl != b.Decl || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *UnionType:
		b, ok := b.(*UnionType)
		if !ok || len(a.Cases) != len(b.Cases) {
			return false
		}
		for _, c := range a.Cases {
			if !containsEqual(b.Cases, c) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	default:
		panic(fmt.Sprintf("model: unexpected type %T", a))
	}
}

func containsEqual(cases []*ProducedType, t *ProducedType) bool {
	for _, c := range cases {
		if Equal(c, t) {
			return true
		}
	}
	return false
}

// IsBottom reports whether t is the bottom type.
func IsBottom(t Type) bool {
	pt, ok := t.(*ProducedType)
	if !ok {
		return false
	}
	c, ok := pt.Decl.(*Class)
	return ok && c.IsBottom()
}
