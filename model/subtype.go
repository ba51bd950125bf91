// Copyright © 2024 The ELPS authors

package model

import (
	"fmt"

	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// Bindings maps the type parameters of t's declaration to t's arguments.
// Parameters without a corresponding argument are left unbound.
func Bindings(t *ProducedType) map[*TypeParameter]Type {
	tps := t.Decl.TypeParameters()
	if len(tps) == 0 {
		return nil
	}
	b := make(map[*TypeParameter]Type, len(tps))
	for i, tp := range tps {
		if i < len(t.Args) && t.Args[i] != nil {
			b[tp] = t.Args[i]
		}
	}
	return b
}

// Substitute replaces type parameters bound in b throughout t.
func Substitute(t Type, b map[*TypeParameter]Type) Type {
	if len(b) == 0 {
		return t
	}
	switch t := t.(type) {
	case nil:
		return nil
	case *ProducedType:
		return substituteProduced(t, b)
	case *UnionType:
		ts := make([]Type, len(t.Cases))
		for i, c := range t.Cases {
			ts[i] = substituteProduced(c, b)
		}
		return Union(ts...)
	default:
		panic(fmt.Sprintf("model: unexpected type %T", t))
	}
}

func substituteProduced(t *ProducedType, b map[*TypeParameter]Type) Type {
	if tp, ok := t.Decl.(*TypeParameter); ok {
		if r, ok := b[tp]; ok {
			return r
		}
		return t
	}
	return substituteArgs(t, b)
}

// substituteArgs substitutes the arguments of t, never its declaration.
func substituteArgs(t *ProducedType, b map[*TypeParameter]Type) *ProducedType {
	if len(t.Args) == 0 || len(b) == 0 {
		return t
	}
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = Substitute(a, b)
	}
	return &ProducedType{Decl: t.Decl, Args: args}
}

// Supertypes returns the declared extended and satisfied types of d.
func Supertypes(d TypeDeclaration) []*ProducedType {
	var sts []*ProducedType
	if et := d.ExtendedType(); et != nil {
		sts = append(sts, et)
	}
	return append(sts, d.SatisfiedTypes()...)
}

// Supertype returns the most specific supertype of t whose declaration is d,
// with type arguments substituted along the way, or nil when t has no such
// supertype.
func Supertype(t Type, d TypeDeclaration) *ProducedType {
	switch t := t.(type) {
	case nil:
		return nil
	case *ProducedType:
		return producedSupertype(t, d, map[TypeDeclaration]bool{})
	case *UnionType:
		return unionSupertype(t.Cases, d)
	default:
		panic(fmt.Sprintf("model: unexpected type %T", t))
	}
}

func producedSupertype(t *ProducedType, d TypeDeclaration, onPath map[TypeDeclaration]bool) *ProducedType {
	if t.Decl == d {
		return t
	}
	if onPath[t.Decl] {
		return nil
	}
	onPath[t.Decl] = true
	defer delete(onPath, t.Decl)
	b := Bindings(t)
	var best *ProducedType
	for _, st := range Supertypes(t.Decl) {
		found := producedSupertype(substituteArgs(st, b), d, onPath)
		if found == nil {
			continue
		}
		if best == nil || IsSubtype(found, best) {
			best = found
		}
	}
	return best
}

// unionSupertype combines the supertypes of each case.  Covariant arguments
// are unioned; other arguments must agree.
func unionSupertype(cases []*ProducedType, d TypeDeclaration) *ProducedType {
	sups := make([]*ProducedType, len(cases))
	for i, c := range cases {
		sups[i] = producedSupertype(c, d, map[TypeDeclaration]bool{})
		if sups[i] == nil {
			return nil
		}
	}
	if len(sups) == 0 {
		return nil
	}
	tps := d.TypeParameters()
	args := make([]Type, len(tps))
	for i, tp := range tps {
		var ts []Type
		for _, s := range sups {
			if i < len(s.Args) {
				ts = append(ts, s.Args[i])
			}
		}
		if len(ts) == 0 {
			continue
		}
		if tp.Variance == tree.Covariant {
			args[i] = Union(ts...)
			continue
		}
		for _, t := range ts[1:] {
			if !Equal(t, ts[0]) {
				return nil
			}
		}
		args[i] = ts[0]
	}
	return &ProducedType{Decl: d, Args: args}
}

// IsSubtype reports whether s is a subtype of o.  A union is a subtype of o
// when every case is; s is a subtype of a union when it is a subtype of some
// case.  Type arguments are compared according to the variance of the
// corresponding type parameter.
func IsSubtype(s, o Type) bool {
	if s == nil || o == nil {
		return false
	}
	switch s := s.(type) {
	case *UnionType:
		for _, c := range s.Cases {
			if !IsSubtype(c, o) {
				return false
			}
		}
		return true
	case *ProducedType:
		if IsBottom(s) {
			return true
		}
		switch o := o.(type) {
		case *UnionType:
			for _, c := range o.Cases {
				if IsSubtype(s, c) {
					return true
				}
			}
			return false
		case *ProducedType:
			sup := Supertype(s, o.Decl)
			if sup == nil {
				return false
			}
			return argumentsConform(sup, o)
		default:
			panic(fmt.Sprintf("model: unexpected type %T", o))
		}
	default:
		panic(fmt.Sprintf("model: unexpected type %T", s))
	}
}

// IsSupertype reports whether s is a supertype of o.
func IsSupertype(s, o Type) bool {
	return IsSubtype(o, s)
}

func argumentsConform(s, o *ProducedType) bool {
	for i, tp := range o.Decl.TypeParameters() {
		if i >= len(s.Args) || i >= len(o.Args) {
			// raw reference
			continue
		}
		sa, oa := s.Args[i], o.Args[i]
		if sa == nil || oa == nil {
			continue
		}
		switch tp.Variance {
		case tree.Covariant:
			if !IsSubtype(sa, oa) {
				return false
			}
		case tree.Contravariant:
			if !IsSubtype(oa, sa) {
				return false
			}
		default:
			if !IsSubtype(sa, oa) || !IsSubtype(oa, sa) {
				return false
			}
		}
	}
	return true
}

// commonSuperclass returns the most specific class extended by every case.
func commonSuperclass(cases []*ProducedType) *ProducedType {
	if len(cases) == 0 {
		return nil
	}
	seen := map[TypeDeclaration]bool{}
	for c := cases[0]; c != nil && !seen[c.Decl]; c = extendedOf(c) {
		seen[c.Decl] = true
		if _, ok := c.Decl.(*Class); !ok {
			continue
		}
		if st := unionSupertype(cases, c.Decl); st != nil {
			return st
		}
	}
	return nil
}

func extendedOf(t *ProducedType) *ProducedType {
	et := t.Decl.ExtendedType()
	if et == nil {
		return nil
	}
	return substituteArgs(et, Bindings(t))
}
