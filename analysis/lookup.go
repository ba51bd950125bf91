// Copyright © 2024 The ELPS authors

package analysis

import (
	"fmt"

	"github.com/emmanuelbernard/ceylon-spec/model"
)

// lookup resolves name from scope s as seen from unit.  When no enclosing
// scope declares the name the language package is searched.
func (c *Context) lookup(s model.Scope, unit *model.Unit, name string, filter func(model.Declaration) bool) model.Declaration {
	if d := model.Lookup(s, unit, name, filter); d != nil {
		return d
	}
	if c.Builtins == nil {
		return nil
	}
	return model.DirectMember(c.Builtins.Package, name, filter)
}

// Named is a declaration visible under a name, which differs from the
// declaration's own name for an aliased import.
type Named struct {
	Name        string
	Declaration model.Declaration
}

// Visible returns the declarations visible from scope s as seen from unit,
// innermost first.  A name shadowed by an inner scope appears once.
func (c *Context) Visible(s model.Scope, unit *model.Unit) []Named {
	var out []Named
	seen := make(map[string]bool)
	add := func(name string, d model.Declaration) {
		if d != nil && !seen[name] {
			seen[name] = true
			out = append(out, Named{Name: name, Declaration: d})
		}
	}
	for ; s != nil; s = s.Enclosing() {
		if _, ok := s.(*model.Package); ok && unit != nil {
			for _, imp := range unit.Imports {
				add(imp.Alias, imp.Declaration)
			}
		}
		for _, d := range s.Members() {
			add(d.Name(), d)
		}
	}
	if c.Builtins != nil {
		for _, d := range c.Builtins.Package.Members() {
			add(d.Name(), d)
		}
	}
	return out
}

// receiverType returns the produced type whose members are visible through
// t.  A union exposes the members of the class every case extends.
func receiverType(t model.Type) *model.ProducedType {
	switch t := t.(type) {
	case *model.ProducedType:
		return t
	case *model.UnionType:
		if u, ok := model.Union(modelTypes(t.Cases)...).(*model.UnionType); ok {
			return u.Extended
		}
		return t.Extended
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("analysis: unexpected type %T", t))
	}
}

func modelTypes(cases []*model.ProducedType) []model.Type {
	ts := make([]model.Type, len(cases))
	for i, c := range cases {
		ts[i] = c
	}
	return ts
}

// memberOf looks up a member of t by name.  The member is searched in t's
// declaration and then its supertypes, nearest first.  The second result is
// the supertype of t for the member's container, whose arguments bind the
// container's type parameters.
func (c *Context) memberOf(t model.Type, name string, filter func(model.Declaration) bool) (model.Declaration, *model.ProducedType) {
	recv := receiverType(t)
	if recv == nil {
		return nil, nil
	}
	m := findMember(recv.Decl, name, filter, map[model.TypeDeclaration]bool{})
	if m == nil {
		return nil, nil
	}
	container, ok := m.Container().(model.TypeDeclaration)
	if !ok {
		return m, nil
	}
	return m, model.Supertype(recv, container)
}

func findMember(d model.TypeDeclaration, name string, filter func(model.Declaration) bool, seen map[model.TypeDeclaration]bool) model.Declaration {
	if seen[d] {
		return nil
	}
	seen[d] = true
	if s, ok := d.(model.Scope); ok {
		if m := model.DirectMember(s, name, filter); m != nil {
			return m
		}
	}
	for _, st := range model.Supertypes(d) {
		if m := findMember(st.Decl, name, filter, seen); m != nil {
			return m
		}
	}
	return nil
}

// isVisible reports whether member may be referenced from scope s.
func isVisible(member model.Declaration, s model.Scope) bool {
	return member.Shared() || model.Contains(member.Container(), s)
}
