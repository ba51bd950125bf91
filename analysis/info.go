// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// Info holds the results of analysis keyed by syntax node.  The syntax tree
// is never written; model nodes point at syntax through Declaration.Node and
// syntax reaches the model through these tables.
type Info struct {
	// Scopes maps every bound node to the scope active at that node.
	Scopes map[tree.Node]model.Scope
	// Units maps every bound node to its unit.
	Units map[tree.Node]*model.Unit
	// Decls maps declaration nodes to the declarations they create.
	Decls map[tree.Node]model.Declaration
	// Types maps expressions and syntactic types to their model types.
	Types map[tree.Node]model.Type
	// Targets maps member and type references to the declarations they
	// resolve to.
	Targets map[tree.Node]model.Declaration
}

func newInfo() *Info {
	return &Info{
		Scopes:  make(map[tree.Node]model.Scope),
		Units:   make(map[tree.Node]*model.Unit),
		Decls:   make(map[tree.Node]model.Declaration),
		Types:   make(map[tree.Node]model.Type),
		Targets: make(map[tree.Node]model.Declaration),
	}
}

// TypeOf returns the type recorded for n, or nil.
func (info *Info) TypeOf(n tree.Node) model.Type {
	return info.Types[n]
}

// setType records t for n unless n already has a type.  Types are written
// once.
func (info *Info) setType(n tree.Node, t model.Type) {
	if t == nil {
		return
	}
	if _, ok := info.Types[n]; ok {
		return
	}
	info.Types[n] = t
}

// DeclarationOf returns the declaration introduced at n, or nil.
func (info *Info) DeclarationOf(n tree.Node) model.Declaration {
	return info.Decls[n]
}

// TargetOf returns the declaration referenced at n, or nil.
func (info *Info) TargetOf(n tree.Node) model.Declaration {
	return info.Targets[n]
}
