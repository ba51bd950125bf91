// Copyright © 2024 The ELPS authors

// Package model is the declaration graph built by semantic analysis:
// packages and modules, the declarations nested in them, and the produced
// types that reference generic declarations.
//
// Every scope owns an ordered list of member declarations and has at most
// one enclosing scope.  Model nodes point back at the syntax nodes they were
// created from; the reverse mapping is kept in side tables by the analysis
// package so the syntax tree is never mutated.
//
// The model is built by a single writer.  Once a phase completes the fields
// it wrote are read-only, so the graph is safe for concurrent readers.
package model

import "github.com/emmanuelbernard/ceylon-spec/tree"

// Scope is a namespace owning an ordered set of member declarations.
type Scope interface {
	// Members returns the declarations directly nested in the scope in
	// insertion order.
	Members() []Declaration
	// Enclosing returns the parent scope, or nil for a package.
	Enclosing() Scope
	// AddMember appends d to the scope's members.
	AddMember(d Declaration)
}

type members struct {
	list []Declaration
}

func (m *members) Members() []Declaration {
	return m.list
}

func (m *members) AddMember(d Declaration) {
	m.list = append(m.list, d)
}

// ControlBlock is the scope of a branch or loop body.
type ControlBlock struct {
	members
	enclosing Scope
	node      tree.Node
}

// NewControlBlock returns a block scope nested in enclosing.
func NewControlBlock(enclosing Scope, node tree.Node) *ControlBlock {
	return &ControlBlock{enclosing: enclosing, node: node}
}

func (b *ControlBlock) Enclosing() Scope { return b.enclosing }

// Node returns the clause that opened the block.
func (b *ControlBlock) Node() tree.Node { return b.node }

// DirectMember returns the first member of s named name that satisfies
// filter, or nil.  A nil filter accepts every declaration.
func DirectMember(s Scope, name string, filter func(Declaration) bool) Declaration {
	for _, d := range s.Members() {
		if d.Name() == name && (filter == nil || filter(d)) {
			return d
		}
	}
	return nil
}

// Lookup resolves name by walking outward from s.  At package level the
// imports recorded on unit take precedence over the package's own members;
// imports never shadow declarations of a nested scope because nested scopes
// are searched first.  Lookup returns nil when no scope declares the name.
func Lookup(s Scope, unit *Unit, name string, filter func(Declaration) bool) Declaration {
	for ; s != nil; s = s.Enclosing() {
		if _, ok := s.(*Package); ok && unit != nil {
			if d := unit.ImportedDeclaration(name); d != nil && (filter == nil || filter(d)) {
				return d
			}
		}
		if d := DirectMember(s, name, filter); d != nil {
			return d
		}
	}
	return nil
}

// IsTypeDeclaration is a lookup filter accepting generic declarations.
func IsTypeDeclaration(d Declaration) bool {
	_, ok := d.(TypeDeclaration)
	return ok
}

// IsTypedDeclaration is a lookup filter accepting values and methods.
func IsTypedDeclaration(d Declaration) bool {
	_, ok := d.(TypedDeclaration)
	return ok
}

// Contains reports whether inner is outer or is nested inside it.
func Contains(outer, inner Scope) bool {
	for s := inner; s != nil; s = s.Enclosing() {
		if s == outer {
			return true
		}
	}
	return false
}

// PackageOf returns the package enclosing s.
func PackageOf(s Scope) *Package {
	for ; s != nil; s = s.Enclosing() {
		if p, ok := s.(*Package); ok {
			return p
		}
	}
	return nil
}

// EnclosingTypeDeclaration returns the innermost class or interface
// enclosing s, including s itself.
func EnclosingTypeDeclaration(s Scope) TypeDeclaration {
	for ; s != nil; s = s.Enclosing() {
		switch d := s.(type) {
		case *Class:
			return d
		case *Interface:
			return d
		}
	}
	return nil
}
