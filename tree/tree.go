// Copyright © 2024 The ELPS authors

// Package tree defines the syntax tree produced by the parser.  The tree is
// immutable once parsed.  Semantic passes never write to nodes; they record
// their results in side tables keyed by node.
//
// The node hierarchy is closed: every node type is declared in this package
// and implements an unexported marker method, so passes can dispatch with a
// type switch and treat an unexpected type as a programming error.
package tree

import (
	"strings"

	"github.com/emmanuelbernard/ceylon-spec/parser/token"
)

// Node is implemented by every syntax node.
type Node interface {
	// Pos returns the location of the first token of the node.
	Pos() *token.Location
	aNode()
}

// Stmt is a node that may appear in a block.
type Stmt interface {
	Node
	aStmt()
}

// Decl is a declaration-shaped node.
type Decl interface {
	Node
	DeclName() *Ident
	aDecl()
}

// Expr is an expression node.
type Expr interface {
	Node
	aExpr()
}

// Type is a syntactic type reference.
type Type interface {
	Node
	aType()
}

// Condition is the test of an if or while statement.
type Condition interface {
	Node
	aCondition()
}

// Iterator is the header of a for statement.
type Iterator interface {
	Node
	aIterator()
}

type node struct {
	Loc *token.Location
}

func (n *node) Pos() *token.Location { return n.Loc }
func (*node) aNode()                 {}

// Ident is an identifier occurrence.
type Ident struct {
	node
	Name string
}

// Path is a dotted name such as a package or module name.
type Path struct {
	node
	Segments []*Ident
}

// Names returns the segment names of the path.
func (p *Path) Names() []string {
	names := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		names[i] = s.Name
	}
	return names
}

func (p *Path) String() string {
	return strings.Join(p.Names(), ".")
}

// CompilationUnit is the root of one source file.
type CompilationUnit struct {
	node
	Filename string
	Module   *ModuleDescriptor // non-nil only in a module descriptor
	Imports  []*Import
	Body     []Stmt
	Comments []*token.Token
}

// ModuleDescriptor declares the module rooted at the descriptor's directory.
type ModuleDescriptor struct {
	node
	Path    *Path
	Imports []*ModuleImport
}

// ModuleImport names a module dependency.
type ModuleImport struct {
	node
	Path *Path
}

// Import is an import clause of a compilation unit.
type Import struct {
	node
	Path     *Path
	Elements []*ImportElement
}

// ImportElement imports one declaration, optionally under an alias.
type ImportElement struct {
	node
	Alias *Ident
	Name  *Ident
}

// LocalName returns the name under which the element is visible.
func (e *ImportElement) LocalName() string {
	if e.Alias != nil {
		return e.Alias.Name
	}
	return e.Name.Name
}

// Annotations are the modifiers preceding a declaration.
type Annotations struct {
	Shared   bool
	Variable bool
	Formal   bool
	Default  bool
	Actual   bool
	Abstract bool
}

// Variance of a type parameter.
type Variance int

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

func (v Variance) String() string {
	switch v {
	case Covariant:
		return "out"
	case Contravariant:
		return "in"
	default:
		return ""
	}
}

// ClassDecl declares a class.
type ClassDecl struct {
	node
	Annotations
	Name       *Ident
	TypeParams []*TypeParameter
	Params     *ParameterList
	Extends    *ExtendedType
	Satisfies  []Type
	Body       *Block
}

// InterfaceDecl declares an interface.
type InterfaceDecl struct {
	node
	Annotations
	Name       *Ident
	TypeParams []*TypeParameter
	Satisfies  []Type
	Body       *Block
}

// MethodDecl declares a method.  Exactly one of Body and Specifier is set
// unless the method is formal.
type MethodDecl struct {
	node
	Annotations
	Type       Type // *VoidType, *InferType or a type reference
	Name       *Ident
	TypeParams []*TypeParameter
	Params     *ParameterList
	Body       *Block
	Specifier  Expr
}

// AttributeDecl declares a simple attribute or local value.
type AttributeDecl struct {
	node
	Annotations
	Type      Type
	Name      *Ident
	Specifier Expr
	Assign    bool // initialized with := rather than =
}

// GetterDecl declares a computed attribute.
type GetterDecl struct {
	node
	Annotations
	Type Type
	Name *Ident
	Body *Block
}

// SetterDecl declares the assignment half of a computed attribute.
type SetterDecl struct {
	node
	Annotations
	Name *Ident
	Body *Block
}

// Parameter is one formal parameter.
type Parameter struct {
	node
	Annotations
	Type      Type
	Sequenced bool
	Name      *Ident
	Default   Expr
}

// ParameterList is the formal parameter list of a class or method.
type ParameterList struct {
	node
	Params []*Parameter
}

// TypeParameter declares a type parameter.
type TypeParameter struct {
	node
	Variance Variance
	Name     *Ident
}

// ExtendedType is the extends clause of a class.
type ExtendedType struct {
	node
	Type *BaseType
	Args *PositionalArgs
}

// Variable is a value introduced by a condition or iterator.
type Variable struct {
	node
	Type      Type
	Name      *Ident
	Specifier Expr
}

func (d *ClassDecl) DeclName() *Ident     { return d.Name }
func (d *InterfaceDecl) DeclName() *Ident { return d.Name }
func (d *MethodDecl) DeclName() *Ident    { return d.Name }
func (d *AttributeDecl) DeclName() *Ident { return d.Name }
func (d *GetterDecl) DeclName() *Ident    { return d.Name }
func (d *SetterDecl) DeclName() *Ident    { return d.Name }
func (d *Parameter) DeclName() *Ident     { return d.Name }
func (d *TypeParameter) DeclName() *Ident { return d.Name }
func (d *Variable) DeclName() *Ident      { return d.Name }

func (*ClassDecl) aDecl()     {}
func (*InterfaceDecl) aDecl() {}
func (*MethodDecl) aDecl()    {}
func (*AttributeDecl) aDecl() {}
func (*GetterDecl) aDecl()    {}
func (*SetterDecl) aDecl()    {}
func (*Parameter) aDecl()     {}
func (*TypeParameter) aDecl() {}
func (*Variable) aDecl()      {}

// BaseType references a type by name, e.g. Sequence<String>.
type BaseType struct {
	node
	Name *Ident
	Args []Type
}

// UnionType is A|B.
type UnionType struct {
	node
	Cases []Type
}

// OptionalType is T?, shorthand for Nothing|T.
type OptionalType struct {
	node
	Inner Type
}

// InferType is the value or function placeholder for an elided type.
type InferType struct {
	node
	Function bool
}

// VoidType is the void return type of a method.
type VoidType struct {
	node
}

func (*BaseType) aType()     {}
func (*UnionType) aType()    {}
func (*OptionalType) aType() {}
func (*InferType) aType()    {}
func (*VoidType) aType()     {}

// IsInfer reports whether t is the elided-type placeholder.
func IsInfer(t Type) bool {
	_, ok := t.(*InferType)
	return ok
}

// IsVoid reports whether t is the void modifier.
func IsVoid(t Type) bool {
	_, ok := t.(*VoidType)
	return ok
}
