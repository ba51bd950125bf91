// Copyright © 2024 The ELPS authors

package model

import "github.com/emmanuelbernard/ceylon-spec/tree"

// Declaration is implemented by *Class, *Interface, *Method, *SimpleValue,
// *Getter, *Setter, *Parameter and *TypeParameter.
type Declaration interface {
	Name() string
	// Container returns the scope the declaration is a member of.
	Container() Scope
	Unit() *Unit
	// Node returns the syntax node the declaration was created from.
	Node() tree.Node
	Shared() bool
	aDeclaration()
}

// TypedDeclaration is a declaration with a value type.
type TypedDeclaration interface {
	Declaration
	// Type returns the declared or inferred type, nil until resolved.
	Type() Type
	SetType(t Type)
}

// TypeDeclaration is a generic declaration that produced types reference.
type TypeDeclaration interface {
	Declaration
	TypeParameters() []*TypeParameter
	// ExtendedType returns the supertype extended by the declaration, nil
	// for the root of the hierarchy.
	ExtendedType() *ProducedType
	SatisfiedTypes() []*ProducedType
	aTypeDeclaration()
}

// Functional is a declaration that can be invoked.
type Functional interface {
	Declaration
	ParameterLists() []*ParameterList
	AddParameterList(pl *ParameterList)
}

// Origin holds the attributes common to all declarations.
type Origin struct {
	Name      string
	Container Scope
	Unit      *Unit
	Node      tree.Node
	Shared    bool
}

type object struct {
	origin Origin
}

func (o *object) Name() string     { return o.origin.Name }
func (o *object) Container() Scope { return o.origin.Container }
func (o *object) Unit() *Unit      { return o.origin.Unit }
func (o *object) Node() tree.Node  { return o.origin.Node }
func (o *object) Shared() bool     { return o.origin.Shared }
func (o *object) aDeclaration()    {}

// Enclosing implements Scope for declarations that open one.
func (o *object) Enclosing() Scope { return o.origin.Container }

type typed struct {
	typ Type
}

func (t *typed) Type() Type      { return t.typ }
func (t *typed) SetType(ty Type) { t.typ = ty }

type generic struct {
	typeParams []*TypeParameter
	extended   *ProducedType
	satisfied  []*ProducedType
}

func (g *generic) TypeParameters() []*TypeParameter { return g.typeParams }
func (g *generic) ExtendedType() *ProducedType      { return g.extended }
func (g *generic) SatisfiedTypes() []*ProducedType  { return g.satisfied }
func (g *generic) aTypeDeclaration()                {}

// AddTypeParameter appends tp to the declaration's type parameters.
func (g *generic) AddTypeParameter(tp *TypeParameter) {
	g.typeParams = append(g.typeParams, tp)
}

// SetExtendedType records the extended type.
func (g *generic) SetExtendedType(t *ProducedType) { g.extended = t }

// AddSatisfiedType records a satisfied interface.
func (g *generic) AddSatisfiedType(t *ProducedType) {
	g.satisfied = append(g.satisfied, t)
}

type parameterized struct {
	lists []*ParameterList
}

func (p *parameterized) ParameterLists() []*ParameterList { return p.lists }

func (p *parameterized) AddParameterList(pl *ParameterList) {
	p.lists = append(p.lists, pl)
}

// Class declares a class.  A class owns at most one parameter list.
type Class struct {
	object
	members
	generic
	parameterized
	Abstract bool
	bottom   bool
}

func NewClass(o Origin) *Class {
	return &Class{object: object{o}}
}

// NewBottom returns the bottom type's declaration, a subtype of every type.
func NewBottom(pkg *Package) *Class {
	c := NewClass(Origin{Name: "Bottom", Container: pkg, Shared: true})
	c.bottom = true
	return c
}

// IsBottom reports whether c is the bottom type declaration.
func (c *Class) IsBottom() bool { return c.bottom }

// ParameterList returns the class parameter list or nil.
func (c *Class) ParameterList() *ParameterList {
	if len(c.lists) == 0 {
		return nil
	}
	return c.lists[0]
}

// Interface declares an interface.
type Interface struct {
	object
	members
	generic
}

func NewInterface(o Origin) *Interface {
	return &Interface{object: object{o}}
}

// Method declares a method or function.
type Method struct {
	object
	members
	typed
	parameterized
	typeParams []*TypeParameter
	// Void is set for methods declared void.
	Void   bool
	Formal bool
}

func NewMethod(o Origin) *Method {
	return &Method{object: object{o}}
}

func (m *Method) TypeParameters() []*TypeParameter { return m.typeParams }

func (m *Method) AddTypeParameter(tp *TypeParameter) {
	m.typeParams = append(m.typeParams, tp)
}

// SimpleValue is an attribute, a local value, or a variable bound by a
// condition or iterator.
type SimpleValue struct {
	object
	typed
	Variable bool
}

func NewSimpleValue(o Origin) *SimpleValue {
	return &SimpleValue{object: object{o}}
}

// Getter is a computed attribute.
type Getter struct {
	object
	members
	typed
	Setter *Setter
}

func NewGetter(o Origin) *Getter {
	return &Getter{object: object{o}}
}

// Setter is the assignment half of a computed attribute.
type Setter struct {
	object
	members
	typed
	Getter *Getter
}

func NewSetter(o Origin) *Setter {
	return &Setter{object: object{o}}
}

// Parameter is a formal parameter of a class or method.
type Parameter struct {
	object
	members
	typed
	Defaulted bool
	Sequenced bool
	// List is the parameter list declaring the parameter.
	List *ParameterList
}

func NewParameter(o Origin) *Parameter {
	return &Parameter{object: object{o}}
}

// ParameterList is an ordered parameter list of a Functional declaration.
type ParameterList struct {
	Params []*Parameter
}

// Add appends p to the list.
func (pl *ParameterList) Add(p *Parameter) {
	p.List = pl
	pl.Params = append(pl.Params, p)
}

// Param returns the parameter named name, or nil.
func (pl *ParameterList) Param(name string) *Parameter {
	for _, p := range pl.Params {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// TypeParameter declares a type parameter of a class, interface or method.
type TypeParameter struct {
	object
	generic
	Variance tree.Variance
}

func NewTypeParameter(o Origin) *TypeParameter {
	return &TypeParameter{object: object{o}}
}

// Scope assertions.
var (
	_ Scope = (*Class)(nil)
	_ Scope = (*Interface)(nil)
	_ Scope = (*Method)(nil)
	_ Scope = (*Getter)(nil)
	_ Scope = (*Setter)(nil)
	_ Scope = (*Parameter)(nil)
	_ Scope = (*Package)(nil)
	_ Scope = (*ControlBlock)(nil)

	_ TypeDeclaration  = (*Class)(nil)
	_ TypeDeclaration  = (*Interface)(nil)
	_ TypeDeclaration  = (*TypeParameter)(nil)
	_ TypedDeclaration = (*Method)(nil)
	_ TypedDeclaration = (*SimpleValue)(nil)
	_ TypedDeclaration = (*Getter)(nil)
	_ TypedDeclaration = (*Setter)(nil)
	_ TypedDeclaration = (*Parameter)(nil)
	_ Functional       = (*Class)(nil)
	_ Functional       = (*Method)(nil)
)

// IsScope reports whether d opens its own scope.
func IsScope(d Declaration) (Scope, bool) {
	s, ok := d.(Scope)
	return s, ok
}

// DeclaredType returns the type of d applied to its own type parameters,
// the type of this inside the declaration.
func DeclaredType(d TypeDeclaration) *ProducedType {
	var args []Type
	for _, tp := range d.TypeParameters() {
		args = append(args, &ProducedType{Decl: tp})
	}
	return &ProducedType{Decl: d, Args: args}
}

// TypeParametersOf returns the type parameters of a generic declaration or
// method, nil otherwise.
func TypeParametersOf(d Declaration) []*TypeParameter {
	switch d := d.(type) {
	case TypeDeclaration:
		return d.TypeParameters()
	case *Method:
		return d.TypeParameters()
	}
	return nil
}
