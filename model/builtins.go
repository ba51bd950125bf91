// Copyright © 2024 The ELPS authors

package model

// LanguagePackageName is the package holding the built-in declarations.
var LanguagePackageName = []string{"ceylon", "language"}

// Builtins gives typed access to the language module's declarations.
type Builtins struct {
	Package *Package

	Void               *Class
	Object             *Class
	IdentifiableObject *Class
	Nothing            *Class
	Bottom             *Class
	Boolean            *Class
	Comparison         *Class
	String             *Class
	Integer            *Class
	Float              *Class
	Character          *Class
	Quoted             *Class
	Entry              *Class
	Range              *Class

	Equality       *Interface
	Comparable     *Interface
	Ordinal        *Interface
	Numeric        *Interface
	Slots          *Interface
	Container      *Interface
	Category       *Interface
	Iterable       *Interface
	Correspondence *Interface
	Sequence       *Interface
}

// LoadBuiltins looks up the built-in declarations in pkg.  The bottom type
// is created and added to the package.  Missing names are returned.
func LoadBuiltins(pkg *Package) (*Builtins, []string) {
	b := &Builtins{Package: pkg}
	var missing []string
	class := func(name string) *Class {
		c, ok := pkg.Member(name).(*Class)
		if !ok {
			missing = append(missing, name)
		}
		return c
	}
	iface := func(name string) *Interface {
		i, ok := pkg.Member(name).(*Interface)
		if !ok {
			missing = append(missing, name)
		}
		return i
	}
	b.Void = class("Void")
	b.Object = class("Object")
	b.IdentifiableObject = class("IdentifiableObject")
	b.Nothing = class("Nothing")
	b.Boolean = class("Boolean")
	b.Comparison = class("Comparison")
	b.String = class("String")
	b.Integer = class("Integer")
	b.Float = class("Float")
	b.Character = class("Character")
	b.Quoted = class("Quoted")
	b.Entry = class("Entry")
	b.Range = class("Range")
	b.Equality = iface("Equality")
	b.Comparable = iface("Comparable")
	b.Ordinal = iface("Ordinal")
	b.Numeric = iface("Numeric")
	b.Slots = iface("Slots")
	b.Container = iface("Container")
	b.Category = iface("Category")
	b.Iterable = iface("Iterable")
	b.Correspondence = iface("Correspondence")
	b.Sequence = iface("Sequence")

	b.Bottom = NewBottom(pkg)
	pkg.AddMember(b.Bottom)
	return b, missing
}

// Type produces d applied to args.
func (b *Builtins) Type(d TypeDeclaration, args ...Type) *ProducedType {
	return NewType(d, args...)
}

func (b *Builtins) VoidType() *ProducedType    { return NewType(b.Void) }
func (b *Builtins) ObjectType() *ProducedType  { return NewType(b.Object) }
func (b *Builtins) NothingType() *ProducedType { return NewType(b.Nothing) }
func (b *Builtins) BottomType() *ProducedType  { return NewType(b.Bottom) }
func (b *Builtins) BooleanType() *ProducedType { return NewType(b.Boolean) }
func (b *Builtins) StringType() *ProducedType  { return NewType(b.String) }
func (b *Builtins) IntegerType() *ProducedType { return NewType(b.Integer) }

// SequenceType returns Sequence<elem>.
func (b *Builtins) SequenceType(elem Type) *ProducedType {
	return NewType(b.Sequence, elem)
}

// Optional returns Nothing|t.
func (b *Builtins) Optional(t Type) Type {
	return Union(b.NothingType(), t)
}

// IsOptional reports whether Nothing is a subtype of t.
func (b *Builtins) IsOptional(t Type) bool {
	return t != nil && IsSubtype(b.NothingType(), t)
}

// Definite returns t without its Nothing case.
func (b *Builtins) Definite(t Type) Type {
	u, ok := t.(*UnionType)
	if !ok {
		if pt, ok := t.(*ProducedType); ok && pt.Decl == TypeDeclaration(b.Nothing) {
			return b.BottomType()
		}
		return t
	}
	var ts []Type
	for _, c := range u.Cases {
		if c.Decl != TypeDeclaration(b.Nothing) {
			ts = append(ts, c)
		}
	}
	if len(ts) == 0 {
		return b.BottomType()
	}
	return Union(ts...)
}

// ElementType returns the type argument of t's Iterable supertype.
func (b *Builtins) ElementType(t Type) Type {
	return b.typeArg(t, b.Iterable, 0)
}

// typeArg returns the i-th argument of t's supertype for d, or nil.
func (b *Builtins) typeArg(t Type, d TypeDeclaration, i int) Type {
	st := Supertype(t, d)
	if st == nil || i >= len(st.Args) {
		return nil
	}
	return st.Args[i]
}

// KeyItemTypes returns the key and item types of t's Entry supertype.
func (b *Builtins) KeyItemTypes(t Type) (Type, Type) {
	return b.typeArg(t, b.Entry, 0), b.typeArg(t, b.Entry, 1)
}
