// Copyright © 2024 The ELPS authors

package model

import (
	"strings"

	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// DefaultModuleName names the module owning packages outside any module
// descriptor's directory.
const DefaultModuleName = "<default>"

// Module owns packages and depends on other modules.
type Module struct {
	Name         []string
	Packages     []*Package
	Dependencies []*Module
	// Default marks the synthesized module for packages outside any
	// declared module.
	Default bool
	// Descriptor is the unit declaring the module, nil for the default and
	// language modules.
	Descriptor *Unit
}

// NewModule returns an empty module.
func NewModule(name []string) *Module {
	return &Module{Name: name}
}

// QualifiedName returns the dotted module name.
func (m *Module) QualifiedName() string {
	if m.Default {
		return DefaultModuleName
	}
	return strings.Join(m.Name, ".")
}

func (m *Module) String() string {
	return m.QualifiedName()
}

// AddPackage records p as owned by m.
func (m *Module) AddPackage(p *Package) {
	p.Module = m
	m.Packages = append(m.Packages, p)
}

// AddDependency appends dep unless it is already a dependency.
func (m *Module) AddDependency(dep *Module) {
	for _, d := range m.Dependencies {
		if d == dep {
			return
		}
	}
	m.Dependencies = append(m.Dependencies, dep)
}

// AllPackages returns the module's own packages followed by the packages of
// its direct dependencies.  Dependencies are not followed transitively.
func (m *Module) AllPackages() []*Package {
	all := append([]*Package(nil), m.Packages...)
	for _, dep := range m.Dependencies {
		all = append(all, dep.Packages...)
	}
	return all
}

// Package returns the package reachable from m whose name equals path.
func (m *Module) Package(path []string) *Package {
	for _, p := range m.AllPackages() {
		if p.NameEquals(path) {
			return p
		}
	}
	return nil
}

// Package is a root-level scope named by its directory path.
type Package struct {
	members
	Name   []string
	Module *Module
	Units  []*Unit
}

// NewPackage returns an empty package.
func NewPackage(name []string) *Package {
	return &Package{Name: name}
}

func (*Package) Enclosing() Scope { return nil }

// QualifiedName returns the dotted package name.
func (p *Package) QualifiedName() string {
	return strings.Join(p.Name, ".")
}

func (p *Package) String() string {
	return p.QualifiedName()
}

// NameEquals compares the package name segment-wise against path.
func (p *Package) NameEquals(path []string) bool {
	if len(p.Name) != len(path) {
		return false
	}
	for i := range path {
		if p.Name[i] != path[i] {
			return false
		}
	}
	return true
}

// Member returns the package's direct member named name.
func (p *Package) Member(name string) Declaration {
	return DirectMember(p, name, nil)
}

// Unit is one source file's contribution to a package.
type Unit struct {
	Package      *Package
	Filename     string
	Imports      []*Import
	Declarations []Declaration
	Node         *tree.CompilationUnit
}

// NewUnit creates a unit and attaches it to pkg.
func NewUnit(pkg *Package, filename string, node *tree.CompilationUnit) *Unit {
	u := &Unit{Package: pkg, Filename: filename, Node: node}
	pkg.Units = append(pkg.Units, u)
	return u
}

// AddImport records an import on the unit.
func (u *Unit) AddImport(imp *Import) {
	u.Imports = append(u.Imports, imp)
}

// ImportedDeclaration returns the declaration imported under alias, or nil.
func (u *Unit) ImportedDeclaration(alias string) Declaration {
	for _, imp := range u.Imports {
		if imp.Alias == alias {
			return imp.Declaration
		}
	}
	return nil
}

// Import binds an alias in a unit to a declaration of another package.
type Import struct {
	Alias       string
	Declaration Declaration
	Node        *tree.ImportElement
}
