// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/emmanuelbernard/ceylon-spec/model"
)

// ResolveModule processes a module descriptor unit, declaring its module at
// the current directory of the tree being walked.  Ordinary units are left
// unchanged.  The returned error is fatal for the whole tree.
func (c *Context) ResolveModule(pu *PhasedUnit) error {
	if pu.Failed() {
		return pu.Err
	}
	if pu.Phase >= PhaseModuleResolved {
		return nil
	}
	if !pu.IsDescriptor() {
		pu.Phase = PhaseModuleResolved
		return nil
	}
	c.logUnit(pu, PhaseModuleResolved).Debug("declaring module")
	stack := c.stack
	if stack == nil {
		stack = NewScopeStack()
		for _, seg := range pu.Package.Name {
			stack.Push(seg)
		}
	}
	md := pu.Tree.Module
	m, err := stack.DefineModule(md)
	if err != nil {
		pu.fail(err)
		return err
	}
	if declared := md.Path.String(); declared != stack.Name() {
		pu.errorf(md.Path, "module name does not match descriptor location: %s", declared)
	}
	m.Descriptor = pu.Unit
	c.Modules = append(c.Modules, m)
	if pu.Package.Module == nil {
		m.AddPackage(pu.Package)
	}
	pu.Phase = PhaseModuleResolved
	return nil
}

// ResolveDependencies links every module to the modules its descriptor
// imports and to the language module.  It must run after every unit has been
// through ResolveModule and before any unit's ResolveNames.
func (c *Context) ResolveDependencies() {
	for _, m := range c.Modules {
		m.AddDependency(c.Language)
		pu := c.byUnit[m.Descriptor]
		if pu == nil {
			continue
		}
		for _, imp := range pu.Tree.Module.Imports {
			dep := c.Module(imp.Path.Names())
			if dep == nil {
				pu.errorf(imp.Path, "module not found: %s", imp.Path)
				continue
			}
			if dep == m {
				pu.errorf(imp.Path, "module imports itself: %s", imp.Path)
				continue
			}
			m.AddDependency(dep)
		}
	}
	c.Default.AddDependency(c.Language)
}

// moduleOf returns the module owning pkg.
func (c *Context) moduleOf(pkg *model.Package) *model.Module {
	if pkg.Module != nil {
		return pkg.Module
	}
	return c.Default
}
