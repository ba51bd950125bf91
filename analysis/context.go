// Copyright © 2024 The ELPS authors

// Package analysis is the semantic core of the front end.  It binds the
// declarations of parsed compilation units into a model.Package graph,
// resolves modules, imports, names and type references, and type checks
// every expression.
//
// A Context owns the declaration graph.  Units move through four passes in
// order: Bind, ResolveModule, ResolveNames and CheckExpressions.  Every unit
// of a tree must complete ResolveModule, and ResolveDependencies must run,
// before any unit's ResolveNames.  Run performs the whole pipeline.
//
// Recoverable problems are accumulated as Diagnostics on each PhasedUnit.
// Structural problems are *FatalError values; they stop the affected unit or
// tree while the remaining units are still analyzed.
package analysis

import (
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/tree"
	"github.com/sirupsen/logrus"
)

// Context is the state shared by every pass of one analysis.
type Context struct {
	cfg *Config
	log *logrus.Logger

	// Info holds the side tables filled by the passes.
	Info     *Info
	Builtins *model.Builtins
	// Language is the built-in module every module depends on.
	Language *model.Module
	// Default owns the packages outside any module.
	Default *model.Module
	// Modules lists declared modules in discovery order.
	Modules []*model.Module
	// Units lists the user units in load order.
	Units []*PhasedUnit

	languageUnit *PhasedUnit
	packages     map[string]*model.Package
	byUnit       map[*model.Unit]*PhasedUnit
	stack        *ScopeStack

	checkers  map[*PhasedUnit]*checker
	inferring map[model.Declaration]bool
	checked   map[tree.Node]bool
}

// NewContext returns a context with the language module loaded.
func NewContext(opts ...Option) (*Context, error) {
	cfg := newConfig(opts)
	c := &Context{
		cfg:       cfg,
		log:       cfg.Logger,
		Info:      newInfo(),
		packages:  make(map[string]*model.Package),
		byUnit:    make(map[*model.Unit]*PhasedUnit),
		checkers:  make(map[*PhasedUnit]*checker),
		inferring: make(map[model.Declaration]bool),
		checked:   make(map[tree.Node]bool),
	}
	c.Default = model.NewModule(nil)
	c.Default.Default = true
	if err := c.loadLanguage(); err != nil {
		return nil, err
	}
	c.Default.AddDependency(c.Language)
	return c, nil
}

// Config returns the context configuration.
func (c *Context) Config() *Config {
	return c.cfg
}

// LanguageUnit returns the unit declaring the built-in declarations.
func (c *Context) LanguageUnit() *PhasedUnit {
	return c.languageUnit
}

// PhasedUnitOf returns the phased unit wrapping u, or nil.
func (c *Context) PhasedUnitOf(u *model.Unit) *PhasedUnit {
	return c.byUnit[u]
}

// Package returns the package with the dotted name, creating it in the
// default module when it does not exist.
func (c *Context) Package(name []string) *model.Package {
	key := model.NewPackage(name).QualifiedName()
	if p, ok := c.packages[key]; ok {
		return p
	}
	p := model.NewPackage(name)
	c.packages[key] = p
	return p
}

// AddUnit registers a parsed unit with the context.
func (c *Context) AddUnit(pu *PhasedUnit) {
	c.Units = append(c.Units, pu)
}

// Module returns the declared or built-in module with the dotted name, or
// nil.
func (c *Context) Module(name []string) *model.Module {
	if c.Language != nil && sameName(c.Language.Name, name) {
		return c.Language
	}
	for _, m := range c.Modules {
		if sameName(m.Name, name) {
			return m
		}
	}
	return nil
}

func sameName(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (c *Context) logUnit(pu *PhasedUnit, phase Phase) *logrus.Entry {
	return c.log.WithFields(logrus.Fields{
		"unit":  pu.Path,
		"phase": phase.String(),
	})
}
