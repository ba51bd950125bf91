// Copyright © 2024 The ELPS authors

package analysis

import (
	"errors"
	"fmt"

	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/parser/token"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// Phase is the last pass completed on a unit.
type Phase int

const (
	PhaseParsed Phase = iota
	PhaseBound
	PhaseModuleResolved
	PhaseNamesResolved
	PhaseChecked
)

var phaseNames = [...]string{
	PhaseParsed:         "parse",
	PhaseBound:          "bind",
	PhaseModuleResolved: "resolve-module",
	PhaseNamesResolved:  "resolve-names",
	PhaseChecked:        "check",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// PhasedUnit is one source unit moving through the passes.
type PhasedUnit struct {
	// Path is the slash-separated path relative to the source root.
	Path    string
	Tree    *tree.CompilationUnit
	Package *model.Package
	Unit    *model.Unit
	Phase   Phase
	// Err is the fatal error that stopped the unit, if any.
	Err error

	diags diagnosticSet
}

// NewPhasedUnit wraps a parsed compilation unit belonging to pkg.
func NewPhasedUnit(path string, cu *tree.CompilationUnit, pkg *model.Package) *PhasedUnit {
	return &PhasedUnit{Path: path, Tree: cu, Package: pkg}
}

// IsDescriptor reports whether the unit declares a module.
func (pu *PhasedUnit) IsDescriptor() bool {
	return pu.Tree != nil && pu.Tree.Module != nil
}

// Failed reports whether a fatal error stopped the unit.
func (pu *PhasedUnit) Failed() bool {
	return pu.Err != nil
}

// Diagnostics returns the unit's diagnostics ordered by position.
func (pu *PhasedUnit) Diagnostics() []Diagnostic {
	return pu.diags.sorted()
}

// Errors returns the error diagnostics of the unit.
func (pu *PhasedUnit) Errors() []Diagnostic {
	var errs []Diagnostic
	for _, d := range pu.Diagnostics() {
		if d.Severity == SeverityError {
			errs = append(errs, d)
		}
	}
	return errs
}

func (pu *PhasedUnit) report(sev Severity, n tree.Node, msg string) {
	var pos *token.Location
	if n != nil {
		pos = n.Pos()
	}
	pu.diags.add(Diagnostic{Severity: sev, Message: msg, Node: n, Pos: pos})
}

// errorf records an error diagnostic on n.
func (pu *PhasedUnit) errorf(n tree.Node, format string, v ...interface{}) {
	pu.report(SeverityError, n, fmt.Sprintf(format, v...))
}

// fail marks the unit as stopped by err, which is also reported as an error
// diagnostic so renderers see it.
func (pu *PhasedUnit) fail(err error) {
	if pu.Err == nil {
		pu.Err = err
	}
	var pos *token.Location
	msg := err.Error()
	var fe *FatalError
	var le *token.LocationError
	switch {
	case errors.As(err, &fe):
		pos, msg = fe.Pos, fe.Msg
	case errors.As(err, &le):
		pos, msg = le.Source, le.Err.Error()
	}
	if pos == nil {
		pos = &token.Location{File: pu.Path, Pos: -1}
	}
	pu.diags.add(Diagnostic{Severity: SeverityError, Message: msg, Pos: pos})
}
