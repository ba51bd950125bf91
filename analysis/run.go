// Copyright © 2024 The ELPS authors

package analysis

import (
	"context"

	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/profiler"
	"github.com/emmanuelbernard/ceylon-spec/vfs"
	"github.com/spf13/afero"
)

// Result is the outcome of analyzing a source tree.
type Result struct {
	Context *Context
	Units   []*PhasedUnit
	// Diagnostics holds the diagnostics of every unit, ordered by file,
	// line and column.
	Diagnostics []Diagnostic
	Info        *Info
	Modules     []*model.Module
}

// Errors returns the error diagnostics of the result.
func (r *Result) Errors() []Diagnostic {
	var errs []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			errs = append(errs, d)
		}
	}
	return errs
}

// Unit returns the unit loaded from path, or nil.
func (r *Result) Unit(path string) *PhasedUnit {
	for _, pu := range r.Units {
		if pu.Path == path {
			return pu
		}
	}
	return nil
}

// Run completes the analysis of the loaded units.  Module dependencies are
// resolved once every unit has been loaded, then every unit's names are
// resolved before any unit is checked, so inferred types may be computed
// across units on demand.
func (c *Context) Run(ctx context.Context) (*Result, error) {
	_, end := c.cfg.Tracer.Start(ctx, profiler.Span{Phase: "resolve-dependencies"})
	c.ResolveDependencies()
	end()
	for _, pu := range c.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, end := c.cfg.Tracer.Start(ctx, c.span(pu, PhaseNamesResolved))
		c.ResolveNames(pu)
		end()
	}
	for _, pu := range c.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, end := c.cfg.Tracer.Start(ctx, c.span(pu, PhaseChecked))
		c.CheckExpressions(pu)
		end()
	}
	return c.result(), nil
}

func (c *Context) result() *Result {
	r := &Result{
		Context: c,
		Units:   c.Units,
		Info:    c.Info,
		Modules: c.Modules,
	}
	for _, pu := range c.Units {
		r.Diagnostics = append(r.Diagnostics, pu.Diagnostics()...)
	}
	SortDiagnostics(r.Diagnostics)
	return r
}

// CheckSources analyzes an in-memory tree of sources keyed by slash
// separated path.
func CheckSources(srcs map[string]string, opts ...Option) (*Result, error) {
	fs := afero.NewMemMapFs()
	if err := vfs.WriteTree(fs, "/src", srcs); err != nil {
		return nil, err
	}
	c, err := NewContext(opts...)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	if err := c.LoadTree(ctx, fs, "/src"); err != nil {
		return nil, err
	}
	return c.Run(ctx)
}
