// Copyright © 2024 The ELPS authors

package analysis

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/parser"
	"github.com/emmanuelbernard/ceylon-spec/profiler"
	"github.com/emmanuelbernard/ceylon-spec/tree"
	"github.com/emmanuelbernard/ceylon-spec/vfs"
	"github.com/sourcegraph/conc/iter"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// parsed is the outcome of parsing one file.
type parsed struct {
	file *vfs.File
	cu   *tree.CompilationUnit
	err  error
}

// LoadTree parses every source unit below root and walks the directories in
// order, binding each unit and declaring the modules of descriptor units.
// Each directory is a package named by its path relative to root.
//
// Syntax errors stop only the affected unit.  Unreadable files and fatal
// module errors are returned; a fatal module error stops the walk.
func (c *Context) LoadTree(ctx context.Context, fs afero.Fs, root string) error {
	ctx, end := c.cfg.Tracer.Start(ctx, profiler.Span{Phase: "load", Unit: root})
	defer end()
	dir, err := vfs.Scan(fs, root, vfs.WithExclude(c.cfg.Exclude...))
	if err != nil {
		return err
	}
	srcs, readErr := vfs.Read(fs, root, dir.AllFiles(), vfs.WithWorkers(c.cfg.Parallel))
	units := c.parse(ctx, root, srcs)

	c.stack = NewScopeStack()
	defer func() { c.stack = nil }()
	return multierr.Append(readErr, c.loadDir(ctx, dir, units))
}

func (c *Context) parse(ctx context.Context, root string, srcs []vfs.Source) map[*vfs.File]parsed {
	_, end := c.cfg.Tracer.Start(ctx, profiler.Span{Phase: PhaseParsed.String(), Unit: root})
	defer end()
	mapper := iter.Mapper[vfs.Source, parsed]{MaxGoroutines: c.cfg.Parallel}
	results := mapper.Map(srcs, func(src *vfs.Source) parsed {
		path := filepath.Join(root, filepath.FromSlash(src.File.Path))
		cu, err := parser.ParseFileLocation(src.File.Path, path, bytes.NewReader(src.Content))
		return parsed{file: src.File, cu: cu, err: err}
	})
	m := make(map[*vfs.File]parsed, len(results))
	for _, r := range results {
		m[r.file] = r
	}
	return m
}

// loadDir loads the package in d, then its subpackages.  The module
// descriptor of d, if any, is processed before the other units so they
// belong to its module.
func (c *Context) loadDir(ctx context.Context, d *vfs.Dir, units map[*vfs.File]parsed) error {
	pkg := c.Package(c.stack.Path())
	var desc *PhasedUnit
	if f := d.File(parser.ModuleDescriptorName); f != nil {
		if p, ok := units[f]; ok {
			desc = c.newUnit(p, pkg)
			if err := c.declareModule(ctx, desc); err != nil {
				return err
			}
		}
	}
	if pkg.Module == nil {
		if m := c.stack.Module(); m != nil {
			m.AddPackage(pkg)
		} else {
			c.Default.AddPackage(pkg)
		}
	}
	for _, f := range d.Files {
		p, ok := units[f]
		if !ok || (desc != nil && f.Name == parser.ModuleDescriptorName) {
			continue
		}
		if err := c.declareModule(ctx, c.newUnit(p, pkg)); err != nil {
			return err
		}
	}
	for _, sub := range d.Dirs {
		c.stack.Push(sub.Name)
		err := c.loadDir(ctx, sub, units)
		c.stack.Pop()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) newUnit(p parsed, pkg *model.Package) *PhasedUnit {
	pu := NewPhasedUnit(p.file.Path, p.cu, pkg)
	if p.err != nil {
		pu.fail(p.err)
	}
	c.AddUnit(pu)
	return pu
}

// declareModule binds pu and resolves its module descriptor.  Only a fatal
// module error is returned; syntax errors already stopped the unit.
func (c *Context) declareModule(ctx context.Context, pu *PhasedUnit) error {
	if pu.Failed() {
		return nil
	}
	_, end := c.cfg.Tracer.Start(ctx, c.span(pu, PhaseBound))
	c.Bind(pu)
	end()
	_, end = c.cfg.Tracer.Start(ctx, c.span(pu, PhaseModuleResolved))
	defer end()
	return c.ResolveModule(pu)
}

func (c *Context) span(pu *PhasedUnit, phase Phase) profiler.Span {
	s := profiler.Span{Phase: phase.String(), Unit: pu.Path}
	if pu.Package != nil {
		s.Package = pu.Package.QualifiedName()
	}
	return s
}
