// Copyright © 2024 The ELPS authors

// Package vfs discovers source trees on an afero filesystem.  A tree is a
// hierarchy of directories, each holding the source units of one package.
package vfs

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/iter"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// Extension is the file extension of source units.
const Extension = ".ceylon"

// File is a source unit found by Scan.
type File struct {
	Name string
	// Path is slash separated and relative to the scanned root.
	Path string
}

// Dir is a scanned directory.  Segments is the directory path relative to
// the root, empty for the root itself.
type Dir struct {
	Name     string
	Path     string
	Segments []string
	Files    []*File
	Dirs     []*Dir
}

// File returns the file named name directly in d, or nil.
func (d *Dir) File(name string) *File {
	for _, f := range d.Files {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Walk calls fn for d and its descendants in pre-order.  Returning false
// from fn skips the directory's children.
func (d *Dir) Walk(fn func(*Dir) bool) {
	if !fn(d) {
		return
	}
	for _, sub := range d.Dirs {
		sub.Walk(fn)
	}
}

// AllFiles returns every file in the tree in walk order.
func (d *Dir) AllFiles() []*File {
	var files []*File
	d.Walk(func(d *Dir) bool {
		files = append(files, d.Files...)
		return true
	})
	return files
}

type config struct {
	exclude []string
	workers int
}

// Option configures Scan and Read.
type Option func(*config)

// WithExclude skips files and directories whose root-relative path matches
// any of the glob patterns.
func WithExclude(patterns ...string) Option {
	return func(c *config) {
		c.exclude = append(c.exclude, patterns...)
	}
}

// WithWorkers bounds the number of files read concurrently.  Zero means one
// worker per CPU.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *config) excluded(rel string) bool {
	for _, pat := range c.exclude {
		if ok, _ := path.Match(pat, rel); ok {
			return true
		}
		if ok, _ := path.Match(pat, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

// Scan walks the tree rooted at root.  Hidden directories are skipped.
// Files and directories within a directory are sorted by name.
func Scan(fs afero.Fs, root string, opts ...Option) (*Dir, error) {
	c := newConfig(opts)
	info, err := fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("source root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root %s: not a directory", root)
	}
	d := &Dir{Name: filepath.Base(root)}
	if err := c.scanDir(fs, root, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (c *config) scanDir(fs afero.Fs, root string, d *Dir) error {
	infos, err := afero.ReadDir(fs, filepath.Join(root, filepath.FromSlash(d.Path)))
	if err != nil {
		return err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	for _, info := range infos {
		name := info.Name()
		rel := path.Join(d.Path, name)
		if c.excluded(rel) {
			continue
		}
		if info.IsDir() {
			if shouldSkipDir(name) {
				continue
			}
			sub := &Dir{
				Name:     name,
				Path:     rel,
				Segments: append(append([]string(nil), d.Segments...), name),
			}
			if err := c.scanDir(fs, root, sub); err != nil {
				return err
			}
			d.Dirs = append(d.Dirs, sub)
			continue
		}
		if info.Mode()&os.ModeType == 0 && strings.HasSuffix(name, Extension) {
			d.Files = append(d.Files, &File{Name: name, Path: rel})
		}
	}
	return nil
}

// shouldSkipDir returns true for directories that should not be walked.
func shouldSkipDir(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return len(name) > 0 && name[0] == '.'
}

// Source is the content of a file.
type Source struct {
	File    *File
	Content []byte
}

// Read loads files concurrently.  Every unreadable file contributes an error
// to the combined result; the sources that were read are still returned.
func Read(fs afero.Fs, root string, files []*File, opts ...Option) ([]Source, error) {
	c := newConfig(opts)
	type result struct {
		src Source
		err error
	}
	mapper := iter.Mapper[*File, result]{MaxGoroutines: c.workers}
	results := mapper.Map(files, func(f **File) result {
		b, err := afero.ReadFile(fs, filepath.Join(root, filepath.FromSlash((*f).Path)))
		if err != nil {
			return result{err: fmt.Errorf("%s: %w", (*f).Path, err)}
		}
		return result{src: Source{File: *f, Content: b}}
	})
	var srcs []Source
	var err error
	for _, r := range results {
		if r.err != nil {
			err = multierr.Append(err, r.err)
			continue
		}
		srcs = append(srcs, r.src)
	}
	return srcs, err
}

// WriteTree populates fs with files keyed by slash-separated path below
// root.
func WriteTree(fs afero.Fs, root string, files map[string]string) error {
	var err error
	for p, content := range files {
		name := filepath.Join(root, filepath.FromSlash(p))
		if e := fs.MkdirAll(filepath.Dir(name), 0o755); e != nil {
			err = multierr.Append(err, e)
			continue
		}
		err = multierr.Append(err, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return err
}
