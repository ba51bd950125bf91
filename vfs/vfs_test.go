// Copyright © 2024 The ELPS authors

package vfs

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func testTree(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteTree(fs, "/src", map[string]string{
		"top.ceylon":           "void top() {}",
		"a/module.ceylon":      "module a {}",
		"a/b.ceylon":           "class B() {}",
		"a/c/c.ceylon":         "class C() {}",
		"a/notes.txt":          "ignored",
		".git/x.ceylon":        "hidden",
		"gen/generated.ceylon": "class G() {}",
	}))
	return fs
}

func TestScan(t *testing.T) {
	fs := testTree(t)
	root, err := Scan(fs, "/src")
	require.NoError(t, err)

	var paths []string
	for _, f := range root.AllFiles() {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"top.ceylon",
		"a/b.ceylon",
		"a/module.ceylon",
		"a/c/c.ceylon",
		"gen/generated.ceylon",
	}, paths)

	a := root.Dirs[0]
	assert.Equal(t, []string{"a"}, a.Segments)
	assert.NotNil(t, a.File("module.ceylon"))
	assert.Nil(t, a.File("notes.txt"))
	assert.Equal(t, []string{"a", "c"}, a.Dirs[0].Segments)
}

func TestScanExclude(t *testing.T) {
	fs := testTree(t)
	root, err := Scan(fs, "/src", WithExclude("gen", "b.ceylon"))
	require.NoError(t, err)
	var paths []string
	for _, f := range root.AllFiles() {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"top.ceylon", "a/module.ceylon", "a/c/c.ceylon"}, paths)
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(afero.NewMemMapFs(), "/nope")
	assert.Error(t, err)
}

func TestWalkPrune(t *testing.T) {
	fs := testTree(t)
	root, err := Scan(fs, "/src")
	require.NoError(t, err)
	var names []string
	root.Walk(func(d *Dir) bool {
		names = append(names, d.Path)
		return d.Name != "a"
	})
	assert.Equal(t, []string{"", "a", "gen"}, names)
}

func TestRead(t *testing.T) {
	fs := testTree(t)
	root, err := Scan(fs, "/src")
	require.NoError(t, err)

	srcs, err := Read(fs, "/src", root.AllFiles(), WithWorkers(2))
	require.NoError(t, err)
	require.Len(t, srcs, 5)
	assert.Equal(t, "void top() {}", string(srcs[0].Content))

	missing := []*File{{Name: "x.ceylon", Path: "x.ceylon"}, {Name: "y.ceylon", Path: "y.ceylon"}}
	srcs, err = Read(fs, "/src", append(missing, root.Files...))
	assert.Len(t, srcs, 1)
	assert.Len(t, multierr.Errors(err), 2)
}
