// Copyright © 2018 The ELPS authors

// Package parser is the front door to source parsing.
package parser

import (
	"io"

	"github.com/emmanuelbernard/ceylon-spec/parser/rdparser"
	"github.com/emmanuelbernard/ceylon-spec/parser/token"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// ModuleDescriptorName is the reserved file name of a module descriptor unit.
const ModuleDescriptorName = "module.ceylon"

// Extension is the file extension of source units.
const Extension = ".ceylon"

// ParseFile parses one source unit.  Syntax errors are returned as
// *token.LocationError.
func ParseFile(name string, r io.Reader) (*tree.CompilationUnit, error) {
	return rdparser.Parse(name, r)
}

// ParseFileLocation is like ParseFile but records a physical path distinct
// from the logical name.
func ParseFileLocation(name, path string, r io.Reader) (*tree.CompilationUnit, error) {
	return rdparser.ParseLocation(name, path, r)
}

// ParseExpression parses a single expression, as typed at a prompt.
func ParseExpression(name string, r io.Reader) (tree.Expr, error) {
	return rdparser.New(token.NewScanner(name, r)).ParseExpression()
}
