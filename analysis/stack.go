// Copyright © 2024 The ELPS authors

package analysis

import (
	"strings"

	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// ScopeStack tracks the directory path while a source tree is walked and
// the module, if any, declared at or above the current directory.
type ScopeStack struct {
	segments    []string
	module      *model.Module
	moduleDepth int
}

// NewScopeStack returns a stack positioned at the source root.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{}
}

// Push enters the directory named segment.
func (s *ScopeStack) Push(segment string) {
	s.segments = append(s.segments, segment)
}

// Pop leaves the current directory.  Leaving the directory that declared the
// current module clears it.
func (s *ScopeStack) Pop() {
	if len(s.segments) == 0 {
		panic("analysis: pop of empty scope stack")
	}
	s.segments = s.segments[:len(s.segments)-1]
	if s.module != nil && len(s.segments) < s.moduleDepth {
		s.module = nil
		s.moduleDepth = 0
	}
}

// Path returns the dotted path segments of the current directory.
func (s *ScopeStack) Path() []string {
	return append([]string(nil), s.segments...)
}

// Name returns the dotted name of the current directory.
func (s *ScopeStack) Name() string {
	return strings.Join(s.segments, ".")
}

// Module returns the module enclosing the current directory, or nil.
func (s *ScopeStack) Module() *model.Module {
	return s.module
}

// DefineModule marks the current directory as the root of a new module.
// Declaring a module inside another module, or at the source root, is
// fatal.  at locates the error.
func (s *ScopeStack) DefineModule(at tree.Node) (*model.Module, error) {
	if s.module != nil {
		return nil, fatalf(at, "Found two modules within the same hierarchy: '%s' and '%s'",
			s.module.QualifiedName(), s.Name())
	}
	if len(s.segments) == 0 {
		return nil, fatalf(at, "Module cannot be top level")
	}
	s.module = model.NewModule(s.Path())
	s.moduleDepth = len(s.segments)
	return s.module, nil
}
