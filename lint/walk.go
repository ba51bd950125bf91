// Copyright © 2024 The ELPS authors

package lint

import (
	"github.com/emmanuelbernard/ceylon-spec/astutil"
	"github.com/emmanuelbernard/ceylon-spec/parser/token"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// WalkDecls calls fn for every declaration node below root, outermost
// first.
func WalkDecls(root tree.Node, fn func(d tree.Decl)) {
	astutil.Inspect(root, func(n tree.Node) bool {
		if d, ok := n.(tree.Decl); ok {
			fn(d)
		}
		return true
	})
}

// WalkBlocks calls fn for every block below root.
func WalkBlocks(root tree.Node, fn func(blk *tree.Block)) {
	astutil.Inspect(root, func(n tree.Node) bool {
		if blk, ok := n.(*tree.Block); ok {
			fn(blk)
		}
		return true
	})
}

// SourceOf returns the best source location for a node.  Declarations are
// located at their name.
func SourceOf(n tree.Node) *token.Location {
	if d, ok := n.(tree.Decl); ok && d.DeclName() != nil {
		return d.DeclName().Pos()
	}
	return n.Pos()
}

// exits reports whether control never continues past s.
func exits(s tree.Stmt) bool {
	switch s := s.(type) {
	case *tree.Return, *tree.Break, *tree.Continue:
		return true
	case *tree.IfStmt:
		return definitelyExits(s, exits)
	}
	return false
}

// returns reports whether s definitely returns.
func returns(s tree.Stmt) bool {
	switch s := s.(type) {
	case *tree.Return:
		return true
	case *tree.IfStmt:
		return definitelyExits(s, returns)
	case *tree.ForStmt:
		// The fail clause runs when the loop completes without breaking.
		return s.Fail != nil && blockDoes(s.Fail.Body, returns) && !breaks(s.Clause.Body)
	}
	return false
}

// definitelyExits reports whether every branch of s satisfies pred.
func definitelyExits(s *tree.IfStmt, pred func(tree.Stmt) bool) bool {
	if s.Else == nil || !blockDoes(s.If.Body, pred) {
		return false
	}
	if s.Else.If != nil {
		return definitelyExits(s.Else.If, pred)
	}
	return blockDoes(s.Else.Body, pred)
}

// blockDoes reports whether some statement of blk satisfies pred.
func blockDoes(blk *tree.Block, pred func(tree.Stmt) bool) bool {
	if blk == nil {
		return false
	}
	for _, s := range blk.Stmts {
		if pred(s) {
			return true
		}
	}
	return false
}

// breaks reports whether blk contains a break belonging to the enclosing
// loop.  Nested loops and declarations are not searched.
func breaks(blk *tree.Block) bool {
	found := false
	astutil.Inspect(blk, func(n tree.Node) bool {
		switch n.(type) {
		case *tree.Break:
			found = true
		case *tree.WhileStmt, *tree.ForStmt, tree.Decl:
			return false
		}
		return !found
	})
	return found
}
