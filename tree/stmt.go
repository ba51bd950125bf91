// Copyright © 2024 The ELPS authors

package tree

// Block is a brace-delimited statement sequence.
type Block struct {
	node
	Stmts []Stmt
	End   *Ident // closing brace position, Name is empty
}

// ExprStmt evaluates an expression for effect.
type ExprStmt struct {
	node
	X Expr
}

// Return is a return statement; X is nil for a bare return.
type Return struct {
	node
	X Expr
}

type Break struct {
	node
}

type Continue struct {
	node
}

// IfStmt is an if statement with an optional else clause.
type IfStmt struct {
	node
	If   *IfClause
	Else *ElseClause
}

// IfClause is the guarded branch of an if statement.
type IfClause struct {
	node
	Cond Condition
	Body *Block
}

// ElseClause holds either a block or a chained if statement.
type ElseClause struct {
	node
	Body *Block
	If   *IfStmt
}

// WhileStmt is a while loop.
type WhileStmt struct {
	node
	Clause *WhileClause
}

type WhileClause struct {
	node
	Cond Condition
	Body *Block
}

// ForStmt is a for loop with an optional fail clause.
type ForStmt struct {
	node
	Clause *ForClause
	Fail   *FailClause
}

type ForClause struct {
	node
	Iter Iterator
	Body *Block
}

type FailClause struct {
	node
	Body *Block
}

func (*ClassDecl) aStmt()     {}
func (*InterfaceDecl) aStmt() {}
func (*MethodDecl) aStmt()    {}
func (*AttributeDecl) aStmt() {}
func (*GetterDecl) aStmt()    {}
func (*SetterDecl) aStmt()    {}
func (*ExprStmt) aStmt()      {}
func (*Return) aStmt()        {}
func (*Break) aStmt()         {}
func (*Continue) aStmt()      {}
func (*IfStmt) aStmt()        {}
func (*WhileStmt) aStmt()     {}
func (*ForStmt) aStmt()       {}

// BooleanCondition tests a Boolean expression.
type BooleanCondition struct {
	node
	X Expr
}

// ExistsCondition tests that an optional value is not null.  Exactly one of
// Var and X is set.
type ExistsCondition struct {
	node
	Var *Variable
	X   Expr
}

// NonemptyCondition tests that a sequence has elements.
type NonemptyCondition struct {
	node
	Var *Variable
	X   Expr
}

// IsCondition narrows a value to Type.
type IsCondition struct {
	node
	Type Type
	Var  *Variable
	X    Expr
}

func (*BooleanCondition) aCondition()  {}
func (*ExistsCondition) aCondition()   {}
func (*NonemptyCondition) aCondition() {}
func (*IsCondition) aCondition()       {}

// ValueIterator is "for (T x in source)".
type ValueIterator struct {
	node
	Var    *Variable
	Source Expr
}

// KeyValueIterator is "for (K k -> V v in source)".
type KeyValueIterator struct {
	node
	Key    *Variable
	Value  *Variable
	Source Expr
}

func (*ValueIterator) aIterator()    {}
func (*KeyValueIterator) aIterator() {}
