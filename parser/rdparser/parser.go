// Copyright © 2018 The ELPS authors

// Package rdparser implements a recursive-descent parser producing a
// tree.CompilationUnit.
package rdparser

import (
	"errors"
	"fmt"
	"io"

	"github.com/emmanuelbernard/ceylon-spec/parser/token"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// Parse reads a complete compilation unit from r.
func Parse(name string, r io.Reader) (*tree.CompilationUnit, error) {
	s := token.NewScanner(name, r)
	return New(s).ParseCompilationUnit()
}

// ParseLocation is like Parse but records loc as the physical path of the
// source.
func ParseLocation(name string, loc string, r io.Reader) (*tree.CompilationUnit, error) {
	s := token.NewScanner(name, r)
	s.SetPath(loc)
	return New(s).ParseCompilationUnit()
}

// Parser is a recursive-descent parser.  A Parser stops at the first syntax
// error.
type Parser struct {
	src *TokenSource
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(src *TokenSource) *Parser {
	return &Parser{
		src: src,
	}
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(scanner *token.Scanner) *Parser {
	return NewFromSource(NewTokenSource(scanner))
}

// bailout carries a syntax error up to the entry point.
type bailout struct {
	err *token.LocationError
}

func (p *Parser) recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	b, ok := r.(bailout)
	if !ok {
		panic(r)
	}
	*err = b.err
}

// ParseCompilationUnit parses an ordinary unit or a module descriptor.
func (p *Parser) ParseCompilationUnit() (cu *tree.CompilationUnit, err error) {
	defer p.recover(&err)
	cu = &tree.CompilationUnit{}
	cu.Loc = p.peek().Source
	if cu.Loc != nil {
		cu.Filename = cu.Loc.File
	}
	if p.peekType() == token.MODULE {
		cu.Module = p.parseModuleDescriptor()
	}
	for p.peekType() == token.IMPORT {
		cu.Imports = append(cu.Imports, p.parseImport())
	}
	for !p.src.IsEOF() {
		cu.Body = append(cu.Body, p.parseStatement())
	}
	cu.Comments = p.src.Comments()
	return cu, nil
}

// ParseExpression parses a single expression followed by EOF.
func (p *Parser) ParseExpression() (x tree.Expr, err error) {
	defer p.recover(&err)
	x = p.parseExpr()
	p.src.AcceptType(token.SEMICOLON)
	if !p.src.IsEOF() {
		p.errorf("unexpected %v after expression", p.peek())
	}
	return x, nil
}

func (p *Parser) parseModuleDescriptor() *tree.ModuleDescriptor {
	md := &tree.ModuleDescriptor{}
	md.Loc = p.expect(token.MODULE).Source
	md.Path = p.parsePath()
	p.expect(token.BRACE_L)
	for p.peekType() == token.IMPORT {
		mi := &tree.ModuleImport{}
		mi.Loc = p.expect(token.IMPORT).Source
		mi.Path = p.parsePath()
		p.expect(token.SEMICOLON)
		md.Imports = append(md.Imports, mi)
	}
	p.expect(token.BRACE_R)
	return md
}

func (p *Parser) parseImport() *tree.Import {
	imp := &tree.Import{}
	imp.Loc = p.expect(token.IMPORT).Source
	imp.Path = p.parsePath()
	p.expect(token.BRACE_L)
	for p.peekType() != token.BRACE_R {
		el := &tree.ImportElement{}
		first := p.parseName()
		el.Loc = first.Loc
		if p.src.AcceptType(token.SPECIFY) {
			el.Alias = first
			el.Name = p.parseName()
		} else {
			el.Name = first
		}
		imp.Elements = append(imp.Elements, el)
		if !p.src.AcceptType(token.COMMA) {
			break
		}
	}
	p.expect(token.BRACE_R)
	return imp
}

func (p *Parser) parsePath() *tree.Path {
	path := &tree.Path{}
	id := p.parseLIdent()
	path.Loc = id.Loc
	path.Segments = append(path.Segments, id)
	for p.src.AcceptType(token.MEMBER) {
		path.Segments = append(path.Segments, p.parseLIdent())
	}
	return path
}

func (p *Parser) parseBlock() *tree.Block {
	b := &tree.Block{}
	b.Loc = p.expect(token.BRACE_L).Source
	for p.peekType() != token.BRACE_R {
		if p.src.IsEOF() {
			p.errorf("unmatched {")
		}
		b.Stmts = append(b.Stmts, p.parseStatement())
	}
	end := p.expect(token.BRACE_R)
	b.End = &tree.Ident{}
	b.End.Loc = end.Source
	return b
}

func (p *Parser) parseStatement() tree.Stmt {
	switch p.peekType() {
	case token.RETURN:
		ret := &tree.Return{}
		ret.Loc = p.next().Source
		if p.peekType() != token.SEMICOLON {
			ret.X = p.parseExpr()
		}
		p.expect(token.SEMICOLON)
		return ret
	case token.BREAK:
		br := &tree.Break{}
		br.Loc = p.next().Source
		p.expect(token.SEMICOLON)
		return br
	case token.CONTINUE:
		c := &tree.Continue{}
		c.Loc = p.next().Source
		p.expect(token.SEMICOLON)
		return c
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		w := &tree.WhileStmt{}
		w.Loc = p.peek().Source
		w.Clause = &tree.WhileClause{}
		w.Clause.Loc = p.next().Source
		p.expect(token.PAREN_L)
		w.Clause.Cond = p.parseCondition()
		p.expect(token.PAREN_R)
		w.Clause.Body = p.parseBlock()
		return w
	case token.FOR:
		return p.parseFor()
	}
	if d := p.parseDeclaration(); d != nil {
		return d
	}
	es := &tree.ExprStmt{}
	es.Loc = p.peek().Source
	es.X = p.parseExpr()
	p.expect(token.SEMICOLON)
	return es
}

func (p *Parser) parseIf() *tree.IfStmt {
	s := &tree.IfStmt{}
	s.Loc = p.peek().Source
	s.If = &tree.IfClause{}
	s.If.Loc = p.expect(token.IF).Source
	p.expect(token.PAREN_L)
	s.If.Cond = p.parseCondition()
	p.expect(token.PAREN_R)
	s.If.Body = p.parseBlock()
	if p.peekType() == token.ELSE {
		s.Else = &tree.ElseClause{}
		s.Else.Loc = p.next().Source
		if p.peekType() == token.IF {
			s.Else.If = p.parseIf()
		} else {
			s.Else.Body = p.parseBlock()
		}
	}
	return s
}

func (p *Parser) parseFor() *tree.ForStmt {
	s := &tree.ForStmt{}
	s.Loc = p.peek().Source
	s.Clause = &tree.ForClause{}
	s.Clause.Loc = p.expect(token.FOR).Source
	p.expect(token.PAREN_L)
	s.Clause.Iter = p.parseIterator()
	p.expect(token.PAREN_R)
	s.Clause.Body = p.parseBlock()
	if p.peekType() == token.FAIL {
		s.Fail = &tree.FailClause{}
		s.Fail.Loc = p.next().Source
		s.Fail.Body = p.parseBlock()
	}
	return s
}

func (p *Parser) parseIterator() tree.Iterator {
	loc := p.peek().Source
	first := p.parseVariableHead()
	if p.src.AcceptType(token.ENTRY) {
		it := &tree.KeyValueIterator{Key: first}
		it.Loc = loc
		it.Value = p.parseVariableHead()
		p.expect(token.IN)
		it.Source = p.parseExpr()
		return it
	}
	it := &tree.ValueIterator{Var: first}
	it.Loc = loc
	p.expect(token.IN)
	it.Source = p.parseExpr()
	return it
}

// parseVariableHead parses "Type name" or "value name".
func (p *Parser) parseVariableHead() *tree.Variable {
	v := &tree.Variable{}
	v.Loc = p.peek().Source
	v.Type = p.parseValueType()
	v.Name = p.parseLIdent()
	return v
}

func (p *Parser) parseCondition() tree.Condition {
	loc := p.peek().Source
	switch p.peekType() {
	case token.EXISTS:
		p.next()
		c := &tree.ExistsCondition{}
		c.Loc = loc
		c.Var, c.X = p.parseConditionOperand()
		return c
	case token.NONEMPTY:
		p.next()
		c := &tree.NonemptyCondition{}
		c.Loc = loc
		c.Var, c.X = p.parseConditionOperand()
		return c
	case token.IS:
		p.next()
		c := &tree.IsCondition{}
		c.Loc = loc
		c.Type = p.parseType()
		if p.peekType() == token.LIDENT && p.peekTypeAt(1) == token.SPECIFY {
			v := &tree.Variable{}
			v.Loc = p.peek().Source
			it := &tree.InferType{}
			it.Loc = v.Loc
			v.Type = it
			v.Name = p.parseLIdent()
			p.expect(token.SPECIFY)
			v.Specifier = p.parseExpr()
			c.Var = v
		} else {
			c.X = p.parseExpr()
		}
		return c
	}
	c := &tree.BooleanCondition{}
	c.Loc = loc
	c.X = p.parseExpr()
	return c
}

// parseConditionOperand parses either a variable "[Type|value] x = e" or a
// bare expression.
func (p *Parser) parseConditionOperand() (*tree.Variable, tree.Expr) {
	var isVar bool
	switch p.peekType() {
	case token.VALUE:
		isVar = true
	case token.LIDENT:
		isVar = p.peekTypeAt(1) == token.SPECIFY
	case token.UIDENT:
		n, ok := p.skipType(0)
		isVar = ok && p.peekTypeAt(n) == token.LIDENT && p.peekTypeAt(n+1) == token.SPECIFY
	}
	if !isVar {
		return nil, p.parseExpr()
	}
	v := &tree.Variable{}
	v.Loc = p.peek().Source
	if p.peekType() == token.LIDENT {
		it := &tree.InferType{}
		it.Loc = v.Loc
		v.Type = it
	} else {
		v.Type = p.parseValueType()
	}
	v.Name = p.parseLIdent()
	p.expect(token.SPECIFY)
	v.Specifier = p.parseExpr()
	return v, nil
}

var annotationNames = map[string]func(*tree.Annotations){
	"shared":   func(a *tree.Annotations) { a.Shared = true },
	"variable": func(a *tree.Annotations) { a.Variable = true },
	"formal":   func(a *tree.Annotations) { a.Formal = true },
	"default":  func(a *tree.Annotations) { a.Default = true },
	"actual":   func(a *tree.Annotations) { a.Actual = true },
	"abstract": func(a *tree.Annotations) { a.Abstract = true },
}

// annotationCount returns the number of annotation words at the head of the
// stream.
func (p *Parser) annotationCount() int {
	n := 0
	for {
		tok := p.src.PeekAt(n)
		if tok.Type != token.LIDENT || annotationNames[tok.Text] == nil {
			return n
		}
		switch p.peekTypeAt(n + 1) {
		case token.LIDENT, token.UIDENT, token.CLASS, token.INTERFACE,
			token.VOID, token.VALUE, token.FUNCTION, token.ASSIGN_KW:
			n++
		default:
			return n
		}
	}
}

func (p *Parser) parseAnnotations(n int) tree.Annotations {
	var a tree.Annotations
	for i := 0; i < n; i++ {
		annotationNames[p.next().Text](&a)
	}
	return a
}

// parseDeclaration returns nil when the stream does not begin a declaration.
func (p *Parser) parseDeclaration() tree.Stmt {
	n := p.annotationCount()
	start := n
	switch p.peekTypeAt(n) {
	case token.CLASS, token.INTERFACE, token.VOID, token.VALUE, token.FUNCTION, token.ASSIGN_KW:
	case token.UIDENT:
		end, ok := p.skipType(n)
		if !ok || p.peekTypeAt(end) != token.LIDENT {
			return nil
		}
	default:
		if n == 0 {
			return nil
		}
		p.errorf("unexpected %v following annotations", p.src.PeekAt(n))
	}
	loc := p.src.PeekAt(0).Source
	ann := p.parseAnnotations(start)
	switch p.peekType() {
	case token.CLASS:
		return p.parseClass(loc, ann)
	case token.INTERFACE:
		return p.parseInterface(loc, ann)
	case token.ASSIGN_KW:
		s := &tree.SetterDecl{Annotations: ann}
		s.Loc = loc
		p.next()
		s.Name = p.parseLIdent()
		s.Body = p.parseBlock()
		return s
	case token.VOID, token.FUNCTION:
		return p.parseMethod(loc, ann, p.parseReturnType())
	}
	typ := p.parseValueType()
	switch p.src.PeekAt(1).Type {
	case token.PAREN_L, token.SMALLER:
		return p.parseMethod(loc, ann, typ)
	case token.BRACE_L:
		g := &tree.GetterDecl{Annotations: ann, Type: typ}
		g.Loc = loc
		g.Name = p.parseLIdent()
		g.Body = p.parseBlock()
		return g
	}
	a := &tree.AttributeDecl{Annotations: ann, Type: typ}
	a.Loc = loc
	a.Name = p.parseLIdent()
	switch {
	case p.src.AcceptType(token.SPECIFY):
		a.Specifier = p.parseExpr()
	case p.src.AcceptType(token.ASSIGN):
		a.Assign = true
		a.Specifier = p.parseExpr()
	}
	p.expect(token.SEMICOLON)
	return a
}

// parseReturnType parses void, function, or a type.
func (p *Parser) parseReturnType() tree.Type {
	switch p.peekType() {
	case token.VOID:
		v := &tree.VoidType{}
		v.Loc = p.next().Source
		return v
	case token.FUNCTION:
		it := &tree.InferType{Function: true}
		it.Loc = p.next().Source
		return it
	}
	return p.parseType()
}

// parseValueType parses value or a type.
func (p *Parser) parseValueType() tree.Type {
	if p.peekType() == token.VALUE {
		it := &tree.InferType{}
		it.Loc = p.next().Source
		return it
	}
	return p.parseType()
}

func (p *Parser) parseClass(loc *token.Location, ann tree.Annotations) *tree.ClassDecl {
	c := &tree.ClassDecl{Annotations: ann}
	c.Loc = loc
	p.expect(token.CLASS)
	c.Name = p.parseUIdent()
	c.TypeParams = p.parseTypeParams()
	c.Params = p.parseParams()
	if p.peekType() == token.EXTENDS {
		et := &tree.ExtendedType{}
		et.Loc = p.next().Source
		et.Type = p.parseBaseType()
		et.Args = p.parsePositionalArgs()
		c.Extends = et
	}
	c.Satisfies = p.parseSatisfies()
	c.Body = p.parseBlock()
	return c
}

func (p *Parser) parseInterface(loc *token.Location, ann tree.Annotations) *tree.InterfaceDecl {
	d := &tree.InterfaceDecl{Annotations: ann}
	d.Loc = loc
	p.expect(token.INTERFACE)
	d.Name = p.parseUIdent()
	d.TypeParams = p.parseTypeParams()
	d.Satisfies = p.parseSatisfies()
	d.Body = p.parseBlock()
	return d
}

func (p *Parser) parseSatisfies() []tree.Type {
	if !p.src.AcceptType(token.SATISFIES) {
		return nil
	}
	types := []tree.Type{p.parseType()}
	for p.src.AcceptType(token.COMMA) {
		types = append(types, p.parseType())
	}
	return types
}

func (p *Parser) parseMethod(loc *token.Location, ann tree.Annotations, typ tree.Type) *tree.MethodDecl {
	m := &tree.MethodDecl{Annotations: ann, Type: typ}
	m.Loc = loc
	m.Name = p.parseLIdent()
	m.TypeParams = p.parseTypeParams()
	m.Params = p.parseParams()
	switch p.peekType() {
	case token.BRACE_L:
		m.Body = p.parseBlock()
	case token.COMPUTE:
		p.next()
		m.Specifier = p.parseExpr()
		p.expect(token.SEMICOLON)
	default:
		p.expect(token.SEMICOLON)
	}
	return m
}

func (p *Parser) parseTypeParams() []*tree.TypeParameter {
	if !p.src.AcceptType(token.SMALLER) {
		return nil
	}
	var tps []*tree.TypeParameter
	for {
		tp := &tree.TypeParameter{}
		tp.Loc = p.peek().Source
		switch {
		case p.src.AcceptType(token.OUT):
			tp.Variance = tree.Covariant
		case p.src.AcceptType(token.IN):
			tp.Variance = tree.Contravariant
		}
		tp.Name = p.parseUIdent()
		tps = append(tps, tp)
		if !p.src.AcceptType(token.COMMA) {
			break
		}
	}
	p.expect(token.LARGER)
	return tps
}

func (p *Parser) parseParams() *tree.ParameterList {
	pl := &tree.ParameterList{}
	pl.Loc = p.expect(token.PAREN_L).Source
	for p.peekType() != token.PAREN_R {
		param := &tree.Parameter{}
		param.Loc = p.peek().Source
		param.Annotations = p.parseAnnotations(p.annotationCount())
		param.Type = p.parseType()
		param.Sequenced = p.src.AcceptType(token.ELLIPSIS)
		param.Name = p.parseLIdent()
		if p.src.AcceptType(token.SPECIFY) {
			param.Default = p.parseExpr()
		}
		pl.Params = append(pl.Params, param)
		if !p.src.AcceptType(token.COMMA) {
			break
		}
	}
	p.expect(token.PAREN_R)
	return pl
}

func (p *Parser) parseName() *tree.Ident {
	switch p.peekType() {
	case token.LIDENT, token.UIDENT:
		return p.ident(p.next())
	}
	p.errorf("expected identifier but found %v", p.peek())
	return nil
}

func (p *Parser) parseLIdent() *tree.Ident {
	return p.ident(p.expect(token.LIDENT))
}

func (p *Parser) parseUIdent() *tree.Ident {
	return p.ident(p.expect(token.UIDENT))
}

func (p *Parser) ident(tok *token.Token) *tree.Ident {
	id := &tree.Ident{Name: tok.Text}
	id.Loc = tok.Source
	return id
}

func (p *Parser) peek() *token.Token {
	tok := p.src.Peek()
	if tok.Type == token.ERROR {
		p.bail(tok.Source, errors.New(tok.Text))
	}
	return tok
}

func (p *Parser) peekType() token.Type {
	return p.peek().Type
}

func (p *Parser) peekTypeAt(n int) token.Type {
	return p.src.PeekAt(n).Type
}

func (p *Parser) next() *token.Token {
	p.peek()
	p.src.Scan()
	return p.src.Token
}

func (p *Parser) expect(typ token.Type) *token.Token {
	tok := p.peek()
	if tok.Type != typ {
		p.errorf("expected %v but found %v", typ, tok)
	}
	p.src.Scan()
	return tok
}

func (p *Parser) errorf(format string, v ...interface{}) {
	p.bail(p.src.Peek().Source, fmt.Errorf(format, v...))
}

func (p *Parser) bail(loc *token.Location, err error) {
	panic(bailout{&token.LocationError{Err: err, Source: loc}})
}
