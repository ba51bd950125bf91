// Copyright © 2024 The ELPS authors

package rdparser

import (
	"github.com/emmanuelbernard/ceylon-spec/parser/token"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// Binary operator precedence, loosest first.  Assignment and the default
// operator are handled separately.
var binaryLevels = [][]token.Type{
	{token.OR},
	{token.AND},
	{token.EQUAL, token.NOT_EQUAL, token.IDENTICAL},
	{token.SMALLER, token.LARGER, token.SMALL_AS, token.LARGE_AS, token.COMPARE, token.IN, token.IS},
	{token.ENTRY, token.RANGE},
	{token.UNION, token.XOR, token.COMPLEMENT},
	{token.INTERSECT},
	{token.PLUS, token.MINUS},
	{token.TIMES, token.DIVIDE, token.REMAINDER},
}

// levelAboveRange is the first level binding tighter than .. and ->.
const levelAboveRange = 5

func (p *Parser) parseExpr() tree.Expr {
	x := p.parseDefault()
	if tree.IsAssignment(p.peekType()) {
		op := p.next()
		bin := &tree.BinaryExpr{Op: op.Type, X: x}
		bin.Loc = x.Pos()
		bin.Y = p.parseExpr()
		return bin
	}
	return x
}

func (p *Parser) parseDefault() tree.Expr {
	x := p.parseBinary(0)
	for p.peekType() == token.DEFAULT {
		p.next()
		bin := &tree.BinaryExpr{Op: token.DEFAULT, X: x}
		bin.Loc = x.Pos()
		bin.Y = p.parseBinary(0)
		x = bin
	}
	return x
}

func (p *Parser) parseBinary(level int) tree.Expr {
	if level >= len(binaryLevels) {
		return p.parsePower()
	}
	x := p.parseBinary(level + 1)
	for {
		op := p.peekType()
		if !hasType(binaryLevels[level], op) {
			return x
		}
		p.next()
		if op == token.IS {
			is := &tree.IsExpr{X: x}
			is.Loc = x.Pos()
			is.Type = p.parseType()
			x = is
			continue
		}
		bin := &tree.BinaryExpr{Op: op, X: x}
		bin.Loc = x.Pos()
		bin.Y = p.parseBinary(level + 1)
		x = bin
	}
}

func hasType(types []token.Type, typ token.Type) bool {
	for _, t := range types {
		if t == typ {
			return true
		}
	}
	return false
}

// parsePower handles the right-associative ** operator.
func (p *Parser) parsePower() tree.Expr {
	x := p.parsePrefix()
	if p.peekType() == token.POWER {
		p.next()
		bin := &tree.BinaryExpr{Op: token.POWER, X: x}
		bin.Loc = x.Pos()
		bin.Y = p.parsePower()
		return bin
	}
	return x
}

func (p *Parser) parsePrefix() tree.Expr {
	switch p.peekType() {
	case token.MINUS, token.NOT, token.COMPLEMENT, token.FORMAT, token.INCREMENT, token.DECREMENT:
		op := p.next()
		x := &tree.PrefixExpr{Op: op.Type}
		x.Loc = op.Source
		x.X = p.parsePrefix()
		return x
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() tree.Expr {
	x := p.parsePrimary()
	for {
		switch p.peekType() {
		case token.INCREMENT, token.DECREMENT:
			op := p.next()
			post := &tree.PostfixExpr{Op: op.Type, X: x}
			post.Loc = x.Pos()
			x = post
		case token.EXISTS:
			p.next()
			e := &tree.ExistsExpr{X: x}
			e.Loc = x.Pos()
			x = e
		case token.NONEMPTY:
			p.next()
			e := &tree.NonemptyExpr{X: x}
			e.Loc = x.Pos()
			x = e
		default:
			return x
		}
	}
}

func (p *Parser) parsePrimary() tree.Expr {
	x := p.parseAtom()
	for {
		switch p.peekType() {
		case token.MEMBER, token.SAFE_MEMBER, token.SPREAD:
			x = p.parseQualified(x)
		case token.BRACKET_L, token.SAFE_INDEX:
			x = p.parseIndex(x)
		case token.PAREN_L:
			inv := &tree.InvocationExpr{Primary: x}
			inv.Loc = x.Pos()
			inv.Positional = p.parsePositionalArgs()
			x = inv
		case token.BRACE_L:
			if !isReference(x) {
				return x
			}
			inv := &tree.InvocationExpr{Primary: x}
			inv.Loc = x.Pos()
			inv.Named = p.parseNamedArgs()
			x = inv
		default:
			return x
		}
	}
}

func isReference(x tree.Expr) bool {
	switch x.(type) {
	case *tree.BaseMemberExpr, *tree.BaseTypeExpr, *tree.QualifiedMemberExpr, *tree.QualifiedTypeExpr:
		return true
	}
	return false
}

func (p *Parser) parseQualified(primary tree.Expr) tree.Expr {
	var op tree.MemberOp
	switch p.next().Type {
	case token.SAFE_MEMBER:
		op = tree.MemberOpSafe
	case token.SPREAD:
		op = tree.MemberOpSpread
	default:
		op = tree.MemberOpPlain
	}
	if p.peekType() == token.UIDENT {
		q := &tree.QualifiedTypeExpr{Primary: primary, Op: op}
		q.Loc = primary.Pos()
		q.Name = p.parseUIdent()
		q.TypeArgs = p.parseTypeArgsIfInvocation()
		return q
	}
	q := &tree.QualifiedMemberExpr{Primary: primary, Op: op}
	q.Loc = primary.Pos()
	q.Name = p.parseLIdent()
	q.TypeArgs = p.parseTypeArgsIfInvocation()
	return q
}

func (p *Parser) parseIndex(primary tree.Expr) tree.Expr {
	ix := &tree.IndexExpr{Primary: primary}
	ix.Loc = primary.Pos()
	ix.Safe = p.next().Type == token.SAFE_INDEX
	ix.Index = p.parseBinary(levelAboveRange)
	switch {
	case p.src.AcceptType(token.RANGE):
		ix.Range = true
		ix.Upper = p.parseBinary(levelAboveRange)
	case p.src.AcceptType(token.ELLIPSIS):
		ix.Range = true
	}
	p.expect(token.BRACKET_R)
	return ix
}

func (p *Parser) parseAtom() tree.Expr {
	tok := p.peek()
	switch tok.Type {
	case token.LIDENT:
		x := &tree.BaseMemberExpr{}
		x.Loc = tok.Source
		x.Name = p.parseLIdent()
		x.TypeArgs = p.parseTypeArgsIfInvocation()
		return x
	case token.UIDENT:
		x := &tree.BaseTypeExpr{}
		x.Loc = tok.Source
		x.Name = p.parseUIdent()
		x.TypeArgs = p.parseTypeArgsIfInvocation()
		return x
	case token.STRING:
		p.next()
		x := &tree.StringLit{Text: unquote(tok.Text)}
		x.Loc = tok.Source
		return x
	case token.NATURAL:
		p.next()
		x := &tree.NaturalLit{Text: tok.Text}
		x.Loc = tok.Source
		return x
	case token.FLOAT:
		p.next()
		x := &tree.FloatLit{Text: tok.Text}
		x.Loc = tok.Source
		return x
	case token.CHAR:
		p.next()
		x := &tree.CharLit{Text: unquote(tok.Text)}
		x.Loc = tok.Source
		return x
	case token.QUOTED:
		p.next()
		x := &tree.QuotedLit{Text: unquote(tok.Text)}
		x.Loc = tok.Source
		return x
	case token.THIS:
		p.next()
		x := &tree.ThisExpr{}
		x.Loc = tok.Source
		return x
	case token.OUTER:
		p.next()
		x := &tree.OuterExpr{}
		x.Loc = tok.Source
		return x
	case token.SUPER:
		p.next()
		x := &tree.SuperExpr{}
		x.Loc = tok.Source
		return x
	case token.PAREN_L:
		p.next()
		x := &tree.ParenExpr{}
		x.Loc = tok.Source
		x.X = p.parseExpr()
		p.expect(token.PAREN_R)
		return x
	case token.BRACE_L:
		p.next()
		x := &tree.SequenceExpr{}
		x.Loc = tok.Source
		for p.peekType() != token.BRACE_R {
			x.Elems = append(x.Elems, p.parseExpr())
			if !p.src.AcceptType(token.COMMA) {
				break
			}
		}
		p.expect(token.BRACE_R)
		return x
	}
	p.errorf("unexpected %v", tok)
	return nil
}

// unquote strips the delimiters of a literal and resolves backslash escapes.
func unquote(text string) string {
	rs := []rune(text)
	if len(rs) < 2 {
		return ""
	}
	rs = rs[1 : len(rs)-1]
	out := make([]rune, 0, len(rs))
	for i := 0; i < len(rs); i++ {
		if rs[i] != '\\' || i+1 == len(rs) {
			out = append(out, rs[i])
			continue
		}
		i++
		switch rs[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		default:
			out = append(out, rs[i])
		}
	}
	return string(out)
}

func (p *Parser) parsePositionalArgs() *tree.PositionalArgs {
	args := &tree.PositionalArgs{}
	args.Loc = p.expect(token.PAREN_L).Source
	for p.peekType() != token.PAREN_R {
		args.Args = append(args.Args, p.parseExpr())
		if !p.src.AcceptType(token.COMMA) {
			break
		}
	}
	p.expect(token.PAREN_R)
	return args
}

// parseNamedArgs parses { p = a; q = b; rest, ... }.
func (p *Parser) parseNamedArgs() *tree.NamedArgs {
	args := &tree.NamedArgs{}
	args.Loc = p.expect(token.BRACE_L).Source
	for p.peekType() == token.LIDENT && p.peekTypeAt(1) == token.SPECIFY {
		arg := &tree.NamedArg{}
		arg.Loc = p.peek().Source
		arg.Name = p.parseLIdent()
		p.expect(token.SPECIFY)
		arg.X = p.parseExpr()
		p.expect(token.SEMICOLON)
		args.Args = append(args.Args, arg)
	}
	if p.peekType() != token.BRACE_R {
		seq := &tree.SequencedArg{}
		seq.Loc = p.peek().Source
		for {
			seq.Exprs = append(seq.Exprs, p.parseExpr())
			if !p.src.AcceptType(token.COMMA) {
				break
			}
		}
		args.Sequenced = seq
	}
	p.expect(token.BRACE_R)
	return args
}

// parseTypeArgsIfInvocation parses explicit type arguments following a
// member name when they are unambiguously followed by an argument list or a
// member selector.
func (p *Parser) parseTypeArgsIfInvocation() []tree.Type {
	if p.peekType() != token.SMALLER {
		return nil
	}
	end, ok := p.skipTypeArgs(0)
	if !ok {
		return nil
	}
	switch p.peekTypeAt(end) {
	case token.PAREN_L, token.BRACE_L, token.MEMBER:
	default:
		return nil
	}
	return p.parseTypeArgs()
}

func (p *Parser) parseTypeArgs() []tree.Type {
	p.expect(token.SMALLER)
	args := []tree.Type{p.parseType()}
	for p.src.AcceptType(token.COMMA) {
		args = append(args, p.parseType())
	}
	p.expect(token.LARGER)
	return args
}

// parseType parses a union of primary types.
func (p *Parser) parseType() tree.Type {
	first := p.parsePrimaryType()
	if p.peekType() != token.UNION {
		return first
	}
	u := &tree.UnionType{Cases: []tree.Type{first}}
	u.Loc = first.Pos()
	for p.src.AcceptType(token.UNION) {
		u.Cases = append(u.Cases, p.parsePrimaryType())
	}
	return u
}

func (p *Parser) parsePrimaryType() tree.Type {
	var t tree.Type = p.parseBaseType()
	for p.peekType() == token.QUESTION {
		p.next()
		opt := &tree.OptionalType{Inner: t}
		opt.Loc = t.Pos()
		t = opt
	}
	return t
}

func (p *Parser) parseBaseType() *tree.BaseType {
	bt := &tree.BaseType{}
	bt.Loc = p.peek().Source
	bt.Name = p.parseUIdent()
	if p.peekType() == token.SMALLER {
		bt.Args = p.parseTypeArgs()
	}
	return bt
}

// skipType reports whether a type begins n tokens ahead and returns the
// offset of the token following it.
func (p *Parser) skipType(n int) (int, bool) {
	n, ok := p.skipPrimaryType(n)
	for ok && p.peekTypeAt(n) == token.UNION {
		n, ok = p.skipPrimaryType(n + 1)
	}
	return n, ok
}

func (p *Parser) skipPrimaryType(n int) (int, bool) {
	if p.peekTypeAt(n) != token.UIDENT {
		return n, false
	}
	n++
	if p.peekTypeAt(n) == token.SMALLER {
		var ok bool
		if n, ok = p.skipTypeArgs(n); !ok {
			return n, false
		}
	}
	for p.peekTypeAt(n) == token.QUESTION {
		n++
	}
	return n, true
}

func (p *Parser) skipTypeArgs(n int) (int, bool) {
	if p.peekTypeAt(n) != token.SMALLER {
		return n, false
	}
	n++
	for {
		var ok bool
		if n, ok = p.skipType(n); !ok {
			return n, false
		}
		switch p.peekTypeAt(n) {
		case token.COMMA:
			n++
		case token.LARGER:
			return n + 1, true
		default:
			return n, false
		}
	}
}
