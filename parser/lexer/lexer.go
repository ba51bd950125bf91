// Copyright © 2018 The ELPS authors

package lexer

import (
	"fmt"
	"unicode"

	"github.com/emmanuelbernard/ceylon-spec/parser/token"
)

type LexFn func(*Lexer) *token.Token

// operators lists punctuation longest first so that the first prefix match
// wins.
var operators = []struct {
	text string
	typ  token.Type
}{
	{"===", token.IDENTICAL},
	{"<=>", token.COMPARE},
	{"&&=", token.AND_ASSIGN},
	{"||=", token.OR_ASSIGN},
	{"...", token.ELLIPSIS},
	{"=>", token.COMPUTE},
	{"==", token.EQUAL},
	{"!=", token.NOT_EQUAL},
	{"<=", token.SMALL_AS},
	{">=", token.LARGE_AS},
	{"&&", token.AND},
	{"||", token.OR},
	{":=", token.ASSIGN},
	{"+=", token.ADD_ASSIGN},
	{"-=", token.SUBTRACT_ASSIGN},
	{"*=", token.MULTIPLY_ASSIGN},
	{"/=", token.DIVIDE_ASSIGN},
	{"%=", token.REMAINDER_ASSIGN},
	{"&=", token.INTERSECT_ASSIGN},
	{"|=", token.UNION_ASSIGN},
	{"^=", token.XOR_ASSIGN},
	{"~=", token.COMPLEMENT_ASSIGN},
	{"++", token.INCREMENT},
	{"--", token.DECREMENT},
	{"**", token.POWER},
	{"->", token.ENTRY},
	{"..", token.RANGE},
	{"?.", token.SAFE_MEMBER},
	{"?[", token.SAFE_INDEX},
	{"?:", token.DEFAULT},
	{"*.", token.SPREAD},
	{"(", token.PAREN_L},
	{")", token.PAREN_R},
	{"{", token.BRACE_L},
	{"}", token.BRACE_R},
	{"[", token.BRACKET_L},
	{"]", token.BRACKET_R},
	{",", token.COMMA},
	{";", token.SEMICOLON},
	{"=", token.SPECIFY},
	{".", token.MEMBER},
	{"?", token.QUESTION},
	{"+", token.PLUS},
	{"-", token.MINUS},
	{"*", token.TIMES},
	{"/", token.DIVIDE},
	{"%", token.REMAINDER},
	{"!", token.NOT},
	{"&", token.INTERSECT},
	{"|", token.UNION},
	{"^", token.XOR},
	{"~", token.COMPLEMENT},
	{"$", token.FORMAT},
	{"<", token.SMALLER},
	{">", token.LARGER},
}

type Lexer struct {
	scanner *token.Scanner
	lex     LexFn
}

func New(s *token.Scanner) *Lexer {
	lex := &Lexer{
		scanner: s,
		lex:     (*Lexer).readToken,
	}
	return lex
}

// ReadToken returns the next token in the stream.  After the input is
// exhausted ReadToken returns EOF tokens indefinitely.
func (lex *Lexer) ReadToken() *token.Token {
	return lex.lex(lex)
}

func (lex *Lexer) readToken() *token.Token {
	lex.scanner.AcceptSeqSpace()
	lex.scanner.Ignore()
	if lex.scanner.EOF() {
		if err := lex.scanner.Err(); err != nil {
			return lex.errorf("read failure: %v", err)
		}
		return lex.emit(token.EOF, "")
	}
	c, ok := lex.scanner.Peek()
	if !ok {
		_ = lex.scanner.ScanRune()
		return lex.errorf("invalid utf-8 sequence")
	}
	switch {
	case c == '/' && lex.peekIs(1, '/'):
		lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
		return lex.emitText(token.COMMENT)
	case c == '/' && lex.peekIs(1, '*'):
		return lex.readBlockComment()
	case c == '"':
		return lex.readDelimited('"', token.STRING, "string literal")
	case c == '`':
		return lex.readDelimited('`', token.CHAR, "character literal")
	case c == '\'':
		return lex.readDelimited('\'', token.QUOTED, "quoted literal")
	case isDigit(c):
		return lex.readNumber()
	case isWordStart(c):
		return lex.readWord()
	}
	for _, op := range operators {
		if lex.scanner.AcceptString(op.text) {
			return lex.emitText(op.typ)
		}
	}
	_ = lex.scanner.ScanRune()
	return lex.errorf("unexpected text starting with %q", c)
}

func (lex *Lexer) readBlockComment() *token.Token {
	lex.scanner.AcceptString("/*")
	for !lex.scanner.AcceptString("*/") {
		if lex.scanner.ScanRune() != nil {
			return lex.errorf("unterminated comment")
		}
	}
	return lex.emitText(token.COMMENT)
}

func (lex *Lexer) readDelimited(delim rune, typ token.Type, what string) *token.Token {
	_ = lex.scanner.ScanRune()
	for {
		if lex.scanner.AcceptRune(delim) {
			return lex.emitText(typ)
		}
		if lex.scanner.AcceptRune('\\') {
			// escapes are validated by the parser
			if lex.scanner.ScanRune() != nil {
				return lex.errorf("unterminated %s", what)
			}
			continue
		}
		if lex.scanner.ScanRune() != nil {
			return lex.errorf("unterminated %s", what)
		}
	}
}

func (lex *Lexer) readNumber() *token.Token {
	lex.scanner.AcceptSeqDigit()
	typ := token.NATURAL
	// A '.' only continues the literal when a digit follows; "1..2" is a range.
	if lex.peekIs(0, '.') && lex.peekDigit(1) {
		_ = lex.scanner.ScanRune()
		lex.scanner.AcceptSeqDigit()
		typ = token.FLOAT
	}
	if lex.peekIs(0, 'e') || lex.peekIs(0, 'E') {
		_ = lex.scanner.ScanRune()
		lex.scanner.AcceptAny("+-")
		if lex.scanner.AcceptSeqDigit() == 0 {
			return lex.errorf("malformed exponent in numeric literal")
		}
		typ = token.FLOAT
	}
	if c, ok := lex.scanner.Peek(); ok && isWordRune(c) {
		_ = lex.scanner.ScanRune()
		return lex.errorf("unexpected %q following numeric literal", c)
	}
	return lex.emitText(typ)
}

func (lex *Lexer) readWord() *token.Token {
	lex.scanner.AcceptSeq(isWordRune)
	text := lex.scanner.Text()
	if typ, ok := token.Keyword(text); ok {
		return lex.emitText(typ)
	}
	first := []rune(text)[0]
	if unicode.IsUpper(first) {
		return lex.emitText(token.UIDENT)
	}
	return lex.emitText(token.LIDENT)
}

func (lex *Lexer) peekIs(n int, c rune) bool {
	r, ok := lex.scanner.PeekN(n)
	return ok && r == c
}

func (lex *Lexer) peekDigit(n int) bool {
	r, ok := lex.scanner.PeekN(n)
	return ok && isDigit(r)
}

func (lex *Lexer) emit(typ token.Type, text string) *token.Token {
	tok := &token.Token{
		Type:   typ,
		Text:   text,
		Source: lex.scanner.LocStart(),
	}
	lex.scanner.Ignore()
	return tok
}

func (lex *Lexer) emitText(typ token.Type) *token.Token {
	return lex.scanner.EmitToken(typ)
}

func (lex *Lexer) errorf(format string, v ...interface{}) *token.Token {
	return lex.emit(token.ERROR, fmt.Sprintf(format, v...))
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isWordStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isWordRune(c rune) bool {
	return isWordStart(c) || unicode.IsDigit(c)
}
