// Copyright © 2018 The ELPS authors

package rdparser

import (
	"github.com/emmanuelbernard/ceylon-spec/parser/lexer"
	"github.com/emmanuelbernard/ceylon-spec/parser/token"
)

// TokenStream is an arbitrary sequence of tokens.  Typically, a TokenStream
// will be a *lexer.Lexer but other implementations may be desirable for
// testing or for a REPL.
type TokenStream interface {
	// ReadToken returns the next token from an input source.  When no more
	// tokens can be generated ReadToken returns a token with type token.EOF.
	// In the presence of io errors a TokenStream must return a token with
	// type token.ERROR.
	ReadToken() *token.Token
}

// TokenGenerator implements TokenStream.  The function will be called any time
// a TokenSource wants a token.
type TokenGenerator func() *token.Token

// ReadToken implements TokenStream.
func (fn TokenGenerator) ReadToken() *token.Token {
	return fn()
}

// TokenSource buffers a complete TokenStream so the parser can look ahead an
// arbitrary distance.  Comments are set aside as they are read.
type TokenSource struct {
	Token    *token.Token
	toks     []*token.Token
	pos      int
	comments []*token.Token
}

// NewTokenStreamSource reads stream until EOF or the first ERROR token.
func NewTokenStreamSource(stream TokenStream) *TokenSource {
	s := &TokenSource{}
	for {
		tok := stream.ReadToken()
		if tok.Type == token.COMMENT {
			s.comments = append(s.comments, tok)
			continue
		}
		s.toks = append(s.toks, tok)
		if tok.Type == token.EOF || tok.Type == token.ERROR {
			break
		}
	}
	return s
}

// NewTokenSource initializes and returns a new TokenSource that scans tokens
// from scanner.
func NewTokenSource(scanner *token.Scanner) *TokenSource {
	return NewTokenStreamSource(lexer.New(scanner))
}

// Comments returns the comment tokens encountered in the stream.
func (s *TokenSource) Comments() []*token.Token {
	return s.comments
}

// Peek returns the next unconsumed token.
func (s *TokenSource) Peek() *token.Token {
	return s.PeekAt(0)
}

// PeekAt returns the token n positions past the next unconsumed token.  The
// final EOF (or ERROR) token is returned for positions past the end.
func (s *TokenSource) PeekAt(n int) *token.Token {
	i := s.pos + n
	if i >= len(s.toks) {
		i = len(s.toks) - 1
	}
	return s.toks[i]
}

func (s *TokenSource) Accept(fn func(*token.Token) bool) bool {
	if fn(s.Peek()) {
		s.scan()
		return true
	}
	return false
}

func (s *TokenSource) AcceptType(typ ...token.Type) bool {
	for _, typ := range typ {
		if s.Peek().Type == typ {
			s.scan()
			return true
		}
	}
	return false
}

func (s *TokenSource) Scan() bool {
	if s.IsEOF() {
		s.Token = s.Peek()
		return false
	}
	s.scan()
	return true
}

func (s *TokenSource) IsEOF() bool {
	return s.Peek().Type == token.EOF
}

// Mark returns the current stream position for a later Reset.
func (s *TokenSource) Mark() int {
	return s.pos
}

// Reset rewinds the stream to a position returned by Mark.
func (s *TokenSource) Reset(mark int) {
	s.pos = mark
	if mark > 0 {
		s.Token = s.toks[mark-1]
	} else {
		s.Token = nil
	}
}

func (s *TokenSource) scan() {
	s.Token = s.Peek()
	if s.pos < len(s.toks)-1 {
		s.pos++
	}
}
