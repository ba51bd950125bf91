// Copyright © 2018 The ELPS authors

package token

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerEOF(t *testing.T) {
	s := NewScanner("test", strings.NewReader("xxxxxxxxxx"))
	for i := 0; i < 10; i++ {
		require.NoError(t, s.ScanRune())
	}
	tok := s.EmitToken(0)
	assert.Equal(t, "xxxxxxxxxx", tok.Text)
	for i := 0; i < 3; i++ {
		tok := s.EmitToken(0)
		assert.Equal(t, "", tok.Text)
		assert.Equal(t, io.EOF, s.ScanRune())
		assert.True(t, s.EOF())
	}
}

func TestScannerAcceptSeq(t *testing.T) {
	s := NewScanner("test", strings.NewReader("xxxx"))
	assert.Equal(t, 4, s.AcceptSeq(func(c rune) bool { return true }))
	s.Ignore()
	assert.False(t, s.Accept(func(c rune) bool { return true }))
	assert.True(t, s.EOF())
}

func TestScannerAcceptString(t *testing.T) {
	s := NewScanner("test", strings.NewReader("..x"))
	assert.False(t, s.AcceptString("..."))
	assert.Equal(t, "", s.Text(), "partial match consumes nothing")
	assert.True(t, s.AcceptString(".."))
	assert.Equal(t, "..", s.Text())
}

func TestScannerLocation(t *testing.T) {
	s := NewScanner("test.ceylon", strings.NewReader("ab\n  cd"))
	s.AcceptSeq(func(c rune) bool { return c != '\n' })
	first := s.EmitToken(LIDENT)
	s.AcceptSeqSpace()
	s.Ignore()
	s.AcceptSeq(func(c rune) bool { return true })
	second := s.EmitToken(LIDENT)

	assert.Equal(t, "ab", first.Text)
	assert.Equal(t, 1, first.Source.Line)
	assert.Equal(t, 1, first.Source.Col)
	assert.Equal(t, "cd", second.Text)
	assert.Equal(t, 2, second.Source.Line)
	assert.Equal(t, 3, second.Source.Col)
	assert.Equal(t, "test.ceylon:2:3", second.Source.String())
}

func TestScannerPeekN(t *testing.T) {
	s := NewScanner("test", strings.NewReader("a→c"))
	c, ok := s.PeekN(1)
	assert.True(t, ok)
	assert.Equal(t, '→', c)
	c, ok = s.PeekN(2)
	assert.True(t, ok)
	assert.Equal(t, 'c', c)
	_, ok = s.PeekN(3)
	assert.False(t, ok)
}

func TestScannerInvalidUTF8(t *testing.T) {
	s := NewScanner("test", strings.NewReader("\xff"))
	_, ok := s.Peek()
	assert.False(t, ok)
	assert.Error(t, s.ScanRune())
}
