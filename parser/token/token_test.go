// Copyright © 2018 The ELPS authors

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	used := make(map[string]bool)
	for tok := Type(0); tok < numTokenTypes; tok++ {
		str := tok.String()
		if str == "" {
			t.Errorf("token type %x has empty string value", tok)
			continue
		}
		if used[str] {
			t.Errorf("token type string used twice: %v", tok)
		}
		used[str] = true
	}
}

func TestKeyword(t *testing.T) {
	typ, ok := Keyword("satisfies")
	assert.True(t, ok)
	assert.Equal(t, SATISFIES, typ)
	assert.True(t, typ.IsKeyword())

	_, ok = Keyword("shared")
	assert.False(t, ok, "annotations are ordinary identifiers")
	assert.False(t, PLUS.IsKeyword())
}
