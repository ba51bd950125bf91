// Copyright © 2018 The ELPS authors

package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolCompleter(t *testing.T) {
	s := newSession(t)
	require.False(t, eval(t, s, "Integer counter = 1;").Failed())
	require.False(t, eval(t, s, "counter").Failed())

	c := &symbolCompleter{session: s}

	// "Int" should match Integer.
	candidates, offset := c.Do([]rune("print(Int"), 9)
	assert.Equal(t, 3, offset)
	assert.Contains(t, candidates, []rune("eger"))

	// Declarations entered at the prompt are candidates.
	candidates, offset = c.Do([]rune("cou"), 3)
	assert.Equal(t, 3, offset)
	assert.Equal(t, [][]rune{[]rune("nter")}, candidates)

	// The bound result value is not offered.
	candidates, _ = c.Do([]rune("_i"), 2)
	assert.Empty(t, candidates)

	// "zzzNonexistent" should have no completions.
	candidates, _ = c.Do([]rune("zzzNonexistent"), 14)
	assert.Empty(t, candidates)

	// An empty prefix completes nothing.
	candidates, offset = c.Do([]rune("f("), 2)
	assert.Empty(t, candidates)
	assert.Equal(t, 0, offset)
}
