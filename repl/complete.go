// Copyright © 2018 The ELPS authors

package repl

import (
	"sort"
	"strings"
	"unicode"
)

// symbolCompleter implements readline.AutoCompleter by enumerating the
// names visible to the session's inputs.
type symbolCompleter struct {
	session *Session
}

func (c *symbolCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Extract the identifier being typed, backwards from the cursor.
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch != '_' && !unicode.IsLetter(ch) && !unicode.IsDigit(ch) {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	candidates := c.collectSymbols(prefix)
	if len(candidates) == 0 {
		return nil, 0
	}

	// Build completions: each entry is the suffix to append.
	result := make([][]rune, 0, len(candidates))
	for _, sym := range candidates {
		suffix := sym[len(prefix):]
		result = append(result, []rune(suffix))
	}
	return result, len([]rune(prefix))
}

func (c *symbolCompleter) collectSymbols(prefix string) []string {
	var result []string
	for _, n := range c.session.Visible() {
		if n.Name == resultName {
			continue
		}
		if strings.HasPrefix(n.Name, prefix) {
			result = append(result, n.Name)
		}
	}
	sort.Strings(result)
	return result
}
