// Copyright © 2024 The ELPS authors

package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const greeterSource = `shared class Greeter(String name) {
    shared String greet() {
        return name;
    }
    value shout = name;
}
`

func TestSymbolsCommand_Text(t *testing.T) {
	fs := memFs(t, map[string]string{"hello/greeter.ceylon": greeterSource})
	stdout, _, code := run(t, SymbolsCommand(WithFs(fs)), "/ws")
	assert.Equal(t, 0, code)
	assert.Equal(t, `hello/greeter.ceylon (package hello, module <default>)
  shared class Greeter(String name) extends IdentifiableObject
    shared String greet()
    String shout
`, stdout)
}

func TestSymbolsCommand_JSON(t *testing.T) {
	fs := memFs(t, map[string]string{"hello/greeter.ceylon": greeterSource})
	stdout, _, code := run(t, SymbolsCommand(WithFs(fs)), "--format", "json", "/ws")
	assert.Equal(t, 0, code)

	var units []unitSymbols
	require.NoError(t, json.Unmarshal([]byte(stdout), &units))
	require.Len(t, units, 1)
	assert.Equal(t, "hello", units[0].Package)
	require.Len(t, units[0].Symbols, 1)
	greeter := units[0].Symbols[0]
	assert.Equal(t, "class", greeter.Kind)
	assert.Equal(t, 1, greeter.Line)
	require.Len(t, greeter.Members, 2)
	assert.Equal(t, "method", greeter.Members[0].Kind)
	assert.Equal(t, "value", greeter.Members[1].Kind)
	assert.Equal(t, "String shout", greeter.Members[1].Signature, "inferred types are shown")
}

func TestSymbolsCommand_YAML(t *testing.T) {
	fs := memFs(t, map[string]string{
		"hello/greeter.ceylon": greeterSource,
		"hello/broken.ceylon":  "class Broken( {",
	})
	stdout, stderr, code := run(t, SymbolsCommand(WithFs(fs)), "-f", "yaml", "/ws")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "Skipping unit with errors")

	var units []unitSymbols
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &units))
	require.Len(t, units, 1)
	assert.Equal(t, "hello/greeter.ceylon", units[0].File)
	assert.Equal(t, "greet", units[0].Symbols[0].Members[0].Name)
}

func TestSymbolsCommand_UnknownFormat(t *testing.T) {
	fs := memFs(t, map[string]string{"hello/greeter.ceylon": greeterSource})
	_, stderr, code := run(t, SymbolsCommand(WithFs(fs)), "--format", "xml", "/ws")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown format")
}
