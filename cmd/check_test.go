// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/emmanuelbernard/ceylon-spec/lint"
	"github.com/emmanuelbernard/ceylon-spec/vfs"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memFs returns a file system holding files below /ws.
func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, vfs.WriteTree(fs, "/ws", files))
	return fs
}

// run executes cmd with args and returns its output and exit status.
func run(t *testing.T, cmd *cobra.Command, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err != nil {
		var exit *ExitError
		require.ErrorAs(t, err, &exit)
		code = exit.Code
	}
	return out.String(), errOut.String(), code
}

func TestCheckCommand_DefaultFlags(t *testing.T) {
	cmd := CheckCommand()
	assert.Equal(t, "check [flags] [roots...]", cmd.Use)

	// All expected flags should exist
	for _, name := range []string{"json", "checks", "list", "no-lint"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestCheckCommand_Clean(t *testing.T) {
	fs := memFs(t, map[string]string{
		"p/a.ceylon": "shared Integer answer = 42;\n",
		"q/b.ceylon": "import p { answer }\nInteger copy = answer;\n",
	})
	stdout, stderr, code := run(t, CheckCommand(WithFs(fs)), "/ws")
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}

func TestCheckCommand_TypeError(t *testing.T) {
	fs := memFs(t, map[string]string{
		"p/a.ceylon": "Integer i = 1;\nString s = i;\n",
	})
	_, stderr, code := run(t, CheckCommand(WithFs(fs)), "/ws")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error")
	assert.Contains(t, stderr, "specifier expression not assignable to expected type: Integer is not String")
	assert.Contains(t, stderr, "/ws/p/a.ceylon:2:")
	assert.Contains(t, stderr, "String s = i;", "the renderer shows the source line")
}

func TestCheckCommand_JSON(t *testing.T) {
	fs := memFs(t, map[string]string{
		"p/a.ceylon": "Integer f() { }\nString s = 1;\n",
	})
	stdout, _, code := run(t, CheckCommand(WithFs(fs)), "--json", "/ws")
	assert.Equal(t, 1, code)

	var diags []lint.Diagnostic
	require.NoError(t, json.Unmarshal([]byte(stdout), &diags))
	require.Len(t, diags, 2)
	assert.Equal(t, "missing-return", diags[0].Analyzer)
	assert.Equal(t, lint.Position{File: "/ws/p/a.ceylon", Line: 1, Col: 9}, diags[0].Pos)
	assert.Equal(t, lint.SeverityError, diags[0].Severity)
	assert.Equal(t, lint.CheckerName, diags[1].Analyzer)
	assert.Equal(t, 2, diags[1].Pos.Line)
}

func TestCheckCommand_NoLint(t *testing.T) {
	fs := memFs(t, map[string]string{
		"p/a.ceylon": "Integer f() { }\n",
	})
	_, _, code := run(t, CheckCommand(WithFs(fs)), "--no-lint", "/ws")
	assert.Equal(t, 0, code)
}

func TestCheckCommand_SelectChecks(t *testing.T) {
	fs := memFs(t, map[string]string{
		"p/a.ceylon": "Integer f() { }\n",
	})
	_, _, code := run(t, CheckCommand(WithFs(fs)), "--checks=unused-import", "/ws")
	assert.Equal(t, 0, code)

	_, stderr, code := run(t, CheckCommand(WithFs(fs)), "--checks=bogus", "/ws")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown check")
}

func TestCheckCommand_List(t *testing.T) {
	stdout, _, code := run(t, CheckCommand(), "--list")
	assert.Equal(t, 0, code)
	for _, name := range lint.AnalyzerNames() {
		assert.Contains(t, stdout, name+"\n")
	}
}

func TestCheckCommand_FatalModuleError(t *testing.T) {
	fs := memFs(t, map[string]string{
		"module.ceylon": "module top {}\n",
	})
	stdout, _, code := run(t, CheckCommand(WithFs(fs)), "--json", "/ws")
	assert.Equal(t, 1, code)
	var diags []lint.Diagnostic
	require.NoError(t, json.Unmarshal([]byte(stdout), &diags))
	require.NotEmpty(t, diags)
	assert.Equal(t, "Module cannot be top level", diags[0].Message)
	assert.Equal(t, "/ws/module.ceylon", diags[0].Pos.File)
}

func TestCheckCommand_MissingRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, stderr, code := run(t, CheckCommand(WithFs(fs)), "/nowhere")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "ceylon-spec check:")
}
