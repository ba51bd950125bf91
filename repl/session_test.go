// Copyright © 2024 The ELPS authors

package repl

import (
	"testing"

	"github.com/emmanuelbernard/ceylon-spec/diagnostic"
	"github.com/emmanuelbernard/ceylon-spec/model"
	"github.com/emmanuelbernard/ceylon-spec/vfs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(nil, "")
	require.NoError(t, err)
	return s
}

func eval(t *testing.T, s *Session, input string) *Reply {
	t.Helper()
	reply, err := s.Eval(input)
	require.NoError(t, err)
	return reply
}

func messages(ds []diagnostic.Diagnostic) []string {
	var msgs []string
	for _, d := range ds {
		msgs = append(msgs, d.Message)
	}
	return msgs
}

// --- Expression tests ---

func TestSession_ExpressionTypes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1", "Integer"},
		{`"hello"`, "String"},
		{"true", "Boolean"},
		{"null", "Nothing"},
		{"1 + 2", "Integer"},
		{"1 + 2;", "Integer"},
	}
	s := newSession(t)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			reply := eval(t, s, tt.input)
			require.False(t, reply.Failed(), "%v", messages(reply.Diagnostics))
			assert.Equal(t, tt.want, reply.String())
		})
	}
}

func TestSession_UnknownName(t *testing.T) {
	s := newSession(t)
	reply := eval(t, s, "fnord")
	require.True(t, reply.Failed())
	require.Len(t, reply.Diagnostics, 1)
	d := reply.Diagnostics[0]
	assert.Contains(t, d.Message, "fnord")
	require.Len(t, d.Spans, 1)
	assert.Equal(t, inputName, d.Spans[0].File)
	assert.Equal(t, 1, d.Spans[0].Line)
	assert.Equal(t, 1, d.Spans[0].Col, "span is relative to the typed input")
}

func TestSession_SyntaxError(t *testing.T) {
	s := newSession(t)
	reply := eval(t, s, "1 +")
	require.True(t, reply.Failed())
	require.Len(t, reply.Diagnostics[0].Spans, 1)
	assert.Equal(t, 1, reply.Diagnostics[0].Spans[0].Line)
}

func TestSession_Empty(t *testing.T) {
	s := newSession(t)
	reply := eval(t, s, "   ")
	assert.False(t, reply.Failed())
	assert.Equal(t, "", reply.String())
}

// --- Declaration tests ---

func TestSession_DeclarationKept(t *testing.T) {
	s := newSession(t)
	reply := eval(t, s, "Integer x = 1;")
	require.False(t, reply.Failed(), "%v", messages(reply.Diagnostics))
	require.Len(t, reply.Declarations, 1)
	assert.Equal(t, "value", model.Kind(reply.Declarations[0]))
	assert.Equal(t, "Integer x", reply.String())

	reply = eval(t, s, "x")
	require.False(t, reply.Failed(), "%v", messages(reply.Diagnostics))
	assert.Equal(t, "Integer", reply.String())
}

func TestSession_MultiLineClass(t *testing.T) {
	s := newSession(t)
	reply := eval(t, s, "class Point(Integer x) {\n    shared Integer px = x;\n}")
	require.False(t, reply.Failed(), "%v", messages(reply.Diagnostics))
	require.Len(t, reply.Declarations, 1)
	assert.Equal(t, "class", model.Kind(reply.Declarations[0]))

	reply = eval(t, s, "Point(1).px")
	require.False(t, reply.Failed(), "%v", messages(reply.Diagnostics))
	assert.Equal(t, "Integer", reply.String())
}

func TestSession_FailedDeclarationDropped(t *testing.T) {
	s := newSession(t)
	reply := eval(t, s, "Integer y = fnord;")
	require.True(t, reply.Failed())
	assert.Equal(t, 13, reply.Diagnostics[0].Spans[0].Col)

	reply = eval(t, s, "y")
	assert.True(t, reply.Failed(), "rejected declarations are not kept")
}

func TestSession_Reset(t *testing.T) {
	s := newSession(t)
	require.False(t, eval(t, s, "Integer x = 1;").Failed())
	require.NoError(t, s.Reset())
	assert.True(t, eval(t, s, "x").Failed())
}

func TestSession_SourceTree(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, vfs.WriteTree(fs, "/ws", map[string]string{
		"q/q.ceylon": `shared String greeting = "hi";`,
	}))
	s, err := NewSession(fs, "/ws")
	require.NoError(t, err)

	reply := eval(t, s, "import q { greeting }")
	require.False(t, reply.Failed(), "%v", messages(reply.Diagnostics))
	reply = eval(t, s, "greeting")
	require.False(t, reply.Failed(), "%v", messages(reply.Diagnostics))
	assert.Equal(t, "String", reply.String())
}

func TestSession_MixedImportsAndDeclarations(t *testing.T) {
	s := newSession(t)
	reply := eval(t, s, "import q { greeting }\nInteger x = 1;")
	assert.True(t, reply.Failed())
}

func TestSession_Visible(t *testing.T) {
	s := newSession(t)
	require.False(t, eval(t, s, "Integer counter = 1;").Failed())
	var names []string
	for _, n := range s.Visible() {
		names = append(names, n.Name)
	}
	assert.Contains(t, names, "counter")
	assert.Contains(t, names, "Integer")
}

// --- Depth tests ---

func TestDepth(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"1 + 1", 0},
		{"class C() {", 1},
		{"f(g(", 2},
		{`"{"`, 0},
		{`'('`, 0},
		{"`(`", 0},
		{`"\"{"`, 0},
		{"}", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, depth(tt.input), tt.input)
	}
}
