// Copyright © 2024 The ELPS authors

package checktest

import (
	"testing"

	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectations(t *testing.T) {
	src := "Integer i = 1;\nString s = i; // error: not assignable\n// warning:   unused  \n"
	exps := Expectations("p/p.ceylon", src)
	require.Len(t, exps, 2)
	assert.Equal(t, Expectation{File: "p/p.ceylon", Line: 2, Severity: analysis.SeverityError, Message: "not assignable"}, exps[0])
	assert.Equal(t, Expectation{File: "p/p.ceylon", Line: 3, Severity: analysis.SeverityWarning, Message: "unused"}, exps[1])
	assert.Equal(t, "p/p.ceylon:2: error: not assignable", exps[0].String())
}

func TestRunner_Check(t *testing.T) {
	srcs := map[string]string{
		"p/p.ceylon": "Integer i = 1;\nString s = i; // error: specifier expression not assignable to expected type\n",
	}
	r := &Runner{}
	res := r.Check(t, srcs)
	require.Len(t, res.Diagnostics, 1)
	assert.True(t, AssertExpectations(t, srcs, res))
}

func TestRunner_CleanTree(t *testing.T) {
	srcs := map[string]string{
		"p/a.ceylon": "shared Integer answer = 42;\n",
		"q/b.ceylon": "import p { answer }\nInteger copy = answer;\n",
	}
	r := &Runner{}
	res := r.Check(t, srcs)
	assert.Empty(t, res.Diagnostics)
	assert.True(t, AssertExpectations(t, srcs, res))
}

func TestLogger(t *testing.T) {
	l := NewLogger(t)
	n, err := l.Write([]byte("one\ntwo\nthr"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	assert.Equal(t, "thr", string(l.buf))
	l.Flush()
	assert.Empty(t, l.buf)
}
