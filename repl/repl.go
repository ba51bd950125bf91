// Copyright © 2018 The ELPS authors

// Package repl implements an interactive prompt that reports the type of
// each expression entered.  Imports and declarations entered at the prompt
// are kept and may be referenced by later inputs.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/emmanuelbernard/ceylon-spec/analysis"
	"github.com/emmanuelbernard/ceylon-spec/diagnostic"
	"github.com/ergochat/readline"
	"github.com/spf13/afero"
)

type config struct {
	stdin    io.ReadCloser
	stderr   io.WriteCloser
	fs       afero.Fs
	root     string
	history  string
	color    diagnostic.ColorMode
	analysis []analysis.Option
}

func newConfig(opts ...Option) *config {
	config := &config{
		history: historyPath(),
		color:   diagnostic.ColorAuto,
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output to the REPL.
func WithStderr(stderr io.WriteCloser) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithSourceTree makes the packages of the source tree at root importable
// from the prompt.
func WithSourceTree(fs afero.Fs, root string) Option {
	return func(c *config) {
		c.fs = fs
		c.root = root
	}
}

// WithHistoryFile sets the file input history is saved to.  An empty path
// disables history.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.history = path
	}
}

// WithColor sets how diagnostics are colored.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// WithAnalysisOptions configures the analysis of every input.
func WithAnalysisOptions(opts ...analysis.Option) Option {
	return func(c *config) {
		c.analysis = append(c.analysis, opts...)
	}
}

// RunRepl runs the prompt until its input is exhausted.
func RunRepl(prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	s, err := NewSession(cfg.fs, cfg.root, cfg.analysis...)
	if err != nil {
		return fmt.Errorf("repl initialization failure: %w", err)
	}
	return RunSession(s, prompt, strings.Repeat(" ", len(prompt)), opts...)
}

// RunSession runs the prompt over an existing session.  Inputs with
// unbalanced brackets continue on the following lines.
func RunSession(s *Session, prompt, cont string, opts ...Option) error {
	cfg := newConfig(opts...)
	var out io.Writer = os.Stderr
	if cfg.stderr != nil {
		out = cfg.stderr
	}

	ensureHistoryFilePermissions(cfg.history)
	rlCfg := &readline.Config{
		Stdout:            out,
		Stderr:            out,
		Prompt:            prompt,
		HistoryFile:       cfg.history,
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{session: s},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	var pending strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			pending.Reset()
			rl.SetPrompt(prompt)
			continue
		}
		if err != nil && line == "" {
			break
		}
		if pending.Len() > 0 {
			pending.WriteString("\n")
		}
		pending.WriteString(line)
		input := pending.String()
		if depth(input) > 0 && err == nil {
			rl.SetPrompt(cont)
			continue
		}
		pending.Reset()
		rl.SetPrompt(prompt)
		if !command(out, s, input) {
			evaluate(out, s, input, cfg.color)
		}
		if err != nil {
			break
		}
	}
	return nil
}

// command runs the prompt commands.  It reports whether input was one.
func command(w io.Writer, s *Session, input string) bool {
	switch strings.TrimSpace(input) {
	case ":reset":
		if err := s.Reset(); err != nil {
			fmt.Fprintln(w, err) //nolint:errcheck // best-effort error display
		}
		return true
	case ":help":
		fmt.Fprintln(w, "Enter an expression to see its type, or an import or declaration to keep it.") //nolint:errcheck // best-effort REPL output
		fmt.Fprintln(w, ":reset forgets every kept import and declaration.")                         //nolint:errcheck // best-effort REPL output
		return true
	}
	return false
}

func evaluate(w io.Writer, s *Session, input string, color diagnostic.ColorMode) {
	reply, err := s.Eval(input)
	if err != nil {
		fmt.Fprintln(w, err) //nolint:errcheck // best-effort error display
		return
	}
	if len(reply.Diagnostics) > 0 {
		renderDiagnostics(w, input, reply.Diagnostics, color)
	}
	if reply.Failed() {
		return
	}
	if out := reply.String(); out != "" {
		fmt.Fprintln(w, out) //nolint:errcheck // best-effort REPL output
	}
}

// depth returns the number of brackets input leaves open, ignoring those
// inside literals.
func depth(input string) int {
	n := 0
	var quote rune
	escaped := false
	for _, c := range input {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if c == '\\' {
				escaped = true
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '(' || c == '{' || c == '[':
			n++
		case c == ')' || c == '}' || c == ']':
			n--
		}
	}
	return n
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ceylon_spec_history")
}

// ensureHistoryFilePermissions creates the history file readable only by
// its owner, restricting an existing file the same way.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600)
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}
