// Copyright © 2024 The ELPS authors

package analysis

import (
	"fmt"
	"sort"

	"github.com/emmanuelbernard/ceylon-spec/parser/token"
	"github.com/emmanuelbernard/ceylon-spec/tree"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic is a recoverable problem attached to a syntax node.
type Diagnostic struct {
	Severity Severity
	Message  string
	// Node is the offending syntax node.  It is nil for problems reported
	// against a whole unit.
	Node tree.Node
	Pos  *token.Location
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// FatalError is a structural problem that aborts processing of a unit or
// tree.
type FatalError struct {
	Pos *token.Location
	Msg string
}

func (e *FatalError) Error() string {
	if e.Pos == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func fatalf(n tree.Node, format string, v ...interface{}) *FatalError {
	var pos *token.Location
	if n != nil {
		pos = n.Pos()
	}
	return &FatalError{Pos: pos, Msg: fmt.Sprintf(format, v...)}
}

type diagKey struct {
	node tree.Node
	msg  string
}

// diagnosticSet accumulates diagnostics, ignoring exact repeats.
type diagnosticSet struct {
	seen map[diagKey]bool
	list []Diagnostic
}

func (s *diagnosticSet) add(d Diagnostic) bool {
	k := diagKey{d.Node, d.Message}
	if d.Node == nil {
		k.msg = d.Pos.String() + ":" + d.Message
	}
	if s.seen[k] {
		return false
	}
	if s.seen == nil {
		s.seen = make(map[diagKey]bool)
	}
	s.seen[k] = true
	s.list = append(s.list, d)
	return true
}

// sorted returns the diagnostics ordered by line and column.  Diagnostics
// at the same position keep the order they were reported in.
func (s *diagnosticSet) sorted() []Diagnostic {
	out := append([]Diagnostic(nil), s.list...)
	SortDiagnostics(out)
	return out
}

// SortDiagnostics orders ds by file, line and column.
func SortDiagnostics(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i].Pos, ds[j].Pos
		switch {
		case a == nil || b == nil:
			return a == nil && b != nil
		case a.File != b.File:
			return a.File < b.File
		case a.Line != b.Line:
			return a.Line < b.Line
		default:
			return a.Col < b.Col
		}
	})
}
