// Copyright © 2024 The ELPS authors

package model

import (
	"fmt"
	"strings"
)

// Kind returns a short noun for the kind of declaration d.
func Kind(d Declaration) string {
	switch d := d.(type) {
	case *Class:
		return "class"
	case *Interface:
		return "interface"
	case *Method:
		if _, ok := d.Container().(TypeDeclaration); ok {
			return "method"
		}
		return "function"
	case *SimpleValue:
		if d.Variable {
			return "variable"
		}
		return "value"
	case *Getter:
		return "getter"
	case *Setter:
		return "setter"
	case *Parameter:
		return "parameter"
	case *TypeParameter:
		return "type parameter"
	default:
		panic(fmt.Sprintf("model: unexpected declaration %T", d))
	}
}

// Describe renders the signature of d the way it would be declared.
func Describe(d Declaration) string {
	var sb strings.Builder
	if d.Shared() {
		sb.WriteString("shared ")
	}
	switch d := d.(type) {
	case *Class:
		if d.Abstract {
			sb.WriteString("abstract ")
		}
		sb.WriteString("class " + d.Name() + typeParams(d.TypeParameters()))
		if pl := d.ParameterList(); pl != nil {
			sb.WriteString(params(pl))
		}
		if et := d.ExtendedType(); et != nil {
			sb.WriteString(" extends " + et.String())
		}
		satisfies(&sb, d.SatisfiedTypes())
	case *Interface:
		sb.WriteString("interface " + d.Name() + typeParams(d.TypeParameters()))
		satisfies(&sb, d.SatisfiedTypes())
	case *Method:
		if d.Formal {
			sb.WriteString("formal ")
		}
		if d.Void {
			sb.WriteString("void")
		} else {
			sb.WriteString(TypeString(d.Type()))
		}
		sb.WriteString(" " + d.Name() + typeParams(d.TypeParameters()))
		for _, pl := range d.ParameterLists() {
			sb.WriteString(params(pl))
		}
	case *SimpleValue:
		if d.Variable {
			sb.WriteString("variable ")
		}
		sb.WriteString(TypeString(d.Type()) + " " + d.Name())
	case *Getter:
		sb.WriteString(TypeString(d.Type()) + " " + d.Name())
	case *Setter:
		sb.WriteString("assign " + d.Name())
	case *Parameter:
		sb.WriteString(param(d))
	case *TypeParameter:
		if v := d.Variance.String(); v != "" {
			sb.WriteString(v + " ")
		}
		sb.WriteString(d.Name())
	default:
		panic(fmt.Sprintf("model: unexpected declaration %T", d))
	}
	return sb.String()
}

func typeParams(tps []*TypeParameter) string {
	if len(tps) == 0 {
		return ""
	}
	names := make([]string, len(tps))
	for i, tp := range tps {
		names[i] = tp.Name()
		if v := tp.Variance.String(); v != "" {
			names[i] = v + " " + names[i]
		}
	}
	return "<" + strings.Join(names, ", ") + ">"
}

func params(pl *ParameterList) string {
	ps := make([]string, len(pl.Params))
	for i, p := range pl.Params {
		ps[i] = param(p)
	}
	return "(" + strings.Join(ps, ", ") + ")"
}

func param(p *Parameter) string {
	s := TypeString(p.Type())
	if p.Sequenced {
		if seq, ok := p.Type().(*ProducedType); ok && len(seq.Args) == 1 {
			s = TypeString(seq.Args[0])
		}
		s += "..."
	}
	s += " " + p.Name()
	if p.Defaulted {
		s += " = ..."
	}
	return s
}

func satisfies(sb *strings.Builder, ts []*ProducedType) {
	if len(ts) == 0 {
		return
	}
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	sb.WriteString(" satisfies " + strings.Join(names, " & "))
}
