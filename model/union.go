// Copyright © 2024 The ELPS authors

package model

import "fmt"

// AddToUnion adds t to the normalized case list cases and returns the new
// list.  The bottom type is dropped, a type subsumed by an existing case is
// dropped, and existing cases subsumed by t are removed.  Adding a type the
// union already covers leaves the cases unchanged.
func AddToUnion(cases []*ProducedType, t Type) []*ProducedType {
	switch t := t.(type) {
	case nil:
		return cases
	case *UnionType:
		for _, c := range t.Cases {
			cases = AddToUnion(cases, c)
		}
		return cases
	case *ProducedType:
		if IsBottom(t) {
			return cases
		}
		for _, c := range cases {
			if IsSubtype(t, c) {
				return cases
			}
		}
		kept := cases[:0:0]
		for _, c := range cases {
			if !IsSubtype(c, t) {
				kept = append(kept, c)
			}
		}
		return append(kept, t)
	default:
		panic(fmt.Sprintf("model: unexpected type %T", t))
	}
}

// Union returns the normalized union of ts.  It returns nil for no types, the
// single remaining case when normalization leaves one, and the bottom type
// when every input is bottom.
func Union(ts ...Type) Type {
	var cases []*ProducedType
	var bottom Type
	for _, t := range ts {
		if IsBottom(t) && bottom == nil {
			bottom = t
		}
		cases = AddToUnion(cases, t)
	}
	switch len(cases) {
	case 0:
		return bottom
	case 1:
		return cases[0]
	}
	return &UnionType{Cases: cases, Extended: commonSuperclass(cases)}
}
