package node

import (
	"cmp"
	"strings"
)

// Compare is the total order over nodes. It returns -1, 0 or +1.
//
// A nil node sorts before any node. Across kinds, scalars < sequences <
// mappings. Scalars compare by value, with null before every non-null value
// (the empty string included): "key:" and `key: ""` must stay distinct for
// printed trees to parse back equal. Sequences compare item by item, mappings
// entry by entry in key order (key first, then value); when one side runs
// out first the shorter one sorts first. Comments are ignored.
func Compare(a, b Node) int {
	an, bn := IsNil(a), IsNil(b)
	switch {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	}
	if c := cmp.Compare(a.Kind(), b.Kind()); c != 0 {
		return c
	}
	switch x := a.(type) {
	case *Scalar:
		return compareScalars(x, b.(*Scalar))
	case *Sequence:
		return compareSequences(x, b.(*Sequence))
	case *Mapping:
		return compareMappings(x, b.(*Mapping))
	}
	return 0
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b Node) bool {
	return Compare(a, b) == 0
}

func compareScalars(a, b *Scalar) int {
	switch {
	case a.null && b.null:
		return 0
	case a.null:
		return -1
	case b.null:
		return 1
	}
	return strings.Compare(a.value, b.value)
}

func compareSequences(a, b *Sequence) int {
	for i := 0; i < len(a.items) && i < len(b.items); i++ {
		if c := Compare(a.items[i], b.items[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a.items), len(b.items))
}

func compareMappings(a, b *Mapping) int {
	ae, be := a.Entries(), b.Entries()
	for i := 0; i < len(ae) && i < len(be); i++ {
		if c := Compare(ae[i].Key, be[i].Key); c != 0 {
			return c
		}
		if c := Compare(ae[i].Value, be[i].Value); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(ae), len(be))
}
