package values

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/inercia/go-yaml-tree/pkg/node"
)

const (
	SplitToken     = "."
	IndexCloseChar = "]"
	IndexOpenChar  = "["
)

var (
	ErrMalformedIndex    = errors.New("malformed index key")
	ErrInvalidIndexUsage = errors.New("invalid index key usage")
	ErrKeyNotFound       = fmt.Errorf("%w: unable to find the key", node.ErrNodeNotFound)
	ErrIndexOutOfBounds  = errors.New("index out of bounds")
	ErrInvalidType       = errors.New("invalid type conversion")
)

// step is one component of a path: a mapping key, a sequence index, or a
// key followed by an index. index is -1 when absent.
type step struct {
	key   string
	index int
}

// parsePath splits a path like "foo.bar[0].baz" into steps. The empty path
// has no steps.
func parsePath(path string) ([]step, error) {
	if path == "" {
		return nil, nil
	}
	parts := strings.Split(path, SplitToken)
	steps := make([]step, 0, len(parts))
	for _, part := range parts {
		key, index, err := parseIndex(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, part)
		}
		if key == "" && index < 0 {
			return nil, fmt.Errorf("%w: empty component in %q", ErrInvalidIndexUsage, path)
		}
		steps = append(steps, step{key: key, index: index})
	}
	return steps, nil
}

func parseIndex(s string) (string, int, error) {
	start := strings.Index(s, IndexOpenChar)
	end := strings.Index(s, IndexCloseChar)

	if start == -1 && end == -1 {
		return s, -1, nil
	}

	if start == -1 || end == -1 || end < start || end != len(s)-1 {
		return "", -1, ErrMalformedIndex
	}

	index, err := strconv.Atoi(s[start+1 : end])
	if err != nil || index < 0 {
		return "", -1, ErrMalformedIndex
	}

	return s[:start], index, nil
}

////////////////////////////////////////////////////////////////////////////
// tree lookups
////////////////////////////////////////////////////////////////////////////

// Lookup returns the node found at path in the tree n.
// Keys are separated with "." and sequence items are selected with
// "[<index>]":
// - "foo.bar" is the "bar" value of the "foo" mapping.
// - "foo[0].bar" is the "bar" value of the first item of the "foo" sequence.
// - "[1]" is the second item of a sequence root.
// The empty path returns n itself.
func Lookup(n node.Node, path string) (node.Node, error) {
	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	cur := n
	for _, s := range steps {
		if s.key != "" {
			m, ok := cur.(*node.Mapping)
			if !ok || m == nil {
				return nil, fmt.Errorf("%w: cannot lookup %s in %s", ErrKeyNotFound, s.key, kindOf(cur))
			}
			v := m.Get(s.key)
			if v == nil {
				return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, s.key)
			}
			cur = v
		}
		if s.index >= 0 {
			seq, ok := cur.(*node.Sequence)
			if !ok || seq == nil {
				return nil, fmt.Errorf("%w: cannot index into %s", ErrInvalidType, kindOf(cur))
			}
			if s.index >= seq.Len() {
				return nil, fmt.Errorf("%w: %d (length %d)", ErrIndexOutOfBounds, s.index, seq.Len())
			}
			cur = seq.At(s.index)
		}
	}
	return cur, nil
}

// LookupFirst tries several paths until one of them is found. It returns
// the node and the path where it was found.
func LookupFirst(n node.Node, paths []string) (node.Node, string, error) {
	for _, p := range paths {
		v, err := Lookup(n, p)
		if err == nil {
			return v, p, nil
		}
	}
	return nil, "", fmt.Errorf("%w: one of %+v", ErrKeyNotFound, paths)
}

// LookupString returns the value of the non-null scalar found at path.
func LookupString(n node.Node, path string) (string, error) {
	v, err := Lookup(n, path)
	if err != nil {
		return "", err
	}
	return scalarString(v)
}

// LookupInt returns the integer held by the scalar found at path.
func LookupInt(n node.Node, path string) (int, error) {
	v, err := Lookup(n, path)
	if err != nil {
		return 0, err
	}
	s, err := scalarString(v)
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidType, err)
	}
	return i, nil
}

func scalarString(n node.Node) (string, error) {
	s, ok := n.(*node.Scalar)
	if !ok || s.IsNull() {
		return "", errInvalidType(n, "string")
	}
	return s.Value(), nil
}

// Set returns a copy of the tree n where value is stored at path. Missing
// mappings and sequences on the way are created, sequences are padded
// with nulls, and values in the way of a path that are not of the expected
// kind are replaced. n is left untouched. The empty path replaces the
// whole tree.
func Set(n node.Node, path string, value node.Node) (node.Node, error) {
	if node.IsNil(value) {
		value = node.NewNull()
	}
	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	return setNode(n, steps, value)
}

func setNode(cur node.Node, steps []step, value node.Node) (node.Node, error) {
	if len(steps) == 0 {
		return value, nil
	}
	s := steps[0]
	if s.key == "" {
		return setNodeIndexed(cur, s.index, steps[1:], value)
	}

	m, ok := cur.(*node.Mapping)
	if !ok || m == nil {
		m = node.EmptyMapping()
	}
	child, err := setNodeIndexed(m.Get(s.key), s.index, steps[1:], value)
	if err != nil {
		return nil, err
	}
	return m.With(node.NewScalar(s.key), child)
}

func setNodeIndexed(cur node.Node, index int, rest []step, value node.Node) (node.Node, error) {
	if index < 0 {
		return setNode(cur, rest, value)
	}

	var items []node.Node
	var comment node.Comment
	if seq, ok := cur.(*node.Sequence); ok && seq != nil {
		items = seq.Values()
		comment = seq.Comment()
	}
	for len(items) <= index {
		items = append(items, node.NewNull())
	}
	item, err := setNode(items[index], rest, value)
	if err != nil {
		return nil, err
	}
	items[index] = item
	return node.NewSequence(items, comment...)
}

func kindOf(n node.Node) string {
	if node.IsNil(n) {
		return "nothing"
	}
	return n.Kind().String()
}

func errInvalidType(n node.Node, target string) error {
	return fmt.Errorf("%w: cannot convert %s to %s", ErrInvalidType, kindOf(n), target)
}
