// Package node implements the immutable YAML tree: scalars, sequences and
// mappings, the total order between them and the builders that assemble
// trees programmatically.
//
// Trees are values. Nothing in this package edits a node after it has been
// constructed; operations that look like mutations (With, the builders'
// Add) return new nodes and share the untouched parts, so a tree can be
// read from several goroutines without locking.
package node

import (
	"errors"
	"slices"
	"strings"
)

var (
	// ErrInvalidNode is returned when a node cannot be constructed.
	ErrInvalidNode = errors.New("invalid node")
	// ErrDuplicateKey is returned when a mapping would hold a key twice.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNodeNotFound is returned by strict lookups of missing children.
	ErrNodeNotFound = errors.New("node not found")
	// ErrWrongKind is returned by strict lookups when the child exists but is
	// not of the requested kind.
	ErrWrongKind = errors.New("unexpected node kind")
)

// Kind identifies the variant of a node. The declaration order is the order
// used between nodes of different kinds.
type Kind int

const (
	ScalarKind Kind = iota
	SequenceKind
	MappingKind
)

func (k Kind) String() string {
	switch k {
	case ScalarKind:
		return "scalar"
	case SequenceKind:
		return "sequence"
	case MappingKind:
		return "mapping"
	}
	return "unknown"
}

// Comment holds the comment lines attached to a node, without the leading
// '#'.
type Comment []string

// NewComment builds a comment out of lines, splitting any of them that hold
// newlines.
func NewComment(lines ...string) Comment {
	var c Comment
	for _, l := range lines {
		c = append(c, strings.Split(l, "\n")...)
	}
	return c
}

func (c Comment) String() string {
	return strings.Join(c, "\n")
}

// IsEmpty reports whether there are no comment lines.
func (c Comment) IsEmpty() bool {
	return len(c) == 0
}

// Node is one value of the tree. It is implemented by *Scalar, *Sequence and
// *Mapping only.
type Node interface {
	Kind() Kind
	// Comment returns the comment attached to the node.
	Comment() Comment
	// Children returns the child values: sequence items in document order,
	// mapping values in ascending key order. Scalars have none.
	Children() []Node
	// IsEmpty reports whether the node is a null scalar or a collection
	// without children.
	IsEmpty() bool
	String() string

	sealed()
}

// WithComment returns a copy of n carrying comment c. Children are shared.
func WithComment(n Node, c Comment) Node {
	c = slices.Clone(c)
	switch v := n.(type) {
	case *Scalar:
		s := *v
		s.comment = c
		return &s
	case *Sequence:
		s := *v
		s.comment = c
		return &s
	case *Mapping:
		m := *v
		m.comment = c
		return &m
	}
	return n
}

// IsNil reports whether n is nil, including a typed nil pointer.
func IsNil(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *Scalar:
		return v == nil
	case *Sequence:
		return v == nil
	case *Mapping:
		return v == nil
	}
	return false
}
