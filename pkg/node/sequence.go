package node

import (
	"fmt"
	"slices"
	"strings"
)

// Sequence is an ordered list of nodes.
type Sequence struct {
	items   []Node
	comment Comment
}

// NewSequence returns a sequence holding items, in order. A nil item is an
// error: use NewNull for YAML nulls.
func NewSequence(items []Node, comment ...string) (*Sequence, error) {
	for i, it := range items {
		if IsNil(it) {
			return nil, fmt.Errorf("%w: nil sequence item at index %d", ErrInvalidNode, i)
		}
	}
	return &Sequence{items: slices.Clone(items), comment: NewComment(comment...)}, nil
}

// EmptySequence returns a sequence without items.
func EmptySequence(comment ...string) *Sequence {
	return &Sequence{comment: NewComment(comment...)}
}

// Len returns the number of items.
func (s *Sequence) Len() int { return len(s.items) }

// At returns the i-th item, or nil when i is out of range.
func (s *Sequence) At(i int) Node {
	if i < 0 || i >= len(s.items) {
		return nil
	}
	return s.items[i]
}

// Values returns the items in document order.
func (s *Sequence) Values() []Node { return slices.Clone(s.items) }

func (s *Sequence) Kind() Kind { return SequenceKind }

func (s *Sequence) Comment() Comment { return slices.Clone(s.comment) }

func (s *Sequence) Children() []Node { return s.Values() }

func (s *Sequence) IsEmpty() bool { return len(s.items) == 0 }

func (s *Sequence) String() string {
	parts := make([]string, len(s.items))
	for i, it := range s.items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (s *Sequence) sealed() {}
