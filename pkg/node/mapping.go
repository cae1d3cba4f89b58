package node

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tidwall/btree"
)

// Entry is one key/value pair of a mapping.
type Entry struct {
	Key   Node
	Value Node
}

// Mapping holds unique keys mapped to values. Entries are kept sorted by key
// under Compare, whatever the order they were added in.
type Mapping struct {
	entries *btree.BTreeG[Entry]
	comment Comment
}

func lessEntry(a, b Entry) bool {
	return Compare(a.Key, b.Key) < 0
}

func newEntries() *btree.BTreeG[Entry] {
	return btree.NewBTreeG(lessEntry)
}

// NewMapping returns a mapping holding entries. Nil keys or values and
// repeated keys are errors.
func NewMapping(entries []Entry, comment ...string) (*Mapping, error) {
	tr := newEntries()
	for _, e := range entries {
		if IsNil(e.Key) || IsNil(e.Value) {
			return nil, fmt.Errorf("%w: nil mapping key or value", ErrInvalidNode)
		}
		if _, replaced := tr.Set(e); replaced {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, e.Key)
		}
	}
	return &Mapping{entries: tr, comment: NewComment(comment...)}, nil
}

// EmptyMapping returns a mapping without entries.
func EmptyMapping(comment ...string) *Mapping {
	return &Mapping{entries: newEntries(), comment: NewComment(comment...)}
}

// Len returns the number of entries.
func (m *Mapping) Len() int { return m.entries.Len() }

// Entries returns the entries in ascending key order.
func (m *Mapping) Entries() []Entry {
	res := make([]Entry, 0, m.entries.Len())
	m.entries.Scan(func(e Entry) bool {
		res = append(res, e)
		return true
	})
	return res
}

// Keys returns the keys in ascending order.
func (m *Mapping) Keys() []Node {
	res := make([]Node, 0, m.entries.Len())
	m.entries.Scan(func(e Entry) bool {
		res = append(res, e.Key)
		return true
	})
	return res
}

// Value returns the value stored under key, or nil.
func (m *Mapping) Value(key Node) Node {
	if IsNil(key) {
		return nil
	}
	e, ok := m.entries.Get(Entry{Key: key})
	if !ok {
		return nil
	}
	return e.Value
}

// Get returns the value stored under the scalar key, or nil.
func (m *Mapping) Get(key string) Node {
	return m.Value(NewScalar(key))
}

// With returns a copy of m where key maps to value. m is left untouched.
func (m *Mapping) With(key, value Node) (*Mapping, error) {
	if IsNil(key) || IsNil(value) {
		return nil, fmt.Errorf("%w: nil mapping key or value", ErrInvalidNode)
	}
	tr := m.entries.Copy()
	tr.Set(Entry{Key: key, Value: value})
	return &Mapping{entries: tr, comment: m.comment}, nil
}

func (m *Mapping) Kind() Kind { return MappingKind }

func (m *Mapping) Comment() Comment { return slices.Clone(m.comment) }

// Children returns the values in ascending key order.
func (m *Mapping) Children() []Node {
	res := make([]Node, 0, m.entries.Len())
	m.entries.Scan(func(e Entry) bool {
		res = append(res, e.Value)
		return true
	})
	return res
}

func (m *Mapping) IsEmpty() bool { return m.entries.Len() == 0 }

func (m *Mapping) String() string {
	parts := make([]string, 0, m.entries.Len())
	m.entries.Scan(func(e Entry) bool {
		parts = append(parts, e.Key.String()+": "+e.Value.String())
		return true
	})
	return "{" + strings.Join(parts, ", ") + "}"
}

func (m *Mapping) sealed() {}
