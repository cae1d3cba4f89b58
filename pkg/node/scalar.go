package node

import "slices"

// Scalar is a leaf: an opaque string, or null.
type Scalar struct {
	value   string
	null    bool
	comment Comment
}

// NewScalar returns a scalar holding value.
func NewScalar(value string, comment ...string) *Scalar {
	return &Scalar{value: value, comment: NewComment(comment...)}
}

// NewNull returns the null scalar.
func NewNull(comment ...string) *Scalar {
	return &Scalar{null: true, comment: NewComment(comment...)}
}

// Value returns the scalar text; "" for null.
func (s *Scalar) Value() string { return s.value }

// IsNull reports whether the scalar is null.
func (s *Scalar) IsNull() bool { return s.null }

func (s *Scalar) Kind() Kind { return ScalarKind }

func (s *Scalar) Comment() Comment { return slices.Clone(s.comment) }

func (s *Scalar) Children() []Node { return nil }

func (s *Scalar) IsEmpty() bool { return s.null }

func (s *Scalar) String() string {
	if s.null {
		return "~"
	}
	return s.value
}

func (s *Scalar) sealed() {}
