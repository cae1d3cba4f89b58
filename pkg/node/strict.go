package node

import "fmt"

// StrictMapping wraps a mapping so that lookups of missing keys fail with
// ErrNodeNotFound instead of returning nil.
type StrictMapping struct {
	m *Mapping
}

// StrictOf wraps m.
func StrictOf(m *Mapping) StrictMapping {
	return StrictMapping{m: m}
}

// Unwrap returns the wrapped mapping.
func (s StrictMapping) Unwrap() *Mapping { return s.m }

// Value returns the value stored under key.
func (s StrictMapping) Value(key string) (Node, error) {
	if s.m == nil {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, key)
	}
	v := s.m.Get(key)
	if v == nil {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, key)
	}
	return v, nil
}

// Mapping returns the mapping stored under key.
func (s StrictMapping) Mapping(key string) (StrictMapping, error) {
	v, err := s.Value(key)
	if err != nil {
		return StrictMapping{}, err
	}
	m, ok := v.(*Mapping)
	if !ok {
		return StrictMapping{}, fmt.Errorf("%w: %q is a %s", ErrWrongKind, key, v.Kind())
	}
	return StrictMapping{m: m}, nil
}

// Sequence returns the sequence stored under key.
func (s StrictMapping) Sequence(key string) (StrictSequence, error) {
	v, err := s.Value(key)
	if err != nil {
		return StrictSequence{}, err
	}
	q, ok := v.(*Sequence)
	if !ok {
		return StrictSequence{}, fmt.Errorf("%w: %q is a %s", ErrWrongKind, key, v.Kind())
	}
	return StrictSequence{s: q}, nil
}

// Scalar returns the scalar stored under key.
func (s StrictMapping) Scalar(key string) (*Scalar, error) {
	v, err := s.Value(key)
	if err != nil {
		return nil, err
	}
	sc, ok := v.(*Scalar)
	if !ok {
		return nil, fmt.Errorf("%w: %q is a %s", ErrWrongKind, key, v.Kind())
	}
	return sc, nil
}

// StrictSequence wraps a sequence so that out of range lookups fail with
// ErrNodeNotFound.
type StrictSequence struct {
	s *Sequence
}

// StrictSequenceOf wraps s.
func StrictSequenceOf(s *Sequence) StrictSequence {
	return StrictSequence{s: s}
}

// Unwrap returns the wrapped sequence.
func (s StrictSequence) Unwrap() *Sequence { return s.s }

// At returns the i-th item.
func (s StrictSequence) At(i int) (Node, error) {
	if s.s == nil || s.s.At(i) == nil {
		return nil, fmt.Errorf("%w: index %d", ErrNodeNotFound, i)
	}
	return s.s.At(i), nil
}

// Mapping returns the i-th item, which must be a mapping.
func (s StrictSequence) Mapping(i int) (StrictMapping, error) {
	v, err := s.At(i)
	if err != nil {
		return StrictMapping{}, err
	}
	m, ok := v.(*Mapping)
	if !ok {
		return StrictMapping{}, fmt.Errorf("%w: index %d is a %s", ErrWrongKind, i, v.Kind())
	}
	return StrictMapping{m: m}, nil
}

// Scalar returns the i-th item, which must be a scalar.
func (s StrictSequence) Scalar(i int) (*Scalar, error) {
	v, err := s.At(i)
	if err != nil {
		return nil, err
	}
	sc, ok := v.(*Scalar)
	if !ok {
		return nil, fmt.Errorf("%w: index %d is a %s", ErrWrongKind, i, v.Kind())
	}
	return sc, nil
}
