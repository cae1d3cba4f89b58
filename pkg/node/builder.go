package node

import "slices"

// MappingBuilder assembles a mapping one entry at a time. Builders are
// persistent: Add returns a new builder and leaves the receiver as it was,
// so a partially built mapping can be branched.
//
//	m := node.NewMappingBuilder().
//		AddScalar("name", "api").
//		Add(node.NewScalar("ports"), ports).
//		MustBuild("service definition")
//
// A nil value is stored as a YAML null. Adding a key twice keeps the last
// value. A nil key makes Build fail.
type MappingBuilder struct {
	m   *Mapping
	err error
}

// NewMappingBuilder returns a builder for an empty mapping.
func NewMappingBuilder() MappingBuilder {
	return MappingBuilder{m: EmptyMapping()}
}

// Add returns a builder whose mapping also maps key to value.
func (b MappingBuilder) Add(key, value Node) MappingBuilder {
	if b.err != nil {
		return b
	}
	if b.m == nil {
		b.m = EmptyMapping()
	}
	if IsNil(value) {
		value = NewNull()
	}
	m, err := b.m.With(key, value)
	if err != nil {
		return MappingBuilder{m: b.m, err: err}
	}
	return MappingBuilder{m: m}
}

// AddScalar is Add for a scalar key and a scalar value.
func (b MappingBuilder) AddScalar(key, value string) MappingBuilder {
	return b.Add(NewScalar(key), NewScalar(value))
}

// Build returns the mapping, with comment attached.
func (b MappingBuilder) Build(comment ...string) (*Mapping, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.m == nil {
		return EmptyMapping(comment...), nil
	}
	return &Mapping{entries: b.m.entries, comment: NewComment(comment...)}, nil
}

// MustBuild is Build for literals known to be valid. It panics on error.
func (b MappingBuilder) MustBuild(comment ...string) *Mapping {
	m, err := b.Build(comment...)
	if err != nil {
		panic(err)
	}
	return m
}

// SequenceBuilder assembles a sequence one item at a time. Like
// MappingBuilder it is persistent and stores nil items as YAML nulls.
type SequenceBuilder struct {
	items []Node
}

// NewSequenceBuilder returns a builder for an empty sequence.
func NewSequenceBuilder() SequenceBuilder {
	return SequenceBuilder{}
}

// Add returns a builder whose sequence ends with item.
func (b SequenceBuilder) Add(item Node) SequenceBuilder {
	if IsNil(item) {
		item = NewNull()
	}
	return SequenceBuilder{items: append(slices.Clip(b.items), item)}
}

// AddScalar is Add for a scalar item.
func (b SequenceBuilder) AddScalar(value string) SequenceBuilder {
	return b.Add(NewScalar(value))
}

// Build returns the sequence, with comment attached.
func (b SequenceBuilder) Build(comment ...string) *Sequence {
	return &Sequence{items: slices.Clone(b.items), comment: NewComment(comment...)}
}
