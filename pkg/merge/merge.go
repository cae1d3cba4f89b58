// Package merge deep-merges two node trees.
//
// The changed tree is merged into the original one. Mappings are merged key
// by key and never replaced wholesale. Any other pair of values in a
// mapping is a conflict that the override flag settles: changed wins when it
// is set (the default), original wins otherwise. Sequences merged directly
// with each other are overlaid by index when override is set and
// concatenated when it is not.
//
// Inputs are never modified; the result shares the untouched sub-trees of
// both inputs.
package merge

import (
	"errors"
	"fmt"

	"github.com/inercia/go-yaml-tree/pkg/node"
)

var (
	ErrInvalidArgument = errors.New("invalid merge argument")
	ErrTypeMismatch    = errors.New("cannot merge nodes of different kinds")
)

///////////////////////////////////////////////////////////////////////////////
// options
///////////////////////////////////////////////////////////////////////////////

type config struct {
	override bool
}

func newConfig(opts ...Option) *config {
	c := &config{override: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option customizes a merge.
type Option func(*config)

// WithOverride selects who wins a conflict. With true (the default) the
// changed tree wins and sequences are overlaid by index. With false the
// original tree wins and sequences are concatenated.
func WithOverride(override bool) Option {
	return func(c *config) {
		c.override = override
	}
}

///////////////////////////////////////////////////////////////////////////////
// merges
///////////////////////////////////////////////////////////////////////////////

// Merge merges changed into original.
//
// A missing or empty side yields the other one unchanged; both sides
// missing is ErrInvalidArgument. Otherwise both sides must be of the same
// kind, or the merge fails with ErrTypeMismatch.
func Merge(original, changed node.Node, opts ...Option) (node.Node, error) {
	return MergeFunc(original, func() node.Node { return changed }, opts...)
}

// MergeFunc is Merge with a changed tree produced on demand. The supplier is
// called at most once; a nil supplier counts as a missing changed tree.
func MergeFunc(original node.Node, changed func() node.Node, opts ...Option) (node.Node, error) {
	cfg := newConfig(opts...)

	var ch node.Node
	if changed != nil {
		ch = changed()
	}

	switch {
	case node.IsNil(ch) && node.IsNil(original):
		return nil, fmt.Errorf("%w: both sides are missing", ErrInvalidArgument)
	case node.IsNil(ch):
		return original, nil
	case node.IsNil(original) || original.IsEmpty():
		return ch, nil
	case ch.IsEmpty():
		return original, nil
	}
	return cfg.merge(original, ch)
}

func (cfg *config) merge(original, changed node.Node) (node.Node, error) {
	switch o := original.(type) {
	case *node.Mapping:
		if c, ok := changed.(*node.Mapping); ok {
			return cfg.mappings(o, c)
		}
	case *node.Sequence:
		if c, ok := changed.(*node.Sequence); ok {
			return cfg.sequences(o, c)
		}
	case *node.Scalar:
		if _, ok := changed.(*node.Scalar); ok {
			return cfg.leaf(original, changed), nil
		}
	}
	return nil, fmt.Errorf("%w: %s and %s", ErrTypeMismatch, original.Kind(), changed.Kind())
}

func (cfg *config) mappings(original, changed *node.Mapping) (node.Node, error) {
	res := original
	for _, e := range changed.Entries() {
		var v node.Node
		ov := original.Value(e.Key)
		om, oIsMap := ov.(*node.Mapping)
		cm, cIsMap := e.Value.(*node.Mapping)

		switch {
		case ov == nil:
			v = e.Value
		case oIsMap && cIsMap:
			merged, err := cfg.mappings(om, cm)
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", e.Key, err)
			}
			v = merged
		case cfg.override:
			v = cfg.leaf(ov, e.Value)
		default:
			continue
		}

		var err error
		if res, err = res.With(e.Key, v); err != nil {
			return nil, err
		}
	}
	return node.WithComment(res, cfg.comment(original, changed)), nil
}

func (cfg *config) sequences(original, changed *node.Sequence) (node.Node, error) {
	comment := cfg.comment(original, changed)
	if node.Equal(original, changed) {
		return node.WithComment(original, comment), nil
	}

	items := original.Values()
	if cfg.override {
		for i, it := range changed.Values() {
			if i < len(items) {
				items[i] = cfg.leaf(items[i], it)
			} else {
				items = append(items, it)
			}
		}
	} else {
		items = append(items, changed.Values()...)
	}

	res, err := node.NewSequence(items)
	if err != nil {
		return nil, err
	}
	return node.WithComment(res, comment), nil
}

// leaf settles a conflict between two values that are not merged. The
// winner keeps the comment of the other side when it has none.
func (cfg *config) leaf(original, changed node.Node) node.Node {
	if !cfg.override {
		return original
	}
	return node.WithComment(changed, cfg.comment(original, changed))
}

func (cfg *config) comment(original, changed node.Node) node.Comment {
	if c := changed.Comment(); cfg.override && !c.IsEmpty() {
		return c
	}
	return original.Comment()
}
