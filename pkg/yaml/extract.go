package yaml

import (
	"errors"
	"fmt"

	"github.com/inercia/go-yaml-tree/pkg/node"
)

// ErrNotEnoughDocuments is returned by ExtractCommonN when given less than two
// documents.
var ErrNotEnoughDocuments = errors.New("need at least 2 documents")

// Options controls how common structures are extracted.
//
// IncludeEqualListsInCommon controls whether lists (YAML sequences) that are
// exactly equal in both inputs are considered part of the common structure.
// If false, even equal lists will remain in the updated outputs instead of in
// the common output. Default is true.
//
// Additional options can be added via the Option pattern.
type Options struct {
	IncludeEqualListsInCommon bool
}

// Option is a functional option for ExtractCommon.
type Option func(*Options)

// WithIncludeEqualListsInCommon sets whether equal lists should be considered common.
func WithIncludeEqualListsInCommon(include bool) Option {
	return func(o *Options) { o.IncludeEqualListsInCommon = include }
}

func defaultOptions() Options {
	return Options{IncludeEqualListsInCommon: true}
}

func newOptions(opts ...Option) Options {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// ExtractCommon computes the common structure between two YAML documents and
// returns three YAML documents:
//  1. the common structure
//  2. the first document with the common structure removed (updated1)
//  3. the second document with the common structure removed (updated2)
//
// The operation satisfies the property that a deterministic deep-merge of
// (updated, common) reconstructs the original input. Empty results are
// rendered as {}.
func ExtractCommon(yaml1, yaml2 []byte, opts ...Option) ([]byte, []byte, []byte, error) {
	n1, err := readOptional(yaml1)
	if err != nil {
		return nil, nil, nil, err
	}
	n2, err := readOptional(yaml2)
	if err != nil {
		return nil, nil, nil, err
	}

	common, r1, r2 := ExtractCommonNodes(n1, n2, opts...)

	commonY, err := writeOptional(common)
	if err != nil {
		return nil, nil, nil, err
	}
	r1Y, err := writeOptional(r1)
	if err != nil {
		return nil, nil, nil, err
	}
	r2Y, err := writeOptional(r2)
	if err != nil {
		return nil, nil, nil, err
	}
	return commonY, r1Y, r2Y, nil
}

// ExtractCommonN is ExtractCommon for any number of documents. It returns the
// structure common to all of them and, in the same order as docs, each
// document without it.
func ExtractCommonN(docs [][]byte, opts ...Option) ([]byte, [][]byte, error) {
	if len(docs) < 2 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrNotEnoughDocuments, len(docs))
	}
	nodes := make([]node.Node, len(docs))
	for i, d := range docs {
		n, err := readOptional(d)
		if err != nil {
			return nil, nil, fmt.Errorf("document %d: %w", i, err)
		}
		nodes[i] = n
	}

	common, remainders := ExtractCommonNodesN(nodes, opts...)

	commonY, err := writeOptional(common)
	if err != nil {
		return nil, nil, err
	}
	res := make([][]byte, len(remainders))
	for i, r := range remainders {
		if res[i], err = writeOptional(r); err != nil {
			return nil, nil, err
		}
	}
	return commonY, res, nil
}

// ExtractCommonNodes is ExtractCommon over trees. A nil result stands for an
// empty document.
func ExtractCommonNodes(a, b node.Node, opts ...Option) (common, ra, rb node.Node) {
	return newOptions(opts...).extract(a, b)
}

// ExtractCommonNodesN is ExtractCommonN over trees.
func ExtractCommonNodesN(nodes []node.Node, opts ...Option) (node.Node, []node.Node) {
	options := newOptions(opts...)
	if len(nodes) == 0 {
		return nil, nil
	}

	common := nodes[0]
	for _, n := range nodes[1:] {
		common, _, _ = options.extract(common, n)
	}

	remainders := make([]node.Node, len(nodes))
	for i, n := range nodes {
		_, remainders[i], _ = options.extract(n, common)
	}
	return common, remainders
}

// extract returns the common part between a and b, and the remainders of a
// and b after removing the common part. The merge property holds for the
// triplet (common, ra, rb): merge(ra, common) == a and merge(rb, common) == b,
// with the first argument winning conflicts.
func (o Options) extract(a, b node.Node) (common, ra, rb node.Node) {
	switch {
	case node.IsNil(a) && node.IsNil(b):
		return nil, nil, nil
	case node.IsNil(a):
		return nil, nil, b
	case node.IsNil(b):
		return nil, a, nil
	}

	am, aIsMap := a.(*node.Mapping)
	bm, bIsMap := b.(*node.Mapping)
	if aIsMap && bIsMap {
		return o.extractMappings(am, bm)
	}

	if a.Kind() == node.SequenceKind && b.Kind() == node.SequenceKind {
		if o.IncludeEqualListsInCommon && node.Equal(a, b) {
			return a, nil, nil
		}
		// No partial extraction from lists; treat as entirely different
		return nil, a, b
	}

	if a.Kind() == node.ScalarKind && node.Equal(a, b) {
		return a, nil, nil
	}
	return nil, a, b
}

func (o Options) extractMappings(a, b *node.Mapping) (common, ra, rb node.Node) {
	switch {
	case a.IsEmpty() && b.IsEmpty():
		return a, nil, nil
	case a.IsEmpty() || b.IsEmpty():
		return nil, a, b
	}

	cb, rab, rbb := node.NewMappingBuilder(), node.NewMappingBuilder(), node.NewMappingBuilder()
	for _, e := range a.Entries() {
		bv := b.Value(e.Key)
		if bv == nil {
			rab = rab.Add(e.Key, e.Value)
			continue
		}
		c, x, y := o.extract(e.Value, bv)
		if c != nil {
			cb = cb.Add(e.Key, c)
		}
		if x != nil {
			rab = rab.Add(e.Key, x)
		}
		if y != nil {
			rbb = rbb.Add(e.Key, y)
		}
	}
	for _, e := range b.Entries() {
		if a.Value(e.Key) == nil {
			rbb = rbb.Add(e.Key, e.Value)
		}
	}

	return orNil(cb, a.Comment()), orNil(rab, a.Comment()), orNil(rbb, b.Comment())
}

// orNil builds the mapping, or returns nil when it has no entries.
func orNil(b node.MappingBuilder, comment node.Comment) node.Node {
	m, err := b.Build(comment...)
	if err != nil || m.IsEmpty() {
		return nil
	}
	return m
}
