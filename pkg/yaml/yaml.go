package yaml

import (
	"errors"

	"github.com/inercia/go-yaml-tree/pkg/merge"
	"github.com/inercia/go-yaml-tree/pkg/node"
	"github.com/inercia/go-yaml-tree/pkg/parser"
	"github.com/inercia/go-yaml-tree/pkg/printer"
)

// Read parses a YAML document.
func Read(b []byte) (node.Node, error) {
	return parser.ParseBytes(b)
}

// ReadString parses a YAML document.
func ReadString(s string) (node.Node, error) {
	return parser.ParseString(s)
}

// Write renders a tree as a YAML document.
func Write(n node.Node) ([]byte, error) {
	return printer.Print(n)
}

// readOptional is Read that returns a nil node for documents without content.
func readOptional(b []byte) (node.Node, error) {
	n, err := parser.ParseBytes(b)
	if errors.Is(err, parser.ErrEmptyDocument) {
		return nil, nil
	}
	return n, err
}

// writeOptional is Write that renders a nil node as an empty mapping.
func writeOptional(n node.Node) ([]byte, error) {
	if node.IsNil(n) {
		n = node.EmptyMapping()
	}
	return printer.Print(n)
}

// MergeYAML merges two YAML documents in-memory by deep-merging their structures
// with a "first wins on conflict" policy. This is primarily intended for tests
// to validate that merge(updated, common) equals original.
func MergeYAML(baseYAML, overlayYAML []byte) ([]byte, error) {
	return mergeDocuments(baseYAML, overlayYAML, false)
}

// MergeYAMLOverride is MergeYAML where the overlay wins conflicts.
func MergeYAMLOverride(baseYAML, overlayYAML []byte) ([]byte, error) {
	return mergeDocuments(baseYAML, overlayYAML, true)
}

func mergeDocuments(baseYAML, overlayYAML []byte, override bool) ([]byte, error) {
	base, err := readOptional(baseYAML)
	if err != nil {
		return nil, err
	}
	overlay, err := readOptional(overlayYAML)
	if err != nil {
		return nil, err
	}
	if base == nil && overlay == nil {
		return writeOptional(nil)
	}

	merged, err := merge.Merge(base, overlay, merge.WithOverride(override))
	if err != nil {
		return nil, err
	}
	return printer.Print(merged)
}
