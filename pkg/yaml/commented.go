package yaml

import (
	"bytes"
	"strings"

	"github.com/inercia/go-yaml-tree/pkg/node"
	"github.com/inercia/go-yaml-tree/pkg/printer"
)

// CommentedOut serializes the provided full structure to YAML, but comments out
// any branches that are absent (or set to null) in the masked structure.
//
// Typical usage is to pass the same structure twice: the first argument contains
// all fields with their desired values, and the second argument is the same
// structure but with some fields either omitted or set to null wherever those
// fields should be commented out in the output.
//
// The function supports nested maps and lists. For maps, commenting can be
// applied selectively per key. For lists and scalars, commenting is applied to
// the entire value of the key when marked. Empty maps are rendered as `{}` and
// empty lists as `[]`. Comments attached to the nodes of full are kept.
func CommentedOut(full node.Node, masked node.Node) ([]byte, error) {
	var buf bytes.Buffer

	// If root is a map, emit keys in order.
	if fm, ok := full.(*node.Mapping); ok && !fm.IsEmpty() {
		writeComment(&buf, 0, fm.Comment())
		if !fm.Comment().IsEmpty() {
			buf.WriteByte('\n')
		}
		mm, _ := masked.(*node.Mapping)
		if err := emitMap(&buf, 0, fm, mm, isNull(masked)); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	// For non-map roots, render the entire document as one block, commented if
	// masked is null.
	b, err := printer.Print(full)
	if err != nil {
		return nil, err
	}
	writeIndentedBlock(&buf, 0, string(b), isNull(masked))
	return buf.Bytes(), nil
}

func emitMap(buf *bytes.Buffer, indent int, fm *node.Mapping, mm *node.Mapping, parentComment bool) error {
	for _, e := range fm.Entries() {
		var mv node.Node
		if mm != nil {
			mv = mm.Value(e.Key)
		}
		childComment := parentComment || isNull(mv)

		writeComment(buf, indent, e.Value.Comment())

		// Non-empty maps that are kept may need to selectively comment nested
		// keys, so handle them manually. Everything else is rendered as a
		// whole.
		fvm, isMap := e.Value.(*node.Mapping)
		if childComment || !isMap || fvm.IsEmpty() {
			if err := emitKeyAsBlock(buf, indent, e.Key, e.Value, childComment); err != nil {
				return err
			}
			continue
		}

		key, err := printer.Key(e.Key)
		if err != nil {
			return err
		}
		writeLine(buf, indent, false, key+":")
		mvMap, _ := mv.(*node.Mapping)
		if err := emitMap(buf, indent+2, fvm, mvMap, false); err != nil {
			return err
		}
	}
	return nil
}

// emitKeyAsBlock prints a single-key map {key: value}, then emits the
// resulting lines with the provided indentation and optional comment prefix.
func emitKeyAsBlock(buf *bytes.Buffer, indent int, key, value node.Node, comment bool) error {
	m, err := node.NewMappingBuilder().
		Add(key, node.WithComment(value, nil)).
		Build()
	if err != nil {
		return err
	}
	b, err := printer.Print(m)
	if err != nil {
		return err
	}
	writeIndentedBlock(buf, indent, string(b), comment)
	return nil
}

func writeComment(buf *bytes.Buffer, indent int, c node.Comment) {
	for _, l := range c {
		writeLine(buf, indent, true, l)
	}
}

func writeLine(buf *bytes.Buffer, indent int, comment bool, line string) {
	buf.WriteString(strings.Repeat(" ", indent))
	switch {
	case comment && line == "":
		buf.WriteString("#")
	case comment:
		buf.WriteString("# ")
	}
	buf.WriteString(line)
	buf.WriteByte('\n')
}

func writeIndentedBlock(buf *bytes.Buffer, indent int, block string, comment bool) {
	lines := strings.Split(strings.TrimRight(block, "\n"), "\n")
	for _, ln := range lines {
		if ln == "" && !comment {
			buf.WriteByte('\n')
			continue
		}
		writeLine(buf, indent, comment, ln)
	}
}

// isNull reports whether a masked value marks its branch as commented out.
func isNull(n node.Node) bool {
	if node.IsNil(n) {
		return true
	}
	s, ok := n.(*node.Scalar)
	return ok && s.IsNull()
}
