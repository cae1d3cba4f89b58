// Package printer renders node trees as YAML text that the parser reads
// back into an equal tree.
//
// Output uses 2-space indentation and block style only. Comments are written
// as "# text" lines right above the entry they belong to; the root comment
// comes first, separated from the body by a blank line, or by a "---" marker
// when the first entry carries a comment of its own.
package printer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/inercia/go-yaml-tree/pkg/node"
)

var (
	// ErrUnsupportedKey is returned for mapping keys that are not non-null
	// scalars.
	ErrUnsupportedKey = errors.New("unsupported mapping key")
)

const indentStep = 2

// Print renders n.
func Print(n node.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := Fprint(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Fprint renders n into w.
func Fprint(w io.Writer, n node.Node) error {
	if node.IsNil(n) {
		return fmt.Errorf("%w: nil root", node.ErrInvalidNode)
	}
	p := &printer{}
	if err := p.document(n); err != nil {
		return err
	}
	_, err := io.WriteString(w, p.b.String())
	return err
}

// Key returns the text a mapping key is written as.
func Key(k node.Node) (string, error) {
	s, ok := k.(*node.Scalar)
	if !ok || s == nil || s.IsNull() {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedKey, k)
	}
	v := s.Value()
	if strings.Contains(v, "\n") || needsQuoting(v) {
		return quote(v), nil
	}
	return v, nil
}

type printer struct {
	b strings.Builder
}

func (p *printer) document(n node.Node) error {
	c := n.Comment()
	first := firstChild(n)
	p.comment(c, 0)
	switch {
	case first != nil && !first.Comment().IsEmpty():
		p.b.WriteString("---\n")
	case !c.IsEmpty():
		p.b.WriteString("\n")
	}

	switch v := n.(type) {
	case *node.Scalar:
		if v.IsNull() {
			p.b.WriteString("~\n")
			return nil
		}
		p.scalar(v.Value(), indentStep)
		return nil
	case *node.Mapping:
		if v.IsEmpty() {
			p.b.WriteString("{}\n")
			return nil
		}
		return p.mapping(v, 0)
	case *node.Sequence:
		if v.IsEmpty() {
			p.b.WriteString("[]\n")
			return nil
		}
		return p.sequence(v, 0)
	}
	return fmt.Errorf("%w: %T", node.ErrInvalidNode, n)
}

func (p *printer) mapping(m *node.Mapping, indent int) error {
	for _, e := range m.Entries() {
		key, err := Key(e.Key)
		if err != nil {
			return err
		}
		p.comment(e.Value.Comment(), indent)
		p.pad(indent)
		p.b.WriteString(key)
		p.b.WriteByte(':')
		if err := p.value(e.Value, indent); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) sequence(s *node.Sequence, indent int) error {
	for _, it := range s.Values() {
		p.comment(it.Comment(), indent)
		p.pad(indent)
		p.b.WriteByte('-')
		if err := p.value(it, indent); err != nil {
			return err
		}
	}
	return nil
}

// value writes what follows a "key:" or "-" marker written at indent.
func (p *printer) value(n node.Node, indent int) error {
	switch v := n.(type) {
	case *node.Scalar:
		if v.IsNull() {
			p.b.WriteByte('\n')
			return nil
		}
		p.b.WriteByte(' ')
		p.scalar(v.Value(), indent+indentStep)
	case *node.Mapping:
		if v.IsEmpty() {
			p.b.WriteString(" {}\n")
			return nil
		}
		p.b.WriteByte('\n')
		return p.mapping(v, indent+indentStep)
	case *node.Sequence:
		if v.IsEmpty() {
			p.b.WriteString(" []\n")
			return nil
		}
		p.b.WriteByte('\n')
		return p.sequence(v, indent+indentStep)
	default:
		return fmt.Errorf("%w: %T", node.ErrInvalidNode, n)
	}
	return nil
}

// scalar writes a non-null value and the line break after it. Block content
// goes at indent.
func (p *printer) scalar(v string, indent int) {
	if header, body, ok := literal(v); ok {
		p.b.WriteString(header)
		p.b.WriteByte('\n')
		for _, l := range strings.Split(body, "\n") {
			if l != "" {
				p.pad(indent)
				p.b.WriteString(l)
			}
			p.b.WriteByte('\n')
		}
		return
	}
	if strings.Contains(v, "\n") || needsQuoting(v) {
		p.b.WriteString(quote(v))
	} else {
		p.b.WriteString(v)
	}
	p.b.WriteByte('\n')
}

func (p *printer) comment(c node.Comment, indent int) {
	if c.IsEmpty() {
		return
	}
	for _, l := range strings.Split(c.String(), "\n") {
		p.pad(indent)
		if l == "" {
			p.b.WriteString("#\n")
			continue
		}
		p.b.WriteString("# ")
		p.b.WriteString(l)
		p.b.WriteByte('\n')
	}
}

func (p *printer) pad(indent int) {
	for i := 0; i < indent; i++ {
		p.b.WriteByte(' ')
	}
}

func firstChild(n node.Node) node.Node {
	switch v := n.(type) {
	case *node.Mapping:
		if es := v.Entries(); len(es) > 0 {
			return es[0].Value
		}
	case *node.Sequence:
		return v.At(0)
	}
	return nil
}
