// Package parser turns YAML text into node trees.
//
// There is no tokenizer: the parser looks at one block of lines at a time,
// infers from its first line whether the block is a sequence, a mapping or a
// scalar, splits it into entries at the block indentation and recurses into
// the lines nested under each entry.
package parser

import (
	"io"
	"strings"

	"github.com/inercia/go-yaml-tree/pkg/line"
	"github.com/inercia/go-yaml-tree/pkg/node"
)

type parser struct {
	doc *line.Collection
	// comment lines already attached to the document root
	claimed map[int]bool
}

// Parse builds the tree described by the lines of c. The lines are expected
// to be decorated the way line.Split does it.
func Parse(c *line.Collection) (node.Node, error) {
	p := &parser{doc: c, claimed: map[int]bool{}}
	return p.document()
}

// ParseString parses a YAML document.
func ParseString(s string) (node.Node, error) {
	return Parse(line.Split(s))
}

// ParseBytes parses a YAML document.
func ParseBytes(b []byte) (node.Node, error) {
	return ParseString(string(b))
}

// ParseReader reads r to the end and parses what it read.
func ParseReader(r io.Reader) (node.Node, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseBytes(b)
}

func (p *parser) document() (node.Node, error) {
	body := p.doc
	structural := body.Structural()
	if len(structural) == 0 {
		return nil, &Error{Line: 0, Err: ErrEmptyDocument}
	}
	var comment node.Comment
	if marker := structural[0]; marker.Trimmed() == "---" {
		// comments above the marker belong to the root, the ones below it to
		// the first entry
		body = body.Slice(body.Index(marker.Number())+1, body.Len())
		structural = structural[1:]
		if len(structural) == 0 {
			return nil, fail(marker, ErrEmptyDocument)
		}
		comment = p.documentComment(marker, false)
	} else {
		comment = p.documentComment(structural[0], true)
	}
	root, err := p.block(body)
	if err != nil {
		return nil, err
	}
	return node.WithComment(root, comment), nil
}

// documentComment collects the comment groups found above the first line of
// the document. They belong to the root, except that when split is set and
// there is more than one group the group touching the first line is left for
// the first entry.
func (p *parser) documentComment(first line.Line, split bool) node.Comment {
	var groups [][]line.Line
	var cur []line.Line
	for i := 0; i < p.doc.Len(); i++ {
		l := p.doc.At(i)
		if l.Number() >= first.Number() {
			break
		}
		if line.IsComment(l) {
			cur = append(cur, l)
			continue
		}
		if len(cur) > 0 {
			groups = append(groups, cur)
			cur = nil
		}
	}
	adjacent := len(cur) > 0
	if adjacent {
		groups = append(groups, cur)
	}
	if split && len(groups) > 1 && adjacent {
		groups = groups[:len(groups)-1]
	}
	var res node.Comment
	for _, g := range groups {
		for _, l := range g {
			res = append(res, line.CommentText(l))
			p.claimed[l.Number()] = true
		}
	}
	return res
}

// commentAbove returns the comment lines right above l, at the same
// indentation and not separated from it by blank lines.
func (p *parser) commentAbove(l line.Line) node.Comment {
	i := p.doc.Index(l.Number())
	if i < 0 {
		return nil
	}
	indent := l.Indentation()
	start := i
	for j := i - 1; j >= 0; j-- {
		c := p.doc.At(j)
		if !line.IsComment(c) || p.claimed[c.Number()] || line.TextIndentation(c) != indent {
			break
		}
		start = j
	}
	var res node.Comment
	for j := start; j < i; j++ {
		res = append(res, line.CommentText(p.doc.At(j)))
	}
	return res
}

// block parses a run of lines into one node. The first non-blank line sets
// the indentation of the block and tells its kind.
func (p *parser) block(c *line.Collection) (node.Node, error) {
	lines := c.Structural()
	if len(lines) == 0 {
		return node.NewNull(), nil
	}
	first := lines[0]
	base := first.Indentation()
	for _, l := range lines {
		if l.Indentation() < base {
			return nil, fail(l, ErrIndentation)
		}
		if l.Indentation() == base && line.HasTabIndentation(l) {
			return nil, fail(l, ErrTabIndentation)
		}
	}
	switch {
	case line.IsSequenceEntry(first):
		return p.sequence(c, lines, base)
	case isMappingEntry(first.Trimmed()):
		return p.mapping(c, lines, base)
	}
	return p.scalarBlock(c, lines)
}

func (p *parser) sequence(c *line.Collection, lines []line.Line, base int) (node.Node, error) {
	var items []node.Node
	for _, l := range lines {
		if l.Indentation() != base {
			continue
		}
		if !line.IsSequenceEntry(l) {
			return nil, fail(l, ErrUnclassified)
		}
		item, err := p.item(c, l)
		if err != nil {
			return nil, err
		}
		items = append(items, node.WithComment(item, p.commentAbove(l)))
	}
	return node.NewSequence(items)
}

func (p *parser) item(c *line.Collection, l line.Line) (node.Node, error) {
	t := l.Trimmed()
	rest := strings.TrimLeft(t[1:], " ")
	if rest == "" {
		return p.block(c.Nested(l.Number()))
	}
	if _, ok := parseHeader(rest); !ok && (line.IsSequenceText(rest) || isMappingEntry(rest)) {
		// content sharing the line with the marker starts a block of its
		// own at the column it was written at
		v := line.Virtual(l.Number(), l.Indentation()+len(t)-len(rest), rest)
		lines := append([]line.Line{v}, c.Nested(l.Number()).Lines()...)
		return p.block(line.NewCollection(lines...))
	}
	return p.inline(c, l, rest)
}

func (p *parser) mapping(c *line.Collection, lines []line.Line, base int) (node.Node, error) {
	var entries []node.Entry
	seen := map[string]bool{}
	consumed := -1
	for _, l := range lines {
		if l.Indentation() != base || l.Number() <= consumed {
			continue
		}
		if line.IsSequenceEntry(l) {
			return nil, fail(l, ErrUnclassified)
		}
		k, rest, ok := splitEntry(l.Trimmed())
		if !ok {
			return nil, fail(l, ErrUnclassified)
		}
		key, err := unquote(k)
		if err != nil {
			return nil, fail(l, err)
		}
		if seen[key] {
			return nil, fail(l, ErrDuplicateKey)
		}
		seen[key] = true

		value, last, err := p.mappingValue(c, l, rest)
		if err != nil {
			return nil, err
		}
		consumed = last
		entries = append(entries, node.Entry{
			Key:   node.NewScalar(key),
			Value: node.WithComment(value, p.commentAbove(l)),
		})
	}
	return node.NewMapping(entries)
}

// mappingValue parses the value of the entry at l and returns the number of
// the last line it used.
func (p *parser) mappingValue(c *line.Collection, l line.Line, rest string) (node.Node, int, error) {
	if rest != "" {
		v, err := p.inline(c, l, rest)
		return v, l.Number(), err
	}
	if nested := c.Nested(l.Number()); nested.Len() > 0 {
		v, err := p.block(nested)
		return v, l.Number(), err
	}
	if seq := c.IndentlessSequence(l.Number()); seq.Len() > 0 {
		v, err := p.block(seq)
		return v, seq.At(seq.Len() - 1).Number(), err
	}
	return node.NewNull(), l.Number(), nil
}

// inline parses a value written on the same line as its key or sequence
// marker. Plain values may continue on the nested lines.
func (p *parser) inline(c *line.Collection, l line.Line, rest string) (node.Node, error) {
	if h, ok := parseHeader(rest); ok {
		return p.blockScalar(c, l, h)
	}
	v, err := scalar(l, rest)
	if err != nil {
		return nil, err
	}
	nested := c.Nested(l.Number())
	more := nested.Structural()
	if len(more) == 0 {
		return v, nil
	}
	if s, ok := v.(*node.Scalar); !ok || s.IsNull() || isQuoted(rest) {
		return nil, fail(more[0], ErrIndentation)
	}
	for _, m := range more {
		if line.IsSequenceEntry(m) || isMappingEntry(m.Trimmed()) {
			return nil, fail(m, ErrIndentation)
		}
	}
	return node.NewScalar(fold(plainLines(rest, nested))), nil
}

// scalarBlock parses a block that is neither a sequence nor a mapping.
func (p *parser) scalarBlock(c *line.Collection, lines []line.Line) (node.Node, error) {
	first := lines[0]
	if h, ok := parseHeader(first.Trimmed()); ok {
		return p.blockScalar(c, first, h)
	}
	if len(lines) == 1 {
		return scalar(first, first.Trimmed())
	}
	for _, l := range lines[1:] {
		if line.IsSequenceEntry(l) || isMappingEntry(l.Trimmed()) {
			return nil, fail(l, ErrUnclassified)
		}
	}
	if v, err := scalar(first, first.Trimmed()); err != nil {
		return nil, err
	} else if s, ok := v.(*node.Scalar); !ok || s.IsNull() || isQuoted(first.Trimmed()) {
		return nil, fail(lines[1], ErrUnclassified)
	}
	i := c.Index(first.Number())
	return node.NewScalar(fold(plainLines(first.Trimmed(), c.Slice(i+1, c.Len())))), nil
}

// scalar interprets a single line of scalar text.
func scalar(l line.Line, s string) (node.Node, error) {
	switch s {
	case "~":
		return node.NewNull(), nil
	case "{}":
		return node.EmptyMapping(), nil
	case "[]":
		return node.EmptySequence(), nil
	}
	v, err := unquote(s)
	if err != nil {
		return nil, fail(l, err)
	}
	return node.NewScalar(v), nil
}

// plainLines returns first followed by the text of the lines in c, empty
// lines kept as "" and comment lines left out. Trailing empty lines are
// dropped.
func plainLines(first string, c *line.Collection) []string {
	res := []string{first}
	for _, l := range c.Lines() {
		switch {
		case line.IsEmpty(l):
			res = append(res, "")
		case line.IsComment(l):
		default:
			res = append(res, l.Trimmed())
		}
	}
	for len(res) > 1 && res[len(res)-1] == "" {
		res = res[:len(res)-1]
	}
	return res
}

func fail(l line.Line, err error) error {
	return &Error{Line: l.Number(), Text: l.Trimmed(), Err: err}
}
