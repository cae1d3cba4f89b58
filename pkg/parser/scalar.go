package parser

import (
	"strconv"
	"strings"

	"github.com/inercia/go-yaml-tree/pkg/line"
	"github.com/inercia/go-yaml-tree/pkg/node"
)

// header is the indicator line of a block scalar: '|' or '>' followed by an
// optional chomping indicator and indentation digit.
type header struct {
	folded bool
	keep   bool
	indent int
}

func parseHeader(s string) (header, bool) {
	if s == "" || (s[0] != '|' && s[0] != '>') {
		return header{}, false
	}
	h := header{folded: s[0] == '>'}
	for _, r := range s[1:] {
		switch {
		case r == '+':
			h.keep = true
		case r == '-':
		case r >= '1' && r <= '9':
			h.indent = int(r - '0')
		default:
			return header{}, false
		}
	}
	return h, true
}

// blockScalar reads the lines nested under origin verbatim. The smallest
// indentation among them is removed; literal blocks keep the line breaks,
// folded blocks join lines with spaces and turn empty lines into breaks.
// Trailing line breaks are dropped unless the header asks to keep them.
//
// Content is read from the whole document: the block c was cut from has
// already lost the comment-like lines closing it.
func (p *parser) blockScalar(c *line.Collection, origin line.Line, h header) (node.Node, error) {
	content := p.doc.Verbatim(origin.Number(), origin.Indentation())
	if err := orphans(c.Nested(origin.Number()), content); err != nil {
		return nil, err
	}
	lines := content.Lines()

	strip := -1
	if h.indent > 0 {
		strip = origin.Indentation() + h.indent
	} else {
		for _, l := range lines {
			if n := line.TextIndentation(l); !line.IsEmpty(l) && (strip < 0 || n < strip) {
				strip = n
			}
		}
	}
	texts := make([]string, len(lines))
	for i, l := range lines {
		if line.IsEmpty(l) {
			continue
		}
		texts[i] = l.Text()[min(strip, line.TextIndentation(l)):]
	}

	var v string
	if h.folded {
		v = fold(texts)
	} else {
		v = strings.Join(texts, "\n")
	}
	if h.keep {
		v += "\n"
		if n := len(lines); n > 0 {
			v += strings.Repeat("\n", p.doc.EmptyAfter(lines[n-1].Number()))
		}
	}
	return node.NewScalar(v), nil
}

// orphans fails when structural lines nested under a block scalar header are
// not part of its content, which happens when a less indented comment cuts
// the block short.
func orphans(nested, content *line.Collection) error {
	last := -1
	if content.Len() > 0 {
		last = content.At(content.Len() - 1).Number()
	}
	for _, l := range nested.Structural() {
		if l.Number() > last {
			return fail(l, ErrIndentation)
		}
	}
	return nil
}

// fold joins lines with single spaces. Every empty line becomes a line
// break.
func fold(lines []string) string {
	var b strings.Builder
	text := false
	for _, s := range lines {
		if s == "" {
			b.WriteByte('\n')
			text = false
			continue
		}
		if text {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		text = true
	}
	return b.String()
}

// splitEntry splits "key: value" at the first colon that is followed by a
// space or ends the text. A quoted key is skipped over as a whole.
func splitEntry(s string) (key, rest string, ok bool) {
	i := 0
	if isQuoted(s) {
		end := line.QuoteEnd(s, 0)
		if end < 0 {
			return "", "", false
		}
		i = end + 1
	}
	for ; i < len(s); i++ {
		if s[i] != ':' {
			continue
		}
		if i+1 == len(s) || s[i+1] == ' ' || s[i+1] == '\t' {
			key = strings.TrimSpace(s[:i])
			if key == "" {
				return "", "", false
			}
			return key, strings.TrimSpace(s[i+1:]), true
		}
	}
	return "", "", false
}

func isMappingEntry(s string) bool {
	_, _, ok := splitEntry(s)
	return ok
}

func isQuoted(s string) bool {
	return s != "" && (s[0] == '"' || s[0] == '\'')
}

// unquote returns the value of a possibly quoted scalar. The closing quote
// must end the text.
func unquote(s string) (string, error) {
	if !isQuoted(s) {
		return s, nil
	}
	if line.QuoteEnd(s, 0) != len(s)-1 {
		return "", ErrUnterminatedQuote
	}
	inner := s[1 : len(s)-1]
	if s[0] == '\'' {
		return strings.ReplaceAll(inner, "''", "'"), nil
	}
	return unescape(inner), nil
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '"', '\\', '/', ' ':
			b.WriteByte(s[i])
		case 'x':
			if i+2 < len(s) {
				if n, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
					b.WriteByte(byte(n))
					i += 2
					continue
				}
			}
			b.WriteString(`\x`)
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
