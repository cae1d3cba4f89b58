package line

import (
	"slices"
	"sort"
	"strings"
)

// Collection is an ordered set of lines in document order. Sub-collections
// returned by Nested and friends share the backing array of their parent and
// keep the original line numbers.
type Collection struct {
	lines []Line
}

// NewCollection returns a collection holding lines, sorted by number.
func NewCollection(lines ...Line) *Collection {
	ls := slices.Clone(lines)
	slices.SortStableFunc(ls, Compare)
	return &Collection{lines: ls}
}

// Split breaks text into lines and decorates each of them the way the parser
// expects: comments stripped, results cached.
func Split(text string) *Collection {
	raw := strings.Split(text, "\n")
	if len(raw) > 0 && raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	lines := make([]Line, len(raw))
	for i, s := range raw {
		lines[i] = Cached(WithoutComment(New(i, s)))
	}
	return &Collection{lines: lines}
}

// Len returns the number of lines.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.lines)
}

// At returns the i-th line of the collection.
func (c *Collection) At(i int) Line {
	return c.lines[i]
}

// Lines returns a copy of the lines in document order.
func (c *Collection) Lines() []Line {
	if c == nil {
		return nil
	}
	return slices.Clone(c.lines)
}

// Index returns the position of the line with the given number, or -1.
func (c *Collection) Index(number int) int {
	if c == nil {
		return -1
	}
	i := sort.Search(len(c.lines), func(i int) bool { return c.lines[i].Number() >= number })
	if i < len(c.lines) && c.lines[i].Number() == number {
		return i
	}
	return -1
}

// Line returns the line with the given number.
func (c *Collection) Line(number int) (Line, bool) {
	i := c.Index(number)
	if i < 0 {
		return nil, false
	}
	return c.lines[i], true
}

// Structural returns the lines that are not blank.
func (c *Collection) Structural() []Line {
	if c == nil {
		return nil
	}
	var res []Line
	for _, l := range c.lines {
		if !IsBlank(l) {
			res = append(res, l)
		}
	}
	return res
}

// Nested returns the lines nested under the line numbered origin: the run
// right after it made of blank lines and lines indented deeper than origin.
// The run stops at the first non-blank line indented no deeper than origin,
// and trailing blank lines are left out. An unknown origin, or one at the
// end of the collection, yields an empty collection.
func (c *Collection) Nested(origin int) *Collection {
	i := c.Index(origin)
	if i < 0 {
		return &Collection{}
	}
	indent := c.lines[i].Indentation()
	end := i + 1
	for j := i + 1; j < len(c.lines); j++ {
		l := c.lines[j]
		if IsBlank(l) {
			continue
		}
		if l.Indentation() <= indent {
			break
		}
		end = j + 1
	}
	return c.sub(i+1, end)
}

// Verbatim returns the content of a block scalar whose header sits on the
// line numbered origin, for a parent node at column indent. Only lines that
// are empty in the raw text are transparent and indentation is measured on
// the raw text, so lines that look like comments are content. Trailing empty
// lines are left out; EmptyAfter counts them.
func (c *Collection) Verbatim(origin, indent int) *Collection {
	i := c.Index(origin)
	if i < 0 {
		return &Collection{}
	}
	end := i + 1
	for j := i + 1; j < len(c.lines); j++ {
		l := c.lines[j]
		if IsEmpty(l) {
			continue
		}
		if TextIndentation(l) <= indent {
			break
		}
		end = j + 1
	}
	return c.sub(i+1, end)
}

// EmptyAfter counts the lines right after the line numbered number that are
// empty in the raw text.
func (c *Collection) EmptyAfter(number int) int {
	i := c.Index(number)
	if i < 0 {
		return 0
	}
	n := 0
	for _, l := range c.lines[i+1:] {
		if !IsEmpty(l) {
			break
		}
		n++
	}
	return n
}

// IndentlessSequence returns the sequence written at the same indentation as
// the line numbered origin, as in
//
//	key:
//	- a
//	- b
//
// The result holds the "-" lines at the origin indentation together with the
// lines nested under them. It is empty unless the first non-blank line after
// origin is such a "-" line.
func (c *Collection) IndentlessSequence(origin int) *Collection {
	i := c.Index(origin)
	if i < 0 {
		return &Collection{}
	}
	indent := c.lines[i].Indentation()
	end := i + 1
	for j := i + 1; j < len(c.lines); j++ {
		l := c.lines[j]
		if IsBlank(l) {
			continue
		}
		if l.Indentation() < indent {
			break
		}
		if l.Indentation() == indent {
			if !IsSequenceEntry(l) {
				break
			}
		} else if end == i+1 {
			break
		}
		end = j + 1
	}
	return c.sub(i+1, end)
}

// Slice returns the lines at positions [from, to).
func (c *Collection) Slice(from, to int) *Collection {
	if c == nil {
		return &Collection{}
	}
	from = max(0, min(from, len(c.lines)))
	to = max(from, min(to, len(c.lines)))
	return c.sub(from, to)
}

func (c *Collection) sub(from, to int) *Collection {
	return &Collection{lines: c.lines[from:to:to]}
}
