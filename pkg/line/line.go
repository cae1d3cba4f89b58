// Package line models the physical lines of a YAML document and the
// decorators the parser reads them through.
//
// A Line never changes its number. Decorators only rewrite how the text of a
// line is seen (comments removed, values memoized) and are composed by
// wrapping:
//
//	l := line.Cached(line.WithoutComment(line.New(0, "key: value # note")))
//	l.Trimmed() // "key: value"
package line

import (
	"cmp"
	"strings"
)

// Line is one physical line of text plus its 0-based position in the source.
type Line interface {
	// Number is the 0-based position of the line in the original document.
	Number() int
	// Text is the raw text of the line, without any decoration applied.
	Text() string
	// Trimmed is the text with surrounding whitespace removed, plus whatever
	// rewriting the decorators apply.
	Trimmed() string
	// Indentation is the count of leading spaces. Lines without content
	// report 0.
	Indentation() int
}

type rawLine struct {
	number int
	text   string
}

// New returns an undecorated line. A trailing carriage return is dropped.
func New(number int, text string) Line {
	return &rawLine{number: number, text: strings.TrimSuffix(text, "\r")}
}

func (l *rawLine) Number() int { return l.number }

func (l *rawLine) Text() string { return l.text }

func (l *rawLine) Trimmed() string { return strings.TrimSpace(l.text) }

func (l *rawLine) Indentation() int {
	if l.Trimmed() == "" {
		return 0
	}
	return leadingSpaces(l.text)
}

func (l *rawLine) String() string { return l.text }

type virtualLine struct {
	number      int
	indentation int
	text        string
}

// Virtual returns a line that reuses the number of an existing line but
// starts at another column. It is used for content that shares a physical
// line with a sequence marker, as in "- key: value".
func Virtual(number, indentation int, text string) Line {
	return &virtualLine{number: number, indentation: indentation, text: strings.TrimSpace(text)}
}

func (l *virtualLine) Number() int { return l.number }

func (l *virtualLine) Text() string { return strings.Repeat(" ", l.indentation) + l.text }

func (l *virtualLine) Trimmed() string { return l.text }

func (l *virtualLine) Indentation() int {
	if l.text == "" {
		return 0
	}
	return l.indentation
}

// Compare orders lines by number.
func Compare(a, b Line) int {
	return cmp.Compare(a.Number(), b.Number())
}

// IsBlank reports whether the line carries no structure: it is empty,
// whitespace only or, once decorated, a comment.
func IsBlank(l Line) bool {
	return l.Trimmed() == ""
}

// IsEmpty reports whether the raw text of the line is whitespace only.
func IsEmpty(l Line) bool {
	return strings.TrimSpace(l.Text()) == ""
}

// IsComment reports whether the raw text of the line is only a comment.
func IsComment(l Line) bool {
	return strings.HasPrefix(strings.TrimSpace(l.Text()), "#")
}

// CommentText returns the text of a comment-only line without the leading
// '#' and surrounding spaces.
func CommentText(l Line) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l.Text()), "#"))
}

// IsSequenceEntry reports whether the line starts a sequence entry.
func IsSequenceEntry(l Line) bool {
	return IsSequenceText(l.Trimmed())
}

// IsSequenceText reports whether s starts with a sequence marker.
func IsSequenceText(s string) bool {
	return s == "-" || strings.HasPrefix(s, "- ")
}

// TextIndentation counts the leading spaces of the raw text, comments and
// decoration notwithstanding.
func TextIndentation(l Line) int {
	return leadingSpaces(l.Text())
}

// HasTabIndentation reports whether a tab shows up before the first
// non-blank character of the raw text.
func HasTabIndentation(l Line) bool {
	for _, r := range l.Text() {
		switch r {
		case ' ':
		case '\t':
			return true
		default:
			return false
		}
	}
	return false
}

func leadingSpaces(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}
