package line

import "strings"

type uncommented struct {
	Line
}

// WithoutComment decorates l so that Trimmed drops a trailing comment. A
// '#' only starts a comment at the beginning of the text or after
// whitespace, outside quotes and when not escaped with a backslash. A line
// that is only a comment trims to "" and reports indentation 0.
func WithoutComment(l Line) Line {
	return &uncommented{Line: l}
}

func (u *uncommented) Trimmed() string {
	return strings.TrimSpace(StripComment(u.Line.Trimmed()))
}

func (u *uncommented) Indentation() int {
	if u.Trimmed() == "" {
		return 0
	}
	return u.Line.Indentation()
}

// StripComment removes the comment at the end of s, if any.
func StripComment(s string) string {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			if !opensToken(s, i) {
				continue
			}
			if end := QuoteEnd(s, i); end > 0 {
				i = end
			}
		case '#':
			if i == 0 || s[i-1] == ' ' || s[i-1] == '\t' {
				return s[:i]
			}
		}
	}
	return s
}

// QuoteEnd returns the index of the quote closing the one at s[open], or -1
// when the quoted region is not terminated on this line. Double quotes honor
// backslash escapes and single quotes honor the doubled '' form.
func QuoteEnd(s string, open int) int {
	q := s[open]
	for j := open + 1; j < len(s); j++ {
		switch {
		case q == '"' && s[j] == '\\':
			j++
		case s[j] == q:
			if q == '\'' && j+1 < len(s) && s[j+1] == '\'' {
				j++
				continue
			}
			return j
		}
	}
	return -1
}

// opensToken reports whether a quote at s[i] can open a quoted scalar: only
// the start of a token can, so the apostrophe in "isn't" is a plain
// character.
func opensToken(s string, i int) bool {
	if i == 0 {
		return true
	}
	switch s[i-1] {
	case ' ', '\t', ':', '-', '[', '{', ',':
		return true
	}
	return false
}
