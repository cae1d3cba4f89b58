package printer

import (
	"fmt"
	"strings"
)

// needsQuoting reports whether a single-line value would not read back as
// itself when written plain.
func needsQuoting(v string) bool {
	switch v {
	case "", "~", "{}", "[]", "---", "-":
		return true
	}
	if strings.HasPrefix(v, "- ") || strings.ContainsRune("?:,[]{}#&*!|>'\"%@`", rune(v[0])) {
		return true
	}
	if strings.TrimSpace(v) != v {
		return true
	}
	if strings.HasSuffix(v, ":") ||
		strings.Contains(v, ": ") || strings.Contains(v, ":\t") ||
		strings.Contains(v, " #") || strings.Contains(v, "\t#") {
		return true
	}
	return hasControl(v, '\t')
}

func hasControl(v string, allowed ...byte) bool {
	for i := 0; i < len(v); i++ {
		c := v[i]
		if (c < 0x20 || c == 0x7f) && !strings.ContainsRune(string(allowed), rune(c)) {
			return true
		}
	}
	return false
}

// quote writes v as a double-quoted scalar.
func quote(v string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(v); i++ {
		switch c := v[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, c)
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// literal returns the block scalar header and body v can be written with,
// if any. A single trailing line break is kept with '+', none with '-'; the
// indentation indicator is added when no line starts at the block column.
func literal(v string) (header, body string, ok bool) {
	body, keep := v, false
	if strings.HasSuffix(body, "\n") {
		body, keep = strings.TrimSuffix(body, "\n"), true
	}
	if !strings.Contains(body, "\n") || strings.HasSuffix(body, "\n") {
		return "", "", false
	}
	if hasControl(body, '\t', '\n') {
		return "", "", false
	}
	indented := true
	for _, l := range strings.Split(body, "\n") {
		if l == "" {
			continue
		}
		if strings.TrimSpace(l) == "" {
			return "", "", false
		}
		if l[0] != ' ' {
			indented = false
		}
	}
	header = "|"
	if indented {
		header += "2"
	}
	if keep {
		header += "+"
	} else {
		header += "-"
	}
	return header, body, true
}
