package parser

import (
	"errors"
	"fmt"

	"github.com/inercia/go-yaml-tree/pkg/node"
)

var (
	ErrParse             = errors.New("parse error")
	ErrEmptyDocument     = fmt.Errorf("%w: empty document", ErrParse)
	ErrIndentation       = fmt.Errorf("%w: bad indentation", ErrParse)
	ErrTabIndentation    = fmt.Errorf("%w: tab in indentation", ErrParse)
	ErrUnclassified      = fmt.Errorf("%w: unexpected line", ErrParse)
	ErrUnterminatedQuote = fmt.Errorf("%w: unterminated quoted scalar", ErrParse)
	ErrDuplicateKey      = fmt.Errorf("%w: %w", ErrParse, node.ErrDuplicateKey)
)

// Error is a structural failure at a given line.
type Error struct {
	// Line is the 0-based number of the offending line.
	Line int
	// Text is the trimmed text of the offending line.
	Text string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line+1, e.Err, e.Text)
}

func (e *Error) Unwrap() error {
	return e.Err
}
