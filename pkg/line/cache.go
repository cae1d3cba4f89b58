package line

import "sync/atomic"

type cached struct {
	Line
	trimmed     atomic.Pointer[string]
	indentation atomic.Int64
}

// Cached memoizes Trimmed and Indentation of l. It must be the outermost
// decorator so that it caches the final rewritten values. Concurrent first
// calls may compute the value twice; both store the same result.
func Cached(l Line) Line {
	c := &cached{Line: l}
	c.indentation.Store(-1)
	return c
}

func (c *cached) Trimmed() string {
	if p := c.trimmed.Load(); p != nil {
		return *p
	}
	s := c.Line.Trimmed()
	c.trimmed.Store(&s)
	return s
}

func (c *cached) Indentation() int {
	if n := c.indentation.Load(); n >= 0 {
		return int(n)
	}
	n := c.Line.Indentation()
	c.indentation.Store(int64(n))
	return n
}
