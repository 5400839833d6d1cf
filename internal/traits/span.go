package traits

import (
	"fmt"
	"strconv"
	"strings"
)

// Span is a source location. The zero Span means "no location".
type Span struct {
	File   string
	Line   int
	Column int
}

func (s Span) IsZero() bool {
	return s == Span{}
}

func (s Span) String() string {
	if s.IsZero() {
		return "<no span>"
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// ParseSpan reads the "file:line:col" form produced by String.
// An empty string yields the zero Span.
func ParseSpan(src string) (Span, error) {
	if src == "" {
		return Span{}, nil
	}
	parts := strings.Split(src, ":")
	if len(parts) < 3 {
		return Span{}, fmt.Errorf("invalid span %q: want file:line:col", src)
	}
	n := len(parts)
	line, err := strconv.Atoi(parts[n-2])
	if err != nil {
		return Span{}, fmt.Errorf("invalid span %q: line: %w", src, err)
	}
	col, err := strconv.Atoi(parts[n-1])
	if err != nil {
		return Span{}, fmt.Errorf("invalid span %q: column: %w", src, err)
	}
	return Span{File: strings.Join(parts[:n-2], ":"), Line: line, Column: col}, nil
}
