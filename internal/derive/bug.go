package derive

import (
	"fmt"

	"github.com/funvibe/fulfill/internal/traits"
)

// BugError is the panic value for states that cannot arise unless the
// solver or this package is wrong.
type BugError struct {
	Span traits.Span
	Msg  string
}

func (e *BugError) Error() string {
	return fmt.Sprintf("internal error at %s: %s", e.Span, e.Msg)
}

func spanBug(span traits.Span, format string, args ...any) {
	panic(&BugError{Span: span, Msg: fmt.Sprintf(format, args...)})
}
