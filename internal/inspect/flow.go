package inspect

// ControlFlow tells a tree walk whether to keep searching or to stop with a
// value.
type ControlFlow[B any] struct {
	value B
	brk   bool
}

// Continue keeps searching.
func Continue[B any]() ControlFlow[B] {
	return ControlFlow[B]{}
}

// Break stops the search with v.
func Break[B any](v B) ControlFlow[B] {
	return ControlFlow[B]{value: v, brk: true}
}

func (c ControlFlow[B]) IsBreak() bool { return c.brk }

// BreakValue returns the value the search stopped with.
func (c ControlFlow[B]) BreakValue() (B, bool) {
	return c.value, c.brk
}
