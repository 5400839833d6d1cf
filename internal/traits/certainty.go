package traits

import (
	"errors"
	"fmt"
)

// ErrNoSolution is returned when a goal definitely does not hold.
var ErrNoSolution = errors.New("no solution")

// MaybeCause says why a goal is neither proven nor disproven.
type MaybeCause struct {
	Overflow               bool
	SuggestIncreasingLimit bool
}

// Ambiguity is the MaybeCause of a genuinely ambiguous goal.
var Ambiguity = MaybeCause{}

// Overflow is the MaybeCause of a goal that hit the solver's depth limit.
func Overflow(suggestIncreasingLimit bool) MaybeCause {
	return MaybeCause{Overflow: true, SuggestIncreasingLimit: suggestIncreasingLimit}
}

func (m MaybeCause) String() string {
	if m.Overflow {
		return fmt.Sprintf("overflow(suggest_increasing_limit=%t)", m.SuggestIncreasingLimit)
	}
	return "ambiguity"
}

// Certainty is the outcome of a goal that did not definitely fail.
type Certainty struct {
	maybe bool
	cause MaybeCause
}

// Yes is the certainty of a proven goal.
var Yes = Certainty{}

// Maybe builds an uncertain outcome.
func Maybe(cause MaybeCause) Certainty {
	return Certainty{maybe: true, cause: cause}
}

func (c Certainty) IsYes() bool { return !c.maybe }

// MaybeCause returns the cause of an uncertain outcome.
func (c Certainty) MaybeCause() (MaybeCause, bool) {
	return c.cause, c.maybe
}

func (c Certainty) String() string {
	if !c.maybe {
		return "yes"
	}
	return "maybe(" + c.cause.String() + ")"
}

// Result is the recorded outcome of a goal or candidate: either a Certainty
// or a definite NoSolution.
type Result struct {
	NoSolution bool
	Certainty  Certainty
}

// Ok wraps a certainty.
func Ok(c Certainty) Result { return Result{Certainty: c} }

// Err is the NoSolution result.
func Err() Result { return Result{NoSolution: true} }

func (r Result) IsOk() bool { return !r.NoSolution }

func (r Result) IsErr() bool { return r.NoSolution }

// IsAmbiguity reports Ok(Maybe(Ambiguity)); overflow does not count.
func (r Result) IsAmbiguity() bool {
	if r.NoSolution {
		return false
	}
	cause, maybe := r.Certainty.MaybeCause()
	return maybe && !cause.Overflow
}

func (r Result) String() string {
	if r.NoSolution {
		return "Err(NoSolution)"
	}
	return "Ok(" + r.Certainty.String() + ")"
}
