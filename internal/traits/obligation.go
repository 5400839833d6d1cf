package traits

import "fmt"

// Obligation is a goal together with the reason it must hold and how deep
// in a derivation it was produced.
type Obligation struct {
	Cause          Cause
	Env            Env
	Predicate      Predicate
	RecursionDepth int
}

// NewObligation builds a root obligation at depth zero.
func NewObligation(cause Cause, env Env, pred Predicate) Obligation {
	return Obligation{Cause: cause, Env: env, Predicate: pred}
}

// Goal drops the cause and depth.
func (o Obligation) Goal() Goal {
	return Goal{Predicate: o.Predicate, Env: o.Env}
}

// Span is the location the obligation is reported at.
func (o Obligation) Span() Span { return o.Cause.Span }

// Equal compares obligations by their printed predicate, environment,
// depth and full cause chain.
func (o Obligation) Equal(other Obligation) bool {
	return o.RecursionDepth == other.RecursionDepth &&
		o.Predicate.String() == other.Predicate.String() &&
		o.Env.String() == other.Env.String() &&
		o.Cause.String() == other.Cause.String()
}

func (o Obligation) String() string {
	return fmt.Sprintf("Obligation(%s, depth=%d)", o.Predicate, o.RecursionDepth)
}
