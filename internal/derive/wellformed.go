package derive

import (
	"github.com/funvibe/fulfill/internal/inspect"
	"github.com/funvibe/fulfill/internal/traits"
	"github.com/funvibe/fulfill/internal/typesystem"
	"github.com/funvibe/fulfill/internal/wf"
)

// visitWellFormedGoal looks for a failing requirement of arg's
// well-formedness. The solver records well-formedness as a single step, so
// the requirements are recomputed here and evaluated one by one.
func (v *bestObligation) visitWellFormedGoal(candidate *inspect.InspectCandidate, arg typesystem.Type) flow {
	goal := candidate.Goal()
	obligations, ok := wf.UnnormalizedObligations(goal.Infcx(), v.r.db, goal.Goal().Env, arg, v.Span(), v.obligation.Cause.BodyID)
	if !ok {
		return inspect.Break(v.obligation)
	}

	for _, obligation := range obligations {
		nested := candidate.InstantiateProofTreeForNestedGoal(inspect.SourceMisc, obligation.Goal())
		if !v.isReason(nested.Result()) {
			continue
		}
		derived := traits.Obligation{
			Cause:          v.obligation.Cause,
			Env:            nested.Goal().Env,
			Predicate:      nested.Goal().Predicate,
			RecursionDepth: v.obligation.RecursionDepth + 1,
		}
		if f := v.withDerivedObligation(derived, func() flow {
			return inspect.VisitWith(nested, v)
		}); f.IsBreak() {
			return f
		}
	}

	return inspect.Break(v.obligation)
}
