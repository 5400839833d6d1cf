package derive

import (
	"slices"

	"github.com/funvibe/fulfill/internal/infer"
	"github.com/funvibe/fulfill/internal/inspect"
)

// nonTrivialCandidates filters out the candidates that aren't interesting
// to visit for error reporting. For ambiguities only candidates that may
// hold are kept. For errors, candidates are kept only when a where-bound
// style nested goal also fails, and rigid-alias fallbacks lose to anything
// else.
func (v *bestObligation) nonTrivialCandidates(goal *inspect.InspectGoal) []*inspect.InspectCandidate {
	candidates := goal.Candidates()
	if v.considerAmbiguities {
		// Any candidate that holds may still be chosen once inference
		// progresses, so all of them matter.
		return slices.DeleteFunc(candidates, func(c *inspect.InspectCandidate) bool {
			return !c.Result().IsOk()
		})
	}

	if len(candidates) > 1 {
		candidates = slices.DeleteFunc(candidates, func(c *inspect.InspectCandidate) bool {
			return !infer.Probe(goal.Infcx(), func(infer.Snapshot) bool {
				for _, nested := range c.InstantiateNestedGoals() {
					if isStructuralSource(nested.Source()) && v.isReason(nested.Result()) {
						return true
					}
				}
				return false
			})
		})
	}

	if len(candidates) > 1 {
		candidates = slices.DeleteFunc(candidates, func(c *inspect.InspectCandidate) bool {
			return c.Kind().IsRigidAlias()
		})
	}
	return candidates
}

func isStructuralSource(source inspect.GoalSource) bool {
	switch source {
	case inspect.SourceImplWhereBound,
		inspect.SourceAliasBoundConstCondition,
		inspect.SourceInstantiateHigherRanked,
		inspect.SourceAliasWellFormed:
		return true
	}
	return false
}
