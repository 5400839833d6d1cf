package derive

import (
	"go.uber.org/zap"

	"github.com/funvibe/fulfill/internal/config"
	"github.com/funvibe/fulfill/internal/infer"
	"github.com/funvibe/fulfill/internal/inspect"
	"github.com/funvibe/fulfill/internal/traits"
	"github.com/funvibe/fulfill/internal/typesystem"
)

type flow = inspect.ControlFlow[traits.Obligation]

type childModeTag int

const (
	// Nested where-bounds are attributed to the parent trait predicate.
	modeTrait childModeTag = iota
	// Nested where-bounds and const conditions are attributed to the
	// parent host-effect predicate.
	modeHost
	// Nested goals keep the current cause.
	modePassThrough
)

type childMode struct {
	tag    childModeTag
	parent traits.Predicate
}

// bestObligation walks a proof tree looking for the most specific failing
// (or ambiguous) nested goal. obligation is the current best leaf; it is
// replaced while visiting a child and restored on the way back up.
type bestObligation struct {
	r                   *Refiner
	obligation          traits.Obligation
	considerAmbiguities bool
}

func (v *bestObligation) Span() traits.Span { return v.obligation.Span() }

func (v *bestObligation) withDerivedObligation(derived traits.Obligation, andThen func() flow) flow {
	old := v.obligation
	v.obligation = derived
	defer func() { v.obligation = old }()
	return andThen()
}

// isReason reports whether a nested result explains the outcome being
// refined.
func (v *bestObligation) isReason(result traits.Result) bool {
	if v.considerAmbiguities {
		return result.IsAmbiguity()
	}
	return result.IsErr()
}

func (v *bestObligation) VisitGoal(goal *inspect.InspectGoal) flow {
	candidates := v.nonTrivialCandidates(goal)
	if ce := v.r.logger.Check(zap.DebugLevel, "visit goal"); ce != nil {
		kinds := make([]string, len(candidates))
		for i, c := range candidates {
			kinds[i] = c.Kind().String()
		}
		ce.Write(
			zap.Stringer("goal", goal.Goal().Predicate),
			zap.Int("depth", goal.Depth()),
			zap.Stringer("result", goal.Result()),
			zap.Strings("candidates", kinds),
		)
	}

	// With zero or several plausible candidates there is no single cause
	// to blame.
	if len(candidates) != 1 {
		return inspect.Break(v.obligation)
	}
	candidate := candidates[0]

	// Impls marked as not to be recommended are never pointed at.
	if implID, ok := candidate.Kind().ImplID(); ok && v.r.db.DoNotRecommendImpl(implID) {
		return inspect.Break(v.obligation)
	}

	pred := goal.Goal().Predicate
	mode := childMode{tag: modePassThrough}
	switch kind := pred.SkipBinder().(type) {
	case traits.TraitPredicate:
		mode = childMode{tag: modeTrait, parent: pred}
	case traits.HostEffectPredicate:
		mode = childMode{tag: modeHost, parent: pred}
	case traits.NormalizesTo:
		if kind.Alias.IsProjection() {
			mode = childMode{tag: modeTrait, parent: pred.Rebind(traits.TraitPredicate{
				TraitRef: traits.ProjectionTraitRef(kind.Alias),
				Polarity: traits.Positive,
			})}
		}
	case traits.WellFormed:
		return v.visitWellFormedGoal(candidate, kind.Arg)
	}

	nestedGoals := candidate.InstantiateNestedGoals()

	// A failed fn-pointer bound says nothing useful about where-clauses, so
	// the current goal is the best explanation.
	if fnPtrTrait, ok := v.r.db.LangItem(config.FnPtrTraitLangItem); ok {
		for _, nested := range nestedGoals {
			if tp, ok := nested.Goal().Predicate.AsTraitClause(); ok &&
				tp.TraitRef.Trait == fnPtrTrait && nested.Result().IsErr() {
				return inspect.Break(v.obligation)
			}
		}
	}

	// Position among the candidate's where-bound goals; matches the index
	// of the declared requirement that produced it.
	implWhereBoundCount := 0
	for _, nested := range nestedGoals {
		source := nested.Source()
		var obligation traits.Obligation
		switch {
		case (mode.tag == modeTrait || mode.tag == modeHost) && source == inspect.SourceMisc:
			continue
		case mode.tag == modeTrait && source == inspect.SourceImplWhereBound:
			cause := v.r.deriveCause(candidate.Kind(), v.obligation.Cause, implWhereBoundCount, mode.parent)
			obligation = v.nestedObligation(nested, cause)
			implWhereBoundCount++
		case mode.tag == modeHost &&
			(source == inspect.SourceImplWhereBound || source == inspect.SourceAliasBoundConstCondition):
			cause := v.r.deriveHostCause(candidate.Kind(), v.obligation.Cause, implWhereBoundCount, mode.parent)
			obligation = v.nestedObligation(nested, cause)
			implWhereBoundCount++
		case source == inspect.SourceInstantiateHigherRanked:
			obligation = v.obligation
		default:
			obligation = v.nestedObligation(nested, v.obligation.Cause)
		}

		if ce := v.r.logger.Check(zap.DebugLevel, "nested goal"); ce != nil {
			ce.Write(
				zap.Stringer("goal", nested.Goal().Predicate),
				zap.Stringer("source", source),
				zap.Stringer("result", nested.Result()),
			)
		}
		if !v.isReason(nested.Result()) {
			continue
		}
		if f := v.withDerivedObligation(obligation, func() flow {
			return inspect.VisitWith(nested, v)
		}); f.IsBreak() {
			return f
		}
	}

	// Both sides of an alias relation must be well-formed; if that fails
	// it is a better explanation than the relation itself.
	if kind, ok := pred.NoBoundVars(); ok {
		if rel, ok := kind.(traits.AliasRelate); ok {
			infcx := goal.Infcx()
			for _, side := range []typesystem.Type{rel.LHS, rel.RHS} {
				wfGoal := goal.Goal().With(traits.WellFormed{Arg: side})
				f := infer.Probe(infcx, func(infer.Snapshot) flow {
					f := inspect.VisitProofTreeAtDepth(infcx, v.r.solver, wfGoal, goal.Depth()+1, v)
					if leaf, ok := f.BreakValue(); ok && !leaf.Equal(v.obligation) {
						return f
					}
					return inspect.Continue[traits.Obligation]()
				})
				if f.IsBreak() {
					return f
				}
			}
		}
	}

	return inspect.Break(v.obligation)
}

func (v *bestObligation) nestedObligation(nested *inspect.InspectGoal, cause traits.Cause) traits.Obligation {
	return traits.Obligation{
		Cause:          cause,
		Env:            nested.Goal().Env,
		Predicate:      nested.Goal().Predicate,
		RecursionDepth: v.obligation.RecursionDepth + 1,
	}
}
