package derive

import (
	"errors"

	"go.uber.org/zap"

	"github.com/funvibe/fulfill/internal/infer"
	"github.com/funvibe/fulfill/internal/inspect"
	"github.com/funvibe/fulfill/internal/traits"
)

// FulfillmentErrorForNoSolution reports a root obligation that definitely
// does not hold, blaming the most specific failing nested goal.
func (r *Refiner) FulfillmentErrorForNoSolution(root traits.Obligation) traits.FulfillmentError {
	obligation := r.FindBestLeafObligation(root, false)
	code := r.noSolutionCode(obligation)
	r.logger.Debug("no solution",
		zap.Stringer("root", root.Predicate),
		zap.Stringer("leaf", obligation.Predicate),
		zap.Stringer("code", code),
	)
	return traits.FulfillmentError{Obligation: obligation, Code: code, RootObligation: root}
}

// FulfillmentErrorForStalled reports a root obligation that could not be
// decided. The root is re-evaluated to tell ambiguity from overflow; only
// genuine ambiguity is refined to a nested goal.
func (r *Refiner) FulfillmentErrorForStalled(root traits.Obligation) traits.FulfillmentError {
	type outcome struct {
		code   traits.FulfillmentErrorCode
		refine bool
	}
	out := infer.Probe(r.infcx, func(infer.Snapshot) outcome {
		certainty, err := r.solver.EvaluateRootGoal(r.infcx, root.Goal())
		if errors.Is(err, traits.ErrNoSolution) {
			spanBug(root.Span(), "did not expect selection error when collecting ambiguity errors for `%s`", root.Predicate)
		}
		if err != nil {
			spanBug(root.Span(), "evaluating `%s`: %v", root.Predicate, err)
		}
		cause, maybe := certainty.MaybeCause()
		if !maybe {
			spanBug(root.Span(), "did not expect successful goal when collecting ambiguity errors for `%s`", root.Predicate)
		}
		if cause.Overflow {
			suggest := cause.SuggestIncreasingLimit
			return outcome{code: traits.CodeAmbiguity{Overflow: &suggest}}
		}
		return outcome{code: traits.CodeAmbiguity{}, refine: true}
	})

	obligation := root
	if out.refine {
		obligation = r.FindBestLeafObligation(root, true)
	}
	r.logger.Debug("stalled",
		zap.Stringer("root", root.Predicate),
		zap.Stringer("leaf", obligation.Predicate),
		zap.Stringer("code", out.code),
	)
	return traits.FulfillmentError{Obligation: obligation, Code: out.code, RootObligation: root}
}

// FulfillmentErrorForOverflow reports a root obligation whose evaluation
// was cut off by the depth limit.
func (r *Refiner) FulfillmentErrorForOverflow(root traits.Obligation) traits.FulfillmentError {
	obligation := r.FindBestLeafObligation(root, true)
	suggest := true
	return traits.FulfillmentError{
		Obligation:     obligation,
		Code:           traits.CodeAmbiguity{Overflow: &suggest},
		RootObligation: root,
	}
}

// FindBestLeafObligation walks the proof tree of o and returns the most
// specific nested obligation explaining its failure, or its ambiguity when
// considerAmbiguities is set. Without a better candidate the resolved root
// is returned.
func (r *Refiner) FindBestLeafObligation(o traits.Obligation, considerAmbiguities bool) traits.Obligation {
	o = r.infcx.ResolveVarsIfPossible(o)
	leaf, ok := infer.FudgeInferenceIfOk(r.infcx, func() (traits.Obligation, bool) {
		v := &bestObligation{r: r, obligation: o, considerAmbiguities: considerAmbiguities}
		return inspect.VisitProofTree(r.infcx, r.solver, o.Goal(), v).BreakValue()
	})
	if !ok {
		return o
	}
	return leaf
}
