package derive

import (
	"go.uber.org/zap"

	"github.com/funvibe/fulfill/internal/inspect"
	"github.com/funvibe/fulfill/internal/symbols"
	"github.com/funvibe/fulfill/internal/traits"
)

// deriveCause attributes the idx-th where-bound nested goal of a trait
// candidate. Impl candidates point at the impl's idx-th declared
// requirement, builtin candidates get a builtin link, anything else keeps
// the cause as is.
func (r *Refiner) deriveCause(kind inspect.ProbeKind, cause traits.Cause, idx int, parentTraitPred traits.Predicate) traits.Cause {
	if implID, ok := kind.ImplID(); ok {
		preds, err := r.db.PredicatesOf(implID)
		if err != nil {
			r.logger.Warn("cannot attribute nested goal", zap.String("impl", implID), zap.Error(err))
			return cause
		}
		if idx >= len(preds) {
			return cause
		}
		span := preds[idx].Span
		return cause.DerivedCause(parentTraitPred, func(d traits.DerivedCause) traits.CauseCode {
			return &traits.ImplDerivedCode{
				Derived:        d,
				ImplID:         implID,
				PredicateIndex: idx,
				HasIndex:       true,
				Span:           span,
			}
		})
	}
	if kind.IsBuiltinImpl() {
		return cause.DerivedCause(parentTraitPred, func(d traits.DerivedCause) traits.CauseCode {
			return &traits.BuiltinDerivedCode{Derived: d}
		})
	}
	return cause
}

// deriveHostCause is deriveCause for host-effect goals. An impl's
// where-clauses come first, followed by its const conditions restated as
// host-effect requirements with the parent's constness.
func (r *Refiner) deriveHostCause(kind inspect.ProbeKind, cause traits.Cause, idx int, parentHostPred traits.Predicate) traits.Cause {
	if implID, ok := kind.ImplID(); ok {
		clauses, err := r.hostClauses(implID, parentHostPred)
		if err != nil {
			r.logger.Warn("cannot attribute nested goal", zap.String("impl", implID), zap.Error(err))
			return cause
		}
		if idx >= len(clauses) {
			return cause
		}
		span := clauses[idx].Span
		return cause.DerivedHostCause(parentHostPred, func(d traits.DerivedHostCause) traits.CauseCode {
			return &traits.ImplDerivedHostCode{Derived: d, ImplID: implID, Span: span}
		})
	}
	if kind.IsBuiltinImpl() {
		return cause.DerivedHostCause(parentHostPred, func(d traits.DerivedHostCause) traits.CauseCode {
			return &traits.BuiltinDerivedHostCode{Derived: d}
		})
	}
	return cause
}

func (r *Refiner) hostClauses(implID string, parentHostPred traits.Predicate) ([]symbols.SpannedClause, error) {
	preds, err := r.db.PredicatesOf(implID)
	if err != nil {
		return nil, err
	}
	conds, err := r.db.ConstConditions(implID)
	if err != nil {
		return nil, err
	}
	constness := traits.ConstnessMaybe
	if host, ok := parentHostPred.SkipBinder().(traits.HostEffectPredicate); ok {
		constness = host.Constness
	}

	clauses := make([]symbols.SpannedClause, 0, len(preds)+len(conds))
	clauses = append(clauses, preds...)
	for _, cond := range conds {
		clauses = append(clauses, symbols.SpannedClause{
			Predicate: traits.NewPredicate(traits.HostEffectPredicate{TraitRef: cond.TraitRef, Constness: constness}),
			Span:      cond.Span,
		})
	}
	return clauses, nil
}
