package derive

import (
	"github.com/funvibe/fulfill/internal/symbols"
	"github.com/funvibe/fulfill/internal/traits"
	"github.com/funvibe/fulfill/internal/typesystem"
)

// noSolutionCode classifies a failing leaf obligation. Every predicate
// shape is handled here and nowhere else.
func (r *Refiner) noSolutionCode(obligation traits.Obligation) traits.FulfillmentErrorCode {
	switch kind := obligation.Predicate.SkipBinder().(type) {
	case traits.ProjectionPredicate, traits.NormalizesTo, traits.AliasRelate:
		return traits.CodeProject{Err: traits.MismatchedProjectionTypes{Err: traits.TypeErrorMismatch{}}}

	case traits.ConstArgHasType:
		return traits.CodeSelect{Err: traits.ConstArgHasWrongType{
			Const:      kind.Const,
			ConstTy:    r.constArgType(obligation, kind.Const),
			ExpectedTy: kind.Ty,
		}}

	case traits.Subtype:
		sub := r.infcx.EnterForallAndLeakUniverse(obligation.Predicate).(traits.Subtype)
		ef := traits.NewExpectedFound(sub.A, sub.B)
		return traits.CodeSubtype{ExpectedFound: ef, Err: traits.TypeErrorSorts{ExpectedFound: ef}}

	case traits.Coerce:
		coerce := r.infcx.EnterForallAndLeakUniverse(obligation.Predicate).(traits.Coerce)
		ef := traits.NewExpectedFound(coerce.B, coerce.A)
		return traits.CodeSubtype{ExpectedFound: ef, Err: traits.TypeErrorSorts{ExpectedFound: ef}}

	case traits.TraitPredicate, traits.HostEffectPredicate, traits.WellFormed, traits.TypeOutlives,
		traits.ConstEvaluatable, traits.DynCompatible, traits.Ambiguous:
		return traits.CodeSelect{Err: traits.Unimplemented{}}

	case traits.ConstEquate:
		spanBug(obligation.Span(), "const-equate goals are not produced by the solver: %s", obligation.Predicate)

	default:
		spanBug(obligation.Span(), "unexpected predicate shape %T", kind)
	}
	return nil
}

// constArgType computes the actual type of a constant argument.
func (r *Refiner) constArgType(obligation traits.Obligation, ct typesystem.Type) typesystem.Type {
	switch c := ct.(type) {
	case typesystem.ConstUnevaluated:
		ty, err := r.db.TypeOf(c.Def, c.Args)
		if err != nil {
			spanBug(obligation.Span(), "type of `%s`: %v", c, err)
		}
		return ty
	case typesystem.ConstParam:
		ty, ok := symbols.FindConstParamType(c, obligation.Env)
		if !ok {
			spanBug(obligation.Span(), "`%s` has no type in the environment", c)
		}
		return ty
	case typesystem.ConstValue:
		return c.Ty
	}
	spanBug(obligation.Span(), "ConstArgHasWrongType failed but we don't know how to compute type for %s", ct)
	return nil
}
