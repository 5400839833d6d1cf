// Package wf computes the requirements for a generic argument to be
// well-formed, without normalizing any alias it contains.
package wf

import (
	"github.com/funvibe/fulfill/internal/infer"
	"github.com/funvibe/fulfill/internal/symbols"
	"github.com/funvibe/fulfill/internal/traits"
	"github.com/funvibe/fulfill/internal/typesystem"
)

// BoundsSource supplies the declared bounds of type constructors.
type BoundsSource interface {
	InstantiatedTypeBounds(name string, args []typesystem.Type) []symbols.SpannedClause
}

// UnnormalizedObligations returns the obligations that must hold for arg
// to be well-formed in env. The second result is false when arg is still
// an unresolved inference variable and nothing can be said yet.
func UnnormalizedObligations(infcx *infer.Ctxt, db BoundsSource, env traits.Env, arg typesystem.Type, span traits.Span, bodyID string) ([]traits.Obligation, bool) {
	arg = infcx.Resolve(arg)
	switch arg.(type) {
	case typesystem.TVar, typesystem.ConstInfer:
		return nil, false
	}

	w := &walker{
		db:   db,
		env:  env,
		root: traits.NewCause(span, bodyID, traits.WellFormedCode{Arg: arg.String()}),
	}
	w.walk(arg)
	return w.out, true
}

type walker struct {
	db   BoundsSource
	env  traits.Env
	root traits.Cause
	out  []traits.Obligation
}

func (w *walker) push(cause traits.Cause, kind traits.PredicateKind) {
	w.out = append(w.out, traits.NewObligation(cause, w.env, traits.NewPredicate(kind)))
}

func (w *walker) walk(t typesystem.Type) {
	switch t := t.(type) {
	case typesystem.TApp:
		if con, ok := t.Constructor.(typesystem.TCon); ok {
			for i, bound := range w.db.InstantiatedTypeBounds(con.Name, t.Args) {
				code := &traits.WhereClauseCode{Def: con.Name, Index: i, Span: bound.Span, ParentCode: w.root.Code}
				w.out = append(w.out, traits.NewObligation(w.root.WithCode(code), w.env, bound.Predicate))
			}
		}
		for _, arg := range t.Args {
			w.walk(arg)
		}

	case typesystem.TFunc:
		for _, p := range t.Params {
			w.walk(p)
		}
		if t.ReturnType != nil {
			w.walk(t.ReturnType)
		}

	case typesystem.TAlias:
		if t.IsProjection() {
			w.push(w.root, traits.TraitPredicate{TraitRef: traits.ProjectionTraitRef(t)})
		}
		for _, arg := range t.Args {
			w.walk(arg)
		}

	case typesystem.ConstUnevaluated:
		w.push(w.root, traits.ConstEvaluatable{Const: t})
		for _, arg := range t.Args {
			w.walk(arg)
		}

	case typesystem.TVar, typesystem.ConstInfer:
		// Nested inference variables get their own well-formedness goal.
		w.push(w.root, traits.WellFormed{Arg: t})
	}
}
