package traits

import (
	"fmt"
	"strings"

	"github.com/funvibe/fulfill/internal/typesystem"
)

// PredicateTag is the closed set of predicate shapes.
type PredicateTag int

const (
	TagTrait PredicateTag = iota
	TagHostEffect
	TagProjection
	TagConstArgHasType
	TagWellFormed
	TagTypeOutlives
	TagConstEvaluatable
	TagDynCompatible
	TagSubtype
	TagCoerce
	TagConstEquate
	TagAmbiguous
	TagNormalizesTo
	TagAliasRelate
)

// AllPredicateTags lists every predicate shape, in declaration order.
var AllPredicateTags = []PredicateTag{
	TagTrait, TagHostEffect, TagProjection, TagConstArgHasType, TagWellFormed,
	TagTypeOutlives, TagConstEvaluatable, TagDynCompatible, TagSubtype, TagCoerce,
	TagConstEquate, TagAmbiguous, TagNormalizesTo, TagAliasRelate,
}

var tagNames = map[PredicateTag]string{
	TagTrait:            "trait",
	TagHostEffect:       "host_effect",
	TagProjection:       "projection",
	TagConstArgHasType:  "const_arg_has_type",
	TagWellFormed:       "well_formed",
	TagTypeOutlives:     "type_outlives",
	TagConstEvaluatable: "const_evaluatable",
	TagDynCompatible:    "dyn_compatible",
	TagSubtype:          "subtype",
	TagCoerce:           "coerce",
	TagConstEquate:      "const_equate",
	TagAmbiguous:        "ambiguous",
	TagNormalizesTo:     "normalizes_to",
	TagAliasRelate:      "alias_relate",
}

func (t PredicateTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PredicateTag(%d)", int(t))
}

// IsClause reports whether predicates of this shape may appear as
// where-clauses in an environment or a declaration.
func (t PredicateTag) IsClause() bool {
	switch t {
	case TagTrait, TagHostEffect, TagProjection, TagConstArgHasType, TagWellFormed,
		TagTypeOutlives, TagConstEvaluatable:
		return true
	}
	return false
}

// PredicateKind is implemented by every predicate payload.
type PredicateKind interface {
	Tag() PredicateTag
	String() string
	apply(typesystem.Subst) PredicateKind
}

// Predicate is a PredicateKind under an optional outer quantifier. Bound
// variables are spelled as nominal names inside the payload.
type Predicate struct {
	Bound []string
	Kind  PredicateKind
}

// NewPredicate wraps a payload with no bound variables.
func NewPredicate(kind PredicateKind) Predicate {
	return Predicate{Kind: kind}
}

func (p Predicate) Tag() PredicateTag { return p.Kind.Tag() }

func (p Predicate) String() string {
	if p.Kind == nil {
		return "<nil predicate>"
	}
	if len(p.Bound) == 0 {
		return p.Kind.String()
	}
	return fmt.Sprintf("for<%s> %s", strings.Join(p.Bound, ", "), p.Kind.String())
}

// SkipBinder returns the payload ignoring any outer quantifier.
func (p Predicate) SkipBinder() PredicateKind { return p.Kind }

// NoBoundVars returns the payload only when there is no outer quantifier.
func (p Predicate) NoBoundVars() (PredicateKind, bool) {
	if len(p.Bound) > 0 {
		return nil, false
	}
	return p.Kind, true
}

// Rebind keeps this predicate's quantifier around a new payload.
func (p Predicate) Rebind(kind PredicateKind) Predicate {
	return Predicate{Bound: p.Bound, Kind: kind}
}

// Apply substitutes free variables. Bound variables are shielded.
func (p Predicate) Apply(s typesystem.Subst) Predicate {
	if len(p.Bound) > 0 && len(s) > 0 {
		filtered := make(typesystem.Subst, len(s))
		for k, v := range s {
			filtered[k] = v
		}
		for _, b := range p.Bound {
			delete(filtered, b)
		}
		s = filtered
	}
	return Predicate{Bound: p.Bound, Kind: p.Kind.apply(s)}
}

// AsTraitClause returns the trait predicate when p is one.
func (p Predicate) AsTraitClause() (TraitPredicate, bool) {
	tp, ok := p.Kind.(TraitPredicate)
	return tp, ok
}

// TraitRef names a trait applied to arguments; Args[0] is the self type.
type TraitRef struct {
	Trait string
	Args  []typesystem.Type
}

func (r TraitRef) SelfTy() typesystem.Type {
	if len(r.Args) == 0 {
		return nil
	}
	return r.Args[0]
}

func (r TraitRef) String() string {
	self := "?"
	if s := r.SelfTy(); s != nil {
		self = s.String()
	}
	return fmt.Sprintf("%s: %s", self, r.pathString())
}

func (r TraitRef) pathString() string {
	if len(r.Args) <= 1 {
		return r.Trait
	}
	return fmt.Sprintf("%s<%s>", r.Trait, joinTypes(r.Args[1:]))
}

func (r TraitRef) apply(s typesystem.Subst) TraitRef {
	return TraitRef{Trait: r.Trait, Args: applyTypes(r.Args, s)}
}

// Polarity of a trait predicate.
type Polarity int

const (
	Positive Polarity = iota
	Negative
)

// TraitPredicate requires that a type implements a trait.
type TraitPredicate struct {
	TraitRef TraitRef
	Polarity Polarity
}

func (TraitPredicate) Tag() PredicateTag { return TagTrait }

func (p TraitPredicate) String() string {
	if p.Polarity == Negative {
		self := "?"
		if s := p.TraitRef.SelfTy(); s != nil {
			self = s.String()
		}
		return fmt.Sprintf("%s: !%s", self, p.TraitRef.pathString())
	}
	return p.TraitRef.String()
}

func (p TraitPredicate) apply(s typesystem.Subst) PredicateKind {
	return TraitPredicate{TraitRef: p.TraitRef.apply(s), Polarity: p.Polarity}
}

// Constness qualifies a host-effect predicate.
type Constness int

const (
	ConstnessMaybe Constness = iota
	ConstnessConst
)

func (c Constness) String() string {
	if c == ConstnessConst {
		return "const"
	}
	return "[const]"
}

// HostEffectPredicate requires that a trait impl is usable in a const context.
type HostEffectPredicate struct {
	TraitRef  TraitRef
	Constness Constness
}

func (HostEffectPredicate) Tag() PredicateTag { return TagHostEffect }

func (p HostEffectPredicate) String() string {
	self := "?"
	if s := p.TraitRef.SelfTy(); s != nil {
		self = s.String()
	}
	return fmt.Sprintf("%s: %s %s", self, p.Constness, p.TraitRef.pathString())
}

func (p HostEffectPredicate) apply(s typesystem.Subst) PredicateKind {
	return HostEffectPredicate{TraitRef: p.TraitRef.apply(s), Constness: p.Constness}
}

// ProjectionPredicate equates an alias with a term.
type ProjectionPredicate struct {
	Alias typesystem.TAlias
	Term  typesystem.Type
}

func (ProjectionPredicate) Tag() PredicateTag { return TagProjection }

func (p ProjectionPredicate) String() string {
	return fmt.Sprintf("%s == %s", p.Alias, p.Term)
}

func (p ProjectionPredicate) apply(s typesystem.Subst) PredicateKind {
	return ProjectionPredicate{Alias: applyAlias(p.Alias, s), Term: applyType(p.Term, s)}
}

// NormalizesTo is the solver-internal form of normalizing an alias one step.
type NormalizesTo struct {
	Alias typesystem.TAlias
	Term  typesystem.Type
}

func (NormalizesTo) Tag() PredicateTag { return TagNormalizesTo }

func (p NormalizesTo) String() string {
	return fmt.Sprintf("%s normalizes-to %s", p.Alias, p.Term)
}

func (p NormalizesTo) apply(s typesystem.Subst) PredicateKind {
	return NormalizesTo{Alias: applyAlias(p.Alias, s), Term: applyType(p.Term, s)}
}

// ConstArgHasType requires a constant argument to have a type.
type ConstArgHasType struct {
	Const typesystem.Type
	Ty    typesystem.Type
}

func (ConstArgHasType) Tag() PredicateTag { return TagConstArgHasType }

func (p ConstArgHasType) String() string {
	return fmt.Sprintf("%s has type %s", p.Const, p.Ty)
}

func (p ConstArgHasType) apply(s typesystem.Subst) PredicateKind {
	return ConstArgHasType{Const: applyType(p.Const, s), Ty: applyType(p.Ty, s)}
}

// WellFormed requires a generic argument to be well-formed.
type WellFormed struct {
	Arg typesystem.Type
}

func (WellFormed) Tag() PredicateTag { return TagWellFormed }

func (p WellFormed) String() string { return fmt.Sprintf("wf(%s)", p.Arg) }

func (p WellFormed) apply(s typesystem.Subst) PredicateKind {
	return WellFormed{Arg: applyType(p.Arg, s)}
}

// TypeOutlives requires a type to outlive a region.
type TypeOutlives struct {
	Ty     typesystem.Type
	Region string
}

func (TypeOutlives) Tag() PredicateTag { return TagTypeOutlives }

func (p TypeOutlives) String() string { return fmt.Sprintf("%s: %s", p.Ty, p.Region) }

func (p TypeOutlives) apply(s typesystem.Subst) PredicateKind {
	return TypeOutlives{Ty: applyType(p.Ty, s), Region: p.Region}
}

// ConstEvaluatable requires a constant to evaluate successfully.
type ConstEvaluatable struct {
	Const typesystem.Type
}

func (ConstEvaluatable) Tag() PredicateTag { return TagConstEvaluatable }

func (p ConstEvaluatable) String() string { return fmt.Sprintf("evaluatable(%s)", p.Const) }

func (p ConstEvaluatable) apply(s typesystem.Subst) PredicateKind {
	return ConstEvaluatable{Const: applyType(p.Const, s)}
}

// DynCompatible requires a trait to be usable as a trait object.
type DynCompatible struct {
	Trait string
}

func (DynCompatible) Tag() PredicateTag { return TagDynCompatible }

func (p DynCompatible) String() string { return fmt.Sprintf("dyn-compatible(%s)", p.Trait) }

func (p DynCompatible) apply(typesystem.Subst) PredicateKind { return p }

// Subtype requires A <: B.
type Subtype struct {
	A, B typesystem.Type
}

func (Subtype) Tag() PredicateTag { return TagSubtype }

func (p Subtype) String() string { return fmt.Sprintf("%s <: %s", p.A, p.B) }

func (p Subtype) apply(s typesystem.Subst) PredicateKind {
	return Subtype{A: applyType(p.A, s), B: applyType(p.B, s)}
}

// Coerce requires A to be coercible to B.
type Coerce struct {
	A, B typesystem.Type
}

func (Coerce) Tag() PredicateTag { return TagCoerce }

func (p Coerce) String() string { return fmt.Sprintf("%s coerces to %s", p.A, p.B) }

func (p Coerce) apply(s typesystem.Subst) PredicateKind {
	return Coerce{A: applyType(p.A, s), B: applyType(p.B, s)}
}

// ConstEquate requires two constants to be equal.
type ConstEquate struct {
	A, B typesystem.Type
}

func (ConstEquate) Tag() PredicateTag { return TagConstEquate }

func (p ConstEquate) String() string { return fmt.Sprintf("const-equate(%s, %s)", p.A, p.B) }

func (p ConstEquate) apply(s typesystem.Subst) PredicateKind {
	return ConstEquate{A: applyType(p.A, s), B: applyType(p.B, s)}
}

// Ambiguous is a predicate that is never provable nor disprovable.
type Ambiguous struct{}

func (Ambiguous) Tag() PredicateTag { return TagAmbiguous }

func (Ambiguous) String() string { return "ambiguous" }

func (p Ambiguous) apply(typesystem.Subst) PredicateKind { return p }

// AliasRelationDirection says how the two sides of an AliasRelate relate.
type AliasRelationDirection int

const (
	AliasEquate AliasRelationDirection = iota
	AliasSubtype
)

// AliasRelate relates two terms, at least one of which is an alias.
type AliasRelate struct {
	LHS, RHS  typesystem.Type
	Direction AliasRelationDirection
}

func (AliasRelate) Tag() PredicateTag { return TagAliasRelate }

func (p AliasRelate) String() string {
	op := "=="
	if p.Direction == AliasSubtype {
		op = "<:"
	}
	return fmt.Sprintf("alias-relate(%s %s %s)", p.LHS, op, p.RHS)
}

func (p AliasRelate) apply(s typesystem.Subst) PredicateKind {
	return AliasRelate{LHS: applyType(p.LHS, s), RHS: applyType(p.RHS, s), Direction: p.Direction}
}

func applyType(t typesystem.Type, s typesystem.Subst) typesystem.Type {
	if t == nil || len(s) == 0 {
		return t
	}
	return t.Apply(s)
}

func applyTypes(types []typesystem.Type, s typesystem.Subst) []typesystem.Type {
	if types == nil {
		return nil
	}
	out := make([]typesystem.Type, len(types))
	for i, t := range types {
		out[i] = applyType(t, s)
	}
	return out
}

func applyAlias(a typesystem.TAlias, s typesystem.Subst) typesystem.TAlias {
	return typesystem.TAlias{Kind: a.Kind, Trait: a.Trait, Item: a.Item, Args: applyTypes(a.Args, s)}
}

// ProjectionTraitRef returns the trait reference owning a projection alias.
func ProjectionTraitRef(alias typesystem.TAlias) TraitRef {
	return TraitRef{Trait: alias.Trait, Args: alias.Args}
}

func joinTypes(types []typesystem.Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
