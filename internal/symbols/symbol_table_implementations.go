package symbols

import (
	"fmt"

	"github.com/funvibe/fulfill/internal/typesystem"
)

// RegisterImplementation adds an impl block. The trait must be declared,
// the id must be fresh and the impl must not overlap an existing impl of
// the same trait.
func (s *SymbolTable) RegisterImplementation(def ImplDef) error {
	if !s.TraitExists(def.Trait) {
		return fmt.Errorf("impl %s: %w %q", def.ID, ErrUnknownTrait, def.Trait)
	}
	if _, ok := s.impls[def.ID]; ok {
		return fmt.Errorf("impl %s declared twice", def.ID)
	}

	// Check overlap against every impl of the same trait
	for _, otherID := range s.byTrait[def.Trait] {
		existing := s.impls[otherID]
		if len(existing.TargetTypes) != len(def.TargetTypes) {
			continue // Arity mismatch, shouldn't happen for same trait
		}

		overlap := true
		subst := typesystem.Subst{}
		for i, arg := range def.TargetTypes {
			left := RenameGenerics(existing.TargetTypes[i], existing.Generics, "old").Apply(subst)
			right := RenameGenerics(arg, def.Generics, "new").Apply(subst)
			s2, err := typesystem.Unify(left, right)
			if err != nil {
				overlap = false
				break
			}
			subst = s2.Compose(subst)
		}
		if overlap {
			return fmt.Errorf("overlapping impls for trait %s: %s and %s", def.Trait, existing.ID, def.ID)
		}
	}

	d := def
	s.impls[def.ID] = &d
	s.implOrder = append(s.implOrder, def.ID)
	s.byTrait[def.Trait] = append(s.byTrait[def.Trait], def.ID)
	return nil
}

// Impl returns the impl registered under id.
func (s *SymbolTable) Impl(id string) (*ImplDef, error) {
	impl, ok := s.impls[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownImpl, id)
	}
	return impl, nil
}

// PredicatesOf returns an impl's declared where-clauses in declaration order.
func (s *SymbolTable) PredicatesOf(implID string) ([]SpannedClause, error) {
	impl, err := s.Impl(implID)
	if err != nil {
		return nil, err
	}
	return impl.Predicates, nil
}

// ConstConditions returns an impl's declared const conditions in
// declaration order.
func (s *SymbolTable) ConstConditions(implID string) ([]SpannedTraitRef, error) {
	impl, err := s.Impl(implID)
	if err != nil {
		return nil, err
	}
	return impl.ConstConditions, nil
}

// DoNotRecommendImpl reports whether an impl is excluded from diagnostics.
// Unknown impls are never excluded.
func (s *SymbolTable) DoNotRecommendImpl(implID string) bool {
	impl, ok := s.impls[implID]
	return ok && impl.DoNotRecommend
}

// Implementations returns the impls of a trait in registration order.
func (s *SymbolTable) Implementations(trait string) []ImplDef {
	ids := s.byTrait[trait]
	out := make([]ImplDef, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.impls[id])
	}
	return out
}

// AllImplementations returns every impl in registration order.
func (s *SymbolTable) AllImplementations() []ImplDef {
	out := make([]ImplDef, 0, len(s.implOrder))
	for _, id := range s.implOrder {
		out = append(out, *s.impls[id])
	}
	return out
}

// RenameGenerics turns the named generic parameters of a declaration into
// inference variables with a suffix, so two declarations can be unified
// without their parameters colliding.
func RenameGenerics(t typesystem.Type, generics []string, suffix string) typesystem.Type {
	if len(generics) == 0 {
		return t
	}
	subst := make(typesystem.Subst, len(generics))
	for _, g := range generics {
		subst[g] = typesystem.TVar{Name: "?" + g + "_" + suffix}
	}
	return t.Apply(subst)
}
