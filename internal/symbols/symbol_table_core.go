package symbols

import (
	"errors"

	"github.com/funvibe/fulfill/internal/traits"
	"github.com/funvibe/fulfill/internal/typesystem"
)

var (
	// ErrUnknownImpl is returned when an impl id is not registered.
	ErrUnknownImpl = errors.New("unknown impl")
	// ErrUnknownTrait is returned when an impl names an undeclared trait.
	ErrUnknownTrait = errors.New("unknown trait")
	// ErrUnknownDef is returned for an unregistered constant item.
	ErrUnknownDef = errors.New("unknown definition")
)

// SpannedClause is a declared requirement together with where it was written.
type SpannedClause struct {
	Predicate traits.Predicate
	Span      traits.Span
}

// SpannedTraitRef is a declared const-applicability condition.
type SpannedTraitRef struct {
	TraitRef traits.TraitRef
	Span     traits.Span
}

// ImplDef is a user-written impl block.
type ImplDef struct {
	ID       string
	Trait    string
	Generics []string
	// TargetTypes are the trait's arguments, Self first.
	TargetTypes []typesystem.Type
	// Predicates are the declared where-clauses in declaration order.
	Predicates []SpannedClause
	// ConstConditions are the bounds that must be const for the impl to be
	// usable in a const context, in declaration order.
	ConstConditions []SpannedTraitRef
	// DoNotRecommend excludes the impl from diagnostics.
	DoNotRecommend bool
	Span           traits.Span
}

// TraitRef is the trait reference the impl implements.
func (d ImplDef) TraitRef() traits.TraitRef {
	return traits.TraitRef{Trait: d.Trait, Args: d.TargetTypes}
}

// TraitDef is a declared trait.
type TraitDef struct {
	Name     string
	Params   []string
	LangItem string
}

// ConstDef is a constant item with its declared type, generic over Generics.
type ConstDef struct {
	ID       string
	Generics []string
	Type     typesystem.Type
}

// SymbolTable holds every declaration the diagnostic pass queries. It is
// filled once and then only read.
type SymbolTable struct {
	traits     map[string]*TraitDef
	impls      map[string]*ImplDef
	implOrder  []string
	byTrait    map[string][]string
	consts     map[string]*ConstDef
	typeBounds map[string]*TypeBounds
	langItems  map[string]string
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		traits:     make(map[string]*TraitDef),
		impls:      make(map[string]*ImplDef),
		byTrait:    make(map[string][]string),
		consts:     make(map[string]*ConstDef),
		typeBounds: make(map[string]*TypeBounds),
		langItems:  make(map[string]string),
	}
}
