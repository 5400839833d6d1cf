package symbols

import (
	"fmt"
	"sort"

	"github.com/funvibe/fulfill/internal/traits"
	"github.com/funvibe/fulfill/internal/typesystem"
)

// RegisterConst declares a constant item.
func (s *SymbolTable) RegisterConst(def ConstDef) error {
	if _, ok := s.consts[def.ID]; ok {
		return fmt.Errorf("const %s declared twice", def.ID)
	}
	d := def
	s.consts[def.ID] = &d
	return nil
}

// TypeOf returns the declared type of a constant item instantiated with args.
func (s *SymbolTable) TypeOf(defID string, args []typesystem.Type) (typesystem.Type, error) {
	def, ok := s.consts[defID]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownDef, defID)
	}
	if len(args) != len(def.Generics) {
		return nil, fmt.Errorf("const %s: expected %d generic arguments, got %d", defID, len(def.Generics), len(args))
	}
	subst := make(typesystem.Subst, len(args))
	for i, g := range def.Generics {
		subst[g] = args[i]
	}
	return def.Type.Apply(subst), nil
}

// Consts returns every declared constant item.
func (s *SymbolTable) Consts() []ConstDef {
	out := make([]ConstDef, 0, len(s.consts))
	for _, c := range s.consts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TypeBounds are the where-clauses a nominal type constructor declares on
// its parameters, checked when the type is required to be well-formed.
type TypeBounds struct {
	Name     string
	Generics []string
	Clauses  []SpannedClause
}

// RegisterTypeBounds declares the bounds of a type constructor.
func (s *SymbolTable) RegisterTypeBounds(b TypeBounds) error {
	if _, ok := s.typeBounds[b.Name]; ok {
		return fmt.Errorf("type %s declared twice", b.Name)
	}
	d := b
	s.typeBounds[b.Name] = &d
	return nil
}

// InstantiatedTypeBounds returns the bounds of a type constructor with its
// generics replaced by args. Types without declared bounds yield nil.
func (s *SymbolTable) InstantiatedTypeBounds(name string, args []typesystem.Type) []SpannedClause {
	b, ok := s.typeBounds[name]
	if !ok || len(b.Generics) != len(args) {
		return nil
	}
	subst := make(typesystem.Subst, len(args))
	for i, g := range b.Generics {
		subst[g] = args[i]
	}
	out := make([]SpannedClause, len(b.Clauses))
	for i, c := range b.Clauses {
		out[i] = SpannedClause{Predicate: c.Predicate.Apply(subst), Span: c.Span}
	}
	return out
}

// AllTypeBounds returns every declared type constructor's bounds.
func (s *SymbolTable) AllTypeBounds() []TypeBounds {
	out := make([]TypeBounds, 0, len(s.typeBounds))
	for _, b := range s.typeBounds {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FindConstParamType looks up the declared type of a const parameter among
// the ConstArgHasType clauses of an environment.
func FindConstParamType(param typesystem.ConstParam, env traits.Env) (typesystem.Type, bool) {
	for _, clause := range env.Clauses {
		c, ok := clause.Kind.(traits.ConstArgHasType)
		if !ok {
			continue
		}
		if p, ok := c.Const.(typesystem.ConstParam); ok && p.Name == param.Name {
			return c.Ty, true
		}
	}
	return nil, false
}
