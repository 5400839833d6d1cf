package typesystem

import (
	"fmt"
	"strings"
)

// Type is the interface for all types (and constants used as generic
// arguments) that can appear inside a predicate.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []TVar
}

// TVar represents an inference variable (e.g. '?0', '?t1').
type TVar struct {
	Name string
}

func (t TVar) String() string { return t.Name }

func (t TVar) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TVar) FreeTypeVariables() []TVar {
	return []TVar{t}
}

// TCon represents a nominal type or a type parameter (e.g. Int, Vec, T).
type TCon struct {
	Name string
}

func (t TCon) String() string { return t.Name }

func (t TCon) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TCon) FreeTypeVariables() []TVar { return nil }

// TApp represents a type constructor applied to arguments (e.g. Vec<T>).
type TApp struct {
	Constructor Type
	Args        []Type
}

func (t TApp) String() string {
	return fmt.Sprintf("%s<%s>", t.Constructor.String(), joinTypes(t.Args))
}

func (t TApp) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TApp) FreeTypeVariables() []TVar {
	vars := t.Constructor.FreeTypeVariables()
	for _, arg := range t.Args {
		vars = append(vars, arg.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TFunc represents a function pointer type.
type TFunc struct {
	Params     []Type
	ReturnType Type
}

func (t TFunc) String() string {
	if t.ReturnType == nil {
		return fmt.Sprintf("fn(%s)", joinTypes(t.Params))
	}
	return fmt.Sprintf("fn(%s) -> %s", joinTypes(t.Params), t.ReturnType.String())
}

func (t TFunc) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TFunc) FreeTypeVariables() []TVar {
	var vars []TVar
	for _, p := range t.Params {
		vars = append(vars, p.FreeTypeVariables()...)
	}
	if t.ReturnType != nil {
		vars = append(vars, t.ReturnType.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TPlaceholder is a rigid stand-in for a bound variable after a quantifier
// has been entered.
type TPlaceholder struct {
	Name     string
	Universe int
}

func (t TPlaceholder) String() string {
	return fmt.Sprintf("!%d_%s", t.Universe, t.Name)
}

func (t TPlaceholder) Apply(Subst) Type { return t }

func (t TPlaceholder) FreeTypeVariables() []TVar { return nil }

// AliasKind classifies an alias term.
type AliasKind int

const (
	AliasProjection AliasKind = iota
	AliasProjectionConst
	AliasInherent
	AliasOpaque
	AliasFree
)

func (k AliasKind) String() string {
	switch k {
	case AliasProjection:
		return "projection"
	case AliasProjectionConst:
		return "projection_const"
	case AliasInherent:
		return "inherent"
	case AliasOpaque:
		return "opaque"
	case AliasFree:
		return "free"
	default:
		return fmt.Sprintf("AliasKind(%d)", int(k))
	}
}

// TAlias is an unnormalized alias such as <T as Iterator>::Item.
// For projections, Trait names the trait owning the item and Args are the
// trait's arguments (Self first).
type TAlias struct {
	Kind  AliasKind
	Trait string
	Item  string
	Args  []Type
}

func (t TAlias) String() string {
	switch t.Kind {
	case AliasProjection, AliasProjectionConst:
		self := "?"
		if len(t.Args) > 0 {
			self = t.Args[0].String()
		}
		trait := t.Trait
		if len(t.Args) > 1 {
			trait = fmt.Sprintf("%s<%s>", t.Trait, joinTypes(t.Args[1:]))
		}
		proj := fmt.Sprintf("<%s as %s>::%s", self, trait, t.Item)
		if t.Kind == AliasProjectionConst {
			return "const " + proj
		}
		return proj
	default:
		if len(t.Args) == 0 {
			return fmt.Sprintf("%s::%s", t.Kind, t.Item)
		}
		return fmt.Sprintf("%s::%s<%s>", t.Kind, t.Item, joinTypes(t.Args))
	}
}

func (t TAlias) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TAlias) FreeTypeVariables() []TVar {
	var vars []TVar
	for _, arg := range t.Args {
		vars = append(vars, arg.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// IsProjection reports whether the alias is an associated type or const of a trait.
func (t TAlias) IsProjection() bool {
	return t.Kind == AliasProjection || t.Kind == AliasProjectionConst
}

// ApplyWithCycleCheck applies substitution with cycle detection.
// This is the main entry point for substitution application.
func ApplyWithCycleCheck(t Type, s Subst, visited map[string]bool) Type {
	if t == nil {
		return nil
	}

	switch typ := t.(type) {
	case TVar:
		return applyNamed(typ, typ.Name, s, visited)

	case TCon:
		// Bound variables of a quantifier are spelled as TCons, so entering
		// a binder substitutes them by name.
		return applyNamed(typ, typ.Name, s, visited)

	case TApp:
		newArgs := applyAll(typ.Args, s, visited)
		newCtor := ApplyWithCycleCheck(typ.Constructor, s, visited)

		// Flatten nested TApp: (Result<String>)<B> becomes Result<String, B>
		if ctorApp, ok := newCtor.(TApp); ok {
			mergedArgs := make([]Type, 0, len(ctorApp.Args)+len(newArgs))
			mergedArgs = append(mergedArgs, ctorApp.Args...)
			mergedArgs = append(mergedArgs, newArgs...)
			return TApp{Constructor: ctorApp.Constructor, Args: mergedArgs}
		}
		return TApp{Constructor: newCtor, Args: newArgs}

	case TFunc:
		return TFunc{
			Params:     applyAll(typ.Params, s, visited),
			ReturnType: ApplyWithCycleCheck(typ.ReturnType, s, visited),
		}

	case TAlias:
		return TAlias{Kind: typ.Kind, Trait: typ.Trait, Item: typ.Item, Args: applyAll(typ.Args, s, visited)}

	case ConstUnevaluated:
		return ConstUnevaluated{Def: typ.Def, Args: applyAll(typ.Args, s, visited)}

	case ConstValue:
		return ConstValue{Value: typ.Value, Ty: ApplyWithCycleCheck(typ.Ty, s, visited)}

	case ConstInfer:
		if replacement, ok := s[typ.Name]; ok && !visited[typ.Name] {
			newVisited := copyVisited(visited)
			newVisited[typ.Name] = true
			return ApplyWithCycleCheck(replacement, s, newVisited)
		}
		return typ

	default:
		// Placeholders, params and error constants don't change
		return t
	}
}

func applyNamed(t Type, name string, s Subst, visited map[string]bool) Type {
	if visited[name] {
		return t // Break cycle - return the variable as-is
	}
	replacement, ok := s[name]
	if !ok {
		return t
	}
	if replacement.String() == name {
		return t
	}
	newVisited := copyVisited(visited)
	newVisited[name] = true
	return ApplyWithCycleCheck(replacement, s, newVisited)
}

func applyAll(types []Type, s Subst, visited map[string]bool) []Type {
	if types == nil {
		return nil
	}
	out := make([]Type, len(types))
	for i, t := range types {
		out[i] = ApplyWithCycleCheck(t, s, visited)
	}
	return out
}

func copyVisited(m map[string]bool) map[string]bool {
	newMap := make(map[string]bool, len(m))
	for k, v := range m {
		newMap[k] = v
	}
	return newMap
}

// Subst maps inference variable (or bound variable) names to types.
type Subst map[string]Type

// Compose returns s1 ∘ s2: s2 is applied first, then s1.
func (s1 Subst) Compose(s2 Subst) Subst {
	subst := make(Subst, len(s1)+len(s2))
	for k, v := range s2 {
		subst[k] = v.Apply(s1)
	}
	for k, v := range s1 {
		if _, ok := subst[k]; !ok {
			subst[k] = v
		}
	}
	return subst
}

// Clone returns a shallow copy of the substitution.
func (s Subst) Clone() Subst {
	out := make(Subst, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether two types print identically. Types are plain values
// without identity, so the canonical printed form is used for comparison.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}

func joinTypes(types []Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		if t == nil {
			parts[i] = "_"
			continue
		}
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

func uniqueTVars(vars []TVar) []TVar {
	seen := make(map[string]bool, len(vars))
	result := make([]TVar, 0, len(vars))
	for _, v := range vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			result = append(result, v)
		}
	}
	return result
}
