package scenario

import (
	"fmt"
	"strings"

	"github.com/funvibe/fulfill/internal/traits"
	"github.com/funvibe/fulfill/internal/typesystem"
)

// PredicateSpec is a predicate in YAML form. Exactly one shape field is set.
// Trait references are written "Self: Trait<Args>", with "!" before the
// trait for negative polarity.
type PredicateSpec struct {
	For []string `yaml:"for,omitempty"`

	Trait            string           `yaml:"trait,omitempty"`
	HostEffect       *HostEffectSpec  `yaml:"host_effect,omitempty"`
	Projection       *AliasTermSpec   `yaml:"projection,omitempty"`
	NormalizesTo     *AliasTermSpec   `yaml:"normalizes_to,omitempty"`
	ConstArgHasType  *ConstTypeSpec   `yaml:"const_arg_has_type,omitempty"`
	WellFormed       string           `yaml:"well_formed,omitempty"`
	TypeOutlives     *OutlivesSpec    `yaml:"type_outlives,omitempty"`
	ConstEvaluatable string           `yaml:"const_evaluatable,omitempty"`
	DynCompatible    string           `yaml:"dyn_compatible,omitempty"`
	Subtype          *PairSpec        `yaml:"subtype,omitempty"`
	Coerce           *PairSpec        `yaml:"coerce,omitempty"`
	ConstEquate      *PairSpec        `yaml:"const_equate,omitempty"`
	Ambiguous        bool             `yaml:"ambiguous,omitempty"`
	AliasRelate      *AliasRelateSpec `yaml:"alias_relate,omitempty"`
}

// HostEffectSpec is a host-effect predicate; Constness is "const" or "maybe".
type HostEffectSpec struct {
	TraitRef  string `yaml:"trait_ref"`
	Constness string `yaml:"constness,omitempty"`
}

// AliasTermSpec relates an alias to a term.
type AliasTermSpec struct {
	Alias string `yaml:"alias"`
	Term  string `yaml:"term"`
}

// ConstTypeSpec is a ConstArgHasType predicate.
type ConstTypeSpec struct {
	Const string `yaml:"const"`
	Type  string `yaml:"type"`
}

// OutlivesSpec is a TypeOutlives predicate.
type OutlivesSpec struct {
	Type   string `yaml:"type"`
	Region string `yaml:"region"`
}

// PairSpec is a two-sided predicate.
type PairSpec struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// AliasRelateSpec is an AliasRelate predicate; Direction is "equate"
// (default) or "subtype".
type AliasRelateSpec struct {
	LHS       string `yaml:"lhs"`
	RHS       string `yaml:"rhs"`
	Direction string `yaml:"direction,omitempty"`
}

func (p PredicateSpec) shapes() []string {
	var set []string
	add := func(ok bool, name string) {
		if ok {
			set = append(set, name)
		}
	}
	add(p.Trait != "", "trait")
	add(p.HostEffect != nil, "host_effect")
	add(p.Projection != nil, "projection")
	add(p.NormalizesTo != nil, "normalizes_to")
	add(p.ConstArgHasType != nil, "const_arg_has_type")
	add(p.WellFormed != "", "well_formed")
	add(p.TypeOutlives != nil, "type_outlives")
	add(p.ConstEvaluatable != "", "const_evaluatable")
	add(p.DynCompatible != "", "dyn_compatible")
	add(p.Subtype != nil, "subtype")
	add(p.Coerce != nil, "coerce")
	add(p.ConstEquate != nil, "const_equate")
	add(p.Ambiguous, "ambiguous")
	add(p.AliasRelate != nil, "alias_relate")
	return set
}

// Predicate converts the spec.
func (p PredicateSpec) Predicate() (traits.Predicate, error) {
	shapes := p.shapes()
	if len(shapes) != 1 {
		return traits.Predicate{}, fmt.Errorf("predicate must have exactly one shape, got %v", shapes)
	}
	kind, err := p.kind()
	if err != nil {
		return traits.Predicate{}, fmt.Errorf("%s: %w", shapes[0], err)
	}
	return traits.Predicate{Bound: p.For, Kind: kind}, nil
}

func (p PredicateSpec) kind() (traits.PredicateKind, error) {
	switch {
	case p.Trait != "":
		ref, negative, err := ParseTraitRef(p.Trait)
		if err != nil {
			return nil, err
		}
		polarity := traits.Positive
		if negative {
			polarity = traits.Negative
		}
		return traits.TraitPredicate{TraitRef: ref, Polarity: polarity}, nil

	case p.HostEffect != nil:
		ref, negative, err := ParseTraitRef(p.HostEffect.TraitRef)
		if err != nil {
			return nil, err
		}
		if negative {
			return nil, fmt.Errorf("host-effect trait ref %q cannot be negative", p.HostEffect.TraitRef)
		}
		constness := traits.ConstnessMaybe
		switch p.HostEffect.Constness {
		case "", "maybe":
		case "const":
			constness = traits.ConstnessConst
		default:
			return nil, fmt.Errorf("invalid constness %q", p.HostEffect.Constness)
		}
		return traits.HostEffectPredicate{TraitRef: ref, Constness: constness}, nil

	case p.Projection != nil:
		alias, term, err := parseAliasTerm(*p.Projection)
		if err != nil {
			return nil, err
		}
		return traits.ProjectionPredicate{Alias: alias, Term: term}, nil

	case p.NormalizesTo != nil:
		alias, term, err := parseAliasTerm(*p.NormalizesTo)
		if err != nil {
			return nil, err
		}
		return traits.NormalizesTo{Alias: alias, Term: term}, nil

	case p.ConstArgHasType != nil:
		ct, err := parseConst(p.ConstArgHasType.Const)
		if err != nil {
			return nil, err
		}
		ty, err := typesystem.Parse(p.ConstArgHasType.Type)
		if err != nil {
			return nil, err
		}
		return traits.ConstArgHasType{Const: ct, Ty: ty}, nil

	case p.WellFormed != "":
		arg, err := typesystem.Parse(p.WellFormed)
		if err != nil {
			return nil, err
		}
		return traits.WellFormed{Arg: arg}, nil

	case p.TypeOutlives != nil:
		ty, err := typesystem.Parse(p.TypeOutlives.Type)
		if err != nil {
			return nil, err
		}
		return traits.TypeOutlives{Ty: ty, Region: p.TypeOutlives.Region}, nil

	case p.ConstEvaluatable != "":
		ct, err := parseConst(p.ConstEvaluatable)
		if err != nil {
			return nil, err
		}
		return traits.ConstEvaluatable{Const: ct}, nil

	case p.DynCompatible != "":
		return traits.DynCompatible{Trait: p.DynCompatible}, nil

	case p.Subtype != nil:
		a, b, err := parsePair(*p.Subtype)
		if err != nil {
			return nil, err
		}
		return traits.Subtype{A: a, B: b}, nil

	case p.Coerce != nil:
		a, b, err := parsePair(*p.Coerce)
		if err != nil {
			return nil, err
		}
		return traits.Coerce{A: a, B: b}, nil

	case p.ConstEquate != nil:
		a, b, err := parsePair(*p.ConstEquate)
		if err != nil {
			return nil, err
		}
		return traits.ConstEquate{A: a, B: b}, nil

	case p.Ambiguous:
		return traits.Ambiguous{}, nil

	case p.AliasRelate != nil:
		lhs, rhs, err := parsePair(PairSpec{A: p.AliasRelate.LHS, B: p.AliasRelate.RHS})
		if err != nil {
			return nil, err
		}
		direction := traits.AliasEquate
		switch p.AliasRelate.Direction {
		case "", "equate":
		case "subtype":
			direction = traits.AliasSubtype
		default:
			return nil, fmt.Errorf("invalid alias-relate direction %q", p.AliasRelate.Direction)
		}
		return traits.AliasRelate{LHS: lhs, RHS: rhs, Direction: direction}, nil
	}
	return nil, fmt.Errorf("empty predicate")
}

// FromPredicate is the inverse of PredicateSpec.Predicate.
func FromPredicate(pred traits.Predicate) PredicateSpec {
	spec := PredicateSpec{For: pred.Bound}
	switch k := pred.Kind.(type) {
	case traits.TraitPredicate:
		spec.Trait = k.String()
	case traits.HostEffectPredicate:
		constness := "maybe"
		if k.Constness == traits.ConstnessConst {
			constness = "const"
		}
		spec.HostEffect = &HostEffectSpec{TraitRef: k.TraitRef.String(), Constness: constness}
	case traits.ProjectionPredicate:
		spec.Projection = &AliasTermSpec{Alias: k.Alias.String(), Term: k.Term.String()}
	case traits.NormalizesTo:
		spec.NormalizesTo = &AliasTermSpec{Alias: k.Alias.String(), Term: k.Term.String()}
	case traits.ConstArgHasType:
		spec.ConstArgHasType = &ConstTypeSpec{Const: k.Const.String(), Type: k.Ty.String()}
	case traits.WellFormed:
		spec.WellFormed = k.Arg.String()
	case traits.TypeOutlives:
		spec.TypeOutlives = &OutlivesSpec{Type: k.Ty.String(), Region: k.Region}
	case traits.ConstEvaluatable:
		spec.ConstEvaluatable = k.Const.String()
	case traits.DynCompatible:
		spec.DynCompatible = k.Trait
	case traits.Subtype:
		spec.Subtype = &PairSpec{A: k.A.String(), B: k.B.String()}
	case traits.Coerce:
		spec.Coerce = &PairSpec{A: k.A.String(), B: k.B.String()}
	case traits.ConstEquate:
		spec.ConstEquate = &PairSpec{A: k.A.String(), B: k.B.String()}
	case traits.Ambiguous:
		spec.Ambiguous = true
	case traits.AliasRelate:
		direction := "equate"
		if k.Direction == traits.AliasSubtype {
			direction = "subtype"
		}
		spec.AliasRelate = &AliasRelateSpec{LHS: k.LHS.String(), RHS: k.RHS.String(), Direction: direction}
	}
	return spec
}

// ParseTraitRef reads "Self: Trait<Args>". The second result reports a
// "!" before the trait name.
func ParseTraitRef(src string) (traits.TraitRef, bool, error) {
	colon := topLevelColon(src)
	if colon < 0 {
		return traits.TraitRef{}, false, fmt.Errorf("invalid trait ref %q: want `Self: Trait`", src)
	}
	self, err := typesystem.Parse(src[:colon])
	if err != nil {
		return traits.TraitRef{}, false, fmt.Errorf("trait ref %q: %w", src, err)
	}

	path := strings.TrimSpace(src[colon+1:])
	negative := strings.HasPrefix(path, "!")
	path = strings.TrimPrefix(path, "!")
	traitTy, err := typesystem.Parse(path)
	if err != nil {
		return traits.TraitRef{}, false, fmt.Errorf("trait ref %q: %w", src, err)
	}

	ref := traits.TraitRef{Args: []typesystem.Type{self}}
	switch t := traitTy.(type) {
	case typesystem.TCon:
		ref.Trait = t.Name
	case typesystem.TApp:
		con, ok := t.Constructor.(typesystem.TCon)
		if !ok {
			return traits.TraitRef{}, false, fmt.Errorf("trait ref %q: invalid trait path", src)
		}
		ref.Trait = con.Name
		ref.Args = append(ref.Args, t.Args...)
	default:
		return traits.TraitRef{}, false, fmt.Errorf("trait ref %q: invalid trait path", src)
	}
	return ref, negative, nil
}

// topLevelColon finds the ": " separating the self type from the trait path,
// skipping any nested inside brackets.
func topLevelColon(src string) int {
	depth := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '<', '(', '[', '{':
			depth++
		case '>':
			// "->" in fn types is not a bracket.
			if i > 0 && src[i-1] == '-' {
				continue
			}
			depth--
		case ')', ']', '}':
			depth--
		case ':':
			if depth == 0 && i+1 < len(src) && src[i+1] == ' ' {
				return i
			}
		}
	}
	return -1
}

func parseAliasTerm(spec AliasTermSpec) (typesystem.TAlias, typesystem.Type, error) {
	t, err := typesystem.Parse(spec.Alias)
	if err != nil {
		return typesystem.TAlias{}, nil, err
	}
	alias, ok := t.(typesystem.TAlias)
	if !ok {
		return typesystem.TAlias{}, nil, fmt.Errorf("%q is not an alias", spec.Alias)
	}
	term, err := typesystem.Parse(spec.Term)
	if err != nil {
		return typesystem.TAlias{}, nil, err
	}
	return alias, term, nil
}

func parsePair(spec PairSpec) (typesystem.Type, typesystem.Type, error) {
	a, err := typesystem.Parse(spec.A)
	if err != nil {
		return nil, nil, err
	}
	b, err := typesystem.Parse(spec.B)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func parseConst(src string) (typesystem.Type, error) {
	ct, err := typesystem.Parse(src)
	if err != nil {
		return nil, err
	}
	if !typesystem.IsConst(ct) {
		return nil, fmt.Errorf("%q is not a constant", src)
	}
	return ct, nil
}
