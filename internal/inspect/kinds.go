package inspect

import (
	"fmt"

	"github.com/funvibe/fulfill/internal/traits"
)

// GoalSource says why a candidate required a nested goal.
type GoalSource int

const (
	SourceMisc GoalSource = iota
	SourceImplWhereBound
	SourceAliasBoundConstCondition
	SourceInstantiateHigherRanked
	SourceAliasWellFormed
)

// AllGoalSources lists every goal source.
var AllGoalSources = []GoalSource{
	SourceMisc, SourceImplWhereBound, SourceAliasBoundConstCondition,
	SourceInstantiateHigherRanked, SourceAliasWellFormed,
}

var goalSourceNames = map[GoalSource]string{
	SourceMisc:                     "misc",
	SourceImplWhereBound:           "impl_where_bound",
	SourceAliasBoundConstCondition: "alias_bound_const_condition",
	SourceInstantiateHigherRanked:  "instantiate_higher_ranked",
	SourceAliasWellFormed:          "alias_well_formed",
}

func (s GoalSource) String() string {
	if name, ok := goalSourceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("GoalSource(%d)", int(s))
}

// ParseGoalSource is the inverse of GoalSource.String.
func ParseGoalSource(name string) (GoalSource, error) {
	for s, n := range goalSourceNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown goal source %q", name)
}

// CandidateSourceKind is where a trait candidate came from.
type CandidateSourceKind int

const (
	CandidateImpl CandidateSourceKind = iota
	CandidateBuiltinImpl
	CandidateParamEnv
	CandidateAliasBound
	CandidateCoherenceUnknowable
)

// CandidateSource identifies a trait candidate; ImplID is set for impls.
type CandidateSource struct {
	Kind   CandidateSourceKind
	ImplID string
}

func (s CandidateSource) String() string {
	switch s.Kind {
	case CandidateImpl:
		return fmt.Sprintf("impl(%s)", s.ImplID)
	case CandidateBuiltinImpl:
		return "builtin"
	case CandidateParamEnv:
		return "param_env"
	case CandidateAliasBound:
		return "alias_bound"
	case CandidateCoherenceUnknowable:
		return "coherence_unknowable"
	default:
		return fmt.Sprintf("CandidateSource(%d)", int(s.Kind))
	}
}

// ProbeTag is the closed set of probe (candidate) shapes.
type ProbeTag int

const (
	ProbeRoot ProbeTag = iota
	ProbeTraitCandidate
	ProbeRigidAlias
	ProbeNormalizedSelfTyAssembly
	ProbeUnsizeAssembly
	ProbeShadowedEnvProbing
	ProbeOpaqueTypeStorageLookup
)

// ProbeKind describes one strategy the solver tried for a goal.
type ProbeKind struct {
	Tag    ProbeTag
	Source CandidateSource
	Result traits.Result
}

// TraitCandidate builds the probe kind of a trait candidate.
func TraitCandidate(source CandidateSource, result traits.Result) ProbeKind {
	return ProbeKind{Tag: ProbeTraitCandidate, Source: source, Result: result}
}

// ImplID returns the impl of a user-impl trait candidate.
func (k ProbeKind) ImplID() (string, bool) {
	if k.Tag == ProbeTraitCandidate && k.Source.Kind == CandidateImpl {
		return k.Source.ImplID, true
	}
	return "", false
}

// IsBuiltinImpl reports whether this is a trait candidate from a builtin rule.
func (k ProbeKind) IsBuiltinImpl() bool {
	return k.Tag == ProbeTraitCandidate && k.Source.Kind == CandidateBuiltinImpl
}

// IsRigidAlias reports whether this is the rigid-alias fallback.
func (k ProbeKind) IsRigidAlias() bool { return k.Tag == ProbeRigidAlias }

func (k ProbeKind) String() string {
	switch k.Tag {
	case ProbeRoot:
		return "root"
	case ProbeTraitCandidate:
		return fmt.Sprintf("trait_candidate(%s)", k.Source)
	case ProbeRigidAlias:
		return "rigid_alias"
	case ProbeNormalizedSelfTyAssembly:
		return "normalized_self_ty_assembly"
	case ProbeUnsizeAssembly:
		return "unsize_assembly"
	case ProbeShadowedEnvProbing:
		return "shadowed_env_probing"
	case ProbeOpaqueTypeStorageLookup:
		return "opaque_type_storage_lookup"
	default:
		return fmt.Sprintf("ProbeTag(%d)", int(k.Tag))
	}
}
