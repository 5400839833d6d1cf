package scenario

import (
	"fmt"

	"github.com/funvibe/fulfill/internal/config"
	"github.com/funvibe/fulfill/internal/inspect"
	"github.com/funvibe/fulfill/internal/symbols"
	"github.com/funvibe/fulfill/internal/traits"
	"github.com/funvibe/fulfill/internal/typesystem"
)

// Root is a root obligation together with the builder that reports it.
type Root struct {
	Name       string
	Mode       string
	Obligation traits.Obligation
}

// Validate checks the parts of the scenario that don't depend on other
// declarations.
func (s *Scenario) Validate() error {
	if len(s.Obligations) == 0 {
		return fmt.Errorf("scenario has no obligations")
	}
	for i, o := range s.Obligations {
		switch o.Mode {
		case config.ModeError, config.ModeStalled, config.ModeOverflow:
		default:
			return fmt.Errorf("obligation %d: invalid mode %q", i, o.Mode)
		}
	}
	return nil
}

// Declarations converts the declaration part of the scenario.
func (s *Scenario) Declarations() (*Declarations, error) {
	d := &Declarations{}
	for _, t := range s.Traits {
		d.Traits = append(d.Traits, symbols.TraitDef{Name: t.Name, Params: t.Params, LangItem: t.LangItem})
	}
	for _, spec := range s.Impls {
		impl, err := spec.implDef()
		if err != nil {
			return nil, fmt.Errorf("impl %s: %w", spec.ID, err)
		}
		d.Impls = append(d.Impls, impl)
	}
	for _, spec := range s.Consts {
		ty, err := typesystem.Parse(spec.Type)
		if err != nil {
			return nil, fmt.Errorf("const %s: %w", spec.ID, err)
		}
		d.Consts = append(d.Consts, symbols.ConstDef{ID: spec.ID, Generics: spec.Generics, Type: ty})
	}
	for _, spec := range s.TypeBounds {
		clauses, err := spannedClauses(spec.Clauses)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", spec.Name, err)
		}
		d.TypeBounds = append(d.TypeBounds, symbols.TypeBounds{Name: spec.Name, Generics: spec.Generics, Clauses: clauses})
	}
	return d, nil
}

func (spec ImplSpec) implDef() (symbols.ImplDef, error) {
	impl := symbols.ImplDef{
		ID:             spec.ID,
		Trait:          spec.Trait,
		Generics:       spec.Generics,
		DoNotRecommend: spec.DoNotRecommend,
	}
	for _, src := range spec.Types {
		t, err := typesystem.Parse(src)
		if err != nil {
			return symbols.ImplDef{}, err
		}
		impl.TargetTypes = append(impl.TargetTypes, t)
	}
	preds, err := spannedClauses(spec.Predicates)
	if err != nil {
		return symbols.ImplDef{}, err
	}
	impl.Predicates = preds
	for _, cc := range spec.ConstConditions {
		ref, negative, err := ParseTraitRef(cc.TraitRef)
		if err != nil {
			return symbols.ImplDef{}, err
		}
		if negative {
			return symbols.ImplDef{}, fmt.Errorf("const condition %q cannot be negative", cc.TraitRef)
		}
		span, err := traits.ParseSpan(cc.Span)
		if err != nil {
			return symbols.ImplDef{}, err
		}
		impl.ConstConditions = append(impl.ConstConditions, symbols.SpannedTraitRef{TraitRef: ref, Span: span})
	}
	impl.Span, err = traits.ParseSpan(spec.Span)
	if err != nil {
		return symbols.ImplDef{}, err
	}
	return impl, nil
}

func spannedClauses(specs []SpannedPredicate) ([]symbols.SpannedClause, error) {
	var out []symbols.SpannedClause
	for i, sp := range specs {
		pred, err := sp.Predicate.Predicate()
		if err != nil {
			return nil, fmt.Errorf("clause %d: %w", i, err)
		}
		span, err := traits.ParseSpan(sp.Span)
		if err != nil {
			return nil, fmt.Errorf("clause %d: %w", i, err)
		}
		out = append(out, symbols.SpannedClause{Predicate: pred, Span: span})
	}
	return out, nil
}

// Environment converts the scenario's environment.
func (s *Scenario) Environment() (traits.Env, error) {
	var env traits.Env
	for i, spec := range s.Env {
		pred, err := spec.Predicate()
		if err != nil {
			return traits.Env{}, fmt.Errorf("env clause %d: %w", i, err)
		}
		env.Clauses = append(env.Clauses, pred)
	}
	return env, nil
}

// ProofTrees converts the recorded traces.
func (s *Scenario) ProofTrees() ([]*inspect.ProofTree, error) {
	env, err := s.Environment()
	if err != nil {
		return nil, err
	}
	out := make([]*inspect.ProofTree, 0, len(s.Traces))
	for i, t := range s.Traces {
		tree, err := t.proofTree(env, nil)
		if err != nil {
			return nil, fmt.Errorf("trace %d: %w", i, err)
		}
		out = append(out, tree)
	}
	return out, nil
}

// proofTree converts a trace. goal overrides the trace's own goal for
// inline nested traces that omit it.
func (t TraceSpec) proofTree(env traits.Env, goal *traits.Goal) (*inspect.ProofTree, error) {
	tree := &inspect.ProofTree{}
	if len(t.Goal.shapes()) == 0 && goal != nil {
		tree.Goal = *goal
	} else {
		pred, err := t.Goal.Predicate()
		if err != nil {
			return nil, fmt.Errorf("goal: %w", err)
		}
		tree.Goal = traits.Goal{Predicate: pred, Env: env}
	}

	result, err := ParseResult(t.Result)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tree.Goal, err)
	}
	tree.Result = result

	for i, c := range t.Candidates {
		cand, err := c.candidateTree(env)
		if err != nil {
			return nil, fmt.Errorf("%s: candidate %d: %w", tree.Goal, i, err)
		}
		tree.Candidates = append(tree.Candidates, cand)
	}
	return tree, nil
}

func (c CandidateSpec) candidateTree(env traits.Env) (*inspect.CandidateTree, error) {
	result, err := ParseResult(c.Result)
	if err != nil {
		return nil, err
	}
	kind, err := c.probeKind(result)
	if err != nil {
		return nil, err
	}
	cand := &inspect.CandidateTree{Kind: kind, Result: result}

	for _, eq := range c.Constraints {
		a, b, err := parsePair(PairSpec(eq))
		if err != nil {
			return nil, fmt.Errorf("constraint: %w", err)
		}
		cand.Constraints = append(cand.Constraints, inspect.Equate{A: a, B: b})
	}

	for i, n := range c.Nested {
		nested, err := n.nestedTree(env)
		if err != nil {
			return nil, fmt.Errorf("nested %d: %w", i, err)
		}
		cand.Nested = append(cand.Nested, nested)
	}
	return cand, nil
}

var probeTags = map[string]inspect.ProbeTag{
	"root":                        inspect.ProbeRoot,
	"trait_candidate":             inspect.ProbeTraitCandidate,
	"rigid_alias":                 inspect.ProbeRigidAlias,
	"normalized_self_ty_assembly": inspect.ProbeNormalizedSelfTyAssembly,
	"unsize_assembly":             inspect.ProbeUnsizeAssembly,
	"shadowed_env_probing":        inspect.ProbeShadowedEnvProbing,
	"opaque_type_storage_lookup":  inspect.ProbeOpaqueTypeStorageLookup,
}

var candidateSources = map[string]inspect.CandidateSourceKind{
	"impl":                 inspect.CandidateImpl,
	"builtin":              inspect.CandidateBuiltinImpl,
	"param_env":            inspect.CandidateParamEnv,
	"alias_bound":          inspect.CandidateAliasBound,
	"coherence_unknowable": inspect.CandidateCoherenceUnknowable,
}

func (c CandidateSpec) probeKind(result traits.Result) (inspect.ProbeKind, error) {
	name := c.Probe
	if name == "" {
		name = "trait_candidate"
	}
	tag, ok := probeTags[name]
	if !ok {
		return inspect.ProbeKind{}, fmt.Errorf("unknown probe %q", c.Probe)
	}
	if tag != inspect.ProbeTraitCandidate {
		return inspect.ProbeKind{Tag: tag, Result: result}, nil
	}

	source, ok := candidateSources[c.Source]
	if !ok {
		return inspect.ProbeKind{}, fmt.Errorf("unknown candidate source %q", c.Source)
	}
	if source == inspect.CandidateImpl && c.Impl == "" {
		return inspect.ProbeKind{}, fmt.Errorf("impl candidate without impl id")
	}
	return inspect.TraitCandidate(inspect.CandidateSource{Kind: source, ImplID: c.Impl}, result), nil
}

func (n NestedSpec) nestedTree(env traits.Env) (*inspect.NestedTree, error) {
	source := inspect.SourceMisc
	if n.Source != "" {
		var err error
		if source, err = inspect.ParseGoalSource(n.Source); err != nil {
			return nil, err
		}
	}
	pred, err := n.Goal.Predicate()
	if err != nil {
		return nil, fmt.Errorf("goal: %w", err)
	}
	result, err := ParseResult(n.Result)
	if err != nil {
		return nil, err
	}
	nested := &inspect.NestedTree{
		Source: source,
		Goal:   traits.Goal{Predicate: pred, Env: env},
		Result: result,
	}
	if n.Trace != nil {
		tree, err := n.Trace.proofTree(env, &nested.Goal)
		if err != nil {
			return nil, err
		}
		nested.Tree = tree
	}
	return nested, nil
}

// ParseResult reads a result keyword.
func ParseResult(s string) (traits.Result, error) {
	switch s {
	case config.ResultYes:
		return traits.Ok(traits.Yes), nil
	case config.ResultNoSolution:
		return traits.Err(), nil
	case config.ResultAmbiguous:
		return traits.Ok(traits.Maybe(traits.Ambiguity)), nil
	case config.ResultOverflow:
		return traits.Ok(traits.Maybe(traits.Overflow(false))), nil
	case config.ResultOverflowLimit:
		return traits.Ok(traits.Maybe(traits.Overflow(true))), nil
	}
	return traits.Result{}, fmt.Errorf("invalid result %q", s)
}

// Roots converts the root obligations. Every root must have a recorded
// trace.
func (s *Scenario) Roots() ([]Root, error) {
	env, err := s.Environment()
	if err != nil {
		return nil, err
	}
	traced := make(map[string]bool, len(s.Traces))
	for _, t := range s.Traces {
		if pred, err := t.Goal.Predicate(); err == nil {
			traced[pred.String()] = true
		}
	}

	out := make([]Root, 0, len(s.Obligations))
	for i, spec := range s.Obligations {
		pred, err := spec.Predicate.Predicate()
		if err != nil {
			return nil, fmt.Errorf("obligation %d: %w", i, err)
		}
		if !traced[pred.String()] {
			return nil, fmt.Errorf("obligation %d: %w `%s`", i, ErrUnknownGoal, pred)
		}
		span, err := traits.ParseSpan(spec.Span)
		if err != nil {
			return nil, fmt.Errorf("obligation %d: %w", i, err)
		}
		var code traits.CauseCode = traits.MiscCode{}
		if spec.Item != "" {
			code = traits.ItemObligationCode{Def: spec.Item, Span: span}
		}
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("obligation-%d", i)
		}
		out = append(out, Root{
			Name:       name,
			Mode:       spec.Mode,
			Obligation: traits.NewObligation(traits.NewCause(span, spec.Body, code), env, pred),
		})
	}
	return out, nil
}
