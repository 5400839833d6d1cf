package derive

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/fulfill/internal/infer"
	"github.com/funvibe/fulfill/internal/replay"
	"github.com/funvibe/fulfill/internal/symbols"
	"github.com/funvibe/fulfill/internal/traits"
	"github.com/funvibe/fulfill/internal/typesystem"
)

const stalledScenario = `
traits:
  - name: Clone
impls:
  - id: clone_vec
    trait: Clone
    generics: [T]
    types: ["Vec<T>"]
    predicates:
      - predicate: {trait: "T: Clone"}
        span: lib.rs:3:9
traces:
  - goal: {trait: "Vec<?0>: Clone"}
    result: ambiguous
    candidates:
      - source: impl
        impl: clone_vec
        result: ambiguous
        nested:
          - source: impl_where_bound
            goal: {trait: "?0: Clone"}
            result: ambiguous
      - source: param_env
        result: no_solution
  - goal: {trait: "Deep: Clone"}
    result: overflow
    candidates:
      - source: builtin
        result: overflow
        nested:
          - source: impl_where_bound
            goal: {trait: "Deeper: Clone"}
            result: ambiguous
  - goal: {trait: "Deeper: Clone"}
    result: overflow_suggest_limit
  - goal: {trait: "Never: Clone"}
    result: no_solution
  - goal: {trait: "Always: Clone"}
    result: yes
obligations:
  - {name: ambiguous, mode: stalled, predicate: {trait: "Vec<?0>: Clone"}, span: "main.rs:1:1"}
  - {name: overflow, mode: stalled, predicate: {trait: "Deep: Clone"}, span: "main.rs:2:1"}
  - {name: overflow-limit, mode: stalled, predicate: {trait: "Deeper: Clone"}, span: "main.rs:3:1"}
  - {name: never, mode: stalled, predicate: {trait: "Never: Clone"}, span: "main.rs:4:1"}
  - {name: always, mode: stalled, predicate: {trait: "Always: Clone"}, span: "main.rs:5:1"}
`

func overflowFlag(t *testing.T, code traits.FulfillmentErrorCode) *bool {
	t.Helper()
	amb, ok := code.(traits.CodeAmbiguity)
	if !ok {
		t.Fatalf("code = %s, want ambiguity", code)
	}
	return amb.Overflow
}

func TestStalledAmbiguityIsRefined(t *testing.T) {
	r := load(t, stalledScenario)
	root := r.root(t, "ambiguous")

	e := r.refiner.FulfillmentErrorForStalled(root)

	if flag := overflowFlag(t, e.Code); flag != nil {
		t.Errorf("overflow = %t, want genuine ambiguity", *flag)
	}
	if got := e.Obligation.Predicate.String(); got != "?0: Clone" {
		t.Errorf("leaf = %s, want ?0: Clone", got)
	}
	if _, ok := e.Obligation.Cause.Code.(*traits.ImplDerivedCode); !ok {
		t.Errorf("cause code = %T", e.Obligation.Cause.Code)
	}
	if !e.RootObligation.Equal(root) {
		t.Errorf("root changed")
	}
}

func TestStalledOverflowIsNotRefined(t *testing.T) {
	tests := []struct {
		name    string
		suggest bool
	}{
		{"overflow", false},
		{"overflow-limit", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := load(t, stalledScenario)
			root := r.root(t, tt.name)

			e := r.refiner.FulfillmentErrorForStalled(root)

			flag := overflowFlag(t, e.Code)
			if flag == nil || *flag != tt.suggest {
				t.Errorf("code = %s, want overflow with suggest=%t", e.Code, tt.suggest)
			}
			if !e.Obligation.Equal(root) {
				t.Errorf("overflow leaf = %s, want the root", e.Obligation.Predicate)
			}
		})
	}
}

func TestForcedOverflowRefinesAmbiguity(t *testing.T) {
	r := load(t, stalledScenario)
	e := r.refiner.FulfillmentErrorForOverflow(r.root(t, "ambiguous"))

	flag := overflowFlag(t, e.Code)
	if flag == nil || !*flag {
		t.Errorf("code = %s, want overflow suggesting a higher limit", e.Code)
	}
	if got := e.Obligation.Predicate.String(); got != "?0: Clone" {
		t.Errorf("leaf = %s", got)
	}
}

func TestStalledBugs(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"never", "did not expect selection error"},
		{"always", "did not expect successful goal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := load(t, stalledScenario)
			root := r.root(t, tt.name)
			bug := expectBug(t, func() { r.refiner.FulfillmentErrorForStalled(root) })
			if !strings.Contains(bug.Msg, tt.want) {
				t.Errorf("message = %q, want it to mention %q", bug.Msg, tt.want)
			}
			if bug.Span != root.Span() {
				t.Errorf("bug span = %s, want %s", bug.Span, root.Span())
			}
		})
	}
}

const wellFormedScenario = `
traits:
  - name: Clone
  - name: Iter
type_bounds:
  - name: Wrapper
    generics: [T]
    clauses:
      - predicate: {trait: "T: Clone"}
        span: ty.rs:1:15
traces:
  - goal: {well_formed: "Wrapper<Foo>"}
    result: no_solution
    candidates:
      - source: builtin
        result: no_solution
  - goal: {trait: "Foo: Clone"}
    result: no_solution
  - goal: {alias_relate: {lhs: "<Foo as Iter>::Item", rhs: "u8"}}
    result: no_solution
    candidates:
      - source: builtin
        result: no_solution
  - goal: {well_formed: "<Foo as Iter>::Item"}
    result: no_solution
    candidates:
      - source: builtin
        result: no_solution
  - goal: {trait: "Foo: Iter"}
    result: no_solution
  - goal: {alias_relate: {lhs: "<Bar as Iter>::Item", rhs: "u8"}}
    result: no_solution
    candidates:
      - source: builtin
        result: no_solution
  - goal: {alias_relate: {lhs: "<Bar as Iter>::Item", rhs: "Wrapper<Foo>"}}
    result: no_solution
    candidates:
      - source: builtin
        result: no_solution
obligations:
  - {name: wf, mode: error, predicate: {well_formed: "Wrapper<Foo>"}, span: "main.rs:1:1", body: main}
  - {name: relate, mode: error, predicate: {alias_relate: {lhs: "<Foo as Iter>::Item", rhs: "u8"}}, span: "main.rs:2:1"}
  - {name: relate-ok, mode: error, predicate: {alias_relate: {lhs: "<Bar as Iter>::Item", rhs: "u8"}}, span: "main.rs:3:1"}
  - {name: relate-rhs, mode: error, predicate: {alias_relate: {lhs: "<Bar as Iter>::Item", rhs: "Wrapper<Foo>"}}, span: "main.rs:4:1"}
`

func TestWellFormedSubWalk(t *testing.T) {
	r := load(t, wellFormedScenario)
	root := r.root(t, "wf")

	e := r.refiner.FulfillmentErrorForNoSolution(root)

	if got := e.Obligation.Predicate.String(); got != "Foo: Clone" {
		t.Fatalf("leaf = %s, want the failing type bound", got)
	}
	if e.Obligation.RecursionDepth != 1 {
		t.Errorf("depth = %d, want 1", e.Obligation.RecursionDepth)
	}
	if e.Obligation.Cause.String() != root.Cause.String() {
		t.Errorf("cause = %s, want the root cause unchanged", e.Obligation.Cause)
	}
	if _, ok := e.Code.(traits.CodeSelect); !ok {
		t.Errorf("code = %s", e.Code)
	}
}

func TestAliasRelateBlamesIllFormedSide(t *testing.T) {
	r := load(t, wellFormedScenario)

	e := r.refiner.FulfillmentErrorForNoSolution(r.root(t, "relate"))
	if got := e.Obligation.Predicate.String(); got != "Foo: Iter" {
		t.Errorf("leaf = %s, want Foo: Iter", got)
	}

	root := r.root(t, "relate-ok")
	e = r.refiner.FulfillmentErrorForNoSolution(root)
	if !e.Obligation.Equal(root) {
		t.Errorf("well-formed sides should leave the relation itself, got %s", e.Obligation.Predicate)
	}
	if _, ok := e.Code.(traits.CodeProject); !ok {
		t.Errorf("code = %s, want project", e.Code)
	}

	// A well-formed lhs moves on to the rhs.
	e = r.refiner.FulfillmentErrorForNoSolution(r.root(t, "relate-rhs"))
	if got := e.Obligation.Predicate.String(); got != "Foo: Clone" {
		t.Errorf("leaf = %s, want the rhs type bound", got)
	}
	if e.Obligation.RecursionDepth != 1 {
		t.Errorf("depth = %d, want 1", e.Obligation.RecursionDepth)
	}
}

const constraintScenario = `
traits:
  - name: Clone
impls:
  - id: clone_vec
    trait: Clone
    generics: [T]
    types: ["Vec<T>"]
    predicates:
      - predicate: {trait: "T: Clone"}
        span: lib.rs:3:9
traces:
  - goal: {trait: "Vec<?1>: Clone"}
    result: no_solution
    candidates:
      - source: impl
        impl: clone_vec
        result: no_solution
        constraints:
          - {a: "?1", b: "Foo"}
        nested:
          - source: impl_where_bound
            goal: {trait: "?1: Clone"}
            result: no_solution
  - goal: {trait: "Foo: Clone"}
    result: no_solution
obligations:
  - {name: infer, mode: error, predicate: {trait: "Vec<?1>: Clone"}, span: "main.rs:1:1"}
`

func TestCandidateConstraintsResolveLeaf(t *testing.T) {
	r := load(t, constraintScenario)
	e := r.refiner.FulfillmentErrorForNoSolution(r.root(t, "infer"))

	if got := e.Obligation.Predicate.String(); got != "Foo: Clone" {
		t.Errorf("leaf = %s, want the constraint applied", got)
	}
	code := e.Obligation.Cause.Code.(*traits.ImplDerivedCode)
	if got := code.Derived.ParentTraitPred.String(); got != "Vec<?1>: Clone" {
		t.Errorf("parent = %s", got)
	}
}

func emptyRefiner() (*Refiner, *infer.Ctxt) {
	infcx := infer.New()
	return New(infcx, replay.New(nil), symbols.NewSymbolTable()), infcx
}

func obligationOf(kind traits.PredicateKind) traits.Obligation {
	cause := traits.NewCause(traits.Span{File: "main.rs", Line: 1, Column: 1}, "", nil)
	return traits.NewObligation(cause, traits.Env{}, traits.NewPredicate(kind))
}

func samplePredicate(tag traits.PredicateTag) traits.PredicateKind {
	ty := typesystem.MustParse
	alias := ty("<Vec<u8> as Iterator>::Item").(typesystem.TAlias)
	switch tag {
	case traits.TagTrait:
		return traits.TraitPredicate{TraitRef: traits.TraitRef{Trait: "Clone", Args: []typesystem.Type{ty("Foo")}}}
	case traits.TagHostEffect:
		return traits.HostEffectPredicate{TraitRef: traits.TraitRef{Trait: "Add", Args: []typesystem.Type{ty("Foo")}}, Constness: traits.ConstnessConst}
	case traits.TagProjection:
		return traits.ProjectionPredicate{Alias: alias, Term: ty("u8")}
	case traits.TagConstArgHasType:
		return traits.ConstArgHasType{Const: ty("const 3: u8"), Ty: ty("usize")}
	case traits.TagWellFormed:
		return traits.WellFormed{Arg: ty("Foo")}
	case traits.TagTypeOutlives:
		return traits.TypeOutlives{Ty: ty("Foo"), Region: "'a"}
	case traits.TagConstEvaluatable:
		return traits.ConstEvaluatable{Const: ty("const {LEN}")}
	case traits.TagDynCompatible:
		return traits.DynCompatible{Trait: "Clone"}
	case traits.TagSubtype:
		return traits.Subtype{A: ty("u8"), B: ty("u16")}
	case traits.TagCoerce:
		return traits.Coerce{A: ty("u8"), B: ty("u16")}
	case traits.TagConstEquate:
		return traits.ConstEquate{A: ty("const 1: u8"), B: ty("const 2: u8")}
	case traits.TagAmbiguous:
		return traits.Ambiguous{}
	case traits.TagNormalizesTo:
		return traits.NormalizesTo{Alias: alias, Term: ty("u8")}
	case traits.TagAliasRelate:
		return traits.AliasRelate{LHS: alias, RHS: ty("u8")}
	}
	panic("unhandled predicate tag " + tag.String())
}

func TestNoSolutionCodeCoversEveryShape(t *testing.T) {
	want := map[traits.PredicateTag]string{
		traits.TagTrait:            "select: unimplemented",
		traits.TagHostEffect:       "select: unimplemented",
		traits.TagProjection:       "project: types differ",
		traits.TagConstArgHasType:  "select: constant `const 3: u8` has type `u8`, expected `usize`",
		traits.TagWellFormed:       "select: unimplemented",
		traits.TagTypeOutlives:     "select: unimplemented",
		traits.TagConstEvaluatable: "select: unimplemented",
		traits.TagDynCompatible:    "select: unimplemented",
		traits.TagSubtype:          "subtype: expected `u8`, found `u16`",
		traits.TagCoerce:           "subtype: expected `u16`, found `u8`",
		traits.TagAmbiguous:        "select: unimplemented",
		traits.TagNormalizesTo:     "project: types differ",
		traits.TagAliasRelate:      "project: types differ",
	}

	for _, tag := range traits.AllPredicateTags {
		t.Run(tag.String(), func(t *testing.T) {
			r, _ := emptyRefiner()
			o := obligationOf(samplePredicate(tag))
			if tag == traits.TagConstEquate {
				expectBug(t, func() { r.noSolutionCode(o) })
				return
			}
			if got := r.noSolutionCode(o).String(); got != want[tag] {
				t.Errorf("code = %q, want %q", got, want[tag])
			}
		})
	}
}

func TestConstArgType(t *testing.T) {
	ty := typesystem.MustParse
	table := symbols.NewSymbolTable()
	if err := table.RegisterConst(symbols.ConstDef{ID: "LEN", Generics: []string{"T"}, Type: ty("Wrap<T>")}); err != nil {
		t.Fatal(err)
	}
	r := New(infer.New(), replay.New(nil), table)
	env := traits.Env{Clauses: []traits.Predicate{
		traits.NewPredicate(traits.ConstArgHasType{Const: typesystem.ConstParam{Name: "N"}, Ty: ty("u32")}),
	}}

	tests := []struct {
		name  string
		konst typesystem.Type
		want  string
	}{
		{"unevaluated", ty("const {LEN}<u8>"), "Wrap<u8>"},
		{"param", typesystem.ConstParam{Name: "N"}, "u32"},
		{"value", ty("const 3: i64"), "i64"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := obligationOf(traits.ConstArgHasType{Const: tt.konst, Ty: ty("usize")})
			o.Env = env
			code, ok := r.noSolutionCode(o).(traits.CodeSelect)
			if !ok {
				t.Fatalf("code = %T", code)
			}
			wrong := code.Err.(traits.ConstArgHasWrongType)
			if got := wrong.ConstTy.String(); got != tt.want {
				t.Errorf("const type = %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("inference variable", func(t *testing.T) {
		o := obligationOf(traits.ConstArgHasType{Const: ty("const ?c"), Ty: ty("usize")})
		bug := expectBug(t, func() { r.noSolutionCode(o) })
		if !strings.Contains(bug.Msg, "don't know how to compute type") {
			t.Errorf("message = %q", bug.Msg)
		}
	})
}

func TestSubtypeUnderBinder(t *testing.T) {
	r, infcx := emptyRefiner()
	pred := traits.Predicate{
		Bound: []string{"T"},
		Kind:  traits.Subtype{A: typesystem.MustParse("Vec<T>"), B: typesystem.MustParse("Vec<u8>")},
	}
	o := obligationOf(nil)
	o.Predicate = pred

	code, ok := r.noSolutionCode(o).(traits.CodeSubtype)
	if !ok {
		t.Fatalf("code = %T", code)
	}
	got := []string{code.ExpectedFound.Expected.String(), code.ExpectedFound.Found.String()}
	if diff := cmp.Diff([]string{"Vec<!1_T>", "Vec<u8>"}, got); diff != "" {
		t.Errorf("expected/found mismatch (-want +got):\n%s", diff)
	}
	if infcx.Universe() != 1 {
		t.Errorf("universe = %d, want the entered universe to stay", infcx.Universe())
	}
}

const bindingScenario = `
traits:
  - name: Clone
impls:
  - id: clone_vec
    trait: Clone
    generics: [T]
    types: ["Vec<T>"]
    predicates:
      - predicate: {trait: "T: Clone"}
        span: lib.rs:3:9
traces:
  - goal: {trait: "Vec<?1>: Clone"}
    result: no_solution
    candidates:
      - source: impl
        impl: clone_vec
        result: no_solution
        constraints:
          - {a: "?1", b: "Foo"}
        nested:
          - source: misc
            goal: {well_formed: "Foo"}
            result: no_solution
  - goal: {trait: "Vec<?2>: Clone"}
    result: no_solution
    candidates:
      - source: impl
        impl: clone_vec
        result: no_solution
        constraints:
          - {a: "?2", b: "Foo"}
        nested:
          - source: impl_where_bound
            goal: {trait: "?2: Clone"}
            result: no_solution
  - goal: {trait: "Foo: Clone"}
    result: no_solution
  - goal: {trait: "Vec<?3>: Clone"}
    result: ambiguous
    candidates:
      - source: impl
        impl: clone_vec
        result: ambiguous
        constraints:
          - {a: "?3", b: "Bar"}
        nested:
          - source: impl_where_bound
            goal: {trait: "?3: Clone"}
            result: ambiguous
  - goal: {trait: "Bar: Clone"}
    result: ambiguous
obligations:
  - {name: unrefined, mode: error, predicate: {trait: "Vec<?1>: Clone"}, span: "main.rs:1:1"}
  - {name: refined, mode: error, predicate: {trait: "Vec<?2>: Clone"}, span: "main.rs:2:1"}
  - {name: ambiguous, mode: stalled, predicate: {trait: "Vec<?3>: Clone"}, span: "main.rs:3:1"}
`

func TestBuildersLeaveInferenceStateUntouched(t *testing.T) {
	tests := []struct {
		name  string
		root  string
		build func(*Refiner, traits.Obligation) traits.FulfillmentError
		leaf  string
	}{
		{"no solution unrefined", "unrefined", (*Refiner).FulfillmentErrorForNoSolution, "Vec<?1>: Clone"},
		{"no solution refined", "refined", (*Refiner).FulfillmentErrorForNoSolution, "Foo: Clone"},
		{"stalled", "ambiguous", (*Refiner).FulfillmentErrorForStalled, "Bar: Clone"},
		{"overflow", "ambiguous", (*Refiner).FulfillmentErrorForOverflow, "Bar: Clone"},
		{"overflow unrefined", "unrefined", (*Refiner).FulfillmentErrorForOverflow, "Vec<?1>: Clone"},
	}

	vars := []string{"?1", "?2", "?3"}
	snapshot := func(r *run) []string {
		out := []string{fmt.Sprint(r.infcx.Bindings())}
		for _, name := range vars {
			out = append(out, r.infcx.Resolve(typesystem.MustParse(name)).String())
		}
		return out
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := load(t, bindingScenario)
			before := snapshot(r)

			e := tt.build(r.refiner, r.root(t, tt.root))

			if got := e.Obligation.Predicate.String(); got != tt.leaf {
				t.Errorf("leaf = %s, want %s", got, tt.leaf)
			}
			if diff := cmp.Diff(before, snapshot(r)); diff != "" {
				t.Errorf("inference state changed (-before +after):\n%s", diff)
			}
			if r.infcx.InSnapshot() {
				t.Errorf("snapshot left open")
			}
		})
	}
}
