package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/fulfill/internal/inspect"
	"github.com/funvibe/fulfill/internal/symbols"
	"github.com/funvibe/fulfill/internal/traits"
)

const sample = `
name: clone
traits:
  - name: Clone
  - name: FnPtr
    lang_item: fn_ptr_trait
impls:
  - id: clone_vec
    trait: Clone
    generics: [T]
    types: ["Vec<T>"]
    predicates:
      - predicate: {trait: "T: Clone"}
        span: lib.rs:3:12
    const_conditions:
      - trait_ref: "T: Clone"
        span: lib.rs:3:30
    span: lib.rs:3:1
consts:
  - id: LEN
    generics: [T]
    type: usize
type_bounds:
  - name: Wrapper
    generics: [T]
    clauses:
      - predicate: {trait: "T: Clone"}
        span: ty.rs:1:1
env:
  - {const_arg_has_type: {const: "const N", type: "usize"}}
traces:
  - goal: {trait: "Vec<Foo>: Clone"}
    result: no_solution
    candidates:
      - source: impl
        impl: clone_vec
        result: no_solution
        constraints:
          - {a: "?0", b: "Foo"}
        nested:
          - source: impl_where_bound
            goal: {trait: "Foo: Clone"}
            result: no_solution
            trace:
              result: no_solution
      - probe: rigid_alias
        result: ambiguous
obligations:
  - name: clone-vec
    mode: error
    predicate: {trait: "Vec<Foo>: Clone"}
    span: main.rs:10:5
    body: main
    item: needs_clone
  - mode: stalled
    predicate: {trait: "Vec<Foo>: Clone"}
`

func TestParseAndConvert(t *testing.T) {
	s, err := Parse([]byte(sample), "sample.yaml")
	require.NoError(t, err)
	assert.Equal(t, "clone", s.Name)

	decls, err := s.Declarations()
	require.NoError(t, err)
	require.Len(t, decls.Impls, 1)
	impl := decls.Impls[0]
	assert.Equal(t, "Vec<T>: Clone", impl.TraitRef().String())
	require.Len(t, impl.Predicates, 1)
	assert.Equal(t, traits.Span{File: "lib.rs", Line: 3, Column: 12}, impl.Predicates[0].Span)
	require.Len(t, impl.ConstConditions, 1)
	assert.Equal(t, 30, impl.ConstConditions[0].Span.Column)

	table := symbols.NewSymbolTable()
	require.NoError(t, decls.Register(table))
	fnPtr, ok := table.LangItem("fn_ptr_trait")
	require.True(t, ok)
	assert.Equal(t, "FnPtr", fnPtr)

	trees, err := s.ProofTrees()
	require.NoError(t, err)
	require.Len(t, trees, 1)
	tree := trees[0]
	assert.True(t, tree.Result.IsErr())
	require.Len(t, tree.Candidates, 2)

	impl0 := tree.Candidates[0]
	id, ok := impl0.Kind.ImplID()
	require.True(t, ok)
	assert.Equal(t, "clone_vec", id)
	require.Len(t, impl0.Constraints, 1)
	assert.Equal(t, "?0", impl0.Constraints[0].A.String())
	require.Len(t, impl0.Nested, 1)
	nested := impl0.Nested[0]
	assert.Equal(t, inspect.SourceImplWhereBound, nested.Source)
	require.NotNil(t, nested.Tree)
	assert.Equal(t, "Foo: Clone", nested.Tree.Goal.Predicate.String(), "inline trace inherits the nested goal")

	assert.True(t, tree.Candidates[1].Kind.IsRigidAlias())
	assert.True(t, tree.Candidates[1].Result.IsAmbiguity())

	roots, err := s.Roots()
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "clone-vec", roots[0].Name)
	assert.Equal(t, "obligation-1", roots[1].Name)
	assert.Equal(t, traits.ItemObligationCode{Def: "needs_clone", Span: traits.Span{File: "main.rs", Line: 10, Column: 5}}, roots[0].Obligation.Cause.Code)
	assert.Equal(t, traits.MiscCode{}, roots[1].Obligation.Cause.Code)
	assert.Equal(t, "main", roots[0].Obligation.Cause.BodyID)
	assert.Len(t, roots[0].Obligation.Env.Clauses, 1)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "no obligations",
			src:  "traits: [{name: Clone}]",
			want: "no obligations",
		},
		{
			name: "invalid mode",
			src:  `obligations: [{mode: later, predicate: {trait: "Foo: Clone"}}]`,
			want: `invalid mode "later"`,
		},
		{
			name: "malformed yaml",
			src:  "obligations: [",
			want: "bad.yaml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRootsRequireTrace(t *testing.T) {
	s, err := Parse([]byte(`obligations: [{mode: error, predicate: {trait: "Foo: Clone"}}]`), "t.yaml")
	require.NoError(t, err)
	_, err = s.Roots()
	require.ErrorIs(t, err, ErrUnknownGoal)
}

func TestPredicateShapes(t *testing.T) {
	tests := []struct {
		name string
		spec PredicateSpec
		want string
	}{
		{"trait", PredicateSpec{Trait: "Vec<u8>: Into<String>"}, "Vec<u8>: Into<String>"},
		{"negative", PredicateSpec{Trait: "Foo: !Send"}, "Foo: !Send"},
		{"fn self", PredicateSpec{Trait: "fn(u8) -> u16: FnPtr"}, "fn(u8) -> u16: FnPtr"},
		{"host", PredicateSpec{HostEffect: &HostEffectSpec{TraitRef: "Foo: Add", Constness: "const"}}, "Foo: const Add"},
		{"well formed", PredicateSpec{WellFormed: "Vec<?0>"}, "wf(Vec<?0>)"},
		{"subtype", PredicateSpec{Subtype: &PairSpec{A: "u8", B: "u16"}}, "u8 <: u16"},
		{"alias relate", PredicateSpec{AliasRelate: &AliasRelateSpec{LHS: "<Foo as Iter>::Item", RHS: "u8", Direction: "subtype"}}, "alias-relate(<Foo as Iter>::Item <: u8)"},
		{"bound", PredicateSpec{For: []string{"T"}, Trait: "T: Clone"}, "for<T> T: Clone"},
		{"ambiguous", PredicateSpec{Ambiguous: true}, "ambiguous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := tt.spec.Predicate()
			require.NoError(t, err)
			assert.Equal(t, tt.want, pred.String())

			back, err := FromPredicate(pred).Predicate()
			require.NoError(t, err)
			assert.Equal(t, pred.String(), back.String())
		})
	}
}

func TestPredicateShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		spec PredicateSpec
	}{
		{"empty", PredicateSpec{}},
		{"two shapes", PredicateSpec{Trait: "Foo: Clone", WellFormed: "Foo"}},
		{"no colon", PredicateSpec{Trait: "Foo"}},
		{"not an alias", PredicateSpec{Projection: &AliasTermSpec{Alias: "Foo", Term: "u8"}}},
		{"not a constant", PredicateSpec{ConstEvaluatable: "Foo"}},
		{"bad constness", PredicateSpec{HostEffect: &HostEffectSpec{TraitRef: "Foo: Add", Constness: "sometimes"}}},
		{"negative host", PredicateSpec{HostEffect: &HostEffectSpec{TraitRef: "Foo: !Add"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.Predicate()
			assert.Error(t, err)
		})
	}
}

func TestMergeKeepsOwnDeclarations(t *testing.T) {
	own := &Declarations{
		Traits: []symbols.TraitDef{{Name: "Clone"}},
		Impls:  []symbols.ImplDef{{ID: "a", Trait: "Clone", DoNotRecommend: true}},
	}
	other := &Declarations{
		Traits: []symbols.TraitDef{{Name: "Clone", LangItem: "x"}, {Name: "Send"}},
		Impls:  []symbols.ImplDef{{ID: "a", Trait: "Clone"}, {ID: "b", Trait: "Send"}},
		Consts: []symbols.ConstDef{{ID: "LEN"}},
	}
	own.Merge(other)

	require.Len(t, own.Traits, 2)
	assert.Empty(t, own.Traits[0].LangItem)
	require.Len(t, own.Impls, 2)
	assert.True(t, own.Impls[0].DoNotRecommend)
	assert.Equal(t, "b", own.Impls[1].ID)
	assert.Len(t, own.Consts, 1)
}

func TestLoadAndMarshal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	data, err := s.Marshal()
	require.NoError(t, err)
	again, err := Parse(data, "again.yaml")
	require.NoError(t, err)
	assert.Equal(t, s, again)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
