package replay

import (
	"errors"
	"testing"

	"github.com/funvibe/fulfill/internal/infer"
	"github.com/funvibe/fulfill/internal/inspect"
	"github.com/funvibe/fulfill/internal/traits"
	"github.com/funvibe/fulfill/internal/typesystem"
)

func goal(self, trait string) traits.Goal {
	return traits.Goal{Predicate: traits.NewPredicate(traits.TraitPredicate{TraitRef: traits.TraitRef{
		Trait: trait,
		Args:  []typesystem.Type{typesystem.MustParse(self)},
	}})}
}

func TestSolverLookup(t *testing.T) {
	inner := &inspect.ProofTree{Goal: goal("Foo", "Clone"), Result: traits.Err()}
	root := &inspect.ProofTree{
		Goal:   goal("Vec<Foo>", "Clone"),
		Result: traits.Err(),
		Candidates: []*inspect.CandidateTree{{
			Kind:   inspect.TraitCandidate(inspect.CandidateSource{Kind: inspect.CandidateImpl, ImplID: "clone_vec"}, traits.Err()),
			Result: traits.Err(),
			Nested: []*inspect.NestedTree{{Source: inspect.SourceImplWhereBound, Goal: inner.Goal, Result: traits.Err(), Tree: inner}},
		}},
	}
	ambiguous := &inspect.ProofTree{Goal: goal("?0", "Clone"), Result: traits.Ok(traits.Maybe(traits.Ambiguity))}
	s := New([]*inspect.ProofTree{root, ambiguous})

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (inline nested trees are recorded)", s.Len())
	}

	infcx := infer.New()
	if _, err := s.EvaluateRootGoal(infcx, root.Goal); !errors.Is(err, traits.ErrNoSolution) {
		t.Errorf("EvaluateRootGoal(root) error = %v, want ErrNoSolution", err)
	}
	if got := s.GenerateProofTree(infcx, inner.Goal); got != inner {
		t.Errorf("nested tree not served")
	}

	c, err := s.EvaluateRootGoal(infcx, ambiguous.Goal)
	if err != nil {
		t.Fatal(err)
	}
	if cause, maybe := c.MaybeCause(); !maybe || cause.Overflow {
		t.Errorf("certainty = %s, want ambiguity", c)
	}

	unknown := goal("Bar", "Clone")
	if c, err := s.EvaluateRootGoal(infcx, unknown); err != nil || !c.IsYes() {
		t.Errorf("unrecorded goal should be proven, got %s, %v", c, err)
	}
	if tree := s.GenerateProofTree(infcx, unknown); len(tree.Candidates) != 0 || !tree.Result.IsOk() {
		t.Errorf("unrecorded goal tree = %+v", tree)
	}
}

func TestSolverResolvesVariables(t *testing.T) {
	tree := &inspect.ProofTree{Goal: goal("Foo", "Clone"), Result: traits.Err()}
	s := New([]*inspect.ProofTree{tree})

	infcx := infer.New()
	if err := infcx.Equate(typesystem.MustParse("?0"), typesystem.MustParse("Foo")); err != nil {
		t.Fatal(err)
	}
	if got := s.GenerateProofTree(infcx, goal("?0", "Clone")); got != tree {
		t.Errorf("lookup should resolve ?0 to Foo")
	}
}

func TestSolverKeysByEnvironment(t *testing.T) {
	bare := &inspect.ProofTree{Goal: goal("T", "Clone"), Result: traits.Err()}
	assumed := &inspect.ProofTree{Goal: goal("T", "Clone"), Result: traits.Ok(traits.Yes)}
	assumed.Goal.Env = traits.Env{Clauses: []traits.Predicate{assumed.Goal.Predicate}}
	s := New([]*inspect.ProofTree{bare, assumed})

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want one tree per environment", s.Len())
	}
	infcx := infer.New()
	if got := s.GenerateProofTree(infcx, bare.Goal); got != bare {
		t.Errorf("goal without assumptions served the wrong tree")
	}
	if got := s.GenerateProofTree(infcx, assumed.Goal); got != assumed {
		t.Errorf("goal under its own assumption served the wrong tree")
	}
}
