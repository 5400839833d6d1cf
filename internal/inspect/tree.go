// Package inspect is a read-only view over the proof trees a solver records
// while evaluating a goal. Candidates and nested goals are instantiated on
// demand against the caller's inference context.
package inspect

import (
	"github.com/funvibe/fulfill/internal/infer"
	"github.com/funvibe/fulfill/internal/traits"
	"github.com/funvibe/fulfill/internal/typesystem"
)

// ProofTree is the recorded evaluation of one goal.
type ProofTree struct {
	Goal       traits.Goal
	Result     traits.Result
	Candidates []*CandidateTree
}

// CandidateTree is one recorded candidate of a goal.
type CandidateTree struct {
	Kind   ProbeKind
	Result traits.Result
	// Constraints are the inference constraints the candidate made; they
	// are replayed when its nested goals are instantiated.
	Constraints []Equate
	Nested      []*NestedTree
}

// Equate records that two terms were unified.
type Equate struct {
	A, B typesystem.Type
}

// NestedTree is a goal a candidate required. Tree may be nil, in which case
// the nested goal's own proof tree is regenerated through the solver.
type NestedTree struct {
	Source GoalSource
	Goal   traits.Goal
	Result traits.Result
	Tree   *ProofTree
}

// Solver is the forward solver collaborator.
type Solver interface {
	// EvaluateRootGoal re-solves goal. A definite failure is reported as
	// traits.ErrNoSolution.
	EvaluateRootGoal(infcx *infer.Ctxt, goal traits.Goal) (traits.Certainty, error)
	// GenerateProofTree re-solves goal and records the full proof tree.
	GenerateProofTree(infcx *infer.Ctxt, goal traits.Goal) *ProofTree
}
