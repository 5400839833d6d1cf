package inspect

import (
	"github.com/funvibe/fulfill/internal/infer"
	"github.com/funvibe/fulfill/internal/traits"
)

// Visitor walks proof trees.
type Visitor[R any] interface {
	// Span is the location nested obligations are reported at.
	Span() traits.Span
	VisitGoal(goal *InspectGoal) ControlFlow[R]
}

// InspectGoal is a goal node of a proof tree, bound to an inference context.
type InspectGoal struct {
	infcx  *infer.Ctxt
	solver Solver
	depth  int
	goal   traits.Goal
	source GoalSource
	result traits.Result
	tree   *ProofTree
}

func newInspectGoal(infcx *infer.Ctxt, solver Solver, depth int, source GoalSource, goal traits.Goal, result traits.Result, tree *ProofTree) *InspectGoal {
	return &InspectGoal{
		infcx:  infcx,
		solver: solver,
		depth:  depth,
		goal:   traits.Goal{Predicate: infcx.ResolvePredicate(goal.Predicate), Env: goal.Env},
		source: source,
		result: result,
		tree:   tree,
	}
}

func (g *InspectGoal) Infcx() *infer.Ctxt    { return g.infcx }
func (g *InspectGoal) Goal() traits.Goal     { return g.goal }
func (g *InspectGoal) Source() GoalSource    { return g.source }
func (g *InspectGoal) Result() traits.Result { return g.result }
func (g *InspectGoal) Depth() int            { return g.depth }

// Candidates returns a view of every recorded candidate, in the order the
// solver tried them.
func (g *InspectGoal) Candidates() []*InspectCandidate {
	out := make([]*InspectCandidate, len(g.tree.Candidates))
	for i, c := range g.tree.Candidates {
		out[i] = &InspectCandidate{goal: g, tree: c}
	}
	return out
}

// InspectCandidate is one candidate of an InspectGoal.
type InspectCandidate struct {
	goal *InspectGoal
	tree *CandidateTree
}

func (c *InspectCandidate) Goal() *InspectGoal    { return c.goal }
func (c *InspectCandidate) Kind() ProbeKind       { return c.tree.Kind }
func (c *InspectCandidate) Result() traits.Result { return c.tree.Result }

// InstantiateNestedGoals replays the candidate's inference constraints into
// the goal's inference context and returns its nested goals in the order
// the candidate required them. Callers that must not keep the constraints
// run this inside a snapshot.
func (c *InspectCandidate) InstantiateNestedGoals() []*InspectGoal {
	infcx := c.goal.infcx
	for _, eq := range c.tree.Constraints {
		// A constraint that no longer unifies has already been decided
		// differently by the caller; the nested goals are still inspected.
		_ = infcx.Equate(eq.A, eq.B)
	}

	out := make([]*InspectGoal, 0, len(c.tree.Nested))
	for _, nested := range c.tree.Nested {
		// Nested goals carry the candidate's bindings with them, so they
		// stay meaningful after a caller rolls the bindings back.
		goal := infcx.ResolveGoal(nested.Goal)
		tree := nested.Tree
		if tree == nil {
			tree = c.goal.solver.GenerateProofTree(infcx, goal)
		}
		out = append(out, newInspectGoal(infcx, c.goal.solver, c.goal.depth+1, nested.Source, goal, nested.Result, tree))
	}
	return out
}

// InstantiateProofTreeForNestedGoal evaluates a goal that was not recorded
// as a nested goal of this candidate and returns it as if it had been.
func (c *InspectCandidate) InstantiateProofTreeForNestedGoal(source GoalSource, goal traits.Goal) *InspectGoal {
	tree := c.goal.solver.GenerateProofTree(c.goal.infcx, goal)
	return newInspectGoal(c.goal.infcx, c.goal.solver, c.goal.depth+1, source, goal, tree.Result, tree)
}

// VisitWith hands the goal to a visitor.
func VisitWith[R any](g *InspectGoal, v Visitor[R]) ControlFlow[R] {
	return v.VisitGoal(g)
}

// VisitProofTree re-solves goal at the root and walks its proof tree.
func VisitProofTree[R any](infcx *infer.Ctxt, solver Solver, goal traits.Goal, v Visitor[R]) ControlFlow[R] {
	return VisitProofTreeAtDepth(infcx, solver, goal, 0, v)
}

// VisitProofTreeAtDepth re-solves goal as if it were nested depth levels
// below a root and walks its proof tree.
func VisitProofTreeAtDepth[R any](infcx *infer.Ctxt, solver Solver, goal traits.Goal, depth int, v Visitor[R]) ControlFlow[R] {
	tree := solver.GenerateProofTree(infcx, goal)
	return VisitWith(newInspectGoal(infcx, solver, depth, SourceMisc, goal, tree.Result, tree), v)
}
