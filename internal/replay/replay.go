// Package replay implements inspect.Solver over proof trees recorded by an
// earlier solver run. Goals are looked up by their printed predicate and
// environment after resolving inference variables; goals that were never
// recorded are treated as proven with no candidates.
package replay

import (
	"go.uber.org/zap"

	"github.com/funvibe/fulfill/internal/infer"
	"github.com/funvibe/fulfill/internal/inspect"
	"github.com/funvibe/fulfill/internal/traits"
)

// Solver serves recorded proof trees.
type Solver struct {
	trees  map[string]*inspect.ProofTree
	order  []string
	logger *zap.Logger
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger sets the logger used for lookups.
func WithLogger(l *zap.Logger) Option {
	return func(s *Solver) { s.logger = l }
}

// New creates a solver serving trees. Later trees for the same goal replace
// earlier ones.
func New(trees []*inspect.ProofTree, opts ...Option) *Solver {
	s := &Solver{trees: make(map[string]*inspect.ProofTree), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	for _, t := range trees {
		s.Record(t)
	}
	return s
}

// Record adds (or replaces) the tree of a goal, together with every inline
// nested tree it contains.
func (s *Solver) Record(tree *inspect.ProofTree) {
	key := Key(tree.Goal)
	if _, ok := s.trees[key]; !ok {
		s.order = append(s.order, key)
	}
	s.trees[key] = tree
	for _, c := range tree.Candidates {
		for _, n := range c.Nested {
			if n.Tree != nil {
				if _, ok := s.trees[Key(n.Goal)]; !ok {
					s.Record(n.Tree)
				}
			}
		}
	}
}

// Len is the number of distinct recorded goals.
func (s *Solver) Len() int { return len(s.trees) }

// Key identifies a goal in the recording. The same predicate under
// different environments is a different goal.
func Key(goal traits.Goal) string {
	if len(goal.Env.Clauses) == 0 {
		return goal.Predicate.String()
	}
	return goal.Predicate.String() + " in " + goal.Env.String()
}

func (s *Solver) lookup(infcx *infer.Ctxt, goal traits.Goal) (*inspect.ProofTree, bool) {
	resolved := infcx.ResolveGoal(goal)
	tree, ok := s.trees[Key(resolved)]
	if !ok {
		s.logger.Debug("goal not recorded, treating as proven", zap.String("goal", Key(resolved)))
	}
	return tree, ok
}

// EvaluateRootGoal returns the recorded outcome of goal.
func (s *Solver) EvaluateRootGoal(infcx *infer.Ctxt, goal traits.Goal) (traits.Certainty, error) {
	tree, ok := s.lookup(infcx, goal)
	if !ok {
		return traits.Yes, nil
	}
	if tree.Result.IsErr() {
		return traits.Certainty{}, traits.ErrNoSolution
	}
	return tree.Result.Certainty, nil
}

// GenerateProofTree returns the recorded proof tree of goal.
func (s *Solver) GenerateProofTree(infcx *infer.Ctxt, goal traits.Goal) *inspect.ProofTree {
	tree, ok := s.lookup(infcx, goal)
	if !ok {
		return &inspect.ProofTree{Goal: goal, Result: traits.Ok(traits.Yes)}
	}
	return tree
}
