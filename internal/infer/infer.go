// Package infer holds the shared inference state of a type-checking pass:
// variable bindings, fresh-variable counters and universes. All speculative
// work runs between a snapshot and a rollback.
package infer

import (
	"fmt"

	"github.com/funvibe/fulfill/internal/traits"
	"github.com/funvibe/fulfill/internal/typesystem"
)

// Ctxt is the inference context. It is owned by a single goroutine for the
// whole pass and is not safe for concurrent use.
type Ctxt struct {
	subst     typesystem.Subst
	nextVar   int
	universe  int
	snapshots int
}

// New creates an empty inference context.
func New() *Ctxt {
	return &Ctxt{subst: make(typesystem.Subst)}
}

// Snapshot captures the inference state so it can be restored exactly.
type Snapshot struct {
	subst    typesystem.Subst
	nextVar  int
	universe int
}

// StartSnapshot opens a speculative region.
func (c *Ctxt) StartSnapshot() Snapshot {
	c.snapshots++
	return Snapshot{subst: c.subst.Clone(), nextVar: c.nextVar, universe: c.universe}
}

// RollbackTo discards everything done since the snapshot was taken.
func (c *Ctxt) RollbackTo(s Snapshot) {
	c.subst = s.subst
	c.nextVar = s.nextVar
	c.universe = s.universe
	c.snapshots--
}

// InSnapshot reports whether a speculative region is open.
func (c *Ctxt) InSnapshot() bool { return c.snapshots > 0 }

// NewVar creates a fresh type inference variable.
func (c *Ctxt) NewVar() typesystem.TVar {
	v := typesystem.TVar{Name: fmt.Sprintf("?%d", c.nextVar)}
	c.nextVar++
	return v
}

// NewConstVar creates a fresh constant inference variable.
func (c *Ctxt) NewConstVar() typesystem.ConstInfer {
	v := typesystem.ConstInfer{Name: fmt.Sprintf("?c%d", c.nextVar)}
	c.nextVar++
	return v
}

// Equate unifies two types under the current bindings and records the
// resulting bindings.
func (c *Ctxt) Equate(a, b typesystem.Type) error {
	s, err := typesystem.Unify(c.Resolve(a), c.Resolve(b))
	if err != nil {
		return err
	}
	if len(s) > 0 {
		c.subst = s.Compose(c.subst)
	}
	return nil
}

// Bindings returns the number of bound inference variables.
func (c *Ctxt) Bindings() int { return len(c.subst) }

// Resolve applies the current bindings to t.
func (c *Ctxt) Resolve(t typesystem.Type) typesystem.Type {
	if t == nil || len(c.subst) == 0 {
		return t
	}
	return t.Apply(c.subst)
}

// ResolvePredicate applies the current bindings to p.
func (c *Ctxt) ResolvePredicate(p traits.Predicate) traits.Predicate {
	if len(c.subst) == 0 {
		return p
	}
	return p.Apply(c.subst)
}

// ResolveGoal applies the current bindings to a goal and its environment.
func (c *Ctxt) ResolveGoal(g traits.Goal) traits.Goal {
	env := traits.Env{Clauses: make([]traits.Predicate, len(g.Env.Clauses))}
	for i, clause := range g.Env.Clauses {
		env.Clauses[i] = c.ResolvePredicate(clause)
	}
	return traits.Goal{Predicate: c.ResolvePredicate(g.Predicate), Env: env}
}

// ResolveVarsIfPossible resolves the predicate and environment of an
// obligation as far as the current bindings allow.
func (c *Ctxt) ResolveVarsIfPossible(o traits.Obligation) traits.Obligation {
	g := c.ResolveGoal(o.Goal())
	return traits.Obligation{
		Cause:          o.Cause,
		Env:            g.Env,
		Predicate:      g.Predicate,
		RecursionDepth: o.RecursionDepth,
	}
}

// EnterForallAndLeakUniverse replaces the bound variables of p with
// placeholders in a fresh universe and returns the payload. The universe is
// not exited again.
func (c *Ctxt) EnterForallAndLeakUniverse(p traits.Predicate) traits.PredicateKind {
	if len(p.Bound) == 0 {
		return c.ResolvePredicate(p).Kind
	}
	c.universe++
	s := make(typesystem.Subst, len(p.Bound))
	for _, name := range p.Bound {
		s[name] = typesystem.TPlaceholder{Name: name, Universe: c.universe}
	}
	inner := traits.NewPredicate(p.Kind).Apply(s)
	return c.ResolvePredicate(inner).Kind
}

// Universe is the innermost universe created so far.
func (c *Ctxt) Universe() int { return c.universe }
