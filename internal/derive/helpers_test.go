package derive

import (
	"testing"

	"github.com/funvibe/fulfill/internal/infer"
	"github.com/funvibe/fulfill/internal/replay"
	"github.com/funvibe/fulfill/internal/scenario"
	"github.com/funvibe/fulfill/internal/symbols"
	"github.com/funvibe/fulfill/internal/traits"
)

// run is a loaded scenario ready to be refined.
type run struct {
	refiner *Refiner
	infcx   *infer.Ctxt
	table   *symbols.SymbolTable
	roots   map[string]traits.Obligation
}

func load(t *testing.T, src string) *run {
	t.Helper()
	s, err := scenario.Parse([]byte(src), t.Name())
	if err != nil {
		t.Fatalf("parse scenario: %v", err)
	}
	decls, err := s.Declarations()
	if err != nil {
		t.Fatalf("declarations: %v", err)
	}
	table := symbols.NewSymbolTable()
	if err := decls.Register(table); err != nil {
		t.Fatalf("register: %v", err)
	}
	trees, err := s.ProofTrees()
	if err != nil {
		t.Fatalf("traces: %v", err)
	}
	roots, err := s.Roots()
	if err != nil {
		t.Fatalf("roots: %v", err)
	}

	infcx := infer.New()
	r := &run{
		refiner: New(infcx, replay.New(trees), table),
		infcx:   infcx,
		table:   table,
		roots:   make(map[string]traits.Obligation, len(roots)),
	}
	for _, root := range roots {
		r.roots[root.Name] = root.Obligation
	}
	return r
}

func (r *run) root(t *testing.T, name string) traits.Obligation {
	t.Helper()
	o, ok := r.roots[name]
	if !ok {
		t.Fatalf("no root obligation %q", name)
	}
	return o
}

// chainStrings describes a cause chain from the outermost link down.
func chainStrings(c traits.Cause) []string {
	var out []string
	for _, code := range c.Chain() {
		out = append(out, code.String())
	}
	return out
}

func expectBug(t *testing.T, f func()) *BugError {
	t.Helper()
	var bug *BugError
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			b, ok := r.(*BugError)
			if !ok {
				panic(r)
			}
			bug = b
		}()
		f()
	}()
	if bug == nil {
		t.Fatalf("expected an internal error")
	}
	return bug
}
