// Package derive turns goals that the solver left unproven into fulfillment
// errors. For each such goal it re-inspects the solver's proof tree, walks
// down to the most specific nested goal responsible for the outcome and
// attributes it to the impl requirement that introduced it.
package derive

import (
	"go.uber.org/zap"

	"github.com/funvibe/fulfill/internal/infer"
	"github.com/funvibe/fulfill/internal/inspect"
	"github.com/funvibe/fulfill/internal/symbols"
	"github.com/funvibe/fulfill/internal/typesystem"
	"github.com/funvibe/fulfill/internal/wf"
)

// Database is the declaration store the refinement queries.
type Database interface {
	wf.BoundsSource
	// PredicatesOf returns an impl's declared where-clauses in declaration order.
	PredicatesOf(implID string) ([]symbols.SpannedClause, error)
	// ConstConditions returns an impl's declared const conditions in declaration order.
	ConstConditions(implID string) ([]symbols.SpannedTraitRef, error)
	// TypeOf returns the declared type of a constant item instantiated with args.
	TypeOf(defID string, args []typesystem.Type) (typesystem.Type, error)
	DoNotRecommendImpl(implID string) bool
	LangItem(item string) (string, bool)
}

// Refiner builds fulfillment errors. It shares the inference context with
// the caller and must not be used concurrently.
type Refiner struct {
	infcx  *infer.Ctxt
	solver inspect.Solver
	db     Database
	logger *zap.Logger
}

// Option configures a Refiner.
type Option func(*Refiner)

// WithLogger sets the logger for trace walks.
func WithLogger(l *zap.Logger) Option {
	return func(r *Refiner) { r.logger = l }
}

// New creates a Refiner.
func New(infcx *infer.Ctxt, solver inspect.Solver, db Database, opts ...Option) *Refiner {
	r := &Refiner{infcx: infcx, solver: solver, db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
