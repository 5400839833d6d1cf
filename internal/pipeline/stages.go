package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/funvibe/fulfill/internal/config"
	"github.com/funvibe/fulfill/internal/derive"
	"github.com/funvibe/fulfill/internal/infer"
	"github.com/funvibe/fulfill/internal/replay"
	"github.com/funvibe/fulfill/internal/scenario"
	"github.com/funvibe/fulfill/internal/symbols"
)

// LoadProcessor reads the scenario file unless the context already holds
// a scenario.
type LoadProcessor struct{}

func (LoadProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Scenario != nil {
		return ctx
	}
	s, err := scenario.Load(ctx.ScenarioPath)
	if err != nil {
		return ctx.addError(err)
	}
	ctx.Scenario = s
	return ctx
}

// DeclareProcessor fills the symbol table from the scenario and the
// catalog.
type DeclareProcessor struct{}

func (DeclareProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.failed() {
		return ctx
	}
	decls, err := ctx.Scenario.Declarations()
	if err != nil {
		return ctx.addError(fmt.Errorf("declarations: %w", err))
	}
	if ctx.Catalog != nil {
		decls.Merge(ctx.Catalog)
	}
	table := symbols.NewSymbolTable()
	if err := decls.Register(table); err != nil {
		return ctx.addError(err)
	}
	ctx.Table = table
	ctx.Logger.Debug("declarations registered",
		zap.Int("traits", len(decls.Traits)),
		zap.Int("impls", len(decls.Impls)),
	)
	return ctx
}

// ReplayProcessor builds the solver over the recorded traces and converts
// the root obligations.
type ReplayProcessor struct{}

func (ReplayProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.failed() {
		return ctx
	}
	trees, err := ctx.Scenario.ProofTrees()
	if err != nil {
		return ctx.addError(fmt.Errorf("traces: %w", err))
	}
	roots, err := ctx.Scenario.Roots()
	if err != nil {
		return ctx.addError(err)
	}
	ctx.Solver = replay.New(trees, replay.WithLogger(ctx.Logger))
	ctx.Infcx = infer.New()
	ctx.Roots = roots
	ctx.Logger.Debug("traces recorded", zap.Int("goals", ctx.Solver.Len()), zap.Int("roots", len(roots)))
	return ctx
}

// RefineProcessor reports every root obligation through the builder its
// mode selects. A root whose refinement hits an internal error is
// recorded as an error and the remaining roots are still reported.
type RefineProcessor struct{}

func (RefineProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.failed() {
		return ctx
	}
	refiner := derive.New(ctx.Infcx, ctx.Solver, ctx.Table, derive.WithLogger(ctx.Logger))
	for _, root := range ctx.Roots {
		report, err := refine(refiner, root)
		if err != nil {
			ctx.addError(fmt.Errorf("%s: %w", root.Name, err))
			continue
		}
		ctx.Reports = append(ctx.Reports, report)
	}
	return ctx
}

func refine(refiner *derive.Refiner, root scenario.Root) (report Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			var bug *derive.BugError
			if e, ok := r.(error); ok && errors.As(e, &bug) {
				err = bug
				return
			}
			panic(r)
		}
	}()

	report = Report{Name: root.Name, Mode: root.Mode}
	switch root.Mode {
	case config.ModeError:
		report.Error = refiner.FulfillmentErrorForNoSolution(root.Obligation)
	case config.ModeStalled:
		report.Error = refiner.FulfillmentErrorForStalled(root.Obligation)
	case config.ModeOverflow:
		report.Error = refiner.FulfillmentErrorForOverflow(root.Obligation)
	default:
		return Report{}, fmt.Errorf("invalid mode %q", root.Mode)
	}
	return report, nil
}

// Explain is the standard stage sequence for reporting a scenario.
func Explain() *Pipeline {
	return New(LoadProcessor{}, DeclareProcessor{}, ReplayProcessor{}, RefineProcessor{})
}
