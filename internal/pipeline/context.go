package pipeline

import (
	"go.uber.org/zap"

	"github.com/funvibe/fulfill/internal/infer"
	"github.com/funvibe/fulfill/internal/replay"
	"github.com/funvibe/fulfill/internal/scenario"
	"github.com/funvibe/fulfill/internal/symbols"
	"github.com/funvibe/fulfill/internal/traits"
)

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx *PipelineContext) *PipelineContext

func (f ProcessorFunc) Process(ctx *PipelineContext) *PipelineContext { return f(ctx) }

// Report is the outcome for one root obligation.
type Report struct {
	Name  string
	Mode  string
	Error traits.FulfillmentError
}

// PipelineContext carries state between stages.
type PipelineContext struct {
	ScenarioPath string
	Scenario     *scenario.Scenario

	// Catalog declarations merged under the scenario's own.
	Catalog *scenario.Declarations

	Table  *symbols.SymbolTable
	Solver *replay.Solver
	Infcx  *infer.Ctxt
	Roots  []scenario.Root

	Reports []Report
	Errors  []error

	Logger *zap.Logger
}

// NewPipelineContext creates a context for a scenario file.
func NewPipelineContext(path string, logger *zap.Logger) *PipelineContext {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineContext{ScenarioPath: path, Logger: logger}
}

func (ctx *PipelineContext) failed() bool { return len(ctx.Errors) > 0 }

func (ctx *PipelineContext) addError(err error) *PipelineContext {
	ctx.Errors = append(ctx.Errors, err)
	return ctx
}
