package analyzer

import "github.com/funvibe/funxy-fa/internal/pipeline"

// Processor is the pipeline.Processor that type-checks ctx.Program,
// grounded on funxy's internal/analyzer/processor.go
// (SemanticAnalyzerProcessor, which builds an Analyzer and exports its
// TypeMap onto the shared context for later stages to consult).
type Processor struct{}

func (ap *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Program == nil {
		return ctx
	}
	a := New()
	if err := a.Check(ctx.Program); err != nil {
		ctx.Err = err
		return ctx
	}
	ctx.TypeOf = a.TypeOf
	return ctx
}
