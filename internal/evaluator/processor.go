package evaluator

import "github.com/funvibe/funxy-fa/internal/pipeline"

// Processor is the pipeline.Processor that evaluates ctx.Program and
// writes its print output to ctx.Out, grounded on funxy's internal/
// evaluator/processor.go (ExecutionProcessor, which refuses to run
// when an earlier stage already recorded an error).
type Processor struct{}

func (ep *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Program == nil || ctx.Err != nil {
		return ctx
	}
	ev := NewWithTypeOf(ctx.TypeOf)
	ev.Out = ctx.Out
	if err := ev.Run(ctx.Program); err != nil {
		ctx.Err = err
	}
	return ctx
}
