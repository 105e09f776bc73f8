package parser

import (
	"github.com/funvibe/funxy-fa/internal/lexer"
	"github.com/funvibe/funxy-fa/internal/pipeline"
)

// Processor is the pipeline.Processor that lexes ctx.Source and parses
// it into ctx.Program, grounded on funxy's own internal/parser/
// processor.go (a ParserProcessor that builds a Parser over the prior
// stage's token stream and stores the resulting AST on the context).
// funxy's lexer and parser are separate pipeline stages talking
// through ctx.TokenStream; this CORE's Parser drives its own Lexer
// internally (see New), so one Processor covers both.
type Processor struct{}

func (pp *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	p := New(lexer.New(ctx.Source))
	ctx.Program = p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		ctx.Err = errs[0]
	}
	return ctx
}
