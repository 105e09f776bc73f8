// Package pipeline wires the three CORE stages — parse, type-check,
// evaluate — into a single ordered run over a shared Context, the way
// funxy's own internal/pipeline chains its Processor stages over a
// PipelineContext. Unlike funxy's Pipeline.Run, which deliberately
// keeps running every stage so its LSP can collect diagnostics from
// the whole module, this Pipeline stops at the first stage that
// records an error, per spec.md §4.7's "parse, then type-check, then
// evaluate; stop on the first failure" driver contract.
package pipeline

import (
	"io"
	"os"

	"github.com/funvibe/funxy-fa/internal/ast"
	"github.com/funvibe/funxy-fa/internal/diagnostics"
	"github.com/funvibe/funxy-fa/internal/typesystem"
)

// Context threads the data each stage produces to the next: the
// source text in, the parsed Program, a way to recover a node's
// static type once the analyzer has run, the output stream print
// statements write to, and the first error recorded by any stage.
type Context struct {
	FilePath string
	Source   string
	Out      io.Writer

	Program *ast.Program
	TypeOf  func(ast.Node) (typesystem.Type, bool)

	Err *diagnostics.DiagnosticError
}

// NewContext builds a Context for src, defaulting Out to os.Stdout the
// way evaluator.New does.
func NewContext(filePath, src string) *Context {
	return &Context{FilePath: filePath, Source: src, Out: os.Stdout}
}

// Processor is one pipeline stage. It mutates and returns ctx; a
// stage that cannot proceed (e.g. because an earlier stage already
// failed) should return ctx unchanged.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline runs a fixed sequence of Processors over one Context.
type Pipeline struct {
	processors []Processor
}

// New builds a Pipeline that runs processors in order.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes each processor in turn, stopping as soon as ctx.Err is
// set.
func (p *Pipeline) Run(ctx *Context) *Context {
	for _, proc := range p.processors {
		ctx = proc.Process(ctx)
		if ctx.Err != nil {
			return ctx
		}
	}
	return ctx
}
