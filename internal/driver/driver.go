// Package driver implements spec.md §4.7: orchestrate parse →
// type-check → evaluate over one program and route each stage's
// failure to the right banner on the error stream. Grounded on
// original_source/project/language/interpret.py's execute_code (three
// nested try/except blocks, one per stage, each writing a fixed banner
// before the underlying message) and on funxy's own cmd/funxy/main.go
// for the "build a Pipeline, run it, inspect ctx.Err" shape.
package driver

import (
	"fmt"
	"io"
	"os"

	"github.com/funvibe/funxy-fa/internal/analyzer"
	"github.com/funvibe/funxy-fa/internal/diagnostics"
	"github.com/funvibe/funxy-fa/internal/evaluator"
	"github.com/funvibe/funxy-fa/internal/parser"
	"github.com/funvibe/funxy-fa/internal/pipeline"
)

// Driver runs one source program through the full CORE pipeline.
type Driver struct {
	Out io.Writer // program `print` output; defaults to os.Stdout
	Err io.Writer // diagnostic banners; defaults to os.Stderr
}

// New builds a Driver writing program output to stdout and
// diagnostics to stderr.
func New() *Driver {
	return &Driver{Out: os.Stdout, Err: os.Stderr}
}

// banner maps a diagnostic's Kind to the fixed line §4.7 requires
// before its message.
func banner(kind diagnostics.Kind) string {
	switch kind {
	case diagnostics.Syntax:
		return "Syntax errors were found"
	case diagnostics.Type:
		return "Type error occurred"
	case diagnostics.Execution:
		return "Error occurred during execution"
	default:
		return "Error occurred"
	}
}

// Run parses, type-checks, and evaluates source in one pass, writing
// print output to d.Out. On any stage failure it writes the stage's
// banner plus the message to d.Err and returns false (success is
// true).
func (d *Driver) Run(source string) bool {
	ctx := pipeline.NewContext("", source)
	ctx.Out = d.Out

	p := pipeline.New(&parser.Processor{}, &analyzer.Processor{}, &evaluator.Processor{})
	ctx = p.Run(ctx)

	if ctx.Err != nil {
		fmt.Fprintln(d.Err, banner(ctx.Err.Kind))
		fmt.Fprintln(d.Err, ctx.Err.Error())
		return false
	}
	return true
}

// RunFile reads path and runs it via Run. The only non-zero exit
// condition per spec.md §6 is a failure to open the file itself; parse/
// type/execution errors are reported to d.Err but still yield a
// "successful" process exit in that sense — callers distinguish the
// two failure modes via the (ok, err) results.
func (d *Driver) RunFile(path string) (ok bool, err error) {
	data, ioErr := os.ReadFile(path)
	if ioErr != nil {
		return false, ioErr
	}
	return d.Run(string(data)), nil
}
