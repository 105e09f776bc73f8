// Package repl implements spec.md §6's interactive mode: a read-eval
// loop that prompts, parses one line as a complete program, and
// survives type/execution errors so the session can continue. Grounded
// on original_source/project/language/interpret.py's REPL (independent
// try/except around type-check vs. execute, neither aborting the
// loop) and on funxy's cmd/funxy/main.go REPL branch for the
// bufio.Scanner-over-os.Stdin shape.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/funvibe/funxy-fa/internal/analyzer"
	"github.com/funvibe/funxy-fa/internal/config"
	"github.com/funvibe/funxy-fa/internal/evaluator"
	"github.com/funvibe/funxy-fa/internal/lexer"
	"github.com/funvibe/funxy-fa/internal/parser"
	"gopkg.in/yaml.v3"
)

// REPL holds the TypeEnv/ValueEnv that accumulate across iterations,
// per spec.md §5: "a new interactive iteration reuses the accumulated
// TypeEnv/ValueEnv".
type REPL struct {
	in  *bufio.Scanner
	out io.Writer
	err io.Writer

	// prompt is false when in is piped/redirected rather than an
	// interactive terminal, so a scripted session's transcript isn't
	// cluttered with a "prompt" no human will ever see. Detected with
	// golang.org/x/term.IsTerminal, the same check the rest of the
	// retrieval pack's CLI tooling uses in place of go-isatty.
	prompt bool

	analyzer  *analyzer.Analyzer
	evaluator *evaluator.Evaluator
}

// New builds a REPL reading lines from in and writing prompts/program
// output to out and diagnostics to err.
func New(in io.Reader, out, err io.Writer) *REPL {
	a := analyzer.New()
	r := &REPL{
		in:        bufio.NewScanner(in),
		out:       out,
		err:       err,
		prompt:    true,
		analyzer:  a,
		evaluator: evaluator.New(a),
	}
	if f, ok := in.(*os.File); ok {
		r.prompt = term.IsTerminal(int(f.Fd()))
	}
	return r
}

// Run drives the prompt/read/eval loop until `q` or EOF.
func (r *REPL) Run() {
	r.evaluator.Out = r.out
	for {
		if r.prompt {
			fmt.Fprint(r.out, config.Prompt)
		}
		if !r.in.Scan() {
			return
		}
		line := r.in.Text()
		if line == config.QuitCommand {
			return
		}
		if line == ":dump" {
			r.dump()
			continue
		}
		if line == "" {
			continue
		}
		r.evalLine(line)
	}
}

func (r *REPL) evalLine(line string) {
	p := parser.New(lexer.New(line))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		fmt.Fprintln(r.out, "Wrong syntax")
		return
	}

	if err := r.analyzer.Check(prog); err != nil {
		fmt.Fprintln(r.err, "Type error occurred")
		fmt.Fprintln(r.err, err.Error())
		return
	}

	if err := r.evaluator.Run(prog); err != nil {
		fmt.Fprintln(r.err, "Error occurred during execution")
		fmt.Fprintln(r.err, err.Error())
		return
	}
}

// dump serializes the accumulated top-level TypeEnv as YAML, a small
// debugging aid layered on top of the CORE session (not part of
// spec.md's grammar).
func (r *REPL) dump() {
	out, err := yaml.Marshal(r.analyzer.Env().Bindings())
	if err != nil {
		fmt.Fprintln(r.err, err.Error())
		return
	}
	r.out.Write(out)
}
