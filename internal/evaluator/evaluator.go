// Package evaluator implements the second AST walk of §4.6: given a
// Program the analyzer has already fully type-checked, it computes
// valueOf(node) bottom-up and prints the value of each print statement
// as "value :: type". Grounded on funxy's own internal/evaluator (a
// single Eval(node, env) type switch over every concrete ast.Node, an
// Environment of pushed/popped scopes, and an Out io.Writer field
// rather than a hardcoded os.Stdout) and on
// original_source/project/language/Executor.py for per-operator value
// semantics and exact print formatting.
//
// original_source/project/language/Executor.py leaves several FA
// operators functionally unimplemented at evaluation time despite
// Typer.py type-checking them: visitExprUnion, visitExprKleene,
// visitExprProduct, visitExprTransition (concat with an FA operand),
// and visitExprGetReachable all just delegate to the base visitor's
// no-op default. This evaluator supplements real semantics for all of
// them, wired to internal/fa's actual Union/Concatenation/Closure/
// Product/Reachable, since a complete implementation of §4.3 requires
// running these operations, not merely typing them.
package evaluator

import (
	"fmt"
	"io"
	"os"

	"github.com/funvibe/funxy-fa/internal/analyzer"
	"github.com/funvibe/funxy-fa/internal/ast"
	"github.com/funvibe/funxy-fa/internal/diagnostics"
	"github.com/funvibe/funxy-fa/internal/fa"
	"github.com/funvibe/funxy-fa/internal/graph"
	"github.com/funvibe/funxy-fa/internal/token"
	"github.com/funvibe/funxy-fa/internal/typesystem"
	"github.com/funvibe/funxy-fa/internal/value"
)

// Evaluator walks a type-checked Program and computes its runtime
// values.
type Evaluator struct {
	Out    io.Writer
	typeOf func(ast.Node) (typesystem.Type, bool)
	env    *ValueEnv
}

// New creates an Evaluator that consults a (already run) Analyzer for
// each node's static type, both to render print's " :: type" suffix and
// to defensively cross-check every computed value against it (§4.6).
func New(a *analyzer.Analyzer) *Evaluator {
	return NewWithTypeOf(a.TypeOf)
}

// NewWithTypeOf is New without requiring a concrete *analyzer.Analyzer,
// so a pipeline.Processor (which only has the TypeOf func the analyzer
// stage exported onto the shared context, to avoid an import cycle
// between internal/pipeline and internal/analyzer) can still build an
// Evaluator.
func NewWithTypeOf(typeOf func(ast.Node) (typesystem.Type, bool)) *Evaluator {
	return &Evaluator{
		Out:    os.Stdout,
		typeOf: typeOf,
		env:    NewValueEnv(),
	}
}

// Env exposes the accumulated top-level value environment, so a REPL
// can keep evaluating further statements against names bound by
// earlier ones.
func (e *Evaluator) Env() *ValueEnv { return e.env }

// Run evaluates every statement in prog in order, stopping at the
// first ExecutionError.
func (e *Evaluator) Run(prog *ast.Program) *diagnostics.DiagnosticError {
	for _, stmt := range prog.Statements {
		if err := e.execStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func execErrorAt(tok token.Token, msg string) *diagnostics.DiagnosticError {
	return diagnostics.NewAt(diagnostics.Execution, tok.Line, tok.Column, "%s", msg)
}

func (e *Evaluator) execStatement(stmt ast.Statement) *diagnostics.DiagnosticError {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		v, err := e.eval(s.Value)
		if err != nil {
			return err
		}
		if bindErr := e.env.Bind(s.Pattern, v); bindErr != nil {
			return execErrorAt(s.Pattern.GetToken(), bindErr.Error())
		}
		return nil
	case *ast.PrintStatement:
		v, err := e.eval(s.Value)
		if err != nil {
			return err
		}
		typ, ok := e.typeOf(s.Value)
		if !ok {
			typ = v.Type()
		}
		fmt.Fprintf(e.Out, "%s :: %s\n", v.String(), typ.String())
		return nil
	default:
		return execErrorAt(stmt.GetToken(), fmt.Sprintf("unsupported statement %T", stmt))
	}
}

// eval computes node's value, then defensively checks it against the
// type the analyzer already recorded for node (§4.6: a mismatch here
// means the checker and evaluator have drifted out of sync, which is
// an internal error rather than a user-facing one).
func (e *Evaluator) eval(expr ast.Expression) (value.Value, *diagnostics.DiagnosticError) {
	v, err := e.evalNode(expr)
	if err != nil {
		return nil, err
	}
	if typ, ok := e.typeOf(expr); ok && !typesystem.Equal(typ, v.Type()) {
		return nil, execErrorAt(expr.GetToken(), fmt.Sprintf(
			"internal error: %s was type-checked as %s but evaluated to %s", expr.TokenLiteral(), typ, v.Type()))
	}
	return v, nil
}

func (e *Evaluator) evalNode(expr ast.Expression) (value.Value, *diagnostics.DiagnosticError) {
	switch node := expr.(type) {
	case *ast.Identifier:
		v, ok := e.env.Lookup(node.Name)
		if !ok {
			return nil, execErrorAt(node.Token, fmt.Sprintf("%s variable wasn't defined", node.Name))
		}
		return v, nil
	case *ast.ValExpr:
		return e.evalVal(node.Value)
	case *ast.LoadExpr:
		return e.evalLoad(node)
	case *ast.UnionExpr:
		return e.evalUnion(node)
	case *ast.ConcatExpr:
		return e.evalConcat(node)
	case *ast.ProductExpr:
		return e.evalProduct(node)
	case *ast.KleeneExpr:
		return e.evalKleene(node)
	case *ast.InExpr:
		return e.evalIn(node)
	case *ast.GetStartsExpr:
		return e.evalGetSet(node.Token, node.Value, (*fa.Automaton).StartStates)
	case *ast.GetFinalsExpr:
		return e.evalGetSet(node.Token, node.Value, (*fa.Automaton).FinalStates)
	case *ast.GetVerticesExpr:
		return e.evalGetSet(node.Token, node.Value, (*fa.Automaton).States)
	case *ast.GetEdgesExpr:
		return e.evalGetSet(node.Token, node.Value, (*fa.Automaton).Edges)
	case *ast.GetLabelsExpr:
		return e.evalGetSet(node.Token, node.Value, (*fa.Automaton).Labels)
	case *ast.GetReachableExpr:
		return e.evalGetSet(node.Token, node.Value, (*fa.Automaton).Reachable)
	case *ast.SetStartsExpr:
		return e.evalSetVertices(node.Token, node.Left, node.Right, (*fa.Automaton).SetStarts)
	case *ast.SetFinalsExpr:
		return e.evalSetVertices(node.Token, node.Left, node.Right, (*fa.Automaton).SetFinals)
	case *ast.AddStartsExpr:
		// `add_starts s e`: set operand first, FA operand second —
		// swapped from node.Left/node.Right's parse order (see
		// internal/parser's wrapSetExpr comment).
		return e.evalSetVertices(node.Token, node.Right, node.Left, (*fa.Automaton).AddStarts)
	case *ast.AddFinalsExpr:
		return e.evalSetVertices(node.Token, node.Right, node.Left, (*fa.Automaton).AddFinals)
	case *ast.MapExpr:
		return e.evalMap(node)
	case *ast.FilterExpr:
		return e.evalFilter(node)
	case *ast.BracedExpr:
		return e.eval(node.Value)
	default:
		return nil, execErrorAt(expr.GetToken(), fmt.Sprintf("unsupported expression %T", expr))
	}
}

func (e *Evaluator) evalVal(v ast.Val) (value.Value, *diagnostics.DiagnosticError) {
	switch val := v.(type) {
	case *ast.IntVal:
		return value.Int(val.Value), nil
	case *ast.StringVal:
		return value.String(val.Value), nil
	case *ast.SetVal:
		return e.evalSetVal(val), nil
	case *ast.TupleVal:
		elems := make([]value.Value, len(val.Elements))
		for i, el := range val.Elements {
			ev, err := e.evalVal(el)
			if err != nil {
				return nil, err
			}
			elems[i] = ev
		}
		return value.NewTuple(elems...), nil
	case *ast.BadVal:
		// Unreachable once the analyzer has run (it rejects BadVal
		// before the evaluator ever sees it), kept as a defensive
		// fallback for any caller that evaluates without checking first.
		return nil, execErrorAt(val.Token, fmt.Sprintf("variable %q is not permitted inside a tuple literal", val.Name))
	default:
		return nil, execErrorAt(v.GetToken(), fmt.Sprintf("unsupported literal %T", v))
	}
}

func (e *Evaluator) evalSetVal(v *ast.SetVal) *value.Set {
	s := value.NewSet(typesystem.Int{})
	switch v.Kind {
	case ast.SetList:
		for _, n := range v.Elements {
			s.Add(value.Int(n))
		}
	case ast.SetRange:
		for n := v.Lo; n <= v.Hi; n++ {
			s.Add(value.Int(n))
		}
	}
	return s
}

func (e *Evaluator) evalLoad(node *ast.LoadExpr) (value.Value, *diagnostics.DiagnosticError) {
	pv, err := e.eval(node.Path)
	if err != nil {
		return nil, err
	}
	path, ok := pv.(value.String)
	if !ok {
		return nil, execErrorAt(node.Token, "Load expression must contain String literal or String-typed variable")
	}
	automaton, loadErr := graph.LoadFile(string(path))
	if loadErr != nil {
		return nil, execErrorAt(node.Token, loadErr.Error())
	}
	return automaton, nil
}

// asAutomaton lifts v to an *fa.Automaton: an FA value is itself, a
// String is lifted via fa.FromString (§4.3's fromString), matching
// unionCompat/concatCompat/productCompat's treatment of String as an
// FA<Int> of one transition.
func asAutomaton(v value.Value) (*fa.Automaton, bool) {
	switch val := v.(type) {
	case *fa.Automaton:
		return val, true
	case value.String:
		return fa.FromString(string(val)), true
	default:
		return nil, false
	}
}

func (e *Evaluator) evalUnion(node *ast.UnionExpr) (value.Value, *diagnostics.DiagnosticError) {
	lv, err := e.eval(node.Left)
	if err != nil {
		return nil, err
	}
	rv, err := e.eval(node.Right)
	if err != nil {
		return nil, err
	}
	if ls, ok := lv.(*value.Set); ok {
		if rs, ok2 := rv.(*value.Set); ok2 {
			return ls.Union(rs), nil
		}
	}
	la, lok := asAutomaton(lv)
	ra, rok := asAutomaton(rv)
	if !lok || !rok {
		return nil, execErrorAt(node.Token, fmt.Sprintf("union is not possible between %s and %s", lv.Type(), rv.Type()))
	}
	out, uerr := fa.Union(la, ra)
	if uerr != nil {
		return nil, execErrorAt(node.Token, uerr.Error())
	}
	return out, nil
}

func (e *Evaluator) evalConcat(node *ast.ConcatExpr) (value.Value, *diagnostics.DiagnosticError) {
	lv, err := e.eval(node.Left)
	if err != nil {
		return nil, err
	}
	rv, err := e.eval(node.Right)
	if err != nil {
		return nil, err
	}
	if ls, ok := lv.(value.String); ok {
		if rs, ok2 := rv.(value.String); ok2 {
			return value.String(string(ls) + string(rs)), nil
		}
	}
	la, lok := asAutomaton(lv)
	ra, rok := asAutomaton(rv)
	if !lok || !rok {
		return nil, execErrorAt(node.Token, fmt.Sprintf("concatenation is not possible between %s and %s", lv.Type(), rv.Type()))
	}
	out, cerr := fa.Concatenation(la, ra)
	if cerr != nil {
		return nil, execErrorAt(node.Token, cerr.Error())
	}
	return out, nil
}

func (e *Evaluator) evalProduct(node *ast.ProductExpr) (value.Value, *diagnostics.DiagnosticError) {
	lv, err := e.eval(node.Left)
	if err != nil {
		return nil, err
	}
	rv, err := e.eval(node.Right)
	if err != nil {
		return nil, err
	}
	if ls, ok := lv.(*value.Set); ok {
		if rs, ok2 := rv.(*value.Set); ok2 {
			return ls.Intersect(rs), nil
		}
	}
	la, lok := asAutomaton(lv)
	ra, rok := asAutomaton(rv)
	if !lok || !rok {
		return nil, execErrorAt(node.Token, fmt.Sprintf("product is not possible between %s and %s", lv.Type(), rv.Type()))
	}
	return fa.Product(la, ra), nil
}

func (e *Evaluator) evalKleene(node *ast.KleeneExpr) (value.Value, *diagnostics.DiagnosticError) {
	v, err := e.eval(node.Value)
	if err != nil {
		return nil, err
	}
	automaton, ok := v.(*fa.Automaton)
	if !ok {
		return nil, execErrorAt(node.Token, fmt.Sprintf("closure is only possible on an FA, got %s", v.Type()))
	}
	return fa.Closure(automaton), nil
}

func (e *Evaluator) evalIn(node *ast.InExpr) (value.Value, *diagnostics.DiagnosticError) {
	lv, err := e.eval(node.Left)
	if err != nil {
		return nil, err
	}
	rv, err := e.eval(node.Right)
	if err != nil {
		return nil, err
	}
	switch container := rv.(type) {
	case *value.Set:
		return value.Bool(container.Contains(lv)), nil
	case *value.Tuple:
		for _, elem := range container.Elements {
			if elem.Equal(lv) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	default:
		return nil, execErrorAt(node.Token, fmt.Sprintf("'in' is only possible with sets and uniform tuples, got %s", rv.Type()))
	}
}

// evalGetSet runs one of the FA extractors that always produce a Set
// (starts/finals/vertices/edges/labels/reachable all share this shape).
func (e *Evaluator) evalGetSet(tok token.Token, operand ast.Expression, extract func(*fa.Automaton) *value.Set) (value.Value, *diagnostics.DiagnosticError) {
	v, err := e.eval(operand)
	if err != nil {
		return nil, err
	}
	automaton, ok := v.(*fa.Automaton)
	if !ok {
		return nil, execErrorAt(tok, fmt.Sprintf("expected an FA, got %s", v.Type()))
	}
	return extract(automaton), nil
}

// evalSetVertices runs one of the FA mutators (set_starts/set_finals/
// add_starts/add_finals). It always takes the FA expression first and
// the vertex-set expression second; callers are responsible for
// mapping each node kind's source operand order onto that — set_starts/
// set_finals put the FA first in source (`set_starts e s`) so pass
// Left/Right straight through, while add_starts/add_finals put the
// vertex set first (`add_starts s e`, per §4.5 and Executor.py's
// `vertices, fa = ctx.expr()` unpacking) so callers swap them.
func (e *Evaluator) evalSetVertices(tok token.Token, faExpr, setExpr ast.Expression, apply func(*fa.Automaton, *value.Set) *fa.Automaton) (value.Value, *diagnostics.DiagnosticError) {
	faVal, err := e.eval(faExpr)
	if err != nil {
		return nil, err
	}
	automaton, ok := faVal.(*fa.Automaton)
	if !ok {
		return nil, execErrorAt(tok, fmt.Sprintf("expected an FA, got %s", faVal.Type()))
	}
	setVal, err := e.eval(setExpr)
	if err != nil {
		return nil, err
	}
	set, ok := setVal.(*value.Set)
	if !ok {
		return nil, execErrorAt(tok, fmt.Sprintf("expected a set of vertices, got %s", setVal.Type()))
	}
	return apply(automaton, set), nil
}

// iterableElements unwraps a Set or a (necessarily uniform, per the
// analyzer) Tuple into its elements, for map/filter.
func iterableElements(tok token.Token, v value.Value) ([]value.Value, typesystem.Type, *diagnostics.DiagnosticError) {
	switch c := v.(type) {
	case *value.Set:
		return c.Elements(), c.Element, nil
	case *value.Tuple:
		if len(c.Elements) == 0 {
			return nil, nil, execErrorAt(tok, "cannot iterate an empty tuple")
		}
		return c.Elements, c.Elements[0].Type(), nil
	default:
		return nil, nil, execErrorAt(tok, fmt.Sprintf("expected a set or uniform tuple, got %s", v.Type()))
	}
}

// evalLambda binds lam's pattern to arg in a fresh scope, evaluates the
// body, then unwinds the scope (§4.5/§9: lambda names must not leak
// past the body — the runtime counterpart of analyzer.inferLambda).
func (e *Evaluator) evalLambda(lam *ast.Lambda, arg value.Value) (value.Value, *diagnostics.DiagnosticError) {
	e.env.Push()
	defer e.env.Pop()
	if err := e.env.Bind(lam.Pattern, arg); err != nil {
		return nil, execErrorAt(lam.Token, err.Error())
	}
	return e.eval(lam.Body)
}

// evalMap always collects the lambda body's return value for every
// source element (per Executor.py's visitExprMap: `ret`, never the
// original element, is what's added to the result set).
func (e *Evaluator) evalMap(node *ast.MapExpr) (value.Value, *diagnostics.DiagnosticError) {
	srcV, err := e.eval(node.Source)
	if err != nil {
		return nil, err
	}
	elems, elemType, err := iterableElements(node.Token, srcV)
	if err != nil {
		return nil, err
	}

	resultElemType := elemType
	if typ, ok := e.typeOf(node); ok {
		if st, ok2 := typ.(typesystem.Set); ok2 {
			resultElemType = st.Element
		}
	}

	out := value.NewSet(resultElemType)
	for _, el := range elems {
		ret, lerr := e.evalLambda(node.Fn, el)
		if lerr != nil {
			return nil, lerr
		}
		out.Add(ret)
	}
	return out, nil
}

// evalFilter adds the original element — not the predicate's boolean
// return — to the result set whenever the predicate is truthy (per
// Executor.py's visitExprFilter, which appends `elem`, not `ret`).
func (e *Evaluator) evalFilter(node *ast.FilterExpr) (value.Value, *diagnostics.DiagnosticError) {
	srcV, err := e.eval(node.Source)
	if err != nil {
		return nil, err
	}
	elems, elemType, err := iterableElements(node.Token, srcV)
	if err != nil {
		return nil, err
	}

	out := value.NewSet(elemType)
	for _, el := range elems {
		ret, lerr := e.evalLambda(node.Fn, el)
		if lerr != nil {
			return nil, lerr
		}
		keep, ok := ret.(value.Bool)
		if !ok {
			return nil, execErrorAt(node.Token, fmt.Sprintf("filter predicate must return Bool, got %s", ret.Type()))
		}
		if keep {
			out.Add(el)
		}
	}
	return out, nil
}
