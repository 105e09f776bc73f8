// Package analyzer implements the static type checker of §4.5: a
// bottom-up walk over the AST that records typeOf(node) and mutates a
// scoped TypeEnv on `let`. Grounded on funxy's own internal/analyzer
// (the TypeMap-keyed-by-ast.Node convention, and explicit per-node
// inference functions rather than routing type computation through
// the void-returning ast.Visitor) and on
// original_source/project/language/Typer.py, which supplies every
// operator compatibility rule and most error wording below.
//
// Unlike funxy's walker, which accumulates a deduplicated error set
// across an entire module so the LSP can report everything at once,
// this checker stops at the first TypeError: §4.7 requires the driver
// to halt a program on its first failing stage.
package analyzer

import (
	"fmt"

	"github.com/funvibe/funxy-fa/internal/ast"
	"github.com/funvibe/funxy-fa/internal/diagnostics"
	"github.com/funvibe/funxy-fa/internal/token"
	"github.com/funvibe/funxy-fa/internal/typesystem"
)

// Analyzer walks a Program and records the static type of every node
// it touches.
type Analyzer struct {
	types map[ast.Node]typesystem.Type
	env   *TypeEnv
}

// New creates an Analyzer with an empty top-level TypeEnv.
func New() *Analyzer {
	return &Analyzer{
		types: make(map[ast.Node]typesystem.Type),
		env:   NewTypeEnv(),
	}
}

// TypeOf returns the type recorded for n, if the checker reached it.
func (a *Analyzer) TypeOf(n ast.Node) (typesystem.Type, bool) {
	t, ok := a.types[n]
	return t, ok
}

// Env exposes the accumulated top-level environment, so a REPL can
// keep checking further statements against names bound by earlier
// ones (§5: "a new interactive iteration reuses the accumulated
// TypeEnv").
func (a *Analyzer) Env() *TypeEnv { return a.env }

// Check type-checks every statement in prog in order, stopping at the
// first TypeError.
func (a *Analyzer) Check(prog *ast.Program) *diagnostics.DiagnosticError {
	for _, stmt := range prog.Statements {
		if err := a.checkStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkStatement(stmt ast.Statement) *diagnostics.DiagnosticError {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		t, err := a.infer(s.Value)
		if err != nil {
			return err
		}
		if bindErr := a.env.Bind(s.Pattern, t); bindErr != nil {
			return typeErrorAt(s.Pattern.GetToken(), bindErr.Error())
		}
		a.types[s] = typesystem.None{}
		return nil
	case *ast.PrintStatement:
		if _, err := a.infer(s.Value); err != nil {
			return err
		}
		a.types[s] = typesystem.None{}
		return nil
	default:
		return typeErrorAt(stmt.GetToken(), fmt.Sprintf("unsupported statement %T", stmt))
	}
}

func typeErrorAt(tok token.Token, msg string) *diagnostics.DiagnosticError {
	return diagnostics.NewAt(diagnostics.Type, tok.Line, tok.Column, "%s", msg)
}

// infer computes and records the type of e.
func (a *Analyzer) infer(e ast.Expression) (typesystem.Type, *diagnostics.DiagnosticError) {
	t, err := a.inferNode(e)
	if err != nil {
		return nil, err
	}
	a.types[e] = t
	return t, nil
}

func (a *Analyzer) inferNode(e ast.Expression) (typesystem.Type, *diagnostics.DiagnosticError) {
	switch node := e.(type) {
	case *ast.Identifier:
		t, ok := a.env.Lookup(node.Name)
		if !ok {
			return nil, typeErrorAt(node.Token, fmt.Sprintf("%s variable wasn't defined", node.Name))
		}
		return t, nil
	case *ast.ValExpr:
		return a.inferVal(node.Value)
	case *ast.LoadExpr:
		return a.inferLoad(node)
	case *ast.UnionExpr:
		return a.inferUnion(node)
	case *ast.ConcatExpr:
		return a.inferConcat(node)
	case *ast.ProductExpr:
		return a.inferProduct(node)
	case *ast.KleeneExpr:
		return a.inferKleene(node)
	case *ast.InExpr:
		return a.inferIn(node)
	case *ast.GetStartsExpr:
		return a.inferGetVertexSet(node.Token, node.Value, "starts")
	case *ast.GetFinalsExpr:
		return a.inferGetVertexSet(node.Token, node.Value, "finals")
	case *ast.GetVerticesExpr:
		return a.inferGetVertexSet(node.Token, node.Value, "vertices")
	case *ast.GetEdgesExpr:
		return a.inferGetEdges(node)
	case *ast.GetLabelsExpr:
		return a.inferGetLabels(node)
	case *ast.GetReachableExpr:
		return a.inferGetReachable(node)
	case *ast.SetStartsExpr:
		return a.inferSetVertices(node.Token, node.Left, node.Right)
	case *ast.SetFinalsExpr:
		return a.inferSetVertices(node.Token, node.Left, node.Right)
	case *ast.AddStartsExpr:
		// `add_starts s e` puts the vertex set first and the FA
		// second (§4.5), the reverse of `set_starts e s` — swap
		// operands when handing them to inferSetVertices, which
		// always expects (faExpr, setExpr).
		return a.inferSetVertices(node.Token, node.Right, node.Left)
	case *ast.AddFinalsExpr:
		return a.inferSetVertices(node.Token, node.Right, node.Left)
	case *ast.MapExpr:
		return a.inferMap(node)
	case *ast.FilterExpr:
		return a.inferFilter(node)
	case *ast.BracedExpr:
		return a.infer(node.Value)
	default:
		return nil, typeErrorAt(e.GetToken(), fmt.Sprintf("unsupported expression %T", e))
	}
}

// inferVal computes and records the type of a literal-value node.
func (a *Analyzer) inferVal(v ast.Val) (typesystem.Type, *diagnostics.DiagnosticError) {
	t, err := a.inferValRaw(v)
	if err != nil {
		return nil, err
	}
	a.types[v] = t
	return t, nil
}

func (a *Analyzer) inferValRaw(v ast.Val) (typesystem.Type, *diagnostics.DiagnosticError) {
	switch val := v.(type) {
	case *ast.IntVal:
		return typesystem.Int{}, nil
	case *ast.StringVal:
		return typesystem.String{}, nil
	case *ast.SetVal:
		return typesystem.Set{Element: typesystem.Int{}}, nil
	case *ast.TupleVal:
		comps := make([]typesystem.Type, len(val.Elements))
		for i, el := range val.Elements {
			t, err := a.inferVal(el)
			if err != nil {
				return nil, err
			}
			comps[i] = t
		}
		return typesystem.Tuple{Components: comps}, nil
	case *ast.BadVal:
		return nil, typeErrorAt(val.Token, fmt.Sprintf(
			"tuple literals contain only literal values: variable %q is not permitted inside a tuple literal", val.Name))
	default:
		return nil, typeErrorAt(v.GetToken(), fmt.Sprintf("unsupported literal %T", v))
	}
}

func (a *Analyzer) inferLoad(node *ast.LoadExpr) (typesystem.Type, *diagnostics.DiagnosticError) {
	t, err := a.infer(node.Path)
	if err != nil {
		return nil, err
	}
	if !typesystem.Equal(t, typesystem.String{}) {
		return nil, typeErrorAt(node.Token, "Load expression must contain String literal or String-typed variable")
	}
	return typesystem.FA{Vertex: typesystem.Int{}}, nil
}

func isIntFA(t typesystem.Type) bool {
	fa, ok := t.(typesystem.FA)
	return ok && typesystem.Equal(fa.Vertex, typesystem.Int{})
}

func isStringOrIntFA(t typesystem.Type) bool {
	if typesystem.Equal(t, typesystem.String{}) {
		return true
	}
	return isIntFA(t)
}

func (a *Analyzer) inferUnion(node *ast.UnionExpr) (typesystem.Type, *diagnostics.DiagnosticError) {
	t1, err := a.infer(node.Left)
	if err != nil {
		return nil, err
	}
	t2, err := a.infer(node.Right)
	if err != nil {
		return nil, err
	}
	if s1, ok := t1.(typesystem.Set); ok {
		if _, ok2 := t2.(typesystem.Set); ok2 && typesystem.Equal(t1, t2) {
			return s1, nil
		}
	}
	if isStringOrIntFA(t1) && isStringOrIntFA(t2) {
		return typesystem.FA{Vertex: typesystem.Int{}}, nil
	}
	return nil, typeErrorAt(node.Token, fmt.Sprintf("union is not possible between %s and %s", t1, t2))
}

func (a *Analyzer) inferConcat(node *ast.ConcatExpr) (typesystem.Type, *diagnostics.DiagnosticError) {
	t1, err := a.infer(node.Left)
	if err != nil {
		return nil, err
	}
	t2, err := a.infer(node.Right)
	if err != nil {
		return nil, err
	}
	switch {
	case typesystem.Equal(t1, typesystem.String{}) && typesystem.Equal(t2, typesystem.String{}):
		return typesystem.String{}, nil
	case typesystem.Equal(t1, typesystem.String{}) && isIntFA(t2):
		return t2, nil
	case isIntFA(t1) && typesystem.Equal(t2, typesystem.String{}):
		return t1, nil
	case isIntFA(t1) && isIntFA(t2):
		return t1, nil
	default:
		return nil, typeErrorAt(node.Token, fmt.Sprintf("concatenation is not possible between %s and %s", t1, t2))
	}
}

func (a *Analyzer) inferProduct(node *ast.ProductExpr) (typesystem.Type, *diagnostics.DiagnosticError) {
	t1, err := a.infer(node.Left)
	if err != nil {
		return nil, err
	}
	t2, err := a.infer(node.Right)
	if err != nil {
		return nil, err
	}
	if _, ok := t1.(typesystem.Set); ok {
		if _, ok2 := t2.(typesystem.Set); ok2 && typesystem.Equal(t1, t2) {
			return t1, nil
		}
	}
	p1 := isStringOrIntFA(t1)
	p2 := isStringOrIntFA(t2)
	if p1 && p2 && !typesystem.Equal(t1, t2) {
		return typesystem.FA{Vertex: typesystem.Tuple{Components: []typesystem.Type{typesystem.Int{}, typesystem.Int{}}}}, nil
	}
	fa1, isFA1 := t1.(typesystem.FA)
	fa2, isFA2 := t2.(typesystem.FA)
	if isFA1 && isFA2 {
		return typesystem.FA{Vertex: typesystem.Tuple{Components: []typesystem.Type{fa1.Vertex, fa2.Vertex}}}, nil
	}
	return nil, typeErrorAt(node.Token, fmt.Sprintf("product is not possible between %s and %s", t1, t2))
}

func (a *Analyzer) inferKleene(node *ast.KleeneExpr) (typesystem.Type, *diagnostics.DiagnosticError) {
	t, err := a.infer(node.Value)
	if err != nil {
		return nil, err
	}
	fa, ok := t.(typesystem.FA)
	if !ok {
		return nil, typeErrorAt(node.Token, fmt.Sprintf("closure is only possible on an FA, got %s", t))
	}
	return fa, nil
}

func (a *Analyzer) inferIn(node *ast.InExpr) (typesystem.Type, *diagnostics.DiagnosticError) {
	leftT, err := a.infer(node.Left)
	if err != nil {
		return nil, err
	}
	rightT, err := a.infer(node.Right)
	if err != nil {
		return nil, err
	}
	elem, ok := typesystem.ElementType(rightT)
	if !ok {
		return nil, typeErrorAt(node.Token, fmt.Sprintf("'in' is only possible with sets and uniform tuples, got %s", rightT))
	}
	if !typesystem.Equal(elem, leftT) {
		return nil, typeErrorAt(node.Token, fmt.Sprintf("cannot check a value of type %s in %s", leftT, rightT))
	}
	return typesystem.Bool{}, nil
}

func (a *Analyzer) inferGetVertexSet(tok token.Token, operand ast.Expression, label string) (typesystem.Type, *diagnostics.DiagnosticError) {
	t, err := a.infer(operand)
	if err != nil {
		return nil, err
	}
	fa, ok := t.(typesystem.FA)
	if !ok {
		return nil, typeErrorAt(tok, fmt.Sprintf("cannot get %s from %s", label, t))
	}
	return typesystem.Set{Element: fa.Vertex}, nil
}

func (a *Analyzer) inferGetEdges(node *ast.GetEdgesExpr) (typesystem.Type, *diagnostics.DiagnosticError) {
	t, err := a.infer(node.Value)
	if err != nil {
		return nil, err
	}
	fa, ok := t.(typesystem.FA)
	if !ok {
		return nil, typeErrorAt(node.Token, fmt.Sprintf("cannot get edges from %s", t))
	}
	edge := typesystem.Tuple{Components: []typesystem.Type{fa.Vertex, typesystem.String{}, fa.Vertex}}
	return typesystem.Set{Element: edge}, nil
}

func (a *Analyzer) inferGetLabels(node *ast.GetLabelsExpr) (typesystem.Type, *diagnostics.DiagnosticError) {
	t, err := a.infer(node.Value)
	if err != nil {
		return nil, err
	}
	if _, ok := t.(typesystem.FA); !ok {
		return nil, typeErrorAt(node.Token, fmt.Sprintf("cannot get labels from %s", t))
	}
	return typesystem.Set{Element: typesystem.String{}}, nil
}

func (a *Analyzer) inferGetReachable(node *ast.GetReachableExpr) (typesystem.Type, *diagnostics.DiagnosticError) {
	t, err := a.infer(node.Value)
	if err != nil {
		return nil, err
	}
	fa, ok := t.(typesystem.FA)
	if !ok {
		return nil, typeErrorAt(node.Token, fmt.Sprintf("cannot get reachable pairs from %s", t))
	}
	pair := typesystem.Tuple{Components: []typesystem.Type{fa.Vertex, fa.Vertex}}
	return typesystem.Set{Element: pair}, nil
}

func (a *Analyzer) inferSetVertices(tok token.Token, faExpr, setExpr ast.Expression) (typesystem.Type, *diagnostics.DiagnosticError) {
	faT, err := a.infer(faExpr)
	if err != nil {
		return nil, err
	}
	fa, ok := faT.(typesystem.FA)
	if !ok {
		return nil, typeErrorAt(tok, fmt.Sprintf("FA<...> was expected, got %s", faT))
	}
	setT, err := a.infer(setExpr)
	if err != nil {
		return nil, err
	}
	expected := typesystem.Set{Element: fa.Vertex}
	if !typesystem.Equal(expected, setT) {
		return nil, typeErrorAt(tok, fmt.Sprintf("%s was expected, got %s", expected, setT))
	}
	return fa, nil
}

func (a *Analyzer) inferMap(node *ast.MapExpr) (typesystem.Type, *diagnostics.DiagnosticError) {
	srcT, err := a.infer(node.Source)
	if err != nil {
		return nil, err
	}
	elem, ok := typesystem.ElementType(srcT)
	if !ok {
		return nil, typeErrorAt(node.Token, fmt.Sprintf("map cannot be applied to %s", srcT))
	}
	bodyT, err := a.inferLambda(node.Fn, elem)
	if err != nil {
		return nil, err
	}
	return typesystem.Set{Element: bodyT}, nil
}

func (a *Analyzer) inferFilter(node *ast.FilterExpr) (typesystem.Type, *diagnostics.DiagnosticError) {
	srcT, err := a.infer(node.Source)
	if err != nil {
		return nil, err
	}
	elem, ok := typesystem.ElementType(srcT)
	if !ok {
		return nil, typeErrorAt(node.Token, fmt.Sprintf("filter can be applied only to sets and uniform tuples, got %s", srcT))
	}
	bodyT, err := a.inferLambda(node.Fn, elem)
	if err != nil {
		return nil, err
	}
	if !typesystem.Equal(bodyT, typesystem.Bool{}) {
		return nil, typeErrorAt(node.Token, fmt.Sprintf("filter predicate must return Bool, got %s", bodyT))
	}
	return typesystem.Set{Element: elem}, nil
}

// inferLambda binds lam's pattern to paramType in a fresh scope,
// infers the body, then unwinds the scope (§4.5/§9: lambda names must
// not leak past the body).
func (a *Analyzer) inferLambda(lam *ast.Lambda, paramType typesystem.Type) (typesystem.Type, *diagnostics.DiagnosticError) {
	a.env.Push()
	defer a.env.Pop()

	if err := a.env.Bind(lam.Pattern, paramType); err != nil {
		return nil, typeErrorAt(lam.Token, err.Error())
	}
	bodyT, err := a.infer(lam.Body)
	if err != nil {
		return nil, err
	}
	a.types[lam] = typesystem.Lambda{
		Pattern:    patternType(lam.Pattern),
		ParamType:  paramType,
		ReturnType: bodyT,
	}
	return bodyT, nil
}

func patternType(p ast.Pattern) typesystem.Type {
	switch pat := p.(type) {
	case *ast.VarPattern:
		return typesystem.VarName{Name: pat.Name}
	case *ast.TuplePattern:
		elems := make([]typesystem.Type, len(pat.Elements))
		for i, el := range pat.Elements {
			elems[i] = patternType(el)
		}
		return typesystem.Pattern{Elements: elems}
	default:
		return typesystem.None{}
	}
}
