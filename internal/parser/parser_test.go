package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funvibe/funxy-fa/internal/ast"
	"github.com/funvibe/funxy-fa/internal/lexer"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(lexer.New(src))
	prog := p.ParseProgram()
	assert.Empty(t, p.Errors(), "unexpected parse errors: %v", p.Errors())
	return prog
}

func TestParseLetAndPrintStatements(t *testing.T) {
	prog := parseProgram(t, `let x = 5; print x;`)
	assert.Len(t, prog.Statements, 2)

	let, ok := prog.Statements[0].(*ast.LetStatement)
	assert.True(t, ok)
	pat, ok := let.Pattern.(*ast.VarPattern)
	assert.True(t, ok)
	assert.Equal(t, "x", pat.Name)

	_, ok = prog.Statements[1].(*ast.PrintStatement)
	assert.True(t, ok)
}

func TestParseTuplePatternLet(t *testing.T) {
	prog := parseProgram(t, `let [a, b] = [1, 2]; print a;`)
	let := prog.Statements[0].(*ast.LetStatement)
	pat, ok := let.Pattern.(*ast.TuplePattern)
	assert.True(t, ok)
	assert.Len(t, pat.Elements, 2)
}

func TestParseNegativeIntLiteral(t *testing.T) {
	prog := parseProgram(t, `print -5;`)
	print := prog.Statements[0].(*ast.PrintStatement)
	ve := print.Value.(*ast.ValExpr)
	iv := ve.Value.(*ast.IntVal)
	assert.Equal(t, int64(-5), iv.Value)
}

func TestParseSetLiteralForms(t *testing.T) {
	cases := map[string]ast.SetKind{
		`print {};`:       ast.SetEmpty,
		`print {1, 2, 3};`: ast.SetList,
		`print {1..5};`:    ast.SetRange,
	}
	for src, wantKind := range cases {
		prog := parseProgram(t, src)
		print := prog.Statements[0].(*ast.PrintStatement)
		ve := print.Value.(*ast.ValExpr)
		sv := ve.Value.(*ast.SetVal)
		assert.Equal(t, wantKind, sv.Kind, "source: %s", src)
	}
}

func TestParseTupleLiteralWithBadVal(t *testing.T) {
	prog := parseProgram(t, `print [1, 2, a];`)
	print := prog.Statements[0].(*ast.PrintStatement)
	ve := print.Value.(*ast.ValExpr)
	tv := ve.Value.(*ast.TupleVal)
	assert.Len(t, tv.Elements, 3)
	_, ok := tv.Elements[2].(*ast.BadVal)
	assert.True(t, ok)
}

func TestParseUnionConcatProductPrecedence(t *testing.T) {
	// & binds tighter than ++, which binds tighter than |, so
	// `a | b ++ c & d` parses as `a | (b ++ (c & d))`.
	prog := parseProgram(t, `print a | b ++ c & d;`)
	print := prog.Statements[0].(*ast.PrintStatement)
	top, ok := print.Value.(*ast.UnionExpr)
	assert.True(t, ok)

	_, ok = top.Left.(*ast.Identifier)
	assert.True(t, ok)

	concat, ok := top.Right.(*ast.ConcatExpr)
	assert.True(t, ok)
	_, ok = concat.Left.(*ast.Identifier)
	assert.True(t, ok)

	product, ok := concat.Right.(*ast.ProductExpr)
	assert.True(t, ok)
	_, ok = product.Left.(*ast.Identifier)
	assert.True(t, ok)
	_, ok = product.Right.(*ast.Identifier)
	assert.True(t, ok)
}

func TestParseInIsLowestAndNonChaining(t *testing.T) {
	prog := parseProgram(t, `print a in b;`)
	print := prog.Statements[0].(*ast.PrintStatement)
	in, ok := print.Value.(*ast.InExpr)
	assert.True(t, ok)
	_, ok = in.Left.(*ast.Identifier)
	assert.True(t, ok)
	_, ok = in.Right.(*ast.Identifier)
	assert.True(t, ok)

	// `in` sits below `|`, so `a | b in c` groups as `(a | b) in c`.
	prog = parseProgram(t, `print a | b in c;`)
	in, ok = prog.Statements[0].(*ast.PrintStatement).Value.(*ast.InExpr)
	assert.True(t, ok)
	_, ok = in.Left.(*ast.UnionExpr)
	assert.True(t, ok)

	// `in` takes a single right operand, so a second `in` is a syntax error.
	p := New(lexer.New(`print a in b in c;`))
	p.ParseProgram()
	assert.NotEmpty(t, p.Errors())
}

func TestParseKleenePostfix(t *testing.T) {
	prog := parseProgram(t, `print a*;`)
	print := prog.Statements[0].(*ast.PrintStatement)
	k, ok := print.Value.(*ast.KleeneExpr)
	assert.True(t, ok)
	_, ok = k.Value.(*ast.Identifier)
	assert.True(t, ok)
}

func TestParseDoubleKleene(t *testing.T) {
	prog := parseProgram(t, `print a**;`)
	print := prog.Statements[0].(*ast.PrintStatement)
	outer, ok := print.Value.(*ast.KleeneExpr)
	assert.True(t, ok)
	_, ok = outer.Value.(*ast.KleeneExpr)
	assert.True(t, ok)
}

func TestParseLoadExpr(t *testing.T) {
	prog := parseProgram(t, `let g = load "graph.dot"; print g;`)
	let := prog.Statements[0].(*ast.LetStatement)
	load, ok := let.Value.(*ast.LoadExpr)
	assert.True(t, ok)
	ve := load.Path.(*ast.ValExpr)
	sv := ve.Value.(*ast.StringVal)
	assert.Equal(t, "graph.dot", sv.Value)
}

func TestParseGetStartsOf(t *testing.T) {
	prog := parseProgram(t, `print get_starts of fa;`)
	print := prog.Statements[0].(*ast.PrintStatement)
	g, ok := print.Value.(*ast.GetStartsExpr)
	assert.True(t, ok)
	_, ok = g.Value.(*ast.Identifier)
	assert.True(t, ok)
}

func TestParseAllGetForms(t *testing.T) {
	sources := []string{
		`print get_starts of fa;`,
		`print get_finals of fa;`,
		`print get_vertices of fa;`,
		`print get_edges of fa;`,
		`print get_labels of fa;`,
		`print get_reachable of fa;`,
	}
	for _, src := range sources {
		parseProgram(t, src)
	}
}

func TestParseSetStartsOperandOrder(t *testing.T) {
	prog := parseProgram(t, `print set_starts fa s;`)
	print := prog.Statements[0].(*ast.PrintStatement)
	ss, ok := print.Value.(*ast.SetStartsExpr)
	assert.True(t, ok)
	faIdent, ok := ss.Left.(*ast.Identifier)
	assert.True(t, ok)
	assert.Equal(t, "fa", faIdent.Name)
	setIdent, ok := ss.Right.(*ast.Identifier)
	assert.True(t, ok)
	assert.Equal(t, "s", setIdent.Name)
}

func TestParseAddStartsOperandOrder(t *testing.T) {
	// Unlike set_starts, add_starts puts the vertex set first in
	// source: `add_starts s e` (§4.5).
	prog := parseProgram(t, `print add_starts s fa;`)
	print := prog.Statements[0].(*ast.PrintStatement)
	as, ok := print.Value.(*ast.AddStartsExpr)
	assert.True(t, ok)
	setIdent, ok := as.Left.(*ast.Identifier)
	assert.True(t, ok)
	assert.Equal(t, "s", setIdent.Name)
	faIdent, ok := as.Right.(*ast.Identifier)
	assert.True(t, ok)
	assert.Equal(t, "fa", faIdent.Name)
}

func TestParseAddStartsAndAddFinals(t *testing.T) {
	parseProgram(t, `print add_starts s fa;`)
	parseProgram(t, `print add_finals s fa;`)
}

func TestParseMapWithLambda(t *testing.T) {
	prog := parseProgram(t, `print map fa with \x -> x;`)
	print := prog.Statements[0].(*ast.PrintStatement)
	m, ok := print.Value.(*ast.MapExpr)
	assert.True(t, ok)
	_, ok = m.Source.(*ast.Identifier)
	assert.True(t, ok)
	pat, ok := m.Fn.Pattern.(*ast.VarPattern)
	assert.True(t, ok)
	assert.Equal(t, "x", pat.Name)
}

func TestParseFilterWithLambda(t *testing.T) {
	prog := parseProgram(t, `print filter fa with \x -> x;`)
	print := prog.Statements[0].(*ast.PrintStatement)
	_, ok := print.Value.(*ast.FilterExpr)
	assert.True(t, ok)
}

func TestParseLambdaInParensIsSyntaxError(t *testing.T) {
	// `filter g with (\a -> a)` is invalid: a lambda directly after
	// `with` is required, not a parenthesized expression.
	p := New(lexer.New(`print filter g with (\a -> a);`))
	p.ParseProgram()
	assert.NotEmpty(t, p.Errors())
}

func TestParseBracedExpr(t *testing.T) {
	prog := parseProgram(t, `print (a | b);`)
	print := prog.Statements[0].(*ast.PrintStatement)
	_, ok := print.Value.(*ast.BracedExpr)
	assert.True(t, ok)
}

func TestParseMissingSemicolonIsError(t *testing.T) {
	p := New(lexer.New(`let x = 5`))
	p.ParseProgram()
	assert.NotEmpty(t, p.Errors())
}

func TestParseStringLiteral(t *testing.T) {
	prog := parseProgram(t, `print "hi";`)
	print := prog.Statements[0].(*ast.PrintStatement)
	ve := print.Value.(*ast.ValExpr)
	sv := ve.Value.(*ast.StringVal)
	assert.Equal(t, "hi", sv.Value)
}
