// Package parser turns a token stream into an internal/ast tree,
// following spec.md §4.4's grammar: a mix of Pratt-style infix
// climbing for `in`/`|`/`++`/`&` and tiered recursive descent for the
// keyword-prefixed forms (load, get_*/set_*/add_*, map/filter…with),
// built the same hand-rolled way as internal/lexer rather than with a
// parser-generator, since funxy's own parser is hand-rolled too.
package parser

import (
	"fmt"

	"github.com/funvibe/funxy-fa/internal/ast"
	"github.com/funvibe/funxy-fa/internal/diagnostics"
	"github.com/funvibe/funxy-fa/internal/lexer"
	"github.com/funvibe/funxy-fa/internal/token"
)

// Parser holds two-token lookahead over the lexer's output.
type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	errors []*diagnostics.DiagnosticError
}

// New creates a Parser over l, priming the two-token lookahead.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Errors returns every syntax error accumulated while parsing.
func (p *Parser) Errors() []*diagnostics.DiagnosticError { return p.errors }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
	for p.peek.Type == token.NEWLINE {
		p.peek = p.l.NextToken()
	}
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.NewAt(diagnostics.Syntax, p.cur.Line, p.cur.Column, format, args...))
}

func (p *Parser) expect(t token.Type) bool {
	if p.cur.Type == t {
		p.next()
		return true
	}
	p.errorf("expected %s, got %s (%q)", t, p.cur.Type, p.cur.Lexeme)
	return false
}

// ParseProgram parses a full program: zero or more statements up to EOF.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for p.cur.Type != token.EOF {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		} else if p.cur.Type != token.EOF {
			p.next() // avoid infinite loop on unrecoverable token
		}
	}
	return prog
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case token.LET:
		return p.parseLetStatement()
	case token.PRINT:
		return p.parsePrintStatement()
	default:
		p.errorf("expected 'let' or 'print', got %s (%q)", p.cur.Type, p.cur.Lexeme)
		return nil
	}
}

func (p *Parser) parseLetStatement() ast.Statement {
	tok := p.cur
	p.next() // consume 'let'

	pattern := p.parsePattern()
	if pattern == nil {
		return nil
	}

	if !p.expect(token.ASSIGN) {
		return nil
	}

	value := p.parseExpression()
	if value == nil {
		return nil
	}

	if !p.expect(token.SEMICOLON) {
		return nil
	}

	return &ast.LetStatement{Token: tok, Pattern: pattern, Value: value}
}

func (p *Parser) parsePrintStatement() ast.Statement {
	tok := p.cur
	p.next() // consume 'print'

	value := p.parseExpression()
	if value == nil {
		return nil
	}

	if !p.expect(token.SEMICOLON) {
		return nil
	}

	return &ast.PrintStatement{Token: tok, Value: value}
}

// ---- Patterns -----------------------------------------------------------

func (p *Parser) parsePattern() ast.Pattern {
	switch p.cur.Type {
	case token.VAR:
		tok := p.cur
		p.next()
		return &ast.VarPattern{Token: tok, Name: tok.Lexeme}
	case token.LBRACKET:
		tok := p.cur
		p.next()
		var elems []ast.Pattern
		if p.cur.Type != token.RBRACKET {
			for {
				el := p.parsePattern()
				if el == nil {
					return nil
				}
				elems = append(elems, el)
				if p.cur.Type != token.COMMA {
					break
				}
				p.next()
			}
		}
		if !p.expect(token.RBRACKET) {
			return nil
		}
		return &ast.TuplePattern{Token: tok, Elements: elems}
	default:
		p.errorf("expected a pattern (variable or '[...]'), got %s (%q)", p.cur.Type, p.cur.Lexeme)
		return nil
	}
}

// ---- Expressions: tiered precedence (§4.4) -------------------------------
//
// Highest to lowest: atoms > postfix(*) > get_*/set_*/add_* > load >
// map/filter...with > & > ++ > | > in.

func (p *Parser) parseExpression() ast.Expression { return p.parseIn() }

func (p *Parser) parseIn() ast.Expression {
	left := p.parseUnion()
	if left == nil {
		return nil
	}
	if p.cur.Type == token.IN {
		tok := p.cur
		p.next()
		right := p.parseUnion()
		if right == nil {
			return nil
		}
		return &ast.InExpr{ast.NewBinary(tok, left, right)}
	}
	return left
}

func (p *Parser) parseUnion() ast.Expression {
	left := p.parseConcat()
	if left == nil {
		return nil
	}
	for p.cur.Type == token.PIPE {
		tok := p.cur
		p.next()
		right := p.parseConcat()
		if right == nil {
			return nil
		}
		left = &ast.UnionExpr{ast.NewBinary(tok, left, right)}
	}
	return left
}

func (p *Parser) parseConcat() ast.Expression {
	left := p.parseProduct()
	if left == nil {
		return nil
	}
	for p.cur.Type == token.CONCAT {
		tok := p.cur
		p.next()
		right := p.parseProduct()
		if right == nil {
			return nil
		}
		left = &ast.ConcatExpr{ast.NewBinary(tok, left, right)}
	}
	return left
}

func (p *Parser) parseProduct() ast.Expression {
	left := p.parseMapFilter()
	if left == nil {
		return nil
	}
	for p.cur.Type == token.AMP {
		tok := p.cur
		p.next()
		right := p.parseMapFilter()
		if right == nil {
			return nil
		}
		left = &ast.ProductExpr{ast.NewBinary(tok, left, right)}
	}
	return left
}

func (p *Parser) parseMapFilter() ast.Expression {
	switch p.cur.Type {
	case token.MAP:
		tok := p.cur
		p.next()
		source := p.parseLoad()
		if source == nil {
			return nil
		}
		if !p.expect(token.WITH) {
			return nil
		}
		fn := p.parseLambda()
		if fn == nil {
			return nil
		}
		return &ast.MapExpr{Token: tok, Source: source, Fn: fn}
	case token.FILTER:
		tok := p.cur
		p.next()
		source := p.parseLoad()
		if source == nil {
			return nil
		}
		if !p.expect(token.WITH) {
			return nil
		}
		fn := p.parseLambda()
		if fn == nil {
			return nil
		}
		return &ast.FilterExpr{Token: tok, Source: source, Fn: fn}
	default:
		return p.parseLoad()
	}
}

func (p *Parser) parseLambda() *ast.Lambda {
	if p.cur.Type != token.BACKSLASH {
		p.errorf("expected '\\' to start a lambda, got %s (%q)", p.cur.Type, p.cur.Lexeme)
		return nil
	}
	tok := p.cur
	p.next()
	pattern := p.parsePattern()
	if pattern == nil {
		return nil
	}
	if !p.expect(token.ARROW) {
		return nil
	}
	body := p.parseExpression()
	if body == nil {
		return nil
	}
	return &ast.Lambda{Token: tok, Pattern: pattern, Body: body}
}

func (p *Parser) parseLoad() ast.Expression {
	if p.cur.Type == token.LOAD {
		tok := p.cur
		p.next()
		path := p.parseGetSet()
		if path == nil {
			return nil
		}
		return &ast.LoadExpr{Token: tok, Path: path}
	}
	return p.parseGetSet()
}

func (p *Parser) parseGetSet() ast.Expression {
	switch p.cur.Type {
	case token.GET_STARTS, token.GET_FINALS, token.GET_VERTICES,
		token.GET_EDGES, token.GET_LABELS, token.GET_REACHABLE:
		tok := p.cur
		p.next()
		if !p.expect(token.OF) {
			return nil
		}
		operand := p.parsePostfix()
		if operand == nil {
			return nil
		}
		return wrapGetExpr(tok, operand)
	case token.SET_STARTS, token.SET_FINALS, token.ADD_STARTS, token.ADD_FINALS:
		// Operand order in source differs by form: `set_starts e s` /
		// `set_finals e s` put the FA first (§4.5), but
		// `add_starts s e` / `add_finals s e` put the vertex set
		// first (§4.5, matching the original's exitExprAddStarts
		// unpacking `vertices, fa = ctx.expr()`). Left/Right on the
		// AST node stay purely positional (first/second operand
		// parsed); the analyzer and evaluator pick which is the FA
		// and which is the set per node kind.
		tok := p.cur
		p.next()
		left := p.parsePostfix()
		if left == nil {
			return nil
		}
		right := p.parsePostfix()
		if right == nil {
			return nil
		}
		return wrapSetExpr(tok, left, right)
	default:
		return p.parsePostfix()
	}
}

func wrapGetExpr(tok token.Token, operand ast.Expression) ast.Expression {
	switch tok.Type {
	case token.GET_STARTS:
		return &ast.GetStartsExpr{ast.NewUnary(tok, operand)}
	case token.GET_FINALS:
		return &ast.GetFinalsExpr{ast.NewUnary(tok, operand)}
	case token.GET_VERTICES:
		return &ast.GetVerticesExpr{ast.NewUnary(tok, operand)}
	case token.GET_EDGES:
		return &ast.GetEdgesExpr{ast.NewUnary(tok, operand)}
	case token.GET_LABELS:
		return &ast.GetLabelsExpr{ast.NewUnary(tok, operand)}
	case token.GET_REACHABLE:
		return &ast.GetReachableExpr{ast.NewUnary(tok, operand)}
	default:
		panic("unreachable: wrapGetExpr")
	}
}

// wrapSetExpr builds the AST node for one of the four FA-mutator
// forms. left/right are purely the first/second operand parsed from
// source, not "fa"/"set" — see the comment at the SET_STARTS/
// ADD_STARTS parse case for why the two families disagree on operand
// order.
func wrapSetExpr(tok token.Token, left, right ast.Expression) ast.Expression {
	switch tok.Type {
	case token.SET_STARTS:
		return &ast.SetStartsExpr{ast.NewBinary(tok, left, right)}
	case token.SET_FINALS:
		return &ast.SetFinalsExpr{ast.NewBinary(tok, left, right)}
	case token.ADD_STARTS:
		return &ast.AddStartsExpr{ast.NewBinary(tok, left, right)}
	case token.ADD_FINALS:
		return &ast.AddFinalsExpr{ast.NewBinary(tok, left, right)}
	default:
		panic("unreachable: wrapSetExpr")
	}
}

func (p *Parser) parsePostfix() ast.Expression {
	left := p.parseAtom()
	if left == nil {
		return nil
	}
	for p.cur.Type == token.ASTERISK {
		tok := p.cur
		p.next()
		left = &ast.KleeneExpr{ast.NewUnary(tok, left)}
	}
	return left
}

func (p *Parser) parseAtom() ast.Expression {
	switch p.cur.Type {
	case token.VAR:
		tok := p.cur
		p.next()
		return &ast.Identifier{Token: tok, Name: tok.Lexeme}
	case token.INT:
		tok := p.cur
		p.next()
		return &ast.ValExpr{Token: tok, Value: intValFromToken(tok)}
	case token.STRING:
		tok := p.cur
		p.next()
		return &ast.ValExpr{Token: tok, Value: &ast.StringVal{Token: tok, Value: tok.Literal}}
	case token.LBRACE:
		return p.parseSetValAsExpr()
	case token.LBRACKET:
		return p.parseTupleValAsExpr()
	case token.LPAREN:
		tok := p.cur
		p.next()
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return &ast.BracedExpr{ast.NewUnary(tok, inner)}
	default:
		p.errorf("unexpected token %s (%q) in expression", p.cur.Type, p.cur.Lexeme)
		return nil
	}
}

// ---- Val grammar (literal values only; §4.1/§6) --------------------------

func (p *Parser) parseVal() ast.Val {
	switch p.cur.Type {
	case token.VAR:
		tok := p.cur
		p.next()
		return &ast.BadVal{Token: tok, Name: tok.Lexeme}
	case token.INT:
		tok := p.cur
		p.next()
		return intValFromToken(tok)
	case token.STRING:
		tok := p.cur
		p.next()
		return &ast.StringVal{Token: tok, Value: tok.Literal}
	case token.LBRACE:
		return p.parseSetVal()
	case token.LBRACKET:
		return p.parseTupleVal()
	default:
		p.errorf("expected a literal value, got %s (%q)", p.cur.Type, p.cur.Lexeme)
		return nil
	}
}

func (p *Parser) parseSetVal() *ast.SetVal {
	tok := p.cur
	p.next() // consume '{'

	if p.cur.Type == token.RBRACE {
		p.next()
		return &ast.SetVal{Token: tok, Kind: ast.SetEmpty}
	}

	first, ok := p.parseIntLiteral()
	if !ok {
		return nil
	}

	if p.cur.Type == token.DOT_DOT {
		p.next()
		second, ok := p.parseIntLiteral()
		if !ok {
			return nil
		}
		if !p.expect(token.RBRACE) {
			return nil
		}
		return &ast.SetVal{Token: tok, Kind: ast.SetRange, Lo: first, Hi: second}
	}

	elems := []int64{first}
	for p.cur.Type == token.COMMA {
		p.next()
		n, ok := p.parseIntLiteral()
		if !ok {
			return nil
		}
		elems = append(elems, n)
	}
	if !p.expect(token.RBRACE) {
		return nil
	}
	return &ast.SetVal{Token: tok, Kind: ast.SetList, Elements: elems}
}

func (p *Parser) parseSetValAsExpr() ast.Expression {
	v := p.parseSetVal()
	if v == nil {
		return nil
	}
	return &ast.ValExpr{Token: v.Token, Value: v}
}

func (p *Parser) parseTupleVal() *ast.TupleVal {
	tok := p.cur
	p.next() // consume '['

	var elems []ast.Val
	if p.cur.Type != token.RBRACKET {
		for {
			el := p.parseVal()
			if el == nil {
				return nil
			}
			elems = append(elems, el)
			if p.cur.Type != token.COMMA {
				break
			}
			p.next()
		}
	}
	if !p.expect(token.RBRACKET) {
		return nil
	}
	return &ast.TupleVal{Token: tok, Elements: elems}
}

func (p *Parser) parseTupleValAsExpr() ast.Expression {
	v := p.parseTupleVal()
	if v == nil {
		return nil
	}
	return &ast.ValExpr{Token: v.Token, Value: v}
}

func (p *Parser) parseIntLiteral() (int64, bool) {
	if p.cur.Type != token.INT {
		p.errorf("expected an integer literal, got %s (%q)", p.cur.Type, p.cur.Lexeme)
		return 0, false
	}
	tok := p.cur
	p.next()
	v := intValFromToken(tok)
	return v.Value, true
}

func intValFromToken(tok token.Token) *ast.IntVal {
	var n int64
	_, err := fmt.Sscanf(tok.Literal, "%d", &n)
	if err != nil {
		return &ast.IntVal{Token: tok, Value: 0}
	}
	return &ast.IntVal{Token: tok, Value: n}
}
