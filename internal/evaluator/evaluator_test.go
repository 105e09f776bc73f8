package evaluator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/funxy-fa/internal/analyzer"
	"github.com/funvibe/funxy-fa/internal/lexer"
	"github.com/funvibe/funxy-fa/internal/parser"
)

// run parses, type-checks, and evaluates src, returning everything
// printed to stdout and any execution error.
func run(t *testing.T, src string) (string, error) {
	t.Helper()
	p := parser.New(lexer.New(src))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors(), "unexpected parse errors: %v", p.Errors())

	a := analyzer.New()
	require.Nil(t, a.Check(prog), "unexpected type error")

	var out bytes.Buffer
	ev := New(a)
	ev.Out = &out
	if err := ev.Run(prog); err != nil {
		return out.String(), err
	}
	return out.String(), nil
}

func TestEvalPrintIntLiteral(t *testing.T) {
	out, err := run(t, `print 5;`)
	assert.NoError(t, err)
	assert.Equal(t, "5 :: IntType\n", out)
}

func TestEvalLetThenPrintString(t *testing.T) {
	out, err := run(t, `let s = "hi"; print s;`)
	assert.NoError(t, err)
	assert.Equal(t, "hi :: StringType\n", out)
}

func TestEvalBoolPrintsPythonCase(t *testing.T) {
	out, err := run(t, `let s = {1,2}; print 1 in s;`)
	assert.NoError(t, err)
	assert.Equal(t, "True :: BoolType\n", out)
}

func TestEvalSetRangeLiteral(t *testing.T) {
	out, err := run(t, `print {1..3};`)
	assert.NoError(t, err)
	assert.Contains(t, out, "IntType>")
	assert.Contains(t, out, "1")
	assert.Contains(t, out, "2")
	assert.Contains(t, out, "3")
}

func TestEvalTupleLiteral(t *testing.T) {
	out, err := run(t, `print [1, 2, 3];`)
	assert.NoError(t, err)
	assert.Equal(t, "[ 1, 2, 3 ] :: TupleType<IntType, IntType, IntType>\n", out)
}

func TestEvalUnionOfStringsBuildsFAOverAlphabet(t *testing.T) {
	out, err := run(t, `let fa = "a" | "b"; print get_labels of fa;`)
	assert.NoError(t, err)
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "b")
}

func TestEvalUnionOfSetsIsSetUnion(t *testing.T) {
	out, err := run(t, `print {1,2} | {2,3};`)
	assert.NoError(t, err)
	for _, want := range []string{"1", "2", "3"} {
		assert.Contains(t, out, want)
	}
}

func TestEvalProductOfSetsIsSetIntersection(t *testing.T) {
	out, err := run(t, `print {1,2,3} & {2,3,4};`)
	assert.NoError(t, err)
	assert.NotContains(t, out, "1")
	assert.Contains(t, out, "2")
	assert.Contains(t, out, "3")
	assert.NotContains(t, out, "4")
}

func TestEvalConcatStrings(t *testing.T) {
	out, err := run(t, `print "ab" ++ "cd";`)
	assert.NoError(t, err)
	assert.Equal(t, "abcd :: StringType\n", out)
}

func TestEvalConcatStringAndFAProducesPathFA(t *testing.T) {
	// concatCompat only returns FA<Int> when at least one operand is
	// already FA-typed; "b" | "c" lifts two Strings to an FA so the
	// left-hand String has something FA-typed to concatenate onto.
	out, err := run(t, `let fa = "a" ++ ("b" | "c"); print get_labels of fa;`)
	assert.NoError(t, err)
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "b")
	assert.Contains(t, out, "c")
}

func TestEvalKleeneOnFAKeepsStartsAndFinals(t *testing.T) {
	// Closure only changes epsilon transitions; the start/final sets of
	// base survive unchanged into fa.
	out, err := run(t, `let base = "a" | "a"; let fa = base*; print get_starts of fa; print get_finals of fa;`)
	assert.NoError(t, err)
	assert.Contains(t, out, "SetType<IntType>")
	// base has starts {0, 2} and finals {1, 3}; set print order is
	// unspecified, so either element order is accepted.
	assert.Regexp(t, `^\{ (0, 2|2, 0) \} :: SetType<IntType>\n\{ (1, 3|3, 1) \} :: SetType<IntType>\n$`, out)
}

func TestEvalGetStartsAndFinalsOfUnionFA(t *testing.T) {
	// §4.1: Set print order is implementation-defined, so assert
	// membership rather than an exact rendered string.
	out, err := run(t, `let fa = "x" | "x"; print get_starts of fa; print get_finals of fa;`)
	assert.NoError(t, err)
	assert.Contains(t, out, "SetType<IntType>")
	assert.Contains(t, out, "0")
}

func TestEvalSetStartsReplacesStartSet(t *testing.T) {
	out, err := run(t, `let base = "x" | "x"; let fa = set_starts base {5}; print get_starts of fa;`)
	assert.NoError(t, err)
	assert.Equal(t, "{ 5 } :: SetType<IntType>\n", out)
}

func TestEvalAddStartsKeepsExistingStarts(t *testing.T) {
	out, err := run(t, `let base = "x" | "x"; let fa = add_starts {5} base; print get_starts of fa;`)
	assert.NoError(t, err)
	assert.Contains(t, out, "0")
	assert.Contains(t, out, "5")
}

func TestEvalProductOfFAsWidensVertexToTuple(t *testing.T) {
	out, err := run(t, `let a = "p" | "p"; let b = "q" | "q"; print get_vertices of (a & b);`)
	assert.NoError(t, err)
	assert.Contains(t, out, "TupleType<IntType, IntType>")
}

func TestEvalReachableOfUnionFA(t *testing.T) {
	out, err := run(t, `let fa = "x" | "x"; print get_reachable of fa;`)
	assert.NoError(t, err)
	assert.Contains(t, out, "[ 0, 1 ]")
}

func TestEvalEdgesOfUnionFA(t *testing.T) {
	out, err := run(t, `let fa = "x" | "x"; print get_edges of fa;`)
	assert.NoError(t, err)
	assert.Contains(t, out, "x")
}

func TestEvalMapCollectsReturnValue(t *testing.T) {
	out, err := run(t, `let s = {1,2,3}; print map s with \x -> x in {2};`)
	assert.NoError(t, err)
	assert.Contains(t, out, "True")
	assert.Contains(t, out, "False")
}

func TestEvalFilterKeepsOriginalElementNotPredicate(t *testing.T) {
	// §4.1: Set print order is implementation-defined, so assert
	// membership rather than an exact rendered string.
	out, err := run(t, `let s = {1,2,3}; print filter s with \x -> x in {2,3};`)
	assert.NoError(t, err)
	assert.Contains(t, out, "SetType<IntType>")
	assert.NotContains(t, out, "1")
	assert.Contains(t, out, "2")
	assert.Contains(t, out, "3")
}

func TestEvalFilterOverUniformTuple(t *testing.T) {
	out, err := run(t, `let t = [1, 2, 3]; print filter t with \x -> x in {1,3};`)
	assert.NoError(t, err)
	assert.Contains(t, out, "1")
	assert.Contains(t, out, "3")
	assert.NotContains(t, out, "2")
}

func TestEvalLambdaScopeDoesNotLeakIntoLaterStatements(t *testing.T) {
	// The analyzer rejects `print x` here too, so run's type-check step
	// cannot be used; evaluate with the types of the statements the
	// analyzer did reach, and check the evaluator's own scoping.
	p := parser.New(lexer.New(`let s = {1,2}; let y = map s with \x -> x; print x;`))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors(), "unexpected parse errors: %v", p.Errors())
	a := analyzer.New()
	_ = a.Check(prog)
	ev := New(a)
	ev.Out = &bytes.Buffer{}
	err := ev.Run(prog)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "x variable wasn't defined")
}

func TestEvalLoadMissingFileIsExecutionError(t *testing.T) {
	out, err := run(t, `print load "/nonexistent/graph.dot";`)
	assert.Error(t, err)
	assert.Empty(t, out)
}

func TestEvalBracedExprPreservesValue(t *testing.T) {
	out, err := run(t, `print (5);`)
	assert.NoError(t, err)
	assert.Equal(t, "5 :: IntType\n", out)
}

func TestEvalTuplePatternLetDestructures(t *testing.T) {
	out, err := run(t, `let [a, b] = [1, 2]; print a; print b;`)
	assert.NoError(t, err)
	assert.Equal(t, "1 :: IntType\n2 :: IntType\n", out)
}
