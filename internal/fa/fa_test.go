package fa

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funvibe/funxy-fa/internal/typesystem"
	"github.com/funvibe/funxy-fa/internal/value"
)

func TestFromString(t *testing.T) {
	a := FromString("ab")
	assert.Equal(t, 1, a.StartStates().Len())
	assert.Equal(t, 1, a.FinalStates().Len())
	assert.True(t, a.Labels().Contains(value.String("ab")))
}

func TestUnionRenumbersAndPreservesBoth(t *testing.T) {
	a := FromString("x")
	b := FromString("y")

	u, err := Union(a, b)
	assert.NoError(t, err)

	assert.Equal(t, 4, u.States().Len())
	assert.Equal(t, 2, u.StartStates().Len())
	assert.Equal(t, 2, u.FinalStates().Len())
	assert.True(t, u.Labels().Contains(value.String("x")))
	assert.True(t, u.Labels().Contains(value.String("y")))
}

func TestUnionRejectsNonIntVertex(t *testing.T) {
	a := FromString("x")
	b := Product(a, a) // tuple-vertex automaton
	_, err := Union(a, b)
	assert.Error(t, err)
}

func TestConcatenationLinksFinalsToStarts(t *testing.T) {
	a := FromString("a")
	b := FromString("b")

	c, err := Concatenation(a, b)
	assert.NoError(t, err)

	// a's single start survives, b's single final survives.
	assert.Equal(t, 1, c.StartStates().Len())
	assert.Equal(t, 1, c.FinalStates().Len())
	assert.True(t, c.StartStates().Equal(a.StartStates()))
	// a's final (index 1) is linked by ε to b's relabeled start 2 (index 2).
	assert.True(t, c.epsilons[[2]int{1, 2}])
}

func TestClosureAddsEpsilonBack(t *testing.T) {
	a := FromString("a")
	cl := Closure(a)
	closure := TransitiveClosure(cl.flattenMatrix())
	// final (index 1) must reach start (index 0) via the new epsilon.
	assert.True(t, closure.Get(1, 0))
}

func TestProductIntersectsSharedLabel(t *testing.T) {
	a := FromString("shared")
	b := FromString("shared")
	p := Product(a, b)

	assert.Equal(t, 1, p.StartStates().Len())
	assert.Equal(t, 1, p.FinalStates().Len())
	assert.Equal(t, 1, p.Labels().Len())
}

func TestProductEmptyOnDisjointLabels(t *testing.T) {
	a := FromString("a")
	b := FromString("b")
	p := Product(a, b)

	assert.Equal(t, 0, p.Labels().Len())
}

func TestReachableContainsPairViaDirectTransition(t *testing.T) {
	a := FromString("x")
	reach := a.Reachable()
	assert.Equal(t, 1, reach.Len())
	assert.True(t, reach.Contains(value.NewTuple(value.Int(0), value.Int(1))))

	noFinal := New(a.VertexType())
	noFinal.MarkStart(value.Int(0))
	assert.Equal(t, 0, noFinal.Reachable().Len())
}

func TestReachableFalseWhenStartEqualsFinalWithNoPath(t *testing.T) {
	noPath := New(typesystem.Int{})
	noPath.MarkStart(value.Int(0))
	noPath.MarkFinal(value.Int(0))
	assert.Equal(t, 0, noPath.Reachable().Len())
}

func TestReachableTrueWhenFinalIsStartWithSelfLoop(t *testing.T) {
	selfLoop := New(typesystem.Int{})
	selfLoop.AddTransition(value.Int(0), "x", value.Int(0))
	selfLoop.MarkStart(value.Int(0))
	selfLoop.MarkFinal(value.Int(0))
	reach := selfLoop.Reachable()
	assert.Equal(t, 1, reach.Len())
	assert.True(t, reach.Contains(value.NewTuple(value.Int(0), value.Int(0))))
}

func TestReachableFollowsTransitivePath(t *testing.T) {
	a := New(typesystem.Int{})
	a.AddTransition(value.Int(0), "x", value.Int(1))
	a.AddTransition(value.Int(1), "y", value.Int(2))
	a.MarkStart(value.Int(0))
	a.MarkFinal(value.Int(2))

	reach := a.Reachable()
	assert.True(t, reach.Contains(value.NewTuple(value.Int(0), value.Int(2))))
}

func TestEdgesAndSetFinals(t *testing.T) {
	a := FromString("z")
	edges := a.Edges()
	assert.Equal(t, 1, edges.Len())

	newFinals := value.NewSet(a.VertexType(), value.Int(0))
	a2 := a.SetFinals(newFinals)
	assert.True(t, a2.FinalStates().Equal(newFinals))
	// original untouched
	assert.False(t, a.FinalStates().Equal(newFinals))
}

func TestAddStartsIsAdditive(t *testing.T) {
	a := FromString("w")
	added := a.AddStarts(value.NewSet(a.VertexType(), value.Int(1)))
	assert.Equal(t, 2, added.StartStates().Len())
	assert.Equal(t, 1, a.StartStates().Len())
}
