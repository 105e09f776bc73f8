// Package fa implements the ε-NFA value and the FA algebra of §4.3:
// fromString, union, concatenation, Kleene closure, intersection via
// tensor product, and reachability via transitive closure, plus the
// extractor and mutator operations. Grounded on
// original_source/project/automata.py's nfa_* functions, which are the
// reference algorithms named in spec.md.
package fa

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/funvibe/funxy-fa/internal/typesystem"
	"github.com/funvibe/funxy-fa/internal/value"
)

type transitionKey struct {
	from  int
	label string
	to    int
}

// Automaton is an ε-NFA over string symbols whose states carry opaque
// Vertex-typed values (§3.2).
type Automaton struct {
	id      uuid.UUID
	vertex  typesystem.Type
	states  []value.Value
	buckets map[uint64][]int

	transitions map[transitionKey]bool // non-epsilon, deduped
	epsilons    map[[2]int]bool        // deduped

	start map[int]bool
	final map[int]bool
}

// New creates an empty automaton over the given vertex type.
func New(vertex typesystem.Type) *Automaton {
	return &Automaton{
		id:          uuid.New(),
		vertex:      vertex,
		buckets:     make(map[uint64][]int),
		transitions: make(map[transitionKey]bool),
		epsilons:    make(map[[2]int]bool),
		start:       make(map[int]bool),
		final:       make(map[int]bool),
	}
}

// VertexType returns the type of this automaton's state values.
func (a *Automaton) VertexType() typesystem.Type { return a.vertex }

// Type satisfies value.Value so an *Automaton can live in a ValueEnv and
// flow through print alongside every other runtime value (§4.1).
func (a *Automaton) Type() typesystem.Type { return typesystem.FA{Vertex: a.vertex} }

// Hash and Equal give *Automaton identity semantics: every FA operation
// in §4.3 returns a freshly built automaton, and the id, not automaton
// content, is what Hash/Equal compare. Two separately built automata
// with the same states and transitions are therefore unequal, e.g. as
// elements of a Set produced by `map`.
func (a *Automaton) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write(a.id[:])
	return h.Sum64()
}

func (a *Automaton) Equal(other value.Value) bool {
	b, ok := other.(*Automaton)
	return ok && a.id == b.id
}

func (a *Automaton) stateIndex(v value.Value) (int, bool) {
	for _, i := range a.buckets[v.Hash()] {
		if a.states[i].Equal(v) {
			return i, true
		}
	}
	return -1, false
}

// addState returns the index for v, creating a new state if needed.
func (a *Automaton) addState(v value.Value) int {
	if i, ok := a.stateIndex(v); ok {
		return i
	}
	i := len(a.states)
	a.states = append(a.states, v)
	a.buckets[v.Hash()] = append(a.buckets[v.Hash()], i)
	return i
}

// AddTransition adds u --label--> v (non-epsilon), deduped.
func (a *Automaton) AddTransition(u value.Value, label string, v value.Value) {
	ui, vi := a.addState(u), a.addState(v)
	a.transitions[transitionKey{ui, label, vi}] = true
}

// AddEpsilon adds u --ε--> v, deduped.
func (a *Automaton) AddEpsilon(u, v value.Value) {
	ui, vi := a.addState(u), a.addState(v)
	a.epsilons[[2]int{ui, vi}] = true
}

// MarkStart marks u as a start state.
func (a *Automaton) MarkStart(u value.Value) { a.start[a.addState(u)] = true }

// MarkFinal marks u as a final state.
func (a *Automaton) MarkFinal(u value.Value) { a.final[a.addState(u)] = true }

// FromString builds the single-transition FA 0 --s--> 1 with start={0},
// final={1}, per §4.3.
func FromString(s string) *Automaton {
	a := New(typesystem.Int{})
	a.AddTransition(value.Int(0), s, value.Int(1))
	a.MarkStart(value.Int(0))
	a.MarkFinal(value.Int(1))
	return a
}

// maxIntState returns the maximum Int-typed state value, erroring if
// any state is not an Int (per §4.3, union/concatenation require
// integer-typed states because they renumber).
func (a *Automaton) maxIntState() (int64, error) {
	var max int64
	found := false
	for _, s := range a.states {
		iv, ok := s.(value.Int)
		if !ok {
			return 0, fmt.Errorf("Union possible only for int states")
		}
		if !found || int64(iv) > max {
			max = int64(iv)
			found = true
		}
	}
	if !found {
		return -1, nil // empty automaton: next free id is 0
	}
	return max, nil
}

func isIntFA(t typesystem.Type) bool {
	_, ok := t.(typesystem.Int)
	return ok
}

// Union relabels b's states by max(a)+1 and takes the disjoint union
// of transitions and start/final sets (§4.3).
func Union(a, b *Automaton) (*Automaton, error) {
	if !isIntFA(a.vertex) || !isIntFA(b.vertex) {
		return nil, fmt.Errorf("Union possible only for int states")
	}
	offset, err := a.maxIntState()
	if err != nil {
		return nil, err
	}
	offset++

	out := New(typesystem.Int{})
	copyInto(out, a, 0)
	copyInto(out, b, offset)
	return out, nil
}

// Concatenation disjoint-unions a and b (states of b relabeled by
// max(a)+1), sets start := start(a), final := final(b), and adds
// ε-transitions from every final of a to every start of b (§4.3).
func Concatenation(a, b *Automaton) (*Automaton, error) {
	if !isIntFA(a.vertex) || !isIntFA(b.vertex) {
		return nil, fmt.Errorf("Union possible only for int states")
	}
	offset, err := a.maxIntState()
	if err != nil {
		return nil, err
	}
	offset++

	out := New(typesystem.Int{})
	copyInto(out, a, 0)

	// Concatenation's start/final differ from union: only a's starts
	// and b's finals survive, so copy b's transitions/states without
	// its start/final sets and re-derive final below.
	bStartVals := intValuesOf(b, b.start)
	bFinalVals := intValuesOf(b, b.final)
	copyTransitionsOnly(out, b, offset)

	aFinalVals := intValuesOf(a, a.final)
	for _, f := range aFinalVals {
		fv := value.Int(int64(f))
		for _, s := range bStartVals {
			out.AddEpsilon(fv, value.Int(int64(s)+offset))
		}
	}

	out.final = make(map[int]bool)
	for _, f := range bFinalVals {
		out.MarkFinal(value.Int(int64(f) + offset))
	}

	return out, nil
}

// Closure adds, for every final f and every start s, an ε-transition
// f --ε--> s (§4.3). The caller typically arranges start ⊆ final when
// empty-string acceptance is desired.
func Closure(a *Automaton) *Automaton {
	out := New(a.vertex)
	copyInto(out, a, 0)
	for f := range a.final {
		for s := range a.start {
			out.epsilons[[2]int{f, s}] = true
		}
	}
	return out
}

// Product builds the tensor-product (synchronous) intersection of a
// and b: states are pairs (u, v), a transition ((u,v), l, (u2,v2))
// exists iff both u--l-->u2 in a and v--l-->v2 in b for some shared
// label l, and ε-transitions are ignored per §4.3. Implemented via the
// Kronecker product of each shared label's adjacency matrix, mirroring
// automata.py's scipy.sparse Kronecker-based nfa_intersect.
func Product(a, b *Automaton) *Automaton {
	out := New(typesystem.Tuple{Components: []typesystem.Type{a.vertex, b.vertex}})

	pairIndex := make([][]int, len(a.states))
	for i := range pairIndex {
		pairIndex[i] = make([]int, len(b.states))
	}
	for i, u := range a.states {
		for j, v := range b.states {
			pairIndex[i][j] = out.addState(value.NewTuple(u, v))
		}
	}

	shared := sharedLabels(a, b)
	n, m := len(a.states), len(b.states)
	for _, label := range shared {
		ma := a.labelMatrix(label)
		mb := b.labelMatrix(label)
		kron := Kron(ma, mb)
		for i := 0; i < n; i++ {
			for i2 := 0; i2 < m; i2++ {
				row := i*m + i2
				for j := 0; j < n; j++ {
					for j2 := 0; j2 < m; j2++ {
						col := j*m + j2
						if kron.Get(row, col) {
							out.transitions[transitionKey{pairIndex[i][i2], label, pairIndex[j][j2]}] = true
						}
					}
				}
			}
		}
	}

	for i := range a.start {
		for j := range b.start {
			out.start[pairIndex[i][j]] = true
		}
	}
	for i := range a.final {
		for j := range b.final {
			out.final[pairIndex[i][j]] = true
		}
	}

	return out
}

// sharedLabels returns the non-epsilon labels common to both automata,
// in sorted order (deterministic iteration for Product).
func sharedLabels(a, b *Automaton) []string {
	bLabels := map[string]bool{}
	for _, l := range b.sortedLabels() {
		bLabels[l] = true
	}
	var out []string
	for _, l := range a.sortedLabels() {
		if bLabels[l] {
			out = append(out, l)
		}
	}
	return out
}

// Reachable returns { (u.value, v.value) | R[u,v] and u is a start
// state and v is a final state }, where R is the transitive closure
// of the flattened (label-agnostic, epsilon-included) adjacency
// matrix — the `R := R | R*R` fixed point named in §4.3/§9 and
// grounded on automata.py's nfa_reachability_matrix, which flattens
// every label's matrix (epsilon included) before closing it.
func (a *Automaton) Reachable() *value.Set {
	elemType := typesystem.Tuple{Components: []typesystem.Type{a.vertex, a.vertex}}
	out := value.NewSet(elemType)
	if len(a.states) == 0 {
		return out
	}
	closure := TransitiveClosure(a.flattenMatrix())
	for i := range a.start {
		for j := range a.final {
			if closure.Get(i, j) {
				out.Add(value.NewTuple(a.states[i], a.states[j]))
			}
		}
	}
	return out
}

// copyInto copies every state/transition/epsilon/start/final of src
// into dst, renumbering Int-typed states by +offset (used for
// union/concatenation/closure where offset is 0 for the left operand).
func copyInto(dst, src *Automaton, offset int64) {
	remap := make(map[int]int, len(src.states))
	for i, s := range src.states {
		var v value.Value = s
		if iv, ok := s.(value.Int); ok {
			v = value.Int(int64(iv) + offset)
		}
		remap[i] = dst.addState(v)
	}
	for key := range src.transitions {
		dst.transitions[transitionKey{remap[key.from], key.label, remap[key.to]}] = true
	}
	for key := range src.epsilons {
		dst.epsilons[[2]int{remap[key[0]], remap[key[1]]}] = true
	}
	for i := range src.start {
		dst.start[remap[i]] = true
	}
	for i := range src.final {
		dst.final[remap[i]] = true
	}
}

// copyTransitionsOnly is like copyInto but does not copy start/final
// membership (used by Concatenation, which derives its own).
func copyTransitionsOnly(dst, src *Automaton, offset int64) {
	remap := make(map[int]int, len(src.states))
	for i, s := range src.states {
		var v value.Value = s
		if iv, ok := s.(value.Int); ok {
			v = value.Int(int64(iv) + offset)
		}
		remap[i] = dst.addState(v)
	}
	for key := range src.transitions {
		dst.transitions[transitionKey{remap[key.from], key.label, remap[key.to]}] = true
	}
	for key := range src.epsilons {
		dst.epsilons[[2]int{remap[key[0]], remap[key[1]]}] = true
	}
}

func intValuesOf(a *Automaton, set map[int]bool) []int64 {
	out := make([]int64, 0, len(set))
	for i := range set {
		out = append(out, int64(a.states[i].(value.Int)))
	}
	return out
}

// ---- extractors ------------------------------------------------------

// States returns every state value.
func (a *Automaton) States() *value.Set {
	s := value.NewSet(a.vertex)
	for _, v := range a.states {
		s.Add(v)
	}
	return s
}

// StartStates returns the start state values.
func (a *Automaton) StartStates() *value.Set {
	s := value.NewSet(a.vertex)
	for i := range a.start {
		s.Add(a.states[i])
	}
	return s
}

// FinalStates returns the final state values.
func (a *Automaton) FinalStates() *value.Set {
	s := value.NewSet(a.vertex)
	for i := range a.final {
		s.Add(a.states[i])
	}
	return s
}

// Labels returns the distinct non-epsilon symbols used.
func (a *Automaton) Labels() *value.Set {
	s := value.NewSet(typesystem.String{})
	seen := map[string]bool{}
	for key := range a.transitions {
		if !seen[key.label] {
			seen[key.label] = true
			s.Add(value.String(key.label))
		}
	}
	return s
}

// Edges returns the set of (from.value, label, to.value) triples.
func (a *Automaton) Edges() *value.Set {
	elemType := typesystem.Tuple{Components: []typesystem.Type{a.vertex, typesystem.String{}, a.vertex}}
	s := value.NewSet(elemType)
	for key := range a.transitions {
		s.Add(value.NewTuple(a.states[key.from], value.String(key.label), a.states[key.to]))
	}
	return s
}

// SetStarts returns a copy of a with the start set replaced by starts.
func (a *Automaton) SetStarts(starts *value.Set) *Automaton {
	out := a.clone()
	out.start = make(map[int]bool)
	for _, v := range starts.Elements() {
		out.MarkStart(v)
	}
	return out
}

// SetFinals returns a copy of a with the final set replaced by finals.
func (a *Automaton) SetFinals(finals *value.Set) *Automaton {
	out := a.clone()
	out.final = make(map[int]bool)
	for _, v := range finals.Elements() {
		out.MarkFinal(v)
	}
	return out
}

// AddStarts returns a copy of a with starts additionally marked as
// start states.
func (a *Automaton) AddStarts(starts *value.Set) *Automaton {
	out := a.clone()
	for _, v := range starts.Elements() {
		out.MarkStart(v)
	}
	return out
}

// AddFinals returns a copy of a with finals additionally marked as
// final states.
func (a *Automaton) AddFinals(finals *value.Set) *Automaton {
	out := a.clone()
	for _, v := range finals.Elements() {
		out.MarkFinal(v)
	}
	return out
}

func (a *Automaton) clone() *Automaton {
	out := New(a.vertex)
	copyInto(out, a, 0)
	return out
}

// String renders a short multi-line debug view, per §4.1 (used only
// for debugging; tests exercise the extractors).
func (a *Automaton) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FA[%s] (%s):\n", a.id, a.vertex.String())
	fmt.Fprintf(&b, "starts: %s\n", a.StartStates().String())
	fmt.Fprintf(&b, "finals: %s\n", a.FinalStates().String())
	fmt.Fprintf(&b, "symbols: %s\n", a.Labels().String())
	return b.String()
}

// sortedLabels returns the non-epsilon labels in a deterministic order
// (internal helper for Product, which must iterate labels
// deterministically for reproducible matrices).
func (a *Automaton) sortedLabels() []string {
	seen := map[string]bool{}
	var out []string
	for key := range a.transitions {
		if !seen[key.label] {
			seen[key.label] = true
			out = append(out, key.label)
		}
	}
	sort.Strings(out)
	return out
}

// labelMatrix builds the n x n boolean adjacency matrix for one label
// (non-epsilon only).
func (a *Automaton) labelMatrix(label string) *BoolMatrix {
	n := len(a.states)
	m := NewBoolMatrix(n, n)
	for key := range a.transitions {
		if key.label == label {
			m.Set(key.from, key.to, true)
		}
	}
	return m
}

// flattenMatrix ORs every label's adjacency matrix together with the
// epsilon matrix, the reference algorithm behind Reachable (§4.3,
// §9): nfa_get_matrix's dict-of-matrices, flattened by
// nfa_reachability_matrix.
func (a *Automaton) flattenMatrix() *BoolMatrix {
	n := len(a.states)
	flat := NewBoolMatrix(n, n)
	for key := range a.transitions {
		flat.Set(key.from, key.to, true)
	}
	for key := range a.epsilons {
		flat.Set(key[0], key[1], true)
	}
	return flat
}
