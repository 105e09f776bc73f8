// Package value implements the runtime value domain of §3.2: immutable,
// structurally-equal/hashable Int/Bool/String/Set/Tuple values. The FA
// value itself lives in the sibling internal/fa package (which imports
// this one for vertex payloads) to keep the automaton algebra separate
// from the scalar/container value domain, per the spec's component
// split.
package value

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/funvibe/funxy-fa/internal/typesystem"
)

// Value is the runtime representation of any expression's result.
// Equality and hashing are structural for every type in this package
// (internal/fa's Automaton compares by identity instead), matching funxy's own
// evaluator Object convention (Hash() uint32 via hash/fnv), widened to
// 64 bits here to leave room combining nested hashes cheaply.
type Value interface {
	Type() typesystem.Type
	String() string
	Hash() uint64
	Equal(other Value) bool
}

// Int is a 64-bit integer value.
type Int int64

func (i Int) Type() typesystem.Type { return typesystem.Int{} }
func (i Int) String() string        { return fmt.Sprintf("%d", int64(i)) }
func (i Int) Hash() uint64          { return hashUint64(uint64(i)) }
func (i Int) Equal(other Value) bool {
	o, ok := other.(Int)
	return ok && i == o
}

// Bool is a boolean value, printed as True/False per §4.1.
type Bool bool

func (b Bool) Type() typesystem.Type { return typesystem.Bool{} }
func (b Bool) String() string {
	if b {
		return "True"
	}
	return "False"
}
func (b Bool) Hash() uint64 {
	if b {
		return 1
	}
	return 0
}
func (b Bool) Equal(other Value) bool {
	o, ok := other.(Bool)
	return ok && b == o
}

// String is a string value, printed without quotes per §4.1.
type String string

func (s String) Type() typesystem.Type { return typesystem.String{} }
func (s String) String() string        { return string(s) }
func (s String) Hash() uint64          { return hashString(string(s)) }
func (s String) Equal(other Value) bool {
	o, ok := other.(String)
	return ok && s == o
}

// Set is a homogeneous hash set of Values, deduplicated structurally.
// Internally kept as a hash-bucketed slice so that Set<Set<T>> and
// Set<Tuple<T...>> behave as mathematical sets, as required by §4.1.
type Set struct {
	Element  typesystem.Type
	buckets  map[uint64][]Value
	sizeHint int
}

// NewSet builds a Set of the given element type from elems, deduping
// structurally-equal values.
func NewSet(element typesystem.Type, elems ...Value) *Set {
	s := &Set{Element: element, buckets: make(map[uint64][]Value)}
	for _, e := range elems {
		s.Add(e)
	}
	return s
}

// Add inserts v into the set if not already structurally present.
// Returns true if the set grew.
func (s *Set) Add(v Value) bool {
	h := v.Hash()
	for _, existing := range s.buckets[h] {
		if existing.Equal(v) {
			return false
		}
	}
	s.buckets[h] = append(s.buckets[h], v)
	s.sizeHint++
	return true
}

// Contains reports whether v is structurally present.
func (s *Set) Contains(v Value) bool {
	for _, existing := range s.buckets[v.Hash()] {
		if existing.Equal(v) {
			return true
		}
	}
	return false
}

// Elements returns every element in unspecified order (see §9: set
// print ordering is implementation-defined).
func (s *Set) Elements() []Value {
	out := make([]Value, 0, s.sizeHint)
	for _, h := range maps.Keys(s.buckets) {
		out = append(out, s.buckets[h]...)
	}
	return out
}

// Len returns the number of elements.
func (s *Set) Len() int { return s.sizeHint }

func (s *Set) Type() typesystem.Type { return typesystem.Set{Element: s.Element} }

func (s *Set) String() string {
	elems := s.Elements()
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = e.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (s *Set) Hash() uint64 {
	var h uint64
	for _, e := range s.Elements() {
		h ^= e.Hash() // order-independent combination
	}
	return h
}

func (s *Set) Equal(other Value) bool {
	o, ok := other.(*Set)
	if !ok || o.Len() != s.Len() {
		return false
	}
	for _, e := range s.Elements() {
		if !o.Contains(e) {
			return false
		}
	}
	return true
}

// Union returns a fresh set containing every element of both inputs.
func (s *Set) Union(other *Set) *Set {
	out := NewSet(s.Element)
	for _, e := range s.Elements() {
		out.Add(e)
	}
	for _, e := range other.Elements() {
		out.Add(e)
	}
	return out
}

// Intersect returns a fresh set containing only elements present in
// both inputs (the `&` product operator lifted to sets, per §4.3's
// "intersection via tensor product" wording for the FA case).
func (s *Set) Intersect(other *Set) *Set {
	out := NewSet(s.Element)
	for _, e := range s.Elements() {
		if other.Contains(e) {
			out.Add(e)
		}
	}
	return out
}

// Sorted returns the elements sorted by their String() rendering, for
// callers that want a deterministic order. Set.String does not use it
// and prints elements in unspecified order.
func (s *Set) Sorted() []Value {
	elems := s.Elements()
	sort.Slice(elems, func(i, j int) bool { return elems[i].String() < elems[j].String() })
	return elems
}

// Tuple is a heterogeneous ordered product of values.
type Tuple struct {
	Elements []Value
}

func NewTuple(elems ...Value) *Tuple { return &Tuple{Elements: elems} }

func (t *Tuple) Type() typesystem.Type {
	comps := make([]typesystem.Type, len(t.Elements))
	for i, e := range t.Elements {
		comps[i] = e.Type()
	}
	return typesystem.Tuple{Components: comps}
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "[ " + strings.Join(parts, ", ") + " ]"
}

func (t *Tuple) Hash() uint64 {
	h := fnv.New64a()
	for _, e := range t.Elements {
		fmt.Fprintf(h, "%d|", e.Hash())
	}
	return h.Sum64()
}

func (t *Tuple) Equal(other Value) bool {
	o, ok := other.(*Tuple)
	if !ok || len(o.Elements) != len(t.Elements) {
		return false
	}
	for i, e := range t.Elements {
		if !e.Equal(o.Elements[i]) {
			return false
		}
	}
	return true
}

// None is the unit value, rendered as `<None>`. The evaluator does not
// produce it: statements have no value, and print renders the value of
// its expression.
type None struct{}

func (None) Type() typesystem.Type { return typesystem.None{} }
func (None) String() string        { return "<None>" }
func (None) Hash() uint64          { return 0 }
func (None) Equal(other Value) bool {
	_, ok := other.(None)
	return ok
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

func hashUint64(v uint64) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d", v)
	return h.Sum64()
}
