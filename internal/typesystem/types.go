// Package typesystem implements the closed type algebra of §3.1: a
// small tagged union with structural equality, plus the uniformity and
// element-type rules that drive lambda parameter inference.
package typesystem

import (
	"fmt"
	"strings"
)

// Type is the interface implemented by every member of the closed
// type union. Equality is always structural (see Equal).
type Type interface {
	String() string
	typeNode()
}

// Equal reports whether two types are structurally identical.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

// None is the unit type assigned to statements.
type None struct{}

func (None) String() string { return "NoneType" }
func (None) typeNode()      {}

// Int is the scalar integer type.
type Int struct{}

func (Int) String() string { return "IntType" }
func (Int) typeNode()      {}

// Bool is the scalar boolean type.
type Bool struct{}

func (Bool) String() string { return "BoolType" }
func (Bool) typeNode()      {}

// String is the scalar string type.
type String struct{}

func (String) String() string { return "StringType" }
func (String) typeNode()      {}

// Set is a homogeneous set of Element.
type Set struct{ Element Type }

func (s Set) String() string { return fmt.Sprintf("SetType<%s>", s.Element.String()) }
func (Set) typeNode()        {}

// Tuple is a heterogeneous ordered product of one or more components.
type Tuple struct{ Components []Type }

func (t Tuple) String() string {
	names := make([]string, len(t.Components))
	for i, c := range t.Components {
		names[i] = c.String()
	}
	return fmt.Sprintf("TupleType<%s>", strings.Join(names, ", "))
}
func (Tuple) typeNode() {}

// IsUniform reports whether every component of the tuple has the same
// type.
func (t Tuple) IsUniform() bool {
	if len(t.Components) == 0 {
		return false
	}
	first := t.Components[0]
	for _, c := range t.Components[1:] {
		if !Equal(first, c) {
			return false
		}
	}
	return true
}

// FA is a finite automaton type whose state values have type Vertex.
type FA struct{ Vertex Type }

func (f FA) String() string { return fmt.Sprintf("FAType<%s>", f.Vertex.String()) }
func (FA) typeNode()        {}

// Pattern is the checker-internal binder-shape type; it never appears
// as the type of an expression node.
type Pattern struct{ Elements []Type }

func (p Pattern) String() string {
	names := make([]string, len(p.Elements))
	for i, e := range p.Elements {
		names[i] = e.String()
	}
	return fmt.Sprintf("PatternType<%s>", strings.Join(names, ", "))
}
func (Pattern) typeNode() {}

// VarName is the checker-internal type of a single free-variable
// binder leaf.
type VarName struct{ Name string }

func (v VarName) String() string { return v.Name }
func (VarName) typeNode()        {}

// Lambda is the type of a `\pattern -> body` form. Lambdas are never
// first-class values; this type only ever appears transiently while
// the checker processes a map/filter.
type Lambda struct {
	Pattern    Type // Pattern or VarName
	ParamType  Type
	ReturnType Type
}

func (l Lambda) String() string {
	return fmt.Sprintf("LambdaType<%s -> %s>", l.ParamType.String(), l.ReturnType.String())
}
func (Lambda) typeNode() {}

// ElementType returns the element type driving a map/filter/in over t,
// or (nil, false) if t cannot drive one: a Set always can, a Tuple can
// only if it is uniform.
func ElementType(t Type) (Type, bool) {
	switch typ := t.(type) {
	case Set:
		return typ.Element, true
	case Tuple:
		if typ.IsUniform() {
			return typ.Components[0], true
		}
		return nil, false
	default:
		return nil, false
	}
}
