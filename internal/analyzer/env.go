package analyzer

import (
	"fmt"

	"github.com/funvibe/funxy-fa/internal/ast"
	"github.com/funvibe/funxy-fa/internal/typesystem"
)

// scope is one level of name bindings.
type scope map[string]typesystem.Type

// TypeEnv is a stack of scopes implementing §4.5's PatBind rule. Per
// §9's design note, lambda bodies get a pushed-and-popped scope rather
// than mutating a single flat map and "unbinding" names afterward, so
// a lambda parameter can never leak past its body or collide with an
// outer binding of the same name.
type TypeEnv struct {
	scopes []scope
}

// NewTypeEnv creates a TypeEnv with a single top-level scope.
func NewTypeEnv() *TypeEnv {
	return &TypeEnv{scopes: []scope{make(scope)}}
}

// Push opens a new, innermost scope.
func (e *TypeEnv) Push() { e.scopes = append(e.scopes, make(scope)) }

// Pop discards the innermost scope.
func (e *TypeEnv) Pop() { e.scopes = e.scopes[:len(e.scopes)-1] }

// Lookup searches from the innermost scope outward.
func (e *TypeEnv) Lookup(name string) (typesystem.Type, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if t, ok := e.scopes[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (e *TypeEnv) top() scope { return e.scopes[len(e.scopes)-1] }

// Bindings reports every name bound in the top-level scope as
// name -> rendered type, for diagnostic dumps (the REPL's `:dump`).
func (e *TypeEnv) Bindings() map[string]string {
	out := make(map[string]string, len(e.scopes[0]))
	for name, t := range e.scopes[0] {
		out[name] = t.String()
	}
	return out
}

func (e *TypeEnv) bindVar(name string, t typesystem.Type) error {
	top := e.top()
	if _, exists := top[name]; exists {
		return fmt.Errorf("Binding of %s already exists", name)
	}
	top[name] = t
	return nil
}

func (e *TypeEnv) unbindVar(name string) error {
	top := e.top()
	if _, exists := top[name]; !exists {
		return fmt.Errorf("Trying to unbind not bound variable %s", name)
	}
	delete(top, name)
	return nil
}

// Bind destructures t against pattern p into the innermost scope: a
// VarPattern binds to any type; a TuplePattern binds only against a
// Tuple of matching arity, recursively.
func (e *TypeEnv) Bind(p ast.Pattern, t typesystem.Type) error {
	switch pat := p.(type) {
	case *ast.VarPattern:
		return e.bindVar(pat.Name, t)
	case *ast.TuplePattern:
		tup, ok := t.(typesystem.Tuple)
		if !ok || len(tup.Components) != len(pat.Elements) {
			return fmt.Errorf("pattern of arity %d cannot bind to %s", len(pat.Elements), t.String())
		}
		for i, sub := range pat.Elements {
			if err := e.Bind(sub, tup.Components[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported pattern %T", p)
	}
}

// Unbind removes every name p introduced via Bind from the innermost
// scope.
func (e *TypeEnv) Unbind(p ast.Pattern) error {
	switch pat := p.(type) {
	case *ast.VarPattern:
		return e.unbindVar(pat.Name)
	case *ast.TuplePattern:
		for _, sub := range pat.Elements {
			if err := e.Unbind(sub); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported pattern %T", p)
	}
}
