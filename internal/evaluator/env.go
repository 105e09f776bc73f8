package evaluator

import (
	"fmt"

	"github.com/funvibe/funxy-fa/internal/ast"
	"github.com/funvibe/funxy-fa/internal/value"
)

// scope is one level of name-to-value bindings.
type scope map[string]value.Value

// ValueEnv is a stack of scopes, the runtime counterpart of
// analyzer.TypeEnv. It is unchecked: the analyzer has already rejected
// double-binds, unbound names, and pattern/shape mismatches before the
// evaluator ever runs, so Bind here only destructures.
type ValueEnv struct {
	scopes []scope
}

// NewValueEnv creates a ValueEnv with a single top-level scope.
func NewValueEnv() *ValueEnv {
	return &ValueEnv{scopes: []scope{make(scope)}}
}

// Push opens a new, innermost scope (used for lambda bodies, matching
// TypeEnv's push/pop rather than an explicit per-name unbind).
func (e *ValueEnv) Push() { e.scopes = append(e.scopes, make(scope)) }

// Pop discards the innermost scope.
func (e *ValueEnv) Pop() { e.scopes = e.scopes[:len(e.scopes)-1] }

// Lookup searches from the innermost scope outward.
func (e *ValueEnv) Lookup(name string) (value.Value, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (e *ValueEnv) top() scope { return e.scopes[len(e.scopes)-1] }

// Bind destructures v against pattern p into the innermost scope: a
// VarPattern binds the whole value; a TuplePattern zips its elements
// against pattern.Elements, recursively.
func (e *ValueEnv) Bind(p ast.Pattern, v value.Value) error {
	switch pat := p.(type) {
	case *ast.VarPattern:
		e.top()[pat.Name] = v
		return nil
	case *ast.TuplePattern:
		tup, ok := v.(*value.Tuple)
		if !ok || len(tup.Elements) != len(pat.Elements) {
			return fmt.Errorf("pattern of arity %d cannot bind to %s", len(pat.Elements), v.String())
		}
		for i, sub := range pat.Elements {
			if err := e.Bind(sub, tup.Elements[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported pattern %T", p)
	}
}
