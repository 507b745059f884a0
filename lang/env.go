package lang

import (
	"maps"
	"slices"
)

// Env is one lexical frame: a set of bindings plus an optional parent frame.
//
// Names are unique within a frame only; a binding shadows any binding of the
// same name in an enclosing frame. Bindings are never removed. A frame does
// not know its children, and a child keeps its parent alive for as long as
// the child itself is reachable (for example, through a captured closure).
type Env struct {
	vars   map[string]Value
	parent *Env
}

// NewEnv creates an empty frame whose parent is outer, which may be nil for a
// root frame.
func NewEnv(outer *Env) *Env {
	return &Env{vars: make(map[string]Value), parent: outer}
}

// Child creates an empty frame whose parent is e.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Parent returns the enclosing frame, or nil for a root frame.
func (e *Env) Parent() *Env {
	return e.parent
}

// Lookup walks the frame chain from e outward and returns the first binding
// of name.
func (e *Env) Lookup(name string) (Value, bool) {
	for scope := e; scope != nil; scope = scope.parent {
		if v, ok := scope.vars[name]; ok {
			return v, true
		}
	}

	return nil, false
}

// Define binds name to v in e itself, replacing any binding of name in e.
// Enclosing frames are not consulted.
func (e *Env) Define(name string, v Value) {
	e.vars[name] = v
}

// Assign replaces the binding of name in the nearest frame, starting at e,
// that already owns one. It reports false, and changes nothing, if no frame
// in the chain binds name.
func (e *Env) Assign(name string, v Value) bool {
	for scope := e; scope != nil; scope = scope.parent {
		if _, ok := scope.vars[name]; ok {
			scope.vars[name] = v

			return true
		}
	}

	return false
}

// Owns reports whether name is bound in e itself.
func (e *Env) Owns(name string) bool {
	_, ok := e.vars[name]

	return ok
}

// Names returns every name visible from e, innermost frame first. Shadowed
// names appear once. The order within a frame is sorted.
func (e *Env) Names() []string {
	seen := make(map[string]struct{})

	var names []string

	for scope := e; scope != nil; scope = scope.parent {
		for _, name := range slices.Sorted(maps.Keys(scope.vars)) {
			if _, ok := seen[name]; ok {
				continue
			}

			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	return names
}
