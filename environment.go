package jinja

import "fmt"

// maxMacroDepth limits recursive macro/caller call depth, guarding against
// runaway recursion.
const maxMacroDepth = 1000

// macroState is shared by every frame descended from the same root
// Environment so the recursion counter is a single running total rather
// than something each frame would otherwise have to track independently.
type macroState struct {
	depth int
}

// Environment is a chain of lexical frames: a name lookup walks from the
// current frame up through its parents until a binding is found (macros,
// for-loops, call-blocks and filter-blocks each open a child frame);
// grounded on Eloquence's object/environment.go parent-chaining
// (NewEnclosedEnvironment/Get/Set), generalized to the jinja Value type
// and to macro-depth bookkeeping.
type Environment struct {
	vars   map[string]*Value
	parent *Environment
	macros *macroState
	name   string // "<root>", "for", "macro", "call", "filter", ... for diagnostics
}

// NewEnvironment creates a fresh root frame, pre-populated with globals.
func NewEnvironment() *Environment {
	e := &Environment{
		vars:   make(map[string]*Value),
		macros: &macroState{},
		name:   "<root>",
	}
	populateGlobals(e)
	return e
}

// NewChildEnvironment opens a nested lexical scope. Bindings written in the
// child shadow the parent's without mutating it, matching Jinja2's block
// scoping for for-loops, macros, call-blocks and filter-blocks.
func NewChildEnvironment(parent *Environment, name string) *Environment {
	return &Environment{
		vars:   make(map[string]*Value),
		parent: parent,
		macros: parent.macros,
		name:   name,
	}
}

// Get resolves name by walking from this frame up to the root. The ok
// result distinguishes "bound to null" from "not bound at all" so callers
// can produce an Undefined value carrying the original name.
func (e *Environment) Get(name string) (*Value, bool) {
	for f := e; f != nil; f = f.parent {
		if v, ok := f.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set binds name in the CURRENT frame, shadowing any outer binding. This
// matches Jinja2 {% set %}'s ordinary (non-namespace) assignment semantics:
// a plain `set` never reaches up to mutate an enclosing scope.
func (e *Environment) Set(name string, val *Value) {
	e.vars[name] = val
}

// SetOuter rebinds name in the nearest frame (including this one) that
// already defines it, falling back to a local Set if no frame does. No
// template construct calls it: `{% set ns.attr = x %}` mutates ns itself
// via its OrderedMap, and plain `set` always uses Set.
func (e *Environment) SetOuter(name string, val *Value) {
	for f := e; f != nil; f = f.parent {
		if _, ok := f.vars[name]; ok {
			f.vars[name] = val
			return
		}
	}
	e.vars[name] = val
}

// Root walks up to the outermost frame.
func (e *Environment) Root() *Environment {
	f := e
	for f.parent != nil {
		f = f.parent
	}
	return f
}

// EnterMacroCall increments the shared recursion counter, returning an
// error once maxMacroDepth is exceeded. Pair with a deferred LeaveMacroCall.
func (e *Environment) EnterMacroCall() error {
	e.macros.depth++
	if e.macros.depth > maxMacroDepth {
		return fmt.Errorf("maximum recursive macro call depth reached (max is %d)", maxMacroDepth)
	}
	return nil
}

// LeaveMacroCall decrements the shared recursion counter.
func (e *Environment) LeaveMacroCall() {
	e.macros.depth--
}
