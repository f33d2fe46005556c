package jinja

import "fmt"

// filterRegistry maps filter name to implementation, using an AddFilter/map
// registration pattern generalized to the uniform Callable contract shared
// by filters, tests and globals.
var filterRegistry = map[string]Callable{}

// AddFilter registers a custom filter. Panics on duplicate registration,
// since a duplicate name is a programmer error, not a template error.
func AddFilter(name string, fn Callable) {
	if _, exists := filterRegistry[name]; exists {
		panic(fmt.Sprintf("filter %q is already registered", name))
	}
	filterRegistry[name] = fn
}

func lookupFilter(name string) (Callable, bool) {
	fn, ok := filterRegistry[name]
	return fn, ok
}

// arg fetches a positional argument with a fallback default.
func arg(args []*Value, i int, def *Value) *Value {
	if i < len(args) {
		return args[i]
	}
	return def
}

// kwOr fetches a keyword argument, falling back to a positional one, then
// to a default; mirrors Jinja2 filters that accept either form.
func kwOr(kwargs *OrderedMap, name string, args []*Value, posIdx int, def *Value) *Value {
	if kwargs != nil {
		if v, ok := kwargs.Get(name); ok {
			return v
		}
	}
	return arg(args, posIdx, def)
}
