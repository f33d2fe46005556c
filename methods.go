package jinja

import "strings"

// stringMethods binds the dotted-access method surface Jinja2 exposes on
// string values: upper, lower, title, strip, lstrip, rstrip, split, replace.
// Each is a Function Value closing over the receiver so `s.upper()` reads
// as an ordinary call once getAttr resolves the method name.
var stringMethods = map[string]func(s string) Callable{
	"upper": func(s string) Callable {
		return func(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
			return filterUpper(prepend(String(s), args), kwargs, env)
		}
	},
	"lower": func(s string) Callable {
		return func(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
			return filterLower(prepend(String(s), args), kwargs, env)
		}
	},
	"title": func(s string) Callable {
		return func(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
			return filterTitle(prepend(String(s), args), kwargs, env)
		}
	},
	"strip": func(s string) Callable {
		return func(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
			return filterTrim(prepend(String(s), args), kwargs, env)
		}
	},
	"lstrip": func(s string) Callable {
		return func(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
			cutset := kwOr(kwargs, "chars", args, 0, nil)
			if cutset != nil {
				return String(strings.TrimLeft(s, cutset.Str())), nil
			}
			return String(strings.TrimLeft(s, " \t\n\r")), nil
		}
	},
	"rstrip": func(s string) Callable {
		return func(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
			cutset := kwOr(kwargs, "chars", args, 0, nil)
			if cutset != nil {
				return String(strings.TrimRight(s, cutset.Str())), nil
			}
			return String(strings.TrimRight(s, " \t\n\r")), nil
		}
	},
	"split": func(s string) Callable {
		return func(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
			sep := kwOr(kwargs, "sep", args, 0, nil)
			limit := int(kwOr(kwargs, "limit", args, 1, Int(-1)).Integer())
			var parts []string
			if sep == nil || sep.IsNull() || sep.IsUndefined() {
				parts = strings.Fields(s)
				if limit >= 0 && limit < len(parts) {
					rest := strings.Join(parts[limit:], " ")
					parts = append(parts[:limit:limit], rest)
				}
			} else {
				n := -1
				if limit >= 0 {
					n = limit + 1
				}
				parts = strings.SplitN(s, sep.Str(), n)
			}
			out := make([]*Value, len(parts))
			for i, p := range parts {
				out[i] = String(p)
			}
			return Array(out), nil
		}
	},
	"replace": func(s string) Callable {
		return func(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
			return filterReplace(prepend(String(s), args), kwargs, env)
		}
	},
}

// objectMethods binds the dotted-access method surface Jinja2 exposes on
// object values: items() and get(key, default=null).
var objectMethods = map[string]func(m *OrderedMap) Callable{
	"items": func(m *OrderedMap) Callable {
		return func(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
			keys := m.Keys()
			out := make([]*Value, len(keys))
			for i, k := range keys {
				v, _ := m.Get(k)
				out[i] = Array([]*Value{String(k), v})
			}
			return Array(out), nil
		}
	},
	"get": func(m *OrderedMap) Callable {
		return func(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error) {
			if len(args) == 0 {
				return nil, runtimeErrf(0, 0, "get() requires a key argument")
			}
			if v, ok := m.Get(args[0].Str()); ok {
				return v, nil
			}
			return arg(args, 1, Null), nil
		}
	},
}

// prepend builds a new args slice with recv in front, the shape every
// reused string filter (filterUpper, filterTrim, ...) expects as args[0].
func prepend(recv *Value, args []*Value) []*Value {
	out := make([]*Value, 0, len(args)+1)
	out = append(out, recv)
	out = append(out, args...)
	return out
}
