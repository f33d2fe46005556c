// Package jinja implements a Jinja2-compatible text template engine.
package jinja

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant of the template-visible Value sum type a
// given Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindUndefined
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Callable is the signature every template-visible function, filter and test
// shares: positional arguments, evaluated keyword arguments in declared
// order, and the call-site environment. A call-block hands "caller" to the
// callee as a keyword argument, not through the environment.
type Callable func(args []*Value, kwargs *OrderedMap, env *Environment) (*Value, error)

// Value is the tagged sum of all data visible from inside a template.
type Value struct {
	kind Kind

	b   bool
	i   int64
	f   float64
	s   string
	arr []*Value
	obj *OrderedMap
	fn  Callable

	// undefName carries the name responsible for an undefined value, purely
	// for diagnostics; it has no bearing on equality or truthiness.
	undefName string
	// safe marks a string produced by a trusted source (e.g. the safe
	// filter or a macro's rendered output); the escaped test reports it.
	// Output is never autoescaped, so the flag does not change rendering.
	safe bool
}

// Null is the Jinja "none"/"null" value.
var Null = &Value{kind: KindNull}

// Undefined returns an undefined value, optionally carrying the name that
// produced it for nicer diagnostics.
func Undefined(name string) *Value {
	return &Value{kind: KindUndefined, undefName: name}
}

// Bool wraps a Go bool.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// Int wraps a machine-word signed integer.
func Int(i int64) *Value { return &Value{kind: KindInt, i: i} }

// Float wraps an IEEE 754 double.
func Float(f float64) *Value { return &Value{kind: KindFloat, f: f} }

// String wraps a Go string.
func String(s string) *Value { return &Value{kind: KindString, s: s} }

// SafeString wraps a Go string and marks it safe (see Value.IsSafe).
func SafeString(s string) *Value { return &Value{kind: KindString, s: s, safe: true} }

// Array wraps an ordered sequence of Values.
func Array(items []*Value) *Value { return &Value{kind: KindArray, arr: items} }

// Object wraps an ordered, insertion-ordered mapping.
func Object(m *OrderedMap) *Value { return &Value{kind: KindObject, obj: m} }

// Function wraps a callable.
func Function(fn Callable) *Value { return &Value{kind: KindFunction, fn: fn} }

func (v *Value) Kind() Kind { return v.kind }

func (v *Value) IsNull() bool      { return v.kind == KindNull }
func (v *Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v *Value) IsBool() bool      { return v.kind == KindBool }
func (v *Value) IsInteger() bool   { return v.kind == KindInt }
func (v *Value) IsFloat() bool     { return v.kind == KindFloat }
func (v *Value) IsNumber() bool    { return v.kind == KindInt || v.kind == KindFloat }
func (v *Value) IsString() bool    { return v.kind == KindString }
func (v *Value) IsArray() bool     { return v.kind == KindArray }
func (v *Value) IsObject() bool    { return v.kind == KindObject }
func (v *Value) IsFunction() bool  { return v.kind == KindFunction }
func (v *Value) IsSafe() bool      { return v.safe }
func (v *Value) UndefName() string { return v.undefName }

// AsBool returns the underlying boolean, or false for non-bool values.
func (v *Value) AsBool() bool { return v.kind == KindBool && v.b }

// Integer returns the value coerced to a machine-word integer.
func (v *Value) Integer() int64 {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return int64(v.f)
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindString:
		i, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// Float returns the value coerced to a double.
func (v *Value) Float() float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return float64(v.i)
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Str returns the raw Go string for a string-kind Value; "" otherwise.
func (v *Value) Str() string {
	if v.kind == KindString {
		return v.s
	}
	return ""
}

// Items returns the backing slice for an array-kind Value; nil otherwise.
func (v *Value) Items() []*Value {
	if v.kind == KindArray {
		return v.arr
	}
	return nil
}

// Map returns the backing OrderedMap for an object-kind Value; nil otherwise.
func (v *Value) Map() *OrderedMap {
	if v.kind == KindObject {
		return v.obj
	}
	return nil
}

// Func returns the backing Callable for a function-kind Value; nil otherwise.
func (v *Value) Func() Callable {
	if v.kind == KindFunction {
		return v.fn
	}
	return nil
}

// IsTrue implements Jinja truthiness: null, undefined, false,
// empty string/array/object, 0 and 0.0 are falsy; everything else, including
// every function, is truthy.
func (v *Value) IsTrue() bool {
	switch v.kind {
	case KindNull, KindUndefined:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindString:
		return v.s != ""
	case KindArray:
		return len(v.arr) > 0
	case KindObject:
		return v.obj.Len() > 0
	case KindFunction:
		return true
	default:
		return false
	}
}

// Negate implements unary "not".
func (v *Value) Negate() *Value { return Bool(!v.IsTrue()) }

// Len implements the length used by the "length"/"count" filters.
func (v *Value) Len() int {
	switch v.kind {
	case KindString:
		return len([]rune(v.s))
	case KindArray:
		return len(v.arr)
	case KindObject:
		return v.obj.Len()
	default:
		return 0
	}
}

// Display renders a Value the way bare {{ expr }} output does: null/undefined as empty, numbers in natural textual
// form, booleans lowercase, and arrays/objects in bracketed diagnostic form.
func (v *Value) Display() string {
	switch v.kind {
	case KindNull, KindUndefined:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString:
		return v.s
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			parts[i] = item.reprForContainer()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		parts := make([]string, 0, v.obj.Len())
		for _, k := range v.obj.Keys() {
			val, _ := v.obj.Get(k)
			parts = append(parts, fmt.Sprintf("%q: %s", k, val.reprForContainer()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindFunction:
		return "<function>"
	default:
		return ""
	}
}

func (v *Value) reprForContainer() string {
	if v.kind == KindString {
		return strconv.Quote(v.s)
	}
	return v.Display()
}

// String satisfies fmt.Stringer using the display form.
func (v *Value) String() string { return v.Display() }

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// EqualValueTo implements Jinja "==": deep structural equality; mismatched
// variants (including int vs float) always compare unequal.
func (v *Value) EqualValueTo(other *Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull, KindUndefined:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].EqualValueTo(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.obj.Len() != other.obj.Len() {
			return false
		}
		for _, k := range v.obj.Keys() {
			a, _ := v.obj.Get(k)
			b, ok := other.obj.Get(k)
			if !ok || !a.EqualValueTo(b) {
				return false
			}
		}
		return true
	case KindFunction:
		// Functions are never equal, even to themselves structurally.
		return false
	default:
		return false
	}
}

// Compare implements <, <=, >, >= for same-variant int/float/string Values.
// ok is false when the variants are not comparable (including int vs float).
func (v *Value) Compare(other *Value) (cmp int, ok bool) {
	if v.IsNumber() && other.IsNumber() {
		if v.kind != other.kind {
			return 0, false
		}
		if v.IsFloat() {
			a, b := v.Float(), other.Float()
			switch {
			case a < b:
				return -1, true
			case a > b:
				return 1, true
			default:
				return 0, true
			}
		}
		a, b := v.Integer(), other.Integer()
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}
	if v.kind == KindString && other.kind == KindString {
		return strings.Compare(v.s, other.s), true
	}
	return 0, false
}

// Contains implements "in"/"not in": array membership by equality, substring
// in a string, key presence in an object. undefined/null on the right yield
// false
func (v *Value) Contains(needle *Value) bool {
	switch v.kind {
	case KindNull, KindUndefined:
		return false
	case KindArray:
		for _, item := range v.arr {
			if item.EqualValueTo(needle) {
				return true
			}
		}
		return false
	case KindString:
		return strings.Contains(v.s, needle.Str())
	case KindObject:
		if needle.kind != KindString {
			return false
		}
		_, ok := v.obj.Get(needle.s)
		return ok
	default:
		return false
	}
}

// Hash produces a stable hash for any non-function Value, used internally by
// filters that need to deduplicate (e.g. "unique") or group values.
func (v *Value) Hash() uint64 {
	h := fnv.New64a()
	v.hashInto(h)
	return h.Sum64()
}

func (v *Value) hashInto(h interface{ Write([]byte) (int, error) }) {
	switch v.kind {
	case KindNull:
		h.Write([]byte{0})
	case KindUndefined:
		h.Write([]byte{1})
	case KindBool:
		if v.b {
			h.Write([]byte{2, 1})
		} else {
			h.Write([]byte{2, 0})
		}
	case KindInt:
		h.Write([]byte{3})
		h.Write([]byte(strconv.FormatInt(v.i, 10)))
	case KindFloat:
		h.Write([]byte{3})
		h.Write([]byte(formatFloat(v.f)))
	case KindString:
		h.Write([]byte{4})
		h.Write([]byte(v.s))
	case KindArray:
		h.Write([]byte{5})
		for _, item := range v.arr {
			item.hashInto(h)
		}
	case KindObject:
		h.Write([]byte{6})
		for _, k := range v.obj.Keys() {
			h.Write([]byte(k))
			val, _ := v.obj.Get(k)
			val.hashInto(h)
		}
	}
}

// OrderedMap is an insertion-ordered mapping from string to Value,
// backing both object Values and evaluated keyword-argument lists.
type OrderedMap struct {
	keys []string
	vals map[string]*Value
}

// NewOrderedMap returns an empty ordered map.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{vals: make(map[string]*Value)}
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap) Get(key string) (*Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Set inserts or overwrites key, preserving first-assignment order.
func (m *OrderedMap) Set(key string, v *Value) {
	if _, exists := m.vals[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Delete removes key if present.
func (m *OrderedMap) Delete(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string { return m.keys }

// Len returns the number of entries.
func (m *OrderedMap) Len() int { return len(m.keys) }

// Clone returns a shallow copy with independent key ordering storage.
func (m *OrderedMap) Clone() *OrderedMap {
	out := NewOrderedMap()
	for _, k := range m.keys {
		out.Set(k, m.vals[k])
	}
	return out
}

// SortedKeys returns the keys sorted lexically, used by dictsort.
func (m *OrderedMap) SortedKeys() []string {
	keys := append([]string(nil), m.keys...)
	sort.Strings(keys)
	return keys
}
