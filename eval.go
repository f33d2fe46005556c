package jinja

import (
	"math"
	"strings"
)

// evalBinOp implements the binary operators other than the short-circuiting
// and/or (handled directly in nodeBinOp.Evaluate).
func evalBinOp(op string, l, r *Value, line, col int) (*Value, error) {
	switch op {
	case "==":
		return Bool(l.EqualValueTo(r)), nil
	case "!=":
		return Bool(!l.EqualValueTo(r)), nil
	case "<", "<=", ">", ">=":
		cmp, ok := l.Compare(r)
		if !ok {
			return nil, runtimeErrf(line, col, "cannot compare %s with %s", l.Kind(), r.Kind())
		}
		switch op {
		case "<":
			return Bool(cmp < 0), nil
		case "<=":
			return Bool(cmp <= 0), nil
		case ">":
			return Bool(cmp > 0), nil
		default:
			return Bool(cmp >= 0), nil
		}
	case "in":
		return Bool(r.Contains(l)), nil
	case "not in":
		return Bool(!r.Contains(l)), nil
	case "~":
		return String(l.Str() + r.Str()), nil
	case "+":
		if l.IsString() && r.IsString() {
			return String(l.Str() + r.Str()), nil
		}
		if l.IsArray() && r.IsArray() {
			items := make([]*Value, 0, len(l.Items())+len(r.Items()))
			items = append(items, l.Items()...)
			items = append(items, r.Items()...)
			return Array(items), nil
		}
		return arith(op, l, r, line, col)
	case "*":
		if rep, ok := stringRepeat(l, r); ok {
			return rep, nil
		}
		return arith(op, l, r, line, col)
	case "-", "/", "%", "//", "**":
		return arith(op, l, r, line, col)
	}
	return nil, runtimeErrf(line, col, "unknown operator %q", op)
}

// stringRepeat implements `*` on a (string, int) or (int, string) pair,
// matching Python/Jinja2's sequence-repetition semantics.
func stringRepeat(l, r *Value) (*Value, bool) {
	switch {
	case l.IsString() && r.IsInteger():
		return String(strings.Repeat(l.Str(), int(maxInt64(r.Integer(), 0)))), true
	case r.IsString() && l.IsInteger():
		return String(strings.Repeat(r.Str(), int(maxInt64(l.Integer(), 0)))), true
	default:
		return nil, false
	}
}

func maxInt64(n int64, floor int64) int64 {
	if n < floor {
		return floor
	}
	return n
}

func arith(op string, l, r *Value, line, col int) (*Value, error) {
	if !l.IsNumber() || !r.IsNumber() {
		return nil, runtimeErrf(line, col, "operator %q requires numbers, got %s and %s", op, l.Kind(), r.Kind())
	}
	useFloat := l.IsFloat() || r.IsFloat() || op == "/"
	if useFloat {
		lf, rf := l.Float(), r.Float()
		switch op {
		case "+":
			return Float(lf + rf), nil
		case "-":
			return Float(lf - rf), nil
		case "*":
			return Float(lf * rf), nil
		case "/":
			if rf == 0 {
				return nil, runtimeErrf(line, col, "division by zero")
			}
			return Float(lf / rf), nil
		case "//":
			if rf == 0 {
				return nil, runtimeErrf(line, col, "division by zero")
			}
			q := lf / rf
			return Float(math.Floor(q)), nil
		case "%":
			if rf == 0 {
				return nil, runtimeErrf(line, col, "modulo by zero")
			}
			return Float(math.Mod(lf, rf)), nil
		case "**":
			return Float(math.Pow(lf, rf)), nil
		}
	}
	li, ri := l.Integer(), r.Integer()
	switch op {
	case "+":
		return Int(li + ri), nil
	case "-":
		return Int(li - ri), nil
	case "*":
		return Int(li * ri), nil
	case "//":
		if ri == 0 {
			return nil, runtimeErrf(line, col, "division by zero")
		}
		q := li / ri
		if (li%ri != 0) && ((li < 0) != (ri < 0)) {
			q--
		}
		return Int(q), nil
	case "%":
		if ri == 0 {
			return nil, runtimeErrf(line, col, "modulo by zero")
		}
		m := li % ri
		if m != 0 && ((m < 0) != (ri < 0)) {
			m += ri
		}
		return Int(m), nil
	case "**":
		return Int(intPow(li, ri)), nil
	}
	return nil, runtimeErrf(line, col, "unknown operator %q", op)
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	var result int64 = 1
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

// getAttr implements `.attr` access: object key lookup first (falling back
// to the items/get method surface), array index-by-position when attr is
// numeric, and the fixed string method surface (upper, lower,
// title, strip, lstrip, rstrip, split, replace), matching Jinja2's unified
// dot-or-bracket attribute resolution.
func getAttr(v *Value, attr string) *Value {
	switch v.Kind() {
	case KindObject:
		if val, ok := v.Map().Get(attr); ok {
			return val
		}
		if mk, ok := objectMethods[attr]; ok {
			return Function(mk(v.Map()))
		}
		return Undefined(attr)
	case KindArray:
		if n, ok := parseIndex(attr); ok {
			items := v.Items()
			if n < 0 {
				n += len(items)
			}
			if n >= 0 && n < len(items) {
				return items[n]
			}
			return Undefined(attr)
		}
		return Undefined(attr)
	case KindString:
		if mk, ok := stringMethods[attr]; ok {
			return Function(mk(v.Str()))
		}
		return Undefined(attr)
	default:
		return Undefined(attr)
	}
}

func getItem(v, idx *Value, line, col int) (*Value, error) {
	switch v.Kind() {
	case KindArray:
		if !idx.IsInteger() {
			return nil, runtimeErrf(line, col, "array index must be an integer, got %s", idx.Kind())
		}
		items := v.Items()
		n := int(idx.Integer())
		if n < 0 {
			n += len(items)
		}
		if n < 0 || n >= len(items) {
			return Undefined(""), nil
		}
		return items[n], nil
	case KindObject:
		if !idx.IsString() {
			return nil, runtimeErrf(line, col, "object key must be a string, got %s", idx.Kind())
		}
		if val, ok := v.Map().Get(idx.Str()); ok {
			return val, nil
		}
		return Undefined(idx.Str()), nil
	case KindString:
		if !idx.IsInteger() {
			return nil, runtimeErrf(line, col, "string index must be an integer, got %s", idx.Kind())
		}
		runes := []rune(v.Str())
		n := int(idx.Integer())
		if n < 0 {
			n += len(runes)
		}
		if n < 0 || n >= len(runes) {
			return Undefined(""), nil
		}
		return String(string(runes[n])), nil
	case KindUndefined, KindNull:
		return Undefined(""), nil
	default:
		return nil, runtimeErrf(line, col, "%s is not subscriptable", v.Kind())
	}
}

// sliceIndices normalises start/stop/step Values into concrete Python slice
// bounds over a sequence of length n, per Python's slice.indices() rules.
func sliceIndices(startV, stopV, stepV *Value, n int, line, col int) (start, stop, step int, err error) {
	step = 1
	if stepV != nil && !stepV.IsNull() && !stepV.IsUndefined() {
		if !stepV.IsInteger() {
			return 0, 0, 0, runtimeErrf(line, col, "slice step must be an integer, got %s", stepV.Kind())
		}
		step = int(stepV.Integer())
		if step == 0 {
			return 0, 0, 0, runtimeErrf(line, col, "slice step cannot be zero")
		}
	}

	normalize := func(v *Value, def int) (int, error) {
		if v == nil || v.IsNull() || v.IsUndefined() {
			return def, nil
		}
		if !v.IsInteger() {
			return 0, runtimeErrf(line, col, "slice bound must be an integer, got %s", v.Kind())
		}
		i := int(v.Integer())
		if i < 0 {
			i += n
		}
		return i, nil
	}

	if step > 0 {
		start, err = normalize(startV, 0)
		if err != nil {
			return
		}
		if start < 0 {
			start = 0
		}
		if start > n {
			start = n
		}
		stop, err = normalize(stopV, n)
		if err != nil {
			return
		}
		if stop < 0 {
			stop = 0
		}
		if stop > n {
			stop = n
		}
	} else {
		start, err = normalize(startV, n-1)
		if err != nil {
			return
		}
		if start >= n {
			start = n - 1
		}
		if start < -1 {
			start = -1
		}
		stop, err = normalize(stopV, -1)
		if err != nil {
			return
		}
		if stop >= n {
			stop = n - 1
		}
		if stop < -1 {
			stop = -1
		}
	}
	return
}

// getSlice implements `obj[start:stop:step]` on arrays and strings.
func getSlice(v, startV, stopV, stepV *Value, line, col int) (*Value, error) {
	switch v.Kind() {
	case KindArray:
		items := v.Items()
		start, stop, step, err := sliceIndices(startV, stopV, stepV, len(items), line, col)
		if err != nil {
			return nil, err
		}
		var out []*Value
		if step > 0 {
			for i := start; i < stop; i += step {
				out = append(out, items[i])
			}
		} else {
			for i := start; i > stop; i += step {
				out = append(out, items[i])
			}
		}
		return Array(out), nil
	case KindString:
		runes := []rune(v.Str())
		start, stop, step, err := sliceIndices(startV, stopV, stepV, len(runes), line, col)
		if err != nil {
			return nil, err
		}
		var out []rune
		if step > 0 {
			for i := start; i < stop; i += step {
				out = append(out, runes[i])
			}
		} else {
			for i := start; i > stop; i += step {
				out = append(out, runes[i])
			}
		}
		return String(string(out)), nil
	case KindUndefined, KindNull:
		return Array(nil), nil
	default:
		return nil, runtimeErrf(line, col, "%s is not sliceable", v.Kind())
	}
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	neg := false
	i := 0
	if s[0] == '-' {
		neg = true
		i = 1
	}
	if i >= len(s) {
		return 0, false
	}
	n := 0
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

// joinStrings concatenates Display() of each value, used by a few filters.
func joinStrings(vals []*Value, sep string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.Display()
	}
	return strings.Join(parts, sep)
}
