package jinja

import "testing"

func TestGlobalRange(t *testing.T) {
	env := NewEnvironment()
	fn, _ := env.Get("range")
	v, err := fn.Func()([]*Value{Int(5)}, NewOrderedMap(), env)
	if err != nil {
		t.Fatal(err)
	}
	if v.Len() != 5 || v.Items()[4].Integer() != 4 {
		t.Errorf("range(5) = %v", v.Display())
	}

	v2, err := fn.Func()([]*Value{Int(10), Int(0), Int(-2)}, NewOrderedMap(), env)
	if err != nil {
		t.Fatal(err)
	}
	if v2.Len() != 5 || v2.Items()[0].Integer() != 10 {
		t.Errorf("range(10, 0, -2) = %v", v2.Display())
	}
}

func TestGlobalNamespaceIsMutableByReference(t *testing.T) {
	env := NewEnvironment()
	fn, _ := env.Get("namespace")
	kw := NewOrderedMap()
	kw.Set("count", Int(0))
	ns, err := fn.Func()(nil, kw, env)
	if err != nil {
		t.Fatal(err)
	}
	alias := ns // same *Value, shares the same *OrderedMap
	ns.Map().Set("count", Int(99))
	v, _ := alias.Map().Get("count")
	if v.Integer() != 99 {
		t.Errorf("namespace mutation not visible through alias: %v", v)
	}
}

func TestGlobalCycler(t *testing.T) {
	env := NewEnvironment()
	fn, _ := env.Get("cycler")
	c, err := fn.Func()([]*Value{String("a"), String("b")}, NewOrderedMap(), env)
	if err != nil {
		t.Fatal(err)
	}
	next, _ := c.Map().Get("next")
	v1, _ := next.Func()(nil, NewOrderedMap(), env)
	v2, _ := next.Func()(nil, NewOrderedMap(), env)
	v3, _ := next.Func()(nil, NewOrderedMap(), env)
	if v1.Str() != "a" || v2.Str() != "b" || v3.Str() != "a" {
		t.Errorf("cycler sequence = %q %q %q", v1.Str(), v2.Str(), v3.Str())
	}
}

func TestGlobalJoiner(t *testing.T) {
	env := NewEnvironment()
	fn, _ := env.Get("joiner")
	j, err := fn.Func()([]*Value{String("|")}, NewOrderedMap(), env)
	if err != nil {
		t.Fatal(err)
	}
	v1, _ := j.Func()(nil, NewOrderedMap(), env)
	v2, _ := j.Func()(nil, NewOrderedMap(), env)
	if v1.Str() != "" || v2.Str() != "|" {
		t.Errorf("joiner sequence = %q %q", v1.Str(), v2.Str())
	}
}
