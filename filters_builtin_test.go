package jinja

import "testing"

func callFilter(t *testing.T, name string, args []*Value, kwargs *OrderedMap) *Value {
	t.Helper()
	fn, ok := lookupFilter(name)
	if !ok {
		t.Fatalf("no filter named %q", name)
	}
	if kwargs == nil {
		kwargs = NewOrderedMap()
	}
	v, err := fn(args, kwargs, NewEnvironment())
	if err != nil {
		t.Fatalf("filter %q: %v", name, err)
	}
	return v
}

func TestBuiltinFiltersTable(t *testing.T) {
	cases := []struct {
		filter string
		args   []*Value
		want   string
	}{
		{"upper", []*Value{String("abc")}, "ABC"},
		{"lower", []*Value{String("ABC")}, "abc"},
		{"capitalize", []*Value{String("hELLO")}, "Hello"},
		{"title", []*Value{String("hello world")}, "Hello World"},
		{"trim", []*Value{String("  hi  ")}, "hi"},
		{"length", []*Value{Array([]*Value{Int(1), Int(2), Int(3)})}, "3"},
		{"first", []*Value{Array([]*Value{String("a"), String("b")})}, "a"},
		{"last", []*Value{Array([]*Value{String("a"), String("b")})}, "b"},
		{"join", []*Value{Array([]*Value{String("a"), String("b")}), String("-")}, "a-b"},
		{"reverse", []*Value{String("abc")}, "cba"},
		{"abs", []*Value{Int(-5)}, "5"},
		{"round", []*Value{Float(2.5), Int(0)}, "3.0"},
		{"wordcount", []*Value{String("one two three")}, "3"},
		{"striptags", []*Value{String("<b>hi</b>")}, "hi"},
		{"urlencode", []*Value{String("a b")}, "a+b"},
		{"string", []*Value{Int(5)}, "5"},
		{"boolean", []*Value{Int(0)}, "false"},
		{"boolean", []*Value{String("x")}, "true"},
	}
	for _, c := range cases {
		got := callFilter(t, c.filter, c.args, nil)
		if got.Display() != c.want {
			t.Errorf("%s(%v) = %q, want %q", c.filter, c.args, got.Display(), c.want)
		}
	}
}

func TestFilterDefaultVsBooleanFlag(t *testing.T) {
	v := callFilter(t, "default", []*Value{String(""), String("fallback"), Bool(true)}, nil)
	if v.Str() != "fallback" {
		t.Errorf("default with boolean=true on falsy string = %q, want fallback", v.Str())
	}
	v2 := callFilter(t, "default", []*Value{String(""), String("fallback")}, nil)
	if v2.Str() != "" {
		t.Errorf("default without boolean=true should only catch undefined, got %q", v2.Str())
	}
}

func TestFilterSort(t *testing.T) {
	arr := Array([]*Value{Int(3), Int(1), Int(2)})
	got := callFilter(t, "sort", []*Value{arr}, nil)
	items := got.Items()
	if items[0].Integer() != 1 || items[1].Integer() != 2 || items[2].Integer() != 3 {
		t.Errorf("sort result = %v", got.Display())
	}
}

func TestFilterMapAttribute(t *testing.T) {
	m1 := NewOrderedMap()
	m1.Set("name", String("a"))
	m2 := NewOrderedMap()
	m2.Set("name", String("b"))
	arr := Array([]*Value{Object(m1), Object(m2)})
	kw := NewOrderedMap()
	kw.Set("attribute", String("name"))
	got := callFilter(t, "map", []*Value{arr}, kw)
	items := got.Items()
	if items[0].Str() != "a" || items[1].Str() != "b" {
		t.Errorf("map attribute result = %v", got.Display())
	}
}

func TestFilterSelectattr(t *testing.T) {
	m1 := NewOrderedMap()
	m1.Set("active", Bool(true))
	m2 := NewOrderedMap()
	m2.Set("active", Bool(false))
	arr := Array([]*Value{Object(m1), Object(m2)})
	got := callFilter(t, "selectattr", []*Value{arr, String("active")}, nil)
	if got.Len() != 1 {
		t.Errorf("selectattr should keep only the active entry, got %d", got.Len())
	}
}

func TestFilterGroupby(t *testing.T) {
	mk := func(cat, name string) *Value {
		m := NewOrderedMap()
		m.Set("category", String(cat))
		m.Set("name", String(name))
		return Object(m)
	}
	arr := Array([]*Value{mk("a", "x"), mk("b", "y"), mk("a", "z")})
	kw := NewOrderedMap()
	kw.Set("attribute", String("category"))
	got := callFilter(t, "groupby", []*Value{arr}, kw)
	if got.Len() != 2 {
		t.Fatalf("expected 2 groups, got %d", got.Len())
	}
}

func TestFilterBatch(t *testing.T) {
	arr := Array([]*Value{Int(1), Int(2), Int(3), Int(4), Int(5)})
	got := callFilter(t, "batch", []*Value{arr, Int(2)}, nil)
	if got.Len() != 3 {
		t.Errorf("batch(5 items, 2) should yield 3 batches, got %d", got.Len())
	}
}

func TestFilterTojson(t *testing.T) {
	m := NewOrderedMap()
	m.Set("a", Int(1))
	got := callFilter(t, "tojson", []*Value{Object(m)}, nil)
	if got.Str() != `{"a":1}` {
		t.Errorf("tojson = %q", got.Str())
	}
}

func TestFilterItems(t *testing.T) {
	m := NewOrderedMap()
	m.Set("a", Int(1))
	m.Set("b", Int(2))
	got := callFilter(t, "items", []*Value{Object(m)}, nil)
	if got.Len() != 2 {
		t.Fatalf("expected 2 pairs, got %d", got.Len())
	}
	first := got.Items()[0].Items()
	if first[0].Str() != "a" || first[1].Integer() != 1 {
		t.Errorf("first pair = %v", got.Items()[0].Display())
	}
}
