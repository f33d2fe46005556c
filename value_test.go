package jinja

import "testing"

func TestValueTruthiness(t *testing.T) {
	cases := []struct {
		name string
		v    *Value
		want bool
	}{
		{"empty string", String(""), false},
		{"nonempty string", String("x"), true},
		{"zero int", Int(0), false},
		{"nonzero int", Int(1), true},
		{"zero float", Float(0), false},
		{"empty array", Array(nil), false},
		{"nonempty array", Array([]*Value{Int(1)}), true},
		{"null", Null, false},
		{"undefined", Undefined("x"), false},
		{"true", Bool(true), true},
		{"false", Bool(false), false},
	}
	for _, c := range cases {
		if got := c.v.IsTrue(); got != c.want {
			t.Errorf("%s: IsTrue() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestValueEqualValueTo(t *testing.T) {
	if !Int(1).EqualValueTo(Int(1)) {
		t.Error("Int(1) should equal Int(1)")
	}
	if Int(1).EqualValueTo(Float(1)) {
		t.Error("Int(1) should not equal Float(1): different variants")
	}
	if !Null.EqualValueTo(Null) {
		t.Error("Null should equal Null")
	}
	a := Array([]*Value{String("x"), Int(2)})
	b := Array([]*Value{String("x"), Int(2)})
	if !a.EqualValueTo(b) {
		t.Error("structurally equal arrays should be equal")
	}
}

func TestValueCompare(t *testing.T) {
	if c, ok := Int(1).Compare(Int(2)); !ok || c >= 0 {
		t.Errorf("Int(1) vs Int(2): c=%d ok=%v", c, ok)
	}
	if c, ok := String("a").Compare(String("b")); !ok || c >= 0 {
		t.Errorf("String(a) vs String(b): c=%d ok=%v", c, ok)
	}
	if _, ok := String("a").Compare(Int(1)); ok {
		t.Error("string vs int should not be comparable")
	}
}

func TestValueUndefinedIsDistinctFromNull(t *testing.T) {
	if Undefined("x").EqualValueTo(Null) {
		t.Error("undefined must not equal null")
	}
}

func TestOrderedMapInsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("b", Int(1))
	m.Set("a", Int(2))
	m.Set("b", Int(3)) // overwrite, should not move position
	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("unexpected key order: %v", keys)
	}
	v, _ := m.Get("b")
	if v.Integer() != 3 {
		t.Errorf("expected overwritten value 3, got %d", v.Integer())
	}
}

func TestValueGetAttrAndItem(t *testing.T) {
	arr := Array([]*Value{String("a"), String("b"), String("c")})
	if v := getAttr(arr, "1"); v.Str() != "b" {
		t.Errorf("getAttr array index 1 = %q, want b", v.Str())
	}
	if v, err := getItem(arr, Int(-1), 0, 0); err != nil || v.Str() != "c" {
		t.Errorf("getItem array[-1] = %v, %v, want c", v, err)
	}
	m := NewOrderedMap()
	m.Set("x", Int(42))
	obj := Object(m)
	if v := getAttr(obj, "x"); v.Integer() != 42 {
		t.Errorf("getAttr object.x = %v, want 42", v)
	}
	if v := getAttr(obj, "missing"); !v.IsUndefined() {
		t.Errorf("getAttr missing key should be undefined, got %v", v)
	}
}
