package jinja

import "testing"

func callTest(t *testing.T, name string, args []*Value) bool {
	t.Helper()
	fn, ok := lookupTest(name)
	if !ok {
		t.Fatalf("no test named %q", name)
	}
	v, err := fn(args, NewOrderedMap(), NewEnvironment())
	if err != nil {
		t.Fatalf("test %q: %v", name, err)
	}
	return v.IsTrue()
}

func TestBuiltinTestsTable(t *testing.T) {
	cases := []struct {
		test string
		args []*Value
		want bool
	}{
		{"defined", []*Value{Int(1)}, true},
		{"defined", []*Value{Undefined("x")}, false},
		{"undefined", []*Value{Undefined("x")}, true},
		{"none", []*Value{Null}, true},
		{"none", []*Value{Int(0)}, false},
		{"even", []*Value{Int(4)}, true},
		{"odd", []*Value{Int(4)}, false},
		{"divisibleby", []*Value{Int(9), Int(3)}, true},
		{"divisibleby", []*Value{Int(10), Int(3)}, false},
		{"string", []*Value{String("x")}, true},
		{"string", []*Value{Int(1)}, false},
		{"number", []*Value{Float(1.5)}, true},
		{"sequence", []*Value{Array(nil)}, true},
		{"mapping", []*Value{Object(NewOrderedMap())}, true},
		{"mapping", []*Value{Array(nil)}, false},
		{"in", []*Value{Int(2), Array([]*Value{Int(1), Int(2)})}, true},
		{"eq", []*Value{Int(2), Int(2)}, true},
		{"ne", []*Value{Int(2), Int(3)}, true},
		{"lt", []*Value{Int(1), Int(2)}, true},
		{"ge", []*Value{Int(2), Int(2)}, true},
	}
	for _, c := range cases {
		got := callTest(t, c.test, c.args)
		if got != c.want {
			t.Errorf("%s(%v) = %v, want %v", c.test, c.args, got, c.want)
		}
	}
}

// boolean filter coerces; boolean test checks the variant (§13 resolution).
func TestBooleanFilterVsBooleanTest(t *testing.T) {
	if callTest(t, "boolean", []*Value{Int(1)}) {
		t.Error("1 is not a bool-variant Value, `is boolean` should be false")
	}
	coerced := callFilter(t, "boolean", []*Value{Int(1)}, nil)
	if !coerced.IsTrue() {
		t.Error("1 | boolean should coerce to true")
	}
}

func TestLowerUpperTests(t *testing.T) {
	if !callTest(t, "lower", []*Value{String("bob")}) {
		t.Error(`"bob" is lower should be true`)
	}
	if callTest(t, "lower", []*Value{String("Bob")}) {
		t.Error(`"Bob" is lower should be false`)
	}
	if !callTest(t, "upper", []*Value{String("BOB")}) {
		t.Error(`"BOB" is upper should be true`)
	}
	if callTest(t, "upper", []*Value{String("Bob")}) {
		t.Error(`"Bob" is upper should be false`)
	}
}

func TestFilterAndTestNameTests(t *testing.T) {
	if !callTest(t, "filter", []*Value{String("upper")}) {
		t.Error(`"upper" is filter should be true`)
	}
	if callTest(t, "filter", []*Value{String("not-a-filter")}) {
		t.Error(`unregistered name should fail "is filter"`)
	}
	if !callTest(t, "test", []*Value{String("even")}) {
		t.Error(`"even" is test should be true`)
	}
	if callTest(t, "test", []*Value{String("not-a-test")}) {
		t.Error(`unregistered name should fail "is test"`)
	}
}
