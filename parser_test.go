package jinja

import "testing"

func parseExprOrFatal(t *testing.T, src string) Evaluator {
	t.Helper()
	tokens, err := lex("t", "{{ "+src+" }}")
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	p := newParser("t", tokens)
	p.Consume() // "{{"
	expr, err := p.parseExpression()
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return expr
}

func TestParserPrecedence(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"2 + 3 * 4", "14"},
		{"(2 + 3) * 4", "20"},
		{"2 ** 3 ** 2", "512"}, // right-associative power: 2**(3**2)
		{"10 // 3", "3"},
		{"10 % 3", "1"},
		{"'a' ~ 'b' ~ 'c'", "abc"},
		{"1 if false else 2", "2"},
		{"not true and false", "false"},
		{"1 < 2 and 2 < 3", "true"},
	}
	for _, c := range cases {
		expr := parseExprOrFatal(t, c.src)
		v, err := expr.Evaluate(NewEnvironment())
		if err != nil {
			t.Fatalf("%s: evaluate: %v", c.src, err)
		}
		if v.Display() != c.want {
			t.Errorf("%s = %q, want %q", c.src, v.Display(), c.want)
		}
	}
}

func TestParserConstantFolding(t *testing.T) {
	expr := parseExprOrFatal(t, "2 + 3 * 4")
	if _, ok := asConstant(expr); !ok {
		t.Error("2 + 3 * 4 should fold into a single constant at parse time")
	}
}

func TestParserNoFoldAcrossVariable(t *testing.T) {
	expr := parseExprOrFatal(t, "x + 1")
	if _, ok := asConstant(expr); ok {
		t.Error("x + 1 must not fold: x is not a compile-time constant")
	}
}

func TestParserTernaryFoldsWhenConditionIsConstant(t *testing.T) {
	expr := parseExprOrFatal(t, "x if true else y")
	if _, ok := expr.(*nodeIdentifier); !ok {
		t.Errorf("ternary with constant true condition should fold straight to the then-branch, got %T", expr)
	}
}

func TestParserIsTest(t *testing.T) {
	expr := parseExprOrFatal(t, "x is defined")
	env := NewEnvironment()
	env.Set("x", Int(1))
	v, err := expr.Evaluate(env)
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsTrue() {
		t.Error("x is defined should be true once x is bound")
	}
}

func TestParserFilterChain(t *testing.T) {
	expr := parseExprOrFatal(t, "name | upper | trim")
	env := NewEnvironment()
	env.Set("name", String("  bob  "))
	v, err := expr.Evaluate(env)
	if err != nil {
		t.Fatal(err)
	}
	if v.Str() != "BOB" {
		t.Errorf("chained filters = %q, want BOB", v.Str())
	}
}

func TestParserArrayAndObjectLiterals(t *testing.T) {
	expr := parseExprOrFatal(t, "[1, 2, 3][1]")
	v, err := expr.Evaluate(NewEnvironment())
	if err != nil {
		t.Fatal(err)
	}
	if v.Integer() != 2 {
		t.Errorf("[1,2,3][1] = %v, want 2", v.Display())
	}

	expr2 := parseExprOrFatal(t, `{"a": 1, "b": 2}.b`)
	v2, err := expr2.Evaluate(NewEnvironment())
	if err != nil {
		t.Fatal(err)
	}
	if v2.Integer() != 2 {
		t.Errorf("object literal .b = %v, want 2", v2.Display())
	}
}
