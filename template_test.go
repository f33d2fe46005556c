package jinja

import "testing"

func renderOrFatal(t *testing.T, src string, ctx map[string]any, opts ...Option) string {
	t.Helper()
	tpl, err := New("t", src, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := tpl.Render(ctx)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return out
}

func TestRenderPlainVariable(t *testing.T) {
	got := renderOrFatal(t, "Hello, {{ name }}!", map[string]any{"name": "world"})
	if got != "Hello, world!" {
		t.Errorf("got %q", got)
	}
}

func TestRenderUndefinedVariableIsBlank(t *testing.T) {
	got := renderOrFatal(t, "[{{ missing }}]", nil)
	if got != "[]" {
		t.Errorf("got %q", got)
	}
}

func TestRenderIfElif(t *testing.T) {
	src := "{% if x == 1 %}one{% elif x == 2 %}two{% else %}other{% endif %}"
	if got := renderOrFatal(t, src, map[string]any{"x": 2}); got != "two" {
		t.Errorf("got %q", got)
	}
	if got := renderOrFatal(t, src, map[string]any{"x": 5}); got != "other" {
		t.Errorf("got %q", got)
	}
}

func TestRenderForLoopAndLoopObject(t *testing.T) {
	src := "{% for x in items %}{{ loop.index }}:{{ x }}{% if not loop.last %},{% endif %}{% endfor %}"
	got := renderOrFatal(t, src, map[string]any{"items": []any{"a", "b", "c"}})
	if got != "1:a,2:b,3:c" {
		t.Errorf("got %q", got)
	}
}

func TestRenderForElse(t *testing.T) {
	src := "{% for x in items %}{{ x }}{% else %}empty{% endfor %}"
	if got := renderOrFatal(t, src, map[string]any{"items": []any{}}); got != "empty" {
		t.Errorf("got %q", got)
	}
}

func TestRenderBreakContinue(t *testing.T) {
	src := "{% for x in range(10) %}{% if x == 3 %}{% break %}{% endif %}{{ x }}{% endfor %}"
	if got := renderOrFatal(t, src, nil); got != "012" {
		t.Errorf("got %q", got)
	}
	src2 := "{% for x in range(5) %}{% if x % 2 == 0 %}{% continue %}{% endif %}{{ x }}{% endfor %}"
	if got := renderOrFatal(t, src2, nil); got != "13" {
		t.Errorf("got %q", got)
	}
}

func TestRenderFilters(t *testing.T) {
	if got := renderOrFatal(t, "{{ name | upper }}", map[string]any{"name": "bob"}); got != "BOB" {
		t.Errorf("got %q", got)
	}
	if got := renderOrFatal(t, "{{ items | join(', ') }}", map[string]any{"items": []any{"a", "b"}}); got != "a, b" {
		t.Errorf("got %q", got)
	}
	if got := renderOrFatal(t, "{{ missing | default('fallback') }}", nil); got != "fallback" {
		t.Errorf("got %q", got)
	}
}

func TestRenderTests(t *testing.T) {
	if got := renderOrFatal(t, "{{ 4 is even }}", nil); got != "true" {
		t.Errorf("got %q", got)
	}
	if got := renderOrFatal(t, "{{ x is defined }}", map[string]any{"x": 1}); got != "true" {
		t.Errorf("got %q", got)
	}
	if got := renderOrFatal(t, "{{ y is defined }}", nil); got != "false" {
		t.Errorf("got %q", got)
	}
}

func TestRenderMacro(t *testing.T) {
	src := "{% macro greet(name, greeting='Hi') %}{{ greeting }}, {{ name }}!{% endmacro %}{{ greet('Sam') }}"
	if got := renderOrFatal(t, src, nil); got != "Hi, Sam!" {
		t.Errorf("got %q", got)
	}
}

func TestRenderMacroLexicalScoping(t *testing.T) {
	src := "{% set x = 'outer' %}{% macro show() %}{{ x }}{% endmacro %}" +
		"{% macro wrapper() %}{% set x = 'inner' %}{{ show() }}{% endmacro %}{{ wrapper() }}"
	// show() closes over the defining (document-root) environment, so it
	// must see the root 'x', not wrapper()'s local shadow.
	if got := renderOrFatal(t, src, nil); got != "outer" {
		t.Errorf("got %q, want outer (macro lexical scoping)", got)
	}
}

func TestRenderCallBlock(t *testing.T) {
	src := "{% macro wrap() %}<b>{{ caller() }}</b>{% endmacro %}" +
		"{% call wrap() %}hello{% endcall %}"
	if got := renderOrFatal(t, src, nil); got != "<b>hello</b>" {
		t.Errorf("got %q", got)
	}
}

func TestRenderNamespaceMutation(t *testing.T) {
	src := "{% set ns = namespace(count=0) %}" +
		"{% for x in range(5) %}{% set ns.count = ns.count + 1 %}{% endfor %}" +
		"{{ ns.count }}"
	if got := renderOrFatal(t, src, nil); got != "5" {
		t.Errorf("got %q, want 5 (namespace mutation across loop iterations)", got)
	}
}

func TestRenderVerbatim(t *testing.T) {
	src := "{% verbatim %}{{ not a var }}{% endverbatim %}"
	if got := renderOrFatal(t, src, nil); got != "{{ not a var }}" {
		t.Errorf("got %q", got)
	}
}

func TestRenderSetBlock(t *testing.T) {
	src := "{% set greeting %}Hello, {{ name }}{% endset %}{{ greeting }}!"
	if got := renderOrFatal(t, src, map[string]any{"name": "Ana"}); got != "Hello, Ana!" {
		t.Errorf("got %q", got)
	}
}

func TestRenderWhitespaceControlDashMarkers(t *testing.T) {
	src := "A\n{%- if true -%}\nB\n{%- endif %}"
	if got := renderOrFatal(t, src, nil); got != "AB" {
		t.Errorf("got %q", got)
	}
}

func TestRenderTrimBlocksOption(t *testing.T) {
	src := "{% if true %}\nX{% endif %}"
	if got := renderOrFatal(t, src, nil, WithTrimBlocks()); got != "X" {
		t.Errorf("got %q", got)
	}
}

func TestRenderConstantFolding(t *testing.T) {
	// 2+2 folds to a literal 4 at parse time; just check runtime result.
	if got := renderOrFatal(t, "{{ 2 + 2 }}", nil); got != "4" {
		t.Errorf("got %q", got)
	}
}

func TestRenderDivisionByZeroIsRuntimeError(t *testing.T) {
	tpl, err := New("t", "{{ 1 / x }}")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := tpl.Render(map[string]any{"x": 0}); err == nil {
		t.Fatal("expected division by zero error")
	}
}

func TestRenderWithGlobalsOption(t *testing.T) {
	opt := WithGlobals(map[string]*Value{"app": String("jinja2go")})
	if got := renderOrFatal(t, "{{ app }}", nil, opt); got != "jinja2go" {
		t.Errorf("got %q", got)
	}
}

func TestRenderStringConcatAndRepeat(t *testing.T) {
	if got := renderOrFatal(t, `{{ "a" + "b" }}`, nil); got != "ab" {
		t.Errorf(`"a" + "b" = %q, want "ab"`, got)
	}
	if got := renderOrFatal(t, `{{ "ab" * 3 }}`, nil); got != "ababab" {
		t.Errorf(`"ab" * 3 = %q, want "ababab"`, got)
	}
	if got := renderOrFatal(t, `{{ 3 * "ab" }}`, nil); got != "ababab" {
		t.Errorf(`3 * "ab" = %q, want "ababab"`, got)
	}
}

func TestRenderArrayConcat(t *testing.T) {
	got := renderOrFatal(t, "{{ ([1, 2] + [3, 4]) | join(',') }}", nil)
	if got != "1,2,3,4" {
		t.Errorf("got %q", got)
	}
}

func TestRenderStringMethods(t *testing.T) {
	cases := []struct{ src, want string }{
		{`{{ "Bob".upper() }}`, "BOB"},
		{`{{ "BOB".lower() }}`, "bob"},
		{`{{ "  hi  ".strip() }}`, "hi"},
		{`{{ "  hi".lstrip() }}`, "hi"},
		{`{{ "hi  ".rstrip() }}`, "hi"},
		{`{{ "a,b,c".split(",") | join("-") }}`, "a-b-c"},
		{`{{ "hello".replace("l", "L") }}`, "heLLo"},
	}
	for _, c := range cases {
		if got := renderOrFatal(t, c.src, nil); got != c.want {
			t.Errorf("%s = %q, want %q", c.src, got, c.want)
		}
	}
}

func TestRenderObjectItemsAndGet(t *testing.T) {
	ctx := map[string]any{"m": map[string]any{"a": 1, "b": 2}}
	got := renderOrFatal(t, "{% for k, v in m.items() %}{{ k }}={{ v }} {% endfor %}", ctx)
	if got != "a=1 b=2 " {
		t.Errorf("got %q", got)
	}
	if got := renderOrFatal(t, `{{ m.get("a", 0) }}`, ctx); got != "1" {
		t.Errorf("get existing key = %q", got)
	}
	if got := renderOrFatal(t, `{{ m.get("z", 0) }}`, ctx); got != "0" {
		t.Errorf("get missing key = %q", got)
	}
}

func TestRenderSlicing(t *testing.T) {
	cases := []struct{ src, want string }{
		{"{{ (xs[1:3]) | join(',') }}", "1,2"},
		{"{{ (xs[:2]) | join(',') }}", "0,1"},
		{"{{ (xs[::-1]) | join(',') }}", "4,3,2,1,0"},
		{"{{ (xs[::2]) | join(',') }}", "0,2,4"},
		{`{{ "hello"[1:4] }}`, "ell"},
		{`{{ "hello"[::-1] }}`, "olleh"},
	}
	ctx := map[string]any{"xs": []any{0, 1, 2, 3, 4}}
	for _, c := range cases {
		if got := renderOrFatal(t, c.src, ctx); got != c.want {
			t.Errorf("%s = %q, want %q", c.src, got, c.want)
		}
	}
}
